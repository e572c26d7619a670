/*
Package faraid computes Islamic inheritance (Faraid) shares.

PURPOSE:
  Given the surviving relatives of an estate owner and the value of the
  estate, the engine works out each heir's fraction: fixed Quranic shares
  first, then the residue (Asabah) or, failing a residuary heir, a
  proportional return of the remainder (Radd).

PIPELINE:
  1. Classify           heirs -> CategorizedHeirs (+ exclusions)
  2. ApplyFixedShares   CategorizedHeirs -> results, total allocated
  3. DistributeResidual results + remainder -> final results

  Compute runs all three and returns a Distribution with summary facts;
  Calculate returns only the results.

PURITY:
  Every function in this package is a pure function of its inputs. There is
  no package state, no I/O and nothing to cancel. Concurrent callers need no
  coordination.

KNOWN GAP ('AWL):
  When fixed shares add up to more than the whole estate the engine does not
  scale them down. Distribution.AwlRequired is set and callers surface it.

NUMBERS:
  Fractions and money are decimal.Decimal. Rule fractions are kept as
  integer ratios until the last step so per-capita splits divide once.

SEE ALSO:
  - classify.go: Heir classifier
  - rules.go: Fixed-share rule table
  - residual.go: Asabah and Radd
*/
package faraid

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT
// =============================================================================

// Heir is one surviving relative as supplied by the caller.
// Relationship is the caller's free-form label; it is parsed by Classify.
type Heir struct {
	ID           string `json:"id" yaml:"id"`
	FullName     string `json:"full_name" yaml:"full_name"`
	Relationship string `json:"relationship" yaml:"relationship"`
	IC           string `json:"ic,omitempty" yaml:"ic,omitempty"`
}

// ValidateEstateValue rejects negative estate values. The engine itself
// accepts any value; callers run this before calculating.
func ValidateEstateValue(v decimal.Decimal) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeEstateValue, v.String())
	}
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// Result is one heir's allocation under one rule. An heir may appear more
// than once (a fixed share and a residuary share are separate entries).
type Result struct {
	HeirID       string          `json:"heir_id"`
	FullName     string          `json:"full_name"`
	Relationship Relationship    `json:"relationship"`
	Fraction     decimal.Decimal `json:"fraction"`
	Share        decimal.Decimal `json:"share"`
	Percentage   decimal.Decimal `json:"percentage"`
	Explanation  string          `json:"explanation"`
}

// Residual says how the unallocated remainder was handled.
type Residual string

const (
	ResidualNone          Residual = "none"          // fixed shares used the whole estate (or more)
	ResidualFather        Residual = "father"        // father took the remainder as residuary heir
	ResidualAsabah        Residual = "asabah"        // sons and daughters split the remainder 2:1
	ResidualRadd          Residual = "radd"          // remainder returned proportionally to fixed-share heirs
	ResidualUndistributed Residual = "undistributed" // nobody to give the remainder to
)

// Distribution is the full outcome of one calculation.
type Distribution struct {
	EstateValue decimal.Decimal
	Results     []Result

	// TotalAllocated is the sum of fixed-share fractions, before residual handling.
	TotalAllocated decimal.Decimal

	// Remainder is 1 - TotalAllocated when positive, zero otherwise.
	Remainder decimal.Decimal

	Residual Residual

	// AwlRequired is set when fixed shares exceed the whole estate.
	AwlRequired bool

	// Excluded lists input heirs that took no part in the calculation.
	Excluded []Exclusion
}

// TotalPercentage sums the percentage of every result.
func (d Distribution) TotalPercentage() decimal.Decimal {
	total := decimal.Zero
	for _, r := range d.Results {
		total = total.Add(r.Percentage)
	}
	return total
}

// UncoveredPercentage is what is left of 100% after all results, or zero.
func (d Distribution) UncoveredPercentage() decimal.Decimal {
	left := hundred.Sub(d.TotalPercentage())
	if left.IsNegative() {
		return decimal.Zero
	}
	return left
}

// ResultsFor returns the entries for one heir.
func (d Distribution) ResultsFor(heirID string) []Result {
	var out []Result
	for _, r := range d.Results {
		if r.HeirID == heirID {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// FRACTIONS
// =============================================================================

var hundred = decimal.NewFromInt(100)

// fraction is an exact ratio used by the rule table.
type fraction struct {
	num int64
	den int64
}

var (
	half      = fraction{1, 2}
	third     = fraction{1, 3}
	quarter   = fraction{1, 4}
	twoThirds = fraction{2, 3}
	sixth     = fraction{1, 6}
	eighth    = fraction{1, 8}
)

// per splits the fraction evenly across n heirs.
func (f fraction) per(n int) fraction {
	if n <= 1 {
		return f
	}
	split := fraction{num: f.num, den: f.den * int64(n)}
	d := gcd(split.num, split.den)
	return fraction{num: split.num / d, den: split.den / d}
}

// add returns f + g reduced to lowest terms, so shares that make up the
// whole estate sum to exactly 1.
func (f fraction) add(g fraction) fraction {
	if f.den == 0 {
		return g
	}
	sum := fraction{num: f.num*g.den + g.num*f.den, den: f.den * g.den}
	d := gcd(sum.num, sum.den)
	return fraction{num: sum.num / d, den: sum.den / d}
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

func (f fraction) decimal() decimal.Decimal {
	if f.den == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(f.num).Div(decimal.NewFromInt(f.den))
}

func (f fraction) String() string {
	return fmt.Sprintf("%d/%d", f.num, f.den)
}

// newResult builds a Result for heir h holding fraction frac of the estate.
func newResult(h ClassifiedHeir, frac decimal.Decimal, estate decimal.Decimal, explanation string) Result {
	return Result{
		HeirID:       h.ID,
		FullName:     h.FullName,
		Relationship: h.Role,
		Fraction:     frac,
		Share:        frac.Mul(estate),
		Percentage:   frac.Mul(hundred),
		Explanation:  explanation,
	}
}
