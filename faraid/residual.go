/*
residual.go - Residual distributor (Asabah and Radd)

PURPOSE:
  After fixed shares, anything left of the estate is handed out by the
  first matching case:

  1. Father, no descendants      father takes the whole remainder (Asabah)
  2. At least one son            sons and daughters split it 2:1 (Asabah)
  3. Blood-relative results      remainder returned to every result in
                                 proportion to its fraction (Radd)
  4. Otherwise                   remainder stays undistributed

  Radd grows every fixed-share result, spouses included, by
  (fraction / totalAllocated) * remainder, so the total reaches 100%.
  It needs at least one blood-relative result: a husband or wife as the
  only fixed-share heir keeps the fixed share and the remainder stays
  undistributed.

  Nothing happens when fixed shares already cover the estate. Over-allocation
  ('awl) is reported by Compute, never corrected here.

IMMUTABILITY:
  DistributeResidual returns a new slice. Cases 1 and 2 append entries;
  Radd rewrites copies of the existing entries.
*/
package faraid

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const raddSuffix = " + remainder distributed proportionally (Radd)"

var (
	one64 = decimal.NewFromInt(1)
	two64 = decimal.NewFromInt(2)
)

// DistributeResidual hands out 1 - totalAllocated according to the
// Asabah/Radd cases and reports which case applied.
func DistributeResidual(results []Result, totalAllocated decimal.Decimal, c CategorizedHeirs, estate decimal.Decimal) ([]Result, Residual) {
	out := make([]Result, len(results), len(results)+len(c.Sons)+len(c.Daughters)+1)
	copy(out, results)

	if totalAllocated.GreaterThanOrEqual(one64) {
		return out, ResidualNone
	}
	remainder := one64.Sub(totalAllocated)

	switch {
	case c.Father != nil && !c.HasDescendants():
		out = append(out, newResult(*c.Father, remainder, estate,
			"Asabah: father takes the remainder as residuary heir"))
		return out, ResidualFather

	case len(c.Sons) > 0:
		return append(out, asabahChildren(c, remainder, estate)...), ResidualAsabah

	case raddApplies(out):
		return radd(out, totalAllocated, remainder, estate), ResidualRadd
	}

	return out, ResidualUndistributed
}

// asabahChildren splits the remainder so that each son receives twice a
// daughter's portion.
func asabahChildren(c CategorizedHeirs, remainder, estate decimal.Decimal) []Result {
	parts := int64(2*len(c.Sons) + len(c.Daughters))
	unit := remainder.Div(decimal.NewFromInt(parts))
	sonFrac := unit.Mul(two64)

	children := make([]ClassifiedHeir, 0, len(c.Sons)+len(c.Daughters))
	children = append(children, c.Sons...)
	children = append(children, c.Daughters...)

	out := make([]Result, 0, len(children))
	for _, h := range children {
		if h.Role == Son {
			out = append(out, newResult(h, sonFrac, estate,
				fmt.Sprintf("Asabah: son takes 2 of %d parts of the remainder", parts)))
			continue
		}
		out = append(out, newResult(h, unit, estate,
			fmt.Sprintf("Asabah: daughter takes 1 of %d parts of the remainder alongside sons", parts)))
	}
	return out
}

// raddApplies reports whether results hold a blood-relative entry to
// return the remainder through.
func raddApplies(results []Result) bool {
	for _, r := range results {
		if !r.Relationship.IsSpouse() && r.Fraction.IsPositive() {
			return true
		}
	}
	return false
}

// radd grows every result in proportion to its share of totalAllocated.
func radd(results []Result, totalAllocated, remainder, estate decimal.Decimal) []Result {
	for i, r := range results {
		added := r.Fraction.Div(totalAllocated).Mul(remainder)
		frac := r.Fraction.Add(added)

		r.Fraction = frac
		r.Share = frac.Mul(estate)
		r.Percentage = frac.Mul(hundred)
		r.Explanation += raddSuffix
		results[i] = r
	}
	return results
}
