/*
classify.go - Heir classifier

PURPOSE:
  Turns the caller's flat heir list into CategorizedHeirs: one slot or list
  per Faraid role. Every input heir ends up either in exactly one category
  or in Excluded, never both.

EXCLUSION REASONS:
  unrecognized     label is not a Faraid role ("cousin", "")
  spouse_mismatch  "husband" for a male owner, "wife" for a female owner
  duplicate_role   a second father/mother/grandparent/spouse; the first keeps the slot

No error is raised for any of these. Absence from the categories is the
only signal the rule engine sees.
*/
package faraid

import "slices"

// ClassifiedHeir is an input heir with its parsed role.
type ClassifiedHeir struct {
	Heir
	Role Relationship
	Side Side

	// Index is the heir's position in the input, used to keep output order stable.
	Index int
}

// ExclusionReason says why an heir took no part in the calculation.
type ExclusionReason string

const (
	ExcludedUnrecognized   ExclusionReason = "unrecognized"
	ExcludedSpouseMismatch ExclusionReason = "spouse_mismatch"
	ExcludedDuplicateRole  ExclusionReason = "duplicate_role"
)

// Exclusion records an input heir that was not classified.
type Exclusion struct {
	Heir   Heir
	Reason ExclusionReason
}

// CategorizedHeirs groups heirs by Faraid role.
type CategorizedHeirs struct {
	Sons      []ClassifiedHeir
	Daughters []ClassifiedHeir

	Father      *ClassifiedHeir
	Mother      *ClassifiedHeir
	Grandfather *ClassifiedHeir
	Grandmother *ClassifiedHeir
	Husband     *ClassifiedHeir
	Wife        *ClassifiedHeir

	// Same father and mother.
	FullBrothers []ClassifiedHeir
	FullSisters  []ClassifiedHeir

	// Same mother only.
	MaternalBrothers []ClassifiedHeir
	MaternalSisters  []ClassifiedHeir

	// Same father only.
	PaternalBrothers []ClassifiedHeir
	PaternalSisters  []ClassifiedHeir

	Grandsons      []ClassifiedHeir
	Granddaughters []ClassifiedHeir

	Excluded []Exclusion
}

// Classify partitions heirs into Faraid categories for an owner of the
// given gender.
func Classify(heirs []Heir, owner Gender) CategorizedHeirs {
	var c CategorizedHeirs

	for i, h := range heirs {
		role, side, err := ParseRelationshipSide(h.Relationship)
		if err != nil {
			c.exclude(h, ExcludedUnrecognized)
			continue
		}
		ch := ClassifiedHeir{Heir: h, Role: role, Side: side, Index: i}

		switch role {
		case Son:
			c.Sons = append(c.Sons, ch)
		case Daughter:
			c.Daughters = append(c.Daughters, ch)
		case Father:
			c.fill(&c.Father, ch)
		case Mother:
			c.fill(&c.Mother, ch)
		case Grandfather:
			c.fill(&c.Grandfather, ch)
		case Grandmother:
			c.fill(&c.Grandmother, ch)
		case Husband, Wife:
			if owner.SpouseRole() != role {
				c.exclude(h, ExcludedSpouseMismatch)
				continue
			}
			if role == Husband {
				c.fill(&c.Husband, ch)
			} else {
				c.fill(&c.Wife, ch)
			}
		case Brother:
			c.FullBrothers = append(c.FullBrothers, ch)
		case Sister:
			c.FullSisters = append(c.FullSisters, ch)
		case MaternalBrother:
			c.MaternalBrothers = append(c.MaternalBrothers, ch)
		case MaternalSister:
			c.MaternalSisters = append(c.MaternalSisters, ch)
		case PaternalBrother:
			c.PaternalBrothers = append(c.PaternalBrothers, ch)
		case PaternalSister:
			c.PaternalSisters = append(c.PaternalSisters, ch)
		case Grandson:
			c.Grandsons = append(c.Grandsons, ch)
		case Granddaughter:
			c.Granddaughters = append(c.Granddaughters, ch)
		default:
			c.exclude(h, ExcludedUnrecognized)
		}
	}
	return c
}

func (c *CategorizedHeirs) fill(slot **ClassifiedHeir, ch ClassifiedHeir) {
	if *slot != nil {
		c.exclude(ch.Heir, ExcludedDuplicateRole)
		return
	}
	*slot = &ch
}

func (c *CategorizedHeirs) exclude(h Heir, reason ExclusionReason) {
	c.Excluded = append(c.Excluded, Exclusion{Heir: h, Reason: reason})
}

// =============================================================================
// DERIVED FACTS
// =============================================================================

// HasDescendants reports any son, daughter or grandchild.
func (c CategorizedHeirs) HasDescendants() bool {
	return len(c.Sons) > 0 || len(c.Daughters) > 0 ||
		len(c.Grandsons) > 0 || len(c.Granddaughters) > 0
}

// HasMaleAscendants reports a father or grandfather.
func (c CategorizedHeirs) HasMaleAscendants() bool {
	return c.Father != nil || c.Grandfather != nil
}

// SiblingCount counts siblings of all three tiers and both sexes.
func (c CategorizedHeirs) SiblingCount() int {
	n := 0
	for _, h := range c.Classified() {
		if h.Role.IsSibling() {
			n++
		}
	}
	return n
}

// HasMultipleSiblings reports two or more siblings in total.
func (c CategorizedHeirs) HasMultipleSiblings() bool {
	return c.SiblingCount() >= 2
}

// MaternalSiblings returns maternal brothers and sisters in input order.
func (c CategorizedHeirs) MaternalSiblings() []ClassifiedHeir {
	out := make([]ClassifiedHeir, 0, len(c.MaternalBrothers)+len(c.MaternalSisters))
	out = append(out, c.MaternalBrothers...)
	out = append(out, c.MaternalSisters...)
	slices.SortStableFunc(out, func(a, b ClassifiedHeir) int { return a.Index - b.Index })
	return out
}

// Classified returns every placed heir in input order.
func (c CategorizedHeirs) Classified() []ClassifiedHeir {
	var out []ClassifiedHeir
	for _, slot := range []*ClassifiedHeir{c.Father, c.Mother, c.Grandfather, c.Grandmother, c.Husband, c.Wife} {
		if slot != nil {
			out = append(out, *slot)
		}
	}
	for _, list := range [][]ClassifiedHeir{
		c.Sons, c.Daughters,
		c.FullBrothers, c.FullSisters,
		c.MaternalBrothers, c.MaternalSisters,
		c.PaternalBrothers, c.PaternalSisters,
		c.Grandsons, c.Granddaughters,
	} {
		out = append(out, list...)
	}
	slices.SortStableFunc(out, func(a, b ClassifiedHeir) int { return a.Index - b.Index })
	return out
}
