/*
rules.go - Fixed-share (Fard) rule table

PURPOSE:
  Each rule is (condition, fraction, recipients). Conditions read the facts
  derived from CategorizedHeirs; when a condition holds, the fraction goes
  to the recipients, split evenly when there is more than one.

ORDER:
  Rules are evaluated in table order: halves, thirds, quarters, two-thirds,
  sixths, eighths. Guards on the same category are mutually exclusive
  (count == 1 versus count >= 2, with/without descendants), so at most one
  rule fires per category and order only decides the sequence of results.

RULE TABLE:
  1/2  husband, no descendants
  1/2  one daughter, no sons
  1/2  one granddaughter, no grandsons/sons/daughters
  1/2  one full sister, no full brothers/male ascendants/descendants
  1/2  one paternal sister, no paternal or full brothers, no full sisters,
       no male ascendants/descendants
  1/3  mother, no descendants, fewer than two siblings
  1/3  two or more maternal siblings, no descendants/male ascendants (per capita)
  1/4  husband with descendants
  1/4  wife, no descendants
  2/3  two or more daughters, no sons (per capita)
  2/3  two or more granddaughters, no grandsons/sons/daughters (per capita)
  2/3  two or more full sisters, no full brothers/male ascendants/descendants
  2/3  two or more paternal sisters, same exclusions as the 1/2 rule
  1/6  father with descendants
  1/6  mother with descendants or two or more siblings
  1/6  grandfather with descendants, no father, no full/paternal siblings
  1/6  grandmother, no mother, and no father or maternal-side grandmother
  1/6  granddaughters alongside exactly one daughter (per capita)
  1/6  paternal sisters alongside exactly one full sister (per capita)
  1/6  exactly one maternal sibling, no descendants/male ascendants
  1/8  wife with descendants
*/
package faraid

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rule describes one fixed-share rule for display.
type Rule struct {
	ID          string `json:"id"`
	Share       string `json:"share"`
	Description string `json:"description"`
	PerCapita   bool   `json:"per_capita"`
}

type fixedRule struct {
	id          string
	share       fraction
	description string
	perCapita   bool
	applies     func(c CategorizedHeirs) bool
	recipients  func(c CategorizedHeirs) []ClassifiedHeir
}

func one(slot *ClassifiedHeir) []ClassifiedHeir {
	if slot == nil {
		return nil
	}
	return []ClassifiedHeir{*slot}
}

var fixedRules = []fixedRule{
	// ---- 1/2 ----
	{
		id: "husband-half", share: half,
		description: "husband with no descendants",
		applies:     func(c CategorizedHeirs) bool { return c.Husband != nil && !c.HasDescendants() },
		recipients:  func(c CategorizedHeirs) []ClassifiedHeir { return one(c.Husband) },
	},
	{
		id: "daughter-half", share: half,
		description: "single daughter with no sons",
		applies:     func(c CategorizedHeirs) bool { return len(c.Daughters) == 1 && len(c.Sons) == 0 },
		recipients:  func(c CategorizedHeirs) []ClassifiedHeir { return c.Daughters },
	},
	{
		id: "granddaughter-half", share: half,
		description: "single granddaughter with no grandsons, sons or daughters",
		applies: func(c CategorizedHeirs) bool {
			return len(c.Granddaughters) == 1 && len(c.Grandsons) == 0 &&
				len(c.Sons) == 0 && len(c.Daughters) == 0
		},
		recipients: func(c CategorizedHeirs) []ClassifiedHeir { return c.Granddaughters },
	},
	{
		id: "full-sister-half", share: half,
		description: "single full sister with no full brothers, father, grandfather or descendants",
		applies: func(c CategorizedHeirs) bool {
			return len(c.FullSisters) == 1 && len(c.FullBrothers) == 0 &&
				!c.HasMaleAscendants() && !c.HasDescendants()
		},
		recipients: func(c CategorizedHeirs) []ClassifiedHeir { return c.FullSisters },
	},
	{
		id: "paternal-sister-half", share: half,
		description: "single paternal sister with no paternal or full brothers, no full sisters, father, grandfather or descendants",
		applies: func(c CategorizedHeirs) bool {
			return len(c.PaternalSisters) == 1 && paternalSistersUnblocked(c)
		},
		recipients: func(c CategorizedHeirs) []ClassifiedHeir { return c.PaternalSisters },
	},

	// ---- 1/3 ----
	{
		id: "mother-third", share: third,
		description: "mother with no descendants and fewer than two siblings",
		applies: func(c CategorizedHeirs) bool {
			return c.Mother != nil && !c.HasDescendants() && !c.HasMultipleSiblings()
		},
		recipients: func(c CategorizedHeirs) []ClassifiedHeir { return one(c.Mother) },
	},
	{
		id: "maternal-siblings-third", share: third, perCapita: true,
		description: "two or more maternal siblings with no descendants, father or grandfather",
		applies: func(c CategorizedHeirs) bool {
			return len(c.MaternalBrothers)+len(c.MaternalSisters) >= 2 &&
				!c.HasDescendants() && !c.HasMaleAscendants()
		},
		recipients: func(c CategorizedHeirs) []ClassifiedHeir { return c.MaternalSiblings() },
	},

	// ---- 1/4 ----
	{
		id: "husband-quarter", share: quarter,
		description: "husband with descendants",
		applies:     func(c CategorizedHeirs) bool { return c.Husband != nil && c.HasDescendants() },
		recipients:  func(c CategorizedHeirs) []ClassifiedHeir { return one(c.Husband) },
	},
	{
		id: "wife-quarter", share: quarter,
		description: "wife with no descendants",
		applies:     func(c CategorizedHeirs) bool { return c.Wife != nil && !c.HasDescendants() },
		recipients:  func(c CategorizedHeirs) []ClassifiedHeir { return one(c.Wife) },
	},

	// ---- 2/3 ----
	{
		id: "daughters-two-thirds", share: twoThirds, perCapita: true,
		description: "two or more daughters with no sons",
		applies:     func(c CategorizedHeirs) bool { return len(c.Daughters) >= 2 && len(c.Sons) == 0 },
		recipients:  func(c CategorizedHeirs) []ClassifiedHeir { return c.Daughters },
	},
	{
		id: "granddaughters-two-thirds", share: twoThirds, perCapita: true,
		description: "two or more granddaughters with no grandsons, sons or daughters",
		applies: func(c CategorizedHeirs) bool {
			return len(c.Granddaughters) >= 2 && len(c.Grandsons) == 0 &&
				len(c.Sons) == 0 && len(c.Daughters) == 0
		},
		recipients: func(c CategorizedHeirs) []ClassifiedHeir { return c.Granddaughters },
	},
	{
		id: "full-sisters-two-thirds", share: twoThirds, perCapita: true,
		description: "two or more full sisters with no full brothers, father, grandfather or descendants",
		applies: func(c CategorizedHeirs) bool {
			return len(c.FullSisters) >= 2 && len(c.FullBrothers) == 0 &&
				!c.HasMaleAscendants() && !c.HasDescendants()
		},
		recipients: func(c CategorizedHeirs) []ClassifiedHeir { return c.FullSisters },
	},
	{
		id: "paternal-sisters-two-thirds", share: twoThirds, perCapita: true,
		description: "two or more paternal sisters with no paternal or full brothers, no full sisters, father, grandfather or descendants",
		applies: func(c CategorizedHeirs) bool {
			return len(c.PaternalSisters) >= 2 && paternalSistersUnblocked(c)
		},
		recipients: func(c CategorizedHeirs) []ClassifiedHeir { return c.PaternalSisters },
	},

	// ---- 1/6 ----
	{
		id: "father-sixth", share: sixth,
		description: "father with descendants",
		applies:     func(c CategorizedHeirs) bool { return c.Father != nil && c.HasDescendants() },
		recipients:  func(c CategorizedHeirs) []ClassifiedHeir { return one(c.Father) },
	},
	{
		id: "mother-sixth", share: sixth,
		description: "mother with descendants or two or more siblings",
		applies: func(c CategorizedHeirs) bool {
			return c.Mother != nil && (c.HasDescendants() || c.HasMultipleSiblings())
		},
		recipients: func(c CategorizedHeirs) []ClassifiedHeir { return one(c.Mother) },
	},
	{
		id: "grandfather-sixth", share: sixth,
		description: "grandfather with descendants, no father and no full or paternal siblings",
		applies: func(c CategorizedHeirs) bool {
			return c.Grandfather != nil && c.HasDescendants() && c.Father == nil &&
				len(c.FullBrothers)+len(c.FullSisters)+len(c.PaternalBrothers)+len(c.PaternalSisters) == 0
		},
		recipients: func(c CategorizedHeirs) []ClassifiedHeir { return one(c.Grandfather) },
	},
	{
		id: "grandmother-sixth", share: sixth,
		description: "grandmother with no mother, and either no father or related through the mother",
		applies: func(c CategorizedHeirs) bool {
			return c.Grandmother != nil && c.Mother == nil &&
				(c.Father == nil || c.Grandmother.Side == SideMaternal)
		},
		recipients: func(c CategorizedHeirs) []ClassifiedHeir { return one(c.Grandmother) },
	},
	{
		id: "granddaughters-sixth", share: sixth, perCapita: true,
		description: "granddaughters alongside a single daughter, with no sons or grandsons",
		applies: func(c CategorizedHeirs) bool {
			return len(c.Daughters) == 1 && len(c.Sons) == 0 &&
				len(c.Grandsons) == 0 && len(c.Granddaughters) >= 1
		},
		recipients: func(c CategorizedHeirs) []ClassifiedHeir { return c.Granddaughters },
	},
	{
		id: "paternal-sisters-sixth", share: sixth, perCapita: true,
		description: "paternal sisters alongside a single full sister, with no descendants, father, grandfather, full or paternal brothers",
		applies: func(c CategorizedHeirs) bool {
			return len(c.FullSisters) == 1 && len(c.PaternalSisters) >= 1 &&
				!c.HasDescendants() && !c.HasMaleAscendants() &&
				len(c.FullBrothers) == 0 && len(c.PaternalBrothers) == 0
		},
		recipients: func(c CategorizedHeirs) []ClassifiedHeir { return c.PaternalSisters },
	},
	{
		id: "maternal-sibling-sixth", share: sixth,
		description: "single maternal sibling with no descendants, father or grandfather",
		applies: func(c CategorizedHeirs) bool {
			return len(c.MaternalBrothers)+len(c.MaternalSisters) == 1 &&
				!c.HasDescendants() && !c.HasMaleAscendants()
		},
		recipients: func(c CategorizedHeirs) []ClassifiedHeir { return c.MaternalSiblings() },
	},

	// ---- 1/8 ----
	{
		id: "wife-eighth", share: eighth,
		description: "wife with descendants",
		applies:     func(c CategorizedHeirs) bool { return c.Wife != nil && c.HasDescendants() },
		recipients:  func(c CategorizedHeirs) []ClassifiedHeir { return one(c.Wife) },
	},
}

// paternalSistersUnblocked is the shared guard of the paternal sister 1/2 and 2/3 rules.
func paternalSistersUnblocked(c CategorizedHeirs) bool {
	return len(c.PaternalBrothers) == 0 && len(c.FullBrothers) == 0 &&
		len(c.FullSisters) == 0 && !c.HasMaleAscendants() && !c.HasDescendants()
}

// FixedShareRules lists the rule table in evaluation order.
func FixedShareRules() []Rule {
	out := make([]Rule, len(fixedRules))
	for i, r := range fixedRules {
		out[i] = Rule{ID: r.id, Share: r.share.String(), Description: r.description, PerCapita: r.perCapita}
	}
	return out
}

// ApplyFixedShares evaluates every fixed-share rule and returns the
// resulting entries with the total fraction they allocate.
// No matching rule is not an error: the result is empty and the total zero.
func ApplyFixedShares(c CategorizedHeirs, estate decimal.Decimal) ([]Result, decimal.Decimal) {
	var results []Result
	var total fraction

	for _, rule := range fixedRules {
		if !rule.applies(c) {
			continue
		}
		recipients := rule.recipients(c)
		if len(recipients) == 0 {
			continue
		}

		each := rule.share.per(len(recipients))
		frac := each.decimal()
		explanation := explainFixed(rule, len(recipients), each)

		for _, h := range recipients {
			results = append(results, newResult(h, frac, estate, explanation))
		}
		// The total counts the whole rule fraction, not the rounded per-capita parts.
		total = total.add(rule.share)
	}
	return results, total.decimal()
}

func explainFixed(rule fixedRule, n int, each fraction) string {
	if n > 1 {
		return fmt.Sprintf("%s shared by %d heirs (%s each): %s", rule.share, n, each, rule.description)
	}
	return fmt.Sprintf("%s share: %s", rule.share, rule.description)
}
