package faraid_test

import (
	"fmt"
	"testing"

	"github.com/amanah/faraid-engine/faraid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const epsilon = 1e-9

func heir(id, relationship string) faraid.Heir {
	return faraid.Heir{ID: id, FullName: "Heir " + id, Relationship: relationship}
}

func estate(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// pct returns the summed percentage of every entry for heirID.
func pct(results []faraid.Result, heirID string) float64 {
	total := decimal.Zero
	for _, r := range results {
		if r.HeirID == heirID {
			total = total.Add(r.Percentage)
		}
	}
	return total.InexactFloat64()
}

func share(results []faraid.Result, heirID string) float64 {
	total := decimal.Zero
	for _, r := range results {
		if r.HeirID == heirID {
			total = total.Add(r.Share)
		}
	}
	return total.InexactFloat64()
}

func totalPct(results []faraid.Result) float64 {
	total := decimal.Zero
	for _, r := range results {
		total = total.Add(r.Percentage)
	}
	return total.InexactFloat64()
}

func ids(results []faraid.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.HeirID
	}
	return out
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestCalculate_SoleHusband_NoDescendants(t *testing.T) {
	// GIVEN: A female owner survived only by her husband
	// WHEN: Calculating a 100,000 estate
	// THEN: Husband takes half; the rest stays undistributed

	d := faraid.Compute([]faraid.Heir{heir("h", "husband")}, estate(100000), faraid.Female)

	require.Len(t, d.Results, 1)
	assert.InDelta(t, 50, d.Results[0].Percentage.InexactFloat64(), epsilon)
	assert.InDelta(t, 50000, d.Results[0].Share.InexactFloat64(), epsilon)
	assert.Equal(t, faraid.ResidualUndistributed, d.Residual)
	assert.InDelta(t, 50, d.UncoveredPercentage().InexactFloat64(), epsilon)
	assert.False(t, d.AwlRequired)
}

func TestCalculate_SonAndDaughter_Asabah(t *testing.T) {
	// GIVEN: One son and one daughter, nobody else
	// WHEN: Calculating
	// THEN: No fixed shares; the whole estate splits 2:1

	results := faraid.Calculate([]faraid.Heir{heir("s", "son"), heir("d", "daughter")}, estate(90000), faraid.Male)

	require.Len(t, results, 2)
	assert.InDelta(t, 66.6666666667, pct(results, "s"), 1e-6)
	assert.InDelta(t, 33.3333333333, pct(results, "d"), 1e-6)
	assert.InDelta(t, 100, totalPct(results), epsilon)
}

func TestCalculate_WifeAndTwoSons(t *testing.T) {
	// GIVEN: A male owner with a wife and two sons
	// WHEN: Calculating
	// THEN: Wife 1/8, each son 7/16

	results := faraid.Calculate([]faraid.Heir{
		heir("w", "wife"), heir("s1", "son"), heir("s2", "son"),
	}, estate(160000), faraid.Male)

	assert.Equal(t, []string{"w", "s1", "s2"}, ids(results))
	assert.InDelta(t, 12.5, pct(results, "w"), epsilon)
	assert.InDelta(t, 43.75, pct(results, "s1"), epsilon)
	assert.InDelta(t, 43.75, pct(results, "s2"), epsilon)
	assert.InDelta(t, 70000, share(results, "s1"), epsilon)
	assert.InDelta(t, 100, totalPct(results), epsilon)
}

func TestCalculate_MotherOnly_Radd(t *testing.T) {
	// GIVEN: Only the mother survives
	// WHEN: Calculating
	// THEN: 1/3 fixed, Radd brings her to the whole estate in a single entry

	d := faraid.Compute([]faraid.Heir{heir("m", "mother")}, estate(30000), faraid.Male)

	require.Len(t, d.Results, 1)
	assert.Equal(t, faraid.ResidualRadd, d.Residual)
	assert.InDelta(t, 100, d.Results[0].Percentage.InexactFloat64(), epsilon)
	assert.InDelta(t, 30000, d.Results[0].Share.InexactFloat64(), epsilon)
	assert.Contains(t, d.Results[0].Explanation, "(Radd)")
}

func TestCalculate_UnrecognizedRelationship_Ignored(t *testing.T) {
	// GIVEN: A cousin alongside a son
	// WHEN: Calculating
	// THEN: The cousin gets nothing and the son gets everything

	with := faraid.Compute([]faraid.Heir{heir("c", "cousin"), heir("s", "son")}, estate(1000), faraid.Male)
	without := faraid.Calculate([]faraid.Heir{heir("s", "son")}, estate(1000), faraid.Male)

	assert.Equal(t, []string{"s"}, ids(with.Results))
	assert.InDelta(t, 100, pct(with.Results, "s"), epsilon)
	assert.Equal(t, without, with.Results)
	require.Len(t, with.Excluded, 1)
	assert.Equal(t, faraid.ExcludedUnrecognized, with.Excluded[0].Reason)
}

func TestCalculate_FatherAndMother_NoDescendants(t *testing.T) {
	// GIVEN: Both parents, no children or siblings
	// WHEN: Calculating
	// THEN: Mother 1/3, father takes the remaining 2/3 as residuary heir

	d := faraid.Compute([]faraid.Heir{heir("f", "father"), heir("m", "mother")}, estate(300), faraid.Female)

	assert.Equal(t, faraid.ResidualFather, d.Residual)
	assert.InDelta(t, 33.3333333333, pct(d.Results, "m"), 1e-6)
	assert.InDelta(t, 66.6666666667, pct(d.Results, "f"), 1e-6)
	assert.InDelta(t, 100, d.TotalPercentage().InexactFloat64(), epsilon)
}

func TestCalculate_ParentsAndTwoDaughters_ExactlyWhole(t *testing.T) {
	// GIVEN: Father, mother and two daughters (1/6 + 1/6 + 2/3)
	// WHEN: Calculating
	// THEN: Fixed shares cover exactly the estate; no 'awl, no residual

	d := faraid.Compute([]faraid.Heir{
		heir("f", "father"), heir("m", "mother"), heir("d1", "daughter"), heir("d2", "daughter"),
	}, estate(1200), faraid.Male)

	assert.False(t, d.AwlRequired)
	assert.True(t, d.TotalAllocated.Equal(decimal.NewFromInt(1)), "total allocated = %s", d.TotalAllocated)
	assert.Equal(t, faraid.ResidualNone, d.Residual)
	assert.InDelta(t, 200, share(d.Results, "f"), epsilon)
	assert.InDelta(t, 400, share(d.Results, "d1"), 1e-9)
}

func TestCalculate_HusbandAndTwoFullSisters_AwlFlagged(t *testing.T) {
	// GIVEN: Husband (1/2) and two full sisters (2/3)
	// WHEN: Calculating
	// THEN: Shares exceed the estate; flagged, not corrected

	d := faraid.Compute([]faraid.Heir{
		heir("h", "husband"), heir("s1", "sister"), heir("s2", "sister"),
	}, estate(600), faraid.Female)

	assert.True(t, d.AwlRequired)
	assert.Equal(t, faraid.ResidualNone, d.Residual)
	assert.True(t, d.Remainder.IsZero())
	assert.InDelta(t, 116.6666666667, d.TotalPercentage().InexactFloat64(), 1e-6)
	assert.InDelta(t, 300, share(d.Results, "h"), epsilon)
}

func TestCalculate_DaughterAndGranddaughter_Radd(t *testing.T) {
	// GIVEN: One daughter (1/2) and one granddaughter (1/6)
	// WHEN: Calculating
	// THEN: Remainder 1/3 returned 3:1, giving 3/4 and 1/4

	d := faraid.Compute([]faraid.Heir{heir("d", "daughter"), heir("g", "granddaughter")}, estate(400), faraid.Male)

	assert.Equal(t, faraid.ResidualRadd, d.Residual)
	assert.InDelta(t, 75, pct(d.Results, "d"), epsilon)
	assert.InDelta(t, 25, pct(d.Results, "g"), epsilon)
}

func TestCalculate_WifeAndMother_RaddIncludesSpouse(t *testing.T) {
	// GIVEN: Wife (1/4) and mother (1/3), no residuary heir
	// WHEN: Calculating
	// THEN: The 5/12 remainder is returned in proportion 1/4 : 1/3,
	//       so the wife ends at 3/7 and the mother at 4/7 rather than
	//       the wife keeping 1/4 and the mother taking 3/4

	d := faraid.Compute([]faraid.Heir{heir("w", "wife"), heir("m", "mother")}, estate(1000), faraid.Male)

	assert.Equal(t, faraid.ResidualRadd, d.Residual)
	assert.InDelta(t, 300.0/7, pct(d.Results, "w"), 1e-9)
	assert.InDelta(t, 400.0/7, pct(d.Results, "m"), 1e-9)
	assert.InDelta(t, 3000.0/7, share(d.Results, "w"), 1e-9)
	assert.InDelta(t, 4000.0/7, share(d.Results, "m"), 1e-9)
	assert.NotEqual(t, 25.0, pct(d.Results, "w"))
	assert.Contains(t, d.ResultsFor("w")[0].Explanation, "(Radd)")
	assert.InDelta(t, 100, d.TotalPercentage().InexactFloat64(), 1e-9)
}

func TestCalculate_NoHeirs(t *testing.T) {
	d := faraid.Compute(nil, estate(1000), faraid.Male)

	assert.Empty(t, d.Results)
	assert.True(t, d.TotalAllocated.IsZero())
	assert.Equal(t, faraid.ResidualUndistributed, d.Residual)
	assert.InDelta(t, 100, d.UncoveredPercentage().InexactFloat64(), epsilon)
}

func TestCalculate_LabelNormalization(t *testing.T) {
	results := faraid.Calculate([]faraid.Heir{
		heir("a", " Maternal Brother "), heir("b", "MATERNAL_SISTER"),
	}, estate(100), faraid.Male)

	// 1/3 split, then Radd returns the rest equally.
	assert.InDelta(t, 50, pct(results, "a"), epsilon)
	assert.InDelta(t, 50, pct(results, "b"), epsilon)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestCalculate_Idempotent(t *testing.T) {
	heirs := []faraid.Heir{
		heir("w", "wife"), heir("m", "mother"), heir("d1", "daughter"),
		heir("s", "son"), heir("x", "uncle"), heir("gf", "grandfather"),
	}
	first := faraid.Calculate(heirs, estate(987654), faraid.Male)
	second := faraid.Calculate(heirs, estate(987654), faraid.Male)
	assert.Equal(t, first, second)
}

func TestCalculate_SumIsHundred_WithResiduaryHeir(t *testing.T) {
	cases := [][]faraid.Heir{
		{heir("s", "son")},
		{heir("f", "father")},
		{heir("f", "father"), heir("w", "wife")},
		{heir("w", "wife"), heir("m", "mother"), heir("s", "son"), heir("d", "daughter")},
		{heir("h", "husband"), heir("s1", "son"), heir("s2", "son"), heir("d1", "daughter")},
		{heir("f", "father"), heir("m", "mother"), heir("b1", "brother"), heir("b2", "brother")},
		{heir("gm", "grandmother"), heir("s", "son"), heir("d1", "daughter"), heir("d2", "daughter"), heir("d3", "daughter")},
	}
	for i, heirs := range cases {
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			gender := faraid.Male
			if heirs[0].Relationship == "husband" {
				gender = faraid.Female
			}
			results := faraid.Calculate(heirs, estate(1000), gender)
			assert.InDelta(t, 100, totalPct(results), epsilon)
		})
	}
}

func TestCalculate_PerCapitaFairness(t *testing.T) {
	// GIVEN: Three daughters sharing 2/3
	// THEN: Each share is exactly (2/3 * estate) / 3 before Radd

	c := faraid.Classify([]faraid.Heir{
		heir("d1", "daughter"), heir("d2", "daughter"), heir("d3", "daughter"),
	}, faraid.Male)
	results, _ := faraid.ApplyFixedShares(c, estate(900))

	require.Len(t, results, 3)
	for _, r := range results {
		assert.InDelta(t, 200, r.Share.InexactFloat64(), epsilon)
		assert.True(t, r.Share.Equal(results[0].Share))
	}
}

func TestCalculate_SonDaughterRatioIsTwo(t *testing.T) {
	for sons := 1; sons <= 4; sons++ {
		for daughters := 1; daughters <= 4; daughters++ {
			var heirs []faraid.Heir
			for i := 0; i < sons; i++ {
				heirs = append(heirs, heir(fmt.Sprintf("s%d", i), "son"))
			}
			for i := 0; i < daughters; i++ {
				heirs = append(heirs, heir(fmt.Sprintf("d%d", i), "daughter"))
			}
			heirs = append(heirs, heir("w", "wife"))

			results := faraid.Calculate(heirs, estate(100000), faraid.Male)

			son := faraid.Distribution{Results: results}.ResultsFor("s0")
			daughter := faraid.Distribution{Results: results}.ResultsFor("d0")
			require.Len(t, son, 1)
			require.Len(t, daughter, 1)
			assert.True(t, son[0].Share.Div(daughter[0].Share).Equal(decimal.NewFromInt(2)),
				"sons=%d daughters=%d ratio=%s", sons, daughters, son[0].Share.Div(daughter[0].Share))
		}
	}
}

func TestCalculate_SpouseMustMatchOwnerGender(t *testing.T) {
	male := faraid.Compute([]faraid.Heir{heir("h", "husband"), heir("s", "son")}, estate(100), faraid.Male)
	assert.Empty(t, male.ResultsFor("h"))
	require.Len(t, male.Excluded, 1)
	assert.Equal(t, faraid.ExcludedSpouseMismatch, male.Excluded[0].Reason)

	female := faraid.Compute([]faraid.Heir{heir("w", "wife"), heir("s", "son")}, estate(100), faraid.Female)
	assert.Empty(t, female.ResultsFor("w"))
	assert.InDelta(t, 100, pct(female.Results, "s"), epsilon)
}
