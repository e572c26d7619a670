package faraid_test

import (
	"testing"

	"github.com/amanah/faraid-engine/faraid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_PartitionsEveryHeir(t *testing.T) {
	// GIVEN: One heir of every recognised label plus noise
	// WHEN: Classifying for a male owner
	// THEN: Each heir is either placed once or excluded once

	heirs := []faraid.Heir{
		heir("1", "son"), heir("2", "daughter"), heir("3", "father"), heir("4", "mother"),
		heir("5", "grandfather"), heir("6", "grandmother"), heir("7", "husband"), heir("8", "wife"),
		heir("9", "brother"), heir("10", "sister"), heir("11", "maternalbrother"), heir("12", "maternalsister"),
		heir("13", "paternalbrother"), heir("14", "paternalsister"), heir("15", "grandson"), heir("16", "granddaughter"),
		heir("17", "cousin"), heir("18", "mother"),
	}

	c := faraid.Classify(heirs, faraid.Male)

	seen := map[string]int{}
	for _, h := range c.Classified() {
		seen[h.ID]++
	}
	for _, e := range c.Excluded {
		seen[e.Heir.ID]++
	}
	require.Len(t, seen, len(heirs))
	for id, n := range seen {
		assert.Equal(t, 1, n, "heir %s", id)
	}

	assert.Nil(t, c.Husband)
	require.NotNil(t, c.Wife)
	assert.Equal(t, "8", c.Wife.ID)
	require.NotNil(t, c.Mother)
	assert.Equal(t, "4", c.Mother.ID, "first mother keeps the slot")

	reasons := map[string]faraid.ExclusionReason{}
	for _, e := range c.Excluded {
		reasons[e.Heir.ID] = e.Reason
	}
	assert.Equal(t, map[string]faraid.ExclusionReason{
		"7":  faraid.ExcludedSpouseMismatch,
		"17": faraid.ExcludedUnrecognized,
		"18": faraid.ExcludedDuplicateRole,
	}, reasons)
}

func TestClassify_SiblingTiers(t *testing.T) {
	c := faraid.Classify([]faraid.Heir{
		heir("a", "brother"), heir("b", "sister"), heir("c", "sister"),
		heir("d", "maternal sister"), heir("e", "paternal brother"), heir("m", "mother"),
	}, faraid.Female)

	assert.Len(t, c.FullBrothers, 1)
	assert.Len(t, c.FullSisters, 2)
	assert.Len(t, c.MaternalSisters, 1)
	assert.Len(t, c.PaternalBrothers, 1)
	assert.Equal(t, 5, c.SiblingCount())
	assert.True(t, c.HasMultipleSiblings())
	assert.False(t, c.HasDescendants())
	assert.False(t, c.HasMaleAscendants())
}

func TestClassify_DerivedFacts(t *testing.T) {
	c := faraid.Classify([]faraid.Heir{heir("g", "granddaughter"), heir("gf", "grandfather")}, faraid.Male)
	assert.True(t, c.HasDescendants(), "grandchildren count as descendants")
	assert.True(t, c.HasMaleAscendants(), "grandfather counts as male ascendant")
}

func TestClassify_MaternalSiblingsKeepInputOrder(t *testing.T) {
	c := faraid.Classify([]faraid.Heir{
		heir("s1", "maternalsister"), heir("b1", "maternalbrother"), heir("s2", "maternalsister"),
	}, faraid.Male)

	var got []string
	for _, h := range c.MaternalSiblings() {
		got = append(got, h.ID)
	}
	assert.Equal(t, []string{"s1", "b1", "s2"}, got)
}

func TestClassify_UnknownOwnerGenderDropsBothSpouses(t *testing.T) {
	c := faraid.Classify([]faraid.Heir{heir("h", "husband"), heir("w", "wife")}, faraid.GenderUnknown)
	assert.Nil(t, c.Husband)
	assert.Nil(t, c.Wife)
	assert.Len(t, c.Excluded, 2)
}
