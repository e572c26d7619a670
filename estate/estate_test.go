package estate_test

import (
	"context"
	"testing"
	"time"

	"github.com/amanah/faraid-engine/estate"
	"github.com/amanah/faraid-engine/estate/store"
	"github.com/amanah/faraid-engine/faraid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func owner(g faraid.Gender) estate.Owner {
	return estate.Owner{ID: "o1", FullName: "Siti binti Hassan", Gender: g, CreatedAt: now}
}

func asset(status estate.AssetStatus, value int64) estate.Asset {
	return estate.Asset{
		ID: "a1", OwnerID: "o1", Name: "Land", Kind: "property",
		Value: decimal.NewFromInt(value), Status: status, CreatedAt: now, UpdatedAt: now,
	}
}

func member(id, relationship string) estate.FamilyMember {
	return estate.FamilyMember{ID: id, OwnerID: "o1", FullName: "Member " + id, Relationship: relationship, CreatedAt: now}
}

// =============================================================================
// CALCULATE
// =============================================================================

func TestCalculate_ApprovedAsset(t *testing.T) {
	// GIVEN: A female owner survived by her husband and mother
	members := []estate.FamilyMember{member("h", "husband"), member("m", "mother")}

	// WHEN: Calculating for an approved asset
	d, err := estate.Calculate(owner(faraid.Female), asset(estate.AssetApproved, 60000), members, now)

	// THEN: The 1/6 remainder returns to both, 1/2 : 1/3, giving 3/5 and 2/5
	require.NoError(t, err)
	require.Len(t, d.Results, 2)
	assert.Equal(t, "a1", d.AssetID)
	assert.Equal(t, "o1", d.OwnerID)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, faraid.ResidualRadd, d.Residual)
	assert.False(t, d.AwlRequired)
	assert.InDelta(t, 36000.0, d.Results[0].Share.InexactFloat64(), 1e-6)
	assert.InDelta(t, 24000.0, d.Results[1].Share.InexactFloat64(), 1e-6)
	assert.InDelta(t, 100.0, d.TotalPercentage().InexactFloat64(), 1e-9)
	assert.True(t, now.Equal(d.CreatedAt))
}

func TestCalculate_RequiresApproval(t *testing.T) {
	for _, status := range []estate.AssetStatus{estate.AssetPending, estate.AssetRejected} {
		t.Run(string(status), func(t *testing.T) {
			_, err := estate.Calculate(owner(faraid.Male), asset(status, 1000), nil, now)

			require.Error(t, err)
			assert.ErrorIs(t, err, estate.ErrAssetNotApproved)
			assert.True(t, estate.IsConflict(err))

			var statusErr *estate.AssetStatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, status, statusErr.Status)
		})
	}
}

func TestCalculate_NegativeValueRejected(t *testing.T) {
	_, err := estate.Calculate(owner(faraid.Male), asset(estate.AssetApproved, -1), nil, now)

	assert.ErrorIs(t, err, faraid.ErrNegativeEstateValue)
	assert.True(t, estate.IsClientError(err))
}

func TestCalculate_ZeroValue(t *testing.T) {
	d, err := estate.Calculate(owner(faraid.Male), asset(estate.AssetApproved, 0), []estate.FamilyMember{member("s", "son")}, now)

	require.NoError(t, err)
	require.Len(t, d.Results, 1)
	assert.True(t, d.Results[0].Share.IsZero())
	assert.InDelta(t, 100.0, d.Results[0].Percentage.InexactFloat64(), 1e-9)
}

// =============================================================================
// REVIEW
// =============================================================================

func TestReview_ApproveOnce(t *testing.T) {
	a := asset(estate.AssetPending, 1000)

	require.NoError(t, a.Review(true, "admin@amanah", "title checked", now.Add(time.Hour)))
	assert.Equal(t, estate.AssetApproved, a.Status)
	assert.Equal(t, "admin@amanah", a.ReviewedBy)
	require.NotNil(t, a.ReviewedAt)
	assert.True(t, a.UpdatedAt.Equal(*a.ReviewedAt))

	// A reviewed asset cannot be reviewed again
	err := a.Review(false, "admin@amanah", "", now)
	assert.ErrorIs(t, err, estate.ErrAssetNotPending)
	assert.Equal(t, estate.AssetApproved, a.Status)
}

func TestReview_Reject(t *testing.T) {
	a := asset(estate.AssetPending, 1000)

	require.NoError(t, a.Review(false, "admin", "valuation missing", now))
	assert.Equal(t, estate.AssetRejected, a.Status)
	assert.Equal(t, "valuation missing", a.ReviewNote)
}

// =============================================================================
// FINGERPRINT / STALENESS
// =============================================================================

func TestFingerprint_IgnoresOrderAndLabelSpelling(t *testing.T) {
	v := decimal.NewFromInt(5000)
	a := []faraid.Heir{{ID: "1", Relationship: "Full Sister"}, {ID: "2", Relationship: "mother"}}
	b := []faraid.Heir{{ID: "2", Relationship: "MOTHER"}, {ID: "1", Relationship: "sister"}}

	// "full sister" normalizes to "fullsister", which differs from "sister"
	assert.NotEqual(t, estate.Fingerprint(faraid.Male, v, a), estate.Fingerprint(faraid.Male, v, b))

	b[1].Relationship = "full_sister"
	assert.Equal(t, estate.Fingerprint(faraid.Male, v, a), estate.Fingerprint(faraid.Male, v, b))
}

func TestFingerprint_ChangesWithInputs(t *testing.T) {
	heirs := []faraid.Heir{{ID: "1", Relationship: "son"}}
	base := estate.Fingerprint(faraid.Male, decimal.NewFromInt(100), heirs)

	assert.NotEqual(t, base, estate.Fingerprint(faraid.Female, decimal.NewFromInt(100), heirs))
	assert.NotEqual(t, base, estate.Fingerprint(faraid.Male, decimal.NewFromInt(101), heirs))
	assert.NotEqual(t, base, estate.Fingerprint(faraid.Male, decimal.NewFromInt(100), nil))
}

func TestIsStale_AfterFamilyChange(t *testing.T) {
	o := owner(faraid.Male)
	a := asset(estate.AssetApproved, 9000)
	members := []estate.FamilyMember{member("f", "father")}

	d, err := estate.Calculate(o, a, members, now)
	require.NoError(t, err)
	assert.False(t, d.IsStale(o, a, members))

	members = append(members, member("s", "son"))
	assert.True(t, d.IsStale(o, a, members))
}

func TestIsStale_AfterRename(t *testing.T) {
	// GIVEN: A distribution for a father recorded under his old name
	o := owner(faraid.Male)
	a := asset(estate.AssetApproved, 9000)
	members := []estate.FamilyMember{member("f", "father")}
	d, err := estate.Calculate(o, a, members, now)
	require.NoError(t, err)
	require.Equal(t, "Member f", d.Results[0].FullName)

	// WHEN: The member's name is corrected
	members[0].FullName = "Hassan bin Omar"

	// THEN: The stored results carry the old name, so the distribution is stale
	assert.True(t, d.IsStale(o, a, members))
}

// =============================================================================
// MEMORY STORE
// =============================================================================

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	// GIVEN: An owner with one pending asset and two members
	require.NoError(t, s.SaveOwner(ctx, owner(faraid.Male)))
	require.NoError(t, s.SaveAsset(ctx, asset(estate.AssetPending, 8000)))
	require.NoError(t, s.SaveFamilyMember(ctx, member("w", "wife")))
	require.NoError(t, s.SaveFamilyMember(ctx, member("d", "daughter")))

	pending, err := s.ListAssetsByStatus(ctx, estate.AssetPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// WHEN: Approving, calculating twice and saving both
	a := pending[0]
	require.NoError(t, a.Review(true, "admin", "", now))
	require.NoError(t, s.SaveAsset(ctx, a))

	members, err := s.ListFamilyMembers(ctx, "o1")
	require.NoError(t, err)
	o, err := s.GetOwner(ctx, "o1")
	require.NoError(t, err)

	first, err := estate.Calculate(*o, a, members, now)
	require.NoError(t, err)
	require.NoError(t, s.SaveDistribution(ctx, *first))
	second, err := estate.Calculate(*o, a, members, now.Add(time.Second))
	require.NoError(t, err)
	require.NoError(t, s.SaveDistribution(ctx, *second))

	// THEN: Latest is the second and history is newest first
	latest, err := s.LatestDistribution(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	history, err := s.ListDistributions(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[1].ID)

	// AND: Removing a member works once
	require.NoError(t, s.DeleteFamilyMember(ctx, "o1", "w"))
	assert.ErrorIs(t, s.DeleteFamilyMember(ctx, "o1", "w"), estate.ErrNotFound)

	require.NoError(t, s.Reset(ctx))
	missing, err := s.GetAsset(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// =============================================================================
// RECALCULATION
// =============================================================================

func TestRecalculate_AppendsAndClearsStaleness(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.SaveOwner(ctx, owner(faraid.Male)))
	require.NoError(t, s.SaveAsset(ctx, asset(estate.AssetApproved, 24000)))
	require.NoError(t, s.SaveFamilyMember(ctx, member("m", "mother")))

	// GIVEN: An approved asset with no distribution
	needs, err := estate.NeedsRecalculation(ctx, s, "a1")
	require.NoError(t, err)
	assert.True(t, needs)

	// WHEN: Recalculating
	d, err := estate.Recalculate(ctx, s, "a1", now)
	require.NoError(t, err)

	// THEN: The mother takes everything by Radd and the asset is current
	require.Len(t, d.Results, 1)
	assert.InDelta(t, 24000.0, d.Results[0].Share.InexactFloat64(), 1e-6)
	needs, err = estate.NeedsRecalculation(ctx, s, "a1")
	require.NoError(t, err)
	assert.False(t, needs)

	// AND: Adding a father makes it stale again
	require.NoError(t, s.SaveFamilyMember(ctx, member("f", "father")))
	needs, err = estate.NeedsRecalculation(ctx, s, "a1")
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestRecalculate_Errors(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	_, err := estate.Recalculate(ctx, s, "missing", now)
	assert.True(t, estate.IsNotFound(err))

	require.NoError(t, s.SaveOwner(ctx, owner(faraid.Female)))
	require.NoError(t, s.SaveAsset(ctx, asset(estate.AssetPending, 100)))

	_, err = estate.Recalculate(ctx, s, "a1", now)
	assert.ErrorIs(t, err, estate.ErrAssetNotApproved)

	needs, err := estate.NeedsRecalculation(ctx, s, "a1")
	require.NoError(t, err)
	assert.False(t, needs)

	history, err := s.ListDistributions(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, history)
}
