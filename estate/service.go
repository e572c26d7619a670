package estate

import (
	"context"
	"fmt"
	"time"
)

// Inputs are the stored records a calculation for one asset reads.
type Inputs struct {
	Owner   Owner
	Asset   Asset
	Members []FamilyMember
}

// LoadInputs reads an asset together with its owner and family.
func LoadInputs(ctx context.Context, s Store, assetID string) (*Inputs, error) {
	asset, err := s.GetAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	if asset == nil {
		return nil, fmt.Errorf("asset %s: %w", assetID, ErrNotFound)
	}
	owner, err := s.GetOwner(ctx, asset.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	if owner == nil {
		return nil, fmt.Errorf("owner %s of asset %s: %w", asset.OwnerID, assetID, ErrNotFound)
	}
	members, err := s.ListFamilyMembers(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	return &Inputs{Owner: *owner, Asset: *asset, Members: members}, nil
}

// Recalculate computes a fresh distribution for an asset from the stored
// family and appends it to the asset's history.
func Recalculate(ctx context.Context, s Store, assetID string, now time.Time) (*Distribution, error) {
	in, err := LoadInputs(ctx, s, assetID)
	if err != nil {
		return nil, err
	}
	d, err := Calculate(in.Owner, in.Asset, in.Members, now)
	if err != nil {
		return nil, err
	}
	if err := s.SaveDistribution(ctx, *d); err != nil {
		return nil, fmt.Errorf("failed to save distribution: %w", err)
	}
	return d, nil
}

// NeedsRecalculation reports whether an approved asset has no distribution
// yet, or only a stale one. Other assets never need one.
func NeedsRecalculation(ctx context.Context, s Store, assetID string) (bool, error) {
	in, err := LoadInputs(ctx, s, assetID)
	if err != nil {
		return false, err
	}
	if in.Asset.Status != AssetApproved {
		return false, nil
	}
	latest, err := s.LatestDistribution(ctx, assetID)
	if err != nil {
		return false, fmt.Errorf("failed to get latest distribution: %w", err)
	}
	if latest == nil {
		return true, nil
	}
	return latest.IsStale(in.Owner, in.Asset, in.Members), nil
}
