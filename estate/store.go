/*
store.go - Persistence interface for estate records

PURPOSE:
  Defines the boundary between the estate workflow and the database.
  Handlers and the recalculation scheduler only talk to Store.

CONVENTIONS:
  - Get* returns (nil, nil) when the record does not exist.
  - Save* upserts by ID.
  - Distributions are append-only: SaveDistribution never overwrites.
  - List* returns records oldest first unless stated otherwise.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - estate/store: In-memory for tests and demos
*/
package estate

import "context"

// Store persists owners, family members, assets and distributions.
type Store interface {
	SaveOwner(ctx context.Context, o Owner) error
	GetOwner(ctx context.Context, id string) (*Owner, error)
	ListOwners(ctx context.Context) ([]Owner, error)

	SaveFamilyMember(ctx context.Context, m FamilyMember) error
	ListFamilyMembers(ctx context.Context, ownerID string) ([]FamilyMember, error)
	// DeleteFamilyMember returns ErrNotFound if the member does not belong to the owner.
	DeleteFamilyMember(ctx context.Context, ownerID, memberID string) error

	SaveAsset(ctx context.Context, a Asset) error
	GetAsset(ctx context.Context, id string) (*Asset, error)
	ListAssets(ctx context.Context, ownerID string) ([]Asset, error)
	ListAssetsByStatus(ctx context.Context, status AssetStatus) ([]Asset, error)

	// SaveDistribution appends a distribution to the asset's history.
	SaveDistribution(ctx context.Context, d Distribution) error
	// LatestDistribution returns the newest distribution for an asset, or nil.
	LatestDistribution(ctx context.Context, assetID string) (*Distribution, error)
	// ListDistributions returns an asset's history, newest first.
	ListDistributions(ctx context.Context, assetID string) ([]Distribution, error)

	// Reset removes every record. Demo use only.
	Reset(ctx context.Context) error
}
