/*
Package estate holds the records around a Faraid calculation: the estate
owner, their family members, registered assets and the distributions
computed for those assets.

PURPOSE:
  The faraid package is pure and knows nothing about storage. This package
  is the persistence-facing side: it defines the records, the Store
  interface both backends implement, and the glue that turns stored
  records into engine input and engine output into a stored Distribution.

ASSET REVIEW:
  Assets are registered as pending. An admin approves or rejects each one
  exactly once. Distributions are only computed for approved assets.

DISTRIBUTION HISTORY:
  Distributions are append-only. The latest one is current; earlier ones
  stay for audit. Each carries a fingerprint of its inputs so callers can
  tell when the family or the asset value changed after it was computed.

SEE ALSO:
  - store.go: Store interface
  - errors.go: Sentinel errors
  - store/memory.go: In-memory Store
  - ../store/sqlite: SQLite Store
*/
package estate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/amanah/faraid-engine/faraid"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORDS
// =============================================================================

// Owner is the person whose estate is being administered.
type Owner struct {
	ID        string
	FullName  string
	Gender    faraid.Gender
	CreatedAt time.Time
}

// FamilyMember is a relative registered against an owner. Relationship is
// kept as entered; the engine decides eligibility.
type FamilyMember struct {
	ID           string
	OwnerID      string
	FullName     string
	Relationship string
	IC           string
	CreatedAt    time.Time
}

// AssetStatus is the review state of an asset.
type AssetStatus string

const (
	AssetPending  AssetStatus = "pending"
	AssetApproved AssetStatus = "approved"
	AssetRejected AssetStatus = "rejected"
)

// Asset is one registered item of the estate.
type Asset struct {
	ID         string
	OwnerID    string
	Name       string
	Kind       string // e.g. "property", "savings", "vehicle"
	Value      decimal.Decimal
	Status     AssetStatus
	ReviewedBy string
	ReviewNote string
	ReviewedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Distribution is a stored calculation for one asset.
type Distribution struct {
	ID             string
	AssetID        string
	OwnerID        string
	EstateValue    decimal.Decimal
	Results        []faraid.Result
	TotalAllocated decimal.Decimal
	Remainder      decimal.Decimal
	Residual       faraid.Residual
	AwlRequired    bool
	Fingerprint    string
	CreatedAt      time.Time
}

// =============================================================================
// ENGINE GLUE
// =============================================================================

// NewID returns a fresh record ID.
func NewID() string {
	return uuid.NewString()
}

// Heirs converts family members to engine input.
func Heirs(members []FamilyMember) []faraid.Heir {
	heirs := make([]faraid.Heir, len(members))
	for i, m := range members {
		heirs[i] = faraid.Heir{
			ID:           m.ID,
			FullName:     m.FullName,
			Relationship: m.Relationship,
			IC:           m.IC,
		}
	}
	return heirs
}

// Fingerprint identifies a calculation's inputs, including the heir names
// copied into results. Heir order does not matter.
func Fingerprint(gender faraid.Gender, value decimal.Decimal, heirs []faraid.Heir) string {
	sorted := make([]faraid.Heir, len(heirs))
	copy(sorted, heirs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s", gender, value.String())
	for _, h := range sorted {
		fmt.Fprintf(&b, "|%s:%s:%q", h.ID, faraid.NormalizeLabel(h.Relationship), h.FullName)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Calculate runs the engine for an approved asset and returns a new,
// unsaved Distribution.
func Calculate(owner Owner, asset Asset, members []FamilyMember, now time.Time) (*Distribution, error) {
	if asset.Status != AssetApproved {
		return nil, &AssetStatusError{AssetID: asset.ID, Status: asset.Status, Want: AssetApproved}
	}
	if err := faraid.ValidateEstateValue(asset.Value); err != nil {
		return nil, err
	}

	heirs := Heirs(members)
	d := faraid.Compute(heirs, asset.Value, owner.Gender)

	return &Distribution{
		ID:             NewID(),
		AssetID:        asset.ID,
		OwnerID:        owner.ID,
		EstateValue:    asset.Value,
		Results:        d.Results,
		TotalAllocated: d.TotalAllocated,
		Remainder:      d.Remainder,
		Residual:       d.Residual,
		AwlRequired:    d.AwlRequired,
		Fingerprint:    Fingerprint(owner.Gender, asset.Value, heirs),
		CreatedAt:      now.UTC(),
	}, nil
}

// IsStale reports whether d was computed from inputs other than the current ones.
func (d *Distribution) IsStale(owner Owner, asset Asset, members []FamilyMember) bool {
	return d.Fingerprint != Fingerprint(owner.Gender, asset.Value, Heirs(members))
}

// TotalPercentage sums the stored results.
func (d *Distribution) TotalPercentage() decimal.Decimal {
	return faraid.Distribution{Results: d.Results}.TotalPercentage()
}

// Review moves a pending asset to approved or rejected.
func (a *Asset) Review(approve bool, reviewer, note string, now time.Time) error {
	if a.Status != AssetPending {
		return &AssetStatusError{AssetID: a.ID, Status: a.Status, Want: AssetPending}
	}
	if approve {
		a.Status = AssetApproved
	} else {
		a.Status = AssetRejected
	}
	at := now.UTC()
	a.ReviewedBy = reviewer
	a.ReviewNote = note
	a.ReviewedAt = &at
	a.UpdatedAt = at
	return nil
}
