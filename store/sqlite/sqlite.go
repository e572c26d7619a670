/*
Package sqlite provides a SQLite-backed implementation of estate.Store.

PURPOSE:
  Persists owners, family members, assets and the distribution history
  computed for each asset.

APPEND-ONLY DISTRIBUTIONS:
  The distributions table is never updated. A recalculation inserts a new
  row; the newest row per asset is the current distribution.

KEY TABLES:
  owners:          Estate owners (gender decides the eligible spouse)
  family_members:  Relatives as entered, label kept verbatim
  assets:          Registered assets with review state
  distributions:   Calculation history, results as JSON

MONEY:
  Values and fractions are stored as decimal strings, never REAL.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode.

USAGE:
  store, err := sqlite.New("./data/faraid.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - estate/store.go: Interface definition
  - estate/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/amanah/faraid-engine/estate"
	"github.com/amanah/faraid-engine/faraid"
	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store implements estate.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ estate.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every new connection to :memory: is a fresh, empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS owners (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		gender TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS family_members (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
		full_name TEXT NOT NULL,
		relationship TEXT NOT NULL,
		ic TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_family_members_owner
		ON family_members(owner_id, created_at);

	CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		kind TEXT,
		value TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		reviewed_by TEXT,
		review_note TEXT,
		reviewed_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assets_owner
		ON assets(owner_id);
	CREATE INDEX IF NOT EXISTS idx_assets_status
		ON assets(status);

	-- Distributions (append-only history)
	CREATE TABLE IF NOT EXISTS distributions (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		asset_id TEXT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
		owner_id TEXT NOT NULL,
		estate_value TEXT NOT NULL,
		results_json TEXT NOT NULL,
		total_allocated TEXT NOT NULL,
		remainder TEXT NOT NULL,
		residual TEXT NOT NULL,
		awl_required BOOLEAN NOT NULL DEFAULT FALSE,
		fingerprint TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_distributions_asset
		ON distributions(asset_id, seq DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// OWNER STORE
// =============================================================================

// SaveOwner saves an owner.
func (s *Store) SaveOwner(ctx context.Context, o estate.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO owners (id, full_name, gender, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			gender = excluded.gender
	`

	_, err := s.db.ExecContext(ctx, query,
		o.ID, o.FullName, o.Gender.String(), formatTime(o.CreatedAt),
	)
	return err
}

// GetOwner retrieves an owner by ID.
func (s *Store) GetOwner(ctx context.Context, id string) (*estate.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, full_name, gender, created_at FROM owners WHERE id = ?", id)
	o, err := scanOwner(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOwners returns all owners.
func (s *Store) ListOwners(ctx context.Context) ([]estate.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, full_name, gender, created_at FROM owners ORDER BY created_at, rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []estate.Owner
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

func scanOwner(row scanner) (estate.Owner, error) {
	var o estate.Owner
	var gender, createdAt string
	if err := row.Scan(&o.ID, &o.FullName, &gender, &createdAt); err != nil {
		return o, err
	}
	o.Gender, _ = faraid.ParseGender(gender)
	o.CreatedAt = parseTime(createdAt)
	return o, nil
}

// =============================================================================
// FAMILY MEMBER STORE
// =============================================================================

// SaveFamilyMember saves a family member.
func (s *Store) SaveFamilyMember(ctx context.Context, m estate.FamilyMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO family_members (id, owner_id, full_name, relationship, ic, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			relationship = excluded.relationship,
			ic = excluded.ic
	`

	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.OwnerID, m.FullName, m.Relationship, nullString(m.IC), formatTime(m.CreatedAt),
	)
	return err
}

// ListFamilyMembers returns an owner's family in registration order.
func (s *Store) ListFamilyMembers(ctx context.Context, ownerID string) ([]estate.FamilyMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, full_name, relationship, ic, created_at
		FROM family_members
		WHERE owner_id = ?
		ORDER BY created_at, rowid
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family members: %w", err)
	}
	defer rows.Close()

	var members []estate.FamilyMember
	for rows.Next() {
		var m estate.FamilyMember
		var ic sql.NullString
		var createdAt string
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.FullName, &m.Relationship, &ic, &createdAt); err != nil {
			return nil, err
		}
		m.IC = ic.String
		m.CreatedAt = parseTime(createdAt)
		members = append(members, m)
	}
	return members, rows.Err()
}

// DeleteFamilyMember removes a member of the given owner's family.
func (s *Store) DeleteFamilyMember(ctx context.Context, ownerID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM family_members WHERE id = ? AND owner_id = ?", memberID, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return estate.ErrNotFound
	}
	return nil
}

// =============================================================================
// ASSET STORE
// =============================================================================

const assetColumns = `id, owner_id, name, kind, value, status, reviewed_by, review_note, reviewed_at, created_at, updated_at`

// SaveAsset saves an asset.
func (s *Store) SaveAsset(ctx context.Context, a estate.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO assets (` + assetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			value = excluded.value,
			status = excluded.status,
			reviewed_by = excluded.reviewed_by,
			review_note = excluded.review_note,
			reviewed_at = excluded.reviewed_at,
			updated_at = excluded.updated_at
	`

	var reviewedAt sql.NullString
	if a.ReviewedAt != nil {
		reviewedAt = nullString(formatTime(*a.ReviewedAt))
	}

	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.OwnerID, a.Name, nullString(a.Kind), a.Value.String(), string(a.Status),
		nullString(a.ReviewedBy), nullString(a.ReviewNote), reviewedAt,
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	return err
}

// GetAsset retrieves an asset by ID.
func (s *Store) GetAsset(ctx context.Context, id string) (*estate.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+assetColumns+" FROM assets WHERE id = ?", id)
	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAssets returns an owner's assets.
func (s *Store) ListAssets(ctx context.Context, ownerID string) ([]estate.Asset, error) {
	return s.queryAssets(ctx, "SELECT "+assetColumns+" FROM assets WHERE owner_id = ? ORDER BY created_at, rowid", ownerID)
}

// ListAssetsByStatus returns every asset in the given review state.
func (s *Store) ListAssetsByStatus(ctx context.Context, status estate.AssetStatus) ([]estate.Asset, error) {
	return s.queryAssets(ctx, "SELECT "+assetColumns+" FROM assets WHERE status = ? ORDER BY created_at, rowid", string(status))
}

func (s *Store) queryAssets(ctx context.Context, query string, args ...any) ([]estate.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []estate.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func scanAsset(row scanner) (estate.Asset, error) {
	var a estate.Asset
	var kind, reviewedBy, reviewNote, reviewedAt sql.NullString
	var value, status, createdAt, updatedAt string

	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &kind, &value, &status,
		&reviewedBy, &reviewNote, &reviewedAt, &createdAt, &updatedAt)
	if err != nil {
		return a, err
	}

	if a.Value, err = parseDecimal("value", value); err != nil {
		return a, fmt.Errorf("asset %s: %w", a.ID, err)
	}
	a.Kind = kind.String
	a.Status = estate.AssetStatus(status)
	a.ReviewedBy = reviewedBy.String
	a.ReviewNote = reviewNote.String
	if reviewedAt.Valid {
		t := parseTime(reviewedAt.String)
		a.ReviewedAt = &t
	}
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	return a, nil
}

// =============================================================================
// DISTRIBUTION STORE (append-only)
// =============================================================================

const distributionColumns = `id, asset_id, owner_id, estate_value, results_json, total_allocated, remainder, residual, awl_required, fingerprint, created_at`

// SaveDistribution appends a distribution to an asset's history.
func (s *Store) SaveDistribution(ctx context.Context, d estate.Distribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resultsJSON, err := json.Marshal(d.Results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	query := `
		INSERT INTO distributions (seq, ` + distributionColumns + `)
		VALUES ((SELECT COALESCE(MAX(seq), 0) + 1 FROM distributions), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		d.ID, d.AssetID, d.OwnerID, d.EstateValue.String(), string(resultsJSON),
		d.TotalAllocated.String(), d.Remainder.String(), string(d.Residual),
		d.AwlRequired, d.Fingerprint, formatTime(d.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append distribution: %w", err)
	}
	return nil
}

// LatestDistribution returns the newest distribution for an asset.
func (s *Store) LatestDistribution(ctx context.Context, assetID string) (*estate.Distribution, error) {
	history, err := s.queryDistributions(ctx,
		"SELECT "+distributionColumns+" FROM distributions WHERE asset_id = ? ORDER BY seq DESC LIMIT 1", assetID)
	if err != nil || len(history) == 0 {
		return nil, err
	}
	return &history[0], nil
}

// ListDistributions returns an asset's history, newest first.
func (s *Store) ListDistributions(ctx context.Context, assetID string) ([]estate.Distribution, error) {
	return s.queryDistributions(ctx,
		"SELECT "+distributionColumns+" FROM distributions WHERE asset_id = ? ORDER BY seq DESC", assetID)
}

func (s *Store) queryDistributions(ctx context.Context, query string, args ...any) ([]estate.Distribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query distributions: %w", err)
	}
	defer rows.Close()

	var out []estate.Distribution
	for rows.Next() {
		var d estate.Distribution
		var estateValue, resultsJSON, total, remainder, residual, createdAt string

		err := rows.Scan(&d.ID, &d.AssetID, &d.OwnerID, &estateValue, &resultsJSON,
			&total, &remainder, &residual, &d.AwlRequired, &d.Fingerprint, &createdAt)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(resultsJSON), &d.Results); err != nil {
			return nil, fmt.Errorf("failed to decode results of %s: %w", d.ID, err)
		}
		if d.EstateValue, err = parseDecimal("estate_value", estateValue); err != nil {
			return nil, fmt.Errorf("distribution %s: %w", d.ID, err)
		}
		if d.TotalAllocated, err = parseDecimal("total_allocated", total); err != nil {
			return nil, fmt.Errorf("distribution %s: %w", d.ID, err)
		}
		if d.Remainder, err = parseDecimal("remainder", remainder); err != nil {
			return nil, fmt.Errorf("distribution %s: %w", d.ID, err)
		}
		d.Residual = faraid.Residual(residual)
		d.CreatedAt = parseTime(createdAt)
		out = append(out, d)
	}
	return out, rows.Err()
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"distributions", "assets", "family_members", "owners"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// Helper functions

// timeLayout has fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type scanner interface {
	Scan(dest ...any) error
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func parseDecimal(column, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt %s %q: %w", column, s, err)
	}
	return d, nil
}
