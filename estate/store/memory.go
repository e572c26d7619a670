// Package store provides an in-memory estate.Store.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/amanah/faraid-engine/estate"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu            sync.RWMutex
	owners        map[string]estate.Owner
	members       map[string][]estate.FamilyMember // by owner
	assets        map[string]estate.Asset
	distributions map[string][]estate.Distribution // by asset, oldest first
	seq           int64
	order         map[string]int64 // insertion order for owners and assets
}

func NewMemory() *Memory {
	m := &Memory{}
	m.reset()
	return m
}

func (m *Memory) reset() {
	m.owners = make(map[string]estate.Owner)
	m.members = make(map[string][]estate.FamilyMember)
	m.assets = make(map[string]estate.Asset)
	m.distributions = make(map[string][]estate.Distribution)
	m.order = make(map[string]int64)
	m.seq = 0
}

func (m *Memory) touch(id string) {
	if _, ok := m.order[id]; !ok {
		m.seq++
		m.order[id] = m.seq
	}
}

// ---- owners ----

func (m *Memory) SaveOwner(_ context.Context, o estate.Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.owners[o.ID]; ok && o.CreatedAt.IsZero() {
		o.CreatedAt = existing.CreatedAt
	}
	m.owners[o.ID] = o
	m.touch(o.ID)
	return nil
}

func (m *Memory) GetOwner(_ context.Context, id string) (*estate.Owner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.owners[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *Memory) ListOwners(_ context.Context) ([]estate.Owner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]estate.Owner, 0, len(m.owners))
	for _, o := range m.owners {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return m.order[out[i].ID] < m.order[out[j].ID] })
	return out, nil
}

// ---- family members ----

func (m *Memory) SaveFamilyMember(_ context.Context, fm estate.FamilyMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.members[fm.OwnerID]
	for i, existing := range list {
		if existing.ID == fm.ID {
			list[i] = fm
			return nil
		}
	}
	m.members[fm.OwnerID] = append(list, fm)
	return nil
}

func (m *Memory) ListFamilyMembers(_ context.Context, ownerID string) ([]estate.FamilyMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]estate.FamilyMember, len(m.members[ownerID]))
	copy(out, m.members[ownerID])
	return out, nil
}

func (m *Memory) DeleteFamilyMember(_ context.Context, ownerID, memberID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.members[ownerID]
	for i, existing := range list {
		if existing.ID == memberID {
			m.members[ownerID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return estate.ErrNotFound
}

// ---- assets ----

func (m *Memory) SaveAsset(_ context.Context, a estate.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[a.ID] = a
	m.touch(a.ID)
	return nil
}

func (m *Memory) GetAsset(_ context.Context, id string) (*estate.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assets[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *Memory) ListAssets(_ context.Context, ownerID string) ([]estate.Asset, error) {
	return m.filterAssets(func(a estate.Asset) bool { return a.OwnerID == ownerID }), nil
}

func (m *Memory) ListAssetsByStatus(_ context.Context, status estate.AssetStatus) ([]estate.Asset, error) {
	return m.filterAssets(func(a estate.Asset) bool { return a.Status == status }), nil
}

func (m *Memory) filterAssets(keep func(estate.Asset) bool) []estate.Asset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []estate.Asset
	for _, a := range m.assets {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return m.order[out[i].ID] < m.order[out[j].ID] })
	return out
}

// ---- distributions ----

// SaveDistribution appends. Append-only, like the SQLite store.
func (m *Memory) SaveDistribution(_ context.Context, d estate.Distribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distributions[d.AssetID] = append(m.distributions[d.AssetID], d)
	return nil
}

func (m *Memory) LatestDistribution(_ context.Context, assetID string) (*estate.Distribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history := m.distributions[assetID]
	if len(history) == 0 {
		return nil, nil
	}
	d := history[len(history)-1]
	return &d, nil
}

func (m *Memory) ListDistributions(_ context.Context, assetID string) ([]estate.Distribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history := m.distributions[assetID]
	out := make([]estate.Distribution, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		out = append(out, history[i])
	}
	return out, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	return nil
}

var _ estate.Store = (*Memory)(nil)
