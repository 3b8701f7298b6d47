package service

import (
	"sync"

	"medilink-client/internal/domain"
)

type patchKind int

const (
	patchUpsert patchKind = iota
	patchDelete
)

type pendingPatch struct {
	kind      patchKind
	equipment domain.Equipment
}

// inventory holds the last server snapshot plus local changes that have not
// been confirmed by a refetch yet. A refetch replaces the snapshot and drops
// every pending patch, so the server always wins.
type inventory struct {
	mu       sync.RWMutex
	snapshot []domain.Equipment
	pending  map[int64]pendingPatch
	order    []int64 // creation order of pending ids
}

func newInventory() *inventory {
	return &inventory{pending: make(map[int64]pendingPatch)}
}

// replace installs a fresh server snapshot and returns how many patches were dropped
func (inv *inventory) replace(items []domain.Equipment) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	dropped := len(inv.pending)
	inv.snapshot = append([]domain.Equipment(nil), items...)
	inv.pending = make(map[int64]pendingPatch)
	inv.order = nil
	return dropped
}

func (inv *inventory) upsert(eq domain.Equipment) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.track(eq.ID)
	inv.pending[eq.ID] = pendingPatch{kind: patchUpsert, equipment: eq}
}

func (inv *inventory) remove(id int64) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.track(id)
	inv.pending[id] = pendingPatch{kind: patchDelete, equipment: domain.Equipment{ID: id}}
}

func (inv *inventory) track(id int64) {
	if _, ok := inv.pending[id]; !ok {
		inv.order = append(inv.order, id)
	}
}

// view returns the snapshot with pending patches applied
func (inv *inventory) view() []domain.Equipment {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]domain.Equipment, 0, len(inv.snapshot)+len(inv.pending))
	seen := make(map[int64]bool, len(inv.snapshot))
	for _, eq := range inv.snapshot {
		seen[eq.ID] = true
		p, ok := inv.pending[eq.ID]
		switch {
		case !ok:
			out = append(out, eq)
		case p.kind == patchUpsert:
			out = append(out, p.equipment)
		}
	}
	for _, id := range inv.order {
		if p := inv.pending[id]; p.kind == patchUpsert && !seen[id] {
			out = append(out, p.equipment)
		}
	}
	return out
}
