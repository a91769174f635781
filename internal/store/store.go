// Package store persists table snapshots so a table can be restored after a
// restart or a reconnect.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/lox/holdem/internal/game"
)

// ErrNotFound is returned when no snapshot is stored for a table.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore saves and loads snapshots by table ID. Implementations are
// safe for concurrent use.
type SnapshotStore interface {
	Save(ctx context.Context, tableID string, snap game.Snapshot) error
	Load(ctx context.Context, tableID string) (game.Snapshot, error)
	Delete(ctx context.Context, tableID string) error
}

// Memory keeps snapshots in process
type Memory struct {
	mu    sync.RWMutex
	snaps map[string]game.Snapshot
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{snaps: make(map[string]game.Snapshot)}
}

func (m *Memory) Save(ctx context.Context, tableID string, snap game.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// round trip so later changes to the caller's slices cannot leak in
	cp, err := clone(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[tableID] = cp
	return nil
}

func (m *Memory) Load(ctx context.Context, tableID string) (game.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return game.Snapshot{}, err
	}
	m.mu.RLock()
	snap, ok := m.snaps[tableID]
	m.mu.RUnlock()
	if !ok {
		return game.Snapshot{}, ErrNotFound
	}
	return clone(snap)
}

func (m *Memory) Delete(ctx context.Context, tableID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, tableID)
	return nil
}
