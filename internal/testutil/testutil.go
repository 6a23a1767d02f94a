// Package testutil holds shared helpers for tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tsunderebot/covers/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// ============================================================================
// In-memory grid store
// ============================================================================

// MemoryGridStore is a concurrency-safe grid store for handler and service tests.
// Set Err or PingErr to make the matching calls fail.
type MemoryGridStore struct {
	mu      sync.Mutex
	grids   []*model.Grid
	creates atomic.Int64
	lists   atomic.Int64

	Err     error
	PingErr error
}

// NewMemoryGridStore returns an empty store.
func NewMemoryGridStore() *MemoryGridStore {
	return &MemoryGridStore{}
}

// CreateGrid stores a copy of grid and assigns it a ULID.
func (s *MemoryGridStore) CreateGrid(ctx context.Context, grid *model.Grid) error {
	s.creates.Add(1)
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	grid.ID = ulid.Make().String()
	stored := *grid
	s.grids = append(s.grids, &stored)
	return nil
}

// ListGridsByOwner returns copies of the owner's grids, newest first.
func (s *MemoryGridStore) ListGridsByOwner(ctx context.Context, userID string) ([]*model.Grid, error) {
	s.lists.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	out := make([]*model.Grid, 0)
	for _, g := range s.grids {
		if g.UserID == userID {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Ping returns PingErr.
func (s *MemoryGridStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.PingErr
}

// Close is a no-op.
func (s *MemoryGridStore) Close(context.Context) error {
	return nil
}

// SetErr makes later CreateGrid and ListGridsByOwner calls fail with err.
func (s *MemoryGridStore) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

// Creates reports how many CreateGrid calls were made.
func (s *MemoryGridStore) Creates() int64 { return s.creates.Load() }

// Lists reports how many ListGridsByOwner calls were made.
func (s *MemoryGridStore) Lists() int64 { return s.lists.Load() }

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestGrid creates a grid with two manga entries, stamped to millisecond precision.
func NewTestGrid(t testing.TB, userID, name string) *model.Grid {
	t.Helper()
	manga, err := json.Marshal([]map[string]any{
		{"id": 30002, "title": "Berserk", "cover": "https://img.example/berserk.jpg"},
		{"id": 30001, "title": "Monster", "cover": "https://img.example/monster.jpg"},
	})
	if err != nil {
		t.Fatalf("marshal manga: %v", err)
	}
	return model.NewGrid(userID, name, manga, time.Now().Truncate(time.Millisecond))
}

var uniqueSeq atomic.Uint64

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), uniqueSeq.Add(1))
}
