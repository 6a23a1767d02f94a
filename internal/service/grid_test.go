package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tsunderebot/covers/internal/apperror"
	"github.com/tsunderebot/covers/internal/metrics"
	"github.com/tsunderebot/covers/internal/testutil"
)

func newTestGridService(t *testing.T) (*GridService, *testutil.MemoryGridStore, *metrics.InMemoryRecorder, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	store := testutil.NewMemoryGridStore()
	recorder := metrics.NewInMemory()
	return NewGridService(store, logger, recorder), store, recorder, &buf
}

func TestGridService_CreateThenList(t *testing.T) {
	svc, _, recorder, _ := newTestGridService(t)
	ctx := context.Background()

	manga := json.RawMessage(`[{"id":1,"title":"Berserk"}]`)
	id, err := svc.Create(ctx, CreateGridInput{UserID: "alice", Name: "Top 9", Manga: manga})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id == "" {
		t.Fatal("Create returned empty id")
	}

	grids, err := svc.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(grids) != 1 || grids[0].ID != id {
		t.Fatalf("got %+v, want one grid with id %s", grids, id)
	}
	if grids[0].Name != "Top 9" || string(grids[0].Manga) != string(manga) {
		t.Errorf("grid content mismatch: %+v", grids[0])
	}
	if grids[0].CreatedAt.IsZero() || grids[0].CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt = %v, want UTC timestamp", grids[0].CreatedAt)
	}

	snap := recorder.Snapshot()
	if snap.GridsCreated != 1 || snap.GridsListed != 1 {
		t.Errorf("metrics = %+v", snap)
	}
}

func TestGridService_OwnerIsolation(t *testing.T) {
	svc, _, _, _ := newTestGridService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateGridInput{UserID: "alice", Name: "mine"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	grids, err := svc.ListByOwner(ctx, "bob")
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	for _, g := range grids {
		if g.ID == id {
			t.Fatal("bob sees alice's grid")
		}
	}
}

func TestGridService_NewestFirst(t *testing.T) {
	svc, _, _, _ := newTestGridService(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	if _, err := svc.Create(ctx, CreateGridInput{UserID: "alice", Name: "A"}); err != nil {
		t.Fatalf("Create A: %v", err)
	}
	if _, err := svc.Create(ctx, CreateGridInput{UserID: "alice", Name: "B"}); err != nil {
		t.Fatalf("Create B: %v", err)
	}

	grids, err := svc.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(grids) != 2 || grids[0].Name != "B" || grids[1].Name != "A" {
		t.Fatalf("order wrong: %+v", grids)
	}
}

func TestGridService_EmptyOwnerIsEmptySlice(t *testing.T) {
	svc, _, _, _ := newTestGridService(t)

	grids, err := svc.ListByOwner(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if grids == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(grids) != 0 {
		t.Fatalf("got %d grids, want 0", len(grids))
	}
}

func TestGridService_MissingMangaStoredAsNull(t *testing.T) {
	svc, _, _, _ := newTestGridService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateGridInput{UserID: "alice"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	grids, _ := svc.ListByOwner(ctx, "alice")
	if len(grids) != 1 || string(grids[0].Manga) != "null" || grids[0].Name != "" {
		t.Fatalf("got %+v, want unnamed grid with null manga", grids)
	}
}

func TestGridService_StoreFailures(t *testing.T) {
	storeErr := errors.New("connection refused")

	t.Run("create", func(t *testing.T) {
		svc, store, recorder, logs := newTestGridService(t)
		store.SetErr(storeErr)

		_, err := svc.Create(context.Background(), CreateGridInput{UserID: "alice"})
		if apperror.KindOf(err) != apperror.KindPersistence {
			t.Fatalf("kind = %v, want persistence", apperror.KindOf(err))
		}
		if apperror.MessageOf(err) != MsgSaveFailed {
			t.Errorf("message = %q", apperror.MessageOf(err))
		}
		if !errors.Is(err, storeErr) {
			t.Error("cause should be preserved")
		}
		if recorder.Snapshot().StoreCreateErrors != 1 {
			t.Error("store create error not counted")
		}
		if !strings.Contains(logs.String(), "failed to save grid") {
			t.Errorf("failure not logged: %s", logs.String())
		}
	})

	t.Run("list", func(t *testing.T) {
		svc, store, recorder, logs := newTestGridService(t)
		store.SetErr(storeErr)

		grids, err := svc.ListByOwner(context.Background(), "alice")
		if grids != nil {
			t.Errorf("grids = %v, want nil on error", grids)
		}
		if apperror.KindOf(err) != apperror.KindPersistence {
			t.Fatalf("kind = %v, want persistence", apperror.KindOf(err))
		}
		if apperror.MessageOf(err) != MsgFetchFailed {
			t.Errorf("message = %q", apperror.MessageOf(err))
		}
		if recorder.Snapshot().StoreListErrors != 1 {
			t.Error("store list error not counted")
		}
		if !strings.Contains(logs.String(), "failed to fetch grids") {
			t.Errorf("failure not logged: %s", logs.String())
		}
	})
}

func TestGridService_NilRecorderAndLogger(t *testing.T) {
	svc := NewGridService(testutil.NewMemoryGridStore(), nil, nil)
	if _, err := svc.Create(context.Background(), CreateGridInput{UserID: "alice"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
}
