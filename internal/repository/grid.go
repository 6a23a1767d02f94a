package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/tsunderebot/covers/internal/model"
)

var gridSchema = []string{
	`CREATE TABLE IF NOT EXISTS grids (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		manga      JSON,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_grids_user_created ON grids (user_id, created_at DESC, id DESC)`,
}

// EnsureSchema creates the grids table and its owner index if they are missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range gridSchema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure grid schema: %w", err)
		}
	}
	return nil
}

// CreateGrid inserts grid and sets its ID.
func (r *Repository) CreateGrid(ctx context.Context, grid *model.Grid) error {
	id := ulid.Make().String()

	query := `
		INSERT INTO grids (id, user_id, name, manga, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		id,
		grid.UserID,
		grid.Name,
		string(model.NormalizeManga(grid.Manga)),
		grid.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create grid: %w", err)
	}

	grid.ID = id
	return nil
}

// ListGridsByOwner returns every grid owned by userID, newest first.
func (r *Repository) ListGridsByOwner(ctx context.Context, userID string) ([]*model.Grid, error) {
	query := `
		SELECT id, user_id, name, manga, created_at
		FROM grids
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grids: %w", err)
	}
	defer rows.Close()

	grids := make([]*model.Grid, 0)
	for rows.Next() {
		grid, err := scanGrid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grid: %w", err)
		}
		grids = append(grids, grid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate grids: %w", err)
	}

	return grids, nil
}

func scanGrid(row pgx.Row) (*model.Grid, error) {
	var (
		grid  model.Grid
		manga []byte
	)
	if err := row.Scan(&grid.ID, &grid.UserID, &grid.Name, &manga, &grid.CreatedAt); err != nil {
		return nil, err
	}
	grid.Manga = model.NormalizeManga(manga)
	grid.CreatedAt = grid.CreatedAt.UTC()
	return &grid, nil
}
