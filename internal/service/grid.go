// Package service provides business logic for the application.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/tsunderebot/covers/internal/apperror"
	"github.com/tsunderebot/covers/internal/metrics"
	"github.com/tsunderebot/covers/internal/model"
)

// Messages returned to clients when the store fails.
const (
	MsgSaveFailed  = "Failed to save"
	MsgFetchFailed = "Failed to fetch"
)

// GridRepository is the store the grid service reads and writes.
type GridRepository interface {
	CreateGrid(ctx context.Context, grid *model.Grid) error
	ListGridsByOwner(ctx context.Context, userID string) ([]*model.Grid, error)
}

// GridService handles grid business logic.
type GridService struct {
	repo    GridRepository
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

// NewGridService creates a new GridService.
func NewGridService(repo GridRepository, logger *slog.Logger, recorder metrics.Recorder) *GridService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &GridService{
		repo:    repo,
		logger:  logger,
		metrics: recorder,
		now:     time.Now,
	}
}

// CreateGridInput defines input for creating a grid.
// Name and Manga are stored as given.
type CreateGridInput struct {
	UserID string
	Name   string
	Manga  json.RawMessage
}

// Create stores a new grid for input.UserID and returns its id.
func (s *GridService) Create(ctx context.Context, input CreateGridInput) (string, error) {
	grid := model.NewGrid(input.UserID, input.Name, input.Manga, s.now().Truncate(time.Millisecond))

	if err := s.repo.CreateGrid(ctx, grid); err != nil {
		s.metrics.IncStoreError("create")
		s.logger.ErrorContext(ctx, "failed to save grid",
			slog.String("user_id", input.UserID),
			slog.String("error", err.Error()),
		)
		return "", apperror.Persistence(MsgSaveFailed, err)
	}

	s.metrics.IncGridCreated()
	return grid.ID, nil
}

// ListByOwner returns userID's grids, newest first. It never returns a nil slice.
func (s *GridService) ListByOwner(ctx context.Context, userID string) ([]*model.Grid, error) {
	grids, err := s.repo.ListGridsByOwner(ctx, userID)
	if err != nil {
		s.metrics.IncStoreError("list")
		s.logger.ErrorContext(ctx, "failed to fetch grids",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Persistence(MsgFetchFailed, err)
	}

	s.metrics.IncGridListed()
	if grids == nil {
		grids = []*model.Grid{}
	}
	return grids, nil
}
