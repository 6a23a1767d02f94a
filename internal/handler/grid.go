package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tsunderebot/covers/internal/apperror"
	"github.com/tsunderebot/covers/internal/auth"
	"github.com/tsunderebot/covers/internal/handler/dto"
	"github.com/tsunderebot/covers/internal/service"
)

// MsgInvalidBody is returned when a request body is not valid JSON.
const MsgInvalidBody = "Invalid request body"

var errMissingGrid = errors.New("request body has no grid object")

// GridHandler handles HTTP requests for grid operations.
// Routes must sit behind the auth middleware.
type GridHandler struct {
	svc    *service.GridService
	logger *slog.Logger
}

// NewGridHandler creates a new GridHandler.
func NewGridHandler(svc *service.GridService, logger *slog.Logger) *GridHandler {
	return &GridHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/grids.
func (h *GridHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())

	var req dto.CreateGridRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, r, http.StatusRequestEntityTooLarge, map[string]string{
				"error": "Request body too large",
			})
			return
		}
		writeError(w, r, apperror.BadRequest(MsgInvalidBody, err))
		return
	}

	if req.Grid == nil {
		h.rejectGrid(w, r, userID, errMissingGrid)
		return
	}
	name, err := req.Grid.NameText()
	if err != nil {
		h.rejectGrid(w, r, userID, err)
		return
	}

	id, err := h.svc.Create(r.Context(), service.CreateGridInput{
		UserID: userID,
		Name:   name,
		Manga:  req.Grid.Manga,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.logger.Info("grid_created",
		"grid_id", id,
		"user_id", userID,
	)

	writeJSON(w, r, http.StatusOK, dto.CreateGridResponse{OK: true, ID: id})
}

// rejectGrid answers a grid that cannot be built with the same failure a store error gives.
func (h *GridHandler) rejectGrid(w http.ResponseWriter, r *http.Request, userID string, cause error) {
	h.logger.Warn("grid_rejected",
		"user_id", userID,
		"error", cause,
	)
	writeError(w, r, apperror.Persistence(service.MsgSaveFailed, cause))
}

// List handles GET /api/grids.
func (h *GridHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())

	grids, err := h.svc.ListByOwner(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToListGridsResponse(grids))
}
