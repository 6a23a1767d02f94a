// Package handler provides HTTP request handlers.
package handler

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/tsunderebot/covers/internal/apperror"
)

// Handler serves the router's fallback responses.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusNotFound, map[string]string{
		"error": "resource not found",
	})
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

// writeError writes {"error": message} with the status for err's kind.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, r, apperror.KindOf(err).HTTPStatus(), map[string]string{
		"error": apperror.MessageOf(err),
	})
}

// writeTextError writes err's message as plain text with the status for its kind.
func writeTextError(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, apperror.KindOf(err).HTTPStatus())
	render.PlainText(w, r, apperror.MessageOf(err))
}
