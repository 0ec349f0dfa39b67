// Package httpapi provides the REST HTTP adapter mounted under `/api/v1`.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hylla/strand/internal/app"
	"github.com/hylla/strand/internal/domain"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Service is the application surface the REST adapter exposes.
type Service interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id string) (domain.Event, error)
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	UpdateEvent(ctx context.Context, in app.UpdateEventInput) (domain.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ExportSnapshot(ctx context.Context) (app.Snapshot, error)
	ImportEvents(ctx context.Context, records []app.EventRecord, replace bool) (int, error)
}

// Handler serves the versioned API subrouter.
type Handler struct {
	svc Service
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// eventPayload is the wire shape for one event.
type eventPayload struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Start        string `json:"start"`
	End          string `json:"end"`
	DurationDays int    `json:"duration_days"`
	Notes        string `json:"notes,omitempty"`
}

// createEventRequest is the POST /events body.
type createEventRequest struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
	Notes string `json:"notes"`
}

// updateEventRequest is the PATCH /events/{id} body. Absent fields are
// left untouched.
type updateEventRequest struct {
	Name  *string `json:"name"`
	Start *string `json:"start"`
	End   *string `json:"end"`
	Notes *string `json:"notes"`
}

// importRequest is the POST /import body.
type importRequest struct {
	Replace bool              `json:"replace"`
	Events  []app.EventRecord `json:"events"`
}

// NewHandler constructs the HTTP API adapter.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := normalizePath(r.URL.Path)
	switch {
	case path == "events":
		switch r.Method {
		case http.MethodGet:
			h.handleListEvents(w, r)
		case http.MethodPost:
			h.handleCreateEvent(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case path == "export":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleExport(w, r)
	case path == "import":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleImport(w, r)
	default:
		eventID, ok := resolveEventID(path)
		if !ok {
			writeJSONError(w, http.StatusNotFound, APIError{
				Code:    "not_found",
				Message: "endpoint not found",
			})
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.handleGetEvent(w, r, eventID)
		case http.MethodPatch:
			h.handleUpdateEvent(w, r, eventID)
		case http.MethodDelete:
			h.handleDeleteEvent(w, r, eventID)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPatch, http.MethodDelete)
		}
	}
}

// handleListEvents serves GET `/events`.
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	payloads := make([]eventPayload, 0, len(events))
	for _, event := range events {
		payloads = append(payloads, toPayload(event))
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": payloads})
}

// handleCreateEvent serves POST `/events`.
func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	start, err := domain.ParseDay(req.Start)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	end, err := domain.ParseDay(req.End)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	event, err := h.svc.CreateEvent(r.Context(), app.CreateEventInput{
		Name:  req.Name,
		Start: start,
		End:   end,
		Notes: req.Notes,
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayload(event))
}

// handleGetEvent serves GET `/events/{id}`.
func (h *Handler) handleGetEvent(w http.ResponseWriter, r *http.Request, eventID string) {
	event, err := h.svc.GetEvent(r.Context(), eventID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayload(event))
}

// handleUpdateEvent serves PATCH `/events/{id}` with partial updates.
func (h *Handler) handleUpdateEvent(w http.ResponseWriter, r *http.Request, eventID string) {
	var req updateEventRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	input := app.UpdateEventInput{
		ID:    eventID,
		Name:  req.Name,
		Notes: req.Notes,
	}
	if req.Start != nil {
		start, err := domain.ParseDay(*req.Start)
		if err != nil {
			writeErrorFrom(w, err)
			return
		}
		input.Start = &start
	}
	if req.End != nil {
		end, err := domain.ParseDay(*req.End)
		if err != nil {
			writeErrorFrom(w, err)
			return
		}
		input.End = &end
	}
	event, err := h.svc.UpdateEvent(r.Context(), input)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayload(event))
}

// handleDeleteEvent serves DELETE `/events/{id}`.
func (h *Handler) handleDeleteEvent(w http.ResponseWriter, r *http.Request, eventID string) {
	if err := h.svc.DeleteEvent(r.Context(), eventID); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport serves GET `/export`.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.svc.ExportSnapshot(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// handleImport serves POST `/import`.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	count, err := h.svc.ImportEvents(r.Context(), req.Events, req.Replace)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": count})
}

// toPayload maps a domain event onto the wire shape.
func toPayload(event domain.Event) eventPayload {
	return eventPayload{
		ID:           event.ID,
		Name:         event.Name,
		Start:        domain.FormatDay(event.Start),
		End:          domain.FormatDay(event.End),
		DurationDays: event.DurationDays(),
		Notes:        event.Notes,
	}
}

// resolveEventID parses `/events/{id}` and returns `{id}`.
func resolveEventID(path string) (string, bool) {
	const prefix = "events/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	id := strings.TrimSpace(strings.TrimPrefix(path, prefix))
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// errInvalidRequest marks malformed request payloads.
var errInvalidRequest = errors.New("invalid request")

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, app.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrInvalidDay),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, errInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(errInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", errInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
