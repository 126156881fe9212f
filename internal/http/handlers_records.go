package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spendwise/internal/core"
)

// handleListRecords serves GET /api/records/{userId}: the full,
// unfiltered record set. Filtering is a client concern.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/records/")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || userID < 1 {
		writeMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}

	key := s.cacheKey(userID)
	if records, found := s.listCache.Get(key); found {
		slog.DebugContext(r.Context(), "record list cache hit", "user_id", userID, "count", len(records))
		writeJSON(w, http.StatusOK, records)
		return
	}

	records, err := s.records.List(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "record list failed", "user_id", userID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to load records")
		return
	}

	s.listCache.Set(key, records)
	writeJSON(w, http.StatusOK, records)
}

// handleRecordMutation serves POST, PUT and DELETE on /api/records.
func (s *Server) handleRecordMutation(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRecord(w, r)
	case http.MethodPut:
		s.handleUpdateRecord(w, r)
	case http.MethodDelete:
		s.handleDeleteRecord(w, r)
	default:
		w.Header().Set("Allow", "POST, PUT, DELETE")
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var rec core.Record
	if err := decodeJSON(r, &rec); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if rec.UserID == 0 {
		writeMessage(w, http.StatusBadRequest, "userId is required")
		return
	}

	id, err := s.records.Create(r.Context(), rec)
	if err != nil {
		if isInvalidRecord(err) {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "record create failed", "user_id", rec.UserID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to create record")
		return
	}

	s.invalidateList(rec.UserID)
	slog.InfoContext(r.Context(), "record created", "record_id", id, "user_id", rec.UserID, "record_type", rec.Type)
	writeMessage(w, http.StatusCreated, "Record created")
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var rec core.Record
	if err := decodeJSON(r, &rec); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if rec.ID == 0 {
		writeMessage(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.records.Update(r.Context(), rec); err != nil {
		var notFound *core.NotFoundError
		switch {
		case errors.As(err, &notFound):
			writeMessage(w, http.StatusNotFound, notFound.Error())
		case isInvalidRecord(err):
			writeMessage(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "record update failed", "record_id", rec.ID, "error", err)
			writeMessage(w, http.StatusInternalServerError, "failed to update record")
		}
		return
	}

	s.invalidateList(rec.UserID)
	writeMessage(w, http.StatusOK, "Record updated")
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID   int64           `json:"id"`
		Type core.RecordType `json:"type"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.ID == 0 || payload.Type.Validate() != nil {
		writeMessage(w, http.StatusBadRequest, "id and type are required")
		return
	}

	userID, err := s.records.Delete(r.Context(), payload.ID, payload.Type)
	if err != nil {
		var notFound *core.NotFoundError
		if errors.As(err, &notFound) {
			writeMessage(w, http.StatusNotFound, notFound.Error())
			return
		}
		slog.ErrorContext(r.Context(), "record delete failed", "record_id", payload.ID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to delete record")
		return
	}

	s.invalidateList(userID)
	writeMessage(w, http.StatusOK, "Record deleted")
}

// isInvalidRecord reports whether the error is a record validation
// failure rather than an infrastructure one.
func isInvalidRecord(err error) bool {
	var validation *core.ValidationError
	if errors.As(err, &validation) {
		return true
	}
	for _, sentinel := range []error{
		core.ErrInvalidType,
		core.ErrEmptyName,
		core.ErrEmptyCategory,
		core.ErrUnknownCategory,
		core.ErrEmptyAmount,
		core.ErrEmptyDateTime,
		core.ErrMissingID,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	// Unparseable date_time surfaces as a time.ParseError.
	var parseErr *time.ParseError
	return errors.As(err, &parseErr)
}
