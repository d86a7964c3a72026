package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/formpost/internal/app"
	"github.com/okian/formpost/internal/domain/model"
	"github.com/okian/formpost/pkg/logger"
)

const (
	defaultListLimit = 50
	listLimitRule    = "min=1,max=1000"
)

// handleSubmit serves POST / and POST /prod. Missing keys decode as empty
// strings and unknown keys are ignored.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var rec model.SubmissionRecord
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	sub, err := s.deps.Accept(ctx, rec)
	switch {
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	case err != nil:
		s.logger.Error(ctx, "failed to accept submission", logger.Error(err))
		writeError(w, http.StatusServiceUnavailable, "unavailable", ErrUnavailable)
		return
	}

	s.logger.Info(ctx, "submission received", logger.String("id", sub.ID))
	writeJSON(w, http.StatusOK, AckMessage)
}

// handleListSubmissions serves GET /submissions?limit=N.
func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err == nil {
			err = s.validate.Var(n, listLimitRule)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request",
				fmt.Errorf("%w: limit must be an integer between 1 and 1000", ErrBadRequest))
			return
		}
		limit = n
	}

	subs, err := s.deps.List(r.Context(), limit)
	if err != nil {
		s.logger.Error(r.Context(), "failed to list submissions", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", nil)
		return
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// handleGetSubmission serves GET /submissions/{id}.
func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := s.deps.Get(r.Context(), id)
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	case err != nil:
		s.logger.Error(r.Context(), "failed to get submission", logger.String("id", id), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", nil)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
