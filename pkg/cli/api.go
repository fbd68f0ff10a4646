package cli

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mchmarny/buycheck/pkg/data"
	"github.com/mchmarny/buycheck/pkg/net"
	"github.com/mchmarny/buycheck/pkg/score"
)

const maxRequestBytes = 1 << 16

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeData[T any](w http.ResponseWriter, status int, v T) {
	writeJSON(w, status, net.Response[T]{Success: true, Data: v})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, net.Response[any]{Success: false, Error: msg})
}

// writeStoreError maps store and validation errors to a status; details stay in the log.
func writeStoreError(w http.ResponseWriter, err error, msg string) {
	switch {
	case isInvalid(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, data.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		slog.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

// isInvalid reports whether err came from bad user input rather than a failure.
func isInvalid(err error) bool {
	return errors.Is(err, score.ErrInvalidInput) ||
		errors.Is(err, data.ErrInvalidItemName) ||
		errors.Is(err, errInvalidID)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Debug("invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok", "version": version})
}

func (a *api) evaluateHandler(w http.ResponseWriter, r *http.Request) {
	var in answersRequest
	if !decodeBody(w, r, &in) {
		return
	}

	answers, err := in.answers()
	if err != nil {
		writeStoreError(w, err, "invalid answers")
		return
	}

	res, err := score.Evaluate(answers)
	if err != nil {
		writeStoreError(w, err, "failed to evaluate answers")
		return
	}
	writeData(w, http.StatusOK, res)
}

func (a *api) createDecisionHandler(w http.ResponseWriter, r *http.Request) {
	var in decisionRequest
	if !decodeBody(w, r, &in) {
		return
	}

	name, err := data.ValidateItemName(in.ItemName)
	if err != nil {
		writeStoreError(w, err, "invalid item name")
		return
	}

	answers, err := in.answers()
	if err != nil {
		writeStoreError(w, err, "invalid answers")
		return
	}

	res, err := score.Evaluate(answers)
	if err != nil {
		writeStoreError(w, err, "failed to evaluate answers")
		return
	}

	d, err := data.SaveDecision(r.Context(), a.db, name, answers, res)
	if err != nil {
		writeStoreError(w, err, "failed to save decision")
		return
	}
	invalidateStats(a.cache)(r.Context())

	writeData(w, http.StatusCreated, d)
}

func (a *api) listDecisionsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = v
	}

	c, err := listCriteria(q.Get("conclusion"), q.Get("category"), limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := data.ListDecisions(r.Context(), a.db, c)
	if err != nil {
		writeStoreError(w, err, "failed to list decisions")
		return
	}
	writeData(w, http.StatusOK, list)
}

func (a *api) dueDecisionsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := data.ListDue(r.Context(), a.db, time.Now().UTC())
	if err != nil {
		writeStoreError(w, err, "failed to list due decisions")
		return
	}
	writeData(w, http.StatusOK, list)
}

func (a *api) getDecisionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err, "invalid id")
		return
	}

	d, err := data.GetDecision(r.Context(), a.db, id)
	if err != nil {
		writeStoreError(w, err, "failed to get decision")
		return
	}
	writeData(w, http.StatusOK, d)
}

func (a *api) deleteDecisionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err, "invalid id")
		return
	}

	if err := data.DeleteDecision(r.Context(), a.db, id); err != nil {
		writeStoreError(w, err, "failed to delete decision")
		return
	}
	invalidateStats(a.cache)(r.Context())

	writeData(w, http.StatusOK, map[string]int64{"deleted": id})
}

func (a *api) statisticsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s, ok := a.cache.Get(ctx, statsCacheKey); ok {
		slog.Debug("statistics cache hit")
		writeData(w, http.StatusOK, json.RawMessage(s))
		return
	}

	s, err := data.GetStatistics(ctx, a.db, time.Now().UTC())
	if err != nil {
		writeStoreError(w, err, "failed to get statistics")
		return
	}

	if a.cacheTTL > 0 {
		b, err := json.Marshal(s)
		if err != nil {
			slog.Error("failed to marshal statistics", "error", err)
		} else if err := a.cache.Set(ctx, statsCacheKey, string(b), a.cacheTTL); err != nil {
			slog.Warn("failed to cache statistics", "error", err)
		}
	}

	writeData(w, http.StatusOK, s)
}
