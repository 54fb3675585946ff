package ledger

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"blackjack-lite/apps/server/internal/auth"
)

type HTTPHandler struct {
	auth   auth.Service
	ledger Service
}

func NewHTTPHandler(authService auth.Service, ledgerService Service) *HTTPHandler {
	return &HTTPHandler{
		auth:   authService,
		ledger: ledgerService,
	}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/runs", h.handleListRuns)
	mux.HandleFunc("/api/runs/", h.handleRun)
}

func (h *HTTPHandler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		auth.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := h.resolveUserID(r)
	if !ok {
		auth.WriteError(w, http.StatusUnauthorized, "invalid session token")
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"))
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.ledger.ListRuns(ctx, userID, limit)
	if err != nil {
		auth.WriteError(w, http.StatusInternalServerError, "query runs failed")
		return
	}

	auth.WriteJSON(w, http.StatusOK, map[string]any{
		"items": items,
	})
}

func (h *HTTPHandler) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		auth.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := h.resolveUserID(r)
	if !ok {
		auth.WriteError(w, http.StatusUnauthorized, "invalid session token")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	parts := strings.Split(strings.TrimSpace(path), "/")
	runID := strings.TrimSpace(parts[0])
	if runID == "" {
		auth.WriteError(w, http.StatusBadRequest, "missing run id")
		return
	}
	if len(parts) != 2 || parts[1] != "rounds" {
		auth.WriteError(w, http.StatusNotFound, "not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	rounds, err := h.ledger.GetRunRounds(ctx, userID, runID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			auth.WriteError(w, http.StatusNotFound, "run not found")
			return
		}
		auth.WriteError(w, http.StatusInternalServerError, "query run rounds failed")
		return
	}
	auth.WriteJSON(w, http.StatusOK, map[string]any{
		"run_id": runID,
		"rounds": rounds,
	})
}

func (h *HTTPHandler) resolveUserID(r *http.Request) (uint64, bool) {
	token := auth.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return 0, false
	}
	userID, _, ok := h.auth.ResolveSession(token)
	if !ok {
		return 0, false
	}
	return userID, true
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 20
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 20
	}
	if n > 100 {
		return 100
	}
	return n
}
