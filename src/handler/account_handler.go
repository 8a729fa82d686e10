package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"terminalfleet/src/auth"
	"terminalfleet/src/externalmodel"
	"terminalfleet/src/ingest"
	"terminalfleet/src/model"
)

type lifecycleManager interface {
	EnableAutoSync(ctx context.Context, accountID, userID uint) (*model.TerminalInstance, error)
	DisableAutoSync(ctx context.Context, accountID uint) error
	StatusForAccount(ctx context.Context, accountID uint) (*model.TerminalInstance, bool, error)
	Healthy(instance *model.TerminalInstance, now time.Time) bool
}

type candleRefresher interface {
	RefreshCandles(ctx context.Context, accountID, tradeID uint, timeframe string) error
}

type terminalView struct {
	ID            string     `json:"id"`
	Status        string     `json:"status"`
	Healthy       bool       `json:"healthy"`
	LastHeartbeat *time.Time `json:"lastHeartbeat,omitempty"`
	LastSyncAt    *time.Time `json:"lastSyncAt,omitempty"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// EnableAutoSyncHandler creates (or idempotently returns) the
// account's terminal record; the orchestrator does the actual start.
func EnableAutoSyncHandler(lifecycle lifecycleManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		accountID, err := accountParam(r)
		if err != nil {
			respondError(w, err)
			return
		}

		instance, err := lifecycle.EnableAutoSync(r.Context(), accountID, user.ID)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"id":        instance.ID,
			"status":    instance.Status,
			"createdAt": instance.CreatedAt,
		})
	}
}

func DisableAutoSyncHandler(lifecycle lifecycleManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.GetUserFromContext(r.Context()); !ok {
			respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		accountID, err := accountParam(r)
		if err != nil {
			respondError(w, err)
			return
		}

		if err := lifecycle.DisableAutoSync(r.Context(), accountID); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func TerminalStatusHandler(lifecycle lifecycleManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.GetUserFromContext(r.Context()); !ok {
			respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		accountID, err := accountParam(r)
		if err != nil {
			respondError(w, err)
			return
		}

		instance, connected, err := lifecycle.StatusForAccount(r.Context(), accountID)
		if err != nil {
			respondError(w, err)
			return
		}

		if !connected {
			respondJSON(w, http.StatusOK, map[string]interface{}{"connected": false})
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"connected": true,
			"terminal": terminalView{
				ID:            instance.ID,
				Status:        instance.Status,
				Healthy:       lifecycle.Healthy(instance, time.Now().UTC()),
				LastHeartbeat: instance.LastHeartbeat,
				LastSyncAt:    instance.LastSyncAt,
				ErrorMessage:  instance.ErrorMessage,
				CreatedAt:     instance.CreatedAt,
			},
		})
	}
}

// RefreshCandlesHandler re-requests a trade's chart series, via the
// live terminal when one is running or the market-data fallback
// otherwise.
func RefreshCandlesHandler(pipeline candleRefresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.GetUserFromContext(r.Context()); !ok {
			respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		accountID, err := accountParam(r)
		if err != nil {
			respondError(w, err)
			return
		}

		tradeID, err := strconv.ParseUint(chi.URLParam(r, "tradeId"), 10, 64)
		if err != nil || tradeID == 0 {
			respondError(w, &externalmodel.ValidationError{Fields: []string{"tradeId"}})
			return
		}

		timeframe := r.URL.Query().Get("timeframe")
		if timeframe == "" {
			timeframe = "H1"
		}
		if !externalmodel.IsKnownTimeframe(timeframe) {
			respondError(w, &externalmodel.ValidationError{Fields: []string{"timeframe"}})
			return
		}

		if err := pipeline.RefreshCandles(r.Context(), accountID, uint(tradeID), timeframe); err != nil {
			if ingest.IsNotOwned(err) {
				// Cross-account access reads as absence.
				respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
				return
			}
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
	}
}

func accountParam(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, &externalmodel.ValidationError{Fields: []string{"id"}}
	}
	return uint(id), nil
}
