package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"terminalfleet/src/externalmodel"
	"terminalfleet/src/ingest"
	"terminalfleet/src/model"
)

type heartbeatProcessor interface {
	ProcessHeartbeat(ctx context.Context, terminalID string) ([]model.TerminalCommand, error)
	ReportFinalStatus(ctx context.Context, terminalID, status, errorMessage string) error
}

type tradesSyncer interface {
	SyncTrades(ctx context.Context, push *externalmodel.TradesPush) (*ingest.SyncResult, error)
}

type positionsSyncer interface {
	SyncPositions(ctx context.Context, push *externalmodel.PositionsPush) error
}

type candlesSyncer interface {
	SyncCandles(ctx context.Context, push *externalmodel.CandlesPush) error
}

// HeartbeatHandler records agent liveness and hands back the drained
// command queue.
func HeartbeatHandler(terminals heartbeatProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload externalmodel.HeartbeatRequest
		if err := decodeAndValidate(r, &payload); err != nil {
			respondError(w, err)
			return
		}

		commands, err := terminals.ProcessHeartbeat(r.Context(), payload.TerminalID)
		if err != nil {
			respondError(w, err)
			return
		}

		envelopes := make([]externalmodel.CommandEnvelope, 0, len(commands))
		for _, c := range commands {
			envelopes = append(envelopes, externalmodel.CommandEnvelope{
				ID:       c.ID,
				Kind:     c.Kind,
				Payload:  c.Payload,
				IssuedAt: c.IssuedAt.Format(time.RFC3339),
			})
		}

		respondJSON(w, http.StatusOK, externalmodel.HeartbeatResponse{Commands: envelopes})
	}
}

type finalStatusRequest struct {
	TerminalID   string `json:"terminalId"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func (r *finalStatusRequest) Validate() error {
	var fields []string
	if r.TerminalID == "" {
		fields = append(fields, "terminalId")
	}
	if r.Status != model.TerminalStatusStopped && r.Status != model.TerminalStatusError {
		fields = append(fields, "status")
	}
	if len(fields) > 0 {
		return &externalmodel.ValidationError{Fields: fields}
	}
	return nil
}

// FinalStatusHandler takes the agent's explicit last status report
// (clean STOPPED or ERROR with a message).
func FinalStatusHandler(terminals heartbeatProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload finalStatusRequest
		if err := decodeAndValidate(r, &payload); err != nil {
			respondError(w, err)
			return
		}

		if err := terminals.ReportFinalStatus(r.Context(), payload.TerminalID, payload.Status, payload.ErrorMessage); err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// TradesHandler runs the trades batch through the ingestion pipeline.
// Quota exhaustion is a structured result, not an HTTP failure.
func TradesHandler(pipeline tradesSyncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload externalmodel.TradesPush
		if err := decodeAndValidate(r, &payload); err != nil {
			respondError(w, err)
			return
		}

		result, err := pipeline.SyncTrades(r.Context(), &payload)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func PositionsHandler(pipeline positionsSyncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload externalmodel.PositionsPush
		if err := decodeAndValidate(r, &payload); err != nil {
			respondError(w, err)
			return
		}

		if err := pipeline.SyncPositions(r.Context(), &payload); err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func CandlesHandler(pipeline candlesSyncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload externalmodel.CandlesPush
		if err := decodeAndValidate(r, &payload); err != nil {
			respondError(w, err)
			return
		}

		if err := pipeline.SyncCandles(r.Context(), &payload); err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

type validatable interface {
	Validate() error
}

// decodeAndValidate rejects malformed or schema-violating payloads at
// the boundary, before any business logic runs.
func decodeAndValidate(r *http.Request, payload validatable) error {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		return &externalmodel.ValidationError{Fields: []string{"body"}}
	}
	return payload.Validate()
}
