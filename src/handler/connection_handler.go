package handler

import (
	"context"
	"net/http"
	"time"

	logger "github.com/sirupsen/logrus"

	"terminalfleet/src/auth"
	"terminalfleet/src/externalmodel"
	"terminalfleet/src/guard"
	"terminalfleet/src/model"
)

const (
	actionConnect    = "connect_mt5"
	actionDisconnect = "disconnect_mt5"
)

type connectionStore interface {
	Create(ctx context.Context, connection *model.BrokerConnection) error
	GetByAccount(ctx context.Context, accountID uint) (*model.BrokerConnection, error)
	UpdateFields(ctx context.Context, accountID uint, updates map[string]interface{}) error
}

type credentialEncryptor interface {
	EncryptString(plaintext string) (string, error)
}

type rateLimiter interface {
	Allow(ctx context.Context, userID uint, action string) bool
}

type auditor interface {
	Record(entry model.AuditLogEntry)
}

type autoSyncDisabler interface {
	DisableAutoSync(ctx context.Context, accountID uint) error
}

// ConnectHandler links a brokerage account: rate limit, validate,
// encrypt the password, store the unique-per-account connection, audit.
// The password plaintext dies with this request; on any encrypt failure
// nothing is stored.
func ConnectHandler(connections connectionStore, vault credentialEncryptor, limiter rateLimiter, audit auditor) http.HandlerFunc {
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

		if !limiter.Allow(r.Context(), user.ID, actionConnect) {
			respondJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many connect attempts, try again later"})
			return
		}

		var payload externalmodel.ConnectRequest
		if err := decodeAndValidate(r, &payload); err != nil {
			respondError(w, err)
			return
		}

		ciphertext, err := vault.EncryptString(payload.Password)
		if err != nil {
			logger.WithError(err).Error("Credential encryption failed, aborting connect")
			respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}

		connection := &model.BrokerConnection{
			UserID:             user.ID,
			AccountID:          accountID,
			Server:             payload.Server,
			Login:              payload.Login,
			PasswordCiphertext: ciphertext,
			InvestorMode:       payload.InvestorMode,
			ConnectionStatus:   model.ConnectionStatusConnected,
			SyncsResetAt:       time.Now().UTC(),
		}
		if err := connections.Create(r.Context(), connection); err != nil {
			respondError(w, err)
			return
		}

		audit.Record(model.AuditLogEntry{
			UserID:     user.ID,
			Action:     actionConnect,
			Resource:   "broker_connection",
			ResourceID: payload.Login,
			Metadata: guard.Metadata(map[string]interface{}{
				"account_id": accountID,
				"server":     payload.Server,
			}),
			SourceIP:  r.RemoteAddr,
			UserAgent: r.UserAgent(),
		})

		respondJSON(w, http.StatusCreated, map[string]interface{}{
			"id":               connection.ID,
			"accountId":        connection.AccountID,
			"server":           connection.Server,
			"login":            connection.Login,
			"connectionStatus": connection.ConnectionStatus,
		})
	}
}

// DisconnectHandler marks the connection disconnected and requests a
// terminal teardown when one is active.
func DisconnectHandler(connections connectionStore, lifecycle autoSyncDisabler, audit auditor) http.HandlerFunc {
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

		if err := connections.UpdateFields(r.Context(), accountID, map[string]interface{}{
			"connection_status": model.ConnectionStatusDisconnected,
			"error_message":     "",
		}); err != nil {
			respondError(w, err)
			return
		}

		// Best effort: no active terminal is fine.
		if err := lifecycle.DisableAutoSync(r.Context(), accountID); err != nil {
			logger.WithError(err).WithField("account_id", accountID).
				Debug("No terminal to stop on disconnect")
		}

		audit.Record(model.AuditLogEntry{
			UserID:   user.ID,
			Action:   actionDisconnect,
			Resource: "broker_connection",
			Metadata: guard.Metadata(map[string]interface{}{
				"account_id": accountID,
			}),
			SourceIP:  r.RemoteAddr,
			UserAgent: r.UserAgent(),
		})

		w.WriteHeader(http.StatusNoContent)
	}
}

// ConnectionStatusHandler reports connection state and quota usage.
// Never the credentials, in any form.
func ConnectionStatusHandler(connections connectionStore) http.HandlerFunc {
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

		connection, err := connections.GetByAccount(r.Context(), accountID)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"accountId":        connection.AccountID,
			"server":           connection.Server,
			"login":            connection.Login,
			"connectionStatus": connection.ConnectionStatus,
			"syncsThisMonth":   connection.SyncsThisMonth,
			"syncsResetAt":     connection.SyncsResetAt,
			"errorMessage":     connection.ErrorMessage,
		})
	}
}
