package handler

import (
	"context"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"terminalfleet/src/model"
)

type desiredStateLister interface {
	DesiredActive(ctx context.Context) ([]model.TerminalInstance, error)
}

type connectionReader interface {
	GetByAccount(ctx context.Context, accountID uint) (*model.BrokerConnection, error)
}

type credentialDecryptor interface {
	DecryptString(ciphertext string) (string, error)
}

type desiredTerminal struct {
	TerminalID   string `json:"terminalId"`
	AccountID    uint   `json:"accountId"`
	Server       string `json:"server"`
	Login        string `json:"login"`
	Password     string `json:"password"`
	InvestorMode bool   `json:"investorMode"`
	DesiredState string `json:"desiredState"`
}

// OrchestratorConfigHandler snapshots the desired-active fleet for the
// trusted orchestrator. This is the single point where ciphertext at
// rest becomes plaintext in flight, and only over the orchestrator's
// TLS channel behind the shared-secret middleware.
func OrchestratorConfigHandler(lifecycle desiredStateLister, connections connectionReader, vault credentialDecryptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		instances, err := lifecycle.DesiredActive(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		items := make([]desiredTerminal, 0, len(instances))
		for _, instance := range instances {
			connection, err := connections.GetByAccount(r.Context(), instance.AccountID)
			if err != nil {
				logger.WithError(err).WithFields(map[string]interface{}{
					"terminal_id": instance.ID,
					"account_id":  instance.AccountID,
				}).Warn("Skipping terminal without broker connection")
				continue
			}

			password, err := vault.DecryptString(connection.PasswordCiphertext)
			if err != nil {
				// Never echo ciphertext or decrypt internals to the caller.
				logger.WithError(err).WithField("terminal_id", instance.ID).
					Error("Failed to decrypt credentials for orchestrator snapshot")
				continue
			}

			items = append(items, desiredTerminal{
				TerminalID:   instance.ID,
				AccountID:    instance.AccountID,
				Server:       connection.Server,
				Login:        connection.Login,
				Password:     password,
				InvestorMode: connection.InvestorMode,
				DesiredState: instance.Status,
			})
		}

		respondJSON(w, http.StatusOK, items)
	}
}
