package guard

import (
	"context"
	"encoding/json"
	"time"

	logger "github.com/sirupsen/logrus"

	"terminalfleet/src/model"
	"terminalfleet/src/repository"
)

// Auditor writes best-effort audit entries for sensitive mutations.
// The write runs on its own failure domain after the primary operation
// has already been decided; it can never flip the primary result.
type Auditor struct {
	logs repository.AuditLogRepository
}

func NewAuditor(logs repository.AuditLogRepository) *Auditor {
	return &Auditor{logs: logs}
}

// Record dispatches the entry asynchronously. Errors and panics are
// swallowed after logging.
func (a *Auditor) Record(entry model.AuditLogEntry) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.WithField("panic", r).Warn("Audit write panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := a.logs.Create(ctx, &entry); err != nil {
			logger.WithError(err).WithFields(map[string]interface{}{
				"action":   entry.Action,
				"resource": entry.Resource,
			}).Warn("Failed to write audit log entry")
		}
	}()
}

// Metadata marshals extra context for an audit entry. Callers must not
// pass credentials.
func Metadata(values map[string]interface{}) string {
	raw, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(raw)
}
