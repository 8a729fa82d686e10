package ingest

import (
	"context"
	"errors"
	"time"

	"terminalfleet/src/repository"
)

// ErrQuotaExceeded is a structured business outcome, not a server
// failure; callers surface it as a quota result, never a 5xx.
var ErrQuotaExceeded = errors.New("monthly sync quota exceeded")

// QuotaGate enforces the per-connection monthly sync allowance. The
// counter rolls over lazily: when syncs_reset_at belongs to an earlier
// month it is treated as zero for the limit check and physically reset
// on the next accepted sync. Check-then-increment leaves a narrow race
// under concurrent syncs for one connection; a small overshoot there is
// accepted.
type QuotaGate struct {
	connections repository.BrokerConnectionRepository
	limit       int
}

func NewQuotaGate(connections repository.BrokerConnectionRepository, limit int) *QuotaGate {
	return &QuotaGate{connections: connections, limit: limit}
}

// CheckAndConsume admits one sync call for the account's connection or
// fails with ErrQuotaExceeded. Admission increments the counter.
func (g *QuotaGate) CheckAndConsume(ctx context.Context, accountID uint, now time.Time) error {
	connection, err := g.connections.GetByAccount(ctx, accountID)
	if err != nil {
		return err
	}

	rollover := !sameMonth(connection.SyncsResetAt, now)
	used := connection.SyncsThisMonth
	if rollover {
		used = 0
	}
	if used >= g.limit {
		return ErrQuotaExceeded
	}

	return g.connections.IncrementSyncs(ctx, accountID, now, rollover)
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
