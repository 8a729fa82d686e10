package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"terminalfleet/src/model"
)

type channelAuditStore struct {
	entries chan model.AuditLogEntry
	err     error
}

func (s *channelAuditStore) Create(ctx context.Context, entry *model.AuditLogEntry) error {
	s.entries <- *entry
	return s.err
}

func TestAuditorRecordsAsynchronously(t *testing.T) {
	store := &channelAuditStore{entries: make(chan model.AuditLogEntry, 1)}
	auditor := NewAuditor(store)

	auditor.Record(model.AuditLogEntry{
		UserID:   1,
		Action:   "connect_mt5",
		Resource: "broker_connection",
	})

	select {
	case entry := <-store.entries:
		assert.Equal(t, "connect_mt5", entry.Action)
		assert.Equal(t, uint(1), entry.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("audit entry was never written")
	}
}

func TestAuditorSwallowsWriteErrors(t *testing.T) {
	store := &channelAuditStore{
		entries: make(chan model.AuditLogEntry, 1),
		err:     errors.New("disk full"),
	}
	auditor := NewAuditor(store)

	// Must not panic or block the caller.
	auditor.Record(model.AuditLogEntry{Action: "disconnect_mt5", Resource: "broker_connection"})

	select {
	case <-store.entries:
	case <-time.After(2 * time.Second):
		t.Fatal("audit entry was never attempted")
	}
}

func TestMetadataMarshalsValues(t *testing.T) {
	raw := Metadata(map[string]interface{}{"accountId": 7})
	assert.JSONEq(t, `{"accountId":7}`, raw)
}
