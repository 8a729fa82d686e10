package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"terminalfleet/src/model"
)

type mockDesiredLister struct {
	instances []model.TerminalInstance
	err       error
}

func (m *mockDesiredLister) DesiredActive(ctx context.Context) ([]model.TerminalInstance, error) {
	return m.instances, m.err
}

type mockConnectionReader struct {
	connections map[uint]*model.BrokerConnection
}

func (m *mockConnectionReader) GetByAccount(ctx context.Context, accountID uint) (*model.BrokerConnection, error) {
	connection, ok := m.connections[accountID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return connection, nil
}

type mockDecryptor struct {
	plaintexts map[string]string
}

func (m *mockDecryptor) DecryptString(ciphertext string) (string, error) {
	plaintext, ok := m.plaintexts[ciphertext]
	if !ok {
		return "", errors.New("unknown key id")
	}
	return plaintext, nil
}

func TestOrchestratorConfigHandler_DecryptsCredentials(t *testing.T) {
	lister := &mockDesiredLister{instances: []model.TerminalInstance{
		{ID: "term-1", AccountID: 7, Status: model.TerminalStatusRunning},
		{ID: "term-2", AccountID: 8, Status: model.TerminalStatusPending},
	}}
	reader := &mockConnectionReader{connections: map[uint]*model.BrokerConnection{
		7: {AccountID: 7, Server: "Broker-Demo01", Login: "555001", PasswordCiphertext: "v1:aaa", InvestorMode: true},
		8: {AccountID: 8, Server: "Broker-Demo02", Login: "555002", PasswordCiphertext: "v1:bbb"},
	}}
	vault := &mockDecryptor{plaintexts: map[string]string{"v1:aaa": "hunter2", "v1:bbb": "swordfish"}}

	handler := OrchestratorConfigHandler(lister, reader, vault)

	req := httptest.NewRequest(http.MethodGet, "/orchestrator/config", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	assert.Contains(t, body, `"password":"hunter2"`)
	assert.Contains(t, body, `"investorMode":true`)
	assert.Contains(t, body, `"desiredState":"PENDING"`)
	assert.NotContains(t, body, "v1:aaa")
}

func TestOrchestratorConfigHandler_SkipsUndecryptableTerminals(t *testing.T) {
	lister := &mockDesiredLister{instances: []model.TerminalInstance{
		{ID: "term-1", AccountID: 7, Status: model.TerminalStatusRunning},
		{ID: "term-2", AccountID: 8, Status: model.TerminalStatusRunning},
	}}
	reader := &mockConnectionReader{connections: map[uint]*model.BrokerConnection{
		7: {AccountID: 7, Server: "Broker-Demo01", Login: "555001", PasswordCiphertext: "v1:aaa"},
		8: {AccountID: 8, Server: "Broker-Demo02", Login: "555002", PasswordCiphertext: "v0:legacy"},
	}}
	vault := &mockDecryptor{plaintexts: map[string]string{"v1:aaa": "hunter2"}}

	handler := OrchestratorConfigHandler(lister, reader, vault)

	req := httptest.NewRequest(http.MethodGet, "/orchestrator/config", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	// The broken entry is skipped, never echoed as ciphertext.
	body := rr.Body.String()
	assert.Contains(t, body, `"terminalId":"term-1"`)
	assert.NotContains(t, body, "term-2")
	assert.NotContains(t, body, "v0:legacy")
}

func TestOrchestratorConfigHandler_SkipsTerminalsWithoutConnection(t *testing.T) {
	lister := &mockDesiredLister{instances: []model.TerminalInstance{
		{ID: "term-1", AccountID: 7, Status: model.TerminalStatusRunning},
	}}
	reader := &mockConnectionReader{connections: map[uint]*model.BrokerConnection{}}
	vault := &mockDecryptor{}

	handler := OrchestratorConfigHandler(lister, reader, vault)

	req := httptest.NewRequest(http.MethodGet, "/orchestrator/config", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestOrchestratorConfigHandler_ListerError(t *testing.T) {
	handler := OrchestratorConfigHandler(&mockDesiredLister{err: assert.AnError}, &mockConnectionReader{}, &mockDecryptor{})

	req := httptest.NewRequest(http.MethodGet, "/orchestrator/config", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}
