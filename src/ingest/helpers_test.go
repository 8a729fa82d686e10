package ingest

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"terminalfleet/src/database"
	"terminalfleet/src/model"
	"terminalfleet/src/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite test DB: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}
	return db
}

func newTestService(t *testing.T, limit int, provider CandleProvider) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	connections := repository.NewBrokerConnectionRepository(db)
	svc := NewService(
		repository.NewTerminalRepository(db),
		repository.NewCommandRepository(db),
		repository.NewTradeRepository(db),
		repository.NewPositionRepository(db),
		repository.NewCandleRepository(db),
		repository.NewSyncLogRepository(db),
		NewQuotaGate(connections, limit),
		provider,
	)
	return svc, db
}

func seedTerminal(t *testing.T, db *gorm.DB, id string, accountID uint, status string) {
	t.Helper()
	if err := db.Create(&model.TerminalInstance{
		ID:        id,
		AccountID: accountID,
		Status:    status,
	}).Error; err != nil {
		t.Fatalf("failed to seed terminal: %v", err)
	}
	if err := db.Create(&model.BrokerConnection{
		UserID:           1,
		AccountID:        accountID,
		Server:           "Broker-Demo01",
		Login:            "555001",
		ConnectionStatus: model.ConnectionStatusConnected,
		SyncsResetAt:     time.Now().UTC(),
	}).Error; err != nil {
		t.Fatalf("failed to seed connection: %v", err)
	}
}
