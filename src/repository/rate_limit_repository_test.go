package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRateLimitRepositoryCountSince(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &GormRateLimitRepository{db: mockDB}

	since := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "rate_limit_tracking" WHERE user_id = $1 AND action = $2 AND created_at >= $3`)).
		WithArgs(uint(3), "connect_mt5", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountSince(context.Background(), 3, "connect_mt5", since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 attempts in window, got %d", count)
	}
}
