package terminal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"terminalfleet/src/model"
)

func healthService() *Service {
	return NewService(nil, nil, nil, Config{
		HeartbeatInterval:   30 * time.Second,
		StalenessMultiplier: 2,
	})
}

func TestHealthyFreshHeartbeat(t *testing.T) {
	svc := healthService()
	now := time.Now().UTC()
	beat := now.Add(-10 * time.Second)

	instance := &model.TerminalInstance{
		Status:        model.TerminalStatusRunning,
		LastHeartbeat: &beat,
	}

	assert.True(t, svc.Healthy(instance, now))
}

func TestHealthyStaleRunningTerminal(t *testing.T) {
	svc := healthService()
	now := time.Now().UTC()
	// 30s interval x2 multiplier = 60s cutoff; 61s is past it.
	beat := now.Add(-61 * time.Second)

	instance := &model.TerminalInstance{
		Status:        model.TerminalStatusRunning,
		LastHeartbeat: &beat,
	}

	assert.False(t, svc.Healthy(instance, now))

	// A fresh heartbeat makes the same terminal healthy again.
	fresh := now.Add(-1 * time.Second)
	instance.LastHeartbeat = &fresh
	assert.True(t, svc.Healthy(instance, now))
}

func TestHealthyPendingUsesCreationTime(t *testing.T) {
	svc := healthService()
	now := time.Now().UTC()

	recent := &model.TerminalInstance{
		Status:    model.TerminalStatusPending,
		CreatedAt: now.Add(-20 * time.Second),
	}
	assert.True(t, svc.Healthy(recent, now))

	abandoned := &model.TerminalInstance{
		Status:    model.TerminalStatusPending,
		CreatedAt: now.Add(-5 * time.Minute),
	}
	assert.False(t, svc.Healthy(abandoned, now))
}

func TestHealthyTerminalStatusesNeverHealthy(t *testing.T) {
	svc := healthService()
	now := time.Now().UTC()
	beat := now

	for _, status := range []string{model.TerminalStatusStopped, model.TerminalStatusError} {
		instance := &model.TerminalInstance{Status: status, LastHeartbeat: &beat}
		assert.False(t, svc.Healthy(instance, now), "status %s should never be healthy", status)
	}
	assert.False(t, svc.Healthy(nil, now))
}
