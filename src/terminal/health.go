package terminal

import (
	"time"

	"terminalfleet/src/model"
)

// Healthy derives liveness from the heartbeat trail instead of trusting
// the stored status: a RUNNING terminal whose agent went silent is
// unhealthy long before anything transitions it to ERROR.
func (s *Service) Healthy(instance *model.TerminalInstance, now time.Time) bool {
	if instance == nil || !model.IsActiveStatus(instance.Status) {
		return false
	}
	if instance.LastHeartbeat == nil {
		// PENDING terminals have never called in; give them the same
		// grace window measured from creation.
		return now.Sub(instance.CreatedAt) <= s.staleCutoff()
	}
	return now.Sub(*instance.LastHeartbeat) <= s.staleCutoff()
}

func (s *Service) staleCutoff() time.Duration {
	return s.config.HeartbeatInterval * time.Duration(s.config.StalenessMultiplier)
}
