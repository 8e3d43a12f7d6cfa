package gateway

import "time"

// HealthState summarises recent call outcomes for the header badge.
type HealthState int

const (
	HealthUnknown HealthState = iota
	HealthOnline
	HealthDegraded
	HealthOffline
)

func (s HealthState) String() string {
	switch s {
	case HealthOnline:
		return "ONLINE"
	case HealthDegraded:
		return "DEGRADED"
	case HealthOffline:
		return "OFFLINE"
	default:
		return "CONNECTING"
	}
}

// Health is a point-in-time copy of the gateway's call history.
type Health struct {
	LastError           error
	LastErrorAt         time.Time
	LastSuccess         time.Time
	ConsecutiveFailures int
}

// State returns Offline after two consecutive failures.
func (h Health) State() HealthState {
	switch {
	case h.ConsecutiveFailures >= 2:
		return HealthOffline
	case h.ConsecutiveFailures == 1:
		return HealthDegraded
	case !h.LastSuccess.IsZero():
		return HealthOnline
	default:
		return HealthUnknown
	}
}

// Health returns a copy of the current call history.
func (g *Gateway) Health() Health {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.health
}

func (g *Gateway) recordFailure(err error) {
	if Classify(err) == ClassCanceled {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.health.LastError = err
	g.health.LastErrorAt = time.Now()
	g.health.ConsecutiveFailures++
}

func (g *Gateway) recordSuccess() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.health.LastSuccess = time.Now()
	g.health.ConsecutiveFailures = 0
}
