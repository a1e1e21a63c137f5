package reddit

import (
	"sync"
	"time"
)

// HostStatus is the last observed outcome for one upstream host.
type HostStatus struct {
	Healthy     bool      `json:"healthy"`
	LastCheck   time.Time `json:"last_check"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	Failures    int       `json:"consecutive_failures"`
	Message     string    `json:"message,omitempty"`
}

// Health tracks per-host outcomes of fetch attempts.
type Health struct {
	mu    sync.RWMutex
	hosts map[string]*HostStatus
	now   func() time.Time
}

// NewHealth creates an empty health tracker.
func NewHealth() *Health {
	return &Health{
		hosts: make(map[string]*HostStatus),
		now:   time.Now,
	}
}

func (h *Health) entry(host string) *HostStatus {
	s, ok := h.hosts[host]
	if !ok {
		s = &HostStatus{}
		h.hosts[host] = s
	}
	return s
}

// RecordSuccess marks a host as healthy.
func (h *Health) RecordSuccess(host string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	s := h.entry(host)
	s.Healthy = true
	s.LastCheck = now
	s.LastSuccess = now
	s.Failures = 0
	s.Message = ""
}

// RecordFailure marks a host as unhealthy with the given error.
func (h *Health) RecordFailure(host string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.entry(host)
	s.Healthy = false
	s.LastCheck = h.now()
	s.Failures++
	if err != nil {
		s.Message = err.Error()
	}
}

// Status returns a copy of one host's status, or nil if it was never contacted.
func (h *Health) Status(host string) *HostStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if s, ok := h.hosts[host]; ok {
		cp := *s
		return &cp
	}
	return nil
}

// Snapshot returns copies of all host statuses.
func (h *Health) Snapshot() map[string]HostStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make(map[string]HostStatus, len(h.hosts))
	for host, s := range h.hosts {
		result[host] = *s
	}
	return result
}

// AnyHealthy reports whether at least one host succeeded on its last attempt.
// An empty tracker counts as healthy since nothing has failed yet.
func (h *Health) AnyHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.hosts) == 0 {
		return true
	}
	for _, s := range h.hosts {
		if s.Healthy {
			return true
		}
	}
	return false
}
