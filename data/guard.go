package data

import "sync/atomic"

// MutationGuard is checked before every write. Returning false vetoes the write.
type MutationGuard func() bool

// AllowAll never vetoes a write.
func AllowAll() bool {
	return true
}

// Switch is a process-wide kill-switch that can be handed out as a MutationGuard.
// The zero value allows mutations.
type Switch struct {
	denied atomic.Bool
}

// Deny makes every guarded write fail until Allow is called.
func (s *Switch) Deny() {
	s.denied.Store(true)
}

// Allow re-enables guarded writes.
func (s *Switch) Allow() {
	s.denied.Store(false)
}

// Allowed reports whether writes are currently permitted.
func (s *Switch) Allowed() bool {
	return !s.denied.Load()
}

// Guard returns the switch as a MutationGuard.
func (s *Switch) Guard() MutationGuard {
	return s.Allowed
}
