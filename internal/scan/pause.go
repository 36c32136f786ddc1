package scan

import "sync/atomic"

// Pauser is a cooperative pause token shared between the caller and a
// running scan. The scan polls it between entries; pausing never
// blocks the caller, and cancellation is still observed while paused.
type Pauser struct {
	paused atomic.Bool
}

// NewPauser returns a pause token in the running state.
func NewPauser() *Pauser {
	return &Pauser{}
}

// Pause requests that the scan block before processing further
// entries. Idempotent.
func (p *Pauser) Pause() {
	p.paused.Store(true)
}

// Resume releases a paused scan. Idempotent.
func (p *Pauser) Resume() {
	p.paused.Store(false)
}

// Paused reports whether a pause is currently requested.
func (p *Pauser) Paused() bool {
	return p.paused.Load()
}
