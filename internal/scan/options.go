package scan

import "time"

// Options configures the scanning behavior.
type Options struct {
	// CaseSensitive controls pattern matching case sensitivity.
	CaseSensitive bool

	// IncludeUnmatched retains entries that matched no rule in the
	// result tree. When false only matched entries (and the virtual
	// parents needed to reach them) are kept.
	IncludeUnmatched bool

	// EmitEvery is the number of scanned entries between progress
	// events. The first entry always emits.
	EmitEvery int

	// PausePoll is the wait granularity while paused; cancellation
	// latency during a pause is bounded by this interval.
	PausePoll time.Duration
}

// DefaultOptions returns sensible defaults for scanning.
func DefaultOptions() *Options {
	return &Options{
		CaseSensitive:    false,
		IncludeUnmatched: false,
		EmitEvery:        200,
		PausePoll:        100 * time.Millisecond,
	}
}

// WithCaseSensitive sets pattern matching case sensitivity.
func (o *Options) WithCaseSensitive(v bool) *Options {
	o.CaseSensitive = v
	return o
}

// WithIncludeUnmatched sets whether unmatched entries are retained.
func (o *Options) WithIncludeUnmatched(v bool) *Options {
	o.IncludeUnmatched = v
	return o
}

// WithEmitEvery sets the progress emission interval in entries.
func (o *Options) WithEmitEvery(n int) *Options {
	if n > 0 {
		o.EmitEvery = n
	}
	return o
}

// WithPausePoll sets the pause polling interval.
func (o *Options) WithPausePoll(d time.Duration) *Options {
	if d > 0 {
		o.PausePoll = d
	}
	return o
}
