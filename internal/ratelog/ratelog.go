// Rate-limited diagnostic logging
// https://github.com/cowlab/cowprobe
//
// Copyright (c) Cowlab
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package ratelog wraps the standard log package with a per-key token
// bucket (golang.org/x/time/rate) so a storm of WAIT retries or parity
// mismatches on a live bus collapses to one line per window instead of
// starving the single-threaded dispatch loop (spec §5).
package ratelog

import (
	"log"
	"sync"

	"golang.org/x/time/rate"
)

// Logger gates log.Printf calls per diagnostic key. Low-frequency,
// high-value events (Connect, Disconnect, Info) should use Always, which
// is never throttled.
type Logger struct {
	out *log.Logger

	// Limit and Burst configure every key's bucket the same way; a
	// single shared config is enough for this probe's small, fixed set
	// of diagnostic classes.
	Limit rate.Limit
	Burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// DefaultLimit permits one line per key roughly every 200ms, with a
// small burst so the first few occurrences of a new fault are never
// swallowed.
const (
	DefaultLimit = rate.Limit(5)
	DefaultBurst = 3
)

// New wraps out (nil selects log.Default()) with rate limiting.
func New(out *log.Logger) *Logger {
	if out == nil {
		out = log.Default()
	}

	return &Logger{
		out:     out,
		Limit:   DefaultLimit,
		Burst:   DefaultBurst,
		buckets: make(map[string]*rate.Limiter),
	}
}

func (l *Logger) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.buckets[key]
	if !ok {
		lim = rate.NewLimiter(l.Limit, l.Burst)
		l.buckets[key] = lim
	}

	return lim
}

// Printf logs format/args under key, dropping the line silently if key's
// bucket is exhausted. Never blocks.
func (l *Logger) Printf(key string, format string, args ...any) {
	if !l.limiter(key).Allow() {
		return
	}

	l.out.Printf(format, args...)
}

// Always logs unconditionally, bypassing rate limiting, for low-
// frequency high-value events.
func (l *Logger) Always(format string, args ...any) {
	l.out.Printf(format, args...)
}

// PutHex renders a 32-bit value as an 8-digit hex string, grounded on
// the original firmware's log_puthex — which contained a copy-paste bug
// shifting by 22 instead of 12 for the third nibble, silently corrected
// here (spec §9).
func PutHex(v uint32) string {
	const hex = "0123456789ABCDEF"

	var buf [8]byte
	for i := 0; i < 8; i++ {
		shift := uint(28 - 4*i)
		buf[i] = hex[(v>>shift)&0xF]
	}

	return string(buf[:])
}
