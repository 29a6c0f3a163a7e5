// Package ratelimit paces outbound chat messages so a busy application does
// not get the client disconnected for flooding.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket over golang.org/x/time/rate. A nil *Limiter is
// valid and never waits.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing perSecond messages with bursts of burst.
// A non-positive rate disables limiting and returns nil.
func New(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Enabled reports whether the limiter does anything
func (l *Limiter) Enabled() bool {
	return l != nil && l.limiter != nil
}

// Allow reports whether a message can be sent right now, consuming a token if so
func (l *Limiter) Allow() bool {
	if !l.Enabled() {
		return true
	}
	return l.limiter.Allow()
}

// Delay returns how long the next message would have to wait, without consuming a token
func (l *Limiter) Delay() time.Duration {
	if !l.Enabled() {
		return 0
	}
	r := l.limiter.Reserve()
	defer r.Cancel()
	return r.Delay()
}

// Wait blocks until a message may be sent or ctx is done
func (l *Limiter) Wait(ctx context.Context) error {
	if !l.Enabled() {
		return nil
	}
	return l.limiter.Wait(ctx)
}
