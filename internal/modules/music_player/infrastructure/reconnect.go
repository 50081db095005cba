package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/disgoorg/disgolink/v3/disgolink"
	"golang.org/x/time/rate"
)

// Default pacing for node connection attempts: one per second at first,
// halving after every failure down to one per minute.
const (
	defaultConnectRate     rate.Limit = 1
	defaultMinConnectRate  rate.Limit = 1.0 / 60
	defaultConnectStepDown            = 0.5
)

// reconnectLimiter paces connection attempts. Each failure multiplies the
// allowed attempt rate by stepDown, never going below minLimit.
// A success restores the initial rate.
type reconnectLimiter struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	initial  rate.Limit
	minLimit rate.Limit
	stepDown float64
}

func newReconnectLimiter(initial, minLimit rate.Limit, stepDown float64) *reconnectLimiter {
	if minLimit > initial {
		minLimit = initial
	}
	return &reconnectLimiter{
		limiter:  rate.NewLimiter(initial, 1),
		initial:  initial,
		minLimit: minLimit,
		stepDown: stepDown,
	}
}

// Wait blocks until the next attempt is allowed or ctx is done.
func (l *reconnectLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Failed slows down subsequent attempts.
func (l *reconnectLimiter) Failed() {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := rate.Limit(float64(l.limiter.Limit()) * l.stepDown)
	if next < l.minLimit {
		next = l.minLimit
	}
	l.limiter.SetLimit(next)
}

// Succeeded restores the initial attempt rate.
func (l *reconnectLimiter) Succeeded() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.limiter.SetLimit(l.initial)
}

// Limit returns the current attempt rate.
func (l *reconnectLimiter) Limit() rate.Limit {
	return l.limiter.Limit()
}

// connectWithRetry calls attempt until it succeeds or ctx is done.
func connectWithRetry(
	ctx context.Context,
	limiter *reconnectLimiter,
	attempt func(context.Context) error,
) error {
	for n := 1; ; n++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		err := attempt(ctx)
		if err == nil {
			limiter.Succeeded()
			return nil
		}

		limiter.Failed()
		slog.Warn("failed to connect to Lavalink node",
			"attempt", n,
			"next_attempt_rate", float64(limiter.Limit()),
			"error", err,
		)
	}
}

// nodeWatcher turns polled node statuses into link lost/recovered transitions.
type nodeWatcher struct {
	status      func() disgolink.Status
	onLost      func()
	onRecovered func()

	connected bool
}

// observe polls the status once and fires a callback on a transition.
func (w *nodeWatcher) observe() {
	connected := w.status() == disgolink.StatusConnected

	switch {
	case w.connected && !connected:
		w.onLost()
	case !w.connected && connected:
		w.onRecovered()
	}

	w.connected = connected
}
