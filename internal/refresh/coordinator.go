// Package refresh serializes token refreshes triggered by concurrent 401 responses.
//
// The first caller to hit a 401 leads the refresh. Callers that hit a 401 while the
// refresh is in flight queue up as waiters and receive the leader's outcome; they
// never start a second refresh.
package refresh

import (
	"context"
	"log/slog"
	"sync"

	"github.com/suresoft/ams-client/internal/apierr"
)

// Func exchanges the stored refresh token for a new credential and returns the new
// access token. It is responsible for persisting or clearing tokens.
type Func func(ctx context.Context) (string, error)

// CurrentFunc returns the access token currently held by the token store.
type CurrentFunc func(ctx context.Context) (string, error)

// outcome is broadcast to every waiter when a refresh completes.
type outcome struct {
	token string
	err   error
}

// Coordinator ensures at most one refresh is in flight. The zero value is not usable;
// create one with New.
type Coordinator struct {
	refresh Func
	current CurrentFunc

	mu         sync.Mutex
	inProgress bool
	waiters    []chan outcome

	// resumed, when set, is called with each waiter's 1-based queue position
	// as it is handed the outcome.
	resumed func(position int)
}

// New creates a Coordinator that runs fn for each refresh cycle. current may be
// nil, in which case every idle Await starts a refresh.
func New(fn Func, current CurrentFunc) *Coordinator {
	return &Coordinator{refresh: fn, current: current}
}

// Await returns a fresh access token to replace rejected, the token a request was
// sent with. If the stored token already differs from rejected and no refresh is
// running, the stored token is returned without refreshing. Otherwise the caller
// leads a refresh, or waits for the running one to finish. Any refresh failure is
// reported as a session-expired error to the leader and every waiter.
//
// Cancelling ctx stops waiting but never aborts an in-flight refresh.
func (c *Coordinator) Await(ctx context.Context, rejected string) (string, error) {
	c.mu.Lock()
	if !c.inProgress && c.current != nil {
		// A refresh only leaves inProgress after storing its token, so this read
		// sees every rotation that finished before the lock was taken.
		if stored, err := c.current(ctx); err == nil && stored != "" && stored != rejected {
			c.mu.Unlock()
			slog.DebugContext(ctx, "access token already rotated")
			return stored, nil
		}
	}
	if c.inProgress {
		// Buffered so the broadcast never blocks on a waiter that gave up
		ch := make(chan outcome, 1)
		c.waiters = append(c.waiters, ch)
		queued := len(c.waiters)
		c.mu.Unlock()

		slog.DebugContext(ctx, "waiting for token refresh", "queued", queued)
		select {
		case res := <-ch:
			return res.token, res.err
		case <-ctx.Done():
			return "", apierr.FromTransport(ctx.Err())
		}
	}
	c.inProgress = true
	c.mu.Unlock()

	slog.DebugContext(ctx, "refreshing access token")
	token, err := c.refresh(context.WithoutCancel(ctx))
	if err != nil && apierr.KindOf(err) != apierr.KindSessionExpired {
		err = apierr.SessionExpired(err)
	}
	res := outcome{token: token, err: err}

	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.inProgress = false
	c.mu.Unlock()

	if err != nil {
		slog.WarnContext(ctx, "token refresh failed", "error", err, "waiters", len(waiters))
	} else {
		slog.DebugContext(ctx, "token refreshed", "waiters", len(waiters))
	}

	// FIFO: waiters resume in the order they queued
	for i, ch := range waiters {
		ch <- res
		if c.resumed != nil {
			c.resumed(i + 1)
		}
	}

	return res.token, res.err
}

// InProgress reports whether a refresh is currently running.
func (c *Coordinator) InProgress() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inProgress
}

// Waiters returns the number of callers queued behind the running refresh.
func (c *Coordinator) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
