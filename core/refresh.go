package core

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// RefreshFunc performs one token-refresh round trip and applies its
// outcome (store the new pair on success, tear the session down on
// failure) before returning.
type RefreshFunc func(ctx context.Context) error

type refreshState int

const (
	stateIdle refreshState = iota
	stateRefreshing
	stateSettling
)

// RefreshCoordinator guarantees at most one in-flight token refresh
// system-wide. The first caller to Await while idle launches the refresh;
// every caller that arrives while it is in flight is parked on an
// explicit queue of pending completions and resumes, in park order, once
// the outcome settles. Nobody is ever dropped.
type RefreshCoordinator struct {
	mu         sync.Mutex
	state      refreshState
	parked     []chan error
	settledErr error // outcome being applied; only meaningful in stateSettling
	fn         RefreshFunc
	logger     *zap.Logger
}

func NewRefreshCoordinator(logger *zap.Logger) *RefreshCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshCoordinator{logger: logger}
}

// Bind installs the refresh operation. Called once at wiring time; it
// exists because the coordinator is constructed before the auth service
// that owns the actual round trip.
func (c *RefreshCoordinator) Bind(fn RefreshFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fn = fn
}

// Await returns nil once a refresh has succeeded, meaning the caller may
// retry its request exactly once with the new token. A non-nil error
// means the session could not be renewed and the caller must fail with
// an authentication error.
//
// The in-flight flag is set before the refresh call is issued and cleared
// only after the outcome has been fully applied, so concurrent callers
// always observe it rather than racing to start their own refresh.
func (c *RefreshCoordinator) Await(ctx context.Context) error {
	c.mu.Lock()
	if c.fn == nil {
		c.mu.Unlock()
		return ErrAuthenticationFailed
	}

	switch c.state {
	case stateRefreshing:
		// A refresh is already in flight: park and wait for its outcome.
		ch := make(chan error, 1)
		c.parked = append(c.parked, ch)
		c.mu.Unlock()

		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}

	case stateSettling:
		// The refresh just finished and its outcome is still being
		// delivered; this caller shares it rather than starting a new one.
		err := c.settledErr
		c.mu.Unlock()
		return err
	}

	c.state = stateRefreshing
	fn := c.fn
	c.mu.Unlock()

	c.logger.Debug("token refresh started")

	// The refresh outcome is shared by every parked caller, so it must
	// not die with whichever request happened to trigger it.
	err := fn(context.WithoutCancel(ctx))

	c.mu.Lock()
	c.state = stateSettling
	c.settledErr = err
	waiters := c.parked
	c.parked = nil
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("token refresh failed", zap.Error(err))
	} else {
		c.logger.Debug("token refresh succeeded", zap.Int("resumed", len(waiters)))
	}

	// Resume parked callers in the order they arrived.
	for _, ch := range waiters {
		ch <- err
	}

	c.mu.Lock()
	c.state = stateIdle
	c.settledErr = nil
	c.mu.Unlock()

	return err
}

// waiting reports how many callers are currently parked. Test hook.
func (c *RefreshCoordinator) waiting() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.parked)
}
