// Package venue owns the single stateful session to the broker terminal.
// Exactly one Connection exists per running process; every venue-touching
// operation must call Ensure first and treat a false result as a hard
// failure for that operation.
package venue

import (
	"context"
	"time"

	"mt5-trader/internal/interfaces"
	"mt5-trader/internal/logger"
)

// State is the connection lifecycle state. Transitions are restricted to
// Disconnected→Connecting, Connecting→Connected, Connected→Degraded,
// Degraded→Connecting, and any state→Disconnected.
type State string

const (
	Disconnected State = "DISCONNECTED"
	Connecting   State = "CONNECTING"
	Connected    State = "CONNECTED"
	Degraded     State = "DEGRADED"
)

// Params configures connection and reconnection behavior.
type Params struct {
	Timeout              time.Duration
	Retries              int
	RetryDelay           time.Duration
	MaxReconnectAttempts int
}

// Connection manages one session to a broker terminal. It is designed for
// single-writer use: the engine serializes all venue calls, so Connection
// carries no locking of its own.
type Connection struct {
	term interfaces.Terminal
	p    Params

	state    State
	lastErr  error
	attempts int // consecutive reconnect attempts since the last healthy check
}

func NewConnection(term interfaces.Terminal, p Params) *Connection {
	if p.Retries <= 0 {
		p.Retries = 1
	}
	return &Connection{term: term, p: p, state: Disconnected}
}

// State returns the current lifecycle state.
func (c *Connection) State() State { return c.state }

// LastError returns the most recent connection-level error, if any.
func (c *Connection) LastError() error { return c.lastErr }

// Terminal exposes the underlying binding for read-only queries. Callers
// must have a true Ensure result first.
func (c *Connection) Terminal() interfaces.Terminal { return c.term }

// Connect attempts session initialization, retrying up to the configured
// number of attempts with a fixed delay between them. On terminal failure
// the state is Disconnected and the last error is recorded.
func (c *Connection) Connect(ctx context.Context) error {
	c.state = Connecting
	logger.Info(ctx, "Connecting to venue terminal", "retries", c.p.Retries)

	var err error
	for attempt := 1; attempt <= c.p.Retries; attempt++ {
		cctx, cancel := context.WithTimeout(ctx, c.p.Timeout)
		err = c.term.Connect(cctx)
		cancel()
		if err == nil {
			c.state = Connected
			c.lastErr = nil
			c.attempts = 0
			logger.Info(ctx, "Venue connection established", "attempt", attempt)
			return nil
		}

		logger.Warn(ctx, "Venue connect attempt failed",
			"attempt", attempt,
			"max_attempts", c.p.Retries,
			"error", err,
		)
		if attempt < c.p.Retries {
			select {
			case <-time.After(c.p.RetryDelay):
			case <-ctx.Done():
				c.state = Disconnected
				c.lastErr = ctx.Err()
				return ctx.Err()
			}
		}
	}

	c.state = Disconnected
	c.lastErr = err
	logger.ErrorWithErr(ctx, "Venue connection failed after all attempts", err)
	return err
}

// Check is a lightweight liveness probe. On failure the state degrades
// but no reconnect is attempted.
func (c *Connection) Check(ctx context.Context) bool {
	if c.state != Connected && c.state != Degraded {
		return false
	}

	cctx, cancel := context.WithTimeout(ctx, c.p.Timeout)
	defer cancel()
	if err := c.term.Health(cctx); err != nil {
		logger.Warn(ctx, "Venue health check failed", "error", err, "state", string(c.state))
		c.state = Degraded
		c.lastErr = err
		return false
	}

	if c.state == Degraded {
		// A passing probe alone does not promote a degraded session;
		// only a successful reconnect does.
		return false
	}
	return true
}

// Ensure verifies liveness and, if the check fails, performs one bounded
// reconnect attempt. Returns final liveness. Reconnection is the only
// operation the connection layer ever retries.
func (c *Connection) Ensure(ctx context.Context) bool {
	if c.Check(ctx) {
		c.attempts = 0
		return true
	}

	if c.attempts >= c.p.MaxReconnectAttempts {
		logger.Error(ctx, "Maximum reconnect attempts reached",
			"attempts", c.attempts,
			"max_attempts", c.p.MaxReconnectAttempts,
		)
		return false
	}
	c.attempts++

	logger.Info(ctx, "Attempting venue reconnect",
		"attempt", c.attempts,
		"max_attempts", c.p.MaxReconnectAttempts,
	)

	// Tear the session down before re-initializing. The terminal's
	// shutdown is idempotent, so a half-open session is safe here.
	sctx, cancel := context.WithTimeout(ctx, c.p.Timeout)
	_ = c.term.Shutdown(sctx)
	cancel()

	select {
	case <-time.After(c.p.RetryDelay):
	case <-ctx.Done():
		return false
	}

	if err := c.Connect(ctx); err != nil {
		return false
	}
	return true
}

// Disconnect performs an explicit shutdown. Idempotent: always safe to
// call, including when already disconnected.
func (c *Connection) Disconnect(ctx context.Context) {
	if c.state != Disconnected {
		cctx, cancel := context.WithTimeout(ctx, c.p.Timeout)
		if err := c.term.Shutdown(cctx); err != nil {
			logger.Warn(ctx, "Venue shutdown returned error", "error", err)
		}
		cancel()
		logger.Info(ctx, "Disconnected from venue terminal")
	}
	c.state = Disconnected
}
