package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Action classes with independent rules and counters.
type Action string

const (
	ActionLogin    Action = "login"
	ActionRegister Action = "register"
	ActionAPI      Action = "api"
)

// Rule is a fixed-window limit for one action class.
type Rule struct {
	MaxAttempts int
	Window      time.Duration
}

// Result of a rate-limit check. Message is only set on denial and carries
// a human-readable retry estimate.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	Message   string
}

// Limiter bounds request volume per (client address, action class) pair.
type Limiter struct {
	store  CounterStore
	rules  map[Action]Rule
	logger *slog.Logger
}

func NewLimiter(store CounterStore, rules map[Action]Rule, logger *slog.Logger) *Limiter {
	return &Limiter{
		store:  store,
		rules:  rules,
		logger: logger,
	}
}

// Check increments the counter for the client/action pair and reports
// whether the request is allowed. A missing client address falls into a
// single shared "unknown" bucket; clients behind NAT or a proxy that
// strips forwarding headers share that bucket and are under-protected.
func (l *Limiter) Check(ctx context.Context, clientAddr string, action Action) (Result, error) {
	rule, ok := l.rules[action]
	if !ok {
		return Result{Allowed: true}, nil
	}

	if clientAddr == "" {
		clientAddr = "unknown"
	}

	count, resetAt, err := l.store.Incr(ctx, key(clientAddr, action), rule.Window)
	if err != nil {
		// Fail open: a broken counter store should not lock out
		// legitimate users.
		l.logger.Error("rate limit store error", slog.Any("error", err))
		return Result{Allowed: true, Remaining: rule.MaxAttempts - 1}, nil
	}

	if count > rule.MaxAttempts {
		minutes := int(time.Until(resetAt).Minutes()) + 1
		if minutes < 1 {
			minutes = 1
		}
		l.logger.Warn("rate limit exceeded",
			slog.String("client", clientAddr),
			slog.String("action", string(action)),
			slog.Int("count", count))
		return Result{
			Allowed: false,
			ResetAt: resetAt,
			Message: fmt.Sprintf("Too many attempts. Try again in %d minute(s).", minutes),
		}, nil
	}

	return Result{
		Allowed:   true,
		Remaining: rule.MaxAttempts - count,
		ResetAt:   resetAt,
	}, nil
}

// Clear removes the counter for a client/action pair, called after a
// verified successful action so prior attempts stop counting against the
// user.
func (l *Limiter) Clear(ctx context.Context, clientAddr string, action Action) error {
	if clientAddr == "" {
		clientAddr = "unknown"
	}
	return l.store.Clear(ctx, key(clientAddr, action))
}

// Sweep drops expired counters to bound memory; invoked by the cleanup
// supervisor on interval.
func (l *Limiter) Sweep(ctx context.Context) (int, error) {
	return l.store.Sweep(ctx)
}

func key(clientAddr string, action Action) string {
	return string(action) + ":" + clientAddr
}
