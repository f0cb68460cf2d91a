// Package ratelimit implements fixed-window request admission with
// per-role quotas. Counters live in an injected store so tests can run
// against the in-memory implementation and deployments can share state
// through Redis.
package ratelimit

import (
	"context"
	"time"

	"github.com/lifeup-app/lifeup-api/internal/rbac"
)

// Window is the counting interval shared by every caller key.
const Window = 60 * time.Second

// Quotas per window, in the precedence order they are checked.
const (
	QuotaAnonymous     = 10
	QuotaSuperAdmin    = 1000
	QuotaAdmin         = 500
	QuotaPremiumClient = 200
	QuotaClient        = 100
	QuotaDefault       = 60
)

// CounterStore tracks per-key request counts inside fixed windows. Incr
// must be atomic across concurrent callers of the same key: a window older
// than the given length is reset to count=1, otherwise the count is
// incremented. It returns the post-increment count and the remaining time
// in the current window.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)
}

// Decision is the admission outcome for a single request.
type Decision struct {
	Allowed    bool
	Limit      int
	RetryAfter time.Duration
}

// Limiter applies the per-role quota table over a counter store.
type Limiter struct {
	store  CounterStore
	window time.Duration
}

// NewLimiter constructs a Limiter over the given store.
func NewLimiter(store CounterStore) *Limiter {
	return &Limiter{store: store, window: Window}
}

// QuotaFor returns the per-window request budget for a caller. A nil
// principal is an anonymous caller.
func QuotaFor(p *rbac.Principal) int {
	if p == nil {
		return QuotaAnonymous
	}
	switch p.RoleTier {
	case rbac.TierSuperAdmin:
		return QuotaSuperAdmin
	case rbac.TierAdmin:
		return QuotaAdmin
	case rbac.TierClient:
		if p.IsPremium {
			return QuotaPremiumClient
		}
		return QuotaClient
	default:
		return QuotaDefault
	}
}

// Admit counts the request against the caller's current window and decides
// admission. The increment is applied before the quota check, so a denied
// request still consumes quota: retrying into a closed window cannot reset
// it.
func (l *Limiter) Admit(ctx context.Context, key string, p *rbac.Principal) (Decision, error) {
	limit := QuotaFor(p)
	count, remaining, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		return Decision{}, err
	}
	if count > int64(limit) {
		return Decision{Allowed: false, Limit: limit, RetryAfter: remaining}, nil
	}
	return Decision{Allowed: true, Limit: limit}, nil
}
