package utils

import (
	"context"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter blocks callers until the next event is allowed.
type RateLimiter interface {
	Wait(context.Context) error
	Limit() rate.Limit
}

// Per returns a limit of eventCount events per duration.
func Per(eventCount int, duration time.Duration) rate.Limit {
	return rate.Every(duration / time.Duration(eventCount))
}

// MinInterval returns a limiter allowing one event per interval with no
// burst. A non-positive interval disables limiting.
func MinInterval(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Multi combines limiters; Wait blocks on each, strictest first.
func Multi(limiters ...RateLimiter) *MultiLimiter {
	byLimit := func(i, j int) bool {
		return limiters[i].Limit() < limiters[j].Limit()
	}
	sort.Slice(limiters, byLimit)

	return &MultiLimiter{limiters: limiters}
}

type MultiLimiter struct {
	limiters []RateLimiter
}

func (l *MultiLimiter) Wait(ctx context.Context) error {
	for _, l := range l.limiters {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (l *MultiLimiter) Limit() rate.Limit {
	return l.limiters[0].Limit()
}
