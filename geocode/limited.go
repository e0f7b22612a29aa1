package geocode

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"kijiji-rentals/models"
	"kijiji-rentals/utils"
)

// LimitOptions bound the load put on a geocoding service.
type LimitOptions struct {
	MinDelay   time.Duration // minimum time between two calls
	MaxPerHour int           // 0 disables the hourly cap
	MaxRetries int           // attempts after the first failure
	ErrorWait  time.Duration // pause before retrying a failed call
}

// Limited wraps a Geocoder with a rate limit and a bounded retry.
type Limited struct {
	next    Geocoder
	limiter utils.RateLimiter
	retry   *utils.RetryConfig
}

// NewLimited wraps next according to opts.
func NewLimited(next Geocoder, opts LimitOptions, logger *utils.Logger) *Limited {
	var limiter utils.RateLimiter = utils.MinInterval(opts.MinDelay)
	if opts.MaxPerHour > 0 {
		hourly := rate.NewLimiter(utils.Per(opts.MaxPerHour, time.Hour), 1)
		limiter = utils.Multi(limiter, hourly)
	}

	return &Limited{
		next:    next,
		limiter: limiter,
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxRetries + 1,
			BaseDelay:   opts.ErrorWait,
			Logger:      logger,
		},
	}
}

// Geocode waits for the limiter before every attempt.
func (l *Limited) Geocode(ctx context.Context, query string) (*models.Point, error) {
	var point *models.Point
	err := l.retry.Do(ctx, "geocode "+query, func(ctx context.Context) error {
		if err := l.limiter.Wait(ctx); err != nil {
			return err
		}
		p, err := l.next.Geocode(ctx, query)
		if err != nil {
			return err
		}
		point = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return point, nil
}
