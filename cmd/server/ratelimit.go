package main

import (
	"log/slog"

	"fooddrop/internal/platform/config"
	redisclient "fooddrop/internal/platform/redis"
	ratelimit "fooddrop/internal/ratelimit/middleware"
	"fooddrop/internal/ratelimit/models"
	"fooddrop/internal/ratelimit/store/bucket"
)

func newRateLimiter(cfg config.RateLimit, rc *redisclient.Client, security ratelimit.SecurityLogger, log *slog.Logger) *ratelimit.Middleware {
	var store ratelimit.BucketStore = bucket.New()
	if rc != nil {
		store = bucket.NewRedis(rc.Client)
	}
	return ratelimit.New(store, security, log,
		ratelimit.WithDisabled(cfg.Disabled),
		ratelimit.WithLimit(models.ClassSensitive, models.Limit{Requests: cfg.SensitiveLimit, Window: cfg.SensitiveWindow}),
		ratelimit.WithLimit(models.ClassWrite, models.Limit{Requests: cfg.WriteLimit, Window: cfg.WriteWindow}),
	)
}
