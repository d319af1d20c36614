package middleware

import (
	"pos-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
)

// RateLimitMiddleware limits requests per client IP using the given
// formatted rate, e.g. "10-M" for ten per minute. Intended for the
// login endpoint.
func RateLimitMiddleware(formatted string) echo.MiddlewareFunc {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		logger.GetLogger().Fatal("invalid rate limit format",
			zap.String("rate", formatted),
			zap.Error(err))
	}

	store := memory.NewStore()
	instance := limiter.New(store, rate)

	return echo.WrapMiddleware(stdlib.NewMiddleware(instance).Handler)
}
