package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/johnkhitrov-cpu/mappico/internal/ratelimit"
)

const rateLimiterExpiry = 5 * time.Minute

// newRateLimiter is the coarse per-IP token bucket fronting the whole API.
func newRateLimiter(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: rateLimiterExpiry,
		},
	)
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "rate limit exceeded",
			})
		},
	})
}

// rateLimitedResponse translates a limiter rejection into the throttling
// response a write-path handler owes its caller. The limiter itself only
// returns the structured result; the headers are the handler's job.
func rateLimitedResponse(c echo.Context, result ratelimit.Result, message string) error {
	header := c.Response().Header()
	header.Set("Retry-After", strconv.Itoa(result.RetryAfterSec))
	header.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	header.Set("X-RateLimit-Remaining", "0")
	return c.JSON(http.StatusTooManyRequests, map[string]string{"error": message})
}
