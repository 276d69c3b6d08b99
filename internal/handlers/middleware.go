package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/agenthub/agenthub/internal/apperr"
	"github.com/agenthub/agenthub/internal/auth"
	"github.com/agenthub/agenthub/internal/metrics"
	"github.com/agenthub/agenthub/internal/services"
)

const userIDKey = "userID"

// userID returns the authenticated user's id set by Authenticate.
func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// Errors translates the last error attached to the context into the
// uniform {error, message, code} body. Unexpected errors become a 500
// with a fixed code; their messages leak only in development mode.
func Errors(log zerolog.Logger, development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		if e, ok := apperr.As(err); ok {
			c.JSON(e.Status, gin.H{
				"error":   e.Kind(),
				"message": e.Message,
				"code":    e.Code,
			})
			return
		}

		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Conflict",
				"message": "A record with this value already exists",
				"code":    "DUPLICATE_RECORD",
			})
			return
		}

		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("unhandled error")

		message := "An unexpected error occurred"
		if development {
			message = err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": message,
			"code":    "INTERNAL_ERROR",
		})
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	}
}

// Metrics records request counts, durations, and in-flight gauge.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.RequestsInFlight.Inc()
		c.Next()
		m.RequestsInFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// CORS allows cross-origin access for the frontend and embed widget.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Authenticate verifies the bearer token and loads the user. The session
// is rejected when the user no longer exists.
func Authenticate(tokens *auth.Tokens, accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortWith(c, apperr.Unauthorized("NO_TOKEN", "No token provided"))
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortWith(c, apperr.Unauthorized("INVALID_TOKEN", "Invalid or expired token"))
			return
		}

		user, err := accounts.Get(c.Request.Context(), claims.Subject)
		if err != nil {
			abortWith(c, apperr.Unauthorized("USER_NOT_FOUND", "User not found"))
			return
		}

		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

// RateLimit applies a per-client token bucket. Used on the embed surface,
// which has no session to throttle on.
func RateLimit(limit float64, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = map[string]*rate.Limiter{}
	)
	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(rate.Limit(limit), burst)
			limiters[key] = l
		}
		return l
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			abortWith(c, apperr.New(http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests"))
			return
		}
		c.Next()
	}
}

// NotFound is the catch-all for unmatched routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   "Not Found",
		"message": "Route " + c.Request.Method + " " + c.Request.URL.Path + " not found",
		"code":    "ROUTE_NOT_FOUND",
	})
}

// abortWith short-circuits the request with a typed error, leaving the
// response to the Errors middleware.
func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
