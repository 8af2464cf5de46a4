package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ridgeline-labs/site-backend/errs"
	"github.com/ridgeline-labs/site-backend/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const adminTokenHeader = "x-admin-token"

type adminMiddleware struct {
	responder Responder
	token     string
}

func newAdminMiddleware(token string) adminMiddleware {
	logger := log.With().Str("handlerName", "adminMiddleware").Logger()
	return adminMiddleware{
		responder: NewResponder(logger),
		token:     token,
	}
}

// requireAdmin grants AdminAccess to requests presenting the admin token.
// With no token configured every request is refused with a 500.
func (m adminMiddleware) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.token == "" {
			m.responder.WriteError(w, errs.NewConfigError("ADMIN_TOKEN", nil))
			return
		}

		presented := adminTokenFromRequest(r)
		if presented == "" {
			m.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}
		if !tokensEqual(presented, m.token) {
			m.responder.WriteError(w, errs.NewInvalidTokenError())
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxWithCapability(r.Context(), AdminAccess)))
	})
}

// detectAdmin marks requests carrying a valid admin token without rejecting
// anyone, so public routes can reveal drafts to the admin.
func (m adminMiddleware) detectAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.token != "" {
			if presented := adminTokenFromRequest(r); presented != "" && tokensEqual(presented, m.token) {
				r = r.WithContext(ctxWithCapability(r.Context(), AdminAccess))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func adminTokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(adminTokenHeader)); token != "" {
		return token
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// tokensEqual compares digests so neither content nor length leaks through
// timing.
func tokensEqual(presented, expected string) bool {
	a := sha256.Sum256([]byte(presented))
	b := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func LogInternalServerErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				// Write 500 if nothing written yet
				if !srw.wroteHeader {
					srw.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(srw, r)

		if srw.status == http.StatusInternalServerError {
			log.Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("500 error response")
		}
	})
}

// ColoredHTTPLoggingMiddleware logs HTTP requests with colored output based on status codes
func ColoredHTTPLoggingMiddleware(next http.Handler) http.Handler {
	colorLogger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		next.ServeHTTP(srw, r)

		duration := time.Since(start)

		var logEvent *zerolog.Event
		switch {
		case srw.status >= 500:
			logEvent = colorLogger.Error()
		case srw.status >= 400:
			logEvent = colorLogger.Warn()
		default:
			logEvent = colorLogger.Info()
		}

		logEvent.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", srw.status).
			Dur("duration", duration).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP Request")
	})
}

// requestMetrics records request latency labelled by chi route pattern so
// slugs do not explode label cardinality.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		next.ServeHTTP(srw, r)

		pattern := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		metrics.RecordHTTPRequest(r.Method, pattern, strconv.Itoa(srw.status), time.Since(start))
	})
}

type maintenanceConfig struct {
	enabled     bool
	redirectURL string
	retryAfter  time.Duration
}

// maintenanceMiddleware answers every public route with 503, or a redirect
// when one is configured. Health, metrics and admin routes stay reachable.
func maintenanceMiddleware(cfg maintenanceConfig, responder Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.enabled {
			return next
		}
		retryAfter := strconv.Itoa(int(cfg.retryAfter.Seconds()))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maintenanceExempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			if cfg.redirectURL != "" {
				http.Redirect(w, r, cfg.redirectURL, http.StatusTemporaryRedirect)
				return
			}
			w.Header().Set("Retry-After", retryAfter)
			responder.WriteJSONStatus(w, http.StatusServiceUnavailable, map[string]interface{}{
				"error":  "site is under maintenance",
				"status": "maintenance",
			})
		})
	}
}

func maintenanceExempt(path string) bool {
	return path == "/health" || path == "/metrics" || path == "/admin" || strings.HasPrefix(path, "/admin/")
}

func newFormLimiter(limit int64, period time.Duration) *limiter.Limiter {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = time.Minute
	}
	rate := limiter.Rate{Period: period, Limit: limit}
	return limiter.New(memory.NewStore(), rate, limiter.WithTrustForwardHeader(true))
}

// rateLimit caps submissions per client IP.
func rateLimit(instance *limiter.Limiter, responder Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			context, err := instance.Get(r.Context(), instance.GetIPKey(r))
			if err != nil {
				responder.WriteError(w, errs.NewInternalErrorWithCause("rate limiter unavailable", err))
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", context.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", context.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", context.Reset))

			if context.Reached {
				responder.WriteError(w, errs.NewRateLimitError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
