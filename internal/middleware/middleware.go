package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/oscarsr96/fbm-optimizer/internal/config"
	"github.com/oscarsr96/fbm-optimizer/pkg/ratelimit"
)

// Middleware holds the HTTP middleware chain applied to every route.
type Middleware struct {
	config  *config.Config
	limiter *ratelimit.Limiter
}

// New creates a middleware instance backed by the given configuration.
func New(cfg *config.Config) *Middleware {
	return &Middleware{
		config:  cfg,
		limiter: ratelimit.New(cfg.RateLimitRequestsPerMinute),
	}
}

// CORS handles Cross-Origin Resource Sharing for the stateless solve API.
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, allowed := range m.config.CORSAllowedOrigins {
			if origin == allowed || allowed == "*" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Logging logs every request's method, path, status and duration.
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		log.Printf("method=%s path=%s status=%d duration=%s remote=%s",
			r.Method, r.URL.Path, wrapped.statusCode, time.Since(start), clientKey(r))
	})
}

// RateLimit rejects requests once a client key exceeds its budget.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(clientKey(r)) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MaxBody caps the request body so an oversized payload (e.g. a batch of
// thousands of matches) fails fast with a clear status instead of
// exhausting memory while being decoded.
func (m *Middleware) MaxBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, m.config.MaxRequestBodyKB*1024)
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller for rate limiting, preferring a proxy
// forwarded address over the raw connection address.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return r.RemoteAddr
}

// responseWriter wraps http.ResponseWriter to capture the status code
// for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
