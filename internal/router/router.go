package router

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/accountforge/service-identity-go/internal/identity"
	"github.com/accountforge/service-identity-go/internal/token"
	"github.com/accountforge/service-identity-go/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware stamps each request with a generated id and logs it at
// debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := utilities.NewSnowflakeID()
			w.Header().Set("X-Request-Id", requestID)
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers. The policy is
// conservative so it works for a JSON API without further tuning.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts the HTTP surface on the standard library's
// http.ServeMux. The store and token service are injected here once at
// startup; nothing below reaches for ambient global state.
func RegisterRoutes(logger *zap.SugaredLogger, store identity.Store, tokens *token.Service) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	svc := identity.NewService(store, nil)
	handler := identity.NewHandler(svc, tokens, logger)
	gate := identity.AuthMiddleware(tokens, store, logger)

	mux.HandleFunc("POST /api/v1/users", handler.Create)
	mux.HandleFunc("POST /api/v1/users/login", handler.Login)

	// routes below require a valid bearer token
	mux.Handle("GET /api/v1/users", gate(http.HandlerFunc(handler.Profile)))
	mux.Handle("PUT /api/v1/users", gate(http.HandlerFunc(handler.Update)))
	mux.Handle("DELETE /api/v1/users", gate(http.HandlerFunc(handler.Delete)))

	return LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
}
