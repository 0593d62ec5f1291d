package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"brew-backend/internal/timeutil"
)

// requestLog captures one API request for the access log.
type requestLog struct {
	Time         time.Time
	Method       string
	Path         string
	StatusCode   int
	DurationMs   float64
	ResponseSize int
	IPAddress    string
	UserAgent    string
}

// APILoggingMiddleware writes an access log line per API request. The
// write happens off the request path through a buffered channel so a
// slow sink never delays a response.
type APILoggingMiddleware struct {
	logChan chan *requestLog
	done    chan struct{}
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

func NewAPILoggingMiddleware() *APILoggingMiddleware {
	m := &APILoggingMiddleware{
		logChan: make(chan *requestLog, 1000), // Buffer for async logging
		done:    make(chan struct{}),
	}

	// Start async log writer
	go m.asyncLogWriter()

	return m
}

// asyncLogWriter drains the channel so request goroutines never block on logging.
func (m *APILoggingMiddleware) asyncLogWriter() {
	defer close(m.done)
	for entry := range m.logChan {
		log.Printf("[API] %s %s %d %.1fms %dB %s %q",
			entry.Method,
			entry.Path,
			entry.StatusCode,
			entry.DurationMs,
			entry.ResponseSize,
			entry.IPAddress,
			entry.UserAgent,
		)
	}
}

// Handler returns the middleware handler
func (m *APILoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip logging for static files and health checks
		if shouldSkipLogging(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := timeutil.Now()

		// Wrap response writer to capture status and size
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)

		entry := &requestLog{
			Time:         timeutil.Now(),
			Method:       r.Method,
			Path:         sanitizePath(r.URL.Path),
			StatusCode:   wrapped.statusCode,
			DurationMs:   float64(duration.Microseconds()) / 1000.0,
			ResponseSize: wrapped.bytesWritten,
			IPAddress:    getClientIP(r),
			UserAgent:    r.UserAgent(),
		}

		// Send to async writer (non-blocking)
		select {
		case m.logChan <- entry:
		default:
			// Channel full, log dropped (shouldn't happen often with 1000 buffer)
			log.Printf("[API] Log buffer full, dropping log entry for %s", r.URL.Path)
		}
	})
}

// shouldSkipLogging returns true for paths that shouldn't be logged
func shouldSkipLogging(path string) bool {
	skipPaths := []string{
		"/health",
		"/metrics",
		"/favicon.ico",
		"/robots.txt",
	}

	for _, skip := range skipPaths {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}

	return false
}

// sanitizePath removes sensitive data from paths
func sanitizePath(path string) string {
	// Remove query parameters that might contain sensitive data
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}

	// Truncate very long paths
	if len(path) > 500 {
		path = path[:500]
	}

	return path
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (for proxies/load balancers)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// Take the first IP in the list
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// Check X-Real-IP header
	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}

	return ip
}

// Close stops the middleware and waits for pending logs to flush.
func (m *APILoggingMiddleware) Close() {
	close(m.logChan)
	<-m.done
}
