package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/facialanalyzer/internal/logging"
	"github.com/iudanet/facialanalyzer/internal/server/metrics"
)

// logRecords разбирает JSON-строки лога
func logRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		records = append(records, record)
	}
	return records
}

func TestLoggingMiddleware_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		status int
	}{
		{name: "success", status: http.StatusCreated, level: "INFO"},
		{name: "client error", status: http.StatusUnauthorized, level: "WARN"},
		{name: "server error", status: http.StatusInternalServerError, level: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := logging.Setup("facialanalyzer-server", "test", "json", "debug", &buf)

			handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"success":true}`))
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"secret1"}`))
			req.Header.Set("Authorization", "Bearer access-token-value")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			records := logRecords(t, &buf)
			require.Len(t, records, 1)
			record := records[0]
			assert.Equal(t, tt.level, record["level"])
			assert.Equal(t, "HTTP request", record["msg"])
			assert.Equal(t, float64(tt.status), record["status"])
			assert.Equal(t, "/api/auth/login", record["path"])
			assert.Equal(t, float64(len(`{"success":true}`)), record["bytes_written"])
			assert.Contains(t, record, "duration_ms")

			// ни тело запроса, ни заголовок авторизации в лог не попадают
			assert.NotContains(t, buf.String(), "secret1")
			assert.NotContains(t, buf.String(), "access-token-value")
		})
	}
}

func TestLoggingMiddleware_RequestIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("facialanalyzer-server", "test", "json", "info", &buf)

	handler := RequestIDMiddleware()(LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	id := NewRequestID()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set(RequestIDHeader, id)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, id, w.Header().Get(RequestIDHeader))
	records := logRecords(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0]["request_id"])
	assert.Equal(t, "facialanalyzer-server", records[0]["service"])
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
	}{
		{
			name: "second WriteHeader ignored",
			write: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusCreated)
				w.WriteHeader(http.StatusInternalServerError)
			},
			status: http.StatusCreated,
		},
		{
			name: "Write before WriteHeader keeps 200",
			write: func(w http.ResponseWriter) {
				_, _ = w.Write([]byte("ok"))
				w.WriteHeader(http.StatusNotFound)
			},
			status: http.StatusOK,
		},
		{
			name:   "no writes",
			write:  func(http.ResponseWriter) {},
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rw := wrapResponseWriter(rec)

			tt.write(rw)

			assert.Equal(t, tt.status, rw.statusCode)
			assert.Equal(t, tt.status, rec.Code, "recorded status matches what the client saw")
		})
	}
}

func TestWrapResponseWriter_SharedBetweenLoggingAndMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := wrapResponseWriter(rec)
	assert.Same(t, rw, wrapResponseWriter(rw), "already wrapped writer is reused")

	var buf bytes.Buffer
	logger := logging.Setup("svc", "test", "json", "info", &buf)
	m := metrics.New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		_, wrapped := w.(*responseWriter)
		assert.True(t, wrapped)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("nope"))
	})
	handler := LoggingMiddleware(logger)(MetricsMiddleware(m)(mux))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	records := logRecords(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, float64(http.StatusUnauthorized), records[0]["status"])
	assert.Equal(t, float64(4), records[0]["bytes_written"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "GET /api/auth/me", "401")))
}

func TestResponseWriter_ResponseControllerReachesUnderlyingWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := wrapResponseWriter(rec)

	assert.Same(t, http.ResponseWriter(rec), rw.Unwrap())

	// responseWriter сам не реализует http.Flusher
	require.NoError(t, http.NewResponseController(rw).Flush())
	assert.True(t, rec.Flushed)
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "/api/auth/login", expected: "/api/auth/login"},
		{input: "/verify-email/abc123", expected: "/verify-email/***"},
		{input: "/reset-password/abc123/extra", expected: "/reset-password/***/extra"},
		{input: "/api/token/abc123xyz", expected: "/api/token/***"},
		{input: "/api/token/", expected: "/api/token/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizePath(tt.input))
		})
	}
}

func TestLoggingWithSkip(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("svc", "test", "json", "info", &buf)

	handler := LoggingWithSkip(logger, []string{"/api/health", "/metrics"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/api/health", "/metrics", "/api/auth/me"} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	records := logRecords(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "/api/auth/me", records[0]["path"])
}
