package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/facialanalyzer/pkg/api"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		pingErr      error
		name         string
		wantStatus   string
		wantDatabase string
		wantCode     int
	}{
		{
			name:         "database up",
			wantCode:     http.StatusOK,
			wantStatus:   "ok",
			wantDatabase: "connected",
		},
		{
			name:         "database down",
			pingErr:      errors.New("sql: database is closed"),
			wantCode:     http.StatusServiceUnavailable,
			wantStatus:   "degraded",
			wantDatabase: "disconnected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := pingerFunc(func(ctx context.Context) error {
				_, hasDeadline := ctx.Deadline()
				assert.True(t, hasDeadline)
				return tt.pingErr
			})
			handler := NewHealthHandler(setupTestLogger(), db, "1.2.3")

			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			w := httptest.NewRecorder()
			handler.Health(w, req)

			resp := w.Result()
			defer func() {
				assert.NoError(t, resp.Body.Close())
			}()

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var health api.HealthResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
			assert.Equal(t, tt.wantStatus, health.Status)
			assert.Equal(t, tt.wantDatabase, health.Database)
			assert.Equal(t, "1.2.3", health.Version)
		})
	}
}
