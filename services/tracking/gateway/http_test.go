package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	httpclient "github.com/piresc/ukdrive/internal/pkg/http"
	"github.com/piresc/ukdrive/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	body   map[string]interface{}
	auth   string
}

type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recorder) snapshot() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.requests...)
}

func newRecordingGateway(t *testing.T, status int) (*HTTPGateway, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		_ = json.Unmarshal(raw, &body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			body:   body,
			auth:   r.Header.Get("Authorization"),
		})
		rec.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	client := httpclient.NewClient(httpclient.Config{BaseURL: srv.URL, BearerToken: "tok"})
	return NewHTTPGateway(client), rec
}

func TestHTTPGateway_Requests(t *testing.T) {
	point := models.GeoPoint{Latitude: 28.6139, Longitude: 77.2090}

	tests := []struct {
		name       string
		call       func(g *HTTPGateway) error
		wantMethod string
		wantPath   string
		wantBody   map[string]interface{}
	}{
		{
			name:       "driver location",
			call:       func(g *HTTPGateway) error { return g.UpdateDriverLocation(context.Background(), "d1", point) },
			wantMethod: http.MethodPatch,
			wantPath:   "/api/drivers/d1/location",
			wantBody:   map[string]interface{}{"latitude": 28.6139, "longitude": 77.2090, "isLocationSharing": true},
		},
		{
			name:       "driver heartbeat",
			call:       func(g *HTTPGateway) error { return g.DriverHeartbeat(context.Background(), "d1", point) },
			wantMethod: http.MethodPost,
			wantPath:   "/api/drivers/d1/heartbeat",
			wantBody:   map[string]interface{}{"latitude": 28.6139, "longitude": 77.2090},
		},
		{
			name: "driver unavailable",
			call: func(g *HTTPGateway) error {
				return g.UpdateDriverStatus(context.Background(), "d1", models.DriverStatusPatch{IsAvailable: models.BoolPtr(false)})
			},
			wantMethod: http.MethodPatch,
			wantPath:   "/api/drivers/d1",
			wantBody:   map[string]interface{}{"isAvailable": false},
		},
		{
			name: "driver stops sharing",
			call: func(g *HTTPGateway) error {
				return g.UpdateDriverStatus(context.Background(), "d1", models.DriverStatusPatch{
					IsGPSSharing: models.BoolPtr(false),
					IsAvailable:  models.BoolPtr(false),
				})
			},
			wantMethod: http.MethodPatch,
			wantPath:   "/api/drivers/d1",
			wantBody:   map[string]interface{}{"isGPSSharing": false, "isAvailable": false},
		},
		{
			name:       "passenger location",
			call:       func(g *HTTPGateway) error { return g.UpdatePassengerLocation(context.Background(), "u1", point) },
			wantMethod: http.MethodPatch,
			wantPath:   "/api/users/u1/location",
			wantBody:   map[string]interface{}{"latitude": 28.6139, "longitude": 77.2090},
		},
		{
			name:       "passenger clear",
			call:       func(g *HTTPGateway) error { return g.ClearPassengerLocation(context.Background(), "u1") },
			wantMethod: http.MethodPatch,
			wantPath:   "/api/users/u1",
			wantBody:   map[string]interface{}{"latitude": nil, "longitude": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			g, rec := newRecordingGateway(t, http.StatusOK)

			// Act
			err := tt.call(g)

			// Assert
			require.NoError(t, err)
			recorded := rec.snapshot()
			require.Len(t, recorded, 1)
			req := recorded[0]
			assert.Equal(t, tt.wantMethod, req.method)
			assert.Equal(t, tt.wantPath, req.path)
			assert.Equal(t, tt.wantBody, req.body)
			assert.Equal(t, "Bearer tok", req.auth)
		})
	}
}

func TestHTTPGateway_WrapsHTTPError(t *testing.T) {
	g, _ := newRecordingGateway(t, http.StatusServiceUnavailable)

	err := g.UpdateDriverLocation(context.Background(), "d1", models.GeoPoint{Latitude: 1, Longitude: 2})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update driver location")
	var httpErr *httpclient.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
}
