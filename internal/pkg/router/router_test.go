package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticID string

func (s staticID) Generate() string { return string(s) }

func newTestRouter(t *testing.T, yaml string) *Router {
	t.Helper()
	var cfg config.Config
	if yaml != "" {
		var err error
		cfg, err = config.NewViperFromBytes("yaml", []byte(yaml))
		require.NoError(t, err)
	}
	return NewRouter(Config{Config: cfg, UUID: staticID("cid-fixed")})
}

func serve(ro *Router, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestRouterEnvelope(t *testing.T) {
	ro := newTestRouter(t, "")
	ro.POST("/ok", func(*Request) (any, error) {
		return map[string]string{"hello": "world"}, nil
	})
	ro.POST("/created", func(*Request) (any, error) {
		return Response{Status: http.StatusCreated, Message: "made", Data: 1}, nil
	})
	ro.POST("/business", func(*Request) (any, error) {
		return nil, goerror.WithReason(goerror.NewBusiness("too many", goerror.CodeTooManyRequest), "OTP_EXHAUSTED")
	})
	ro.POST("/validation", func(*Request) (any, error) {
		return nil, goerror.NewInvalidInput(nil, "entity_id", "entity_id must be a valid UUID")
	})
	ro.POST("/plain", func(*Request) (any, error) {
		return nil, errors.New("boom")
	})
	ro.POST("/panic", func(*Request) (any, error) {
		panic("kaboom")
	})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "success default message",
			method:     http.MethodPost,
			path:       "/ok",
			wantStatus: http.StatusOK,
			wantBody: map[string]any{
				"status_code": float64(200), "success": true,
				"message": defaultSuccessMessage, "data": map[string]any{"hello": "world"},
			},
		},
		{
			name:       "success custom response",
			method:     http.MethodPost,
			path:       "/created",
			wantStatus: http.StatusCreated,
			wantBody: map[string]any{
				"status_code": float64(201), "success": true, "message": "made", "data": float64(1),
			},
		},
		{
			name:       "business error with reason",
			method:     http.MethodPost,
			path:       "/business",
			wantStatus: http.StatusTooManyRequests,
			wantBody: map[string]any{
				"status_code": float64(429), "success": false, "message": "too many", "error_code": "OTP_EXHAUSTED",
			},
		},
		{
			name:       "validation error with fields",
			method:     http.MethodPost,
			path:       "/validation",
			wantStatus: http.StatusUnprocessableEntity,
			wantBody: map[string]any{
				"status_code": float64(422), "success": false, "message": "Validation error",
				"error_code": "VALIDATION_ERROR",
				"error":      map[string]any{"entity_id": "entity_id must be a valid UUID"},
			},
		},
		{
			name:       "unknown error",
			method:     http.MethodPost,
			path:       "/plain",
			wantStatus: http.StatusInternalServerError,
			wantBody: map[string]any{
				"status_code": float64(500), "success": false, "message": "Internal server error",
				"error_code": "INTERNAL_SERVER_ERROR",
			},
		},
		{
			name:       "panic recovered",
			method:     http.MethodPost,
			path:       "/panic",
			wantStatus: http.StatusInternalServerError,
			wantBody: map[string]any{
				"status_code": float64(500), "success": false, "message": "Internal server error",
				"error_code": "INTERNAL_SERVER_ERROR",
			},
		},
		{
			name:       "not found",
			method:     http.MethodGet,
			path:       "/missing",
			wantStatus: http.StatusNotFound,
			wantBody: map[string]any{
				"status_code": float64(404), "success": false, "message": "Endpoint not found",
				"error_code": "NOT_FOUND",
			},
		},
		{
			name:       "banner",
			method:     http.MethodGet,
			path:       "/",
			wantStatus: http.StatusOK,
			wantBody: map[string]any{
				"status_code": float64(200), "success": true, "message": "Welcome to OTP Gate API", "data": nil,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			rec, body := serve(ro, tt.method, tt.path, "")

			// Assert
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, body)
			assert.Equal(t, "cid-fixed", rec.Header().Get(HeaderCorrelationID))
		})
	}
}

func TestRouterCorrelationIDFromHeader(t *testing.T) {
	ro := newTestRouter(t, "")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "  from-proxy ")
	rec := httptest.NewRecorder()

	ro.ServeHTTP(rec, req)

	assert.Equal(t, "from-proxy", rec.Header().Get(HeaderCorrelationID))
}

func TestRouterMaintenance(t *testing.T) {
	ro := newTestRouter(t, "app:\n  maintenance:\n    endpoints: \"/otp/generate,/gift/notify\"\n")
	ro.POST("/otp/generate", func(*Request) (any, error) { return nil, nil })

	rec, body := serve(ro, http.MethodPost, "/otp/generate", "{}")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", body["error_code"])
}

func TestRequestDecodeBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"x"}`},
		{name: "unknown field", body: `{"name":"x","extra":1}`, wantErr: true},
		{name: "trailing data", body: `{"name":"x"}{}`, wantErr: true},
		{name: "not json", body: `name=x`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))}

			var dst payload
			err := req.DecodeBody(&dst)

			if tt.wantErr {
				var gerr *goerror.Error
				require.ErrorAs(t, err, &gerr)
				assert.Equal(t, goerror.CodeInvalidFormat, gerr.Code())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "x", dst.Name)
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req.Header.Set("X-Real-IP", "not-an-ip")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}

type messageResponse struct {
	ID string `json:"id"`
}

func (messageResponse) Message() string { return "custom message" }

func (messageResponse) StatusCode() int { return http.StatusAccepted }

func TestRouterPayloadInterfaces(t *testing.T) {
	ro := newTestRouter(t, "")
	ro.POST("/x", func(*Request) (any, error) { return messageResponse{ID: "1"}, nil })

	rec, body := serve(ro, http.MethodPost, "/x", "")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "custom message", body["message"])
	assert.Equal(t, map[string]any{"id": "1"}, body["data"])
}
