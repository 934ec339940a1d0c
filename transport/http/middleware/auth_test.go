package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"deskhub/config"
	"deskhub/infras/jwt"
	otelMocks "deskhub/infras/otel/mocks"
	"deskhub/permissions"
	"deskhub/shared/constant"
	"deskhub/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whoami(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(constant.ContextKeyUserID).(string)
	role, _ := r.Context().Value(constant.ContextKeyUserRole).(string)

	_, _ = w.Write([]byte(userID + "|" + role))
}

func newRouter(t *testing.T) (http.Handler, jwt.JWT) {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.AccessSecret = "secret"
	cfg.JWT.AccessExpireMin = 15
	cfg.App.APIKey = "internal-key"

	tokens := jwt.New(cfg)
	mw := middleware.NewAuthRoleMiddleware(tokens, otelMocks.NewOtel(), permissions.Get(), cfg)

	router := chi.NewRouter()
	router.Use(mw.APIKey)
	router.Group(func(r chi.Router) {
		r.Use(mw.Auth, mw.RBAC)
		r.Route("/v1", func(r chi.Router) {
			r.Post("/rooms/{id}/bookings", whoami)
			r.Get("/bookings/{id}", whoami)
			r.Patch("/bookings/{id}/status", whoami)
		})
	})

	return router, tokens
}

func bearer(t *testing.T, tokens jwt.JWT, userID, role string) string {
	t.Helper()

	token, err := tokens.GenerateToken(userID, userID+"@example.com", role)
	require.NoError(t, err)

	return "Bearer " + token
}

func TestAuth(t *testing.T) {
	router, tokens := newRouter(t)

	tests := []struct {
		name     string
		method   string
		path     string
		header   map[string]string
		wantCode int
		wantBody string
	}{
		{
			name:     "anonymous guest booking",
			method:   http.MethodPost,
			path:     "/v1/rooms/falcon/bookings",
			wantCode: http.StatusOK,
			wantBody: "|",
		},
		{
			name:     "member booking carries identity",
			method:   http.MethodPost,
			path:     "/v1/rooms/falcon/bookings",
			header:   map[string]string{constant.RequestHeaderAuthorization: bearer(t, tokens, "m1", constant.RoleUser)},
			wantCode: http.StatusOK,
			wantBody: "m1|user",
		},
		{
			name:     "broken token on a public route",
			method:   http.MethodPost,
			path:     "/v1/rooms/falcon/bookings",
			header:   map[string]string{constant.RequestHeaderAuthorization: "Bearer nope"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "anonymous on a protected route",
			method:   http.MethodGet,
			path:     "/v1/bookings/b1",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "malformed header",
			method:   http.MethodGet,
			path:     "/v1/bookings/b1",
			header:   map[string]string{constant.RequestHeaderAuthorization: "Token abc"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "member on an open protected route",
			method:   http.MethodGet,
			path:     "/v1/bookings/b1",
			header:   map[string]string{constant.RequestHeaderAuthorization: bearer(t, tokens, "m1", constant.RoleUser)},
			wantCode: http.StatusOK,
			wantBody: "m1|user",
		},
		{
			name:     "member on an admin route",
			method:   http.MethodPatch,
			path:     "/v1/bookings/b1/status",
			header:   map[string]string{constant.RequestHeaderAuthorization: bearer(t, tokens, "m1", constant.RoleUser)},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "admin on an admin route",
			method:   http.MethodPatch,
			path:     "/v1/bookings/b1/status",
			header:   map[string]string{constant.RequestHeaderAuthorization: bearer(t, tokens, "a1", constant.RoleAdmin)},
			wantCode: http.StatusOK,
			wantBody: "a1|admin",
		},
		{
			name:     "internal api key",
			method:   http.MethodPatch,
			path:     "/v1/bookings/b1/status",
			header:   map[string]string{constant.RequestHeaderAPIKey: "internal-key"},
			wantCode: http.StatusOK,
			wantBody: "internal|superadmin",
		},
		{
			name:     "wrong api key",
			method:   http.MethodPatch,
			path:     "/v1/bookings/b1/status",
			header:   map[string]string{constant.RequestHeaderAPIKey: "guess"},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			for key, value := range tt.header {
				req.Header.Set(key, value)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
