package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/hrhub/internal/actorctx"
	"github.com/geocoder89/hrhub/internal/auth"
	"github.com/geocoder89/hrhub/internal/domain/user"
	"github.com/geocoder89/hrhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	claims *auth.Claims
	err    error
}

func (f fakeVerifier) VerifyAccessToken(string) (*auth.Claims, error) {
	return f.claims, f.err
}

type fakeResolver struct {
	resolveFn func(ctx context.Context, id string) (actorctx.Actor, error)
}

func (f fakeResolver) ResolveActor(ctx context.Context, id string) (actorctx.Actor, error) {
	return f.resolveFn(ctx, id)
}

func serve(r *gin.Engine, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthAndRole(t *testing.T) {
	store := map[string]user.Role{"emp-1": user.RoleEmployee, "hr-1": user.RoleHR}

	resolver := fakeResolver{resolveFn: func(_ context.Context, id string) (actorctx.Actor, error) {
		role, ok := store[id]
		if !ok {
			return actorctx.Actor{}, user.ErrNotFound
		}
		return actorctx.Actor{ID: id, Role: role}, nil
	}}

	tests := []struct {
		name       string
		header     string
		verifier   fakeVerifier
		wantStatus int
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "bad scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer x", verifier: fakeVerifier{err: auth.ErrInvalidToken}, wantStatus: http.StatusUnauthorized},
		{name: "deleted user", header: "Bearer x", verifier: fakeVerifier{claims: &auth.Claims{UserID: "gone"}}, wantStatus: http.StatusUnauthorized},
		{name: "employee on staff route", header: "Bearer x", verifier: fakeVerifier{claims: &auth.Claims{UserID: "emp-1"}}, wantStatus: http.StatusForbidden},
		{name: "hr on staff route", header: "Bearer x", verifier: fakeVerifier{claims: &auth.Claims{UserID: "hr-1"}}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := middlewares.NewAuthMiddleware(tt.verifier, resolver)

			r := gin.New()
			r.GET("/staff", m.RequireAuth(), middlewares.RequireStaff(), func(c *gin.Context) {
				a, ok := actorctx.From(c.Request.Context())
				if !ok || a.Role != user.RoleHR {
					t.Errorf("actor not propagated to request context: %+v", a)
				}
				c.Status(http.StatusOK)
			})

			w := serve(r, http.MethodGet, "/staff", tt.header)
			if w.Code != tt.wantStatus {
				t.Fatalf("got %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRequireAuth_ResolverFailureIs500(t *testing.T) {
	m := middlewares.NewAuthMiddleware(
		fakeVerifier{claims: &auth.Claims{UserID: "u"}},
		fakeResolver{resolveFn: func(context.Context, string) (actorctx.Actor, error) {
			return actorctx.Actor{}, errors.New("db down")
		}},
	)

	r := gin.New()
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, http.MethodGet, "/me", "Bearer t"); w.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", w.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := middlewares.NewRateLimiter(2, time.Minute)

	r := gin.New()
	r.POST("/login", rl.RateLimiterMiddleware(middlewares.KeyByIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := serve(r, http.MethodPost, "/login", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: got %d", i+1, w.Code)
		}
	}

	w := serve(r, http.MethodPost, "/login", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequireJSON())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("form body: got %d, want 415", w.Code)
	}

	if w := serve(r, http.MethodPost, "/x", ""); w.Code != http.StatusOK {
		t.Fatalf("empty body: got %d, want 200", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("got %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}
