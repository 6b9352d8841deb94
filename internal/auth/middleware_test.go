package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type mockResolver struct {
	ResolveFn func(ctx context.Context, token string) (int64, error)
}

func (m *mockResolver) Resolve(ctx context.Context, token string) (int64, error) {
	return m.ResolveFn(ctx, token)
}

func runMiddleware(t *testing.T, header string, r Resolver) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := Middleware(r)(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	return c, called, err
}

func assertUnauthorized(t *testing.T, err error, called bool) {
	t.Helper()
	if called {
		t.Error("next handler should not run")
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestMiddleware_ValidToken(t *testing.T) {
	r := &mockResolver{ResolveFn: func(_ context.Context, token string) (int64, error) {
		if token == "good" {
			return 7, nil
		}
		return 0, errors.New("bad")
	}}

	c, called, err := runMiddleware(t, "Bearer good", r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("next handler was not called")
	}
	if GetUserID(c) != 7 {
		t.Errorf("user_id = %d, want 7", GetUserID(c))
	}
	if GetToken(c) != "good" {
		t.Errorf("token = %q, want good", GetToken(c))
	}
}

func TestMiddleware_MissingHeader(t *testing.T) {
	r := &mockResolver{ResolveFn: func(context.Context, string) (int64, error) { return 1, nil }}
	_, called, err := runMiddleware(t, "", r)
	assertUnauthorized(t, err, called)
}

func TestMiddleware_WrongScheme(t *testing.T) {
	r := &mockResolver{ResolveFn: func(context.Context, string) (int64, error) { return 1, nil }}
	_, called, err := runMiddleware(t, "Basic abc", r)
	assertUnauthorized(t, err, called)
}

func TestMiddleware_RejectedToken(t *testing.T) {
	r := &mockResolver{ResolveFn: func(context.Context, string) (int64, error) {
		return 0, errors.New("revoked")
	}}
	_, called, err := runMiddleware(t, "Bearer revoked", r)
	assertUnauthorized(t, err, called)
}
