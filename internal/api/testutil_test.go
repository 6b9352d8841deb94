package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/auth"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/gateway"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/service"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/store"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

type testServer struct {
	e       *echo.Echo
	backend *store.MemoryBackend
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := store.NewMemoryBackend()
	st, err := store.Open(context.Background(), backend, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	gw := gateway.Nop{}
	tokens := auth.NewTokenService("test-secret", time.Hour)
	hasher := auth.NewHasher(auth.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	sessions := service.NewSessionRegistry(st, tokens, gw, logger)

	e := echo.New()
	SetupRouter(e, &Dependencies{
		Auth:     NewAuthHandler(service.NewAuthService(st, hasher, sessions, logger)),
		Users:    NewUserHandler(service.NewUserService(st, gw, logger)),
		Channels: NewChannelHandler(service.NewChannelService(st, gw, logger)),
		DMs:      NewDMHandler(service.NewDMService(st, gw, logger)),
		Messages: NewMessageHandler(service.NewMessageService(st, gw, logger)),
		Admin:    NewAdminHandler(service.NewAdminService(st, gw, logger)),
		Sessions: sessions,
		Health:   st,
	})
	return &testServer{e: e, backend: backend}
}

// do sends a request and returns the recorder. body may be empty.
func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

type registered struct {
	UserID int64  `json:"auth_user_id"`
	Token  string `json:"token"`
}

func (s *testServer) register(t *testing.T, email, first, last string) registered {
	t.Helper()
	body := `{"email":"` + email + `","password":"password1","name_first":"` + first + `","name_last":"` + last + `"}`
	rec := s.do(http.MethodPost, "/api/v1/auth/register", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data registered `json:"data"`
	}
	decode(t, rec, &resp)
	return resp.Data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, rec, status)
	var resp ErrorResponse
	decode(t, rec, &resp)
	if resp.Error.Code != code {
		t.Errorf("expected error code %q, got %q", code, resp.Error.Code)
	}
}
