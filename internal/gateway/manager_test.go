package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type mockResolver struct {
	sessions map[string]struct {
		userID    int64
		sessionID string
	}
}

func newMockResolver() *mockResolver {
	return &mockResolver{sessions: make(map[string]struct {
		userID    int64
		sessionID string
	})}
}

func (m *mockResolver) add(token string, userID int64, sessionID string) {
	m.sessions[token] = struct {
		userID    int64
		sessionID string
	}{userID, sessionID}
}

func (m *mockResolver) ResolveSession(_ context.Context, token string) (int64, string, error) {
	s, ok := m.sessions[token]
	if !ok {
		return 0, "", errors.New("unknown token")
	}
	return s.userID, s.sessionID, nil
}

// revokedAfterFirst resolves a token once, then reports it revoked, as if a
// logout committed while the connection was identifying.
type revokedAfterFirst struct {
	calls atomic.Int32
}

func (r *revokedAfterFirst) ResolveSession(_ context.Context, _ string) (int64, string, error) {
	if r.calls.Add(1) == 1 {
		return 7, "sess-1", nil
	}
	return 0, "", errors.New("session revoked")
}

func startServer(t *testing.T, resolver SessionResolver) (*Manager, string) {
	t.Helper()
	m := NewManager(resolver, nil)
	e := echo.New()
	e.GET("/gateway", m.HandleWebSocket)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return m, "ws" + strings.TrimPrefix(srv.URL, "http") + "/gateway"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readPayload(t *testing.T, ws *websocket.Conn) GatewayPayload {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var p GatewayPayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return p
}

func identify(t *testing.T, ws *websocket.Conn, token string) {
	t.Helper()
	hello := readPayload(t, ws)
	if hello.Op != OpHello {
		t.Fatalf("expected HELLO, got op %d", hello.Op)
	}
	err := ws.WriteJSON(GatewayPayload{Op: OpIdentify, Data: mustMarshal(IdentifyData{Token: token})})
	if err != nil {
		t.Fatalf("write identify: %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func TestIdentify_Ready(t *testing.T) {
	r := newMockResolver()
	r.add("tok", 7, "sess-1")
	m, url := startServer(t, r)

	ws := dial(t, url)
	identify(t, ws, "tok")

	ready := readPayload(t, ws)
	if ready.Op != OpDispatch || ready.Event == nil || *ready.Event != EventReady {
		t.Fatalf("expected READY dispatch, got %+v", ready)
	}
	var data ReadyData
	if err := json.Unmarshal(ready.Data, &data); err != nil {
		t.Fatalf("decode ready: %v", err)
	}
	if data.UserID != 7 || data.ConnectionID == "" {
		t.Errorf("unexpected ready data: %+v", data)
	}
	if *ready.Sequence != 1 {
		t.Errorf("expected sequence 1, got %d", *ready.Sequence)
	}
	waitFor(t, func() bool { return m.ConnectionCount(7) == 1 })
}

func TestIdentify_InvalidToken(t *testing.T) {
	m, url := startServer(t, newMockResolver())

	ws := dial(t, url)
	identify(t, ws, "bogus")

	p := readPayload(t, ws)
	if p.Op != OpInvalid {
		t.Fatalf("expected INVALID, got op %d", p.Op)
	}
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err == nil {
		t.Fatal("expected connection to be closed")
	}
	if m.ConnectionCount(0) != 0 {
		t.Error("unidentified connection must not be registered")
	}
}

func TestHeartbeat_Ack(t *testing.T) {
	_, url := startServer(t, newMockResolver())

	ws := dial(t, url)
	readPayload(t, ws) // HELLO
	if err := ws.WriteJSON(GatewayPayload{Op: OpHeartbeat}); err != nil {
		t.Fatal(err)
	}
	if p := readPayload(t, ws); p.Op != OpHeartbeatAck {
		t.Fatalf("expected HEARTBEAT_ACK, got op %d", p.Op)
	}
}

func TestDispatchToUsers_AllConnections(t *testing.T) {
	r := newMockResolver()
	r.add("a1", 1, "s-a1")
	r.add("a2", 1, "s-a2")
	r.add("b", 2, "s-b")
	m, url := startServer(t, r)

	a1, a2, b := dial(t, url), dial(t, url), dial(t, url)
	for ws, tok := range map[*websocket.Conn]string{a1: "a1", a2: "a2", b: "b"} {
		identify(t, ws, tok)
		readPayload(t, ws) // READY
	}
	waitFor(t, func() bool { return m.ConnectionCount(1) == 2 && m.ConnectionCount(2) == 1 })

	m.DispatchToUsers([]int64{1, 1, 3}, EventMessageCreate, MessageEvent{ChannelID: 4, MessageID: 9})

	for _, ws := range []*websocket.Conn{a1, a2} {
		p := readPayload(t, ws)
		if p.Event == nil || *p.Event != EventMessageCreate {
			t.Fatalf("expected MESSAGE_CREATE, got %+v", p)
		}
		if *p.Sequence != 2 {
			t.Errorf("expected sequence 2, got %d", *p.Sequence)
		}
	}

	// b was not addressed; the next thing it sees is its own event.
	m.DispatchToUser(2, EventUserUpdate, nil)
	if p := readPayload(t, b); p.Event == nil || *p.Event != EventUserUpdate {
		t.Fatalf("expected USER_UPDATE, got %+v", p)
	}
}

func TestDisconnectSession(t *testing.T) {
	r := newMockResolver()
	r.add("a1", 1, "s-a1")
	r.add("a2", 1, "s-a2")
	m, url := startServer(t, r)

	a1, a2 := dial(t, url), dial(t, url)
	identify(t, a1, "a1")
	readPayload(t, a1)
	identify(t, a2, "a2")
	readPayload(t, a2)
	waitFor(t, func() bool { return m.ConnectionCount(1) == 2 })

	m.DisconnectSession("s-a1")

	if p := readPayload(t, a1); p.Op != OpInvalid {
		t.Fatalf("expected INVALID, got op %d", p.Op)
	}
	waitFor(t, func() bool { return m.ConnectionCount(1) == 1 })

	m.DispatchToUser(1, EventUserUpdate, nil)
	if p := readPayload(t, a2); p.Event == nil || *p.Event != EventUserUpdate {
		t.Fatalf("remaining session should still receive events, got %+v", p)
	}
}

func TestDisconnectUser(t *testing.T) {
	r := newMockResolver()
	r.add("a1", 1, "s-a1")
	r.add("a2", 1, "s-a2")
	m, url := startServer(t, r)

	a1, a2 := dial(t, url), dial(t, url)
	identify(t, a1, "a1")
	readPayload(t, a1)
	identify(t, a2, "a2")
	readPayload(t, a2)
	waitFor(t, func() bool { return m.ConnectionCount(1) == 2 })

	m.DisconnectUser(1)

	for _, ws := range []*websocket.Conn{a1, a2} {
		if p := readPayload(t, ws); p.Op != OpInvalid {
			t.Fatalf("expected INVALID, got op %d", p.Op)
		}
	}
	waitFor(t, func() bool { return m.ConnectionCount(1) == 0 })
}

func TestNop(t *testing.T) {
	var d Dispatcher = Nop{}
	d.DispatchToUser(1, EventReady, nil)
	d.DispatchToUsers([]int64{1}, EventReady, nil)
	d.DisconnectUser(1)
	d.DisconnectSession("x")
}

func TestIdentify_SessionRevokedWhileIdentifying(t *testing.T) {
	m, url := startServer(t, &revokedAfterFirst{})

	ws := dial(t, url)
	identify(t, ws, "tok")

	p := readPayload(t, ws)
	if p.Op != OpInvalid {
		t.Fatalf("expected INVALID, got %+v", p)
	}
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err == nil {
		t.Fatal("expected connection to be closed")
	}
	waitFor(t, func() bool { return m.ConnectionCount(7) == 0 })
}
