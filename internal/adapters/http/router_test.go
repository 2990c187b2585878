package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Whiteboard/internal/app"
	"github.com/dkeye/Whiteboard/internal/app/orch"
	"github.com/dkeye/Whiteboard/internal/config"
	"github.com/dkeye/Whiteboard/internal/domain"
	"github.com/dkeye/Whiteboard/internal/protocol"
)

type frame struct {
	Type         protocol.Type          `json:"type"`
	ConnectionID domain.ConnectionID    `json:"connectionId"`
	RoomID       domain.RoomID          `json:"roomId"`
	History      []domain.StrokeSegment `json:"history"`
	Members      []domain.Participant   `json:"members"`
	Data         domain.StrokeSegment   `json:"data"`
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Mode:       "test",
		Port:       8080,
		StaticPath: t.TempDir(),
		Secret:     "test-secret",
		ReadLimit:  32768,
		PingPeriod: 54 * time.Second,
		PongWait:   60 * time.Second,
		WriteWait:  time.Second,
		SendBuffer: 16,
	}
}

func newServer(t *testing.T) (*httptest.Server, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	o := &orch.Orchestrator{
		Rooms:    app.NewRegistry(),
		Sessions: app.NewSessions(),
		Policy:   app.SimplePolicy{},
	}
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(SetupRouter(ctx, testConfig(t), o))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv, o
}

func dial(t *testing.T, srv *httptest.Server) (*websocket.Conn, domain.ConnectionID) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	welcome := read(t, conn)
	require.Equal(t, protocol.TypeWelcome, welcome.Type)
	require.NotEmpty(t, welcome.ConnectionID)
	return conn, welcome.ConnectionID
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

func read(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var f frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func memberIDs(f frame) []domain.ConnectionID {
	out := []domain.ConnectionID{}
	for _, p := range f.Members {
		out = append(out, p.ConnectionID)
	}
	return out
}

func TestWebsocket_Scenario(t *testing.T) {
	srv, o := newServer(t)
	seg := domain.StrokeSegment{X0: 0.1, Y0: 0.1, X1: 0.2, Y1: 0.2, Color: "#000000", Width: 5}

	// Given A in r1
	a, idA := dial(t, srv)
	send(t, a, protocol.JoinRequest{Type: protocol.TypeJoin, RoomID: "r1", DisplayName: "alice"})
	history := read(t, a)
	require.Equal(t, protocol.TypeHistory, history.Type)
	require.Empty(t, history.History)
	members := read(t, a)
	require.Equal(t, []domain.ConnectionID{idA}, memberIDs(members))

	// When A draws
	send(t, a, protocol.NewStroke("r1", seg))
	require.Eventually(t, func() bool {
		snap, ok := o.Rooms.Snapshot("r1")
		return ok && snap.HistoryLen == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Then B replays it on join
	b, idB := dial(t, srv)
	send(t, b, protocol.JoinRequest{Type: protocol.TypeJoin, RoomID: "r1", DisplayName: "bob"})
	history = read(t, b)
	require.Equal(t, []domain.StrokeSegment{seg}, history.History)
	assert.Equal(t, []domain.ConnectionID{idA, idB}, memberIDs(read(t, b)))
	assert.Equal(t, []domain.ConnectionID{idA, idB}, memberIDs(read(t, a)))

	// When B clears, both see it
	send(t, b, protocol.ClearRequest{Type: protocol.TypeClear, RoomID: "r1"})
	assert.Equal(t, protocol.TypeClear, read(t, a).Type)
	assert.Equal(t, protocol.TypeClear, read(t, b).Type)
	assert.Empty(t, o.Rooms.History("r1"))

	// When A drops, B sees [B]
	require.NoError(t, a.Close())
	assert.Equal(t, []domain.ConnectionID{idB}, memberIDs(read(t, b)))
}

func TestWebsocket_StrokeRelayedToOthersOnly(t *testing.T) {
	srv, _ := newServer(t)
	seg := domain.StrokeSegment{X0: 0.5, Y0: 0.5, X1: 0.6, Y1: 0.6, Color: "red", Width: 2}

	a, _ := dial(t, srv)
	send(t, a, protocol.JoinRequest{Type: protocol.TypeJoin, RoomID: "r1", DisplayName: "alice"})
	read(t, a)
	read(t, a)
	b, _ := dial(t, srv)
	send(t, b, protocol.JoinRequest{Type: protocol.TypeJoin, RoomID: "r1", DisplayName: "bob"})
	read(t, b)
	read(t, b)
	read(t, a)

	send(t, b, protocol.NewStroke("r1", seg))
	relay := read(t, a)
	assert.Equal(t, protocol.TypeStroke, relay.Type)
	assert.Equal(t, domain.RoomID("r1"), relay.RoomID)
	assert.Equal(t, seg, relay.Data)

	// B gets nothing for its own stroke; the next frame it sees is the pong
	send(t, b, protocol.Envelope{Type: protocol.TypePing})
	assert.Equal(t, protocol.TypePong, read(t, b).Type)
}

func TestWebsocket_ViolationsAreSilent(t *testing.T) {
	srv, o := newServer(t)
	a, _ := dial(t, srv)

	send(t, a, protocol.NewStroke("r1", domain.StrokeSegment{X0: 0.1, Y0: 0.1, X1: 0.2, Y1: 0.2, Color: "red", Width: 1}))
	send(t, a, protocol.ClearRequest{Type: protocol.TypeClear, RoomID: "r1"})
	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte("{not json")))
	send(t, a, protocol.Envelope{Type: "shout"})
	send(t, a, protocol.Envelope{Type: protocol.TypePing})

	assert.Equal(t, protocol.TypePong, read(t, a).Type)
	assert.Empty(t, o.Rooms.List())
}

func TestRoomsAPI(t *testing.T) {
	srv, _ := newServer(t)
	a, _ := dial(t, srv)
	send(t, a, protocol.JoinRequest{Type: protocol.TypeJoin, RoomID: "r1", DisplayName: "alice"})
	read(t, a)
	read(t, a)

	resp, err := http.Get(srv.URL + "/api/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Rooms []app.RoomInfo `json:"rooms"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, domain.RoomID("r1"), list.Rooms[0].ID)
	assert.Equal(t, 1, list.Rooms[0].MemberCount)

	resp2, err := http.Get(srv.URL + "/api/rooms/r1")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var snap app.RoomSnapshot
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&snap))
	require.Len(t, snap.Members, 1)
	assert.Equal(t, "alice", snap.Members[0].DisplayName)

	resp3, err := http.Get(srv.URL + "/api/rooms/missing")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp3.StatusCode)

	resp4, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp4.Body.Close()
	assert.Equal(t, http.StatusOK, resp4.StatusCode)
}
