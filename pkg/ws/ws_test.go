package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/medcart/pkg/event"
	"github.com/shashiranjanraj/medcart/pkg/ws"
)

func dial(t *testing.T, srv *httptest.Server, room string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?room=" + room
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRelayReachesOnlyTheRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Upgrade(w, r, r.URL.Query().Get("room"))
	}))
	defer srv.Close()

	city := dial(t, srv, "CityPharm")
	other := dial(t, srv, "OtherPharm")
	require.Eventually(t, func() bool {
		return hub.RoomSize("CityPharm") == 1 && hub.RoomSize("OtherPharm") == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.Relay(event.Event{Name: event.PurchaseCreated, Pharmacy: "CityPharm", Data: map[string]string{"_id": "abc"}})

	require.NoError(t, city.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := city.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, event.PurchaseCreated, msg.Type)
	assert.Equal(t, "abc", msg.Data["_id"])

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "other rooms receive nothing")
}

func TestClientLeavesOnClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Upgrade(w, r, "CityPharm")
	}))
	defer srv.Close()

	conn := dial(t, srv, "CityPharm")
	require.Eventually(t, func() bool { return hub.RoomSize("CityPharm") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.RoomSize("CityPharm") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Upgrade(w, r, "CityPharm")
	}))
	defer srv.Close()

	conn := dial(t, srv, "CityPharm")
	require.Eventually(t, func() bool { return hub.RoomSize("CityPharm") == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-stopped

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.RoomSize("CityPharm"))
}

func TestSubscribeWithoutSocket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	msgs, leave := hub.Subscribe("CityPharm")
	require.Eventually(t, func() bool { return hub.RoomSize("CityPharm") == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Relay(event.Event{Name: event.PrescriptionUploaded, Pharmacy: "CityPharm", Data: "x"})
	select {
	case raw := <-msgs:
		assert.Contains(t, string(raw), event.PrescriptionUploaded)
	case <-time.After(2 * time.Second):
		t.Fatal("no message")
	}

	leave()
	leave()
	assert.Eventually(t, func() bool { return hub.RoomSize("CityPharm") == 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-stopped
	closed, _ := hub.Subscribe("CityPharm")
	_, ok := <-closed
	assert.False(t, ok, "a stopped hub hands out closed channels")
}

func TestRelaySkipsEmptyRooms(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := ws.NewHub()
	go hub.Run(ctx)

	hub.Relay(event.Event{Name: event.PurchaseCreated, Pharmacy: "CityPharm", Data: "early"})

	msgs, leave := hub.Subscribe("CityPharm")
	defer leave()
	require.Eventually(t, func() bool { return hub.RoomSize("CityPharm") == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Relay(event.Event{Name: event.PurchaseCreated, Pharmacy: "CityPharm", Data: "late"})
	select {
	case raw := <-msgs:
		assert.Contains(t, string(raw), `"late"`)
		assert.NotContains(t, string(raw), `"early"`)
	case <-time.After(2 * time.Second):
		t.Fatal("no message")
	}
}
