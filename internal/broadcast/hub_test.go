package broadcast

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startTestHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub()
	mux := http.NewServeMux()
	hub.SetupRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing broadcast endpoint: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	waitForClients(t, hub, 1)
	return hub, conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("hub never reached %d clients (have %d)", want, hub.ClientCount())
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading event: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decoding event %q: %v", data, err)
	}
	return ev
}

func TestHubDeliversNotifications(t *testing.T) {
	hub, conn := startTestHub(t)

	hub.SlotClaimed(3, "Ann")
	ev := readEvent(t, conn)
	if ev.Type != "notification" || ev.Code != CodePadSet {
		t.Fatalf("event = %+v, want notification/%s", ev, CodePadSet)
	}
	if ev.Index == nil || *ev.Index != 3 || ev.Nickname != "Ann" {
		t.Errorf("event = %+v, want index 3 nickname Ann", ev)
	}

	hub.SlotCleared(3)
	if ev := readEvent(t, conn); ev.Code != CodePadCleared {
		t.Errorf("event code = %q, want %q", ev.Code, CodePadCleared)
	}

	hub.SlotTimedOut(5)
	ev = readEvent(t, conn)
	if ev.Code != CodePadTimeout || ev.Index == nil || *ev.Index != 5 {
		t.Errorf("event = %+v, want %s for index 5", ev, CodePadTimeout)
	}

	hub.AllCleared()
	ev = readEvent(t, conn)
	if ev.Code != CodePadAllCleared {
		t.Errorf("event code = %q, want %q", ev.Code, CodePadAllCleared)
	}
	if ev.Index != nil {
		t.Errorf("all-cleared event carries index %d, want none", *ev.Index)
	}
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub, conn := startTestHub(t)

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && hub.ClientCount() > 0 {
		time.Sleep(10 * time.Millisecond)
	}
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("hub still has %d clients after disconnect", got)
	}

	// Broadcasting into an empty hub is a no-op, not a panic.
	hub.AllCleared()
}

func TestHubBroadcastDuringClientClose(t *testing.T) {
	hub, _ := startTestHub(t)

	hub.mu.RLock()
	var c *client
	for cl := range hub.clients {
		c = cl
	}
	hub.mu.RUnlock()

	// A broadcast that snapshotted the client list before the removal
	// must drop its message, not write to a closed channel.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			hub.AllCleared()
		}
	}()
	go func() {
		defer wg.Done()
		hub.removeClient(c)
	}()
	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("hub still has %d clients after removal", got)
	}
	hub.AllCleared()
}
