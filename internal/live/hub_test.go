package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"runetick/internal/market"
	"runetick/internal/metrics"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(metrics.New(prometheus.NewRegistry()), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hub.ServeWS(w, r); err != nil {
			t.Logf("serve ws: %v", err)
		}
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUpdate(t *testing.T, conn *websocket.Conn) Update {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var u Update
	if err := conn.ReadJSON(&u); err != nil {
		t.Fatalf("read update: %v", err)
	}
	return u
}

// go test -v --run TestSubscribeReceivesSnapshot
func TestSubscribeReceivesSnapshot(t *testing.T) {
	hub, srv := startHub(t)
	ctx := context.Background()

	quotes := map[string]market.Quote{
		"2":    {High: 200, Low: 190},
		"4151": {High: 1_500_000, Low: 1_480_000},
	}
	if err := hub.Broadcast(ctx, quotes); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}

	conn := dial(t, srv)
	if err := conn.WriteJSON(Command{Op: OpSubscribe, Args: []string{"prices.2", "999"}}); err != nil {
		t.Fatal(err)
	}

	u := readUpdate(t, conn)
	if u.Type != TypeSnapshot {
		t.Errorf("type = %q, want %q", u.Type, TypeSnapshot)
	}
	if len(u.Data) != 1 || u.Data["2"].High != 200 {
		t.Errorf("data = %+v, want only item 2", u.Data)
	}
}

// go test -v --run TestBroadcastFiltersBySubscription
func TestBroadcastFiltersBySubscription(t *testing.T) {
	hub, srv := startHub(t)
	ctx := context.Background()

	conn := dial(t, srv)
	if err := conn.WriteJSON(Command{Op: OpSubscribe, Args: []string{"4151"}}); err != nil {
		t.Fatal(err)
	}
	if u := readUpdate(t, conn); u.Type != TypeSnapshot || len(u.Data) != 0 {
		t.Fatalf("initial snapshot = %+v", u)
	}

	// an update without subscribed items is not forwarded
	if err := hub.Broadcast(ctx, map[string]market.Quote{"2": {High: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := hub.Broadcast(ctx, map[string]market.Quote{"2": {High: 1}, "4151": {High: 7, Low: 6}}); err != nil {
		t.Fatal(err)
	}

	u := readUpdate(t, conn)
	if u.Type != TypeDelta {
		t.Errorf("type = %q, want %q", u.Type, TypeDelta)
	}
	if len(u.Data) != 1 || u.Data["4151"].High != 7 {
		t.Errorf("data = %+v, want only item 4151", u.Data)
	}
}

// go test -v --run TestItemFromTopic
func TestItemFromTopic(t *testing.T) {
	tests := map[string]string{
		"prices.2":  "2",
		"4151":      "4151",
		"prices.":   "",
		"kline.1.x": "kline.1.x",
	}
	for in, want := range tests {
		if got := itemFromTopic(in); got != want {
			t.Errorf("itemFromTopic(%q) = %q, want %q", in, got, want)
		}
	}
}

// go test -v --run TestBroadcastAfterShutdown
func TestBroadcastAfterShutdown(t *testing.T) {
	hub := NewHub(metrics.New(prometheus.NewRegistry()), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	if err := hub.Broadcast(context.Background(), nil); err == nil {
		t.Error("Broadcast after shutdown returned nil")
	}
}
