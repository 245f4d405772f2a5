package signaling

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, srv *httptest.Server, peer string) *websocket.Conn {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	u.Scheme = "ws"
	u.Path = "/signaling"
	u.RawQuery = "peer=" + peer

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return conn
}

func TestWSHubRoundTripsMessages(t *testing.T) {
	hub := NewWSHub()
	mux := http.NewServeMux()
	hub.HandleUpgrade(mux, "/signaling")
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn := dialHub(t, srv, "alice")
	defer conn.Close()

	// Give the server a moment to register the peer.
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	msg := Message{Kind: KindBye, SessionID: "s1", Reason: "done"}
	if err := hub.SendMessage(ctx, "alice", msg); err != nil {
		t.Fatal(err)
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("got %+v, want %+v", got, msg)
	}
}

func TestWSHubReceivesFromClient(t *testing.T) {
	hub := NewWSHub()
	mux := http.NewServeMux()
	hub.HandleUpgrade(mux, "/signaling")
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn := dialHub(t, srv, "bob")
	defer conn.Close()

	out := Message{Kind: KindIceComplete, SessionID: "s2"}
	data, err := Marshal(out)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	peer, got, err := hub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if peer != "bob" || got.Kind != KindIceComplete {
		t.Fatalf("peer=%s got=%+v", peer, got)
	}
}

func TestWSHubSendToUnknownPeerFails(t *testing.T) {
	hub := NewWSHub()
	err := hub.SendMessage(context.Background(), "nobody", Message{Kind: KindBye, SessionID: "s"})
	if err != ErrPeerNotConnected {
		t.Fatalf("expected ErrPeerNotConnected, got %v", err)
	}
}
