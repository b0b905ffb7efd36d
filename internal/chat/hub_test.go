package chat_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"roomhub/internal/chat"
)

func startHub(t *testing.T) *chat.Hub {
	t.Helper()
	hub := chat.NewHub(newRoom())
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func startServer(t *testing.T) (*chat.Hub, string) {
	t.Helper()
	hub := startHub(t)
	srv := httptest.NewServer(http.HandlerFunc(chat.NewHandler(hub, 64, 4096).ServeWs))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func emit(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(chat.Frame{Event: event, Data: raw}); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

func expect(t *testing.T, conn *websocket.Conn, event string, into any) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f chat.Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("waiting for %s: %v", event, err)
	}
	if f.Event != event {
		t.Fatalf("got event %s (%s), want %s", f.Event, f.Data, event)
	}
	if into != nil {
		if err := json.Unmarshal(f.Data, into); err != nil {
			t.Fatalf("decode %s: %v", event, err)
		}
	}
}

func TestHubEndToEnd(t *testing.T) {
	_, url := startServer(t)
	a := dial(t, url)
	b := dial(t, url)

	emit(t, a, chat.EventJoinRoom, chat.JoinRequest{Nickname: "alice"})
	expect(t, a, chat.EventJoinSuccess, nil)
	expect(t, a, chat.EventUserJoined, nil)
	var roster chat.Roster
	expect(t, a, chat.EventUpdateUsers, &roster)
	if !reflect.DeepEqual(roster.Users, []string{"alice"}) {
		t.Fatalf("roster = %v", roster.Users)
	}

	emit(t, b, chat.EventJoinRoom, chat.JoinRequest{Nickname: "alice"})
	var notice chat.Notice
	expect(t, b, chat.EventJoinError, &notice)
	if notice.Message == "" {
		t.Error("join_error without a message")
	}

	emit(t, b, chat.EventJoinRoom, chat.JoinRequest{Nickname: "bob"})
	expect(t, b, chat.EventJoinSuccess, nil)
	var joined chat.Presence
	expect(t, b, chat.EventUserJoined, &joined)
	if joined.Nickname != "bob" {
		t.Errorf("user_joined = %+v", joined)
	}
	expect(t, b, chat.EventUpdateUsers, &roster)
	if !reflect.DeepEqual(roster.Users, []string{"alice", "bob"}) {
		t.Fatalf("roster = %v", roster.Users)
	}
	expect(t, a, chat.EventUserJoined, nil)
	expect(t, a, chat.EventUpdateUsers, nil)

	emit(t, a, chat.EventSendMessage, chat.InboundMessage{Message: "hi"})
	for _, conn := range []*websocket.Conn{a, b} {
		var env chat.Envelope
		expect(t, conn, chat.EventNewMessage, &env)
		if env.Nickname != "alice" || env.Content != "hi" || env.Type != chat.KindText {
			t.Errorf("new_message = %+v", env)
		}
	}

	a.Close()
	var left chat.Presence
	expect(t, b, chat.EventUserLeft, &left)
	if left.Nickname != "alice" {
		t.Errorf("user_left = %+v", left)
	}
	expect(t, b, chat.EventUpdateUsers, &roster)
	if !reflect.DeepEqual(roster.Users, []string{"bob"}) {
		t.Errorf("roster = %v", roster.Users)
	}
}

func TestHubLeaveThenDisconnectAnnouncesOnce(t *testing.T) {
	_, url := startServer(t)
	a := dial(t, url)
	b := dial(t, url)

	emit(t, b, chat.EventJoinRoom, chat.JoinRequest{Nickname: "bob"})
	expect(t, b, chat.EventJoinSuccess, nil)
	expect(t, b, chat.EventUserJoined, nil)
	expect(t, b, chat.EventUpdateUsers, nil)

	emit(t, a, chat.EventJoinRoom, chat.JoinRequest{Nickname: "alice"})
	expect(t, b, chat.EventUserJoined, nil)
	expect(t, b, chat.EventUpdateUsers, nil)

	emit(t, a, chat.EventLeaveRoom, nil)
	emit(t, a, chat.EventLeaveRoom, nil)
	a.Close()
	expect(t, b, chat.EventUserLeft, nil)
	expect(t, b, chat.EventUpdateUsers, nil)

	// Anything else bob hears must come from his own message.
	emit(t, b, chat.EventSendMessage, chat.InboundMessage{Message: "still here"})
	var env chat.Envelope
	expect(t, b, chat.EventNewMessage, &env)
	if env.Content != "still here" {
		t.Errorf("got %+v", env)
	}
}

func recv(t *testing.T, c *chat.Client) chat.Frame {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var f chat.Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			t.Fatal(err)
		}
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
	}
	return chat.Frame{}
}

func inbound(c *chat.Client, event, data string) *chat.Inbound {
	return &chat.Inbound{Client: c, Frame: chat.Frame{Event: event, Data: json.RawMessage(data)}}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := startHub(t)
	slow := chat.NewClient(hub, nil, "slow", 3)
	fast := chat.NewClient(hub, nil, "fast", 16)
	hub.Register <- slow
	hub.Register <- fast

	// bob's three join frames fill his buffer and nobody drains it.
	hub.Inbound <- inbound(slow, chat.EventJoinRoom, `{"nickname":"bob"}`)
	hub.Inbound <- inbound(fast, chat.EventJoinRoom, `{"nickname":"alice"}`)

	for _, want := range []string{chat.EventJoinSuccess, chat.EventUserJoined, chat.EventUpdateUsers, chat.EventUserLeft} {
		if f := recv(t, fast); f.Event != want {
			t.Fatalf("got %s, want %s", f.Event, want)
		}
	}
	var roster chat.Roster
	f := recv(t, fast)
	if err := json.Unmarshal(f.Data, &roster); err != nil || f.Event != chat.EventUpdateUsers {
		t.Fatalf("got %s %s", f.Event, f.Data)
	}
	if !reflect.DeepEqual(roster.Users, []string{"alice"}) {
		t.Errorf("roster = %v", roster.Users)
	}

	for i := 0; i < 3; i++ {
		<-slow.Send
	}
	if _, ok := <-slow.Send; ok {
		t.Error("slow client's send channel still open")
	}
	if got := hub.Room().Roster(); !reflect.DeepEqual(got, []string{"alice"}) {
		t.Errorf("room roster = %v", got)
	}
}

func TestHubIgnoresUnregisteredClient(t *testing.T) {
	hub := startHub(t)
	stray := chat.NewClient(hub, nil, "stray", 4)

	hub.Inbound <- inbound(stray, chat.EventJoinRoom, `{"nickname":"ghost"}`)
	hub.Unregister <- stray

	if hub.Room().Registry().IsNicknameTaken("ghost") {
		t.Error("unregistered client was able to join")
	}
}
