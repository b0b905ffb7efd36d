package main

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/pflag"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func main() {
	wsURL := pflag.String("url", "ws://localhost:5000/ws", "websocket endpoint")
	userCount := pflag.Int("users", 100, "concurrent clients")
	msgCount := pflag.Int("messages", 20, "messages per client")
	pflag.Parse()

	log.Printf("🔥 STARTING STRESS TEST: %d Users, %d Messages each...", *userCount, *msgCount)

	var (
		wg       sync.WaitGroup
		joined   atomic.Int64
		received atomic.Int64
	)
	start := time.Now()
	for i := 0; i < *userCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runUser(*wsURL, fmt.Sprintf("load_%d", id), *msgCount, &joined, &received)
		}(i)
	}
	wg.Wait()

	log.Printf("✅ LOAD TEST COMPLETE: %d/%d joined, %d new_message frames received in %s",
		joined.Load(), *userCount, received.Load(), time.Since(start).Round(time.Millisecond))
}

func runUser(url, nickname string, msgCount int, joined, received *atomic.Int64) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Printf("❌ WS Connect Fail [%s]: %v", nickname, err)
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			switch f.Event {
			case "join_success":
				joined.Add(1)
			case "join_error":
				log.Printf("❌ Join Fail [%s]: %s", nickname, f.Data)
				return
			case "new_message":
				received.Add(1)
			}
		}
	}()

	if err := send(conn, "join_room", map[string]string{"nickname": nickname}); err != nil {
		log.Printf("❌ Join Send Fail [%s]: %v", nickname, err)
		return
	}

	for i := 0; i < msgCount; i++ {
		msg := map[string]string{"message": fmt.Sprintf("LoadTest Msg %d from %s", i, nickname)}
		if err := send(conn, "send_message", msg); err != nil {
			log.Printf("❌ Send Fail [%s]: %v", nickname, err)
			break
		}
		// Small sleep to prevent instant localhost bottleneck (simulate real network)
		time.Sleep(10 * time.Millisecond)
	}

	// Give the room a moment to fan the last messages out before leaving.
	time.Sleep(500 * time.Millisecond)
	send(conn, "leave_room", nil)
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
	log.Printf("✅ %s finished sending %d msgs", nickname, msgCount)
}

func send(conn *websocket.Conn, event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return conn.WriteJSON(frame{Event: event, Data: raw})
}
