package chat

import (
	"encoding/json"
	"log"
)

// Hub owns the live connections. Run is the only goroutine that touches
// clients, so the map needs no lock; the Room does the bookkeeping and the
// Hub only delivers what the Room returns.
type Hub struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	Inbound    chan *Inbound
	room       *Room
	stop       chan struct{}
	done       chan struct{}
}

func NewHub(room *Room) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Inbound:    make(chan *Inbound),
		room:       room,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Room() *Room { return h.room }

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.Register:
			h.clients[client.Handle] = client
			log.Printf("🔌 client %s connected from %s (%d online)", client.Handle, client.addr, len(h.clients))

		case client := <-h.Unregister:
			h.drop(client)

		case in := <-h.Inbound:
			h.dispatch(in)

		case <-h.stop:
			for handle, client := range h.clients {
				delete(h.clients, handle)
				close(client.Send)
			}
			return
		}
	}
}

// Stop closes every client's send channel and waits for Run to return.
func (h *Hub) Stop() {
	select {
	case <-h.stop:
	default:
		close(h.stop)
	}
	<-h.done
}

func (h *Hub) dispatch(in *Inbound) {
	c := in.Client
	if h.clients[c.Handle] != c {
		return
	}

	switch in.Frame.Event {
	case EventJoinRoom:
		var req JoinRequest
		if err := decodeData(in.Frame.Data, &req); err != nil {
			log.Printf("bad join_room from %s: %v", c.Handle, err)
			return
		}
		h.deliver(h.room.Join(c.Handle, req.Nickname))

	case EventSendMessage:
		var msg InboundMessage
		if err := decodeData(in.Frame.Data, &msg); err != nil {
			log.Printf("bad send_message from %s: %v", c.Handle, err)
			return
		}
		h.deliver(h.room.Send(c.Handle, msg))

	case EventLeaveRoom:
		h.deliver(h.room.Leave(c.Handle))

	default:
		log.Printf("ignoring unknown event %q from %s", in.Frame.Event, c.Handle)
	}
}

func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// drop forgets a client and runs its disconnect. Unknown clients are ignored.
func (h *Hub) drop(client *Client) {
	if h.clients[client.Handle] != client {
		return
	}
	delete(h.clients, client.Handle)
	close(client.Send)
	log.Printf("🔌 client %s disconnected (%d online)", client.Handle, len(h.clients))
	h.deliver(h.room.Leave(client.Handle))
}

// deliver fans deliveries out without blocking. A recipient whose buffer is
// full is dropped, and the leave events that causes are delivered in turn.
func (h *Hub) deliver(deliveries []Delivery) {
	for len(deliveries) > 0 {
		var slow []*Client
		for _, d := range deliveries {
			message, err := d.Encode()
			if err != nil {
				log.Printf("❌ encoding %s: %v", d.Event, err)
				continue
			}
			for _, handle := range d.To {
				client, ok := h.clients[handle]
				if !ok {
					continue
				}
				select {
				case client.Send <- message:
				default:
					slow = append(slow, client)
				}
			}
		}

		deliveries = nil
		for _, client := range slow {
			if h.clients[client.Handle] != client {
				continue
			}
			log.Printf("🐢 dropping slow client %s", client.Handle)
			delete(h.clients, client.Handle)
			close(client.Send)
			deliveries = append(deliveries, h.room.Leave(client.Handle)...)
		}
	}
}
