package chat

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"roomhub/internal/presence"
)

// Room is the presence core. It applies join/leave/message events to the
// registry and membership set and returns the deliveries they cause; it
// never touches a connection itself.
type Room struct {
	mu         sync.Mutex
	registry   *presence.Registry
	members    *presence.Membership
	classifier *Classifier
	now        func() time.Time
}

func NewRoom(registry *presence.Registry, members *presence.Membership, classifier *Classifier) *Room {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	return &Room{
		registry:   registry,
		members:    members,
		classifier: classifier,
		now:        time.Now,
	}
}

func (r *Room) Registry() *presence.Registry { return r.registry }

// Join registers nickname for handle and admits it. On failure only the
// sender hears about it and the roster is left alone.
func (r *Room) Join(handle, nickname string) []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.registry.Register(handle, nickname)
	if err != nil {
		return []Delivery{toSender(handle, EventJoinError, Notice{Message: joinErrorText(err)})}
	}
	r.members.Admit(handle)
	log.Printf("👋 %s joined %s", session.Nickname, r.members.Name())

	return []Delivery{
		toSender(handle, EventJoinSuccess, Notice{Message: fmt.Sprintf("Welcome to the chat room, %s!", session.Nickname)}),
		r.toRoomLocked(EventUserJoined, Presence{Nickname: session.Nickname, Timestamp: formatTime(r.now())}),
		r.rosterLocked(),
	}
}

func joinErrorText(err error) string {
	switch {
	case errors.Is(err, presence.ErrNameTaken):
		return "That nickname is already in use"
	case errors.Is(err, presence.ErrInvalidName):
		return "Nickname cannot be empty"
	case errors.Is(err, presence.ErrAlreadyRegistered):
		return "You have already joined the chat room"
	}
	return err.Error()
}

// Leave handles both an explicit leave_room and a disconnect. Calling it
// for a handle with no session returns nothing, so teardown is idempotent.
func (r *Room) Leave(handle string) []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members.Evict(handle)
	session, ok := r.registry.Remove(handle)
	if !ok {
		return nil
	}
	log.Printf("🚪 %s left %s", session.Nickname, r.members.Name())

	return []Delivery{
		r.toRoomLocked(EventUserLeft, Presence{Nickname: session.Nickname, Timestamp: formatTime(r.now())}),
		r.rosterLocked(),
	}
}

// Send classifies a chat message from handle. Messages from handles that
// never joined are dropped.
func (r *Room) Send(handle string, msg InboundMessage) []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sender *presence.Session
	if s, ok := r.registry.Lookup(handle); ok && r.members.IsMember(handle) {
		sender = &s
	}
	env, ok := r.classifier.Classify(sender, msg)
	if !ok {
		return nil
	}
	return []Delivery{r.toRoomLocked(EventNewMessage, env)}
}

// Roster returns the nicknames of every admitted member.
func (r *Room) Roster() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registry.Nicknames(r.members.IsMember)
}

func (r *Room) rosterLocked() Delivery {
	return r.toRoomLocked(EventUpdateUsers, Roster{Users: r.registry.Nicknames(r.members.IsMember)})
}

// toRoomLocked addresses every current member, so a delivery computed
// during a join or leave goes to exactly the room as it stood then.
func (r *Room) toRoomLocked(event string, payload any) Delivery {
	return Delivery{Audience: ToRoom, To: r.members.Members(), Event: event, Payload: payload}
}

func toSender(handle, event string, payload any) Delivery {
	return Delivery{Audience: ToSender, To: []string{handle}, Event: event, Payload: payload}
}
