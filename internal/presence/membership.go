package presence

import "sync"

// DefaultRoom is the single room every admitted connection belongs to.
const DefaultRoom = "chat_room"

// Membership tracks which connection handles are in a room.
type Membership struct {
	name    string
	mu      sync.RWMutex
	members map[string]struct{}
}

func NewMembership(name string) *Membership {
	return &Membership{
		name:    name,
		members: make(map[string]struct{}),
	}
}

func (m *Membership) Name() string { return m.name }

// Admit adds handle to the room. Admitting a member again does nothing.
func (m *Membership) Admit(handle string) {
	m.mu.Lock()
	m.members[handle] = struct{}{}
	m.mu.Unlock()
}

// Evict removes handle from the room. It is safe on non-members.
func (m *Membership) Evict(handle string) {
	m.mu.Lock()
	delete(m.members, handle)
	m.mu.Unlock()
}

func (m *Membership) IsMember(handle string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.members[handle]
	return ok
}

// Members returns a snapshot of the current member handles, in no
// particular order.
func (m *Membership) Members() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	handles := make([]string, 0, len(m.members))
	for h := range m.members {
		handles = append(handles, h)
	}
	return handles
}

func (m *Membership) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.members)
}
