package presence

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrNameTaken         = errors.New("nickname already in use")
	ErrInvalidName       = errors.New("nickname cannot be empty")
	ErrAlreadyRegistered = errors.New("connection already joined")
)

// Session is the live state of one connected, admitted identity.
type Session struct {
	Handle   string
	Nickname string
	JoinedAt time.Time
}

// Registry maps connection handles to sessions and keeps nicknames unique.
// Insertion order is kept so rosters read the way people joined.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
	order    []string
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// ValidateNickname reports ErrInvalidName for blank names.
func ValidateNickname(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	return nil
}

func (r *Registry) IsNicknameTaken(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.takenLocked(name)
}

func (r *Registry) takenLocked(name string) bool {
	for _, s := range r.sessions {
		if s.Nickname == name {
			return true
		}
	}
	return false
}

// Register claims name for handle. The uniqueness check and the insert
// happen under the same lock, so two racing joins can't both win.
func (r *Registry) Register(handle, name string) (Session, error) {
	if err := ValidateNickname(name); err != nil {
		return Session{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[handle]; ok {
		return Session{}, ErrAlreadyRegistered
	}
	if r.takenLocked(name) {
		return Session{}, ErrNameTaken
	}

	s := Session{Handle: handle, Nickname: name, JoinedAt: r.now()}
	r.sessions[handle] = s
	r.order = append(r.order, handle)
	return s, nil
}

// Remove deletes the session for handle. Removing an unknown handle is a no-op.
func (r *Registry) Remove(handle string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[handle]
	if !ok {
		return Session{}, false
	}
	delete(r.sessions, handle)
	for i, h := range r.order {
		if h == handle {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return s, true
}

func (r *Registry) Lookup(handle string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[handle]
	return s, ok
}

// Nicknames returns the nicknames of sessions accepted by keep, in
// registration order. A nil keep returns every session.
func (r *Registry) Nicknames(keep func(handle string) bool) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, h := range r.order {
		if keep != nil && !keep(h) {
			continue
		}
		names = append(names, r.sessions[h].Nickname)
	}
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
