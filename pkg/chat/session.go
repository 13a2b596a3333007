package chat

import (
	"sync"
	"time"

	"github.com/semillaai/semilla/pkg/erpdb"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    string
	Content string
}

// LastData is the most recent data-bearing result of a conversation, kept to
// resolve short follow-ups without a fresh SQL round-trip.
type LastData struct {
	Kind  string // "cliente", "articulo" or "dato"
	Table string
	Rows  []erpdb.Row
}

// historyWindow bounds how many turns a session remembers.
const historyWindow = 10

type session struct {
	history []Message
	last    *LastData
	touched time.Time
}

// SessionStore keeps per-conversation state keyed by conversation ID.
// Sessions untouched for longer than the TTL are evicted lazily on access.
// Safe for concurrent use.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*session

	now func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// get returns the live session for id, creating it if needed. Callers hold mu.
func (s *SessionStore) get(id string) *session {
	now := s.now()
	for k, sess := range s.sessions {
		if s.ttl > 0 && now.Sub(sess.touched) > s.ttl {
			delete(s.sessions, k)
		}
	}
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	sess.touched = now
	return sess
}

// History returns a copy of the conversation's recent turns.
func (s *SessionStore) History(id string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.get(id).history
	out := make([]Message, len(h))
	copy(out, h)
	return out
}

// Append adds turns to the history, keeping only the most recent window.
func (s *SessionStore) Append(id string, msgs ...Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(id)
	sess.history = append(sess.history, msgs...)
	if n := len(sess.history); n > historyWindow {
		sess.history = append(sess.history[:0:0], sess.history[n-historyWindow:]...)
	}
}

// LastData returns the conversation's retained result, or nil.
func (s *SessionStore) LastData(id string) *LastData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id).last
}

func (s *SessionStore) SetLastData(id string, d *LastData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(id).last = d
}

func (s *SessionStore) ClearLastData(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(id).last = nil
}
