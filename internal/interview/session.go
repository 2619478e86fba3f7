package interview

import (
	"sync"
	"time"
)

// Section is the interview stage a session is currently in.
type Section string

const (
	SectionGreeting  Section = "greeting"
	SectionMenu      Section = "menu"
	SectionSelfIntro Section = "self_intro"
	SectionTechnical Section = "technical"
	SectionSoftSkill Section = "soft_skill"
	// SectionComplete exists for wire compatibility. No transition currently
	// reaches it.
	SectionComplete Section = "complete"
)

// Active reports whether the section is one of the three question sections.
func (s Section) Active() bool {
	return s == SectionSelfIntro || s == SectionTechnical || s == SectionSoftSkill
}

// Message is one transcript entry.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Session holds the conversational state of one mock interview.
type Session struct {
	ID            string    `json:"session_id"`
	UserID        string    `json:"user_id"`
	Section       Section   `json:"current_section"`
	QuestionIndex int       `json:"question_index"`
	Messages      []Message `json:"messages"`
	CreatedAt     time.Time `json:"created_at"`
	JobTitle      string    `json:"job_title,omitempty"`
}

// AddMessage appends a transcript entry stamped with the current time.
func (s *Session) AddMessage(role, content string) {
	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// SessionStore owns the session registry. Implementations must be safe for
// concurrent use.
type SessionStore interface {
	Get(sessionID string) (*Session, bool)
	Put(session *Session)
	Delete(sessionID string)
}

// MemoryStore is the default in-process session registry. Sessions are lost
// on restart; there is no persistence guarantee.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	return session, ok
}

func (m *MemoryStore) Put(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.ID] = session
}

func (m *MemoryStore) Delete(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
}
