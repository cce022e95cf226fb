package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session represents one user's conversation with the assistant
type Session struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	Turns        []Turn    `json:"turns"`
}

// IsIdle reports whether the session saw no activity for longer than ttl.
func (s *Session) IsIdle(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActivity) > ttl
}

// UpdateActivity updates the last activity timestamp
func (s *Session) UpdateActivity(now time.Time) {
	s.LastActivity = now
}
