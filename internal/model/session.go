package model

import "time"

// Session is the sole persisted entity: an append-only conversation bound
// to one owner. OwnerID is set at creation and immutable afterwards.
// Version backs the conditional message update in the store; it never
// appears on the wire to callers.
type Session struct {
	SessionID string    `json:"chat_id"`
	OwnerID   string    `json:"user_id"`
	Messages  []Message `json:"messages"`
	Version   int64     `json:"version,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserMessageCount returns how many user-role turns the session holds.
// System messages count toward no limit.
func (s *Session) UserMessageCount() int {
	count := 0
	for _, msg := range s.Messages {
		if msg.Role == RoleUser {
			count++
		}
	}
	return count
}
