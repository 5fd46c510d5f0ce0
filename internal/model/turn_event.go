package model

import "time"

// TurnEvent is the archive row written by the transcript worker. One row
// per message of a completed turn, mirroring what the session store holds
// so experimenters can query transcripts relationally.
type TurnEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  string    `gorm:"size:128;not null;index" json:"chat_id"`
	OwnerID    string    `gorm:"size:128;not null;index" json:"user_id"`
	Role       string    `gorm:"size:16;not null" json:"role"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	RecordedAt time.Time `json:"recorded_at"`
}
