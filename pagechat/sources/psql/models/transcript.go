package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionTranscript is the archived history of one closed relay session.
type SessionTranscript struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID string           `json:"session_id" gorm:"type:varchar(64);not null;uniqueIndex"`
	StartedAt time.Time        `json:"started_at" gorm:"not null"`
	EndedAt   time.Time        `json:"ended_at" gorm:"not null"`
	TurnCount int              `json:"turn_count" gorm:"not null"`
	Turns     []TranscriptTurn `json:"turns,omitempty" gorm:"foreignKey:TranscriptID;constraint:OnDelete:CASCADE"`
}

func (t *SessionTranscript) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type TranscriptTurn struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	TranscriptID uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	Position     int       `json:"position" gorm:"not null"`
	Role         string    `json:"role" gorm:"type:varchar(20);not null"`
	Content      string    `json:"content" gorm:"type:text;not null"`
}
