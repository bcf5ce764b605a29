package dao

import (
	"context"
	"errors"
	"time"

	"pagechat/pagechat/services/llm"
	"pagechat/pagechat/sources/psql/models"

	"gorm.io/gorm"
)

var ErrTranscriptNotFound = errors.New("transcript not found")

type TranscriptDAO struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewTranscriptDAO(db *gorm.DB) *TranscriptDAO {
	return &TranscriptDAO{DB: db, now: time.Now}
}

// SaveTranscript writes a closed session and all its turns in one transaction.
func (dao *TranscriptDAO) SaveTranscript(ctx context.Context, sessionID string, startedAt time.Time, turns []llm.Message) error {
	transcript := models.SessionTranscript{
		SessionID: sessionID,
		StartedAt: startedAt,
		EndedAt:   dao.now(),
		TurnCount: len(turns),
		Turns:     make([]models.TranscriptTurn, 0, len(turns)),
	}
	for i, turn := range turns {
		transcript.Turns = append(transcript.Turns, models.TranscriptTurn{
			Position: i,
			Role:     turn.Role,
			Content:  turn.Content.String(),
		})
	}
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&transcript).Error
	})
}

// GetTranscriptBySessionID loads a transcript with its turns in order.
func (dao *TranscriptDAO) GetTranscriptBySessionID(ctx context.Context, sessionID string) (*models.SessionTranscript, error) {
	var t models.SessionTranscript
	err := dao.DB.WithContext(ctx).
		Preload("Turns", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("session_id = ?", sessionID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTranscriptNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTranscripts returns the most recent transcripts without their turns.
func (dao *TranscriptDAO) ListTranscripts(ctx context.Context, limit int) ([]models.SessionTranscript, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []models.SessionTranscript
	err := dao.DB.WithContext(ctx).
		Order("ended_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
