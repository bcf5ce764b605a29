package controllers

import (
	"context"

	"pagechat/pagechat/sources/psql/models"
)

type TranscriptStore interface {
	GetTranscriptBySessionID(ctx context.Context, sessionID string) (*models.SessionTranscript, error)
	ListTranscripts(ctx context.Context, limit int) ([]models.SessionTranscript, error)
}

// TranscriptsController serves archived sessions read-only.
type TranscriptsController struct {
	store TranscriptStore
}

func NewTranscriptsController(store TranscriptStore) *TranscriptsController {
	return &TranscriptsController{store: store}
}

func (c *TranscriptsController) List(ctx context.Context, limit int) ([]models.SessionTranscript, error) {
	return c.store.ListTranscripts(ctx, limit)
}

func (c *TranscriptsController) Get(ctx context.Context, sessionID string) (*models.SessionTranscript, error) {
	return c.store.GetTranscriptBySessionID(ctx, sessionID)
}
