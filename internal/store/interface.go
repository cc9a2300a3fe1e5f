package store

import (
	"context"

	"bracketbuddy/internal/store/model"
)

// RenderRepository persists one row per chart render attempt.
type RenderRepository interface {
	Insert(ctx context.Context, rec *model.RenderModel) error
	// ListRecent returns the newest rows first; limit <= 0 means no limit.
	ListRecent(ctx context.Context, limit int) ([]model.RenderModel, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]model.RenderModel, error)
}

// Store is the entry point for database access.
type Store interface {
	Renders() RenderRepository
	Close() error
}
