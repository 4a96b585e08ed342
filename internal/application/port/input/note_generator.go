package input

import (
	"context"

	"checkmate-agent/internal/domain/entity"
)

// NoteRequest carries the content a user submitted for checking. Exactly one
// of Text or ImageURL must be set.
type NoteRequest struct {
	Text        string
	ImageURL    string
	Caption     string
	AddPlanning bool
	// Provider picks the model backend. Empty means the configured default.
	Provider  string
	RequestID string
}

type NoteGenerator interface {
	GenerateNote(ctx context.Context, req NoteRequest) (*entity.NoteVerdict, error)
}
