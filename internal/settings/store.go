package settings

import (
	"context"
	"errors"

	"ticket-mailer/internal/models"
)

// SequenceKey names the last-used ticket sequence counter.
const SequenceKey = "qr_last_sequence"

var (
	ErrNotFound        = errors.New("settings: not found")
	ErrInvalidQuantity = errors.New("settings: quantity must not be negative")
)

// Store persists the saved event configuration and the advisory sequence
// counter. The code generator never reads it; callers use the counter to pick
// index offsets across batches.
type Store interface {
	GetEventConfig(ctx context.Context) (models.EventConfig, error)
	SaveEventConfig(ctx context.Context, cfg models.EventConfig) error

	LastSequence(ctx context.Context) (int64, error)
	IncrementSequence(ctx context.Context, quantity int64) (int64, error)
	ResetSequence(ctx context.Context) error

	Close() error
}
