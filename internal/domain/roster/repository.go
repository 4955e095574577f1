package roster

import (
	"context"

	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
)

// Repository describes upload and entry persistence needs from use cases.
type Repository interface {
	CreateUpload(ctx context.Context, upload Upload) error
	GetUpload(ctx context.Context, uploadID string) (Upload, bool, error)
	DeleteUpload(ctx context.Context, uploadID string) (bool, error)
	CreateEntries(ctx context.Context, entries []Entry) error
	ListEntries(ctx context.Context, uploadID string, filter EntryFilter) ([]Entry, error)
}

// Store groups the repositories that share one transaction.
type Store struct {
	Players player.Repository
	Rosters Repository
}

// TxManager runs fn inside one transaction; fn's error rolls it back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}
