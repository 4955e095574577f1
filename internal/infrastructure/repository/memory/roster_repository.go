package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
)

type RosterRepository struct {
	db   *Database
	inTx bool
}

func NewRosterRepository(db *Database) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) CreateUpload(_ context.Context, upload roster.Upload) error {
	if err := upload.Validate(); err != nil {
		return fmt.Errorf("validate upload: %w", err)
	}

	defer r.db.lockWrite(r.inTx)()

	if _, exists := r.db.uploads[upload.ID]; exists {
		return fmt.Errorf("upload %s already exists", upload.ID)
	}
	r.db.uploads[upload.ID] = upload
	return nil
}

func (r *RosterRepository) GetUpload(_ context.Context, uploadID string) (roster.Upload, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	upload, ok := r.db.uploads[uploadID]
	return upload, ok, nil
}

func (r *RosterRepository) DeleteUpload(_ context.Context, uploadID string) (bool, error) {
	defer r.db.lockWrite(r.inTx)()

	if _, ok := r.db.uploads[uploadID]; !ok {
		return false, nil
	}
	delete(r.db.uploads, uploadID)
	delete(r.db.entries, uploadID)
	return true, nil
}

func (r *RosterRepository) CreateEntries(_ context.Context, entries []roster.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	defer r.db.lockWrite(r.inTx)()

	for _, e := range entries {
		if _, ok := r.db.uploads[e.UploadID]; !ok {
			return fmt.Errorf("create roster entry: upload %s not found", e.UploadID)
		}
		if _, ok := r.db.byID[e.PlayerID]; !ok {
			return fmt.Errorf("create roster entry: player %s not found", e.PlayerID)
		}
	}
	for _, e := range entries {
		r.db.entries[e.UploadID] = append(r.db.entries[e.UploadID], e)
	}
	return nil
}

func (r *RosterRepository) ListEntries(_ context.Context, uploadID string, filter roster.EntryFilter) ([]roster.Entry, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	entries := r.db.entries[uploadID]
	out := make([]roster.Entry, 0, len(entries))
	for _, e := range entries {
		if filter.Owner != "" && e.Owner != filter.Owner {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
