package cache

import (
	"context"

	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
	basecache "github.com/riskibarqy/fantasy-roster/internal/platform/cache"
)

// RosterRepository is a read-through cache over a roster repository.
// Uploads never change after import, so only deletion invalidates. Misses
// are not cached.
type RosterRepository struct {
	next  roster.Repository
	cache *basecache.Store
}

func NewRosterRepository(next roster.Repository, cache *basecache.Store) *RosterRepository {
	return &RosterRepository{next: next, cache: cache}
}

func uploadKey(uploadID string) string  { return "roster:upload:" + uploadID }
func entriesKey(uploadID string) string { return "roster:entries:" + uploadID }

func (r *RosterRepository) CreateUpload(ctx context.Context, upload roster.Upload) error {
	return r.next.CreateUpload(ctx, upload)
}

func (r *RosterRepository) GetUpload(ctx context.Context, uploadID string) (roster.Upload, bool, error) {
	if v, ok := r.cache.Get(ctx, uploadKey(uploadID)); ok {
		if upload, ok := v.(roster.Upload); ok {
			return upload, true, nil
		}
	}

	upload, exists, err := r.next.GetUpload(ctx, uploadID)
	if err != nil || !exists {
		return upload, exists, err
	}
	r.cache.Set(ctx, uploadKey(uploadID), upload)
	return upload, true, nil
}

func (r *RosterRepository) DeleteUpload(ctx context.Context, uploadID string) (bool, error) {
	deleted, err := r.next.DeleteUpload(ctx, uploadID)
	r.cache.Delete(ctx, uploadKey(uploadID))
	r.cache.Delete(ctx, entriesKey(uploadID))
	return deleted, err
}

func (r *RosterRepository) CreateEntries(ctx context.Context, entries []roster.Entry) error {
	if err := r.next.CreateEntries(ctx, entries); err != nil {
		return err
	}
	seen := make(map[string]struct{}, 1)
	for _, e := range entries {
		if _, ok := seen[e.UploadID]; ok {
			continue
		}
		seen[e.UploadID] = struct{}{}
		r.cache.Delete(ctx, entriesKey(e.UploadID))
	}
	return nil
}

// ListEntries caches the unfiltered list per upload and applies the owner
// filter on the copy.
func (r *RosterRepository) ListEntries(ctx context.Context, uploadID string, filter roster.EntryFilter) ([]roster.Entry, error) {
	v, err := r.cache.GetOrLoad(ctx, entriesKey(uploadID), func(ctx context.Context) (any, error) {
		items, err := r.next.ListEntries(ctx, uploadID, roster.EntryFilter{})
		if err != nil {
			return nil, err
		}
		return append([]roster.Entry(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	cached, _ := v.([]roster.Entry)
	out := make([]roster.Entry, 0, len(cached))
	for _, e := range cached {
		if filter.Owner != "" && e.Owner != filter.Owner {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
