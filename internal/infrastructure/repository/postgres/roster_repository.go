package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
	qb "github.com/riskibarqy/fantasy-roster/internal/platform/querybuilder"
)

// entryBatchSize keeps multi-row inserts well under the 65535 bind limit.
const entryBatchSize = 1000

type RosterRepository struct {
	db sqlx.ExtContext
}

func NewRosterRepository(db sqlx.ExtContext) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) CreateUpload(ctx context.Context, upload roster.Upload) error {
	if err := upload.Validate(); err != nil {
		return fmt.Errorf("validate upload: %w", err)
	}

	query, args, err := qb.InsertModel("roster_uploads", rosterUploadTableModel{
		ID:         upload.ID,
		Dialect:    string(upload.Dialect),
		Filename:   upload.Filename,
		UploadedAt: upload.UploadedAt,
	})
	if err != nil {
		return fmt.Errorf("build insert roster upload query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert roster upload: %w", err)
	}
	return nil
}

func (r *RosterRepository) GetUpload(ctx context.Context, uploadID string) (roster.Upload, bool, error) {
	query, args, err := qb.Select(rosterUploadSelectColumns...).From("roster_uploads").
		Where(qb.Eq("id", uploadID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return roster.Upload{}, false, fmt.Errorf("build select roster upload query: %w", err)
	}

	var row rosterUploadTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return roster.Upload{}, false, nil
		}
		return roster.Upload{}, false, fmt.Errorf("select roster upload: %w", err)
	}
	return row.toDomain(), true, nil
}

// DeleteUpload relies on ON DELETE CASCADE for the entries.
func (r *RosterRepository) DeleteUpload(ctx context.Context, uploadID string) (bool, error) {
	query, args, err := qb.DeleteFrom("roster_uploads").Where(qb.Eq("id", uploadID)).ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete roster upload query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete roster upload: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read deleted roster upload rows: %w", err)
	}
	return affected > 0, nil
}

func (r *RosterRepository) CreateEntries(ctx context.Context, entries []roster.Entry) error {
	for start := 0; start < len(entries); start += entryBatchSize {
		end := min(start+entryBatchSize, len(entries))

		rows := make([]rosterEntryTableModel, 0, end-start)
		for _, e := range entries[start:end] {
			rows = append(rows, rosterEntryTableModel{
				UploadID: e.UploadID,
				PlayerID: e.PlayerID,
				Owner:    e.Owner,
				Status:   nullString(e.Status),
			})
		}

		query, args, err := qb.InsertModels("roster_entries", rows)
		if err != nil {
			return fmt.Errorf("build insert roster entries query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert roster entries: %w", err)
		}
	}
	return nil
}

func (r *RosterRepository) ListEntries(ctx context.Context, uploadID string, filter roster.EntryFilter) ([]roster.Entry, error) {
	conditions := []qb.Condition{qb.Eq("upload_id", uploadID)}
	if filter.Owner != "" {
		conditions = append(conditions, qb.Eq("owner", filter.Owner))
	}

	query, args, err := qb.Select(rosterEntrySelectColumns...).From("roster_entries").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select roster entries query: %w", err)
	}

	var rows []rosterEntryTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select roster entries: %w", err)
	}

	out := make([]roster.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
