package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
	"github.com/stretchr/testify/require"
)

func TestRosterRepository_CreateEntriesBatches(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewRosterRepository(db)
	status := "AA"

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roster_entries (upload_id, player_id, owner, status) VALUES ($1, $2, $3, $4), ($5, $6, $7, $8)")).
		WithArgs("u-1", "p-1", "AA", "AA", "u-1", "p-2", roster.FreeAgent, nil).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.CreateEntries(context.Background(), []roster.Entry{
		{UploadID: "u-1", PlayerID: "p-1", Owner: "AA", Status: &status},
		{UploadID: "u-1", PlayerID: "p-2", Owner: roster.FreeAgent},
	})
	require.NoError(t, err)
	require.NoError(t, repo.CreateEntries(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepository_ListEntriesByOwner(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewRosterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT upload_id, player_id, owner, status FROM roster_entries WHERE upload_id = $1 AND owner = $2 ORDER BY id")).
		WithArgs("u-1", roster.FreeAgent).
		WillReturnRows(sqlmock.NewRows([]string{"upload_id", "player_id", "owner", "status"}).
			AddRow("u-1", "p-2", roster.FreeAgent, nil))

	got, err := repo.ListEntries(context.Background(), "u-1", roster.EntryFilter{Owner: roster.FreeAgent})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Nil(t, got[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepository_GetAndDeleteUpload(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewRosterRepository(db)
	uploadedAt := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, dialect, filename, uploaded_at FROM roster_uploads WHERE id = $1 LIMIT 1")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "dialect", "filename", "uploaded_at"}).AddRow("u-1", "nfbc", "nfbc.csv", uploadedAt))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM roster_uploads WHERE id = $1")).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM roster_uploads WHERE id = $1")).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	upload, ok, err := repo.GetUpload(context.Background(), "u-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, roster.DialectNFBC, upload.Dialect)

	deleted, err := repo.DeleteUpload(context.Background(), "u-1")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = repo.DeleteUpload(context.Background(), "u-1")
	require.NoError(t, err)
	require.False(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_CommitsAndRollsBack(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	tx := NewTxManager(db)
	lock := regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")

	mock.ExpectBegin()
	mock.ExpectExec(lock).WithArgs(identityLockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO roster_uploads (id, dialect, filename, uploaded_at) VALUES ($1, $2, $3, $4)")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tx.WithinTx(context.Background(), func(ctx context.Context, store roster.Store) error {
		return store.Rosters.CreateUpload(ctx, roster.Upload{ID: "u-1", Dialect: roster.DialectCBS, Filename: "cbs.csv"})
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(lock).WithArgs(identityLockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = tx.WithinTx(context.Background(), func(ctx context.Context, store roster.Store) error {
		return player.NewIdentityConflict(player.NamespaceNFBC, "11802", "p-other")
	})
	require.True(t, errors.Is(err, player.ErrIdentityConflict), "got %v", err)
	require.NoError(t, mock.ExpectationsWereMet())
}
