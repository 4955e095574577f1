package cache

import (
	"context"
	"testing"

	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
	rostermock "github.com/riskibarqy/fantasy-roster/internal/mocks/domain/roster"
	basecache "github.com/riskibarqy/fantasy-roster/internal/platform/cache"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRosterRepository_GetUploadCachesHitsOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := rostermock.NewRepository(t)
	upload := roster.Upload{ID: "u-1", Dialect: roster.DialectCBS, Filename: "cbs.csv"}
	next.On("GetUpload", mock.Anything, "u-1").Return(upload, true, nil).Once()
	next.On("GetUpload", mock.Anything, "u-2").Return(roster.Upload{}, false, nil).Twice()

	repo := NewRosterRepository(next, basecache.NewStore(0))
	for range 3 {
		got, exists, err := repo.GetUpload(ctx, "u-1")
		require.NoError(t, err)
		require.True(t, exists)
		require.Equal(t, upload, got)
	}
	for range 2 {
		_, exists, err := repo.GetUpload(ctx, "u-2")
		require.NoError(t, err)
		require.False(t, exists)
	}
}

func TestRosterRepository_ListEntriesFiltersCachedCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := rostermock.NewRepository(t)
	next.On("ListEntries", mock.Anything, "u-1", roster.EntryFilter{}).Return([]roster.Entry{
		{UploadID: "u-1", PlayerID: "p-judge", Owner: "Bronx Bombers"},
		{UploadID: "u-1", PlayerID: "p-soto", Owner: roster.FreeAgent},
	}, nil).Once()

	repo := NewRosterRepository(next, basecache.NewStore(0))

	all, err := repo.ListEntries(ctx, "u-1", roster.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	owned, err := repo.ListEntries(ctx, "u-1", roster.EntryFilter{Owner: "Bronx Bombers"})
	require.NoError(t, err)
	require.Len(t, owned, 1)
	require.Equal(t, "p-judge", owned[0].PlayerID)

	owned[0].Owner = "mutated"
	again, err := repo.ListEntries(ctx, "u-1", roster.EntryFilter{Owner: "Bronx Bombers"})
	require.NoError(t, err)
	require.Len(t, again, 1)
}

func TestRosterRepository_DeleteInvalidates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := rostermock.NewRepository(t)
	upload := roster.Upload{ID: "u-1", Dialect: roster.DialectFantrax, Filename: "fx.csv"}
	next.On("GetUpload", mock.Anything, "u-1").Return(upload, true, nil).Once()
	next.On("DeleteUpload", mock.Anything, "u-1").Return(true, nil).Once()

	repo := NewRosterRepository(next, basecache.NewStore(0))
	_, exists, err := repo.GetUpload(ctx, "u-1")
	require.NoError(t, err)
	require.True(t, exists)

	deleted, err := repo.DeleteUpload(ctx, "u-1")
	require.NoError(t, err)
	require.True(t, deleted)

	next.On("GetUpload", mock.Anything, "u-1").Return(roster.Upload{}, false, nil).Once()
	_, exists, err = repo.GetUpload(ctx, "u-1")
	require.NoError(t, err)
	require.False(t, exists)
}
