package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
)

func TestRosterRepository_DeleteCascadesEntries(t *testing.T) {
	t.Parallel()

	db := NewDatabase(SeedPlayers())
	repo := NewRosterRepository(db)
	ctx := context.Background()

	upload := roster.Upload{ID: "u-1", Dialect: roster.DialectFantrax, Filename: "league.csv", UploadedAt: time.Now()}
	if err := repo.CreateUpload(ctx, upload); err != nil {
		t.Fatalf("create upload: %v", err)
	}
	err := repo.CreateEntries(ctx, []roster.Entry{
		{UploadID: "u-1", PlayerID: "seed-judge", Owner: "Bombers"},
		{UploadID: "u-1", PlayerID: "seed-witt", Owner: roster.FreeAgent},
	})
	if err != nil {
		t.Fatalf("create entries: %v", err)
	}

	owned, err := repo.ListEntries(ctx, "u-1", roster.EntryFilter{Owner: "Bombers"})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(owned) != 1 || owned[0].PlayerID != "seed-judge" {
		t.Fatalf("unexpected owner filter result: %+v", owned)
	}

	deleted, err := repo.DeleteUpload(ctx, "u-1")
	if err != nil || !deleted {
		t.Fatalf("delete upload: deleted=%v err=%v", deleted, err)
	}
	if _, ok, _ := repo.GetUpload(ctx, "u-1"); ok {
		t.Fatalf("expected upload to be gone")
	}
	left, _ := repo.ListEntries(ctx, "u-1", roster.EntryFilter{})
	if len(left) != 0 {
		t.Fatalf("expected entries to be deleted with upload, got=%d", len(left))
	}

	deleted, err = repo.DeleteUpload(ctx, "u-1")
	if err != nil || deleted {
		t.Fatalf("second delete should report missing: deleted=%v err=%v", deleted, err)
	}
}

func TestRosterRepository_CreateEntriesRequiresKnownPlayer(t *testing.T) {
	t.Parallel()

	repo := NewRosterRepository(NewDatabase(nil))
	ctx := context.Background()
	_ = repo.CreateUpload(ctx, roster.Upload{ID: "u-1", Dialect: roster.DialectCBS})

	err := repo.CreateEntries(ctx, []roster.Entry{{UploadID: "u-1", PlayerID: "ghost", Owner: "A"}})
	if err == nil {
		t.Fatalf("expected entry for unknown player to fail")
	}
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	t.Parallel()

	db := NewDatabase(nil)
	tx := NewTxManager(db)
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := tx.WithinTx(ctx, func(ctx context.Context, store roster.Store) error {
		if err := store.Players.Create(ctx, player.Player{ID: "p-1", Name: "Gunnar Henderson"}); err != nil {
			return err
		}
		if err := store.Rosters.CreateUpload(ctx, roster.Upload{ID: "u-1", Dialect: roster.DialectNFBC}); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected fn error to propagate, got=%v", err)
	}

	if got, _ := NewPlayerRepository(db).GetByIDs(ctx, []string{"p-1"}); len(got) != 0 {
		t.Fatalf("expected player insert to be rolled back")
	}
	if _, ok, _ := NewRosterRepository(db).GetUpload(ctx, "u-1"); ok {
		t.Fatalf("expected upload insert to be rolled back")
	}

	err = tx.WithinTx(ctx, func(ctx context.Context, store roster.Store) error {
		return store.Players.Create(ctx, player.Player{ID: "p-2", Name: "Elly De La Cruz"})
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got, _ := NewPlayerRepository(db).GetByIDs(ctx, []string{"p-2"}); len(got) != 1 {
		t.Fatalf("expected committed player to persist")
	}
}

func TestTxManager_RollbackKeepsConcurrentDelete(t *testing.T) {
	t.Parallel()

	db := NewDatabase(nil)
	tx := NewTxManager(db)
	repo := NewRosterRepository(db)
	ctx := context.Background()
	if err := repo.CreateUpload(ctx, roster.Upload{ID: "u-old", Dialect: roster.DialectCBS}); err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	errBoom := errors.New("boom")
	inside := make(chan struct{})
	release := make(chan struct{})
	txErr := make(chan error, 1)
	go func() {
		txErr <- tx.WithinTx(ctx, func(ctx context.Context, store roster.Store) error {
			if err := store.Rosters.CreateUpload(ctx, roster.Upload{ID: "u-new", Dialect: roster.DialectCBS}); err != nil {
				return err
			}
			close(inside)
			<-release
			return errBoom
		})
	}()

	<-inside
	deleted := make(chan bool, 1)
	go func() {
		ok, _ := repo.DeleteUpload(ctx, "u-old")
		deleted <- ok
	}()
	close(release)

	if err := <-txErr; !errors.Is(err, errBoom) {
		t.Fatalf("expected rollback error, got=%v", err)
	}
	if !<-deleted {
		t.Fatalf("expected delete to find the upload")
	}
	if _, ok, _ := repo.GetUpload(ctx, "u-old"); ok {
		t.Fatalf("expected delete to survive the rollback")
	}
	if _, ok, _ := repo.GetUpload(ctx, "u-new"); ok {
		t.Fatalf("expected rolled back upload to be gone")
	}
}
