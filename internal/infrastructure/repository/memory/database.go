package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantasy-roster/internal/domain/player"
	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
)

// Database is the shared in-process state behind the memory repositories.
// Reads outside WithinTx may observe writes of a transaction still running;
// writes outside it wait for the transaction to finish.
type Database struct {
	mu      sync.RWMutex
	players []player.Player
	byID    map[string]int
	uploads map[string]roster.Upload
	entries map[string][]roster.Entry

	txMu sync.Mutex
}

func NewDatabase(seed []player.Player) *Database {
	db := &Database{
		players: make([]player.Player, 0, len(seed)),
		byID:    make(map[string]int, len(seed)),
		uploads: make(map[string]roster.Upload),
		entries: make(map[string][]roster.Entry),
	}
	for _, p := range seed {
		db.byID[p.ID] = len(db.players)
		db.players = append(db.players, p)
	}
	return db
}

type snapshot struct {
	players []player.Player
	uploads map[string]roster.Upload
	entries map[string][]roster.Entry
}

func (db *Database) snapshot() snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()

	s := snapshot{
		players: append([]player.Player(nil), db.players...),
		uploads: make(map[string]roster.Upload, len(db.uploads)),
		entries: make(map[string][]roster.Entry, len(db.entries)),
	}
	for k, v := range db.uploads {
		s.uploads[k] = v
	}
	for k, v := range db.entries {
		s.entries[k] = append([]roster.Entry(nil), v...)
	}
	return s
}

func (db *Database) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.players = s.players
	db.byID = make(map[string]int, len(s.players))
	for i, p := range s.players {
		db.byID[p.ID] = i
	}
	db.uploads = s.uploads
	db.entries = s.entries
}

// lockWrite takes the write lock. Writes from outside a transaction also
// wait for a running one, so its rollback never undoes them.
func (db *Database) lockWrite(inTx bool) (unlock func()) {
	if !inTx {
		db.txMu.Lock()
	}
	db.mu.Lock()
	return func() {
		db.mu.Unlock()
		if !inTx {
			db.txMu.Unlock()
		}
	}
}

// TxManager serializes transactions and rolls state back when fn fails.
type TxManager struct {
	db *Database
}

func NewTxManager(db *Database) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, store roster.Store) error) error {
	m.db.txMu.Lock()
	defer m.db.txMu.Unlock()

	before := m.db.snapshot()
	store := roster.Store{
		Players: &PlayerRepository{db: m.db, inTx: true},
		Rosters: &RosterRepository{db: m.db, inTx: true},
	}
	if err := fn(ctx, store); err != nil {
		m.db.restore(before)
		return err
	}
	return nil
}
