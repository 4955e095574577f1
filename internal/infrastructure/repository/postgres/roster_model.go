package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
)

type rosterUploadTableModel struct {
	ID         string    `db:"id"`
	Dialect    string    `db:"dialect"`
	Filename   string    `db:"filename"`
	UploadedAt time.Time `db:"uploaded_at"`
}

// rosterEntryTableModel omits the serial id, which only orders entries.
type rosterEntryTableModel struct {
	UploadID string         `db:"upload_id"`
	PlayerID string         `db:"player_id"`
	Owner    string         `db:"owner"`
	Status   sql.NullString `db:"status"`
}

var rosterUploadSelectColumns = []string{"id", "dialect", "filename", "uploaded_at"}

var rosterEntrySelectColumns = []string{"upload_id", "player_id", "owner", "status"}

func (m rosterUploadTableModel) toDomain() roster.Upload {
	return roster.Upload{
		ID:         m.ID,
		Dialect:    roster.Dialect(m.Dialect),
		Filename:   m.Filename,
		UploadedAt: m.UploadedAt,
	}
}

func (m rosterEntryTableModel) toDomain() roster.Entry {
	return roster.Entry{
		UploadID: m.UploadID,
		PlayerID: m.PlayerID,
		Owner:    m.Owner,
		Status:   stringPtr(m.Status),
	}
}
