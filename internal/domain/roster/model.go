package roster

import (
	"fmt"
	"strings"
	"time"
)

// Dialect identifies the export layout of one fantasy platform.
type Dialect string

const (
	DialectFantrax Dialect = "fantrax"
	DialectCBS     Dialect = "cbs"
	DialectNFBC    Dialect = "nfbc"
	DialectUnknown Dialect = "unknown"
)

// FreeAgent is the owner label of players no team has rostered.
const FreeAgent = "Free Agent"

// ExternalIDs carries the ids a roster export exposes for a row.
type ExternalIDs struct {
	FantraxID *string
	NFBCID    *int64
}

func (e ExternalIDs) IsEmpty() bool {
	return e.FantraxID == nil && e.NFBCID == nil
}

// Row is one normalized line of a roster export.
type Row struct {
	Line        int
	ExternalIDs ExternalIDs
	Name        string
	MLBTeam     *string
	Position    *string
	Owner       string
	RawStatus   *string
}

func (r Row) IsFreeAgent() bool {
	return r.Owner == FreeAgent
}

// RowError reports one skipped line.
type RowError struct {
	Line   int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

type ParseResult struct {
	Dialect Dialect
	Rows    []Row
	Errors  []RowError
}

// Upload is one imported league export; its entries live and die with it.
type Upload struct {
	ID         string
	Dialect    Dialect
	Filename   string
	UploadedAt time.Time
}

func (u Upload) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("upload id is required")
	}
	switch u.Dialect {
	case DialectFantrax, DialectCBS, DialectNFBC:
	default:
		return fmt.Errorf("invalid upload dialect: %s", u.Dialect)
	}
	return nil
}

// Entry ties a player to an upload with the owning team label.
type Entry struct {
	UploadID string
	PlayerID string
	Owner    string
	Status   *string
}

// EntryFilter narrows ListEntries. An empty Owner lists every entry.
type EntryFilter struct {
	Owner string
}
