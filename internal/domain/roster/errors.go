package roster

import crerr "github.com/cockroachdb/errors"

var (
	// ErrUnknownFormat is returned when no dialect is detected, even after
	// skipping a leading title row.
	ErrUnknownFormat = crerr.New("unknown roster file format")
	// ErrMalformedFile is returned when a detected dialect's header lacks
	// required columns.
	ErrMalformedFile = crerr.New("malformed roster file")
)
