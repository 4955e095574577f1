package rostercsv

import (
	"bytes"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
)

type rowParser func(cols columns, fields []string) (roster.Row, error)

type dialectSpec struct {
	required []string
	parse    rowParser
}

var dialects = map[roster.Dialect]dialectSpec{
	roster.DialectFantrax: {required: []string{"ID", "Player", "Team", "Position", "Status"}, parse: parseFantraxRow},
	roster.DialectCBS:     {required: []string{"Avail", "Player"}, parse: parseCBSRow},
	roster.DialectNFBC:    {required: []string{"id", nfbcNameColumn, "Owner", "Pos", "Team"}, parse: parseNFBCRow},
}

// Parse detects the dialect of content and parses every data row.
// Rows that fail are reported in the result and skipped.
func Parse(content []byte) (roster.ParseResult, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	dialect, skip := DetectBytes(content)
	if dialect == roster.DialectUnknown {
		return roster.ParseResult{}, crerr.Wrap(roster.ErrUnknownFormat, "no known dialect with or without a leading title row")
	}
	return ParseDialect(content, dialect, skip)
}

// ParseDialect parses content as dialect, skipping skip rows before the header.
func ParseDialect(content []byte, dialect roster.Dialect, skip int) (roster.ParseResult, error) {
	spec, ok := dialects[dialect]
	if !ok {
		return roster.ParseResult{}, crerr.Wrapf(roster.ErrUnknownFormat, "unsupported dialect %q", dialect)
	}

	content = bytes.TrimPrefix(content, utf8BOM)
	lines, err := readLines(content, skip, 0)
	if err != nil {
		return roster.ParseResult{}, crerr.Wrapf(roster.ErrMalformedFile, "read %s csv: %v", dialect, err)
	}
	if len(lines) == 0 {
		return roster.ParseResult{}, crerr.Wrapf(roster.ErrMalformedFile, "%s file has no header row", dialect)
	}

	cols := newColumns(lines[0].fields)
	if missing := cols.missing(spec.required); len(missing) > 0 {
		return roster.ParseResult{}, crerr.Wrapf(roster.ErrMalformedFile,
			"expected %s columns, missing %s; header looks like %s",
			dialect, strings.Join(missing, ", "), guessDialect(cols, dialect))
	}

	result := roster.ParseResult{
		Dialect: dialect,
		Rows:    make([]roster.Row, 0, len(lines)-1),
	}
	for _, line := range lines[1:] {
		row, err := spec.parse(cols, line.fields)
		if err != nil {
			result.Errors = append(result.Errors, roster.RowError{Line: line.line, Reason: err.Error()})
			continue
		}
		row.Line = line.line
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

// guessDialect names a dialect other than expected whose columns the header
// fully carries, or unknown.
func guessDialect(cols columns, expected roster.Dialect) roster.Dialect {
	for _, candidate := range []roster.Dialect{roster.DialectFantrax, roster.DialectCBS, roster.DialectNFBC} {
		if candidate == expected {
			continue
		}
		if len(cols.missing(dialects[candidate].required)) == 0 {
			return candidate
		}
	}
	return roster.DialectUnknown
}

// columns indexes a header case-insensitively. A lookup name may list
// alternatives separated by "|"; the first present one is used.
type columns map[string]int

func newColumns(header []string) columns {
	return columns(indexColumns(header))
}

func (c columns) index(name string) (int, bool) {
	for alt := range strings.SplitSeq(name, "|") {
		if idx, ok := c[strings.ToLower(alt)]; ok {
			return idx, true
		}
	}
	return 0, false
}

func (c columns) missing(required []string) []string {
	var out []string
	for _, name := range required {
		if _, ok := c.index(name); !ok {
			out = append(out, strings.ReplaceAll(name, "|", " or "))
		}
	}
	return out
}

func (c columns) get(fields []string, name string) string {
	idx, ok := c.index(name)
	if !ok {
		return ""
	}
	return field(fields, idx)
}

// optional returns the trimmed value, or nil when it is empty.
func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func ownerOrFreeAgent(value string) string {
	if owner := strings.TrimSpace(value); owner != "" {
		return owner
	}
	return roster.FreeAgent
}

var errMissingName = crerr.New("missing player name")

// Parser adapts the package functions to the use case parser contract.
type Parser struct{}

func NewParser() Parser {
	return Parser{}
}

func (Parser) Parse(content []byte) (roster.ParseResult, error) {
	return Parse(content)
}
