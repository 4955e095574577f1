package rostercsv

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/riskibarqy/fantasy-roster/internal/domain/roster"
)

const sampleRows = 5

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Detect classifies a header plus sampled data rows. Rules, first wins:
// an "id" column whose first non-empty value starts with "*" is Fantrax,
// an "avail" column is CBS, "owner" together with "id" is NFBC.
func Detect(header []string, rows [][]string) roster.Dialect {
	cols := indexColumns(header)

	if idx, ok := cols["id"]; ok {
		for _, row := range rows {
			value := strings.TrimSpace(field(row, idx))
			if value == "" {
				continue
			}
			if strings.HasPrefix(value, "*") {
				return roster.DialectFantrax
			}
			break
		}
	}
	if _, ok := cols["avail"]; ok {
		return roster.DialectCBS
	}
	_, hasOwner := cols["owner"]
	_, hasID := cols["id"]
	if hasOwner && hasID {
		return roster.DialectNFBC
	}
	return roster.DialectUnknown
}

// DetectBytes samples content as-is, then once more with the first row
// skipped. It returns the dialect and the number of leading rows to skip
// before the header; unreadable samples count as unknown.
func DetectBytes(content []byte) (roster.Dialect, int) {
	content = bytes.TrimPrefix(content, utf8BOM)
	for skip := 0; skip <= 1; skip++ {
		records, err := readRecords(content, skip, sampleRows+1)
		if err != nil || len(records) == 0 {
			continue
		}
		if dialect := Detect(records[0], records[1:]); dialect != roster.DialectUnknown {
			return dialect, skip
		}
	}
	return roster.DialectUnknown, 0
}

type record struct {
	fields []string
	line   int
}

func newReader(content []byte) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}

// readRecords skips the first skip records and returns up to limit of the
// following ones; limit <= 0 reads to the end.
func readRecords(content []byte, skip, limit int) ([][]string, error) {
	recs, err := readLines(content, skip, limit)
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.fields)
	}
	return out, nil
}

func readLines(content []byte, skip, limit int) ([]record, error) {
	r := newReader(content)
	for i := 0; i < skip; i++ {
		if _, err := r.Read(); err != nil {
			return nil, err
		}
	}

	out := make([]record, 0)
	for limit <= 0 || len(out) < limit {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := r.FieldPos(0)
		out = append(out, record{fields: fields, line: line})
	}
	return out, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := cols[key]; !ok {
			cols[key] = i
		}
	}
	return cols
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
