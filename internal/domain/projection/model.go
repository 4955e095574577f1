package projection

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// Horizon is the time window a projection dataset covers.
type Horizon string

const (
	HorizonDaily  Horizon = "daily"
	HorizonWeekly Horizon = "weekly"
	HorizonROS    Horizon = "ros"
)

var Horizons = []Horizon{HorizonDaily, HorizonWeekly, HorizonROS}

func ParseHorizon(raw string) (Horizon, error) {
	switch h := Horizon(strings.ToLower(strings.TrimSpace(raw))); h {
	case HorizonDaily, HorizonWeekly, HorizonROS:
		return h, nil
	default:
		return "", fmt.Errorf("invalid projection horizon: %q", raw)
	}
}

// ErrFetch marks any failure to obtain a projection dataset from the provider.
var ErrFetch = crerr.New("projection fetch failed")

// ErrUnknownStat is returned when a requested stat column is absent.
var ErrUnknownStat = crerr.New("unknown projection stat")

// NameColumns are probed in order for the player-name field.
var NameColumns = []string{"Name", "name", "player_name", "playerName", "Player"}

// PositionColumns are probed in order for the position field.
var PositionColumns = []string{"Pos", "pos", "position", "Position"}

// Record is one provider row: stat or attribute name to decoded JSON value.
type Record map[string]any

func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return fmt.Sprint(t), true
	}
}

// Float reads key as a number. Numeric strings are accepted since the
// provider serializes some rate stats as text.
func (r Record) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Table is a normalized provider dataset for one horizon.
type Table struct {
	Horizon   Horizon
	Columns   []string
	Records   []Record
	FetchedAt time.Time

	nameColumn string
	cleaned    []string
}

func NewTable(horizon Horizon, records []Record, fetchedAt time.Time) *Table {
	seen := make(map[string]struct{})
	columns := make([]string, 0)
	for _, rec := range records {
		for key := range rec {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			columns = append(columns, key)
		}
	}
	sort.Strings(columns)

	t := &Table{
		Horizon:   horizon,
		Columns:   columns,
		Records:   records,
		FetchedAt: fetchedAt,
	}
	t.nameColumn = t.firstColumn(NameColumns)
	if t.nameColumn != "" {
		t.cleaned = make([]string, len(records))
		for i, rec := range records {
			raw, _ := rec.String(t.nameColumn)
			t.cleaned[i] = CleanName(raw)
		}
	}
	return t
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	i := sort.SearchStrings(t.Columns, name)
	return i < len(t.Columns) && t.Columns[i] == name
}

// NameColumn returns the column used for lookups, or "" when none exists.
func (t *Table) NameColumn() string {
	if t == nil {
		return ""
	}
	return t.nameColumn
}

func (t *Table) firstColumn(candidates []string) string {
	for _, c := range candidates {
		if t.HasColumn(c) {
			return c
		}
	}
	return ""
}

// TopBy filters by position containment (case-insensitive) when position is
// set and a position column exists, then returns up to limit records ordered
// by stat descending. Records without a numeric stat value are dropped.
func TopBy(t *Table, position, stat string, limit int) ([]Record, error) {
	if t == nil || len(t.Records) == 0 {
		return []Record{}, nil
	}
	statCol := ""
	for _, c := range t.Columns {
		if strings.EqualFold(c, strings.TrimSpace(stat)) {
			statCol = c
			break
		}
	}
	if statCol == "" {
		return nil, crerr.Wrapf(ErrUnknownStat, "stat %q not in %d columns", stat, len(t.Columns))
	}

	posCol := t.firstColumn(PositionColumns)
	position = strings.ToLower(strings.TrimSpace(position))

	type scored struct {
		rec   Record
		value float64
	}
	items := make([]scored, 0, len(t.Records))
	for _, rec := range t.Records {
		if position != "" && posCol != "" {
			pos, ok := rec.String(posCol)
			if !ok || !strings.Contains(strings.ToLower(pos), position) {
				continue
			}
		}
		v, ok := rec.Float(statCol)
		if !ok {
			continue
		}
		items = append(items, scored{rec: rec, value: v})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].value > items[j].value })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	out := make([]Record, 0, len(items))
	for _, item := range items {
		out = append(out, item.rec)
	}
	return out, nil
}
