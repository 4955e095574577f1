package razzball

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-roster/internal/domain/projection"
)

// payloadShape tags the top-level layouts the provider has been seen to return.
type payloadShape int

const (
	shapeList payloadShape = iota
	shapePlayers
	shapeData
	shapeSingle
)

func (s payloadShape) String() string {
	switch s {
	case shapeList:
		return "list"
	case shapePlayers:
		return "players"
	case shapeData:
		return "data"
	case shapeSingle:
		return "single"
	default:
		return "unknown"
	}
}

func decodePayload(raw []byte) (payloadShape, []projection.Record, error) {
	var root any
	if err := sonic.Unmarshal(raw, &root); err != nil {
		return 0, nil, err
	}

	switch v := root.(type) {
	case []any:
		return shapeList, recordsFromList(v), nil
	case map[string]any:
		if nested, ok := v["players"]; ok {
			records, err := recordsFromNode(nested)
			return shapePlayers, records, err
		}
		if nested, ok := v["data"]; ok {
			records, err := recordsFromNode(nested)
			return shapeData, records, err
		}
		return shapeSingle, recordsFromObject(v), nil
	default:
		return 0, nil, fmt.Errorf("unexpected top-level json %T", root)
	}
}

func recordsFromNode(node any) ([]projection.Record, error) {
	switch v := node.(type) {
	case []any:
		return recordsFromList(v), nil
	case map[string]any:
		return recordsFromObject(v), nil
	default:
		return nil, fmt.Errorf("unexpected nested json %T", node)
	}
}

// recordsFromList keeps object elements and drops anything else.
func recordsFromList(items []any) []projection.Record {
	out := make([]projection.Record, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, projection.Record(obj))
		}
	}
	return out
}

// recordsFromObject treats an object of equal-length arrays as columns and
// any other object as one row.
func recordsFromObject(obj map[string]any) []projection.Record {
	if len(obj) == 0 {
		return []projection.Record{}
	}

	rows := -1
	for _, value := range obj {
		column, ok := value.([]any)
		if !ok || (rows >= 0 && len(column) != rows) {
			return []projection.Record{projection.Record(obj)}
		}
		rows = len(column)
	}

	out := make([]projection.Record, rows)
	for i := range out {
		out[i] = make(projection.Record, len(obj))
	}
	for key, value := range obj {
		for i, cell := range value.([]any) {
			out[i][key] = cell
		}
	}
	return out
}
