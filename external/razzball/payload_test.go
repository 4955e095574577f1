package razzball

import "testing"

func TestDecodePayload_Shapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		body      string
		wantShape payloadShape
		wantRows  int
	}{
		{"top level list", `[{"Name":"A"},{"Name":"B"},"junk"]`, shapeList, 2},
		{"players key", `{"players":[{"Name":"A"}],"meta":{"count":1}}`, shapePlayers, 1},
		{"data key", `{"data":[{"Name":"A"},{"Name":"B"}]}`, shapeData, 2},
		{"single object", `{"Name":"A","HR":10}`, shapeSingle, 1},
		{"columnar object", `{"Name":["A","B","C"],"HR":[1,2,3]}`, shapeSingle, 3},
		{"players as single object", `{"players":{"Name":"A"}}`, shapePlayers, 1},
		{"empty list", `[]`, shapeList, 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			shape, records, err := decodePayload([]byte(tc.body))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if shape != tc.wantShape {
				t.Fatalf("shape=%s want=%s", shape, tc.wantShape)
			}
			if len(records) != tc.wantRows {
				t.Fatalf("rows=%d want=%d", len(records), tc.wantRows)
			}
		})
	}
}

func TestDecodePayload_ColumnarValuesLineUp(t *testing.T) {
	t.Parallel()

	_, records, err := decodePayload([]byte(`{"Name":["A","B"],"HR":[1,2]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if records[1]["Name"] != "B" || records[1]["HR"] != float64(2) {
		t.Fatalf("unexpected second record: %v", records[1])
	}
}

func TestDecodePayload_Errors(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`not json`, `null`, `"text"`, `{"data":5}`} {
		if _, _, err := decodePayload([]byte(body)); err == nil {
			t.Fatalf("expected error for %s", body)
		}
	}
}
