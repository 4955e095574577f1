package httpapi

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/riskibarqy/fantasy-roster/internal/domain/projection"
	"github.com/riskibarqy/fantasy-roster/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-roster/internal/infrastructure/rostercsv"
	"github.com/riskibarqy/fantasy-roster/internal/platform/id"
	"github.com/riskibarqy/fantasy-roster/internal/platform/logging"
	"github.com/riskibarqy/fantasy-roster/internal/platform/metrics"
	"github.com/riskibarqy/fantasy-roster/internal/usecase"
)

const fantraxUpload = `ID,Player,Team,Position,RkOv,Status,Score,Ros
*05ajh*,Garrett Crochet,BOS,SP,1,AA,100,-
*04x1z*,Aaron Judge,NYY,OF,2,MG,99,-
*06abc*,Juan Soto,NYM,OF,3,FA,50,-
`

type stubFetcher struct {
	table *projection.Table
	err   error
}

func (f stubFetcher) FetchProjections(_ context.Context, h projection.Horizon) (*projection.Table, error) {
	if f.err != nil {
		return nil, f.err
	}
	return projection.NewTable(h, f.table.Records, f.table.FetchedAt), nil
}

func projectionFixture() *projection.Table {
	return projection.NewTable(projection.HorizonROS, []projection.Record{
		{"Name": "Aaron Judge", "Pos": "OF", "HR": 48.0, "$": 41.0},
		{"Name": "Shohei Ohtani", "Pos": "DH", "HR": 51.0},
		{"Name": "[player id=123]Juan Soto[/player]", "Pos": "OF", "HR": 39.0},
		{"Name": "Garrett Crochet", "Pos": "SP", "W": 14.0},
	}, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
}

type testEnvelope[T any] struct {
	APIVersion string     `json:"apiVersion"`
	Data       T          `json:"data"`
	Error      *errorBody `json:"error"`
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()

	var body testEnvelope[T]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v (body=%s)", err, rec.Body.String())
	}
	return body
}

func newTestRouter(t *testing.T, fetcher usecase.ProjectionFetcher) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	registry := prometheus.NewRegistry()
	recorder := metrics.NewCollector(registry)

	db := memory.NewDatabase(nil)
	resolver := usecase.NewPlayerResolver(id.NewSequence("player"), usecase.DefaultMatchThreshold, logger)
	imports := usecase.NewRosterImportService(
		rostercsv.NewParser(),
		memory.NewTxManager(db),
		resolver,
		id.NewSequence("upload"),
		recorder,
		logger,
	)
	projections := usecase.NewProjectionService(fetcher, usecase.ProjectionServiceConfig{}, recorder, logger)
	rosters := usecase.NewRosterService(memory.NewRosterRepository(db), memory.NewPlayerRepository(db), projections, logger)

	handler := NewHandler(imports, rosters, projections, 1<<20, logger)
	return NewRouter(handler, logger, []string{"*"}, metrics.Handler(registry))
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(uploadFormField, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/uploads", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUploadLifecycle(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, stubFetcher{table: projectionFixture()})

	rec := serve(router, uploadRequest(t, "league.CSV", fantraxUpload))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	summary := decodeEnvelope[importSummaryDTO](t, rec).Data
	if summary.Upload.ID != "upload-1" || summary.Upload.Dialect != "fantrax" {
		t.Fatalf("unexpected upload: %+v", summary.Upload)
	}
	if summary.Total != 3 || summary.Owned != 2 || summary.FreeAgents != 1 || summary.Matches["created"] != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/v1/uploads/upload-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get upload: expected 200, got %d", rec.Code)
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/v1/uploads/upload-1/roster?owner=MG", nil))
	roster := decodeEnvelope[rosterDTO](t, rec).Data
	if rec.Code != http.StatusOK || roster.Count != 1 || roster.Entries[0].Player.Name != "Aaron Judge" {
		t.Fatalf("unexpected owner roster: status=%d body=%s", rec.Code, rec.Body.String())
	}
	if fantraxID := roster.Entries[0].Player.FantraxID; fantraxID == nil || *fantraxID != "*04x1z*" {
		t.Fatalf("expected fantrax id on player, got=%v", fantraxID)
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/v1/uploads/upload-1/free-agents?horizon=ros", nil))
	freeAgents := decodeEnvelope[rosterDTO](t, rec).Data
	if rec.Code != http.StatusOK || freeAgents.Count != 1 {
		t.Fatalf("unexpected free agents: status=%d body=%s", rec.Code, rec.Body.String())
	}
	soto := freeAgents.Entries[0]
	if soto.Player.Name != "Juan Soto" || !soto.HasProjections || soto.Projection == nil || soto.Projection.HR == nil || *soto.Projection.HR != 39 {
		t.Fatalf("expected enriched soto entry, got=%+v", soto)
	}

	rec = serve(router, httptest.NewRequest(http.MethodDelete, "/v1/uploads/upload-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete upload: expected 200, got %d", rec.Code)
	}
	rec = serve(router, httptest.NewRequest(http.MethodGet, "/v1/uploads/upload-1/roster", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected deleted upload to be gone, got %d", rec.Code)
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `fantasy_roster_imports_total{dialect="fantrax"} 1`) {
		t.Fatalf("expected import counter in metrics output, got=%s", rec.Body.String())
	}
}

func TestUploadRoster_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		content  string
		reason   string
	}{
		{name: "unknown format", filename: "notes.csv", content: "a,b,c\n1,2,3\n", reason: "unknownFormat"},
		{name: "wrong extension", filename: "league.xlsx", content: fantraxUpload, reason: "invalidInput"},
		{name: "empty file", filename: "league.csv", content: "", reason: "invalidInput"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(t, stubFetcher{table: projectionFixture()})
			rec := serve(router, uploadRequest(t, tt.filename, tt.content))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d body=%s", rec.Code, rec.Body.String())
			}
			body := decodeEnvelope[any](t, rec)
			if body.Error == nil || len(body.Error.Errors) != 1 || body.Error.Errors[0].Reason != tt.reason {
				t.Fatalf("unexpected error body: %s", rec.Body.String())
			}
		})
	}
}

func TestUploadRoster_MissingFileField(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, stubFetcher{table: projectionFixture()})
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("note", "no file here")
	_ = writer.Close()
	req := httptest.NewRequest(http.MethodPost, "/v1/uploads", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := serve(router, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestLookupProjection(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, stubFetcher{table: projectionFixture()})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/v1/projections/ROS/lookup?name=juan+soto", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	found := decodeEnvelope[projectionLookupDTO](t, rec).Data
	if found.Horizon != "ros" || found.Name != "juan soto" || found.Summary.HR == nil || *found.Summary.HR != 39 {
		t.Fatalf("unexpected lookup result: %+v", found)
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/v1/projections/ros/lookup?name=Babe+Ruth", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown player, got %d", rec.Code)
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/v1/projections/monthly/lookup?name=Judge", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown horizon, got %d", rec.Code)
	}
}

func TestTopProjections_ExcludesOwnedPlayersForUpload(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, stubFetcher{table: projectionFixture()})
	if rec := serve(router, uploadRequest(t, "league.csv", fantraxUpload)); rec.Code != http.StatusCreated {
		t.Fatalf("seed upload: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/v1/projections/ros/top?stat=hr&limit=2", nil))
	all := decodeEnvelope[projectionTopDTO](t, rec).Data
	if rec.Code != http.StatusOK || len(all.Items) != 2 || all.Items[0]["Name"] != "Shohei Ohtani" || all.Items[1]["Name"] != "Aaron Judge" {
		t.Fatalf("unexpected ranking: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/v1/projections/ros/top?stat=HR&limit=2&upload_id=upload-1", nil))
	free := decodeEnvelope[projectionTopDTO](t, rec).Data
	if rec.Code != http.StatusOK || len(free.Items) != 2 || free.Items[1]["Name"] != "[player id=123]Juan Soto[/player]" {
		t.Fatalf("expected judge to be excluded: status=%d body=%s", rec.Code, rec.Body.String())
	}

	for _, target := range []string{
		"/v1/projections/ros/top?limit=zero",
		"/v1/projections/ros/top?stat=XBH",
	} {
		rec = serve(router, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestEnrichPlayers(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, stubFetcher{table: projectionFixture()})

	req := httptest.NewRequest(http.MethodPost, "/v1/projections/ros/enrich", strings.NewReader(`{"names":["Aaron Judge","Nobody Known"]}`))
	rec := serve(router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	items := decodeEnvelope[[]enrichedPlayerDTO](t, rec).Data
	if len(items) != 2 || !items[0].HasProjections || items[1].HasProjections {
		t.Fatalf("unexpected enrichment: %+v", items)
	}

	for _, payload := range []string{`{"names":[]}`, `{"names":["x"],"extra":true}`, `not-json`} {
		rec = serve(router, httptest.NewRequest(http.MethodPost, "/v1/projections/ros/enrich", strings.NewReader(payload)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %s: expected 400, got %d", payload, rec.Code)
		}
	}
}

func TestProjectionEndpoints_ProviderDown(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, stubFetcher{err: crerr.Wrap(projection.ErrFetch, "status 503")})

	rec := serve(router, httptest.NewRequest(http.MethodPost, "/v1/projections/daily/refresh", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("refresh: expected 503, got %d", rec.Code)
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/v1/projections/daily/lookup?name=Judge", nil))
	body := decodeEnvelope[any](t, rec)
	if rec.Code != http.StatusServiceUnavailable || body.Error == nil || body.Error.Errors[0].Reason != "projectionsUnavailable" {
		t.Fatalf("lookup: unexpected response status=%d body=%s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/projections/daily/enrich", strings.NewReader(`{"names":["Aaron Judge"]}`))
	rec = serve(router, req)
	items := decodeEnvelope[[]enrichedPlayerDTO](t, rec).Data
	if rec.Code != http.StatusOK || len(items) != 1 || items[0].HasProjections {
		t.Fatalf("enrich should degrade: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRefreshProjections(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, stubFetcher{table: projectionFixture()})
	rec := serve(router, httptest.NewRequest(http.MethodPost, "/v1/projections/weekly/refresh", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	refreshed := decodeEnvelope[projectionRefreshDTO](t, rec).Data
	if refreshed.Horizon != "weekly" || refreshed.Rows != 4 {
		t.Fatalf("unexpected refresh result: %+v", refreshed)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, stubFetcher{table: projectionFixture()})
	rec := serve(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}
