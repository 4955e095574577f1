package razzball

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-roster/internal/domain/projection"
	"github.com/riskibarqy/fantasy-roster/internal/platform/logging"
	"github.com/riskibarqy/fantasy-roster/internal/platform/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*ClientConfig)) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := ClientConfig{
		BaseURL:      server.URL,
		APIKey:       "secret-key",
		Timeout:      2 * time.Second,
		RetryBackoff: time.Millisecond,
		Logger:       logging.NewNop(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg)
}

func TestClient_FetchProjections_SendsHeadersAndParsesList(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projections/ros" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Razzball-Api-Key"); got != "secret-key" {
			t.Errorf("unexpected api key header: %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.razzball-v1+json" {
			t.Errorf("unexpected accept header: %q", got)
		}
		_, _ = w.Write([]byte(`[{"Name":"[player id=123]Mike Trout[/player]","$HR$":38},{"Name":"Aaron Judge","$HR$":45}]`))
	}, nil)

	table, err := client.FetchProjections(context.Background(), projection.HorizonROS)
	if err != nil {
		t.Fatalf("fetch projections: %v", err)
	}
	if table.Len() != 2 || table.Horizon != projection.HorizonROS {
		t.Fatalf("unexpected table: len=%d horizon=%s", table.Len(), table.Horizon)
	}
	rec, ok := projection.Lookup(table, "mike trout")
	if !ok {
		t.Fatalf("expected lookup to find tagged name")
	}
	if hr, _ := rec.Float("$HR$"); hr != 38 {
		t.Fatalf("unexpected HR: %v", hr)
	}
}

func TestClient_FetchProjections_PathPrefix(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mlb/projections/botweekly" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"players":[{"name":"Gerrit Cole"}]}`))
	}, func(cfg *ClientConfig) {
		cfg.BaseURL += "/mlb/"
		cfg.PathPrefix = "projections/bot"
	})

	table, err := client.FetchProjections(context.Background(), projection.HorizonWeekly)
	if err != nil {
		t.Fatalf("fetch projections: %v", err)
	}
	if table.Len() != 1 || table.NameColumn() != "name" {
		t.Fatalf("unexpected table: len=%d name column=%q", table.Len(), table.NameColumn())
	}
}

func TestClient_FetchProjections_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"Player":"Juan Soto"}]}`))
	}, func(cfg *ClientConfig) { cfg.MaxRetries = 2 })

	table, err := client.FetchProjections(context.Background(), projection.HorizonDaily)
	if err != nil {
		t.Fatalf("fetch projections: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if table.Len() != 1 {
		t.Fatalf("unexpected record count: %d", table.Len())
	}
}

func TestClient_FetchProjections_FailuresWrapFetchError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "bad key", http.StatusUnauthorized)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>cloudflare</html>"))
			},
		},
		{
			name: "scalar json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`42`))
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, tc.handler, nil)
			_, err := client.FetchProjections(context.Background(), projection.HorizonROS)
			if !errors.Is(err, projection.ErrFetch) {
				t.Fatalf("expected ErrFetch, got %v", err)
			}
		})
	}
}

func TestClient_FetchProjections_CircuitOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		}
	})

	for i := 0; i < 3; i++ {
		if _, err := client.FetchProjections(context.Background(), projection.HorizonROS); !errors.Is(err, projection.ErrFetch) {
			t.Fatalf("expected ErrFetch, got %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected open circuit to stop outbound calls, got %d calls", got)
	}
}

func TestClient_FetchProjections_InvalidHorizon(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Errorf("no request expected")
	}, nil)
	if _, err := client.FetchProjections(context.Background(), projection.Horizon("monthly")); !errors.Is(err, projection.ErrFetch) {
		t.Fatalf("expected ErrFetch for invalid horizon, got %v", err)
	}
}
