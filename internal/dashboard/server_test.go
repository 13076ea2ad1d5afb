package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kalpesh33in-max/banknifty-dashboard/internal/engine"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/instrument"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/models"
)

type noopSink struct{}

func (noopSink) Dispatch(string) {}

type fakeHistory struct {
	requested int
	alerts    []models.AlertEvent
	err       error
}

func (f *fakeHistory) Recent(k int) ([]models.AlertEvent, error) {
	f.requested = k
	return f.alerts, f.err
}

func newTestServer(t *testing.T, history AlertHistory) *Server {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.Symbols = []string{"BANKNIFTY27JAN2660000CE", "BANKNIFTY27JAN26FUT"}
	cfg.LotSizes = map[string]int64{"BANKNIFTY": 30}
	parser := instrument.NewParser([]string{"BANKNIFTY"})
	eng := engine.New(cfg, parser, noopSink{}, nil)

	price, oi := 60100.0, int64(0)
	eng.ProcessTick(models.Tick{Symbol: "BANKNIFTY27JAN26FUT", LastTradePrice: &price, OpenInterest: &oi})

	return NewServer(eng, history)
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeHistory{})
	rec := get(t, srv.Router(), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
}

func TestChainSnapshot(t *testing.T) {
	srv := newTestServer(t, &fakeHistory{})
	rec := get(t, srv.Router(), "/api/chain")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("Failed to decode snapshot: %v", err)
	}
	if snap.FuturePrices["BANKNIFTY"] != 60100 {
		t.Errorf("Future price = %v, want 60100", snap.FuturePrices["BANKNIFTY"])
	}
	if len(snap.Symbols) != 1 {
		t.Fatalf("Snapshot rows = %d, want 1", len(snap.Symbols))
	}
	if snap.Symbols[0].Symbol != "BANKNIFTY27JAN2660000CE" {
		t.Errorf("Row symbol = %s", snap.Symbols[0].Symbol)
	}
}

func TestAlertsDefaultLimit(t *testing.T) {
	history := &fakeHistory{alerts: []models.AlertEvent{{
		Symbol:      "BANKNIFTY27JAN2660000CE",
		Action:      models.ActionLongBuildUp,
		Bucket:      models.BucketHigh,
		Lots:        120,
		Moneyness:   models.ITM,
		Message:     "msg",
		TriggeredAt: time.Now(),
	}}}
	srv := newTestServer(t, history)

	rec := get(t, srv.Router(), "/api/alerts")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if history.requested != defaultHistoryLimit {
		t.Errorf("Requested limit = %d, want %d", history.requested, defaultHistoryLimit)
	}

	var alerts []models.AlertEvent
	if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("Failed to decode alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Action != models.ActionLongBuildUp {
		t.Errorf("Alerts = %+v", alerts)
	}
}

func TestAlertsExplicitLimit(t *testing.T) {
	history := &fakeHistory{}
	srv := newTestServer(t, history)

	if rec := get(t, srv.Router(), "/api/alerts?limit=5"); rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if history.requested != 5 {
		t.Errorf("Requested limit = %d, want 5", history.requested)
	}
}

func TestAlertsBadLimit(t *testing.T) {
	srv := newTestServer(t, &fakeHistory{})
	for _, q := range []string{"limit=0", "limit=-2", "limit=ten"} {
		if rec := get(t, srv.Router(), "/api/alerts?"+q); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestAlertsHistoryError(t *testing.T) {
	srv := newTestServer(t, &fakeHistory{err: errors.New("db closed")})
	if rec := get(t, srv.Router(), "/api/alerts"); rec.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", rec.Code)
	}
}

func TestAlertsWithoutJournal(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := get(t, srv.Router(), "/api/alerts")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var alerts []models.AlertEvent
	if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("Failed to decode alerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("Expected empty list, got %d", len(alerts))
	}
}
