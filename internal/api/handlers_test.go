package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smart-grid-monitoring/sensor-bridge/internal/models"
)

type stubEngine struct {
	calls    int
	interval string
	days     int
	rows     []models.AggregatedRow
}

func (s *stubEngine) Aggregate(_ context.Context, interval string, days int) []models.AggregatedRow {
	s.calls++
	s.interval = interval
	s.days = days
	return s.rows
}

func serve(t *testing.T, engine *stubEngine, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(NewHandlers(engine, nil))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

func TestAnalyticsDefaults(t *testing.T) {
	engine := &stubEngine{rows: []models.AggregatedRow{{Time: "2026-01-01T00:00:00Z", Device: "unit-07"}}}

	recorder := serve(t, engine, "/analytics")

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if engine.interval != "daily" || engine.days != 30 {
		t.Errorf("engine called with (%s, %d), want (daily, 30)", engine.interval, engine.days)
	}

	var body struct {
		Interval string                 `json:"interval"`
		Data     []models.AggregatedRow `json:"data"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body.Interval != "daily" {
		t.Errorf("interval = %q, want daily", body.Interval)
	}
	if len(body.Data) != 1 || body.Data[0].Device != "unit-07" {
		t.Errorf("unexpected data: %+v", body.Data)
	}
}

func TestAnalyticsParameterPassing(t *testing.T) {
	engine := &stubEngine{}

	recorder := serve(t, engine, "/analytics?interval=weekly&days=7")

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if engine.interval != "weekly" || engine.days != 7 {
		t.Errorf("engine called with (%s, %d), want (weekly, 7)", engine.interval, engine.days)
	}
}

func TestAnalyticsRejectsBadParameters(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"unknown interval", "/analytics?interval=hourly"},
		{"days too small", "/analytics?days=0"},
		{"days too large", "/analytics?days=366"},
		{"days not a number", "/analytics?days=soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &stubEngine{}
			recorder := serve(t, engine, tt.target)

			if recorder.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", recorder.Code)
			}
			if engine.calls != 0 {
				t.Errorf("engine called %d times for an invalid request, want 0", engine.calls)
			}
		})
	}
}

func TestAnalyticsEmptyDataIsNeverNull(t *testing.T) {
	engine := &stubEngine{rows: []models.AggregatedRow{}}

	recorder := serve(t, engine, "/analytics?interval=yearly")

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"data":[]`) {
		t.Errorf("body = %s, want data to be an empty array", recorder.Body.String())
	}
}

func TestHealthAndRoot(t *testing.T) {
	for _, target := range []string{"/", "/health"} {
		recorder := serve(t, &stubEngine{}, target)
		if recorder.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", target, recorder.Code)
		}
		if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("GET %s Content-Type = %q, want application/json", target, ct)
		}
	}
}
