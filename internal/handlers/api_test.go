package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"finboard/internal/models"
	"finboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func createTestEngine() (*services.FilterEngine, *services.Dataset) {
	dataset := services.NewDataset(testLogger())
	dataset.SetRecords([]models.Record{
		{
			Country: "US", Region: "West", Segment: "Government",
			Product: "Carretera", DiscountBand: "Low",
			Date:  time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
			Sales: 100, GrossSales: 120, COGS: 40, Profit: 20, Discounts: 10,
		},
		{
			Country: "CA", Region: "East", Segment: "Midmarket",
			Product: "Paseo", DiscountBand: "High",
			Date: time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			Country: "FR", Region: "North", Segment: "Enterprise",
			Product: "Montana", DiscountBand: "Medium",
			Date:  time.Date(2022, 11, 5, 0, 0, 0, 0, time.UTC),
			Sales: 300, GrossSales: 350, COGS: 100, Profit: -30, Discounts: 20,
		},
	})
	return services.NewFilterEngine(dataset.Records()), dataset
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Data    json.RawMessage `json:"data"`
		Success bool            `json:"success"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("response not successful: %s", w.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestAPIHandlers_HandleFilters(t *testing.T) {
	engine, dataset := createTestEngine()
	h := NewAPIHandlers(engine, dataset, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/filters", nil)
	w := httptest.NewRecorder()
	h.HandleFilters(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var state FilterState
	decodeData(t, w, &state)

	if len(state.Available.Countries) != 3 {
		t.Errorf("available countries = %v", state.Available.Countries)
	}
	if len(state.Selection.Countries) != 3 {
		t.Errorf("initial selection should cover all countries, got %v", state.Selection.Countries)
	}
}

func TestAPIHandlers_HandleUpdateFilters(t *testing.T) {
	engine, dataset := createTestEngine()
	h := NewAPIHandlers(engine, dataset, testLogger())

	body, _ := json.Marshal(map[string]any{"countries": []string{"US"}})
	req := httptest.NewRequest(http.MethodPost, "/api/filters", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.HandleUpdateFilters(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var sel models.Selection
	decodeData(t, w, &sel)
	if len(sel.Countries) != 1 || sel.Countries[0] != "US" {
		t.Errorf("selection countries = %v, want [US]", sel.Countries)
	}
	// Other dimensions are untouched by a partial patch.
	if len(sel.Segments) != 3 {
		t.Errorf("segments = %v, want all three", sel.Segments)
	}

	if got := engine.Filtered(); len(got) != 1 {
		t.Errorf("engine now filters to %d records, want 1", len(got))
	}
}

func TestAPIHandlers_HandleUpdateFilters_BadBody(t *testing.T) {
	engine, dataset := createTestEngine()
	h := NewAPIHandlers(engine, dataset, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/filters", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.HandleUpdateFilters(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAPIHandlers_HandleResetFilters(t *testing.T) {
	engine, dataset := createTestEngine()
	h := NewAPIHandlers(engine, dataset, testLogger())

	countries := []string{}
	engine.Update(models.SelectionPatch{Countries: &countries})

	req := httptest.NewRequest(http.MethodPost, "/api/filters/reset", nil)
	w := httptest.NewRecorder()
	h.HandleResetFilters(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := engine.Filtered(); len(got) != 3 {
		t.Errorf("after reset engine keeps %d records, want 3", len(got))
	}
}

func TestAPIHandlers_HandleKPI(t *testing.T) {
	engine, dataset := createTestEngine()
	h := NewAPIHandlers(engine, dataset, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/kpi", nil)
	w := httptest.NewRecorder()
	h.HandleKPI(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}

	var kpi models.KPISummary
	decodeData(t, w, &kpi)
	if kpi.TotalSales != 400 {
		t.Errorf("TotalSales = %v, want 400", kpi.TotalSales)
	}
	if kpi.GrossProfit != 330 {
		t.Errorf("GrossProfit = %v, want 470-140 = 330", kpi.GrossProfit)
	}
}

func TestAPIHandlers_HandleKPI_EmptySelection(t *testing.T) {
	engine, dataset := createTestEngine()
	h := NewAPIHandlers(engine, dataset, testLogger())

	countries := []string{}
	engine.Update(models.SelectionPatch{Countries: &countries})

	req := httptest.NewRequest(http.MethodGet, "/api/kpi", nil)
	w := httptest.NewRecorder()
	h.HandleKPI(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("empty selection must not error, status = %d", w.Code)
	}

	var kpi models.KPISummary
	decodeData(t, w, &kpi)
	if kpi != (models.KPISummary{}) {
		t.Errorf("KPI over empty selection = %+v, want zeros", kpi)
	}
}

func TestAPIHandlers_HandlePnL(t *testing.T) {
	engine, dataset := createTestEngine()
	h := NewAPIHandlers(engine, dataset, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/pnl", nil)
	w := httptest.NewRecorder()
	h.HandlePnL(w, req)

	var columns []models.PnLColumn
	decodeData(t, w, &columns)
	if len(columns) != 2 {
		t.Fatalf("got %d columns, want 2", len(columns))
	}
	if columns[0].Year != 2022 || columns[1].Year != 2023 {
		t.Errorf("years = %d,%d, want ascending", columns[0].Year, columns[1].Year)
	}
}

func TestAPIHandlers_HandleSalesPivot(t *testing.T) {
	engine, dataset := createTestEngine()
	h := NewAPIHandlers(engine, dataset, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/sales-pivot", nil)
	w := httptest.NewRecorder()
	h.HandleSalesPivot(w, req)

	var pivot models.PivotTable
	decodeData(t, w, &pivot)
	if len(pivot.Products) != 3 || len(pivot.Cells) != 3 {
		t.Errorf("pivot = %+v", pivot)
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	engine, dataset := createTestEngine()
	h := NewAPIHandlers(engine, dataset, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()
	h.HandleStats(w, req)

	var stats map[string]any
	decodeData(t, w, &stats)
	if stats["record_count"].(float64) != 3 {
		t.Errorf("record_count = %v, want 3", stats["record_count"])
	}
	if stats["filtered_count"].(float64) != 3 {
		t.Errorf("filtered_count = %v, want 3", stats["filtered_count"])
	}
}
