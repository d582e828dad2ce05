package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"finboard/internal/errors"
	"finboard/internal/models"
	"finboard/internal/observability"
	"finboard/internal/services"
)

// View responses are never cached: every request recomputes the filtered
// view against the engine's current selection.
const noStore = "no-store"

type APIHandlers struct {
	engine  *services.FilterEngine
	dataset *services.Dataset
	logger  *slog.Logger
}

func NewAPIHandlers(engine *services.FilterEngine, dataset *services.Dataset, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		engine:  engine,
		dataset: dataset,
		logger:  logger,
	}
}

// FilterState pairs the current selection with the dimension values available
// in the full dataset, so the sidebar can populate its pickers.
type FilterState struct {
	Selection models.Selection `json:"selection"`
	Available models.Selection `json:"available"`
}

func (h *APIHandlers) filterState() FilterState {
	return FilterState{
		Selection: h.engine.Current(),
		Available: services.DefaultSelection(h.engine.Records()),
	}
}

func (h *APIHandlers) HandleFilters(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.filterState(), map[string]string{"Cache-Control": noStore})
}

func (h *APIHandlers) HandleUpdateFilters(w http.ResponseWriter, r *http.Request) {
	var patch models.SelectionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "invalid filter patch"), requestID)
		return
	}

	selection := h.engine.Update(patch)
	h.logger.Debug("filter selection updated",
		"countries", len(selection.Countries),
		"segments", len(selection.Segments),
		"years", len(selection.Years),
		"quarters", len(selection.Quarters),
	)
	errors.WriteSuccess(w, selection)
}

func (h *APIHandlers) HandleResetFilters(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.engine.Reset())
}

func (h *APIHandlers) HandleKPI(w http.ResponseWriter, r *http.Request) {
	data := services.KPI(h.engine.Filtered())
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": noStore})
}

func (h *APIHandlers) HandlePnL(w http.ResponseWriter, r *http.Request) {
	data := services.PnLByYear(h.engine.Filtered())
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": noStore})
}

func (h *APIHandlers) HandleYearlySeries(w http.ResponseWriter, r *http.Request) {
	data := services.YearlySeries(h.engine.Filtered())
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": noStore})
}

func (h *APIHandlers) HandleMonthlySeries(w http.ResponseWriter, r *http.Request) {
	data := services.MonthlySeries(h.engine.Filtered())
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": noStore})
}

func (h *APIHandlers) HandleExpenseSeries(w http.ResponseWriter, r *http.Request) {
	data := services.OperatingExpenseSeries(h.engine.Filtered())
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": noStore})
}

func (h *APIHandlers) HandleCountryTotals(w http.ResponseWriter, r *http.Request) {
	data := services.TotalsByCountry(h.engine.Filtered())
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": noStore})
}

func (h *APIHandlers) HandleRegionTotals(w http.ResponseWriter, r *http.Request) {
	data := services.TotalsByRegion(h.engine.Filtered())
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": noStore})
}

func (h *APIHandlers) HandleSalesPivot(w http.ResponseWriter, r *http.Request) {
	data := services.SalesPivot(h.engine.Filtered())
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": noStore})
}

func (h *APIHandlers) HandleScatter(w http.ResponseWriter, r *http.Request) {
	data := services.ScatterPoints(h.engine.Filtered())
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": noStore})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.dataset.Stats()
	stats["filtered_count"] = len(h.engine.Filtered())

	errors.WriteSuccess(w, stats)
}
