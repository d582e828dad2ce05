package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"finboard/internal/models"
	"finboard/internal/services"
	"github.com/starfederation/datastar-go/datastar"
)

var tmplFuncs = template.FuncMap{"money": formatMoney}

var kpiTemplate = template.Must(template.New("kpiStrip").Funcs(tmplFuncs).Parse(`
<div id="kpi-content">
<div class="kpi-grid">
<div class="kpi-card"><span class="kpi-label">Total Sales</span><strong>{{money .TotalSales}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Total Gross Sales</span><strong>{{money .TotalGrossSales}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Total Profit</span><strong>{{money .TotalProfit}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Gross Profit</span><strong>{{money .GrossProfit}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Net Profit</span><strong>{{money .NetProfit}}</strong></div>
</div>
</div>`))

var pnlTemplate = template.Must(template.New("pnlTable").Funcs(tmplFuncs).Parse(`
<div id="pnl-content">
{{if .Years}}<table class="modern-table">
<thead><tr><th>Account</th>{{range .Years}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.Account}}</td>
{{range .Values}}<td><strong>{{money .}}</strong></td>{{end}}
</tr>{{end}}
</tbody>
</table>{{else}}<p class="empty-note">No data for the selected filters.</p>{{end}}
</div>`))

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

type SSEHandlers struct {
	engine *services.FilterEngine
	logger *slog.Logger
}

func NewSSEHandlers(engine *services.FilterEngine, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		engine: engine,
		logger: logger,
	}
}

// pnlView reshapes the per-year columns into the row-major table the
// template renders: one row per fixed account, one value column per year.
type pnlView struct {
	Years []int
	Rows  []pnlRow
}

type pnlRow struct {
	Account string
	Values  []float64
}

func buildPnLView(columns []models.PnLColumn) pnlView {
	view := pnlView{}
	if len(columns) == 0 {
		return view
	}

	for _, col := range columns {
		view.Years = append(view.Years, col.Year)
	}
	for _, account := range models.PnLAccounts {
		row := pnlRow{Account: account}
		for _, col := range columns {
			row.Values = append(row.Values, accountValue(col, account))
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func accountValue(col models.PnLColumn, account string) float64 {
	switch account {
	case "Sales":
		return col.Sales
	case "Cost of Sales":
		return col.CostOfSales
	case "Gross Profit":
		return col.GrossProfit
	case "Operating Expenses":
		return col.OperatingExpenses
	case "EBITDA":
		return col.EBITDA
	case "Operating Profit":
		return col.OperatingProfit
	case "Net Profit":
		return col.NetProfit
	}
	return 0
}

func (h *SSEHandlers) renderKPIStrip(kpi models.KPISummary) (string, error) {
	var buf strings.Builder
	err := kpiTemplate.Execute(&buf, kpi)
	return buf.String(), err
}

func (h *SSEHandlers) renderPnLTable(columns []models.PnLColumn) (string, error) {
	var buf strings.Builder
	err := pnlTemplate.Execute(&buf, buildPnLView(columns))
	return buf.String(), err
}

func (h *SSEHandlers) HandleKPI(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	kpi := services.KPI(h.engine.Filtered())
	html, err := h.renderKPIStrip(kpi)
	if err != nil {
		h.logger.Error("render kpi strip", "error", err)
		return
	}

	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandlePnL(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	columns := services.PnLByYear(h.engine.Filtered())
	html, err := h.renderPnLTable(columns)
	if err != nil {
		h.logger.Error("render pnl table", "error", err)
		return
	}

	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleApplyFilters reads a selection patch from the page's datastar
// signals, updates the engine, and pushes every recomputed view.
func (h *SSEHandlers) HandleApplyFilters(w http.ResponseWriter, r *http.Request) {
	var patch models.SelectionPatch
	if err := datastar.ReadSignals(r, &patch); err != nil {
		h.logger.Warn("read filter signals", "error", err)
		http.Error(w, "invalid filter signals", http.StatusBadRequest)
		return
	}

	h.engine.Update(patch)
	h.refreshAll(w, r)
}

// HandleResetFilters restores the full-dataset selection and pushes every
// recomputed view.
func (h *SSEHandlers) HandleResetFilters(w http.ResponseWriter, r *http.Request) {
	h.engine.Reset()
	h.refreshAll(w, r)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	h.refreshAll(w, r)
}

func (h *SSEHandlers) refreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	filtered := h.engine.Filtered()

	kpiHTML, err := h.renderKPIStrip(services.KPI(filtered))
	if err != nil {
		h.logger.Error("render kpi strip", "error", err)
		return
	}
	sse.PatchElements(kpiHTML)

	pnlHTML, err := h.renderPnLTable(services.PnLByYear(filtered))
	if err != nil {
		h.logger.Error("render pnl table", "error", err)
		return
	}
	sse.PatchElements(pnlHTML)

	allSignals, err := json.Marshal(map[string]any{
		"selection":     h.engine.Current(),
		"yearlySeries":  services.YearlySeries(filtered),
		"monthlySeries": services.MonthlySeries(filtered),
		"expenseSeries": services.OperatingExpenseSeries(filtered),
		"countryTotals": services.TotalsByCountry(filtered),
		"regionTotals":  services.TotalsByRegion(filtered),
		"salesPivot":    services.SalesPivot(filtered),
		"scatter":       services.ScatterPoints(filtered),
	})
	if err != nil {
		h.logger.Error("marshal view signals", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
