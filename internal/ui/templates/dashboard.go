package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Dashboard is the page shell. All data arrives through the SSE endpoints;
// the shell only declares the patch targets and the filter controls.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardPage)
		return err
	})
}

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>Financial Performance Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@main/bundles/datastar.js"></script>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#0f1117;color:#e6e6e6}
header{padding:1rem 2rem;border-bottom:1px solid #2a2d36}
main{padding:1.5rem 2rem;display:grid;gap:1.5rem}
.kpi-grid{display:grid;grid-template-columns:repeat(5,1fr);gap:1rem}
.kpi-card{background:#1a1d26;border:1px solid #2a2d36;border-radius:8px;padding:1rem}
.kpi-label{display:block;color:#9aa0ad;font-size:.8rem;margin-bottom:.25rem}
.modern-table{width:100%;border-collapse:collapse}
.modern-table th,.modern-table td{padding:.5rem .75rem;border-bottom:1px solid #2a2d36;text-align:right}
.modern-table th:first-child,.modern-table td:first-child{text-align:left}
.empty-note{color:#9aa0ad}
.chart-panel{background:#1a1d26;border:1px solid #2a2d36;border-radius:8px;padding:1rem;min-height:220px}
</style>
</head>
<body data-on-load="@get('/sse/refresh-all')">
<header>
<h1>Financial Performance Dashboard</h1>
<button data-on-click="@post('/sse/filters/reset')">Reset All Filters</button>
</header>
<main>
<section id="kpi-content"></section>
<section id="pnl-content"></section>
<section class="chart-panel" id="yearly-series-chart" data-signals="{yearlySeries: []}"></section>
<section class="chart-panel" id="country-totals-chart" data-signals="{countryTotals: []}"></section>
<section class="chart-panel" id="expense-series-chart" data-signals="{expenseSeries: []}"></section>
<section class="chart-panel" id="scatter-chart" data-signals="{scatter: []}"></section>
<section class="chart-panel" id="pivot-heatmap" data-signals="{salesPivot: {}}"></section>
</main>
</body>
</html>`
