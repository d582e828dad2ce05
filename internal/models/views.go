package models

// KPISummary holds the headline totals over a filtered record set. All sums
// are 0 on an empty set.
type KPISummary struct {
	TotalSales      float64 `json:"total_sales"`
	TotalGrossSales float64 `json:"total_gross_sales"`
	TotalProfit     float64 `json:"total_profit"`
	TotalCOGS       float64 `json:"total_cogs"`
	TotalDiscounts  float64 `json:"total_discounts"`
	GrossProfit     float64 `json:"gross_profit"`
	NetProfit       float64 `json:"net_profit"`
}

// PnLColumn is one year's worth of profit-and-loss line items. EBITDA and
// OperatingProfit intentionally alias the raw profit sum: the input schema
// carries no fields to compute them distinctly.
type PnLColumn struct {
	Year              int     `json:"year"`
	Sales             float64 `json:"sales"`
	CostOfSales       float64 `json:"cost_of_sales"`
	GrossProfit       float64 `json:"gross_profit"`
	OperatingExpenses float64 `json:"operating_expenses"`
	EBITDA            float64 `json:"ebitda"`
	OperatingProfit   float64 `json:"operating_profit"`
	NetProfit         float64 `json:"net_profit"`
}

// PnLAccounts lists the fixed account rows of the P&L table in display order.
var PnLAccounts = []string{
	"Sales",
	"Cost of Sales",
	"Gross Profit",
	"Operating Expenses",
	"EBITDA",
	"Operating Profit",
	"Net Profit",
}

// SeriesPoint is one bucket of a time series. Bucket is a year ("2023") or a
// month ("2023-01") depending on the series.
type SeriesPoint struct {
	Bucket     string  `json:"bucket"`
	Sales      float64 `json:"sales"`
	GrossSales float64 `json:"gross_sales"`
	Profit     float64 `json:"profit"`
}

// ExpensePoint is one bucket of the operating-expenses series.
type ExpensePoint struct {
	Year              int     `json:"year"`
	OperatingExpenses float64 `json:"operating_expenses"`
}

// CategoryTotal is a per-country or per-region rollup row.
type CategoryTotal struct {
	Category   string  `json:"category"`
	Sales      float64 `json:"sales"`
	GrossSales float64 `json:"gross_sales"`
	Profit     float64 `json:"profit"`
}

// PivotCell is one occupied cell of the product x discount-band pivot.
type PivotCell struct {
	Product      string  `json:"product"`
	DiscountBand string  `json:"discount_band"`
	Sales        float64 `json:"sales"`
}

// PivotTable is the product x discount-band sales pivot. Cells holds only the
// combinations that occur in the filtered set; Dense zero-fills the grid.
type PivotTable struct {
	Products      []string    `json:"products"`
	DiscountBands []string    `json:"discount_bands"`
	Cells         []PivotCell `json:"cells"`
}

// Dense returns the zero-filled grid, row order matching Products and column
// order matching DiscountBands.
func (p PivotTable) Dense() [][]float64 {
	col := make(map[string]int, len(p.DiscountBands))
	for i, b := range p.DiscountBands {
		col[b] = i
	}
	row := make(map[string]int, len(p.Products))
	for i, pr := range p.Products {
		row[pr] = i
	}

	grid := make([][]float64, len(p.Products))
	for i := range grid {
		grid[i] = make([]float64, len(p.DiscountBands))
	}
	for _, c := range p.Cells {
		grid[row[c.Product]][col[c.DiscountBand]] = c.Sales
	}
	return grid
}

// ScatterPoint is a direct per-record projection for the gross-sales vs
// discounts scatter plot.
type ScatterPoint struct {
	GrossSales float64 `json:"gross_sales"`
	Discounts  float64 `json:"discounts"`
	Size       float64 `json:"size"`
	Product    string  `json:"product"`
	Country    string  `json:"country"`
	Segment    string  `json:"segment"`
}
