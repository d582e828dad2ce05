package models

import "time"

// Quarter buckets a calendar month into Q1..Q4.
type Quarter string

const (
	Q1 Quarter = "Q1"
	Q2 Quarter = "Q2"
	Q3 Quarter = "Q3"
	Q4 Quarter = "Q4"
)

// QuarterOf maps a month to its quarter: 1-3 Q1, 4-6 Q2, 7-9 Q3, 10-12 Q4.
func QuarterOf(m time.Month) Quarter {
	switch {
	case m <= time.March:
		return Q1
	case m <= time.June:
		return Q2
	case m <= time.September:
		return Q3
	default:
		return Q4
	}
}

// Record is one transaction line of the financial dataset. Currency fields
// hold 0 when the source cell was missing or unparseable; Profit is the only
// currency field that may be negative.
type Record struct {
	Country            string    `json:"country"`
	Region             string    `json:"region,omitempty"`
	Segment            string    `json:"segment"`
	Product            string    `json:"product"`
	DiscountBand       string    `json:"discount_band"`
	Date               time.Time `json:"date"`
	UnitsSold          float64   `json:"units_sold"`
	ManufacturingPrice float64   `json:"manufacturing_price"`
	SalePrice          float64   `json:"sale_price"`
	GrossSales         float64   `json:"gross_sales"`
	Discounts          float64   `json:"discounts"`
	Sales              float64   `json:"sales"`
	COGS               float64   `json:"cogs"`
	Profit             float64   `json:"profit"`
	OperatingExpenses  float64   `json:"operating_expenses,omitempty"`

	// Derived at load time.
	Year           int     `json:"year"`
	MonthName      string  `json:"month_name"`
	Quarter        Quarter `json:"quarter"`
	ProfitMargin   float64 `json:"profit_margin"`
	COGSToSales    float64 `json:"cogs_to_sales"`
	TotalDiscounts float64 `json:"total_discounts"`
	NetSales       float64 `json:"net_sales"`
}
