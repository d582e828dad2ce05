package services

import (
	"slices"
	"strconv"

	"finboard/internal/models"
)

// Aggregation views. Each function is pure over the record slice it is given
// (usually a filtered view) and retains no state between calls, so distinct
// selections never leak into each other and independent views may be computed
// concurrently. Every function returns zero sums / empty collections on an
// empty input rather than failing.

// KPI sums the headline metrics over the given records.
func KPI(records []models.Record) models.KPISummary {
	var k models.KPISummary
	for _, r := range records {
		k.TotalSales += r.Sales
		k.TotalGrossSales += r.GrossSales
		k.TotalProfit += r.Profit
		k.TotalCOGS += r.COGS
		k.TotalDiscounts += r.TotalDiscounts
	}
	k.GrossProfit = k.TotalGrossSales - k.TotalCOGS
	k.NetProfit = k.TotalProfit - k.TotalDiscounts
	return k
}

// PnLByYear groups records by year and computes the fixed P&L line items per
// year, years ascending. EBITDA and Operating Profit alias the raw profit
// sum; the input schema has no fields to compute them distinctly.
func PnLByYear(records []models.Record) []models.PnLColumn {
	byYear := make(map[int]*models.PnLColumn)
	for _, r := range records {
		col := byYear[r.Year]
		if col == nil {
			col = &models.PnLColumn{Year: r.Year}
			byYear[r.Year] = col
		}
		col.Sales += r.Sales
		col.CostOfSales += r.COGS
		col.GrossProfit += r.GrossSales
		col.OperatingExpenses += r.OperatingExpenses
		col.EBITDA += r.Profit
		col.NetProfit += r.Profit - r.TotalDiscounts
	}

	out := make([]models.PnLColumn, 0, len(byYear))
	for _, col := range byYear {
		col.GrossProfit -= col.CostOfSales
		col.OperatingProfit = col.EBITDA
		out = append(out, *col)
	}
	slices.SortFunc(out, func(a, b models.PnLColumn) int {
		return a.Year - b.Year
	})
	return out
}

// YearlySeries sums Sales, GrossSales and Profit per year, buckets ascending.
func YearlySeries(records []models.Record) []models.SeriesPoint {
	return series(records, func(r models.Record) string {
		return strconv.Itoa(r.Year)
	})
}

// MonthlySeries sums the same metrics per calendar month ("2006-01" buckets),
// ascending.
func MonthlySeries(records []models.Record) []models.SeriesPoint {
	return series(records, func(r models.Record) string {
		return r.Date.Format("2006-01")
	})
}

func series(records []models.Record, bucket func(models.Record) string) []models.SeriesPoint {
	groups := make(map[string]*models.SeriesPoint)
	for _, r := range records {
		key := bucket(r)
		p := groups[key]
		if p == nil {
			p = &models.SeriesPoint{Bucket: key}
			groups[key] = p
		}
		p.Sales += r.Sales
		p.GrossSales += r.GrossSales
		p.Profit += r.Profit
	}

	out := make([]models.SeriesPoint, 0, len(groups))
	for _, p := range groups {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b models.SeriesPoint) int {
		if a.Bucket < b.Bucket {
			return -1
		}
		if a.Bucket > b.Bucket {
			return 1
		}
		return 0
	})
	return out
}

// OperatingExpenseSeries sums operating expenses per year, ascending. When
// the source had no Operating Expenses column every point is 0 and the
// consumer may hide the chart.
func OperatingExpenseSeries(records []models.Record) []models.ExpensePoint {
	groups := make(map[int]float64)
	for _, r := range records {
		groups[r.Year] += r.OperatingExpenses
	}

	out := make([]models.ExpensePoint, 0, len(groups))
	for year, sum := range groups {
		out = append(out, models.ExpensePoint{Year: year, OperatingExpenses: sum})
	}
	slices.SortFunc(out, func(a, b models.ExpensePoint) int {
		return a.Year - b.Year
	})
	return out
}

// TotalsByCountry rolls up Sales, GrossSales and Profit per country. Every
// distinct country in the input appears, including those summing to zero.
func TotalsByCountry(records []models.Record) []models.CategoryTotal {
	return rollup(records, func(r models.Record) string { return r.Country })
}

// TotalsByRegion rolls up the same metrics per region.
func TotalsByRegion(records []models.Record) []models.CategoryTotal {
	return rollup(records, func(r models.Record) string { return r.Region })
}

func rollup(records []models.Record, category func(models.Record) string) []models.CategoryTotal {
	groups := make(map[string]*models.CategoryTotal)
	for _, r := range records {
		key := category(r)
		t := groups[key]
		if t == nil {
			t = &models.CategoryTotal{Category: key}
			groups[key] = t
		}
		t.Sales += r.Sales
		t.GrossSales += r.GrossSales
		t.Profit += r.Profit
	}

	out := make([]models.CategoryTotal, 0, len(groups))
	for _, t := range groups {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b models.CategoryTotal) int {
		if a.Sales > b.Sales {
			return -1
		}
		if a.Sales < b.Sales {
			return 1
		}
		return 0
	})
	return out
}

// SalesPivot builds the product x discount-band sales pivot. Only
// combinations present in the input get a cell; PivotTable.Dense zero-fills
// the grid when a consumer needs one.
func SalesPivot(records []models.Record) models.PivotTable {
	products := make(map[string]bool)
	bands := make(map[string]bool)
	cells := make(map[[2]string]float64)

	for _, r := range records {
		products[r.Product] = true
		bands[r.DiscountBand] = true
		cells[[2]string{r.Product, r.DiscountBand}] += r.Sales
	}

	pivot := models.PivotTable{
		Products:      sortedKeys(products),
		DiscountBands: sortedKeys(bands),
		Cells:         make([]models.PivotCell, 0, len(cells)),
	}
	for _, p := range pivot.Products {
		for _, b := range pivot.DiscountBands {
			if sales, ok := cells[[2]string{p, b}]; ok {
				pivot.Cells = append(pivot.Cells, models.PivotCell{
					Product:      p,
					DiscountBand: b,
					Sales:        sales,
				})
			}
		}
	}
	return pivot
}

// ScatterPoints projects one point per record for the gross-sales vs
// discounts scatter plot. Unlike the other views this does not aggregate.
func ScatterPoints(records []models.Record) []models.ScatterPoint {
	out := make([]models.ScatterPoint, len(records))
	for i, r := range records {
		out[i] = models.ScatterPoint{
			GrossSales: r.GrossSales,
			Discounts:  r.Discounts,
			Size:       r.Sales,
			Product:    r.Product,
			Country:    r.Country,
			Segment:    r.Segment,
		}
	}
	return out
}
