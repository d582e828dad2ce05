package services

import (
	"math"

	"finboard/internal/models"
)

// Enrich computes the derived fields of a record from its cleaned numeric
// fields and date. It is pure and order-independent: records may be enriched
// in any order, or in parallel, with no observable difference.
//
// Ratio fields use a fixed zero-denominator policy: Sales == 0 (which also
// covers a missing cell) yields 0, never NaN or a signed infinity.
func Enrich(r models.Record) models.Record {
	r.Year = r.Date.Year()
	r.MonthName = r.Date.Month().String()
	r.Quarter = models.QuarterOf(r.Date.Month())

	r.ProfitMargin = safeRatio(r.Profit, r.Sales)
	r.COGSToSales = safeRatio(r.COGS, r.Sales)
	r.TotalDiscounts = math.Abs(r.Discounts)
	r.NetSales = r.GrossSales - r.TotalDiscounts
	return r
}

func safeRatio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
