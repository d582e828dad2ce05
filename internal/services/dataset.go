package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"finboard/internal/errors"
	"finboard/internal/models"
	"finboard/internal/observability"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize  = 5000
	maxWorkers = 8
)

// currencyColumns are cleaned of "$" and "," before numeric parsing. A cell
// that still fails to parse is absorbed as 0 for that field.
var currencyColumns = []string{
	"Units Sold",
	"Manufacturing Price",
	"Sale Price",
	"Gross Sales",
	"Discounts",
	"Sales",
	"COGS",
	"Profit",
	"Operating Expenses",
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"02/01/2006 15:04",
	"2006-01-02 15:04:05",
}

// Dataset holds the canonical record sequence loaded from the CSV source.
// Records are read-only after load.
type Dataset struct {
	records          []models.Record
	csvPath          string
	loadedAt         time.Time
	recordsProcessed atomic.Int64
	rowsDropped      atomic.Int64
	logger           *slog.Logger
}

func NewDataset(logger *slog.Logger) *Dataset {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dataset{logger: logger}
}

// SetRecords installs an already-built record slice, deriving the computed
// fields. Used by tests and by callers that assemble records in memory.
func (d *Dataset) SetRecords(records []models.Record) {
	out := make([]models.Record, len(records))
	for i, r := range records {
		out[i] = Enrich(r)
	}
	d.records = out
	d.loadedAt = time.Now()
	d.recordsProcessed.Store(int64(len(out)))
}

// Records returns the canonical full record sequence in input order.
func (d *Dataset) Records() []models.Record {
	return d.records
}

// LoadFromCSV reads the source file, cleans currency fields, derives the
// computed fields, and drops rows whose date does not parse. A missing or
// unreadable file fails with DATA_SOURCE_UNAVAILABLE; a readable file with no
// usable rows loads as an empty dataset.
func (d *Dataset) LoadFromCSV(ctx context.Context, filename string) error {
	d.csvPath = filename

	ctx, span := observability.StartSpan(ctx, "dataset.load")
	defer span.Finish()
	span.SetTag("file", filename)

	start := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		span.SetError(err)
		return errors.DataSourceUnavailableWrap(err, fmt.Sprintf("cannot open dataset %q", filename))
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		span.SetError(err)
		return errors.DataSourceUnavailableWrap(err, fmt.Sprintf("cannot read dataset %q", filename))
	}
	if len(rows) == 0 {
		d.logger.Warn("dataset file is empty", "file", filename)
		d.records = []models.Record{}
		d.loadedAt = time.Now()
		return nil
	}

	cols := headerIndex(rows[0])
	records, dropped, err := d.parseRows(ctx, cols, rows[1:])
	if err != nil {
		span.SetError(err)
		return err
	}

	d.records = records
	d.loadedAt = time.Now()
	d.recordsProcessed.Store(int64(len(records)))
	d.rowsDropped.Store(int64(dropped))

	d.logger.Info("dataset loaded",
		"file", filename,
		"records", len(records),
		"rows_dropped", dropped,
		"duration", time.Since(start),
	)
	return nil
}

// parseRows converts raw CSV rows to records in parallel batches. Each row
// parses into an indexed slot so the output preserves input order; rows whose
// date fails to parse leave their slot empty and are compacted away.
func (d *Dataset) parseRows(ctx context.Context, cols map[string]int, rows [][]string) ([]models.Record, int, error) {
	type slot struct {
		rec models.Record
		ok  bool
	}
	slots := make([]slot, len(rows))

	var g errgroup.Group
	g.SetLimit(maxWorkers)

	for lo := 0; lo < len(rows); lo += batchSize {
		hi := min(lo+batchSize, len(rows))
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			for i := lo; i < hi; i++ {
				rec, ok := parseRecord(cols, rows[i])
				if ok {
					slots[i] = slot{rec: Enrich(rec), ok: true}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	records := make([]models.Record, 0, len(rows))
	dropped := 0
	for _, s := range slots {
		if s.ok {
			records = append(records, s.rec)
		} else {
			dropped++
		}
	}
	return records, dropped, nil
}

// headerIndex maps trimmed column names to their positions.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

// parseRecord builds one record from a raw row. The second return is false
// when the row must be dropped (missing or unparseable date). Currency cells
// that fail to parse after cleaning become 0 for that field only.
func parseRecord(cols map[string]int, row []string) (models.Record, bool) {
	date, ok := parseDate(cell(cols, row, "Date"))
	if !ok {
		return models.Record{}, false
	}

	return models.Record{
		Country:            cell(cols, row, "Country"),
		Region:             cell(cols, row, "Region"),
		Segment:            cell(cols, row, "Segment"),
		Product:            cell(cols, row, "Product"),
		DiscountBand:       cell(cols, row, "Discount Band"),
		Date:               date,
		UnitsSold:          parseCurrency(cell(cols, row, "Units Sold")),
		ManufacturingPrice: parseCurrency(cell(cols, row, "Manufacturing Price")),
		SalePrice:          parseCurrency(cell(cols, row, "Sale Price")),
		GrossSales:         parseCurrency(cell(cols, row, "Gross Sales")),
		Discounts:          parseCurrency(cell(cols, row, "Discounts")),
		Sales:              parseCurrency(cell(cols, row, "Sales")),
		COGS:               parseCurrency(cell(cols, row, "COGS")),
		Profit:             parseCurrency(cell(cols, row, "Profit")),
		OperatingExpenses:  parseCurrency(cell(cols, row, "Operating Expenses")),
	}, true
}

func cell(cols map[string]int, row []string, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseCurrency strips a "$" prefix and "," thousands separators, then parses
// a decimal number. Anything that still fails parses as 0 (missing).
func parseCurrency(s string) float64 {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0
	}
	// Accounting notation for negatives: ($123.45)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if negative {
		return -v
	}
	return v
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Stats exposes load metadata for the admin endpoint.
func (d *Dataset) Stats() map[string]any {
	return map[string]any{
		"record_count": d.recordsProcessed.Load(),
		"rows_dropped": d.rowsDropped.Load(),
		"loaded_at":    d.loadedAt,
		"source":       d.csvPath,
	}
}
