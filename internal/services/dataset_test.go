package services

import (
	"context"
	"os"
	"testing"

	"finboard/internal/errors"
)

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "test*.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

const fixtureCSV = `Country,Region,Segment,Product,Discount Band,Date,Units Sold,Manufacturing Price,Sale Price,Gross Sales,Discounts,Sales,COGS,Profit,Operating Expenses
US,West,Government,Carretera,Low,2023-01-15,100,"$3.00","$20.00","$1,234.50","$10.00","$1,000.00","$400.00","$200.00","$50.00"
CA,East,Midmarket,Paseo,High,2023-02-10,0,"$3.00","$20.00","$0.00","$0.00","$0.00","$0.00","$0.00","$0.00"
FR,North,Government,Velo,None,not-a-date,50,"$3.00","$20.00","$600.00","$5.00","$500.00","$250.00","$80.00","$20.00"
DE,South,Enterprise,Montana,Medium,2022-11-05,80,"$5.00","$125.00","N/A","$15.00","$800.00","$300.00","$120.00","$30.00"
`

func TestDataset_LoadFromCSV(t *testing.T) {
	f := createTempCSV(t, fixtureCSV)

	d := NewDataset(nil)
	if err := d.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatalf("LoadFromCSV() error: %v", err)
	}

	records := d.Records()
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 (bad-date row dropped)", len(records))
	}

	// Input order is preserved among surviving rows.
	wantCountries := []string{"US", "CA", "DE"}
	for i, want := range wantCountries {
		if records[i].Country != want {
			t.Errorf("records[%d].Country = %q, want %q", i, records[i].Country, want)
		}
	}

	// "$1,234.50" parses to 1234.50.
	if records[0].GrossSales != 1234.50 {
		t.Errorf("GrossSales = %v, want 1234.50", records[0].GrossSales)
	}

	// "N/A" is missing, absorbed as 0; the row still loads.
	if records[2].GrossSales != 0 {
		t.Errorf("missing GrossSales = %v, want 0", records[2].GrossSales)
	}
	if records[2].Sales != 800 {
		t.Errorf("Sales on row with a missing sibling field = %v, want 800", records[2].Sales)
	}

	// Derived fields come out of the load.
	if records[0].Year != 2023 || records[0].Quarter != "Q1" {
		t.Errorf("derived Year/Quarter = %d/%q, want 2023/Q1", records[0].Year, records[0].Quarter)
	}
	if records[1].ProfitMargin != 0 {
		t.Errorf("zero-sales ProfitMargin = %v, want 0", records[1].ProfitMargin)
	}
}

func TestDataset_LoadFromCSV_MissingFile(t *testing.T) {
	d := NewDataset(nil)
	err := d.LoadFromCSV(context.Background(), "does-not-exist.csv")
	if err == nil {
		t.Fatal("LoadFromCSV() on a missing file must fail")
	}
	if !errors.IsDataSourceUnavailable(err) {
		t.Errorf("error code = %v, want DATA_SOURCE_UNAVAILABLE", err)
	}
}

func TestDataset_LoadFromCSV_NoUsableRows(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty file", ""},
		{"header only", "Country,Segment,Product,Discount Band,Date,Sales\n"},
		{
			"all dates invalid",
			"Country,Segment,Product,Discount Band,Date,Sales\nUS,Government,Velo,Low,garbage,\"$100.00\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTempCSV(t, tt.csv)

			d := NewDataset(nil)
			if err := d.LoadFromCSV(context.Background(), f); err != nil {
				t.Fatalf("a readable source with no usable rows must load empty, got error: %v", err)
			}
			if len(d.Records()) != 0 {
				t.Errorf("got %d records, want 0", len(d.Records()))
			}
		})
	}
}

func TestDataset_LoadFromCSV_HeaderWhitespace(t *testing.T) {
	csv := "  Country , Segment ,Product,Discount Band, Date ,Sales\nUS,Government,Velo,Low,2023-03-01,\"$100.00\"\n"
	f := createTempCSV(t, csv)

	d := NewDataset(nil)
	if err := d.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatalf("LoadFromCSV() error: %v", err)
	}
	records := d.Records()
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Country != "US" || records[0].Sales != 100 {
		t.Errorf("trimmed headers did not match columns: %+v", records[0])
	}
}

func TestDataset_RoundTripTotals(t *testing.T) {
	f := createTempCSV(t, fixtureCSV)

	d := NewDataset(nil)
	if err := d.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatalf("LoadFromCSV() error: %v", err)
	}

	// KPI sums over the unfiltered set must equal direct sums of the raw
	// record fields.
	var sales, profit, gross float64
	for _, r := range d.Records() {
		sales += r.Sales
		profit += r.Profit
		gross += r.GrossSales
	}

	kpi := KPI(d.Records())
	if kpi.TotalSales != sales {
		t.Errorf("TotalSales = %v, want %v", kpi.TotalSales, sales)
	}
	if kpi.TotalProfit != profit {
		t.Errorf("TotalProfit = %v, want %v", kpi.TotalProfit, profit)
	}
	if kpi.TotalGrossSales != gross {
		t.Errorf("TotalGrossSales = %v, want %v", kpi.TotalGrossSales, gross)
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$1,234.50", 1234.50},
		{" $20.00 ", 20},
		{"1234", 1234},
		{"-15.5", -15.5},
		{"($45.00)", -45},
		{"N/A", 0},
		{"", 0},
		{"-", 0},
		{"$", 0},
	}

	for _, tt := range tests {
		if got := parseCurrency(tt.in); got != tt.want {
			t.Errorf("parseCurrency(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
