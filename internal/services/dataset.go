package services

import (
	"cmp"
	"context"
	"io"
	"iter"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"autosales-dashboard/internal/errors"
	"autosales-dashboard/internal/models"
)

var columnTypes = map[string]series.Type{
	models.ColYear:                   series.Int,
	models.ColMonth:                  series.String,
	models.ColVehicleType:            series.String,
	models.ColAutomobileSales:        series.Float,
	models.ColAdvertisingExpenditure: series.Float,
	models.ColUnemploymentRate:       series.Float,
	models.ColRecession:              series.Int,
}

var numericColumns = []string{
	models.ColYear,
	models.ColAutomobileSales,
	models.ColAdvertisingExpenditure,
	models.ColUnemploymentRate,
	models.ColRecession,
}

// SalesTable is the immutable in-memory dataset. It is safe for
// concurrent readers.
type SalesTable struct {
	records      []models.SalesRecord
	years        []int
	vehicleTypes []string
}

func NewSalesTable(records []models.SalesRecord) *SalesTable {
	t := &SalesTable{records: slices.Clone(records)}

	years := make(map[int]struct{})
	types := make(map[string]struct{})
	for _, r := range t.records {
		years[r.Year] = struct{}{}
		types[r.VehicleType] = struct{}{}
	}

	t.years = make([]int, 0, len(years))
	for y := range years {
		t.years = append(t.years, y)
	}
	slices.Sort(t.years)

	t.vehicleTypes = make([]string, 0, len(types))
	for v := range types {
		t.vehicleTypes = append(t.vehicleTypes, v)
	}
	slices.SortFunc(t.vehicleTypes, cmp.Compare[string])

	return t
}

func (t *SalesTable) Len() int {
	return len(t.records)
}

func (t *SalesTable) At(i int) models.SalesRecord {
	return t.records[i]
}

// All yields every record in file order.
func (t *SalesTable) All() iter.Seq[models.SalesRecord] {
	return func(yield func(models.SalesRecord) bool) {
		for _, r := range t.records {
			if !yield(r) {
				return
			}
		}
	}
}

// Years returns the distinct years in ascending order.
func (t *SalesTable) Years() []int {
	return slices.Clone(t.years)
}

func (t *SalesTable) VehicleTypes() []string {
	return slices.Clone(t.vehicleTypes)
}

func (t *SalesTable) RecessionCount() int {
	n := 0
	for _, r := range t.records {
		if r.Recession {
			n++
		}
	}
	return n
}

// FetchDataset downloads the CSV at url and parses it. Any transport
// failure or non-2xx status is an upstream error; there is no retry.
func FetchDataset(ctx context.Context, client *http.Client, url string) (*SalesTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.InternalWrap(err, "build dataset request")
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.UpstreamWrap(err, "fetch dataset")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, errors.Upstream("fetch dataset").WithDetails("GET %s returned %s", url, resp.Status)
	}

	return ParseSalesCSV(resp.Body)
}

// ReadDatasetFile parses a CSV file from disk.
func ReadDatasetFile(path string) (*SalesTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.UpstreamWrap(err, "open dataset file")
	}
	defer f.Close()

	return ParseSalesCSV(f)
}

// ParseSalesCSV reads delimited text with a header row. Columns other than
// the required ones are ignored. A missing column, an empty or
// non-numeric cell in a numeric column, or a Recession value other than
// 0 or 1 fails the whole parse.
func ParseSalesCSV(r io.Reader) (*SalesTable, error) {
	// No NaN tokens: "NA" is a legal Month or Vehicle_Type label, and
	// unparsable numbers are still caught by the numeric check below.
	df := dataframe.ReadCSV(r, dataframe.WithTypes(columnTypes), dataframe.NaNValues(nil))
	if df.Err != nil {
		return nil, errors.ValidationWrap(df.Err, "parse dataset")
	}

	names := df.Names()
	for _, col := range models.RequiredColumns {
		if !slices.Contains(names, col) {
			return nil, errors.Validation("dataset is missing a required column").WithDetails("column %q not found", col)
		}
	}

	if df.Nrow() == 0 {
		return nil, errors.Validation("dataset has no rows")
	}

	for _, col := range numericColumns {
		for i, missing := range df.Col(col).IsNaN() {
			if missing {
				// +2: one for the header, one for 1-based line numbers
				return nil, errors.Validation("dataset has an invalid value").WithDetails("column %q, line %d", col, i+2)
			}
		}
	}

	years, err := df.Col(models.ColYear).Int()
	if err != nil {
		return nil, errors.ValidationWrap(err, "parse Year column")
	}
	recession, err := df.Col(models.ColRecession).Int()
	if err != nil {
		return nil, errors.ValidationWrap(err, "parse Recession column")
	}

	months := df.Col(models.ColMonth).Records()
	vehicleTypes := df.Col(models.ColVehicleType).Records()
	sales := df.Col(models.ColAutomobileSales).Float()
	advertising := df.Col(models.ColAdvertisingExpenditure).Float()
	unemployment := df.Col(models.ColUnemploymentRate).Float()

	records := make([]models.SalesRecord, df.Nrow())
	for i := range records {
		if recession[i] != 0 && recession[i] != 1 {
			return nil, errors.Validation("dataset has an invalid value").WithDetails("Recession must be 0 or 1 on line %d, got %d", i+2, recession[i])
		}
		records[i] = models.SalesRecord{
			Year:                   years[i],
			Month:                  strings.TrimSpace(months[i]),
			VehicleType:            strings.TrimSpace(vehicleTypes[i]),
			AutomobileSales:        sales[i],
			AdvertisingExpenditure: advertising[i],
			UnemploymentRate:       unemployment[i],
			Recession:              recession[i] == 1,
		}
	}

	return NewSalesTable(records), nil
}
