package services

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"autosales-dashboard/internal/models"
)

// Dimension is a column rows can be grouped by.
type Dimension string

const (
	DimYear             Dimension = models.ColYear
	DimMonth            Dimension = models.ColMonth
	DimVehicleType      Dimension = models.ColVehicleType
	DimUnemploymentRate Dimension = models.ColUnemploymentRate
)

func (d Dimension) value(r models.SalesRecord) string {
	switch d {
	case DimYear:
		return strconv.Itoa(r.Year)
	case DimMonth:
		return r.Month
	case DimVehicleType:
		return r.VehicleType
	case DimUnemploymentRate:
		return strconv.FormatFloat(r.UnemploymentRate, 'f', -1, 64)
	}
	return ""
}

// compare orders two key values of d: numerically for Year and
// unemployment rate, by calendar for Month, lexically otherwise.
func (d Dimension) compare(a, b string) int {
	switch d {
	case DimYear, DimUnemploymentRate:
		fa, errA := strconv.ParseFloat(a, 64)
		fb, errB := strconv.ParseFloat(b, 64)
		if errA == nil && errB == nil {
			return cmp.Compare(fa, fb)
		}
	case DimMonth:
		ma, mb := monthIndex(a), monthIndex(b)
		switch {
		case ma != 0 && mb != 0:
			return cmp.Compare(ma, mb)
		case ma != 0:
			return -1
		case mb != 0:
			return 1
		}
	}
	return strings.Compare(a, b)
}

// monthIndex maps "Jan" or "January" (any case) to 1..12, anything else to 0.
func monthIndex(label string) int {
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(label, name) || strings.EqualFold(label, name[:3]) {
			return int(m)
		}
	}
	return 0
}

// Measure is the numeric column being reduced.
type Measure string

const (
	MeasureSales       Measure = models.ColAutomobileSales
	MeasureAdvertising Measure = models.ColAdvertisingExpenditure
)

func (m Measure) value(r models.SalesRecord) float64 {
	if m == MeasureAdvertising {
		return r.AdvertisingExpenditure
	}
	return r.AutomobileSales
}

type Reducer string

const (
	ReduceMean Reducer = "mean"
	ReduceSum  Reducer = "sum"
)

func (rd Reducer) reduce(sum decimal.Decimal, count int) float64 {
	if rd == ReduceMean && count > 0 {
		sum = sum.Div(decimal.NewFromInt(int64(count)))
	}
	return sum.InexactFloat64()
}

// Predicate selects the rows that take part in an aggregation.
type Predicate func(models.SalesRecord) bool

func InRecession() Predicate {
	return func(r models.SalesRecord) bool { return r.Recession }
}

func InYear(year int) Predicate {
	return func(r models.SalesRecord) bool { return r.Year == year }
}

func And(preds ...Predicate) Predicate {
	return func(r models.SalesRecord) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

type Query struct {
	Filter  Predicate
	GroupBy []Dimension
	Measure Measure
	Reducer Reducer
}

// Aggregate filters, groups and reduces the table. Groups come back in
// ascending key order, comparing keys left to right. An empty selection
// yields an empty, non-nil slice.
func Aggregate(table *SalesTable, q Query) []models.Group {
	type bucket struct {
		keys  []string
		sum   decimal.Decimal
		count int
	}

	buckets := make(map[string]*bucket)
	for r := range table.All() {
		if q.Filter != nil && !q.Filter(r) {
			continue
		}

		keys := make([]string, len(q.GroupBy))
		for i, d := range q.GroupBy {
			keys[i] = d.value(r)
		}

		id := strings.Join(keys, "\x1f")
		b, ok := buckets[id]
		if !ok {
			b = &bucket{keys: keys}
			buckets[id] = b
		}
		b.sum = b.sum.Add(decimal.NewFromFloat(q.Measure.value(r)))
		b.count++
	}

	groups := make([]models.Group, 0, len(buckets))
	for _, b := range buckets {
		groups = append(groups, models.Group{
			Keys:  b.keys,
			Value: q.Reducer.reduce(b.sum, b.count),
			Count: b.count,
		})
	}

	slices.SortFunc(groups, func(a, b models.Group) int {
		for i, d := range q.GroupBy {
			if c := d.compare(a.Keys[i], b.Keys[i]); c != 0 {
				return c
			}
		}
		return 0
	})

	return groups
}
