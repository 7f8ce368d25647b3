package services

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"autosales-dashboard/internal/models"
)

// BuildReport is the dashboard's update function. It depends only on its
// arguments: the same table and selection always give the same view.
//
// The year selector is enabled only for yearly reports. Recession reports
// ignore any year still held by the selector; yearly reports wait for a
// year before producing charts.
func BuildReport(table *SalesTable, sel models.ReportSelection) models.ReportView {
	view := models.ReportView{
		Report:       sel.Report,
		YearDisabled: !sel.YearEnabled(),
	}

	switch {
	case sel.Report == models.ReportRecession:
		view.Rows = recessionCharts(table)
	case sel.Report == models.ReportYearly && sel.YearSet:
		view.Year = sel.Year
		view.Rows = yearlyCharts(table, sel.Year)
	default:
		view.Placeholder = models.PlaceholderMessage
	}

	return view
}

func recessionCharts(table *SalesTable) [][]models.ChartSpec {
	recession := InRecession()

	trend := singleSeries("recession-sales-trend", models.ChartLine,
		"Average Automobile Sales During Recession", "Year", "Average Automobile Sales",
		Aggregate(table, Query{Filter: recession, GroupBy: []Dimension{DimYear}, Measure: MeasureSales, Reducer: ReduceMean}))

	byVehicle := singleSeries("recession-vehicle-sales", models.ChartBar,
		"Average Sales by Vehicle Type (Recession)", "Vehicle Type", "Average Automobile Sales",
		Aggregate(table, Query{Filter: recession, GroupBy: []Dimension{DimVehicleType}, Measure: MeasureSales, Reducer: ReduceMean}))

	adShare := singleSeries("recession-ad-share", models.ChartPie,
		"Advertising Expenditure Share (Recession)", "Vehicle Type", "Advertising Expenditure",
		Aggregate(table, Query{Filter: recession, GroupBy: []Dimension{DimVehicleType}, Measure: MeasureAdvertising, Reducer: ReduceSum}))

	unemployment := colouredSeries("recession-unemployment", models.ChartBar,
		"Unemployment Rate vs Automobile Sales", "Unemployment Rate", "Average Automobile Sales",
		DimVehicleType,
		Aggregate(table, Query{Filter: recession, GroupBy: []Dimension{DimUnemploymentRate, DimVehicleType}, Measure: MeasureSales, Reducer: ReduceMean}))

	return [][]models.ChartSpec{{trend, byVehicle}, {adShare, unemployment}}
}

func yearlyCharts(table *SalesTable, year int) [][]models.ChartSpec {
	inYear := InYear(year)

	// The trend covers every year so the selected year can be read in context.
	trend := singleSeries("yearly-sales-trend", models.ChartLine,
		"Yearly Average Automobile Sales", "Year", "Average Automobile Sales",
		Aggregate(table, Query{GroupBy: []Dimension{DimYear}, Measure: MeasureSales, Reducer: ReduceMean}))

	monthly := singleSeries("yearly-monthly-sales", models.ChartLine,
		fmt.Sprintf("Monthly Automobile Sales in %d", year), "Month", "Total Automobile Sales",
		Aggregate(table, Query{Filter: inYear, GroupBy: []Dimension{DimMonth}, Measure: MeasureSales, Reducer: ReduceSum}))

	byVehicle := singleSeries("yearly-vehicle-sales", models.ChartBar,
		fmt.Sprintf("Average Sales by Vehicle Type in %d", year), "Vehicle Type", "Average Automobile Sales",
		Aggregate(table, Query{Filter: inYear, GroupBy: []Dimension{DimVehicleType}, Measure: MeasureSales, Reducer: ReduceMean}))

	adSpend := singleSeries("yearly-ad-spend", models.ChartPie,
		fmt.Sprintf("Advertising Expenditure in %d", year), "Vehicle Type", "Advertising Expenditure",
		Aggregate(table, Query{Filter: inYear, GroupBy: []Dimension{DimVehicleType}, Measure: MeasureAdvertising, Reducer: ReduceSum}))

	return [][]models.ChartSpec{{trend, monthly}, {byVehicle, adSpend}}
}

// singleSeries turns groups keyed by one dimension into a one-series chart.
func singleSeries(id string, kind models.ChartKind, title, xLabel, yLabel string, groups []models.Group) models.ChartSpec {
	spec := models.ChartSpec{
		ID:         id,
		Kind:       kind,
		Title:      title,
		XLabel:     xLabel,
		YLabel:     yLabel,
		Categories: make([]string, 0, len(groups)),
	}

	points := make([]models.Point, 0, len(groups))
	for _, g := range groups {
		spec.Categories = append(spec.Categories, g.Keys[0])
		points = append(points, models.Point{Label: g.Keys[0], Value: round2(g.Value)})
	}
	spec.Series = []models.Series{{Name: yLabel, Points: points}}

	return spec
}

// colouredSeries turns groups keyed by (x, colour) into one series per
// colour value. Groups must already be sorted by (x, colour).
func colouredSeries(id string, kind models.ChartKind, title, xLabel, yLabel string, colour Dimension, groups []models.Group) models.ChartSpec {
	spec := models.ChartSpec{
		ID:         id,
		Kind:       kind,
		Title:      title,
		XLabel:     xLabel,
		YLabel:     yLabel,
		ColorBy:    string(colour),
		Categories: []string{},
		Series:     []models.Series{},
	}

	byColour := make(map[string][]models.Point)
	for _, g := range groups {
		xKey, cKey := g.Keys[0], g.Keys[1]
		if n := len(spec.Categories); n == 0 || spec.Categories[n-1] != xKey {
			spec.Categories = append(spec.Categories, xKey)
		}
		byColour[cKey] = append(byColour[cKey], models.Point{Label: xKey, Value: round2(g.Value)})
	}

	colours := make([]string, 0, len(byColour))
	for c := range byColour {
		colours = append(colours, c)
	}
	slices.SortFunc(colours, colour.compare)

	for _, c := range colours {
		spec.Series = append(spec.Series, models.Series{Name: c, Points: byColour[c]})
	}

	return spec
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
