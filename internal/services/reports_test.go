package services

import (
	"reflect"
	"testing"

	"autosales-dashboard/internal/models"
)

func TestBuildReport_StatesAndShape(t *testing.T) {
	table := fixtureTable()

	tests := []struct {
		name         string
		sel          models.ReportSelection
		wantCharts   bool
		yearDisabled bool
	}{
		{"unset", models.ReportSelection{}, false, true},
		{"unset with stale year", models.ReportSelection{Year: 2015, YearSet: true}, false, true},
		{"recession", models.ReportSelection{Report: models.ReportRecession}, true, true},
		{"recession ignores year", models.ReportSelection{Report: models.ReportRecession, Year: 2016, YearSet: true}, true, true},
		{"yearly without year", models.ReportSelection{Report: models.ReportYearly}, false, false},
		{"yearly with year", models.ReportSelection{Report: models.ReportYearly, Year: 2015, YearSet: true}, true, false},
		{"yearly with absent year", models.ReportSelection{Report: models.ReportYearly, Year: 1900, YearSet: true}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := BuildReport(table, tt.sel)

			if view.YearDisabled != tt.yearDisabled {
				t.Errorf("YearDisabled = %v, want %v", view.YearDisabled, tt.yearDisabled)
			}

			if !tt.wantCharts {
				if view.Placeholder != models.PlaceholderMessage {
					t.Errorf("Placeholder = %q, want %q", view.Placeholder, models.PlaceholderMessage)
				}
				if len(view.Rows) != 0 {
					t.Errorf("placeholder view should carry no rows, got %d", len(view.Rows))
				}
				return
			}

			if view.Placeholder != "" {
				t.Errorf("chart view should carry no placeholder, got %q", view.Placeholder)
			}
			if len(view.Rows) != 2 || len(view.Rows[0]) != 2 || len(view.Rows[1]) != 2 {
				t.Fatalf("expected 2x2 charts, got %d rows", len(view.Rows))
			}
		})
	}
}

func TestBuildReport_RecessionCharts(t *testing.T) {
	view := BuildReport(fixtureTable(), models.ReportSelection{Report: models.ReportRecession})
	charts := view.Charts()

	trend := charts[0]
	if trend.Kind != models.ChartLine || trend.Title != "Average Automobile Sales During Recession" {
		t.Errorf("chart 1 = %s %q", trend.Kind, trend.Title)
	}
	if want := []models.Point{{Label: "2015", Value: 120}}; !reflect.DeepEqual(trend.Series[0].Points, want) {
		t.Errorf("trend points = %+v, want %+v", trend.Series[0].Points, want)
	}

	if charts[1].Kind != models.ChartBar || charts[2].Kind != models.ChartPie {
		t.Errorf("charts 2/3 kinds = %s/%s, want bar/pie", charts[1].Kind, charts[2].Kind)
	}
	if want := []models.Point{{Label: "Car", Value: 50}, {Label: "Truck", Value: 40}}; !reflect.DeepEqual(charts[2].Series[0].Points, want) {
		t.Errorf("ad share points = %+v, want %+v", charts[2].Series[0].Points, want)
	}

	unemployment := charts[3]
	if unemployment.ColorBy != string(DimVehicleType) {
		t.Errorf("ColorBy = %q", unemployment.ColorBy)
	}
	if !reflect.DeepEqual(unemployment.Categories, []string{"2.9", "5.1"}) {
		t.Errorf("categories = %v", unemployment.Categories)
	}
	if len(unemployment.Series) != 2 || unemployment.Series[0].Name != "Car" || unemployment.Series[1].Name != "Truck" {
		t.Fatalf("series = %+v", unemployment.Series)
	}
	if want := []models.Point{{Label: "5.1", Value: 150}}; !reflect.DeepEqual(unemployment.Series[0].Points, want) {
		t.Errorf("Car points = %+v, want %+v", unemployment.Series[0].Points, want)
	}
}

func TestBuildReport_RecessionWithoutRecessionRows(t *testing.T) {
	table := NewSalesTable([]models.SalesRecord{{Year: 2000, Month: "Jan", VehicleType: "Car", AutomobileSales: 1}})

	view := BuildReport(table, models.ReportSelection{Report: models.ReportRecession})
	if !view.HasCharts() {
		t.Fatal("recession view should still carry charts")
	}
	for _, c := range view.Charts() {
		if !c.Empty() {
			t.Errorf("chart %s should be empty", c.ID)
		}
	}
}

func TestBuildReport_YearlyCharts(t *testing.T) {
	view := BuildReport(fixtureTable(), models.ReportSelection{Report: models.ReportYearly, Year: 2015, YearSet: true})
	charts := view.Charts()

	if view.Year != 2015 {
		t.Errorf("Year = %d, want 2015", view.Year)
	}
	if charts[1].Title != "Monthly Automobile Sales in 2015" {
		t.Errorf("chart 2 title = %q", charts[1].Title)
	}
	if want := []models.Point{{Label: "Jan", Value: 260}, {Label: "Mar", Value: 100}}; !reflect.DeepEqual(charts[1].Series[0].Points, want) {
		t.Errorf("monthly points = %+v, want %+v", charts[1].Series[0].Points, want)
	}
	if want := []string{"Car", "Truck"}; !reflect.DeepEqual(charts[2].Categories, want) {
		t.Errorf("vehicle categories = %v, want %v", charts[2].Categories, want)
	}
	if charts[3].Kind != models.ChartPie {
		t.Errorf("chart 4 kind = %s, want pie", charts[3].Kind)
	}
}

func TestBuildReport_YearlyTrendIgnoresSelectedYear(t *testing.T) {
	table := fixtureTable()

	a := BuildReport(table, models.ReportSelection{Report: models.ReportYearly, Year: 2015, YearSet: true})
	b := BuildReport(table, models.ReportSelection{Report: models.ReportYearly, Year: 2016, YearSet: true})

	if !reflect.DeepEqual(a.Rows[0][0], b.Rows[0][0]) {
		t.Error("yearly trend chart should not depend on the selected year")
	}
}

func TestBuildReport_AbsentYearGivesEmptyCharts(t *testing.T) {
	view := BuildReport(fixtureTable(), models.ReportSelection{Report: models.ReportYearly, Year: 1900, YearSet: true})
	charts := view.Charts()

	if charts[0].Empty() {
		t.Error("trend chart covers all years and should not be empty")
	}
	for _, c := range charts[1:] {
		if !c.Empty() {
			t.Errorf("chart %s should be empty for an absent year", c.ID)
		}
	}
}

func TestBuildReport_Idempotent(t *testing.T) {
	table := fixtureTable()
	sels := []models.ReportSelection{
		{},
		{Report: models.ReportRecession},
		{Report: models.ReportYearly, Year: 2016, YearSet: true},
	}

	for _, sel := range sels {
		if a, b := BuildReport(table, sel), BuildReport(table, sel); !reflect.DeepEqual(a, b) {
			t.Errorf("BuildReport(%+v) is not deterministic", sel)
		}
	}
}
