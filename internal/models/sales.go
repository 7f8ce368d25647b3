package models

// SalesRecord is one row of the automobile sales dataset.
type SalesRecord struct {
	Year                   int     `json:"year"`
	Month                  string  `json:"month"`
	VehicleType            string  `json:"vehicle_type"`
	AutomobileSales        float64 `json:"automobile_sales"`
	AdvertisingExpenditure float64 `json:"advertising_expenditure"`
	UnemploymentRate       float64 `json:"unemployment_rate"`
	Recession              bool    `json:"recession"`
}

// Column names as they appear in the CSV header.
const (
	ColYear                   = "Year"
	ColMonth                  = "Month"
	ColVehicleType            = "Vehicle_Type"
	ColAutomobileSales        = "Automobile_Sales"
	ColAdvertisingExpenditure = "Advertising_Expenditure"
	ColUnemploymentRate       = "unemployment_rate"
	ColRecession              = "Recession"
)

// RequiredColumns lists every column the dashboard reads.
var RequiredColumns = []string{
	ColYear,
	ColMonth,
	ColVehicleType,
	ColAutomobileSales,
	ColAdvertisingExpenditure,
	ColUnemploymentRate,
	ColRecession,
}

// Group is one row of an aggregation result: the group key tuple, in
// GroupBy order, and the reduced value.
type Group struct {
	Keys  []string `json:"keys"`
	Value float64  `json:"value"`
	Count int      `json:"count"`
}

// DatasetStats summarises the loaded table for the admin endpoint.
type DatasetStats struct {
	Source          string   `json:"source"`
	RecordCount     int      `json:"record_count"`
	RecessionCount  int      `json:"recession_count"`
	Years           []int    `json:"years"`
	VehicleTypes    []string `json:"vehicle_types"`
	LoadDurationMS  int64    `json:"load_duration_ms"`
	LoadedAtRFC3339 string   `json:"loaded_at"`
}
