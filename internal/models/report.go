package models

import (
	"fmt"
	"strconv"
	"strings"
)

type ReportType string

const (
	ReportUnset     ReportType = ""
	ReportYearly    ReportType = "Yearly Statistics"
	ReportRecession ReportType = "Recession Period Statistics"
)

// ReportTypes is the fixed option list of the report selector.
var ReportTypes = []ReportType{ReportYearly, ReportRecession}

// ParseReportType accepts the selector labels and the short forms
// "yearly" and "recession". The empty string is ReportUnset.
func ParseReportType(s string) (ReportType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ReportUnset, nil
	case "yearly", "yearly statistics":
		return ReportYearly, nil
	case "recession", "recession period statistics":
		return ReportRecession, nil
	}
	return ReportUnset, fmt.Errorf("unknown report type %q", s)
}

// ReportSelection is the live state of the two selectors.
type ReportSelection struct {
	Report  ReportType
	Year    int
	YearSet bool
}

// ParseSelection builds a selection from raw selector values. An empty
// year means no year has been chosen.
func ParseSelection(report, year string) (ReportSelection, error) {
	rt, err := ParseReportType(report)
	if err != nil {
		return ReportSelection{}, err
	}

	sel := ReportSelection{Report: rt}
	if year = strings.TrimSpace(year); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return ReportSelection{}, fmt.Errorf("invalid year %q", year)
		}
		sel.Year, sel.YearSet = y, true
	}
	return sel, nil
}

// YearEnabled reports whether the year selector accepts input.
func (s ReportSelection) YearEnabled() bool {
	return s.Report == ReportYearly
}

type ChartKind string

const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
	ChartPie  ChartKind = "pie"
)

type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// ChartSpec describes one chart of a report. Series holds one entry for
// plain charts and one entry per colour group when ColorBy is set; all
// series share the Categories axis in order.
type ChartSpec struct {
	ID         string    `json:"id"`
	Kind       ChartKind `json:"kind"`
	Title      string    `json:"title"`
	XLabel     string    `json:"x_label"`
	YLabel     string    `json:"y_label"`
	ColorBy    string    `json:"color_by,omitempty"`
	Categories []string  `json:"categories"`
	Series     []Series  `json:"series"`
}

func (c ChartSpec) Empty() bool {
	for _, s := range c.Series {
		if len(s.Points) > 0 {
			return false
		}
	}
	return true
}

// PlaceholderMessage is shown until a complete selection exists.
const PlaceholderMessage = "Please select a report type and year."

// ReportView is the full output for one selection: either a placeholder
// message or two rows of two charts.
type ReportView struct {
	Report       ReportType    `json:"report"`
	Year         int           `json:"year,omitempty"`
	YearDisabled bool          `json:"year_disabled"`
	Placeholder  string        `json:"placeholder,omitempty"`
	Rows         [][]ChartSpec `json:"rows,omitempty"`
}

func (v ReportView) HasCharts() bool {
	return len(v.Rows) > 0
}

// Charts returns the charts in reading order.
func (v ReportView) Charts() []ChartSpec {
	var out []ChartSpec
	for _, row := range v.Rows {
		out = append(out, row...)
	}
	return out
}
