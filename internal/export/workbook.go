// Package export writes report views as Excel workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"autosales-dashboard/internal/models"
)

const (
	summarySheet = "Summary"
	maxSheetName = 31
)

// Workbook builds a workbook for view: a summary sheet describing the
// selection followed by one sheet per chart holding its data table.
// Placeholder views produce the summary sheet only.
func Workbook(view models.ReportView) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummary(f, view); err != nil {
		f.Close()
		return nil, err
	}

	used := map[string]bool{summarySheet: true}
	for _, spec := range view.Charts() {
		name := sheetName(spec.ID, used)
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeChart(f, name, spec, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write streams the workbook for view to w.
func Write(w io.Writer, view models.ReportView) error {
	f, err := Workbook(view)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Filename suggests a download name for view.
func Filename(view models.ReportView) string {
	switch {
	case view.Report == models.ReportRecession:
		return "automobile-sales-recession.xlsx"
	case view.Report == models.ReportYearly && view.HasCharts():
		return fmt.Sprintf("automobile-sales-%d.xlsx", view.Year)
	}
	return "automobile-sales.xlsx"
}

func writeSummary(f *excelize.File, view models.ReportView) error {
	report := string(view.Report)
	if report == "" {
		report = "(none)"
	}

	rows := [][]any{
		{"Automobile Sales Statistics Dashboard"},
		{"Report", report},
	}
	if view.Report == models.ReportYearly && view.HasCharts() {
		rows = append(rows, []any{"Year", view.Year})
	}
	if view.Placeholder != "" {
		rows = append(rows, []any{"Note", view.Placeholder})
	}
	for _, spec := range view.Charts() {
		rows = append(rows, []any{"Chart", spec.Title})
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	return nil
}

// writeChart lays out spec as a table: the category column followed by one
// value column per series.
func writeChart(f *excelize.File, sheet string, spec models.ChartSpec, headerStyle int) error {
	header := []any{spec.XLabel}
	for _, s := range spec.Series {
		header = append(header, s.Name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style header of %q: %w", sheet, err)
	}

	for i, cat := range spec.Categories {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(sheet, cell, cat); err != nil {
			return err
		}
		for j, s := range spec.Series {
			for _, p := range s.Points {
				if p.Label != cat {
					continue
				}
				cell, _ := excelize.CoordinatesToCellName(j+2, row)
				if err := f.SetCellValue(sheet, cell, p.Value); err != nil {
					return err
				}
			}
		}
	}

	return f.SetColWidth(sheet, "A", "A", 20)
}

// sheetName derives a unique, Excel-safe sheet name from a chart id.
func sheetName(id string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, id)

	runes := []rune(clean)
	if len(runes) > maxSheetName {
		runes = runes[:maxSheetName]
	}
	name := strings.TrimSpace(string(runes))

	base := []rune(name)
	for n := 2; used[name]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		cut := min(len(base), maxSheetName-len(suffix))
		name = strings.TrimSpace(string(base[:cut])) + suffix
	}
	used[name] = true
	return name
}
