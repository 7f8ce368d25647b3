package services

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"autosales-dashboard/internal/config"
	"autosales-dashboard/internal/models"
)

// Analytics owns the sales table for the lifetime of the process. Load or
// SetData must finish before the Analytics is handed to request handlers;
// after that it is only read.
type Analytics struct {
	table    *SalesTable
	source   string
	loadedAt time.Time
	loadTook time.Duration
	client   *http.Client
	logger   *slog.Logger
}

func NewAnalytics() *Analytics {
	return &Analytics{
		table:  NewSalesTable(nil),
		client: &http.Client{},
		logger: slog.Default(),
	}
}

// WithHTTPClient replaces the client used for remote sources.
func (a *Analytics) WithHTTPClient(c *http.Client) *Analytics {
	a.client = c
	return a
}

// SetData replaces the table with records. Used by tests and tools that
// already hold the rows.
func (a *Analytics) SetData(records []models.SalesRecord) {
	a.table = NewSalesTable(records)
	a.source = "memory"
	a.loadedAt = time.Now()
	a.loadTook = 0
}

// Load reads the dataset once from cfg.Source, either over HTTP or from a
// local file, bounded by cfg.FetchTimeout.
func (a *Analytics) Load(ctx context.Context, cfg config.DataConfig) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	start := time.Now()
	a.logger.Info("loading dataset", "source", cfg.Source, "remote", cfg.IsRemote())

	var (
		table *SalesTable
		err   error
	)
	if cfg.IsRemote() {
		table, err = FetchDataset(ctx, a.client, cfg.Source)
	} else {
		table, err = ReadDatasetFile(cfg.Source)
	}
	if err != nil {
		return err
	}

	a.table = table
	a.source = cfg.Source
	a.loadedAt = time.Now()
	a.loadTook = time.Since(start)

	a.logger.Info("dataset loaded",
		"records", table.Len(),
		"years", len(table.years),
		"vehicle_types", len(table.vehicleTypes),
		"duration", a.loadTook,
	)
	return nil
}

func (a *Analytics) Table() *SalesTable {
	return a.table
}

func (a *Analytics) Years() []int {
	return a.table.Years()
}

// Report builds the view for sel against the loaded table.
func (a *Analytics) Report(sel models.ReportSelection) models.ReportView {
	return BuildReport(a.table, sel)
}

func (a *Analytics) Stats() models.DatasetStats {
	return models.DatasetStats{
		Source:          a.source,
		RecordCount:     a.table.Len(),
		RecessionCount:  a.table.RecessionCount(),
		Years:           a.table.Years(),
		VehicleTypes:    a.table.VehicleTypes(),
		LoadDurationMS:  a.loadTook.Milliseconds(),
		LoadedAtRFC3339: a.loadedAt.UTC().Format(time.RFC3339),
	}
}
