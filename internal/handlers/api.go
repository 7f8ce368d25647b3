package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"autosales-dashboard/internal/errors"
	"autosales-dashboard/internal/export"
	"autosales-dashboard/internal/models"
	"autosales-dashboard/internal/observability"
	"autosales-dashboard/internal/services"
)

const (
	cacheMaxAge = "public, max-age=300"
	xlsxType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *APIHandlers) selection(r *http.Request) (models.ReportSelection, error) {
	q := r.URL.Query()
	sel, err := models.ParseSelection(q.Get("report"), q.Get("year"))
	if err != nil {
		return sel, errors.BadRequestWrap(err, "invalid report selection").WithDetails("%v", err)
	}
	return sel, nil
}

// HandleReport returns the report view for ?report=&year= as JSON.
func (h *APIHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	sel, err := h.selection(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccessWithHeaders(w, h.analytics.Report(sel), map[string]string{
		"Cache-Control": cacheMaxAge,
	})
}

func (h *APIHandlers) HandleYears(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Years(), map[string]string{
		"Cache-Control": cacheMaxAge,
	})
}

// HandleExport downloads the report for ?report=&year= as a workbook.
func (h *APIHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	sel, err := h.selection(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	view := h.analytics.Report(sel)

	var buf bytes.Buffer
	if err := export.Write(&buf, view); err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "build workbook"), requestID)
		return
	}

	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(view)))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("write workbook response", "error", err, "request_id", requestID)
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
		"records":   h.analytics.Table().Len(),
	}

	errors.WriteSuccessWithHeaders(w, healthData, map[string]string{
		"Cache-Control": "no-cache",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
