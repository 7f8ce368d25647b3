package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"autosales-dashboard/internal/models"
	"autosales-dashboard/internal/observability"
	"autosales-dashboard/internal/render"
	"autosales-dashboard/internal/services"
	"autosales-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	analytics *services.Analytics
	renderer  *render.Renderer
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, renderer *render.Renderer, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		renderer:  renderer,
		logger:    logger,
	}
}

// selectorValue accepts a selector value sent either as a JSON string or
// as a bare number.
type selectorValue string

func (v *selectorValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = selectorValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = selectorValue(n.String())
	return nil
}

type reportSignals struct {
	ReportType selectorValue `json:"reportType"`
	Year       selectorValue `json:"year"`
}

// HandleReport is invoked by the page whenever either selector changes. It
// rebuilds the whole output region and the year selector state from the
// current signal values.
func (h *SSEHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	var signals reportSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Warn("read report signals", "error", err, "request_id", requestID)
	}

	sel, err := models.ParseSelection(string(signals.ReportType), string(signals.Year))
	if err != nil {
		h.logger.Warn("invalid report selection, showing placeholder", "error", err, "request_id", requestID)
		sel = models.ReportSelection{}
	}

	ctx, span := observability.StartSpan(r.Context(), "report.render")
	span.SetTag("report", string(sel.Report))
	view := h.analytics.Report(sel)
	rows, err := h.renderer.RenderView(ctx, view)
	span.SetError(err)
	span.Finish(ctx, h.logger)
	if err != nil {
		h.logger.Warn("report render aborted", "error", err, "request_id", requestID)
		return
	}

	sse := datastar.NewSSE(w, r)

	if err := sse.MarshalAndPatchSignals(map[string]any{"yearDisabled": view.YearDisabled}); err != nil {
		h.logger.Error("patch year selector state", "error", err, "request_id", requestID)
		return
	}

	if err := sse.PatchElementTempl(templates.Output(view, rows)); err != nil {
		h.logger.Error("patch output container", "error", err, "request_id", requestID)
		return
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
