package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"autosales-dashboard/internal/config"
	"autosales-dashboard/internal/models"
	"autosales-dashboard/internal/render"
)

func newTestSSEHandlers() *SSEHandlers {
	logger := testLogger()
	renderer := render.NewRenderer(config.ChartConfig{Width: 400, Height: 300}, logger)
	return NewSSEHandlers(createTestAnalytics(), renderer, logger)
}

func signalsRequest(signals string) *http.Request {
	target := "/sse/report"
	if signals != "" {
		target += "?datastar=" + url.QueryEscape(signals)
	}
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func TestNewSSEHandlers(t *testing.T) {
	analytics := createTestAnalytics()
	logger := testLogger()
	renderer := render.NewRenderer(config.ChartConfig{Width: 400, Height: 300}, logger)

	handlers := NewSSEHandlers(analytics, renderer, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.analytics != analytics {
		t.Error("NewSSEHandlers() should set analytics field")
	}
	if handlers.renderer != renderer {
		t.Error("NewSSEHandlers() should set renderer field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_HandleReport(t *testing.T) {
	tests := []struct {
		name        string
		signals     string
		wantContain []string
		wantAbsent  []string
	}{
		{
			name:        "no signals",
			signals:     "",
			wantContain: []string{models.PlaceholderMessage, `"yearDisabled":true`},
			wantAbsent:  []string{"chart-row"},
		},
		{
			name:        "yearly without year",
			signals:     `{"reportType":"Yearly Statistics","year":""}`,
			wantContain: []string{models.PlaceholderMessage, `"yearDisabled":false`},
			wantAbsent:  []string{"chart-row"},
		},
		{
			name:    "yearly with year",
			signals: `{"reportType":"Yearly Statistics","year":"1981"}`,
			wantContain: []string{
				`"yearDisabled":false`,
				`id="chart-yearly-sales-trend"`,
				`id="chart-yearly-monthly-sales"`,
				`id="chart-yearly-vehicle-sales"`,
				`id="chart-yearly-ad-spend"`,
			},
			wantAbsent: []string{models.PlaceholderMessage},
		},
		{
			name:    "yearly with numeric year",
			signals: `{"reportType":"Yearly Statistics","year":1980}`,
			wantContain: []string{
				`id="chart-yearly-sales-trend"`,
			},
		},
		{
			name:    "recession ignores year",
			signals: `{"reportType":"Recession Period Statistics","year":"1981"}`,
			wantContain: []string{
				`"yearDisabled":true`,
				`id="chart-recession-sales-trend"`,
				`id="chart-recession-vehicle-sales"`,
				`id="chart-recession-ad-share"`,
				`id="chart-recession-unemployment"`,
			},
			wantAbsent: []string{models.PlaceholderMessage},
		},
		{
			name:        "unknown report type",
			signals:     `{"reportType":"Weekly","year":"1981"}`,
			wantContain: []string{models.PlaceholderMessage, `"yearDisabled":true`},
		},
		{
			name:        "malformed signals",
			signals:     `{"reportType":`,
			wantContain: []string{models.PlaceholderMessage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers := newTestSSEHandlers()
			w := httptest.NewRecorder()

			handlers.HandleReport(w, signalsRequest(tt.signals))

			if w.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
			}

			body := w.Body.String()
			if !strings.Contains(body, "event:") || !strings.Contains(body, "data:") {
				t.Error("response should contain SSE event format")
			}
			if !strings.Contains(body, `id="output-container"`) {
				t.Error("response should patch the output container")
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(body, want) {
					t.Errorf("response should contain %q", want)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(body, absent) {
					t.Errorf("response should not contain %q", absent)
				}
			}
		})
	}
}

func TestSSEHandlers_HandleReport_AbsentYear(t *testing.T) {
	handlers := newTestSSEHandlers()
	w := httptest.NewRecorder()

	handlers.HandleReport(w, signalsRequest(`{"reportType":"Yearly Statistics","year":"1999"}`))

	body := w.Body.String()
	if strings.Count(body, `<figure class="chart"`) != 4 {
		t.Error("absent year should still produce four panels")
	}
	if !strings.Contains(body, render.EmptyMessage) {
		t.Errorf("absent year panels should show %q", render.EmptyMessage)
	}
}

func TestSSEHandlers_HandleReport_CancelledRequest(t *testing.T) {
	handlers := newTestSSEHandlers()
	w := httptest.NewRecorder()

	req := signalsRequest(`{"reportType":"Recession Period Statistics"}`)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()

	handlers.HandleReport(w, req.WithContext(ctx))

	if strings.Contains(w.Body.String(), "chart-row") {
		t.Error("cancelled request should not stream charts")
	}
}

func TestSelectorValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"1981"`, "1981"},
		{`1981`, "1981"},
		{`""`, ""},
		{`null`, ""},
	}

	for _, tt := range tests {
		var v selectorValue
		if err := v.UnmarshalJSON([]byte(tt.in)); err != nil {
			t.Errorf("UnmarshalJSON(%s) error = %v", tt.in, err)
			continue
		}
		if string(v) != tt.want {
			t.Errorf("UnmarshalJSON(%s) = %q, want %q", tt.in, v, tt.want)
		}
	}

	var v selectorValue
	if err := v.UnmarshalJSON([]byte(`{}`)); err == nil {
		t.Error("UnmarshalJSON({}) should fail")
	}
}
