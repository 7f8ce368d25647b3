// Package render draws report charts as inline SVG.
package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"

	"autosales-dashboard/internal/config"
	"autosales-dashboard/internal/models"
)

const maxWorkers = 4

// EmptyMessage is shown in place of a chart that has nothing to draw.
const EmptyMessage = "No data for this selection"

var palette = []string{
	"4F46E5", "10B981", "F59E0B", "EF4444", "8B5CF6",
	"06B6D4", "EC4899", "84CC16", "F97316", "6366F1",
}

func colour(i int) drawing.Color {
	return drawing.ColorFromHex(palette[i%len(palette)])
}

type LegendEntry struct {
	Name  string
	Color string
}

// Panel is one rendered chart slot of the output grid.
type Panel struct {
	ID      string
	Title   string
	SVG     string
	Message string
	Legend  []LegendEntry
}

func (p Panel) Empty() bool {
	return p.SVG == ""
}

type Renderer struct {
	width  int
	height int
	logger *slog.Logger
}

func NewRenderer(cfg config.ChartConfig, logger *slog.Logger) *Renderer {
	return &Renderer{width: cfg.Width, height: cfg.Height, logger: logger}
}

// RenderView renders every chart of view, keeping the row layout. Charts
// are drawn concurrently. A chart that fails to draw becomes an empty
// panel; only context cancellation is returned as an error.
func (r *Renderer) RenderView(ctx context.Context, view models.ReportView) ([][]Panel, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	rows := make([][]Panel, len(view.Rows))
	for i, row := range view.Rows {
		rows[i] = make([]Panel, len(row))
		for j, spec := range row {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				panel, err := r.Render(spec)
				if err != nil {
					r.logger.Warn("chart render failed", "chart", spec.ID, "error", err)
					panel = emptyPanel(spec, "Chart unavailable")
				}
				rows[i][j] = panel
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Render draws a single chart. Empty charts come back as a panel without
// SVG and no error.
func (r *Renderer) Render(spec models.ChartSpec) (Panel, error) {
	if spec.Empty() {
		return emptyPanel(spec, EmptyMessage), nil
	}

	var (
		buf bytes.Buffer
		err error
	)
	panel := Panel{ID: spec.ID, Title: spec.Title}

	switch {
	case spec.Kind == models.ChartPie:
		err = r.pie(spec).Render(chart.SVG, &buf)
	case spec.Kind == models.ChartBar && spec.ColorBy != "":
		err = r.stackedBar(spec).Render(chart.SVG, &buf)
		for i, s := range spec.Series {
			panel.Legend = append(panel.Legend, LegendEntry{Name: s.Name, Color: "#" + palette[i%len(palette)]})
		}
	case spec.Kind == models.ChartBar:
		err = r.bar(spec).Render(chart.SVG, &buf)
	case spec.Kind == models.ChartLine:
		err = r.line(spec).Render(chart.SVG, &buf)
	default:
		err = fmt.Errorf("unsupported chart kind %q", spec.Kind)
	}
	if err != nil {
		return Panel{}, fmt.Errorf("render %s: %w", spec.ID, err)
	}

	panel.SVG = buf.String()
	return panel, nil
}

func emptyPanel(spec models.ChartSpec, msg string) Panel {
	return Panel{ID: spec.ID, Title: spec.Title, Message: msg}
}

func (r *Renderer) background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}}
}

// valueRange spans zero to a little above the largest value so that a
// single point or equal bars still give a non-zero axis.
func valueRange(series []models.Series) *chart.ContinuousRange {
	top := 0.0
	for _, s := range series {
		for _, p := range s.Points {
			top = math.Max(top, p.Value)
		}
	}
	if top == 0 {
		top = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: top * 1.1}
}

// line draws the first series against the ordered category axis. Points
// are placed at their category index so Year and Month axes are spaced
// evenly and labelled verbatim.
func (r *Renderer) line(spec models.ChartSpec) chart.Chart {
	index := make(map[string]float64, len(spec.Categories))
	ticks := make([]chart.Tick, 0, len(spec.Categories))
	for i, c := range spec.Categories {
		index[c] = float64(i)
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: c})
	}

	points := spec.Series[0].Points
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		xs = append(xs, index[p.Label])
		ys = append(ys, p.Value)
	}

	dotWidth := 3.0
	// go-chart needs at least two X values; a lone point is drawn as a
	// short flat segment around its category with a larger dot.
	if len(xs) == 1 {
		xs = []float64{xs[0] - 0.5, xs[0] + 0.5}
		ys = []float64{ys[0], ys[0]}
		dotWidth = 6
	}

	xRange := &chart.ContinuousRange{Min: 0, Max: float64(len(spec.Categories) - 1)}
	if len(spec.Categories) == 1 {
		xRange = &chart.ContinuousRange{Min: -1, Max: 1}
	}

	return chart.Chart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: r.background(),
		XAxis:      chart.XAxis{Name: spec.XLabel, Range: xRange, Ticks: ticks},
		YAxis:      chart.YAxis{Name: spec.YLabel, Range: valueRange(spec.Series)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    spec.Series[0].Name,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: colour(0),
					StrokeWidth: 2,
					DotColor:    colour(0),
					DotWidth:    dotWidth,
				},
			},
		},
	}
}

func (r *Renderer) bar(spec models.ChartSpec) chart.BarChart {
	points := spec.Series[0].Points
	bars := make([]chart.Value, 0, len(points))
	for i, p := range points {
		bars = append(bars, chart.Value{
			Label: p.Label,
			Value: p.Value,
			Style: chart.Style{FillColor: colour(i), StrokeColor: colour(i)},
		})
	}

	return chart.BarChart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: r.background(),
		BarWidth:   barWidth(r.width, len(bars)),
		YAxis:      chart.YAxis{Name: spec.YLabel, Range: valueRange(spec.Series)},
		Bars:       bars,
	}
}

// stackedBar draws a colour-grouped bar chart: one bar per category, one
// segment per series.
func (r *Renderer) stackedBar(spec models.ChartSpec) chart.StackedBarChart {
	bars := make([]chart.StackedBar, 0, len(spec.Categories))
	for _, cat := range spec.Categories {
		bar := chart.StackedBar{Name: cat}
		for i, s := range spec.Series {
			for _, p := range s.Points {
				if p.Label == cat {
					bar.Values = append(bar.Values, chart.Value{
						Label: s.Name,
						Value: p.Value,
						Style: chart.Style{FillColor: colour(i), StrokeColor: colour(i)},
					})
				}
			}
		}
		bars = append(bars, bar)
	}

	return chart.StackedBarChart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: r.background(),
		BarSpacing: 8,
		Bars:       bars,
	}
}

func (r *Renderer) pie(spec models.ChartSpec) chart.PieChart {
	points := spec.Series[0].Points
	values := make([]chart.Value, 0, len(points))
	for i, p := range points {
		if p.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: p.Label,
			Value: p.Value,
			Style: chart.Style{FillColor: colour(i), StrokeColor: drawing.ColorWhite},
		})
	}

	return chart.PieChart{
		Title:  spec.Title,
		Width:  r.width,
		Height: r.height,
		Values: values,
	}
}

func barWidth(width, n int) int {
	if n == 0 {
		return 0
	}
	w := (width - 120) / (n * 2)
	return max(10, min(w, 80))
}
