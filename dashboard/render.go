package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"

	"sleep-dashboard/models"
	"sleep-dashboard/utils"
)

var (
	// ErrUnknownChart is returned when a chart id is not on the dashboard.
	ErrUnknownChart = errors.New("unknown chart")
	// ErrUnsupportedChart is returned for a ChartSpec the backend cannot draw.
	ErrUnsupportedChart = errors.New("unsupported chart")
)

// echarts treats "-" as an empty value and leaves a gap.
const missingValue = "-"

// Chart is a drawable go-echarts chart.
type Chart interface {
	components.Charter
	Render(w io.Writer) error
	RenderSnippet() render.ChartSnippet
}

// RenderChart converts a ChartSpec into a go-echarts chart. It is the only
// place that knows about the plotting backend.
func RenderChart(spec models.ChartSpec) (Chart, error) {
	switch spec.Kind {
	case models.ChartLine:
		return lineChart(spec), nil
	case models.ChartHeatmap:
		if spec.Heatmap == nil {
			return nil, fmt.Errorf("%w: %s has no heatmap data", ErrUnsupportedChart, spec.ID)
		}
		return heatmapChart(spec), nil
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedChart, spec.ID, spec.Kind)
	}
}

func initOpts(spec models.ChartSpec) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		ChartID:   spec.ID,
		PageTitle: spec.Title,
		Width:     fmt.Sprintf("%dpx", spec.WidthPixels),
		Height:    fmt.Sprintf("%dpx", spec.HeightPixels),
	})
}

func lineChart(spec models.ChartSpec) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(spec),
		charts.WithAnimation(false),
		charts.WithTitleOpts(opts.Title{Title: spec.Title, Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(spec.Legend), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:         "time",
			Name:         spec.XLabel,
			NameLocation: "middle",
			NameGap:      45,
			AxisLabel:    &opts.AxisLabel{Rotate: spec.XTickRotate},
			SplitLine:    &opts.SplitLine{Show: opts.Bool(spec.Grid)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      spec.YLabel,
			Scale:     opts.Bool(true),
			SplitLine: &opts.SplitLine{Show: opts.Bool(spec.Grid)},
		}),
	)

	for _, s := range spec.Series {
		data := make([]opts.LineData, 0, len(s.Points))
		for _, p := range s.Points {
			var y interface{} = missingValue
			if p.Y.Valid {
				y = p.Y.Value
			}
			data = append(data, opts.LineData{Value: []interface{}{p.X.UnixMilli(), y}})
		}
		line.AddSeries(s.Name, data,
			charts.WithLineChartOpts(opts.LineChart{
				Symbol:       s.Marker,
				ShowSymbol:   opts.Bool(true),
				ConnectNulls: opts.Bool(false),
			}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color, Width: 2}),
		)
	}
	return line
}

func heatmapChart(spec models.ChartSpec) *charts.HeatMap {
	h := spec.Heatmap

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		initOpts(spec),
		charts.WithAnimation(false),
		charts.WithTitleOpts(opts.Title{Title: spec.Title, Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Data:      h.Labels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      h.Labels,
			Inverse:   opts.Bool(true),
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(h.Min),
			Max:        float32(h.Max),
			Orient:     "vertical",
			Right:      "0",
			Top:        "center",
			InRange:    &opts.VisualMapInRange{Color: h.Palette},
		}),
	)

	data := make([]opts.HeatMapData, 0, len(h.Labels)*len(h.Labels))
	for i := range h.Values {
		for j, v := range h.Values[i] {
			var cell interface{} = missingValue
			if !math.IsNaN(v) {
				cell = math.Round(v*100) / 100
			}
			data = append(data, opts.HeatMapData{Value: []interface{}{j, i, cell}})
		}
	}

	hm.AddSeries("correlation", data,
		charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Formatter: opts.FuncOpts("function (p) { return p.value[2]; }"),
		}),
	)
	return hm
}

// Dashboard is the rendered output: the full page plus one standalone page
// per chart, keyed by chart id. It is read-only once built.
type Dashboard struct {
	Title  string
	Rows   int
	Page   []byte
	Order  []string
	Titles map[string]string
	charts map[string][]byte
}

// Chart returns the standalone page for one chart.
func (d *Dashboard) Chart(id string) ([]byte, error) {
	b, ok := d.charts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, id)
	}
	return b, nil
}

// Renderer lays chart specs out on the dashboard page.
type Renderer struct {
	title  string
	logger *utils.Logger
}

func NewRenderer(title string, logger *utils.Logger) *Renderer {
	return &Renderer{title: title, logger: logger}
}

type pageChart struct {
	ID      string
	Title   string
	Element template.HTML
	Script  template.HTML
}

type pageData struct {
	Title  string
	Rows   int
	Assets []string
	Charts []pageChart
}

// Render draws every spec in order. Each chart is turned into its HTML
// snippet and standalone page, then dropped before the next one is built.
func (r *Renderer) Render(specs []models.ChartSpec, rows int) (*Dashboard, error) {
	dash := &Dashboard{
		Title:  r.title,
		Rows:   rows,
		Titles: make(map[string]string, len(specs)),
		charts: make(map[string][]byte, len(specs)),
	}
	data := pageData{Title: r.title, Rows: rows}
	seenAsset := make(map[string]struct{})

	for _, spec := range specs {
		if _, dup := dash.charts[spec.ID]; dup {
			return nil, fmt.Errorf("dashboard: duplicate chart id %q", spec.ID)
		}

		chart, err := RenderChart(spec)
		if err != nil {
			return nil, fmt.Errorf("dashboard: %w", err)
		}

		snippet := chart.RenderSnippet()
		for _, asset := range chart.GetAssets().JSAssets.Values {
			if _, ok := seenAsset[asset]; !ok {
				seenAsset[asset] = struct{}{}
				data.Assets = append(data.Assets, asset)
			}
		}

		var standalone bytes.Buffer
		if err := chart.Render(&standalone); err != nil {
			return nil, fmt.Errorf("dashboard: render %s: %w", spec.ID, err)
		}

		data.Charts = append(data.Charts, pageChart{
			ID:      spec.ID,
			Title:   spec.Title,
			Element: template.HTML(snippet.Element),
			Script:  template.HTML(snippet.Script),
		})
		dash.charts[spec.ID] = standalone.Bytes()
		dash.Order = append(dash.Order, spec.ID)
		dash.Titles[spec.ID] = spec.Title

		r.logger.Debug("[dashboard] Rendered %s (%d bytes)", spec.ID, standalone.Len())
	}

	var page bytes.Buffer
	if err := pageTemplate.Execute(&page, data); err != nil {
		return nil, fmt.Errorf("dashboard: render page: %w", err)
	}
	dash.Page = page.Bytes()

	r.logger.Info("[dashboard] Rendered %d charts onto %q", len(dash.Order), r.title)
	return dash, nil
}
