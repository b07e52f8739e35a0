package dashboard

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleep-dashboard/models"
	"sleep-dashboard/utils"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func testSpecs() []models.ChartSpec {
	line := models.ChartSpec{
		ID:     "sleep_trend",
		Kind:   models.ChartLine,
		Title:  "Sleep Hours Trend",
		XLabel: "Date",
		YLabel: "Sleep Hours",
		Series: []models.Series{{
			Name:   "Sleep Hours",
			Color:  "blue",
			Marker: "circle",
			Points: []models.Point{
				{X: day(1), Y: models.Present(6)},
				{X: day(2), Y: models.Missing},
				{X: day(3), Y: models.Present(8)},
			},
		}},
		Grid:         true,
		XTickRotate:  45,
		WidthPixels:  1000,
		HeightPixels: 400,
	}
	heat := models.ChartSpec{
		ID:    "correlation_matrix",
		Kind:  models.ChartHeatmap,
		Title: "Correlation Matrix",
		Heatmap: &models.Heatmap{
			Labels:  []string{"A", "B"},
			Values:  [][]float64{{1, -0.123}, {-0.123, math.NaN()}},
			Min:     -1,
			Max:     1,
			Palette: []string{"#3b4cc0", "#b40426"},
		},
		WidthPixels:  800,
		HeightPixels: 600,
	}
	return []models.ChartSpec{line, heat}
}

func TestRenderChartLine(t *testing.T) {
	chart, err := RenderChart(testSpecs()[0])
	require.NoError(t, err)

	line, ok := chart.(*charts.Line)
	require.True(t, ok)
	require.Len(t, line.MultiSeries, 1)

	snippet := chart.RenderSnippet()
	assert.Contains(t, snippet.Element, `id="sleep_trend"`)
	assert.Contains(t, snippet.Element, "1000px")
	assert.Contains(t, snippet.Option, `"Sleep Hours Trend"`)
	assert.Contains(t, snippet.Option, `"blue"`)
	assert.Contains(t, snippet.Option, `"-"`)
	assert.Contains(t, snippet.Option, `"rotate":45`)
}

func TestRenderChartHeatmap(t *testing.T) {
	chart, err := RenderChart(testSpecs()[1])
	require.NoError(t, err)

	_, ok := chart.(*charts.HeatMap)
	require.True(t, ok)

	option := chart.RenderSnippet().Option
	assert.Contains(t, option, `"A"`)
	assert.Contains(t, option, "-0.12")
	assert.Contains(t, option, "#b40426")
	assert.Contains(t, option, `"-"`)
}

func TestRenderChartRejectsBadSpecs(t *testing.T) {
	_, err := RenderChart(models.ChartSpec{ID: "x", Kind: models.ChartHeatmap})
	assert.ErrorIs(t, err, ErrUnsupportedChart)

	_, err = RenderChart(models.ChartSpec{ID: "y", Kind: models.ChartKind(99)})
	assert.ErrorIs(t, err, ErrUnsupportedChart)
}

func TestRendererBuildsPageAndStandaloneCharts(t *testing.T) {
	dash, err := NewRenderer("Sleep Dashboard", utils.Discard()).Render(testSpecs(), 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"sleep_trend", "correlation_matrix"}, dash.Order)
	assert.Equal(t, 3, dash.Rows)

	page := string(dash.Page)
	assert.Contains(t, page, "<title>Sleep Dashboard</title>")
	assert.Contains(t, page, "3 nights loaded")
	assert.Contains(t, page, "echarts.min.js")
	assert.Less(t, strings.Index(page, `id="sleep_trend"`), strings.Index(page, `id="correlation_matrix"`))

	standalone, err := dash.Chart("correlation_matrix")
	require.NoError(t, err)
	assert.Contains(t, string(standalone), `id="correlation_matrix"`)
	assert.NotContains(t, string(standalone), `id="sleep_trend"`)

	_, err = dash.Chart("nope")
	assert.ErrorIs(t, err, ErrUnknownChart)
}

func TestRendererRejectsDuplicateIDs(t *testing.T) {
	specs := testSpecs()
	specs[1] = specs[0]

	_, err := NewRenderer("x", utils.Discard()).Render(specs, 1)
	assert.Error(t, err)
}
