package services

import (
	"sleep-dashboard/models"
	"sleep-dashboard/utils"
)

// Chart identifiers, in the order they appear on the dashboard.
const (
	ChartSleepTrend        = "sleep_trend"
	ChartScreenTimeTrend   = "screen_time_trend"
	ChartMoodEnergyTrend   = "mood_energy_trend"
	ChartCorrelationMatrix = "correlation_matrix"
)

// Diverging blue→grey→red palette for correlations.
var coolwarm = []string{"#3b4cc0", "#7b9ff9", "#dddddd", "#f49a7b", "#b40426"}

// Visualizer turns a dataset into backend-independent chart descriptors.
type Visualizer struct {
	logger *utils.Logger
}

func NewVisualizer(logger *utils.Logger) *Visualizer {
	return &Visualizer{logger: logger}
}

// Build returns the four dashboard charts in display order.
func (v *Visualizer) Build(ds *models.Dataset) []models.ChartSpec {
	specs := []models.ChartSpec{
		trendChart(ChartSleepTrend, "Sleep Hours Trend", "Sleep Hours", false,
			series(ds, "Sleep Hours", models.ColSleepHours, "blue")),
		trendChart(ChartScreenTimeTrend, "Screen Time Trend", "Screen Time (Hours)", false,
			series(ds, "Screen Time", models.ColScreenTime, "red")),
		trendChart(ChartMoodEnergyTrend, "Mood & Energy Trend", "Level", true,
			series(ds, "Mood", models.ColMood, "green"),
			series(ds, "Energy", models.ColEnergy, "orange")),
		correlationChart(CorrelationMatrix(ds, models.NumericColumns)),
	}

	v.logger.Info("[visualizer] Built %d charts from %d rows", len(specs), ds.Len())
	return specs
}

func trendChart(id, title, yLabel string, legend bool, s ...models.Series) models.ChartSpec {
	return models.ChartSpec{
		ID:           id,
		Kind:         models.ChartLine,
		Title:        title,
		XLabel:       "Date",
		YLabel:       yLabel,
		Series:       s,
		Legend:       legend,
		Grid:         true,
		XTickRotate:  45,
		WidthPixels:  1000,
		HeightPixels: 400,
	}
}

func series(ds *models.Dataset, name, column, color string) models.Series {
	s := models.Series{
		Name:   name,
		Color:  color,
		Marker: "circle",
		Points: make([]models.Point, 0, ds.Len()),
	}
	for _, r := range ds.Records {
		s.Points = append(s.Points, models.Point{X: r.Date, Y: r.Measure(column)})
	}
	return s
}

func correlationChart(m *models.CorrelationMatrix) models.ChartSpec {
	return models.ChartSpec{
		ID:    ChartCorrelationMatrix,
		Kind:  models.ChartHeatmap,
		Title: "Correlation Matrix",
		Heatmap: &models.Heatmap{
			Labels:  m.Columns,
			Values:  m.Values,
			Min:     -1,
			Max:     1,
			Palette: coolwarm,
		},
		WidthPixels:  800,
		HeightPixels: 600,
	}
}
