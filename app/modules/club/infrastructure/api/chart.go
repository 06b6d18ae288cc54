package clubapi

import (
	"bytes"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	clubtypes "github.com/osusu-club/osusu-service/app/types/club"
)

var (
	chartBackground = drawing.ColorFromHex("1b1f23")
	chartText       = drawing.ColorFromHex("d8dee4")
	chartLine       = drawing.ColorFromHex("2d8a4e")
	chartDot        = drawing.ColorFromHex("d4a72c")
)

// RenderPoolChart produces a PNG line chart of the pool's growth, one point
// per accepted contribution in deposit order.
func RenderPoolChart(snap *clubtypes.ClubSnapshot) ([]byte, error) {
	points := contributionPoints(snap)

	// A time series needs a non-degenerate x range; with fewer than two
	// deposits there is nothing to plot yet.
	if len(points) < 2 {
		return renderNoDataPlaceholder()
	}

	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	running := float64(0)
	for i, p := range points {
		running += float64(snap.ContributionAmount)
		xValues[i] = p
		yValues[i] = running
	}

	mainSeries := chart.TimeSeries{
		Name:    "Pool",
		XValues: xValues,
		YValues: yValues,
		Style: chart.Style{
			StrokeColor: chartLine,
			StrokeWidth: 2,
			DotWidth:    4,
			DotColor:    chartDot,
		},
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		Background: chart.Style{
			FillColor: chartBackground,
		},
		Canvas: chart.Style{
			FillColor: chartBackground,
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style: chart.Style{
				FontColor: chartText,
			},
		},
		YAxis: chart.YAxis{
			Name: "Pool (minor units)",
			Style: chart.Style{
				FontColor: chartText,
			},
		},
		Series: []chart.Series{mainSeries},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// contributionPoints extracts deposit timestamps in chronological order.
func contributionPoints(snap *clubtypes.ClubSnapshot) []time.Time {
	var points []time.Time
	for _, m := range snap.Members {
		if m.ContributedAt != nil {
			points = append(points, *m.ContributedAt)
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Before(points[j]) })
	return points
}

func renderNoDataPlaceholder() ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "Not enough contributions to chart"
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: chartBackground,
		},
		Canvas: chart.Style{
			FillColor: chartBackground,
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(chartText)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
