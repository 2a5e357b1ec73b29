package chart

import (
	"bytes"
	"errors"
	"strconv"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
)

const (
	defaultWidth  = 1200
	defaultHeight = 400
	smaPeriod     = 6
)

// Renderer draws forecast series as PNG line charts.
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer returns a renderer with the default canvas size.
func NewRenderer() *Renderer {
	return &Renderer{Width: defaultWidth, Height: defaultHeight}
}

// Render implements prediction.ChartRenderer.
func (r *Renderer) Render(title string, metric prediction.Metric, mode prediction.Mode, series prediction.Series) ([]byte, error) {
	if len(series) < 2 {
		return nil, errors.New("chart needs at least two points")
	}
	xs := make([]time.Time, len(series))
	ys := make([]float64, len(series))
	peak := 0
	for i, p := range series {
		xs[i] = p.Timestamp
		ys[i] = float64(p.Value)
		if p.Value > series[peak].Value {
			peak = i
		}
	}

	formatter := gochart.TimeHourValueFormatter
	if mode == prediction.ModeSevenDays {
		formatter = gochart.TimeDateValueFormatter
	}
	line := gochart.TimeSeries{
		Name: string(metric),
		Style: gochart.Style{
			StrokeColor: metricColor(metric),
			StrokeWidth: 2,
		},
		XValues: xs,
		YValues: ys,
	}

	graph := gochart.Chart{
		Title: title,
		TitleStyle: gochart.Style{
			FontSize: 16,
		},
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Width:  r.width(),
		Height: r.height(),
		XAxis: gochart.XAxis{
			Name: "Time",
			Style: gochart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			ValueFormatter: formatter,
		},
		YAxis: gochart.YAxis{
			Name: "Score",
			Style: gochart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			Range: &gochart.ContinuousRange{Min: 0, Max: 100},
			GridMajorStyle: gochart.Style{
				StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
				StrokeWidth: 1.0,
			},
		},
		Series: []gochart.Series{
			line,
			gochart.AnnotationSeries{
				Annotations: []gochart.Value2{{
					XValue: gochart.TimeToFloat64(xs[peak]),
					YValue: ys[peak],
					Label:  "peak " + strconv.Itoa(series[peak].Value),
				}},
			},
		},
	}
	if len(series) > smaPeriod*2 {
		graph.Series = append(graph.Series, gochart.SMASeries{
			Name: "Moving Avg",
			Style: gochart.Style{
				StrokeColor:     gochart.GetDefaultColor(5),
				StrokeWidth:     1,
				StrokeDashArray: []float64{5, 5},
			},
			InnerSeries: line,
			Period:      smaPeriod,
		})
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) width() int {
	if r.Width > 0 {
		return r.Width
	}
	return defaultWidth
}

func (r *Renderer) height() int {
	if r.Height > 0 {
		return r.Height
	}
	return defaultHeight
}

func metricColor(metric prediction.Metric) drawing.Color {
	for i, m := range prediction.Metrics {
		if m == metric {
			return gochart.GetDefaultColor(i)
		}
	}
	return drawing.ColorBlack
}

var _ prediction.ChartRenderer = (*Renderer)(nil)
