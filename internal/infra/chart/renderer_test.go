package chart

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRendererProducesPNG(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }
	gen := prediction.NewGenerator(
		prediction.WithSource(prediction.NewSeededSource(1)),
		prediction.WithClock(now),
		prediction.WithLocation(time.UTC),
	)

	for _, mode := range []prediction.Mode{prediction.ModeTomorrow, prediction.ModeSevenDays} {
		series := gen.GenerateSeries(70, 4, 0.5, mode)
		img, err := NewRenderer().Render("Energy Forecast", prediction.MetricEnergy, mode, series)
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(img, pngMagic), "mode %s", mode)
	}
}

func TestRendererRejectsShortSeries(t *testing.T) {
	_, err := NewRenderer().Render("x", prediction.MetricHealth, prediction.ModeTomorrow, prediction.Series{{Value: 1}})
	require.Error(t, err)
}
