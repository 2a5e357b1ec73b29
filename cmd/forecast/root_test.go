package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
	"github.com/yanqian/twin-dashboard/internal/infra/spreadsheet"
)

func execute(t *testing.T, args ...string) (forecastOutput, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return forecastOutput{}, err
	}
	var got forecastOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	return got, nil
}

func TestForecastAllMetrics(t *testing.T) {
	got, err := execute(t, "--seed", "42")
	require.NoError(t, err)
	require.Equal(t, prediction.ModeTomorrow, got.Mode)
	require.Len(t, got.Series, len(prediction.Metrics))
	for _, metric := range prediction.Metrics {
		require.Len(t, got.Series[metric], 24)
	}
	require.NotEmpty(t, got.Insights)
}

func TestForecastSeedIsReproducible(t *testing.T) {
	first, err := execute(t, "--seed", "7", "--mode", "7days", "--metric", "stress")
	require.NoError(t, err)
	second, err := execute(t, "--seed", "7", "--mode", "7days", "--metric", "stress")
	require.NoError(t, err)
	require.Len(t, first.Series[prediction.MetricStress], 21)
	require.Equal(t, first.Series[prediction.MetricStress].Values(), second.Series[prediction.MetricStress].Values())
}

func TestForecastOverridesAndChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "energy.png")
	got, err := execute(t, "--seed", "3", "--metric", "energy", "--start", "50", "--volatility", "0", "--trend", "0", "--insights=false", "--chart", path)
	require.NoError(t, err)
	require.InDelta(t, 50, got.Series[prediction.MetricEnergy][0].Value, 1)
	require.Empty(t, got.Insights)

	img, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))
}

func TestForecastWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast.xlsx")
	got, err := execute(t, "--seed", "11", "--mode", "7days", "--xlsx", path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(spreadsheet.SheetSeries)
	require.NoError(t, err)
	require.Len(t, rows, 22)
	require.Equal(t, []string{"timestamp", "slot", "health", "energy", "cognitive", "stress"}, rows[0])
	require.Equal(t, strconv.Itoa(got.Series[prediction.MetricHealth][0].Value), rows[1][2])
}

func TestForecastRejectsBadFlags(t *testing.T) {
	for _, args := range [][]string{
		{"--mode", "yesterday"},
		{"--metric", "mood"},
		{"--behavior", "chaotic"},
		{"--chart", "out.png"},
		{"--metric", "health", "--start", "150"},
	} {
		_, err := execute(t, args...)
		require.Error(t, err, args)
	}
}

func TestSampleCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"sample", "--device", "ring-9", "--seed", "5"})
	require.NoError(t, cmd.Execute())

	var sample healthdata.Sample
	require.NoError(t, json.Unmarshal(out.Bytes(), &sample))
	require.Equal(t, "ring-9", sample.DeviceID)
	require.NoError(t, healthdata.Validate(sample))
}
