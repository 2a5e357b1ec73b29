// Package spreadsheet exports forecasts as .xlsx workbooks.
package spreadsheet

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
)

// Sheet names, in workbook order.
const (
	SheetSeries   = "Series"
	SheetTrends   = "Trends"
	SheetInsights = "Insights"
)

// WriteForecast writes one workbook with a Series, Trends and Insights sheet.
// Series rows follow the point order; metrics absent from the forecast get no column.
func WriteForecast(w io.Writer, forecast prediction.Forecast) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSeries); err != nil {
		return err
	}
	for _, name := range []string{SheetTrends, SheetInsights} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	metrics := presentMetrics(forecast)
	if err := writeSeries(f, forecast, metrics); err != nil {
		return fmt.Errorf("series sheet: %w", err)
	}
	if err := writeTrends(f, forecast, metrics); err != nil {
		return fmt.Errorf("trends sheet: %w", err)
	}
	if err := writeInsights(f, forecast.Insights); err != nil {
		return fmt.Errorf("insights sheet: %w", err)
	}
	f.SetActiveSheet(0)
	_, err := f.WriteTo(w)
	return err
}

func presentMetrics(forecast prediction.Forecast) []prediction.Metric {
	out := make([]prediction.Metric, 0, len(prediction.Metrics))
	for _, metric := range prediction.Metrics {
		if _, ok := forecast.Series[metric]; ok {
			out = append(out, metric)
		}
	}
	return out
}

func writeSeries(f *excelize.File, forecast prediction.Forecast, metrics []prediction.Metric) error {
	header := []any{"timestamp", "slot"}
	for _, metric := range metrics {
		header = append(header, string(metric))
	}
	if err := f.SetSheetRow(SheetSeries, "A1", &header); err != nil {
		return err
	}
	if len(metrics) == 0 {
		return nil
	}
	points := len(forecast.Series[metrics[0]])
	for i := 0; i < points; i++ {
		first := forecast.Series[metrics[0]][i]
		row := []any{first.Timestamp.Format("2006-01-02 15:04"), slot(first)}
		for _, metric := range metrics {
			series := forecast.Series[metric]
			if i < len(series) {
				row = append(row, series[i].Value)
			} else {
				row = append(row, nil)
			}
		}
		if err := setRow(f, SheetSeries, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeTrends(f *excelize.File, forecast prediction.Forecast, metrics []prediction.Metric) error {
	if err := setRow(f, SheetTrends, 1, []any{"metric", "start", "end", "difference", "rising", "favorable"}); err != nil {
		return err
	}
	for i, metric := range metrics {
		t := forecast.Trends[metric]
		if err := setRow(f, SheetTrends, i+2, []any{string(metric), t.Start, t.End, t.Difference, t.Rising, t.Favorable}); err != nil {
			return err
		}
	}
	return nil
}

func writeInsights(f *excelize.File, insights []prediction.Insight) error {
	if err := setRow(f, SheetInsights, 1, []any{"title", "severity", "description"}); err != nil {
		return err
	}
	for i, insight := range insights {
		if err := setRow(f, SheetInsights, i+2, []any{insight.Title, string(insight.Severity), insight.Description}); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// slot is the period name for 7-day points and H:00 for hourly ones.
func slot(p prediction.SamplePoint) string {
	if p.Period != "" {
		return string(p.Period)
	}
	return strconv.Itoa(p.Hour()) + ":00"
}
