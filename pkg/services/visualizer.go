package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"

	"github.com/Sabare1/ecommerce-ai-agent/pkg/models"
)

// Visualizer inspects a result set's shape and produces an optional chart.
type Visualizer interface {
	// Render returns a base64-encoded PNG, or nil when the result is empty,
	// no chart rule matches, or rendering fails. It never returns an error:
	// visualization is best effort and must not fail the pipeline.
	Render(rows *models.ResultSet) *string
}

// chartRule pairs a shape predicate with a renderer. Rules are evaluated in
// order; the first match wins. Adding a chart type is an append.
type chartRule struct {
	name    string
	matches func(rows *models.ResultSet) bool
	render  func(rows *models.ResultSet) ([]byte, error)
}

type visualizer struct {
	rules  []chartRule
	logger *zap.Logger
}

// NewVisualizer creates a visualizer with the built-in chart rules:
// total_sales over date, ad_sales over date, and ROAS by item.
func NewVisualizer(logger *zap.Logger) Visualizer {
	v := &visualizer{logger: logger.Named("visualizer")}
	v.rules = []chartRule{
		{
			name:    "sales trend",
			matches: func(r *models.ResultSet) bool { return r.HasColumn("date") && r.HasColumn("total_sales") },
			render:  func(r *models.ResultSet) ([]byte, error) { return renderTimeSeries(r, "total_sales", "Sales Trend") },
		},
		{
			name:    "ad performance",
			matches: func(r *models.ResultSet) bool { return r.HasColumn("date") && r.HasColumn("ad_sales") },
			render:  func(r *models.ResultSet) ([]byte, error) { return renderTimeSeries(r, "ad_sales", "Ad Performance") },
		},
		{
			name: "return on ad spend",
			matches: func(r *models.ResultSet) bool {
				return r.HasColumn("item_id") && r.HasColumn("ad_sales") && r.HasColumn("ad_spend")
			},
			render: renderROAS,
		},
	}
	return v
}

var _ Visualizer = (*visualizer)(nil)

func (v *visualizer) Render(rows *models.ResultSet) (encoded *string) {
	if rows.Empty() {
		return nil
	}

	// A malformed result must degrade to "no chart", not take down the run.
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("visualization panicked", zap.Any("panic", r))
			encoded = nil
		}
	}()

	for _, rule := range v.rules {
		if !rule.matches(rows) {
			continue
		}
		png, err := rule.render(rows)
		if err != nil {
			v.logger.Warn("visualization failed",
				zap.String("rule", rule.name),
				zap.Error(err))
			return nil
		}
		v.logger.Debug("rendered chart",
			zap.String("rule", rule.name),
			zap.Int("bytes", len(png)))
		s := base64.StdEncoding.EncodeToString(png)
		return &s
	}

	return nil
}

// renderTimeSeries plots valueCol over the date column as a line chart,
// sorted ascending by date. Rows with unparseable dates or missing values
// are skipped. A single plottable point cannot make a line; it renders as
// one labeled bar instead so a one-row result still gets a chart.
func renderTimeSeries(rows *models.ResultSet, valueCol, title string) ([]byte, error) {
	type point struct {
		t time.Time
		v float64
	}
	var points []point
	for _, row := range rows.Rows {
		t, ok := parseDate(row["date"])
		if !ok {
			continue
		}
		v, ok := asFloat(row[valueCol])
		if !ok {
			continue
		}
		points = append(points, point{t: t, v: v})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no plottable points")
	}
	if len(points) == 1 {
		return renderSinglePoint(points[0].t, points[0].v, title)
	}

	sort.Slice(points, func(i, j int) bool { return points[i].t.Before(points[j].t) })

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.t
		ys[i] = p.v
	}

	graph := chart.Chart{
		Title:  title,
		Width:  800,
		Height: 400,
		XAxis:  chart.XAxis{ValueFormatter: chart.TimeDateValueFormatter},
		Series: []chart.Series{
			chart.TimeSeries{Name: valueCol, XValues: xs, YValues: ys},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderSinglePoint draws one date/value pair as a single labeled bar. The
// axis range is pinned explicitly; a lone value gives the chart no spread to
// infer one from.
func renderSinglePoint(when time.Time, value float64, title string) ([]byte, error) {
	max := value * 1.1
	if max <= 0 {
		max = 1
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    800,
		Height:   400,
		BarWidth: 60,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: max},
		},
		Bars: []chart.Value{{Label: when.Format("2006-01-02"), Value: value}},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderROAS renders ad_sales/ad_spend per item as a bar chart. A zero
// ad_spend makes the ratio non-finite; those rows are omitted rather than
// plotted.
func renderROAS(rows *models.ResultSet) ([]byte, error) {
	var bars []chart.Value
	for _, row := range rows.Rows {
		sales, ok := asFloat(row["ad_sales"])
		if !ok {
			continue
		}
		spend, ok := asFloat(row["ad_spend"])
		if !ok {
			continue
		}
		ratio := sales / spend
		if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
			continue
		}
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%v", row["item_id"]),
			Value: ratio,
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no plottable bars")
	}

	graph := chart.BarChart{
		Title:    "Return on Ad Spend",
		Width:    800,
		Height:   400,
		BarWidth: 40,
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

func parseDate(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func asFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
