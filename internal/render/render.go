// Package render draws evaluated panels as an HTML page of ECharts charts.
//
// It is a reference renderer: every chart reads only the derived tables and
// display options carried by a panel.Result. Treemaps are drawn as sunbursts
// since both show the same hierarchy and the sunburst series takes fractional
// values.
package render

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/rewired-gh/vgdash/internal/aggregate"
	"github.com/rewired-gh/vgdash/internal/dashboard"
	"github.com/rewired-gh/vgdash/internal/models"
	"github.com/rewired-gh/vgdash/internal/panel"
)

// PageTitle is the browser title of the rendered page.
const PageTitle = "Video Game Sales - Exploratory Dashboard"

const (
	chartWidth  = "1200px"
	chartHeight = "560px"
)

// Write renders page as a standalone HTML document.
func Write(w io.Writer, page *dashboard.Page) error {
	return Page(page).Render(w)
}

// Page lays out one chart per panel result, in order.
func Page(page *dashboard.Page) *components.Page {
	p := components.NewPage()
	p.PageTitle = PageTitle
	for _, res := range page.Panels {
		p.AddCharts(Chart(res))
	}
	return p
}

// Chart draws a single panel result.
func Chart(res *panel.Result) components.Charter {
	switch res.Panel.Kind {
	case panel.KindScatter:
		return scatter(res)
	case panel.KindBox:
		return boxPlot(res)
	case panel.KindTreemap, panel.KindSunburst:
		return sunburst(res)
	case panel.KindViolin:
		return violin(res)
	case panel.KindHeatmap:
		return heatmap(res)
	case panel.KindParallel:
		return parallel(res)
	case panel.KindArea:
		return area(res)
	case panel.KindShare:
		return share(res)
	case panel.KindFlow:
		return sankey(res)
	}
	return bar(res)
}

func globals(res *panel.Result) []charts.GlobalOpts {
	d := res.Panel
	subtitle := d.Description
	if len(res.Advisories) > 0 {
		subtitle = res.Advisories[0]
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: PageTitle,
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: d.Title, Subtitle: subtitle}),
	}
}

func axisType(log bool, fallback string) string {
	if log {
		return "log"
	}
	return fallback
}

// valueAxis returns the value axis honouring the log switch and the focused
// bound.
func valueAxis(res *panel.Result, name string, log bool) opts.YAxis {
	y := opts.YAxis{Name: name, Type: axisType(log, "value")}
	if res.YMax != nil {
		y.Max = *res.YMax
	}
	return y
}

func bar(res *panel.Result) *charts.Bar {
	b := charts.NewBar()
	b.SetGlobalOptions(globals(res)...)
	d := res.Panel

	var labels []string
	var data []opts.BarData
	switch {
	case res.Table != nil:
		for _, r := range res.Table.Rows {
			labels = append(labels, r.Key(0))
			data = append(data, opts.BarData{Value: r.Value})
		}
	case res.Records != nil:
		metric := d.Aggregation.Metric
		// Largest first from the top of a horizontal bar chart.
		for i := len(res.Records) - 1; i >= 0; i-- {
			r := res.Records[i]
			labels = append(labels, fmt.Sprintf("%s (%s)", r.Name, r.Platform))
			data = append(data, opts.BarData{Value: metric.Value(r)})
		}
		b.SetGlobalOptions(
			charts.WithXAxisOpts(opts.XAxis{Name: metric.Label(), Type: axisType(d.Options.LogX, "value")}),
		)
		b.SetXAxis(labels).AddSeries(metric.Label(), data)
		b.XYReversal()
		return b
	}

	b.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Name: d.Encoding.X}),
		charts.WithYAxisOpts(valueAxis(res, d.Encoding.Y, d.Options.LogY)),
	)
	b.SetXAxis(labels).AddSeries(d.Encoding.Y, data)
	return b
}

func scatter(res *panel.Result) *charts.Scatter {
	s := charts.NewScatter()
	s.SetGlobalOptions(globals(res)...)
	d := res.Panel
	agg := d.Aggregation

	xMetric, yMetric := models.MetricNASales, models.MetricEUSales
	if len(agg.Metrics) >= 2 {
		xMetric, yMetric = agg.Metrics[0], agg.Metrics[1]
	}
	category := models.DimGenre
	if len(agg.Dims) > 0 {
		category = agg.Dims[0]
	}

	s.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Name: xMetric.Label(), Type: axisType(d.Options.LogX, "value")}),
		charts.WithYAxisOpts(valueAxis(res, yMetric.Label(), d.Options.LogY)),
	)

	order, groups := groupRecords(res.Records, category)
	for _, cat := range order {
		data := make([]opts.ScatterData, 0, len(groups[cat]))
		for _, r := range groups[cat] {
			point := opts.ScatterData{
				Name:  fmt.Sprintf("%s (%s, %d)", r.Name, r.Platform, r.Year),
				Value: []interface{}{xMetric.Value(r), yMetric.Value(r)},
			}
			if d.Options.SizeByMetric {
				point.SymbolSize = symbolSize(agg.Metric.Value(r))
			}
			data = append(data, point)
		}
		s.AddSeries(cat, data)
	}

	if res.Trend != nil && len(res.Records) > 0 {
		xs := aggregate.Values(res.Records, xMetric)
		lo, hi := xs[0], xs[0]
		for _, x := range xs {
			lo, hi = min(lo, x), max(hi, x)
		}
		trend := charts.NewLine()
		trend.AddSeries("Trend", []opts.LineData{
			{Value: []interface{}{lo, res.Trend.At(lo)}},
			{Value: []interface{}{hi, res.Trend.At(hi)}},
		})
		s.Overlap(trend)
	}
	return s
}

// symbolSize maps sales (millions) to a marker size in pixels.
func symbolSize(v float64) int {
	size := 4 + int(v*2)
	if size > 40 {
		size = 40
	}
	return size
}

func groupRecords(rows []models.Record, dim models.Dimension) ([]string, map[string][]models.Record) {
	groups := make(map[string][]models.Record)
	var order []string
	for _, r := range rows {
		k := dim.Value(r)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}
	return order, groups
}

func boxPlot(res *panel.Result) *charts.BoxPlot {
	b := charts.NewBoxPlot()
	b.SetGlobalOptions(globals(res)...)
	d := res.Panel
	b.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Name: d.Encoding.X}),
		charts.WithYAxisOpts(valueAxis(res, d.Encoding.Y, d.Options.LogY)),
	)

	labels := make([]string, 0, len(res.Boxes))
	data := make([]opts.BoxPlotData, 0, len(res.Boxes))
	var outliers []opts.ScatterData
	for _, box := range res.Boxes {
		labels = append(labels, box.Category)
		data = append(data, opts.BoxPlotData{
			Name:  box.Category,
			Value: []float64{box.LowerWhisker, box.Q1, box.Median, box.Q3, box.UpperWhisker},
		})
		for _, o := range box.Outliers {
			outliers = append(outliers, opts.ScatterData{Value: []interface{}{box.Category, o}})
		}
	}
	b.SetXAxis(labels).AddSeries(d.Encoding.Y, data)

	if len(outliers) > 0 {
		points := charts.NewScatter()
		points.AddSeries("Outliers", outliers)
		b.Overlap(points)
	}
	return b
}

func violin(res *panel.Result) *charts.Line {
	l := charts.NewLine()
	l.SetGlobalOptions(globals(res)...)
	d := res.Panel

	x := opts.XAxis{Name: d.Encoding.Y, Type: axisType(d.Options.LogX, "value")}
	if res.YMax != nil {
		x.Max = *res.YMax
	}
	l.SetGlobalOptions(
		charts.WithXAxisOpts(x),
		charts.WithYAxisOpts(opts.YAxis{Name: "Density", Type: "value"}),
	)

	for _, curve := range res.Densities {
		data := make([]opts.LineData, len(curve.Xs))
		for i := range curve.Xs {
			data[i] = opts.LineData{Value: []interface{}{curve.Xs[i], curve.Ys[i]}}
		}
		l.AddSeries(fmt.Sprintf("%s (n=%d)", curve.Category, curve.N), data)
	}
	return l
}

func sunburst(res *panel.Result) *charts.Sunburst {
	s := charts.NewSunburst()
	s.SetGlobalOptions(globals(res)...)
	if res.Hierarchy == nil || res.Hierarchy.Root == nil {
		s.AddSeries(res.Panel.Title, []opts.SunBurstData{})
		return s
	}

	root := res.Hierarchy.Root
	top := []opts.SunBurstData{{
		Name:     root.Label,
		Value:    root.Value,
		Children: sunburstChildren(root.Children),
	}}
	s.AddSeries(res.Hierarchy.Describe(), top)
	return s
}

func sunburstChildren(nodes []*aggregate.Node) []*opts.SunBurstData {
	out := make([]*opts.SunBurstData, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &opts.SunBurstData{
			Name:     n.Label,
			Value:    n.Value,
			Children: sunburstChildren(n.Children),
		})
	}
	return out
}

func heatmap(res *panel.Result) *charts.HeatMap {
	h := charts.NewHeatMap()
	h.SetGlobalOptions(globals(res)...)
	if res.Matrix == nil {
		return h
	}

	labels := make([]string, len(res.Matrix.Metrics))
	for i, m := range res.Matrix.Metrics {
		labels[i] = m.Label()
	}
	h.SetGlobalOptions(
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: labels}),
		charts.WithVisualMapOpts(opts.VisualMap{Min: -1, Max: 1}),
	)

	var data []opts.HeatMapData
	for i, row := range res.Matrix.Values {
		for j, v := range row {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{i, j, round2(v)}})
		}
	}
	h.SetXAxis(labels).AddSeries("Correlation", data)
	return h
}

// round2 keeps two decimals for labels.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func parallel(res *panel.Result) *charts.Parallel {
	p := charts.NewParallel()
	p.SetGlobalOptions(globals(res)...)
	if res.Profile == nil {
		return p
	}

	axes := make([]opts.ParallelAxis, len(res.Profile.Metrics))
	for i, m := range res.Profile.Metrics {
		axes[i] = opts.ParallelAxis{Dim: i, Name: m.Label()}
	}
	p.SetGlobalOptions(charts.WithParallelAxisList(axes))

	for i, cat := range res.Profile.Categories {
		p.AddSeries(cat, []opts.ParallelData{{Name: cat, Value: res.Profile.Values[i]}})
	}
	return p
}

func area(res *panel.Result) *charts.Line {
	l := charts.NewLine()
	l.SetGlobalOptions(globals(res)...)
	d := res.Panel
	l.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Name: d.Encoding.X}),
		charts.WithYAxisOpts(valueAxis(res, d.Encoding.Y, d.Options.LogY)),
	)
	if res.Table == nil {
		return l
	}

	// Rows are sorted by series then x, with every combination present.
	var xs []string
	var order []string
	series := make(map[string][]opts.LineData)
	for _, r := range res.Table.Rows {
		name, x := r.Key(0), r.Key(1)
		if _, ok := series[name]; !ok {
			order = append(order, name)
		}
		if len(order) == 1 {
			xs = append(xs, x)
		}
		series[name] = append(series[name], opts.LineData{Value: r.Value})
	}

	l.SetXAxis(xs)
	for _, name := range order {
		l.AddSeries(name, series[name],
			charts.WithLineChartOpts(opts.LineChart{Stack: "total"}),
			charts.WithAreaStyleOpts(opts.AreaStyle{}),
		)
	}
	return l
}

func share(res *panel.Result) *charts.Bar {
	b := charts.NewBar()
	b.SetGlobalOptions(globals(res)...)
	d := res.Panel
	b.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Name: d.Encoding.X}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Share (%)", Type: "value", Max: 100}),
	)
	if res.Shares == nil {
		return b
	}

	periods := res.Shares.Periods()
	index := make(map[string]int, len(periods))
	for i, p := range periods {
		index[p] = i
	}

	var order []string
	series := make(map[string][]opts.BarData)
	for _, r := range res.Shares.Rows {
		if _, ok := series[r.Category]; !ok {
			order = append(order, r.Category)
			series[r.Category] = make([]opts.BarData, len(periods))
			for i := range series[r.Category] {
				series[r.Category][i] = opts.BarData{Value: 0}
			}
		}
		series[r.Category][index[r.Period]] = opts.BarData{Value: round2(r.Share)}
	}

	b.SetXAxis(periods)
	for _, name := range order {
		b.AddSeries(name, series[name], charts.WithBarChartOpts(opts.BarChart{Stack: "share"}))
	}
	return b
}

func sankey(res *panel.Result) *charts.Sankey {
	s := charts.NewSankey()
	s.SetGlobalOptions(globals(res)...)
	if res.Flow == nil {
		return s
	}

	nodes := make([]opts.SankeyNode, len(res.Flow.Nodes))
	for i, n := range res.Flow.Nodes {
		nodes[i] = opts.SankeyNode{Name: n.ID}
	}
	links := make([]opts.SankeyLink, len(res.Flow.Edges))
	for i, e := range res.Flow.Edges {
		links[i] = opts.SankeyLink{Source: e.Source, Target: e.Target, Value: float32(e.Weight)}
	}
	s.AddSeries(res.Panel.Title, nodes, links,
		charts.WithLabelOpts(opts.Label{Show: true, Formatter: opts.FuncOpts(sankeyLabel)}))
	return s
}

// sankeyLabel shows a node by its value. Node names stay "<stage>:<value>" so
// links can tell a genre from a platform of the same name.
const sankeyLabel = `function (p) { var i = p.name.indexOf(':'); return i < 0 ? p.name : p.name.slice(i + 1); }`
