// Package chart turns resolved columns and rows into declarative,
// rendering-technology-independent chart specs. A spec either carries
// fully bound data or is an explicit placeholder; the presentation
// shell never receives a half-bound chart.
package chart

import (
	"fmt"
	"sort"

	"github.com/lucentlabs/lens/pkg/dataset"
	"github.com/lucentlabs/lens/pkg/registry"
)

// Kind is the chart family.
type Kind string

const (
	KindBar       Kind = "bar"
	KindPie       Kind = "pie"
	KindHistogram Kind = "histogram"
	KindBox       Kind = "box"
	KindScatter   Kind = "scatter"
	KindFunnel    Kind = "funnel"
	KindHeatmap   Kind = "heatmap"
)

// GroupAgg is the per-category aggregation applied before plotting.
type GroupAgg string

const (
	GroupNone  GroupAgg = ""
	GroupSum   GroupAgg = "sum"
	GroupCount GroupAgg = "count"
)

// Orientation hints how bars are laid out.
type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// DefaultBins is the fixed histogram bin count.
const DefaultBins = 30

// Request declares one chart against a logical dataset. Field names
// are logical; binding happens at build time through the registry.
type Request struct {
	Kind    Kind
	Title   string
	Dataset string

	LabelField string // bar/pie/funnel category or stage
	ValueField string // bar/pie/funnel/histogram/box measure
	XField     string // scatter
	YField     string // scatter
	SizeField  string // scatter, optional

	GroupBy     GroupAgg
	TopN        int
	Bins        int
	SortAsc     bool
	Orientation Orientation
}

// Point is one labeled value in a bar, pie, or funnel series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ScatterPoint is one x/y sample with an optional size binding.
type ScatterPoint struct {
	X    float64  `json:"x"`
	Y    float64  `json:"y"`
	Size *float64 `json:"size,omitempty"`
}

// Spec is the declarative chart description handed to the
// presentation shell. Placeholder specs signal "insufficient data"
// and carry the cause in Reason.
type Spec struct {
	Kind        Kind        `json:"kind"`
	Title       string      `json:"title"`
	Placeholder bool        `json:"placeholder,omitempty"`
	Reason      string      `json:"reason,omitempty"`
	XLabel      string      `json:"xLabel,omitempty"`
	YLabel      string      `json:"yLabel,omitempty"`
	Orientation Orientation `json:"orientation,omitempty"`

	Points  []Point        `json:"points,omitempty"`
	Scatter []ScatterPoint `json:"scatter,omitempty"`
	Values  []float64      `json:"values,omitempty"`
	Bins    int            `json:"bins,omitempty"`

	Matrix     [][]float64 `json:"matrix,omitempty"`
	MatrixRows []string    `json:"matrixRows,omitempty"`
	MatrixCols []string    `json:"matrixCols,omitempty"`
}

// Build constructs the spec for one request. Any missing prerequisite
// degrades to a placeholder; Build never fails.
func Build(ds *dataset.Dataset, req Request) Spec {
	if ds == nil {
		return placeholder(req, "dataset not loaded")
	}

	switch req.Kind {
	case KindBar, KindPie, KindFunnel:
		return buildSeries(ds, req)
	case KindHistogram, KindBox:
		return buildDistribution(ds, req)
	case KindScatter:
		return buildScatter(ds, req)
	case KindHeatmap:
		return buildHeatmap(ds, req)
	default:
		return placeholder(req, fmt.Sprintf("unknown chart kind %q", req.Kind))
	}
}

// buildSeries handles labeled-value charts: bar, pie, and funnel.
// Funnel keeps source row order; group aggregation merges duplicate
// labels with missing measures contributing zero.
func buildSeries(ds *dataset.Dataset, req Request) Spec {
	label := registry.ResolveField(ds, req.Dataset, req.LabelField)
	if !label.OK {
		return placeholder(req, fmt.Sprintf("field %q unresolved", req.LabelField))
	}
	labelCol := ds.ColumnIndex(label.Column)

	var value registry.Resolution
	valueCol := -1
	if req.GroupBy != GroupCount {
		value = registry.ResolveField(ds, req.Dataset, req.ValueField)
		if !value.OK {
			return placeholder(req, fmt.Sprintf("field %q unresolved", req.ValueField))
		}
		valueCol = ds.ColumnIndex(value.Column)
	}

	var points []Point
	switch req.GroupBy {
	case GroupSum, GroupCount:
		points = groupRows(ds, labelCol, valueCol, req.GroupBy)
	default:
		for row := range ds.Rows {
			v, _ := ds.Float(row, valueCol) // missing measure plots as zero
			points = append(points, Point{Label: ds.Cell(row, labelCol), Value: v})
		}
	}

	if len(points) == 0 {
		return placeholder(req, "no rows")
	}

	if req.Kind != KindFunnel {
		if req.TopN > 0 {
			points = topN(points, req.TopN)
		}
		if req.SortAsc {
			sort.SliceStable(points, func(i, j int) bool { return points[i].Value < points[j].Value })
		}
	}

	spec := fromRequest(req)
	spec.XLabel = req.LabelField
	spec.YLabel = req.ValueField
	spec.Points = points
	return spec
}

func buildDistribution(ds *dataset.Dataset, req Request) Spec {
	res := registry.ResolveField(ds, req.Dataset, req.ValueField)
	if !res.OK {
		return placeholder(req, fmt.Sprintf("field %q unresolved", req.ValueField))
	}
	col := ds.ColumnIndex(res.Column)

	var values []float64
	for row := range ds.Rows {
		if v, ok := ds.Float(row, col); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return placeholder(req, fmt.Sprintf("column %q has no numeric values", res.Column))
	}

	spec := fromRequest(req)
	spec.XLabel = req.ValueField
	spec.Values = values
	if req.Kind == KindHistogram {
		spec.Bins = req.Bins
		if spec.Bins <= 0 {
			spec.Bins = DefaultBins
		}
	}
	return spec
}

func buildScatter(ds *dataset.Dataset, req Request) Spec {
	x := registry.ResolveField(ds, req.Dataset, req.XField)
	if !x.OK {
		return placeholder(req, fmt.Sprintf("field %q unresolved", req.XField))
	}
	y := registry.ResolveField(ds, req.Dataset, req.YField)
	if !y.OK {
		return placeholder(req, fmt.Sprintf("field %q unresolved", req.YField))
	}
	xCol := ds.ColumnIndex(x.Column)
	yCol := ds.ColumnIndex(y.Column)

	// Size is optional: unresolved means the binding is simply absent.
	sizeCol := -1
	if req.SizeField != "" {
		if size := registry.ResolveField(ds, req.Dataset, req.SizeField); size.OK {
			sizeCol = ds.ColumnIndex(size.Column)
		}
	}

	var points []ScatterPoint
	for row := range ds.Rows {
		xv, okX := ds.Float(row, xCol)
		yv, okY := ds.Float(row, yCol)
		if !okX || !okY {
			continue
		}
		p := ScatterPoint{X: xv, Y: yv}
		if sizeCol >= 0 {
			if sv, ok := ds.Float(row, sizeCol); ok {
				p.Size = &sv
			}
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return placeholder(req, "no plottable rows")
	}

	spec := fromRequest(req)
	spec.XLabel = req.XField
	spec.YLabel = req.YField
	spec.Scatter = points
	return spec
}

// buildHeatmap consumes the whole dataset as a numeric matrix; there
// is no column resolution step. A leading non-numeric column, if any,
// supplies row labels.
func buildHeatmap(ds *dataset.Dataset, req Request) Spec {
	labelCol := -1
	var cols []int
	var colNames []string
	for i, c := range ds.Columns {
		if c.Kind == dataset.KindNumeric {
			cols = append(cols, i)
			colNames = append(colNames, c.Name)
		} else if labelCol < 0 {
			labelCol = i
		}
	}
	if len(cols) == 0 || ds.RowCount() == 0 {
		return placeholder(req, "no numeric matrix content")
	}

	matrix := make([][]float64, ds.RowCount())
	rowNames := make([]string, ds.RowCount())
	for row := range ds.Rows {
		matrix[row] = make([]float64, len(cols))
		for j, col := range cols {
			v, _ := ds.Float(row, col)
			matrix[row][j] = v
		}
		if labelCol >= 0 {
			rowNames[row] = ds.Cell(row, labelCol)
		} else if row < len(colNames) {
			rowNames[row] = colNames[row]
		}
	}

	spec := fromRequest(req)
	spec.Matrix = matrix
	spec.MatrixRows = rowNames
	spec.MatrixCols = colNames
	return spec
}

// groupRows aggregates rows per category label. Duplicate labels
// merge into one group in first-seen order; for sums, rows with a
// missing measure contribute zero.
func groupRows(ds *dataset.Dataset, labelCol, valueCol int, agg GroupAgg) []Point {
	index := make(map[string]int)
	var points []Point
	for row := range ds.Rows {
		label := ds.Cell(row, labelCol)
		i, ok := index[label]
		if !ok {
			i = len(points)
			index[label] = i
			points = append(points, Point{Label: label})
		}
		switch agg {
		case GroupCount:
			points[i].Value++
		default:
			v, _ := ds.Float(row, valueCol)
			points[i].Value += v
		}
	}
	return points
}

// topN is a stable descending selection: ties keep original row
// order, and re-running on its own output is a no-op.
func topN(points []Point, n int) []Point {
	out := make([]Point, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if n < len(out) {
		out = out[:n]
	}
	return out
}

func fromRequest(req Request) Spec {
	return Spec{
		Kind:        req.Kind,
		Title:       req.Title,
		Orientation: req.Orientation,
	}
}

func placeholder(req Request, reason string) Spec {
	return Spec{
		Kind:        req.Kind,
		Title:       req.Title,
		Placeholder: true,
		Reason:      reason,
	}
}
