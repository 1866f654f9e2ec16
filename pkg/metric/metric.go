// Package metric computes KPI aggregates over resolved columns,
// degrading to "unavailable" instead of failing when a column is
// missing, empty, or of an incompatible kind.
package metric

import (
	"errors"
	"fmt"

	"github.com/lucentlabs/lens/pkg/dataset"
	"github.com/lucentlabs/lens/pkg/registry"
)

// ErrTypeMismatch means the requested aggregation is incompatible
// with the column's value kind, e.g. mean of a text column. Callers
// convert it to an unavailable Result; it never propagates.
var ErrTypeMismatch = errors.New("aggregation type mismatch")

// Agg is an aggregation kind.
type Agg string

const (
	AggSum           Agg = "sum"
	AggMean          Agg = "mean"
	AggMax           Agg = "max"
	AggRowCount      Agg = "row_count"
	AggDistinctCount Agg = "distinct_count"
)

// Request asks for one KPI: an aggregation of a logical field on a
// logical dataset, with a display format.
type Request struct {
	Label   string
	Dataset string
	Field   string // ignored for AggRowCount
	Agg     Agg
	Format  Format
}

// Result is a computed KPI. Unavailable results keep the cause in
// Reason for diagnostic display.
type Result struct {
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Display   string  `json:"display"`
	Available bool    `json:"available"`
	Reason    string  `json:"reason,omitempty"`
}

// Evaluate computes one metric request against the dataset, binding
// the logical field through the registry. It never returns an error:
// every failure mode degrades to an unavailable Result.
func Evaluate(ds *dataset.Dataset, req Request) Result {
	if ds == nil {
		return unavailable(req, "dataset not loaded")
	}

	// Row count is independent of column resolution.
	if req.Agg == AggRowCount {
		return available(req, float64(ds.RowCount()))
	}

	res := registry.ResolveField(ds, req.Dataset, req.Field)
	if !res.OK {
		return unavailable(req, fmt.Sprintf("field %q unresolved", req.Field))
	}

	v, err := Compute(ds, res, req.Agg)
	if err != nil {
		return unavailable(req, err.Error())
	}
	return available(req, v)
}

// Compute aggregates the resolved column. An unresolved Resolution
// short-circuits without reading any row data. Unparseable numeric
// cells are skipped for sum/max and excluded from mean's denominator;
// mean and max over zero usable values fail rather than yield NaN.
func Compute(ds *dataset.Dataset, res registry.Resolution, agg Agg) (float64, error) {
	if agg == AggRowCount {
		return float64(ds.RowCount()), nil
	}

	if !res.OK {
		return 0, fmt.Errorf("field %q unresolved", res.Field)
	}
	col := ds.ColumnIndex(res.Column)
	if col < 0 {
		return 0, fmt.Errorf("resolved column %q vanished", res.Column)
	}

	switch agg {
	case AggDistinctCount:
		distinct := make(map[string]struct{})
		for row := range ds.Rows {
			if v := ds.Cell(row, col); v != "" {
				distinct[v] = struct{}{}
			}
		}
		return float64(len(distinct)), nil

	case AggSum, AggMean, AggMax:
		if ds.ColumnKind(col) != dataset.KindNumeric {
			return 0, fmt.Errorf("%w: %s of %s column %q", ErrTypeMismatch, agg, ds.ColumnKind(col), res.Column)
		}
		sum := 0.0
		max := 0.0
		n := 0
		for row := range ds.Rows {
			v, ok := ds.Float(row, col)
			if !ok {
				continue
			}
			sum += v
			if n == 0 || v > max {
				max = v
			}
			n++
		}
		switch agg {
		case AggSum:
			return sum, nil
		case AggMean:
			if n == 0 {
				return 0, fmt.Errorf("mean of column %q: no usable values", res.Column)
			}
			return sum / float64(n), nil
		default: // AggMax
			if n == 0 {
				return 0, fmt.Errorf("max of column %q: no usable values", res.Column)
			}
			return max, nil
		}

	default:
		return 0, fmt.Errorf("unknown aggregation %q", agg)
	}
}

func available(req Request, v float64) Result {
	return Result{
		Label:     req.Label,
		Value:     v,
		Display:   req.Format.Render(v),
		Available: true,
	}
}

func unavailable(req Request, reason string) Result {
	return Result{
		Label:   req.Label,
		Display: "unavailable",
		Reason:  reason,
	}
}
