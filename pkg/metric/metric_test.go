package metric_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucentlabs/lens/pkg/dataset"
	"github.com/lucentlabs/lens/pkg/metric"
	"github.com/lucentlabs/lens/pkg/registry"
)

func mustDataset(t *testing.T, name, csv string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ReadCSV(name, strings.NewReader(csv))
	require.NoError(t, err)
	return ds
}

func TestCompute_Sum(t *testing.T) {
	t.Parallel()
	ds := mustDataset(t, registry.ProductSales, "Sales\n10\n20\n30\n")
	res := registry.Resolution{Field: "sales", Column: "Sales", OK: true}

	v, err := metric.Compute(ds, res, metric.AggSum)
	require.NoError(t, err)
	assert.Equal(t, 60.0, v)
}

func TestCompute_MeanSkipsUnparseableCells(t *testing.T) {
	t.Parallel()
	ds := mustDataset(t, registry.CustomerData, "Age,Segment\n30,a\n,b\n50,c\n")
	res := registry.Resolution{Field: "age", Column: "Age", OK: true}

	v, err := metric.Compute(ds, res, metric.AggMean)
	require.NoError(t, err)
	assert.Equal(t, 40.0, v)
}

func TestCompute_MeanOfZeroRowsFails(t *testing.T) {
	t.Parallel()
	ds := mustDataset(t, registry.CustomerData, "Age\n")
	// Header-only column infers as text; force the resolution against
	// a numeric column with no rows instead.
	ds.Columns[0].Kind = dataset.KindNumeric
	res := registry.Resolution{Field: "age", Column: "Age", OK: true}

	_, err := metric.Compute(ds, res, metric.AggMean)
	require.Error(t, err)
}

func TestCompute_UnresolvedShortCircuits(t *testing.T) {
	t.Parallel()
	// Rows are deliberately nil: touching row data would panic.
	ds := &dataset.Dataset{
		Name:    registry.ProductSales,
		Columns: []dataset.Column{{Name: "Sales", Kind: dataset.KindNumeric}},
	}

	_, err := metric.Compute(ds, registry.Resolution{Field: "revenue"}, metric.AggSum)
	require.Error(t, err)
}

func TestCompute_TypeMismatch(t *testing.T) {
	t.Parallel()
	ds := mustDataset(t, registry.ProductSales, "Product\nWidget\nGadget\n")
	res := registry.Resolution{Field: "product", Column: "Product", OK: true}

	_, err := metric.Compute(ds, res, metric.AggMean)
	require.ErrorIs(t, err, metric.ErrTypeMismatch)
}

func TestCompute_Max(t *testing.T) {
	t.Parallel()
	ds := mustDataset(t, registry.LeadScoringResults, "LeadScore\n54\n88.5\n72\n")
	res := registry.Resolution{Field: "lead_score", Column: "LeadScore", OK: true}

	v, err := metric.Compute(ds, res, metric.AggMax)
	require.NoError(t, err)
	assert.Equal(t, 88.5, v)
}

func TestCompute_DistinctCount(t *testing.T) {
	t.Parallel()
	ds := mustDataset(t, registry.GeographicData, "Region\nNorth\nSouth\nNorth\n\n")
	res := registry.Resolution{Field: "region", Column: "Region", OK: true}

	v, err := metric.Compute(ds, res, metric.AggDistinctCount)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}

func TestEvaluate_RowCountIgnoresResolution(t *testing.T) {
	t.Parallel()
	ds := mustDataset(t, registry.CustomerData, "Whatever\na\nb\nc\n")

	result := metric.Evaluate(ds, metric.Request{
		Label:   "Total Customers",
		Dataset: registry.CustomerData,
		Agg:     metric.AggRowCount,
		Format:  metric.FormatCount,
	})
	assert.True(t, result.Available)
	assert.Equal(t, 3.0, result.Value)
	assert.Equal(t, "3", result.Display)
}

func TestEvaluate_NilDatasetIsUnavailable(t *testing.T) {
	t.Parallel()
	result := metric.Evaluate(nil, metric.Request{
		Label:   "Total Revenue",
		Dataset: registry.ProductSales,
		Field:   registry.FieldRevenue,
		Agg:     metric.AggSum,
	})
	assert.False(t, result.Available)
	assert.Equal(t, "unavailable", result.Display)
	assert.NotEmpty(t, result.Reason)
}

func TestEvaluate_UnresolvedFieldIsUnavailable(t *testing.T) {
	t.Parallel()
	ds := mustDataset(t, registry.ProductSales, "Product,Quantity\nWidget,3\n")

	result := metric.Evaluate(ds, metric.Request{
		Label:   "Total Revenue",
		Dataset: registry.ProductSales,
		Field:   registry.FieldRevenue,
		Agg:     metric.AggSum,
		Format:  metric.FormatCurrency,
	})
	assert.False(t, result.Available)
	assert.Contains(t, result.Reason, "unresolved")
}

func TestEvaluate_ResolvesThroughAliases(t *testing.T) {
	t.Parallel()
	// Only the lowest-priority alias is present.
	ds := mustDataset(t, registry.ProductSales, "Product,Amount\nWidget,1000\nGadget,2500\n")

	result := metric.Evaluate(ds, metric.Request{
		Label:   "Total Revenue",
		Dataset: registry.ProductSales,
		Field:   registry.FieldRevenue,
		Agg:     metric.AggSum,
		Format:  metric.FormatCurrency,
	})
	assert.True(t, result.Available)
	assert.Equal(t, 3500.0, result.Value)
	assert.Equal(t, "$3,500", result.Display)
}

func TestFormat_Render(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "1,234,567", metric.FormatCount.Render(1234567))
	assert.Equal(t, "$55,000", metric.FormatCurrency.Render(55000.4))
	assert.Equal(t, "$-11", metric.FormatCurrency.Render(-10.6))
	assert.Equal(t, "-3", metric.FormatCount.Render(-3.4))
	assert.Equal(t, "12.34%", metric.FormatPercent.Render(12.337))
	assert.Equal(t, "41.5", metric.FormatDecimal1.Render(41.52))
	assert.Equal(t, "72.50", metric.FormatDecimal2.Render(72.5))
}

func TestResult_ZeroValueSurvivesJSON(t *testing.T) {
	t.Parallel()
	ds := mustDataset(t, registry.ProductSales, "Product,Sales\nWidget,10\nGadget,-10\n")

	result := metric.Evaluate(ds, metric.Request{
		Label:   "Total Revenue",
		Dataset: registry.ProductSales,
		Field:   registry.FieldRevenue,
		Agg:     metric.AggSum,
		Format:  metric.FormatCurrency,
	})
	require.True(t, result.Available)
	require.Equal(t, 0.0, result.Value)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"value":0`)
}
