package view_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucentlabs/lens/pkg/dataset"
	"github.com/lucentlabs/lens/pkg/logger"
	"github.com/lucentlabs/lens/pkg/metric"
	"github.com/lucentlabs/lens/pkg/registry"
	"github.com/lucentlabs/lens/pkg/view"
)

var fixtures = map[string]string{
	"campaign_performance.csv": "CampaignName,Budget,Conversions,ROI\nSpring,1000,50,12.5\nSummer,2000,80,9.0\n",
	"channel_attribution.csv":  "Channel,Conversions,Revenue\nEmail,40,5000\nSocial,25,3200\n",
	"correlation_matrix.csv":   "Feature,Age,Income\nAge,1.0,0.4\nIncome,0.4,1.0\n",
	"customer_data.csv":        "Age,Income\n34,55000\n41,72000\n29,48000\n",
	"customer_journey.csv":     "CustomerID,Touchpoint\n1,Ad\n2,Search\n",
	"feature_importance.csv":   "Feature,Importance\nIncome,0.8\nAge,0.5\n",
	"funnel_data.csv":          "Stage,Count,ConversionRate,Conversions\nVisit,1000,100,500\nSignup,400,40,160\nPurchase,100,10,10\n",
	"geographic_data.csv":      "Region,Country\nNorth,USA\nSouth,Mexico\nNorth,Canada\n",
	"lead_scoring_results.csv": "LeadScore\n72.5\n88.1\n54.0\n",
	"learning_curve.csv":       "TrainSize,Score\n100,0.6\n200,0.7\n",
	"product_sales.csv":        "Product,Category,Sales,Quantity\nWidget,Hardware,900,30\nGadget,Hardware,1200,12\nApp,Software,400,80\n",
}

func loadSnapshot(t *testing.T, skip ...string) *dataset.Snapshot {
	t.Helper()
	skipped := make(map[string]bool)
	for _, s := range skip {
		skipped[s] = true
	}
	files := make(map[string]string)
	for name, content := range fixtures {
		if skipped[name] {
			continue
		}
		files[name] = content
	}
	return loadSnapshotFrom(t, files)
}

func loadSnapshotFrom(t *testing.T, files map[string]string) *dataset.Snapshot {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	l, err := dataset.NewLoader(dataset.Config{
		Logger: logger.NewWithWriter(os.Stderr, false),
		Clock:  clockwork.NewFakeClock(),
	})
	require.NoError(t, err)
	snap, err := l.LoadAll(context.Background(), registry.Sources(dir))
	require.NoError(t, err)
	return snap
}

func newRenderer(t *testing.T) *view.Renderer {
	t.Helper()
	r, err := view.NewRenderer(view.RendererConfig{
		Logger: logger.NewWithWriter(os.Stderr, false),
		Clock:  clockwork.NewFakeClock(),
	})
	require.NoError(t, err)
	return r
}

func TestRender_Overview(t *testing.T) {
	t.Parallel()
	snap := loadSnapshot(t)
	r := newRenderer(t)

	result, err := r.Render(view.Overview, snap)
	require.NoError(t, err)
	assert.Equal(t, view.Overview, result.View)
	require.Len(t, result.Metrics, 6)

	byLabel := make(map[string]string)
	for _, m := range result.Metrics {
		require.True(t, m.Available, "metric %s: %s", m.Label, m.Reason)
		byLabel[m.Label] = m.Display
	}
	assert.Equal(t, "3", byLabel["Total Customers"])
	assert.Equal(t, "$2,500", byLabel["Total Revenue"])
	assert.Equal(t, "2", byLabel["Total Campaigns"])
	assert.Equal(t, "50.00%", byLabel["Avg Conversion Rate"])
	assert.Equal(t, "670", byLabel["Total Conversions"])

	require.Len(t, result.Charts, 2)
	for _, c := range result.Charts {
		assert.False(t, c.Placeholder, "chart %s: %s", c.Title, c.Reason)
	}
	require.Len(t, result.Previews, 2)
	assert.True(t, result.Previews[0].Available)
}

func TestRender_OverviewConversionsKPIWithoutRateColumn(t *testing.T) {
	t.Parallel()
	files := make(map[string]string)
	for name, content := range fixtures {
		files[name] = content
	}
	files["funnel_data.csv"] = "Stage,Count,Conversions\nVisit,1000,500\nSignup,400,160\nPurchase,100,10\n"
	snap := loadSnapshotFrom(t, files)
	r := newRenderer(t)

	result, err := r.Render(view.Overview, snap)
	require.NoError(t, err)

	byLabel := make(map[string]metric.Result)
	for _, m := range result.Metrics {
		byLabel[m.Label] = m
	}
	rate, ok := byLabel["Avg Conversion Rate"]
	require.True(t, ok)
	assert.False(t, rate.Available)
	assert.Contains(t, rate.Reason, "unresolved")

	total, ok := byLabel["Total Conversions"]
	require.True(t, ok)
	assert.True(t, total.Available, "reason: %s", total.Reason)
	assert.Equal(t, "670", total.Display)
}

func TestRender_EveryDeclaredViewSucceeds(t *testing.T) {
	t.Parallel()
	snap := loadSnapshot(t)
	r := newRenderer(t)

	for _, d := range view.Definitions() {
		result, err := r.Render(d.ID, snap)
		require.NoError(t, err, "view %s", d.ID)
		assert.Equal(t, d.ID, result.View)
	}
}

func TestRender_UnknownViewFails(t *testing.T) {
	t.Parallel()
	snap := loadSnapshot(t)
	r := newRenderer(t)

	_, err := r.Render("quarterly-forecast", snap)
	assert.ErrorIs(t, err, view.ErrViewNotFound)
}

func TestRender_MissingDatasetDegradesView(t *testing.T) {
	t.Parallel()
	snap := loadSnapshot(t, "product_sales.csv")
	r := newRenderer(t)

	result, err := r.Render(view.ProductSales, snap)
	require.NoError(t, err)

	for _, m := range result.Metrics {
		assert.False(t, m.Available, "metric %s should degrade", m.Label)
		assert.Equal(t, "unavailable", m.Display)
	}
	for _, c := range result.Charts {
		assert.True(t, c.Placeholder, "chart %s should be a placeholder", c.Title)
	}
	require.Len(t, result.Previews, 1)
	assert.False(t, result.Previews[0].Available)
}

func TestRender_CachesByFingerprint(t *testing.T) {
	t.Parallel()
	snap := loadSnapshot(t)
	r := newRenderer(t)

	first, err := r.Render(view.LeadScoring, snap)
	require.NoError(t, err)
	second, err := r.Render(view.LeadScoring, snap)
	require.NoError(t, err)
	assert.Same(t, first, second, "same snapshot should hit the render cache")

	r.Invalidate()
	third, err := r.Render(view.LeadScoring, snap)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestRender_FunnelChartFollowsSourceOrder(t *testing.T) {
	t.Parallel()
	snap := loadSnapshot(t)
	r := newRenderer(t)

	result, err := r.Render(view.CustomerJourney, snap)
	require.NoError(t, err)
	require.Len(t, result.Charts, 1)
	funnel := result.Charts[0]
	require.False(t, funnel.Placeholder, funnel.Reason)
	require.Len(t, funnel.Points, 3)
	assert.Equal(t, "Visit", funnel.Points[0].Label)
	assert.Equal(t, "Purchase", funnel.Points[2].Label)
}
