// Package view maps the fixed set of analysis views to the ordered
// metric, chart, and preview requests that define them, and renders
// them as a pure pipeline over loaded datasets.
package view

import (
	"errors"

	"github.com/lucentlabs/lens/pkg/chart"
	"github.com/lucentlabs/lens/pkg/metric"
	"github.com/lucentlabs/lens/pkg/registry"
)

// ErrViewNotFound means the requested id is outside the view
// enumeration. This is a caller error, not a degradation case.
var ErrViewNotFound = errors.New("view not found")

// View identifiers. The enumeration is closed.
const (
	Overview            = "overview"
	CustomerAnalysis    = "customer-analysis"
	CampaignPerformance = "campaign-performance"
	ChannelAttribution  = "channel-attribution"
	ProductSales        = "product-sales"
	GeographicAnalysis  = "geographic-analysis"
	CustomerJourney     = "customer-journey"
	LeadScoring         = "lead-scoring"
	FeatureImportance   = "feature-importance"
	CorrelationAnalysis = "correlation-analysis"
)

// Preview asks for a raw row sample of a dataset for tabular display.
type Preview struct {
	Dataset string
	Limit   int
}

// Definition is one view: its prerequisite datasets and the ordered
// requests that produce its KPI cards, charts, and tables. Static —
// built once at init and never mutated.
type Definition struct {
	ID       string
	Title    string
	Datasets []string
	Metrics  []metric.Request
	Charts   []chart.Request
	Previews []Preview
}

var definitions = []Definition{
	{
		ID:    Overview,
		Title: "Executive Summary",
		Datasets: []string{
			registry.CustomerData, registry.ProductSales, registry.CampaignPerformance,
			registry.FunnelData, registry.LeadScoringResults, registry.GeographicData,
		},
		Metrics: []metric.Request{
			{Label: "Total Customers", Dataset: registry.CustomerData, Agg: metric.AggRowCount, Format: metric.FormatCount},
			{Label: "Total Revenue", Dataset: registry.ProductSales, Field: registry.FieldRevenue, Agg: metric.AggSum, Format: metric.FormatCurrency},
			{Label: "Total Campaigns", Dataset: registry.CampaignPerformance, Agg: metric.AggRowCount, Format: metric.FormatCount},
			{Label: "Avg Conversion Rate", Dataset: registry.FunnelData, Field: registry.FieldConversionRate, Agg: metric.AggMean, Format: metric.FormatPercent},
			{Label: "Total Conversions", Dataset: registry.FunnelData, Field: registry.FieldConversions, Agg: metric.AggSum, Format: metric.FormatCount},
			{Label: "Avg Lead Score", Dataset: registry.LeadScoringResults, Field: registry.FieldLeadScore, Agg: metric.AggMean, Format: metric.FormatDecimal2},
		},
		Charts: []chart.Request{
			{Kind: chart.KindBar, Title: "Product Sales Distribution", Dataset: registry.ProductSales,
				LabelField: registry.FieldProduct, ValueField: registry.FieldSales, TopN: 10},
			{Kind: chart.KindPie, Title: "Geographic Distribution", Dataset: registry.GeographicData,
				LabelField: registry.FieldRegion, GroupBy: chart.GroupCount},
		},
		Previews: []Preview{
			{Dataset: registry.CampaignPerformance, Limit: 10},
			{Dataset: registry.CustomerData, Limit: 10},
		},
	},
	{
		ID:       CustomerAnalysis,
		Title:    "Customer Analysis",
		Datasets: []string{registry.CustomerData},
		Metrics: []metric.Request{
			{Label: "Total Customers", Dataset: registry.CustomerData, Agg: metric.AggRowCount, Format: metric.FormatCount},
			{Label: "Average Age", Dataset: registry.CustomerData, Field: registry.FieldAge, Agg: metric.AggMean, Format: metric.FormatDecimal1},
			{Label: "Avg Income", Dataset: registry.CustomerData, Field: registry.FieldIncome, Agg: metric.AggMean, Format: metric.FormatCurrency},
		},
		Charts: []chart.Request{
			{Kind: chart.KindHistogram, Title: "Age Distribution", Dataset: registry.CustomerData,
				ValueField: registry.FieldAge, Bins: chart.DefaultBins},
			{Kind: chart.KindBox, Title: "Income Distribution", Dataset: registry.CustomerData,
				ValueField: registry.FieldIncome},
		},
		Previews: []Preview{{Dataset: registry.CustomerData, Limit: 50}},
	},
	{
		ID:       CampaignPerformance,
		Title:    "Campaign Performance Analysis",
		Datasets: []string{registry.CampaignPerformance},
		Metrics: []metric.Request{
			{Label: "Total Campaigns", Dataset: registry.CampaignPerformance, Agg: metric.AggRowCount, Format: metric.FormatCount},
			{Label: "Total Budget", Dataset: registry.CampaignPerformance, Field: registry.FieldBudget, Agg: metric.AggSum, Format: metric.FormatCurrency},
			{Label: "Total Conversions", Dataset: registry.CampaignPerformance, Field: registry.FieldConversions, Agg: metric.AggSum, Format: metric.FormatCount},
			{Label: "Average ROI", Dataset: registry.CampaignPerformance, Field: registry.FieldROI, Agg: metric.AggMean, Format: metric.FormatPercent},
		},
		Charts: []chart.Request{
			{Kind: chart.KindBar, Title: "Conversions by Campaign", Dataset: registry.CampaignPerformance,
				LabelField: registry.FieldCampaign, ValueField: registry.FieldConversions},
			{Kind: chart.KindScatter, Title: "Budget vs ROI", Dataset: registry.CampaignPerformance,
				XField: registry.FieldBudget, YField: registry.FieldROI, SizeField: registry.FieldConversions},
		},
		Previews: []Preview{{Dataset: registry.CampaignPerformance, Limit: 50}},
	},
	{
		ID:       ChannelAttribution,
		Title:    "Channel Attribution Analysis",
		Datasets: []string{registry.ChannelAttribution},
		Metrics: []metric.Request{
			{Label: "Channels", Dataset: registry.ChannelAttribution, Field: registry.FieldChannel, Agg: metric.AggDistinctCount, Format: metric.FormatCount},
			{Label: "Total Conversions", Dataset: registry.ChannelAttribution, Field: registry.FieldConversions, Agg: metric.AggSum, Format: metric.FormatCount},
			{Label: "Total Revenue", Dataset: registry.ChannelAttribution, Field: registry.FieldRevenue, Agg: metric.AggSum, Format: metric.FormatCurrency},
		},
		Charts: []chart.Request{
			{Kind: chart.KindBar, Title: "Conversions by Channel", Dataset: registry.ChannelAttribution,
				LabelField: registry.FieldChannel, ValueField: registry.FieldConversions, GroupBy: chart.GroupSum},
			{Kind: chart.KindPie, Title: "Revenue by Channel", Dataset: registry.ChannelAttribution,
				LabelField: registry.FieldChannel, ValueField: registry.FieldRevenue, GroupBy: chart.GroupSum},
		},
		Previews: []Preview{{Dataset: registry.ChannelAttribution, Limit: 50}},
	},
	{
		ID:       ProductSales,
		Title:    "Product Sales Analysis",
		Datasets: []string{registry.ProductSales},
		Metrics: []metric.Request{
			{Label: "Total Products", Dataset: registry.ProductSales, Agg: metric.AggRowCount, Format: metric.FormatCount},
			{Label: "Total Sales", Dataset: registry.ProductSales, Field: registry.FieldSales, Agg: metric.AggSum, Format: metric.FormatCurrency},
			{Label: "Total Units Sold", Dataset: registry.ProductSales, Field: registry.FieldQuantity, Agg: metric.AggSum, Format: metric.FormatCount},
		},
		Charts: []chart.Request{
			{Kind: chart.KindBar, Title: "Top 10 Products by Sales", Dataset: registry.ProductSales,
				LabelField: registry.FieldProduct, ValueField: registry.FieldSales, TopN: 10},
			{Kind: chart.KindPie, Title: "Sales by Category", Dataset: registry.ProductSales,
				LabelField: registry.FieldCategory, ValueField: registry.FieldSales, GroupBy: chart.GroupSum},
		},
		Previews: []Preview{{Dataset: registry.ProductSales, Limit: 50}},
	},
	{
		ID:       GeographicAnalysis,
		Title:    "Geographic Analysis",
		Datasets: []string{registry.GeographicData},
		Metrics: []metric.Request{
			{Label: "Regions", Dataset: registry.GeographicData, Field: registry.FieldRegion, Agg: metric.AggDistinctCount, Format: metric.FormatCount},
			{Label: "Countries", Dataset: registry.GeographicData, Field: registry.FieldCountry, Agg: metric.AggDistinctCount, Format: metric.FormatCount},
		},
		Charts: []chart.Request{
			{Kind: chart.KindBar, Title: "Distribution by Region", Dataset: registry.GeographicData,
				LabelField: registry.FieldRegion, GroupBy: chart.GroupCount},
			{Kind: chart.KindPie, Title: "Distribution by Country", Dataset: registry.GeographicData,
				LabelField: registry.FieldCountry, GroupBy: chart.GroupCount, TopN: 10},
		},
		Previews: []Preview{{Dataset: registry.GeographicData, Limit: 50}},
	},
	{
		ID:       CustomerJourney,
		Title:    "Customer Journey Analysis",
		Datasets: []string{registry.FunnelData, registry.CustomerJourney},
		Metrics: []metric.Request{
			{Label: "Funnel Stages", Dataset: registry.FunnelData, Agg: metric.AggRowCount, Format: metric.FormatCount},
			{Label: "Journey Events", Dataset: registry.CustomerJourney, Agg: metric.AggRowCount, Format: metric.FormatCount},
		},
		Charts: []chart.Request{
			{Kind: chart.KindFunnel, Title: "Conversion Funnel", Dataset: registry.FunnelData,
				LabelField: registry.FieldStage, ValueField: registry.FieldStageCount},
		},
		Previews: []Preview{
			{Dataset: registry.FunnelData, Limit: 20},
			{Dataset: registry.CustomerJourney, Limit: 20},
		},
	},
	{
		ID:       LeadScoring,
		Title:    "Lead Scoring Analysis",
		Datasets: []string{registry.LeadScoringResults},
		Metrics: []metric.Request{
			{Label: "Average Lead Score", Dataset: registry.LeadScoringResults, Field: registry.FieldLeadScore, Agg: metric.AggMean, Format: metric.FormatDecimal2},
			{Label: "Max Lead Score", Dataset: registry.LeadScoringResults, Field: registry.FieldLeadScore, Agg: metric.AggMax, Format: metric.FormatDecimal2},
			{Label: "Total Leads", Dataset: registry.LeadScoringResults, Agg: metric.AggRowCount, Format: metric.FormatCount},
		},
		Charts: []chart.Request{
			{Kind: chart.KindHistogram, Title: "Lead Score Distribution", Dataset: registry.LeadScoringResults,
				ValueField: registry.FieldLeadScore, Bins: chart.DefaultBins},
			{Kind: chart.KindBox, Title: "Lead Score Box Plot", Dataset: registry.LeadScoringResults,
				ValueField: registry.FieldLeadScore},
		},
		Previews: []Preview{{Dataset: registry.LeadScoringResults, Limit: 50}},
	},
	{
		ID:       FeatureImportance,
		Title:    "Feature Importance Analysis",
		Datasets: []string{registry.FeatureImportance},
		Metrics: []metric.Request{
			{Label: "Features", Dataset: registry.FeatureImportance, Agg: metric.AggRowCount, Format: metric.FormatCount},
			{Label: "Top Importance", Dataset: registry.FeatureImportance, Field: registry.FieldImportance, Agg: metric.AggMax, Format: metric.FormatDecimal2},
		},
		Charts: []chart.Request{
			{Kind: chart.KindBar, Title: "Feature Importance Ranking", Dataset: registry.FeatureImportance,
				LabelField: registry.FieldFeature, ValueField: registry.FieldImportance,
				SortAsc: true, Orientation: chart.Horizontal},
		},
		Previews: []Preview{{Dataset: registry.FeatureImportance, Limit: 50}},
	},
	{
		ID:       CorrelationAnalysis,
		Title:    "Correlation Analysis",
		Datasets: []string{registry.CorrelationMatrix},
		Metrics: []metric.Request{
			{Label: "Matrix Rows", Dataset: registry.CorrelationMatrix, Agg: metric.AggRowCount, Format: metric.FormatCount},
		},
		Charts: []chart.Request{
			{Kind: chart.KindHeatmap, Title: "Feature Correlation Matrix", Dataset: registry.CorrelationMatrix},
		},
		Previews: []Preview{{Dataset: registry.CorrelationMatrix, Limit: 50}},
	},
}

// Definitions returns every declared view in selector order.
func Definitions() []Definition {
	return definitions
}

// Get returns the definition for id, or ErrViewNotFound for any id
// outside the enumeration.
func Get(id string) (Definition, error) {
	for _, d := range definitions {
		if d.ID == id {
			return d, nil
		}
	}
	return Definition{}, ErrViewNotFound
}
