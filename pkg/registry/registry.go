// Package registry declares the fixed set of logical datasets the
// dashboard consumes and, per logical field, the priority-ordered
// physical column aliases considered when binding to a concrete
// Dataset. Resolution is exact-match and purely a function of a
// Dataset's column set.
package registry

import (
	"path/filepath"

	"github.com/lucentlabs/lens/pkg/dataset"
)

// Logical dataset names. The enumeration is fixed; nothing discovers
// datasets at runtime.
const (
	CampaignPerformance = "campaign_performance"
	ChannelAttribution  = "channel_attribution"
	CorrelationMatrix   = "correlation_matrix"
	CustomerData        = "customer_data"
	CustomerJourney     = "customer_journey"
	FeatureImportance   = "feature_importance"
	FunnelData          = "funnel_data"
	GeographicData      = "geographic_data"
	LeadScoringResults  = "lead_scoring_results"
	LearningCurve       = "learning_curve"
	ProductSales        = "product_sales"
)

// Logical field names used by view definitions.
const (
	FieldCampaign       = "campaign"
	FieldBudget         = "budget"
	FieldConversions    = "conversions"
	FieldROI            = "roi"
	FieldChannel        = "channel"
	FieldRevenue        = "revenue"
	FieldAge            = "age"
	FieldIncome         = "income"
	FieldStage          = "stage"
	FieldStageCount     = "stage_count"
	FieldConversionRate = "conversion_rate"
	FieldRegion         = "region"
	FieldCountry        = "country"
	FieldLeadScore      = "lead_score"
	FieldFeature        = "feature"
	FieldImportance     = "importance"
	FieldProduct        = "product"
	FieldCategory       = "category"
	FieldSales          = "sales"
	FieldQuantity       = "quantity"
)

// Field is a logical metric name plus its candidate physical column
// names, highest priority first. The alias order here is normative:
// when a dataset exposes several candidates, the earliest alias
// present wins regardless of the dataset's own column ordering.
type Field struct {
	Name    string
	Aliases []string
}

// DatasetSpec declares one logical dataset: its storage filename and
// the logical fields views may request from it.
type DatasetSpec struct {
	Name     string
	Filename string
	Fields   []Field
}

var specs = []DatasetSpec{
	{
		Name:     CampaignPerformance,
		Filename: "campaign_performance.csv",
		Fields: []Field{
			{Name: FieldCampaign, Aliases: []string{"CampaignName", "Campaign", "Campaign_Name"}},
			{Name: FieldBudget, Aliases: []string{"Budget", "Spend", "Cost"}},
			{Name: FieldConversions, Aliases: []string{"Conversions", "Conversion_Count"}},
			{Name: FieldROI, Aliases: []string{"ROI", "Return_On_Investment"}},
		},
	},
	{
		Name:     ChannelAttribution,
		Filename: "channel_attribution.csv",
		Fields: []Field{
			{Name: FieldChannel, Aliases: []string{"Channel", "Channel_Name", "Source"}},
			{Name: FieldConversions, Aliases: []string{"Conversions", "Conversion_Count"}},
			{Name: FieldRevenue, Aliases: []string{"Revenue", "Sales", "Total_Sales", "Amount"}},
		},
	},
	{
		Name:     CorrelationMatrix,
		Filename: "correlation_matrix.csv",
	},
	{
		Name:     CustomerData,
		Filename: "customer_data.csv",
		Fields: []Field{
			{Name: FieldAge, Aliases: []string{"Age", "Customer_Age"}},
			{Name: FieldIncome, Aliases: []string{"Income", "Annual_Income", "Salary"}},
		},
	},
	{
		Name:     CustomerJourney,
		Filename: "customer_journey.csv",
	},
	{
		Name:     FeatureImportance,
		Filename: "feature_importance.csv",
		Fields: []Field{
			{Name: FieldFeature, Aliases: []string{"Feature", "Feature_Name"}},
			{Name: FieldImportance, Aliases: []string{"Importance", "Importance_Score", "Weight"}},
		},
	},
	{
		Name:     FunnelData,
		Filename: "funnel_data.csv",
		Fields: []Field{
			{Name: FieldStage, Aliases: []string{"Stage", "Step", "Funnel_Stage"}},
			{Name: FieldStageCount, Aliases: []string{"Count", "Users", "Visitors"}},
			{Name: FieldConversionRate, Aliases: []string{"ConversionRate", "Conversion_Rate"}},
			{Name: FieldConversions, Aliases: []string{"Conversions"}},
		},
	},
	{
		Name:     GeographicData,
		Filename: "geographic_data.csv",
		Fields: []Field{
			{Name: FieldRegion, Aliases: []string{"Region", "Area"}},
			{Name: FieldCountry, Aliases: []string{"Country", "Country_Name"}},
		},
	},
	{
		Name:     LeadScoringResults,
		Filename: "lead_scoring_results.csv",
		Fields: []Field{
			{Name: FieldLeadScore, Aliases: []string{"LeadScore", "Lead_Score", "Score"}},
		},
	},
	{
		Name:     LearningCurve,
		Filename: "learning_curve.csv",
	},
	{
		Name:     ProductSales,
		Filename: "product_sales.csv",
		Fields: []Field{
			{Name: FieldProduct, Aliases: []string{"Product", "ProductName", "Product_Name"}},
			{Name: FieldCategory, Aliases: []string{"Category", "Product_Category"}},
			{Name: FieldRevenue, Aliases: []string{"Revenue", "Sales", "Total_Sales", "Amount"}},
			{Name: FieldSales, Aliases: []string{"Sales", "Revenue", "Total_Sales", "Amount"}},
			{Name: FieldQuantity, Aliases: []string{"Quantity", "Units", "Units_Sold"}},
		},
	},
}

// All returns the full dataset enumeration in declaration order.
func All() []DatasetSpec {
	return specs
}

// Spec returns the declaration for a logical dataset name.
func Spec(name string) (DatasetSpec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return DatasetSpec{}, false
}

// FieldSpec returns the alias list declared for (dataset, field).
func FieldSpec(datasetName, fieldName string) (Field, bool) {
	s, ok := Spec(datasetName)
	if !ok {
		return Field{}, false
	}
	for _, f := range s.Fields {
		if f.Name == fieldName {
			return f, true
		}
	}
	return Field{}, false
}

// Sources maps the enumeration onto storage locations under dataDir.
func Sources(dataDir string) []dataset.Source {
	out := make([]dataset.Source, 0, len(specs))
	for _, s := range specs {
		out = append(out, dataset.Source{
			Name: s.Name,
			Path: filepath.Join(dataDir, s.Filename),
		})
	}
	return out
}

// Resolution is the outcome of binding a logical field to a physical
// column. Downstream code branches on OK, never on ad hoc column
// membership checks.
type Resolution struct {
	Field  string
	Column string
	OK     bool
}

// Resolve binds a logical field against a Dataset's columns: exact,
// case-sensitive, first alias present wins. Pure — it never touches
// row content.
func Resolve(ds *dataset.Dataset, f Field) Resolution {
	for _, alias := range f.Aliases {
		if ds.ColumnIndex(alias) >= 0 {
			return Resolution{Field: f.Name, Column: alias, OK: true}
		}
	}
	return Resolution{Field: f.Name}
}

// ResolveField looks up the declared alias list for (dataset, field)
// and resolves it. Unknown fields resolve to not-OK rather than
// erroring, matching the degradation contract.
func ResolveField(ds *dataset.Dataset, datasetName, fieldName string) Resolution {
	f, ok := FieldSpec(datasetName, fieldName)
	if !ok {
		return Resolution{Field: fieldName}
	}
	return Resolve(ds, f)
}
