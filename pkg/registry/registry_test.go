package registry_test

import (
	"strings"
	"testing"

	"github.com/lucentlabs/lens/pkg/dataset"
	"github.com/lucentlabs/lens/pkg/registry"
)

func mustDataset(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ReadCSV("test", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("fixture dataset: %v", err)
	}
	return ds
}

func TestResolve_LowestPriorityAliasStillWins(t *testing.T) {
	t.Parallel()
	ds := mustDataset(t, "Amount,Product\n10,Widget\n")
	f := registry.Field{Name: "revenue", Aliases: []string{"Revenue", "Sales", "Total_Sales", "Amount"}}

	res := registry.Resolve(ds, f)
	if !res.OK {
		t.Fatal("expected resolution to succeed")
	}
	if res.Column != "Amount" {
		t.Errorf("expected Amount, got %q", res.Column)
	}
}

func TestResolve_NoAliasPresent(t *testing.T) {
	t.Parallel()
	ds := mustDataset(t, "Product,Quantity\nWidget,3\n")
	f := registry.Field{Name: "revenue", Aliases: []string{"Revenue", "Sales", "Total_Sales", "Amount"}}

	res := registry.Resolve(ds, f)
	if res.OK {
		t.Errorf("expected unresolved, got column %q", res.Column)
	}
	if res.Field != "revenue" {
		t.Errorf("expected field name retained, got %q", res.Field)
	}
}

func TestResolve_AliasPriorityBeatsColumnOrder(t *testing.T) {
	t.Parallel()
	// Sales appears before Revenue in the dataset, but Revenue has
	// higher alias priority.
	ds := mustDataset(t, "Sales,Revenue\n100,200\n")
	f := registry.Field{Name: "revenue", Aliases: []string{"Revenue", "Sales"}}

	res := registry.Resolve(ds, f)
	if res.Column != "Revenue" {
		t.Errorf("expected alias priority to win, got %q", res.Column)
	}
}

func TestResolve_IsCaseSensitive(t *testing.T) {
	t.Parallel()
	ds := mustDataset(t, "revenue\n10\n")
	f := registry.Field{Name: "revenue", Aliases: []string{"Revenue"}}

	if res := registry.Resolve(ds, f); res.OK {
		t.Errorf("expected case-sensitive miss, got %q", res.Column)
	}
}

func TestResolveField_UnknownFieldDegrades(t *testing.T) {
	t.Parallel()
	ds := mustDataset(t, "Age\n30\n")

	res := registry.ResolveField(ds, registry.CustomerData, "shoe_size")
	if res.OK {
		t.Error("expected unknown field to resolve as absent")
	}
}

func TestAll_EnumerationIsComplete(t *testing.T) {
	t.Parallel()
	specs := registry.All()
	if len(specs) != 11 {
		t.Fatalf("expected 11 datasets, got %d", len(specs))
	}
	seen := make(map[string]bool)
	for _, s := range specs {
		if s.Filename == "" {
			t.Errorf("dataset %s has no filename", s.Name)
		}
		if seen[s.Name] {
			t.Errorf("duplicate dataset %s", s.Name)
		}
		seen[s.Name] = true
	}
}

func TestSources_JoinsDataDir(t *testing.T) {
	t.Parallel()
	sources := registry.Sources("/data")
	if len(sources) != 11 {
		t.Fatalf("expected 11 sources, got %d", len(sources))
	}
	for _, src := range sources {
		if !strings.HasPrefix(src.Path, "/data/") {
			t.Errorf("source %s not under data dir: %s", src.Name, src.Path)
		}
	}
}
