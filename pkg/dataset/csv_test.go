package dataset

import (
	"strings"
	"testing"
)

func TestReadCSV_InfersColumnKinds(t *testing.T) {
	t.Parallel()
	csv := "Product,Sales,Category\nWidget,100,Hardware\nGadget,250.5,Hardware\nDoodad,75,Software\n"

	ds, err := ReadCSV("product_sales", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ds.RowCount() != 3 {
		t.Errorf("expected 3 rows, got %d", ds.RowCount())
	}
	if got := ds.Columns[1].Kind; got != KindNumeric {
		t.Errorf("expected Sales to be numeric, got %s", got)
	}
	if got := ds.Columns[2].Kind; got != KindCategorical {
		t.Errorf("expected Category to be categorical, got %s", got)
	}
}

func TestReadCSV_HighCardinalityTextIsNotCategorical(t *testing.T) {
	t.Parallel()
	var sb strings.Builder
	sb.WriteString("Name\n")
	for i := 0; i < 50; i++ {
		sb.WriteString("customer-")
		sb.WriteByte(byte('0' + i%10))
		sb.WriteString(strings.Repeat("x", i))
		sb.WriteString("\n")
	}

	ds, err := ReadCSV("customers", strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := ds.Columns[0].Kind; got != KindText {
		t.Errorf("expected text kind, got %s", got)
	}
}

func TestReadCSV_HeaderOnlyIsEmptyDataset(t *testing.T) {
	t.Parallel()
	ds, err := ReadCSV("funnel_data", strings.NewReader("Stage,Count\n"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ds.RowCount() != 0 {
		t.Errorf("expected 0 rows, got %d", ds.RowCount())
	}
	if len(ds.Columns) != 2 {
		t.Errorf("expected 2 columns, got %d", len(ds.Columns))
	}
}

func TestReadCSV_RaggedRowsArePadded(t *testing.T) {
	t.Parallel()
	csv := "A,B,C\n1,2\n4,5,6,7\n"

	ds, err := ReadCSV("ragged", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := ds.Cell(0, 2); got != "" {
		t.Errorf("expected padded cell, got %q", got)
	}
	if got := ds.Cell(1, 2); got != "6" {
		t.Errorf("expected truncated row to keep %q, got %q", "6", got)
	}
}

func TestReadCSV_EmptyContentIsMalformed(t *testing.T) {
	t.Parallel()
	_, err := ReadCSV("empty", strings.NewReader(""))
	if err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestDataset_Float(t *testing.T) {
	t.Parallel()
	ds, err := ReadCSV("d", strings.NewReader("V\n10\n\nnope\n"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if v, ok := ds.Float(0, 0); !ok || v != 10 {
		t.Errorf("expected (10,true), got (%v,%v)", v, ok)
	}
	if _, ok := ds.Float(1, 0); ok {
		t.Error("expected empty cell to not parse")
	}
	if _, ok := ds.Float(2, 0); ok {
		t.Error("expected non-numeric cell to not parse")
	}
}
