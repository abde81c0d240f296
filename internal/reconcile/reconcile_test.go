package reconcile

import (
	"reflect"
	"testing"
)

func TestNoExpectedOrder(t *testing.T) {
	scanned := []ScannedItem{
		{Code: "A", Name: "Widget", Quantity: 4},
		{Code: "B", Name: "Gadget", Quantity: 2},
	}

	report := Reconcile(nil, scanned)

	if !report.Empty() {
		t.Errorf("Expected empty report without a loaded order, got %+v", report)
	}
	if report.Missing == nil || report.Extra == nil {
		t.Error("Report slices should be non-nil even when empty")
	}
}

func TestExactMatch(t *testing.T) {
	expected := []ExpectedItem{
		{Code: "A", Description: "Widget", Quantity: 10},
		{Code: "B", Description: "Gadget", Quantity: 3},
	}
	scanned := []ScannedItem{
		{Code: "B", Name: "Gadget", Quantity: 3},
		{Code: "A", Name: "Widget", Quantity: 10},
	}

	report := Reconcile(expected, scanned)

	if !report.Empty() {
		t.Errorf("Exact match should produce empty report, got %+v", report)
	}
}

func TestShortfall(t *testing.T) {
	expected := []ExpectedItem{{Code: "A", Description: "Widget", Quantity: 10}}
	scanned := []ScannedItem{{Code: "A", Name: "Widget", Quantity: 4}}

	report := Reconcile(expected, scanned)

	want := []MissingEntry{{Code: "A", Description: "Widget", Expected: 10, Scanned: 4}}
	if !reflect.DeepEqual(report.Missing, want) {
		t.Errorf("Missing mismatch: got %+v, want %+v", report.Missing, want)
	}
	if len(report.Extra) != 0 {
		t.Errorf("Shortfall should not produce extras, got %+v", report.Extra)
	}
}

func TestFullyMissingItem(t *testing.T) {
	expected := []ExpectedItem{{Code: "A", Description: "Widget", Quantity: 5}}

	report := Reconcile(expected, []ScannedItem{})

	if len(report.Missing) != 1 {
		t.Fatalf("Expected 1 missing entry, got %d", len(report.Missing))
	}
	if report.Missing[0].Scanned != 0 {
		t.Errorf("Unscanned item should report scanned=0, got %d", report.Missing[0].Scanned)
	}
}

func TestUnexpectedSurplus(t *testing.T) {
	expected := []ExpectedItem{{Code: "A", Description: "W", Quantity: 5}}
	scanned := []ScannedItem{
		{Code: "A", Name: "W", Quantity: 5},
		{Code: "B", Name: "Gadget", Quantity: 3},
	}

	report := Reconcile(expected, scanned)

	want := []ExtraEntry{{Code: "B", Description: "Gadget", Quantity: 3}}
	if !reflect.DeepEqual(report.Extra, want) {
		t.Errorf("Extra mismatch: got %+v, want %+v", report.Extra, want)
	}
	if len(report.Missing) != 0 {
		t.Errorf("No shortfall expected, got %+v", report.Missing)
	}
}

func TestPartialOverage(t *testing.T) {
	expected := []ExpectedItem{{Code: "A", Description: "W", Quantity: 5}}
	scanned := []ScannedItem{{Code: "A", Name: "W", Quantity: 8}}

	report := Reconcile(expected, scanned)

	// Only the surplus of 3 is reported, not the full 8
	want := []ExtraEntry{{Code: "A", Description: "W", Quantity: 3}}
	if !reflect.DeepEqual(report.Extra, want) {
		t.Errorf("Extra mismatch: got %+v, want %+v", report.Extra, want)
	}
	if len(report.Missing) != 0 {
		t.Errorf("Overage must not also report missing, got %+v", report.Missing)
	}
}

func TestMutualExclusion(t *testing.T) {
	expected := []ExpectedItem{
		{Code: "A", Description: "W", Quantity: 5},
		{Code: "B", Description: "G", Quantity: 2},
		{Code: "C", Description: "H", Quantity: 7},
	}
	scanned := []ScannedItem{
		{Code: "A", Name: "W", Quantity: 9},
		{Code: "B", Name: "G", Quantity: 1},
		{Code: "D", Name: "X", Quantity: 4},
	}

	report := Reconcile(expected, scanned)

	missing := make(map[string]bool)
	for _, m := range report.Missing {
		missing[m.Code] = true
	}
	for _, e := range report.Extra {
		if missing[e.Code] {
			t.Errorf("Code %s appears in both missing and extra", e.Code)
		}
	}
}

func TestRepeatedScansMerge(t *testing.T) {
	expected := []ExpectedItem{{Code: "A", Description: "W", Quantity: 10}}
	scanned := []ScannedItem{
		{Code: "A", Name: "W", Quantity: 4},
		{Code: "A", Name: "W", Quantity: 6},
	}

	report := Reconcile(expected, scanned)

	if !report.Empty() {
		t.Errorf("Split scans summing to expected should be clean, got %+v", report)
	}
}

func TestZeroExpectedQuantity(t *testing.T) {
	// Expected-but-none: any scan of the code is fully extra, never missing
	expected := []ExpectedItem{{Code: "A", Description: "W", Quantity: 0}}
	scanned := []ScannedItem{{Code: "A", Name: "W", Quantity: 2}}

	report := Reconcile(expected, scanned)

	if len(report.Missing) != 0 {
		t.Errorf("Zero-quantity expected should never be missing, got %+v", report.Missing)
	}
	if len(report.Extra) != 1 || report.Extra[0].Quantity != 2 {
		t.Errorf("Full scanned quantity should be extra, got %+v", report.Extra)
	}
}

func TestNonPositiveQuantitiesIgnored(t *testing.T) {
	expected := []ExpectedItem{{Code: "A", Description: "W", Quantity: 2}}
	scanned := []ScannedItem{
		{Code: "A", Name: "W", Quantity: 2},
		{Code: "B", Name: "G", Quantity: 0},
		{Code: "C", Name: "H", Quantity: -3},
	}

	report := Reconcile(expected, scanned)

	if !report.Empty() {
		t.Errorf("Non-positive quantities must not produce entries, got %+v", report)
	}
}

func TestDeterminism(t *testing.T) {
	expected := []ExpectedItem{
		{Code: "A", Description: "W", Quantity: 5},
		{Code: "B", Description: "G", Quantity: 2},
	}
	scanned := []ScannedItem{
		{Code: "B", Name: "G", Quantity: 4},
		{Code: "E", Name: "X", Quantity: 1},
	}

	first := Reconcile(expected, scanned)
	second := Reconcile(expected, scanned)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Reports not value-equal across calls: %+v vs %+v", first, second)
	}
}

func TestMergeScans(t *testing.T) {
	scanned := []ScannedItem{
		{Code: "A", Name: "W", Quantity: 2},
		{Code: "B", Name: "G", Quantity: 1},
		{Code: "A", Name: "W", Quantity: 3},
		{Code: "C", Name: "H", Quantity: -1},
	}

	merged := MergeScans(scanned)

	want := []ScannedItem{
		{Code: "A", Name: "W", Quantity: 5},
		{Code: "B", Name: "G", Quantity: 1},
	}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("Merge mismatch: got %+v, want %+v", merged, want)
	}
}

func TestFinalizationGate(t *testing.T) {
	report := Reconcile(
		[]ExpectedItem{{Code: "A", Description: "W", Quantity: 5}},
		[]ScannedItem{{Code: "A", Name: "W", Quantity: 3}, {Code: "B", Name: "G", Quantity: 1}},
	)
	if report.Empty() {
		t.Fatal("Fixture should produce discrepancies")
	}

	// No clarification
	if err := ValidateFinalization(report, "   ", map[string]string{"A": ReasonNoStock}); err == nil {
		t.Error("Blank clarification should be rejected")
	}

	// Missing reason
	if err := ValidateFinalization(report, "faltante de stock", nil); err == nil {
		t.Error("Missing reason should be rejected")
	}

	// Invalid reason code
	if err := ValidateFinalization(report, "nota", map[string]string{"A": "lost"}); err == nil {
		t.Error("Unknown reason code should be rejected")
	}

	// Complete input
	if err := ValidateFinalization(report, "faltante de stock", map[string]string{"A": ReasonDamaged}); err != nil {
		t.Errorf("Complete finalization input rejected: %v", err)
	}

	// Clean report needs nothing
	clean := Reconcile(nil, nil)
	if err := ValidateFinalization(clean, "", nil); err != nil {
		t.Errorf("Clean report should pass without clarification: %v", err)
	}
}

func TestApplyReasons(t *testing.T) {
	report := Reconcile(
		[]ExpectedItem{{Code: "A", Description: "W", Quantity: 5}},
		nil,
	)

	stamped := ApplyReasons(report, map[string]string{"A": ReasonNoStock})

	if stamped.Missing[0].Reason != ReasonNoStock {
		t.Errorf("Reason not stamped: %+v", stamped.Missing[0])
	}
	if report.Missing[0].Reason != "" {
		t.Error("ApplyReasons must not mutate the source report")
	}
}
