// Package reconcile compares a scanned item list against the expected order
// and classifies every deviation as a shortfall ("missing") or a surplus
// ("extra"). The computation is pure: no I/O, no shared state, deterministic.
package reconcile

import (
	"fmt"
	"strings"
)

// Missing-item reason codes entered by the operator during finalization.
const (
	ReasonNoStock = "no_stock"
	ReasonDamaged = "damaged"
)

// ExpectedItem is one line of the expected order (pre-remito). Immutable once
// the order is loaded.
type ExpectedItem struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

// ScannedItem is one line of the operator's scan list, keyed by code.
type ScannedItem struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// MissingEntry reports a code scanned below its expected quantity.
type MissingEntry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Expected    int    `json:"expected"`
	Scanned     int    `json:"scanned"`
	Reason      string `json:"reason,omitempty"` // no_stock | damaged
}

// ExtraEntry reports surplus: either a code that was never expected (full
// scanned quantity) or the overage above an expected quantity.
type ExtraEntry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

// Report is the structured discrepancy report for one reconciliation.
type Report struct {
	Missing []MissingEntry `json:"missing"`
	Extra   []ExtraEntry   `json:"extra"`
}

// Empty reports whether the reconciliation found no discrepancies.
func (r Report) Empty() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0
}

// Reconcile computes the discrepancy report for a scanned list against an
// expected list.
//
// A nil expected list means no order was loaded for this dispatch; the report
// is empty unconditionally. Missing entries follow expected order, extra
// entries follow scanned order. A code can never land in both lists: surplus
// and shortfall against the same expected quantity are mutually exclusive.
//
// Scanned quantities are validated >= 1 upstream; non-positive entries are
// ignored here rather than clamped.
func Reconcile(expected []ExpectedItem, scanned []ScannedItem) Report {
	report := Report{
		Missing: []MissingEntry{},
		Extra:   []ExtraEntry{},
	}

	if expected == nil {
		return report
	}

	scannedQty := make(map[string]int, len(scanned))
	for _, s := range scanned {
		if s.Quantity <= 0 {
			continue
		}
		scannedQty[s.Code] += s.Quantity
	}

	expectedQty := make(map[string]int, len(expected))
	for _, e := range expected {
		expectedQty[e.Code] = e.Quantity
	}

	// Shortfall pass: expected order drives output order
	for _, e := range expected {
		qty := scannedQty[e.Code]
		if qty < e.Quantity {
			report.Missing = append(report.Missing, MissingEntry{
				Code:        e.Code,
				Description: e.Description,
				Expected:    e.Quantity,
				Scanned:     qty,
			})
		}
	}

	// Surplus pass: scanned order drives output order. Repeated codes in the
	// input were merged above, so only the first occurrence emits.
	emitted := make(map[string]bool, len(scanned))
	for _, s := range scanned {
		if s.Quantity <= 0 || emitted[s.Code] {
			continue
		}
		emitted[s.Code] = true

		total := scannedQty[s.Code]
		exp, known := expectedQty[s.Code]
		if !known {
			report.Extra = append(report.Extra, ExtraEntry{
				Code:        s.Code,
				Description: s.Name,
				Quantity:    total,
			})
		} else if total > exp {
			report.Extra = append(report.Extra, ExtraEntry{
				Code:        s.Code,
				Description: s.Name,
				Quantity:    total - exp,
			})
		}
	}

	return report
}

// MergeScans collapses repeated codes by summing quantities, preserving
// first-seen order. This is the same accumulation the scanner UI performs;
// batch submitters go through it server-side so both paths reconcile the
// same shape. Non-positive quantities are dropped.
func MergeScans(scanned []ScannedItem) []ScannedItem {
	merged := make([]ScannedItem, 0, len(scanned))
	index := make(map[string]int, len(scanned))

	for _, s := range scanned {
		if s.Quantity <= 0 {
			continue
		}
		if i, ok := index[s.Code]; ok {
			merged[i].Quantity += s.Quantity
			continue
		}
		index[s.Code] = len(merged)
		merged = append(merged, s)
	}

	return merged
}

// ValidationError reports a finalization gate failure: which input is missing
// and, for reason failures, which item code.
type ValidationError struct {
	Field string
	Code  string
}

func (e *ValidationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("validation failed: %s for item %s", e.Field, e.Code)
	}
	return fmt.Sprintf("validation failed: %s", e.Field)
}

// ValidateFinalization enforces the clarification gate: a dispatch with any
// discrepancy cannot be finalized without a non-blank clarification note and
// a reason (no_stock or damaged) for every missing item. A clean report
// passes with no further input.
func ValidateFinalization(r Report, clarification string, reasons map[string]string) error {
	if r.Empty() {
		return nil
	}

	if strings.TrimSpace(clarification) == "" {
		return &ValidationError{Field: "clarification required"}
	}

	for _, m := range r.Missing {
		reason := reasons[m.Code]
		if reason != ReasonNoStock && reason != ReasonDamaged {
			return &ValidationError{Field: "missing reason required", Code: m.Code}
		}
	}

	return nil
}

// ApplyReasons stamps the operator-selected reasons onto the missing entries
// of a copy of the report, for persistence with the finalized remito.
func ApplyReasons(r Report, reasons map[string]string) Report {
	stamped := Report{
		Missing: make([]MissingEntry, len(r.Missing)),
		Extra:   make([]ExtraEntry, len(r.Extra)),
	}
	copy(stamped.Extra, r.Extra)
	for i, m := range r.Missing {
		m.Reason = reasons[m.Code]
		stamped.Missing[i] = m
	}
	return stamped
}
