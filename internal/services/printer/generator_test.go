package printer

import (
	"bytes"
	"testing"
)

func TestGeneratePackageLabels(t *testing.T) {
	cfg := LabelConfig{
		RemitoNumber:  "R-0001-00012345",
		TotalPackages: 3,
		ClienteNombre: "Tienda Centro",
	}

	pdfBytes, err := GeneratePackageLabels(cfg)
	if err != nil {
		t.Fatalf("Failed to generate labels: %v", err)
	}

	if !bytes.HasPrefix(pdfBytes, []byte("%PDF")) {
		t.Error("Output should be a PDF document")
	}
	if len(pdfBytes) < 1000 {
		t.Errorf("PDF suspiciously small: %d bytes", len(pdfBytes))
	}
}

func TestGeneratePackageLabelsValidation(t *testing.T) {
	if _, err := GeneratePackageLabels(LabelConfig{TotalPackages: 2}); err == nil {
		t.Error("Missing remito number should be rejected")
	}
	if _, err := GeneratePackageLabels(LabelConfig{RemitoNumber: "R-1", TotalPackages: 0}); err == nil {
		t.Error("Zero packages should be rejected")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := LabelConfig{RemitoNumber: "R-1", TotalPackages: 1}
	cfg.ApplyDefaults()

	if cfg.Cols != 2 || cfg.Rows != 4 {
		t.Errorf("Default sheet layout should be 2x4, got %dx%d", cfg.Cols, cfg.Rows)
	}
	if cfg.MarginTop == 0 || cfg.MarginLeft == 0 {
		t.Error("Default margins should be non-zero")
	}
}
