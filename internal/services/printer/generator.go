// Package printer renders package ("bulto") labels for a finalized remito:
// one QR label per package, printed on A4 sticker sheets.
package printer

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// LabelConfig holds configuration for PDF generation
type LabelConfig struct {
	RemitoNumber  string  `json:"remitoNumber"`
	TotalPackages int     `json:"totalPackages"`
	ClienteNombre string  `json:"clienteNombre"`
	Cols          int     `json:"cols"`
	Rows          int     `json:"rows"`
	MarginTop     float64 `json:"marginTop"`
	MarginLeft    float64 `json:"marginLeft"`
	GapX          float64 `json:"gapX"`
	GapY          float64 `json:"gapY"`
}

// ApplyDefaults fills the standard 2x4 sticker sheet layout
func (cfg *LabelConfig) ApplyDefaults() {
	if cfg.Cols == 0 {
		cfg.Cols = 2
	}
	if cfg.Rows == 0 {
		cfg.Rows = 4
	}
	if cfg.MarginTop == 0 {
		cfg.MarginTop = 10
	}
	if cfg.MarginLeft == 0 {
		cfg.MarginLeft = 10
	}
}

// GeneratePackageLabels creates a PDF with one QR label per package of a
// remito ("Bulto n/N"). The QR payload lets the receiving depot scan a
// package straight back to its remito.
func GeneratePackageLabels(cfg LabelConfig) ([]byte, error) {
	if cfg.RemitoNumber == "" {
		return nil, fmt.Errorf("remito number is required")
	}
	if cfg.TotalPackages < 1 {
		return nil, fmt.Errorf("total packages must be at least 1")
	}
	cfg.ApplyDefaults()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Arial", "B", 10)

	// A4 dimensions
	pageWidth, pageHeight := 210.0, 297.0

	totalGapX := float64(cfg.Cols-1) * cfg.GapX
	totalGapY := float64(cfg.Rows-1) * cfg.GapY

	availW := pageWidth - (cfg.MarginLeft * 2)
	availH := pageHeight - (cfg.MarginTop * 2)

	labelW := (availW - totalGapX) / float64(cfg.Cols)
	labelH := (availH - totalGapY) / float64(cfg.Rows)

	labelsPerPage := cfg.Cols * cfg.Rows

	for i := 0; i < cfg.TotalPackages; i++ {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		indexOnPage := i % labelsPerPage
		col := indexOnPage % cfg.Cols
		row := indexOnPage / cfg.Cols

		x := cfg.MarginLeft + float64(col)*(labelW+cfg.GapX)
		y := cfg.MarginTop + float64(row)*(labelH+cfg.GapY)

		bulto := i + 1
		// Payload: REMITO/{number}/{package}/{total}
		qrContent := fmt.Sprintf("REMITO/%s/%d/%d", cfg.RemitoNumber, bulto, cfg.TotalPackages)

		qrPng, err := qrcode.Encode(qrContent, qrcode.Medium, 256)
		if err != nil {
			return nil, err
		}

		imgName := fmt.Sprintf("qr_%d", i)
		imgOptions := gofpdf.ImageOptions{
			ImageType: "PNG",
			ReadDpi:   true,
		}

		reader := bytes.NewReader(qrPng)
		_ = pdf.RegisterImageOptionsReader(imgName, imgOptions, reader)

		// QR centered, 60% of label height, leaving room for the text rows
		qrSize := labelH * 0.6
		if qrSize > labelW {
			qrSize = labelW * 0.9
		}

		qrX := x + (labelW-qrSize)/2
		qrY := y + (labelH-qrSize)/2 - 3

		pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, imgOptions, 0, "")

		// Remito number above the QR
		pdf.SetXY(x, y+2)
		pdf.SetFontSize(10)
		pdf.CellFormat(labelW, 5, cfg.RemitoNumber, "", 0, "C", false, 0, "")

		// Customer name (if known) and package counter below
		pdf.SetXY(x, y+labelH-11)
		pdf.SetFontSize(7)
		pdf.CellFormat(labelW, 4, cfg.ClienteNombre, "", 0, "C", false, 0, "")
		pdf.SetXY(x, y+labelH-6)
		pdf.SetFontSize(9)
		pdf.CellFormat(labelW, 5, fmt.Sprintf("Bulto %d/%d", bulto, cfg.TotalPackages), "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
