package apihttp

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	domaindashboard "plant-monitor/internal/analytics/domain/dashboard"
	telemetry "plant-monitor/internal/telemetry/domain"
)

// BuildReadingsXLSX renders readings as a single-sheet workbook.
func BuildReadingsXLSX(readings []telemetry.Reading) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Readings"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	for i, column := range readingColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, column)
	}
	for i, reading := range readings {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), reading.ID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), reading.AssetID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), reading.MetricName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), reading.Value)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), reading.Unit)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), formatTime(reading.Timestamp))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDashboardPDF renders a facility dashboard.
func BuildDashboardPDF(summary *domaindashboard.Summary) ([]byte, error) {
	return buildDashboardPDF(summary, true)
}

func buildDashboardPDF(summary *domaindashboard.Summary, compress bool) ([]byte, error) {
	if summary == nil {
		return nil, fmt.Errorf("dashboard report: nil summary")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()
	// Core fonts are cp1252; units such as °C need translating.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.Cell(0, 8, tr(fmt.Sprintf("Facility Dashboard: %s", summary.Facility.Name)))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Location: %s", summary.Facility.Location)))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Type: %s", summary.Facility.FacilityType)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", summary.LastUpdated.UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Assets: %d (operational %d, warning %d, critical %d, offline %d)",
		summary.TotalAssets,
		summary.Counts.Operational,
		summary.Counts.Warning,
		summary.Counts.Critical,
		summary.Counts.Offline,
	))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 6, "Metric", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Unit", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Total", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Avg", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Min", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Max", "1", 0, "C", false, 0, "")
	pdf.CellFormat(15, 6, "Assets", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, m := range summary.MetricSummaries {
		pdf.CellFormat(45, 6, tr(m.MetricName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, tr(m.Unit), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", m.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", m.Avg), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", m.Min), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", m.Max), "1", 0, "R", false, 0, "")
		pdf.CellFormat(15, 6, fmt.Sprintf("%d", m.AssetCount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 6, "Asset", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Type", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Metrics", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, a := range summary.AssetStatuses {
		pdf.CellFormat(70, 6, tr(a.AssetName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, tr(a.AssetType), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, tr(string(a.Status)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", len(a.LatestReadings)), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
