package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/docintel/docintel/internal/workflow"
)

// Service renders analysis reports as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ReportXLSX returns a workbook with three sheets: run overview, per-section
// extracted fields, and validation findings.
func (s *Service) ReportXLSX(report *workflow.Report) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const overviewSheet = "Report"
	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return nil, err
	}

	write := func(sheet string, col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	overview := [][2]any{
		{"Document ID", report.DocumentID.String()},
		{"Document Type", string(report.DocumentType)},
		{"Workflow", report.Workflow},
		{"State", string(report.State)},
		{"Overall Risk", report.OverallRisk},
		{"Sections", len(report.Sections)},
		{"Failed Sections", report.FailedSections()},
	}
	if report.Error != "" {
		overview = append(overview, [2]any{"Error", report.Error})
	}
	for i, kv := range overview {
		write(overviewSheet, 1, i+1, kv[0])
		write(overviewSheet, 2, i+1, kv[1])
	}
	_ = f.SetColWidth(overviewSheet, "A", "A", 18)
	_ = f.SetColWidth(overviewSheet, "B", "B", 48)

	const sectionsSheet = "Sections"
	if _, err := f.NewSheet(sectionsSheet); err != nil {
		return nil, err
	}
	for i, h := range []string{"Section", "Status", "Intent", "Fields"} {
		write(sectionsSheet, i+1, 1, h)
	}
	row := 2
	for i := range report.Sections {
		section := &report.Sections[i]
		status := "ok"
		if section.Failed() {
			status = "failed: " + section.Error
		}
		fields := ""
		if len(section.Fields) > 0 {
			if raw, err := json.Marshal(section.Fields); err == nil {
				fields = truncate(string(raw), 500)
			}
		}
		write(sectionsSheet, 1, row, section.Name)
		write(sectionsSheet, 2, row, status)
		write(sectionsSheet, 3, row, section.Intent)
		write(sectionsSheet, 4, row, fields)
		row++
	}
	_ = f.SetColWidth(sectionsSheet, "A", "A", 24)
	_ = f.SetColWidth(sectionsSheet, "B", "B", 32)
	_ = f.SetColWidth(sectionsSheet, "C", "C", 16)
	_ = f.SetColWidth(sectionsSheet, "D", "D", 80)

	const findingsSheet = "Findings"
	if _, err := f.NewSheet(findingsSheet); err != nil {
		return nil, err
	}
	for i, h := range []string{"Section", "Severity", "Title", "Message", "Field"} {
		write(findingsSheet, i+1, 1, h)
	}
	row = 2
	findingCount := 0
	for i := range report.Sections {
		section := &report.Sections[i]
		for _, finding := range section.Findings {
			write(findingsSheet, 1, row, section.Name)
			write(findingsSheet, 2, row, string(finding.Severity))
			write(findingsSheet, 3, row, finding.Title)
			write(findingsSheet, 4, row, truncate(finding.Message, 200))
			write(findingsSheet, 5, row, finding.RelatedField)
			row++
			findingCount++
		}
	}
	_ = f.SetColWidth(findingsSheet, "A", "A", 24)
	_ = f.SetColWidth(findingsSheet, "B", "B", 10)
	_ = f.SetColWidth(findingsSheet, "C", "C", 28)
	_ = f.SetColWidth(findingsSheet, "D", "D", 64)
	_ = f.SetColWidth(findingsSheet, "E", "E", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"doc_id", report.DocumentID.String(),
		"sections", len(report.Sections),
		"findings", findingCount,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
