package constants

import (
	"strings"
)

// DocumentType is the canonical classification a pipeline run settles on
// after the detection step. Workflows branch on these exact values.
type DocumentType string

const (
	Invoice        DocumentType = "Invoice"
	Contract       DocumentType = "Contract"
	Proposal       DocumentType = "Proposal"
	SalarySlip     DocumentType = "SalarySlip"
	Report         DocumentType = "Report"
	Resume         DocumentType = "Resume"
	EDI            DocumentType = "EDI"
	Website        DocumentType = "Website"
	OfficeDocument DocumentType = "OfficeDocument"
)

var allDocumentTypes = []DocumentType{
	Invoice,
	Contract,
	Proposal,
	SalarySlip,
	Report,
	Resume,
	EDI,
	Website,
	OfficeDocument,
}

func DocumentTypesAsStrings() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}

// CanonicalizeDocumentType maps a free-form model label onto one of the
// canonical document types. The model tends to answer with phrases like
// "This is an invoice." or "Salary Slip / Payslip", so matching is by
// substring over a lowercased copy, most specific first.
func CanonicalizeDocumentType(input string) (DocumentType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return OfficeDocument, false
	}

	switch {
	case strings.Contains(normalized, "invoice"):
		return Invoice, true
	case strings.Contains(normalized, "contract"), strings.Contains(normalized, "agreement"):
		return Contract, true
	case strings.Contains(normalized, "proposal"):
		return Proposal, true
	case strings.Contains(normalized, "salary"), strings.Contains(normalized, "payroll"), strings.Contains(normalized, "payslip"):
		return SalarySlip, true
	case strings.Contains(normalized, "resume"), strings.Contains(normalized, "curriculum"), strings.Contains(normalized, "cv"):
		return Resume, true
	case strings.Contains(normalized, "edi"), strings.Contains(normalized, "edifact"), strings.Contains(normalized, "interchange"):
		return EDI, true
	case strings.Contains(normalized, "website"), strings.Contains(normalized, "web page"), strings.Contains(normalized, "webpage"):
		return Website, true
	case strings.Contains(normalized, "report"):
		return Report, true
	}

	for _, dt := range allDocumentTypes {
		if normalized == strings.ToLower(string(dt)) {
			return dt, true
		}
	}

	return OfficeDocument, false
}
