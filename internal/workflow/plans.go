package workflow

import (
	"github.com/docintel/docintel/constants"
	"github.com/docintel/docintel/internal/llm"
	"github.com/docintel/docintel/internal/validate"
)

// sectionSpec binds one extraction schema to the deterministic rules that
// vet its output.
type sectionSpec struct {
	schema llm.Schema
	rules  []validate.Rule
}

// planFor selects the extraction plan for a document type. Every schema's
// required fields get a presence rule on top of the type-specific checks.
func planFor(docType constants.DocumentType) ([]sectionSpec, error) {
	var specs []sectionSpec
	switch docType {
	case constants.Invoice:
		specs = []sectionSpec{
			{schema: llm.InvoiceFinancialsSchema(), rules: []validate.Rule{validate.InvoiceArithmeticRule{}}},
			{schema: llm.LineItemTablesSchema(), rules: []validate.Rule{validate.PlaceholderRowRule{}, validate.TableTotalsRule{}}},
			{schema: llm.PaymentTermsSchema()},
			{schema: llm.RisksSchema()},
			{schema: llm.SummarySchema()},
		}
	case constants.Contract:
		specs = []sectionSpec{
			{schema: llm.ContractSchema()},
			{schema: llm.RisksSchema()},
			{schema: llm.SummarySchema()},
		}
	case constants.SalarySlip:
		specs = []sectionSpec{
			{schema: llm.PayrollSchema(), rules: []validate.Rule{validate.PayrollArithmeticRule{}}},
		}
	case constants.Resume:
		specs = []sectionSpec{
			{schema: llm.ResumeSchema()},
		}
	case constants.EDI:
		specs = []sectionSpec{
			{schema: llm.EDIFieldsSchema()},
		}
	case constants.Website:
		specs = []sectionSpec{
			{schema: llm.WebsiteSEOSchema()},
		}
	default: // Proposal, Report, OfficeDocument
		specs = []sectionSpec{
			{schema: llm.SummarySchema()},
			{schema: llm.InsightsSchema()},
			{schema: llm.ActionItemsSchema()},
			{schema: llm.RisksSchema()},
		}
	}

	for i := range specs {
		if required := specs[i].schema.RequiredFields; len(required) > 0 {
			rule, err := validate.NewRequiredFieldsRule(required)
			if err != nil {
				return nil, err
			}
			specs[i].rules = append(specs[i].rules, rule)
		}
	}
	return specs, nil
}
