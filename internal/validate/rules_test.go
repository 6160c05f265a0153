package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docintel/docintel/internal/llm"
)

func TestRunnerSkipsFailedParse(t *testing.T) {
	runner := NewRunner(nil)
	result := &llm.Result{SchemaName: "invoice.financials", ParseSucceeded: false}

	findings := runner.Run(result, []Rule{InvoiceArithmeticRule{}})
	assert.Nil(t, findings)

	findings = runner.Run(nil, []Rule{InvoiceArithmeticRule{}})
	assert.Nil(t, findings)
}

func TestInvoiceArithmeticConsistentTotals(t *testing.T) {
	fields := map[string]any{
		"subtotal":    20.0,
		"taxAmount":   2.0,
		"totalAmount": 22.0,
	}
	findings := InvoiceArithmeticRule{}.Apply(fields)
	assert.Empty(t, findings)

	// Re-running on the same data never produces new findings.
	assert.Empty(t, InvoiceArithmeticRule{}.Apply(fields))
}

func TestInvoiceArithmeticMismatchCarriesDelta(t *testing.T) {
	fields := map[string]any{
		"subtotal":    20.0,
		"taxAmount":   2.0,
		"totalAmount": 25.0,
	}
	findings := InvoiceArithmeticRule{}.Apply(fields)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityError, findings[0].Severity)
	assert.Equal(t, "totalAmount", findings[0].RelatedField)
	assert.Contains(t, findings[0].Message, "3.00")
}

func TestInvoiceArithmeticWithinEpsilon(t *testing.T) {
	fields := map[string]any{
		"subtotal":    10.005,
		"taxAmount":   0.0,
		"totalAmount": 10.0,
	}
	assert.Empty(t, InvoiceArithmeticRule{}.Apply(fields))
}

func TestInvoiceArithmeticAllZeroSkipped(t *testing.T) {
	fields := map[string]any{"subtotal": 0.0, "taxAmount": 0.0, "totalAmount": 0.0}
	assert.Empty(t, InvoiceArithmeticRule{}.Apply(fields))
}

func TestTableTotalsRule(t *testing.T) {
	fields := map[string]any{
		"tables": []any{
			map[string]any{
				"tableName":   "Items",
				"headers":     []any{"Item", "Qty", "Amount"},
				"rows":        []any{[]any{"Widget", "2", "10.00"}, []any{"Bolt", "4", "12.00"}},
				"totalAmount": 25.0,
			},
		},
	}
	findings := TableTotalsRule{}.Apply(fields)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "3.00")
	assert.Equal(t, "tables[0].totalAmount", findings[0].RelatedField)

	fields["tables"].([]any)[0].(map[string]any)["totalAmount"] = 22.0
	assert.Empty(t, TableTotalsRule{}.Apply(fields))
}

func TestTableTotalsSkipsUnparsableRows(t *testing.T) {
	fields := map[string]any{
		"tables": []any{
			map[string]any{
				"rows":        []any{[]any{"Widget", "see note"}, []any{"Bolt", "5.00"}},
				"totalAmount": 5.0,
			},
		},
	}
	assert.Empty(t, TableTotalsRule{}.Apply(fields))
}

func TestPayrollArithmetic(t *testing.T) {
	fields := map[string]any{
		"earnings": []any{
			map[string]any{"component": "Basic", "amount": 3000.0},
			map[string]any{"component": "HRA", "amount": 1000.0},
		},
		"deductions": []any{
			map[string]any{"component": "Tax", "amount": 500.0},
		},
		"totals": map[string]any{
			"totalEarnings":   4000.0,
			"totalDeductions": 500.0,
			"netPay":          3500.0,
		},
	}
	assert.Empty(t, PayrollArithmeticRule{}.Apply(fields))

	fields["totals"].(map[string]any)["netPay"] = 3600.0
	findings := PayrollArithmeticRule{}.Apply(fields)
	require.Len(t, findings, 1)
	assert.Equal(t, "totals.netPay", findings[0].RelatedField)
	assert.Contains(t, findings[0].Message, "100.00")
}

func TestPayrollArithmeticComponentMismatch(t *testing.T) {
	fields := map[string]any{
		"earnings": []any{map[string]any{"component": "Basic", "amount": 3000.0}},
		"totals": map[string]any{
			"totalEarnings":   3100.0,
			"totalDeductions": 0.0,
			"netPay":          3100.0,
		},
	}
	findings := PayrollArithmeticRule{}.Apply(fields)
	require.Len(t, findings, 1)
	assert.Equal(t, "totals.totalEarnings", findings[0].RelatedField)
}

func TestPlaceholderRowRuleDiscards(t *testing.T) {
	fields := map[string]any{
		"tables": []any{
			map[string]any{
				"rows": []any{
					[]any{"Product A", "1", "10.00"},
					[]any{"Real Widget", "2", "20.00"},
					[]any{"sample", "1", "5.00"},
				},
			},
		},
	}
	findings := PlaceholderRowRule{}.Apply(fields)
	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.Equal(t, SeverityWarning, f.Severity)
	}

	rows := fields["tables"].([]any)[0].(map[string]any)["rows"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "Real Widget", rows[0].([]any)[0])
}

func TestRequiredFieldsRule(t *testing.T) {
	rule, err := NewRequiredFieldsRule([]string{"invoiceNumber", "totalAmount"})
	require.NoError(t, err)

	findings := rule.Apply(map[string]any{"invoiceNumber": "INV-1", "totalAmount": 10.0})
	assert.Empty(t, findings)

	findings = rule.Apply(map[string]any{"totalAmount": 10.0})
	require.Len(t, findings, 1)
	assert.Equal(t, "invoiceNumber", findings[0].RelatedField)

	findings = rule.Apply(map[string]any{"invoiceNumber": "  ", "totalAmount": nil})
	require.Len(t, findings, 2)
}

func TestRunnerAppliesRulesInOrder(t *testing.T) {
	rule, err := NewRequiredFieldsRule([]string{"totalAmount"})
	require.NoError(t, err)

	result := &llm.Result{
		SchemaName:     "invoice.financials",
		ParseSucceeded: true,
		Fields: map[string]any{
			"subtotal":    10.0,
			"taxAmount":   1.0,
			"totalAmount": 12.0,
		},
	}
	findings := NewRunner(nil).Run(result, []Rule{rule, InvoiceArithmeticRule{}})
	require.Len(t, findings, 1)
	assert.Equal(t, "Arithmetic mismatch", findings[0].Title)
}
