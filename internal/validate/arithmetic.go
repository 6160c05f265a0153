package validate

import (
	"fmt"
	"math"

	"github.com/docintel/docintel/internal/llm"
)

// Epsilon absorbs rounding in extracted currency amounts.
const Epsilon = 0.01

func amount(fields map[string]any, key string) float64 {
	v, _ := llm.AmountFromAny(fields[key])
	return v
}

func mismatch(field string, expected, actual float64) *Finding {
	delta := actual - expected
	if math.Abs(delta) <= Epsilon {
		return nil
	}
	return &Finding{
		Title:        "Arithmetic mismatch",
		Message:      fmt.Sprintf("%s is %.2f but computed value is %.2f (difference %.2f)", field, actual, expected, delta),
		Severity:     SeverityError,
		RelatedField: field,
	}
}

// InvoiceArithmeticRule checks subtotal + taxAmount against totalAmount.
type InvoiceArithmeticRule struct{}

func (InvoiceArithmeticRule) Name() string { return "invoice.arithmetic" }

func (InvoiceArithmeticRule) Apply(fields map[string]any) []Finding {
	subtotal := amount(fields, "subtotal")
	tax := amount(fields, "taxAmount")
	total := amount(fields, "totalAmount")
	if subtotal == 0 && total == 0 {
		return nil
	}
	if f := mismatch("totalAmount", subtotal+tax, total); f != nil {
		return []Finding{*f}
	}
	return nil
}

// TableTotalsRule checks each extracted table's stated total against the sum
// of its rows' trailing amount column. Rows without a parsable amount are
// skipped rather than failed.
type TableTotalsRule struct{}

func (TableTotalsRule) Name() string { return "tables.totals" }

func (TableTotalsRule) Apply(fields map[string]any) []Finding {
	tables, ok := fields["tables"].([]any)
	if !ok {
		return nil
	}
	var findings []Finding
	for i, t := range tables {
		table, ok := t.(map[string]any)
		if !ok {
			continue
		}
		stated, statedOK := llm.AmountFromAny(table["totalAmount"])
		if !statedOK || stated == 0 {
			continue
		}
		sum, counted := sumTrailingAmounts(table["rows"])
		if counted == 0 {
			continue
		}
		if f := mismatch(fmt.Sprintf("tables[%d].totalAmount", i), sum, stated); f != nil {
			findings = append(findings, *f)
		}
	}
	return findings
}

func sumTrailingAmounts(rows any) (float64, int) {
	rowList, ok := rows.([]any)
	if !ok {
		return 0, 0
	}
	var sum float64
	counted := 0
	for _, r := range rowList {
		cells, ok := r.([]any)
		if !ok || len(cells) == 0 {
			continue
		}
		if v, ok := llm.AmountFromAny(cells[len(cells)-1]); ok {
			sum += v
			counted++
		}
	}
	return sum, counted
}

// PayrollArithmeticRule cross-checks component sums against stated totals
// and the stated totals against net pay.
type PayrollArithmeticRule struct{}

func (PayrollArithmeticRule) Name() string { return "payroll.arithmetic" }

func (PayrollArithmeticRule) Apply(fields map[string]any) []Finding {
	totals, _ := fields["totals"].(map[string]any)
	if totals == nil {
		return nil
	}
	var findings []Finding

	earningsSum, earningsCount := sumComponents(fields["earnings"])
	statedEarnings := amount(totals, "totalEarnings")
	if earningsCount > 0 {
		if f := mismatch("totals.totalEarnings", earningsSum, statedEarnings); f != nil {
			findings = append(findings, *f)
		}
	}

	deductionsSum, deductionsCount := sumComponents(fields["deductions"])
	statedDeductions := amount(totals, "totalDeductions")
	if deductionsCount > 0 {
		if f := mismatch("totals.totalDeductions", deductionsSum, statedDeductions); f != nil {
			findings = append(findings, *f)
		}
	}

	netPay := amount(totals, "netPay")
	if f := mismatch("totals.netPay", statedEarnings-statedDeductions, netPay); f != nil {
		findings = append(findings, *f)
	}
	return findings
}

func sumComponents(v any) (float64, int) {
	list, ok := v.([]any)
	if !ok {
		return 0, 0
	}
	var sum float64
	counted := 0
	for _, item := range list {
		component, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if a, ok := llm.AmountFromAny(component["amount"]); ok {
			sum += a
			counted++
		}
	}
	return sum, counted
}
