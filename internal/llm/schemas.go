package llm

import "github.com/docintel/docintel/internal/retrieve"

// The schema catalog. Each schema pairs retrieval intents with a reply
// template; instructions always demand JSON only so the tolerant parser has
// a fair chance even when the model wraps the reply in prose.

const jsonOnly = "Respond with JSON only, no prose and no markdown fences. Use null for values not present in the document."

func DocTypeSchema() Schema {
	return Schema{
		Name: "doctype.detect",
		Intents: []retrieve.Intent{
			{Name: "opening", Query: "document title heading type subject first page"},
		},
		Instructions: `Classify this document. Choose the single best label from:
invoice, contract, proposal, salary slip, report, resume, edi, website, office document.

Reply exactly as:
{"documentType": "<label>", "confidence": <0-1>}

` + jsonOnly,
		RequiredFields: []string{"documentType"},
	}
}

func InvoiceFinancialsSchema() Schema {
	return Schema{
		Name: "invoice.financials",
		Intents: []retrieve.Intent{
			{Name: "totals", Query: "invoice number date total amount subtotal tax grand total"},
			{Name: "parties", Query: "bill to vendor supplier customer billing address"},
		},
		Instructions: `Extract the invoice's key financial fields.

Reply exactly as:
{
  "invoiceNumber": "...",
  "invoiceDate": "...",
  "dueDate": "...",
  "vendorName": "...",
  "customerName": "...",
  "subtotal": 0,
  "taxAmount": 0,
  "totalAmount": 0,
  "currency": "..."
}

` + jsonOnly,
		ArithmeticFields: []string{"subtotal", "taxAmount", "totalAmount"},
		RequiredFields:   []string{"invoiceNumber", "totalAmount"},
	}
}

func LineItemTablesSchema() Schema {
	return Schema{
		Name: "invoice.tables",
		Intents: []retrieve.Intent{
			{Name: "line_items", Query: "item description quantity unit price amount line items table"},
		},
		Instructions: `Extract every line-item table in the document.

Reply exactly as:
{
  "tables": [
    {
      "tableName": "...",
      "headers": ["..."],
      "rows": [["..."]],
      "totalAmount": 0,
      "currency": "..."
    }
  ]
}

Each row must have the same number of cells as there are headers. Copy values verbatim from the document; never invent rows.

` + jsonOnly,
		ArithmeticFields: []string{"totalAmount"},
		RequiredFields:   []string{"tables"},
	}
}

func PaymentTermsSchema() Schema {
	return Schema{
		Name: "invoice.payment_terms",
		Intents: []retrieve.Intent{
			{Name: "terms", Query: "payment terms due date net 30 bank account remittance late fee"},
		},
		Instructions: `Extract the payment terms.

Reply exactly as:
{
  "paymentTerms": "...",
  "dueDate": "...",
  "paymentMethod": "...",
  "bankDetails": "...",
  "lateFeePolicy": "..."
}

` + jsonOnly,
	}
}

func RisksSchema() Schema {
	return Schema{
		Name: "document.risks",
		Intents: []retrieve.Intent{
			{Name: "risks", Query: "penalty liability risk late payment dispute breach indemnity"},
		},
		Instructions: `Identify risks, unusual clauses, or red flags in this document.

Reply exactly as:
{
  "risks": [
    {"risk": "...", "severity": "high|medium|low", "detail": "..."}
  ]
}

` + jsonOnly,
		RequiredFields: []string{"risks"},
	}
}

func ContractSchema() Schema {
	return Schema{
		Name: "contract.comprehensive",
		Intents: []retrieve.Intent{
			{Name: "parties_dates", Query: "parties agreement between effective date term duration"},
			{Name: "money", Query: "payment fees compensation amount consideration"},
			{Name: "termination", Query: "termination notice breach renewal obligations"},
			{Name: "clauses", Query: "confidentiality indemnification liability dispute governing law force majeure"},
		},
		ContextBudget: 9000,
		Instructions: `Analyze the contract's structure and clauses.

Reply exactly as:
{
  "parties": ["..."],
  "effectiveDate": "...",
  "expirationDate": "...",
  "contractValue": 0,
  "currency": "...",
  "paymentTerms": "...",
  "keyObligations": ["..."],
  "terminationClauses": ["..."],
  "renewalTerms": "...",
  "keyClauses": [{"clause": "...", "summary": "..."}],
  "missingClauses": ["..."],
  "improvements": ["..."],
  "negotiationPoints": ["..."],
  "risks": [{"risk": "...", "severity": "high|medium|low"}]
}

missingClauses lists standard protections the contract lacks (confidentiality,
indemnification, limitation of liability, dispute resolution, governing law,
force majeure). negotiationPoints are terms the weaker party should push back on.

` + jsonOnly,
		ArithmeticFields: []string{"contractValue"},
		RequiredFields:   []string{"parties"},
	}
}

func PayrollSchema() Schema {
	return Schema{
		Name: "payroll.comprehensive",
		Intents: []retrieve.Intent{
			{Name: "earnings", Query: "basic salary hra allowance earnings gross pay"},
			{Name: "deductions", Query: "deductions tax provident fund insurance net pay"},
		},
		Instructions: `Extract this salary slip completely.

Reply exactly as:
{
  "employeeName": "...",
  "employeeId": "...",
  "payPeriod": "...",
  "earnings": [{"component": "...", "amount": 0}],
  "deductions": [{"component": "...", "amount": 0}],
  "totals": {
    "totalEarnings": 0,
    "totalDeductions": 0,
    "netPay": 0
  }
}

List every earning and deduction line separately with its exact amount.

` + jsonOnly,
		ArithmeticFields: []string{"amount", "totalEarnings", "totalDeductions", "netPay"},
		RequiredFields:   []string{"earnings", "deductions", "totals"},
	}
}

func ResumeSchema() Schema {
	return Schema{
		Name: "resume.ats",
		Intents: []retrieve.Intent{
			{Name: "profile", Query: "name email phone summary objective"},
			{Name: "experience", Query: "work experience employment history company role years"},
			{Name: "skills", Query: "skills technologies education certification"},
		},
		Instructions: `Evaluate this resume for applicant-tracking purposes.

Reply exactly as:
{
  "candidateName": "...",
  "email": "...",
  "phone": "...",
  "totalYearsExperience": 0,
  "skills": ["..."],
  "education": ["..."],
  "recentRoles": [{"title": "...", "company": "...", "duration": "..."}],
  "atsScore": 0,
  "atsBreakdown": {
    "keyword": 0,
    "format": 0,
    "skills": 0,
    "experience": 0,
    "education": 0
  },
  "strengths": ["..."],
  "improvements": ["..."],
  "recommendations": ["..."]
}

Each atsBreakdown component is 0-20; atsScore is their sum (0-100).

` + jsonOnly,
		RequiredFields: []string{"candidateName", "atsScore", "atsBreakdown"},
	}
}

func EDIFieldsSchema() Schema {
	return Schema{
		Name: "edi.fields",
		Intents: []retrieve.Intent{
			{Name: "header", Query: "UNB UNH BGM sender receiver message reference"},
		},
		Instructions: `Extract the key business fields from this EDI interchange.

Reply exactly as:
{
  "senderId": "...",
  "receiverId": "...",
  "messageType": "...",
  "documentNumber": "...",
  "vesselOrCarrier": "...",
  "portOfLoading": "...",
  "portOfDischarge": "...",
  "containerCount": 0
}

` + jsonOnly,
		RequiredFields: []string{"messageType"},
	}
}

func WebsiteSEOSchema() Schema {
	return Schema{
		Name: "website.seo",
		Intents: []retrieve.Intent{
			{Name: "content", Query: "main heading product service description about"},
		},
		Instructions: `Analyze this web page's content for search optimization.

Reply exactly as:
{
  "primaryTopic": "...",
  "targetKeywords": ["..."],
  "contentQuality": "high|medium|low",
  "callToAction": "...",
  "seoIssues": ["..."],
  "recommendations": ["..."]
}

` + jsonOnly,
		RequiredFields: []string{"primaryTopic"},
	}
}

func InsightsSchema() Schema {
	return Schema{
		Name: "generic.insights",
		Intents: []retrieve.Intent{
			{Name: "substance", Query: "key findings conclusions important figures decisions"},
		},
		Instructions: `List the most important insights from this document.

Reply exactly as:
{"insights": ["..."]}

` + jsonOnly,
		RequiredFields: []string{"insights"},
	}
}

func ActionItemsSchema() Schema {
	return Schema{
		Name: "generic.action_items",
		Intents: []retrieve.Intent{
			{Name: "actions", Query: "action required next steps deadline follow up deliverable"},
		},
		Instructions: `List concrete action items this document calls for.

Reply exactly as:
{"actionItems": [{"action": "...", "owner": "...", "deadline": "..."}]}

` + jsonOnly,
		RequiredFields: []string{"actionItems"},
	}
}

func SummarySchema() Schema {
	return Schema{
		Name: "generic.summary",
		Intents: []retrieve.Intent{
			{Name: "overview", Query: "purpose overview summary introduction conclusion"},
		},
		Instructions: `Summarize this document in 3-5 sentences.

Reply exactly as:
{"summary": "..."}

` + jsonOnly,
		RequiredFields: []string{"summary"},
	}
}
