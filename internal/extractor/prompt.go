package extractor

import "sitecheck/internal/domain"

const jsonOnly = `
Return ONLY a valid JSON object with no markdown formatting, no code fences and no explanation.
If a field is not visible in the document, use null.`

// InvoicePrompt asks for the billed line items of a contractor invoice.
const InvoicePrompt = `You are a document data extraction assistant. Analyze the provided construction invoice and extract its data into the following JSON structure:
{
  "invoiceNumber": "string",
  "contractor": "string",
  "date": "YYYY-MM-DD",
  "dueDate": "YYYY-MM-DD",
  "lineItems": [
    {"description": "string", "quantity": number, "unitPrice": number, "amount": number}
  ],
  "subtotal": number,
  "tax": number,
  "total": number
}

Extract EVERY line item in the order it appears. Copy descriptions verbatim, including words such as "hours" or "mobilization".
Numbers must be plain JSON numbers without currency symbols or thousands separators.` + jsonOnly

// WorkOrderPrompt asks for crew and equipment details of a work order.
const WorkOrderPrompt = `You are a document data extraction assistant. Analyze the provided work order and extract its data into the following JSON structure:
{
  "workOrderNumber": "string",
  "crew": ["name1", "name2"],
  "hoursPerCrew": [8, 8],
  "equipment": ["equipment1"],
  "workDescription": "string",
  "date": "YYYY-MM-DD"
}

List every crew member by name. "hoursPerCrew" must have exactly one entry per crew member, in the same order, holding the regular hours that person worked.
Use an empty array when no crew or equipment is listed.` + jsonOnly

// PhotoPrompt asks for an assessment of a batch of job-site photographs.
const PhotoPrompt = `You are reviewing construction job-site photographs as evidence for an invoice. Considering all provided photos together, return:
{
  "workCompleted": boolean,
  "crewVisible": number,
  "equipmentConfirmed": boolean,
  "estimatedWorkHours": "X-Y hours",
  "workScope": "description of the work visible",
  "confidence": number
}

"crewVisible" is the number of distinct workers visible. "confidence" is your confidence in this assessment from 0 to 100.` + jsonOnly

// PromptFor returns the extraction prompt for a document kind.
func PromptFor(kind domain.DocumentKind) string {
	switch kind {
	case domain.DocumentKindWorkOrder:
		return WorkOrderPrompt
	case domain.DocumentKindPhoto:
		return PhotoPrompt
	default:
		return InvoicePrompt
	}
}
