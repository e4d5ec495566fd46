package domain

// Document is one uploaded file handed to the extraction adapter.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
	// PageCount is the number of pages of a PDF; 0 for images.
	PageCount int
}

// Size returns the document length in bytes.
func (d Document) Size() int64 {
	return int64(len(d.Data))
}

// LineItem is one billed row on an invoice. Numeric fields are nil when the
// extractor could not read them.
type LineItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice"`
	Amount      *float64 `json:"amount"`
}

// InvoiceData is the structured content of a contractor invoice.
type InvoiceData struct {
	InvoiceNumber string     `json:"invoiceNumber"`
	Contractor    string     `json:"contractor"`
	Date          string     `json:"date"`
	DueDate       string     `json:"dueDate"`
	LineItems     []LineItem `json:"lineItems"`
	Subtotal      *float64   `json:"subtotal"`
	Tax           *float64   `json:"tax"`
	Total         *float64   `json:"total"`
}

// ClaimedHours returns the quantity of the first line item, or 0.
func (d *InvoiceData) ClaimedHours() float64 {
	if len(d.LineItems) == 0 {
		return 0
	}
	return Float(d.LineItems[0].Quantity)
}

// WorkOrderData is the structured content of a work order. HoursPerCrew is
// index-aligned with Crew.
type WorkOrderData struct {
	WorkOrderNumber string    `json:"workOrderNumber"`
	Crew            []string  `json:"crew"`
	HoursPerCrew    []float64 `json:"hoursPerCrew"`
	Equipment       []string  `json:"equipment"`
	WorkDescription string    `json:"workDescription"`
	Date            string    `json:"date"`
}

// PhotoAnalysis summarizes what a batch of job-site photos shows.
type PhotoAnalysis struct {
	WorkCompleted      bool    `json:"workCompleted"`
	CrewVisible        int     `json:"crewVisible"`
	EquipmentConfirmed bool    `json:"equipmentConfirmed"`
	EstimatedWorkHours string  `json:"estimatedWorkHours"`
	WorkScope          string  `json:"workScope"`
	Confidence         float64 `json:"confidence"`
}

// Float dereferences an optional number, treating nil as 0.
func Float(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 {
	return &v
}
