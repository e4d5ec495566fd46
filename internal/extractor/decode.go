package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"sitecheck/internal/domain"
)

// errMalformedOutput marks provider output that is not the expected JSON shape.
var errMalformedOutput = errors.New("malformed provider output")

type lineItemDTO struct {
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice"`
	Amount      *float64 `json:"amount"`
}

type invoiceDTO struct {
	InvoiceNumber *string       `json:"invoiceNumber" validate:"required"`
	Contractor    *string       `json:"contractor"`
	Date          *string       `json:"date"`
	DueDate       *string       `json:"dueDate"`
	LineItems     []lineItemDTO `json:"lineItems" validate:"required,dive"`
	Subtotal      *float64      `json:"subtotal"`
	Tax           *float64      `json:"tax"`
	Total         *float64      `json:"total"`
}

type workOrderDTO struct {
	WorkOrderNumber *string    `json:"workOrderNumber"`
	Crew            []*string  `json:"crew" validate:"required"`
	HoursPerCrew    []*float64 `json:"hoursPerCrew" validate:"required,dive,required,gte=0"`
	Equipment       []*string  `json:"equipment"`
	WorkDescription *string    `json:"workDescription"`
	Date            *string    `json:"date"`
}

type photoDTO struct {
	WorkCompleted      *bool    `json:"workCompleted" validate:"required"`
	CrewVisible        *float64 `json:"crewVisible" validate:"omitempty,gte=0"`
	EquipmentConfirmed *bool    `json:"equipmentConfirmed"`
	EstimatedWorkHours *string  `json:"estimatedWorkHours"`
	WorkScope          *string  `json:"workScope"`
	Confidence         *float64 `json:"confidence" validate:"required,gte=0,lte=100"`
}

// Decoder turns raw provider JSON into validated domain records.
type Decoder struct {
	validate *validator.Validate
}

// NewDecoder creates a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{validate: validator.New()}
}

// Invoice decodes and validates an invoice extraction.
func (d *Decoder) Invoice(raw json.RawMessage) (*domain.InvoiceData, error) {
	var dto invoiceDTO
	if err := d.decode(raw, &dto); err != nil {
		return nil, err
	}

	items := make([]domain.LineItem, 0, len(dto.LineItems))
	for _, li := range dto.LineItems {
		items = append(items, domain.LineItem{
			Description: str(li.Description),
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Amount:      li.Amount,
		})
	}

	return &domain.InvoiceData{
		InvoiceNumber: str(dto.InvoiceNumber),
		Contractor:    str(dto.Contractor),
		Date:          str(dto.Date),
		DueDate:       str(dto.DueDate),
		LineItems:     items,
		Subtotal:      dto.Subtotal,
		Tax:           dto.Tax,
		Total:         dto.Total,
	}, nil
}

// WorkOrder decodes and validates a work order extraction.
func (d *Decoder) WorkOrder(raw json.RawMessage) (*domain.WorkOrderData, error) {
	var dto workOrderDTO
	if err := d.decode(raw, &dto); err != nil {
		return nil, err
	}

	hours := make([]float64, 0, len(dto.HoursPerCrew))
	for _, h := range dto.HoursPerCrew {
		hours = append(hours, *h)
	}

	return &domain.WorkOrderData{
		WorkOrderNumber: str(dto.WorkOrderNumber),
		Crew:            strs(dto.Crew),
		HoursPerCrew:    hours,
		Equipment:       strs(dto.Equipment),
		WorkDescription: str(dto.WorkDescription),
		Date:            str(dto.Date),
	}, nil
}

// Photos decodes and validates a photo analysis.
func (d *Decoder) Photos(raw json.RawMessage) (*domain.PhotoAnalysis, error) {
	var dto photoDTO
	if err := d.decode(raw, &dto); err != nil {
		return nil, err
	}

	pa := &domain.PhotoAnalysis{
		WorkCompleted:      *dto.WorkCompleted,
		EstimatedWorkHours: str(dto.EstimatedWorkHours),
		WorkScope:          str(dto.WorkScope),
		Confidence:         *dto.Confidence,
	}
	if dto.CrewVisible != nil {
		pa.CrewVisible = int(*dto.CrewVisible)
	}
	if dto.EquipmentConfirmed != nil {
		pa.EquipmentConfirmed = *dto.EquipmentConfirmed
	}
	return pa, nil
}

func (d *Decoder) decode(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty payload", errMalformedOutput)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedOutput, err)
	}
	if err := d.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedOutput, err)
	}
	return nil
}

// CleanJSON extracts the JSON object from model text, tolerating code fences
// and surrounding prose.
func CleanJSON(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in output (raw: %s)", errMalformedOutput, truncate(text, 200))
	}
	obj := text[start : end+1]
	if !json.Valid([]byte(obj)) {
		return nil, fmt.Errorf("%w: invalid JSON (raw: %s)", errMalformedOutput, truncate(obj, 200))
	}
	return json.RawMessage(obj), nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func strs(ps []*string) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, str(p))
	}
	return out
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
