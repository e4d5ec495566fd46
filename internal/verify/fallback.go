package verify

import "sitecheck/internal/domain"

// Placeholder values carried by fallback evidence.
const (
	FallbackWorkOrderNumber    = "N/A"
	FallbackEstimatedWorkHours = "Unknown"
	FallbackWorkScope          = "No photos provided"
)

// Evidence wraps an input to the rules engine with where it came from.
type Evidence[T any] struct {
	Value      T
	Provenance domain.Provenance
}

// IsFallback reports whether the value is a placeholder for an absent input.
func (e Evidence[T]) IsFallback() bool {
	return e.Provenance == domain.ProvenanceFallback
}

// Extracted wraps a value produced by the extraction adapter.
func Extracted[T any](v T) Evidence[T] {
	return Evidence[T]{Value: v, Provenance: domain.ProvenanceExtracted}
}

// FallbackWorkOrder returns the inert work order used when none was submitted.
// Its date mirrors the invoice date.
func FallbackWorkOrder(invoice *domain.InvoiceData) Evidence[*domain.WorkOrderData] {
	date := ""
	if invoice != nil {
		date = invoice.Date
	}
	return Evidence[*domain.WorkOrderData]{
		Value: &domain.WorkOrderData{
			WorkOrderNumber: FallbackWorkOrderNumber,
			Crew:            []string{},
			HoursPerCrew:    []float64{},
			Equipment:       []string{},
			WorkDescription: "",
			Date:            date,
		},
		Provenance: domain.ProvenanceFallback,
	}
}

// FallbackPhotos returns the inert photo analysis used when no photos were submitted.
func FallbackPhotos() Evidence[*domain.PhotoAnalysis] {
	return Evidence[*domain.PhotoAnalysis]{
		Value: &domain.PhotoAnalysis{
			WorkCompleted:      false,
			CrewVisible:        0,
			EquipmentConfirmed: false,
			EstimatedWorkHours: FallbackEstimatedWorkHours,
			WorkScope:          FallbackWorkScope,
			Confidence:         0,
		},
		Provenance: domain.ProvenanceFallback,
	}
}
