package handler

import (
	"sitecheck/internal/domain"
	"sitecheck/internal/service"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"invoice deleted"`
}

// --- Verification Schema (for documentation) ---

// CrewDiscrepancyDoc documents the crew_discrepancy finding.
type CrewDiscrepancyDoc struct {
	Status              string  `json:"status" example:"WARNING"`
	InvoiceClaims       string  `json:"invoiceClaims" example:"40 hours"`
	WorkOrderShows      string  `json:"workOrderShows" example:"2 crew × 20.0 hours = 40 total"`
	Question            string  `json:"question" example:"Is this per-person or total crew hours?"`
	PotentialOvercharge float64 `json:"potentialOvercharge" example:"2000"`
}

// MobilizationFeesDoc documents the mobilization_fees finding.
type MobilizationFeesDoc struct {
	Status              string  `json:"status" example:"REVIEW NEEDED"`
	Claimed             float64 `json:"claimed" example:"300"`
	Question            string  `json:"question" example:"Industry standard is 1 hour total for local jobs"`
	PotentialOvercharge float64 `json:"potentialOvercharge" example:"198"`
}

// PhotoVerificationDoc documents the photo_verification finding.
type PhotoVerificationDoc struct {
	WorkCompleted      bool    `json:"workCompleted" example:"true"`
	CrewVisible        int     `json:"crewVisible" example:"2"`
	EquipmentConfirmed bool    `json:"equipmentConfirmed" example:"true"`
	EstimatedWorkHours string  `json:"estimatedWorkHours" example:"6-8 hours"`
	WorkScope          string  `json:"workScope" example:"Drywall installation on second floor"`
	Confidence         float64 `json:"confidence" example:"90"`
}

// FindingsDoc documents the findings object. Absent findings are omitted.
type FindingsDoc struct {
	CrewDiscrepancy   *CrewDiscrepancyDoc   `json:"crewDiscrepancy,omitempty"`
	MobilizationFees  *MobilizationFeesDoc  `json:"mobilizationFees,omitempty"`
	PhotoVerification *PhotoVerificationDoc `json:"photoVerification"`
}

// VerificationDoc documents the verdict returned by POST /verify.
type VerificationDoc struct {
	Status          string      `json:"status" example:"flagged"`
	Confidence      int         `json:"confidence" example:"77"`
	Findings        FindingsDoc `json:"findings"`
	Flags           []string    `json:"flags" example:"crew_hour_discrepancy"`
	Recommendations []string    `json:"recommendations" example:"Request clarification on hourly billing structure"`
	Evidence        EvidenceDoc `json:"evidence"`
}

// EvidenceDoc documents where the optional inputs came from.
type EvidenceDoc struct {
	WorkOrder string `json:"workOrder" example:"extracted"`
	Photos    string `json:"photos" example:"fallback"`
}

// VerifyResponseDoc documents the data of a successful POST /verify.
type VerifyResponseDoc struct {
	Invoice      domain.Invoice         `json:"invoice"`
	Verification VerificationDoc        `json:"verification"`
	Persistence  service.PersistOutcome `json:"persistence"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
