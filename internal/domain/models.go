package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Invoice is the persisted summary of one verified submission.
type Invoice struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	UserID         uuid.UUID     `db:"user_id" json:"user_id"`
	InvoiceNumber  string        `db:"invoice_number" json:"invoice_number"`
	ContractorName string        `db:"contractor_name" json:"contractor_name"`
	TotalAmount    *float64      `db:"total_amount" json:"total_amount"`
	ClaimedHours   float64       `db:"claimed_hours" json:"claimed_hours"`
	InvoiceDate    string        `db:"invoice_date" json:"invoice_date"`
	DueDate        string        `db:"due_date" json:"due_date"`
	Status         InvoiceStatus `db:"status" json:"status"`
	AIConfidence   int           `db:"ai_confidence" json:"ai_confidence"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// InvoiceAnalysis stores the findings of a verification run against its invoice.
type InvoiceAnalysis struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	InvoiceID       uuid.UUID       `db:"invoice_id" json:"invoice_id"`
	Findings        json.RawMessage `db:"findings" json:"findings"`
	Flags           json.RawMessage `db:"flags" json:"flags"`
	Recommendations json.RawMessage `db:"recommendations" json:"recommendations"`
	ConfidenceScore int             `db:"confidence_score" json:"confidence_score"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// DocumentRecord is the metadata row for one uploaded file.
type DocumentRecord struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	InvoiceID   uuid.UUID    `db:"invoice_id" json:"invoice_id"`
	FileName    string       `db:"file_name" json:"file_name"`
	FileType    DocumentKind `db:"file_type" json:"file_type"`
	FileURL     string       `db:"file_url" json:"file_url"`
	StorageKey  string       `db:"storage_key" json:"-"`
	FileSize    int64        `db:"file_size" json:"file_size"`
	ContentType string       `db:"content_type" json:"content_type"`
	PageCount   int          `db:"page_count" json:"page_count"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// InvoiceStats holds per-user invoice counts by status.
type InvoiceStats struct {
	Total    int `db:"total" json:"total"`
	Pending  int `db:"pending" json:"pending"`
	Verified int `db:"verified" json:"verified"`
	Flagged  int `db:"flagged" json:"flagged"`
	Disputed int `db:"disputed" json:"disputed"`
}

// FlaggedInvoice pairs an invoice with the flags of its latest analysis.
type FlaggedInvoice struct {
	Invoice
	Flags []Flag `json:"flags"`
}
