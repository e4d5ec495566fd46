package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// DocumentKind identifies which role a document plays in a submission.
type DocumentKind string

const (
	DocumentKindInvoice   DocumentKind = "invoice"
	DocumentKindWorkOrder DocumentKind = "work_order"
	DocumentKindPhoto     DocumentKind = "photo"
)

// StorageLabel returns the short label used inside object storage keys.
func (k DocumentKind) StorageLabel() string {
	switch k {
	case DocumentKindWorkOrder:
		return "workorder"
	default:
		return string(k)
	}
}

// AcceptsFileType reports whether a document of this kind may be of the given type.
// Photos must be images; invoices and work orders may also be PDFs.
func (k DocumentKind) AcceptsFileType(ft FileType) bool {
	if k == DocumentKindPhoto {
		return ft == FileTypeJPG || ft == FileTypePNG
	}
	_, ok := AllowedFileTypes[ft]
	return ok
}

// InvoiceStatus is the persisted verification state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = "pending"
	InvoiceStatusVerified InvoiceStatus = "verified"
	InvoiceStatusFlagged  InvoiceStatus = "flagged"
	InvoiceStatusDisputed InvoiceStatus = "disputed"
)

// ValidInvoiceStatuses lists every status a stored invoice can carry.
var ValidInvoiceStatuses = map[InvoiceStatus]bool{
	InvoiceStatusPending:  true,
	InvoiceStatusVerified: true,
	InvoiceStatusFlagged:  true,
	InvoiceStatusDisputed: true,
}

// VerificationStatus is the three-way verdict produced by the scorer.
type VerificationStatus string

const (
	VerificationVerified VerificationStatus = "verified"
	VerificationFlagged  VerificationStatus = "flagged"
	VerificationDisputed VerificationStatus = "disputed"
)

// InvoiceStatus converts a verdict to the persisted invoice status.
func (s VerificationStatus) InvoiceStatus() InvoiceStatus {
	return InvoiceStatus(s)
}

// Flag is a short machine-readable marker that a rule triggered.
type Flag string

const (
	FlagCrewHourDiscrepancy  Flag = "crew_hour_discrepancy"
	FlagHighMobilizationFees Flag = "high_mobilization_fees"
)

// Provenance records whether evidence came from a real document or a placeholder.
type Provenance string

const (
	ProvenanceExtracted Provenance = "extracted"
	ProvenanceFallback  Provenance = "fallback"
)
