package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrTooManyPhotos        = errors.New("too many photos in one submission")
	ErrMissingRequiredInput = errors.New("missing required input")
	ErrExtractionFailed     = errors.New("document extraction failed")
	ErrPersistenceFailed    = errors.New("failed to persist invoice")
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrInvalidStatus        = errors.New("invalid invoice status")
)
