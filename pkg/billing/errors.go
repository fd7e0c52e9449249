package billing

import "errors"

// Common errors returned by the billing package.
var (
	// ErrInvalidInvoiceID is returned when an invoice has a non-positive id.
	ErrInvalidInvoiceID = errors.New("invalid invoice id: must be positive")

	// ErrInvalidCreateDate is returned when an invoice has a zero create date.
	ErrInvalidCreateDate = errors.New("invalid create date: must not be zero")

	// ErrInvalidTypeCode is returned when an invoice carries an unknown type code.
	ErrInvalidTypeCode = errors.New("invalid type code: must be NEW, RECURRING, CREDIT or ONE-TIME-CHARGE")

	// ErrMalformedJSON is returned when a JSONL line cannot be parsed.
	ErrMalformedJSON = errors.New("malformed JSON line")

	// ErrFileTooLarge is returned when a file exceeds the maximum size limit.
	ErrFileTooLarge = errors.New("file size exceeds maximum limit")
)
