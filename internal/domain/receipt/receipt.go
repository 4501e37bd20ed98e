package receipt

import (
	"context"
	"time"

	"github.com/tesoreria/backend/internal/domain/shared"
	"github.com/tesoreria/backend/internal/domain/shared/valueobject"
)

// Status represents the lifecycle state of an issued receipt
type Status string

const (
	StatusValid     Status = "VALID"     // Issued and countable
	StatusCancelled Status = "CANCELLED" // Voided, kept for audit
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusValid, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Label returns the Spanish display label used on printed documents.
func (s Status) Label() string {
	if s == StatusCancelled {
		return "CANCELADO"
	}
	return "VIGENTE"
}

// PlaceholderText substitutes missing descriptive fields on printed receipts.
const PlaceholderText = "—"

// PrintableReceipt is the canonical, print-ready view of an issued receipt.
// Instances are produced by the mapper functions in this package and are
// treated as immutable afterwards.
type PrintableReceipt struct {
	Folio        string             `json:"folio"`
	PaymentDate  time.Time          `json:"payment_date"`
	Concept      string             `json:"concept"`
	Amount       valueobject.Money  `json:"amount"`
	Status       Status             `json:"status"`
	CancelReason string             `json:"cancel_reason,omitempty"`
	StudentName  string             `json:"student_name"`
	StudentID    string             `json:"student_id"`
	ProgramName  string             `json:"program_name"`
	QRPayload    string             `json:"qr_payload,omitempty"`
}

// IsCancelled reports whether the receipt has been voided.
func (r *PrintableReceipt) IsCancelled() bool {
	return r.Status == StatusCancelled
}

// HasQR reports whether a verification payload is attached.
func (r *PrintableReceipt) HasQR() bool {
	return r.QRPayload != ""
}

// ListFilter narrows historical receipt queries.
type ListFilter struct {
	Query    string     // free text: folio, student name, concept
	DateFrom *time.Time
	DateTo   *time.Time
	BranchID string
	Limit    int
	Offset   int
}

// Repository is the persistence port for issued receipts
type Repository interface {
	Save(ctx context.Context, branchID string, r *PrintableReceipt, paymentTypeCode string) error
	FindByFolio(ctx context.Context, branchID, folio string) (*PrintableReceipt, error)
	List(ctx context.Context, filter ListFilter) ([]*PrintableReceipt, error)
	Cancel(ctx context.Context, branchID, folio, reason string) error
}

// ErrFolioNotFound is returned when no receipt matches the requested folio.
var ErrFolioNotFound = shared.NewDomainError(shared.CodeNotFound, "Receipt folio not found")
