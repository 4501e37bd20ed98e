package receipt

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tesoreria/backend/internal/domain/shared/valueobject"
)

// RawReceipt is a receipt row as fetched from the payment office backend,
// before normalization. Optional descriptive fields may be empty.
type RawReceipt struct {
	Folio        string
	PaymentDate  time.Time
	Concept      string
	Amount       decimal.Decimal
	Currency     string
	Cancelled    bool
	CancelReason string
	StudentName  string
	StudentID    string
	ProgramName  string
	QRPayload    string
}

// RawPaymentEntry is a freshly captured payment, issued at the cash desk.
// It has no cancellation state; a just-issued receipt is always VALID.
type RawPaymentEntry struct {
	Folio       string
	PaidAt      time.Time
	Concept     string
	Amount      decimal.Decimal
	Currency    string
	StudentName string
	StudentID   string
	ProgramName string
	QRPayload   string
}

// CachedSnapshot is a previously mapped receipt recovered from the session
// cache, kept as plain fields so the cache codec stays independent of the
// canonical type.
type CachedSnapshot struct {
	Folio        string          `json:"folio"`
	PaymentDate  time.Time       `json:"payment_date"`
	Concept      string          `json:"concept"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Cancelled    bool            `json:"cancelled"`
	CancelReason string          `json:"cancel_reason"`
	StudentName  string          `json:"student_name"`
	StudentID    string          `json:"student_id"`
	ProgramName  string          `json:"program_name"`
	QRPayload    string          `json:"qr_payload"`
}

// FromRaw maps a backend receipt row to its canonical printable form.
// The conversion is total: every input produces a valid receipt.
func FromRaw(src RawReceipt) *PrintableReceipt {
	status := StatusValid
	reason := ""
	if src.Cancelled {
		status = StatusCancelled
		reason = src.CancelReason
	}
	return build(src.Folio, src.PaymentDate, src.Concept, src.Amount, src.Currency,
		status, reason, src.StudentName, src.StudentID, src.ProgramName, src.QRPayload)
}

// FromPaymentEntry maps a freshly captured payment. The result is always
// VALID; cancellation only exists for receipts that were already issued.
func FromPaymentEntry(src RawPaymentEntry) *PrintableReceipt {
	return build(src.Folio, src.PaidAt, src.Concept, src.Amount, src.Currency,
		StatusValid, "", src.StudentName, src.StudentID, src.ProgramName, src.QRPayload)
}

// FromSnapshot maps a cached snapshot back to the canonical form, applying
// the same defaults as the other mappers so a snapshot written by an older
// version still normalizes.
func FromSnapshot(src CachedSnapshot) *PrintableReceipt {
	status := StatusValid
	reason := ""
	if src.Cancelled {
		status = StatusCancelled
		reason = src.CancelReason
	}
	return build(src.Folio, src.PaymentDate, src.Concept, src.Amount, src.Currency,
		status, reason, src.StudentName, src.StudentID, src.ProgramName, src.QRPayload)
}

// Snapshot converts a canonical receipt into its cacheable form.
func Snapshot(r *PrintableReceipt) CachedSnapshot {
	return CachedSnapshot{
		Folio:        r.Folio,
		PaymentDate:  r.PaymentDate,
		Concept:      r.Concept,
		Amount:       r.Amount.Amount(),
		Currency:     string(r.Amount.Currency()),
		Cancelled:    r.Status == StatusCancelled,
		CancelReason: r.CancelReason,
		StudentName:  r.StudentName,
		StudentID:    r.StudentID,
		ProgramName:  r.ProgramName,
		QRPayload:    r.QRPayload,
	}
}

func build(folio string, date time.Time, concept string, amount decimal.Decimal,
	currency string, status Status, cancelReason string,
	studentName, studentID, programName, qrPayload string) *PrintableReceipt {

	cur := valueobject.Currency(strings.TrimSpace(currency))
	if cur == "" {
		cur = valueobject.DefaultCurrency
	}
	// Negative source amounts are data corruption upstream; the printable
	// amount is never negative.
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	money, err := valueobject.NewMoney(amount, cur)
	if err != nil {
		money = valueobject.Zero(valueobject.DefaultCurrency)
	}

	if status != StatusCancelled {
		cancelReason = ""
	}

	return &PrintableReceipt{
		Folio:        strings.TrimSpace(folio),
		PaymentDate:  date,
		Concept:      textOrPlaceholder(concept),
		Amount:       money,
		Status:       status,
		CancelReason: cancelReason,
		StudentName:  textOrPlaceholder(studentName),
		StudentID:    textOrPlaceholder(studentID),
		ProgramName:  textOrPlaceholder(programName),
		QRPayload:    strings.TrimSpace(qrPayload),
	}
}

func textOrPlaceholder(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return PlaceholderText
	}
	return s
}
