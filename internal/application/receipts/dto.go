package receipts

import (
	"time"

	"github.com/tesoreria/backend/internal/domain/receipt"
)

// CreatePaymentRequest captures a payment taken at the cash desk
type CreatePaymentRequest struct {
	Folio       string `json:"folio" binding:"required"`
	PaidAt      string `json:"paid_at" binding:"required"` // RFC 3339
	Concept     string `json:"concept"`
	Amount      string `json:"amount" binding:"required"` // decimal string
	Currency    string `json:"currency"`
	StudentName string `json:"student_name"`
	StudentID   string `json:"student_id"`
	ProgramName string `json:"program_name"`
	QRPayload   string `json:"qr_payload"`
	PaymentType string `json:"payment_type" binding:"required"`
}

// CancelReceiptRequest voids an issued receipt
type CancelReceiptRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListReceiptsRequest narrows the receipt history query
type ListReceiptsRequest struct {
	Query    string `form:"q"`
	DateFrom string `form:"date_from"` // 2006-01-02
	DateTo   string `form:"date_to"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

// ReceiptResponse is the API shape of a printable receipt
type ReceiptResponse struct {
	Folio        string    `json:"folio"`
	PaymentDate  time.Time `json:"payment_date"`
	Concept      string    `json:"concept"`
	Amount       string    `json:"amount"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	StatusLabel  string    `json:"status_label"`
	CancelReason string    `json:"cancel_reason,omitempty"`
	StudentName  string    `json:"student_name"`
	StudentID    string    `json:"student_id"`
	ProgramName  string    `json:"program_name"`
	QRPayload    string    `json:"qr_payload,omitempty"`
}

// DocumentResponse is a rendered PDF ready for download
type DocumentResponse struct {
	Filename string
	PDFData  []byte
}

func toReceiptResponse(r *receipt.PrintableReceipt) *ReceiptResponse {
	return &ReceiptResponse{
		Folio:        r.Folio,
		PaymentDate:  r.PaymentDate,
		Concept:      r.Concept,
		Amount:       r.Amount.StringFixed(2),
		Currency:     string(r.Amount.Currency()),
		Status:       r.Status.String(),
		StatusLabel:  r.Status.Label(),
		CancelReason: r.CancelReason,
		StudentName:  r.StudentName,
		StudentID:    r.StudentID,
		ProgramName:  r.ProgramName,
		QRPayload:    r.QRPayload,
	}
}

func toReceiptResponses(rs []*receipt.PrintableReceipt) []*ReceiptResponse {
	out := make([]*ReceiptResponse, len(rs))
	for i, r := range rs {
		out[i] = toReceiptResponse(r)
	}
	return out
}
