package verification

import (
	"time"

	"github.com/tesoreria/backend/internal/domain/receipt"
)

// VerifyRequest carries a scanned QR payload
type VerifyRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// VerifiedReceipt is the receipt detail attached to VALID and CANCELLED
// outcomes. It is a snapshot of what the authority returned, not a local
// record.
type VerifiedReceipt struct {
	Folio        string    `json:"folio"`
	PaymentDate  time.Time `json:"payment_date"`
	Concept      string    `json:"concept"`
	Amount       string    `json:"amount"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	StatusLabel  string    `json:"status_label"`
	CancelReason string    `json:"cancel_reason,omitempty"`
	StudentName  string    `json:"student_name"`
	ProgramName  string    `json:"program_name"`
}

// VerifyResponse relays the authority's classification of the payload
type VerifyResponse struct {
	Status  string           `json:"status"`
	Message string           `json:"message"`
	Receipt *VerifiedReceipt `json:"receipt,omitempty"`
}

func toVerifyResponse(result *receipt.VerificationResult) *VerifyResponse {
	resp := &VerifyResponse{
		Status:  result.Status.String(),
		Message: result.Message,
	}
	if result.Receipt != nil {
		r := result.Receipt
		resp.Receipt = &VerifiedReceipt{
			Folio:        r.Folio,
			PaymentDate:  r.PaymentDate,
			Concept:      r.Concept,
			Amount:       r.Amount.StringFixed(2),
			Currency:     string(r.Amount.Currency()),
			Status:       r.Status.String(),
			StatusLabel:  r.Status.Label(),
			CancelReason: r.CancelReason,
			StudentName:  r.StudentName,
			ProgramName:  r.ProgramName,
		}
	}
	return resp
}
