package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tesoreria/backend/internal/domain/receipt"
	"github.com/tesoreria/backend/internal/domain/shared/valueobject"
)

// ReceiptModel is the persistence model for issued receipts. The folio is
// unique within a branch, not globally.
type ReceiptModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
	BranchID        string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_receipt_branch_folio,priority:1"`
	Folio           string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_receipt_branch_folio,priority:2"`
	PaymentDate     time.Time       `gorm:"not null;index"`
	Concept         string          `gorm:"type:varchar(300);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'MXN'"`
	Status          receipt.Status  `gorm:"type:varchar(20);not null;default:'VALID';index"`
	CancelReason    string          `gorm:"type:varchar(500)"`
	StudentName     string          `gorm:"type:varchar(200);not null"`
	StudentID       string          `gorm:"type:varchar(50);not null;index"`
	ProgramName     string          `gorm:"type:varchar(200);not null"`
	QRPayload       string          `gorm:"type:text"`
	PaymentTypeCode string          `gorm:"type:varchar(30);not null;index"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the persistence model to a printable receipt.
func (m *ReceiptModel) ToDomain() *receipt.PrintableReceipt {
	amount, err := valueobject.NewMoney(m.Amount, valueobject.Currency(m.Currency))
	if err != nil {
		amount = valueobject.ZeroMXN()
	}

	return &receipt.PrintableReceipt{
		Folio:        m.Folio,
		PaymentDate:  m.PaymentDate,
		Concept:      m.Concept,
		Amount:       amount,
		Status:       m.Status,
		CancelReason: m.CancelReason,
		StudentName:  m.StudentName,
		StudentID:    m.StudentID,
		ProgramName:  m.ProgramName,
		QRPayload:    m.QRPayload,
	}
}

// FromDomain populates the persistence model from a printable receipt.
func (m *ReceiptModel) FromDomain(branchID string, r *receipt.PrintableReceipt, paymentTypeCode string) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.BranchID = branchID
	m.Folio = r.Folio
	m.PaymentDate = r.PaymentDate
	m.Concept = r.Concept
	m.Amount = r.Amount.Amount()
	m.Currency = string(r.Amount.Currency())
	m.Status = r.Status
	m.CancelReason = r.CancelReason
	m.StudentName = r.StudentName
	m.StudentID = r.StudentID
	m.ProgramName = r.ProgramName
	m.QRPayload = r.QRPayload
	m.PaymentTypeCode = paymentTypeCode
}
