package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tesoreria/backend/internal/domain/cashcut"
	"github.com/tesoreria/backend/internal/domain/receipt"
	"github.com/tesoreria/backend/internal/domain/shared/valueobject"
	"github.com/tesoreria/backend/internal/infrastructure/persistence/models"
)

// GormReceiptRepository implements receipt.Repository and cashcut.EntrySource
// using GORM.
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// Save upserts a receipt. Re-saving the same (branch, folio) pair refreshes
// the stored fields instead of failing, so reprocessed payments stay
// idempotent.
func (r *GormReceiptRepository) Save(ctx context.Context, branchID string, rec *receipt.PrintableReceipt, paymentTypeCode string) error {
	var model models.ReceiptModel
	model.FromDomain(branchID, rec, paymentTypeCode)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "branch_id"}, {Name: "folio"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"payment_date", "concept", "amount", "currency", "status",
				"cancel_reason", "student_name", "student_id", "program_name",
				"qr_payload", "payment_type_code", "updated_at",
			}),
		}).
		Create(&model).Error
}

// FindByFolio finds a receipt by folio within a branch
func (r *GormReceiptRepository) FindByFolio(ctx context.Context, branchID, folio string) (*receipt.PrintableReceipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).
		First(&model, "branch_id = ? AND folio = ?", branchID, folio).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, receipt.ErrFolioNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns receipts matching the filter, newest payment first
func (r *GormReceiptRepository) List(ctx context.Context, filter receipt.ListFilter) ([]*receipt.PrintableReceipt, error) {
	var receiptModels []models.ReceiptModel
	query := r.db.WithContext(ctx).Model(&models.ReceiptModel{})

	if filter.BranchID != "" {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.DateFrom != nil {
		query = query.Where("payment_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("payment_date <= ?", *filter.DateTo)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(folio) LIKE ? OR LOWER(student_name) LIKE ? OR LOWER(concept) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Order("payment_date DESC, folio DESC").Find(&receiptModels).Error; err != nil {
		return nil, err
	}

	receipts := make([]*receipt.PrintableReceipt, len(receiptModels))
	for i := range receiptModels {
		receipts[i] = receiptModels[i].ToDomain()
	}
	return receipts, nil
}

// Cancel voids a receipt. Cancelling an already cancelled receipt just
// replaces the stored reason, matching latest-wins semantics.
func (r *GormReceiptRepository) Cancel(ctx context.Context, branchID, folio, reason string) error {
	result := r.db.WithContext(ctx).
		Model(&models.ReceiptModel{}).
		Where("branch_id = ? AND folio = ?", branchID, folio).
		Updates(map[string]interface{}{
			"status":        receipt.StatusCancelled,
			"cancel_reason": reason,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return receipt.ErrFolioNotFound
	}
	return nil
}

// FetchEntries returns the cash-cut entries for a branch and date range.
// An empty branchID spans every branch. Cancelled receipts are included;
// the aggregator decides what counts.
func (r *GormReceiptRepository) FetchEntries(ctx context.Context, branchID string, dr valueobject.DateRange) ([]cashcut.Entry, error) {
	var receiptModels []models.ReceiptModel
	query := r.db.WithContext(ctx).
		Where("payment_date >= ? AND payment_date < ?", dr.Start(), dr.End().Add(24*time.Hour))

	if branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}

	if err := query.Order("payment_date ASC, folio ASC").Find(&receiptModels).Error; err != nil {
		return nil, err
	}

	entries := make([]cashcut.Entry, len(receiptModels))
	for i := range receiptModels {
		entries[i] = cashcut.Entry{
			Receipt:         receiptModels[i].ToDomain(),
			PaymentTypeCode: receiptModels[i].PaymentTypeCode,
			BranchID:        receiptModels[i].BranchID,
		}
	}
	return entries, nil
}

// Ensure interfaces are implemented
var (
	_ receipt.Repository  = (*GormReceiptRepository)(nil)
	_ cashcut.EntrySource = (*GormReceiptRepository)(nil)
)
