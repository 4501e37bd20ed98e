package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesoreria/backend/internal/domain/receipt"
	"github.com/tesoreria/backend/internal/domain/shared/valueobject"
	"github.com/tesoreria/backend/internal/infrastructure/persistence"
)

func storedReceipt(folio string, paidAt time.Time, amount string, cancelled bool) *receipt.PrintableReceipt {
	return receipt.FromRaw(receipt.RawReceipt{
		Folio:       folio,
		PaymentDate: paidAt,
		Concept:     "Colegiatura marzo",
		Amount:      decimal.RequireFromString(amount),
		Currency:    "MXN",
		Cancelled:   cancelled,
		StudentName: "Ana Torres",
		StudentID:   "A-1001",
		ProgramName: "Primaria",
		QRPayload:   "qr-" + folio,
	})
}

// TestReceiptRepository_Integration exercises the receipt repository against
// a real PostgreSQL database.
func TestReceiptRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormReceiptRepository(testDB.DB)
	ctx := context.Background()

	day1 := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 14, 0, 0, 0, time.UTC)

	t.Run("Save and FindByFolio", func(t *testing.T) {
		rec := storedReceipt("F-2025-0001", day1, "1501.05", false)
		require.NoError(t, repo.Save(ctx, "norte", rec, "EFECTIVO"))

		found, err := repo.FindByFolio(ctx, "norte", "F-2025-0001")
		require.NoError(t, err)
		assert.Equal(t, "F-2025-0001", found.Folio)
		assert.Equal(t, "1501.05", found.Amount.StringFixed(2))
		assert.Equal(t, receipt.StatusValid, found.Status)
		assert.Equal(t, "Ana Torres", found.StudentName)
	})

	t.Run("Save is idempotent per branch and folio", func(t *testing.T) {
		rec := storedReceipt("F-2025-0002", day1, "700.00", false)
		require.NoError(t, repo.Save(ctx, "norte", rec, "TARJETA"))

		// Re-saving the same folio updates rather than duplicating
		updated := storedReceipt("F-2025-0002", day1, "750.00", false)
		require.NoError(t, repo.Save(ctx, "norte", updated, "TARJETA"))

		found, err := repo.FindByFolio(ctx, "norte", "F-2025-0002")
		require.NoError(t, err)
		assert.Equal(t, "750.00", found.Amount.StringFixed(2))

		var count int64
		require.NoError(t, testDB.DB.Table("receipts").
			Where("branch_id = ? AND folio = ?", "norte", "F-2025-0002").
			Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("Same folio in another branch is a separate receipt", func(t *testing.T) {
		rec := storedReceipt("F-2025-0001", day2, "300.00", false)
		require.NoError(t, repo.Save(ctx, "sur", rec, "EFECTIVO"))

		norte, err := repo.FindByFolio(ctx, "norte", "F-2025-0001")
		require.NoError(t, err)
		sur, err := repo.FindByFolio(ctx, "sur", "F-2025-0001")
		require.NoError(t, err)
		assert.NotEqual(t, norte.Amount.StringFixed(2), sur.Amount.StringFixed(2))
	})

	t.Run("FindByFolio unknown folio", func(t *testing.T) {
		_, err := repo.FindByFolio(ctx, "norte", "F-9999-0000")
		assert.ErrorIs(t, err, receipt.ErrFolioNotFound)
	})

	t.Run("Cancel voids the receipt", func(t *testing.T) {
		rec := storedReceipt("F-2025-0003", day2, "450.00", false)
		require.NoError(t, repo.Save(ctx, "norte", rec, "EFECTIVO"))

		require.NoError(t, repo.Cancel(ctx, "norte", "F-2025-0003", "Pago duplicado"))

		found, err := repo.FindByFolio(ctx, "norte", "F-2025-0003")
		require.NoError(t, err)
		assert.Equal(t, receipt.StatusCancelled, found.Status)
		assert.Equal(t, "Pago duplicado", found.CancelReason)
	})

	t.Run("Cancel unknown folio", func(t *testing.T) {
		err := repo.Cancel(ctx, "norte", "F-9999-0000", "whatever")
		assert.ErrorIs(t, err, receipt.ErrFolioNotFound)
	})

	t.Run("List filters by branch and text", func(t *testing.T) {
		all, err := repo.List(ctx, receipt.ListFilter{BranchID: "norte"})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(all), 3)
		for _, r := range all {
			assert.NotEmpty(t, r.Folio)
		}

		byQuery, err := repo.List(ctx, receipt.ListFilter{BranchID: "norte", Query: "f-2025-0003"})
		require.NoError(t, err)
		require.Len(t, byQuery, 1)
		assert.Equal(t, "F-2025-0003", byQuery[0].Folio)
	})

	t.Run("List filters by date range", func(t *testing.T) {
		from := day2.Add(-time.Hour)
		filtered, err := repo.List(ctx, receipt.ListFilter{BranchID: "norte", DateFrom: &from})
		require.NoError(t, err)
		for _, r := range filtered {
			assert.True(t, r.PaymentDate.Equal(day2) || r.PaymentDate.After(day2))
		}
	})

	t.Run("FetchEntries spans the date range inclusively", func(t *testing.T) {
		dr, err := valueobject.NewDateRange(day1, day2)
		require.NoError(t, err)

		entries, err := repo.FetchEntries(ctx, "norte", dr)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(entries), 3)
		for _, e := range entries {
			assert.Equal(t, "norte", e.BranchID)
			assert.NotEmpty(t, e.PaymentTypeCode)
			require.NotNil(t, e.Receipt)
		}
	})

	t.Run("FetchEntries with empty branch spans all branches", func(t *testing.T) {
		dr, err := valueobject.NewDateRange(day1, day2)
		require.NoError(t, err)

		entries, err := repo.FetchEntries(ctx, "", dr)
		require.NoError(t, err)

		branches := map[string]bool{}
		for _, e := range entries {
			branches[e.BranchID] = true
		}
		assert.True(t, branches["norte"])
		assert.True(t, branches["sur"])
	})
}
