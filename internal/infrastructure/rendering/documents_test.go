package rendering

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesoreria/backend/internal/domain/cashcut"
	"github.com/tesoreria/backend/internal/domain/receipt"
	"github.com/tesoreria/backend/internal/domain/shared/valueobject"
)

func testReceipt() *receipt.PrintableReceipt {
	return receipt.FromRaw(receipt.RawReceipt{
		Folio:       "F-2025-0001",
		PaymentDate: time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		Concept:     "Colegiatura Marzo",
		Amount:      decimal.NewFromFloat(1501.05),
		Currency:    "MXN",
		StudentName: "Ana Torres",
		StudentID:   "A0012345",
		ProgramName: "Ingenieria en Sistemas",
		QRPayload:   "qr-payload-001",
	})
}

func testCashCutReport(t *testing.T) *cashcut.Report {
	t.Helper()

	dr, err := valueobject.NewDateRange(
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	entries := []cashcut.Entry{
		{Receipt: testReceipt(), PaymentTypeCode: "EFECTIVO", BranchID: "norte"},
	}

	result, err := cashcut.Aggregate(cashcut.AggregateInput{
		Entries:     entries,
		Range:       dr,
		BranchScope: "norte",
		Role:        cashcut.RoleContext{Role: cashcut.RoleAdmin},
		GeneratedAt: time.Date(2025, 3, 11, 18, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return result
}

// =============================================================================
// Receipt Documents
// =============================================================================

func TestDocumentRenderer_RenderReceipt(t *testing.T) {
	renderer, err := NewDocumentRenderer()
	require.NoError(t, err)

	t.Run("FilenameUsesFolio", func(t *testing.T) {
		doc, err := renderer.RenderReceipt(testReceipt())
		require.NoError(t, err)

		assert.Equal(t, "recibo_F-2025-0001.pdf", doc.Filename)
	})

	t.Run("ContainsReceiptFields", func(t *testing.T) {
		doc, err := renderer.RenderReceipt(testReceipt())
		require.NoError(t, err)

		html := string(doc.HTML)
		assert.Contains(t, html, "F-2025-0001")
		assert.Contains(t, html, "Ana Torres")
		assert.Contains(t, html, "A0012345")
		assert.Contains(t, html, "Colegiatura Marzo")
		assert.Contains(t, html, "10/03/2025")
		assert.Contains(t, html, "$1,501.05")
		assert.Contains(t, html, "MIL QUINIENTOS UNO PESOS 05/100 M.N.")
		assert.Contains(t, html, "VIGENTE")
		assert.NotContains(t, html, "CANCELADO")
	})

	t.Run("CancelledReceiptShowsBanner", func(t *testing.T) {
		raw := receipt.RawReceipt{
			Folio:        "F-2025-0002",
			PaymentDate:  time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
			Concept:      "Inscripcion",
			Amount:       decimal.NewFromInt(200),
			Cancelled:    true,
			CancelReason: "Pago duplicado",
		}

		doc, err := renderer.RenderReceipt(receipt.FromRaw(raw))
		require.NoError(t, err)

		html := string(doc.HTML)
		assert.Contains(t, html, "CANCELADO")
		assert.Contains(t, html, "Pago duplicado")
	})

	t.Run("DeterministicOutput", func(t *testing.T) {
		first, err := renderer.RenderReceipt(testReceipt())
		require.NoError(t, err)
		second, err := renderer.RenderReceipt(testReceipt())
		require.NoError(t, err)

		assert.Equal(t, first.HTML, second.HTML)
		assert.Equal(t, first.Filename, second.Filename)
	})

	t.Run("NilReceiptFails", func(t *testing.T) {
		_, err := renderer.RenderReceipt(nil)
		assert.Error(t, err)
	})
}

// =============================================================================
// Cash-Cut Documents
// =============================================================================

func TestDocumentRenderer_RenderCashCut(t *testing.T) {
	renderer, err := NewDocumentRenderer()
	require.NoError(t, err)

	t.Run("FilenameUsesDateRange", func(t *testing.T) {
		doc, err := renderer.RenderCashCut(testCashCutReport(t))
		require.NoError(t, err)

		assert.Equal(t, "corte_2025-03-10_a_2025-03-11.pdf", doc.Filename)
	})

	t.Run("ContainsTotals", func(t *testing.T) {
		doc, err := renderer.RenderCashCut(testCashCutReport(t))
		require.NoError(t, err)

		html := string(doc.HTML)
		assert.Contains(t, html, "EFECTIVO")
		assert.Contains(t, html, "$1,501.05")
		assert.Contains(t, html, "MIL QUINIENTOS UNO PESOS 05/100 M.N.")
		assert.Contains(t, html, "10/03/2025 al 11/03/2025")
		assert.Contains(t, html, "norte")
	})

	t.Run("PaymentTypeRowsAreSorted", func(t *testing.T) {
		report := testCashCutReport(t)
		view := buildCashCutView(report)

		for i := 1; i < len(view.TotalRows); i++ {
			assert.Less(t, view.TotalRows[i-1].Code, view.TotalRows[i].Code)
		}
	})

	t.Run("DeterministicAcrossRenders", func(t *testing.T) {
		report := testCashCutReport(t)

		first, err := renderer.RenderCashCut(report)
		require.NoError(t, err)
		second, err := renderer.RenderCashCut(report)
		require.NoError(t, err)

		assert.Equal(t, first.HTML, second.HTML)
	})

	t.Run("ReconciliationSectionShown", func(t *testing.T) {
		report := testCashCutReport(t)
		declared := valueobject.NewMoneyMXNFromFloat(1500)
		report.DeclaredAmount = &declared
		delta := declared.MustSubtract(report.GrandTotal)
		report.Delta = &delta

		doc, err := renderer.RenderCashCut(report)
		require.NoError(t, err)

		html := string(doc.HTML)
		assert.Contains(t, html, "declarado")
		assert.Contains(t, html, "-1.05")
	})

	t.Run("ReconciliationOmittedWithoutDeclaredAmount", func(t *testing.T) {
		doc, err := renderer.RenderCashCut(testCashCutReport(t))
		require.NoError(t, err)

		assert.False(t, strings.Contains(string(doc.HTML), "declarado"))
	})

	t.Run("NilReportFails", func(t *testing.T) {
		_, err := renderer.RenderCashCut(nil)
		assert.Error(t, err)
	})
}
