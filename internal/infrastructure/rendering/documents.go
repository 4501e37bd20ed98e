package rendering

import (
	"embed"
	"fmt"
	"sort"
	"time"

	"github.com/tesoreria/backend/internal/domain/cashcut"
	"github.com/tesoreria/backend/internal/domain/receipt"
	"github.com/tesoreria/backend/internal/domain/shared/valueobject"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	receiptTemplateFile = "templates/recibo.html"
	cashCutTemplateFile = "templates/corte.html"
)

// Document is a rendered artifact: deterministic HTML bytes plus the
// filename the download should carry. PDF conversion happens downstream.
type Document struct {
	Filename string
	HTML     []byte
}

// DocumentRenderer turns canonical receipts and cash-cut reports into
// documents. Rendering is pure given its input: the timestamp printed on a
// report comes from the report value, never from the clock.
type DocumentRenderer struct {
	engine          *TemplateEngine
	receiptTemplate string
	cashCutTemplate string
}

// NewDocumentRenderer creates a renderer with the embedded templates
func NewDocumentRenderer() (*DocumentRenderer, error) {
	receiptTpl, err := templateFS.ReadFile(receiptTemplateFile)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to load receipt template", err)
	}
	cashCutTpl, err := templateFS.ReadFile(cashCutTemplateFile)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to load cash-cut template", err)
	}

	return &DocumentRenderer{
		engine:          NewTemplateEngine(),
		receiptTemplate: string(receiptTpl),
		cashCutTemplate: string(cashCutTpl),
	}, nil
}

// ReceiptFilename returns the deterministic download name for a receipt
func ReceiptFilename(folio string) string {
	return fmt.Sprintf("recibo_%s.pdf", folio)
}

// CashCutFilename returns the deterministic download name for a cash cut
func CashCutFilename(dr valueobject.DateRange) string {
	return fmt.Sprintf("corte_%s_a_%s.pdf",
		dr.Start().Format(time.DateOnly), dr.End().Format(time.DateOnly))
}

// RenderReceipt renders a single printable receipt
func (r *DocumentRenderer) RenderReceipt(rec *receipt.PrintableReceipt) (*Document, error) {
	if rec == nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "receipt is nil", nil)
	}

	html, err := r.engine.RenderString("recibo", r.receiptTemplate, rec)
	if err != nil {
		return nil, err
	}

	return &Document{
		Filename: ReceiptFilename(rec.Folio),
		HTML:     []byte(html),
	}, nil
}

// cashCutView is the template-facing shape of a report. Map-backed totals
// are flattened into sorted rows so the output is stable.
type cashCutView struct {
	Report     *cashcut.Report
	TotalRows  []totalRow
	EntryRows  []*cashcut.Entry
	DayRows    []cashcut.DayTotal
	RangeLabel string
}

type totalRow struct {
	Code  string
	Total valueobject.Money
}

// RenderCashCut renders a cash-cut report
func (r *DocumentRenderer) RenderCashCut(report *cashcut.Report) (*Document, error) {
	if report == nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "report is nil", nil)
	}

	view := buildCashCutView(report)

	html, err := r.engine.RenderString("corte", r.cashCutTemplate, view)
	if err != nil {
		return nil, err
	}

	return &Document{
		Filename: CashCutFilename(report.DateRange),
		HTML:     []byte(html),
	}, nil
}

func buildCashCutView(report *cashcut.Report) *cashCutView {
	rows := make([]totalRow, 0, len(report.TotalsByPaymentType))
	for code, total := range report.TotalsByPaymentType {
		rows = append(rows, totalRow{Code: code, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })

	entries := make([]*cashcut.Entry, 0, len(report.Entries))
	for i := range report.Entries {
		entries = append(entries, &report.Entries[i])
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Receipt, entries[j].Receipt
		if !a.PaymentDate.Equal(b.PaymentDate) {
			return a.PaymentDate.Before(b.PaymentDate)
		}
		return a.Folio < b.Folio
	})

	return &cashCutView{
		Report:    report,
		TotalRows: rows,
		EntryRows: entries,
		DayRows:   report.DailyTotals,
		RangeLabel: fmt.Sprintf("%s al %s",
			report.DateRange.Start().Format("02/01/2006"),
			report.DateRange.End().Format("02/01/2006")),
	}
}
