package cashcuts

import (
	"time"

	"github.com/tesoreria/backend/internal/domain/cashcut"
)

// GenerateReportRequest narrows a cash-cut aggregation
type GenerateReportRequest struct {
	From           string `form:"from" binding:"required"` // 2006-01-02
	To             string `form:"to" binding:"required"`
	BranchID       string `form:"branch_id"`
	Query          string `form:"q"`
	DeclaredAmount string `form:"declared_amount"` // counted drawer cash, decimal
}

// EntryRow is one receipt line inside a cash-cut report
type EntryRow struct {
	Folio       string    `json:"folio"`
	PaymentDate time.Time `json:"payment_date"`
	Concept     string    `json:"concept"`
	Amount      string    `json:"amount"`
	PaymentType string    `json:"payment_type"`
	Status      string    `json:"status"`
	BranchID    string    `json:"branch_id"`
}

// DayTotalRow is the aggregated amount for one calendar day
type DayTotalRow struct {
	Day   string `json:"day"` // 2006-01-02
	Total string `json:"total"`
}

// ReportResponse is the API shape of a cash-cut report
type ReportResponse struct {
	From                string            `json:"from"`
	To                  string            `json:"to"`
	BranchScope         string            `json:"branch_scope"`
	Entries             []EntryRow        `json:"entries"`
	TotalsByPaymentType map[string]string `json:"totals_by_payment_type"`
	DailyTotals         []DayTotalRow     `json:"daily_totals"`
	GrandTotal          string            `json:"grand_total"`
	CancelledTotal      string            `json:"cancelled_total"`
	DeclaredAmount      *string           `json:"declared_amount,omitempty"`
	Delta               *string           `json:"delta,omitempty"`
	GeneratedAt         time.Time         `json:"generated_at"`
}

// DocumentResponse is a rendered PDF ready for download
type DocumentResponse struct {
	Filename string
	PDFData  []byte
}

func toReportResponse(report *cashcut.Report) *ReportResponse {
	entries := make([]EntryRow, 0, len(report.Entries))
	for _, e := range report.Entries {
		entries = append(entries, EntryRow{
			Folio:       e.Receipt.Folio,
			PaymentDate: e.Receipt.PaymentDate,
			Concept:     e.Receipt.Concept,
			Amount:      e.Receipt.Amount.StringFixed(2),
			PaymentType: e.PaymentTypeCode,
			Status:      e.Receipt.Status.String(),
			BranchID:    e.BranchID,
		})
	}

	totals := make(map[string]string, len(report.TotalsByPaymentType))
	for code, total := range report.TotalsByPaymentType {
		totals[code] = total.StringFixed(2)
	}

	days := make([]DayTotalRow, 0, len(report.DailyTotals))
	for _, d := range report.DailyTotals {
		days = append(days, DayTotalRow{
			Day:   d.Day.Format(time.DateOnly),
			Total: d.Total.StringFixed(2),
		})
	}

	resp := &ReportResponse{
		From:                report.DateRange.Start().Format(time.DateOnly),
		To:                  report.DateRange.End().Format(time.DateOnly),
		BranchScope:         report.BranchScope,
		Entries:             entries,
		TotalsByPaymentType: totals,
		DailyTotals:         days,
		GrandTotal:          report.GrandTotal.StringFixed(2),
		CancelledTotal:      report.CancelledTotal.StringFixed(2),
		GeneratedAt:         report.GeneratedAt,
	}
	if report.DeclaredAmount != nil {
		declared := report.DeclaredAmount.StringFixed(2)
		resp.DeclaredAmount = &declared
	}
	if report.Delta != nil {
		delta := report.Delta.StringFixed(2)
		resp.Delta = &delta
	}
	return resp
}
