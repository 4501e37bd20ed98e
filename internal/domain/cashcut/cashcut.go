package cashcut

import (
	"context"
	"time"

	"github.com/tesoreria/backend/internal/domain/receipt"
	"github.com/tesoreria/backend/internal/domain/shared/valueobject"
)

// Role represents an operator role for branch scoping purposes
type Role string

const (
	RoleAdmin   Role = "ADMIN"   // Sees every branch
	RoleCashier Role = "CAJERO"  // Pinned to one branch
	RoleAuditor Role = "AUDITOR" // Pinned to one branch, read only
)

// IsValid checks if the role is a valid Role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCashier, RoleAuditor:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// IsAdmin reports whether the role may aggregate across branches.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// RoleContext carries the operator's role and assigned branch as decoded
// from the request's claims. For non-admin roles BranchID is mandatory.
type RoleContext struct {
	Role     Role
	BranchID string
}

// Entry is a printable receipt augmented with the grouping attributes a
// cash cut needs. Entries are built transiently per aggregation request
// and never persisted in this form.
type Entry struct {
	Receipt         *receipt.PrintableReceipt
	PaymentTypeCode string
	BranchID        string
}

// DayTotal is the aggregated amount of VALID entries for one calendar day.
type DayTotal struct {
	Day   time.Time         `json:"day"`
	Total valueobject.Money `json:"total"`
}

// Report is the result of a cash-cut aggregation. GrandTotal covers VALID
// entries only; cancelled entries stay in Entries for audit and are summed
// into CancelledTotal.
type Report struct {
	DateRange           valueobject.DateRange        `json:"-"`
	BranchScope         string                       `json:"branch_scope"`
	Entries             []Entry                      `json:"entries"`
	TotalsByPaymentType map[string]valueobject.Money `json:"totals_by_payment_type"`
	DailyTotals         []DayTotal                   `json:"daily_totals"`
	GrandTotal          valueobject.Money            `json:"grand_total"`
	CancelledTotal      valueobject.Money            `json:"cancelled_total"`
	DeclaredAmount      *valueobject.Money           `json:"declared_amount,omitempty"`
	Delta               *valueobject.Money           `json:"delta,omitempty"`
	GeneratedAt         time.Time                    `json:"generated_at"`
}

// EntrySource is the port the application layer uses to fetch the entries
// feeding an aggregation. branchID empty means every branch.
type EntrySource interface {
	FetchEntries(ctx context.Context, branchID string, dr valueobject.DateRange) ([]Entry, error)
}
