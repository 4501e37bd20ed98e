package cashcut

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tesoreria/backend/internal/domain/shared"
	"github.com/tesoreria/backend/internal/domain/shared/valueobject"
)

// AggregateInput carries everything one aggregation call needs. The
// aggregator itself is pure: no clock reads, no I/O, safe to call
// repeatedly.
type AggregateInput struct {
	Entries        []Entry
	Range          valueobject.DateRange
	BranchScope    string
	Role           RoleContext
	Query          string
	DeclaredAmount *valueobject.Money // counted drawer cash, optional
	GeneratedAt    time.Time
}

// Aggregate builds a cash-cut report from a batch of entries.
//
// Order of operations: authorization scope resolution, free-text
// pre-filter, date and branch filter, partition by status, grouped
// decimal summation. The free-text filter runs before scoping so the
// totals always match the visible rows.
func Aggregate(in AggregateInput) (*Report, error) {
	if in.Range.Start().IsZero() || in.Range.End().IsZero() {
		return nil, shared.NewValidationError("Date range is required")
	}
	scope, err := ResolveScope(in.Role, in.BranchScope)
	if err != nil {
		return nil, err
	}

	entries := in.Entries
	if q := strings.TrimSpace(in.Query); q != "" {
		entries = filterByQuery(entries, q)
	}

	var kept []Entry
	for _, e := range entries {
		if e.Receipt == nil {
			continue
		}
		if !in.Range.Contains(e.Receipt.PaymentDate) {
			continue
		}
		if scope != "" && e.BranchID != scope {
			continue
		}
		kept = append(kept, e)
	}

	byType := make(map[string]decimal.Decimal)
	byDay := make(map[time.Time]decimal.Decimal)
	direct := decimal.Zero
	cancelled := decimal.Zero

	for _, e := range kept {
		amount := e.Receipt.Amount.Amount()
		if e.Receipt.IsCancelled() {
			cancelled = cancelled.Add(amount)
			continue
		}
		byType[e.PaymentTypeCode] = byType[e.PaymentTypeCode].Add(amount)
		day := dayOf(e.Receipt.PaymentDate)
		byDay[day] = byDay[day].Add(amount)
		direct = direct.Add(amount)
	}

	grand := decimal.Zero
	for _, sum := range byType {
		grand = grand.Add(sum)
	}
	// The grouped total must equal the direct sum over VALID entries. A
	// divergence would be a programming error; the direct sum wins so the
	// report stays internally consistent either way.
	if !grand.Equal(direct) {
		grand = direct
	}

	totals := make(map[string]valueobject.Money, len(byType))
	for code, sum := range byType {
		totals[code] = valueobject.NewMoneyMXN(sum)
	}

	days := make([]DayTotal, 0, len(byDay))
	for day, sum := range byDay {
		days = append(days, DayTotal{Day: day, Total: valueobject.NewMoneyMXN(sum)})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })

	report := &Report{
		DateRange:           in.Range,
		BranchScope:         scope,
		Entries:             kept,
		TotalsByPaymentType: totals,
		DailyTotals:         days,
		GrandTotal:          valueobject.NewMoneyMXN(grand),
		CancelledTotal:      valueobject.NewMoneyMXN(cancelled),
		GeneratedAt:         in.GeneratedAt,
	}

	if in.DeclaredAmount != nil {
		declared := *in.DeclaredAmount
		delta := valueobject.NewMoneyMXN(declared.Amount().Sub(grand))
		report.DeclaredAmount = &declared
		report.Delta = &delta
	}

	return report, nil
}

// ResolveScope applies the branch authorization rule: a non-admin role is
// pinned to its assigned branch, and a caller-supplied scope outside it is
// rejected rather than clamped. Admin roles pass their scope through, empty
// meaning all branches.
func ResolveScope(role RoleContext, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if role.Role.IsAdmin() {
		return requested, nil
	}
	if role.BranchID == "" {
		return "", shared.NewAuthorizationError("Role has no assigned branch")
	}
	if requested != "" && requested != role.BranchID {
		return "", shared.NewAuthorizationError("Branch scope outside the role's assigned branch")
	}
	return role.BranchID, nil
}

// filterByQuery keeps entries matching q on folio, student name, concept,
// or status label, case-insensitive.
func filterByQuery(entries []Entry, q string) []Entry {
	needle := strings.ToLower(q)
	var out []Entry
	for _, e := range entries {
		if e.Receipt == nil {
			continue
		}
		r := e.Receipt
		if containsFold(r.Folio, needle) ||
			containsFold(r.StudentName, needle) ||
			containsFold(r.Concept, needle) ||
			containsFold(r.Status.String(), needle) ||
			containsFold(r.Status.Label(), needle) {
			out = append(out, e)
		}
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
