// Package report reduces a company's financial records into a period
// profit & loss report with trend comparison against the preceding
// period. It is pure: no I/O, no clocks beyond the caller-supplied
// reference date, and identical inputs always produce identical output.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type PeriodKind string

const (
	PeriodMonth   PeriodKind = "month"
	PeriodQuarter PeriodKind = "quarter"
	PeriodYear    PeriodKind = "year"
)

// Window is a reporting window. Both bounds are inclusive, matching the
// comparisons the clients ship with; a record dated exactly on End is
// counted here and again in the next adjacent window. Flagged as an
// accepted quirk rather than fixed.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ComputeWindow returns the calendar-aligned window containing ref.
// Month spans the first to the last day of ref's month, quarter the
// current 3-month block aligned to calendar quarters, year Jan 1 to
// Dec 31. Bounds are midnight UTC.
func ComputeWindow(kind PeriodKind, ref time.Time) Window {
	ref = ref.UTC()
	year, month, _ := ref.Date()

	switch kind {
	case PeriodQuarter:
		quarterStart := time.Month((int(month)-1)/3*3 + 1)
		start := time.Date(year, quarterStart, 1, 0, 0, 0, 0, time.UTC)
		return Window{Start: start, End: start.AddDate(0, 3, -1)}
	case PeriodYear:
		return Window{
			Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		}
	default: // month
		start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		return Window{Start: start, End: start.AddDate(0, 1, -1)}
	}
}

// PreviousWindow returns the calendar period immediately preceding w:
// the start shifted back by one month, three months, or one year, and
// the end pinned to the day before w.Start. For calendar-aligned
// windows this is exactly the previous month/quarter/year.
func PreviousWindow(kind PeriodKind, w Window) Window {
	var start time.Time
	switch kind {
	case PeriodQuarter:
		start = w.Start.AddDate(0, -3, 0)
	case PeriodYear:
		start = w.Start.AddDate(-1, 0, 0)
	default:
		start = w.Start.AddDate(0, -1, 0)
	}
	return Window{Start: start, End: w.Start.AddDate(0, 0, -1)}
}

// Record is a single financial event considered by the aggregator.
// Status is only consulted for expense records.
type Record struct {
	Amount   decimal.Decimal
	Date     time.Time
	Category string
	Status   string
}

// Input carries the already-loaded collections for one company.
// Callers with no separate receipts collection should feed the same
// records to both Revenue and Cash, which makes net profit equal gross.
type Input struct {
	Period   PeriodKind
	Window   Window
	Revenue  []Record
	Cash     []Record
	Expenses []Record
}

type RevenueSummary struct {
	Total        decimal.Decimal `json:"total"`
	Actual       decimal.Decimal `json:"actual"`
	InvoiceCount int             `json:"invoice_count"`
	ReceiptCount int             `json:"receipt_count"`
}

type ExpenseSummary struct {
	Total      decimal.Decimal            `json:"total"`
	ByCategory map[string]decimal.Decimal `json:"by_category"`
	Count      int                        `json:"count"`
}

type ProfitSummary struct {
	Gross         decimal.Decimal `json:"gross"`
	Net           decimal.Decimal `json:"net"`
	MarginPercent float64         `json:"margin_percent"`
}

type TrendSummary struct {
	RevenueChange float64 `json:"revenue_change"`
	ExpenseChange float64 `json:"expense_change"`
	ProfitChange  float64 `json:"profit_change"`
}

type PeriodReport struct {
	Period   PeriodKind     `json:"period"`
	Start    time.Time      `json:"start_date"`
	End      time.Time      `json:"end_date"`
	Revenue  RevenueSummary `json:"revenue"`
	Expenses ExpenseSummary `json:"expenses"`
	Profit   ProfitSummary  `json:"profit"`
	Trends   TrendSummary   `json:"trends"`
}

// Generate reduces the input collections to a PeriodReport. Empty
// collections are valid and produce an all-zero report.
func Generate(in Input) PeriodReport {
	current := totalsForWindow(in, in.Window)
	previous := totalsForWindow(in, PreviousWindow(in.Period, in.Window))

	gross := current.revenue.Sub(current.expenses)
	net := current.actual.Sub(current.expenses)
	margin := 0.0
	if current.revenue.IsPositive() {
		margin, _ = gross.Div(current.revenue).Mul(decimal.NewFromInt(100)).Float64()
	}

	previousGross := previous.revenue.Sub(previous.expenses)

	return PeriodReport{
		Period: in.Period,
		Start:  in.Window.Start,
		End:    in.Window.End,
		Revenue: RevenueSummary{
			Total:        current.revenue,
			Actual:       current.actual,
			InvoiceCount: current.revenueCount,
			ReceiptCount: current.cashCount,
		},
		Expenses: ExpenseSummary{
			Total:      current.expenses,
			ByCategory: current.byCategory,
			Count:      current.expenseCount,
		},
		Profit: ProfitSummary{
			Gross:         gross,
			Net:           net,
			MarginPercent: margin,
		},
		Trends: TrendSummary{
			RevenueChange: PercentChange(current.revenue, previous.revenue),
			ExpenseChange: PercentChange(current.expenses, previous.expenses),
			ProfitChange:  PercentChange(gross, previousGross),
		},
	}
}

type windowTotals struct {
	revenue      decimal.Decimal
	actual       decimal.Decimal
	expenses     decimal.Decimal
	byCategory   map[string]decimal.Decimal
	revenueCount int
	cashCount    int
	expenseCount int
}

func totalsForWindow(in Input, w Window) windowTotals {
	totals := windowTotals{byCategory: make(map[string]decimal.Decimal)}

	for _, rec := range in.Revenue {
		if !w.Contains(rec.Date) {
			continue
		}
		totals.revenue = totals.revenue.Add(rec.Amount)
		totals.revenueCount++
	}

	for _, rec := range in.Cash {
		if !w.Contains(rec.Date) {
			continue
		}
		totals.actual = totals.actual.Add(rec.Amount)
		totals.cashCount++
	}

	for _, rec := range in.Expenses {
		// Pending and rejected expenses never enter totals.
		if rec.Status != "approved" || !w.Contains(rec.Date) {
			continue
		}
		totals.expenses = totals.expenses.Add(rec.Amount)
		totals.byCategory[rec.Category] = totals.byCategory[rec.Category].Add(rec.Amount)
		totals.expenseCount++
	}

	return totals
}

// PercentChange derives the period-over-period change with the
// zero-baseline convention: a zero previous value maps to +100% when
// there is new activity and 0% otherwise. This avoids division by zero
// and must not be altered; downstream dashboards depend on it.
func PercentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	change, _ := current.Sub(previous).Div(previous.Abs()).Mul(decimal.NewFromInt(100)).Float64()
	return change
}

// SortedCategories returns the expense category keys in lexical order,
// for deterministic rendering and export.
func SortedCategories(byCategory map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(byCategory))
	for key := range byCategory {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
