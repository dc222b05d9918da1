package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV renders the report as flat section,key,value rows, the same
// shape the web client exports for download.
func WriteCSV(w io.Writer, r PeriodReport) error {
	out := csv.NewWriter(w)

	rows := [][]string{
		{"period", "kind", string(r.Period)},
		{"period", "start_date", r.Start.Format("2006-01-02")},
		{"period", "end_date", r.End.Format("2006-01-02")},
		{"revenue", "total_revenue", r.Revenue.Total.String()},
		{"revenue", "actual_revenue", r.Revenue.Actual.String()},
		{"revenue", "invoice_count", strconv.Itoa(r.Revenue.InvoiceCount)},
		{"revenue", "receipt_count", strconv.Itoa(r.Revenue.ReceiptCount)},
		{"expenses", "total_expenses", r.Expenses.Total.String()},
		{"expenses", "expense_count", strconv.Itoa(r.Expenses.Count)},
	}
	for _, category := range SortedCategories(r.Expenses.ByCategory) {
		rows = append(rows, []string{"expenses", "category_" + category, r.Expenses.ByCategory[category].String()})
	}
	rows = append(rows,
		[]string{"profit", "gross_profit", r.Profit.Gross.String()},
		[]string{"profit", "net_profit", r.Profit.Net.String()},
		[]string{"profit", "margin_percent", formatPercent(r.Profit.MarginPercent)},
		[]string{"trends", "revenue_change_percent", formatPercent(r.Trends.RevenueChange)},
		[]string{"trends", "expense_change_percent", formatPercent(r.Trends.ExpenseChange)},
		[]string{"trends", "profit_change_percent", formatPercent(r.Trends.ProfitChange)},
	)

	if err := out.WriteAll(rows); err != nil {
		return err
	}
	return out.Error()
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
