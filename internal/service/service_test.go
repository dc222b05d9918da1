package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stockflow/backend/internal/cache"
	"stockflow/backend/internal/domain"
	"stockflow/backend/internal/payment"
	"stockflow/backend/internal/report"
	"stockflow/backend/internal/store"
	"stockflow/backend/internal/store/memory"
)

const testCompany = "main-company"

func newTestService() *Service {
	repo := memory.NewSeeded(testCompany)
	return New(repo, cache.NoopReportCache{}, payment.NewMomoClient(), testCompany, time.Minute)
}

func managerCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{
		Username:  "manager",
		Role:      domain.RoleManager,
		CompanyID: testCompany,
	})
}

func attendantCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{
		Username:  "attendant",
		Role:      domain.RoleAttendant,
		CompanyID: testCompany,
	})
}

func firstProduct(t *testing.T, svc *Service, ctx context.Context) domain.Product {
	t.Helper()
	products, err := svc.ListProducts(ctx, "")
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) == 0 {
		t.Fatalf("seeded store has no products")
	}
	return products[0]
}

func TestCreateProductRequiresManagerRole(t *testing.T) {
	svc := newTestService()

	req := domain.ProductCreateRequest{
		Name:     "Tea Bags",
		Category: "beverage",
		Price:    decimal.NewFromInt(2500),
		Quantity: 10,
	}

	if _, err := svc.CreateProduct(attendantCtx(), req); err == nil {
		t.Fatalf("expected attendant create to be rejected")
	}

	created, err := svc.CreateProduct(managerCtx(), req)
	if err != nil {
		t.Fatalf("manager create failed: %v", err)
	}
	if created.ID == "" || created.CompanyID != testCompany {
		t.Fatalf("created product missing id or tenant: %+v", created)
	}
}

func TestCreateProductRejectsBadBarcode(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateProduct(managerCtx(), domain.ProductCreateRequest{
		Name:     "Mystery Item",
		Category: "misc",
		Price:    decimal.NewFromInt(100),
		Barcode:  "1234567890124",
	})
	if !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("bad checksum barcode error = %v, want ErrInvalidRecord", err)
	}

	created, err := svc.CreateProduct(managerCtx(), domain.ProductCreateRequest{
		Name:     "Scanned Item",
		Category: "misc",
		Price:    decimal.NewFromInt(100),
		Barcode:  "4006381333931",
	})
	if err != nil {
		t.Fatalf("valid barcode rejected: %v", err)
	}
	if created.Barcode != "4006381333931" {
		t.Fatalf("barcode not stored, got %q", created.Barcode)
	}
}

func TestRecordSalePricesFromProductRecord(t *testing.T) {
	svc := newTestService()
	ctx := attendantCtx()
	product := firstProduct(t, svc, ctx)

	sale, err := svc.RecordSale(ctx, domain.SaleRequest{
		Items: []domain.SaleLine{{ProductID: product.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}

	wantTotal := product.Price.Mul(decimal.NewFromInt(2))
	if !sale.Total.Equal(wantTotal) {
		t.Fatalf("sale total = %s, want %s", sale.Total, wantTotal)
	}
	wantProfit := product.Price.Sub(product.BuyingPrice).Mul(decimal.NewFromInt(2))
	if !sale.TotalProfit.Equal(wantProfit) {
		t.Fatalf("sale profit = %s, want %s", sale.TotalProfit, wantProfit)
	}
	if sale.AttendantID != "attendant" {
		t.Fatalf("attendant not stamped from actor, got %q", sale.AttendantID)
	}

	after, err := svc.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.Quantity != product.Quantity-2 {
		t.Fatalf("stock after sale = %d, want %d", after.Quantity, product.Quantity-2)
	}
}

func TestRecordSaleRejectsOversell(t *testing.T) {
	svc := newTestService()
	ctx := attendantCtx()
	product := firstProduct(t, svc, ctx)

	_, err := svc.RecordSale(ctx, domain.SaleRequest{
		Items: []domain.SaleLine{{ProductID: product.ID, Quantity: product.Quantity + 1}},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("oversell error = %v, want ErrInsufficientStock", err)
	}

	after, err := svc.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.Quantity != product.Quantity {
		t.Fatalf("stock changed after rejected sale: %d -> %d", product.Quantity, after.Quantity)
	}
}

func TestRecordRestockIncreasesStock(t *testing.T) {
	svc := newTestService()
	ctx := attendantCtx()
	product := firstProduct(t, svc, ctx)

	entry, err := svc.RecordRestock(ctx, domain.RestockRequest{
		ProductID: product.ID,
		Quantity:  7,
	})
	if err != nil {
		t.Fatalf("record restock: %v", err)
	}
	if entry.ProductName != product.Name {
		t.Fatalf("restock entry product name = %q, want %q", entry.ProductName, product.Name)
	}

	after, err := svc.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.Quantity != product.Quantity+7 {
		t.Fatalf("stock after restock = %d, want %d", after.Quantity, product.Quantity+7)
	}
}

func TestExpenseWorkflowPendingUntilReviewed(t *testing.T) {
	svc := newTestService()

	created, err := svc.CreateExpense(attendantCtx(), domain.ExpenseCreateRequest{
		Amount:   decimal.NewFromInt(300),
		Category: "transport",
		Date:     "2026-08-10",
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if created.Status != domain.ExpenseStatusPending {
		t.Fatalf("new expense status = %q, want pending", created.Status)
	}

	if _, err := svc.ReviewExpense(attendantCtx(), created.ID, domain.ExpenseReviewRequest{Status: domain.ExpenseStatusApproved}); err == nil {
		t.Fatalf("expected attendant review to be rejected")
	}

	reviewed, err := svc.ReviewExpense(managerCtx(), created.ID, domain.ExpenseReviewRequest{Status: domain.ExpenseStatusApproved})
	if err != nil {
		t.Fatalf("manager review failed: %v", err)
	}
	if reviewed.Status != domain.ExpenseStatusApproved {
		t.Fatalf("reviewed status = %q, want approved", reviewed.Status)
	}

	if _, err := svc.ReviewExpense(managerCtx(), created.ID, domain.ExpenseReviewRequest{Status: "maybe"}); !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("bad review status error = %v, want ErrInvalidRecord", err)
	}
}

func TestProfitLossReportCountsSalesAsRevenueAndCash(t *testing.T) {
	svc := newTestService()
	ctx := attendantCtx()
	product := firstProduct(t, svc, ctx)

	sale, err := svc.RecordSale(ctx, domain.SaleRequest{
		Items: []domain.SaleLine{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}

	expense, err := svc.CreateExpense(ctx, domain.ExpenseCreateRequest{
		Amount:   decimal.NewFromInt(200),
		Category: "rent",
		Date:     time.Now().UTC().Format("2006-01-02"),
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if _, err := svc.ReviewExpense(managerCtx(), expense.ID, domain.ExpenseReviewRequest{Status: domain.ExpenseStatusApproved}); err != nil {
		t.Fatalf("approve expense: %v", err)
	}

	rep, err := svc.ProfitLossReport(ctx, report.PeriodMonth, time.Now().UTC())
	if err != nil {
		t.Fatalf("profit loss report: %v", err)
	}

	if !rep.Revenue.Total.Equal(sale.Total) {
		t.Fatalf("revenue total = %s, want %s", rep.Revenue.Total, sale.Total)
	}
	if !rep.Revenue.Actual.Equal(sale.Total) {
		t.Fatalf("actual revenue = %s, want %s", rep.Revenue.Actual, sale.Total)
	}
	if !rep.Expenses.Total.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expense total = %s, want 200", rep.Expenses.Total)
	}
	if !rep.Profit.Gross.Equal(sale.Total.Sub(decimal.NewFromInt(200))) {
		t.Fatalf("gross profit = %s, want %s", rep.Profit.Gross, sale.Total.Sub(decimal.NewFromInt(200)))
	}
	if !rep.Profit.Net.Equal(rep.Profit.Gross) {
		t.Fatalf("sales-only report should have net == gross, net=%s gross=%s", rep.Profit.Net, rep.Profit.Gross)
	}
}

func TestProfitLossReportSeparatesAccrualAndCash(t *testing.T) {
	svc := newTestService()
	ctx := managerCtx()
	today := time.Now().UTC().Format("2006-01-02")

	if _, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		ClientName: "Acme Ltd",
		Total:      decimal.NewFromInt(1000),
		Status:     domain.InvoiceStatusSent,
		IssueDate:  today,
	}); err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if _, err := svc.CreateReceipt(ctx, domain.ReceiptCreateRequest{
		Amount: decimal.NewFromInt(250),
		Date:   today,
	}); err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	rep, err := svc.ProfitLossReport(ctx, report.PeriodMonth, time.Now().UTC())
	if err != nil {
		t.Fatalf("profit loss report: %v", err)
	}

	if !rep.Revenue.Total.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("accrual revenue = %s, want 1000", rep.Revenue.Total)
	}
	if !rep.Revenue.Actual.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("cash revenue = %s, want 250", rep.Revenue.Actual)
	}
	if !rep.Profit.Net.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("net profit = %s, want 250", rep.Profit.Net)
	}
}

func TestDashboardStatsLowStockCount(t *testing.T) {
	svc := newTestService()
	ctx := managerCtx()

	stats, err := svc.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("dashboard stats: %v", err)
	}

	low, err := svc.ListLowStockProducts(ctx)
	if err != nil {
		t.Fatalf("low stock products: %v", err)
	}
	if stats.LowStockCount != len(low) {
		t.Fatalf("low stock count = %d, listing has %d", stats.LowStockCount, len(low))
	}
	// Seed data includes one product at or below its threshold.
	if len(low) == 0 {
		t.Fatalf("expected seeded low stock product")
	}
	if stats.TotalProducts == 0 || !stats.InventoryValue.IsPositive() {
		t.Fatalf("stats not populated: %+v", stats)
	}
}

func TestUpdateInvoiceStatusValidatesTransition(t *testing.T) {
	svc := newTestService()
	ctx := managerCtx()

	invoice, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		ClientName: "Acme Ltd",
		Total:      decimal.NewFromInt(400),
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if invoice.Status != domain.InvoiceStatusDraft {
		t.Fatalf("default status = %q, want draft", invoice.Status)
	}

	if _, err := svc.UpdateInvoiceStatus(ctx, invoice.ID, "cancelled"); !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("unknown status error = %v, want ErrInvalidRecord", err)
	}

	paid, err := svc.UpdateInvoiceStatus(ctx, invoice.ID, domain.InvoiceStatusPaid)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Status != domain.InvoiceStatusPaid {
		t.Fatalf("status = %q, want paid", paid.Status)
	}
}

func TestAuditLogWrittenForPrivilegedActions(t *testing.T) {
	svc := newTestService()
	ctx := managerCtx()

	if _, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{
		Name:     "Audited Item",
		Category: "misc",
		Price:    decimal.NewFromInt(10),
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	logs, err := svc.ListAuditLogs(ctx, "", 50)
	if err != nil {
		t.Fatalf("list audit logs: %v", err)
	}
	found := false
	for _, entry := range logs {
		if entry.Action == "product_create" && entry.ActorUsername == "manager" {
			found = true
		}
	}
	if !found {
		t.Fatalf("product_create audit entry missing, got %d entries", len(logs))
	}
}

func TestValidateBarcodeFormats(t *testing.T) {
	svc := newTestService()

	resp := svc.ValidateBarcode(domain.BarcodeValidateRequest{Code: "978-0140157376"})
	if !resp.Valid || resp.Format != "EAN-13" {
		t.Fatalf("EAN-13 with separators: %+v", resp)
	}

	resp = svc.ValidateBarcode(domain.BarcodeValidateRequest{Code: "12345"})
	if resp.Valid {
		t.Fatalf("5-digit code must be invalid: %+v", resp)
	}
}

func TestTopUpThroughService(t *testing.T) {
	svc := newTestService()
	ctx := attendantCtx()

	result, err := svc.InitiateTopUp(ctx, domain.TopUpRequest{
		PhoneNumber: "76123456",
		Amount:      decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("initiate top-up: %v", err)
	}
	if result.Status != domain.TopUpStatusPending {
		t.Fatalf("status = %q, want pending", result.Status)
	}

	polled, err := svc.PollTopUpStatus(ctx, result.TransactionID)
	if err != nil {
		t.Fatalf("poll top-up: %v", err)
	}
	if polled.Status != domain.TopUpStatusSuccess {
		t.Fatalf("polled status = %q, want success", polled.Status)
	}
}
