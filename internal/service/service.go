package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stockflow/backend/internal/barcode"
	"stockflow/backend/internal/cache"
	"stockflow/backend/internal/domain"
	"stockflow/backend/internal/payment"
	"stockflow/backend/internal/report"
	"stockflow/backend/internal/store"
	"stockflow/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo             store.Repository
	reportCache      cache.ReportCache
	momo             *payment.MomoClient
	defaultCompanyID string
	reportTTL        time.Duration
}

func New(repo store.Repository, reportCache cache.ReportCache, momo *payment.MomoClient, defaultCompanyID string, reportTTL time.Duration) *Service {
	if defaultCompanyID == "" {
		defaultCompanyID = "main-company"
	}
	if reportCache == nil {
		reportCache = cache.NoopReportCache{}
	}
	if reportTTL <= 0 {
		reportTTL = 5 * time.Minute
	}

	return &Service{
		repo:             repo,
		reportCache:      reportCache,
		momo:             momo,
		defaultCompanyID: defaultCompanyID,
		reportTTL:        reportTTL,
	}
}

// companyFor resolves the tenant for a request: the actor's company
// when present, the configured default otherwise.
func (s *Service) companyFor(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok && actor.CompanyID != "" {
		return actor.CompanyID
	}
	return s.defaultCompanyID
}

func (s *Service) requireRole(ctx context.Context, roles ...string) (domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Actor{}, fmt.Errorf("authentication required")
	}
	for _, role := range roles {
		if actor.Role == role {
			return actor, nil
		}
	}
	return domain.Actor{}, fmt.Errorf("%s role required", strings.Join(roles, " or "))
}

func (s *Service) ListProducts(ctx context.Context, companyID string) ([]domain.Product, error) {
	if companyID == "" {
		companyID = s.companyFor(ctx)
	}
	return s.repo.ListProducts(ctx, companyID)
}

func (s *Service) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, store.ErrInvalidRecord
	}
	product, err := s.repo.GetProductByID(ctx, s.companyFor(ctx), productID)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	actor, err := s.requireRole(ctx, domain.RoleManager, domain.RoleAdmin)
	if err != nil {
		return domain.Product{}, err
	}

	if req.CompanyID == "" {
		req.CompanyID = actor.CompanyID
	}
	if req.CompanyID == "" {
		req.CompanyID = s.defaultCompanyID
	}

	req.Name = strings.TrimSpace(req.Name)
	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	req.Category = strings.TrimSpace(req.Category)
	req.Barcode = barcode.Normalize(req.Barcode)

	if req.Name == "" || req.Category == "" {
		return domain.Product{}, store.ErrInvalidRecord
	}
	if req.Price.IsNegative() || req.BuyingPrice.IsNegative() || req.Quantity < 0 || req.LowStockThreshold < 0 {
		return domain.Product{}, store.ErrInvalidRecord
	}
	if req.Barcode != "" && !barcode.Valid(req.Barcode) {
		return domain.Product{}, fmt.Errorf("invalid barcode %q: %w", req.Barcode, store.ErrInvalidRecord)
	}

	product := domain.Product{
		ID:                xid.New("prod"),
		CompanyID:         req.CompanyID,
		Name:              req.Name,
		SKU:               req.SKU,
		Barcode:           req.Barcode,
		Category:          req.Category,
		Price:             req.Price,
		BuyingPrice:       req.BuyingPrice,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, created.CompanyID, "product_create", "product", created.ID, fmt.Sprintf("name=%s,price=%s,stock=%d", created.Name, created.Price, created.Quantity))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, productID string, req domain.ProductUpdateRequest) (domain.Product, error) {
	_, err := s.requireRole(ctx, domain.RoleManager, domain.RoleAdmin)
	if err != nil {
		return domain.Product{}, err
	}

	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, store.ErrInvalidRecord
	}

	existing, err := s.repo.GetProductByID(ctx, s.companyFor(ctx), productID)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, store.ErrInvalidRecord
		}
		updated.Name = name
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return domain.Product{}, store.ErrInvalidRecord
		}
		updated.Category = category
	}
	if req.Barcode != nil {
		code := barcode.Normalize(*req.Barcode)
		if code != "" && !barcode.Valid(code) {
			return domain.Product{}, fmt.Errorf("invalid barcode %q: %w", code, store.ErrInvalidRecord)
		}
		updated.Barcode = code
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return domain.Product{}, store.ErrInvalidRecord
		}
		updated.Price = *req.Price
	}
	if req.BuyingPrice != nil {
		if req.BuyingPrice.IsNegative() {
			return domain.Product{}, store.ErrInvalidRecord
		}
		updated.BuyingPrice = *req.BuyingPrice
	}
	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 0 {
			return domain.Product{}, store.ErrInvalidRecord
		}
		updated.LowStockThreshold = *req.LowStockThreshold
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, saved.CompanyID, "product_update", "product", saved.ID, fmt.Sprintf("name=%s,price=%s", saved.Name, saved.Price))
	return *saved, nil
}

// RecordSale resolves the request lines against current product records
// and applies the sale. Unit prices and profit always come from the
// stored product, never from the caller.
func (s *Service) RecordSale(ctx context.Context, req domain.SaleRequest) (domain.Sale, error) {
	if req.CompanyID == "" {
		req.CompanyID = s.companyFor(ctx)
	}
	if len(req.Items) == 0 {
		return domain.Sale{}, store.ErrInvalidRecord
	}
	if actor, ok := ActorFromContext(ctx); ok && req.AttendantID == "" {
		req.AttendantID = actor.Username
	}

	products, err := s.repo.ListProducts(ctx, req.CompanyID)
	if err != nil {
		return domain.Sale{}, err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]domain.SaleItem, 0, len(req.Items))
	total := decimal.Zero
	totalProfit := decimal.Zero
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return domain.Sale{}, store.ErrInvalidRecord
		}
		product, exists := byID[line.ProductID]
		if !exists {
			return domain.Sale{}, fmt.Errorf("product %s: %w", line.ProductID, store.ErrNotFound)
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		lineTotal := product.Price.Mul(qty)
		lineProfit := product.Price.Sub(product.BuyingPrice).Mul(qty)
		items = append(items, domain.SaleItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			Price:       product.Price,
			BuyingPrice: product.BuyingPrice,
			Total:       lineTotal,
			Profit:      lineProfit,
		})
		total = total.Add(lineTotal)
		totalProfit = totalProfit.Add(lineProfit)
	}

	sale := domain.Sale{
		ID:             xid.New("sale"),
		CompanyID:      req.CompanyID,
		Items:          items,
		Total:          total,
		TotalProfit:    totalProfit,
		AttendantID:    req.AttendantID,
		AttendantEmail: req.AttendantEmail,
		CreatedAt:      time.Now().UTC(),
	}

	created, err := s.repo.ProcessSale(ctx, sale)
	if err != nil {
		return domain.Sale{}, err
	}

	s.logAudit(ctx, created.CompanyID, "sale_record", "sale", created.ID, fmt.Sprintf("items=%d,total=%s", len(created.Items), created.Total))
	return *created, nil
}

// ProcessSale adapts RecordSale to the replay queue's remote contract.
func (s *Service) ProcessSale(ctx context.Context, req domain.SaleRequest) (string, error) {
	sale, err := s.RecordSale(ctx, req)
	if err != nil {
		return "", err
	}
	return sale.ID, nil
}

func (s *Service) ListSales(ctx context.Context, from time.Time, to time.Time) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx, s.companyFor(ctx), from, to)
}

func (s *Service) RecordRestock(ctx context.Context, req domain.RestockRequest) (domain.RestockEntry, error) {
	if req.CompanyID == "" {
		req.CompanyID = s.companyFor(ctx)
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" || req.Quantity < 1 {
		return domain.RestockEntry{}, store.ErrInvalidRecord
	}
	if actor, ok := ActorFromContext(ctx); ok && req.UserID == "" {
		req.UserID = actor.Username
	}

	entry := domain.RestockEntry{
		ID:        xid.New("restock"),
		CompanyID: req.CompanyID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UserID:    req.UserID,
		UserEmail: req.UserEmail,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.AddRestock(ctx, entry)
	if err != nil {
		return domain.RestockEntry{}, err
	}

	s.logAudit(ctx, created.CompanyID, "restock_record", "restock", created.ID, fmt.Sprintf("product=%s,qty=%d", created.ProductID, created.Quantity))
	return *created, nil
}

// AddRestock adapts RecordRestock to the replay queue's remote contract.
func (s *Service) AddRestock(ctx context.Context, req domain.RestockRequest) (string, error) {
	entry, err := s.RecordRestock(ctx, req)
	if err != nil {
		return "", err
	}
	return entry.ID, nil
}

func (s *Service) ListRestocks(ctx context.Context, limit int) ([]domain.RestockEntry, error) {
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListRestocks(ctx, s.companyFor(ctx), limit)
}

func (s *Service) CreateInvoice(ctx context.Context, req domain.InvoiceCreateRequest) (domain.Invoice, error) {
	if req.CompanyID == "" {
		req.CompanyID = s.companyFor(ctx)
	}
	req.ClientName = strings.TrimSpace(req.ClientName)
	if req.ClientName == "" || req.Total.IsNegative() {
		return domain.Invoice{}, store.ErrInvalidRecord
	}
	status := req.Status
	if status == "" {
		status = domain.InvoiceStatusDraft
	}
	if !validInvoiceStatus(status) {
		return domain.Invoice{}, fmt.Errorf("unknown invoice status %q: %w", status, store.ErrInvalidRecord)
	}

	issueDate := time.Now().UTC()
	if req.IssueDate != "" {
		parsed, err := time.Parse("2006-01-02", req.IssueDate)
		if err != nil {
			return domain.Invoice{}, fmt.Errorf("issue_date: %w", store.ErrInvalidRecord)
		}
		issueDate = parsed.UTC()
	}

	invoice := domain.Invoice{
		ID:         xid.New("inv"),
		CompanyID:  req.CompanyID,
		ClientName: req.ClientName,
		Total:      req.Total,
		Status:     status,
		IssueDate:  issueDate,
		CreatedAt:  time.Now().UTC(),
	}

	created, err := s.repo.CreateInvoice(ctx, invoice)
	if err != nil {
		return domain.Invoice{}, err
	}

	s.logAudit(ctx, created.CompanyID, "invoice_create", "invoice", created.ID, fmt.Sprintf("client=%s,total=%s", created.ClientName, created.Total))
	return *created, nil
}

func (s *Service) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	return s.repo.ListInvoices(ctx, s.companyFor(ctx))
}

func (s *Service) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status string) (domain.Invoice, error) {
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" || !validInvoiceStatus(status) {
		return domain.Invoice{}, store.ErrInvalidRecord
	}

	updated, err := s.repo.UpdateInvoiceStatus(ctx, s.companyFor(ctx), invoiceID, status)
	if err != nil {
		return domain.Invoice{}, err
	}

	s.logAudit(ctx, updated.CompanyID, "invoice_status", "invoice", updated.ID, "status="+updated.Status)
	return *updated, nil
}

func (s *Service) CreateReceipt(ctx context.Context, req domain.ReceiptCreateRequest) (domain.Receipt, error) {
	if req.CompanyID == "" {
		req.CompanyID = s.companyFor(ctx)
	}
	if req.Amount.IsNegative() {
		return domain.Receipt{}, store.ErrInvalidRecord
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return domain.Receipt{}, fmt.Errorf("date: %w", store.ErrInvalidRecord)
		}
		date = parsed.UTC()
	}

	receipt := domain.Receipt{
		ID:        xid.New("rcpt"),
		CompanyID: req.CompanyID,
		InvoiceID: strings.TrimSpace(req.InvoiceID),
		Amount:    req.Amount,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.CreateReceipt(ctx, receipt)
	if err != nil {
		return domain.Receipt{}, err
	}

	s.logAudit(ctx, created.CompanyID, "receipt_create", "receipt", created.ID, fmt.Sprintf("amount=%s", created.Amount))
	return *created, nil
}

func (s *Service) ListReceipts(ctx context.Context) ([]domain.Receipt, error) {
	return s.repo.ListReceipts(ctx, s.companyFor(ctx))
}

// CreateExpense records a pending expense. Status is never taken from
// the caller; approval goes through ReviewExpense.
func (s *Service) CreateExpense(ctx context.Context, req domain.ExpenseCreateRequest) (domain.Expense, error) {
	if req.CompanyID == "" {
		req.CompanyID = s.companyFor(ctx)
	}
	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" || req.Amount.IsNegative() {
		return domain.Expense{}, store.ErrInvalidRecord
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return domain.Expense{}, fmt.Errorf("date: %w", store.ErrInvalidRecord)
		}
		date = parsed.UTC()
	}

	createdBy := ""
	if actor, ok := ActorFromContext(ctx); ok {
		createdBy = actor.Username
	}

	expense := domain.Expense{
		ID:          xid.New("exp"),
		CompanyID:   req.CompanyID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		Status:      domain.ExpenseStatusPending,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.repo.CreateExpense(ctx, expense)
	if err != nil {
		return domain.Expense{}, err
	}

	s.logAudit(ctx, created.CompanyID, "expense_create", "expense", created.ID, fmt.Sprintf("category=%s,amount=%s", created.Category, created.Amount))
	return *created, nil
}

func (s *Service) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	return s.repo.ListExpenses(ctx, s.companyFor(ctx))
}

func (s *Service) ReviewExpense(ctx context.Context, expenseID string, req domain.ExpenseReviewRequest) (domain.Expense, error) {
	actor, err := s.requireRole(ctx, domain.RoleManager, domain.RoleAdmin)
	if err != nil {
		return domain.Expense{}, err
	}

	expenseID = strings.TrimSpace(expenseID)
	if expenseID == "" {
		return domain.Expense{}, store.ErrInvalidRecord
	}
	if req.Status != domain.ExpenseStatusApproved && req.Status != domain.ExpenseStatusRejected {
		return domain.Expense{}, fmt.Errorf("review status must be approved or rejected: %w", store.ErrInvalidRecord)
	}

	updated, err := s.repo.UpdateExpenseStatus(ctx, s.companyFor(ctx), expenseID, req.Status)
	if err != nil {
		return domain.Expense{}, err
	}

	s.logAudit(ctx, updated.CompanyID, "expense_review", "expense", updated.ID, fmt.Sprintf("status=%s,by=%s", updated.Status, actor.Username))
	return *updated, nil
}

// ProfitLossReport aggregates the company's financial records over the
// calendar period containing ref. Invoices carry accrual revenue and
// receipts cash revenue; sales count toward both, standing in for
// companies that invoice nothing and collect at the till.
func (s *Service) ProfitLossReport(ctx context.Context, period report.PeriodKind, ref time.Time) (report.PeriodReport, error) {
	switch period {
	case report.PeriodMonth, report.PeriodQuarter, report.PeriodYear:
	default:
		return report.PeriodReport{}, fmt.Errorf("unknown period %q: %w", period, store.ErrInvalidRecord)
	}
	if ref.IsZero() {
		ref = time.Now().UTC()
	}

	companyID := s.companyFor(ctx)
	window := report.ComputeWindow(period, ref)
	cacheKey := fmt.Sprintf("report:pnl:%s:%s:%s", companyID, period, window.Start.Format("2006-01-02"))

	if cached, hit, err := s.reportCache.Get(ctx, cacheKey); err != nil {
		log.Printf("[service] WARN: report cache read failed key=%s: %v", cacheKey, err)
	} else if hit {
		return *cached, nil
	}

	invoices, err := s.repo.ListInvoices(ctx, companyID)
	if err != nil {
		return report.PeriodReport{}, err
	}
	receipts, err := s.repo.ListReceipts(ctx, companyID)
	if err != nil {
		return report.PeriodReport{}, err
	}
	expenses, err := s.repo.ListExpenses(ctx, companyID)
	if err != nil {
		return report.PeriodReport{}, err
	}
	// One previous-period window of sales is enough for the trend math;
	// fetching from the previous window's start bounds the scan.
	salesFrom := report.PreviousWindow(period, window).Start
	sales, err := s.repo.ListSales(ctx, companyID, salesFrom, window.End)
	if err != nil {
		return report.PeriodReport{}, err
	}

	in := report.Input{
		Period:   period,
		Window:   window,
		Revenue:  make([]report.Record, 0, len(invoices)+len(sales)),
		Cash:     make([]report.Record, 0, len(receipts)+len(sales)),
		Expenses: make([]report.Record, 0, len(expenses)),
	}
	for _, invoice := range invoices {
		in.Revenue = append(in.Revenue, report.Record{Amount: invoice.Total, Date: invoice.IssueDate})
	}
	for _, receipt := range receipts {
		in.Cash = append(in.Cash, report.Record{Amount: receipt.Amount, Date: receipt.Date})
	}
	for _, sale := range sales {
		rec := report.Record{Amount: sale.Total, Date: sale.CreatedAt}
		in.Revenue = append(in.Revenue, rec)
		in.Cash = append(in.Cash, rec)
	}
	for _, expense := range expenses {
		in.Expenses = append(in.Expenses, report.Record{
			Amount:   expense.Amount,
			Date:     expense.Date,
			Category: expense.Category,
			Status:   expense.Status,
		})
	}

	generated := report.Generate(in)
	if err := s.reportCache.Set(ctx, cacheKey, &generated, s.reportTTL); err != nil {
		log.Printf("[service] WARN: report cache write failed key=%s: %v", cacheKey, err)
	}
	return generated, nil
}

func (s *Service) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	companyID := s.companyFor(ctx)

	products, err := s.repo.ListProducts(ctx, companyID)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	stats := domain.DashboardStats{CompanyID: companyID, TotalProducts: len(products)}
	for _, p := range products {
		qty := decimal.NewFromInt(int64(p.Quantity))
		stats.InventoryValue = stats.InventoryValue.Add(p.Price.Mul(qty))
		stats.InventoryCost = stats.InventoryCost.Add(p.BuyingPrice.Mul(qty))
		if p.Quantity <= p.LowStockThreshold {
			stats.LowStockCount++
		}
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	sales, err := s.repo.ListSales(ctx, companyID, time.Time{}, time.Time{})
	if err != nil {
		return domain.DashboardStats{}, err
	}
	for _, sale := range sales {
		stats.TotalProfit = stats.TotalProfit.Add(sale.TotalProfit)
		if !sale.CreatedAt.Before(dayStart) {
			stats.TodaySales = stats.TodaySales.Add(sale.Total)
			stats.TodayProfit = stats.TodayProfit.Add(sale.TotalProfit)
		}
	}

	todayExpenses, err := s.repo.SumApprovedExpenses(ctx, companyID, dayStart, now)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	stats.TodayExpenses = todayExpenses

	return stats, nil
}

// ListLowStockProducts returns products at or below their restock
// threshold, the ones the dashboard flags for reorder.
func (s *Service) ListLowStockProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx, s.companyFor(ctx))
	if err != nil {
		return nil, err
	}

	low := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Quantity <= p.LowStockThreshold {
			low = append(low, p)
		}
	}
	return low, nil
}

func (s *Service) ValidateBarcode(req domain.BarcodeValidateRequest) domain.BarcodeValidateResponse {
	code := barcode.Normalize(req.Code)
	resp := domain.BarcodeValidateResponse{Code: code}
	if barcode.Valid(code) {
		resp.Valid = true
		resp.Format = barcode.Format(code)
	}
	return resp
}

func (s *Service) InitiateTopUp(ctx context.Context, req domain.TopUpRequest) (domain.TopUpResult, error) {
	if s.momo == nil {
		return domain.TopUpResult{}, fmt.Errorf("mobile money is not configured")
	}
	result, err := s.momo.InitiateTopUp(ctx, req)
	if err != nil {
		return domain.TopUpResult{}, err
	}
	if result.TransactionID != "" {
		s.logAudit(ctx, s.companyFor(ctx), "topup_initiate", "topup", result.TransactionID, fmt.Sprintf("amount=%s,status=%s", req.Amount, result.Status))
	}
	return result, nil
}

func (s *Service) PollTopUpStatus(ctx context.Context, transactionID string) (domain.TopUpResult, error) {
	if s.momo == nil {
		return domain.TopUpResult{}, fmt.Errorf("mobile money is not configured")
	}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return domain.TopUpResult{}, store.ErrInvalidRecord
	}
	return s.momo.PollTopUpStatus(ctx, transactionID)
}

func (s *Service) ListAuditLogs(ctx context.Context, date string, limit int) ([]domain.AuditLog, error) {
	if _, err := s.requireRole(ctx, domain.RoleManager, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 200
	}

	var from, to time.Time
	if date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("date: %w", store.ErrInvalidRecord)
		}
		from = day.UTC()
		to = from.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	return s.repo.ListAuditLogs(ctx, s.companyFor(ctx), from, to, limit)
}

func validInvoiceStatus(status string) bool {
	switch status {
	case domain.InvoiceStatusDraft, domain.InvoiceStatusSent, domain.InvoiceStatusPaid, domain.InvoiceStatusOverdue:
		return true
	}
	return false
}

func (s *Service) logAudit(ctx context.Context, companyID string, action string, entityType string, entityID string, detail string) {
	if companyID == "" {
		companyID = s.defaultCompanyID
	}

	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		CompanyID:     companyID,
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}
