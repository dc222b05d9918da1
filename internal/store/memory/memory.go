package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"stockflow/backend/internal/domain"
	"stockflow/backend/internal/store"
	"stockflow/backend/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	productsByID    map[string]domain.Product
	salesByID       map[string]domain.Sale
	restocks        []domain.RestockEntry
	invoicesByID    map[string]domain.Invoice
	receiptsByID    map[string]domain.Receipt
	expensesByID    map[string]domain.Expense
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials come from SEED_MANAGER_PASSWORD and SEED_ATTENDANT_PASSWORD;
// if unset, hardcoded dev defaults are used with a warning. The in-memory
// backend is never selected when DATABASE_URL is set.
func seedUsers(companyID string) map[string]domain.UserAccount {
	managerPwd := envOr("SEED_MANAGER_PASSWORD", "manager123")
	attendantPwd := envOr("SEED_ATTENDANT_PASSWORD", "attendant123")
	if os.Getenv("SEED_MANAGER_PASSWORD") == "" || os.Getenv("SEED_ATTENDANT_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_MANAGER_PASSWORD and SEED_ATTENDANT_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"manager", managerPwd, domain.RoleManager},
		{"attendant", attendantPwd, domain.RoleAttendant},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			CompanyID: companyID,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded(companyID string) *Store {
	now := time.Now().UTC()
	products := []domain.Product{
		{Name: "Sugar 1kg", SKU: "SKU-SUGAR-01", Barcode: "4006381333931", Category: "grocery", Price: dec("4500"), BuyingPrice: dec("3800"), Quantity: 80, LowStockThreshold: 10},
		{Name: "Rice 5kg", SKU: "SKU-RICE-01", Barcode: "9780140157376", Category: "grocery", Price: dec("32000"), BuyingPrice: dec("27500"), Quantity: 45, LowStockThreshold: 8},
		{Name: "Cooking Oil 1L", SKU: "SKU-OIL-01", Category: "grocery", Price: dec("9800"), BuyingPrice: dec("8200"), Quantity: 60, LowStockThreshold: 12},
		{Name: "Bar Soap", SKU: "SKU-SOAP-01", Category: "household", Price: dec("1200"), BuyingPrice: dec("850"), Quantity: 150, LowStockThreshold: 20},
		{Name: "Bottled Water 500ml", SKU: "SKU-WATER-01", Category: "beverage", Price: dec("800"), BuyingPrice: dec("500"), Quantity: 200, LowStockThreshold: 24},
		{Name: "Instant Coffee Sachet", SKU: "SKU-COFFEE-01", Category: "beverage", Price: dec("600"), BuyingPrice: dec("420"), Quantity: 6, LowStockThreshold: 10},
	}

	productMap := make(map[string]domain.Product, len(products))
	for _, p := range products {
		p.ID = xid.New("prod")
		p.CompanyID = companyID
		p.CreatedAt = now
		p.UpdatedAt = now
		productMap[p.ID] = p
	}

	return &Store{
		productsByID:    productMap,
		salesByID:       make(map[string]domain.Sale),
		restocks:        make([]domain.RestockEntry, 0, 64),
		invoicesByID:    make(map[string]domain.Invoice),
		receiptsByID:    make(map[string]domain.Receipt),
		expensesByID:    make(map[string]domain.Expense),
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: seedUsers(companyID),
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Fatalf("[memory-store] bad seed amount %q: %v", s, err)
	}
	return d
}

func (s *Store) ListProducts(_ context.Context, companyID string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.productsByID))
	for _, p := range s.productsByID {
		if p.CompanyID != companyID {
			continue
		}
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Category == b.Category {
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.Category, b.Category)
	})

	return products, nil
}

func (s *Store) GetProductByID(_ context.Context, companyID string, productID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.productsByID[productID]
	if !exists || product.CompanyID != companyID {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.CompanyID == "" || product.Name == "" || product.Quantity < 0 {
		return nil, store.ErrInvalidRecord
	}
	if product.Price.IsNegative() || product.BuyingPrice.IsNegative() {
		return nil, store.ErrInvalidRecord
	}
	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	if _, exists := s.productsByID[product.ID]; exists {
		return nil, store.ErrInvalidRecord
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	s.productsByID[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" || product.Name == "" || product.Quantity < 0 {
		return nil, store.ErrInvalidRecord
	}
	if product.Price.IsNegative() || product.BuyingPrice.IsNegative() {
		return nil, store.ErrInvalidRecord
	}
	existing, exists := s.productsByID[product.ID]
	if !exists || existing.CompanyID != product.CompanyID {
		return nil, store.ErrNotFound
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()

	s.productsByID[product.ID] = product
	updated := product
	return &updated, nil
}

func (s *Store) ProcessSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.CompanyID == "" || len(sale.Items) == 0 {
		return nil, store.ErrInvalidRecord
	}

	// Check every line before touching quantities so a partial sale
	// never decrements anything.
	for _, item := range sale.Items {
		if item.Quantity < 1 {
			return nil, store.ErrInvalidRecord
		}
		product, exists := s.productsByID[item.ProductID]
		if !exists || product.CompanyID != sale.CompanyID {
			return nil, store.ErrNotFound
		}
		if product.Quantity < item.Quantity {
			return nil, store.ErrInsufficientStock
		}
	}

	now := time.Now().UTC()
	for _, item := range sale.Items {
		product := s.productsByID[item.ProductID]
		product.Quantity -= item.Quantity
		product.UpdatedAt = now
		s.productsByID[item.ProductID] = product
	}

	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = now
	}

	s.salesByID[sale.ID] = cloneSale(sale)
	created := cloneSale(sale)
	return &created, nil
}

func (s *Store) ListSales(_ context.Context, companyID string, from time.Time, to time.Time) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Sale, 0, 64)
	for _, sale := range s.salesByID {
		if sale.CompanyID != companyID {
			continue
		}
		if !from.IsZero() && sale.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && sale.CreatedAt.After(to) {
			continue
		}
		result = append(result, cloneSale(sale))
	}

	slices.SortFunc(result, func(a, b domain.Sale) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return result, nil
}

func (s *Store) AddRestock(_ context.Context, entry domain.RestockEntry) (*domain.RestockEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.CompanyID == "" || entry.ProductID == "" || entry.Quantity < 1 {
		return nil, store.ErrInvalidRecord
	}
	product, exists := s.productsByID[entry.ProductID]
	if !exists || product.CompanyID != entry.CompanyID {
		return nil, store.ErrNotFound
	}

	now := time.Now().UTC()
	product.Quantity += entry.Quantity
	product.UpdatedAt = now
	s.productsByID[entry.ProductID] = product

	if entry.ID == "" {
		entry.ID = xid.New("restock")
	}
	if entry.ProductName == "" {
		entry.ProductName = product.Name
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}

	s.restocks = append(s.restocks, entry)
	created := entry
	return &created, nil
}

func (s *Store) ListRestocks(_ context.Context, companyID string, limit int) ([]domain.RestockEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.RestockEntry, 0, 64)
	for _, entry := range s.restocks {
		if entry.CompanyID != companyID {
			continue
		}
		result = append(result, entry)
	}

	slices.SortFunc(result, func(a, b domain.RestockEntry) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateInvoice(_ context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if invoice.CompanyID == "" || strings.TrimSpace(invoice.ClientName) == "" {
		return nil, store.ErrInvalidRecord
	}
	if invoice.ID == "" {
		invoice.ID = xid.New("inv")
	}
	if invoice.Status == "" {
		invoice.Status = domain.InvoiceStatusDraft
	}
	now := time.Now().UTC()
	if invoice.IssueDate.IsZero() {
		invoice.IssueDate = now
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}

	s.invoicesByID[invoice.ID] = invoice
	created := invoice
	return &created, nil
}

func (s *Store) ListInvoices(_ context.Context, companyID string) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Invoice, 0, len(s.invoicesByID))
	for _, invoice := range s.invoicesByID {
		if invoice.CompanyID != companyID {
			continue
		}
		result = append(result, invoice)
	}

	slices.SortFunc(result, func(a, b domain.Invoice) int {
		if a.IssueDate.Equal(b.IssueDate) {
			return cmpString(b.ID, a.ID)
		}
		if a.IssueDate.After(b.IssueDate) {
			return -1
		}
		return 1
	})
	return result, nil
}

func (s *Store) UpdateInvoiceStatus(_ context.Context, companyID string, invoiceID string, status string) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invoice, exists := s.invoicesByID[invoiceID]
	if !exists || invoice.CompanyID != companyID {
		return nil, store.ErrNotFound
	}
	invoice.Status = status
	s.invoicesByID[invoiceID] = invoice
	updated := invoice
	return &updated, nil
}

func (s *Store) CreateReceipt(_ context.Context, receipt domain.Receipt) (*domain.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if receipt.CompanyID == "" {
		return nil, store.ErrInvalidRecord
	}
	if receipt.InvoiceID != "" {
		invoice, exists := s.invoicesByID[receipt.InvoiceID]
		if !exists || invoice.CompanyID != receipt.CompanyID {
			return nil, store.ErrNotFound
		}
	}
	if receipt.ID == "" {
		receipt.ID = xid.New("rcpt")
	}
	now := time.Now().UTC()
	if receipt.Date.IsZero() {
		receipt.Date = now
	}
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = now
	}

	s.receiptsByID[receipt.ID] = receipt
	created := receipt
	return &created, nil
}

func (s *Store) ListReceipts(_ context.Context, companyID string) ([]domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Receipt, 0, len(s.receiptsByID))
	for _, receipt := range s.receiptsByID {
		if receipt.CompanyID != companyID {
			continue
		}
		result = append(result, receipt)
	}

	slices.SortFunc(result, func(a, b domain.Receipt) int {
		if a.Date.Equal(b.Date) {
			return cmpString(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	return result, nil
}

func (s *Store) CreateExpense(_ context.Context, expense domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expense.CompanyID == "" || strings.TrimSpace(expense.Category) == "" {
		return nil, store.ErrInvalidRecord
	}
	if expense.ID == "" {
		expense.ID = xid.New("exp")
	}
	if expense.Status == "" {
		expense.Status = domain.ExpenseStatusPending
	}
	now := time.Now().UTC()
	if expense.Date.IsZero() {
		expense.Date = now
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = now
	}

	s.expensesByID[expense.ID] = expense
	created := expense
	return &created, nil
}

func (s *Store) ListExpenses(_ context.Context, companyID string) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Expense, 0, len(s.expensesByID))
	for _, expense := range s.expensesByID {
		if expense.CompanyID != companyID {
			continue
		}
		result = append(result, expense)
	}

	slices.SortFunc(result, func(a, b domain.Expense) int {
		if a.Date.Equal(b.Date) {
			return cmpString(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	return result, nil
}

func (s *Store) UpdateExpenseStatus(_ context.Context, companyID string, expenseID string, status string) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expense, exists := s.expensesByID[expenseID]
	if !exists || expense.CompanyID != companyID {
		return nil, store.ErrNotFound
	}
	expense.Status = status
	s.expensesByID[expenseID] = expense
	updated := expense
	return &updated, nil
}

func (s *Store) SumApprovedExpenses(_ context.Context, companyID string, from time.Time, to time.Time) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, expense := range s.expensesByID {
		if expense.CompanyID != companyID || expense.Status != domain.ExpenseStatusApproved {
			continue
		}
		if !from.IsZero() && expense.Date.Before(from) {
			continue
		}
		if !to.IsZero() && expense.Date.After(to) {
			continue
		}
		total = total.Add(expense.Amount)
	}
	return total, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, companyID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AuditLog, 0, 64)
	for _, entry := range s.auditLogs {
		if companyID != "" && entry.CompanyID != companyID {
			continue
		}
		if !from.IsZero() && entry.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && entry.CreatedAt.After(to) {
			continue
		}
		result = append(result, entry)
	}

	slices.SortFunc(result, func(a, b domain.AuditLog) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidRecord
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrInvalidRecord
	}
	user.Username = username
	if user.Role == "" {
		user.Role = domain.RoleAttendant
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidRecord
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func cloneSale(src domain.Sale) domain.Sale {
	dup := src
	items := make([]domain.SaleItem, len(src.Items))
	copy(items, src.Items)
	dup.Items = items
	return dup
}
