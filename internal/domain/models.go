package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID                string          `json:"id"`
	CompanyID         string          `json:"company_id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Barcode           string          `json:"barcode,omitempty"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"`
	BuyingPrice       decimal.Decimal `json:"buying_price"`
	Quantity          int             `json:"quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type ProductCreateRequest struct {
	CompanyID         string          `json:"company_id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Barcode           string          `json:"barcode,omitempty"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"`
	BuyingPrice       decimal.Decimal `json:"buying_price"`
	Quantity          int             `json:"quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

type ProductUpdateRequest struct {
	Name              *string          `json:"name,omitempty"`
	Barcode           *string          `json:"barcode,omitempty"`
	Category          *string          `json:"category,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	BuyingPrice       *decimal.Decimal `json:"buying_price,omitempty"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty"`
}

type SaleItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	BuyingPrice decimal.Decimal `json:"buying_price"`
	Total       decimal.Decimal `json:"total"`
	Profit      decimal.Decimal `json:"profit"`
}

type Sale struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	Items          []SaleItem      `json:"items"`
	Total          decimal.Decimal `json:"total"`
	TotalProfit    decimal.Decimal `json:"total_profit"`
	AttendantID    string          `json:"attendant_id"`
	AttendantEmail string          `json:"attendant_email"`
	CreatedAt      time.Time       `json:"created_at"`
}

type SaleRequest struct {
	CompanyID      string     `json:"company_id"`
	Items          []SaleLine `json:"items"`
	AttendantID    string     `json:"attendant_id"`
	AttendantEmail string     `json:"attendant_email"`
}

// SaleLine is the caller-facing line item; unit prices and profit are
// resolved server-side from the product record at apply time.
type SaleLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type RestockEntry struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UserID      string    `json:"user_id"`
	UserEmail   string    `json:"user_email"`
	CreatedAt   time.Time `json:"created_at"`
}

type RestockRequest struct {
	CompanyID string `json:"company_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
}

const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusSent    = "sent"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

type Invoice struct {
	ID         string          `json:"id"`
	CompanyID  string          `json:"company_id"`
	ClientName string          `json:"client_name"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	IssueDate  time.Time       `json:"issue_date"`
	CreatedAt  time.Time       `json:"created_at"`
}

type InvoiceCreateRequest struct {
	CompanyID  string          `json:"company_id"`
	ClientName string          `json:"client_name"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	IssueDate  string          `json:"issue_date"`
}

type Receipt struct {
	ID        string          `json:"id"`
	CompanyID string          `json:"company_id"`
	InvoiceID string          `json:"invoice_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
}

type ReceiptCreateRequest struct {
	CompanyID string          `json:"company_id"`
	InvoiceID string          `json:"invoice_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
}

const (
	ExpenseStatusPending  = "pending"
	ExpenseStatusApproved = "approved"
	ExpenseStatusRejected = "rejected"
)

type Expense struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"company_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	Status      string          `json:"status"`
	CreatedBy   string          `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ExpenseCreateRequest struct {
	CompanyID   string          `json:"company_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date"`
}

type ExpenseReviewRequest struct {
	Status string `json:"status"`
}

const (
	ActionKindSale    = "sale"
	ActionKindRestock = "restock"
)

// QueuedAction is one deferred write captured while offline. It is
// appended to the durable queue, never mutated in place, and removed
// only by a fully successful drain.
type QueuedAction struct {
	Kind       string          `json:"kind"`
	Sale       *SaleRequest    `json:"sale,omitempty"`
	Restock    *RestockRequest `json:"restock,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

type DashboardStats struct {
	CompanyID      string          `json:"company_id"`
	TotalProducts  int             `json:"total_products"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	InventoryCost  decimal.Decimal `json:"inventory_cost"`
	TotalProfit    decimal.Decimal `json:"total_profit"`
	LowStockCount  int             `json:"low_stock_count"`
	TodaySales     decimal.Decimal `json:"today_sales"`
	TodayProfit    decimal.Decimal `json:"today_profit"`
	TodayExpenses  decimal.Decimal `json:"today_expenses"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	CompanyID   string `json:"company_id"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username  string
	Role      string
	CompanyID string
}

const (
	RoleManager   = "manager"
	RoleAdmin     = "admin"
	RoleAttendant = "attendant"
)

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	CompanyID string
	Active    bool
	CreatedAt time.Time
}

type UserCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type AuditLog struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	TopUpStatusPending = "pending"
	TopUpStatusSuccess = "success"
	TopUpStatusFailed  = "failed"
)

type TopUpRequest struct {
	PhoneNumber string          `json:"phone_number"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference"`
}

type TopUpResult struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

type BarcodeValidateRequest struct {
	Code string `json:"code"`
}

type BarcodeValidateResponse struct {
	Code   string `json:"code"`
	Valid  bool   `json:"valid"`
	Format string `json:"format,omitempty"`
}
