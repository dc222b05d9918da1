package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"stockflow/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidRecord     = errors.New("invalid record")
)

type Repository interface {
	ListProducts(ctx context.Context, companyID string) ([]domain.Product, error)
	GetProductByID(ctx context.Context, companyID string, productID string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)

	// ProcessSale records the sale and decrements stock for every line
	// atomically; it fails with ErrInsufficientStock if any line would
	// drive a quantity below zero.
	ProcessSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	ListSales(ctx context.Context, companyID string, from time.Time, to time.Time) ([]domain.Sale, error)

	AddRestock(ctx context.Context, entry domain.RestockEntry) (*domain.RestockEntry, error)
	ListRestocks(ctx context.Context, companyID string, limit int) ([]domain.RestockEntry, error)

	CreateInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, companyID string) ([]domain.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, companyID string, invoiceID string, status string) (*domain.Invoice, error)

	CreateReceipt(ctx context.Context, receipt domain.Receipt) (*domain.Receipt, error)
	ListReceipts(ctx context.Context, companyID string) ([]domain.Receipt, error)

	CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error)
	ListExpenses(ctx context.Context, companyID string) ([]domain.Expense, error)
	UpdateExpenseStatus(ctx context.Context, companyID string, expenseID string, status string) (*domain.Expense, error)
	SumApprovedExpenses(ctx context.Context, companyID string, from time.Time, to time.Time) (decimal.Decimal, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, companyID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
