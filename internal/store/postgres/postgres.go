package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"stockflow/backend/internal/domain"
	"stockflow/backend/internal/store"
	"stockflow/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context, companyID string) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, name, sku, barcode, category, price, buying_price,
			quantity, low_stock_threshold, created_at, updated_at
		FROM products
		WHERE company_id = $1
		ORDER BY category, name
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) GetProductByID(ctx context.Context, companyID string, productID string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, name, sku, barcode, category, price, buying_price,
			quantity, low_stock_threshold, created_at, updated_at
		FROM products
		WHERE id = $1 AND company_id = $2
	`, productID, companyID)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.CompanyID == "" || product.Name == "" || product.Quantity < 0 {
		return nil, store.ErrInvalidRecord
	}
	if product.Price.IsNegative() || product.BuyingPrice.IsNegative() {
		return nil, store.ErrInvalidRecord
	}
	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (
			id, company_id, name, sku, barcode, category, price, buying_price,
			quantity, low_stock_threshold, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, product.ID, product.CompanyID, product.Name, product.SKU, nullIfEmpty(product.Barcode),
		product.Category, product.Price, product.BuyingPrice, product.Quantity,
		product.LowStockThreshold, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRecord
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" || product.Quantity < 0 {
		return nil, store.ErrInvalidRecord
	}
	if product.Price.IsNegative() || product.BuyingPrice.IsNegative() {
		return nil, store.ErrInvalidRecord
	}
	product.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, barcode = $2, category = $3, price = $4, buying_price = $5,
			quantity = $6, low_stock_threshold = $7, updated_at = $8
		WHERE id = $9 AND company_id = $10
	`, product.Name, nullIfEmpty(product.Barcode), product.Category, product.Price,
		product.BuyingPrice, product.Quantity, product.LowStockThreshold,
		product.UpdatedAt, product.ID, product.CompanyID)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := product
	return &updated, nil
}

// ProcessSale decrements stock with a conditional UPDATE per line, so
// two concurrent sales can never drive a quantity below zero. Either
// every line applies and the sale row is written, or the transaction
// rolls back untouched.
func (s *Store) ProcessSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.CompanyID == "" || len(sale.Items) == 0 {
		return nil, store.ErrInvalidRecord
	}
	for _, item := range sale.Items {
		if item.Quantity < 1 {
			return nil, store.ErrInvalidRecord
		}
	}
	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	for _, item := range sale.Items {
		result, err := pgTx.ExecContext(ctx, `
			UPDATE products
			SET quantity = quantity - $1, updated_at = now()
			WHERE id = $2 AND company_id = $3 AND quantity >= $1
		`, item.Quantity, item.ProductID, sale.CompanyID)
		if err != nil {
			return nil, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			var exists bool
			if err := pgTx.QueryRowContext(ctx, `
				SELECT EXISTS (SELECT 1 FROM products WHERE id = $1 AND company_id = $2)
			`, item.ProductID, sale.CompanyID).Scan(&exists); err != nil {
				return nil, err
			}
			if !exists {
				return nil, store.ErrNotFound
			}
			return nil, store.ErrInsufficientStock
		}
	}

	itemsJSON, err := json.Marshal(sale.Items)
	if err != nil {
		return nil, err
	}
	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO sales (
			id, company_id, items, total, total_profit,
			attendant_id, attendant_email, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, sale.ID, sale.CompanyID, itemsJSON, sale.Total, sale.TotalProfit,
		nullIfEmpty(sale.AttendantID), nullIfEmpty(sale.AttendantEmail), sale.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	created := sale
	return &created, nil
}

func (s *Store) ListSales(ctx context.Context, companyID string, from time.Time, to time.Time) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, items, total, total_profit,
			attendant_id, attendant_email, created_at
		FROM sales
		WHERE company_id = $1
			AND ($2::timestamptz IS NULL OR created_at >= $2)
			AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at DESC, id DESC
	`, companyID, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 64)
	for rows.Next() {
		var sale domain.Sale
		var itemsRaw []byte
		var attendantID, attendantEmail sql.NullString
		if err := rows.Scan(&sale.ID, &sale.CompanyID, &itemsRaw, &sale.Total,
			&sale.TotalProfit, &attendantID, &attendantEmail, &sale.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(itemsRaw, &sale.Items); err != nil {
			return nil, fmt.Errorf("sale %s items: %w", sale.ID, err)
		}
		sale.AttendantID = attendantID.String
		sale.AttendantEmail = attendantEmail.String
		sale.CreatedAt = sale.CreatedAt.UTC()
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *Store) AddRestock(ctx context.Context, entry domain.RestockEntry) (*domain.RestockEntry, error) {
	if entry.CompanyID == "" || entry.ProductID == "" || entry.Quantity < 1 {
		return nil, store.ErrInvalidRecord
	}
	if entry.ID == "" {
		entry.ID = xid.New("restock")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	var productName string
	err = pgTx.QueryRowContext(ctx, `
		UPDATE products
		SET quantity = quantity + $1, updated_at = now()
		WHERE id = $2 AND company_id = $3
		RETURNING name
	`, entry.Quantity, entry.ProductID, entry.CompanyID).Scan(&productName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if entry.ProductName == "" {
		entry.ProductName = productName
	}

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO restocks (
			id, company_id, product_id, product_name, quantity,
			user_id, user_email, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.CompanyID, entry.ProductID, entry.ProductName, entry.Quantity,
		nullIfEmpty(entry.UserID), nullIfEmpty(entry.UserEmail), entry.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	created := entry
	return &created, nil
}

func (s *Store) ListRestocks(ctx context.Context, companyID string, limit int) ([]domain.RestockEntry, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, product_id, product_name, quantity,
			user_id, user_email, created_at
		FROM restocks
		WHERE company_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.RestockEntry, 0, limit)
	for rows.Next() {
		var entry domain.RestockEntry
		var userID, userEmail sql.NullString
		if err := rows.Scan(&entry.ID, &entry.CompanyID, &entry.ProductID,
			&entry.ProductName, &entry.Quantity, &userID, &userEmail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.UserID = userID.String
		entry.UserEmail = userEmail.String
		entry.CreatedAt = entry.CreatedAt.UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) CreateInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices (id, company_id, client_name, total, status, issue_date, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, invoice.ID, invoice.CompanyID, invoice.ClientName, invoice.Total,
		invoice.Status, invoice.IssueDate, invoice.CreatedAt)
	if err != nil {
		return nil, err
	}

	created := invoice
	return &created, nil
}

func (s *Store) ListInvoices(ctx context.Context, companyID string) ([]domain.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, client_name, total, status, issue_date, created_at
		FROM invoices
		WHERE company_id = $1
		ORDER BY issue_date DESC, id DESC
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0, 64)
	for rows.Next() {
		var invoice domain.Invoice
		if err := rows.Scan(&invoice.ID, &invoice.CompanyID, &invoice.ClientName,
			&invoice.Total, &invoice.Status, &invoice.IssueDate, &invoice.CreatedAt); err != nil {
			return nil, err
		}
		invoice.IssueDate = invoice.IssueDate.UTC()
		invoice.CreatedAt = invoice.CreatedAt.UTC()
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (s *Store) UpdateInvoiceStatus(ctx context.Context, companyID string, invoiceID string, status string) (*domain.Invoice, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE invoices
		SET status = $1
		WHERE id = $2 AND company_id = $3
		RETURNING id, company_id, client_name, total, status, issue_date, created_at
	`, status, invoiceID, companyID)

	var invoice domain.Invoice
	err := row.Scan(&invoice.ID, &invoice.CompanyID, &invoice.ClientName,
		&invoice.Total, &invoice.Status, &invoice.IssueDate, &invoice.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	invoice.IssueDate = invoice.IssueDate.UTC()
	invoice.CreatedAt = invoice.CreatedAt.UTC()
	return &invoice, nil
}

func (s *Store) CreateReceipt(ctx context.Context, receipt domain.Receipt) (*domain.Receipt, error) {
	if receipt.CompanyID == "" {
		return nil, store.ErrInvalidRecord
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO receipts (id, company_id, invoice_id, amount, date, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, receipt.ID, receipt.CompanyID, nullIfEmpty(receipt.InvoiceID),
		receipt.Amount, receipt.Date, receipt.CreatedAt)
	if err != nil {
		return nil, err
	}

	created := receipt
	return &created, nil
}

func (s *Store) ListReceipts(ctx context.Context, companyID string) ([]domain.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, invoice_id, amount, date, created_at
		FROM receipts
		WHERE company_id = $1
		ORDER BY date DESC, id DESC
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := make([]domain.Receipt, 0, 64)
	for rows.Next() {
		var receipt domain.Receipt
		var invoiceID sql.NullString
		if err := rows.Scan(&receipt.ID, &receipt.CompanyID, &invoiceID,
			&receipt.Amount, &receipt.Date, &receipt.CreatedAt); err != nil {
			return nil, err
		}
		receipt.InvoiceID = invoiceID.String
		receipt.Date = receipt.Date.UTC()
		receipt.CreatedAt = receipt.CreatedAt.UTC()
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return receipts, nil
}

func (s *Store) CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, company_id, amount, category, description, date, status, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, expense.ID, expense.CompanyID, expense.Amount, expense.Category,
		strings.TrimSpace(expense.Description), expense.Date, expense.Status,
		nullIfEmpty(expense.CreatedBy), expense.CreatedAt)
	if err != nil {
		return nil, err
	}

	created := expense
	return &created, nil
}

func (s *Store) ListExpenses(ctx context.Context, companyID string) ([]domain.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, amount, category, description, date, status, created_by, created_at
		FROM expenses
		WHERE company_id = $1
		ORDER BY date DESC, id DESC
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0, 64)
	for rows.Next() {
		var expense domain.Expense
		var createdBy sql.NullString
		if err := rows.Scan(&expense.ID, &expense.CompanyID, &expense.Amount,
			&expense.Category, &expense.Description, &expense.Date,
			&expense.Status, &createdBy, &expense.CreatedAt); err != nil {
			return nil, err
		}
		expense.CreatedBy = createdBy.String
		expense.Date = expense.Date.UTC()
		expense.CreatedAt = expense.CreatedAt.UTC()
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (s *Store) UpdateExpenseStatus(ctx context.Context, companyID string, expenseID string, status string) (*domain.Expense, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE expenses
		SET status = $1
		WHERE id = $2 AND company_id = $3
		RETURNING id, company_id, amount, category, description, date, status, created_by, created_at
	`, status, expenseID, companyID)

	var expense domain.Expense
	var createdBy sql.NullString
	err := row.Scan(&expense.ID, &expense.CompanyID, &expense.Amount,
		&expense.Category, &expense.Description, &expense.Date,
		&expense.Status, &createdBy, &expense.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	expense.CreatedBy = createdBy.String
	expense.Date = expense.Date.UTC()
	expense.CreatedAt = expense.CreatedAt.UTC()
	return &expense, nil
}

func (s *Store) SumApprovedExpenses(ctx context.Context, companyID string, from time.Time, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE company_id = $1 AND status = $2
			AND ($3::timestamptz IS NULL OR date >= $3)
			AND ($4::timestamptz IS NULL OR date <= $4)
	`, companyID, domain.ExpenseStatusApproved, nullTime(from), nullTime(to)).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, company_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, entry.ID, entry.CompanyID, entry.ActorUsername, entry.ActorRole,
		entry.Action, entry.EntityType, nullIfEmpty(entry.EntityID),
		strings.TrimSpace(entry.Detail), entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, companyID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE ($1 = '' OR company_id = $1)
			AND ($2::timestamptz IS NULL OR created_at >= $2)
			AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`, companyID, nullTime(from), nullTime(to), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		var entityID sql.NullString
		if err := rows.Scan(&entry.ID, &entry.CompanyID, &entry.ActorUsername,
			&entry.ActorRole, &entry.Action, &entry.EntityType, &entityID,
			&entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.EntityID = entityID.String
		entry.CreatedAt = entry.CreatedAt.UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidRecord
	}
	if user.Role == "" {
		user.Role = domain.RoleAttendant
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, company_id, active, created_at)
		VALUES ($1,$2,$3,$4,true,$5)
	`, username, user.Password, user.Role, user.CompanyID, user.CreatedAt)
	if isUniqueViolation(err) {
		return store.ErrInvalidRecord
	}
	return err
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, company_id, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role,
			&user.CompanyID, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidRecord
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $1 WHERE username = $2
	`, password, username)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var barcode sql.NullString
	err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.SKU, &barcode, &p.Category,
		&p.Price, &p.BuyingPrice, &p.Quantity, &p.LowStockThreshold,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	p.Barcode = barcode.String
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val time.Time) any {
	if val.IsZero() {
		return nil
	}
	return val
}
