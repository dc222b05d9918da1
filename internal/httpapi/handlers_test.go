package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stockflow/backend/internal/domain"
	"stockflow/backend/internal/payment"
	"stockflow/backend/internal/queue"
	"stockflow/backend/internal/service"
	"stockflow/backend/internal/store/memory"
	"stockflow/backend/internal/syncqueue"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager,
// real Service and a memory-backed sync queue so handler tests exercise the
// complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded("main-company")
	svc := service.New(repo, nil, payment.NewMomoClient(), "main-company", time.Minute)
	syncManager := syncqueue.New(queue.NewMemoryStore(), svc, func(string) {})
	auth := NewAuthManager("test-secret-key", time.Hour, repo)

	return New(svc, auth, syncManager, "*")
}

// loginToken authenticates against the seeded credentials and returns a
// bearer token for the given user.
func loginToken(t *testing.T, handler http.Handler, username, password string) string {
	t.Helper()

	payload, _ := json.Marshal(domain.LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login as %s: expected 200, got %d (body: %s)", username, rec.Code, rec.Body.String())
	}

	var resp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatalf("login as %s returned empty access token", username)
	}
	return resp.AccessToken
}

// doJSON performs an authenticated JSON request with a valid CSRF token
// and decodes the response body into dest (when dest is non-nil).
func doJSON(t *testing.T, api *API, method, path, token string, body any, dest any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-CSRF-Token", api.generateCSRFToken())

	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if dest != nil && rec.Code < 300 {
		if err := json.NewDecoder(rec.Body).Decode(dest); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return rec
}

func firstSeededProduct(t *testing.T, api *API, token string) domain.Product {
	t.Helper()

	var body struct {
		Products []domain.Product `json:"products"`
	}
	rec := doJSON(t, api, http.MethodGet, "/api/v1/products", token, nil, &body)
	if rec.Code != http.StatusOK {
		t.Fatalf("list products: expected 200, got %d", rec.Code)
	}
	if len(body.Products) == 0 {
		t.Fatalf("expected seeded products, got none")
	}
	return body.Products[0]
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	api := newTestAPI(t)

	payload, _ := json.Marshal(domain.LoginRequest{Username: "manager", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestProductsRequireAuth(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestCreateProductRequiresManagerRole(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	attendant := loginToken(t, handler, "attendant", "attendant123")

	rec := doJSON(t, api, http.MethodPost, "/api/v1/products", attendant, domain.ProductCreateRequest{
		Name:     "Matches",
		Price:    decimal.NewFromInt(300),
		Quantity: 40,
	}, nil)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for attendant create, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestCreateAndFetchProduct(t *testing.T) {
	api := newTestAPI(t)
	manager := loginToken(t, api.Handler(), "manager", "manager123")

	var created struct {
		Product domain.Product `json:"product"`
	}
	rec := doJSON(t, api, http.MethodPost, "/api/v1/products", manager, domain.ProductCreateRequest{
		Name:     "Salt 500g",
		Barcode:  "4006381333931",
		Category: "grocery",
		Price:    decimal.NewFromInt(900),
		Quantity: 30,
	}, &created)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if created.Product.ID == "" {
		t.Fatalf("expected non-empty product id")
	}

	var fetched struct {
		Product domain.Product `json:"product"`
	}
	rec = doJSON(t, api, http.MethodGet, "/api/v1/products/"+created.Product.ID, manager, nil, &fetched)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on fetch, got %d", rec.Code)
	}
	if fetched.Product.Name != "Salt 500g" {
		t.Fatalf("expected fetched name Salt 500g, got %q", fetched.Product.Name)
	}
}

func TestCreateProductRejectsBadBarcode(t *testing.T) {
	api := newTestAPI(t)
	manager := loginToken(t, api.Handler(), "manager", "manager123")

	rec := doJSON(t, api, http.MethodPost, "/api/v1/products", manager, domain.ProductCreateRequest{
		Name:    "Bad Barcode Item",
		Barcode: "1234567890124",
		Price:   decimal.NewFromInt(500),
	}, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for checksum failure, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestRecordSaleAdjustsStock(t *testing.T) {
	api := newTestAPI(t)
	attendant := loginToken(t, api.Handler(), "attendant", "attendant123")
	product := firstSeededProduct(t, api, attendant)

	var created struct {
		Sale domain.Sale `json:"sale"`
	}
	rec := doJSON(t, api, http.MethodPost, "/api/v1/sales", attendant, domain.SaleRequest{
		Items: []domain.SaleLine{{ProductID: product.ID, Quantity: 2}},
	}, &created)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if len(created.Sale.Items) != 1 {
		t.Fatalf("expected 1 sale item, got %d", len(created.Sale.Items))
	}

	var fetched struct {
		Product domain.Product `json:"product"`
	}
	doJSON(t, api, http.MethodGet, "/api/v1/products/"+product.ID, attendant, nil, &fetched)
	if fetched.Product.Quantity != product.Quantity-2 {
		t.Fatalf("expected quantity %d after sale, got %d", product.Quantity-2, fetched.Product.Quantity)
	}
}

func TestRecordSaleInsufficientStockReturns409(t *testing.T) {
	api := newTestAPI(t)
	attendant := loginToken(t, api.Handler(), "attendant", "attendant123")
	product := firstSeededProduct(t, api, attendant)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/sales", attendant, domain.SaleRequest{
		Items: []domain.SaleLine{{ProductID: product.ID, Quantity: product.Quantity + 1}},
	}, nil)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for oversell, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestExpenseReviewForbiddenForAttendant(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	manager := loginToken(t, handler, "manager", "manager123")
	attendant := loginToken(t, handler, "attendant", "attendant123")

	var created struct {
		Expense domain.Expense `json:"expense"`
	}
	rec := doJSON(t, api, http.MethodPost, "/api/v1/expenses", attendant, domain.ExpenseCreateRequest{
		Description: "Generator fuel",
		Category:    "utilities",
		Amount:      decimal.NewFromInt(15000),
		Date:        "2026-08-20",
	}, &created)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if created.Expense.Status != domain.ExpenseStatusPending {
		t.Fatalf("expected pending status, got %q", created.Expense.Status)
	}

	reviewPath := "/api/v1/expenses/" + created.Expense.ID + "/review"
	rec = doJSON(t, api, http.MethodPost, reviewPath, attendant, domain.ExpenseReviewRequest{Status: domain.ExpenseStatusApproved}, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for attendant review, got %d", rec.Code)
	}

	var reviewed struct {
		Expense domain.Expense `json:"expense"`
	}
	rec = doJSON(t, api, http.MethodPost, reviewPath, manager, domain.ExpenseReviewRequest{Status: domain.ExpenseStatusApproved}, &reviewed)
	if rec.Code != http.StatusOK {
		t.Fatalf("manager review: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if reviewed.Expense.Status != domain.ExpenseStatusApproved {
		t.Fatalf("expected approved status, got %q", reviewed.Expense.Status)
	}
}

func TestProfitLossReportJSONAndCSV(t *testing.T) {
	api := newTestAPI(t)
	manager := loginToken(t, api.Handler(), "manager", "manager123")

	rec := doJSON(t, api, http.MethodGet, "/api/v1/reports/profit-loss?period=month&date=2026-08-15", manager, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("json report: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if body["period"] != "month" {
		t.Fatalf("expected period month, got %v", body["period"])
	}

	rec = doJSON(t, api, http.MethodGet, "/api/v1/reports/profit-loss?period=month&date=2026-08-15&format=csv", manager, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("csv report: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("expected text/csv, got %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("expected non-empty csv body")
	}
}

func TestProfitLossRejectsBadPeriod(t *testing.T) {
	api := newTestAPI(t)
	manager := loginToken(t, api.Handler(), "manager", "manager123")

	rec := doJSON(t, api, http.MethodGet, "/api/v1/reports/profit-loss?period=week", manager, nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown period, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestSyncQueueEnqueueListDrain(t *testing.T) {
	api := newTestAPI(t)
	attendant := loginToken(t, api.Handler(), "attendant", "attendant123")
	product := firstSeededProduct(t, api, attendant)

	action := domain.QueuedAction{
		Kind: domain.ActionKindSale,
		Sale: &domain.SaleRequest{
			Items: []domain.SaleLine{{ProductID: product.ID, Quantity: 1}},
		},
	}
	rec := doJSON(t, api, http.MethodPost, "/api/v1/sync/queue", attendant, action, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("enqueue: expected 202, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var listed struct {
		State   string                `json:"state"`
		Pending int                   `json:"pending"`
		Actions []domain.QueuedAction `json:"actions"`
	}
	rec = doJSON(t, api, http.MethodGet, "/api/v1/sync/queue", attendant, nil, &listed)
	if rec.Code != http.StatusOK {
		t.Fatalf("list queue: expected 200, got %d", rec.Code)
	}
	if listed.Pending != 1 || len(listed.Actions) != 1 {
		t.Fatalf("expected 1 pending action, got pending=%d len=%d", listed.Pending, len(listed.Actions))
	}

	rec = doJSON(t, api, http.MethodPost, "/api/v1/sync/drain", attendant, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("drain: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	doJSON(t, api, http.MethodGet, "/api/v1/sync/queue", attendant, nil, &listed)
	if listed.Pending != 0 {
		t.Fatalf("expected empty queue after drain, got %d", listed.Pending)
	}

	var fetched struct {
		Product domain.Product `json:"product"`
	}
	doJSON(t, api, http.MethodGet, "/api/v1/products/"+product.ID, attendant, nil, &fetched)
	if fetched.Product.Quantity != product.Quantity-1 {
		t.Fatalf("expected drained sale to decrement stock to %d, got %d", product.Quantity-1, fetched.Product.Quantity)
	}
}

func TestSyncQueueRejectsMalformedAction(t *testing.T) {
	api := newTestAPI(t)
	attendant := loginToken(t, api.Handler(), "attendant", "attendant123")

	rec := doJSON(t, api, http.MethodPost, "/api/v1/sync/queue", attendant, domain.QueuedAction{Kind: "transfer"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestBarcodeValidateEndpoint(t *testing.T) {
	api := newTestAPI(t)
	attendant := loginToken(t, api.Handler(), "attendant", "attendant123")

	var resp domain.BarcodeValidateResponse
	rec := doJSON(t, api, http.MethodPost, "/api/v1/barcodes/validate", attendant, domain.BarcodeValidateRequest{Code: "4006381333931"}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !resp.Valid || resp.Format != "EAN-13" {
		t.Fatalf("expected valid EAN-13, got valid=%v format=%q", resp.Valid, resp.Format)
	}
}

func TestTopUpLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	manager := loginToken(t, api.Handler(), "manager", "manager123")

	var initiated domain.TopUpResult
	rec := doJSON(t, api, http.MethodPost, "/api/v1/payments/momo/topup", manager, domain.TopUpRequest{
		PhoneNumber: "+256700123456",
		Amount:      decimal.NewFromInt(5000),
	}, &initiated)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("initiate: expected 202, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if initiated.Status != domain.TopUpStatusPending || initiated.TransactionID == "" {
		t.Fatalf("expected pending with transaction id, got %+v", initiated)
	}

	var polled domain.TopUpResult
	rec = doJSON(t, api, http.MethodGet, "/api/v1/payments/momo/topup/"+initiated.TransactionID, manager, nil, &polled)
	if rec.Code != http.StatusOK {
		t.Fatalf("poll: expected 200, got %d", rec.Code)
	}
	if polled.Status != domain.TopUpStatusSuccess {
		t.Fatalf("expected success after poll, got %q", polled.Status)
	}
}

func TestUsersEndpointManagerOnly(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	manager := loginToken(t, handler, "manager", "manager123")
	attendant := loginToken(t, handler, "attendant", "attendant123")

	rec := doJSON(t, api, http.MethodGet, "/api/v1/users", attendant, nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for attendant, got %d", rec.Code)
	}

	var created struct {
		User UserView `json:"user"`
	}
	rec = doJSON(t, api, http.MethodPost, "/api/v1/users", manager, domain.UserCreateRequest{
		Username: "cashier2",
		Password: "secret99",
		Role:     domain.RoleAttendant,
	}, &created)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if created.User.Username != "cashier2" {
		t.Fatalf("expected cashier2, got %q", created.User.Username)
	}

	var listed struct {
		Users []UserView `json:"users"`
	}
	rec = doJSON(t, api, http.MethodGet, "/api/v1/users", manager, nil, &listed)
	if rec.Code != http.StatusOK {
		t.Fatalf("list users: expected 200, got %d", rec.Code)
	}
	found := false
	for _, u := range listed.Users {
		if u.Username == "cashier2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected cashier2 in user list, got %+v", listed.Users)
	}
}

func TestAuditLogsCaptureSales(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	manager := loginToken(t, handler, "manager", "manager123")
	attendant := loginToken(t, handler, "attendant", "attendant123")
	product := firstSeededProduct(t, api, attendant)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/sales", attendant, domain.SaleRequest{
		Items: []domain.SaleLine{{ProductID: product.ID, Quantity: 1}},
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("sale: expected 201, got %d", rec.Code)
	}

	var listed struct {
		AuditLogs []domain.AuditLog `json:"audit_logs"`
	}
	rec = doJSON(t, api, http.MethodGet, "/api/v1/audit-logs", manager, nil, &listed)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit logs: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if len(listed.AuditLogs) == 0 {
		t.Fatalf("expected at least one audit entry after a sale")
	}
}

func TestDashboardStatsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	manager := loginToken(t, api.Handler(), "manager", "manager123")

	var stats domain.DashboardStats
	rec := doJSON(t, api, http.MethodGet, "/api/v1/dashboard/stats", manager, nil, &stats)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if stats.LowStockCount == 0 {
		t.Fatalf("expected seeded low-stock product to be counted")
	}
}

func TestLowStockEndpoint(t *testing.T) {
	api := newTestAPI(t)
	manager := loginToken(t, api.Handler(), "manager", "manager123")

	var body struct {
		Products []domain.Product `json:"products"`
	}
	rec := doJSON(t, api, http.MethodGet, "/api/v1/products/low-stock", manager, nil, &body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	for _, p := range body.Products {
		if p.Quantity > p.LowStockThreshold {
			t.Fatalf("product %s quantity %d above threshold %d", p.Name, p.Quantity, p.LowStockThreshold)
		}
	}
	if len(body.Products) == 0 {
		t.Fatalf("expected seeded low-stock product in response")
	}
}

func TestInvoiceStatusTransitionOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	manager := loginToken(t, api.Handler(), "manager", "manager123")

	var created struct {
		Invoice domain.Invoice `json:"invoice"`
	}
	rec := doJSON(t, api, http.MethodPost, "/api/v1/invoices", manager, domain.InvoiceCreateRequest{
		ClientName: "Acme Traders",
		Total:      decimal.NewFromInt(120000),
		IssueDate:  "2026-08-01",
	}, &created)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create invoice: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	path := fmt.Sprintf("/api/v1/invoices/%s/status", created.Invoice.ID)
	var updated struct {
		Invoice domain.Invoice `json:"invoice"`
	}
	rec = doJSON(t, api, http.MethodPatch, path, manager, map[string]string{"status": domain.InvoiceStatusPaid}, &updated)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if updated.Invoice.Status != domain.InvoiceStatusPaid {
		t.Fatalf("expected paid, got %q", updated.Invoice.Status)
	}

	rec = doJSON(t, api, http.MethodPatch, path, manager, map[string]string{"status": "bogus"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bogus status, got %d", rec.Code)
	}
}
