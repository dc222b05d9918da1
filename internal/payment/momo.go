// Package payment holds the MTN Mobile Money top-up client. The real
// gateway integration is not wired yet; this client mocks the provider
// contract so the wallet flow can be exercised end to end.
package payment

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"stockflow/backend/internal/domain"
	"stockflow/backend/internal/xid"
)

type MomoClient struct {
	mu         sync.Mutex
	statusByID map[string]string
}

func NewMomoClient() *MomoClient {
	return &MomoClient{statusByID: make(map[string]string)}
}

// InitiateTopUp validates the request and registers a pending
// transaction. Invalid requests resolve to a failed result rather than
// an error so callers surface the provider message to the user.
func (c *MomoClient) InitiateTopUp(_ context.Context, req domain.TopUpRequest) (domain.TopUpResult, error) {
	phone := strings.TrimSpace(req.PhoneNumber)
	if !validPhone(phone) {
		return domain.TopUpResult{
			Status: domain.TopUpStatusFailed,
			Error:  "invalid phone number",
		}, nil
	}
	if !req.Amount.IsPositive() {
		return domain.TopUpResult{
			Status: domain.TopUpStatusFailed,
			Error:  "amount must be positive",
		}, nil
	}

	id := xid.New("momo")
	c.mu.Lock()
	c.statusByID[id] = domain.TopUpStatusPending
	c.mu.Unlock()

	return domain.TopUpResult{
		Status:        domain.TopUpStatusPending,
		TransactionID: id,
	}, nil
}

// PollTopUpStatus reports the transaction state. The mock settles a
// pending transaction on its first poll, standing in for the
// provider-side confirmation callback.
func (c *MomoClient) PollTopUpStatus(_ context.Context, transactionID string) (domain.TopUpResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	status, exists := c.statusByID[transactionID]
	if !exists {
		return domain.TopUpResult{
			Status: domain.TopUpStatusFailed,
			Error:  "unknown transaction",
		}, nil
	}
	if status == domain.TopUpStatusPending {
		status = domain.TopUpStatusSuccess
		c.statusByID[transactionID] = status
	}
	return domain.TopUpResult{
		Status:        status,
		TransactionID: transactionID,
	}, nil
}

func validPhone(phone string) bool {
	phone = strings.TrimPrefix(phone, "+")
	if len(phone) < 8 || len(phone) > 15 {
		return false
	}
	for _, r := range phone {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
