package testutil

import (
	"context"
	"sync"

	"cosmossdk.io/math"
)

// TransferCall records one submitted transfer request.
type TransferCall struct {
	RequestID string
	Recipient string
	Amount    math.Uint
}

// MockTokenClient is an in-memory TokenInterface for the service tests. It
// records every submitted transfer and can be primed to fail.
type MockTokenClient struct {
	mu sync.Mutex

	Calls []TransferCall
	// Err is returned by every Transfer call while set.
	Err error
}

func NewMockTokenClient() *MockTokenClient {
	return &MockTokenClient{}
}

func (m *MockTokenClient) Transfer(
	ctx context.Context, requestID, recipient string, amount math.Uint,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Calls = append(m.Calls, TransferCall{
		RequestID: requestID,
		Recipient: recipient,
		Amount:    amount,
	})
	return nil
}

// LastCall returns the most recent transfer, or nil when none was made.
func (m *MockTokenClient) LastCall() *TransferCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Calls) == 0 {
		return nil
	}
	call := m.Calls[len(m.Calls)-1]
	return &call
}
