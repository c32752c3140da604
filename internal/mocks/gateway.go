package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/phrazzld/deckmind/internal/generation"
)

// MockGateway implements generation.Gateway.
type MockGateway struct {
	// SendFn allows test cases to mock the Send behavior
	SendFn func(ctx context.Context, prompt string) (string, error)

	// Default response values
	Response string
	Err      error

	mu      sync.Mutex
	prompts []string
}

var _ generation.Gateway = (*MockGateway)(nil)

// Send implements generation.Gateway.
func (m *MockGateway) Send(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.SendFn != nil {
		return m.SendFn(ctx, prompt)
	}
	return m.Response, m.Err
}

// Prompts returns every prompt sent so far.
func (m *MockGateway) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Calls returns the number of Send calls.
func (m *MockGateway) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func formatID(n int) string {
	return fmt.Sprintf("%020d", n)
}
