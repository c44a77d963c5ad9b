package testing

import (
	"context"
	"sync"

	"github.com/aristath/yieldrouter/internal/domain"
)

// MockOpportunitySource is a settable implementation of domain.OpportunitySource.
type MockOpportunitySource struct {
	mu            sync.RWMutex
	name          string
	opportunities []domain.YieldOpportunity
	err           error
	calls         int
}

// NewMockOpportunitySource creates a new mock source with the given name.
func NewMockOpportunitySource(name string) *MockOpportunitySource {
	return &MockOpportunitySource{
		name:          name,
		opportunities: make([]domain.YieldOpportunity, 0),
	}
}

// SetOpportunities sets the catalog to return
func (m *MockOpportunitySource) SetOpportunities(opps []domain.YieldOpportunity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opportunities = opps
}

// SetError sets the error to return
func (m *MockOpportunitySource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Opportunities was called.
func (m *MockOpportunitySource) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// Name implements domain.OpportunitySource
func (m *MockOpportunitySource) Name() string {
	return m.name
}

// Opportunities implements domain.OpportunitySource
func (m *MockOpportunitySource) Opportunities(ctx context.Context) ([]domain.YieldOpportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	result := make([]domain.YieldOpportunity, len(m.opportunities))
	copy(result, m.opportunities)
	return result, nil
}

var _ domain.OpportunitySource = (*MockOpportunitySource)(nil)
