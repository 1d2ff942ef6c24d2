package identity

import (
	"context"
	"sync"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/service"
)

// MockProvider is a mock implementation of the identity collaborator for
// testing.
type MockProvider struct {
	// Session and Err control what Current returns.
	Session *model.Session
	Err     error

	// Call tracking
	CurrentCalls int

	callbacks []func()
	mu        sync.Mutex
}

// NewMockProvider creates a mock provider returning the given session.
func NewMockProvider(session *model.Session) *MockProvider {
	return &MockProvider{Session: session}
}

// Current implements service.IdentityProvider.
func (m *MockProvider) Current(_ context.Context) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CurrentCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Session == nil {
		return nil, ErrNoToken
	}
	cp := *m.Session
	return &cp, nil
}

// OnChange implements service.IdentityProvider.
func (m *MockProvider) OnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// SwitchTo replaces the current session and fires change callbacks, the way
// a sign-in or sign-out would.
func (m *MockProvider) SwitchTo(session *model.Session, err error) {
	m.mu.Lock()
	m.Session = session
	m.Err = err
	callbacks := make([]func(), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Ensure MockProvider implements the IdentityProvider interface.
var _ service.IdentityProvider = (*MockProvider)(nil)
