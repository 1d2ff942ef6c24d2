package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/common"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/service"
)

// MockStore is an in-memory implementation of service.Store for testing.
// Behavior can be overridden per method with the *Fn fields.
type MockStore struct {
	// Functions that can be set by tests to control behavior
	ApplyFieldVisitFn    func(ctx context.Context, key string, visit model.FieldVisit) error
	SaveDocumentReviewFn func(ctx context.Context, doc *model.Document, note *model.Notification) error

	Applications  map[string]*model.Application
	Docs          map[string]*model.Document
	Notifications []model.Notification
	AppliedKeys   map[string]model.FieldVisit

	// Call tracking
	ApplyCalls []string

	mu sync.Mutex
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		Applications: make(map[string]*model.Application),
		Docs:         make(map[string]*model.Document),
		AppliedKeys:  make(map[string]model.FieldVisit),
	}
}

// GetApplication implements service.Store.
func (m *MockStore) GetApplication(_ context.Context, id string) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.Applications[id]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", id, common.ErrNotFound)
	}
	cp := *app
	return &cp, nil
}

// ListApplications implements service.Store.
func (m *MockStore) ListApplications(_ context.Context) ([]model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Application, 0, len(m.Applications))
	for _, app := range m.Applications {
		out = append(out, *app)
	}
	return out, nil
}

// GetDocument implements service.Store.
func (m *MockStore) GetDocument(_ context.Context, id string) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.Docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	cp := *doc
	return &cp, nil
}

// ListDocuments implements service.Store.
func (m *MockStore) ListDocuments(_ context.Context, applicationID string) ([]model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Document
	for _, doc := range m.Docs {
		if doc.ApplicationID == applicationID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

// SaveDocumentReview implements service.Store.
func (m *MockStore) SaveDocumentReview(ctx context.Context, doc *model.Document, note *model.Notification) error {
	if m.SaveDocumentReviewFn != nil {
		return m.SaveDocumentReviewFn(ctx, doc, note)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Docs[doc.ID]; !ok {
		return fmt.Errorf("document %s: %w", doc.ID, common.ErrNotFound)
	}
	cp := *doc
	m.Docs[doc.ID] = &cp
	if note != nil {
		m.Notifications = append(m.Notifications, *note)
	}
	return nil
}

// SaveApplicationReview implements service.Store.
func (m *MockStore) SaveApplicationReview(_ context.Context, app *model.Application, note *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Applications[app.ID]; !ok {
		return fmt.Errorf("application %s: %w", app.ID, common.ErrNotFound)
	}
	cp := *app
	m.Applications[app.ID] = &cp
	if note != nil {
		m.Notifications = append(m.Notifications, *note)
	}
	return nil
}

// ListNotifications implements service.Store.
func (m *MockStore) ListNotifications(_ context.Context, applicantID string) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Notification
	for _, note := range m.Notifications {
		if note.ApplicantID == applicantID {
			out = append(out, note)
		}
	}
	return out, nil
}

// ApplyFieldVisit implements service.Store. The default behavior is
// idempotent apply keyed on the idempotency key.
func (m *MockStore) ApplyFieldVisit(ctx context.Context, key string, visit model.FieldVisit) error {
	m.mu.Lock()
	m.ApplyCalls = append(m.ApplyCalls, key)
	m.mu.Unlock()

	if m.ApplyFieldVisitFn != nil {
		return m.ApplyFieldVisitFn(ctx, key, visit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, done := m.AppliedKeys[key]; done {
		return nil
	}
	m.AppliedKeys[key] = visit
	return nil
}

// Migrate implements service.Store.
func (m *MockStore) Migrate(_ context.Context) error { return nil }

// Close implements service.Store.
func (m *MockStore) Close() error { return nil }

// Ensure MockStore implements the Store interface.
var _ service.Store = (*MockStore)(nil)
