package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/common"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
)

// Helper function to create a migrated test store.
func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "review.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// Helper to seed one application with a document in the attention state.
func seedApplication(t *testing.T, store *SQLiteStore) (*model.Application, *model.Document) {
	t.Helper()
	ctx := context.Background()

	app := &model.Application{
		ID:              "app-1",
		ApplicantID:     "citizen-9",
		ApplicantName:   "R. Sharma",
		SchemeID:        "scheme-7",
		RequestedAmount: 25000,
	}
	if err := store.SaveApplication(ctx, app); err != nil {
		t.Fatalf("Failed to save application: %v", err)
	}

	doc := &model.Document{
		ID:            "doc-1",
		ApplicationID: app.ID,
		Type:          "income_certificate",
		URL:           "https://files.example/doc-1.pdf",
		Status:        model.DocAttention,
	}
	if err := store.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("Failed to save document: %v", err)
	}

	return app, doc
}

func TestSQLiteStore_ApplicationRoundTrip(t *testing.T) {
	store := createTestStore(t)
	app, doc := seedApplication(t, store)
	ctx := context.Background()

	got, err := store.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("Failed to get application: %v", err)
	}
	if got.ApplicantID != app.ApplicantID {
		t.Errorf("Expected applicant %q, got %q", app.ApplicantID, got.ApplicantID)
	}
	if len(got.Documents) != 1 || got.Documents[0].ID != doc.ID {
		t.Errorf("Expected document %q attached, got %+v", doc.ID, got.Documents)
	}
	if got.Status() != model.AppPending {
		t.Errorf("Expected pending status, got %q", got.Status())
	}
}

func TestSQLiteStore_GetApplicationNotFound(t *testing.T) {
	store := createTestStore(t)

	_, err := store.GetApplication(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}
}

func TestSQLiteStore_SaveDocumentReviewWithNotification(t *testing.T) {
	store := createTestStore(t)
	app, doc := seedApplication(t, store)
	ctx := context.Background()

	doc.Status = model.DocRejected
	doc.RejectionReason = "blurry photo"
	doc.LastModifiedAt = time.Now()
	doc.LastModifiedBy = "officer-1"

	note := &model.Notification{
		ID:          "note-1",
		ApplicantID: app.ApplicantID,
		Title:       "Document needs your attention",
		Message:     "blurry photo",
		DocumentID:  doc.ID,
	}

	if err := store.SaveDocumentReview(ctx, doc, note); err != nil {
		t.Fatalf("Failed to save review: %v", err)
	}

	gotDoc, err := store.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if gotDoc.Status != model.DocRejected || gotDoc.RejectionReason != "blurry photo" {
		t.Errorf("Document not updated: %+v", gotDoc)
	}
	if gotDoc.LastModifiedBy != "officer-1" {
		t.Errorf("Expected reviewer recorded, got %q", gotDoc.LastModifiedBy)
	}

	notes, err := store.ListNotifications(ctx, app.ApplicantID)
	if err != nil {
		t.Fatalf("Failed to list notifications: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notes))
	}
	if notes[0].Message != "blurry photo" || notes[0].DocumentID != doc.ID {
		t.Errorf("Unexpected notification: %+v", notes[0])
	}
}

func TestSQLiteStore_SaveDocumentReviewValidatesReason(t *testing.T) {
	store := createTestStore(t)
	_, doc := seedApplication(t, store)

	doc.Status = model.DocRejected
	doc.RejectionReason = ""

	if err := store.SaveDocumentReview(context.Background(), doc, nil); err == nil {
		t.Error("Expected validation error for rejected document without reason")
	}
}

func TestSQLiteStore_SaveDocumentReviewMissingDocument(t *testing.T) {
	store := createTestStore(t)
	seedApplication(t, store)
	ctx := context.Background()

	ghost := &model.Document{
		ID:            "ghost",
		ApplicationID: "app-1",
		Type:          "x",
		URL:           "u",
		Status:        model.DocVerified,
	}

	err := store.SaveDocumentReview(ctx, ghost, nil)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}

	// The failed review must not leave a notification behind.
	note := &model.Notification{ID: "n", ApplicantID: "citizen-9", Title: "t", Message: "m"}
	if err := store.SaveDocumentReview(ctx, ghost, note); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got: %v", err)
	}
	notes, err := store.ListNotifications(ctx, "citizen-9")
	if err != nil {
		t.Fatalf("Failed to list notifications: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("Notification leaked from failed review: %+v", notes)
	}
}

func TestSQLiteStore_ApplyFieldVisitIsIdempotent(t *testing.T) {
	store := createTestStore(t)
	app, _ := seedApplication(t, store)
	ctx := context.Background()

	visit := model.FieldVisit{
		ApplicationID: app.ID,
		PhotoURL:      "file:///photos/1.jpg",
		CapturedAt:    time.Now(),
		CapturedBy:    "officer-1",
	}

	if err := store.ApplyFieldVisit(ctx, "item-1", visit); err != nil {
		t.Fatalf("First apply failed: %v", err)
	}
	if err := store.ApplyFieldVisit(ctx, "item-1", visit); err != nil {
		t.Fatalf("Second apply of same key should be a no-op, got: %v", err)
	}

	count, err := store.CountFieldVisits(ctx, app.ID)
	if err != nil {
		t.Fatalf("Failed to count visits: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly 1 visit after double apply, got %d", count)
	}
}

func TestSQLiteStore_ApplyFieldVisitMissingTargetIsPermanent(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	err := store.ApplyFieldVisit(ctx, "item-2", model.FieldVisit{
		ApplicationID: "gone",
		PhotoURL:      "file:///photos/2.jpg",
		CapturedAt:    time.Now(),
	})
	if err == nil {
		t.Fatal("Expected error for missing application")
	}

	var retryable *common.RetryableError
	if !errors.As(err, &retryable) || retryable.Retryable {
		t.Errorf("Expected a permanent classification, got: %v", err)
	}
}

func TestSQLiteStore_SaveApplicationReview(t *testing.T) {
	store := createTestStore(t)
	app, _ := seedApplication(t, store)
	ctx := context.Background()

	app.AIApproved = true
	app.HumanApproved = true
	if err := store.SaveApplicationReview(ctx, app, nil); err != nil {
		t.Fatalf("Failed to save application review: %v", err)
	}

	got, err := store.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("Failed to get application: %v", err)
	}
	if !got.AIApproved || !got.HumanApproved {
		t.Errorf("Approval flags not persisted: %+v", got)
	}
	if got.Status() != model.AppApproved {
		t.Errorf("Expected approved status, got %q", got.Status())
	}
}

func TestMigrateIsIdempotentAtLatestVersion(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	// Re-running migrations on an up-to-date store applies nothing.
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Second migrate failed: %v", err)
	}

	var version int
	if err := store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("Failed to read schema version: %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("Expected schema version %d, got %d", ExpectedSchemaVersion, version)
	}
}
