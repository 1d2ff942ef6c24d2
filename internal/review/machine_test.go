package review

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/common"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMachine(t *testing.T) (*Machine, *storage.SQLiteStore) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "review.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return New(store), store
}

func seedApplication(t *testing.T, store *storage.SQLiteStore, app *model.Application, docs ...*model.Document) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SaveApplication(ctx, app))
	for _, doc := range docs {
		require.NoError(t, store.SaveDocument(ctx, doc))
	}
}

func baseApplication() *model.Application {
	return &model.Application{
		ID:            "app-1",
		ApplicantID:   "citizen-3",
		ApplicantName: "K. Devi",
		SchemeID:      "housing",
	}
}

func baseDocument() *model.Document {
	return &model.Document{
		ID:            "doc-1",
		ApplicationID: "app-1",
		Type:          "aadhaar",
		URL:           "https://files.example/doc-1.pdf",
		Status:        model.DocAttention,
	}
}

func TestTransitionDocument_RejectEmitsOneNotification(t *testing.T) {
	machine, store := newTestMachine(t)
	seedApplication(t, store, baseApplication(), baseDocument())
	ctx := context.Background()

	doc, err := machine.TransitionDocument(ctx, "doc-1", model.DocRejected, "blurry photo", "officer-1")
	require.NoError(t, err)
	assert.Equal(t, model.DocRejected, doc.Status)
	assert.Equal(t, "blurry photo", doc.RejectionReason)
	assert.Equal(t, "officer-1", doc.LastModifiedBy)

	notes, err := store.ListNotifications(ctx, "citizen-3")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "blurry photo")
	assert.Equal(t, "doc-1", notes[0].DocumentID)
}

func TestTransitionDocument_ReRejectOverwritesReasonWithoutNewNotification(t *testing.T) {
	machine, store := newTestMachine(t)
	seedApplication(t, store, baseApplication(), baseDocument())
	ctx := context.Background()

	_, err := machine.TransitionDocument(ctx, "doc-1", model.DocRejected, "blurry photo", "officer-1")
	require.NoError(t, err)

	doc, err := machine.TransitionDocument(ctx, "doc-1", model.DocRejected, "wrong format", "officer-1")
	require.NoError(t, err)
	assert.Equal(t, "wrong format", doc.RejectionReason)

	notes, err := store.ListNotifications(ctx, "citizen-3")
	require.NoError(t, err)
	assert.Len(t, notes, 1, "re-rejection must not emit a second notification")
}

func TestTransitionDocument_ReopenThenRejectNotifiesAgain(t *testing.T) {
	machine, store := newTestMachine(t)
	seedApplication(t, store, baseApplication(), baseDocument())
	ctx := context.Background()

	_, err := machine.TransitionDocument(ctx, "doc-1", model.DocRejected, "blurry photo", "officer-1")
	require.NoError(t, err)

	doc, err := machine.TransitionDocument(ctx, "doc-1", model.DocAttention, "", "officer-1")
	require.NoError(t, err)
	assert.Equal(t, model.DocAttention, doc.Status)
	assert.Empty(t, doc.RejectionReason, "reopening must clear the reason")

	_, err = machine.TransitionDocument(ctx, "doc-1", model.DocRejected, "wrong format", "officer-1")
	require.NoError(t, err)

	notes, err := store.ListNotifications(ctx, "citizen-3")
	require.NoError(t, err)
	assert.Len(t, notes, 2, "the second edge into rejected notifies again")
}

func TestTransitionDocument_RejectWithoutReason(t *testing.T) {
	machine, store := newTestMachine(t)
	seedApplication(t, store, baseApplication(), baseDocument())
	ctx := context.Background()

	_, err := machine.TransitionDocument(ctx, "doc-1", model.DocRejected, "  ", "officer-1")
	require.ErrorIs(t, err, common.ErrInvalidArgument)

	// The document must be unchanged.
	doc, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, model.DocAttention, doc.Status)
}

func TestTransitionDocument_AttentionToAttentionIsNoOp(t *testing.T) {
	machine, store := newTestMachine(t)
	seedApplication(t, store, baseApplication(), baseDocument())
	ctx := context.Background()

	doc, err := machine.TransitionDocument(ctx, "doc-1", model.DocAttention, "", "officer-1")
	require.NoError(t, err)
	assert.Equal(t, model.DocAttention, doc.Status)
	assert.Empty(t, doc.LastModifiedBy, "no-op must not record a reviewer")
}

func TestTransitionDocument_VerifiedMustReopenBeforeReject(t *testing.T) {
	machine, store := newTestMachine(t)
	seedApplication(t, store, baseApplication(), baseDocument())
	ctx := context.Background()

	_, err := machine.TransitionDocument(ctx, "doc-1", model.DocVerified, "", "officer-1")
	require.NoError(t, err)

	_, err = machine.TransitionDocument(ctx, "doc-1", model.DocRejected, "blurry photo", "officer-1")
	require.ErrorIs(t, err, common.ErrPreconditionFailed)

	_, err = machine.TransitionDocument(ctx, "doc-1", model.DocAttention, "", "officer-1")
	require.NoError(t, err)

	_, err = machine.TransitionDocument(ctx, "doc-1", model.DocRejected, "blurry photo", "officer-1")
	require.NoError(t, err)
}

func TestTransitionDocument_UnknownStatus(t *testing.T) {
	machine, _ := newTestMachine(t)

	_, err := machine.TransitionDocument(context.Background(), "doc-1", "archived", "", "officer-1")
	require.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestApproveApplication_SetsHumanApproval(t *testing.T) {
	machine, store := newTestMachine(t)
	seedApplication(t, store, baseApplication())
	ctx := context.Background()

	app, err := machine.ApproveApplication(ctx, "app-1", "officer-1")
	require.NoError(t, err)
	assert.True(t, app.HumanApproved)
	assert.Equal(t, model.AppApproved, app.Status())
}

func TestRejectApplication_RequiresReason(t *testing.T) {
	machine, store := newTestMachine(t)
	seedApplication(t, store, baseApplication())

	_, err := machine.RejectApplication(context.Background(), "app-1", "", "officer-1")
	require.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestRejectApplication_NotifiesOnEdge(t *testing.T) {
	machine, store := newTestMachine(t)
	seedApplication(t, store, baseApplication())
	ctx := context.Background()

	app, err := machine.RejectApplication(ctx, "app-1", "incomplete documents", "officer-1")
	require.NoError(t, err)
	assert.Equal(t, model.AppRejected, app.Status())

	_, err = machine.RejectApplication(ctx, "app-1", "still incomplete", "officer-1")
	require.NoError(t, err)

	notes, err := store.ListNotifications(ctx, "citizen-3")
	require.NoError(t, err)
	assert.Len(t, notes, 1, "re-rejection must not emit a second notification")
}

func TestReleaseFunds_RequiresDualApproval(t *testing.T) {
	machine, store := newTestMachine(t)
	app := baseApplication()
	app.AIApproved = true
	seedApplication(t, store, app)
	ctx := context.Background()

	_, err := machine.ReleaseFunds(ctx, "app-1", "admin-1")
	require.ErrorIs(t, err, common.ErrPreconditionFailed)

	got, err := store.GetApplication(ctx, "app-1")
	require.NoError(t, err)
	assert.False(t, got.FundsReleased, "failed release must not change state")
}

func TestReleaseFunds_SucceedsThenBecomesTerminal(t *testing.T) {
	machine, store := newTestMachine(t)
	app := baseApplication()
	app.AIApproved = true
	app.HumanApproved = true
	seedApplication(t, store, app)
	ctx := context.Background()

	released, err := machine.ReleaseFunds(ctx, "app-1", "admin-1")
	require.NoError(t, err)
	assert.True(t, released.FundsReleased)
	assert.Equal(t, model.AppFundsReleased, released.Status())

	_, err = machine.ReleaseFunds(ctx, "app-1", "admin-1")
	require.ErrorIs(t, err, common.ErrAlreadyTerminal)

	_, err = machine.ApproveApplication(ctx, "app-1", "officer-1")
	require.ErrorIs(t, err, common.ErrAlreadyTerminal)

	_, err = machine.RejectApplication(ctx, "app-1", "too late", "officer-1")
	require.ErrorIs(t, err, common.ErrAlreadyTerminal)
}
