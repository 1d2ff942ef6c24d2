package storage

import (
	"context"
	"fmt"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/common"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
)

// ApplyFieldVisit records a field visit exactly once per idempotency key.
// The visit row and the ledger entry commit in one transaction; a key that is
// already in the ledger makes the call a no-op.
func (s *SQLiteStore) ApplyFieldVisit(ctx context.Context, key string, visit model.FieldVisit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return common.Permanent(err)
	}
	if visit.ApplicationID == "" || visit.PhotoURL == "" {
		return common.Permanent(fmt.Errorf("%w: field visit requires application id and photo url", common.ErrInvalidArgument))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Transient(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	var applied bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM applied_operations WHERE idempotency_key = ?)
	`, key).Scan(&applied)
	if err != nil {
		return common.Transient(fmt.Errorf("failed to check idempotency ledger: %w", err))
	}
	if applied {
		return tx.Commit()
	}

	// The target application must exist; a missing target is not retryable.
	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM applications WHERE id = ?)
	`, visit.ApplicationID).Scan(&exists)
	if err != nil {
		return common.Transient(fmt.Errorf("failed to check application: %w", err))
	}
	if !exists {
		return common.Permanent(fmt.Errorf("application %s: %w", visit.ApplicationID, common.ErrNotFound))
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO field_visits (application_id, photo_url, caption, captured_at, captured_by)
		VALUES (?, ?, ?, ?, ?)
	`,
		visit.ApplicationID, visit.PhotoURL, visit.Caption, visit.CapturedAt, visit.CapturedBy,
	)
	if err != nil {
		return common.Transient(fmt.Errorf("failed to insert field visit: %w", err))
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO applied_operations (idempotency_key) VALUES (?)
	`, key)
	if err != nil {
		return common.Transient(fmt.Errorf("failed to record idempotency key: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return common.Transient(fmt.Errorf("failed to commit field visit: %w", err))
	}

	return nil
}

// CountFieldVisits returns how many visits are recorded for an application.
func (s *SQLiteStore) CountFieldVisits(ctx context.Context, applicationID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(applicationID, "applicationID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM field_visits WHERE application_id = ?
	`, applicationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count field visits: %w", err)
	}

	return count, nil
}
