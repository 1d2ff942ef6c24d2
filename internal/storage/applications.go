package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/common"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
)

// GetApplication returns one application with its documents loaded.
func (s *SQLiteStore) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, applicant_id, applicant_name, scheme_id, requested_amount,
		       ai_approved, human_approved, funds_released, rejected,
		       COALESCE(rejection_reason, ''), created_at, updated_at
		FROM applications WHERE id = ?
	`, id)

	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("application %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	docs, err := s.ListDocuments(ctx, id)
	if err != nil {
		return nil, err
	}
	app.Documents = docs

	return app, nil
}

// ListApplications returns all applications, newest first, without documents.
func (s *SQLiteStore) ListApplications(ctx context.Context) ([]model.Application, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, applicant_id, applicant_name, scheme_id, requested_amount,
		       ai_approved, human_approved, funds_released, rejected,
		       COALESCE(rejection_reason, ''), created_at, updated_at
		FROM applications ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var apps []model.Application
	for rows.Next() {
		app, scanErr := scanApplication(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan application: %w", scanErr)
		}
		apps = append(apps, *app)
	}

	return apps, rows.Err()
}

// SaveApplication inserts or updates an application record. Used by intake
// flows and tests; review decisions go through SaveApplicationReview.
func (s *SQLiteStore) SaveApplication(ctx context.Context, app *model.Application) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateApplication(app); err != nil {
		return err
	}

	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now()
	}
	app.UpdatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, applicant_id, applicant_name, scheme_id, requested_amount,
			ai_approved, human_approved, funds_released, rejected,
			rejection_reason, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			applicant_name = excluded.applicant_name,
			scheme_id = excluded.scheme_id,
			requested_amount = excluded.requested_amount,
			ai_approved = excluded.ai_approved,
			human_approved = excluded.human_approved,
			funds_released = excluded.funds_released,
			rejected = excluded.rejected,
			rejection_reason = excluded.rejection_reason,
			updated_at = excluded.updated_at
	`,
		app.ID, app.ApplicantID, app.ApplicantName, app.SchemeID, app.RequestedAmount,
		app.AIApproved, app.HumanApproved, app.FundsReleased, app.Rejected,
		app.RejectionReason, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save application: %w", err)
	}

	return nil
}

// SaveApplicationReview commits an application decision and its optional
// notification in a single transaction.
func (s *SQLiteStore) SaveApplicationReview(ctx context.Context, app *model.Application, note *model.Notification) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateApplication(app); err != nil {
		return err
	}
	if note != nil {
		if err := validateNotification(note); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	app.UpdatedAt = time.Now()

	res, err := tx.ExecContext(ctx, `
		UPDATE applications SET
			ai_approved = ?, human_approved = ?, funds_released = ?,
			rejected = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ?
	`,
		app.AIApproved, app.HumanApproved, app.FundsReleased,
		app.Rejected, app.RejectionReason, app.UpdatedAt, app.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("application %s: %w", app.ID, common.ErrNotFound)
	}

	if note != nil {
		if err := insertNotificationTx(ctx, tx, note); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// rowScanner abstracts sql.Row and sql.Rows for shared scan code.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*model.Application, error) {
	var app model.Application
	err := row.Scan(
		&app.ID, &app.ApplicantID, &app.ApplicantName, &app.SchemeID,
		&app.RequestedAmount, &app.AIApproved, &app.HumanApproved,
		&app.FundsReleased, &app.Rejected, &app.RejectionReason,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}
