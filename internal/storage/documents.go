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

// GetDocument returns one document by id.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, application_id, doc_type, url, status,
		       COALESCE(rejection_reason, ''), last_modified_at, COALESCE(last_modified_by, '')
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

// ListDocuments returns all documents belonging to an application.
func (s *SQLiteStore) ListDocuments(ctx context.Context, applicationID string) ([]model.Document, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(applicationID, "applicationID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, doc_type, url, status,
		       COALESCE(rejection_reason, ''), last_modified_at, COALESCE(last_modified_by, '')
		FROM documents WHERE application_id = ? ORDER BY id
	`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []model.Document
	for rows.Next() {
		doc, scanErr := scanDocument(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan document: %w", scanErr)
		}
		docs = append(docs, *doc)
	}

	return docs, rows.Err()
}

// SaveDocument inserts or updates a document record. Used by intake flows and
// tests; review transitions go through SaveDocumentReview.
func (s *SQLiteStore) SaveDocument(ctx context.Context, doc *model.Document) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDocument(doc); err != nil {
		return err
	}

	if doc.LastModifiedAt.IsZero() {
		doc.LastModifiedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (
			id, application_id, doc_type, url, status,
			rejection_reason, last_modified_at, last_modified_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			doc_type = excluded.doc_type,
			url = excluded.url,
			status = excluded.status,
			rejection_reason = excluded.rejection_reason,
			last_modified_at = excluded.last_modified_at,
			last_modified_by = excluded.last_modified_by
	`,
		doc.ID, doc.ApplicationID, doc.Type, doc.URL, string(doc.Status),
		doc.RejectionReason, doc.LastModifiedAt, doc.LastModifiedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}

// SaveDocumentReview commits a document transition, its audit history row and
// the optional notification in a single transaction. Either all of them
// commit or none do.
func (s *SQLiteStore) SaveDocumentReview(ctx context.Context, doc *model.Document, note *model.Notification) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDocument(doc); err != nil {
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

	res, err := tx.ExecContext(ctx, `
		UPDATE documents SET
			status = ?, rejection_reason = ?, last_modified_at = ?, last_modified_by = ?
		WHERE id = ?
	`,
		string(doc.Status), doc.RejectionReason, doc.LastModifiedAt, doc.LastModifiedBy, doc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, common.ErrNotFound)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO review_history (document_id, status, rejection_reason, reviewer)
		VALUES (?, ?, ?, ?)
	`,
		doc.ID, string(doc.Status), doc.RejectionReason, doc.LastModifiedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save review history: %w", err)
	}

	if note != nil {
		if err := insertNotificationTx(ctx, tx, note); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var doc model.Document
	var status string
	err := row.Scan(
		&doc.ID, &doc.ApplicationID, &doc.Type, &doc.URL, &status,
		&doc.RejectionReason, &doc.LastModifiedAt, &doc.LastModifiedBy,
	)
	if err != nil {
		return nil, err
	}
	doc.Status = model.DocumentStatus(status)
	return &doc, nil
}
