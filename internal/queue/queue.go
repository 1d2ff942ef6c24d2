// Package queue implements the persistent local queue of deferred field
// actions. Items are committed to SQLite before Enqueue returns, drained in
// insertion order, and survive process restarts.
package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Queue is the SQLite-backed persistent local queue.
type Queue struct {
	db      *sql.DB
	dbPath  string
	now     func() time.Time
	mu      sync.Mutex
	lastMS  int64
	counter int
}

// New opens (or creates) the queue database at dbPath.
func New(dbPath string) (*Queue, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("queue dbPath cannot be empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create queue directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=FULL")
	if err != nil {
		return nil, fmt.Errorf("failed to open queue database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping queue database: %w", err)
	}

	q := &Queue{db: db, dbPath: dbPath, now: time.Now}
	if err := q.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := q.seedLastID(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return q, nil
}

func (q *Queue) migrate() error {
	_, err := q.db.Exec(`
		CREATE TABLE IF NOT EXISTS queue_items (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT UNIQUE NOT NULL,
			created_at DATETIME NOT NULL,
			payload BLOB NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			retry_count INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate queue schema: %w", err)
	}
	return nil
}

// seedLastID restores the id watermark from the most recently inserted item,
// so ids generated after a restart never collide with durable ones even when
// the clock has stepped backwards in between.
func (q *Queue) seedLastID() error {
	var id string
	err := q.db.QueryRow(`SELECT id FROM queue_items ORDER BY seq DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read last queue id: %w", err)
	}

	ms, counter, ok := parseID(id)
	if ok {
		q.lastMS = ms
		q.counter = counter
	}
	return nil
}

// nextID generates a monotonic item id: unix millis plus a counter so ids
// stay unique and ordered even when the clock stalls or skews backwards.
func (q *Queue) nextID(now time.Time) string {
	ms := now.UnixMilli()
	if ms <= q.lastMS {
		ms = q.lastMS
		q.counter++
	} else {
		q.lastMS = ms
		q.counter = 0
	}
	return fmt.Sprintf("%d-%06d", ms, q.counter)
}

func parseID(id string) (ms int64, counter int, ok bool) {
	msPart, counterPart, found := strings.Cut(id, "-")
	if !found {
		return 0, 0, false
	}
	ms, err := strconv.ParseInt(msPart, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	counter, err = strconv.Atoi(counterPart)
	if err != nil {
		return 0, 0, false
	}
	return ms, counter, true
}

// Enqueue durably appends a payload and returns the created item. The insert
// is committed before Enqueue returns; a hard restart never loses it.
func (q *Queue) Enqueue(ctx context.Context, payload []byte) (*model.QueueItem, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("queue payload cannot be empty")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	item := &model.QueueItem{
		ID:        q.nextID(now),
		CreatedAt: now,
		Payload:   payload,
		Status:    model.QueuePending,
	}

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO queue_items (id, created_at, payload, status, retry_count)
		VALUES (?, ?, ?, ?, 0)
	`, item.ID, item.CreatedAt, item.Payload, string(item.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue item: %w", err)
	}

	return item, nil
}

// PeekAll returns every item in FIFO order without mutating the queue.
func (q *Queue) PeekAll(ctx context.Context) ([]model.QueueItem, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, created_at, payload, status, retry_count
		FROM queue_items ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.QueueItem
	for rows.Next() {
		var item model.QueueItem
		var status string
		if scanErr := rows.Scan(&item.ID, &item.CreatedAt, &item.Payload, &status, &item.RetryCount); scanErr != nil {
			return nil, fmt.Errorf("failed to scan queue item: %w", scanErr)
		}
		item.Status = model.QueueStatus(status)
		items = append(items, item)
	}

	return items, rows.Err()
}

// Remove deletes an item by id. Removing an absent id is a no-op.
func (q *Queue) Remove(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM queue_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to remove queue item: %w", err)
	}
	return nil
}

// Clear empties the queue. Used only after a fully successful drain.
func (q *Queue) Clear(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM queue_items`)
	if err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	return nil
}

// SetStatus updates the status tag and retry count of an item. These are the
// only mutable fields of a queue item.
func (q *Queue) SetStatus(ctx context.Context, id string, status model.QueueStatus, retryCount int) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE queue_items SET status = ?, retry_count = ? WHERE id = ?
	`, string(status), retryCount, id)
	if err != nil {
		return fmt.Errorf("failed to update queue item status: %w", err)
	}
	return nil
}

// PendingCount returns the number of items currently queued.
func (q *Queue) PendingCount(ctx context.Context) (int, error) {
	var count int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queue_items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count queue items: %w", err)
	}
	return count, nil
}

// Close closes the queue database.
func (q *Queue) Close() error {
	return q.db.Close()
}

// Ensure Queue implements the WorkQueue interface.
var _ service.WorkQueue = (*Queue)(nil)
