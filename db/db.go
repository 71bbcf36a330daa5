package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rqlite/gorqlite"
)

func New(conn *gorqlite.Connection) *Queries {
	return &Queries{
		conn: conn,
		now:  time.Now,
	}
}

type Queries struct {
	conn *gorqlite.Connection
	now  func() time.Time
}

type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusSuccess    Status = "SUCCESS"
	StatusFailed     Status = "FAILED"
)

// Terminal returns true if no further transition is allowed from the status.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

var (
	ErrNotProcessing = errors.New("db: document is not processing")
	ErrInvalidStatus = errors.New("db: invalid status")
)

type Document struct {
	ID        string
	FileName  string
	UserID    string
	Status    Status
	Summary   string
	CreatedAt time.Time
}

// Timestamps are stored as Unix milliseconds so that they sort numerically.
func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// DocumentCreate inserts a new document in the PROCESSING state with an empty summary.
func (q *Queries) DocumentCreate(ctx context.Context, fileName, userID string) (doc Document, err error) {
	doc = Document{
		ID:        uuid.NewString(),
		FileName:  fileName,
		UserID:    userID,
		Status:    StatusProcessing,
		Summary:   "",
		CreatedAt: q.now().UTC().Truncate(time.Millisecond),
	}
	stmt := gorqlite.ParameterizedStatement{
		Query:     `insert into document (id, file_name, user_id, status, summary, created_at) values (?, ?, ?, ?, ?, ?)`,
		Arguments: []any{doc.ID, doc.FileName, doc.UserID, string(doc.Status), doc.Summary, toMillis(doc.CreatedAt)},
	}
	if _, err = q.conn.WriteOneParameterizedContext(ctx, stmt); err != nil {
		return Document{}, fmt.Errorf("db: failed to insert document: %w", err)
	}
	return doc, nil
}

// DocumentComplete moves a PROCESSING document to a terminal status. Documents
// that have already completed are not modified, and ErrNotProcessing is returned.
func (q *Queries) DocumentComplete(ctx context.Context, id string, status Status, summary string) (err error) {
	if !status.Terminal() {
		return fmt.Errorf("%w: %q is not a terminal status", ErrInvalidStatus, status)
	}
	stmt := gorqlite.ParameterizedStatement{
		Query:     `update document set status = ?, summary = ? where id = ? and status = ?`,
		Arguments: []any{string(status), summary, id, string(StatusProcessing)},
	}
	wr, err := q.conn.WriteOneParameterizedContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("db: failed to update document: %w", err)
	}
	if wr.RowsAffected == 0 {
		return ErrNotProcessing
	}
	return nil
}

type HistoryEntry struct {
	ID        string
	FileName  string
	Summary   string
	CreatedAt time.Time
}

// DocumentHistory returns the user's successfully summarized documents, newest first.
func (q *Queries) DocumentHistory(ctx context.Context, userID string) (entries []HistoryEntry, err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query: `select id, file_name, summary, created_at
from document
where user_id = ? and status = ?
order by created_at desc, rowid desc`,
		Arguments: []any{userID, string(StatusSuccess)},
	}
	result, err := q.conn.QueryOneParameterizedContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	entries = make([]HistoryEntry, 0, result.NumRows())
	for result.Next() {
		var e HistoryEntry
		var createdAt int64
		if err = result.Scan(&e.ID, &e.FileName, &e.Summary, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = fromMillis(createdAt)
		entries = append(entries, e)
	}
	return entries, nil
}

// UserPut creates or updates the user with the given email address, and returns its ID.
func (q *Queries) UserPut(ctx context.Context, email, name, image string) (id string, err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query: `insert into app_user (id, email, name, image, created_at)
values (?, ?, ?, ?, ?)
on conflict(email) do update
set
    name = excluded.name,
    image = excluded.image
`,
		Arguments: []any{uuid.NewString(), email, name, image, toMillis(q.now())},
	}
	if _, err = q.conn.WriteOneParameterizedContext(ctx, stmt); err != nil {
		return "", fmt.Errorf("db: failed to upsert user: %w", err)
	}

	// Read the ID, which is only new if the user didn't exist.
	stmt = gorqlite.ParameterizedStatement{
		Query:     `select id from app_user where email = ?`,
		Arguments: []any{email},
	}
	result, err := q.conn.QueryOneParameterizedContext(ctx, stmt)
	if err != nil {
		return "", err
	}
	if !result.Next() {
		return "", fmt.Errorf("db: expected a user ID")
	}
	err = result.Scan(&id)
	return id, err
}
