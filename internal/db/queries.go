package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned when a draft ID does not exist.
var ErrNotFound = errors.New("draft not found")

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries runs the draft statements against a connection or transaction.
type Queries struct {
	db DBTX
}

// New creates Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Draft is one generated post. Retrieved thread content is never stored.
type Draft struct {
	ID          string    `json:"id"`
	Permalink   string    `json:"permalink"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	Style       string    `json:"style"`
	Hook        string    `json:"hook"`
	PostText    string    `json:"postText"`
	ImagePrompt string    `json:"imagePrompt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateDraftParams holds the fields of a new draft.
type CreateDraftParams struct {
	Permalink   string
	Provider    string
	Model       string
	Style       string
	Hook        string
	PostText    string
	ImagePrompt string
}

const draftColumns = `id, permalink, provider, model, style, hook, post_text, image_prompt, created_at`

const createDraft = `
INSERT INTO drafts (` + draftColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// CreateDraft stores a draft under a new ULID.
func (q *Queries) CreateDraft(ctx context.Context, arg CreateDraftParams) (Draft, error) {
	now := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return Draft{}, fmt.Errorf("generate id: %w", err)
	}

	d := Draft{
		ID:          id.String(),
		Permalink:   arg.Permalink,
		Provider:    arg.Provider,
		Model:       arg.Model,
		Style:       arg.Style,
		Hook:        arg.Hook,
		PostText:    arg.PostText,
		ImagePrompt: arg.ImagePrompt,
		CreatedAt:   now,
	}

	_, err = q.db.ExecContext(ctx, createDraft,
		d.ID, d.Permalink, d.Provider, d.Model, d.Style, d.Hook, d.PostText, d.ImagePrompt, d.CreatedAt,
	)
	if err != nil {
		return Draft{}, fmt.Errorf("insert draft: %w", err)
	}
	return d, nil
}

const getDraft = `SELECT ` + draftColumns + ` FROM drafts WHERE id = ?`

// GetDraft returns one draft by ID.
func (q *Queries) GetDraft(ctx context.Context, id string) (Draft, error) {
	d, err := scanDraft(q.db.QueryRowContext(ctx, getDraft, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Draft{}, fmt.Errorf("get draft: %w", err)
	}
	return d, nil
}

const listDrafts = `SELECT ` + draftColumns + ` FROM drafts ORDER BY created_at DESC, id DESC LIMIT ?`

// ListDrafts returns the newest drafts first.
func (q *Queries) ListDrafts(ctx context.Context, limit int64) ([]Draft, error) {
	rows, err := q.db.QueryContext(ctx, listDrafts, limit)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return collectDrafts(rows)
}

const listDraftsByPermalink = `SELECT ` + draftColumns + ` FROM drafts WHERE permalink = ? ORDER BY created_at DESC, id DESC LIMIT ?`

// ListDraftsByPermalink returns the newest drafts generated from one thread.
func (q *Queries) ListDraftsByPermalink(ctx context.Context, permalink string, limit int64) ([]Draft, error) {
	rows, err := q.db.QueryContext(ctx, listDraftsByPermalink, permalink, limit)
	if err != nil {
		return nil, fmt.Errorf("list drafts by permalink: %w", err)
	}
	return collectDrafts(rows)
}

const deleteDraft = `DELETE FROM drafts WHERE id = ?`

// DeleteDraft removes one draft.
func (q *Queries) DeleteDraft(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, deleteDraft, id)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

const countDrafts = `SELECT COUNT(*) FROM drafts`

// CountDrafts returns the number of stored drafts.
func (q *Queries) CountDrafts(ctx context.Context) (int64, error) {
	var count int64
	if err := q.db.QueryRowContext(ctx, countDrafts).Scan(&count); err != nil {
		return 0, fmt.Errorf("count drafts: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDraft(row scanner) (Draft, error) {
	var d Draft
	err := row.Scan(
		&d.ID,
		&d.Permalink,
		&d.Provider,
		&d.Model,
		&d.Style,
		&d.Hook,
		&d.PostText,
		&d.ImagePrompt,
		&d.CreatedAt,
	)
	return d, err
}

func collectDrafts(rows *sql.Rows) ([]Draft, error) {
	defer rows.Close()

	items := []Draft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}
	return items, nil
}
