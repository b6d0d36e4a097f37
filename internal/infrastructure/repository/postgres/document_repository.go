package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

const maxListLimit = 100

type DocumentRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	mime_type TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_user_created ON documents(user_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.DocumentRecord) error {
	if doc == nil {
		return domain.WrapError(domain.ErrInvalidInput, "create document", errors.New("document is nil"))
	}
	if !doc.Status.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "create document", fmt.Errorf("invalid status %q", doc.Status))
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (id, user_id, name, mime_type, status, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		doc.ID, doc.OwnerID, doc.Name, doc.MimeType, string(doc.Status), doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, name, mime_type, status, error_message, created_at, updated_at
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) ListRecent(ctx context.Context, ownerID string, limit int) ([]domain.DocumentRecord, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, name, mime_type, status, error_message, created_at, updated_at
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DocumentRecord, 0, limit)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// UpdateStatus moves a record forward under a row lock. A transition that
// would regress the status fails with ErrInvalidTransition.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	if !status.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "update document status", fmt.Errorf("invalid status %q", status))
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin status tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var rawCurrent string
	err = tx.QueryRowContext(ctx, `SELECT status FROM documents WHERE id = $1 FOR UPDATE`, id).Scan(&rawCurrent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WrapError(domain.ErrDocumentNotFound, "update document status", fmt.Errorf("id=%s", id))
		}
		return fmt.Errorf("lock document: %w", err)
	}
	current, err := domain.ParseDocumentStatus(rawCurrent)
	if err != nil {
		return fmt.Errorf("stored status: %w", err)
	}
	if !current.CanAdvanceTo(status) {
		return domain.WrapError(
			domain.ErrInvalidTransition,
			"update document status",
			fmt.Errorf("%s -> %s for id=%s", current, status, id),
		)
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, r.now()); err != nil {
		return fmt.Errorf("update document status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit status tx: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.DocumentRecord, error) {
	var doc domain.DocumentRecord
	var rawStatus string
	if err := row.Scan(
		&doc.ID, &doc.OwnerID, &doc.Name, &doc.MimeType, &rawStatus, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	status, err := domain.ParseDocumentStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	doc.Status = status
	return &doc, nil
}
