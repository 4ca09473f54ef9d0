package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/center-cms-api/internal/models"
)

const contentColumns = "id, center_id, title, stripped_title, summary, body, asset_id, asset_url, status, created_by, created_at, updated_at"

// titleCandidateLimit bounds the rows pulled back for the uniqueness check;
// one hit is enough to reject.
const titleCandidateLimit = 20

// ContentRepository handles persistence for every content kind. Each kind
// has its own table with identical columns.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository creates a new repository instance.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func lookupClause(lookup models.ContentLookup) (string, []interface{}) {
	conditions := []string{"id = $1"}
	args := []interface{}{lookup.ID}
	if lookup.CenterID != "" {
		args = append(args, lookup.CenterID)
		conditions = append(conditions, fmt.Sprintf("center_id = $%d", len(args)))
	}
	if status, ok := lookup.Filter.Status(); ok {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	return strings.Join(conditions, " AND "), args
}

// FindOne returns the record matching the lookup or sql.ErrNoRows.
func (r *ContentRepository) FindOne(ctx context.Context, kind models.ContentKind, lookup models.ContentLookup) (*models.Content, error) {
	where, args := lookupClause(lookup)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s LIMIT 1", contentColumns, kind.Table(), where)
	var content models.Content
	if err := r.db.GetContext(ctx, &content, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	return &content, nil
}

// Exists reports whether a record matches the lookup.
func (r *ContentRepository) Exists(ctx context.Context, kind models.ContentKind, lookup models.ContentLookup) (bool, error) {
	where, args := lookupClause(lookup)
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s LIMIT 1", kind.Table(), where)
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check %s exists: %w", kind, err)
	}
	return true, nil
}

// FindTitleCandidates returns Active rows of the tenant whose stripped title
// equals the candidate's or whose title contains the candidate.
func (r *ContentRepository) FindTitleCandidates(ctx context.Context, kind models.ContentKind, q models.TitleQuery) ([]models.Content, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE center_id = $1 AND status = $2 AND (stripped_title = $3 OR LOWER(title) LIKE '%%' || $4 || '%%')",
		contentColumns, kind.Table(),
	)
	args := []interface{}{q.CenterID, models.StatusActive, q.StrippedTitle, escapeLike(strings.ToLower(q.Title))}
	if q.ExcludeID != "" {
		args = append(args, q.ExcludeID)
		query += fmt.Sprintf(" AND id <> $%d", len(args))
	}
	query += fmt.Sprintf(" LIMIT %d", titleCandidateLimit)

	var rows []models.Content
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find %s title candidates: %w", kind, err)
	}
	return rows, nil
}

// CountActive returns the number of Active records for a center.
func (r *ContentRepository) CountActive(ctx context.Context, kind models.ContentKind, centerID string) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE center_id = $1 AND status = $2", kind.Table())
	var total int
	if err := r.db.GetContext(ctx, &total, query, centerID, models.StatusActive); err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return total, nil
}

// SliceActive returns Active records for a center, newest first.
func (r *ContentRepository) SliceActive(ctx context.Context, kind models.ContentKind, centerID string, offset, limit int) ([]models.Content, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE center_id = $1 AND status = $2 ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d",
		contentColumns, kind.Table(), limit, offset)
	var rows []models.Content
	if err := r.db.SelectContext(ctx, &rows, query, centerID, models.StatusActive); err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return rows, nil
}

// Create persists a new record.
func (r *ContentRepository) Create(ctx context.Context, kind models.ContentKind, content *models.Content) error {
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if content.CreatedAt.IsZero() {
		content.CreatedAt = now
	}
	content.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO %s (id, center_id, title, stripped_title, summary, body, asset_id, asset_url, status, created_by, created_at, updated_at) VALUES (:id, :center_id, :title, :stripped_title, :summary, :body, :asset_id, :asset_url, :status, :created_by, :created_at, :updated_at)`, kind.Table())
	if _, err := r.db.NamedExecContext(ctx, query, content); err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}
	return nil
}

// Update modifies the mutable fields of an Active record within its center.
func (r *ContentRepository) Update(ctx context.Context, kind models.ContentKind, content *models.Content) error {
	content.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf(`UPDATE %s SET title = :title, stripped_title = :stripped_title, summary = :summary, body = :body, asset_id = :asset_id, asset_url = :asset_url, updated_at = :updated_at WHERE id = :id AND center_id = :center_id AND status = 1`, kind.Table())
	res, err := r.db.NamedExecContext(ctx, query, content)
	if err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}
	return expectAffected(res)
}

// SoftDelete flips an Active record to SoftDeleted.
func (r *ContentRepository) SoftDelete(ctx context.Context, kind models.ContentKind, centerID, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET status = $3, updated_at = $4 WHERE id = $1 AND center_id = $2 AND status = $5`, kind.Table())
	res, err := r.db.ExecContext(ctx, query, id, centerID, models.StatusSoftDeleted, time.Now().UTC(), models.StatusActive)
	if err != nil {
		return fmt.Errorf("soft delete %s: %w", kind, err)
	}
	return expectAffected(res)
}

// Purge physically removes a SoftDeleted record.
func (r *ContentRepository) Purge(ctx context.Context, kind models.ContentKind, centerID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND center_id = $2 AND status = $3`, kind.Table())
	res, err := r.db.ExecContext(ctx, query, id, centerID, models.StatusSoftDeleted)
	if err != nil {
		return fmt.Errorf("purge %s: %w", kind, err)
	}
	return expectAffected(res)
}

// expectAffected maps a zero-row write to sql.ErrNoRows so callers can treat
// a record that changed state between check and write as not found.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
