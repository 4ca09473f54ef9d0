package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/center-cms-api/internal/models"
)

// CenterRepository reads tenants.
type CenterRepository struct {
	db *sqlx.DB
}

// NewCenterRepository creates a new repository instance.
func NewCenterRepository(db *sqlx.DB) *CenterRepository {
	return &CenterRepository{db: db}
}

// FindActiveByID returns an Active center or sql.ErrNoRows.
func (r *CenterRepository) FindActiveByID(ctx context.Context, id string) (*models.Center, error) {
	const query = `SELECT id, name, status, created_at, updated_at FROM centers WHERE id = $1 AND status = $2 LIMIT 1`
	var center models.Center
	if err := r.db.GetContext(ctx, &center, query, id, models.StatusActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find center: %w", err)
	}
	return &center, nil
}
