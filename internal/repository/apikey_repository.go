package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/center-cms-api/internal/models"
)

// APIKeyRepository reads service credentials. Keys are provisioned out-of-band.
type APIKeyRepository struct {
	db *sqlx.DB
}

// NewAPIKeyRepository creates a new repository instance.
func NewAPIKeyRepository(db *sqlx.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// FindByKey returns the key record for a raw key value or sql.ErrNoRows.
func (r *APIKeyRepository) FindByKey(ctx context.Context, key string) (*models.APIKey, error) {
	const query = `SELECT id, key, label, class, status, created_at FROM api_keys WHERE key = $1 LIMIT 1`
	var apiKey models.APIKey
	if err := r.db.GetContext(ctx, &apiKey, query, key); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find api key: %w", err)
	}
	return &apiKey, nil
}
