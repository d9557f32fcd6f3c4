package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"esg-assessment-service/internal/domain"
)

// CatalogLoader loads the versioned question catalog JSONB from Postgres.
// The newest version wins; catalogs are append-only.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context) ([]domain.Question, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx,
		`SELECT data FROM question_catalogs ORDER BY version DESC LIMIT 1`).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return questions, nil
}
