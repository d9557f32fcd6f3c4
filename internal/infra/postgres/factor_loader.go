package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"esg-assessment-service/internal/domain"
)

// FactorLoader loads the emission-factor reference table from Postgres.
type FactorLoader struct {
	pool *pgxpool.Pool
}

func NewFactorLoader(pool *pgxpool.Pool) *FactorLoader {
	return &FactorLoader{pool: pool}
}

func (l *FactorLoader) LoadTable(ctx context.Context) ([]domain.FactorEntry, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT category, separate, raw_material, unit, kg_co2eq::text, state, scope
		 FROM emission_factors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load factor table: %w", err)
	}
	defer rows.Close()

	var table []domain.FactorEntry
	for rows.Next() {
		var entry domain.FactorEntry
		if err := rows.Scan(&entry.Category, &entry.Separate, &entry.RawMaterial,
			&entry.Unit, &entry.KgCO2Eq, &entry.State, &entry.ScopeTag); err != nil {
			return nil, fmt.Errorf("scan factor row: %w", err)
		}
		table = append(table, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate factor rows: %w", err)
	}
	if len(table) == 0 {
		return nil, domain.Errorf(domain.KindEmptyResult, "emission_factors table is empty")
	}
	return table, nil
}
