package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"esg-assessment-service/internal/domain"
)

type resultRow struct {
	bun.BaseModel `bun:"table:assessment_results"`

	ID          string    `bun:"id,pk"`
	CompanyID   string    `bun:"company_id"`
	Data        []byte    `bun:"data,type:jsonb"`
	SubmittedAt time.Time `bun:"submitted_at"`
}

type emissionRow struct {
	bun.BaseModel `bun:"table:emission_records"`

	ID             string    `bun:"id,pk"`
	CompanyID      string    `bun:"company_id"`
	Category       string    `bun:"category"`
	Separate       string    `bun:"separate"`
	RawMaterial    string    `bun:"raw_material"`
	Unit           string    `bun:"unit"`
	ActivityAmount string    `bun:"activity_amount"`
	EmissionFactor string    `bun:"emission_factor"`
	TotalEmission  string    `bun:"total_emission"`
	CreatedAt      time.Time `bun:"created_at"`
}

// ResultStore persists assessment results and emission records via bun.
// Results are stored whole as JSONB; the scoring core owns their shape and
// the service only ever reads them back whole.
type ResultStore struct {
	db *bun.DB
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.AssessmentResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	row := resultRow{
		ID:          result.ID,
		CompanyID:   result.CompanyID,
		Data:        data,
		SubmittedAt: result.SubmittedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *ResultStore) LatestResult(ctx context.Context, companyID string) (domain.AssessmentResult, error) {
	var row resultRow
	err := s.db.NewSelect().Model(&row).
		Where("company_id = ?", companyID).
		Order("submitted_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AssessmentResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.AssessmentResult{}, fmt.Errorf("select latest result: %w", err)
	}
	return unmarshalResult(row)
}

func (s *ResultStore) ListResults(ctx context.Context, companyID string) ([]domain.AssessmentResult, error) {
	var rows []resultRow
	err := s.db.NewSelect().Model(&rows).
		Where("company_id = ?", companyID).
		Order("submitted_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	results := make([]domain.AssessmentResult, 0, len(rows))
	for _, row := range rows {
		result, err := unmarshalResult(row)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *ResultStore) SaveRecord(ctx context.Context, record domain.EmissionRecord) error {
	row := emissionRow{
		ID:             record.ID,
		CompanyID:      record.CompanyID,
		Category:       record.Category,
		Separate:       record.Separate,
		RawMaterial:    record.RawMaterial,
		Unit:           record.Unit,
		ActivityAmount: record.ActivityAmount,
		EmissionFactor: record.EmissionFactor,
		TotalEmission:  record.TotalEmission,
		CreatedAt:      record.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert emission record: %w", err)
	}
	return nil
}

func (s *ResultStore) ListRecords(ctx context.Context, companyID string) ([]domain.EmissionRecord, error) {
	var rows []emissionRow
	err := s.db.NewSelect().Model(&rows).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list emission records: %w", err)
	}
	records := make([]domain.EmissionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.EmissionRecord{
			ID:             row.ID,
			CompanyID:      row.CompanyID,
			Category:       row.Category,
			Separate:       row.Separate,
			RawMaterial:    row.RawMaterial,
			Unit:           row.Unit,
			ActivityAmount: row.ActivityAmount,
			EmissionFactor: row.EmissionFactor,
			TotalEmission:  row.TotalEmission,
			CreatedAt:      row.CreatedAt,
		})
	}
	return records, nil
}

func unmarshalResult(row resultRow) (domain.AssessmentResult, error) {
	var result domain.AssessmentResult
	if err := json.Unmarshal(row.Data, &result); err != nil {
		return domain.AssessmentResult{}, fmt.Errorf("unmarshal result %s: %w", row.ID, err)
	}
	return result, nil
}
