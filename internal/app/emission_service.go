package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"esg-assessment-service/internal/domain"
	"esg-assessment-service/internal/emission"
)

// FactorRepository loads the emission-factor reference table.
type FactorRepository interface {
	GetTable(ctx context.Context) ([]domain.FactorEntry, error)
}

// EmissionStore persists emission calculation records.
type EmissionStore interface {
	SaveRecord(ctx context.Context, record domain.EmissionRecord) error
	ListRecords(ctx context.Context, companyID string) ([]domain.EmissionRecord, error)
}

// CalcInput is one emission calculation request.
type CalcInput struct {
	CompanyID      string
	Scope          string
	Selection      emission.Selection
	ActivityAmount string
}

// EmissionService resolves factors from the reference table and runs bounded
// emission calculations.
type EmissionService struct {
	factors FactorRepository
	records EmissionStore
	rules   map[string]*emission.RuleSet
	log     *zap.Logger
	now     func() time.Time
	newID   func() string
}

func NewEmissionService(factors FactorRepository, records EmissionStore, log *zap.Logger) *EmissionService {
	return &EmissionService{
		factors: factors,
		records: records,
		rules:   emission.DefaultScopeRules(),
		log:     log,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// Options returns the cascading option lists for the given scope and partial
// selection, after applying the scope's declarative row filters.
func (s *EmissionService) Options(ctx context.Context, scope string, sel emission.Selection) (emission.Options, error) {
	table, err := s.table(ctx, scope)
	if err != nil {
		return emission.Options{}, err
	}
	return emission.OptionsFor(sel, table), nil
}

// Resolve looks up the unit and factor for a complete selection. A miss is
// reported as NotFound; callers clear their unit/factor fields rather than
// treating it as fatal, since the user may be mid-selection.
func (s *EmissionService) Resolve(ctx context.Context, scope string, sel emission.Selection) (domain.FactorEntry, error) {
	table, err := s.table(ctx, scope)
	if err != nil {
		return domain.FactorEntry{}, err
	}
	entry, ok := emission.Resolve(sel, table)
	if !ok {
		return domain.FactorEntry{}, domain.Errorf(domain.KindNotFound,
			"no factor for %s / %s / %s", sel.Category, sel.Separate, sel.RawMaterial)
	}
	return entry, nil
}

// Calculate resolves the factor for the selection, multiplies it with the
// activity amount under the digit bounds, and persists the record.
func (s *EmissionService) Calculate(ctx context.Context, input CalcInput) (domain.EmissionRecord, error) {
	entry, err := s.Resolve(ctx, input.Scope, input.Selection)
	if err != nil {
		return domain.EmissionRecord{}, err
	}

	total, err := emission.Calculate(input.ActivityAmount, entry.KgCO2Eq)
	if err != nil {
		return domain.EmissionRecord{}, err
	}

	record := domain.EmissionRecord{
		ID:             s.newID(),
		CompanyID:      input.CompanyID,
		Category:       entry.Category,
		Separate:       entry.Separate,
		RawMaterial:    entry.RawMaterial,
		Unit:           entry.Unit,
		ActivityAmount: input.ActivityAmount,
		EmissionFactor: entry.KgCO2Eq,
		TotalEmission:  emission.Format(total),
		CreatedAt:      s.now(),
	}
	if err := s.records.SaveRecord(ctx, record); err != nil {
		return domain.EmissionRecord{}, err
	}

	s.log.Info("emission calculated",
		zap.String("company_id", input.CompanyID),
		zap.String("scope", input.Scope),
		zap.String("total", record.TotalEmission))
	return record, nil
}

// Records returns all persisted calculations for a company.
func (s *EmissionService) Records(ctx context.Context, companyID string) ([]domain.EmissionRecord, error) {
	return s.records.ListRecords(ctx, companyID)
}

func (s *EmissionService) table(ctx context.Context, scope string) ([]domain.FactorEntry, error) {
	table, err := s.factors.GetTable(ctx)
	if err != nil {
		return nil, err
	}
	return s.rules[scope].Filter(table), nil
}
