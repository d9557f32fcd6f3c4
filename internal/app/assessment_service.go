package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"esg-assessment-service/internal/assessment"
	"esg-assessment-service/internal/domain"
)

// CatalogRepository loads the question catalog (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context) (*assessment.Catalog, error)
}

// ResultStore persists assessment results.
type ResultStore interface {
	SaveResult(ctx context.Context, result domain.AssessmentResult) error
	LatestResult(ctx context.Context, companyID string) (domain.AssessmentResult, error)
	ListResults(ctx context.Context, companyID string) ([]domain.AssessmentResult, error)
}

// WatchRegistry abstracts how per-company watch sessions are tracked
// (in-memory, Redis-backed, etc).
type WatchRegistry interface {
	GetOrCreate(companyID string) *Watch
	Get(companyID string) (*Watch, bool)
	DeleteIfEmpty(companyID string)
}

// AssessmentService contains the self-assessment use cases: submit a raw
// answer set, read back results, and watch live result updates.
type AssessmentService struct {
	catalogs CatalogRepository
	results  ResultStore
	watches  WatchRegistry
	log      *zap.Logger
	now      func() time.Time
	newID    func() string
}

func NewAssessmentService(catalogs CatalogRepository, results ResultStore, watches WatchRegistry, log *zap.Logger) *AssessmentService {
	return &AssessmentService{
		catalogs: catalogs,
		results:  results,
		watches:  watches,
		log:      log,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// Submit normalizes and scores one raw answer set, persists the result, and
// broadcasts it to watchers of the company. Structural failures abort before
// anything is persisted; no partial result is ever stored or broadcast.
func (s *AssessmentService) Submit(ctx context.Context, companyID string, raw map[string]any) (domain.AssessmentResult, error) {
	catalog, err := s.catalogs.GetCatalog(ctx)
	if err != nil {
		return domain.AssessmentResult{}, err
	}

	answers, err := assessment.NormalizeAll(raw, catalog)
	if err != nil {
		return domain.AssessmentResult{}, err
	}

	result, err := assessment.Score(answers, catalog)
	if err != nil {
		return domain.AssessmentResult{}, err
	}
	result.ID = s.newID()
	result.CompanyID = companyID
	result.SubmittedAt = s.now()

	if err := s.results.SaveResult(ctx, result); err != nil {
		return domain.AssessmentResult{}, err
	}

	s.log.Info("assessment scored",
		zap.String("company_id", companyID),
		zap.String("grade", string(result.FinalGrade)),
		zap.Int("score", result.Score),
		zap.Int("critical_violations", result.CriticalViolationCount))

	if watch, ok := s.watches.Get(companyID); ok {
		watch.publish(result)
	}
	return result, nil
}

// Latest returns the most recent result for a company.
func (s *AssessmentService) Latest(ctx context.Context, companyID string) (domain.AssessmentResult, error) {
	return s.results.LatestResult(ctx, companyID)
}

// History returns one page of past results, newest first. Page numbers start
// at 1.
func (s *AssessmentService) History(ctx context.Context, companyID string, page, pageSize int) ([]domain.AssessmentResult, error) {
	if page < 1 {
		return nil, domain.Errorf(domain.KindValidation, "page must be >= 1, got %d", page)
	}
	all, err := s.results.ListResults(ctx, companyID)
	if err != nil {
		return nil, err
	}
	pages, err := assessment.Chunk(all, pageSize)
	if err != nil {
		return nil, err
	}
	if page > len(pages) {
		return []domain.AssessmentResult{}, nil
	}
	return pages[page-1], nil
}

// Violations groups the negative answers of the latest result by category
// prefix for report rendering.
func (s *AssessmentService) Violations(ctx context.Context, companyID string) (map[string][]domain.Answer, error) {
	latest, err := s.results.LatestResult(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return assessment.GroupViolations(latest.Answers), nil
}

// Watch returns a channel of result updates for the company. The caller must
// invoke the returned cancel function to avoid leaks.
func (s *AssessmentService) Watch(_ context.Context, companyID string) (<-chan domain.AssessmentResult, func()) {
	watch := s.watches.GetOrCreate(companyID)
	ch, cancel := watch.subscribe()
	return ch, func() {
		cancel()
		if watch.IsEmpty() {
			s.watches.DeleteIfEmpty(companyID)
		}
	}
}
