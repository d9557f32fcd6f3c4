package memory

import (
	"context"
	"sync"

	"esg-assessment-service/internal/domain"
)

// ResultStore keeps assessment results and emission records in memory,
// newest first per company. Intended for tests and single-node demos.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string][]domain.AssessmentResult
	records map[string][]domain.EmissionRecord
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[string][]domain.AssessmentResult),
		records: make(map[string][]domain.EmissionRecord),
	}
}

func (s *ResultStore) SaveResult(_ context.Context, result domain.AssessmentResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.CompanyID] = append([]domain.AssessmentResult{result}, s.results[result.CompanyID]...)
	return nil
}

func (s *ResultStore) LatestResult(_ context.Context, companyID string) (domain.AssessmentResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := s.results[companyID]
	if len(results) == 0 {
		return domain.AssessmentResult{}, domain.ErrResultNotFound
	}
	return results[0], nil
}

func (s *ResultStore) ListResults(_ context.Context, companyID string) ([]domain.AssessmentResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AssessmentResult(nil), s.results[companyID]...), nil
}

func (s *ResultStore) SaveRecord(_ context.Context, record domain.EmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.CompanyID] = append([]domain.EmissionRecord{record}, s.records[record.CompanyID]...)
	return nil
}

func (s *ResultStore) ListRecords(_ context.Context, companyID string) ([]domain.EmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.EmissionRecord(nil), s.records[companyID]...), nil
}
