package assessment

import (
	"strings"

	"esg-assessment-service/internal/domain"
)

// GroupViolations groups all negative answers by the category prefix of the
// question id (the text before the first dot). Purely structural; no scoring
// logic lives here.
func GroupViolations(answers []domain.Answer) map[string][]domain.Answer {
	grouped := make(map[string][]domain.Answer)
	for _, a := range answers {
		if a.Answer != domain.AnswerNo {
			continue
		}
		prefix := a.QuestionID
		if i := strings.Index(prefix, "."); i >= 0 {
			prefix = prefix[:i]
		}
		grouped[prefix] = append(grouped[prefix], a)
	}
	return grouped
}

// Chunk splits items into consecutive groups of pageSize; the last group may
// be shorter. Concatenating the chunks reconstructs the input exactly.
func Chunk[T any](items []T, pageSize int) ([][]T, error) {
	if pageSize < 1 {
		return nil, domain.Errorf(domain.KindValidation, "page size must be >= 1, got %d", pageSize)
	}
	chunks := make([][]T, 0, (len(items)+pageSize-1)/pageSize)
	for start := 0; start < len(items); start += pageSize {
		end := start + pageSize
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks, nil
}

// Rollup summarizes a result for report rendering.
type Rollup struct {
	TotalViolations    int     `json:"totalViolations"`
	CriticalViolations int     `json:"criticalViolations"`
	ActualScore        float64 `json:"actualScore"`
	PossibleScore      float64 `json:"possibleScore"`
}

// Summarize computes the report rollup from an already-scored result.
func Summarize(result domain.AssessmentResult) Rollup {
	return Rollup{
		TotalViolations:    result.NoAnswerCount,
		CriticalViolations: result.CriticalViolationCount,
		ActualScore:        result.ActualScore,
		PossibleScore:      result.TotalPossibleScore,
	}
}
