package assessment

import (
	"math"
	"sort"

	"esg-assessment-service/internal/domain"
)

// Score computes the full assessment result for one answer set.
//
// Two metrics are computed per category: the basic compliance rate (share of
// yes answers) and a grade-based score driven only by critical violations.
// The overall grade is the worst critical-violation grade across all
// categories; without any critical violation the grade is A no matter how
// low the raw score is. Critical violations are a hard override, not an
// averaged input.
//
// The computation is pure and idempotent; scoring the same answers twice
// yields identical results.
func Score(answers []domain.Answer, catalog *Catalog) (domain.AssessmentResult, error) {
	if len(answers) == 0 {
		return domain.AssessmentResult{}, domain.Errorf(domain.KindValidation, "nothing to score: empty answer set")
	}
	seen := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		if _, dup := seen[a.QuestionID]; dup {
			return domain.AssessmentResult{}, domain.Errorf(domain.KindValidation, "duplicate answer for question %q", a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}
	}

	byCategory := make(map[string][]domain.Answer)
	for _, a := range answers {
		byCategory[a.Category] = append(byCategory[a.Category], a)
	}

	var (
		actual       float64
		possible     float64
		criticals    int
		noAnswers    int
		overallGrade = domain.GradeA
	)

	categories := make([]domain.CategoryResult, 0, len(Categories))
	for _, category := range categoryOrder(byCategory) {
		group := byCategory[category]

		yes := 0
		worst := domain.GradeA
		for _, a := range group {
			if a.Answer == domain.AnswerYes {
				yes++
			}
			if a.Answer == domain.AnswerNo && a.Critical {
				worst = worst.Worse(a.CriticalGrade)
			}
		}

		rate := 0
		if len(group) > 0 {
			rate = int(math.Round(float64(yes) / float64(len(group)) * 100))
		}
		categories = append(categories, domain.CategoryResult{
			Category:   category,
			BasicRate:  rate,
			GradeScore: worst.Points(),
			Grade:      worst,
		})
		overallGrade = overallGrade.Worse(worst)
	}

	for _, a := range answers {
		possible += a.Weight
		if a.Answer == domain.AnswerYes {
			actual += a.Weight
		}
		if a.Answer == domain.AnswerNo {
			noAnswers++
			if a.Critical {
				criticals++
			}
		}
	}

	score := 0
	if possible > 0 {
		score = int(math.Round(actual / possible * 100))
	}

	return domain.AssessmentResult{
		FinalGrade:             overallGrade,
		Score:                  score,
		ActualScore:            actual,
		TotalPossibleScore:     possible,
		CriticalViolationCount: criticals,
		NoAnswerCount:          noAnswers,
		Categories:             categories,
		Answers:                append([]domain.Answer(nil), answers...),
	}, nil
}

// categoryOrder returns the fixed category order followed by any extra
// buckets (e.g. UNKNOWN) that appear in the answer set.
func categoryOrder(byCategory map[string][]domain.Answer) []string {
	order := make([]string, 0, len(byCategory))
	listed := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		listed[c] = struct{}{}
		if _, ok := byCategory[c]; ok {
			order = append(order, c)
		}
	}
	extras := make([]string, 0, 1)
	for c := range byCategory {
		if _, ok := listed[c]; !ok {
			extras = append(extras, c)
		}
	}
	sort.Strings(extras)
	return append(order, extras...)
}
