package assessment

import (
	"sort"
	"strings"

	"go.uber.org/multierr"

	"esg-assessment-service/internal/domain"
)

// UnknownCategory is the bucket for answers whose question id has no catalog
// entry. The original submission flow tolerated typo'd ids this way, so the
// fallback is part of the contract; see also DefaultWeight.
const UnknownCategory = "UNKNOWN"

// DefaultWeight is the weight assumed for answers to unknown questions.
const DefaultWeight = 1

// Normalize converts a raw answer value into its canonical form. Only
// strings are accepted; the string is trimmed, lower-cased and must be one
// of yes/no/partial.
func Normalize(raw any) (domain.CanonicalAnswer, error) {
	s, ok := raw.(string)
	if !ok {
		return "", domain.Errorf(domain.KindType, "answer must be a string, got %T", raw)
	}
	switch domain.CanonicalAnswer(strings.ToLower(strings.TrimSpace(s))) {
	case domain.AnswerYes:
		return domain.AnswerYes, nil
	case domain.AnswerNo:
		return domain.AnswerNo, nil
	case domain.AnswerPartial:
		return domain.AnswerPartial, nil
	}
	return "", domain.Errorf(domain.KindInvalidValue, "answer %q is not one of yes/no/partial", s)
}

// NormalizeAll converts a raw answer map into normalized answers, resolving
// category and weight from the catalog. Per-item failures are collected and
// returned together so the caller can surface every problem at once; valid
// items are still returned. Output is ordered by question id for
// deterministic downstream scoring.
func NormalizeAll(raw map[string]any, catalog *Catalog) ([]domain.Answer, error) {
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs error
	answers := make([]domain.Answer, 0, len(raw))
	for _, id := range ids {
		value := raw[id]
		if strings.TrimSpace(id) == "" {
			errs = multierr.Append(errs, domain.Errorf(domain.KindValidation, "empty question id"))
			continue
		}
		if value == nil {
			errs = multierr.Append(errs, domain.Errorf(domain.KindValidation, "question %s: missing answer", id))
			continue
		}
		canonical, err := Normalize(value)
		if err != nil {
			errs = multierr.Append(errs, domain.Errorf(domain.KindOf(err), "question %s: %s", id, err.Error()))
			continue
		}

		answer := domain.Answer{
			QuestionID: id,
			Answer:     canonical,
			Category:   UnknownCategory,
			Weight:     DefaultWeight,
		}
		if q, ok := catalog.Lookup(id); ok {
			answer.Category = q.Category
			answer.Weight = q.Weight
			if q.CriticalViolation != nil {
				answer.Critical = true
				answer.CriticalGrade = q.CriticalViolation.EffectiveGrade()
			}
		}
		answers = append(answers, answer)
	}

	if errs != nil {
		return answers, errs
	}
	if len(answers) == 0 && len(raw) > 0 {
		return nil, domain.Errorf(domain.KindEmptyResult, "no valid answers in submission of %d entries", len(raw))
	}
	return answers, nil
}
