package assessment_test

import (
	"testing"

	"go.uber.org/multierr"

	"esg-assessment-service/internal/assessment"
	"esg-assessment-service/internal/domain"
)

func TestNormalizeAcceptsCanonicalForms(t *testing.T) {
	cases := map[string]domain.CanonicalAnswer{
		"yes":      domain.AnswerYes,
		"no":       domain.AnswerNo,
		"partial":  domain.AnswerPartial,
		"YES":      domain.AnswerYes,
		" No ":     domain.AnswerNo,
		"Partial":  domain.AnswerPartial,
		"\tyes\n":  domain.AnswerYes,
		"PARTIAL":  domain.AnswerPartial,
	}
	for raw, want := range cases {
		got, err := assessment.Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize(%q) failed: %v", raw, err)
		}
		if got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeRejectsEverythingElse(t *testing.T) {
	for _, raw := range []string{"", "maybe", "y", "true", "yess", "no!"} {
		if _, err := assessment.Normalize(raw); domain.KindOf(err) != domain.KindInvalidValue {
			t.Fatalf("Normalize(%q): expected invalid-value error, got %v", raw, err)
		}
	}
	for _, raw := range []any{nil, true, 1, 2.5, []string{"yes"}} {
		if _, err := assessment.Normalize(raw); domain.KindOf(err) != domain.KindType {
			t.Fatalf("Normalize(%#v): expected type error, got %v", raw, err)
		}
	}
}

func TestNormalizeAllResolvesCatalogMetadata(t *testing.T) {
	catalog := testCatalog(t)

	answers, err := assessment.NormalizeAll(map[string]any{
		"1.1": "yes",
		"2.1": "NO",
	}, catalog)
	if err != nil {
		t.Fatalf("NormalizeAll failed: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(answers))
	}
	// sorted by question id
	if answers[0].QuestionID != "1.1" || answers[0].Category != "Human Rights" || answers[0].Weight != 5 {
		t.Fatalf("unexpected first answer: %+v", answers[0])
	}
	if !answers[1].Critical || answers[1].CriticalGrade != domain.GradeD {
		t.Fatalf("expected 2.1 to carry critical grade D, got %+v", answers[1])
	}
}

func TestNormalizeAllUnknownQuestionFallback(t *testing.T) {
	answers, err := assessment.NormalizeAll(map[string]any{"9.9": "yes"}, testCatalog(t))
	if err != nil {
		t.Fatalf("NormalizeAll failed: %v", err)
	}
	a := answers[0]
	if a.Category != assessment.UnknownCategory || a.Weight != assessment.DefaultWeight || a.Critical {
		t.Fatalf("expected UNKNOWN/1/non-critical fallback, got %+v", a)
	}
}

func TestNormalizeAllCollectsAllErrors(t *testing.T) {
	answers, err := assessment.NormalizeAll(map[string]any{
		"1.1": "yes",
		"1.2": "maybe",
		"2.1": nil,
		"":    "no",
		"2.2": 7,
	}, testCatalog(t))
	if err == nil {
		t.Fatalf("expected aggregate error")
	}
	if got := len(multierr.Errors(err)); got != 4 {
		t.Fatalf("expected 4 collected errors, got %d: %v", got, err)
	}
	// valid items still come back so the caller can show partial state
	if len(answers) != 1 || answers[0].QuestionID != "1.1" {
		t.Fatalf("expected the one valid answer, got %+v", answers)
	}
}

func TestNormalizeAllEmptyResult(t *testing.T) {
	_, err := assessment.NormalizeAll(map[string]any{}, testCatalog(t))
	if err != nil {
		t.Fatalf("empty input should not error, got %v", err)
	}

	// Non-empty input where nothing normalizes: the per-item errors win.
	_, err = assessment.NormalizeAll(map[string]any{"1.1": "sometimes"}, testCatalog(t))
	if err == nil {
		t.Fatalf("expected error for unnormalizable input")
	}
}

func testCatalog(t *testing.T) *assessment.Catalog {
	t.Helper()
	catalog, err := assessment.NewCatalog([]domain.Question{
		{ID: "1.1", Category: "Human Rights", Text: "policy in place", Weight: 5},
		{ID: "1.2", Category: "Human Rights", Text: "grievance channel", Weight: 3,
			CriticalViolation: &domain.CriticalViolation{Grade: "C", Reason: "no remediation"}},
		{ID: "2.1", Category: "Labor Practices", Text: "no forced labor", Weight: 5,
			CriticalViolation: &domain.CriticalViolation{Grade: "D", Reason: "forced labor"}},
		{ID: "2.2", Category: "Labor Practices", Text: "hours capped", Weight: 2},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return catalog
}
