package assessment_test

import (
	"testing"

	"esg-assessment-service/internal/assessment"
	"esg-assessment-service/internal/domain"
)

func TestGroupViolationsByIDPrefix(t *testing.T) {
	answers := []domain.Answer{
		{QuestionID: "1.1", Answer: domain.AnswerNo},
		{QuestionID: "1.2", Answer: domain.AnswerYes},
		{QuestionID: "2.1", Answer: domain.AnswerNo},
		{QuestionID: "2.4", Answer: domain.AnswerNo},
		{QuestionID: "3.1", Answer: domain.AnswerPartial},
	}
	grouped := assessment.GroupViolations(answers)
	if len(grouped) != 2 {
		t.Fatalf("expected 2 groups, got %d: %v", len(grouped), grouped)
	}
	if len(grouped["1"]) != 1 || len(grouped["2"]) != 2 {
		t.Fatalf("unexpected grouping: %v", grouped)
	}
	if _, ok := grouped["3"]; ok {
		t.Fatalf("partial answers must not count as violations")
	}
}

func TestChunkReconstructsInput(t *testing.T) {
	for _, size := range []int{1, 2, 3, 5, 100} {
		items := []int{1, 2, 3, 4, 5, 6, 7}
		chunks, err := assessment.Chunk(items, size)
		if err != nil {
			t.Fatalf("chunk size %d: %v", size, err)
		}
		var flat []int
		for i, chunk := range chunks {
			if i < len(chunks)-1 && len(chunk) != size {
				t.Fatalf("chunk %d has length %d, want %d", i, len(chunk), size)
			}
			flat = append(flat, chunk...)
		}
		if len(flat) != len(items) {
			t.Fatalf("size %d: concatenation lost items: %v", size, flat)
		}
		for i := range items {
			if flat[i] != items[i] {
				t.Fatalf("size %d: order broken at %d", size, i)
			}
		}
	}
}

func TestChunkEmptyAndInvalid(t *testing.T) {
	chunks, err := assessment.Chunk([]string{}, 3)
	if err != nil || len(chunks) != 0 {
		t.Fatalf("empty input: want no chunks, got %v %v", chunks, err)
	}
	for _, size := range []int{0, -1} {
		if _, err := assessment.Chunk([]string{"a"}, size); domain.KindOf(err) != domain.KindValidation {
			t.Fatalf("page size %d: expected validation error, got %v", size, err)
		}
	}
}

func TestSummarize(t *testing.T) {
	rollup := assessment.Summarize(domain.AssessmentResult{
		NoAnswerCount:          4,
		CriticalViolationCount: 2,
		ActualScore:            12,
		TotalPossibleScore:     20,
	})
	if rollup.TotalViolations != 4 || rollup.CriticalViolations != 2 {
		t.Fatalf("unexpected rollup: %+v", rollup)
	}
	if rollup.ActualScore != 12 || rollup.PossibleScore != 20 {
		t.Fatalf("unexpected score rollup: %+v", rollup)
	}
}
