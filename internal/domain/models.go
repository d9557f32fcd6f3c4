package domain

import "time"

// CanonicalAnswer is the closed three-state answer used by all downstream
// logic. Raw UI input is converted exactly once, at the normalization
// boundary; nothing below it re-validates.
type CanonicalAnswer string

const (
	AnswerYes     CanonicalAnswer = "yes"
	AnswerNo      CanonicalAnswer = "no"
	AnswerPartial CanonicalAnswer = "partial"
)

// Grade is a compliance letter grade. Ordering is A best, D worst.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// gradeRank maps grades to severity; higher is worse.
var gradeRank = map[Grade]int{GradeA: 0, GradeB: 1, GradeC: 2, GradeD: 3}

// Worse returns the more severe of g and other.
func (g Grade) Worse(other Grade) Grade {
	if gradeRank[other] > gradeRank[g] {
		return other
	}
	return g
}

// Points maps a grade to its category score contribution.
func (g Grade) Points() int {
	switch g {
	case GradeA:
		return 100
	case GradeB:
		return 80
	case GradeC:
		return 60
	case GradeD:
		return 40
	}
	return 0
}

// CriticalViolation marks a question whose negative answer forces a grade
// ceiling independent of the aggregate score.
type CriticalViolation struct {
	Grade  string `json:"grade"` // "B", "C", "D" or the combined "B/C"
	Reason string `json:"reason"`
}

// EffectiveGrade resolves the violation grade literal to a Grade. The
// combined "B/C" form counts as C, the worse of the pair.
func (v CriticalViolation) EffectiveGrade() Grade {
	switch v.Grade {
	case "B":
		return GradeB
	case "C", "B/C":
		return GradeC
	case "D":
		return GradeD
	}
	return GradeA
}

// Question is one self-assessment questionnaire item. Definitions are loaded
// once at startup and never mutated.
type Question struct {
	ID                string             `json:"id"` // "<categoryNumber>.<index>", e.g. "1.3"
	Category          string             `json:"category"`
	Text              string             `json:"text"`
	Weight            float64            `json:"weight"`
	CriticalViolation *CriticalViolation `json:"criticalViolation,omitempty"`
}

// Answer is a normalized answer to a single question, enriched with the
// catalog metadata resolved at normalization time.
type Answer struct {
	QuestionID    string          `json:"questionId"`
	Answer        CanonicalAnswer `json:"answer"`
	Category      string          `json:"category"`
	Weight        float64         `json:"weight"`
	Critical      bool            `json:"critical"`
	CriticalGrade Grade           `json:"criticalGrade,omitempty"`
}

// CategoryResult holds the two parallel per-category metrics.
type CategoryResult struct {
	Category string `json:"category"`
	// BasicRate is yes-answers / answers in the category, as an integer percent.
	BasicRate int `json:"basicRate"`
	// GradeScore is the points of the worst critical-violation grade seen in
	// the category (100 when none).
	GradeScore int   `json:"gradeScore"`
	Grade      Grade `json:"grade"`
}

// AssessmentResult is the full output of one scoring pass. A new result
// replaces the old one; results are never mutated in place.
type AssessmentResult struct {
	ID                     string           `json:"id"`
	CompanyID              string           `json:"companyId"`
	FinalGrade             Grade            `json:"finalGrade"`
	Score                  int              `json:"score"` // normalized 0-100
	ActualScore            float64          `json:"actualScore"`
	TotalPossibleScore     float64          `json:"totalPossibleScore"`
	CriticalViolationCount int              `json:"criticalViolationCount"`
	NoAnswerCount          int              `json:"noAnswerCount"`
	Categories             []CategoryResult `json:"categories"`
	Answers                []Answer         `json:"answers"` // submission order
	SubmittedAt            time.Time        `json:"submittedAt"`
}

// FactorEntry is one row of the emission-factor reference table.
type FactorEntry struct {
	Category    string `json:"category"`
	Separate    string `json:"separate"` // subcategory
	RawMaterial string `json:"rawMaterial"`
	Unit        string `json:"unit"`
	KgCO2Eq     string `json:"kgCO2eq"` // decimal literal, non-negative
	State       string `json:"state"`   // physical state tag
	ScopeTag    string `json:"scope"`   // scope classification tag
}

// EmissionRecord is a persisted emission calculation.
type EmissionRecord struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"companyId"`
	Category       string    `json:"category"`
	Separate       string    `json:"separate"`
	RawMaterial    string    `json:"rawMaterial"`
	Unit           string    `json:"unit"`
	ActivityAmount string    `json:"activityAmount"`
	EmissionFactor string    `json:"emissionFactor"`
	TotalEmission  string    `json:"totalEmission"` // 6 fractional digits
	CreatedAt      time.Time `json:"createdAt"`
}
