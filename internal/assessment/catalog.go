package assessment

import (
	"esg-assessment-service/internal/domain"
)

// Categories is the fixed set of due-diligence categories, in report order.
var Categories = []string{
	"Human Rights",
	"Labor Practices",
	"Environment",
	"Ethics & Anti-Corruption",
	"Supply Chain Management",
}

// Catalog is the immutable question registry. Build it once at startup and
// pass it by pointer into every scoring call.
type Catalog struct {
	questions []domain.Question
	byID      map[string]domain.Question
}

// NewCatalog validates the question set and builds the lookup index.
// IDs must be unique and every weight positive.
func NewCatalog(questions []domain.Question) (*Catalog, error) {
	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			return nil, domain.Errorf(domain.KindValidation, "question with empty id")
		}
		if _, dup := byID[q.ID]; dup {
			return nil, domain.Errorf(domain.KindValidation, "duplicate question id %q", q.ID)
		}
		if q.Weight <= 0 {
			return nil, domain.Errorf(domain.KindValidation, "question %q has non-positive weight %v", q.ID, q.Weight)
		}
		byID[q.ID] = q
	}
	return &Catalog{questions: append([]domain.Question(nil), questions...), byID: byID}, nil
}

// Lookup returns the question for id, if registered.
func (c *Catalog) Lookup(id string) (domain.Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// Questions returns the catalog contents in registration order.
func (c *Catalog) Questions() []domain.Question {
	return append([]domain.Question(nil), c.questions...)
}

// Len reports the number of registered questions.
func (c *Catalog) Len() int { return len(c.questions) }
