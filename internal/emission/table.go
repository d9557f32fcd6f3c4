package emission

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"esg-assessment-service/internal/domain"
)

// ParseTable reads the emission-factor reference table from CSV. The header
// names the columns; order does not matter. Required columns: category,
// separate, raw_material, unit, kg_co2eq. Optional: state, scope.
//
// The table is parsed once at startup and treated as immutable reference
// data for the session.
func ParseTable(r io.Reader) ([]domain.FactorEntry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read factor table header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"category", "separate", "raw_material", "unit", "kg_co2eq"} {
		if _, ok := index[required]; !ok {
			return nil, domain.Errorf(domain.KindValidation, "factor table missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var entries []domain.FactorEntry
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read factor table line %d: %w", line, err)
		}

		factor := field(row, "kg_co2eq")
		d, err := decimal.NewFromString(factor)
		if err != nil {
			return nil, domain.Errorf(domain.KindInvalidValue, "factor table line %d: kg_co2eq %q is not a number", line, factor)
		}
		if d.IsNegative() {
			return nil, domain.Errorf(domain.KindInvalidValue, "factor table line %d: kg_co2eq %q is negative", line, factor)
		}

		entries = append(entries, domain.FactorEntry{
			Category:    field(row, "category"),
			Separate:    field(row, "separate"),
			RawMaterial: field(row, "raw_material"),
			Unit:        field(row, "unit"),
			KgCO2Eq:     factor,
			State:       field(row, "state"),
			ScopeTag:    field(row, "scope"),
		})
	}
	if len(entries) == 0 {
		return nil, domain.Errorf(domain.KindEmptyResult, "factor table has no data rows")
	}
	return entries, nil
}
