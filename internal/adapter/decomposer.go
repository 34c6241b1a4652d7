package adapter

import (
	"strings"

	"github.com/agenthands/sightline/internal/ports"
)

// CommaAndDecomposer splits a query into sub-queries on commas and "and"
// conjunctions. The full query is always the first variant.
type CommaAndDecomposer struct{}

func NewCommaAndDecomposer() *CommaAndDecomposer {
	return &CommaAndDecomposer{}
}

func (d *CommaAndDecomposer) Decompose(queryText string) []string {
	normalized := strings.ReplaceAll(queryText, ",", " and ")
	var parts []string
	for _, part := range strings.Split(normalized, " and ") {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return []string{queryText}
	}

	decomposed := []string{queryText}
	for _, part := range parts {
		if strings.EqualFold(part, queryText) {
			continue
		}
		decomposed = append(decomposed, part)
	}
	return decomposed
}

var _ ports.QueryDecomposer = (*CommaAndDecomposer)(nil)
