package azure

import (
	"strings"

	"github.com/kailas-cloud/askdex/internal/domain/query"
	"github.com/kailas-cloud/askdex/internal/domain/schema"
)

// buildFilter renders filter criteria into an OData $filter expression:
// a conjunction of parenthesized per-criterion OR-groups. Criteria whose
// logical field is unmapped are dropped so an unresolvable filter never
// blocks retrieval.
func buildFilter(c query.Criteria, m schema.Mapping) string {
	if c.IsEmpty() {
		return ""
	}

	var clauses []string

	if field, ok := m.Resolve(schema.FieldAuthor); ok {
		if g := equalityGroup(field, c.Authors()); g != "" {
			clauses = append(clauses, g)
		}
	}

	if field, ok := m.Resolve(schema.FieldContentType); ok {
		if g := equalityGroup(field, c.Categories()); g != "" {
			clauses = append(clauses, g)
		}
	}

	if field, ok := m.Resolve(schema.FieldExtension); ok {
		if g := extensionGroup(field, c.Extensions()); g != "" {
			clauses = append(clauses, g)
		}
	}

	if field, ok := m.Resolve(schema.FieldLastModified); ok {
		clauses = append(clauses, dateClauses(field, c.Dates())...)
	}

	if field, ok := m.Resolve(schema.FieldIdentifier); ok {
		if g := equalityGroup(field, c.DocumentIDs()); g != "" {
			clauses = append(clauses, g)
		}
	}

	return strings.Join(clauses, " and ")
}

// equalityGroup builds a parenthesized OR-group of eq comparisons.
func equalityGroup(field string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, equality(field, v))
	}
	return "(" + strings.Join(parts, " or ") + ")"
}

// extensionGroup matches both the dotted and undotted spelling of each
// extension; indexes store either form and the facet UI strips the dot.
func extensionGroup(field string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	seen := make(map[string]bool, len(values)*2)
	parts := make([]string, 0, len(values)*2)
	for _, v := range values {
		v = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v)), ".")
		if v == "" {
			continue
		}
		for _, form := range []string{v, "." + v} {
			if seen[form] {
				continue
			}
			seen[form] = true
			parts = append(parts, equality(field, form))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " or ") + ")"
}

// dateClauses emits independent ge/le clauses. The start date floors to
// 00:00:00Z and the end date ceilings to 23:59:59Z so a single-day range
// is inclusive.
func dateClauses(field string, r query.DateRange) []string {
	var out []string
	if !r.Start().IsZero() {
		out = append(out, field+" ge "+r.Start().UTC().Format("2006-01-02")+"T00:00:00Z")
	}
	if !r.End().IsZero() {
		out = append(out, field+" le "+r.End().UTC().Format("2006-01-02")+"T23:59:59Z")
	}
	return out
}

func equality(field, value string) string {
	return field + " eq '" + quoteEscaper.Replace(value) + "'"
}

// quoteEscaper doubles single quotes per OData string literal syntax.
var quoteEscaper = strings.NewReplacer("'", "''")
