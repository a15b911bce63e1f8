package dataset

import (
	"fmt"
	"strings"
)

// ValidateSchema returns the candidate metric columns present in the table,
// in candidate order. It fails when the identifier column is absent or when
// no candidate is present.
func ValidateSchema(t *Table, identifier string, candidates []string) ([]string, error) {
	if identifier == "" {
		identifier = DefaultIdentifier
	}

	if !t.HasColumn(identifier) {
		return nil, &SchemaError{
			Source:     t.Source,
			Message:    fmt.Sprintf("required column %q is missing", identifier),
			Columns:    t.Names(),
			Suggestion: suggestColumn(t.Names(), []string{identifier}),
		}
	}

	present := make([]string, 0, len(candidates))
	for _, name := range candidates {
		if t.HasColumn(name) {
			present = append(present, name)
		}
	}

	if len(present) == 0 {
		return nil, &SchemaError{
			Source:     t.Source,
			Message:    fmt.Sprintf("no recognized metric columns found (expected any of %s)", strings.Join(candidates, ", ")),
			Columns:    t.Names(),
			Suggestion: suggestColumn(t.Names(), candidates),
		}
	}

	return present, nil
}

// suggestColumn points at headers that only differ from a wanted name by
// case, surrounding whitespace or a stray byte order mark.
func suggestColumn(headers, wanted []string) string {
	var hints []string
	for _, h := range headers {
		for _, w := range wanted {
			trimmed := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
			if h != w && strings.EqualFold(trimmed, w) {
				hints = append(hints, fmt.Sprintf("rename %q to %q", h, w))
			}
		}
	}
	if len(hints) == 0 {
		return ""
	}
	return "column names are case-sensitive: " + strings.Join(hints, ", ")
}
