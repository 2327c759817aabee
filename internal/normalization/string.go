package normalization

import (
	"strings"
)

func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// CanonicalName collapses inner whitespace in addition to trimming and
// lowercasing. Ingredient names are compared in this form.
func CanonicalName(input string) string {
	return strings.Join(strings.Fields(ParseInputString(input)), " ")
}
