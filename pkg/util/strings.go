package util

import "strings"

// SplitList splits an operator-supplied address list. Commas and any
// whitespace both act as separators, so "a,b", "a b" and "a, b" agree.
func SplitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// Quote wraps s in double quotes for use as a single remote shell word.
// Embedded double quotes and backslashes are escaped.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
