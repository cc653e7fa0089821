// Package strings provides string slice helpers for flag and env parsing.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each element and drops empties and repeats. Order is
// preserved and a nil or empty input is returned unchanged.
//
//	DedupeAndTrim([]string{"  k1:9092 ", "k2:9092", "k1:9092", ""})
//	// []string{"k1:9092", "k2:9092"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		n := strings.TrimSpace(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		result = append(result, n)
	}
	return result
}
