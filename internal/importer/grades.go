package importer

import (
	"math"
	"strconv"
	"strings"
)

// ParseGrade normalizes one raw grade cell. Empty or whitespace-only values
// mean "no grade"; commas are accepted as decimal separators; anything that
// still fails to parse as a finite float is also treated as "no grade",
// never as a row-level error.
func ParseGrade(v string) *float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
