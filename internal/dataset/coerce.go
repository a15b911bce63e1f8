package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Score is a coerced metric cell. Valid is false when the raw value was
// missing or did not look numeric.
type Score struct {
	Value float64
	Valid bool
}

// ParseScore converts a raw cell to a number. A trailing percent sign and
// surrounding whitespace are ignored; anything else that does not parse as a
// finite float is reported as missing.
func ParseScore(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

// Coerce converts a column of raw cells into scores.
func Coerce(raw []string) []Score {
	scores := make([]Score, len(raw))
	for i, cell := range raw {
		v, ok := ParseScore(cell)
		scores[i] = Score{Value: v, Valid: ok}
	}
	return scores
}

// ValidCount returns the number of non-missing scores.
func ValidCount(scores []Score) int {
	n := 0
	for _, s := range scores {
		if s.Valid {
			n++
		}
	}
	return n
}
