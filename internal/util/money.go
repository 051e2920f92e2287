package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	digitRun = regexp.MustCompile(`[0-9]+`)

	// Cost cells carry prose such as "Não haverá custos" or "A ser definido"
	// when no value applies.
	notApplicableTerms = []string{"custos", "definido", "haverá"}
)

// ParseCurrency converts a Brazilian-formatted amount such as "R$ 1.234,56".
// It returns nil when the text is empty, not numeric, or marks the cost as
// not applicable.
func ParseCurrency(input string) *float64 {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	lower := strings.ToLower(input)
	for _, term := range notApplicableTerms {
		if strings.Contains(lower, term) {
			return nil
		}
	}

	cleaned := strings.TrimSpace(strings.ReplaceAll(input, "R$", ""))
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return FloatPtr(value)
}

// ParseWorkload returns the first run of digits in input, or 0.
func ParseWorkload(input string) int {
	match := digitRun.FindString(input)
	if match == "" {
		return 0
	}
	value, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return value
}

// IsDigits reports whether s is a non-empty run of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func FloatPtr(v float64) *float64 { return &v }
