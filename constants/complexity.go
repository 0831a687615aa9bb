package constants

import (
	"strings"
)

// Complexity is the request difficulty label the model assigns to a query.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
	// ComplexityUnknown stands in for any label outside the schema enum.
	ComplexityUnknown Complexity = "unknown"
)

var allComplexities = []Complexity{
	ComplexitySimple,
	ComplexityMedium,
	ComplexityComplex,
}

// ComplexityEnum returns the values allowed by the schema, in schema order.
func ComplexityEnum() []string {
	result := make([]string, len(allComplexities))
	for i, c := range allComplexities {
		result[i] = string(c)
	}
	return result
}

// CanonicalizeComplexity maps model output onto the closed set. Anything
// unrecognised becomes ComplexityUnknown and ok is false.
func CanonicalizeComplexity(input string) (Complexity, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, c := range allComplexities {
		if normalized == string(c) {
			return c, true
		}
	}
	return ComplexityUnknown, false
}

// Label is the Russian display label shown next to a quote.
func (c Complexity) Label() string {
	switch c {
	case ComplexitySimple:
		return "Простая"
	case ComplexityMedium:
		return "Средняя"
	case ComplexityComplex:
		return "Сложная"
	case ComplexityUnknown:
		return "Неизвестная"
	}
	return "Неизвестная"
}

// Color is the highlight used for the complexity badge (hex RGB, no '#').
func (c Complexity) Color() string {
	switch c {
	case ComplexitySimple:
		return "4ADE80"
	case ComplexityMedium:
		return "FACC15"
	case ComplexityComplex:
		return "FB923C"
	case ComplexityUnknown:
		return "9CA3AF"
	}
	return "9CA3AF"
}
