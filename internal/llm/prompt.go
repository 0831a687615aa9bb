package llm

import (
	"strings"
)

// BuildSystemContext composes the system message: the materials reference
// first, then the extraction instructions, concatenated as-is.
func BuildSystemContext(materials, instructions string) string {
	return materials + instructions
}

// BuildUserPrompt normalises the user's request text.
func BuildUserPrompt(prompt string) string {
	return strings.TrimSpace(prompt)
}
