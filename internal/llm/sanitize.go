package llm

import (
	"regexp"
	"strings"
)

var (
	reThink = regexp.MustCompile(`(?s)^\s*<think>.*?</think>`)
	reFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\n?(.*?)\\s*```$")
)

// CleanContent strips wrapper noise some backends put around the JSON
// document: a leading <think>…</think> block from reasoning models and a
// Markdown code fence. It never touches the JSON itself.
func CleanContent(s string) string {
	s = reThink.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if m := reFence.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	return s
}
