// internal/workers/ai-conversation/parse-user-intent/extract.go
package parseuserintent

import (
	"encoding/json"
	"regexp"
	"strings"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// ExtractJSON finds the object between the first '{' and the last '}'.
// Reasoning models may wrap braces inside a <think> block, so on failure the
// block is stripped and the search repeated.
func ExtractJSON(raw string) (map[string]interface{}, bool) {
	if doc, ok := decodeSpan(raw); ok {
		return doc, true
	}
	if !strings.Contains(raw, "<think>") {
		return nil, false
	}
	return decodeSpan(thinkBlock.ReplaceAllString(raw, ""))
}

func decodeSpan(s string) (map[string]interface{}, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(s[start:end+1]), &doc); err != nil {
		return nil, false
	}
	return doc, true
}
