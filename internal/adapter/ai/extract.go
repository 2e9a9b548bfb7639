package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

var fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)```")

// ExtractJSON locates the JSON payload embedded in a model's raw response
// and returns the raw JSON substring. Models frequently wrap JSON in
// markdown; a fenced block explicitly labeled json wins. When no fence is
// present the fallback is the naive brace span from the first '{' to the
// last '}'. It is not a balanced parser and does not survive unescaped
// braces inside string values.
func ExtractJSON(raw string) (string, error) {
	if m := fencedJSONRe.FindStringSubmatch(raw); m != nil {
		candidate := strings.TrimSpace(m[1])
		if !json.Valid([]byte(candidate)) {
			return "", fmt.Errorf("%w: fenced block is not valid JSON", domain.ErrExtraction)
		}
		return candidate, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: no JSON object found in response", domain.ErrExtraction)
	}
	candidate := raw[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", fmt.Errorf("%w: brace span is not valid JSON", domain.ErrExtraction)
	}
	return candidate, nil
}
