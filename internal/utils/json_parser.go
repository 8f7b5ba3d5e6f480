package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var (
	fencedJSONPattern    = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	fencedPattern        = regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyPattern       = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	controlCharPattern   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseAIJSON extracts and parses JSON produced by a model, which may be:
// - Pure JSON
// - JSON wrapped in markdown code blocks (```json ... ```)
// - JSON with surrounding text
// - Truncated or otherwise malformed JSON
//
// Strategies are tried from cheapest to most invasive; the first one that
// yields valid JSON for target wins.
func ParseAIJSON(input string, target any) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty input")
	}

	candidates := []func(string) string{
		func(s string) string { return s },
		extractFromMarkdown,
		extractJSONFromText,
		cleanAndFixJSON,
		repairJSON,
	}

	var lastErr error
	for _, candidate := range candidates {
		text := candidate(input)
		if text == "" {
			continue
		}
		if err := json.Unmarshal([]byte(text), target); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("failed to parse JSON from input %q: %w", truncateString(input, 100), lastErr)
}

// ParseToolArguments decodes a function call argument payload. An empty
// payload means no arguments.
func ParseToolArguments(arguments string, target any) error {
	trimmed := strings.TrimSpace(arguments)
	if trimmed == "" || trimmed == "null" {
		trimmed = "{}"
	}
	if !looksLikeObject(trimmed) {
		return fmt.Errorf("arguments must be a JSON object")
	}
	return ParseAIJSON(trimmed, target)
}

func looksLikeObject(s string) bool {
	if extracted := extractFromMarkdown(s); extracted != "" {
		s = extracted
	}
	return strings.Contains(s, "{")
}

// extractFromMarkdown extracts JSON from markdown code blocks
// Supports: ```json {...} ```, ```{...}```, or ```\n{...}\n```
func extractFromMarkdown(input string) string {
	if matches := fencedJSONPattern.FindStringSubmatch(input); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	if matches := fencedPattern.FindStringSubmatch(input); len(matches) > 1 {
		content := strings.TrimSpace(matches[1])
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return content
		}
	}

	return ""
}

// extractJSONFromText finds a JSON object or array in surrounding text
func extractJSONFromText(input string) string {
	if start := strings.Index(input, "{"); start >= 0 {
		if extracted := extractBalancedBraces(input[start:], '{', '}'); extracted != "" {
			return extracted
		}
	}

	if start := strings.Index(input, "["); start >= 0 {
		if extracted := extractBalancedBraces(input[start:], '[', ']'); extracted != "" {
			return extracted
		}
	}

	return ""
}

// extractBalancedBraces extracts content with balanced braces
func extractBalancedBraces(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}

		switch {
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			if depth == 0 {
				start = i
			}
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// cleanAndFixJSON fixes the formatting slips models make most often
func cleanAndFixJSON(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "\ufeff")
	s = trailingCommaPattern.ReplaceAllString(s, "$1")
	s = bareKeyPattern.ReplaceAllString(s, `$1"$2"$3`)
	s = fixSingleQuotes(s)
	return controlCharPattern.ReplaceAllString(s, "")
}

// repairJSON hands the input to jsonrepair, which also closes truncated
// objects and strings
func repairJSON(input string) string {
	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return ""
	}
	return repaired
}

// fixSingleQuotes converts single quotes to double quotes for JSON compatibility
func fixSingleQuotes(input string) string {
	var result strings.Builder
	inDoubleQuote := false
	escape := false

	for i, ch := range input {
		if escape {
			result.WriteRune(ch)
			escape = false
			continue
		}

		if ch == '\\' {
			result.WriteRune(ch)
			escape = true
			continue
		}

		if ch == '"' {
			inDoubleQuote = !inDoubleQuote
			result.WriteRune(ch)
			continue
		}

		// Only quote-like single quotes, not apostrophes inside words
		if ch == '\'' && !inDoubleQuote {
			prevChar := rune(0)
			if i > 0 {
				prevChar = rune(input[i-1])
			}
			if i == 0 || prevChar == ':' || prevChar == ',' || prevChar == '[' || prevChar == '{' || prevChar == ' ' {
				result.WriteRune('"')
				continue
			}
			if next := i + 1; next == len(input) || strings.ContainsRune(",}]: ", rune(input[next])) {
				result.WriteRune('"')
				continue
			}
		}

		result.WriteRune(ch)
	}

	return result.String()
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// CompactJSON returns input without insignificant whitespace, or input
// unchanged when it is not valid JSON
func CompactJSON(input string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(input)); err != nil {
		return input
	}
	return buf.String()
}
