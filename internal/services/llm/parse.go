package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

const fallbackSummaryLimit = 200

var paragraphBreak = regexp.MustCompile(`\n\n+`)

// ParsePlanReply interprets the model reply. A JSON object supplies plan and
// summary directly; a missing or empty plan falls back to the raw text. When
// the reply is not JSON, the whole text becomes the plan and the last
// blank-line-separated chunk, cut to 200 characters plus "...", the summary.
func ParsePlanReply(text string) PlanResult {
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return PlanResult{Plan: text, Summary: fallbackSummary(text)}
	}

	result := PlanResult{Plan: text}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return result
	}
	if plan, ok := obj["plan"].(string); ok && plan != "" {
		result.Plan = plan
	}
	if summary, ok := obj["summary"].(string); ok {
		result.Summary = summary
	}
	return result
}

func fallbackSummary(text string) string {
	parts := paragraphBreak.Split(text, -1)
	last := parts[len(parts)-1]
	return truncateRunes(last, fallbackSummaryLimit) + "..."
}

// decodeJSONReply decodes a JSON reply, tolerating a surrounding code fence or
// leading prose around a single object.
func decodeJSONReply(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}
	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}
	body := stripCodeFence(trimmed)
	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		body = body[start : end+1]
	}
	if body == trimmed {
		return directErr
	}
	return json.Unmarshal([]byte(body), target)
}

func stripCodeFence(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	body := strings.TrimLeft(content[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
