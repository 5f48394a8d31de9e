package llm

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// SystemPrompt sets the coaching persona for every plan request.
	SystemPrompt = "You are an expert fitness coach and certified personal trainer. You analyze workout articles and create personalized, safe, and effective workout programs."

	sourceCharLimit = 1000
	charsPerToken   = 4
)

const userPromptHeader = `You will receive two sections:

1. MATERIALS - extracted text from workout web pages.
2. PREFERENCES - the user's goals, experience, time, equipment, and notes.

Using this information, generate a comprehensive 4-week workout plan tailored to the user.

OUTPUT FORMAT (JSON *only*, no markdown):
{
  "plan": "<detailed workout plan; organize by weeks/days with exercises, sets, reps, rest>",
  "summary": "<concise (<=150 words) explanation of how the plan addresses the materials and preferences>"
}`

// BuildMaterials labels each source and truncates its content to 1000
// characters. Sources are separated by a blank line.
func BuildMaterials(sources []Source) string {
	blocks := make([]string, 0, len(sources))
	for i, src := range sources {
		blocks = append(blocks, fmt.Sprintf("### Source %d (%s)\n%s", i+1, src.URL, truncateRunes(src.Content, sourceCharLimit)))
	}
	return strings.Join(blocks, "\n\n")
}

// TruncateToTokenLimit keeps s when its estimated token count (4 characters
// per token, rounded up) fits maxTokens and otherwise cuts it to maxTokens*4
// characters.
func TruncateToTokenLimit(s string, maxTokens int) string {
	if maxTokens < 0 {
		maxTokens = 0
	}
	runes := []rune(s)
	approx := (len(runes) + charsPerToken - 1) / charsPerToken
	if approx <= maxTokens {
		return s
	}
	return string(runes[:maxTokens*charsPerToken])
}

// PreferenceLines renders preferences as "key: value" lines sorted by key.
func PreferenceLines(prefs map[string]string) string {
	keys := make([]string, 0, len(prefs))
	for key := range prefs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+": "+prefs[key])
	}
	return strings.Join(lines, "\n")
}

// BuildUserPrompt assembles the instruction block, materials and preferences.
func BuildUserPrompt(sources []Source, prefs map[string]string, materialTokenBudget int) string {
	var b strings.Builder
	b.WriteString(userPromptHeader)
	b.WriteString("\n\nMATERIALS:\n")
	b.WriteString(TruncateToTokenLimit(BuildMaterials(sources), materialTokenBudget))
	b.WriteString("\n\nPREFERENCES:\n")
	b.WriteString(PreferenceLines(prefs))
	return b.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
