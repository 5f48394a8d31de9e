package llm

import (
	"strings"
	"testing"
)

func TestBuildMaterials(t *testing.T) {
	long := strings.Repeat("x", 1500)
	got := BuildMaterials([]Source{
		{URL: "https://a.example", Content: "first"},
		{URL: "https://b.example", Content: long},
	})
	want := "### Source 1 (https://a.example)\nfirst\n\n### Source 2 (https://b.example)\n" + strings.Repeat("x", 1000)
	if got != want {
		t.Fatalf("unexpected materials:\n%q", got)
	}
}

func TestTruncateToTokenLimit(t *testing.T) {
	if got := TruncateToTokenLimit("abcdefgh", 2); got != "abcdefgh" {
		t.Fatalf("expected string within budget to be kept, got %q", got)
	}
	if got := TruncateToTokenLimit("abcdefghi", 2); got != "abcdefgh" {
		t.Fatalf("expected truncation to 8 chars, got %q", got)
	}
	if got := TruncateToTokenLimit(strings.Repeat("y", 20000), 4000); len(got) != 16000 {
		t.Fatalf("expected 16000 chars, got %d", len(got))
	}
}

func TestPreferenceLinesSortedByKey(t *testing.T) {
	got := PreferenceLines(map[string]string{"time": "45 minutes", "equipment": "barbell", "goal": "hypertrophy"})
	want := "equipment: barbell\ngoal: hypertrophy\ntime: 45 minutes"
	if got != want {
		t.Fatalf("unexpected preference lines %q", got)
	}
	if PreferenceLines(nil) != "" {
		t.Fatal("expected empty lines for nil preferences")
	}
}

func TestBuildUserPromptSections(t *testing.T) {
	prompt := BuildUserPrompt([]Source{{URL: "u", Content: strings.Repeat("z", 900)}}, map[string]string{"goal": "fat loss"}, 10)
	if !strings.Contains(prompt, "MATERIALS:\n### Source 1 (u)\nzzz") {
		t.Fatalf("missing materials section:\n%s", prompt)
	}
	materials := prompt[strings.Index(prompt, "MATERIALS:\n")+len("MATERIALS:\n") : strings.Index(prompt, "\n\nPREFERENCES:")]
	if len(materials) != 40 {
		t.Fatalf("expected materials truncated to 40 chars, got %d", len(materials))
	}
	if !strings.HasSuffix(prompt, "PREFERENCES:\ngoal: fat loss") {
		t.Fatalf("missing preferences section:\n%s", prompt)
	}
}
