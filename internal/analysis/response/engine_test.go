package response

import (
	"errors"
	"strings"
	"testing"
)

func replyFor(t *testing.T, e *Engine, category string) string {
	t.Helper()
	for _, rule := range e.Rules() {
		if rule.Category == category {
			return rule.Reply
		}
	}
	t.Fatalf("category %s not in rule table", category)
	return ""
}

func TestDefaultRulePriorityOrder(t *testing.T) {
	e := Default()
	want := []string{"funding", "grant", "apply", "business", "product", "support", "opportunity", "default"}
	got := e.Categories()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected priority order: %v", got)
	}
}

func TestClassifyFundingKeywords(t *testing.T) {
	e := Default()
	funding := replyFor(t, e, "funding")

	for _, input := range []string{"funding", "I need MONEY", "  finance options  ", "Tell me about Funding."} {
		if got := e.Classify(input); got != funding {
			t.Fatalf("input %q: expected funding reply, got %q", input, got)
		}
	}
}

func TestClassifyFundingBeatsGrant(t *testing.T) {
	e := Default()
	got := e.Match("how do grants for funding work")
	if got.Category != "funding" {
		t.Fatalf("expected funding category, got %s", got.Category)
	}
	if got.Reply != replyFor(t, e, "funding") {
		t.Fatal("expected funding reply verbatim")
	}
}

func TestClassifyCategories(t *testing.T) {
	e := Default()
	cases := map[string]string{
		"Any grants available?":          "grant",
		"How do I submit an application": "apply",
		"how to get started":             "apply",
		"I'm an entrepreneur":            "business",
		"Business mentorship program":    "business",
		"What services do you offer":     "product",
		"I need help":                    "support",
		"Upcoming workshop dates":        "opportunity",
		"Show me opportunities":          "opportunity",
		"xyz123":                         "default",
		"":                               "default",
	}
	for input, want := range cases {
		if got := e.Match(input).Category; got != want {
			t.Fatalf("input %q: expected %s, got %s", input, want, got)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	e := Default()
	input := "How can I apply for funding?"
	first := e.Classify(input)
	for i := 0; i < 10; i++ {
		if got := e.Classify(input); got != first {
			t.Fatalf("classification changed on call %d", i)
		}
	}
}

func TestClassifyHandlesUnusualInput(t *testing.T) {
	e := Default()
	long := strings.Repeat("lorem ipsum ", 50000) + "grant"
	if got := e.Match(long).Category; got != "grant" {
		t.Fatalf("expected grant for long input, got %s", got)
	}
	if got := e.Match("Финансы? 资金 🚀").Category; got != "default" {
		t.Fatalf("expected default for non-ascii input, got %s", got)
	}
	if got := e.Classify("\x00\xff"); got == "" {
		t.Fatal("expected non-empty reply for invalid utf-8")
	}
}

func TestNewEngineRejectsInvalidTables(t *testing.T) {
	cases := []struct {
		name  string
		rules []Rule
		want  error
	}{
		{"empty", nil, ErrNoRules},
		{"no catch-all", []Rule{{Category: "a", Keywords: []string{"a"}, Reply: "a"}}, ErrMissingCatchAll},
		{"catch-all not last", []Rule{
			{Category: "default", Reply: "d"},
			{Category: "a", Keywords: []string{"a"}, Reply: "a"},
		}, ErrMisplacedDefault},
		{"empty reply", []Rule{{Category: "default", Reply: "  "}}, ErrEmptyReply},
		{"duplicate", []Rule{
			{Category: "a", Keywords: []string{"a"}, Reply: "a"},
			{Category: "a", Reply: "b"},
		}, ErrDuplicateRule},
	}

	for _, tc := range cases {
		if _, err := NewEngine(tc.rules); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestNewEngineLowercasesKeywords(t *testing.T) {
	e, err := NewEngine([]Rule{
		{Category: "loud", Keywords: []string{" HELLO "}, Reply: "hi"},
		{Category: "default", Reply: "?"},
	})
	if err != nil {
		t.Fatalf("NewEngine err: %v", err)
	}
	if got := e.Classify("well, hello there"); got != "hi" {
		t.Fatalf("expected keyword match, got %q", got)
	}
}

func TestParseRulesRejectsUnknownKeys(t *testing.T) {
	data := `
[[rule]]
category = "default"
reply = "ok"
weight = 3
`
	if _, err := ParseRules(data); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParseRulesPreservesFileOrder(t *testing.T) {
	data := `
[[rule]]
category = "second"
keywords = ["b"]
reply = "B"

[[rule]]
category = "first"
keywords = ["a"]
reply = "A"

[[rule]]
category = "default"
reply = "D"
`
	rules, err := ParseRules(data)
	if err != nil {
		t.Fatalf("ParseRules err: %v", err)
	}
	e, err := NewEngine(rules)
	if err != nil {
		t.Fatalf("NewEngine err: %v", err)
	}
	if got := e.Classify("a and b"); got != "B" {
		t.Fatalf("expected first table entry to win, got %q", got)
	}
}
