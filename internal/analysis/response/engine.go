package response

import (
	"fmt"
	"strings"
)

// Engine maps free-text utterances to canned replies by walking an ordered
// rule table. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine validates the rule table and returns an engine over a copy of it.
func NewEngine(rules []Rule) (*Engine, error) {
	normalized := normalizeRules(rules)
	if err := validateRules(normalized); err != nil {
		return nil, fmt.Errorf("invalid rule table: %w", err)
	}
	return &Engine{rules: normalized}, nil
}

// Default returns an engine over the embedded rule table.
func Default() *Engine {
	return &Engine{rules: DefaultRules()}
}

// Match returns the first rule whose keywords occur in the utterance.
// The catch-all rule guarantees a result for every input.
func (e *Engine) Match(utterance string) Rule {
	normalized := strings.ToLower(utterance)
	for _, rule := range e.rules {
		if rule.CatchAll() {
			return rule
		}
		for _, word := range rule.Keywords {
			if strings.Contains(normalized, word) {
				return rule
			}
		}
	}
	// unreachable with a validated table
	return e.rules[len(e.rules)-1]
}

// Classify returns the reply text for the utterance.
func (e *Engine) Classify(utterance string) string {
	return e.Match(utterance).Reply
}

// Rules returns the rule table in priority order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	for i, rule := range e.rules {
		rule.Keywords = append([]string(nil), rule.Keywords...)
		out[i] = rule
	}
	return out
}

// Categories lists category names in priority order.
func (e *Engine) Categories() []string {
	names := make([]string, len(e.rules))
	for i, rule := range e.rules {
		names[i] = rule.Category
	}
	return names
}
