package response

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed rules.toml
var defaultRulesTOML string

var (
	ErrNoRules          = errors.New("rule table is empty")
	ErrMissingCatchAll  = errors.New("last rule must have no keywords")
	ErrMisplacedDefault = errors.New("only the last rule may omit keywords")
	ErrEmptyReply       = errors.New("rule reply is empty")
	ErrDuplicateRule    = errors.New("duplicate rule category")
)

// Rule maps a category of trigger substrings to its canned reply.
// A rule without keywords is the catch-all.
type Rule struct {
	Category string   `toml:"category" json:"category"`
	Keywords []string `toml:"keywords" json:"keywords,omitempty"`
	Reply    string   `toml:"reply" json:"reply"`
}

// CatchAll reports whether the rule matches unconditionally.
func (r Rule) CatchAll() bool {
	return len(r.Keywords) == 0
}

type ruleFile struct {
	Rules []Rule `toml:"rule"`
}

// ParseRules decodes an ordered rule table from TOML and validates it.
func ParseRules(data string) ([]Rule, error) {
	var file ruleFile
	md, err := toml.Decode(data, &file)
	if err != nil {
		return nil, fmt.Errorf("decode rule table: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("unknown rule table keys: %s", strings.Join(keys, ", "))
	}

	rules := normalizeRules(file.Rules)
	if err := validateRules(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// LoadRules reads a rule table from disk.
func LoadRules(path string) ([]Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule table %s: %w", path, err)
	}
	return ParseRules(string(raw))
}

// DefaultRules returns the embedded rule table.
func DefaultRules() []Rule {
	rules, err := ParseRules(defaultRulesTOML)
	if err != nil {
		panic(fmt.Sprintf("embedded rule table is invalid: %v", err))
	}
	return rules
}

func normalizeRules(in []Rule) []Rule {
	out := make([]Rule, 0, len(in))
	for _, rule := range in {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, word := range rule.Keywords {
			word = strings.ToLower(strings.TrimSpace(word))
			if word == "" {
				continue
			}
			keywords = append(keywords, word)
		}
		out = append(out, Rule{
			Category: strings.TrimSpace(rule.Category),
			Keywords: keywords,
			Reply:    rule.Reply,
		})
	}
	return out
}

func validateRules(rules []Rule) error {
	if len(rules) == 0 {
		return ErrNoRules
	}

	seen := make(map[string]struct{}, len(rules))
	for i, rule := range rules {
		if rule.Category == "" {
			return fmt.Errorf("rule %d: category is required", i)
		}
		if _, dup := seen[rule.Category]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateRule, rule.Category)
		}
		seen[rule.Category] = struct{}{}

		if strings.TrimSpace(rule.Reply) == "" {
			return fmt.Errorf("%w: %s", ErrEmptyReply, rule.Category)
		}
		if rule.CatchAll() && i != len(rules)-1 {
			return fmt.Errorf("%w: %s", ErrMisplacedDefault, rule.Category)
		}
	}

	if !rules[len(rules)-1].CatchAll() {
		return ErrMissingCatchAll
	}
	return nil
}
