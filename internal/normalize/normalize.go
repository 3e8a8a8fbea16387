// Package normalize strips label boilerplate from recognized field text.
//
// Detected regions usually include the printed label next to the value
// ("Email: foo@bar.com", "BALANCE DUE $12.00"). Each detector category has at
// most one Rule whose pattern matches that boilerplate. Normalizing removes
// the first match anywhere in the text, not only at the start, so patterns
// can also target stray decoration such as parentheses. Matching is exact
// and case-sensitive; recognizer misspellings are handled by listing them as
// alternatives in the pattern.
package normalize

import "strings"

// Normalizer applies a RuleSet to recognized field text.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	rules *RuleSet
}

// New returns a Normalizer backed by rules. A nil rule set trims only.
func New(rules *RuleSet) *Normalizer {
	return &Normalizer{rules: rules}
}

// Normalize returns raw with the first match of label's rule removed and
// surrounding whitespace trimmed. Labels without a rule are trimmed only.
func (n *Normalizer) Normalize(label, raw string) string {
	if raw == "" {
		return ""
	}
	var rules *RuleSet
	if n != nil {
		rules = n.rules
	}
	rule, ok := rules.Lookup(label)
	if !ok {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(rule.Strip(raw))
}
