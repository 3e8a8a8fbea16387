package normalize

import (
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Rule strips label boilerplate from one detector category's text.
type Rule struct {
	Label   string
	Pattern *regexp.Regexp
}

// Strip removes the first match of the rule's pattern from s.
func (r Rule) Strip(s string) string {
	loc := r.Pattern.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}

// RuleSet is an ordered, read-only list of rules indexed by label.
//
// A RuleSet is built once at startup and shared by every document; it is
// never modified after construction and is safe for concurrent use.
type RuleSet struct {
	rules []Rule
	index map[string]int
}

// NewRuleSet builds a rule set from rules in order. A label listed twice is
// a configuration error.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{
		rules: make([]Rule, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	for i, r := range rules {
		if r.Label == "" {
			return nil, fmt.Errorf("rule %d: empty label", i)
		}
		if r.Pattern == nil {
			return nil, fmt.Errorf("rule %q: nil pattern", r.Label)
		}
		if _, dup := rs.index[r.Label]; dup {
			return nil, fmt.Errorf("rule %q: duplicate label", r.Label)
		}
		rs.rules[i] = r
		rs.index[r.Label] = i
	}
	return rs, nil
}

// Lookup returns the rule for label.
func (rs *RuleSet) Lookup(label string) (Rule, bool) {
	if rs == nil {
		return Rule{}, false
	}
	i, ok := rs.index[label]
	if !ok {
		return Rule{}, false
	}
	return rs.rules[i], true
}

// Rules returns a copy of the rules in declaration order.
func (rs *RuleSet) Rules() []Rule {
	if rs == nil {
		return nil
	}
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// defaultPatterns is the boilerplate table for the invoice detector's
// categories. Known OCR misreadings are literal alternatives ("Emall").
// DATE and DUE_DATE overlap on purpose; labels never collide within one
// document, so no priority between them is needed.
var defaultPatterns = []struct {
	label   string
	pattern string
}{
	{"BUYER", `(Buyer|Bill to)\s*[:\-]?\s*`},
	{"SELLER_ADDRESS", `Address\s*[:\-]?\s*`},
	{"SELLER_EMAIL", `(Email|Emall)\s*[:\-]?\s*`},
	{"TOTAL_WORDS", `Total\.?\s*in words\s*[:\-]?\s*`},
	{"TOTAL", `(TOTAL|BALANCE DUE)\s*[:\-]?\s*`},
	{"SUB_TOTAL", `SUB TOTAL\s*[:\-]?\s*`},
	{"GSTIN_SELLER", `GSTIN\s*[:\-]?\s*|[()]`},
	{"GSTIN", `GSTIN\s*[:\-]?\s*`},
	{"NUMBER", `(INVOICE\s*#?|ID\s*|Invoice number\s*)`},
	{"DATE", `(Invoice Date|Date)\s*[:\-]?\s*`},
	{"DUE_DATE", `(Due Date|Date|Invoice)\s*[:\-]?\s*`},
	{"TITLE", `INVOICE\s*`},
	{"TAX", `(TAX|VAT \(3.73%\))\s*[:\-]?\s*`},
	{"DISCOUNT", `(DISCOUNT|\(2.87%\))\s*[:\-]?\s*`},
	{"PAYMENT_DETAILS", `(BankName|Branch Name|Bank Account Number|Bank Swift Code)\s*[:\-]?\s*`},
	{"GSTIN_BUYER", `GSTIN\s*[:\-]?\s*`},
	{"PO_NUMBER", `PO Number\s*[:\-]?\s*`},
	{"NOTE", `Note\s*[:\-]?\s*`},
	{"GST(7%)", `GST\(7%\)\s*[:\-]?\s*`},
	{"GST(9%)", `GST\(9%\)\s*[:\-]?\s*`},
	{"SEND_TO", `SHIP_TO\s*[:\-]?\s*`},
}

// DefaultRules returns the built-in rule set. Each call compiles a fresh
// set; callers build it once at startup and pass it around.
func DefaultRules() *RuleSet {
	rules := make([]Rule, len(defaultPatterns))
	for i, p := range defaultPatterns {
		rules[i] = Rule{Label: p.label, Pattern: regexp.MustCompile(p.pattern)}
	}
	rs, err := NewRuleSet(rules)
	if err != nil {
		panic(fmt.Sprintf("normalize: built-in rules: %v", err))
	}
	return rs
}

// ruleFile is one entry of a YAML rules file.
type ruleFile struct {
	Label   string `yaml:"label"`
	Pattern string `yaml:"pattern"`
}

// LoadRules reads an ordered YAML list of rules:
//
//	- label: TOTAL
//	  pattern: '(TOTAL|BALANCE DUE)\s*[:\-]?\s*'
//
// Patterns use RE2 syntax. An invalid pattern fails the whole load.
func LoadRules(r io.Reader) (*RuleSet, error) {
	var entries []ruleFile
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if err == io.EOF {
			return NewRuleSet(nil)
		}
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	rules := make([]Rule, 0, len(entries))
	for i, e := range entries {
		re, err := regexp.Compile(e.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): invalid pattern: %w", i, e.Label, err)
		}
		rules = append(rules, Rule{Label: e.Label, Pattern: re})
	}
	return NewRuleSet(rules)
}
