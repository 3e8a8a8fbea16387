package normalize

import (
	"regexp"
	"strings"
	"sync"
	"testing"
)

func TestNormalize_DefaultRules(t *testing.T) {
	n := New(DefaultRules())

	tests := []struct {
		label string
		raw   string
		want  string
	}{
		{"SELLER_EMAIL", "Emall: foo@bar.com", "foo@bar.com"},
		{"SELLER_EMAIL", "Email - foo@bar.com", "foo@bar.com"},
		{"BUYER", "Bill to: ACME Corp", "ACME Corp"},
		{"BUYER", "Buyer ACME Corp", "ACME Corp"},
		{"TOTAL", "BALANCE DUE: $12.00", "$12.00"},
		{"TOTAL", "TOTAL $99.10", "$99.10"},
		{"SUB_TOTAL", "SUB TOTAL: 40.00", "40.00"},
		{"TOTAL_WORDS", "Total. in words: Forty only", "Forty only"},
		{"NUMBER", "INVOICE # 1234", "1234"},
		{"DATE", "Invoice Date: 2024-03-01", "2024-03-01"},
		{"DUE_DATE", "Due Date: 2024-04-01", "2024-04-01"},
		{"TITLE", "INVOICE", ""},
		{"TAX", "VAT (3.73%): 4.10", "4.10"},
		{"DISCOUNT", "(2.87%) 1.20", "1.20"},
		{"PAYMENT_DETAILS", "Bank Swift Code: ABCDEF12", "ABCDEF12"},
		{"PO_NUMBER", "PO Number: 7781", "7781"},
		{"NOTE", "Note: thanks", "thanks"},
		{"GST(7%)", "GST(7%): 3.50", "3.50"},
		{"SEND_TO", "SHIP_TO: Dock 4", "Dock 4"},
		{"GSTIN_BUYER", "GSTIN: 29ABCDE1234F1Z5", "29ABCDE1234F1Z5"},
	}

	for _, tt := range tests {
		t.Run(tt.label+"/"+tt.raw, func(t *testing.T) {
			got := n.Normalize(tt.label, tt.raw)
			if got != tt.want {
				t.Errorf("Normalize(%q, %q): got %q, want %q", tt.label, tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize_UnknownLabelTrimsOnly(t *testing.T) {
	n := New(DefaultRules())
	if got := n.Normalize("UNKNOWN_LABEL", "  raw value  "); got != "raw value" {
		t.Errorf("got %q, want %q", got, "raw value")
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := New(DefaultRules())
	for _, label := range []string{"TOTAL", "UNKNOWN_LABEL", ""} {
		if got := n.Normalize(label, ""); got != "" {
			t.Errorf("Normalize(%q, \"\"): got %q, want empty", label, got)
		}
	}
}

func TestNormalize_FirstMatchOnly(t *testing.T) {
	n := New(DefaultRules())

	// Only the first "Note:" goes; the second is part of the value.
	if got := n.Normalize("NOTE", "Note: see Note: 4"); got != "see Note: 4" {
		t.Errorf("got %q", got)
	}

	// Leftmost match wins across alternatives, so the opening parenthesis is
	// removed before the GSTIN prefix would be.
	if got := n.Normalize("GSTIN_SELLER", "(GSTIN: 22AB)"); got != "GSTIN: 22AB)" {
		t.Errorf("got %q", got)
	}
	if got := n.Normalize("GSTIN_SELLER", "GSTIN: 22AB (KA)"); got != "22AB (KA)" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_MatchAnywhere(t *testing.T) {
	n := New(DefaultRules())
	if got := n.Normalize("SUB_TOTAL", "  Amount SUB TOTAL: 40 "); got != "Amount 40" {
		t.Errorf("got %q, want %q", got, "Amount 40")
	}
}

func TestNormalize_CaseSensitive(t *testing.T) {
	n := New(DefaultRules())
	if got := n.Normalize("TOTAL", " total: 5 "); got != "total: 5" {
		t.Errorf("lowercase label should not match, got %q", got)
	}
}

func TestNormalize_NoMatchTrims(t *testing.T) {
	n := New(DefaultRules())
	if got := n.Normalize("SELLER_EMAIL", "\tfoo@bar.com\n"); got != "foo@bar.com" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_NilRules(t *testing.T) {
	if got := New(nil).Normalize("TOTAL", " TOTAL: 5 "); got != "TOTAL: 5" {
		t.Errorf("nil rules should trim only, got %q", got)
	}
	var n *Normalizer
	if got := n.Normalize("TOTAL", " x "); got != "x" {
		t.Errorf("nil normalizer should trim only, got %q", got)
	}
}

func TestNormalize_ConcurrentUse(t *testing.T) {
	n := New(DefaultRules())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := n.Normalize("SELLER_EMAIL", "Email: a@b.c"); got != "a@b.c" {
					t.Errorf("got %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestDefaultRules(t *testing.T) {
	rs := DefaultRules()
	if rs.Len() != 21 {
		t.Errorf("Len: got %d, want 21", rs.Len())
	}

	rules := rs.Rules()
	if rules[0].Label != "BUYER" || rules[len(rules)-1].Label != "SEND_TO" {
		t.Errorf("order not preserved: first %s, last %s", rules[0].Label, rules[len(rules)-1].Label)
	}

	// Rules returns a copy.
	rules[0].Label = "CHANGED"
	if _, ok := rs.Lookup("BUYER"); !ok {
		t.Error("mutating Rules() result changed the set")
	}

	date, _ := rs.Lookup("DATE")
	due, _ := rs.Lookup("DUE_DATE")
	if date.Pattern.String() == due.Pattern.String() {
		t.Error("DATE and DUE_DATE should keep distinct patterns")
	}
}

func TestNewRuleSet_Errors(t *testing.T) {
	re := regexp.MustCompile(`x`)
	tests := []struct {
		name  string
		rules []Rule
	}{
		{"empty label", []Rule{{Label: "", Pattern: re}}},
		{"nil pattern", []Rule{{Label: "A"}}},
		{"duplicate", []Rule{{Label: "A", Pattern: re}, {Label: "A", Pattern: re}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRuleSet(tt.rules); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadRules(t *testing.T) {
	src := `
- label: TOTAL
  pattern: '(TOTAL|BALANCE DUE)\s*[:\-]?\s*'
- label: VENDOR
  pattern: 'Vendor\s*:\s*'
`
	rs, err := LoadRules(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}
	if rs.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", rs.Len())
	}
	if rs.Rules()[1].Label != "VENDOR" {
		t.Errorf("order: got %v", rs.Rules())
	}

	n := New(rs)
	if got := n.Normalize("VENDOR", "Vendor: Initech"); got != "Initech" {
		t.Errorf("got %q", got)
	}
}

func TestLoadRules_Empty(t *testing.T) {
	rs, err := LoadRules(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}
	if rs.Len() != 0 {
		t.Errorf("Len: got %d, want 0", rs.Len())
	}
}

func TestLoadRules_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad pattern", "- label: X\n  pattern: '(unclosed'\n"},
		{"not a list", "label: X\n"},
		{"duplicate label", "- label: X\n  pattern: a\n- label: X\n  pattern: b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadRules(strings.NewReader(tt.src)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
