package detect

import (
	"testing"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Della's", "Della"},
		{"  jim  dillingham ", "Jim Dillingham"},
		{"SOPHRONIA", "Sophronia"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanName(tt.input); got != tt.expected {
			t.Errorf("CleanName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGroupMergesVariants(t *testing.T) {
	n := NewNormalizer()

	grouped := n.Group(map[string]int{
		"Jim":                     12,
		"James Dillingham Young":  2,
		"Della":                   15,
		"Della Young":             3,
	})

	if count := grouped["Della"]; count != 18 {
		t.Errorf("expected Della grouped count 18, got %d", count)
	}

	if got := n.Canonical("Della Young"); got != "Della" {
		t.Errorf("expected Della Young -> Della, got %q", got)
	}

	// "Jim" and "James Dillingham Young" share no first name and no
	// substring, so they stay separate.
	if _, ok := grouped["Jim"]; !ok {
		t.Error("expected Jim to remain a canonical name")
	}
	if _, ok := grouped["James Dillingham Young"]; !ok {
		t.Error("expected James Dillingham Young to remain a canonical name")
	}
}

func TestGroupDeterministic(t *testing.T) {
	input := map[string]int{
		"Madame Sofronie": 2,
		"Sofronie":        5,
		"Della":           10,
	}

	first := NewNormalizer().Group(input)
	second := NewNormalizer().Group(input)

	if len(first) != len(second) {
		t.Fatalf("grouping not deterministic: %v vs %v", first, second)
	}
	for name, count := range first {
		if second[name] != count {
			t.Errorf("grouping not deterministic for %q: %d vs %d", name, count, second[name])
		}
	}

	// Higher-count variant wins the canonical slot.
	if _, ok := first["Sofronie"]; !ok {
		t.Errorf("expected Sofronie as canonical name, got %v", first)
	}
}

func TestAliases(t *testing.T) {
	n := NewNormalizer()
	n.Group(map[string]int{"Della": 10, "Della Young": 2})

	aliases := n.Aliases("Della")
	if len(aliases) != 1 || aliases[0] != "Della Young" {
		t.Errorf("expected aliases [Della Young], got %v", aliases)
	}
}
