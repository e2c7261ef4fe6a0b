package detect

import (
	"regexp"
	"sort"
	"strings"
)

var possessiveRegex = regexp.MustCompile(`'s$|s'$`)

// Normalizer groups name variants under one canonical display name, so
// that "Jim" and "James Dillingham Young" collapse to a single character
// identifier before relation analysis.
type Normalizer struct {
	mapping map[string]string // variant -> canonical
}

// NewNormalizer creates an empty Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{mapping: make(map[string]string)}
}

// CleanName strips possessive suffixes, collapses whitespace, and
// title-cases the name. Returns "" for empty input.
func CleanName(name string) string {
	name = possessiveRegex.ReplaceAllString(strings.TrimSpace(name), "")

	parts := strings.Fields(name)
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
		}
	}
	return strings.Join(parts, " ")
}

// Group merges variant names and sums their counts. The highest-count
// variant becomes the canonical name of its group. Iteration order is
// fixed (count descending, then name) so grouping is deterministic.
func (n *Normalizer) Group(counts map[string]int) map[string]int {
	cleaned := make(map[string]int)
	for name, count := range counts {
		c := CleanName(name)
		if c != "" {
			cleaned[c] += count
		}
	}

	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(cleaned))
	for name, count := range cleaned {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	grouped := make(map[string]int)
	processed := make(map[string]bool)

	for _, e := range entries {
		if processed[e.name] {
			continue
		}
		canonical := e.name
		total := e.count
		processed[e.name] = true
		n.mapping[e.name] = canonical

		for _, other := range entries {
			if processed[other.name] {
				continue
			}
			if areVariants(canonical, other.name) {
				total += other.count
				processed[other.name] = true
				n.mapping[other.name] = canonical
			}
		}

		grouped[canonical] = total
	}

	return grouped
}

// Canonical returns the canonical name for a (possibly variant) name.
func (n *Normalizer) Canonical(name string) string {
	clean := CleanName(name)
	if canonical, ok := n.mapping[clean]; ok {
		return canonical
	}
	return clean
}

// Aliases returns the non-canonical variants mapped to canonical, sorted.
func (n *Normalizer) Aliases(canonical string) []string {
	var aliases []string
	for variant, c := range n.mapping {
		if c == canonical && variant != canonical {
			aliases = append(aliases, variant)
		}
	}
	sort.Strings(aliases)
	return aliases
}

// areVariants reports whether two names likely refer to the same
// character: exact match, substring containment (min 4 chars), or a
// shared first name of at least 3 characters.
func areVariants(name1, name2 string) bool {
	n1 := strings.ToLower(name1)
	n2 := strings.ToLower(name2)

	if n1 == n2 {
		return true
	}

	if len(n1) >= 4 && len(n2) >= 4 {
		if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
			return true
		}
	}

	parts1 := strings.Fields(n1)
	parts2 := strings.Fields(n2)
	if len(parts1) > 0 && len(parts2) > 0 {
		if parts1[0] == parts2[0] && len(parts1[0]) >= 3 {
			return true
		}
	}

	return false
}
