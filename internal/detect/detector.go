package detect

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"

	"github.com/dmelnic/storylens/pkg/models"
)

// Config holds character detection settings. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// MinMentions is the minimum mention count required to keep a
	// character.
	MinMentions int

	// CapitalizationThreshold filters proper-noun candidates whose
	// capitalization consistency score falls below it. Candidates tagged
	// as PERSON entities bypass this filter.
	CapitalizationThreshold float64
}

// DefaultConfig returns the default detection settings.
func DefaultConfig() Config {
	return Config{
		MinMentions:             3,
		CapitalizationThreshold: 0.5,
	}
}

// Detector finds character mentions in segmented sentences using NER
// entities, proper-noun tagging, and capitalization-consistency
// heuristics.
type Detector struct {
	cfg        Config
	normalizer *Normalizer
}

// NewDetector creates a Detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	if cfg.MinMentions <= 0 {
		cfg.MinMentions = DefaultConfig().MinMentions
	}
	if cfg.CapitalizationThreshold <= 0 {
		cfg.CapitalizationThreshold = DefaultConfig().CapitalizationThreshold
	}
	return &Detector{cfg: cfg, normalizer: NewNormalizer()}
}

// Result holds detected characters and the per-sentence identifier sets
// consumed by the trait and relation extractors.
type Result struct {
	Characters []models.Character
	// BySentence[i] lists the canonical identifiers mentioned in
	// sentence i, sorted.
	BySentence [][]string
}

type candidateStats struct {
	total       int
	capitalized int
	midSentence int
	isPerson    bool
}

// Detect runs character detection over the sentence list. An empty list
// yields an empty result.
func (d *Detector) Detect(sentences []string) (*Result, error) {
	result := &Result{
		Characters: []models.Character{},
		BySentence: make([][]string, len(sentences)),
	}
	for i := range result.BySentence {
		result.BySentence[i] = []string{}
	}
	if len(sentences) == 0 {
		return result, nil
	}

	stats, err := d.collectCandidates(sentences)
	if err != nil {
		return nil, err
	}

	candidates := d.filterCandidates(stats)
	if len(candidates) == 0 {
		return result, nil
	}

	// Count raw mentions per candidate across all sentences.
	rawCounts := make(map[string]int)
	for _, name := range candidates {
		count := 0
		for _, sentence := range sentences {
			if nameInSentence(name, strings.ToLower(sentence)) {
				count++
			}
		}
		if count > 0 {
			rawCounts[name] = count
		}
	}

	grouped := d.normalizer.Group(rawCounts)

	// Keep characters above the mention floor, sorted by count then name.
	names := make([]string, 0, len(grouped))
	for name, count := range grouped {
		if count >= d.cfg.MinMentions {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if grouped[names[i]] != grouped[names[j]] {
			return grouped[names[i]] > grouped[names[j]]
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		variants := append([]string{name}, d.normalizer.Aliases(name)...)

		var mentions []int
		for i, sentence := range sentences {
			lower := strings.ToLower(sentence)
			for _, v := range variants {
				if nameInSentence(v, lower) {
					mentions = append(mentions, i)
					result.BySentence[i] = append(result.BySentence[i], name)
					break
				}
			}
		}
		if len(mentions) == 0 {
			continue
		}

		result.Characters = append(result.Characters, models.Character{
			Name:         name,
			Aliases:      d.normalizer.Aliases(name),
			Mentions:     mentions,
			MentionCount: len(mentions),
		})
	}

	for i := range result.BySentence {
		sort.Strings(result.BySentence[i])
	}

	return result, nil
}

// collectCandidates gathers proper-noun candidates with capitalization
// statistics from every sentence.
func (d *Detector) collectCandidates(sentences []string) (map[string]*candidateStats, error) {
	stats := make(map[string]*candidateStats)

	for _, sentence := range sentences {
		doc, err := prose.NewDocument(sentence, prose.WithSegmentation(false))
		if err != nil {
			return nil, err
		}

		for _, ent := range doc.Entities() {
			if ent.Label != "PERSON" {
				continue
			}
			name := CleanName(ent.Text)
			if name == "" {
				continue
			}
			s := getStats(stats, name)
			s.isPerson = true
		}

		for i, tok := range doc.Tokens() {
			if tok.Tag != "NNP" && tok.Tag != "NNPS" {
				continue
			}
			if len(tok.Text) < 2 {
				continue
			}
			name := CleanName(tok.Text)
			if name == "" {
				continue
			}
			s := getStats(stats, name)
			s.total++
			if unicode.IsUpper(rune(tok.Text[0])) {
				s.capitalized++
			}
			if i > 0 {
				s.midSentence++
			}
		}
	}

	return stats, nil
}

// filterCandidates keeps candidates that either were tagged as PERSON
// entities or show consistent mid-sentence capitalization.
func (d *Detector) filterCandidates(stats map[string]*candidateStats) []string {
	var names []string
	for name, s := range stats {
		if s.isPerson || consistencyScore(s) >= d.cfg.CapitalizationThreshold {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// consistencyScore combines the capitalization ratio with the
// mid-sentence ratio. Sentence-initial tokens are always capitalized, so
// only mid-sentence capitalization is evidence of a proper noun.
func consistencyScore(s *candidateStats) float64 {
	if s.total == 0 {
		return 0
	}
	if s.midSentence == 0 {
		return 0.5
	}
	capRatio := float64(s.capitalized) / float64(s.total)
	midRatio := float64(s.midSentence) / float64(s.total)
	return capRatio * midRatio
}

func getStats(stats map[string]*candidateStats, name string) *candidateStats {
	if s, ok := stats[name]; ok {
		return s
	}
	s := &candidateStats{}
	stats[name] = s
	return s
}

// nameInSentence reports whether a character name occurs in a lowercased
// sentence, matching whole words. Multi-word names also match on their
// first name when it is at least 3 characters long.
func nameInSentence(name, sentenceLower string) bool {
	nameLower := strings.ToLower(name)
	if containsWord(sentenceLower, nameLower) {
		return true
	}
	if idx := strings.IndexByte(nameLower, ' '); idx >= 3 {
		return containsWord(sentenceLower, nameLower[:idx])
	}
	return false
}

// containsWord is a word-boundary aware substring check.
func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	for start := 0; ; {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(needle)

		beforeOK := idx == 0 || !isLetter(haystack[idx-1])
		afterOK := end == len(haystack) || !isLetter(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
