package relation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dmelnic/storylens/pkg/models"
)

// Source identifies which detection signal produced a relation hint.
type Source string

const (
	SourcePattern      Source = "pattern"
	SourcePronoun      Source = "pronoun"
	SourceCooccurrence Source = "cooccurrence"
)

// ConflictPolicy resolves the final label set of a pair from per-label
// hint-weight sums. The set may contain semantically contradictory
// labels; the policy decides whether they survive.
type ConflictPolicy func(weights map[string]float64) []string

// KeepAllLabels preserves every hinted label, contradictions included.
// This matches the multi-label source behavior.
func KeepAllLabels(weights map[string]float64) []string {
	labels := make([]string, 0, len(weights))
	for l := range weights {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// MutuallyExclusiveFamilies keeps only the highest-weighted label per
// relation family, so a pair cannot be both "married-couple" and
// "siblings". Ties fall to the lexicographically smaller label.
func MutuallyExclusiveFamilies(weights map[string]float64) []string {
	best := make(map[string]string)
	for label := range weights {
		family := LabelFamily(label)
		current, ok := best[family]
		if !ok || weights[label] > weights[current] ||
			(weights[label] == weights[current] && label < current) {
			best[family] = label
		}
	}

	labels := make([]string, 0, len(best))
	for _, l := range best {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Config holds the immutable settings for one extraction run. Cross-
// document state lives here, never in package variables, so each
// document's analysis is independent.
type Config struct {
	// Window is the sentence-distance radius for proximity counting and
	// hint antecedent search.
	Window int

	// FallbackCooccurrence is the co-occurrence count at which a pair
	// with no explicit hints earns the generic "acquaintances" label.
	FallbackCooccurrence int

	// StrongCooccurrence is the co-occurrence count treated as an
	// independent signal agreeing with the primary label.
	StrongCooccurrence int

	// AdjacentFactor scales hint weight when antecedents were resolved
	// from an adjacent sentence rather than the matching sentence.
	AdjacentFactor float64

	// PronounFactor scales possessive-pronoun hints relative to explicit
	// phrase hints.
	PronounFactor float64

	Rules        []Rule
	PronounRules []PronounRule
	Conflict     ConflictPolicy
}

// DefaultConfig returns the default extraction settings with the
// built-in rule tables and the label-preserving conflict policy.
func DefaultConfig() Config {
	return Config{
		Window:               3,
		FallbackCooccurrence: 2,
		StrongCooccurrence:   3,
		AdjacentFactor:       0.75,
		PronounFactor:        0.5,
		Rules:                DefaultRules(),
		PronounRules:         DefaultPronounRules(),
		Conflict:             KeepAllLabels,
	}
}

// Mention is one detected character occurrence: (identifier, sentence
// index). Immutable once detected.
type Mention struct {
	Character string
	Sentence  int
}

// MentionsFromSets flattens per-sentence identifier sets into Mention
// records.
func MentionsFromSets(bySentence [][]string) []Mention {
	var mentions []Mention
	for i, chars := range bySentence {
		for _, c := range chars {
			mentions = append(mentions, Mention{Character: c, Sentence: i})
		}
	}
	return mentions
}

// Extractor computes pairwise relationship candidates from character
// mentions and raw sentence text. Extraction is a deterministic pure
// computation: identical inputs yield byte-identical output.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an Extractor, filling unset config fields from
// DefaultConfig.
func NewExtractor(cfg Config) *Extractor {
	def := DefaultConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.FallbackCooccurrence <= 0 {
		cfg.FallbackCooccurrence = def.FallbackCooccurrence
	}
	if cfg.StrongCooccurrence <= 0 {
		cfg.StrongCooccurrence = def.StrongCooccurrence
	}
	if cfg.AdjacentFactor <= 0 {
		cfg.AdjacentFactor = def.AdjacentFactor
	}
	if cfg.PronounFactor <= 0 {
		cfg.PronounFactor = def.PronounFactor
	}
	if cfg.Rules == nil {
		cfg.Rules = def.Rules
	}
	if cfg.PronounRules == nil {
		cfg.PronounRules = def.PronounRules
	}
	if cfg.Conflict == nil {
		cfg.Conflict = def.Conflict
	}
	return &Extractor{cfg: cfg}
}

// pairKey is an unordered character pair; A sorts before B.
type pairKey struct {
	a, b string
}

func makePair(x, y string) pairKey {
	if x < y {
		return pairKey{x, y}
	}
	return pairKey{y, x}
}

type hint struct {
	label  string
	weight float64
	source Source
}

var possessiveRegex = regexp.MustCompile(`\b(?:his|her)\s+([a-z]+)\b`)

// Extract runs the full relation pipeline: co-occurrence and proximity
// counting, pattern and possessive-pronoun hint collection, label
// fusion, primary selection, and scoring. Pairs without at least one
// co-occurrence or proximity hit are dropped. An empty sentence list
// yields an empty result.
//
// A mention with a sentence index outside [0, len(sentences)) is a
// contract violation from the upstream detector and returns an error.
func (e *Extractor) Extract(sentences []string, mentions []Mention) ([]models.RelationCandidate, error) {
	if len(sentences) == 0 {
		return []models.RelationCandidate{}, nil
	}

	bySentence, sentencesOf, err := indexMentions(sentences, mentions)
	if err != nil {
		return nil, err
	}

	cooccurrence := e.countCooccurrence(bySentence)
	proximity := e.countProximity(sentencesOf)
	hints := e.collectHints(sentences, bySentence)

	// Every pair with any counted evidence is a candidate.
	pairs := make(map[pairKey]bool)
	for p := range cooccurrence {
		pairs[p] = true
	}
	for p := range proximity {
		pairs[p] = true
	}

	candidates := make([]models.RelationCandidate, 0, len(pairs))
	for pair := range pairs {
		co := cooccurrence[pair]
		prox := proximity[pair]

		weights := make(map[string]float64)
		sources := make(map[string]map[Source]bool)
		for _, h := range hints[pair] {
			weights[h.label] += h.weight
			if sources[h.label] == nil {
				sources[h.label] = make(map[Source]bool)
			}
			sources[h.label][h.source] = true
		}

		// Generic fallback so every sufficiently co-occurring pair
		// carries at least one label.
		if len(weights) == 0 && co >= e.cfg.FallbackCooccurrence {
			weights[LabelAcquaintances] = 0.25
			sources[LabelAcquaintances] = map[Source]bool{SourceCooccurrence: true}
		}

		labels := e.cfg.Conflict(weights)
		primary := e.selectPrimary(labels, weights)

		candidates = append(candidates, models.RelationCandidate{
			CharacterA:      pair.a,
			CharacterB:      pair.b,
			Cooccurrence:    co,
			Proximity:       prox,
			RelationTypes:   labels,
			PrimaryRelation: primary,
			Confidence:      e.confidence(primary, sources[primary], co),
			Strength:        strength(co, prox),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Strength != candidates[j].Strength {
			return candidates[i].Strength > candidates[j].Strength
		}
		if candidates[i].CharacterA != candidates[j].CharacterA {
			return candidates[i].CharacterA < candidates[j].CharacterA
		}
		return candidates[i].CharacterB < candidates[j].CharacterB
	})

	return candidates, nil
}

// indexMentions validates mention indices and builds the per-sentence
// sets and per-character sentence lists.
func indexMentions(sentences []string, mentions []Mention) ([][]string, map[string][]int, error) {
	seen := make([]map[string]bool, len(sentences))
	for i := range seen {
		seen[i] = make(map[string]bool)
	}

	for _, m := range mentions {
		if m.Sentence < 0 || m.Sentence >= len(sentences) {
			return nil, nil, fmt.Errorf("mention of %q: sentence index %d out of range [0,%d)",
				m.Character, m.Sentence, len(sentences))
		}
		if m.Character == "" {
			continue
		}
		seen[m.Sentence][m.Character] = true
	}

	bySentence := make([][]string, len(sentences))
	sentencesOf := make(map[string][]int)
	for i, set := range seen {
		chars := make([]string, 0, len(set))
		for c := range set {
			chars = append(chars, c)
		}
		sort.Strings(chars)
		bySentence[i] = chars
		for _, c := range chars {
			sentencesOf[c] = append(sentencesOf[c], i)
		}
	}

	return bySentence, sentencesOf, nil
}

// countCooccurrence increments a pair once per sentence containing both
// characters.
func (e *Extractor) countCooccurrence(bySentence [][]string) map[pairKey]int {
	counts := make(map[pairKey]int)
	for _, chars := range bySentence {
		for i := 0; i < len(chars); i++ {
			for j := i + 1; j < len(chars); j++ {
				counts[makePair(chars[i], chars[j])]++
			}
		}
	}
	return counts
}

// countProximity increments a pair for every mention pair in distinct
// sentences within the window. Same-sentence mentions are co-occurrence,
// not proximity.
func (e *Extractor) countProximity(sentencesOf map[string][]int) map[pairKey]int {
	chars := make([]string, 0, len(sentencesOf))
	for c := range sentencesOf {
		chars = append(chars, c)
	}
	sort.Strings(chars)

	counts := make(map[pairKey]int)
	for i := 0; i < len(chars); i++ {
		for j := i + 1; j < len(chars); j++ {
			pair := makePair(chars[i], chars[j])
			for _, si := range sentencesOf[chars[i]] {
				for _, sj := range sentencesOf[chars[j]] {
					d := si - sj
					if d < 0 {
						d = -d
					}
					if d > 0 && d <= e.cfg.Window {
						counts[pair]++
					}
				}
			}
		}
	}
	return counts
}

// collectHints scans sentence text for phrase rules and possessive
// constructions, attaching labels to pairs whose antecedents can be
// resolved.
func (e *Extractor) collectHints(sentences []string, bySentence [][]string) map[pairKey][]hint {
	hints := make(map[pairKey][]hint)

	pronounLabels := make(map[string]PronounRule, len(e.cfg.PronounRules))
	for _, pr := range e.cfg.PronounRules {
		pronounLabels[pr.Noun] = pr
	}

	for idx, sentence := range sentences {
		lower := strings.ToLower(sentence)

		for _, rule := range e.cfg.Rules {
			if !rule.Match(lower) {
				continue
			}
			pair, factor, ok := e.resolveAntecedents(bySentence, idx)
			if !ok {
				continue
			}
			hints[pair] = append(hints[pair], hint{
				label:  rule.Label,
				weight: rule.Weight * factor,
				source: SourcePattern,
			})
		}

		// Possessive inference needs a character mention in the same
		// sentence to act as the possessor.
		if len(bySentence[idx]) == 0 {
			continue
		}
		for _, match := range possessiveRegex.FindAllStringSubmatch(lower, -1) {
			pr, ok := pronounLabels[match[1]]
			if !ok {
				continue
			}
			pair, factor, ok := e.resolveAntecedents(bySentence, idx)
			if !ok {
				continue
			}
			hints[pair] = append(hints[pair], hint{
				label:  pr.Label,
				weight: pr.Weight * e.cfg.PronounFactor * factor,
				source: SourcePronoun,
			})
		}
	}

	return hints
}

// resolveAntecedents finds the character pair a hint in sentence idx
// refers to. Exactly two characters in the matching sentence bind at
// full weight; otherwise the same-plus-adjacent span is consulted at
// reduced weight. Anything else is ambiguous and produces no hint.
func (e *Extractor) resolveAntecedents(bySentence [][]string, idx int) (pairKey, float64, bool) {
	same := bySentence[idx]
	if len(same) == 2 {
		return makePair(same[0], same[1]), 1.0, true
	}

	span := make(map[string]bool)
	for _, c := range same {
		span[c] = true
	}
	if idx > 0 {
		for _, c := range bySentence[idx-1] {
			span[c] = true
		}
	}
	if idx+1 < len(bySentence) {
		for _, c := range bySentence[idx+1] {
			span[c] = true
		}
	}

	if len(span) != 2 {
		return pairKey{}, 0, false
	}
	chars := make([]string, 0, 2)
	for c := range span {
		chars = append(chars, c)
	}
	sort.Strings(chars)
	return makePair(chars[0], chars[1]), e.cfg.AdjacentFactor, true
}

// selectPrimary picks the label with the highest hint-weight sum. Ties
// break on family priority (family > romantic > antagonistic >
// professional > social), then lexicographically, never randomly.
func (e *Extractor) selectPrimary(labels []string, weights map[string]float64) string {
	primary := ""
	for _, label := range labels {
		if primary == "" {
			primary = label
			continue
		}
		switch {
		case weights[label] > weights[primary]:
			primary = label
		case weights[label] == weights[primary]:
			pl := familyPriority[LabelFamily(label)]
			pp := familyPriority[LabelFamily(primary)]
			if pl > pp || (pl == pp && label < primary) {
				primary = label
			}
		}
	}
	return primary
}

// confidence scores how certain the type classification is: a base
// term, one term per distinct agreeing signal source, and a bonus for
// explicit pattern evidence. A pair with no label has no classification
// to be certain about and scores zero.
func (e *Extractor) confidence(primary string, sources map[Source]bool, cooccurrence int) float64 {
	if primary == "" {
		return 0
	}

	agreeing := make(map[Source]bool, len(sources))
	for s := range sources {
		agreeing[s] = true
	}
	if cooccurrence >= e.cfg.StrongCooccurrence {
		agreeing[SourceCooccurrence] = true
	}

	score := 0.2 + 0.2*float64(len(agreeing))
	if agreeing[SourcePattern] {
		score += 0.2
	}
	return clamp01(score)
}

// strength measures evidence volume, saturating toward 1.0 as the
// counts grow.
func strength(cooccurrence, proximity int) float64 {
	return clamp01(1.0 - 1.0/(1.0+float64(cooccurrence)+0.1*float64(proximity)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
