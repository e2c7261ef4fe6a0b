package traits

import (
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/dmelnic/storylens/pkg/models"
)

const (
	// adjectiveWindow is the token radius around a name token searched
	// for descriptive adjectives.
	adjectiveWindow = 3

	// sentiment polarity beyond these bounds adds a context trait.
	positivePolarity = 0.3
	negativePolarity = -0.3
)

var copulaVerbs = map[string]bool{
	"is": true, "was": true, "seems": true, "seemed": true,
	"appeared": true, "looked": true, "felt": true,
}

// Extractor finds descriptive words associated with characters: nearby
// adjectives, copula constructions, and sentence-level sentiment
// context.
type Extractor struct{}

// NewExtractor creates a trait extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract produces aggregated trait records for every character, sorted
// by character, then descending count, then trait word.
func (e *Extractor) Extract(sentences []string, characters []models.Character) ([]models.TraitRecord, error) {
	type key struct {
		character string
		trait     string
	}
	counts := make(map[key]int)

	for _, c := range characters {
		nameTokens := make(map[string]bool)
		for _, part := range strings.Fields(strings.ToLower(c.Name)) {
			nameTokens[part] = true
		}
		for _, alias := range c.Aliases {
			for _, part := range strings.Fields(strings.ToLower(alias)) {
				nameTokens[part] = true
			}
		}

		for _, idx := range c.Mentions {
			if idx < 0 || idx >= len(sentences) {
				continue
			}
			sentence := sentences[idx]

			doc, err := prose.NewDocument(sentence,
				prose.WithSegmentation(false),
				prose.WithExtraction(false),
			)
			if err != nil {
				return nil, err
			}
			tokens := doc.Tokens()

			for _, trait := range windowAdjectives(tokens, nameTokens) {
				counts[key{c.Name, trait}]++
			}
			for _, trait := range copulaAdjectives(tokens, nameTokens) {
				counts[key{c.Name, trait}]++
			}

			polarity := SentencePolarity(sentence)
			if polarity > positivePolarity {
				counts[key{c.Name, "positive-context"}]++
			} else if polarity < negativePolarity {
				counts[key{c.Name, "negative-context"}]++
			}
		}
	}

	records := make([]models.TraitRecord, 0, len(counts))
	for k, count := range counts {
		records = append(records, models.TraitRecord{
			Character: k.character,
			Trait:     k.trait,
			Category:  categorize(k.trait),
			Count:     count,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Character != records[j].Character {
			return records[i].Character < records[j].Character
		}
		if records[i].Count != records[j].Count {
			return records[i].Count > records[j].Count
		}
		return records[i].Trait < records[j].Trait
	})

	return records, nil
}

// windowAdjectives collects descriptive words within adjectiveWindow
// tokens of any name token.
func windowAdjectives(tokens []prose.Token, nameTokens map[string]bool) []string {
	var traits []string
	for i, tok := range tokens {
		if !nameTokens[strings.ToLower(tok.Text)] {
			continue
		}
		start := i - adjectiveWindow
		if start < 0 {
			start = 0
		}
		end := i + adjectiveWindow + 1
		if end > len(tokens) {
			end = len(tokens)
		}
		for j := start; j < end; j++ {
			if j != i && isDescriptive(tokens[j]) {
				traits = append(traits, strings.ToLower(tokens[j].Text))
			}
		}
	}
	return traits
}

// copulaAdjectives matches "NAME is/was/seems ... ADJ" with the
// adjective directly after the verb or one token later ("was very
// tired").
func copulaAdjectives(tokens []prose.Token, nameTokens map[string]bool) []string {
	var traits []string
	for i := 0; i < len(tokens); i++ {
		if !nameTokens[strings.ToLower(tokens[i].Text)] {
			continue
		}
		if i+1 >= len(tokens) || !copulaVerbs[strings.ToLower(tokens[i+1].Text)] {
			continue
		}
		if i+2 < len(tokens) && isDescriptive(tokens[i+2]) {
			traits = append(traits, strings.ToLower(tokens[i+2].Text))
		} else if i+3 < len(tokens) && isDescriptive(tokens[i+3]) {
			traits = append(traits, strings.ToLower(tokens[i+3].Text))
		}
	}
	return traits
}

// isDescriptive reports whether a token reads as a descriptive word:
// tagged as an adjective, or listed in the trait keyword table. The
// tagger tends to label bare adjectives in appositives ("Della, brave
// and calm") as nouns, so known trait words count regardless of tag.
func isDescriptive(tok prose.Token) bool {
	if isAdjectiveTag(tok.Tag) {
		return true
	}
	_, known := traitCategories[strings.ToLower(tok.Text)]
	return known
}

func isAdjectiveTag(tag string) bool {
	return tag == "JJ" || tag == "JJR" || tag == "JJS"
}

// SentencePolarity scores sentence sentiment in [-1, 1] from the
// lexicon, honoring simple negation and intensifiers.
func SentencePolarity(sentence string) float64 {
	words := strings.Fields(strings.ToLower(strings.Map(stripPunct, sentence)))
	if len(words) == 0 {
		return 0
	}

	var total float64
	var scored int
	for i, w := range words {
		score, ok := sentimentLexicon[w]
		if !ok {
			continue
		}
		if i > 0 {
			if factor, ok := intensifiers[words[i-1]]; ok {
				score *= factor
			}
			if negators[words[i-1]] || (i > 1 && negators[words[i-2]]) {
				score = -score * 0.8
			}
		}
		total += score
		scored++
	}
	if scored == 0 {
		return 0
	}

	polarity := total / float64(scored)
	if polarity > 1 {
		polarity = 1
	}
	if polarity < -1 {
		polarity = -1
	}
	return polarity
}

func stripPunct(r rune) rune {
	switch r {
	case '.', ',', '!', '?', ';', ':', '"', '\'':
		return ' '
	}
	return r
}

// categorize maps a trait word (or synthetic context trait) to its
// category.
func categorize(trait string) string {
	switch trait {
	case "positive-context":
		return models.CategoryEmotional
	case "negative-context":
		return models.CategoryEmotional
	}
	return Classify(trait)
}
