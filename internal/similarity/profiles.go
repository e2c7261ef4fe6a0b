package similarity

import (
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/dmelnic/storylens/pkg/models"
)

// ProfileDim is the fixed dimensionality of character profile vectors.
const ProfileDim = 256

// ProfileVector builds a deterministic context profile for a character:
// a hashed bag of the words in the sentences where the character is
// mentioned. Characters that appear in similar narrative contexts get
// similar vectors, which makes cross-analysis character comparison
// possible without a remote embedding service.
func ProfileVector(character models.Character, sentences []string) []float64 {
	vec := make([]float64, ProfileDim)

	skip := make(map[string]bool)
	for _, part := range strings.Fields(strings.ToLower(character.Name)) {
		skip[part] = true
	}
	for _, alias := range character.Aliases {
		for _, part := range strings.Fields(strings.ToLower(alias)) {
			skip[part] = true
		}
	}

	for _, idx := range character.Mentions {
		if idx < 0 || idx >= len(sentences) {
			continue
		}
		for _, word := range tokenizeWords(sentences[idx]) {
			if skip[word] || len(word) < 3 {
				continue
			}
			vec[hashWord(word)%ProfileDim]++
		}
	}

	return vec
}

func tokenizeWords(sentence string) []string {
	return strings.FieldsFunc(strings.ToLower(sentence), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func hashWord(word string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(word))
	return h.Sum32()
}
