package textproc

import (
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
)

const minSentenceLength = 10

var (
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	strayCharsRegex   = regexp.MustCompile(`[^\w\s.,!?;:'"-]`)
	repeatedTermRegex = regexp.MustCompile(`([.!?]){2,}`)
)

// CleanText normalizes raw story text before segmentation: strips stray
// symbols, collapses whitespace, and squashes repeated terminal
// punctuation. Symbols are stripped before whitespace collapses so a
// removed symbol never leaves a double space behind.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strayCharsRegex.ReplaceAllString(text, "")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	text = repeatedTermRegex.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// SegmentSentences splits cleaned text into an ordered list of sentences.
// Fragments of 10 characters or fewer are dropped. An empty document
// yields an empty list, not an error.
func SegmentSentences(text string) ([]string, error) {
	text = CleanText(text)
	if text == "" {
		return []string{}, nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, err
	}

	sentences := make([]string, 0, len(doc.Sentences()))
	for _, sent := range doc.Sentences() {
		s := strings.TrimSpace(sent.Text)
		if len(s) > minSentenceLength {
			sentences = append(sentences, s)
		}
	}

	return sentences, nil
}
