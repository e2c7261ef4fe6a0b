package textproc

import (
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "collapses whitespace",
			input:    "One  dollar   and\n\neighty-seven cents.",
			expected: "One dollar and eighty-seven cents.",
		},
		{
			name:     "squashes repeated punctuation",
			input:    "She cried!!! Then she stopped...",
			expected: "She cried! Then she stopped.",
		},
		{
			name:     "strips stray symbols",
			input:    "Della © counted « it » again.",
			expected: "Della counted it again.",
		},
		{
			name:     "stripped symbols leave no double spaces",
			input:    "Jim ★ and\n© Della.",
			expected: "Jim and Della.",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanText(tt.input)
			if got != tt.expected {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSegmentSentences(t *testing.T) {
	text := "Della finished her cry. She stood by the window and looked out dully. Jim was never late."

	sentences, err := SegmentSentences(text)
	if err != nil {
		t.Fatalf("SegmentSentences returned error: %v", err)
	}

	if len(sentences) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %v", len(sentences), sentences)
	}

	if !strings.HasPrefix(sentences[0], "Della") {
		t.Errorf("expected first sentence to start with Della, got %q", sentences[0])
	}
}

func TestSegmentSentencesEmptyDocument(t *testing.T) {
	sentences, err := SegmentSentences("")
	if err != nil {
		t.Fatalf("expected no error for empty document, got %v", err)
	}
	if len(sentences) != 0 {
		t.Errorf("expected empty sentence list, got %v", sentences)
	}
}

func TestSegmentSentencesDropsFragments(t *testing.T) {
	sentences, err := SegmentSentences("Yes. Della wept again over the gray fence of the gray backyard.")
	if err != nil {
		t.Fatalf("SegmentSentences returned error: %v", err)
	}

	for _, s := range sentences {
		if len(s) <= 10 {
			t.Errorf("fragment %q should have been dropped", s)
		}
	}
}
