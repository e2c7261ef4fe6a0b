package traits

import (
	"testing"

	"github.com/dmelnic/storylens/pkg/models"
)

func TestExtractWindowAdjective(t *testing.T) {
	sentences := []string{
		"Della, brave and calm, walked out into the cold street.",
	}
	characters := []models.Character{
		{Name: "Della", Mentions: []int{0}, MentionCount: 1},
	}

	records, err := NewExtractor().Extract(sentences, characters)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	// "brave" and "calm" sit in an appositive where the tagger reads
	// them as nouns; the keyword table must still surface them.
	if !hasTrait(records, "Della", "brave") {
		t.Errorf("expected trait 'brave' for Della, got %v", records)
	}
	if !hasTrait(records, "Della", "calm") {
		t.Errorf("expected trait 'calm' for Della, got %v", records)
	}
}

func TestExtractCopulaPattern(t *testing.T) {
	sentences := []string{
		"Everyone in the village agreed that at heart Jim was generous.",
	}
	characters := []models.Character{
		{Name: "Jim", Mentions: []int{0}, MentionCount: 1},
	}

	records, err := NewExtractor().Extract(sentences, characters)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if !hasTrait(records, "Jim", "generous") {
		t.Errorf("expected trait 'generous' for Jim, got %v", records)
	}

	for _, r := range records {
		if r.Trait == "generous" && r.Category != models.CategoryPositive {
			t.Errorf("expected 'generous' categorized positive, got %s", r.Category)
		}
	}
}

func TestExtractSentimentContext(t *testing.T) {
	sentences := []string{
		"Della wept and cried, miserable and wretched in the terrible cold.",
	}
	characters := []models.Character{
		{Name: "Della", Mentions: []int{0}, MentionCount: 1},
	}

	records, err := NewExtractor().Extract(sentences, characters)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if !hasTrait(records, "Della", "negative-context") {
		t.Errorf("expected negative-context trait, got %v", records)
	}
}

func TestExtractAggregatesCounts(t *testing.T) {
	sentences := []string{
		"The gentle Marta fed the birds at dawn.",
		"The gentle Marta watched over the children.",
	}
	characters := []models.Character{
		{Name: "Marta", Mentions: []int{0, 1}, MentionCount: 2},
	}

	records, err := NewExtractor().Extract(sentences, characters)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	for _, r := range records {
		if r.Trait == "gentle" && r.Count != 2 {
			t.Errorf("expected count 2 for 'gentle', got %d", r.Count)
		}
	}
}

func TestExtractNoCharacters(t *testing.T) {
	records, err := NewExtractor().Extract([]string{"The sun rose over the hills."}, nil)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %v", records)
	}
}

func TestSentencePolarity(t *testing.T) {
	tests := []struct {
		sentence string
		positive bool
		negative bool
	}{
		{"She loved the wonderful beautiful morning.", true, false},
		{"He hated the terrible awful night.", false, true},
		{"The table stood in the corner.", false, false},
		{"She was not happy about it.", false, true},
	}

	for _, tt := range tests {
		p := SentencePolarity(tt.sentence)
		if tt.positive && p <= positivePolarity {
			t.Errorf("expected positive polarity for %q, got %v", tt.sentence, p)
		}
		if tt.negative && p >= negativePolarity {
			t.Errorf("expected negative polarity for %q, got %v", tt.sentence, p)
		}
		if !tt.positive && !tt.negative && (p > positivePolarity || p < negativePolarity) {
			t.Errorf("expected neutral polarity for %q, got %v", tt.sentence, p)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		word     string
		category string
	}{
		{"kind", models.CategoryPositive},
		{"cruel", models.CategoryNegative},
		{"sad", models.CategoryEmotional},
		{"reckless", models.CategoryBehavioral},
		{"tall", models.CategoryPhysical},
		{"quizzical", models.CategoryOther},
	}

	for _, tt := range tests {
		if got := Classify(tt.word); got != tt.category {
			t.Errorf("Classify(%q) = %q, want %q", tt.word, got, tt.category)
		}
	}
}

func hasTrait(records []models.TraitRecord, character, trait string) bool {
	for _, r := range records {
		if r.Character == character && r.Trait == trait {
			return true
		}
	}
	return false
}
