package relation

import (
	"reflect"
	"testing"

	"github.com/dmelnic/storylens/pkg/models"
)

// neutralSentences builds n sentences free of any rule vocabulary.
func neutralSentences(n int) []string {
	sentences := make([]string, n)
	for i := range sentences {
		sentences[i] = "The morning passed quietly in the small town."
	}
	return sentences
}

func extract(t *testing.T, cfg Config, sentences []string, mentions []Mention) []models.RelationCandidate {
	t.Helper()
	candidates, err := NewExtractor(cfg).Extract(sentences, mentions)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	return candidates
}

func TestEmptyDocument(t *testing.T) {
	candidates := extract(t, DefaultConfig(), []string{}, nil)
	if len(candidates) != 0 {
		t.Errorf("expected empty result for empty document, got %v", candidates)
	}
}

func TestMalformedSentenceIndex(t *testing.T) {
	_, err := NewExtractor(DefaultConfig()).Extract(
		[]string{"A quiet evening settled over the town."},
		[]Mention{{Character: "Anna", Sentence: 5}},
	)
	if err == nil {
		t.Fatal("expected error for out-of-range sentence index")
	}

	_, err = NewExtractor(DefaultConfig()).Extract(
		[]string{"A quiet evening settled over the town."},
		[]Mention{{Character: "Anna", Sentence: -1}},
	)
	if err == nil {
		t.Fatal("expected error for negative sentence index")
	}
}

func TestCooccurrenceCounting(t *testing.T) {
	sentences := neutralSentences(3)
	mentions := []Mention{
		{"Anna", 0}, {"Boris", 0},
		{"Anna", 1}, {"Boris", 1},
		{"Anna", 2},
	}

	candidates := extract(t, DefaultConfig(), sentences, mentions)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Cooccurrence != 2 {
		t.Errorf("expected co-occurrence 2, got %d", candidates[0].Cooccurrence)
	}
}

func TestCooccurrenceBoundedByMentionCounts(t *testing.T) {
	sentences := neutralSentences(6)
	mentions := []Mention{
		{"Anna", 0}, {"Boris", 0},
		{"Anna", 1}, {"Boris", 1},
		{"Anna", 2}, {"Boris", 3},
		{"Anna", 4}, {"Boris", 5},
	}

	mentionCount := map[string]int{}
	for _, m := range mentions {
		mentionCount[m.Character]++
	}

	for _, c := range extract(t, DefaultConfig(), sentences, mentions) {
		min := mentionCount[c.CharacterA]
		if mentionCount[c.CharacterB] < min {
			min = mentionCount[c.CharacterB]
		}
		if c.Cooccurrence > min {
			t.Errorf("co-occurrence %d exceeds min mention count %d for %s/%s",
				c.Cooccurrence, min, c.CharacterA, c.CharacterB)
		}
	}
}

func TestPairUniquenessAndOrdering(t *testing.T) {
	sentences := neutralSentences(4)
	mentions := []Mention{
		{"Clara", 0}, {"Ben", 0},
		{"Ben", 1}, {"Clara", 1},
		{"Dora", 2}, {"Ben", 2},
	}

	candidates := extract(t, DefaultConfig(), sentences, mentions)

	seen := make(map[string]bool)
	for _, c := range candidates {
		if c.CharacterA >= c.CharacterB {
			t.Errorf("pair not ordered: %q >= %q", c.CharacterA, c.CharacterB)
		}
		key := c.CharacterA + "|" + c.CharacterB
		if seen[key] {
			t.Errorf("pair %s emitted twice", key)
		}
		seen[key] = true
	}
}

func TestMinimumEvidenceThreshold(t *testing.T) {
	// Two characters far apart, never within the window: no evidence.
	sentences := neutralSentences(20)
	mentions := []Mention{
		{"Anna", 0},
		{"Boris", 19},
	}

	candidates := extract(t, DefaultConfig(), sentences, mentions)
	if len(candidates) != 0 {
		t.Errorf("pair with zero co-occurrence and zero proximity must not be emitted, got %v", candidates)
	}
}

func TestScoresClamped(t *testing.T) {
	sentences := []string{
		"Jim kissed Della, his wife, and they laughed together.",
		"Della and Jim sat down to supper side by side.",
		"Jim loved Della more than anything he owned.",
		"Della held Jim close as the evening settled.",
	}
	mentions := []Mention{
		{"Jim", 0}, {"Della", 0},
		{"Jim", 1}, {"Della", 1},
		{"Jim", 2}, {"Della", 2},
		{"Jim", 3}, {"Della", 3},
	}

	for _, c := range extract(t, DefaultConfig(), sentences, mentions) {
		if c.Confidence < 0 || c.Confidence > 1 {
			t.Errorf("confidence %v outside [0,1]", c.Confidence)
		}
		if c.Strength < 0 || c.Strength > 1 {
			t.Errorf("strength %v outside [0,1]", c.Strength)
		}
	}
}

func TestDeterminism(t *testing.T) {
	sentences := []string{
		"Della sold her hair to buy Jim a present.",
		"Jim worked late and thought of Della, his wife.",
		"Sofronie weighed the hair with a practised hand.",
		"Della counted the coins while Sofronie watched.",
		"Jim came home and found Della waiting.",
	}
	mentions := []Mention{
		{"Della", 0}, {"Jim", 0},
		{"Jim", 1}, {"Della", 1},
		{"Sofronie", 2},
		{"Della", 3}, {"Sofronie", 3},
		{"Jim", 4}, {"Della", 4},
	}

	first := extract(t, DefaultConfig(), sentences, mentions)
	second := extract(t, DefaultConfig(), sentences, mentions)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

// Scenario 1: one shared sentence containing "his wife" must classify as
// a family/romantic relation with higher confidence than a pair with
// bare co-occurrence.
func TestPatternHintOutweighsBareCooccurrence(t *testing.T) {
	withHint := extract(t, DefaultConfig(),
		[]string{"Jim looked at Della, his wife, and smiled slowly."},
		[]Mention{{"Jim", 0}, {"Della", 0}},
	)
	if len(withHint) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(withHint))
	}

	family := LabelFamily(withHint[0].PrimaryRelation)
	if family != FamilyFamily && family != FamilyRomantic {
		t.Errorf("expected family or romantic primary relation, got %q (%s)",
			withHint[0].PrimaryRelation, family)
	}

	bare := extract(t, DefaultConfig(),
		[]string{"Anna met Boris at the market before noon."},
		[]Mention{{"Anna", 0}, {"Boris", 0}},
	)
	if len(bare) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(bare))
	}

	if withHint[0].Confidence <= bare[0].Confidence {
		t.Errorf("pattern-hinted confidence %v not greater than bare co-occurrence confidence %v",
			withHint[0].Confidence, bare[0].Confidence)
	}
}

// Scenario 2: heavy co-occurrence with no hints saturates strength and
// falls back to the generic label.
func TestHighCooccurrenceFallback(t *testing.T) {
	// Nine shared sentences spaced beyond the window so proximity stays
	// zero.
	sentences := neutralSentences(33)
	var mentions []Mention
	for i := 0; i < 33; i += 4 {
		mentions = append(mentions, Mention{"Hale", i}, Mention{"Verden", i})
	}

	candidates := extract(t, DefaultConfig(), sentences, mentions)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}

	c := candidates[0]
	if c.Cooccurrence != 9 {
		t.Fatalf("expected co-occurrence 9, got %d", c.Cooccurrence)
	}
	if c.Proximity != 0 {
		t.Fatalf("expected proximity 0, got %d", c.Proximity)
	}
	if c.Strength < 0.9 {
		t.Errorf("expected strength >= 0.9, got %v", c.Strength)
	}
	if c.PrimaryRelation != LabelAcquaintances {
		t.Errorf("expected fallback label %q, got %q", LabelAcquaintances, c.PrimaryRelation)
	}
}

// Scenario 3: proximity alone satisfies minimum evidence, but carries
// less strength than the same volume of co-occurrence.
func TestProximityOnlyPair(t *testing.T) {
	sentences := neutralSentences(42)
	var proximityMentions []Mention
	for i := 0; i < 50; i += 10 {
		proximityMentions = append(proximityMentions,
			Mention{"Anna", i}, Mention{"Boris", i + 1})
	}

	proxOnly := extract(t, DefaultConfig(), sentences, proximityMentions)
	if len(proxOnly) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(proxOnly))
	}
	if proxOnly[0].Cooccurrence != 0 || proxOnly[0].Proximity != 5 {
		t.Fatalf("expected co=0 prox=5, got co=%d prox=%d",
			proxOnly[0].Cooccurrence, proxOnly[0].Proximity)
	}

	var cooccMentions []Mention
	for i := 0; i < 50; i += 10 {
		cooccMentions = append(cooccMentions,
			Mention{"Anna", i}, Mention{"Boris", i})
	}
	coOnly := extract(t, DefaultConfig(), sentences, cooccMentions)
	if len(coOnly) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(coOnly))
	}

	if proxOnly[0].Strength >= coOnly[0].Strength {
		t.Errorf("proximity-only strength %v should be below co-occurrence-only strength %v",
			proxOnly[0].Strength, coOnly[0].Strength)
	}
}

func TestUnlabeledPairHasZeroConfidence(t *testing.T) {
	// One shared sentence, no relation vocabulary: below the fallback
	// threshold the pair stays unlabeled and its type confidence is zero.
	candidates := extract(t, DefaultConfig(),
		[]string{"Anna passed Boris on the stairs at dusk."},
		[]Mention{{"Anna", 0}, {"Boris", 0}},
	)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}

	c := candidates[0]
	if len(c.RelationTypes) != 0 || c.PrimaryRelation != "" {
		t.Fatalf("expected unlabeled pair, got %v primary %q", c.RelationTypes, c.PrimaryRelation)
	}
	if c.Confidence != 0 {
		t.Errorf("expected zero confidence for unlabeled pair, got %v", c.Confidence)
	}
	if c.Strength == 0 {
		t.Errorf("strength must still reflect the co-occurrence evidence, got 0")
	}
}

func TestPossessivePronounHint(t *testing.T) {
	sentences := []string{
		"Martin walked in from the cold evening air.",
		"Greta poured the tea while her brother stamped the snow off.",
	}
	mentions := []Mention{
		{"Martin", 0},
		{"Greta", 1},
	}

	candidates := extract(t, DefaultConfig(), sentences, mentions)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}

	found := false
	for _, label := range candidates[0].RelationTypes {
		if label == "siblings" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected siblings label from possessive inference, got %v",
			candidates[0].RelationTypes)
	}
}

func TestPronounHintWeighsBelowPatternHint(t *testing.T) {
	cfg := DefaultConfig()
	e := NewExtractor(cfg)

	// Same sentence carries an explicit "married to" pattern and a
	// possessive "her brother" construction: the pattern label must win
	// the primary slot.
	sentences := []string{
		"Ilsa was married to Victor, though her brother never approved.",
	}
	mentions := []Mention{{"Ilsa", 0}, {"Victor", 0}}

	candidates, err := e.Extract(sentences, mentions)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].PrimaryRelation != "spouse" {
		t.Errorf("expected spouse primary, got %q (types %v)",
			candidates[0].PrimaryRelation, candidates[0].RelationTypes)
	}
}

func TestAmbiguousAntecedentsProduceNoHint(t *testing.T) {
	// Three characters in the matching sentence: the pattern cannot be
	// bound to a single pair.
	sentences := []string{
		"Anna, Boris and Clara knew the man was married to someone in the room.",
	}
	mentions := []Mention{{"Anna", 0}, {"Boris", 0}, {"Clara", 0}}

	for _, c := range extract(t, DefaultConfig(), sentences, mentions) {
		for _, label := range c.RelationTypes {
			if label == "spouse" {
				t.Errorf("ambiguous pattern bound to pair %s/%s", c.CharacterA, c.CharacterB)
			}
		}
	}
}

func TestConflictPolicyHook(t *testing.T) {
	// A sentence producing both a family and a professional hint.
	sentences := []string{
		"Rolf worked for Sten, and Sten was married to no one but his work.",
	}
	mentions := []Mention{{"Rolf", 0}, {"Sten", 0}}

	keepAll := extract(t, DefaultConfig(), sentences, mentions)
	if len(keepAll) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(keepAll))
	}
	if len(keepAll[0].RelationTypes) < 2 {
		t.Fatalf("expected multiple labels with KeepAllLabels, got %v", keepAll[0].RelationTypes)
	}

	cfg := DefaultConfig()
	cfg.Conflict = MutuallyExclusiveFamilies
	exclusive := extract(t, cfg, sentences, mentions)
	if len(exclusive) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(exclusive))
	}

	perFamily := make(map[string]int)
	for _, label := range exclusive[0].RelationTypes {
		perFamily[LabelFamily(label)]++
	}
	for family, n := range perFamily {
		if n > 1 {
			t.Errorf("family %s has %d labels under MutuallyExclusiveFamilies", family, n)
		}
	}
}

func TestPrimaryTieBreaksOnFamilyPriority(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	weights := map[string]float64{
		"close-friends": 1.0, // social
		"siblings":      1.0, // family
	}
	labels := KeepAllLabels(weights)

	if primary := e.selectPrimary(labels, weights); primary != "siblings" {
		t.Errorf("expected family label to win the tie, got %q", primary)
	}
}

func TestMentionsFromSets(t *testing.T) {
	mentions := MentionsFromSets([][]string{
		{"Anna", "Boris"},
		{},
		{"Anna"},
	})

	want := []Mention{
		{"Anna", 0}, {"Boris", 0},
		{"Anna", 2},
	}
	if !reflect.DeepEqual(mentions, want) {
		t.Errorf("MentionsFromSets = %v, want %v", mentions, want)
	}
}

func TestStrengthFormula(t *testing.T) {
	tests := []struct {
		co, prox int
		want     float64
	}{
		{0, 0, 0},
		{1, 0, 0.5},
		{9, 0, 0.9},
		{0, 5, 1.0 - 1.0/1.5},
	}

	for _, tt := range tests {
		got := strength(tt.co, tt.prox)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("strength(%d, %d) = %v, want %v", tt.co, tt.prox, got, tt.want)
		}
	}
}
