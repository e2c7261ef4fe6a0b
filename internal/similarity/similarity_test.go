package similarity

import (
	"math"
	"reflect"
	"testing"

	"github.com/dmelnic/storylens/pkg/models"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0.0},
		{"length mismatch", []float64{1}, []float64{1, 2}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindSimilarPairs(t *testing.T) {
	profiles := [][]float64{
		{1, 0, 0},
		{0.99, 0.01, 0},
		{0, 1, 0},
	}

	pairs := FindSimilarPairs(profiles, 0.9)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair above threshold, got %d", len(pairs))
	}
	if pairs[0].Idx1 != 0 || pairs[0].Idx2 != 1 {
		t.Errorf("expected pair (0,1), got (%d,%d)", pairs[0].Idx1, pairs[0].Idx2)
	}
}

func TestFindSimilarPairsEmpty(t *testing.T) {
	if pairs := FindSimilarPairs(nil, 0.5); len(pairs) != 0 {
		t.Errorf("expected no pairs, got %v", pairs)
	}
}

func TestProfileVectorDeterministic(t *testing.T) {
	sentences := []string{
		"Della sold her hair for twenty dollars.",
		"The combs lay in the window of a Broadway shop.",
	}
	character := models.Character{Name: "Della", Mentions: []int{0}}

	first := ProfileVector(character, sentences)
	second := ProfileVector(character, sentences)

	if !reflect.DeepEqual(first, second) {
		t.Error("profile vectors not deterministic")
	}
	if len(first) != ProfileDim {
		t.Errorf("expected dimension %d, got %d", ProfileDim, len(first))
	}
}

func TestProfileVectorSkipsOwnName(t *testing.T) {
	sentences := []string{"Della Della Della waited."}
	character := models.Character{Name: "Della", Mentions: []int{0}}

	vec := ProfileVector(character, sentences)

	total := 0.0
	for _, v := range vec {
		total += v
	}
	// Only "waited" should contribute.
	if total != 1 {
		t.Errorf("expected a single counted word, got total %v", total)
	}
}

func TestProfileVectorSharedContext(t *testing.T) {
	sentences := []string{
		"The detective followed the suspect through the foggy harbor streets.",
		"The detective followed the suspect through the foggy harbor streets.",
		"A baker kneaded bread in the warm kitchen before sunrise.",
	}

	a := ProfileVector(models.Character{Name: "Holt", Mentions: []int{0}}, sentences)
	b := ProfileVector(models.Character{Name: "Reyes", Mentions: []int{1}}, sentences)
	c := ProfileVector(models.Character{Name: "Muller", Mentions: []int{2}}, sentences)

	if sim := CosineSimilarity(a, b); sim < 0.99 {
		t.Errorf("expected near-identical context profiles, got %v", sim)
	}
	if sim := CosineSimilarity(a, c); sim > 0.5 {
		t.Errorf("expected dissimilar context profiles, got %v", sim)
	}
}
