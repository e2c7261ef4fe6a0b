package traits

import "github.com/dmelnic/storylens/pkg/models"

// traitCategories maps known descriptive words to trait categories.
// Words outside the table fall into the "other" category.
var traitCategories = map[string]string{}

func init() {
	register := func(category string, words ...string) {
		for _, w := range words {
			traitCategories[w] = category
		}
	}

	register(models.CategoryPositive,
		"kind", "brave", "honest", "loyal", "generous", "wise",
		"gentle", "patient", "loving", "caring", "compassionate",
		"noble", "heroic", "virtuous", "faithful", "trustworthy")

	register(models.CategoryNegative,
		"cruel", "evil", "dishonest", "selfish", "greedy", "foolish",
		"harsh", "impatient", "hateful", "wicked", "mean", "brutal",
		"villainous", "treacherous", "malicious", "suspicious")

	register(models.CategoryEmotional,
		"sad", "happy", "angry", "fearful", "anxious", "nervous",
		"excited", "depressed", "joyful", "melancholy", "passionate")

	register(models.CategoryBehavioral,
		"aggressive", "passive", "cautious", "reckless", "calm",
		"violent", "peaceful", "active", "lazy", "diligent")

	register(models.CategoryPhysical,
		"tall", "short", "thin", "slender", "beautiful", "handsome",
		"pale", "old", "young", "strong", "weak", "frail", "ragged")
}

// Classify returns the trait category for a word.
func Classify(word string) string {
	if category, ok := traitCategories[word]; ok {
		return category
	}
	return models.CategoryOther
}

// sentimentLexicon scores sentiment-bearing words in [-1, 1].
var sentimentLexicon = map[string]float64{
	"love": 0.8, "loved": 0.8, "loves": 0.8, "adore": 0.8,
	"wonderful": 0.9, "beautiful": 0.7, "great": 0.7, "good": 0.6,
	"happy": 0.7, "joy": 0.8, "precious": 0.6, "fine": 0.4,
	"nice": 0.5, "sweet": 0.5, "dear": 0.4, "smile": 0.4,
	"smiled": 0.4, "laughed": 0.5, "proud": 0.5, "best": 0.8,

	"hate": -0.8, "hated": -0.8, "terrible": -0.9, "awful": -0.8,
	"bad": -0.6, "sad": -0.6, "cried": -0.5, "cry": -0.5,
	"wept": -0.6, "fear": -0.6, "afraid": -0.6, "angry": -0.7,
	"dead": -0.7, "died": -0.7, "killed": -0.9, "poor": -0.4,
	"miserable": -0.8, "wretched": -0.7, "worst": -0.8, "pain": -0.6,
}

var negators = map[string]bool{
	"not": true, "never": true, "no": true, "nothing": true,
	"hardly": true, "neither": true, "nor": true,
}

var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "absolutely": 1.5, "so": 1.2,
	"truly": 1.3, "extremely": 1.5, "quite": 1.1,
}
