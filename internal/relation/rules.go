package relation

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// Relation families, ordered by narrative salience. Family relations
// outrank romantic ones, which outrank antagonistic, professional, and
// social ones when breaking primary-label ties.
const (
	FamilyFamily       = "family"
	FamilyRomantic     = "romantic"
	FamilyAntagonistic = "antagonistic"
	FamilyProfessional = "professional"
	FamilySocial       = "social"
)

// LabelAcquaintances is the generic fallback label assigned to pairs
// with enough co-occurrence evidence but no explicit relation hint.
const LabelAcquaintances = "acquaintances"

// labelFamilies is the closed relation-type vocabulary. A rule with a
// label outside this table is rejected at load time.
var labelFamilies = map[string]string{
	"parent-child":       FamilyFamily,
	"siblings":           FamilyFamily,
	"spouse":             FamilyFamily,
	"married-couple":     FamilyFamily,
	"extended-family":    FamilyFamily,
	"lovers":             FamilyRomantic,
	"romantic-interest":  FamilyRomantic,
	"enemies":            FamilyAntagonistic,
	"rivals":             FamilyAntagonistic,
	"victim-perpetrator": FamilyAntagonistic,
	"opposing-sides":     FamilyAntagonistic,
	"employer-employee":  FamilyProfessional,
	"colleagues":         FamilyProfessional,
	"business-partners":  FamilyProfessional,
	"customer-merchant":  FamilyProfessional,
	"teacher-student":    FamilyProfessional,
	"master-servant":     FamilyProfessional,
	"close-friends":      FamilySocial,
	"companions":         FamilySocial,
	LabelAcquaintances:   FamilySocial,
	"neighbors":          FamilySocial,
}

var familyPriority = map[string]int{
	FamilyFamily:       5,
	FamilyRomantic:     4,
	FamilyAntagonistic: 3,
	FamilyProfessional: 2,
	FamilySocial:       1,
}

// KnownLabel reports whether label is part of the closed vocabulary.
func KnownLabel(label string) bool {
	_, ok := labelFamilies[label]
	return ok
}

// LabelFamily returns the relation family for a label, or "" when the
// label is unknown.
func LabelFamily(label string) string {
	return labelFamilies[label]
}

// Labels returns the closed vocabulary, sorted.
func Labels() []string {
	labels := make([]string, 0, len(labelFamilies))
	for l := range labelFamilies {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Rule maps a phrase pattern to a relation-type label with a hint
// weight. Rules are data, not code: the default table below can be
// replaced by an external YAML file so each rule is testable on its own.
type Rule struct {
	Pattern string  `yaml:"pattern"`
	Label   string  `yaml:"label"`
	Weight  float64 `yaml:"weight"`

	re *regexp.Regexp
}

// Compile validates the rule and compiles its pattern. A zero weight
// defaults to 1.0.
func (r *Rule) Compile() error {
	if !KnownLabel(r.Label) {
		return fmt.Errorf("unknown relation label %q", r.Label)
	}
	if r.Weight < 0 {
		return fmt.Errorf("rule %q: negative weight %v", r.Pattern, r.Weight)
	}
	if r.Weight == 0 {
		r.Weight = 1.0
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return fmt.Errorf("rule %q: %w", r.Pattern, err)
	}
	r.re = re
	return nil
}

// Match reports whether the rule's pattern occurs in the lowercased
// sentence text.
func (r *Rule) Match(sentenceLower string) bool {
	return r.re != nil && r.re.MatchString(sentenceLower)
}

// CompileRules compiles a rule list in place, failing on the first
// invalid rule.
func CompileRules(rules []Rule) ([]Rule, error) {
	for i := range rules {
		if err := rules[i].Compile(); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

// LoadRules reads a rule table from a YAML file: a list of
// {pattern, label, weight} entries.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}

	return CompileRules(rules)
}

// DefaultRules returns the built-in, already compiled phrase table.
func DefaultRules() []Rule {
	rules := []Rule{
		// family
		{Pattern: `\b(?:mother|father|parent|mom|dad|mama|papa)\s+(?:of|to)\b`, Label: "parent-child", Weight: 1.0},
		{Pattern: `\b(?:son|daughter|child)\s+of\b`, Label: "parent-child", Weight: 1.0},
		{Pattern: `\bgave birth to\b`, Label: "parent-child", Weight: 1.0},
		{Pattern: `\bborn to\b`, Label: "parent-child", Weight: 0.8},
		{Pattern: `\b(?:older|younger|twin)\s+(?:brother|sister)\b`, Label: "siblings", Weight: 1.0},
		{Pattern: `\bbrother of\b|\bsister of\b`, Label: "siblings", Weight: 1.0},
		{Pattern: `\bmarried to\b`, Label: "spouse", Weight: 1.0},
		{Pattern: `\bhis wife\b|\bher husband\b`, Label: "spouse", Weight: 1.0},
		{Pattern: `\bhusband and wife\b`, Label: "married-couple", Weight: 1.0},
		{Pattern: `\btheir marriage\b|\bmarried life\b|\bmarried couple\b`, Label: "married-couple", Weight: 0.9},
		{Pattern: `\bwedding\b|\bbride\b|\bgroom\b`, Label: "married-couple", Weight: 0.6},
		{Pattern: `\b(?:uncle|aunt|cousin|nephew|niece)\b`, Label: "extended-family", Weight: 0.8},
		{Pattern: `\bgrand(?:father|mother|son|daughter|child|parent)\b`, Label: "extended-family", Weight: 0.8},

		// romantic
		{Pattern: `\bin love with\b`, Label: "lovers", Weight: 1.0},
		{Pattern: `\b(?:he|she)\s+love[sd]\b|\bmy love\b`, Label: "lovers", Weight: 0.8},
		{Pattern: `\bsweetheart\b|\bbeloved\b|\bdarling\b`, Label: "lovers", Weight: 0.7},
		{Pattern: `\bfond of\b|\baffection for\b`, Label: "romantic-interest", Weight: 0.7},
		{Pattern: `\badore[sd]?\b|\bcherish(?:es|ed)?\b`, Label: "romantic-interest", Weight: 0.6},

		// antagonistic
		{Pattern: `\benemy of\b|\benemies\b|\bfoe\b|\badversary\b`, Label: "enemies", Weight: 1.0},
		{Pattern: `\bhate[sd]?\b`, Label: "enemies", Weight: 0.6},
		{Pattern: `\brival\b|\bcompet(?:ed|es|ition)\b`, Label: "rivals", Weight: 0.8},
		{Pattern: `\bvictim\b|\battacker\b|\bstalk(?:ed|er|ing)?\b`, Label: "victim-perpetrator", Weight: 1.0},
		{Pattern: `\bkilled\b|\bmurdered\b|\bharmed\b`, Label: "victim-perpetrator", Weight: 0.9},
		{Pattern: `\bfought\b|\bconfronted\b|\bagainst\b`, Label: "opposing-sides", Weight: 0.6},

		// professional
		{Pattern: `\bworks for\b|\bworked for\b|\bhired\b`, Label: "employer-employee", Weight: 1.0},
		{Pattern: `\bboss\b|\bemployer\b|\bemployee\b`, Label: "employer-employee", Weight: 0.7},
		{Pattern: `\bcolleague\b|\bcoworker\b|\bwork(?:ed)? together\b`, Label: "colleagues", Weight: 0.9},
		{Pattern: `\bbusiness partner\b|\bpartnership\b`, Label: "business-partners", Weight: 1.0},
		{Pattern: `\bbought from\b|\bsold (?:it |them )?to\b|\bpurchased from\b`, Label: "customer-merchant", Weight: 0.9},
		{Pattern: `\bmerchant\b|\bvendor\b`, Label: "customer-merchant", Weight: 0.5},
		{Pattern: `\btaught\b|\blearned from\b|\bmentor\b`, Label: "teacher-student", Weight: 0.9},
		{Pattern: `\bpupil\b|\bstudent of\b`, Label: "teacher-student", Weight: 0.8},
		{Pattern: `\bmaster\b|\bservant\b|\bserve[sd]\b`, Label: "master-servant", Weight: 0.7},

		// social
		{Pattern: `\bbest friend\b|\bclose friend\b|\bconfidant\b`, Label: "close-friends", Weight: 1.0},
		{Pattern: `\binseparable\b`, Label: "close-friends", Weight: 0.8},
		{Pattern: `\bcompanion\b|\bcomrade\b|\bally\b`, Label: "companions", Weight: 0.8},
		{Pattern: `\bacquaintance\b|\bknow each other\b`, Label: LabelAcquaintances, Weight: 0.8},
		{Pattern: `\bneighbor\b|\bnext door\b`, Label: "neighbors", Weight: 0.9},
	}

	compiled, err := CompileRules(rules)
	if err != nil {
		// The built-in table is covered by tests; a compile failure here
		// is a programming error.
		panic(err)
	}
	return compiled
}

// PronounRule maps a kinship or role noun in a possessive construction
// ("his brother", "her employer") to a relation label. Pronoun hints are
// weighted below explicit phrase hints.
type PronounRule struct {
	Noun   string  `yaml:"noun"`
	Label  string  `yaml:"label"`
	Weight float64 `yaml:"weight"`
}

// DefaultPronounRules returns the built-in possessive noun table.
func DefaultPronounRules() []PronounRule {
	return []PronounRule{
		{Noun: "wife", Label: "spouse", Weight: 1.0},
		{Noun: "husband", Label: "spouse", Weight: 1.0},
		{Noun: "mother", Label: "parent-child", Weight: 1.0},
		{Noun: "father", Label: "parent-child", Weight: 1.0},
		{Noun: "son", Label: "parent-child", Weight: 1.0},
		{Noun: "daughter", Label: "parent-child", Weight: 1.0},
		{Noun: "brother", Label: "siblings", Weight: 1.0},
		{Noun: "sister", Label: "siblings", Weight: 1.0},
		{Noun: "uncle", Label: "extended-family", Weight: 0.9},
		{Noun: "aunt", Label: "extended-family", Weight: 0.9},
		{Noun: "cousin", Label: "extended-family", Weight: 0.9},
		{Noun: "lover", Label: "lovers", Weight: 0.9},
		{Noun: "darling", Label: "lovers", Weight: 0.8},
		{Noun: "friend", Label: "close-friends", Weight: 0.8},
		{Noun: "companion", Label: "companions", Weight: 0.8},
		{Noun: "boss", Label: "employer-employee", Weight: 0.9},
		{Noun: "servant", Label: "master-servant", Weight: 0.9},
		{Noun: "teacher", Label: "teacher-student", Weight: 0.9},
		{Noun: "enemy", Label: "enemies", Weight: 0.9},
		{Noun: "rival", Label: "rivals", Weight: 0.9},
		{Noun: "neighbor", Label: "neighbors", Weight: 0.9},
	}
}
