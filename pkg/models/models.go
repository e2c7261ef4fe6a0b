package models

import (
	"time"
)

// Trait categories used by TraitRecord.Category.
const (
	CategoryPositive   = "positive"
	CategoryNegative   = "negative"
	CategoryEmotional  = "emotional"
	CategoryPhysical   = "physical"
	CategoryBehavioral = "behavioral"
	CategoryOther      = "other"
)

// Character represents a detected literary character with its canonical
// display name, known name variants, and where it is mentioned.
type Character struct {
	Name         string   `json:"name"`
	Aliases      []string `json:"aliases,omitempty"`
	Mentions     []int    `json:"mentions"` // sentence indices, ascending
	MentionCount int      `json:"mention_count"`
}

// TraitRecord represents one descriptive word associated with a character.
// Categories are not mutually exclusive across different trait words.
type TraitRecord struct {
	Character string `json:"character"`
	Trait     string `json:"trait"`
	Category  string `json:"category"`
	Count     int    `json:"count"`
}

// RelationCandidate represents a scored relationship between an unordered
// pair of characters. CharacterA sorts before CharacterB; at most one
// record exists per pair per document.
type RelationCandidate struct {
	CharacterA      string   `json:"character_a"`
	CharacterB      string   `json:"character_b"`
	Cooccurrence    int      `json:"co_occurrence_count"`
	Proximity       int      `json:"proximity_count"`
	RelationTypes   []string `json:"relation_types"`
	PrimaryRelation string   `json:"primary_relation,omitempty"`
	Confidence      float64  `json:"confidence"`
	Strength        float64  `json:"strength"`
}

// Analysis is the complete result of one pass over one document. All
// fields are derived, read-only outputs; characters carry no identity
// across documents.
type Analysis struct {
	ID            string              `json:"id"`
	Filename      string              `json:"filename"`
	ProcessedAt   time.Time           `json:"processed_at"`
	SentenceCount int                 `json:"sentence_count"`
	Characters    []Character         `json:"characters"`
	Traits        []TraitRecord       `json:"traits"`
	Relations     []RelationCandidate `json:"relations"`
}

// GraphNode represents a character in the relationship graph.
type GraphNode struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Mentions int     `json:"mentions"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// GraphEdge represents a relation in the relationship graph. Weight is
// the relation strength; Color encodes the confidence bucket.
type GraphEdge struct {
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	Relation   string   `json:"relation,omitempty"`
	Types      []string `json:"types,omitempty"`
	Weight     float64  `json:"weight"`
	Confidence float64  `json:"confidence"`
	Color      string   `json:"color"`
}

// Graph is the node/edge view of an analysis consumed by renderers.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
