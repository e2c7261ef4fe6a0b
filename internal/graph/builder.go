package graph

import (
	"sort"

	"github.com/dmelnic/storylens/pkg/models"
)

// Confidence buckets map to edge colors in rendered output.
const (
	colorLowConfidence    = "#95a5a6"
	colorMediumConfidence = "#3498db"
	colorHighConfidence   = "#2ecc71"
)

// Build converts an analysis into a renderable relationship graph.
// Only characters that participate in at least one relation become
// nodes. Node positions are computed by Layout.
func Build(analysis *models.Analysis) models.Graph {
	g := models.Graph{
		Nodes: []models.GraphNode{},
		Edges: []models.GraphEdge{},
	}
	if analysis == nil || len(analysis.Relations) == 0 {
		return g
	}

	mentioned := make(map[string]bool)
	for _, rel := range analysis.Relations {
		mentioned[rel.CharacterA] = true
		mentioned[rel.CharacterB] = true
	}

	counts := make(map[string]int)
	for _, c := range analysis.Characters {
		counts[c.Name] = c.MentionCount
	}

	names := make([]string, 0, len(mentioned))
	for name := range mentioned {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		g.Nodes = append(g.Nodes, models.GraphNode{
			ID:       name,
			Label:    name,
			Mentions: counts[name],
		})
	}

	for _, rel := range analysis.Relations {
		g.Edges = append(g.Edges, models.GraphEdge{
			Source:     rel.CharacterA,
			Target:     rel.CharacterB,
			Relation:   rel.PrimaryRelation,
			Types:      rel.RelationTypes,
			Weight:     rel.Strength,
			Confidence: rel.Confidence,
			Color:      confidenceColor(rel.Confidence),
		})
	}

	Layout(&g)
	return g
}

func confidenceColor(confidence float64) string {
	switch {
	case confidence >= 0.7:
		return colorHighConfidence
	case confidence >= 0.4:
		return colorMediumConfidence
	default:
		return colorLowConfidence
	}
}
