package graph

import (
	"fmt"
	"math"
	"strings"

	"github.com/dmelnic/storylens/pkg/models"
)

const (
	svgSize    = 800.0
	svgPadding = 80.0
)

// DOT renders the graph in Graphviz DOT format. Edge pen width encodes
// strength, edge color encodes the confidence bucket.
func DOT(g models.Graph) string {
	var b strings.Builder
	b.WriteString("graph relations {\n")
	b.WriteString("  layout=neato;\n")
	b.WriteString("  node [shape=ellipse, style=filled, fillcolor=\"#ecf0f1\"];\n")

	for _, node := range g.Nodes {
		fmt.Fprintf(&b, "  %s [label=\"%s\\n%d mentions\"];\n",
			dotID(node.ID), escapeLabel(node.Label), node.Mentions)
	}
	for _, edge := range g.Edges {
		label := edge.Relation
		fmt.Fprintf(&b, "  %s -- %s [label=\"%s\", penwidth=%.2f, color=\"%s\"];\n",
			dotID(edge.Source), dotID(edge.Target),
			escapeLabel(label), 1.0+3.0*edge.Weight, edge.Color)
	}

	b.WriteString("}\n")
	return b.String()
}

// SVG renders the graph as a standalone SVG document using the node
// positions computed by Layout.
func SVG(g models.Graph) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`+"\n",
		svgSize, svgSize, svgSize, svgSize)
	fmt.Fprintf(&b, `<rect width="%.0f" height="%.0f" fill="#ffffff"/>`+"\n", svgSize, svgSize)

	position := make(map[string][2]float64, len(g.Nodes))
	for _, node := range g.Nodes {
		position[node.ID] = [2]float64{toPixel(node.X), toPixel(node.Y)}
	}

	for _, edge := range g.Edges {
		src, sok := position[edge.Source]
		dst, dok := position[edge.Target]
		if !sok || !dok {
			continue
		}
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.2f"/>`+"\n",
			src[0], src[1], dst[0], dst[1], edge.Color, 1.0+3.0*edge.Weight)
		if edge.Relation != "" {
			fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="11" fill="#7f8c8d" text-anchor="middle">%s</text>`+"\n",
				(src[0]+dst[0])/2, (src[1]+dst[1])/2-4, escapeXML(edge.Relation))
		}
	}

	for _, node := range g.Nodes {
		p := position[node.ID]
		r := 8.0 + 2.0*math.Sqrt(float64(node.Mentions))
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="#3498db" stroke="#2c3e50"/>`+"\n",
			p[0], p[1], r)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="13" fill="#2c3e50" text-anchor="middle">%s</text>`+"\n",
			p[0], p[1]-r-6, escapeXML(node.Label))
	}

	b.WriteString("</svg>\n")
	return b.String()
}

// toPixel maps a [-1, 1] layout coordinate into the padded canvas.
func toPixel(v float64) float64 {
	return svgPadding + (v+1)/2*(svgSize-2*svgPadding)
}

// dotID quotes a character name as a safe DOT identifier.
func dotID(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func escapeXML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}
