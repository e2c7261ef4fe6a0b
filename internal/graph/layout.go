package graph

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/dmelnic/storylens/pkg/models"
)

const (
	layoutIterations = 60
	repulsion        = 0.08
	attraction       = 0.06
)

// Layout assigns 2D positions to graph nodes: a circular arrangement in
// node order refined by a fixed number of force iterations, then
// normalized to [-1, 1]. No randomness anywhere, so the same graph
// always lays out identically.
func Layout(g *models.Graph) {
	n := len(g.Nodes)
	if n == 0 {
		return
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range g.Nodes {
		angle := 2 * math.Pi * float64(i) / float64(n)
		xs[i] = math.Cos(angle)
		ys[i] = math.Sin(angle)
	}

	if n > 2 {
		index := make(map[string]int, n)
		for i, node := range g.Nodes {
			index[node.ID] = i
		}
		refine(xs, ys, g.Edges, index)
	}

	normalize(xs)
	normalize(ys)

	for i := range g.Nodes {
		g.Nodes[i].X = xs[i]
		g.Nodes[i].Y = ys[i]
	}
}

// refine runs a simple force simulation: uniform pairwise repulsion
// plus edge attraction scaled by relation strength.
func refine(xs, ys []float64, edges []models.GraphEdge, index map[string]int) {
	n := len(xs)
	dx := make([]float64, n)
	dy := make([]float64, n)

	for iter := 0; iter < layoutIterations; iter++ {
		for i := range dx {
			dx[i] = 0
			dy[i] = 0
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				vx := xs[i] - xs[j]
				vy := ys[i] - ys[j]
				distSq := vx*vx + vy*vy
				if distSq < 1e-6 {
					distSq = 1e-6
				}
				f := repulsion / distSq
				dx[i] += vx * f
				dy[i] += vy * f
				dx[j] -= vx * f
				dy[j] -= vy * f
			}
		}

		for _, e := range edges {
			i, iok := index[e.Source]
			j, jok := index[e.Target]
			if !iok || !jok {
				continue
			}
			vx := xs[j] - xs[i]
			vy := ys[j] - ys[i]
			f := attraction * (0.5 + e.Weight)
			dx[i] += vx * f
			dy[i] += vy * f
			dx[j] -= vx * f
			dy[j] -= vy * f
		}

		// Cooling keeps late iterations from oscillating.
		step := 1.0 - float64(iter)/float64(layoutIterations)
		floats.AddScaled(xs, step, dx)
		floats.AddScaled(ys, step, dy)
	}
}

// normalize scales one coordinate axis to [-1, 1].
func normalize(coords []float64) {
	if len(coords) == 0 {
		return
	}
	min := floats.Min(coords)
	max := floats.Max(coords)
	rng := max - min
	if rng == 0 {
		for i := range coords {
			coords[i] = 0
		}
		return
	}
	for i, v := range coords {
		coords[i] = 2*(v-min)/rng - 1
	}
}
