// Package navgraph builds the walkable-node graph for a level and searches it.
// A graph is read-only once built and may be shared by every agent.
package navgraph

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
	"github.com/jobendik/laser-sub002/internal/world"
)

// DefaultCellSize is the grid spacing used when a level has no nav data.
const DefaultCellSize = 1.0

// Key is a quantized grid coordinate.
type Key struct {
	X, Y int
}

// Node is one walkable point of the graph.
type Node struct {
	Key       Key
	Position  mgl64.Vec3
	Neighbors []Key
}

// Bounds is an axis-aligned level extent on the ground plane.
type Bounds struct {
	Min, Max mgl64.Vec3
}

// Graph is the walkability graph of a level.
type Graph struct {
	cellSize float64
	origin   mgl64.Vec3
	nodes    map[Key]*Node
	order    []Key // insertion order, keeps iteration deterministic
}

// New returns an empty graph whose keys quantize world positions on a grid of
// the given cell size anchored at origin.
func New(cellSize float64, origin mgl64.Vec3) *Graph {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Graph{
		cellSize: cellSize,
		origin:   origin,
		nodes:    make(map[Key]*Node),
	}
}

// gridDirs lists the 8 grid neighbours in a fixed order.
var gridDirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// BuildGrid synthesizes a uniform grid over bounds, keeping only cells whose
// centre is walkable and linking each to its walkable 8-neighbours.
func BuildGrid(b Bounds, cellSize float64, walk world.Walkability) *Graph {
	g := New(cellSize, b.Min)
	cols := int(math.Floor((b.Max[0] - b.Min[0]) / g.cellSize))
	rows := int(math.Floor((b.Max[1] - b.Min[1]) / g.cellSize))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			k := Key{x, y}
			p := g.CellCenter(k)
			if walk != nil && !walk.IsWalkable(p) {
				continue
			}
			g.AddNode(k, p)
		}
	}
	for _, k := range g.order {
		n := g.nodes[k]
		for _, d := range gridDirs {
			nk := Key{k.X + d[0], k.Y + d[1]}
			if _, ok := g.nodes[nk]; ok {
				n.Neighbors = append(n.Neighbors, nk)
			}
		}
	}
	return g
}

// CellSize returns the quantization step.
func (g *Graph) CellSize() float64 { return g.cellSize }

// CellCenter returns the world position of the centre of cell k.
func (g *Graph) CellCenter(k Key) mgl64.Vec3 {
	return mgl64.Vec3{
		g.origin[0] + (float64(k.X)+0.5)*g.cellSize,
		g.origin[1] + (float64(k.Y)+0.5)*g.cellSize,
		g.origin[2],
	}
}

// Quantize maps a world position to its grid key.
func (g *Graph) Quantize(p mgl64.Vec3) Key {
	return Key{
		X: int(math.Floor((p[0] - g.origin[0]) / g.cellSize)),
		Y: int(math.Floor((p[1] - g.origin[1]) / g.cellSize)),
	}
}

// AddNode inserts or replaces a node without touching edges.
func (g *Graph) AddNode(k Key, pos mgl64.Vec3) *Node {
	if n, ok := g.nodes[k]; ok {
		n.Position = pos
		return n
	}
	n := &Node{Key: k, Position: pos}
	g.nodes[k] = n
	g.order = append(g.order, k)
	return n
}

// Connect adds an undirected edge between two existing nodes.
func (g *Graph) Connect(a, b Key) bool {
	na, okA := g.nodes[a]
	nb, okB := g.nodes[b]
	if !okA || !okB || a == b {
		return false
	}
	na.Neighbors = appendUnique(na.Neighbors, b)
	nb.Neighbors = appendUnique(nb.Neighbors, a)
	return true
}

func appendUnique(keys []Key, k Key) []Key {
	for _, e := range keys {
		if e == k {
			return keys
		}
	}
	return append(keys, k)
}

// Node looks up a node by key.
func (g *Graph) Node(k Key) (*Node, bool) {
	n, ok := g.nodes[k]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, g.nodes[k])
	}
	return out
}

// maxRingSearch bounds the ring search in Nearest before a full scan.
const maxRingSearch = 6

// Nearest returns the node closest to p. It checks the quantized cell first,
// then expanding rings, then falls back to a linear scan.
func (g *Graph) Nearest(p mgl64.Vec3) (*Node, bool) {
	if len(g.nodes) == 0 {
		return nil, false
	}
	c := g.Quantize(p)
	if n, ok := g.nodes[c]; ok {
		return n, true
	}
	for r := 1; r <= maxRingSearch; r++ {
		var best *Node
		bestD := math.MaxFloat64
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if abs(dx) != r && abs(dy) != r {
					continue
				}
				n, ok := g.nodes[Key{c.X + dx, c.Y + dy}]
				if !ok {
					continue
				}
				if d := geom.FlatDist(p, n.Position); d < bestD {
					best, bestD = n, d
				}
			}
		}
		if best != nil {
			return best, true
		}
	}
	var best *Node
	bestD := math.MaxFloat64
	for _, k := range g.order {
		n := g.nodes[k]
		if d := geom.FlatDist(p, n.Position); d < bestD {
			best, bestD = n, d
		}
	}
	return best, best != nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
