package navgraph

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/world"
)

func openGrid(w, h int) *Graph {
	return BuildGrid(Bounds{Max: mgl64.Vec3{float64(w), float64(h), 0}}, 1, nil)
}

// maskWalk treats cell (x,y) as walkable when mask[y][x] is true.
func maskWalk(mask [][]bool) world.Walkability {
	return world.WalkFunc(func(p mgl64.Vec3) bool {
		x, y := int(math.Floor(p[0])), int(math.Floor(p[1]))
		if y < 0 || y >= len(mask) || x < 0 || x >= len(mask[y]) {
			return false
		}
		return mask[y][x]
	})
}

func TestBuildGrid_OpenGridHasEightNeighbours(t *testing.T) {
	g := openGrid(5, 5)
	if g.Len() != 25 {
		t.Fatalf("expected 25 nodes, got %d", g.Len())
	}
	n, ok := g.Node(Key{2, 2})
	if !ok {
		t.Fatal("centre node missing")
	}
	if len(n.Neighbors) != 8 {
		t.Fatalf("centre node should have 8 neighbours, got %d", len(n.Neighbors))
	}
	corner, _ := g.Node(Key{0, 0})
	if len(corner.Neighbors) != 3 {
		t.Fatalf("corner node should have 3 neighbours, got %d", len(corner.Neighbors))
	}
}

func TestBuildGrid_SkipsBlockedCells(t *testing.T) {
	mask := [][]bool{
		{true, true, true},
		{true, false, true},
		{true, true, true},
	}
	g := BuildGrid(Bounds{Max: mgl64.Vec3{3, 3, 0}}, 1, maskWalk(mask))
	if g.Len() != 8 {
		t.Fatalf("expected 8 nodes, got %d", g.Len())
	}
	if _, ok := g.Node(Key{1, 1}); ok {
		t.Fatal("blocked cell should not become a node")
	}
	n, _ := g.Node(Key{0, 1})
	for _, nb := range n.Neighbors {
		if nb == (Key{1, 1}) {
			t.Fatal("edge into blocked cell")
		}
	}
}

func TestCellCenterAndQuantize(t *testing.T) {
	g := New(2, mgl64.Vec3{10, 10, 0})
	c := g.CellCenter(Key{1, 2})
	if c[0] != 13 || c[1] != 15 {
		t.Fatalf("expected (13,15) got (%.1f,%.1f)", c[0], c[1])
	}
	if k := g.Quantize(c); k != (Key{1, 2}) {
		t.Fatalf("quantize round trip gave %v", k)
	}
}

func TestNearest_FallsBackToRing(t *testing.T) {
	g := New(1, mgl64.Vec3{})
	g.AddNode(Key{3, 0}, g.CellCenter(Key{3, 0}))
	n, ok := g.Nearest(mgl64.Vec3{0.5, 0.5, 0})
	if !ok || n.Key != (Key{3, 0}) {
		t.Fatalf("expected nearest (3,0), got %+v ok=%v", n, ok)
	}
	far := New(1, mgl64.Vec3{})
	far.AddNode(Key{40, 40}, far.CellCenter(Key{40, 40}))
	if n, ok := far.Nearest(mgl64.Vec3{}); !ok || n.Key != (Key{40, 40}) {
		t.Fatal("linear scan fallback should find the only node")
	}
}

func TestConnect_RejectsUnknown(t *testing.T) {
	g := New(1, mgl64.Vec3{})
	g.AddNode(Key{0, 0}, mgl64.Vec3{})
	if g.Connect(Key{0, 0}, Key{9, 9}) {
		t.Fatal("connect to an unknown key should fail")
	}
	g.AddNode(Key{1, 0}, mgl64.Vec3{1, 0, 0})
	g.Connect(Key{0, 0}, Key{1, 0})
	g.Connect(Key{1, 0}, Key{0, 0})
	n, _ := g.Node(Key{0, 0})
	if len(n.Neighbors) != 1 {
		t.Fatalf("duplicate edge stored: %v", n.Neighbors)
	}
}
