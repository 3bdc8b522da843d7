package navgraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const levelYAML = `
cell_size: 2
origin: [0, 0, 0]
nodes:
  - key: [0, 0]
    position: [1, 1, 0]
    neighbors: [[1, 0]]
  - key: [1, 0]
    position: [3, 1, 0]
    neighbors: [[2, 0]]
  - key: [2, 0]
    position: [5, 1, 0]
`

func TestLoadLevel_BuildsGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.yaml")
	if err := os.WriteFile(path, []byte(levelYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	l, err := LoadLevel(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	g, err := FromLevel(l)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if g.Len() != 3 || g.CellSize() != 2 {
		t.Fatalf("unexpected graph: %d nodes, cell %.1f", g.Len(), g.CellSize())
	}
	path2, ok := g.FindPath(mgl64.Vec3{1, 1, 0}, mgl64.Vec3{5, 1, 0})
	if !ok || len(path2) != 3 {
		t.Fatalf("expected 3-node path, got %v ok=%v", path2, ok)
	}
	back := g.ToLevel()
	if len(back.Nodes) != 3 || len(back.Nodes[1].Neighbors) != 2 {
		t.Fatalf("export lost edges: %+v", back.Nodes)
	}
}

func TestFromLevel_UnknownNeighbour(t *testing.T) {
	l := LevelData{CellSize: 1, Nodes: []LevelNode{{Key: [2]int{0, 0}, Neighbors: [][2]int{{5, 5}}}}}
	if _, err := FromLevel(l); err == nil {
		t.Fatal("expected an error for a dangling neighbour")
	}
}

func TestLoadLevel_MissingFile(t *testing.T) {
	if _, err := LoadLevel(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
