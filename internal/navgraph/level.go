package navgraph

import (
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LevelData is navigation data shipped with a level.
type LevelData struct {
	CellSize float64     `yaml:"cell_size"`
	Origin   [3]float64  `yaml:"origin"`
	Nodes    []LevelNode `yaml:"nodes"`
}

// LevelNode is one authored node. Neighbours are listed by key.
type LevelNode struct {
	Key       [2]int     `yaml:"key"`
	Position  [3]float64 `yaml:"position"`
	Neighbors [][2]int   `yaml:"neighbors"`
}

// LoadLevel reads level navigation data from a YAML file.
func LoadLevel(path string) (LevelData, error) {
	var l LevelData
	raw, err := os.ReadFile(path)
	if err != nil {
		return l, errors.Wrap(err, "read level nav data")
	}
	if err := yaml.Unmarshal(raw, &l); err != nil {
		return l, errors.Wrapf(err, "parse %s", path)
	}
	return l, nil
}

// FromLevel builds a graph from authored level data. Every neighbour must
// reference a node present in the data.
func FromLevel(l LevelData) (*Graph, error) {
	if len(l.Nodes) == 0 {
		return nil, errors.New("level nav data has no nodes")
	}
	g := New(l.CellSize, mgl64.Vec3(l.Origin))
	for _, n := range l.Nodes {
		g.AddNode(Key{n.Key[0], n.Key[1]}, mgl64.Vec3(n.Position))
	}
	for _, n := range l.Nodes {
		from := Key{n.Key[0], n.Key[1]}
		for _, nb := range n.Neighbors {
			to := Key{nb[0], nb[1]}
			if !g.Connect(from, to) {
				return nil, errors.Errorf("node %v: unknown neighbour %v", from, to)
			}
		}
	}
	return g, nil
}

// ToLevel exports a graph so it can be saved alongside a level.
func (g *Graph) ToLevel() LevelData {
	l := LevelData{CellSize: g.cellSize, Origin: [3]float64(g.origin)}
	for _, n := range g.Nodes() {
		ln := LevelNode{Key: [2]int{n.Key.X, n.Key.Y}, Position: [3]float64(n.Position)}
		for _, nb := range n.Neighbors {
			ln.Neighbors = append(ln.Neighbors, [2]int{nb.X, nb.Y})
		}
		l.Nodes = append(l.Nodes, ln)
	}
	return l
}
