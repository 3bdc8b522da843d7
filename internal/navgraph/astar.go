package navgraph

import (
	"container/heap"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jobendik/laser-sub002/internal/geom"
)

// --- A* search ---

type openItem struct {
	key   Key
	f     float64
	seq   int // discovery order; equal f favours the first found
	index int // heap index
}

type openList []*openItem

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	if ol[i].f != ol[j].f {
		return ol[i].f < ol[j].f
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*openItem); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

// Search runs A* between two node keys. Edge cost and heuristic are both the
// Euclidean distance between node positions. It returns the key sequence and
// its total cost.
func (g *Graph) Search(start, goal Key) ([]Key, float64, bool) {
	startNode, ok := g.nodes[start]
	if !ok {
		return nil, 0, false
	}
	goalNode, ok := g.nodes[goal]
	if !ok {
		return nil, 0, false
	}
	if start == goal {
		return []Key{start}, 0, true
	}

	gScore := map[Key]float64{start: 0}
	fScore := map[Key]float64{start: geom.Dist(startNode.Position, goalNode.Position)}
	cameFrom := map[Key]Key{}
	closed := map[Key]bool{}

	seq := 0
	ol := &openList{{key: start, f: fScore[start], seq: seq}}
	heap.Init(ol)

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*openItem)
		if closed[cur.key] {
			continue
		}
		if cur.key == goal {
			return reconstruct(cameFrom, goal), gScore[goal], true
		}
		closed[cur.key] = true
		curNode := g.nodes[cur.key]

		for _, nk := range curNode.Neighbors {
			if closed[nk] {
				continue
			}
			nn, ok := g.nodes[nk]
			if !ok {
				continue
			}
			tentative := gScore[cur.key] + geom.Dist(curNode.Position, nn.Position)
			if prev, seen := gScore[nk]; seen && tentative >= prev {
				continue
			}
			cameFrom[nk] = cur.key
			gScore[nk] = tentative
			fScore[nk] = tentative + geom.Dist(nn.Position, goalNode.Position)
			seq++
			heap.Push(ol, &openItem{key: nk, f: fScore[nk], seq: seq})
		}
	}
	return nil, 0, false
}

func reconstruct(cameFrom map[Key]Key, goal Key) []Key {
	keys := []Key{goal}
	for k, ok := cameFrom[goal]; ok; k, ok = cameFrom[k] {
		keys = append(keys, k)
	}
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	return keys
}

// FindPath returns world waypoints between the nodes nearest to from and to.
// It returns false when the graph is empty or the nodes are disconnected.
func (g *Graph) FindPath(from, to mgl64.Vec3) ([]mgl64.Vec3, bool) {
	s, ok := g.Nearest(from)
	if !ok {
		return nil, false
	}
	e, ok := g.Nearest(to)
	if !ok {
		return nil, false
	}
	keys, _, ok := g.Search(s.Key, e.Key)
	if !ok {
		return nil, false
	}
	path := make([]mgl64.Vec3, len(keys))
	for i, k := range keys {
		path[i] = g.nodes[k].Position
	}
	return path, true
}
