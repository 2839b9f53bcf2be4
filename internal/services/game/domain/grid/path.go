package grid

import "container/heap"

// Path is a walk from one tile to another. Steps excludes the origin.
type Path struct {
	Steps []Point `json:"steps"`
	Cost  float64 `json:"cost"`
}

var directions = [8]Point{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
	{1, -1}, {1, 1}, {-1, 1}, {-1, -1},
}

type pathNode struct {
	point Point
	cost  float64
	seq   int
	index int
}

// frontier is a min-heap on cost; seq breaks ties so results are stable.
type frontier []*pathNode

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].cost == f[j].cost {
		return f[i].seq < f[j].seq
	}
	return f[i].cost < f[j].cost
}
func (f frontier) Swap(i, j int) {
	f[i], f[j] = f[j], f[i]
	f[i].index = i
	f[j].index = j
}

func (f *frontier) Push(x any) {
	node := x.(*pathNode)
	node.index = len(*f)
	*f = append(*f, node)
}

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return node
}

// FindPath returns the least-cost path from from to to. It reports false
// when either point is off the map, the destination is blocked, or no
// finite path exists. A path to the origin itself is empty and free.
func FindPath(m *Map, from, to Point) (Path, bool) {
	if !m.InBounds(from) || !m.InBounds(to) {
		return Path{}, false
	}
	if from == to {
		return Path{Steps: []Point{}}, true
	}
	if tile, _ := m.Tile(to); tile.Blocked() {
		return Path{}, false
	}

	size := m.Width * m.Height
	index := func(p Point) int { return p.Y*m.Width + p.X }
	dist := make([]float64, size)
	prev := make([]int, size)
	done := make([]bool, size)
	for i := range dist {
		dist[i] = -1
		prev[i] = -1
	}

	open := &frontier{}
	heap.Init(open)
	seq := 0
	dist[index(from)] = 0
	heap.Push(open, &pathNode{point: from})

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		ci := index(current.point)
		if done[ci] {
			continue
		}
		done[ci] = true
		if current.point == to {
			break
		}
		for _, d := range directions {
			next := Point{X: current.point.X + d.X, Y: current.point.Y + d.Y}
			tile, ok := m.Tile(next)
			if !ok || tile.Blocked() {
				continue
			}
			ni := index(next)
			if done[ni] {
				continue
			}
			cost := current.cost + tile.MovementCost
			if dist[ni] >= 0 && cost >= dist[ni] {
				continue
			}
			dist[ni] = cost
			prev[ni] = ci
			seq++
			heap.Push(open, &pathNode{point: next, cost: cost, seq: seq})
		}
	}

	ti := index(to)
	if !done[ti] {
		return Path{}, false
	}
	var steps []Point
	for i := ti; i != index(from); i = prev[i] {
		steps = append(steps, Point{X: i % m.Width, Y: i / m.Width})
	}
	for l, r := 0, len(steps)-1; l < r; l, r = l+1, r-1 {
		steps[l], steps[r] = steps[r], steps[l]
	}
	return Path{Steps: steps, Cost: dist[ti]}, true
}
