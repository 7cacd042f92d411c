package pathfind

import (
	"container/heap"
	"errors"
	"math"
)

// ErrNoPath is returned when the destination cannot be reached.
var ErrNoPath = errors.New("pathfind: no path")

// node is a vertex in the Dijkstra frontier
type node struct {
	id    int
	dist  float64
	index int // Index in the heap
}

// priorityQueue implements heap.Interface ordered by distance, then by
// vertex index so that equal distances resolve to the lowest index.
type priorityQueue []*node

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].id < pq[j].id
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := len(*pq)
	nd := x.(*node)
	nd.index = n
	*pq = append(*pq, nd)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	nd := old[n-1]
	old[n-1] = nil
	nd.index = -1
	*pq = old[0 : n-1]
	return nd
}

// ShortestPath runs Dijkstra's algorithm over the graph from source to
// destination and returns the vertex indices from source to destination
// inclusive. [NoEdge] weights are never relaxed. Among vertices with equal
// tentative distance the lowest index is settled first, and a predecessor is
// only replaced by a strictly shorter route, so the result is deterministic.
func ShortestPath(g *VisibilityGraph, source, destination int) ([]int, error) {
	n := g.Len()
	if source < 0 || source >= n || destination < 0 || destination >= n {
		return nil, ErrNoPath
	}
	if source == destination {
		return []int{source}, nil
	}

	distance := make([]float64, n)
	precede := make([]int, n)
	visited := make([]bool, n)
	queued := make([]*node, n)
	for i := range distance {
		distance[i] = math.Inf(1)
		precede[i] = -1
	}
	distance[source] = 0

	frontier := &priorityQueue{}
	heap.Init(frontier)
	queued[source] = &node{id: source}
	heap.Push(frontier, queued[source])

	for frontier.Len() > 0 {
		current := heap.Pop(frontier).(*node)
		queued[current.id] = nil
		visited[current.id] = true

		if current.id == destination {
			return reconstruct(precede, source, destination), nil
		}

		for i := 0; i < n; i++ {
			if visited[i] || g.Weights[current.id][i] == NoEdge {
				continue
			}

			newDist := current.dist + g.Weights[current.id][i]
			if newDist >= distance[i] {
				continue
			}
			distance[i] = newDist
			precede[i] = current.id

			if nd := queued[i]; nd != nil {
				nd.dist = newDist
				heap.Fix(frontier, nd.index)
			} else {
				queued[i] = &node{id: i, dist: newDist}
				heap.Push(frontier, queued[i])
			}
		}
	}

	return nil, ErrNoPath
}

// reconstruct walks predecessor links back from destination.
func reconstruct(precede []int, source, destination int) []int {
	path := []int{destination}
	for i := destination; i != source; {
		i = precede[i]
		path = append(path, i)
	}

	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}
