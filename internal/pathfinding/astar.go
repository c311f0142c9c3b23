package pathfinding

import (
	"container/heap"
	"context"
	"errors"
	"fmt"

	"snowfall/internal/voxel"
)

// ErrSearchBudget is the panic value (wrapped) when a search expands more
// nodes than its cost model allows.
var ErrSearchBudget = errors.New("path search exceeded its iteration budget")

// Terrain is the read side of a voxel container that searches walk over.
type Terrain interface {
	HeightAt(x, y int) (int, bool)
	Get(p voxel.Coord) voxel.Block
}

// Path is a found route. Every node sits on the terrain surface.
type Path struct {
	Nodes []voxel.Coord
	Cost  float64
}

var neighborOffsets = [...]voxel.Column{
	{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1},
	{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1},
}

// FindPath runs A* over 8-connected columns from start to goal. Heights are
// read from the terrain on every visit through a memoised lookup; columns
// without data are impassable. It reports false when the goal cannot be
// reached or ctx is cancelled, and panics with ErrSearchBudget when the
// model's iteration cap is exceeded.
func FindPath(ctx context.Context, t Terrain, start, goal voxel.Column, model CostModel) (Path, bool) {
	profiler := profilerFromContext(ctx)
	heights := newHeightCache(t, profiler)

	path, ok := search(ctx, t, heights, start, goal, model, profiler)
	if profiler != nil {
		profiler.RecordSearch(ok)
	}
	return path, ok
}

func search(ctx context.Context, t Terrain, heights *heightCache, start, goal voxel.Column, model CostModel, profiler Profiler) (Path, bool) {
	startZ, ok := heights.at(start)
	if !ok {
		return Path{}, false
	}
	if _, ok := heights.at(goal); !ok {
		return Path{}, false
	}
	if start == goal {
		return Path{Nodes: []voxel.Coord{{X: start.X, Y: start.Y, Z: startZ}}}, true
	}

	open := &columnQueue{}
	heap.Init(open)
	heap.Push(open, &columnPath{column: start, priority: 0})

	cameFrom := map[voxel.Column]voxel.Column{}
	gScore := map[voxel.Column]float64{start: 0}
	closed := map[voxel.Column]bool{}
	expanded := 0

	for open.Len() > 0 {
		if ctx.Err() != nil {
			return Path{}, false
		}

		current := heap.Pop(open).(*columnPath)
		if closed[current.column] {
			continue
		}
		closed[current.column] = true

		expanded++
		if model.MaxIterations > 0 && expanded > model.MaxIterations {
			panic(fmt.Errorf("%w: %d nodes expanded searching %v -> %v", ErrSearchBudget, expanded-1, start, goal))
		}
		if profiler != nil {
			profiler.RecordNodeExpanded()
		}
		if current.column == goal {
			return Path{
				Nodes: reconstruct(cameFrom, heights, goal),
				Cost:  gScore[goal],
			}, true
		}

		z, _ := heights.at(current.column)
		generated := 0
		for _, off := range neighborOffsets {
			next := voxel.Column{X: current.column.X + off.X, Y: current.column.Y + off.Y}
			if closed[next] {
				continue
			}
			nz, ok := heights.at(next)
			if !ok {
				continue
			}
			generated++

			walk := t.Get(voxel.Coord{X: next.X, Y: next.Y, Z: nz}).WalkCost
			tentative := gScore[current.column] + model.StepCost(off.X, off.Y, nz-z, walk)
			if score, ok := gScore[next]; ok && tentative >= score {
				continue
			}
			cameFrom[next] = current.column
			gScore[next] = tentative
			if profiler != nil {
				profiler.RecordHeuristicEvaluation()
			}
			priority := tentative + model.Heuristic(goal.X-next.X, goal.Y-next.Y)
			heap.Push(open, &columnPath{column: next, priority: priority})
		}
		if profiler != nil {
			profiler.RecordNeighborGeneration(generated)
		}
	}
	return Path{}, false
}

func reconstruct(cameFrom map[voxel.Column]voxel.Column, heights *heightCache, current voxel.Column) []voxel.Coord {
	var columns []voxel.Column
	for {
		columns = append(columns, current)
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		current = prev
	}
	nodes := make([]voxel.Coord, len(columns))
	for i, c := range columns {
		z, _ := heights.at(c)
		nodes[len(columns)-1-i] = voxel.Coord{X: c.X, Y: c.Y, Z: z}
	}
	return nodes
}

type heightEntry struct {
	z  int
	ok bool
}

type heightCache struct {
	terrain  Terrain
	profiler Profiler
	entries  map[voxel.Column]heightEntry
}

func newHeightCache(t Terrain, profiler Profiler) *heightCache {
	return &heightCache{terrain: t, profiler: profiler, entries: make(map[voxel.Column]heightEntry)}
}

func (c *heightCache) at(col voxel.Column) (int, bool) {
	if e, ok := c.entries[col]; ok {
		if c.profiler != nil {
			c.profiler.RecordCacheHit()
		}
		return e.z, e.ok
	}
	if c.profiler != nil {
		c.profiler.RecordCacheMiss()
	}
	z, ok := c.terrain.HeightAt(col.X, col.Y)
	c.entries[col] = heightEntry{z: z, ok: ok}
	return z, ok
}

type columnPath struct {
	column   voxel.Column
	priority float64
	index    int
}

type columnQueue []*columnPath

func (q columnQueue) Len() int           { return len(q) }
func (q columnQueue) Less(i, j int) bool { return q[i].priority < q[j].priority }
func (q columnQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *columnQueue) Push(x any) {
	item := x.(*columnPath)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *columnQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}
