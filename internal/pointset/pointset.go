package pointset

import (
	"math"

	"snowfall/internal/voxel"
)

// Set is an append-only collection of placed points used to enforce spacing
// during rejection sampling.
type Set struct {
	points []voxel.Coord
}

func New() *Set {
	return &Set{}
}

func (s *Set) Add(p voxel.Coord) {
	s.points = append(s.points, p)
}

func (s *Set) Len() int {
	return len(s.points)
}

// Points returns a copy of the accepted points in insertion order.
func (s *Set) Points() []voxel.Coord {
	return append([]voxel.Coord(nil), s.points...)
}

// Nearest returns the closest point by 3D distance.
func (s *Set) Nearest(p voxel.Coord) (voxel.Coord, bool) {
	return s.nearest(p, voxel.Coord.Distance)
}

func (s *Set) NearestDistance(p voxel.Coord) (float64, bool) {
	q, ok := s.Nearest(p)
	if !ok {
		return 0, false
	}
	return p.Distance(q), true
}

// Nearest2D returns the closest point ignoring z.
func (s *Set) Nearest2D(p voxel.Coord) (voxel.Coord, bool) {
	return s.nearest(p, voxel.Coord.Distance2D)
}

func (s *Set) NearestDistance2D(p voxel.Coord) (float64, bool) {
	q, ok := s.Nearest2D(p)
	if !ok {
		return 0, false
	}
	return p.Distance2D(q), true
}

// TODO: switch to a uniform grid bucket once clusters place thousands of
// points; the linear scan dominates flower_field today.
func (s *Set) nearest(p voxel.Coord, dist func(voxel.Coord, voxel.Coord) float64) (voxel.Coord, bool) {
	best := math.Inf(1)
	var out voxel.Coord
	found := false
	for _, q := range s.points {
		if d := dist(q, p); d < best {
			best = d
			out = q
			found = true
		}
	}
	return out, found
}
