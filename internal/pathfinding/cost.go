package pathfinding

import (
	"math"

	"snowfall/internal/config"
)

// CostModel weighs a step between neighbouring terrain columns.
//
// A step costs planar distance times a slope factor times the destination
// walk cost. The slope factor is 1 on flat ground, MildSlopeDiscount for a
// one-voxel change and a tier from ClimbPenalties or DescentPenalties for
// steeper changes, where tier i applies to |dz| == i+2 and the last tier
// covers everything steeper.
type CostModel struct {
	Orthogonal        float64
	Diagonal          float64
	MildSlopeDiscount float64
	ClimbPenalties    []float64
	DescentPenalties  []float64
	MinWalkCost       float64
	HeuristicScale    float64
	MaxIterations     int
}

func DefaultCostModel() CostModel {
	return CostModelFromConfig(config.Default().Roads)
}

func CostModelFromConfig(cfg config.RoadConfig) CostModel {
	return CostModel{
		Orthogonal:        1,
		Diagonal:          math.Sqrt2,
		MildSlopeDiscount: cfg.MildSlopeDiscount,
		ClimbPenalties:    append([]float64(nil), cfg.ClimbPenalties...),
		DescentPenalties:  append([]float64(nil), cfg.DescentPenalties...),
		MinWalkCost:       cfg.MinWalkCost,
		HeuristicScale:    cfg.HeuristicScale,
		MaxIterations:     cfg.MaxIterations,
	}
}

func (m CostModel) SlopeFactor(dz int) float64 {
	switch {
	case dz == 0:
		return 1
	case dz == 1 || dz == -1:
		return m.MildSlopeDiscount
	case dz > 0:
		return tier(m.ClimbPenalties, dz-2)
	default:
		return tier(m.DescentPenalties, -dz-2)
	}
}

func tier(tiers []float64, i int) float64 {
	if len(tiers) == 0 {
		return 1
	}
	return tiers[min(i, len(tiers)-1)]
}

// minSlopeFactor is the cheapest factor any step can have.
func (m CostModel) minSlopeFactor() float64 {
	f := min(1, m.MildSlopeDiscount)
	for _, t := range m.ClimbPenalties {
		f = min(f, t)
	}
	for _, t := range m.DescentPenalties {
		f = min(f, t)
	}
	return f
}

func (m CostModel) planar(dx, dy int) float64 {
	if dx != 0 && dy != 0 {
		return m.Diagonal
	}
	return m.Orthogonal
}

// StepCost returns the cost of moving by (dx, dy) with height change dz onto
// a block with the given walk cost.
func (m CostModel) StepCost(dx, dy, dz int, walkCost float32) float64 {
	return m.planar(dx, dy) * m.SlopeFactor(dz) * max(float64(walkCost), m.MinWalkCost)
}

// Heuristic is the octile distance scaled by the cheapest possible slope
// factor and walk cost, so it never exceeds the true remaining cost.
func (m CostModel) Heuristic(dx, dy int) float64 {
	dx, dy = absInt(dx), absInt(dy)
	lo, hi := min(dx, dy), max(dx, dy)
	octile := float64(hi-lo)*m.Orthogonal + float64(lo)*min(m.Diagonal, 2*m.Orthogonal)
	return octile * m.minSlopeFactor() * m.MinWalkCost * m.HeuristicScale
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
