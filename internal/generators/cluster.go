package generators

import (
	"snowfall/internal/pointset"
	"snowfall/internal/rng"
	"snowfall/internal/scene"
	"snowfall/internal/voxel"
)

var defaultClusterGenerators = []scene.GeneratorWeight{
	{Weight: 10, ID: "tree1"},
	{Weight: 10, ID: "tree2"},
	{Weight: 80, ID: "pine_tree"},
}

// clusterParams returns the configured cluster defaults with the context
// params decoded over them.
func clusterParams(ctx scene.Context) scene.ClusterParams {
	defaults := currentTuning().cluster
	p := scene.ClusterParams{
		Count:           defaults.Count,
		Range:           defaults.Range,
		ClosestDistance: defaults.ClosestDistance,
		MaxAttempts:     defaults.MaxAttempts,
		Generators:      append([]scene.GeneratorWeight(nil), defaultClusterGenerators...),
	}
	mustDecodeParams(ctx, &p)
	return p
}

func cluster2(ctx scene.Context, s *scene.Scene) *scene.Group {
	return registry.Cluster(ctx, s, clusterParams(ctx))
}

// forkCluster runs a cluster pass under a seed drawn from g with params
// replacing whatever ctx carried.
func forkCluster(ctx scene.Context, s *scene.Scene, g *rng.RNG, params scene.Params) *scene.Group {
	child := ctx.Fork("cluster2", g.Seed8()).WithParams(params)
	return groupOf(Generate(child, s))
}

// groupOf returns m as a group. Leaf results are wrapped; empty results
// give an empty group.
func groupOf(m scene.Model) *scene.Group {
	if g, ok := m.(*scene.Group); ok {
		return g
	}
	g := scene.NewGroup()
	g.Merge(m)
	return g
}

// treeCluster lays out a cluster of trees as a replayable scene file
// without generating any of them.
func treeCluster(ctx scene.Context, _ *scene.Scene) *scene.Layout {
	g := ctx.RNG()
	p := clusterParams(ctx)

	weighted := make([]rng.Weighted[string], 0, len(p.Generators))
	for _, gw := range p.Generators {
		weighted = append(weighted, rng.W(gw.Weight, gw.ID))
	}

	layout := &scene.Layout{}
	count := g.IntRange(p.Count[0], p.Count[1])
	if count <= 0 {
		return layout
	}
	points := pointset.New()
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		id := rng.SelectWeighted(g, weighted)
		seed := g.Seed8()
		pos := ctx.Center.Add(voxel.Coord{
			X: g.IntRange(-p.Range, p.Range),
			Y: g.IntRange(-p.Range, p.Range),
		})
		if d, ok := points.NearestDistance(pos); ok && d < p.ClosestDistance {
			continue
		}
		points.Add(pos)
		layout.Add(0, scene.Record{
			ModelID:  id,
			Seed:     seed,
			Position: [3]int{pos.X, pos.Y, pos.Z},
		})
		count--
		if count == 0 {
			break
		}
	}
	return layout
}

var flowerHues = []float64{9, 347, 326, 266, 47, 55, 60}

// flower is a single bloom on a five voxel stem cross.
func flower(ctx scene.Context, _ *scene.Scene) *voxel.Set {
	g := ctx.RNG()

	jitter := func(h, s, l float64) (float64, float64, float64) {
		return h + g.Float64Range(-10, 10), s + g.Float64Range(-0.1, 0.1), l + g.Float64Range(-0.1, 0.1)
	}

	set := voxel.NewSet()
	h, s, l := jitter(rng.Select(g, flowerHues), 0.81, 0.20)
	set.RegisterBlock(hslBlock("flower", h, s, l))
	h, s, l = jitter(106, 0.67, 0.17)
	set.RegisterBlock(hslBlock("green", h, s, l))

	for _, p := range []voxel.Coord{
		{}, {X: 1, Z: 1}, {Y: 1, Z: 1}, {X: -1, Z: 1}, {Y: -1, Z: 1},
	} {
		set.SetVoxel(p, "green")
	}
	set.SetVoxel(voxel.Coord{Z: 1}, "flower")
	return set
}

func flowerCluster(ctx scene.Context, s *scene.Scene) *scene.Group {
	return forkCluster(ctx, s, ctx.RNG(), scene.Params{
		"count":            []int{6, 12},
		"range":            12,
		"closest_distance": 4.0,
		"generators":       []scene.GeneratorWeight{{Weight: 10, ID: "flower"}},
	})
}

func flowerField(ctx scene.Context, s *scene.Scene) *scene.Group {
	return forkCluster(ctx, s, ctx.RNG(), scene.Params{
		"count":            []int{30, 40},
		"range":            100,
		"closest_distance": 16.0,
		"generators":       []scene.GeneratorWeight{{Weight: 10, ID: "flower_cluster"}},
	})
}
