package generators

import (
	"context"
	"log"

	"snowfall/internal/scene"
	"snowfall/internal/voxel"
)

// road routes and carves one road across the scene terrain around the
// context center. It adds no object of its own.
func road(ctx scene.Context, s *scene.Scene) scene.Model {
	plan := currentTuning().road
	if !plan.Build(context.Background(), s.Terrain, ctx.Center, ctx.RNG()) {
		log.Printf("road seed %d: no route found after %d attempts", ctx.Seed, plan.Attempts)
	}
	return scene.Empty{}
}

// hillWithRoad is a grassy hill crossed by four roads, dotted with flower
// fields and tree clusters under a layer of clouds.
func hillWithRoad(ctx scene.Context, s *scene.Scene) *scene.Group {
	g := ctx.RNG()

	installTerrain(s, Generate(ctx.Fork("hill4", g.Seed8()).WithParams(nil), s))
	for i := 0; i < 4; i++ {
		Generate(ctx.Fork("road", g.Seed8()), s)
	}

	group := scene.NewGroup()
	group.Merge(Generate(ctx.Fork("flower_field", g.Seed8()).WithParams(nil), s))
	for i := 0; i < 4; i++ {
		group.Merge(forkCluster(ctx, s, g, scene.Params{
			"count": []int{120, 400},
			"range": 248,
		}))
	}
	group.Merge(Generate(ctx.Fork("cloud_cluster", g.Seed8()).WithParams(nil), s))
	return group
}

// desolateHill is a bare dirt hill with rock outcrops, two roads and
// scattered groves of dead trees.
func desolateHill(ctx scene.Context, s *scene.Scene) *scene.Group {
	const spread = 255 - 32
	g := ctx.RNG()

	hill := ctx.Fork("hill4", g.Seed8()).WithParams(scene.Params{"ground_type": "dirt"})
	installTerrain(s, Generate(hill, s))

	Generate(ctx.Fork("rocks", g.Seed8()).WithParams(nil), s)
	for i := 0; i < 2; i++ {
		Generate(ctx.Fork("road", g.Seed8()), s)
	}

	group := scene.NewGroup()
	for i := 0; i < 32; i++ {
		seed := g.Seed8()
		center := voxel.Coord{
			X: ctx.Center.X + g.IntRange(-spread, spread),
			Y: ctx.Center.Y + g.IntRange(-spread, spread),
		}
		child := ctx.Fork("cluster2", seed).WithCenter(center).WithParams(scene.Params{
			"count":      []int{3, 8},
			"range":      32,
			"generators": []scene.GeneratorWeight{{Weight: 10, ID: "bare_tree"}},
		})
		group.Merge(Generate(child, s))
	}
	return group
}
