package generators

import (
	"math"

	"snowfall/internal/scene"
	"snowfall/internal/voxel"
)

// cloud overlaps 6..16 noisy ellipsoid puffs. A second noise field picks a
// dark or light shade per voxel, or carves the voxel out entirely.
func cloud(ctx scene.Context, _ *scene.Scene) *voxel.Set {
	const (
		radius = 14
		spread = 8
	)
	g := ctx.RNG()

	set := voxel.NewSet()
	set.RegisterBlock(voxel.Color("cloud1", 132, 137, 144))
	set.RegisterBlock(voxel.Color("cloud2", 227, 227, 227))

	puffs := g.IntRange(6, 16)
	for i := 0; i < puffs; i++ {
		shape := g.OpenSimplex().Scale(0.25).Build()
		shade := g.OpenSimplex().Scale(0.15).Build()

		angle := g.Float64Range(-math.Pi/5, math.Pi/5)
		rx := int(math.Round(radius * g.Float64Range(1, 2)))
		ry := int(math.Round(radius * g.Float64Range(1, 4)))
		rz := int(math.Round(radius * g.Float64Range(0.25, 1.25)))
		offset := voxel.Coord{
			X: g.IntRange(-spread, spread),
			Y: g.IntRange(-spread, spread),
			Z: g.IntRange(-spread/2, spread/2),
		}

		for dz := -rz; dz <= rz; dz++ {
			for dy := -ry; dy <= ry; dy++ {
				for dx := -rx; dx <= rx; dx++ {
					u, v, w := float64(dx)/float64(rx), float64(dy)/float64(ry), float64(dz)/float64(rz)
					r := 0.25 + 0.75*shape.Gen3D(u, v, w)
					if u*u+v*v+w*w > r*r {
						continue
					}

					fx, fy := rotate2D(float64(dx), float64(dy), angle)
					p := offset.Add(voxel.Coord{X: int(math.Round(fx)), Y: int(math.Round(fy)), Z: dz})

					switch n := shade.Gen3D(u, v, w); {
					case n < 0.35:
						set.SetVoxel(p, "cloud1")
					case n < 0.62:
						set.SetVoxel(p, "cloud2")
					default:
						set.ClearVoxel(p)
					}
				}
			}
		}
	}
	return set
}

// cloudCluster scatters 14 clouds over the sky band above the terrain.
func cloudCluster(ctx scene.Context, s *scene.Scene) *scene.Group {
	const (
		count  = 14
		radius = 200
	)
	g := ctx.RNG()
	group := scene.NewGroup()
	for i := 0; i < count; i++ {
		child := ctx.Fork("cloud", g.Seed8()).WithParams(nil).WithCenter(voxel.Coord{
			X: ctx.Center.X + g.IntRange(-radius, radius),
			Y: ctx.Center.Y + g.IntRange(-radius, radius),
			Z: g.IntRange(96, 162),
		})
		group.Push(child, Generate(child, s))
	}
	return group
}
