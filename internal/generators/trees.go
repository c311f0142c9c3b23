package generators

import (
	"math"

	"snowfall/internal/rng"
	"snowfall/internal/scene"
	"snowfall/internal/voxel"
)

// checkered reports whether (x, y, z) falls on the skipped cells of the
// foliage lattice.
func checkered(x, y, z int) bool {
	p := (absInt(x)%2 + absInt(y)%2) % 2
	return p == absInt(z)%2
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// pineTree grows a trunk of 8..12 voxels under a lattice cone whose radius
// shrinks with height at a rate set by the drawn girth.
func pineTree(ctx scene.Context, _ *scene.Scene) *voxel.Set {
	g := ctx.RNG()

	set := voxel.NewSet()
	set.RegisterBlock(voxel.Color("leaves", 10, 140, 30))
	set.RegisterBlock(voxel.Color("leaves2", 30, 90, 30))
	set.RegisterBlock(voxel.Color("leaves3", 30, 70, 30))
	set.RegisterBlock(voxel.Color("wood", 46, 38, 38))
	set.RegisterBlock(voxel.Color("wood2", 26, 28, 28))
	set.RegisterBlock(voxel.Color("wood3", 36, 38, 31))

	baseHeight := g.IntRange(8, 12)
	coneHeight := baseHeight + g.IntRange(4, 16)
	girth := g.Float64Range(0.5, 0.75)

	leaf := rng.SelectFn(g, []string{"leaves", "leaves2", "leaves3"})
	wood := rng.SelectFn(g, []string{"wood", "wood2", "wood3"})

	for z := 0; z <= baseHeight; z++ {
		set.SetVoxel(voxel.Coord{Z: z}, wood())
	}

	for z := 0; z <= coneHeight; z++ {
		r := int(math.Ceil(math.Pow(float64(coneHeight-z+1), girth)))
		for y := -r; y <= r; y++ {
			for x := -r; x <= r; x++ {
				if x*x+y*y > r*r || checkered(x, y, z) {
					continue
				}
				set.SetVoxel(voxel.Coord{X: x, Y: y, Z: z + baseHeight}, leaf())
			}
		}
	}
	return set
}

// tree1 is a fixed lollipop tree: a 20 voxel trunk under a striped lattice
// sphere. It draws nothing from the seed.
func tree1(_ scene.Context, _ *scene.Scene) *voxel.Set {
	const (
		radius = 8
		height = 20
	)
	set := voxel.NewSet()
	set.RegisterBlock(voxel.Color("grass", 50, 200, 50))
	set.RegisterBlock(voxel.Color("sand", 180, 200, 20))
	set.RegisterBlock(voxel.Color("wood", 46, 38, 38))

	for z := 0; z <= height; z++ {
		set.SetVoxel(voxel.Coord{Z: z}, "wood")
	}
	for z := -radius; z <= radius; z++ {
		for y := -radius; y <= radius; y++ {
			for x := -radius; x <= radius; x++ {
				if x*x+y*y+z*z > radius*radius || checkered(x, y, z) {
					continue
				}
				id := "grass"
				if absInt(y)%2 != 0 {
					id = "sand"
				}
				set.SetVoxel(voxel.Coord{X: x, Y: y, Z: z + radius/2 + height}, id)
			}
		}
	}
	return set
}

// tree2 is a standard or birch tree with a noise-thinned lattice crown.
func tree2(ctx scene.Context, _ *scene.Scene) *voxel.Set {
	const radius = 8
	g := ctx.RNG()

	set := voxel.NewSet()
	set.RegisterBlock(voxel.Color("leaves", 40, 180, 30))
	set.RegisterBlock(voxel.Color("leaves2", 30, 150, 30))
	set.RegisterBlock(voxel.Color("leaves3", 230, 150, 30))
	set.RegisterBlock(voxel.Color("sand", 180, 200, 20))
	set.RegisterBlock(voxel.Color("wood", 46, 38, 38))
	set.RegisterBlock(voxel.Color("birch_wood0", 200, 205, 203))
	set.RegisterBlock(voxel.Color("birch_wood1", 180, 185, 173))
	set.RegisterBlock(voxel.Color("birch_wood2", 30, 35, 33))

	birch := rng.Select(g, []string{"standard", "birch"}) == "birch"

	woodRNG := g.Fork()
	wood := func() string {
		if !birch {
			return "wood"
		}
		return rng.SelectWeighted(woodRNG, []rng.Weighted[string]{
			rng.W(40, "birch_wood0"),
			rng.W(40, "birch_wood1"),
			rng.W(20, "birch_wood2"),
		})
	}
	leaves := []string{"leaves", "leaves2", "leaves3"}
	if birch {
		leaves = leaves[:2]
	}
	leaf := rng.SelectFn(g, leaves)

	height := g.IntRange(12, 20)
	noise := g.OpenSimplex().Scale(3).Build()

	for z := 0; z <= height; z++ {
		set.SetVoxel(voxel.Coord{Z: z}, wood())
	}
	for z := -radius; z <= radius; z++ {
		for y := -radius; y <= radius; y++ {
			for x := -radius; x <= radius; x++ {
				if x*x+y*y+z*z > radius*radius || checkered(x, y, z) {
					continue
				}
				if noise.Gen3D(float64(x), float64(y), float64(z)) < 0.40 {
					continue
				}
				set.SetVoxel(voxel.Coord{X: x, Y: y, Z: z + radius/2 + height}, leaf())
			}
		}
	}
	return set
}

type branch struct {
	base   voxel.Coord
	length int
}

// bareTree grows a leafless tree segment by segment. Each segment splits
// into more branches that are a little shorter than their parent; growth
// stops once branches get too short.
func bareTree(ctx scene.Context, _ *scene.Scene) *voxel.Set {
	g := ctx.RNG()

	set := voxel.NewSet()
	set.RegisterBlock(voxel.Color("brown1", 60, 40, 20))
	set.RegisterBlock(voxel.Color("brown2", 30, 20, 5))
	set.RegisterBlock(voxel.Color("brown3", 22, 15, 4))
	colors := []string{"brown1", "brown2", "brown2", "brown3"}
	dirs := []voxel.Column{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}

	frontier := []branch{{length: 10}}
	for segment := 0; len(frontier) > 0; segment++ {
		current := frontier
		frontier = nil
		for _, b := range current {
			length := b.length - g.IntRange(1, 2)
			if length <= 2 {
				continue
			}

			count := 1
			switch {
			case segment == 1:
				count = 2
			case segment >= 2:
				count = g.IntRange(1, 1+segment)
			}
			if segment >= 2 && g.IntRange(0, 99) < 10 {
				continue
			}

			for i := 0; i < count; i++ {
				dir := rng.Select(g, dirs)
				sign := rng.Select(g, []int{-1, 1})
				scale := g.IntRange(1, min(1+segment*2, length+1))
				tip := b.base.Add(voxel.Coord{X: dir.X * scale * sign, Y: dir.Y * scale * sign, Z: length})

				for _, p := range voxel.Line(b.base, tip) {
					set.SetVoxel(p, rng.Select(g, colors))
				}
				frontier = append(frontier, branch{base: tip, length: length})
			}
		}
	}
	return set
}
