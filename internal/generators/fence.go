package generators

import (
	"math"

	"snowfall/internal/rng"
	"snowfall/internal/scene"
	"snowfall/internal/voxel"
)

// fence rings the placement point with a closed post-and-rail fence that
// follows the terrain. Twelve corners sit on a jittered circle; posts go
// every fifth voxel along each side and two rails join consecutive posts.
func fence(ctx scene.Context, s *scene.Scene) *voxel.Set {
	const (
		postHeight = 6
		postEvery  = 5
	)
	g := ctx.RNG()

	set := voxel.NewSet()
	set.RegisterBlock(voxel.Color("wood", 30, 12, 5))
	set.RegisterBlock(voxel.Color("wood2", 22, 11, 8))
	set.RegisterBlock(voxel.Color("wood3", 31, 8, 3))

	offset := g.Float64Range(0, math.Pi)
	wood := rng.SelectFn(g, []string{"wood", "wood2", "wood3"})

	// ground returns the terrain height under a local column, relative to
	// the placement point.
	ground := func(x, y int) int {
		if h, ok := s.Terrain.HeightAt(ctx.Center.X+x, ctx.Center.Y+y); ok {
			return h - ctx.Center.Z
		}
		return 0
	}

	var corners []voxel.Coord
	for deg := 0; deg < 360; deg += 30 {
		angle := offset + float64(deg)*math.Pi/180
		r := g.Float64Range(40, 70)
		x := int(math.Floor(r * math.Cos(angle)))
		y := int(math.Floor(r * math.Sin(angle)))
		corners = append(corners, voxel.Coord{X: x, Y: y, Z: ground(x, y)})
	}
	corners = append(corners, corners[0])

	var posts []voxel.Coord
	for i := 0; i+1 < len(corners); i++ {
		line := voxel.Line(corners[i], corners[i+1])
		for j, v := range line {
			if j%postEvery != 0 || j+3 >= len(line) {
				continue
			}
			gz := ground(v.X, v.Y)
			id := wood()
			for dz := 0; dz < postHeight; dz++ {
				set.SetVoxel(voxel.Coord{X: v.X, Y: v.Y, Z: gz + dz}, id)
			}
			posts = append(posts, voxel.Coord{X: v.X, Y: v.Y, Z: gz})
		}
	}
	if len(posts) == 0 {
		return set
	}
	posts = append(posts, posts[0])

	for i := 0; i+1 < len(posts); i++ {
		line := voxel.Line(posts[i], posts[i+1])
		top, bottom := wood(), wood()
		for j := 1; j < len(line)-1; j++ {
			v := line[j]
			set.SetVoxel(voxel.Coord{X: v.X, Y: v.Y, Z: v.Z + 4}, top)
			set.SetVoxel(voxel.Coord{X: v.X, Y: v.Y, Z: v.Z + 2}, bottom)
		}
	}
	return set
}
