package generators

import (
	"math"

	"github.com/ojrac/opensimplex-go"

	"snowfall/internal/config"
	"snowfall/internal/grid"
	"snowfall/internal/rng"
	"snowfall/internal/scene"
	"snowfall/internal/voxel"
)

// terrainRadius is the half extent of generated terrain tiles.
const terrainRadius = 256

type groundParams struct {
	GroundType string `yaml:"ground_type"`
	Radius     int    `yaml:"radius"`
}

func decodeGroundParams(ctx scene.Context) groundParams {
	p := groundParams{GroundType: "grass", Radius: terrainRadius}
	mustDecodeParams(ctx, &p)
	if p.Radius <= 0 {
		p.Radius = terrainRadius
	}
	return p
}

func registerGround(set *voxel.Set) {
	set.RegisterBlock(voxel.Color("dirt1", 10, 8, 4))
	set.RegisterBlock(voxel.Color("dirt2", 16, 12, 7))
	set.RegisterBlock(voxel.Color("grass1", 5, 60, 10))
	set.RegisterBlock(voxel.Color("grass2", 3, 45, 2))
}

func groundSelector(g *rng.RNG, groundType string) func() string {
	if groundType == "dirt" {
		return rng.SelectFn(g, []string{"dirt1", "dirt2"})
	}
	return rng.SelectFn(g, []string{"grass1", "grass2"})
}

// flatGround is a single layer of ground at z=1.
func flatGround(ctx scene.Context, _ *scene.Scene) *voxel.Set {
	g := ctx.RNG()
	p := decodeGroundParams(ctx)

	set := voxel.NewSet()
	registerGround(set)
	next := groundSelector(g, p.GroundType)

	for y := -p.Radius; y <= p.Radius; y++ {
		for x := -p.Radius; x <= p.Radius; x++ {
			set.SetVoxel(voxel.Coord{X: x, Y: y, Z: 1}, next())
		}
	}
	return set
}

// hill4 raises a rolling hill from two noise fields: one jitters the radius
// of a cosine profile and the other its phase.
func hill4(ctx scene.Context, _ *scene.Scene) *voxel.Set {
	g := ctx.RNG()
	p := decodeGroundParams(ctx)

	set := voxel.NewSet()
	registerGround(set)

	radiusNoise := g.OpenSimplex().Scale(0.25).Build()
	angleNoise := g.OpenSimplex().Scale(0.5).Build()
	next := groundSelector(g, p.GroundType)

	r := float64(p.Radius)
	for y := -p.Radius; y <= p.Radius; y++ {
		for x := -p.Radius; x <= p.Radius; x++ {
			u, v := float64(x)/r, float64(y)/r

			jitterR := 1.5 * radiusNoise.Gen2D(u, v)
			jitterA := 2 * math.Pi * angleNoise.Gen2D(u, v)
			h3 := 64 * jitterR * (0.5 + 0.5*math.Cos(jitterA))
			h := math.Max(math.Pow(h3, 1.15), 1)

			top := int(math.Round(h))
			for z := 1; z <= top; z++ {
				set.SetVoxel(voxel.Coord{X: x, Y: y, Z: z}, next())
			}
		}
	}
	return set
}

// rocks stacks occupied stone outcrops onto the scene terrain wherever the
// combined noise clears a threshold.
func rocks(ctx scene.Context, s *scene.Scene) scene.Model {
	g := ctx.RNG()
	p := decodeGroundParams(ctx)
	terrain := s.Terrain

	occupied := func(b voxel.Block) voxel.Block {
		return b.With(func(v *voxel.Block) { v.Occupied = true })
	}
	stone1 := terrain.RegisterBlock(occupied(voxel.Color("stone1", 10, 10, 11)))
	stone2 := terrain.RegisterBlock(occupied(voxel.Color("stone2", 5, 6, 5)))

	mask := g.OpenSimplex().Scale(0.125).Build()
	fine := g.OpenSimplex().Scale(0.055).Build()
	coarse := g.OpenSimplex().Scale(0.025).Build()
	next := rng.SelectFn(g, []voxel.Index{stone1, stone2})

	r := float64(p.Radius)
	for y := -p.Radius; y <= p.Radius; y++ {
		for x := -p.Radius; x <= p.Radius; x++ {
			u, v := float64(x)/r, float64(y)/r
			n := math.Max(coarse.Gen2D(u, v), fine.Gen2D(u, v))
			if mask.Gen2D(u, v) > 0.45 {
				n = 0
			}
			if n < 0.65 {
				continue
			}
			h := int(math.Round(1 + 60*(n-0.65)))
			base, ok := terrain.HeightAt(x, y)
			if !ok {
				base = 1
			}
			for z := 1; z <= h; z++ {
				terrain.SetIndex(voxel.Coord{X: x, Y: y, Z: base + z}, next())
			}
		}
	}
	return scene.Empty{}
}

// WorldTerrain returns a grid generator that fills the world from an
// octave OpenSimplex height field. Voxels resolve to the catalog ids grass,
// dirt, stone, sand, water and snow, which the grid palette must know.
//
// The returned generator memoises the last column it was asked about and
// must not be shared between goroutines.
func WorldTerrain(cfg config.TerrainConfig) grid.Generator {
	noise := opensimplex.New(cfg.Seed)
	snowLine := cfg.BaseHeight + int(math.Round(cfg.Amplitude*0.6))

	var (
		lastCol    voxel.Column
		lastHeight int
		cached     bool
	)
	heightAt := func(col voxel.Column) int {
		if cached && col == lastCol {
			return lastHeight
		}
		n := fractalNoise(noise, cfg, float64(col.X), float64(col.Y))
		lastCol, lastHeight, cached = col, cfg.BaseHeight+int(math.Round(n*cfg.Amplitude)), true
		return lastHeight
	}

	return func(p voxel.Coord) string {
		h := heightAt(p.Column())
		switch {
		case p.Z > h:
			if p.Z <= cfg.SeaLevel {
				return "water"
			}
			return ""
		case p.Z == h:
			switch {
			case h <= cfg.SeaLevel+1:
				return "sand"
			case h >= snowLine:
				return "snow"
			default:
				return "grass"
			}
		case p.Z >= h-3:
			return "dirt"
		default:
			return "stone"
		}
	}
}

// fractalNoise sums octaves of noise in [-1,1] and normalises by the total
// amplitude.
func fractalNoise(noise opensimplex.Noise, cfg config.TerrainConfig, x, y float64) float64 {
	frequency := cfg.Frequency
	amplitude := 1.0
	sum := 0.0
	maxAmplitude := 0.0

	for i := 0; i < cfg.Octaves; i++ {
		sum += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxAmplitude += amplitude
		amplitude *= cfg.Persistence
		frequency *= cfg.Lacunarity
	}
	if maxAmplitude == 0 {
		return 0
	}
	return sum / maxAmplitude
}
