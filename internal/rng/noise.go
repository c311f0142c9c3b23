package rng

import "github.com/ojrac/opensimplex-go"

// NoiseBuilder configures a coherent noise field before it is built.
type NoiseBuilder struct {
	seed  int64
	scale float64
}

// OpenSimplex starts a noise field seeded by one draw from the stream.
func (g *RNG) OpenSimplex() *NoiseBuilder {
	return &NoiseBuilder{seed: int64(g.Uint32()), scale: 1}
}

func (b *NoiseBuilder) Seed(seed int64) *NoiseBuilder {
	b.seed = seed
	return b
}

// Scale sets the spatial period; inputs are divided by it before sampling.
func (b *NoiseBuilder) Scale(scale float64) *NoiseBuilder {
	b.scale = scale
	return b
}

func (b *NoiseBuilder) Build() *Noise {
	scale := b.scale
	if scale == 0 {
		scale = 1
	}
	return &Noise{gen: opensimplex.New(b.seed), scale: scale}
}

// Noise samples an OpenSimplex field normalised to [0,1].
type Noise struct {
	gen   opensimplex.Noise
	scale float64
}

func (n *Noise) Gen2D(u, v float64) float64 {
	return clamp01(n.gen.Eval2(u/n.scale, v/n.scale)/2 + 0.5)
}

func (n *Noise) Gen3D(u, v, w float64) float64 {
	return clamp01(n.gen.Eval3(u/n.scale, v/n.scale, w/n.scale)/2 + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
