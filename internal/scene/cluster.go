package scene

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"snowfall/internal/pointset"
	"snowfall/internal/rng"
	"snowfall/internal/voxel"
)

// GeneratorWeight is one entry of a weighted generator list. In YAML it is
// written either as a [weight, id] pair or as a {weight, id} mapping.
type GeneratorWeight struct {
	Weight uint32 `yaml:"weight"`
	ID     string `yaml:"id"`
}

func (g *GeneratorWeight) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		if len(value.Content) != 2 {
			return fmt.Errorf("generator weight: want [weight, id], got %d items", len(value.Content))
		}
		if err := value.Content[0].Decode(&g.Weight); err != nil {
			return fmt.Errorf("generator weight: %w", err)
		}
		return value.Content[1].Decode(&g.ID)
	}
	type plain GeneratorWeight
	return value.Decode((*plain)(g))
}

func (g GeneratorWeight) MarshalYAML() (any, error) {
	return []any{g.Weight, g.ID}, nil
}

// ClusterParams controls a rejection-sampling placement pass.
type ClusterParams struct {
	Count           [2]int            `yaml:"count"`
	Range           int               `yaml:"range"`
	ClosestDistance float64           `yaml:"closest_distance"`
	MaxAttempts     int               `yaml:"max_attempts"`
	Generators      []GeneratorWeight `yaml:"generators"`
}

// Validate rejects params a placement pass cannot draw from.
func (p ClusterParams) Validate() error {
	switch {
	case p.Count[0] < 0 || p.Count[1] < p.Count[0]:
		return fmt.Errorf("%w: count %v must be a non-negative [min, max] range", ErrInvalidParams, p.Count)
	case p.Range < 0:
		return fmt.Errorf("%w: range %d cannot be negative", ErrInvalidParams, p.Range)
	case p.ClosestDistance < 0:
		return fmt.Errorf("%w: closest_distance %g cannot be negative", ErrInvalidParams, p.ClosestDistance)
	case p.MaxAttempts < 0:
		return fmt.Errorf("%w: max_attempts %d cannot be negative", ErrInvalidParams, p.MaxAttempts)
	}
	for _, gw := range p.Generators {
		if gw.ID == "" {
			return fmt.Errorf("%w: generator entry with weight %d has no id", ErrInvalidParams, gw.Weight)
		}
	}
	return nil
}

// Cluster scatters sub-generator outputs around ctx.Center. A candidate is
// rejected when it lands closer than ClosestDistance (in the plane) to an
// accepted point or on an occupied terrain block. Accepted candidates sit one
// voxel above the terrain and are generated from a forked context carrying a
// fresh short seed. The pass stops once the drawn count is placed or the
// attempt budget runs out. Invalid params panic with ErrInvalidParams.
func (r *Registry) Cluster(ctx Context, s *Scene, p ClusterParams) *Group {
	if err := p.Validate(); err != nil {
		panic(fmt.Errorf("%s: %w", ctx.Generator, err))
	}
	g := ctx.RNG()
	group := NewGroup()

	weighted := make([]rng.Weighted[string], 0, len(p.Generators))
	var total uint32
	for _, gw := range p.Generators {
		weighted = append(weighted, rng.W(gw.Weight, gw.ID))
		total += gw.Weight
	}
	if total == 0 {
		return group
	}

	count := g.IntRange(p.Count[0], p.Count[1])
	if count <= 0 {
		return group
	}

	points := pointset.New()
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		pos := voxel.Coord{
			X: ctx.Center.X + g.IntRange(-p.Range, p.Range),
			Y: ctx.Center.Y + g.IntRange(-p.Range, p.Range),
			Z: ctx.Center.Z,
		}
		if h, ok := s.Terrain.HeightAt(pos.X, pos.Y); ok {
			pos.Z = h + 1
		}

		if d, ok := points.NearestDistance2D(pos); ok && d < p.ClosestDistance {
			continue
		}
		if top, ok := s.Terrain.TopBlockAt(pos.X, pos.Y); ok && top.Occupied {
			continue
		}
		points.Add(pos)

		id := rng.SelectWeighted(g, weighted)
		seed := g.Seed8()
		child := ctx.Fork(id, seed).WithCenter(pos).WithParams(nil)
		group.Push(child, r.Generate(child, s))

		count--
		if count == 0 {
			break
		}
	}
	return group
}
