// Package generators holds the built-in procedural generators and the
// registry they are installed into.
package generators

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"snowfall/internal/config"
	"snowfall/internal/pathfinding"
	"snowfall/internal/scene"
	"snowfall/internal/voxel"
)

type tuning struct {
	cluster config.ClusterConfig
	road    pathfinding.RoadPlan
}

var (
	registry = scene.NewRegistry()

	tuningMu sync.RWMutex
	current  tuning
)

func init() {
	cfg := config.Default()
	if err := Configure(&cfg); err != nil {
		panic(fmt.Sprintf("default generator tuning: %v", err))
	}

	sets := map[string]func(scene.Context, *scene.Scene) *voxel.Set{
		"flat_ground": flatGround,
		"hill4":       hill4,
		"pine_tree":   pineTree,
		"tree1":       tree1,
		"tree2":       tree2,
		"bare_tree":   bareTree,
		"flower":      flower,
		"cloud":       cloud,
		"chest":       chest,
		"fence":       fence,
	}
	for id, fn := range sets {
		registry.Register(id, setGenerator(fn))
	}

	groups := map[string]func(scene.Context, *scene.Scene) *scene.Group{
		"cluster2":       cluster2,
		"flower_cluster": flowerCluster,
		"flower_field":   flowerField,
		"cloud_cluster":  cloudCluster,
		"chest_cluster":  chestCluster,
		"desolate_hill":  desolateHill,
		"hill_with_road": hillWithRoad,
	}
	for id, fn := range groups {
		registry.Register(id, groupGenerator(fn))
	}

	registry.Register("rocks", rocks)
	registry.Register("road", road)
	registry.Register("tree_cluster", func(ctx scene.Context, s *scene.Scene) scene.Model {
		return treeCluster(ctx, s)
	})
}

// Registry returns the registry holding every built-in generator.
func Registry() *scene.Registry {
	return registry
}

// Generate dispatches ctx through the built-in registry.
func Generate(ctx scene.Context, s *scene.Scene) scene.Model {
	return registry.Generate(ctx, s)
}

// Configure installs the cluster defaults and road tuning used by every
// subsequent generation.
func Configure(cfg *config.Config) error {
	plan, err := pathfinding.RoadPlanFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("configure generators: %w", err)
	}
	tuningMu.Lock()
	current = tuning{cluster: cfg.Cluster, road: plan}
	tuningMu.Unlock()
	return nil
}

// mustDecodeParams treats a params bag that does not decode as the same
// caller defect as an unknown generator id.
func mustDecodeParams(ctx scene.Context, dst any) {
	if err := ctx.DecodeParams(dst); err != nil {
		panic(err)
	}
}

func currentTuning() tuning {
	tuningMu.RLock()
	defer tuningMu.RUnlock()
	return current
}

func setGenerator(fn func(scene.Context, *scene.Scene) *voxel.Set) scene.GeneratorFunc {
	return func(ctx scene.Context, s *scene.Scene) scene.Model {
		return scene.VoxelSet{Set: fn(ctx, s)}
	}
}

func groupGenerator(fn func(scene.Context, *scene.Scene) *scene.Group) scene.GeneratorFunc {
	return func(ctx scene.Context, s *scene.Scene) scene.Model {
		return fn(ctx, s)
	}
}

// installTerrain replaces the scene terrain with the set produced by a
// terrain generator.
func installTerrain(s *scene.Scene, m scene.Model) {
	if vs, ok := m.(scene.VoxelSet); ok && vs.Set != nil {
		s.Terrain = vs.Set
	}
}

func rotate2D(u, v, angle float64) (float64, float64) {
	r := mgl64.Rotate2D(angle).Mul2x1(mgl64.Vec2{u, v})
	return r.X(), r.Y()
}

// hslBlock builds a colour block from hue in degrees and saturation and
// lightness in [0,1]. Out of range inputs are wrapped or clamped.
func hslBlock(id string, h, s, l float64) voxel.Block {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsl(h, clampUnit(s), clampUnit(l)).Clamped().RGB255()
	return voxel.Color(id, r, g, b)
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
