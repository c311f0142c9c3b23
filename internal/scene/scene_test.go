package scene

import (
	"errors"
	"strings"
	"testing"

	"snowfall/internal/voxel"
)

// dotGenerator places a single voxel whose colour encodes the seed.
func dotGenerator(ctx Context, s *Scene) Model {
	set := voxel.NewSet()
	set.SetBlock(voxel.Coord{}, voxel.Color("dot", uint8(ctx.Seed), uint8(ctx.Seed>>8), 0))
	return VoxelSet{Set: set}
}

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.Register("dot", dotGenerator)
	return r
}

func TestDecodeParamsKeepsDefaults(t *testing.T) {
	type treeParams struct {
		Height int    `yaml:"height"`
		Kind   string `yaml:"kind"`
	}

	p := treeParams{Height: 12, Kind: "standard"}
	if err := NewContext("tree", 1).DecodeParams(&p); err != nil {
		t.Fatalf("DecodeParams with no params: %v", err)
	}
	if p.Height != 12 || p.Kind != "standard" {
		t.Fatalf("defaults changed: %+v", p)
	}

	ctx := NewContext("tree", 1).WithParams(Params{"kind": "birch"})
	if err := ctx.DecodeParams(&p); err != nil {
		t.Fatalf("DecodeParams failed on a valid bag: %v", err)
	}
	if p.Height != 12 || p.Kind != "birch" {
		t.Fatalf("decoded params = %+v, want height 12 kind birch", p)
	}

	bad := NewContext("tree", 1).WithParams(Params{"height": "tall", "kind": "pine"})
	err := bad.DecodeParams(&p)
	if !errors.Is(err, ErrInvalidParams) || !strings.Contains(err.Error(), "tree") {
		t.Fatalf("DecodeParams error = %v, want ErrInvalidParams naming the generator", err)
	}
	if p.Kind != "birch" {
		t.Fatalf("failed decode modified dst: %+v", p)
	}
}

func TestForkKeepsCenterAndParams(t *testing.T) {
	parent := NewContext("cluster2", 9).
		WithCenter(voxel.Coord{X: 4, Y: 5, Z: 6}).
		WithParams(Params{"range": 3})
	child := parent.Fork("dot", 77)
	if child.Generator != "dot" || child.Seed != 77 {
		t.Fatalf("child identity = %s/%d", child.Generator, child.Seed)
	}
	if child.Center != parent.Center || child.Params["range"] != 3 {
		t.Fatalf("child lost center or params: %+v", child)
	}
}

func TestGenerateUnknownIDPanics(t *testing.T) {
	r := newTestRegistry()
	defer func() {
		rec := recover()
		err, ok := rec.(error)
		if !ok || !errors.Is(err, ErrUnknownGenerator) {
			t.Fatalf("recovered %v, want ErrUnknownGenerator", rec)
		}
	}()
	r.Generate(NewContext("no_such_generator", 1), NewScene())
}

func TestRegisterTwicePanics(t *testing.T) {
	r := newTestRegistry()
	defer func() {
		if recover() == nil {
			t.Fatalf("duplicate Register did not panic")
		}
	}()
	r.Register("dot", dotGenerator)
}

func TestClusterRespectsSpacing(t *testing.T) {
	r := newTestRegistry()
	s := NewScene()
	params := ClusterParams{
		Count:           [2]int{20, 30},
		Range:           40,
		ClosestDistance: 9,
		MaxAttempts:     256,
		Generators:      []GeneratorWeight{{Weight: 1, ID: "dot"}},
	}
	g := r.Cluster(NewContext("cluster2", 5), s, params)
	if len(g.Objects) == 0 {
		t.Fatalf("cluster placed nothing")
	}
	if len(g.Objects) > 30 {
		t.Fatalf("cluster placed %d objects, above the max count", len(g.Objects))
	}
	for i, a := range g.Objects {
		for _, b := range g.Objects[i+1:] {
			if d := a.Position.Distance2D(b.Position); d < params.ClosestDistance {
				t.Fatalf("objects at %v and %v are %.2f apart", a.Position, b.Position, d)
			}
		}
	}
}

func TestClusterRejectsInvalidParams(t *testing.T) {
	r := newTestRegistry()
	tests := map[string]ClusterParams{
		"reversed count":   {Count: [2]int{10, 2}, Range: 10, MaxAttempts: 8},
		"negative range":   {Count: [2]int{1, 2}, Range: -1, MaxAttempts: 8},
		"generator no id":  {Count: [2]int{1, 2}, Range: 10, MaxAttempts: 8, Generators: []GeneratorWeight{{Weight: 3}}},
		"negative spacing": {Count: [2]int{1, 2}, Range: 10, MaxAttempts: 8, ClosestDistance: -2},
	}
	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			defer func() {
				rec := recover()
				err, ok := rec.(error)
				if !ok || !errors.Is(err, ErrInvalidParams) || !strings.HasPrefix(err.Error(), "cluster2:") {
					t.Fatalf("recovered %v, want ErrInvalidParams naming cluster2", rec)
				}
			}()
			r.Cluster(NewContext("cluster2", 1), NewScene(), params)
			t.Fatalf("Cluster accepted %+v", params)
		})
	}
}

func TestClusterSnapsToTerrainAndAvoidsOccupied(t *testing.T) {
	r := newTestRegistry()
	s := NewScene()
	ground := voxel.Color("ground", 10, 10, 10)
	rock := voxel.Color("rock", 50, 50, 50)
	rock.Occupied = true
	for x := -10; x <= 10; x++ {
		for y := -10; y <= 10; y++ {
			if x < 0 {
				s.Terrain.SetBlock(voxel.Coord{X: x, Y: y, Z: 3}, rock)
			} else {
				s.Terrain.SetBlock(voxel.Coord{X: x, Y: y, Z: 3}, ground)
			}
		}
	}
	g := r.Cluster(NewContext("cluster2", 11), s, ClusterParams{
		Count:       [2]int{10, 10},
		Range:       10,
		MaxAttempts: 128,
		Generators:  []GeneratorWeight{{Weight: 1, ID: "dot"}},
	})
	if len(g.Objects) == 0 {
		t.Fatalf("cluster placed nothing")
	}
	for _, o := range g.Objects {
		if o.Position.X < 0 {
			t.Fatalf("object placed on occupied block at %v", o.Position)
		}
		if o.Position.Z != 4 {
			t.Fatalf("object z = %d, want terrain height + 1", o.Position.Z)
		}
		if o.Seed < 1 || o.Seed >= 8192 {
			t.Fatalf("child seed %d outside the short seed range", o.Seed)
		}
	}
}

func TestClusterIsDeterministic(t *testing.T) {
	params := ClusterParams{
		Count:           [2]int{5, 15},
		Range:           30,
		ClosestDistance: 4,
		MaxAttempts:     64,
		Generators:      []GeneratorWeight{{Weight: 3, ID: "dot"}},
	}
	a := newTestRegistry().Cluster(NewContext("cluster2", 99), NewScene(), params)
	b := newTestRegistry().Cluster(NewContext("cluster2", 99), NewScene(), params)
	if len(a.Objects) != len(b.Objects) {
		t.Fatalf("object counts differ: %d vs %d", len(a.Objects), len(b.Objects))
	}
	for i := range a.Objects {
		if a.Objects[i].Position != b.Objects[i].Position || a.Objects[i].Seed != b.Objects[i].Seed {
			t.Fatalf("object %d differs: %+v vs %+v", i, a.Objects[i], b.Objects[i])
		}
	}
}

type countingActor struct {
	ticks int
}

func (a *countingActor) Update(s *Scene) {
	a.ticks++
}

func TestSceneUpdateTicksNestedActors(t *testing.T) {
	s := NewScene()
	outer := &countingActor{}
	inner := &countingActor{}
	nested := NewGroup()
	nested.PushObject(&Object{Imp: ActorImp{Actor: inner}})
	s.Objects().PushObject(&Object{Imp: ActorImp{Actor: outer}})
	s.Objects().PushObject(&Object{Imp: nested})

	s.Update()
	s.Update()
	if outer.ticks != 2 || inner.ticks != 2 {
		t.Fatalf("ticks = %d/%d, want 2/2", outer.ticks, inner.ticks)
	}
}

func TestGroupPushSkipsEmpty(t *testing.T) {
	g := NewGroup()
	g.Push(NewContext("road", 1), Empty{})
	if len(g.Objects) != 0 {
		t.Fatalf("empty model produced an object")
	}
	child := NewGroup()
	child.PushObject(&Object{GeneratorID: "dot"})
	g.Merge(child)
	if len(g.Objects) != 1 {
		t.Fatalf("Merge added %d objects, want 1", len(g.Objects))
	}
}
