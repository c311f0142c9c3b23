package scene

import "snowfall/internal/voxel"

// Model is the result of a generator: Empty, VoxelSet, *Group or *Layout.
type Model interface {
	isModel()
}

// Imp is the payload of a placed Object: Empty, VoxelSet, *Group or
// ActorImp.
type Imp interface {
	isImp()
}

type Empty struct{}

func (Empty) isModel() {}
func (Empty) isImp()   {}

// VoxelSet is a leaf payload in the object's local coordinates.
type VoxelSet struct {
	Set *voxel.Set
}

func (VoxelSet) isModel() {}
func (VoxelSet) isImp()   {}

// Actor receives a tick on every Scene.Update.
type Actor interface {
	Update(s *Scene)
}

// ActorImp owns an actor. Objects are moved by pointer so the actor is never
// duplicated.
type ActorImp struct {
	Actor Actor
}

func (ActorImp) isImp() {}

// Object is one placed node of the scene tree. Position is in world space;
// nested groups do not offset their children.
type Object struct {
	GeneratorID string
	Seed        uint64
	Params      Params
	Position    voxel.Coord
	Scale       float64
	Imp         Imp
}

// Group is a pure composition node.
type Group struct {
	Objects []*Object
}

func NewGroup() *Group {
	return &Group{}
}

func (*Group) isModel() {}
func (*Group) isImp()   {}

// Push records the output of the generator described by ctx, placed at the
// context center. Empty models are skipped.
func (g *Group) Push(ctx Context, m Model) {
	imp := impFor(m)
	if imp == nil {
		return
	}
	g.PushObject(&Object{
		GeneratorID: ctx.Generator,
		Seed:        ctx.Seed,
		Params:      ctx.Params,
		Position:    ctx.Center,
		Scale:       1,
		Imp:         imp,
	})
}

func (g *Group) PushObject(o *Object) {
	g.Objects = append(g.Objects, o)
}

// Merge appends the objects of a group result. Voxel sets become an
// anonymous object at the origin; empty results and layouts add nothing.
func (g *Group) Merge(m Model) {
	switch v := m.(type) {
	case *Group:
		g.Objects = append(g.Objects, v.Objects...)
	case VoxelSet:
		g.PushObject(&Object{Scale: 1, Imp: v})
	}
}

// Walk visits every object depth first.
func (g *Group) Walk(fn func(o *Object)) {
	for _, o := range g.Objects {
		fn(o)
		if child, ok := o.Imp.(*Group); ok {
			child.Walk(fn)
		}
	}
}

func impFor(m Model) Imp {
	switch v := m.(type) {
	case VoxelSet:
		return v
	case *Group:
		return v
	default:
		return nil
	}
}

// Scene is the output of one generation pass: the shared terrain every
// generator reads and writes, plus the tree of placed objects.
type Scene struct {
	Terrain *voxel.Set
	Root    Object
}

func NewScene() *Scene {
	return &Scene{
		Terrain: voxel.NewSet(),
		Root:    Object{Scale: 1, Imp: NewGroup()},
	}
}

// Objects returns the root group.
func (s *Scene) Objects() *Group {
	g, ok := s.Root.Imp.(*Group)
	if !ok {
		g = NewGroup()
		s.Root.Imp = g
	}
	return g
}

// Update ticks every actor in the tree once.
func (s *Scene) Update() {
	var actors []Actor
	collectActors(&s.Root, &actors)
	for _, a := range actors {
		a.Update(s)
	}
}

func collectActors(o *Object, out *[]Actor) {
	switch imp := o.Imp.(type) {
	case ActorImp:
		*out = append(*out, imp.Actor)
	case *Group:
		for _, child := range imp.Objects {
			collectActors(child, out)
		}
	}
}
