package voxel

import (
	"errors"
	"testing"
)

func newTestSet() *Set {
	s := NewSet()
	s.RegisterBlock(Color("dirt", 10, 8, 4))
	s.RegisterBlock(Color("grass", 5, 60, 10))
	return s
}

func TestSetColumnEmptiness(t *testing.T) {
	s := newTestSet()
	p := Coord{X: 3, Y: -2, Z: 7}

	if !s.IsEmpty(p) {
		t.Fatalf("unwritten voxel reported non-empty")
	}
	if _, ok := s.HeightAt(p.X, p.Y); ok {
		t.Fatalf("HeightAt on unwritten column returned data")
	}

	s.SetVoxel(p, "dirt")
	if s.IsEmpty(p) {
		t.Fatalf("voxel empty after SetVoxel")
	}
	s.ClearVoxel(p)
	if !s.IsEmpty(p) {
		t.Fatalf("voxel non-empty after ClearVoxel")
	}
	if _, ok := s.HeightAt(p.X, p.Y); ok {
		t.Fatalf("HeightAt returned data after the only voxel was cleared")
	}

	s.SetVoxel(p, "empty")
	if !s.IsEmpty(p) {
		t.Fatalf("setting the empty id stored a voxel")
	}
}

func TestSetHeightAndTopBlock(t *testing.T) {
	s := newTestSet()
	for z := 0; z <= 4; z++ {
		s.SetVoxel(Coord{X: 1, Y: 1, Z: z}, "dirt")
	}
	s.SetVoxel(Coord{X: 1, Y: 1, Z: 5}, "grass")

	h, ok := s.HeightAt(1, 1)
	if !ok || h != 5 {
		t.Fatalf("HeightAt = %d, %v; want 5, true", h, ok)
	}
	top, ok := s.TopBlockAt(1, 1)
	if !ok || top.ID != "grass" {
		t.Fatalf("TopBlockAt = %+v, %v; want grass", top, ok)
	}

	s.ClearVoxel(Coord{X: 1, Y: 1, Z: 5})
	if h, _ := s.HeightAt(1, 1); h != 4 {
		t.Fatalf("HeightAt after clear = %d, want 4", h)
	}
}

func TestSetModifyVoxelReusesVariants(t *testing.T) {
	s := newTestSet()
	for x := 0; x < 10; x++ {
		s.SetVoxel(Coord{X: x}, "grass")
	}
	before := s.Palette().Len()
	for round := 0; round < 3; round++ {
		for x := 0; x < 10; x++ {
			s.ModifyVoxel(Coord{X: x}, func(b Block) Block {
				return b.Variant(func(b *Block) { b.Occupied = true })
			})
		}
	}
	if got := s.Palette().Len(); got != before+1 {
		t.Fatalf("palette grew to %d entries, want %d", got, before+1)
	}
	if !s.Get(Coord{X: 9}).Occupied {
		t.Fatalf("modified voxel not occupied")
	}
}

func TestSetBoundsAndForEach(t *testing.T) {
	s := newTestSet()
	if _, ok := s.Bounds(); ok {
		t.Fatalf("empty set reported bounds")
	}
	points := []Coord{{X: -3, Y: 2, Z: 1}, {X: 4, Y: -1, Z: 9}, {X: 0, Y: 0, Z: -2}}
	for _, p := range points {
		s.SetVoxel(p, "dirt")
	}
	box, ok := s.Bounds()
	if !ok {
		t.Fatalf("Bounds returned no data")
	}
	want := Box{Min: Coord{X: -3, Y: -1, Z: -2}, Max: Coord{X: 4, Y: 2, Z: 9}}
	if box != want {
		t.Fatalf("Bounds = %+v, want %+v", box, want)
	}

	var visited []Coord
	s.ForEach(func(p Coord, b Block) bool {
		visited = append(visited, p)
		return true
	})
	if len(visited) != len(points) || s.Len() != len(points) {
		t.Fatalf("visited %d voxels, Len %d, want %d", len(visited), s.Len(), len(points))
	}
	if visited[0] != (Coord{X: -3, Y: 2, Z: 1}) {
		t.Fatalf("ForEach not ordered by x first: %+v", visited)
	}
}

func TestSetIndexPanicsOnForeignHandle(t *testing.T) {
	s := newTestSet()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for index outside the palette")
		}
	}()
	s.SetIndex(Coord{}, Index(99))
}

func TestSetVoxelUnknownIDPanics(t *testing.T) {
	s := newTestSet()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrUnknownBlock) {
			t.Fatalf("recovered %v, want ErrUnknownBlock", r)
		}
		if !s.IsEmpty(Coord{}) {
			t.Fatalf("unknown id wrote a voxel")
		}
	}()
	s.SetVoxel(Coord{}, "drit")
}
