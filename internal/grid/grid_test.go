package grid

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"snowfall/internal/voxel"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		in    voxel.Coord
		chunk ChunkCoord
		local LocalCoord
	}{
		{voxel.Coord{X: 0, Y: 0, Z: 0}, ChunkCoord{}, LocalCoord{}},
		{voxel.Coord{X: 7, Y: 8, Z: 15}, ChunkCoord{X: 0, Y: 1, Z: 0}, LocalCoord{X: 7, Y: 0, Z: 15}},
		{voxel.Coord{X: -1, Y: -8, Z: -17}, ChunkCoord{X: -1, Y: -1, Z: -2}, LocalCoord{X: 7, Y: 0, Z: 15}},
		{voxel.Coord{X: -9, Y: 17, Z: 16}, ChunkCoord{X: -2, Y: 2, Z: 1}, LocalCoord{X: 7, Y: 1, Z: 0}},
	}
	for _, tc := range tests {
		cc, l := Split(tc.in)
		if cc != tc.chunk || l != tc.local {
			t.Fatalf("Split(%v) = %v %v, want %v %v", tc.in, cc, l, tc.chunk, tc.local)
		}
		if back := cc.World(l); back != tc.in {
			t.Fatalf("World(%v, %v) = %v, want %v", cc, l, back, tc.in)
		}
	}
}

func TestGridSetGetInSession(t *testing.T) {
	g := New()
	g.RegisterBlock(voxel.Color("stone", 50, 50, 50))
	p := voxel.Coord{X: -3, Y: 12, Z: 40}

	if !g.IsEmpty(p) {
		t.Fatalf("fresh grid voxel not empty")
	}
	cc, _ := Split(p)
	if kind, _ := g.ChunkKind(cc); kind != ChunkEmpty {
		t.Fatalf("untouched chunk kind = %v, want empty", kind)
	}

	g.Set(p, "stone")
	if got := g.Get(p).ID; got != "stone" {
		t.Fatalf("Get = %q, want stone", got)
	}
	if kind, _ := g.ChunkKind(cc); kind != ChunkFull {
		t.Fatalf("written chunk kind = %v, want full", kind)
	}

	g.Clear(p)
	if !g.IsEmpty(p) {
		t.Fatalf("voxel not empty after Clear")
	}
	g.Compact()
	if kind, _ := g.ChunkKind(cc); kind != ChunkEmpty {
		t.Fatalf("cleared chunk kind after compact = %v, want empty", kind)
	}
}

func TestGeneratedEmptyChunkCollapses(t *testing.T) {
	calls := 0
	g := New(WithGenerator(func(p voxel.Coord) string {
		calls++
		return ""
	}))
	g.Load(ChunkCoord{X: 3, Y: 3, Z: 3})
	if calls != chunkVolume {
		t.Fatalf("generator called %d times, want %d", calls, chunkVolume)
	}
	if kind, _ := g.ChunkKind(ChunkCoord{X: 3, Y: 3, Z: 3}); kind != ChunkEmpty {
		t.Fatalf("all-empty generated chunk kind = %v, want empty", kind)
	}
}

func TestGeneratedChunkDensity(t *testing.T) {
	g := New(WithGenerator(func(p voxel.Coord) string {
		switch {
		case p.Z == 0:
			return "grass"
		case p.Z < 0:
			return "dirt"
		default:
			return ""
		}
	}))
	g.RegisterBlock(voxel.Color("grass", 5, 60, 10))
	g.RegisterBlock(voxel.Color("dirt", 10, 8, 4))

	// z=0 is one layer of a chunk: 64 voxels, below the sparse limit.
	g.Load(ChunkCoord{})
	if kind, _ := g.ChunkKind(ChunkCoord{}); kind != ChunkSparse {
		t.Fatalf("surface chunk kind = %v, want sparse", kind)
	}
	g.Load(ChunkCoord{Z: -1})
	if kind, _ := g.ChunkKind(ChunkCoord{Z: -1}); kind != ChunkFull {
		t.Fatalf("solid chunk kind = %v, want full", kind)
	}
	if got := g.Get(voxel.Coord{X: 5, Y: 2, Z: 0}).ID; got != "grass" {
		t.Fatalf("surface voxel = %q, want grass", got)
	}
	if got := g.Get(voxel.Coord{X: 5, Y: 2, Z: -9}).ID; got != "dirt" {
		t.Fatalf("underground voxel = %q, want dirt", got)
	}
}

func TestSparseChunkPromotesWhenDense(t *testing.T) {
	g := New()
	g.RegisterBlock(voxel.Color("sand", 180, 200, 20))
	g.Set(voxel.Coord{}, "sand")
	g.Compact()
	if kind, _ := g.ChunkKind(ChunkCoord{}); kind != ChunkSparse {
		t.Fatalf("kind after compact = %v, want sparse", kind)
	}
	for x := 0; x < ChunkWidth; x++ {
		for y := 0; y < ChunkDepth; y++ {
			for z := 0; z < 4; z++ {
				g.Set(voxel.Coord{X: x, Y: y, Z: z}, "sand")
			}
		}
	}
	if kind, _ := g.ChunkKind(ChunkCoord{}); kind != ChunkFull {
		t.Fatalf("kind after filling = %v, want full", kind)
	}
}

func TestChunkPaletteOverflow(t *testing.T) {
	g := New()
	for i := 0; i < 40; i++ {
		g.SetBlock(voxel.Coord{X: i % ChunkWidth, Y: i / ChunkWidth, Z: 0}, voxel.Color(fmt.Sprintf("c%d", i), uint8(i), 0, 0))
	}
	c := g.chunks[ChunkCoord{}]
	if !c.palette.promoted() {
		t.Fatalf("chunk palette with %d entries did not promote", c.palette.len())
	}
	for i := 0; i < 40; i++ {
		got := g.Get(voxel.Coord{X: i % ChunkWidth, Y: i / ChunkWidth, Z: 0}).Shader
		if got != voxel.RGB(uint8(i), 0, 0) {
			t.Fatalf("voxel %d shader = %v", i, got)
		}
	}
}

func TestGridPagerRoundTrip(t *testing.T) {
	pagers := map[string]func(t *testing.T) Pager{
		"memory": func(t *testing.T) Pager { return NewMemoryPager() },
		"disk": func(t *testing.T) Pager {
			p, err := NewDiskPager(filepath.Join(t.TempDir(), "chunks.log"))
			if err != nil {
				t.Fatalf("NewDiskPager: %v", err)
			}
			return p
		},
		"sqlite": func(t *testing.T) Pager {
			p, err := OpenSQLitePager(filepath.Join(t.TempDir(), "chunks.db"))
			if err != nil {
				t.Fatalf("OpenSQLitePager: %v", err)
			}
			return p
		},
	}
	for name, open := range pagers {
		t.Run(name, func(t *testing.T) {
			pager := open(t)
			t.Cleanup(func() { pager.Close() })

			writer := New(WithPager(pager))
			writer.RegisterBlock(voxel.Color("stone", 50, 50, 50))
			writer.SetBlock(voxel.Coord{X: 1, Y: 1, Z: 1}, voxel.Color("moss", 1, 90, 1))
			writer.Set(voxel.Coord{X: 100, Y: -40, Z: 3}, "stone")
			for x := 0; x < ChunkWidth; x++ {
				for z := 0; z < ChunkHeight; z++ {
					writer.Set(voxel.Coord{X: x, Y: 4, Z: z}, "stone")
				}
			}
			n, err := writer.Flush()
			if err != nil {
				t.Fatalf("Flush: %v", err)
			}
			if n != 2 {
				t.Fatalf("flushed %d chunks, want 2", n)
			}

			// A fresh grid with a different palette order must read the same blocks.
			reader := New(WithPager(pager))
			reader.RegisterBlock(voxel.Color("other", 9, 9, 9))
			if got := reader.Get(voxel.Coord{X: 100, Y: -40, Z: 3}).ID; got != "stone" {
				t.Fatalf("reloaded voxel = %q, want stone", got)
			}
			if got := reader.Get(voxel.Coord{X: 1, Y: 1, Z: 1}).Shader; got != voxel.RGB(1, 90, 1) {
				t.Fatalf("reloaded moss shader = %v", got)
			}
			if got := reader.Get(voxel.Coord{X: 3, Y: 4, Z: 9}).ID; got != "stone" {
				t.Fatalf("reloaded wall voxel = %q, want stone", got)
			}
			if !reader.IsEmpty(voxel.Coord{X: 2, Y: 2, Z: 2}) {
				t.Fatalf("reloaded grid invented a voxel")
			}

			count := 0
			if err := pager.ForEach(func(ChunkCoord, []byte) bool { count++; return true }); err != nil {
				t.Fatalf("ForEach: %v", err)
			}
			if count != 2 {
				t.Fatalf("pager holds %d chunks, want 2", count)
			}
		})
	}
}

func TestGridUnloadAndReload(t *testing.T) {
	pager := NewMemoryPager()
	g := New(WithPager(pager))
	g.RegisterBlock(voxel.Color("stone", 50, 50, 50))
	g.Set(voxel.Coord{X: 2, Y: 2, Z: 2}, "stone")

	if err := g.Unload(ChunkCoord{}); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if g.Resident() != 0 {
		t.Fatalf("resident chunks = %d after unload", g.Resident())
	}
	if got := g.Get(voxel.Coord{X: 2, Y: 2, Z: 2}).ID; got != "stone" {
		t.Fatalf("voxel after reload = %q", got)
	}
}

func TestDiskPagerReplaysLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.log")
	p, err := NewDiskPager(path)
	if err != nil {
		t.Fatalf("NewDiskPager: %v", err)
	}
	coord := ChunkCoord{X: -4, Y: 7, Z: -1}
	if err := p.Save(coord, []byte("first")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := p.Save(coord, []byte("second")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := p.Save(ChunkCoord{}, []byte("gone")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := p.Delete(ChunkCoord{}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewDiskPager(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	data, ok, err := reopened.Load(coord)
	if err != nil || !ok || string(data) != "second" {
		t.Fatalf("Load = %q, %v, %v; want second", data, ok, err)
	}
	if _, ok, _ := reopened.Load(ChunkCoord{}); ok {
		t.Fatalf("deleted chunk still present after replay")
	}
}

func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("recovered %v, want %v", r, target)
		}
	}()
	fn()
	t.Fatalf("no panic, want %v", target)
}

func TestSetUnknownIDPanics(t *testing.T) {
	g := New()
	g.RegisterBlock(voxel.Color("stone", 50, 50, 50))
	p := voxel.Coord{X: 1, Y: 2, Z: 3}

	expectPanic(t, voxel.ErrUnknownBlock, func() { g.Set(p, "stnoe") })
	if !g.IsEmpty(p) {
		t.Fatalf("misspelled id wrote a voxel")
	}
}

func TestGeneratorUnknownIDPanics(t *testing.T) {
	calls := 0
	g := New(WithGenerator(func(p voxel.Coord) string {
		calls++
		return "snow"
	}))
	expectPanic(t, voxel.ErrUnknownBlock, func() { g.Load(ChunkCoord{}) })
	if calls != 1 {
		t.Fatalf("generator called %d times before the panic, want 1", calls)
	}
	if g.Resident() != 0 {
		t.Fatalf("failed chunk stayed resident")
	}
}

func TestCorruptStoredChunkSurfaces(t *testing.T) {
	pager := NewMemoryPager()
	cc := ChunkCoord{X: 2, Y: -1}
	garbage := []byte("not a chunk")
	if err := pager.Save(cc, garbage); err != nil {
		t.Fatalf("Save: %v", err)
	}

	g := New(WithPager(pager), WithGenerator(func(voxel.Coord) string { return "stone" }))
	g.RegisterBlock(voxel.Color("stone", 50, 50, 50))

	if _, err := g.Load(cc); !errors.Is(err, ErrCorruptChunk) {
		t.Fatalf("Load error = %v, want ErrCorruptChunk", err)
	}
	expectPanic(t, ErrCorruptChunk, func() { g.Get(cc.Origin()) })

	n, err := g.Flush()
	if err != nil || n != 0 {
		t.Fatalf("Flush = %d, %v; want nothing written", n, err)
	}
	data, ok, err := pager.Load(cc)
	if err != nil || !ok || !bytes.Equal(data, garbage) {
		t.Fatalf("stored chunk = %q, %v, %v; want the original bytes", data, ok, err)
	}
}

type failingPager struct {
	*MemoryPager
	err error
}

func (p failingPager) Load(ChunkCoord) ([]byte, bool, error) {
	return nil, false, p.err
}

func TestPagerLoadErrorSurfaces(t *testing.T) {
	readErr := errors.New("disk unavailable")
	pager := failingPager{MemoryPager: NewMemoryPager(), err: readErr}
	g := New(WithPager(pager), WithGenerator(func(voxel.Coord) string { return "stone" }))
	g.RegisterBlock(voxel.Color("stone", 50, 50, 50))

	if _, err := g.Load(ChunkCoord{}); !errors.Is(err, readErr) {
		t.Fatalf("Load error = %v, want %v", err, readErr)
	}
	if n, err := g.Flush(); err != nil || n != 0 {
		t.Fatalf("Flush = %d, %v; want nothing written", n, err)
	}
	if g.Resident() != 0 {
		t.Fatalf("chunk stayed resident after a failed read")
	}
}
