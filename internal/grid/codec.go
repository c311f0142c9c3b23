package grid

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"

	"github.com/klauspost/compress/zstd"

	"snowfall/internal/voxel"
)

// chunkRecord is the persisted form of a chunk. Blocks are stored by value so
// a chunk can be loaded into a grid whose palette numbering differs.
type chunkRecord struct {
	Kind    ChunkKind
	Blocks  []voxel.Block
	Dense   []uint16
	Sparse  []sparseRecord
	Version uint8
}

type sparseRecord struct {
	X     uint8
	Y     uint8
	Z     uint8
	Local uint16
}

const chunkRecordVersion = 1

func encodeChunk(c *Chunk, palette *voxel.Palette) ([]byte, error) {
	rec := chunkRecord{Kind: c.kind, Version: chunkRecordVersion}
	for _, g := range c.palette.entries() {
		rec.Blocks = append(rec.Blocks, palette.Get(g))
	}
	switch c.kind {
	case ChunkFull:
		rec.Dense = c.full
	case ChunkSparse:
		c.forEachLocal(func(l LocalCoord, local uint16) {
			rec.Sparse = append(rec.Sparse, sparseRecord{X: uint8(l.X), Y: uint8(l.Y), Z: uint8(l.Z), Local: local})
		})
		sort.Slice(rec.Sparse, func(i, j int) bool {
			a, b := rec.Sparse[i], rec.Sparse[j]
			if a.X != b.X {
				return a.X < b.X
			}
			if a.Y != b.Y {
				return a.Y < b.Y
			}
			return a.Z < b.Z
		})
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(rec); err != nil {
		return nil, fmt.Errorf("encode chunk: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw.Bytes(), nil), nil
}

// decodeChunk rebuilds a chunk, resolving its blocks through palette.Ensure.
func decodeChunk(data []byte, palette *voxel.Palette) (*Chunk, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress chunk: %w", err)
	}
	var rec chunkRecord
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode chunk: %w", err)
	}
	if rec.Version != chunkRecordVersion {
		return nil, fmt.Errorf("decode chunk: unsupported record version %d", rec.Version)
	}

	c := newEmptyChunk()
	if rec.Kind == ChunkEmpty {
		return c, nil
	}
	if len(rec.Blocks) == 0 {
		return nil, fmt.Errorf("decode chunk: missing palette")
	}
	// Equivalent blocks may collapse through Ensure, so stored locals are
	// remapped rather than reused.
	remap := make([]uint16, len(rec.Blocks))
	for i, b := range rec.Blocks[1:] {
		remap[i+1] = c.palette.local(palette.Ensure(b))
	}

	c.kind = rec.Kind
	switch rec.Kind {
	case ChunkFull:
		if len(rec.Dense) != chunkVolume {
			return nil, fmt.Errorf("decode chunk: dense payload has %d entries", len(rec.Dense))
		}
		c.full = make([]uint16, chunkVolume)
		for i, v := range rec.Dense {
			if int(v) >= len(remap) {
				return nil, fmt.Errorf("decode chunk: local index %d out of range", v)
			}
			c.full[i] = remap[v]
			if remap[v] != 0 {
				c.count++
			}
		}
	case ChunkSparse:
		c.sparse = make(map[localColumn]map[uint8]uint16)
		for _, s := range rec.Sparse {
			if int(s.Local) >= len(remap) {
				return nil, fmt.Errorf("decode chunk: local index %d out of range", s.Local)
			}
			if remap[s.Local] == 0 {
				continue
			}
			key := localColumn{X: s.X, Y: s.Y}
			column, ok := c.sparse[key]
			if !ok {
				column = make(map[uint8]uint16)
				c.sparse[key] = column
			}
			column[s.Z] = remap[s.Local]
			c.count++
		}
	default:
		return nil, fmt.Errorf("decode chunk: unknown kind %d", rec.Kind)
	}
	if c.count == 0 {
		c.compact()
	}
	return c, nil
}
