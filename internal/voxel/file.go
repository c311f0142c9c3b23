package voxel

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// FileMagic prefixes every persisted voxel set.
const FileMagic = "SNOWVSET"

// FileVersion is the only payload layout this package reads and writes.
var FileVersion = [4]uint16{0, 1, 0, 0}

var (
	// ErrFileHeader reports a file that does not start with FileMagic.
	ErrFileHeader = errors.New("invalid voxel set file header")
	// ErrFileVersion reports a header whose version is not FileVersion.
	ErrFileVersion = errors.New("unsupported voxel set file version")
)

const fileHeaderSize = len(FileMagic) + 4*2

type setPayload struct {
	Palette []Block
	Columns []columnRecord
}

type columnRecord struct {
	X       int32
	Y       int32
	Z       []int32
	Indices []uint16
}

// MarshalBinary encodes the set as header + zstd(gob payload). Columns and
// z entries are written in sorted order so equal sets encode to equal bytes.
func (s *Set) MarshalBinary() ([]byte, error) {
	payload := setPayload{Palette: s.palette.Blocks()}
	for _, col := range s.sortedColumns() {
		column := s.data[col]
		rec := columnRecord{X: int32(col.X), Y: int32(col.Y)}
		for _, z := range sortedZ(column) {
			if column[z] == 0 {
				continue
			}
			rec.Z = append(rec.Z, int32(z))
			rec.Indices = append(rec.Indices, uint16(column[z]))
		}
		if len(rec.Z) > 0 {
			payload.Columns = append(payload.Columns, rec)
		}
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode voxel set: %w", err)
	}
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()

	out := make([]byte, fileHeaderSize, fileHeaderSize+raw.Len()/2)
	copy(out, FileMagic)
	for i, v := range FileVersion {
		binary.LittleEndian.PutUint16(out[len(FileMagic)+i*2:], v)
	}
	return enc.EncodeAll(raw.Bytes(), out), nil
}

// UnmarshalBinary replaces the set contents with the decoded data. Header or
// version mismatches return ErrFileHeader or ErrFileVersion.
func (s *Set) UnmarshalBinary(data []byte) error {
	if len(data) < len(FileMagic) || string(data[:len(FileMagic)]) != FileMagic {
		n := min(len(data), len(FileMagic))
		return fmt.Errorf("%w: %q", ErrFileHeader, data[:n])
	}
	if len(data) < fileHeaderSize {
		return fmt.Errorf("%w: truncated version", ErrFileVersion)
	}
	var version [4]uint16
	for i := range version {
		version[i] = binary.LittleEndian.Uint16(data[len(FileMagic)+i*2:])
	}
	if version != FileVersion {
		return fmt.Errorf("%w: %d.%d.%d.%d", ErrFileVersion, version[0], version[1], version[2], version[3])
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(data[fileHeaderSize:], nil)
	if err != nil {
		return fmt.Errorf("decompress voxel set: %w", err)
	}

	var payload setPayload
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&payload); err != nil {
		return fmt.Errorf("decode voxel set: %w", err)
	}
	if len(payload.Palette) == 0 || !payload.Palette[0].IsEmpty() {
		return fmt.Errorf("decode voxel set: palette entry 0 is not empty")
	}

	columns := make(map[Column]map[int]Index, len(payload.Columns))
	for _, rec := range payload.Columns {
		if len(rec.Z) != len(rec.Indices) {
			return fmt.Errorf("decode voxel set: column (%d,%d) length mismatch", rec.X, rec.Y)
		}
		column := make(map[int]Index, len(rec.Z))
		for i, z := range rec.Z {
			idx := rec.Indices[i]
			if int(idx) >= len(payload.Palette) {
				return fmt.Errorf("decode voxel set: index %d out of palette range", idx)
			}
			if idx != 0 {
				column[int(z)] = Index(idx)
			}
		}
		if len(column) > 0 {
			columns[Column{X: int(rec.X), Y: int(rec.Y)}] = column
		}
	}
	s.palette = &Palette{blocks: payload.Palette}
	s.data = columns
	return nil
}

// WriteTo writes the encoded set to w.
func (s *Set) WriteTo(w io.Writer) (int64, error) {
	data, err := s.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadSet decodes a set from r.
func ReadSet(r io.Reader) (*Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read voxel set: %w", err)
	}
	s := NewSet()
	if err := s.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveFile writes the set to path, creating parent directories.
func (s *Set) SaveFile(path string) error {
	data, err := s.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write voxel set: %w", err)
	}
	return nil
}

// LoadFile reads a set written by SaveFile.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open voxel set: %w", err)
	}
	defer f.Close()
	return ReadSet(f)
}
