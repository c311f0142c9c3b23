package grid

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const (
	diskOpDelete byte = 0
	diskOpSet    byte = 1

	// op(1) + x,y,z (3*4) + payload size (4)
	diskHeaderSize = 17
)

type diskRecordMeta struct {
	offset int64
	size   uint32
}

// DiskPager appends chunk records to a single log file. The latest record
// for a coordinate wins; delete records tombstone earlier writes.
type DiskPager struct {
	file    *os.File
	mu      sync.RWMutex
	records map[ChunkCoord]diskRecordMeta
}

// NewDiskPager opens (or creates) the log at path and indexes its records.
func NewDiskPager(path string) (*DiskPager, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create pager directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open chunk log: %w", err)
	}
	p := &DiskPager{
		file:    f,
		records: make(map[ChunkCoord]diskRecordMeta),
	}
	if err := p.loadIndex(); err != nil {
		f.Close()
		return nil, err
	}
	return p, nil
}

func encodeDiskHeader(op byte, coord ChunkCoord, size uint32) []byte {
	header := make([]byte, diskHeaderSize)
	header[0] = op
	binary.LittleEndian.PutUint32(header[1:5], uint32(int32(coord.X)))
	binary.LittleEndian.PutUint32(header[5:9], uint32(int32(coord.Y)))
	binary.LittleEndian.PutUint32(header[9:13], uint32(int32(coord.Z)))
	binary.LittleEndian.PutUint32(header[13:17], size)
	return header
}

func decodeDiskHeader(header []byte) (byte, ChunkCoord, uint32) {
	coord := ChunkCoord{
		X: int(int32(binary.LittleEndian.Uint32(header[1:5]))),
		Y: int(int32(binary.LittleEndian.Uint32(header[5:9]))),
		Z: int(int32(binary.LittleEndian.Uint32(header[9:13]))),
	}
	return header[0], coord, binary.LittleEndian.Uint32(header[13:17])
}

func (p *DiskPager) loadIndex() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind chunk log: %w", err)
	}

	header := make([]byte, diskHeaderSize)
	var offset int64
	for {
		if _, err := io.ReadFull(p.file, header); err != nil {
			if err == io.EOF {
				break
			}
			if err == io.ErrUnexpectedEOF {
				return fmt.Errorf("truncated chunk header: %w", err)
			}
			return fmt.Errorf("read chunk header: %w", err)
		}
		op, coord, size := decodeDiskHeader(header)
		recordOffset := offset
		offset += int64(diskHeaderSize) + int64(size)

		if _, err := p.file.Seek(int64(size), io.SeekCurrent); err != nil {
			return fmt.Errorf("seek past payload: %w", err)
		}
		if op == diskOpSet {
			p.records[coord] = diskRecordMeta{offset: recordOffset, size: size}
		} else {
			delete(p.records, coord)
		}
	}
	return nil
}

func (p *DiskPager) Load(coord ChunkCoord) ([]byte, bool, error) {
	p.mu.RLock()
	meta, ok := p.records[coord]
	p.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	payload := make([]byte, meta.size)
	if _, err := p.file.ReadAt(payload, meta.offset+diskHeaderSize); err != nil {
		return nil, false, fmt.Errorf("read chunk %v payload: %w", coord, err)
	}
	return payload, true, nil
}

func (p *DiskPager) Save(coord ChunkCoord, data []byte) error {
	header := encodeDiskHeader(diskOpSet, coord, uint32(len(data)))

	p.mu.Lock()
	defer p.mu.Unlock()

	offset, err := p.file.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("seek chunk log end: %w", err)
	}
	if _, err := p.file.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := p.file.Write(data); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	p.records[coord] = diskRecordMeta{offset: offset, size: uint32(len(data))}
	return nil
}

func (p *DiskPager) Delete(coord ChunkCoord) error {
	header := encodeDiskHeader(diskOpDelete, coord, 0)

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek chunk log end: %w", err)
	}
	if _, err := p.file.Write(header); err != nil {
		return fmt.Errorf("write delete header: %w", err)
	}
	delete(p.records, coord)
	return nil
}

func (p *DiskPager) ForEach(fn func(coord ChunkCoord, data []byte) bool) error {
	p.mu.RLock()
	coords := make([]ChunkCoord, 0, len(p.records))
	for c := range p.records {
		coords = append(coords, c)
	}
	p.mu.RUnlock()

	sortCoords(coords)
	for _, c := range coords {
		data, ok, err := p.Load(c)
		if err != nil {
			log.Printf("disk pager load chunk %v: %v", c, err)
			continue
		}
		if !ok {
			continue
		}
		if !fn(c, data) {
			break
		}
	}
	return nil
}

// Close syncs the log and closes it.
func (p *DiskPager) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.file.Sync(); err != nil {
		p.file.Close()
		return fmt.Errorf("sync chunk log: %w", err)
	}
	return p.file.Close()
}
