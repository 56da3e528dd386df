// Package storage saves and restores worlds as zstd-compressed snapshots.
//
// A snapshot is one zstd stream holding a JSON header line followed by a
// gob-encoded body. The header lets tools identify a file without decoding
// the body.
package storage

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"voxel-render/internal/world"

	"github.com/klauspost/compress/zstd"
)

const (
	formatName = "voxel-render/world"
	// Version is the snapshot layout written by Save.
	Version = 1
)

var (
	// ErrBadMagic means the stream is not a world snapshot.
	ErrBadMagic = errors.New("not a world snapshot")
	// ErrVersion means the snapshot layout is newer or older than supported.
	ErrVersion = errors.New("unsupported snapshot version")
)

// Header is the first line of a snapshot.
type Header struct {
	Format    string `json:"format"`
	Version   int    `json:"version"`
	ChunkSize int    `json:"chunk_size"`
	Chunks    int    `json:"chunks"`
}

type snapshotV1 struct {
	ChunkSize int
	Chunks    []chunkV1
}

type chunkV1 struct {
	X, Y, Z int
	Blocks  []byte
}

// Save writes every loaded chunk of w to out.
func Save(out io.Writer, w *world.World) error {
	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	chunks := w.Chunks()
	snap := snapshotV1{ChunkSize: w.ChunkSize(), Chunks: make([]chunkV1, 0, len(chunks))}
	for _, c := range chunks {
		blocks := c.Blocks()
		raw := make([]byte, len(blocks))
		for i, bt := range blocks {
			raw[i] = byte(bt)
		}
		snap.Chunks = append(snap.Chunks, chunkV1{X: c.X, Y: c.Y, Z: c.Z, Blocks: raw})
	}

	hb, err := json.Marshal(Header{Format: formatName, Version: Version, ChunkSize: snap.ChunkSize, Chunks: len(snap.Chunks)})
	if err != nil {
		enc.Close()
		return err
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadHeader decodes only the header of a snapshot.
func ReadHeader(in io.Reader) (Header, error) {
	dec, err := zstd.NewReader(in)
	if err != nil {
		return Header{}, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	h, _, err := readHeader(bufio.NewReader(dec))
	return h, err
}

func readHeader(br *bufio.Reader) (Header, *bufio.Reader, error) {
	var h Header
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, nil, fmt.Errorf("%w: %v", ErrBadMagic, err)
	}
	if err := json.Unmarshal(line, &h); err != nil || h.Format != formatName {
		return h, nil, ErrBadMagic
	}
	if h.Version != Version {
		return h, nil, fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}
	return h, br, nil
}

// Load restores a world written by Save. Restored chunks are dirty.
func Load(in io.Reader) (*world.World, error) {
	dec, err := zstd.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	_, br, err := readHeader(bufio.NewReaderSize(dec, 256*1024))
	if err != nil {
		return nil, err
	}
	var snap snapshotV1
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	if snap.ChunkSize <= 0 || snap.ChunkSize > world.MaxChunkSize {
		return nil, fmt.Errorf("snapshot chunk size %d outside [1, %d]", snap.ChunkSize, world.MaxChunkSize)
	}

	w := world.New(snap.ChunkSize)
	for _, sc := range snap.Chunks {
		c := world.NewChunk(sc.X, sc.Y, sc.Z, snap.ChunkSize)
		blocks := make([]world.BlockType, len(sc.Blocks))
		for i, b := range sc.Blocks {
			blocks[i] = world.BlockType(b)
		}
		if err := c.LoadBlocks(blocks); err != nil {
			return nil, err
		}
		if err := w.AddChunk(c); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// SaveFile writes a snapshot next to path and renames it into place.
func SaveFile(path string, w *world.World) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	if err := Save(tmp, w); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFile reads a snapshot from path.
func LoadFile(path string) (*world.World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	w, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return w, nil
}
