// Package pac reads the flat PAC archive container.
//
// An archive opens with a "PAC " magic and a 64-bit entry count; the
// entry table sits at a fixed offset and holds a NUL-padded name plus
// the byte length and absolute offset of each stored file. Entries are
// raw byte ranges, never compressed by the container itself.
//
// The API follows archive/zip: NewReader parses a directory from an
// io.ReaderAt, OpenReader owns the backing file.
package pac

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrFormat is returned when the bytes at hand are not a PAC archive.
var ErrFormat = errors.New("pac: not a valid archive")

const (
	magic       = "PAC "
	countOffset = 8
	tableOffset = 0x0804
	nameSize    = 32
	entrySize   = nameSize + 8
)

// Entry is a single named byte range inside an archive. Names are
// stored lower-cased; base image lookups elsewhere rely on that.
type Entry struct {
	Name   string
	Offset int64
	Size   int64

	r io.ReaderAt
}

// Open returns a fresh reader over the entry's bytes. An entry whose
// range runs past the end of the archive reads short.
func (e *Entry) Open() *io.SectionReader {
	return io.NewSectionReader(e.r, e.Offset, e.Size)
}

// Reader holds a parsed archive directory. Entries keep table order.
type Reader struct {
	Entries []*Entry
}

// NewReader parses the archive directory from r, which must span size
// bytes.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	var head [16]byte
	if _, err := r.ReadAt(head[:], 0); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrFormat, err)
	}
	if string(head[:4]) != magic {
		return nil, fmt.Errorf("%w: magic % x", ErrFormat, head[:4])
	}
	count := binary.LittleEndian.Uint64(head[countOffset:])
	if count == 0 {
		return &Reader{}, nil
	}
	var maxEntries uint64
	if size > tableOffset {
		maxEntries = uint64(size-tableOffset) / entrySize
	}
	if count > maxEntries {
		return nil, fmt.Errorf("%w: %d entries do not fit in %d bytes", ErrFormat, count, size)
	}

	table := make([]byte, int(count)*entrySize)
	if _, err := r.ReadAt(table, tableOffset); err != nil {
		return nil, fmt.Errorf("%w: reading entry table: %w", ErrFormat, err)
	}
	entries := make([]*Entry, 0, count)
	for i := 0; i < int(count); i++ {
		rec := table[i*entrySize : (i+1)*entrySize]
		name := rec[:nameSize]
		if j := bytes.IndexByte(name, 0); j >= 0 {
			name = name[:j]
		}
		entries = append(entries, &Entry{
			Name:   strings.ToLower(string(name)),
			Size:   int64(binary.LittleEndian.Uint32(rec[nameSize:])),
			Offset: int64(binary.LittleEndian.Uint32(rec[nameSize+4:])),
			r:      r,
		})
	}
	return &Reader{Entries: entries}, nil
}

// A ReadCloser is a Reader that owns the backing file.
type ReadCloser struct {
	f *os.File
	Reader
}

// OpenReader opens the archive at path and parses its directory.
func OpenReader(path string) (*ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	r, err := NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	return &ReadCloser{f: f, Reader: *r}, nil
}

// Close releases the archive file.
func (rc *ReadCloser) Close() error {
	return rc.f.Close()
}
