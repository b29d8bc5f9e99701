// Copyright 2016 Aleksandr Demakin. All rights reserved.

package mmf

import (
	"io"
)

// MemoryRegionReader reads bytes out of a shared memory region, so that
// the caller works on its own copy of the data, not on the mapping.
// It holds a reference to the region, so the latter can't be gc'ed.
type MemoryRegionReader struct {
	region *MemoryRegion
	pos    int64
}

// NewMemoryRegionReader creates a new reader for the given region.
func NewMemoryRegionReader(region *MemoryRegion) *MemoryRegionReader {
	return &MemoryRegionReader{region: region}
}

// ReadAt is to implement io.ReaderAt.
func (r *MemoryRegionReader) ReadAt(p []byte, off int64) (n int, err error) {
	n = copyAt(p, r.region.Data(), off, false)
	if n < len(p) {
		err = io.EOF
	}
	return
}

// Read is to implement io.Reader.
func (r *MemoryRegionReader) Read(p []byte) (n int, err error) {
	n, err = r.ReadAt(p, r.pos)
	r.pos += int64(n)
	return n, err
}

// MemoryRegionWriter writes bytes into a shared memory region.
// It holds a reference to the region, so the latter can't be gc'ed.
type MemoryRegionWriter struct {
	region *MemoryRegion
	pos    int64
}

// NewMemoryRegionWriter creates a new writer for the given region.
func NewMemoryRegionWriter(region *MemoryRegion) *MemoryRegionWriter {
	return &MemoryRegionWriter{region: region}
}

// WriteAt is to implement io.WriterAt.
func (w *MemoryRegionWriter) WriteAt(p []byte, off int64) (n int, err error) {
	n = copyAt(p, w.region.Data(), off, true)
	if n < len(p) {
		err = io.EOF
	}
	return
}

// Write is to implement io.Writer.
func (w *MemoryRegionWriter) Write(p []byte) (n int, err error) {
	n, err = w.WriteAt(p, w.pos)
	w.pos += int64(n)
	return n, err
}

// copyAt copies between a buffer and region data at the given offset,
// truncating the transfer at the region end.
func copyAt(buf, data []byte, off int64, toRegion bool) int {
	if off < 0 || off >= int64(len(data)) {
		return 0
	}
	if toRegion {
		return copy(data[off:], buf)
	}
	return copy(buf, data[off:])
}
