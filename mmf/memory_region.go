// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package mmf implements memory regions - mmapped areas of files
// and shared memory objects.
package mmf

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
)

// constants for memory regions.
const (
	MEM_READ_ONLY     = 0x00000001
	MEM_READ_PRIVATE  = 0x00000002
	MEM_READWRITE     = 0x00000004
	MEM_COPY_ON_WRITE = 0x00000008
)

var (
	mmapOffsetMultiple int64
)

// Mappable is an object, whose handle can be used as a file
// descriptor for mmap.
type Mappable interface {
	Fd() uintptr
}

// MemoryRegion is a mmapped area of a mappable object.
// The internal object has a finalizer set, so the region will be
// unmapped during gc. Calling Close explicitly is still preferred.
type MemoryRegion struct {
	*memoryRegion
}

// NewMemoryRegion creates a new region.
//	object - an object to mmap.
//	flag - open mode. see MEM_* constants.
//	offset - offset in bytes from the beginning of the mmaped file.
//	size - mapping size.
func NewMemoryRegion(object Mappable, flag int, offset int64, size int) (*MemoryRegion, error) {
	impl, err := newMemoryRegion(object, flag, offset, size)
	if err != nil {
		return nil, err
	}
	result := &MemoryRegion{impl}
	runtime.SetFinalizer(impl, func(region *memoryRegion) {
		region.Close()
	})
	return result, nil
}

// Close unmaps the region, so that it can no longer be used.
func (region *MemoryRegion) Close() error {
	return region.memoryRegion.Close()
}

// Data returns region's mapped data. The caller must keep the region
// alive while the data is in use.
func (region *MemoryRegion) Data() []byte {
	return region.memoryRegion.Data()
}

// Flush syncs mapped content with the file data.
func (region *MemoryRegion) Flush(async bool) error {
	return region.memoryRegion.Flush(async)
}

// Size returns mapping size.
func (region *MemoryRegion) Size() int {
	return region.memoryRegion.Size()
}

// calcMmapOffsetFixup returns a value X, so that offset - X
// is a valid mmap offset, which is typically a multiple of the
// memory page size.
func calcMmapOffsetFixup(offset int64) int64 {
	return offset - (offset/mmapOffsetMultiple)*mmapOffsetMultiple
}

// fileInfoGetter is used to obtain the size of a mappable object.
type fileInfoGetter interface {
	Stat() (os.FileInfo, error)
}

func fileSizeFromFd(f Mappable) (int64, error) {
	if f.Fd() == ^uintptr(0) {
		return 0, nil
	}
	if ig, ok := f.(fileInfoGetter); ok {
		fi, err := ig.Stat()
		if err != nil {
			return 0, err
		}
		return fi.Size(), nil
	}
	return 0, nil
}

func checkMmapSize(f Mappable, size int) (int, error) {
	if size == 0 {
		if f.Fd() == ^uintptr(0) {
			return 0, errors.New("must provide a valid file size")
		}
		if sz, err := fileSizeFromFd(f); err == nil {
			size = int(sz)
		} else {
			return 0, err
		}
	}
	return size, nil
}
