// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package shm implements shared memory objects, which can be mmapped
// into the address space of several processes.
package shm

import (
	"os"
	"runtime"

	"bitbucket.org/avd/go-qport/internal/common"

	"github.com/pkg/errors"
)

// SharedMemoryObject is the minimal interface of a shared memory object.
type SharedMemoryObject interface {
	Name() string
	Size() int64
	Truncate(size int64) error
	Fd() uintptr
	Close() error
	Destroy() error
}

// MemoryObject represents an object, which can be used to map shared
// memory regions into the process' address space.
type MemoryObject struct {
	*memoryObject
}

var (
	_ SharedMemoryObject = (*MemoryObject)(nil)
)

// NewMemoryObject creates a new shared memory object.
//	name - a name of the object. should not contain '/' and exceed 255 symbols.
//	flag - os.O_* flags, as for os.OpenFile.
//	perm - file's mode and permission bits.
func NewMemoryObject(name string, flag int, perm os.FileMode) (*MemoryObject, error) {
	impl, err := newMemoryObject(name, flag, perm)
	if err != nil {
		return nil, err
	}
	result := &MemoryObject{impl}
	runtime.SetFinalizer(impl, func(memObject *memoryObject) {
		memObject.Close()
	})
	return result, nil
}

// NewMemoryObjectSize opens or creates a shared memory object,
// truncating it to the given size on creation.
//	name - object name.
//	flag - 0, or a combination of os.O_CREATE and os.O_EXCL.
//	perm - file's mode and permission bits.
//	size - object size.
// It returns the object and a flag, whether the object was created
// by this call.
func NewMemoryObjectSize(name string, flag int, perm os.FileMode, size int64) (*MemoryObject, bool, error) {
	var obj *MemoryObject
	creator := func(create bool) error {
		creatorFlag := os.O_RDWR
		if create {
			creatorFlag |= os.O_CREATE | os.O_EXCL
		}
		var creatorErr error
		obj, creatorErr = NewMemoryObject(name, creatorFlag, perm)
		if creatorErr == nil && create && size > 0 {
			if creatorErr = obj.Truncate(size); creatorErr != nil {
				obj.Destroy()
				obj = nil
			}
		}
		return creatorErr
	}
	created, err := common.OpenOrCreate(creator, common.FlagsForOpen(flag))
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to open/create shm object")
	}
	return obj, created, nil
}

// DestroyMemoryObject permanently removes the object with the given name.
// It returns nil, if the object does not exist.
func DestroyMemoryObject(name string) error {
	return destroyMemoryObject(name)
}
