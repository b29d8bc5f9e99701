// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build darwin || freebsd || linux
// +build darwin freebsd linux

package sync

import (
	"os"
	"runtime"
	"sync/atomic"
	"unsafe"

	"bitbucket.org/avd/go-qport/internal/allocator"
	"bitbucket.org/avd/go-qport/internal/helper"
	"bitbucket.org/avd/go-qport/mmf"
	"bitbucket.org/avd/go-qport/shm"

	"github.com/pkg/errors"
)

type spinMutex struct {
	value uint32
}

// Lock locks the mutex, waiting in a busy loop, if needed.
func (spin *spinMutex) Lock() {
	for !spin.TryLock() {
		runtime.Gosched()
	}
}

// Unlock releases the mutex.
func (spin *spinMutex) Unlock() {
	atomic.StoreUint32(&spin.value, 0)
}

// TryLock makes one attempt to lock the mutex.
// It returns true on success and false otherwise.
func (spin *spinMutex) TryLock() bool {
	return atomic.CompareAndSwapUint32(&spin.value, 0, 1)
}

// SpinMutex is a synchronization object, which performs a busy wait
// loop. Its state lives in a shared memory region, so the mutex can
// guard objects, which are used by several processes.
type SpinMutex struct {
	*spinMutex
	region *mmf.MemoryRegion
	name   string
}

// NewSpinMutex creates or opens a spin mutex.
//	name - object name.
//	flag - 0, or a combination of os.O_CREATE and os.O_EXCL.
//	perm - object's permission bits.
func NewSpinMutex(name string, flag int, perm os.FileMode) (*SpinMutex, error) {
	if !checkMutexFlags(flag) {
		return nil, errors.New("invalid open flags")
	}
	name = spinName(name)
	size := int(unsafe.Sizeof(spinMutex{}))
	region, created, err := helper.CreateWritableRegion(name, flag, perm, size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to obtain shm region")
	}
	if created {
		if err = allocator.Alloc(region.Data(), &spinMutex{}); err != nil {
			region.Close()
			shm.DestroyMemoryObject(name)
			return nil, errors.Wrap(err, "failed to place mutex into shared memory")
		}
	}
	m := (*spinMutex)(allocator.ByteSliceData(region.Data()))
	return &SpinMutex{spinMutex: m, region: region, name: name}, nil
}

// Close indicates, that the object is no longer in use,
// and that the underlying resources can be freed.
func (spin *SpinMutex) Close() error {
	return spin.region.Close()
}

// Destroy removes the mutex object permanently.
func (spin *SpinMutex) Destroy() error {
	if err := spin.Close(); err != nil {
		return err
	}
	spin.region = nil
	err := shm.DestroyMemoryObject(spin.name)
	spin.name = ""
	return err
}

// DestroySpinMutex removes a mutex object with the given name.
func DestroySpinMutex(name string) error {
	return shm.DestroyMemoryObject(spinName(name))
}

func spinName(name string) string {
	return "go-qport.spin." + name
}
