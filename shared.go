// Copyright 2017 Aleksandr Demakin. All rights reserved.

//go:build darwin || freebsd || linux
// +build darwin freebsd linux

package qport

import (
	"io"
	"os"

	"bitbucket.org/avd/go-qport/internal/allocator"
	"bitbucket.org/avd/go-qport/internal/helper"
	"bitbucket.org/avd/go-qport/mmf"
	"bitbucket.org/avd/go-qport/shm"
	qsync "bitbucket.org/avd/go-qport/sync"

	"github.com/pkg/errors"
)

// CreateSharedPort creates a queueing port on a shared memory region,
// so that the writer and the reader may live in different processes.
//	name - a name for the shm object.
//	flag - 0 or os.O_EXCL, to fail if the object already exists.
//	perm - object's permission bits.
//	cfg  - port capacity and message size.
// If the object already exists and O_EXCL is not given, the existing
// port is opened, and its attrs must match the config.
// The shm object is the only externally persisted artifact of the port,
// DestroySharedPort removes it.
func CreateSharedPort(name string, flag int, perm os.FileMode, cfg Config) (*QueueingPort, error) {
	size, err := PortSize(cfg)
	if err != nil {
		return nil, err
	}
	region, created, err := helper.CreateWritableRegion(name, flag|os.O_CREATE, perm, size)
	if err != nil {
		return nil, errors.Wrapf(ErrStoreUnavailable, "failed to obtain shm region: %v", err)
	}
	if created {
		port, err := NewQueueingPortOn(region, cfg)
		if err != nil {
			region.Close()
			shm.DestroyMemoryObject(name)
			return nil, err
		}
		return port, nil
	}
	port, err := OpenQueueingPortOn(region)
	if err != nil {
		region.Close()
		return nil, err
	}
	if port.Cap() != cfg.Capacity || port.MessageSize() != cfg.MessageSize {
		region.Close()
		return nil, errors.Errorf("existing port has different attrs: %d slots of %d bytes",
			port.Cap(), port.MessageSize())
	}
	return port, nil
}

// OpenSharedPort opens an existing shared port. It returns an error,
// if the port does not exist.
func OpenSharedPort(name string) (*QueueingPort, error) {
	cfg, err := SharedPortAttrs(name)
	if err != nil {
		return nil, err
	}
	size, err := PortSize(cfg)
	if err != nil {
		return nil, err
	}
	obj, err := shm.NewMemoryObject(name, os.O_RDWR, 0666)
	if err != nil {
		return nil, errors.Wrapf(ErrStoreUnavailable, "failed to open shm object: %v", err)
	}
	defer obj.Close()
	region, err := mmf.NewMemoryRegion(obj, mmf.MEM_READWRITE, 0, size)
	if err != nil {
		return nil, errors.Wrapf(ErrStoreUnavailable, "failed to map shm region: %v", err)
	}
	port, err := OpenQueueingPortOn(region)
	if err != nil {
		region.Close()
		return nil, err
	}
	return port, nil
}

// SharedPortAttrs returns capacity and message size of an existing
// shared port, read from its state header.
func SharedPortAttrs(name string) (Config, error) {
	obj, err := shm.NewMemoryObject(name, os.O_RDONLY, 0666)
	if err != nil {
		return Config{}, errors.Wrapf(ErrStoreUnavailable, "failed to open shm object: %v", err)
	}
	defer obj.Close()
	if obj.Size() < int64(portStateSize) {
		return Config{}, errors.New("shm object is too small to hold a port")
	}
	region, err := mmf.NewMemoryRegion(obj, mmf.MEM_READ_ONLY, 0, int(portStateSize))
	if err != nil {
		return Config{}, errors.Wrapf(ErrStoreUnavailable, "failed to map shm region: %v", err)
	}
	defer region.Close()
	// the header is interpreted on a copy, the mapping itself stays untouched.
	header := make([]byte, portStateSize)
	if _, err = io.ReadFull(mmf.NewMemoryRegionReader(region), header); err != nil {
		return Config{}, errors.Wrap(err, "failed to read the port header")
	}
	state := openPortState(allocator.ByteSliceData(header))
	cfg := Config{Capacity: state.cap(), MessageSize: state.msgLen()}
	if err = cfg.validate(); err != nil {
		return Config{}, errors.Wrap(err, "the shm object does not hold a valid port")
	}
	return cfg, nil
}

// DestroySharedPort permanently removes the shm object of the port.
// It must be sequenced only after all writer and reader contexts
// have stopped issuing operations.
func DestroySharedPort(name string) error {
	return shm.DestroyMemoryObject(name)
}

// CreateSharedLockedPort creates a shared port together with a
// shm-backed spin locker, for use by several writer or reader processes.
func CreateSharedLockedPort(name string, flag int, perm os.FileMode, cfg Config) (*LockedPort, error) {
	port, err := CreateSharedPort(name, flag, perm, cfg)
	if err != nil {
		return nil, err
	}
	locker, err := qsync.NewSpinMutex(portLockerName(name), flag|os.O_CREATE, perm)
	if err != nil {
		port.Close()
		return nil, errors.Wrap(err, "failed to create a locker")
	}
	return NewLockedPort(port, locker), nil
}

// OpenSharedLockedPort opens an existing shared port and its locker.
func OpenSharedLockedPort(name string) (*LockedPort, error) {
	port, err := OpenSharedPort(name)
	if err != nil {
		return nil, err
	}
	locker, err := qsync.NewSpinMutex(portLockerName(name), 0, 0666)
	if err != nil {
		port.Close()
		return nil, errors.Wrap(err, "failed to open a locker")
	}
	return NewLockedPort(port, locker), nil
}

// DestroySharedLockedPort permanently removes the port and its locker.
func DestroySharedLockedPort(name string) error {
	errLocker := qsync.DestroySpinMutex(portLockerName(name))
	if err := DestroySharedPort(name); err != nil {
		return err
	}
	return errLocker
}

func portLockerName(name string) string {
	return name + ".locker"
}
