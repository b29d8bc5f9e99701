// Copyright 2017 Aleksandr Demakin. All rights reserved.

package qport

import "io"

// BackingStore supplies the byte region, which holds the state and the
// message slots of a port. The region must keep a stable address and
// must outlive every writer and reader context of the port.
// mmf.MemoryRegion satisfies the interface, so a port can be mounted
// on any mmapped object directly.
type BackingStore interface {
	// Data returns the region's memory.
	Data() []byte
	// Size returns the length of the region in bytes.
	Size() int
	io.Closer
}

// localStore is a process-local backing store,
// allocated once at port construction.
type localStore struct {
	data []byte
}

func newLocalStore(size int) *localStore {
	return &localStore{data: make([]byte, size)}
}

func (store *localStore) Data() []byte {
	return store.data
}

func (store *localStore) Size() int {
	return len(store.data)
}

func (store *localStore) Close() error {
	store.data = nil
	return nil
}
