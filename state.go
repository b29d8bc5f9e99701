// Copyright 2017 Aleksandr Demakin. All rights reserved.

package qport

import (
	"sync/atomic"
	"unsafe"

	"bitbucket.org/avd/go-qport/internal/allocator"
)

const (
	cacheLineSize = 64

	// message slots begin right at the dummy array,
	// the padding of the full struct size is not used.
	portStateSize = unsafe.Offsetof(portState{}.dummyDataArray)
)

// portState is the synchronization metadata of a port. It is placed at
// the beginning of the backing store, message slots follow it immediately,
// so both live in the same region and share its lifetime.
// head and tail are monotonic slot counters. The write cursor is
// tail % capacity, the read cursor is head % capacity, and the occupancy
// is tail - head. Deriving all three values from two counters lets a
// single atomic store publish a cursor advance together with the matching
// occupancy change, there is no separate count to get out of sync.
// The counters live on different cache lines to avoid false sharing
// between the writer and the reader.
type portState struct {
	capacity       int32
	msgSize        int32
	_              [cacheLineSize - 8]byte
	tail           uint64 // the next slot to write. advanced by the producer only.
	_              [cacheLineSize - 8]byte
	head           uint64 // the next slot to read. advanced by the consumer only.
	_              [cacheLineSize - 8]byte
	dummyDataArray [0]byte
}

// newPortState initializes port metadata in the given memory.
func newPortState(raw unsafe.Pointer, cfg Config) *portState {
	state := (*portState)(raw)
	state.capacity = int32(cfg.Capacity)
	state.msgSize = int32(cfg.MessageSize)
	atomic.StoreUint64(&state.tail, 0)
	atomic.StoreUint64(&state.head, 0)
	return state
}

// openPortState interprets the given memory as port metadata,
// initialized earlier by another port instance.
func openPortState(raw unsafe.Pointer) *portState {
	return (*portState)(raw)
}

func (state *portState) cap() int {
	return int(state.capacity)
}

func (state *portState) msgLen() int {
	return int(state.msgSize)
}

// slot returns the memory of the physical slot with the given index.
// The index must have been taken modulo capacity by the caller.
func (state *portState) slot(idx uint64) []byte {
	data := unsafe.Add(unsafe.Pointer(&state.dummyDataArray), int(idx)*int(state.msgSize))
	return allocator.ByteSliceFromUnsafePointer(data, int(state.msgSize), int(state.msgSize))
}
