// Copyright 2017 Aleksandr Demakin. All rights reserved.

package qport

import (
	"sync/atomic"

	"bitbucket.org/avd/go-qport/internal/allocator"

	"github.com/pkg/errors"
)

// QueueingPort is a bounded fifo channel of fixed-size messages over a
// ring of pre-allocated slots. Enqueue and Dequeue never block, a full
// or an empty port is reported with a temporary error immediately.
// The port itself performs no retries, backoff is the caller's policy.
//
// Without an external locker the port must be used by at most one
// writer context and one reader context at a time. Cursor updates are
// published with atomic stores, so the contexts may be goroutines or,
// for a port on a shared memory store, different processes.
type QueueingPort struct {
	store BackingStore
	state *portState
}

// NewQueueingPort creates a port backed by process-local memory,
// allocated once from the validated config.
func NewQueueingPort(cfg Config) (*QueueingPort, error) {
	size, err := PortSize(cfg)
	if err != nil {
		return nil, err
	}
	return NewQueueingPortOn(newLocalStore(size), cfg)
}

// NewQueueingPortOn mounts a new port on the given backing store,
// initializing cursors and occupancy to zero. The store must supply
// at least PortSize(cfg) bytes at a stable address, and must outlive
// all contexts using the port.
func NewQueueingPortOn(store BackingStore, cfg Config) (*QueueingPort, error) {
	size, err := PortSize(cfg)
	if err != nil {
		return nil, err
	}
	if err = checkStore(store, size); err != nil {
		return nil, err
	}
	state := newPortState(allocator.ByteSliceData(store.Data()), cfg)
	return &QueueingPort{store: store, state: state}, nil
}

// OpenQueueingPortOn attaches to a port, which was initialized on the
// store's memory by another context.
func OpenQueueingPortOn(store BackingStore) (*QueueingPort, error) {
	if err := checkStore(store, int(portStateSize)); err != nil {
		return nil, err
	}
	state := openPortState(allocator.ByteSliceData(store.Data()))
	cfg := Config{Capacity: state.cap(), MessageSize: state.msgLen()}
	size, err := PortSize(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "the store does not hold a valid port")
	}
	if store.Size() < size {
		return nil, errors.Wrapf(ErrStoreUnavailable,
			"store of %d bytes cannot hold a port of %d bytes", store.Size(), size)
	}
	return &QueueingPort{store: store, state: state}, nil
}

func checkStore(store BackingStore, size int) error {
	if store == nil || len(store.Data()) == 0 {
		return errors.Wrap(ErrStoreUnavailable, "no store given")
	}
	if store.Size() < size {
		return errors.Wrapf(ErrStoreUnavailable,
			"store of %d bytes is too small, need %d", store.Size(), size)
	}
	return nil
}

// Enqueue copies the payload into the slot at the write cursor and
// publishes it. If the port already holds Cap() messages, it returns
// ErrQueueFull immediately, changing nothing.
func (p *QueueingPort) Enqueue(payload []byte) error {
	state := p.state
	if len(payload) != state.msgLen() {
		return ErrInvalidMessageSize
	}
	tail := atomic.LoadUint64(&state.tail)
	head := atomic.LoadUint64(&state.head)
	checkStateConsistency(head, tail, state.cap())
	if tail-head >= uint64(state.cap()) {
		return ErrQueueFull
	}
	copy(state.slot(tail%uint64(state.cap())), payload)
	// a single store publishes the cursor advance and the occupancy
	// increment, strictly after the slot contents are in place.
	atomic.StoreUint64(&state.tail, tail+1)
	return nil
}

// Dequeue copies the oldest message out, zeroes its slot and frees the
// slot for reuse. If the port is empty, it returns ErrQueueEmpty
// immediately, changing nothing.
func (p *QueueingPort) Dequeue() (Message, error) {
	state := p.state
	head := atomic.LoadUint64(&state.head)
	tail := atomic.LoadUint64(&state.tail)
	checkStateConsistency(head, tail, state.cap())
	if head == tail {
		return nil, ErrQueueEmpty
	}
	slot := state.slot(head % uint64(state.cap()))
	result := make(Message, state.msgLen())
	copy(result, slot)
	for i := range slot {
		slot[i] = 0
	}
	// the slot may not be reused until its bytes are copied out and
	// cleared, so the cursor is advanced strictly after that.
	atomic.StoreUint64(&state.head, head+1)
	return result, nil
}

// Occupancy returns the number of messages currently held.
// Under concurrent use the value is a snapshot, not a guarantee.
func (p *QueueingPort) Occupancy() int {
	head := atomic.LoadUint64(&p.state.head)
	tail := atomic.LoadUint64(&p.state.tail)
	return int(tail - head)
}

// Cap returns the maximum number of in-flight messages.
func (p *QueueingPort) Cap() int {
	return p.state.cap()
}

// MessageSize returns the fixed payload length of the port.
func (p *QueueingPort) MessageSize() int {
	return p.state.msgLen()
}

// Close releases the backing store. It must be called only after all
// writer and reader contexts have stopped issuing operations.
func (p *QueueingPort) Close() error {
	p.state = nil
	return p.store.Close()
}
