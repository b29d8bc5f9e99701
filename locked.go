// Copyright 2017 Aleksandr Demakin. All rights reserved.

package qport

import (
	qsync "bitbucket.org/avd/go-qport/sync"
)

// LockedPort guards every operation of a port with a locker, making the
// whole check-copy-advance sequence one critical section. This is the
// tier for setups with several writers or several readers on one side,
// where the bare port's single-producer/single-consumer contract does
// not hold. Operations are still non-blocking with respect to capacity:
// a full or an empty port is reported with a temporary error.
type LockedPort struct {
	port   *QueueingPort
	locker qsync.IPCLocker
}

// NewLockedPort wraps the given port. The locker must be shared by all
// contexts using the port: an InprocMutex for goroutines of one process,
// a SpinMutex for several processes.
func NewLockedPort(port *QueueingPort, locker qsync.IPCLocker) *LockedPort {
	return &LockedPort{port: port, locker: locker}
}

// Enqueue copies the payload into the next free slot, or returns
// ErrQueueFull, holding the locker for the whole operation.
func (p *LockedPort) Enqueue(payload []byte) error {
	p.locker.Lock()
	err := p.port.Enqueue(payload)
	p.locker.Unlock()
	return err
}

// Dequeue removes the oldest message, or returns ErrQueueEmpty,
// holding the locker for the whole operation.
func (p *LockedPort) Dequeue() (Message, error) {
	p.locker.Lock()
	result, err := p.port.Dequeue()
	p.locker.Unlock()
	return result, err
}

// Occupancy returns the number of messages currently held.
func (p *LockedPort) Occupancy() int {
	p.locker.Lock()
	result := p.port.Occupancy()
	p.locker.Unlock()
	return result
}

// Cap returns the maximum number of in-flight messages.
func (p *LockedPort) Cap() int {
	return p.port.Cap()
}

// MessageSize returns the fixed payload length of the port.
func (p *LockedPort) MessageSize() int {
	return p.port.MessageSize()
}

// Close closes the locker and the underlying port.
func (p *LockedPort) Close() error {
	errLocker := p.locker.Close()
	if errPort := p.port.Close(); errPort != nil {
		return errPort
	}
	return errLocker
}
