// Copyright 2017 Aleksandr Demakin. All rights reserved.

// Package qport implements a queueing port - a bounded channel of
// fixed-size messages with strict fifo ordering, modeled after
// partition communication ports of avionics systems.
// A port keeps its messages in a pre-allocated ring of slots, which
// can live either in process-local memory, or in a shared memory
// region, so that the writer and the reader may be different processes.
// Both enqueue and dequeue never block. If the port is full or empty,
// an operation returns a temporary error immediately, and the caller
// decides how to retry.
// The default synchronization contract is single-producer/single-consumer.
// For several writers or several readers on one side use LockedPort,
// which guards every operation with an ipc locker.
package qport
