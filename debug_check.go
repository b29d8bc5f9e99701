// Copyright 2017 Aleksandr Demakin. All rights reserved.

//go:build qportdebug
// +build qportdebug

package qport

import "fmt"

// checkStateConsistency panics, if the occupancy derived from the
// counters violates the port invariant. Such a violation cannot happen
// within the port's contract, it means the contract itself was broken,
// e.g. two unsynchronized writers were enqueueing into one port.
func checkStateConsistency(head, tail uint64, capacity int) {
	if tail-head > uint64(capacity) {
		panic(fmt.Sprintf("qport: corrupted port state: head=%d tail=%d capacity=%d",
			head, tail, capacity))
	}
}
