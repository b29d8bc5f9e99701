// Copyright 2017 Aleksandr Demakin. All rights reserved.

package sync

import "sync"

// inprocMutex adapts sync.Mutex to the IPCLocker interface for lockers,
// which are shared by goroutines of a single process only.
type inprocMutex struct {
	sync.Mutex
}

// NewInprocMutex returns a locker usable by goroutines of one process.
func NewInprocMutex() IPCLocker {
	return &inprocMutex{}
}

func (m *inprocMutex) Close() error {
	return nil
}
