// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package sync implements lockers, which can guard objects shared
// by several processes.
package sync

import (
	"io"
	"os"
	"sync"
)

// IPCLocker is a minimal interface, which must be satisfied by any
// locker usable with qport objects.
type IPCLocker interface {
	sync.Locker
	io.Closer
}

func checkMutexFlags(flags int) bool {
	return flags & ^(os.O_CREATE|os.O_EXCL) == 0
}
