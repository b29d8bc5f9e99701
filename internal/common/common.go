// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package common contains open-mode helpers shared by qport subpackages.
package common

import (
	"fmt"
	"os"
)

// FlagsForOpen extracts creation flags from a combined open flag.
func FlagsForOpen(flag int) int {
	return flag & (os.O_CREATE | os.O_EXCL)
}

// OpenOrCreate calls the given creator in a manner, defined by the flag:
//	os.O_CREATE|os.O_EXCL - create a new object, fail, if it already exists.
//	os.O_CREATE           - open an existing object, or create a new one.
//	0                     - open an existing object, fail, if it does not exist.
// It returns true, if the object was created by this call.
func OpenOrCreate(creator func(create bool) error, flag int) (bool, error) {
	switch FlagsForOpen(flag) {
	case 0:
		return false, creator(false)
	case os.O_CREATE | os.O_EXCL:
		if err := creator(true); err != nil {
			return false, err
		}
		return true, nil
	case os.O_CREATE:
		// a race with another process creating the same object is
		// resolved by retrying both paths.
		const attempts = 16
		var err error
		for attempt := 0; attempt < attempts; attempt++ {
			if err = creator(true); !os.IsExist(err) {
				return true, err
			}
			if err = creator(false); !os.IsNotExist(err) {
				return false, err
			}
		}
		return false, err
	default:
		return false, fmt.Errorf("O_EXCL without O_CREATE is not allowed")
	}
}
