// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build darwin
// +build darwin

package shm

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"bitbucket.org/avd/go-qport/internal/allocator"

	"golang.org/x/sys/unix"
)

func doDestroyMemoryObject(path string) error {
	err := shmUnlink(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func shmName(name string) (string, error) {
	const maxDarwinNameLen = 30
	// workaround from http://www.opensource.apple.com/source/Libc/Libc-320/sys/shm_open.c
	newName := fmt.Sprintf("%s\t%d", name, unix.Geteuid())
	if len(newName) < maxDarwinNameLen {
		name = newName
	}
	return "/" + name, nil
}

func shmOpen(path string, flag int, perm os.FileMode) (*os.File, error) {
	flag |= unix.O_CLOEXEC
	fd, err := sysShmOpen(path, flag, int(perm))
	if err != nil {
		return nil, err
	}
	return os.NewFile(fd, path), nil
}

// syscalls.
// shm syscall numbers are taken from the frozen syscall package,
// golang.org/x/sys no longer provides them for darwin.

func sysShmOpen(name string, flags, mode int) (uintptr, error) {
	nameBytes, err := unix.BytePtrFromString(name)
	if err != nil {
		return 0, err
	}
	bytes := unsafe.Pointer(nameBytes)
	fd, _, errno := syscall.Syscall(syscall.SYS_SHM_OPEN, uintptr(bytes), uintptr(flags), uintptr(mode))
	allocator.Use(bytes)
	if errno != syscall.Errno(0) {
		return 0, os.NewSyscallError("SHM_OPEN", errno)
	}
	return fd, nil
}

func shmUnlink(name string) error {
	nameBytes, err := unix.BytePtrFromString(name)
	if err != nil {
		return err
	}
	bytes := unsafe.Pointer(nameBytes)
	_, _, errno := syscall.Syscall(syscall.SYS_SHM_UNLINK, uintptr(bytes), uintptr(0), uintptr(0))
	allocator.Use(bytes)
	if errno != syscall.Errno(0) {
		return os.NewSyscallError("SHM_UNLINK", errno)
	}
	return nil
}
