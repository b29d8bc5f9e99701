// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build darwin || freebsd || linux
// +build darwin freebsd linux

package shm

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

type memoryObject struct {
	file *os.File
}

func newMemoryObject(name string, flag int, perm os.FileMode) (*memoryObject, error) {
	path, err := shmName(name)
	if err != nil {
		return nil, err
	}
	file, err := shmOpen(path, flag, perm)
	if err != nil {
		return nil, err
	}
	return &memoryObject{file: file}, nil
}

func (obj *memoryObject) Destroy() error {
	if int(obj.Fd()) >= 0 {
		if err := obj.Close(); err != nil {
			return err
		}
	}
	return doDestroyMemoryObject(obj.file.Name())
}

func (obj *memoryObject) Name() string {
	result := filepath.Base(obj.file.Name())
	// on darwin the file name carries an euid suffix, see shmName.
	if runtime.GOOS == "darwin" {
		if idx := strings.LastIndex(result, "\t"); idx >= 0 {
			result = result[:idx]
		}
	}
	return result
}

func (obj *memoryObject) Close() error {
	return obj.file.Close()
}

func (obj *memoryObject) Truncate(size int64) error {
	return obj.file.Truncate(size)
}

func (obj *memoryObject) Size() int64 {
	fileInfo, err := obj.file.Stat()
	if err != nil {
		return 0
	}
	return fileInfo.Size()
}

func (obj *memoryObject) Fd() uintptr {
	return obj.file.Fd()
}

func (obj *memoryObject) Stat() (os.FileInfo, error) {
	return obj.file.Stat()
}

func destroyMemoryObject(name string) error {
	path, err := shmName(name)
	if err != nil {
		return err
	}
	return doDestroyMemoryObject(path)
}
