// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build darwin || freebsd || linux
// +build darwin freebsd linux

package mmf

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionReadWrite(t *testing.T) {
	file, err := os.CreateTemp("", "mmf")
	require.NoError(t, err)
	defer os.Remove(file.Name())
	defer file.Close()
	require.NoError(t, file.Truncate(1024))

	rwRegion, err := NewMemoryRegion(file, MEM_READWRITE, 0, 1024)
	require.NoError(t, err)
	defer rwRegion.Close()
	roRegion, err := NewMemoryRegion(file, MEM_READ_ONLY, 0, 1024)
	require.NoError(t, err)
	defer roRegion.Close()

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	copy(rwRegion.Data(), data)
	require.NoError(t, rwRegion.Flush(false))
	assert.Equal(t, data, roRegion.Data()[:len(data)])
	assert.Equal(t, 1024, rwRegion.Size())
}

func TestRegionReaderWriter(t *testing.T) {
	file, err := os.CreateTemp("", "mmf")
	require.NoError(t, err)
	defer os.Remove(file.Name())
	defer file.Close()
	require.NoError(t, file.Truncate(16))

	region, err := NewMemoryRegion(file, MEM_READWRITE, 0, 16)
	require.NoError(t, err)
	defer region.Close()

	writer := NewMemoryRegionWriter(region)
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	n, err := writer.WriteAt(data, 8)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	reader := NewMemoryRegionReader(region)
	read := make([]byte, len(data))
	n, err = reader.ReadAt(read, 8)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	assert.Equal(t, data, read)

	// writes past the region end are truncated.
	n, err = writer.WriteAt(data, 12)
	assert.Equal(t, 4, n)
	assert.Equal(t, io.EOF, err)
}

func TestRegionInvalidLength(t *testing.T) {
	file, err := os.CreateTemp("", "mmf")
	require.NoError(t, err)
	defer os.Remove(file.Name())
	defer file.Close()
	require.NoError(t, file.Truncate(16))

	_, err = NewMemoryRegion(file, MEM_READWRITE, 0, 1024)
	assert.Error(t, err)
}

func TestRegionInvalidMode(t *testing.T) {
	file, err := os.CreateTemp("", "mmf")
	require.NoError(t, err)
	defer os.Remove(file.Name())
	defer file.Close()
	require.NoError(t, file.Truncate(1024))

	_, err = NewMemoryRegion(file, 0x1000, 0, 1024)
	assert.Error(t, err)
}

func TestRegionCloseTwice(t *testing.T) {
	file, err := os.CreateTemp("", "mmf")
	require.NoError(t, err)
	defer os.Remove(file.Name())
	defer file.Close()
	require.NoError(t, file.Truncate(1024))

	region, err := NewMemoryRegion(file, MEM_READWRITE, 0, 1024)
	require.NoError(t, err)
	assert.NoError(t, region.Close())
	assert.NoError(t, region.Close())
}
