// Copyright 2017 Aleksandr Demakin. All rights reserved.

package qport

import (
	"bytes"
	"encoding/binary"
	"math"
	"runtime"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStore struct {
	data []byte
}

func (store *testStore) Data() []byte {
	return store.data
}

func (store *testStore) Size() int {
	return len(store.data)
}

func (store *testStore) Close() error {
	return nil
}

func taggedMessage(tag byte, size int) []byte {
	payload := make([]byte, size)
	for i := range payload {
		payload[i] = tag
	}
	return payload
}

func TestNewPortInvalidConfig(t *testing.T) {
	a := assert.New(t)
	_, err := NewQueueingPort(Config{Capacity: 0, MessageSize: 256})
	a.Error(err)
	_, err = NewQueueingPort(Config{Capacity: 10, MessageSize: 0})
	a.Error(err)
	_, err = NewQueueingPort(Config{Capacity: -1, MessageSize: -1})
	a.Error(err)

	// values beyond int32 would be truncated in the port header.
	tooLarge := int64(math.MaxInt32) + 1
	_, err = PortSize(Config{Capacity: int(tooLarge), MessageSize: 256})
	a.Error(err)
	_, err = PortSize(Config{Capacity: 10, MessageSize: int(tooLarge)})
	a.Error(err)
}

func TestPortAttrs(t *testing.T) {
	port, err := NewQueueingPort(DefaultConfig())
	require.NoError(t, err)
	defer port.Close()
	assert.Equal(t, DefaultCapacity, port.Cap())
	assert.Equal(t, DefaultMessageSize, port.MessageSize())
	assert.Equal(t, 0, port.Occupancy())
}

func TestEnqueueDequeueRoundTrip(t *testing.T) {
	port, err := NewQueueingPort(DefaultConfig())
	require.NoError(t, err)
	defer port.Close()

	payload := taggedMessage(1, DefaultMessageSize)
	require.NoError(t, port.Enqueue(payload))
	assert.Equal(t, 1, port.Occupancy())

	msg, err := port.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, Message(payload), msg)
	assert.Equal(t, 0, port.Occupancy())
}

func TestEnqueueInvalidSize(t *testing.T) {
	port, err := NewQueueingPort(DefaultConfig())
	require.NoError(t, err)
	defer port.Close()

	assert.Equal(t, ErrInvalidMessageSize, port.Enqueue(make([]byte, DefaultMessageSize-1)))
	assert.Equal(t, ErrInvalidMessageSize, port.Enqueue(nil))
	assert.Equal(t, 0, port.Occupancy())
}

func TestBoundaryScenario(t *testing.T) {
	a := assert.New(t)
	port, err := NewQueueingPort(Config{Capacity: 10, MessageSize: 256})
	require.NoError(t, err)
	defer port.Close()

	for i := 0; i < 10; i++ {
		a.NoError(port.Enqueue(taggedMessage(byte(i), 256)))
	}
	a.Equal(10, port.Occupancy())

	err = port.Enqueue(taggedMessage(0xAA, 256))
	a.Equal(ErrQueueFull, err)
	a.True(IsTemporary(err))
	a.Equal(10, port.Occupancy())

	for i := 0; i < 10; i++ {
		msg, err := port.Dequeue()
		if !a.NoError(err) {
			return
		}
		a.Equal(Message(taggedMessage(byte(i), 256)), msg)
	}
	a.Equal(0, port.Occupancy())

	_, err = port.Dequeue()
	a.Equal(ErrQueueEmpty, err)
	a.True(IsTemporary(err))
	a.Equal(0, port.Occupancy())

	// the port is reusable after both failures.
	a.NoError(port.Enqueue(taggedMessage(0xBB, 256)))
	msg, err := port.Dequeue()
	a.NoError(err)
	a.Equal(Message(taggedMessage(0xBB, 256)), msg)
}

func TestFIFOAcrossWrapAround(t *testing.T) {
	const msgSize = 8
	port, err := NewQueueingPort(Config{Capacity: 4, MessageSize: msgSize})
	require.NoError(t, err)
	defer port.Close()

	var enqueued, dequeued uint64
	payload := make([]byte, msgSize)
	for i := 0; i < 100; i++ {
		// vary the occupancy to move the cursors over the wrap point.
		for j := 0; j <= i%4; j++ {
			binary.LittleEndian.PutUint64(payload, enqueued)
			require.NoError(t, port.Enqueue(payload))
			enqueued++
		}
		for j := 0; j <= i%4; j++ {
			msg, err := port.Dequeue()
			require.NoError(t, err)
			require.Equal(t, dequeued, binary.LittleEndian.Uint64(msg))
			dequeued++
		}
	}
	assert.Equal(t, enqueued, dequeued)
	assert.Equal(t, 0, port.Occupancy())
}

func TestOccupancyAccounting(t *testing.T) {
	port, err := NewQueueingPort(Config{Capacity: 3, MessageSize: 4})
	require.NoError(t, err)
	defer port.Close()

	payload := []byte{1, 2, 3, 4}
	successfulEnqueues, successfulDequeues := 0, 0
	ops := []byte{'e', 'e', 'd', 'e', 'e', 'e', 'd', 'd', 'd', 'd', 'e'}
	for _, op := range ops {
		if op == 'e' {
			if port.Enqueue(payload) == nil {
				successfulEnqueues++
			}
		} else {
			if _, err := port.Dequeue(); err == nil {
				successfulDequeues++
			}
		}
		occupancy := port.Occupancy()
		require.True(t, occupancy >= 0 && occupancy <= port.Cap())
		require.Equal(t, successfulEnqueues-successfulDequeues, occupancy)
	}
}

func TestDequeueClearsSlot(t *testing.T) {
	cfg := Config{Capacity: 2, MessageSize: 16}
	size, err := PortSize(cfg)
	require.NoError(t, err)
	store := &testStore{data: make([]byte, size)}
	port, err := NewQueueingPortOn(store, cfg)
	require.NoError(t, err)
	defer port.Close()

	require.NoError(t, port.Enqueue(taggedMessage(0xFF, 16)))
	_, err = port.Dequeue()
	require.NoError(t, err)

	slots := store.data[int(portStateSize):]
	assert.Equal(t, make([]byte, len(slots)), slots, "a dequeued slot must be zeroed")
}

func TestNoSlotAliasing(t *testing.T) {
	// a message written into a previously used slot must never mix
	// with the bytes of the message dequeued from it before.
	port, err := NewQueueingPort(Config{Capacity: 1, MessageSize: 32})
	require.NoError(t, err)
	defer port.Close()

	first := taggedMessage(0x11, 32)
	second := taggedMessage(0x22, 16)
	second = append(second, taggedMessage(0x33, 16)...)

	require.NoError(t, port.Enqueue(first))
	msg, err := port.Dequeue()
	require.NoError(t, err)
	require.Equal(t, Message(first), msg)

	require.NoError(t, port.Enqueue(second))
	msg, err = port.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, Message(second), msg)
	assert.False(t, bytes.Contains(msg, []byte{0x11}))
}

func TestPortOnExternalStore(t *testing.T) {
	cfg := Config{Capacity: 4, MessageSize: 8}
	size, err := PortSize(cfg)
	require.NoError(t, err)
	store := &testStore{data: make([]byte, size)}

	writer, err := NewQueueingPortOn(store, cfg)
	require.NoError(t, err)
	reader, err := OpenQueueingPortOn(store)
	require.NoError(t, err)
	assert.Equal(t, cfg.Capacity, reader.Cap())
	assert.Equal(t, cfg.MessageSize, reader.MessageSize())

	payload := taggedMessage(7, 8)
	require.NoError(t, writer.Enqueue(payload))
	msg, err := reader.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, Message(payload), msg)
}

func TestStoreUnavailable(t *testing.T) {
	cfg := Config{Capacity: 4, MessageSize: 8}
	_, err := NewQueueingPortOn(nil, cfg)
	assert.Equal(t, ErrStoreUnavailable, errors.Cause(err))

	_, err = NewQueueingPortOn(&testStore{data: make([]byte, 8)}, cfg)
	assert.Equal(t, ErrStoreUnavailable, errors.Cause(err))

	_, err = OpenQueueingPortOn(&testStore{data: make([]byte, 8)})
	assert.Equal(t, ErrStoreUnavailable, errors.Cause(err))
}

func TestConcurrentSPSC(t *testing.T) {
	const (
		messages = 20000
		msgSize  = 8
	)
	port, err := NewQueueingPort(Config{Capacity: 16, MessageSize: msgSize})
	require.NoError(t, err)
	defer port.Close()

	done := make(chan error, 1)
	go func() {
		payload := make([]byte, msgSize)
		for i := uint64(0); i < messages; {
			binary.LittleEndian.PutUint64(payload, i)
			if err := port.Enqueue(payload); err != nil {
				if !IsTemporary(err) {
					done <- err
					return
				}
				runtime.Gosched()
				continue
			}
			i++
		}
		done <- nil
	}()

	for expected := uint64(0); expected < messages; {
		msg, err := port.Dequeue()
		if err != nil {
			if !IsTemporary(err) {
				t.Fatalf("dequeue failed: %v", err)
			}
			runtime.Gosched()
			continue
		}
		require.Equal(t, expected, binary.LittleEndian.Uint64(msg))
		expected++
	}
	require.NoError(t, <-done)
	assert.Equal(t, 0, port.Occupancy())
}

func TestConcurrentSPSCTinyRing(t *testing.T) {
	// a small capacity keeps the cursors wrapping constantly, so slot
	// addresses are recomputed for every few messages.
	const (
		messages = 50000
		msgSize  = 8
	)
	port, err := NewQueueingPort(Config{Capacity: 4, MessageSize: msgSize})
	require.NoError(t, err)
	defer port.Close()

	go func() {
		payload := make([]byte, msgSize)
		for i := uint64(0); i < messages; {
			binary.LittleEndian.PutUint64(payload, i)
			if port.Enqueue(payload) != nil {
				runtime.Gosched()
				continue
			}
			i++
		}
	}()

	for expected := uint64(0); expected < messages; {
		msg, err := port.Dequeue()
		if err != nil {
			runtime.Gosched()
			continue
		}
		require.Equal(t, expected, binary.LittleEndian.Uint64(msg))
		expected++
	}
	assert.Equal(t, 0, port.Occupancy())
}

func BenchmarkEnqueueDequeue(b *testing.B) {
	port, err := NewQueueingPort(DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	defer port.Close()
	payload := make([]byte, DefaultMessageSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := port.Enqueue(payload); err != nil {
			b.Fatal(err)
		}
		if _, err := port.Dequeue(); err != nil {
			b.Fatal(err)
		}
	}
}
