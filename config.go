// Copyright 2017 Aleksandr Demakin. All rights reserved.

package qport

import (
	"math"

	"github.com/pkg/errors"
)

const (
	// DefaultCapacity is the default number of port slots.
	DefaultCapacity = 10
	// DefaultMessageSize is the default message size in bytes.
	DefaultMessageSize = 256
)

// Config defines immutable parameters of a queueing port.
// Both values are fixed for the port's lifetime.
type Config struct {
	// Capacity is the maximum number of in-flight messages.
	Capacity int
	// MessageSize is the exact payload length in bytes.
	MessageSize int
}

// DefaultConfig returns a config with default capacity and message size.
func DefaultConfig() Config {
	return Config{Capacity: DefaultCapacity, MessageSize: DefaultMessageSize}
}

func (c Config) validate() error {
	// both values are stored in the port header as int32.
	if c.Capacity <= 0 || c.Capacity > math.MaxInt32 {
		return errors.Errorf("invalid port capacity %d", c.Capacity)
	}
	if c.MessageSize <= 0 || c.MessageSize > math.MaxInt32 {
		return errors.Errorf("invalid message size %d", c.MessageSize)
	}
	if c.MessageSize > (math.MaxInt-int(portStateSize))/c.Capacity {
		return errors.Errorf("a port of %d slots of %d bytes is too large", c.Capacity, c.MessageSize)
	}
	return nil
}

// PortSize returns the number of bytes a backing store must supply
// for a port with the given config. External store providers use it
// to size their regions.
func PortSize(c Config) (int, error) {
	if err := c.validate(); err != nil {
		return 0, err
	}
	return int(portStateSize) + c.Capacity*c.MessageSize, nil
}
