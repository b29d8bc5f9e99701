// Copyright 2017 Aleksandr Demakin. All rights reserved.

package qport

// Message is a fixed-size opaque payload of a queueing port.
// It always owns its bytes. A port copies messages in and out,
// so a Message never aliases a slot of the ring.
type Message []byte

// NewMessage makes a message of the given size, copying the data.
// It returns ErrInvalidMessageSize, if len(data) != size.
func NewMessage(data []byte, size int) (Message, error) {
	if len(data) != size {
		return nil, ErrInvalidMessageSize
	}
	result := make(Message, size)
	copy(result, data)
	return result, nil
}

// Len returns the length of the message payload.
func (m Message) Len() int {
	return len(m)
}
