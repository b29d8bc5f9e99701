// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package allocator contains unsafe helpers for placing plain objects
// into raw memory, and for reading them back.
package allocator

import (
	"fmt"
	"reflect"
	"runtime"
	"unsafe"
)

const maxObjectSize = 128 * 1024 * 1024

// ByteSliceData returns a pointer to the data of the given byte slice.
func ByteSliceData(slice []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(slice))
}

// ByteSliceFromUnsafePointer returns a slice of bytes with the given
// length and capacity over the memory pointed to by p.
func ByteSliceFromUnsafePointer(p unsafe.Pointer, length, capacity int) []byte {
	return unsafe.Slice((*byte)(p), capacity)[:length]
}

// ObjectAddress returns a pointer to the actual data of the object.
// The object must be a pointer or a slice.
func ObjectAddress(object reflect.Value) unsafe.Pointer {
	return unsafe.Pointer(object.Pointer())
}

// ObjectSize returns the size of the object's data.
// For a slice it is the size of the entire slice contents,
// for a pointer it is the size of the pointed-to object.
func ObjectSize(object reflect.Value) int {
	if object.Kind() == reflect.Slice {
		return object.Len() * int(object.Type().Elem().Size())
	}
	return int(object.Elem().Type().Size())
}

// Alloc copies the object's data into the given memory.
// The object must be a pointer to, or a slice of plain data,
// which does not contain any references inside, so that it can be
// placed in the memory continuously.
func Alloc(memory []byte, object interface{}) error {
	value := reflect.ValueOf(object)
	if !value.IsValid() {
		return fmt.Errorf("invalid object")
	}
	if kind := value.Kind(); kind != reflect.Ptr && kind != reflect.Slice {
		return fmt.Errorf("expected a pointer or a slice")
	}
	if err := CheckObjectReferences(object); err != nil {
		return err
	}
	size := ObjectSize(value)
	if size > maxObjectSize {
		return fmt.Errorf("the object exceeds max object size of %d", maxObjectSize)
	}
	if size > len(memory) {
		return fmt.Errorf("the object is too large for the buffer")
	}
	data := ByteSliceFromUnsafePointer(ObjectAddress(value), size, size)
	copy(memory, data)
	runtime.KeepAlive(object)
	return nil
}

// CheckObjectReferences checks, if an object of the given type can be
// safely copied byte by byte. The object must not contain any reference
// types like maps, strings, channels and so on.
// Slices and pointers are allowed at the top level only.
func CheckObjectReferences(object interface{}) error {
	return checkType(reflect.ValueOf(object).Type(), 0)
}

func checkType(t reflect.Type, depth int) error {
	kind := t.Kind()
	if kind == reflect.Array {
		return checkType(t.Elem(), depth+1)
	}
	if kind == reflect.Slice || kind == reflect.Ptr {
		if depth != 0 {
			return fmt.Errorf("unexpected %s type", kind.String())
		}
		return checkType(t.Elem(), depth+1)
	}
	if kind == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if err := checkType(field.Type, depth+1); err != nil {
				return fmt.Errorf("field %s: %v", field.Name, err)
			}
		}
		return nil
	}
	return checkNumericType(kind)
}

func checkNumericType(kind reflect.Kind) error {
	if kind >= reflect.Bool && kind <= reflect.Complex128 {
		return nil
	}
	if kind == reflect.UnsafePointer {
		return nil
	}
	return fmt.Errorf("unsupported type %q", kind.String())
}

// Use ensures, that the memory pointed to by p is considered alive
// until this point, e.g. across a raw syscall.
func Use(p unsafe.Pointer) {
	runtime.KeepAlive(p)
}
