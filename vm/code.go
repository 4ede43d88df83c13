// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"fmt"
	"math"
)

// CodeSegment holds the bytecode a VM executes. It is a separate backing
// store from the arena (spec §3.1: "a separate code segment ... addressed
// independently by ip"), sized up front like the other regions so its
// byte offsets fit the 16-bit encoding MakeUserCode relies on.
type CodeSegment struct {
	bytes []byte
	len   uint32
}

func newCodeSegment(capacity uint32, initial []byte) (*CodeSegment, error) {
	if uint64(len(initial)) > uint64(capacity) {
		return nil, fmt.Errorf("%w: initial code of %d bytes exceeds capacity %d", ErrOutOfBounds, len(initial), capacity)
	}
	buf := make([]byte, capacity)
	n := copy(buf, initial)
	return &CodeSegment{bytes: buf, len: uint32(n)}, nil
}

// Len reports how many bytes of the segment are in use.
func (c *CodeSegment) Len() uint32 { return c.len }

func (c *CodeSegment) checkRange(off, width uint32) error {
	if uint64(off)+uint64(width) > uint64(c.len) {
		return fmt.Errorf("%w: code offset %d+%d outside %d-byte segment", ErrOutOfBounds, off, width, c.len)
	}
	return nil
}

// ReadU8 reads the byte at code offset off.
func (c *CodeSegment) ReadU8(off uint32) (byte, error) {
	if err := c.checkRange(off, 1); err != nil {
		return 0, err
	}
	return c.bytes[off], nil
}

// ReadU16 reads a little-endian 16-bit word at code offset off.
func (c *CodeSegment) ReadU16(off uint32) (uint16, error) {
	if err := c.checkRange(off, 2); err != nil {
		return 0, err
	}
	return uint16(c.bytes[off]) | uint16(c.bytes[off+1])<<8, nil
}

// ReadI16 reads a little-endian signed 16-bit word at code offset off.
func (c *CodeSegment) ReadI16(off uint32) (int16, error) {
	u, err := c.ReadU16(off)
	return int16(u), err
}

// ReadF32 reads a little-endian 32-bit float at code offset off.
func (c *CodeSegment) ReadF32(off uint32) (float32, error) {
	if err := c.checkRange(off, 4); err != nil {
		return 0, err
	}
	bits := uint32(c.bytes[off]) | uint32(c.bytes[off+1])<<8 | uint32(c.bytes[off+2])<<16 | uint32(c.bytes[off+3])<<24
	return math.Float32frombits(bits), nil
}

// WriteU8 appends or overwrites a byte at offset off, growing Len if off
// extends the in-use range. Used by the compiler seam's emission API.
func (c *CodeSegment) WriteU8(off uint32, b byte) error {
	if err := c.checkCapacity(off, 1); err != nil {
		return err
	}
	c.bytes[off] = b
	c.bumpLen(off, 1)
	return nil
}

// WriteU16 writes a little-endian 16-bit word at offset off.
func (c *CodeSegment) WriteU16(off uint32, v uint16) error {
	if err := c.checkCapacity(off, 2); err != nil {
		return err
	}
	c.bytes[off] = byte(v)
	c.bytes[off+1] = byte(v >> 8)
	c.bumpLen(off, 2)
	return nil
}

// WriteF32 writes a little-endian 32-bit float at offset off.
func (c *CodeSegment) WriteF32(off uint32, f float32) error {
	if err := c.checkCapacity(off, 4); err != nil {
		return err
	}
	bits := math.Float32bits(f)
	c.bytes[off] = byte(bits)
	c.bytes[off+1] = byte(bits >> 8)
	c.bytes[off+2] = byte(bits >> 16)
	c.bytes[off+3] = byte(bits >> 24)
	c.bumpLen(off, 4)
	return nil
}

func (c *CodeSegment) checkCapacity(off, width uint32) error {
	if uint64(off)+uint64(width) > uint64(len(c.bytes)) {
		return fmt.Errorf("%w: code offset %d+%d exceeds capacity %d", ErrOutOfBounds, off, width, len(c.bytes))
	}
	return nil
}

func (c *CodeSegment) bumpLen(off, width uint32) {
	if end := off + width; end > c.len {
		c.len = end
	}
}

// Bytes returns the in-use portion of the code segment, for disassembly.
func (c *CodeSegment) Bytes() []byte { return c.bytes[:c.len] }
