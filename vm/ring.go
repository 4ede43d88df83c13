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

// A ring buffer is a LIST of capacity+2 slots. The two reserved cursor
// slots sit immediately below the header, in order toward the header:
// element 0 (immediately below the header) is readPtr, element 1 is
// writePtr. Elements 2..capacity+1 are the data slots. Both cursors are
// monotonically increasing counters, never taken modulo capacity — only
// the data-slot index is.
const (
	ringElemRead  = 0
	ringElemWrite = 1
	ringDataStart = 2
)

// RingNew bump-allocates a capacity-slot ring buffer on the global heap
// and returns a REF to it.
func (v *VM) RingNew(capacity uint16) (Cell, error) {
	payload := make([]Cell, int(capacity)+2)
	payload[ringElemRead] = EncodeNumber(0)
	payload[ringElemWrite] = EncodeNumber(0)
	for i := ringDataStart; i < len(payload); i++ {
		payload[i] = EncodeNumber(0)
	}
	return v.GPushList(payload)
}

func (v *VM) ringCursors(info ListInfo) (readPtr, writePtr uint32, capacity uint32, err error) {
	capacity = uint32(info.N) - ringDataStart
	readAddr, err := v.ElemAddr(info, ringElemRead)
	if err != nil {
		return
	}
	writeAddr, err := v.ElemAddr(info, ringElemWrite)
	if err != nil {
		return
	}
	readCell, err := v.Arena.ReadCell(readAddr)
	if err != nil {
		return
	}
	writeCell, err := v.Arena.ReadCell(writeAddr)
	if err != nil {
		return
	}
	readPtr = uint32(AsNumber(readCell))
	writePtr = uint32(AsNumber(writeCell))
	return
}

func (v *VM) setRingCursor(info ListInfo, elemIdx uint16, value uint32) error {
	addr, err := v.ElemAddr(info, elemIdx)
	if err != nil {
		return err
	}
	return v.Arena.WriteCell(addr, EncodeNumber(float32(value)))
}

// RingWrite writes val into the ring buffer resolved from target (a REF to
// the ring's LIST; a bare LIST header is rejected by ListBounds), advancing
// writePtr. Fails with ErrBufferOverflow if the buffer is full.
func (v *VM) RingWrite(target Cell, val Cell) error {
	info, err := v.ListBounds(target)
	if err != nil {
		return err
	}
	readPtr, writePtr, capacity, err := v.ringCursors(info)
	if err != nil {
		return err
	}
	if writePtr-readPtr >= capacity {
		return ErrBufferOverflow
	}
	slot := ringDataStart + (writePtr % capacity)
	addr, err := v.ElemAddr(info, uint16(slot))
	if err != nil {
		return err
	}
	if err := v.Arena.WriteCell(addr, val); err != nil {
		return err
	}
	return v.setRingCursor(info, ringElemWrite, writePtr+1)
}

// RingRead dequeues and returns the oldest unread value from the ring
// buffer resolved from target, advancing readPtr. Fails with
// ErrBufferUnderflow if the buffer is empty.
func (v *VM) RingRead(target Cell) (Cell, error) {
	info, err := v.ListBounds(target)
	if err != nil {
		return 0, err
	}
	readPtr, writePtr, capacity, err := v.ringCursors(info)
	if err != nil {
		return 0, err
	}
	if readPtr >= writePtr {
		return 0, ErrBufferUnderflow
	}
	slot := ringDataStart + (readPtr % capacity)
	addr, err := v.ElemAddr(info, uint16(slot))
	if err != nil {
		return 0, err
	}
	val, err := v.Arena.ReadCell(addr)
	if err != nil {
		return 0, err
	}
	if err := v.setRingCursor(info, ringElemRead, readPtr+1); err != nil {
		return 0, err
	}
	return val, nil
}

// RingUnwrite retracts the most recently written value (rewinding
// writePtr) and returns it, without having read it. Fails with
// ErrBufferUnderflow if the buffer is empty.
func (v *VM) RingUnwrite(target Cell) (Cell, error) {
	info, err := v.ListBounds(target)
	if err != nil {
		return 0, err
	}
	readPtr, writePtr, capacity, err := v.ringCursors(info)
	if err != nil {
		return 0, err
	}
	if writePtr <= readPtr {
		return 0, ErrBufferUnderflow
	}
	writePtr--
	slot := ringDataStart + (writePtr % capacity)
	addr, err := v.ElemAddr(info, uint16(slot))
	if err != nil {
		return 0, err
	}
	val, err := v.Arena.ReadCell(addr)
	if err != nil {
		return 0, err
	}
	if err := v.setRingCursor(info, ringElemWrite, writePtr); err != nil {
		return 0, err
	}
	return val, nil
}

// RingUnread re-queues val as the next value to be read (rewinding
// readPtr by one and writing val into that slot). Fails with
// ErrBufferOverflow if there is no room to unread further back than the
// buffer's capacity.
func (v *VM) RingUnread(target Cell, val Cell) error {
	info, err := v.ListBounds(target)
	if err != nil {
		return err
	}
	readPtr, writePtr, capacity, err := v.ringCursors(info)
	if err != nil {
		return err
	}
	if readPtr == 0 || writePtr-(readPtr-1) > capacity {
		return ErrBufferOverflow
	}
	readPtr--
	slot := ringDataStart + (readPtr % capacity)
	addr, err := v.ElemAddr(info, uint16(slot))
	if err != nil {
		return err
	}
	if err := v.Arena.WriteCell(addr, val); err != nil {
		return err
	}
	return v.setRingCursor(info, ringElemRead, readPtr)
}

// RingSize reports the number of unread values currently buffered.
func (v *VM) RingSize(target Cell) (uint32, error) {
	info, err := v.ListBounds(target)
	if err != nil {
		return 0, err
	}
	readPtr, writePtr, _, err := v.ringCursors(info)
	if err != nil {
		return 0, err
	}
	return writePtr - readPtr, nil
}

// RingIsEmpty reports whether the ring buffer has no unread values.
func (v *VM) RingIsEmpty(target Cell) (bool, error) {
	n, err := v.RingSize(target)
	return n == 0, err
}

// RingIsFull reports whether the ring buffer is at capacity.
func (v *VM) RingIsFull(target Cell) (bool, error) {
	info, err := v.ListBounds(target)
	if err != nil {
		return false, err
	}
	readPtr, writePtr, capacity, err := v.ringCursors(info)
	if err != nil {
		return false, err
	}
	return writePtr-readPtr >= capacity, nil
}
