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

import "fmt"

// Reserve grows the current call frame by n cells, leaving them
// zero-valued, bounds-checked against the return stack's region.
func (v *VM) Reserve(n uint16) error {
	base, size := v.Arena.Bounds(RegionReturnStack)
	if v.rsp+uint32(n) > base+size {
		return ErrReturnStackOverflow
	}
	for i := uint32(0); i < uint32(n); i++ {
		if err := v.Arena.WriteCell(v.rsp+i, 0); err != nil {
			return err
		}
	}
	v.rsp += uint32(n)
	return nil
}

// InitVar pops a scalar value off the data stack and writes it into local
// slot index slot of the current frame.
func (v *VM) InitVar(slot uint16) error {
	abs := v.bp + uint32(slot)
	if abs >= v.rsp {
		return fmt.Errorf("%w: init_var slot %d outside reserved frame", ErrOutOfBounds, slot)
	}
	val, err := v.Pop("init-var")
	if err != nil {
		return err
	}
	return v.Arena.WriteCell(abs, val)
}

// Fetch pops a REF off the data stack and pushes the value it names. If
// the target is a LIST header, the entire span (payload + header) is
// copied onto the data stack, preserving stack-native layout, rather than
// just the header cell.
func (v *VM) Fetch() error {
	ref, err := v.Pop("fetch")
	if err != nil {
		return err
	}
	abs, err := v.resolveRef(ref)
	if err != nil {
		return err
	}
	target, err := v.Arena.ReadCell(abs)
	if err != nil {
		return err
	}
	if !IsList(target) {
		return v.Push(target)
	}
	info, err := v.ListBoundsAt(abs)
	if err != nil {
		return err
	}
	span := info.Span()
	base, size := v.Arena.Bounds(RegionDataStack)
	if v.sp+span > base+size {
		return ErrStackOverflow
	}
	// The span occupies [abs-n, abs] inclusive, header last; copy it in the
	// same relative order onto the stack.
	srcBase := abs - uint32(info.N)
	if err := v.CopyCells(v.sp, srcBase, span); err != nil {
		return err
	}
	v.sp += span
	return nil
}

// Store pops a REF and a scalar value off the data stack and writes the
// value into the target. Compound (LIST) targets use UpdateCompoundLocal
// instead.
func (v *VM) Store() error {
	ref, err := v.Pop("store")
	if err != nil {
		return err
	}
	val, err := v.Pop("store")
	if err != nil {
		return err
	}
	return v.WriteThrough(ref, val)
}

// TransferToLocal pops a compound (LIST) value off the data stack —
// payload cells plus header — and moves it directly into the reserved
// local slot region starting at bp+slot, which the compiler must have
// sized to fit the value's full span via Reserve. Used to initialize a
// local whose first value is compound, instead of InitVar.
func (v *VM) TransferToLocal(slot uint16) error {
	top, err := v.Peek(0)
	if err != nil {
		return err
	}
	if !IsList(top) {
		return ErrListHeaderExpected
	}
	n := uint32(ListSlotCount(top))
	if err := v.EnsureDepth(n+1, "transfer-to-local"); err != nil {
		return err
	}
	dst := v.bp + uint32(slot)
	if dst+n+1 > v.rsp {
		return fmt.Errorf("%w: transfer_to_local slot %d too small for %d-cell value", ErrOutOfBounds, slot, n+1)
	}
	srcBase := v.sp - (n + 1)
	if err := v.CopyCells(dst, srcBase, n+1); err != nil {
		return err
	}
	v.sp -= n + 1
	return nil
}

// UpdateCompoundLocal pops a compound (LIST) value off the data stack and
// overwrites the local slot's existing span in place, without advancing
// rsp. The existing cell at bp+slot+n (the local's header position) must be
// a LIST header with the same slot count n, or ErrIncompatibleAssignment is
// returned.
func (v *VM) UpdateCompoundLocal(slot uint16) error {
	top, err := v.Peek(0)
	if err != nil {
		return err
	}
	if !IsList(top) {
		return ErrListHeaderExpected
	}
	n := uint32(ListSlotCount(top))
	if err := v.EnsureDepth(n+1, "update-compound-local"); err != nil {
		return err
	}
	// The reserved region for a compound local spans [bp+slot, bp+slot+n],
	// with its header at the topmost cell, mirroring the data stack's
	// header-at-highest-address convention (see TransferToLocal).
	base := v.bp + uint32(slot)
	headerAddr := base + n
	existing, err := v.Arena.ReadCell(headerAddr)
	if err != nil {
		return err
	}
	if !IsList(existing) || uint32(ListSlotCount(existing)) != n {
		return ErrIncompatibleAssignment
	}
	dst := base
	srcBase := v.sp - (n + 1)
	if err := v.CopyCells(dst, srcBase, n+1); err != nil {
		return err
	}
	v.sp -= n + 1
	return nil
}
