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

// MakeRef encodes a REF cell naming absolute cell index absCell. There is
// a single canonical REF representation: no per-segment or DATA_REF
// variants, per the Open Question decision recorded alongside this
// module's design notes.
func MakeRef(absCell uint32) Cell {
	return Encode(TagRef, uint16(absCell), false)
}

// AbsCell extracts the absolute cell index from a REF cell. Caller must
// have checked IsRef.
func AbsCell(c Cell) uint32 { return uint32(Decode(c).Value) }

// resolveRef validates that c is a REF and returns its absolute cell
// index, bounds-checked against the arena.
func (v *VM) resolveRef(c Cell) (uint32, error) {
	if !IsRef(c) {
		return 0, fmt.Errorf("%w: expected REF", ErrInvalidTag)
	}
	abs := AbsCell(c)
	if err := v.Arena.checkCell(abs); err != nil {
		return 0, err
	}
	return abs, nil
}

// RegionOfRef classifies a REF cell's target by arena region.
func (v *VM) RegionOfRef(c Cell) (Region, error) {
	abs, err := v.resolveRef(c)
	if err != nil {
		return regionInvalid, err
	}
	return v.Arena.RegionOf(abs), nil
}

// ReadThrough dereferences a REF cell and returns the cell it points to.
func (v *VM) ReadThrough(c Cell) (Cell, error) {
	abs, err := v.resolveRef(c)
	if err != nil {
		return 0, err
	}
	return v.Arena.ReadCell(abs)
}

// WriteThrough dereferences a REF cell and overwrites the cell it points
// to with val.
func (v *VM) WriteThrough(c Cell, val Cell) error {
	abs, err := v.resolveRef(c)
	if err != nil {
		return err
	}
	return v.Arena.WriteCell(abs, val)
}

// VarRef builds a REF cell naming the local-variable slot at bp+slot
// within the current call frame, bounds-checked against the reserved
// portion of the frame ([bp, rsp)).
func (v *VM) VarRef(slot uint16) (Cell, error) {
	abs := v.bp + uint32(slot)
	if abs >= v.rsp {
		return 0, fmt.Errorf("%w: local slot %d outside reserved frame [%d,%d)", ErrOutOfBounds, slot, v.bp, v.rsp)
	}
	return MakeRef(abs), nil
}
