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

// GPush bump-allocates a single cell on the global heap and returns a REF
// to it.
func (v *VM) GPush(val Cell) (Cell, error) {
	base, size := v.Arena.Bounds(RegionGlobal)
	if v.gp >= base+size {
		return 0, ErrGlobalHeapExhausted
	}
	if err := v.Arena.WriteCell(v.gp, val); err != nil {
		return 0, err
	}
	ref := MakeRef(v.gp)
	v.gp++
	return ref, nil
}

// GPushList bump-allocates a LIST of n payload cells plus its header on
// the global heap. payload is given in logical order: payload[0] is the
// logical first element and ends up immediately below the header, and
// payload[n-1] ends up lowest. Returns a REF to the header cell.
func (v *VM) GPushList(payload []Cell) (Cell, error) {
	n := uint32(len(payload))
	base, size := v.Arena.Bounds(RegionGlobal)
	if v.gp+n+1 > base+size {
		return 0, ErrGlobalHeapExhausted
	}
	// Logical element 0 sits immediately below the header, so the payload
	// is written in reverse logical order, elem[n-1] first.
	for i := int(n) - 1; i >= 0; i-- {
		if err := v.Arena.WriteCell(v.gp, payload[i]); err != nil {
			return 0, err
		}
		v.gp++
	}
	headerAddr := v.gp
	if err := v.Arena.WriteCell(headerAddr, MakeList(uint16(n))); err != nil {
		return 0, err
	}
	v.gp++
	return MakeRef(headerAddr), nil
}

// GMark returns a bookmark for the current global-heap cursor, to be
// passed to a later Forget (dictionary) or global-heap rewind.
func (v *VM) GMark() uint32 { return v.gp }
