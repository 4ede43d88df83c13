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

	mapset "github.com/deckarep/golang-set"
)

// The dictionary is a linked chain of 3-slot LIST entries on the global
// heap: [prevRef, payloadTagged, nameTagged]. head is the absolute cell
// index of the most recent entry's header, 0 when the chain is empty.
const (
	dictElemPrev    = 0
	dictElemPayload = 1
	dictElemName    = 2
	dictEntrySlots  = 3
)

// Define appends a new dictionary entry naming name with payload, linking
// it in front of the current head. Returns a REF to the new entry's
// header cell.
func (v *VM) Define(name string, payload Cell) (Cell, error) {
	nameIdx := v.Digest.Intern(name)
	var prev Cell
	if v.head == 0 {
		prev = Nil
	} else {
		prev = MakeRef(v.head)
	}
	ref, err := v.GPushList([]Cell{prev, payload, MakeStringCell(nameIdx)})
	if err != nil {
		return 0, err
	}
	v.head = AbsCell(ref)
	return ref, nil
}

// Lookup walks the dictionary chain from head looking for the most recent
// visible (not hidden) entry named name, returning its payload cell.
func (v *VM) Lookup(name string) (Cell, bool, error) {
	addr := v.head
	for addr != 0 {
		info, err := v.ListBoundsAt(addr)
		if err != nil {
			return 0, false, err
		}
		nameAddr, err := v.ElemAddr(info, dictElemName)
		if err != nil {
			return 0, false, err
		}
		nameCell, err := v.Arena.ReadCell(nameAddr)
		if err != nil {
			return 0, false, err
		}
		if IsStringTag(nameCell) && !Decode(nameCell).Meta {
			entryName, ok := v.Digest.Get(StringIndex(nameCell))
			if ok && entryName == name {
				payloadAddr, err := v.ElemAddr(info, dictElemPayload)
				if err != nil {
					return 0, false, err
				}
				payload, err := v.Arena.ReadCell(payloadAddr)
				if err != nil {
					return 0, false, err
				}
				return payload, true, nil
			}
		}
		prevAddr, err := v.ElemAddr(info, dictElemPrev)
		if err != nil {
			return 0, false, err
		}
		prevCell, err := v.Arena.ReadCell(prevAddr)
		if err != nil {
			return 0, false, err
		}
		if IsNil(prevCell) {
			addr = 0
			continue
		}
		if !IsRef(prevCell) {
			return 0, false, fmt.Errorf("%w: dictionary prev slot is not a REF", ErrInvariantViolation)
		}
		addr = AbsCell(prevCell)
	}
	return 0, false, nil
}

// Mark returns a bookmark for the dictionary's current head and global
// heap cursor, to be passed to a later Forget.
func (v *VM) Mark() uint32 { return v.GMark() }

// Forget rewinds the global heap to markPos and resets the dictionary
// head to whatever entry's header sits immediately below the new cursor
// (or the empty chain if markPos is the base of the global region).
func (v *VM) Forget(markPos uint32) error {
	base, _ := v.Arena.Bounds(RegionGlobal)
	if markPos < base || markPos > v.gp {
		return ErrForgetMarkInvalid
	}
	v.gp = markPos
	if markPos == base {
		v.head = 0
		return nil
	}
	newHead := markPos - 1
	if v.Debug {
		if _, err := v.ListBoundsAt(newHead); err != nil {
			return fmt.Errorf("%w: forget mark %d does not land on a dictionary entry", ErrForgetMarkInvalid, markPos)
		}
	}
	v.head = newHead
	return nil
}

// HideHead flips the meta (hidden) bit on the most recent dictionary
// entry's name cell, making it invisible to Lookup without unlinking it.
// Used by the compiler seam while a function body is being compiled, so
// a recursive call resolves to the enclosing definition rather than
// itself prematurely.
func (v *VM) HideHead() error {
	if v.head == 0 {
		return fmt.Errorf("%w: hide_head on empty dictionary", ErrForgetMarkInvalid)
	}
	info, err := v.ListBoundsAt(v.head)
	if err != nil {
		return err
	}
	nameAddr, err := v.ElemAddr(info, dictElemName)
	if err != nil {
		return err
	}
	nameCell, err := v.Arena.ReadCell(nameAddr)
	if err != nil {
		return err
	}
	return v.Arena.WriteCell(nameAddr, WithMeta(nameCell, true))
}

// UnhideHead clears the hidden bit set by HideHead.
func (v *VM) UnhideHead() error {
	if v.head == 0 {
		return fmt.Errorf("%w: unhide_head on empty dictionary", ErrForgetMarkInvalid)
	}
	info, err := v.ListBoundsAt(v.head)
	if err != nil {
		return err
	}
	nameAddr, err := v.ElemAddr(info, dictElemName)
	if err != nil {
		return err
	}
	nameCell, err := v.Arena.ReadCell(nameAddr)
	if err != nil {
		return err
	}
	return v.Arena.WriteCell(nameAddr, WithMeta(nameCell, false))
}

// Head exposes the dictionary's current head address, read-only, for
// tests and dump helpers.
func (v *VM) Head() uint32 { return v.head }

// checkDictAcyclic walks the prevRef chain with a visited set and fails
// with ErrInvariantViolation if an entry is revisited. Only run in debug
// mode (spec §5); O(chain length) per call, acceptable off the hot path.
func (v *VM) checkDictAcyclic() error {
	visited := mapset.NewSet()
	addr := v.head
	for addr != 0 {
		if visited.Contains(addr) {
			return newInvariantViolation(fmt.Sprintf("dictionary chain cycles back to entry at cell %d", addr))
		}
		visited.Add(addr)
		info, err := v.ListBoundsAt(addr)
		if err != nil {
			return err
		}
		prevAddr, err := v.ElemAddr(info, dictElemPrev)
		if err != nil {
			return err
		}
		prevCell, err := v.Arena.ReadCell(prevAddr)
		if err != nil {
			return err
		}
		if IsNil(prevCell) {
			break
		}
		if !IsRef(prevCell) {
			return newInvariantViolation("dictionary prev slot is not a REF")
		}
		addr = AbsCell(prevCell)
	}
	return nil
}
