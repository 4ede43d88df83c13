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

// ListInfo describes a resolved LIST span: the header cell, the absolute
// cell index the header occupies, and which region it lives in. Payload
// cell k (logical index, 0-based) lives at HeaderAddr-1-span(0..k-1); use
// ElemAddr to compute it.
type ListInfo struct {
	Header     Cell
	HeaderAddr uint32
	Region     Region
	N          uint16 // slot count
}

// ListBounds resolves value as a REF to a LIST header, collapsing one level
// of REF-to-REF. A bare LIST header is not accepted: it fails with
// ErrListHeaderExpected, since the cell alone does not say where it lives
// (ListBoundsAt and ListBoundsOrSelf cover that case). The ring-buffer
// operations resolve their target through this function, so they accept
// only a REF.
func (v *VM) ListBounds(value Cell) (ListInfo, error) {
	if IsList(value) {
		// value is the header cell itself; the caller must supply where it
		// lives, which ListBounds cannot know from the cell alone. Callers
		// holding a header straight off the data stack use
		// ListBoundsAt(v.sp-1) instead.
		return ListInfo{}, fmt.Errorf("%w: bare LIST header needs ListBoundsAt for its address", ErrListHeaderExpected)
	}
	if IsRef(value) {
		abs, err := v.resolveRef(value)
		if err != nil {
			return ListInfo{}, err
		}
		header, err := v.Arena.ReadCell(abs)
		if err != nil {
			return ListInfo{}, err
		}
		// Per spec §3.4/§4.7, dereferencing collapses a single level of
		// REF-to-REF before the list-header check.
		if IsRef(header) {
			abs, err = v.resolveRef(header)
			if err != nil {
				return ListInfo{}, err
			}
			header, err = v.Arena.ReadCell(abs)
			if err != nil {
				return ListInfo{}, err
			}
		}
		if !IsList(header) {
			return ListInfo{}, ErrRefTargetNotList
		}
		return ListInfo{Header: header, HeaderAddr: abs, Region: v.Arena.RegionOf(abs), N: ListSlotCount(header)}, nil
	}
	return ListInfo{}, fmt.Errorf("%w: expected LIST or REF", ErrListHeaderExpected)
}

// ListBoundsAt resolves the LIST header known to be stored at absolute
// cell index headerAddr.
func (v *VM) ListBoundsAt(headerAddr uint32) (ListInfo, error) {
	header, err := v.Arena.ReadCell(headerAddr)
	if err != nil {
		return ListInfo{}, err
	}
	if !IsList(header) {
		return ListInfo{}, ErrListHeaderExpected
	}
	return ListInfo{Header: header, HeaderAddr: headerAddr, Region: v.Arena.RegionOf(headerAddr), N: ListSlotCount(header)}, nil
}

// Span returns the total cell count a list occupies: its n payload cells
// plus its header.
func (info ListInfo) Span() uint32 { return uint32(info.N) + 1 }

// ElemAddr returns the absolute cell index of logical element idx (0 =
// the element immediately below the header) within a list, walking
// payload cells downward from the header and accounting for nested
// compound elements' own spans.
func (v *VM) ElemAddr(info ListInfo, idx uint16) (uint32, error) {
	if idx >= info.N {
		return 0, fmt.Errorf("%w: elem %d outside %d-slot list", ErrOutOfBounds, idx, info.N)
	}
	addr := info.HeaderAddr - 1
	var walked uint16
	for walked < idx {
		cell, err := v.Arena.ReadCell(addr)
		if err != nil {
			return 0, err
		}
		span := uint32(1)
		if IsList(cell) {
			span = uint32(ListSlotCount(cell)) + 1
		}
		addr -= span
		walked++
	}
	return addr, nil
}

// DropList validates that the data stack's top cell is a LIST header and
// pops its entire span (n+1 cells) in one step.
func (v *VM) DropList() error {
	top, err := v.Peek(0)
	if err != nil {
		return err
	}
	if !IsList(top) {
		return ErrListHeaderExpected
	}
	n := uint32(ListSlotCount(top))
	if err := v.EnsureDepth(n+1, "drop-list"); err != nil {
		return err
	}
	v.sp -= n + 1
	return nil
}

// ReverseSpan reverses the order of the last spanCells cells on the data
// stack in place. Used during literal-list construction: the parser
// pushes payload in source order, reverses the span, then pushes the
// header, so logical element 0 ends up immediately below the header.
func (v *VM) ReverseSpan(spanCells uint16) error {
	n := uint32(spanCells)
	if err := v.EnsureDepth(n, "reverse-span"); err != nil {
		return err
	}
	base := v.sp - n
	for i, j := base, v.sp-1; i < j; i, j = i+1, j-1 {
		ci, err := v.Arena.ReadCell(i)
		if err != nil {
			return err
		}
		cj, err := v.Arena.ReadCell(j)
		if err != nil {
			return err
		}
		if err := v.Arena.WriteCell(i, cj); err != nil {
			return err
		}
		if err := v.Arena.WriteCell(j, ci); err != nil {
			return err
		}
	}
	return nil
}

// MakeListHeader pushes a LIST:n header cell onto the data stack. The n
// payload cells are assumed already present immediately below, in
// stack-native order (by a prior ReverseSpan or direct construction).
func (v *VM) MakeListHeader(n uint16) error {
	if err := v.EnsureDepth(uint32(n), "make-list"); err != nil {
		return err
	}
	return v.Push(MakeList(n))
}

// CopyCells copies n cells starting at src to dst within the same arena,
// choosing a direction that is safe for overlapping ranges.
func (v *VM) CopyCells(dst, src, n uint32) error {
	if dst == src || n == 0 {
		return nil
	}
	if dst < src {
		for i := uint32(0); i < n; i++ {
			c, err := v.Arena.ReadCell(src + i)
			if err != nil {
				return err
			}
			if err := v.Arena.WriteCell(dst+i, c); err != nil {
				return err
			}
		}
		return nil
	}
	for i := n; i > 0; i-- {
		c, err := v.Arena.ReadCell(src + i - 1)
		if err != nil {
			return err
		}
		if err := v.Arena.WriteCell(dst+i-1, c); err != nil {
			return err
		}
	}
	return nil
}
