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

// Push places v on top of the data stack.
func (v *VM) Push(val Cell) error {
	_, size := v.Arena.Bounds(RegionDataStack)
	base, _ := v.Arena.Bounds(RegionDataStack)
	if v.sp >= base+size {
		return ErrStackOverflow
	}
	if err := v.Arena.WriteCell(v.sp, val); err != nil {
		return err
	}
	v.sp++
	return nil
}

// Pop removes and returns the top of the data stack.
func (v *VM) Pop(opname string) (Cell, error) {
	if v.Depth() == 0 {
		return 0, newStackUnderflow(opname, v.GetStackData())
	}
	v.sp--
	return v.Arena.ReadCell(v.sp)
}

// Peek returns the cell k cells below the top (k=0 is the top) without
// popping it.
func (v *VM) Peek(k uint32) (Cell, error) {
	if v.Depth() <= k {
		return 0, newStackUnderflow("peek", v.GetStackData())
	}
	return v.Arena.ReadCell(v.sp - 1 - k)
}

// Depth reports the number of cells currently on the data stack.
func (v *VM) Depth() uint32 {
	base, _ := v.Arena.Bounds(RegionDataStack)
	return v.sp - base
}

// EnsureDepth returns a StackError wrapping ErrStackUnderflow if the data
// stack holds fewer than n cells, naming opname in the error per spec
// §4.5's ensure_depth(n, opname) contract.
func (v *VM) EnsureDepth(n uint32, opname string) error {
	if v.Depth() < n {
		return newStackUnderflow(opname, v.GetStackData())
	}
	return nil
}

// GetStackData snapshots the data stack bottom-to-top. Used by tests and
// by error reporting (spec §4.5's test seam).
func (v *VM) GetStackData() []Cell {
	base, _ := v.Arena.Bounds(RegionDataStack)
	out := make([]Cell, 0, v.sp-base)
	for abs := base; abs < v.sp; abs++ {
		c, _ := v.Arena.ReadCell(abs)
		out = append(out, c)
	}
	return out
}

// RPush places v on top of the return stack.
func (v *VM) RPush(val Cell) error {
	base, size := v.Arena.Bounds(RegionReturnStack)
	if v.rsp >= base+size {
		return ErrReturnStackOverflow
	}
	if err := v.Arena.WriteCell(v.rsp, val); err != nil {
		return err
	}
	v.rsp++
	return nil
}

// RPop removes and returns the top of the return stack.
func (v *VM) RPop(opname string) (Cell, error) {
	if v.RDepth() == 0 {
		return 0, newReturnStackUnderflow(opname, v.getReturnStackData())
	}
	v.rsp--
	return v.Arena.ReadCell(v.rsp)
}

// RDepth reports the number of cells currently on the return stack.
func (v *VM) RDepth() uint32 {
	base, _ := v.Arena.Bounds(RegionReturnStack)
	return v.rsp - base
}

func (v *VM) getReturnStackData() []Cell {
	base, _ := v.Arena.Bounds(RegionReturnStack)
	out := make([]Cell, 0, v.rsp-base)
	for abs := base; abs < v.rsp; abs++ {
		c, _ := v.Arena.ReadCell(abs)
		out = append(out, c)
	}
	return out
}
