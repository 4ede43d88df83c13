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

// Run executes instructions from the current ip until the VM halts (the
// outermost frame's Exit) or an error occurs.
func (v *VM) Run() error {
	for v.Running {
		if err := v.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Execute sets ip to startAddr and runs to completion, the host-surface
// entry point named in spec §6.4 (execute(vm, startAddr)).
func (v *VM) Execute(startAddr uint32) error {
	v.ip = startAddr
	return v.Run()
}

// Step fetches, decodes, and executes a single instruction.
func (v *VM) Step() error {
	if !v.Running {
		return ErrHalted
	}
	opByte, err := v.Code.ReadU8(v.ip)
	if err != nil {
		return err
	}
	op := Opcode(opByte)
	v.ip++

	if op.IsBuiltin() {
		if _, ok := opcodeTable[op]; !ok {
			return fmt.Errorf("%w: byte %d", ErrInvalidOpcode, opByte)
		}
		if err := v.execBuiltin(op); err != nil {
			return err
		}
		return v.ensureInvariants()
	}

	switch op {
	case OpLiteralNumber:
		f, err := v.Code.ReadF32(v.ip)
		if err != nil {
			return err
		}
		v.ip += 4
		if err := v.Push(EncodeNumber(f)); err != nil {
			return err
		}

	case OpBranch:
		off, err := v.Code.ReadI16(v.ip)
		if err != nil {
			return err
		}
		v.ip += 2
		v.ip = uint32(int64(v.ip) + int64(off))

	case OpIfFalseBranch:
		off, err := v.Code.ReadI16(v.ip)
		if err != nil {
			return err
		}
		v.ip += 2
		cond, err := v.Pop("if_false_branch")
		if err != nil {
			return err
		}
		if !truthy(cond) {
			v.ip = uint32(int64(v.ip) + int64(off))
		}

	case OpCall:
		off, err := v.Code.ReadI16(v.ip)
		if err != nil {
			return err
		}
		v.ip += 2
		target := uint32(int64(v.ip) + int64(off))
		if err := v.enterFrame(target); err != nil {
			return err
		}

	case OpEval:
		code, err := v.Pop("eval")
		if err != nil {
			return err
		}
		if !IsCode(code) {
			// Per spec §4.11, Eval on a non-CODE value is inert: push it
			// back rather than failing.
			if err := v.Push(code); err != nil {
				return err
			}
		} else if IsBuiltinCode(code) {
			if err := v.execBuiltin(Opcode(BuiltinID(code))); err != nil {
				return err
			}
		} else {
			if err := v.enterFrame(uint32(CodeOffset(code))); err != nil {
				return err
			}
		}

	case OpExit:
		if err := v.exitFrame(); err != nil {
			return err
		}
		if !v.Running {
			return nil
		}

	case OpReserve:
		n, err := v.Code.ReadU16(v.ip)
		if err != nil {
			return err
		}
		v.ip += 2
		if err := v.Reserve(n); err != nil {
			return err
		}

	case OpInitVar:
		slot, err := v.Code.ReadU16(v.ip)
		if err != nil {
			return err
		}
		v.ip += 2
		if err := v.InitVar(slot); err != nil {
			return err
		}

	case OpVarRef:
		slot, err := v.Code.ReadU16(v.ip)
		if err != nil {
			return err
		}
		v.ip += 2
		ref, err := v.VarRef(slot)
		if err != nil {
			return err
		}
		if err := v.Push(ref); err != nil {
			return err
		}

	case OpTransferVar:
		slot, err := v.Code.ReadU16(v.ip)
		if err != nil {
			return err
		}
		v.ip += 2
		if err := v.TransferToLocal(slot); err != nil {
			return err
		}

	case OpUpdateVar:
		slot, err := v.Code.ReadU16(v.ip)
		if err != nil {
			return err
		}
		v.ip += 2
		if err := v.UpdateCompoundLocal(slot); err != nil {
			return err
		}

	case OpFetch:
		if err := v.Fetch(); err != nil {
			return err
		}

	case OpStore:
		if err := v.Store(); err != nil {
			return err
		}

	case OpDrop:
		if _, err := v.Pop("drop"); err != nil {
			return err
		}

	case OpNop:
		// no-op

	case OpReverseSpan:
		n, err := v.Code.ReadU16(v.ip)
		if err != nil {
			return err
		}
		v.ip += 2
		if err := v.ReverseSpan(n); err != nil {
			return err
		}

	case OpMakeList:
		n, err := v.Code.ReadU16(v.ip)
		if err != nil {
			return err
		}
		v.ip += 2
		if err := v.MakeListHeader(n); err != nil {
			return err
		}

	case OpEndOf, OpEndCase:
		// Pure compile-time markers; the compiler patches branch targets
		// around them. At runtime they carry no behavior of their own.

	default:
		return fmt.Errorf("%w: byte %d", ErrInvalidOpcode, opByte)
	}

	return v.ensureInvariants()
}

// truthy mirrors the convention that 0.0 and NIL are false and every other
// NUMBER and tagged value is true.
func truthy(c Cell) bool {
	if IsNumber(c) {
		return AsNumber(c) != 0
	}
	return !IsNil(c)
}

// enterFrame pushes the call-frame linkage (return ip, saved bp) and
// jumps to target, per spec §3.6's call/eval/exit protocol.
func (v *VM) enterFrame(target uint32) error {
	if err := v.RPush(EncodeNumber(float32(v.ip))); err != nil {
		return err
	}
	if err := v.RPush(EncodeNumber(float32(v.bp))); err != nil {
		return err
	}
	v.bp = v.rsp
	v.ip = target
	return nil
}

// exitFrame tears down the current call frame: locals reserved above bp
// are discarded, the frame linkage cells are popped, and bp/ip are
// restored. Exiting the outermost frame halts the VM instead of
// underflowing the return stack.
func (v *VM) exitFrame() error {
	returnBase, _ := v.Arena.Bounds(RegionReturnStack)
	if v.bp == returnBase {
		v.Running = false
		return nil
	}
	if v.bp < returnBase+2 {
		return fmt.Errorf("%w: frame base %d has no room for linkage cells", ErrInvariantViolation, v.bp)
	}
	savedBPCell, err := v.Arena.ReadCell(v.bp - 1)
	if err != nil {
		return err
	}
	returnIPCell, err := v.Arena.ReadCell(v.bp - 2)
	if err != nil {
		return err
	}
	v.rsp = v.bp - 2
	v.bp = uint32(AsNumber(savedBPCell))
	v.ip = uint32(AsNumber(returnIPCell))
	return nil
}
