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

// execBuiltin dispatches a single built-in opcode. Built-ins take no
// wire operands; every argument and result moves through the data stack,
// per the ordinary-verb convention spec §6.1 describes for the builtin
// row of the opcode table.
func (v *VM) execBuiltin(op Opcode) error {
	switch op {
	case OpAdd:
		return v.binaryNumeric(op.String(), func(a, b float32) float32 { return a + b })
	case OpSub:
		return v.binaryNumeric(op.String(), func(a, b float32) float32 { return a - b })
	case OpMul:
		return v.binaryNumeric(op.String(), func(a, b float32) float32 { return a * b })
	case OpDiv:
		return v.binaryNumeric(op.String(), func(a, b float32) float32 { return a / b })
	case OpMod:
		return v.binaryNumeric(op.String(), func(a, b float32) float32 {
			if b == 0 {
				return 0
			}
			m := a - b*float32(int64(a/b))
			return m
		})
	case OpNeg:
		return v.unaryNumeric(op.String(), func(a float32) float32 { return -a })

	case OpAnd:
		return v.binaryBitwise(op.String(), func(a, b int32) int32 { return a & b })
	case OpOr:
		return v.binaryBitwise(op.String(), func(a, b int32) int32 { return a | b })
	case OpXor:
		return v.binaryBitwise(op.String(), func(a, b int32) int32 { return a ^ b })
	case OpNot:
		return v.unaryBitwise(op.String(), func(a int32) int32 { return ^a })
	case OpShl:
		return v.binaryBitwise(op.String(), func(a, b int32) int32 { return a << uint32(b) })
	case OpShr:
		return v.binaryBitwise(op.String(), func(a, b int32) int32 { return a >> uint32(b) })

	case OpEq:
		return v.compare(op.String(), func(a, b float32) bool { return a == b })
	case OpNeq:
		return v.compare(op.String(), func(a, b float32) bool { return a != b })
	case OpLt:
		return v.compare(op.String(), func(a, b float32) bool { return a < b })
	case OpLte:
		return v.compare(op.String(), func(a, b float32) bool { return a <= b })
	case OpGt:
		return v.compare(op.String(), func(a, b float32) bool { return a > b })
	case OpGte:
		return v.compare(op.String(), func(a, b float32) bool { return a >= b })

	case OpDup:
		if err := v.EnsureDepth(1, "dup"); err != nil {
			return err
		}
		top, err := v.Peek(0)
		if err != nil {
			return err
		}
		return v.Push(top)

	case OpSwap:
		if err := v.EnsureDepth(2, "swap"); err != nil {
			return err
		}
		a, _ := v.Pop("swap")
		b, _ := v.Pop("swap")
		if err := v.Push(a); err != nil {
			return err
		}
		return v.Push(b)

	case OpOver:
		if err := v.EnsureDepth(2, "over"); err != nil {
			return err
		}
		under, err := v.Peek(1)
		if err != nil {
			return err
		}
		return v.Push(under)

	case OpRot:
		if err := v.EnsureDepth(3, "rot"); err != nil {
			return err
		}
		c, _ := v.Pop("rot")
		b, _ := v.Pop("rot")
		a, _ := v.Pop("rot")
		if err := v.Push(b); err != nil {
			return err
		}
		if err := v.Push(c); err != nil {
			return err
		}
		return v.Push(a)

	case OpLen:
		if err := v.EnsureDepth(1, "len"); err != nil {
			return err
		}
		top, err := v.Peek(0)
		if err != nil {
			return err
		}
		info, err := v.ListBoundsOrSelf(top)
		if err != nil {
			return err
		}
		if IsList(top) {
			if err := v.DropList(); err != nil {
				return err
			}
		} else if _, err := v.Pop("len"); err != nil {
			return err
		}
		return v.Push(EncodeNumber(float32(info.N)))

	case OpBuffer:
		capCell, err := v.Pop("buffer")
		if err != nil {
			return err
		}
		if !IsNumber(capCell) {
			return fmt.Errorf("%w: buffer expects a NUMBER capacity", ErrInvalidTag)
		}
		ref, err := v.RingNew(uint16(AsNumber(capCell)))
		if err != nil {
			return err
		}
		return v.Push(ref)

	case OpWrite:
		target, err := v.Pop("write")
		if err != nil {
			return err
		}
		val, err := v.Pop("write")
		if err != nil {
			return err
		}
		return v.RingWrite(target, val)

	case OpRead:
		target, err := v.Pop("read")
		if err != nil {
			return err
		}
		val, err := v.RingRead(target)
		if err != nil {
			return err
		}
		return v.Push(val)

	case OpUnwrite:
		target, err := v.Pop("unwrite")
		if err != nil {
			return err
		}
		val, err := v.RingUnwrite(target)
		if err != nil {
			return err
		}
		return v.Push(val)

	case OpUnread:
		target, err := v.Pop("unread")
		if err != nil {
			return err
		}
		val, err := v.Pop("unread")
		if err != nil {
			return err
		}
		return v.RingUnread(target, val)

	case OpSize:
		target, err := v.Pop("size")
		if err != nil {
			return err
		}
		n, err := v.RingSize(target)
		if err != nil {
			return err
		}
		return v.Push(EncodeNumber(float32(n)))

	case OpIsEmpty:
		target, err := v.Pop("is_empty")
		if err != nil {
			return err
		}
		b, err := v.RingIsEmpty(target)
		if err != nil {
			return err
		}
		return v.Push(boolCell(b))

	case OpIsFull:
		target, err := v.Pop("is_full")
		if err != nil {
			return err
		}
		b, err := v.RingIsFull(target)
		if err != nil {
			return err
		}
		return v.Push(boolCell(b))

	default:
		return fmt.Errorf("%w: builtin byte %d", ErrInvalidOpcode, uint8(op))
	}
}

func boolCell(b bool) Cell {
	if b {
		return EncodeNumber(1)
	}
	return EncodeNumber(0)
}

// ListBoundsOrSelf resolves value as a LIST bound, accepting either a bare
// LIST header sitting at the data stack's TOS (value IS the header, so its
// address is known to be sp-1) or a REF to one elsewhere in the arena. len
// is only meaningful applied to a compound value or a REF to one.
func (v *VM) ListBoundsOrSelf(value Cell) (ListInfo, error) {
	if IsList(value) {
		return v.ListBoundsAt(v.sp - 1)
	}
	return v.ListBounds(value)
}

func (v *VM) binaryNumeric(name string, f func(a, b float32) float32) error {
	if err := v.EnsureDepth(2, name); err != nil {
		return err
	}
	bCell, _ := v.Pop(name)
	aCell, _ := v.Pop(name)
	if !IsNumber(aCell) || !IsNumber(bCell) {
		return fmt.Errorf("%w: %s expects two NUMBER operands", ErrInvalidTag, name)
	}
	return v.Push(EncodeNumber(f(AsNumber(aCell), AsNumber(bCell))))
}

func (v *VM) unaryNumeric(name string, f func(a float32) float32) error {
	if err := v.EnsureDepth(1, name); err != nil {
		return err
	}
	aCell, _ := v.Pop(name)
	if !IsNumber(aCell) {
		return fmt.Errorf("%w: %s expects a NUMBER operand", ErrInvalidTag, name)
	}
	return v.Push(EncodeNumber(f(AsNumber(aCell))))
}

func (v *VM) binaryBitwise(name string, f func(a, b int32) int32) error {
	if err := v.EnsureDepth(2, name); err != nil {
		return err
	}
	bCell, _ := v.Pop(name)
	aCell, _ := v.Pop(name)
	if !IsNumber(aCell) || !IsNumber(bCell) {
		return fmt.Errorf("%w: %s expects two NUMBER operands", ErrInvalidTag, name)
	}
	r := f(int32(AsNumber(aCell)), int32(AsNumber(bCell)))
	return v.Push(EncodeNumber(float32(r)))
}

func (v *VM) unaryBitwise(name string, f func(a int32) int32) error {
	if err := v.EnsureDepth(1, name); err != nil {
		return err
	}
	aCell, _ := v.Pop(name)
	if !IsNumber(aCell) {
		return fmt.Errorf("%w: %s expects a NUMBER operand", ErrInvalidTag, name)
	}
	return v.Push(EncodeNumber(float32(f(int32(AsNumber(aCell))))))
}

func (v *VM) compare(name string, f func(a, b float32) bool) error {
	if err := v.EnsureDepth(2, name); err != nil {
		return err
	}
	bCell, _ := v.Pop(name)
	aCell, _ := v.Pop(name)
	if !IsNumber(aCell) || !IsNumber(bCell) {
		return fmt.Errorf("%w: %s expects two NUMBER operands", ErrInvalidTag, name)
	}
	return v.Push(boolCell(f(AsNumber(aCell), AsNumber(bCell))))
}
