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
	"strings"
)

// Disassemble walks a code segment from offset 0 and renders one line per
// instruction, adapted from probe-lang/lang/vm/vm.go's Disassemble to
// Tacit's variable-width instruction encoding (the teacher's instructions
// are a fixed 4 bytes; ours carry 0, 2, or 4 operand bytes depending on
// the opcode).
func Disassemble(code []byte) string {
	var b strings.Builder
	off := uint32(0)
	for off < uint32(len(code)) {
		start := off
		op := Opcode(code[off])
		off++
		fmt.Fprintf(&b, "%04x  %-16s", start, op.String())
		switch op.Operand() {
		case OperandF32:
			if off+4 > uint32(len(code)) {
				fmt.Fprintf(&b, "<truncated>\n")
				return b.String()
			}
			bits := uint32(code[off]) | uint32(code[off+1])<<8 | uint32(code[off+2])<<16 | uint32(code[off+3])<<24
			fmt.Fprintf(&b, "%#x\n", bits)
			off += 4
		case OperandU16:
			if off+2 > uint32(len(code)) {
				fmt.Fprintf(&b, "<truncated>\n")
				return b.String()
			}
			v := uint16(code[off]) | uint16(code[off+1])<<8
			fmt.Fprintf(&b, "%d\n", v)
			off += 2
		case OperandI16:
			if off+2 > uint32(len(code)) {
				fmt.Fprintf(&b, "<truncated>\n")
				return b.String()
			}
			v := int16(uint16(code[off]) | uint16(code[off+1])<<8)
			fmt.Fprintf(&b, "%+d -> %04x\n", v, int64(off+2)+int64(v))
			off += 2
		default:
			fmt.Fprintln(&b)
		}
	}
	return b.String()
}
