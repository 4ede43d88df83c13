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

package compiler

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/jhlagado/tacit/vm"
)

func TestEmitOpcodeAndOperands(t *testing.T) {
	e := NewEmitter()
	e.EmitOpcode(vm.OpLiteralNumber)
	e.EmitFloat32(3.5)
	e.EmitOpcode(vm.OpReserve)
	e.EmitU16(7)
	e.EmitOpcode(vm.OpBranch)
	e.EmitI16(-1)

	code, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(code) != 1+4+1+2+1+2 {
		t.Fatalf("code length = %d; want %d", len(code), 1+4+1+2+1+2)
	}
	if code[0] != byte(vm.OpLiteralNumber) {
		t.Errorf("code[0] = %d; want OpLiteralNumber", code[0])
	}
	bits := binary.LittleEndian.Uint32(code[1:5])
	if math.Float32frombits(bits) != 3.5 {
		t.Errorf("literal operand = %v; want 3.5", math.Float32frombits(bits))
	}
}

func TestLabelBackwardReference(t *testing.T) {
	e := NewEmitter()
	e.Label("top")
	e.EmitOpcode(vm.OpNop)
	if err := e.EmitBranch("top"); err != nil {
		t.Fatalf("EmitBranch: %v", err)
	}
	code, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	// branch operand sits at offset 2 (after nop + branch opcode byte)
	off := int16(binary.LittleEndian.Uint16(code[2:4]))
	target := int(4) + int(off)
	if target != 0 {
		t.Errorf("resolved backward branch target = %d; want 0", target)
	}
}

func TestLabelForwardReference(t *testing.T) {
	e := NewEmitter()
	if err := e.EmitBranch("fwd"); err != nil {
		t.Fatalf("EmitBranch: %v", err)
	}
	e.Label("fwd")
	e.EmitOpcode(vm.OpNop)

	code, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	off := int16(binary.LittleEndian.Uint16(code[1:3]))
	target := int(3) + int(off)
	if target != 3 {
		t.Errorf("resolved forward branch target = %d; want 3", target)
	}
}

func TestFinishUnresolvedLabel(t *testing.T) {
	e := NewEmitter()
	if err := e.EmitCall("missing"); err != nil {
		t.Fatalf("EmitCall: %v", err)
	}
	_, err := e.Finish()
	if !errors.Is(err, vm.ErrUnclosedConstruct) {
		t.Fatalf("err = %v; want wrapping ErrUnclosedConstruct", err)
	}
}

func TestReserveLocalOutsideFunction(t *testing.T) {
	e := NewEmitter()
	_, err := e.ReserveLocal(1)
	if err == nil {
		t.Fatal("ReserveLocal outside EnterFunction: want error, got nil")
	}
}

func TestEnterExitFunctionPatchesReserve(t *testing.T) {
	e := NewEmitter()
	e.EnterFunction()
	reserveAt := 1 // opcode byte at 0, operand at 1
	if _, err := e.ReserveLocal(1); err != nil {
		t.Fatalf("ReserveLocal: %v", err)
	}
	if _, err := e.ReserveLocal(3); err != nil {
		t.Fatalf("ReserveLocal: %v", err)
	}
	e.EmitOpcode(vm.OpNop)
	if err := e.ExitFunction(); err != nil {
		t.Fatalf("ExitFunction: %v", err)
	}

	code, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if code[0] != byte(vm.OpReserve) {
		t.Fatalf("code[0] = %d; want OpReserve", code[0])
	}
	n := binary.LittleEndian.Uint16(code[reserveAt : reserveAt+2])
	if n != 4 {
		t.Errorf("patched reserve count = %d; want 4", n)
	}
}

func TestEmitReserveIfNeededIsNoOpWithNoLocals(t *testing.T) {
	e := NewEmitter()
	e.EnterFunction()
	if err := e.ExitFunction(); err != nil {
		t.Fatalf("ExitFunction: %v", err)
	}
	code, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	n := binary.LittleEndian.Uint16(code[1:3])
	if n != 0 {
		t.Errorf("reserve count = %d; want 0", n)
	}
}
