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
	"errors"
	"testing"
)

func runBinary(t *testing.T, op Opcode, a, b float32) float32 {
	t.Helper()
	code := program(
		opF32(OpLiteralNumber, a),
		opF32(OpLiteralNumber, b),
		op1(op),
		op1(OpExit),
	)
	v := newTestVM(t, code)
	runVM(t, v)
	data := v.GetStackData()
	if len(data) != 1 {
		t.Fatalf("stack depth = %d; want 1", len(data))
	}
	return AsNumber(data[0])
}

func TestArithmeticBuiltins(t *testing.T) {
	cases := []struct {
		op   Opcode
		a, b float32
		want float32
	}{
		{OpAdd, 2, 3, 5},
		{OpSub, 5, 3, 2},
		{OpMul, 4, 3, 12},
		{OpDiv, 9, 3, 3},
	}
	for _, tc := range cases {
		if got := runBinary(t, tc.op, tc.a, tc.b); got != tc.want {
			t.Errorf("%s(%v,%v) = %v; want %v", tc.op, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestBitwiseBuiltins(t *testing.T) {
	cases := []struct {
		op   Opcode
		a, b float32
		want float32
	}{
		{OpAnd, 6, 3, 2},
		{OpOr, 4, 1, 5},
		{OpXor, 5, 1, 4},
		{OpShl, 1, 3, 8},
		{OpShr, 8, 2, 2},
	}
	for _, tc := range cases {
		if got := runBinary(t, tc.op, tc.a, tc.b); got != tc.want {
			t.Errorf("%s(%v,%v) = %v; want %v", tc.op, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestComparisonBuiltins(t *testing.T) {
	cases := []struct {
		op   Opcode
		a, b float32
		want float32
	}{
		{OpEq, 3, 3, 1},
		{OpEq, 3, 4, 0},
		{OpNeq, 3, 4, 1},
		{OpLt, 1, 2, 1},
		{OpGte, 2, 2, 1},
	}
	for _, tc := range cases {
		if got := runBinary(t, tc.op, tc.a, tc.b); got != tc.want {
			t.Errorf("%s(%v,%v) = %v; want %v", tc.op, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestStackShuffleBuiltins(t *testing.T) {
	code := program(
		opF32(OpLiteralNumber, 1),
		opF32(OpLiteralNumber, 2),
		op1(OpSwap),
		op1(OpExit),
	)
	v := newTestVM(t, code)
	runVM(t, v)
	data := v.GetStackData()
	if AsNumber(data[0]) != 2 || AsNumber(data[1]) != 1 {
		t.Fatalf("after swap = %v; want [2,1]", data)
	}

	code = program(
		opF32(OpLiteralNumber, 1),
		opF32(OpLiteralNumber, 2),
		op1(OpOver),
		op1(OpExit),
	)
	v = newTestVM(t, code)
	runVM(t, v)
	data = v.GetStackData()
	if len(data) != 3 || AsNumber(data[2]) != 1 {
		t.Fatalf("after over = %v; want [1,2,1]", data)
	}

	code = program(
		opF32(OpLiteralNumber, 1),
		opF32(OpLiteralNumber, 2),
		opF32(OpLiteralNumber, 3),
		op1(OpRot),
		op1(OpExit),
	)
	v = newTestVM(t, code)
	runVM(t, v)
	data = v.GetStackData()
	want := []float32{2, 3, 1}
	for i, w := range want {
		if AsNumber(data[i]) != w {
			t.Fatalf("after rot = %v; want %v", data, want)
		}
	}
}

func TestLenOnList(t *testing.T) {
	code := program(
		opF32(OpLiteralNumber, 1),
		opF32(OpLiteralNumber, 2),
		opF32(OpLiteralNumber, 3),
		opU16(OpReverseSpan, 3),
		opU16(OpMakeList, 3),
		op1(OpLen),
		op1(OpExit),
	)
	v := newTestVM(t, code)
	runVM(t, v)
	data := v.GetStackData()
	if len(data) != 1 {
		t.Fatalf("stack depth = %d; want 1", len(data))
	}
	if got := AsNumber(data[0]); got != 3 {
		t.Errorf("len = %v; want 3", got)
	}
}

func TestAddTypeMismatch(t *testing.T) {
	code := program(
		opF32(OpLiteralNumber, 5),
		op1(OpBuffer),
		opF32(OpLiteralNumber, 1),
		op1(OpAdd),
		op1(OpExit),
	)
	v := newTestVM(t, code)
	err := v.Run()
	if err == nil {
		t.Fatal("want error adding a NUMBER to a REF, got nil")
	}
	if !errors.Is(err, ErrInvalidTag) {
		t.Errorf("err = %v; want ErrInvalidTag", err)
	}
}
