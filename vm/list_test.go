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
	"testing"

	fuzz "github.com/google/gofuzz"
)

// TestReverseSpanInvolution checks that reversing a span twice restores
// the original stack order, for random span lengths and contents.
func TestReverseSpanInvolution(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for i := 0; i < 200; i++ {
		var n uint8
		f.Fuzz(&n)
		count := int(n)%12 + 1

		v := newTestVM(t, nil)
		want := make([]float32, count)
		for j := 0; j < count; j++ {
			var val float32
			f.Fuzz(&val)
			want[j] = val
			if err := v.Push(EncodeNumber(val)); err != nil {
				t.Fatalf("Push: %v", err)
			}
		}

		if err := v.ReverseSpan(uint16(count)); err != nil {
			t.Fatalf("ReverseSpan: %v", err)
		}
		if err := v.ReverseSpan(uint16(count)); err != nil {
			t.Fatalf("ReverseSpan (second): %v", err)
		}

		got := v.GetStackData()
		if len(got) != count {
			t.Fatalf("depth = %d; want %d", len(got), count)
		}
		for j, w := range want {
			if gv := AsNumber(got[j]); gv != w && !(gv != gv && w != w) {
				t.Errorf("elem %d = %v; want %v", j, gv, w)
			}
		}
	}
}

// TestDropListPopsFullSpan checks that building a LIST:n from n freshly
// pushed payload cells and then calling DropList always restores the
// stack to its pre-push depth, for random n.
func TestDropListPopsFullSpan(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for i := 0; i < 200; i++ {
		var n uint8
		f.Fuzz(&n)
		count := uint16(n) % 10

		v := newTestVM(t, nil)
		baseDepth := len(v.GetStackData())
		for j := uint16(0); j < count; j++ {
			if err := v.Push(EncodeNumber(float32(j))); err != nil {
				t.Fatalf("Push: %v", err)
			}
		}
		if err := v.MakeListHeader(count); err != nil {
			t.Fatalf("MakeListHeader: %v", err)
		}
		if len(v.GetStackData()) != baseDepth+int(count)+1 {
			t.Fatalf("depth after MakeListHeader = %d; want %d", len(v.GetStackData()), baseDepth+int(count)+1)
		}
		if err := v.DropList(); err != nil {
			t.Fatalf("DropList: %v", err)
		}
		if got := len(v.GetStackData()); got != baseDepth {
			t.Errorf("depth after DropList = %d; want %d", got, baseDepth)
		}
	}
}

// TestElemAddrOrdering checks that for a freshly built flat LIST:n, logical
// element 0 sits immediately below the header and subsequent elements walk
// downward contiguously (no nested spans involved).
func TestElemAddrOrdering(t *testing.T) {
	v := newTestVM(t, nil)
	vals := []float32{7, 8, 9}
	for _, val := range vals {
		if err := v.Push(EncodeNumber(val)); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	if err := v.ReverseSpan(uint16(len(vals))); err != nil {
		t.Fatalf("ReverseSpan: %v", err)
	}
	if err := v.MakeListHeader(uint16(len(vals))); err != nil {
		t.Fatalf("MakeListHeader: %v", err)
	}

	info, err := v.ListBoundsAt(v.sp - 1)
	if err != nil {
		t.Fatalf("ListBoundsAt: %v", err)
	}
	// ReverseSpan followed by MakeListHeader restores source order when
	// walked logically: element 0 (closest to the header) is the first
	// value pushed.
	want := []float32{7, 8, 9}
	for idx, w := range want {
		addr, err := v.ElemAddr(info, uint16(idx))
		if err != nil {
			t.Fatalf("ElemAddr(%d): %v", idx, err)
		}
		cell, err := v.Arena.ReadCell(addr)
		if err != nil {
			t.Fatalf("ReadCell: %v", err)
		}
		if got := AsNumber(cell); got != w {
			t.Errorf("elem %d = %v; want %v", idx, got, w)
		}
	}
}
