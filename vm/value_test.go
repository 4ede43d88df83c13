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
	"math"
	"testing"

	fuzz "github.com/google/gofuzz"
)

// TestEncodeDecodeRoundTrip checks spec §8's round-trip law: for every
// (tag, value, meta) triple in range, Decode(Encode(tag,value,meta))
// recovers exactly tag, value, and meta.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 1)
	tags := []Tag{TagString, TagList, TagCode, TagLocal, TagRef, TagSentinel}
	for i := 0; i < 2000; i++ {
		var value uint16
		var meta bool
		f.Fuzz(&value)
		f.Fuzz(&meta)
		tag := tags[i%len(tags)]

		c := Encode(tag, value, meta)
		d := Decode(c)
		if d.IsNumber {
			t.Fatalf("Encode(%v,%d,%v) decoded as NUMBER", tag, value, meta)
		}
		if d.Tag != tag {
			t.Errorf("tag round-trip: got %v, want %v", d.Tag, tag)
		}
		if d.Value != value {
			t.Errorf("value round-trip: got %d, want %d", d.Value, value)
		}
		if d.Meta != meta {
			t.Errorf("meta round-trip: got %v, want %v", d.Meta, meta)
		}
	}
}

// TestNumberRoundTrip checks that ordinary finite float32 values survive
// EncodeNumber/AsNumber/IsNumber untagged.
func TestNumberRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for i := 0; i < 2000; i++ {
		var val float32
		f.Fuzz(&val)
		// A raw float32 bit pattern inside the tagged-cell prefix is a
		// quiet NaN; EncodeNumber folds every NaN to one canonical pattern,
		// so such inputs do not round-trip bit for bit and are skipped here.
		if isTaggedBits(math.Float32bits(val)) {
			continue
		}
		c := EncodeNumber(val)
		if !IsNumber(c) {
			t.Fatalf("EncodeNumber(%v) not recognized as NUMBER", val)
		}
		if got := AsNumber(c); got != val && !(got != got && val != val) {
			t.Errorf("round trip: got %v, want %v", got, val)
		}
	}
}

func TestRefRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for i := 0; i < 1000; i++ {
		var cellIdx uint16
		f.Fuzz(&cellIdx)
		r := MakeRef(uint32(cellIdx))
		if !IsRef(r) {
			t.Fatalf("MakeRef(%d) not IsRef", cellIdx)
		}
		if got := AbsCell(r); got != uint32(cellIdx) {
			t.Errorf("AbsCell round trip: got %d, want %d", got, cellIdx)
		}
	}
}

func TestWithMetaTogglesOnlyMeta(t *testing.T) {
	c := Encode(TagString, 42, false)
	hidden := WithMeta(c, true)
	if !HasTag(hidden, TagString) || Decode(hidden).Value != 42 {
		t.Fatalf("WithMeta changed tag/value: %#v", Decode(hidden))
	}
	if !Decode(hidden).Meta {
		t.Fatalf("WithMeta(true) did not set meta bit")
	}
	back := WithMeta(hidden, false)
	if Decode(back).Meta {
		t.Fatalf("WithMeta(false) did not clear meta bit")
	}
}

func TestBuiltinCodeThreshold(t *testing.T) {
	b := MakeBuiltinCode(uint8(OpAdd))
	if !IsCode(b) || !IsBuiltinCode(b) {
		t.Fatalf("MakeBuiltinCode did not round-trip as a builtin CODE cell")
	}
	if BuiltinID(b) != uint8(OpAdd) {
		t.Errorf("BuiltinID = %d, want %d", BuiltinID(b), uint8(OpAdd))
	}

	u := MakeUserCode(123)
	if !IsCode(u) || IsBuiltinCode(u) {
		t.Fatalf("MakeUserCode(123) misclassified as builtin")
	}
	if CodeOffset(u) != 123 {
		t.Errorf("CodeOffset = %d, want 123", CodeOffset(u))
	}
}
