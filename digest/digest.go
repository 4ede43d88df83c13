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

// Package digest implements the string intern table dictionary entries
// and STRING cells reference by index rather than carrying bytes
// directly. The spec treats this purely as an interface; Table is one
// conforming implementation, kept minimal on purpose.
package digest

// Table is an append-only string-to-index intern table. Index 0 is never
// assigned, so a zero index can double as "no string" where convenient.
type Table struct {
	strings []string
	index   map[string]uint16
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		strings: make([]string, 1, 64), // slot 0 reserved
		index:   make(map[string]uint16, 64),
	}
}

// Intern returns s's digest index, assigning a new one the first time s
// is seen.
func (t *Table) Intern(s string) uint16 {
	if idx, ok := t.index[s]; ok {
		return idx
	}
	idx := uint16(len(t.strings))
	t.strings = append(t.strings, s)
	t.index[s] = idx
	return idx
}

// Get returns the string at index, and whether index was ever assigned.
func (t *Table) Get(index uint16) (string, bool) {
	if int(index) >= len(t.strings) || index == 0 {
		return "", false
	}
	return t.strings[index], true
}

// Len reports how many distinct strings have been interned.
func (t *Table) Len() int { return len(t.strings) - 1 }
