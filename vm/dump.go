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

	"github.com/olekukonko/tablewriter"
)

// cellLabel renders a cell the way a human inspecting a dump wants to see
// it: the float value for a NUMBER, or tag/value/meta for anything else.
func cellLabel(c Cell) string {
	d := Decode(c)
	if d.IsNumber {
		return fmt.Sprintf("%g", d.Number)
	}
	tagName := [...]string{"STRING", "LIST", "CODE", "LOCAL", "REF", "SENTINEL"}[d.Tag]
	if d.Meta {
		return fmt.Sprintf("%s:%d*", tagName, d.Value)
	}
	return fmt.Sprintf("%s:%d", tagName, d.Value)
}

// DumpStack renders the data stack bottom-to-top as a table, for use in
// tests and any host embedding a REPL-style inspector.
func (v *VM) DumpStack() string {
	data := v.GetStackData()
	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"depth", "value"})
	for i, c := range data {
		table.Append([]string{fmt.Sprintf("%d", len(data)-1-i), cellLabel(c)})
	}
	table.Render()
	return b.String()
}

// DumpDictionary renders the dictionary chain from head to the empty
// sentinel as a table of name/payload pairs.
func (v *VM) DumpDictionary() (string, error) {
	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"name", "payload", "hidden"})

	addr := v.head
	for addr != 0 {
		info, err := v.ListBoundsAt(addr)
		if err != nil {
			return "", err
		}
		nameAddr, err := v.ElemAddr(info, dictElemName)
		if err != nil {
			return "", err
		}
		nameCell, err := v.Arena.ReadCell(nameAddr)
		if err != nil {
			return "", err
		}
		payloadAddr, err := v.ElemAddr(info, dictElemPayload)
		if err != nil {
			return "", err
		}
		payloadCell, err := v.Arena.ReadCell(payloadAddr)
		if err != nil {
			return "", err
		}
		name := "?"
		if IsStringTag(nameCell) {
			if s, ok := v.Digest.Get(StringIndex(nameCell)); ok {
				name = s
			}
		}
		hidden := "no"
		if Decode(nameCell).Meta {
			hidden = "yes"
		}
		table.Append([]string{name, cellLabel(payloadCell), hidden})

		prevAddr, err := v.ElemAddr(info, dictElemPrev)
		if err != nil {
			return "", err
		}
		prevCell, err := v.Arena.ReadCell(prevAddr)
		if err != nil {
			return "", err
		}
		if IsNil(prevCell) {
			break
		}
		addr = AbsCell(prevCell)
	}
	table.Render()
	return b.String(), nil
}
