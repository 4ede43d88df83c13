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

// Package compiler implements the emission API a Tacit parser/front end
// is built against: a flat byte-appending emitter with label-style
// forward-reference patching, translated from
// probe-lang/lang/codegen.Generator's offset/patch bookkeeping to Tacit's
// variable-width instruction encoding. The parser itself (tokenizer,
// grammar, AST) is out of scope — this package only exposes the seam a
// parser would be written against.
package compiler

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/jhlagado/tacit/vm"
)

// patchEntry records a forward branch/call whose offset isn't known yet
// at the point it was emitted.
type patchEntry struct {
	at     int // byte offset of the i16 operand to patch
	target string
}

// Emitter accumulates bytecode for one compilation unit. The zero value
// is ready to use.
type Emitter struct {
	code    []byte
	labels  map[string]int
	patches []patchEntry

	// frames tracks enter_function/exit_function nesting so
	// emit_reserve_if_needed knows which Reserve instruction (if any) to
	// backpatch once the function's local-slot count is finally known.
	frames []frame
}

type frame struct {
	reserveAt  int // byte offset of the Reserve instruction's operand, -1 if not yet emitted
	localSlots uint16
}

// NewEmitter returns an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{
		labels: make(map[string]int),
	}
}

// Here returns the current end-of-code offset — the position the next
// emitted byte will occupy.
func (e *Emitter) Here() int { return len(e.code) }

// EmitOpcode appends a single opcode byte.
func (e *Emitter) EmitOpcode(op vm.Opcode) int {
	pos := e.Here()
	e.code = append(e.code, byte(op))
	return pos
}

// EmitU16 appends a little-endian u16 operand and returns its offset.
func (e *Emitter) EmitU16(v uint16) int {
	pos := e.Here()
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	e.code = append(e.code, buf[:]...)
	return pos
}

// EmitI16 appends a little-endian signed i16 operand and returns its
// offset.
func (e *Emitter) EmitI16(v int16) int {
	return e.EmitU16(uint16(v))
}

// EmitFloat32 appends a little-endian f32 operand and returns its offset.
func (e *Emitter) EmitFloat32(f float32) int {
	pos := e.Here()
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
	e.code = append(e.code, buf[:]...)
	return pos
}

// PatchU16 overwrites the u16 (or i16) operand previously emitted at
// offset at with v, for forward references whose target is now known.
func (e *Emitter) PatchU16(at int, v uint16) error {
	if at < 0 || at+2 > len(e.code) {
		return fmt.Errorf("patch offset %d out of range", at)
	}
	binary.LittleEndian.PutUint16(e.code[at:at+2], v)
	return nil
}

// Label records that the next emitted byte is the target named by name.
// Patch entries already queued for name are resolved by Finish; later
// EmitBranch/EmitIfFalseBranch/EmitCall calls with the same name resolve
// eagerly.
func (e *Emitter) Label(name string) {
	e.labels[name] = e.Here()
}

// resolveOrQueue computes a relative i16 offset from the byte immediately
// after a branch/call operand to target, or queues a patch if target
// isn't defined yet.
func (e *Emitter) resolveOrQueue(operandAt int, target string) error {
	if pos, ok := e.labels[target]; ok {
		rel := pos - (operandAt + 2)
		if rel < math.MinInt16 || rel > math.MaxInt16 {
			return fmt.Errorf("branch target %q out of i16 range", target)
		}
		return e.PatchU16(operandAt, uint16(int16(rel)))
	}
	e.patches = append(e.patches, patchEntry{at: operandAt, target: target})
	return nil
}

// EmitBranch emits OpBranch to target (patched later if target is a
// forward reference).
func (e *Emitter) EmitBranch(target string) error {
	e.EmitOpcode(vm.OpBranch)
	at := e.EmitI16(0)
	return e.resolveOrQueue(at, target)
}

// EmitIfFalseBranch emits OpIfFalseBranch to target.
func (e *Emitter) EmitIfFalseBranch(target string) error {
	e.EmitOpcode(vm.OpIfFalseBranch)
	at := e.EmitI16(0)
	return e.resolveOrQueue(at, target)
}

// EmitCall emits OpCall to target.
func (e *Emitter) EmitCall(target string) error {
	e.EmitOpcode(vm.OpCall)
	at := e.EmitI16(0)
	return e.resolveOrQueue(at, target)
}

// EnterFunction begins a function body: it emits a placeholder Reserve(0)
// instruction (patched by ExitFunction or EmitReserveIfNeeded once the
// local-slot count is known) and pushes a frame tracking it.
func (e *Emitter) EnterFunction() {
	e.EmitOpcode(vm.OpReserve)
	at := e.EmitU16(0)
	e.frames = append(e.frames, frame{reserveAt: at, localSlots: 0})
}

// ReserveLocal bumps the current function's declared local-slot count by
// width cells (1 for a scalar, n+1 for a compound of n payload cells),
// returning the slot index assigned to this local.
func (e *Emitter) ReserveLocal(width uint16) (uint16, error) {
	if len(e.frames) == 0 {
		return 0, fmt.Errorf("reserve_local outside enter_function/exit_function")
	}
	f := &e.frames[len(e.frames)-1]
	slot := f.localSlots
	f.localSlots += width
	return slot, nil
}

// EmitReserveIfNeeded patches the current function's Reserve instruction
// with its final local-slot count, a no-op if no locals were ever
// reserved (the placeholder Reserve(0) stays exactly that).
func (e *Emitter) EmitReserveIfNeeded() error {
	if len(e.frames) == 0 {
		return fmt.Errorf("emit_reserve_if_needed outside enter_function/exit_function")
	}
	f := e.frames[len(e.frames)-1]
	return e.PatchU16(f.reserveAt, f.localSlots)
}

// ExitFunction finalizes the current function body: patches its Reserve
// instruction (in case the caller hasn't already via
// EmitReserveIfNeeded), emits OpExit, and pops the frame.
func (e *Emitter) ExitFunction() error {
	if err := e.EmitReserveIfNeeded(); err != nil {
		return err
	}
	e.EmitOpcode(vm.OpExit)
	e.frames = e.frames[:len(e.frames)-1]
	return nil
}

// Finish resolves all queued forward-reference patches and returns the
// completed code buffer. Returns an error wrapping ErrUnclosedConstruct if
// a function body is still open, or naming the first label that was
// referenced but never defined (an unclosed construct, per spec §7's
// ErrUnclosedConstruct).
func (e *Emitter) Finish() ([]byte, error) {
	if len(e.frames) > 0 {
		return nil, fmt.Errorf("%w: function body still open", vm.ErrUnclosedConstruct)
	}
	for _, p := range e.patches {
		pos, ok := e.labels[p.target]
		if !ok {
			return nil, fmt.Errorf("%w: label %q referenced but never defined", vm.ErrUnclosedConstruct, p.target)
		}
		rel := pos - (p.at + 2)
		if rel < math.MinInt16 || rel > math.MaxInt16 {
			return nil, fmt.Errorf("branch target %q out of i16 range", p.target)
		}
		if err := e.PatchU16(p.at, uint16(int16(rel))); err != nil {
			return nil, err
		}
	}
	return e.code, nil
}
