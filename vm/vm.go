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

	"github.com/google/uuid"
)

// Default region sizes, in cells, used when a Config leaves a field at 0.
const (
	DefaultGlobalCells = 4096
	DefaultDataCells   = 1024
	DefaultReturnCells = 1024
	DefaultCodeBytes   = 16384
)

// Config configures a new VM instance. It is supplied directly by the
// embedding host (never read from flags or a config file inside this
// module), the same construction shape as probe-lang/lang/vm.New's
// explicit (code, constants, gasLimit) parameter list.
type Config struct {
	GlobalCells      uint32
	DataStackCells   uint32
	ReturnStackCells uint32
	CodeBytes        uint32

	// Debug runs ensure_invariants() after every opcode (spec §5). When
	// false, invariants are only checked at stack-boundary operations.
	Debug bool
}

func (c Config) withDefaults() Config {
	if c.GlobalCells == 0 {
		c.GlobalCells = DefaultGlobalCells
	}
	if c.DataStackCells == 0 {
		c.DataStackCells = DefaultDataCells
	}
	if c.ReturnStackCells == 0 {
		c.ReturnStackCells = DefaultReturnCells
	}
	if c.CodeBytes == 0 {
		c.CodeBytes = DefaultCodeBytes
	}
	return c
}

// VM is one Tacit interpreter instance: an arena (global heap + data stack
// + return stack), a code segment, a dictionary head, and the cursor
// registers the interpreter loop advances.
//
// Multiple VM instances may be created and used independently (spec §5);
// nothing here is package-level mutable state.
type VM struct {
	// ID uniquely identifies this instance, so a host juggling many VMs can
	// correlate error reports and dumps back to one of them.
	ID uuid.UUID

	Arena *Arena
	Code  *CodeSegment
	Debug bool

	Digest Digester

	sp  uint32 // absolute cell index, one past the top of the data stack
	rsp uint32 // absolute cell index, one past the top of the return stack
	bp  uint32 // absolute cell index, base of the current call frame
	gp  uint32 // absolute cell index, one past the last used global cell
	ip  uint32 // byte offset into Code

	head uint32 // absolute cell index of the dictionary's most recent entry header, 0 if empty

	Running bool
}

// Digester interns and resolves strings. vm depends only on this
// interface; digest.Table is the concrete implementation (kept in its own
// package since spec §4.8 specifies it purely as a contract the rest of
// the system is built against).
type Digester interface {
	Intern(s string) uint16
	Get(index uint16) (string, bool)
}

// New constructs a VM from cfg and a pre-assembled code segment.
func New(cfg Config, code []byte, digest Digester) (*VM, error) {
	cfg = cfg.withDefaults()
	arena, err := NewArena(cfg.GlobalCells, cfg.DataStackCells, cfg.ReturnStackCells)
	if err != nil {
		return nil, err
	}
	cs, err := newCodeSegment(cfg.CodeBytes, code)
	if err != nil {
		return nil, err
	}
	v := &VM{
		ID:     uuid.New(),
		Arena:  arena,
		Code:   cs,
		Debug:  cfg.Debug,
		Digest: digest,
	}
	v.Reset()
	return v, nil
}

// Reset rewinds all cursor registers to an empty VM with the dictionary
// and global heap cleared, leaving the code segment and arena capacity
// untouched. Equivalent to spec §4.11's reset_vm.
func (v *VM) Reset() {
	dataBase, _ := v.Arena.Bounds(RegionDataStack)
	returnBase, _ := v.Arena.Bounds(RegionReturnStack)
	globalBase, _ := v.Arena.Bounds(RegionGlobal)

	v.sp = dataBase
	v.rsp = returnBase
	v.bp = returnBase
	v.gp = globalBase
	v.ip = 0
	v.head = 0
	v.Running = true
}

// ensureInvariants runs the debug-mode structural checks named in spec §5.
// In release mode this is a no-op; individual operations still perform
// their own boundary checks regardless of Debug.
func (v *VM) ensureInvariants() error {
	if !v.Debug {
		return nil
	}
	dataBase, dataSize := v.Arena.Bounds(RegionDataStack)
	if v.sp < dataBase || v.sp > dataBase+dataSize {
		return newInvariantViolation(fmt.Sprintf("data stack cursor %d outside region [%d,%d]", v.sp, dataBase, dataBase+dataSize))
	}
	returnBase, returnSize := v.Arena.Bounds(RegionReturnStack)
	if v.rsp < returnBase || v.rsp > returnBase+returnSize {
		return newInvariantViolation(fmt.Sprintf("return stack cursor %d outside region [%d,%d]", v.rsp, returnBase, returnBase+returnSize))
	}
	if v.bp < returnBase || v.bp > v.rsp {
		return newInvariantViolation(fmt.Sprintf("frame base %d not within [%d,%d]", v.bp, returnBase, v.rsp))
	}
	globalBase, globalSize := v.Arena.Bounds(RegionGlobal)
	if v.gp < globalBase || v.gp > globalBase+globalSize {
		return newInvariantViolation(fmt.Sprintf("global heap cursor %d outside region [%d,%d]", v.gp, globalBase, globalBase+globalSize))
	}
	if err := v.checkDictAcyclic(); err != nil {
		return err
	}
	return nil
}

// SP, RSP, BP, GP, IP expose the cursor registers read-only, for tests and
// dump helpers.
func (v *VM) SP() uint32  { return v.sp }
func (v *VM) RSP() uint32 { return v.rsp }
func (v *VM) BP() uint32  { return v.bp }
func (v *VM) GP() uint32  { return v.gp }
func (v *VM) IP() uint32  { return v.ip }
