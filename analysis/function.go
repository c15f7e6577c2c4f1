// This file is part of dsdecomp.
//
// dsdecomp is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// dsdecomp is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with dsdecomp.  If not, see <https://www.gnu.org/licenses/>.

// Package analysis implements the function analyzer (C4): given a module's
// raw bytes and a starting address, it walks the instruction stream to
// discover a function's full extent, its internal labels, pool constants,
// jump tables, inline data tables, and outgoing calls.
package analysis

import (
	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/decode"
)

// Label is an internal branch target inside a function, reached only by
// branches from within the same function (a target reached from outside
// becomes its own Function instead).
type Label struct {
	Address addr.Addr
	Mode    addr.Mode
}

// PoolConstant is a literal value loaded via a PC-relative "ldr Rd, [pc,
// #n]" load embedded in the function's own instruction stream.
type PoolConstant struct {
	Address addr.Addr
	Value   uint32
}

// JumpTable is a computed-branch dispatch table discovered by one of the
// ARM/Thumb jump-table state machines.
type JumpTable struct {
	Address     addr.Addr
	Mode        addr.Mode
	CodeEntries bool // true: entries are absolute code addresses; false: signed 16-bit halfword offsets from the table
	Entries     []addr.Addr
}

// InlineTable is a run of data embedded directly in the code stream (not
// reached by any jump table) that the walker detected and skipped over
// rather than attempting to decode as instructions.
type InlineTable struct {
	Address addr.Addr
	Size    uint32
}

// CallKind distinguishes a call reached via "bl"/"blx" from a tail-call
// branch ("b"/"bx") to a different function.
type CallKind int

const (
	CallDirect CallKind = iota // bl/blx: returns here
	CallTail                   // b/bx to another function: does not return here
)

// FunctionCall is an outgoing call or tail-call branch from within the
// function to some other function's entry point.
type FunctionCall struct {
	From       addr.Addr
	To         addr.Addr
	Kind       CallKind
	Conditional bool
	FromThumb  bool
	ToThumb    bool
}

// Function is the full extent and internal structure of one analyzed
// function.
type Function struct {
	Name  string
	Start addr.Addr
	End   addr.Addr // exclusive
	Mode  addr.Mode

	// FirstInstructionAddress is the address the walk actually started at.
	// It differs from Start only when a constant pool precedes the code
	// (Start is then extended backward to cover the pool).
	FirstInstructionAddress addr.Addr

	Labels        []Label
	PoolConstants []PoolConstant
	JumpTables    []JumpTable
	InlineTables  []InlineTable
	Calls         []FunctionCall

	NoEpilogue bool // walker never found a return; extent runs to the end of the Source's bounds
}

// Size returns the function's byte length.
func (f *Function) Size() uint32 { return uint32(f.End) - uint32(f.Start) }

// Instructions decodes every instruction in [Start, End) using dec,
// skipping over inline and jump tables. code must be the module's full
// code slice (module-base-relative addresses are resolved by the caller).
func (f *Function) Instructions(dec decode.Decoder, code []byte, base addr.Addr) ([]decode.Instruction, error) {
	thumb := f.Mode == addr.Thumb
	skip := f.skipRanges()

	var out []decode.Instruction
	a := f.Start
	for a < f.End {
		if end, ok := skip[a]; ok {
			a = end
			continue
		}
		off := uint32(a.Clear()) - uint32(base)
		in, err := dec.Decode(a, thumb, code[off:])
		if err != nil {
			return nil, err
		}
		out = append(out, in)
		a += addr.Addr(in.Length)
	}
	return out, nil
}

func (f *Function) skipRanges() map[addr.Addr]addr.Addr {
	m := map[addr.Addr]addr.Addr{}
	for _, p := range f.PoolConstants {
		m[p.Address.Clear()] = p.Address.Clear() + 4
	}
	for _, jt := range f.JumpTables {
		sz := uint32(len(jt.Entries)) * 4
		if !jt.CodeEntries && jt.Mode == addr.Thumb {
			sz = uint32(len(jt.Entries)) * 2
		}
		m[jt.Address.Clear()] = jt.Address.Clear() + addr.Addr(sz)
	}
	for _, it := range f.InlineTables {
		m[it.Address.Clear()] = it.Address.Clear() + addr.Addr(it.Size)
	}
	return m
}
