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

// Package symbol implements the per-module symbol map (C2): a keyed store
// of named code/data/bss/label/jump-table/pool-constant symbols with
// by-address and by-name indices.
package symbol

import (
	"fmt"

	"github.com/pret/dsdecomp/addr"
)

// Kind distinguishes what a Symbol denotes.
type Kind int

const (
	Undefined Kind = iota
	Function
	Label
	PoolConstant
	JumpTable
	Data
	Bss
)

func (k Kind) String() string {
	switch k {
	case Function:
		return "function"
	case Label:
		return "label"
	case PoolConstant:
		return "pool_constant"
	case JumpTable:
		return "jump_table"
	case Data:
		return "data"
	case Bss:
		return "bss"
	default:
		return "undefined"
	}
}

// DataKind further refines a Data symbol's element width.
type DataKind int

const (
	DataAny DataKind = iota
	DataByte
	DataShort
	DataWord
)

func (k DataKind) String() string {
	switch k {
	case DataByte:
		return "byte"
	case DataShort:
		return "short"
	case DataWord:
		return "word"
	default:
		return "any"
	}
}

// Symbol is a single named entity at an address. Only the fields relevant
// to Kind are meaningful; see the struct comments on each kind-specific
// field.
type Symbol struct {
	Name      string
	Kind      Kind
	Address   addr.Addr
	Ambiguous bool // points at multiple overlay candidates
	Local     bool // translation-unit scope

	// Function, Label
	Mode addr.Mode

	// Function
	Size       uint32
	UnknownBit bool

	// Label
	External bool

	// JumpTable
	CodeEntries bool // true: entries are code addresses, false: signed offsets

	// Data
	DataKind   DataKind
	Count      uint32
	CountKnown bool

	// Bss
	SizeKnown bool
}

// LabelName returns the canonical name for an internal branch target or
// pool constant at addr: ".L_{addr:08x}". Pool constants share this name
// space with labels.
func LabelName(a addr.Addr) string {
	return fmt.Sprintf(".L_%08x", uint32(a.Clear()))
}
