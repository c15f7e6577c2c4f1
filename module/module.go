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

// Package module defines Module, the data model tying together a ROM's
// main binary, its autoloads, and its overlays (spec §3). The module list
// and cross-module queries live on xref.Program (design note: cyclic
// module references are avoided by keeping all cross-module lookups on
// that Program rather than back-pointers on Module).
package module

import (
	"fmt"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/reloc"
	"github.com/pret/dsdecomp/section"
	"github.com/pret/dsdecomp/symbol"
)

// AutoloadKind distinguishes the special CPU-local autoload destinations
// from a generically-numbered one.
type AutoloadKind int

const (
	AutoloadItcm AutoloadKind = iota
	AutoloadDtcm
	AutoloadUnknown
)

// Kind is the tagged-sum identity of a Module.
type Kind struct {
	Tag           KindTag
	AutoloadKind  AutoloadKind
	AutoloadIndex uint32 // meaningful only when AutoloadKind == AutoloadUnknown
	OverlayID     uint16
}

type KindTag int

const (
	KindMain KindTag = iota
	KindAutoload
	KindOverlay
)

func Main() Kind                     { return Kind{Tag: KindMain} }
func Overlay(id uint16) Kind         { return Kind{Tag: KindOverlay, OverlayID: id} }
func AutoloadKindOf(k AutoloadKind, idx uint32) Kind {
	return Kind{Tag: KindAutoload, AutoloadKind: k, AutoloadIndex: idx}
}

func (k Kind) String() string {
	switch k.Tag {
	case KindMain:
		return "main"
	case KindOverlay:
		return fmt.Sprintf("overlay(%d)", k.OverlayID)
	case KindAutoload:
		switch k.AutoloadKind {
		case AutoloadItcm:
			return "itcm"
		case AutoloadDtcm:
			return "dtcm"
		default:
			return fmt.Sprintf("autoload(%d)", k.AutoloadIndex)
		}
	default:
		return "unknown"
	}
}

// RelocModule converts this Kind into the reloc.Module spec used when this
// module is the unambiguous destination of a relocation.
func (k Kind) RelocModule() reloc.Module {
	switch k.Tag {
	case KindMain:
		return reloc.Main()
	case KindOverlay:
		return reloc.Overlay(k.OverlayID)
	case KindAutoload:
		switch k.AutoloadKind {
		case AutoloadItcm:
			return reloc.Itcm()
		case AutoloadDtcm:
			return reloc.Dtcm()
		default:
			return reloc.Autoload(k.AutoloadIndex)
		}
	default:
		return reloc.None()
	}
}

// Module is one ARM9 code+data segment: the main static binary, an
// autoload, or an overlay.
type Module struct {
	Name string
	Kind Kind

	BaseAddress addr.Addr
	Code        []byte // raw code+rodata+data bytes, BaseAddress-relative
	BssSize     uint32

	FuncPrefix string // "func_" or "func_ovNNN_"
	DataPrefix string // "data_" or "data_ovNNN_"

	Sections *section.List
	Symbols  *symbol.Map
	Relocs   *reloc.Store
}

// New creates an empty Module ready for section synthesis.
func New(name string, kind Kind, base addr.Addr, code []byte, bssSize uint32) *Module {
	funcPrefix, dataPrefix := "func_", "data_"
	if kind.Tag == KindOverlay {
		funcPrefix = fmt.Sprintf("func_ov%03d_", kind.OverlayID)
		dataPrefix = fmt.Sprintf("data_ov%03d_", kind.OverlayID)
	}
	return &Module{
		Name:        name,
		Kind:        kind,
		BaseAddress: base,
		Code:        code,
		BssSize:     bssSize,
		FuncPrefix:  funcPrefix,
		DataPrefix:  dataPrefix,
		Sections:    section.NewList(),
		Symbols:     symbol.NewMap(),
		Relocs:      reloc.NewStore(),
	}
}

// Base returns the module's base address, satisfying section.Code.
func (m *Module) Base() addr.Addr { return m.BaseAddress }

// End returns the address one past the module's code+data extent (not
// including bss).
func (m *Module) End() addr.Addr {
	return m.BaseAddress + addr.Addr(len(m.Code))
}

// Byte returns the byte at absolute address a, satisfying section.Code.
func (m *Module) Byte(a addr.Addr) byte { return m.ByteAt(a) }

// BssEnd returns the address one past the module's bss region.
func (m *Module) BssEnd() addr.Addr {
	return m.End() + addr.Addr(m.BssSize)
}

// Contains reports whether a lies within this module's code+data extent
// (not including bss).
func (m *Module) Contains(a addr.Addr) bool {
	c := a.Clear()
	return c >= m.BaseAddress && c < m.End()
}

// ContainsData reports whether a lies within this module's code+data+bss
// extent.
func (m *Module) ContainsData(a addr.Addr) bool {
	c := a.Clear()
	return c >= m.BaseAddress && c < m.BssEnd()
}

// ByteAt returns the byte at absolute address a within this module's code.
func (m *Module) ByteAt(a addr.Addr) byte {
	return m.Code[uint32(a.Clear())-uint32(m.BaseAddress)]
}

// Slice returns the module's code bytes starting at absolute address a,
// running to the end of the code (not bss).
func (m *Module) Slice(a addr.Addr) []byte {
	off := uint32(a.Clear()) - uint32(m.BaseAddress)
	if off > uint32(len(m.Code)) {
		return nil
	}
	return m.Code[off:]
}

// Word reads a little-endian 32-bit word at absolute address a.
func (m *Module) Word(a addr.Addr) uint32 {
	b := m.Slice(a)
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
