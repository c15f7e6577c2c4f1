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

// Package elfobj writes relocatable (ET_REL) ARM32 little-endian ELF
// object files: the Delinker's output format. The standard library's
// debug/elf only reads ELF; this package supplies the write side, reusing
// debug/elf's type and relocation constants so the two halves agree on
// what every field means.
package elfobj

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"sort"
)

// MapKind identifies an ARM "mapping symbol", which tells a linker or
// disassembler how to interpret the bytes starting at its address.
type MapKind int

const (
	MapARM MapKind = iota
	MapThumb
	MapData
)

func (k MapKind) symbolName() string {
	switch k {
	case MapARM:
		return "$a"
	case MapThumb:
		return "$t"
	default:
		return "$d"
	}
}

// Symbol is one ELF symbol table entry to emit.
type Symbol struct {
	Name    string
	Section string // empty for SHN_ABS (e.g. the overlay-id symbol)
	Value   uint32
	Size    uint32
	Func    bool // STT_FUNC vs STT_OBJECT/STT_NOTYPE
	Global  bool
	Weak    bool
}

// Mapping is an ARM mapping symbol: an unnamed anchor fixing the
// instruction set in effect from Value onward within Section.
type Mapping struct {
	Section string
	Value   uint32
	Kind    MapKind
}

// RelocKind names which debug/elf.R_ARM relocation type a Relocation
// entry corresponds to.
type RelocKind int

const (
	RelArmCall    RelocKind = iota // R_ARM_PC24 (ARM bl/b)
	RelArmCallX                    // R_ARM_XPC25 (bl switching to Thumb)
	RelThumbCall                   // R_ARM_THM_PC22 (Thumb bl)
	RelThumbCallX                  // R_ARM_THM_XPC22-equivalent: emitted as THM_PC22, mode switch is implicit in bl/blx encoding
	RelAbs32                       // R_ARM_ABS32 (data pointer load)
)

func (k RelocKind) armType() elf.R_ARM {
	switch k {
	case RelArmCall:
		return elf.R_ARM_PC24
	case RelArmCallX:
		return elf.R_ARM_XPC25
	case RelThumbCall, RelThumbCallX:
		return elf.R_ARM_THM_PC22
	default:
		return elf.R_ARM_ABS32
	}
}

// Relocation is one relocation entry, expressed against a zero-addend
// canonical form: callers must have already folded any non-zero addend
// into the referenced symbol's value before emission, since a linker-side
// consumer (the decompilation project's own linker script and subsequent
// re-assembly) expects every relocation entry addend to be exactly zero
// or the instruction's own implicit PC-bias, never an arbitrary offset.
type Relocation struct {
	Section string
	Offset  uint32
	Symbol  string
	Kind    RelocKind
	Addend  int64
}

// Section is one input section's raw bytes (empty for .bss, which
// contributes only a size).
type Section struct {
	Name      string
	Data      []byte // nil for SHT_NOBITS
	Bss       bool
	Alignment uint32
	Exec      bool
	Write     bool
}

// Object collects everything needed to write one ET_REL file.
type Object struct {
	Sections    []Section
	Symbols     []Symbol
	Mappings    []Mapping
	Relocations []Relocation
}

type strtab struct {
	buf []byte
	off map[string]uint32
}

func newStrtab() *strtab {
	return &strtab{buf: []byte{0}, off: map[string]uint32{"": 0}}
}

func (t *strtab) add(s string) uint32 {
	if o, ok := t.off[s]; ok {
		return o
	}
	o := uint32(len(t.buf))
	t.buf = append(t.buf, []byte(s)...)
	t.buf = append(t.buf, 0)
	t.off[s] = o
	return o
}

const (
	ehsize    = 52 // ELF32 header
	shentsize = 40 // ELF32 section header
	symsize   = 16 // ELF32 symbol entry
	relasize  = 12 // ELF32 Rela entry
)

// Write serializes obj as an ARM32 little-endian ET_REL file.
func Write(obj *Object) ([]byte, error) {
	shstr := newStrtab()
	str := newStrtab()

	type outSection struct {
		name      string
		shType    uint32
		flags     uint32
		addralign uint32
		data      []byte
		size      uint32
		link      uint32
		info      uint32
		entsize   uint32
	}

	var secs []outSection
	secIndex := map[string]int{".shstrtab": -1}
	// index 0 is SHN_UNDEF in ELF; real sections start at 1
	secIndex[""] = 0

	for _, s := range obj.Sections {
		flags := uint32(0x2) // SHF_ALLOC
		if s.Exec {
			flags |= 0x4
		}
		if s.Write {
			flags |= 0x1
		}
		shType := uint32(elf.SHT_PROGBITS)
		if s.Bss {
			shType = uint32(elf.SHT_NOBITS)
		}
		align := s.Alignment
		if align == 0 {
			align = 4
		}
		secIndex[s.Name] = len(secs) + 1
		secs = append(secs, outSection{
			name: s.Name, shType: shType, flags: flags, addralign: align,
			data: s.Data, size: uint32(len(s.Data)),
		})
		if s.Bss {
			secs[len(secs)-1].size = bssSize(s)
		}
	}

	allSyms := buildSymbols(obj, secIndex, str)
	symtabSec := outSection{
		name: ".symtab", shType: uint32(elf.SHT_SYMTAB), addralign: 4,
		data: allSyms.data, link: 0, info: allSyms.localCount, entsize: symsize,
	}
	symtabIdx := len(secs) + 1
	secs = append(secs, symtabSec)

	strtabIdx := len(secs) + 1
	secs = append(secs, outSection{name: ".strtab", shType: uint32(elf.SHT_STRTAB), addralign: 1, data: str.buf})

	secs[symtabIdx-1].link = uint32(strtabIdx)

	// one .rel<section> for every section that has relocations
	relBySection := map[string][]Relocation{}
	for _, r := range obj.Relocations {
		relBySection[r.Section] = append(relBySection[r.Section], r)
	}
	var relSectionNames []string
	for name := range relBySection {
		relSectionNames = append(relSectionNames, name)
	}
	sort.Strings(relSectionNames)

	for _, name := range relSectionNames {
		rels := relBySection[name]
		sort.Slice(rels, func(i, j int) bool { return rels[i].Offset < rels[j].Offset })
		buf := &bytes.Buffer{}
		for _, r := range rels {
			symIdx, ok := allSyms.index[r.Symbol]
			if !ok {
				continue
			}
			info := uint32(symIdx)<<8 | uint32(r.Kind.armType())
			binary.Write(buf, binary.LittleEndian, uint32(r.Offset))
			binary.Write(buf, binary.LittleEndian, info)
			binary.Write(buf, binary.LittleEndian, int32(r.Addend))
		}
		secs = append(secs, outSection{
			name: ".rel" + name, shType: uint32(elf.SHT_RELA), addralign: 4,
			data: buf.Bytes(), link: uint32(symtabIdx), info: uint32(secIndex[name]), entsize: relasize,
		})
	}

	// assemble the shstrtab now that every section name is known
	for _, s := range secs {
		shstr.add(s.name)
	}
	shstrIdx := len(secs) + 1
	secs = append(secs, outSection{name: ".shstrtab", shType: uint32(elf.SHT_STRTAB), addralign: 1, data: shstr.buf})

	return assemble(secs, shstrIdx, shstr)
}

func bssSize(s Section) uint32 { return uint32(len(s.Data)) }

type symbolTable struct {
	data       []byte
	index      map[string]int
	localCount uint32
}

func buildSymbols(obj *Object, secIndex map[string]int, str *strtab) symbolTable {
	type entry struct {
		name    uint32
		info    byte
		shndx   uint16
		value   uint32
		size    uint32
		symName string
	}

	entries := []entry{{}} // index 0: the null symbol
	index := map[string]int{}

	addSym := func(name string, shndx int, value, size uint32, typ elf.SymType, bind elf.SymBind) {
		e := entry{
			name: str.add(name), shndx: uint16(shndx), value: value, size: size,
			info: byte(bind)<<4 | byte(typ), symName: name,
		}
		index[name] = len(entries)
		entries = append(entries, e)
	}

	for _, m := range obj.Mappings {
		addSym(m.Kind.symbolName(), secIndex[m.Section], m.Value, 0, elf.STT_NOTYPE, elf.STB_LOCAL)
	}

	var globals []Symbol
	for _, s := range obj.Symbols {
		if s.Global || s.Weak {
			globals = append(globals, s)
			continue
		}
		typ := elf.STT_OBJECT
		if s.Func {
			typ = elf.STT_FUNC
		}
		shndx := secIndex[s.Section]
		if s.Section == "" {
			shndx = int(elf.SHN_ABS)
		}
		addSym(s.Name, shndx, s.Value, s.Size, typ, elf.STB_LOCAL)
	}
	localCount := uint32(len(entries))

	for _, s := range globals {
		typ := elf.STT_OBJECT
		if s.Func {
			typ = elf.STT_FUNC
		}
		bind := elf.STB_GLOBAL
		if s.Weak {
			bind = elf.STB_WEAK
		}
		shndx := secIndex[s.Section]
		if s.Section == "" {
			shndx = int(elf.SHN_ABS)
		}
		addSym(s.Name, shndx, s.Value, s.Size, typ, bind)
	}

	buf := &bytes.Buffer{}
	for _, e := range entries {
		binary.Write(buf, binary.LittleEndian, e.name)
		binary.Write(buf, binary.LittleEndian, e.value)
		binary.Write(buf, binary.LittleEndian, e.size)
		buf.WriteByte(e.info)
		buf.WriteByte(0) // st_other
		binary.Write(buf, binary.LittleEndian, e.shndx)
	}
	return symbolTable{data: buf.Bytes(), index: index, localCount: localCount}
}

func assemble(secs []struct {
	name      string
	shType    uint32
	flags     uint32
	addralign uint32
	data      []byte
	size      uint32
	link      uint32
	info      uint32
	entsize   uint32
}, shstrIdx int, shstr *strtab) ([]byte, error) {
	out := &bytes.Buffer{}

	// file layout: ELF header, then every section's raw bytes back to back
	// (4-byte aligned), then the section header table.
	offsets := make([]uint32, len(secs))
	cursor := uint32(ehsize)
	for i, s := range secs {
		if s.shType == uint32(elf.SHT_NOBITS) {
			offsets[i] = cursor
			continue
		}
		cursor = align4(cursor)
		offsets[i] = cursor
		cursor += uint32(len(s.data))
	}
	shoff := align4(cursor)

	writeHeader(out, uint32(len(secs)+1), shoff, uint16(shstrIdx))

	cursor = ehsize
	for i, s := range secs {
		if s.shType == uint32(elf.SHT_NOBITS) {
			continue
		}
		for cursor < offsets[i] {
			out.WriteByte(0)
			cursor++
		}
		out.Write(s.data)
		cursor += uint32(len(s.data))
	}
	for cursor < shoff {
		out.WriteByte(0)
		cursor++
	}

	// null section header
	writeShdr(out, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	for i, s := range secs {
		shSize := s.size
		if s.shType != uint32(elf.SHT_NOBITS) {
			shSize = uint32(len(s.data))
		}
		writeShdr(out, shstr.off[s.name], s.shType, s.flags, offsets[i], shSize, s.link, s.info, s.addralign, s.entsize)
	}

	return out.Bytes(), nil
}

func align4(v uint32) uint32 { return (v + 3) &^ 3 }

func writeHeader(w *bytes.Buffer, shnum uint32, shoff uint32, shstrndx uint16) {
	w.Write([]byte{0x7f, 'E', 'L', 'F', 1, 1, 1, 0})
	w.Write(make([]byte, 8)) // padding
	binary.Write(w, binary.LittleEndian, uint16(elf.ET_REL))
	binary.Write(w, binary.LittleEndian, uint16(elf.EM_ARM))
	binary.Write(w, binary.LittleEndian, uint32(elf.EV_CURRENT))
	binary.Write(w, binary.LittleEndian, uint32(0)) // e_entry
	binary.Write(w, binary.LittleEndian, uint32(0)) // e_phoff
	binary.Write(w, binary.LittleEndian, shoff)
	binary.Write(w, binary.LittleEndian, uint32(0x05000000)) // e_flags: EABI version 5
	binary.Write(w, binary.LittleEndian, uint16(ehsize))
	binary.Write(w, binary.LittleEndian, uint16(0)) // e_phentsize
	binary.Write(w, binary.LittleEndian, uint16(0)) // e_phnum
	binary.Write(w, binary.LittleEndian, uint16(shentsize))
	binary.Write(w, binary.LittleEndian, uint16(shnum))
	binary.Write(w, binary.LittleEndian, shstrndx)
}

func writeShdr(w *bytes.Buffer, name, shType, flags, offset, size, link, info, align, entsize uint32) {
	binary.Write(w, binary.LittleEndian, name)
	binary.Write(w, binary.LittleEndian, shType)
	binary.Write(w, binary.LittleEndian, flags)
	binary.Write(w, binary.LittleEndian, uint32(0)) // sh_addr
	binary.Write(w, binary.LittleEndian, offset)
	binary.Write(w, binary.LittleEndian, size)
	binary.Write(w, binary.LittleEndian, link)
	binary.Write(w, binary.LittleEndian, info)
	binary.Write(w, binary.LittleEndian, align)
	binary.Write(w, binary.LittleEndian, entsize)
}
