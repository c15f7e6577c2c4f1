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

// Package romio reads the ARM9 binary, autoloads and overlays out of a
// Nintendo DS ROM image, the raw byte source every other package's
// analysis ultimately runs against.
package romio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pret/dsdecomp/addr"
)

// headerSize is the fixed-size portion of the NDS ROM header this package
// reads; everything after it (icon/title, extended header fields) is out
// of scope.
const headerSize = 0x170

// Header is the subset of the NDS ROM header needed to locate the ARM9
// binary and its autoload table.
type Header struct {
	Arm9RomOffset    uint32
	Arm9EntryAddress addr.Addr
	Arm9RamAddress   addr.Addr
	Arm9Size         uint32

	Arm9OverlayOffset uint32
	Arm9OverlaySize   uint32
}

// ParseHeader reads the fixed header fields from the first headerSize
// bytes of a ROM image.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, fmt.Errorf("romio: image too small for a header (%d bytes)", len(data))
	}
	le := binary.LittleEndian
	return Header{
		Arm9RomOffset:     le.Uint32(data[0x20:]),
		Arm9EntryAddress:  addr.Addr(le.Uint32(data[0x24:])),
		Arm9RamAddress:    addr.Addr(le.Uint32(data[0x28:])),
		Arm9Size:          le.Uint32(data[0x2C:]),
		Arm9OverlayOffset: le.Uint32(data[0x50:]),
		Arm9OverlaySize:   le.Uint32(data[0x54:]),
	}, nil
}

// AutoloadInfo is one entry of the autoload table appended after the ARM9
// binary's own code, per the standard Nintendo SDK crt0 layout.
type AutoloadInfo struct {
	RamAddress addr.Addr
	Size       uint32
	BssSize    uint32
	AutoloadListEntryAddress addr.Addr // callback invoked once the block is copied in
}

// OverlayInfo is one entry of an overlay table (y9.bin/y7.bin).
type OverlayInfo struct {
	ID           uint16
	RamAddress   addr.Addr
	RamSize      uint32
	BssSize      uint32
	StaticInitStart addr.Addr
	StaticInitEnd   addr.Addr
	FileID       uint32
	CompressedSize uint32
	Flags        uint32
}

const overlayInfoSize = 32

// ParseOverlayTable parses the fixed 32-byte-per-entry overlay table.
func ParseOverlayTable(data []byte) ([]OverlayInfo, error) {
	if len(data)%overlayInfoSize != 0 {
		return nil, fmt.Errorf("romio: overlay table size %d is not a multiple of %d", len(data), overlayInfoSize)
	}
	le := binary.LittleEndian
	out := make([]OverlayInfo, 0, len(data)/overlayInfoSize)
	for off := 0; off < len(data); off += overlayInfoSize {
		e := data[off:]
		out = append(out, OverlayInfo{
			ID:              uint16(le.Uint32(e[0x00:])),
			RamAddress:      addr.Addr(le.Uint32(e[0x04:])),
			RamSize:         le.Uint32(e[0x08:]),
			BssSize:         le.Uint32(e[0x0C:]),
			StaticInitStart: addr.Addr(le.Uint32(e[0x10:])),
			StaticInitEnd:   addr.Addr(le.Uint32(e[0x14:])),
			FileID:          le.Uint32(e[0x18:]),
			CompressedSize:  le.Uint32(e[0x1C:]) & 0x00FFFFFF,
			Flags:           le.Uint32(e[0x1C:]) >> 24,
		})
	}
	return out, nil
}

// ParseAutoloadTable parses the variable-length autoload table that
// immediately follows the ARM9 static binary in the ROM image.
func ParseAutoloadTable(data []byte) ([]AutoloadInfo, error) {
	const entrySize = 12
	le := binary.LittleEndian
	var out []AutoloadInfo
	for off := 0; off+entrySize <= len(data); off += entrySize {
		ram := le.Uint32(data[off:])
		if ram == 0 {
			break
		}
		out = append(out, AutoloadInfo{
			RamAddress: addr.Addr(ram),
			Size:       le.Uint32(data[off+4:]),
			BssSize:    le.Uint32(data[off+8:]),
		})
	}
	return out, nil
}

// ReadAll reads a full ROM image from r into memory. ROM images are small
// enough (at most 4 GiB, realistically tens to low hundreds of MiB) that
// holding the whole thing in memory is the simplest correct approach, as
// it is throughout the rest of the analysis pipeline.
func ReadAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}

// DetectOverlayGroups partitions overlays into groups whose RAM ranges
// never overlap any other group member: two overlays sharing any byte of
// address space can never be loaded simultaneously and so belong to
// different groups, but the converse does not hold, since the linker
// keeps any group of mutually-non-overlapping overlays loadable together.
// The returned slice's index is not a group id, only a stable grouping.
func DetectOverlayGroups(overlays []OverlayInfo) [][]uint16 {
	type span struct {
		lo, hi addr.Addr
		id     uint16
	}
	spans := make([]span, len(overlays))
	for i, o := range overlays {
		spans[i] = span{lo: o.RamAddress, hi: o.RamAddress + addr.Addr(o.RamSize), id: o.ID}
	}

	overlaps := func(a, b span) bool { return a.lo < b.hi && b.lo < a.hi }

	var groups [][]uint16
	assigned := make([]bool, len(spans))
	for i := range spans {
		if assigned[i] {
			continue
		}
		group := []uint16{spans[i].id}
		assigned[i] = true
		for j := i + 1; j < len(spans); j++ {
			if assigned[j] {
				continue
			}
			conflicts := false
			for k := range group {
				var ks span
				for _, s := range spans {
					if s.id == group[k] {
						ks = s
						break
					}
				}
				if overlaps(ks, spans[j]) {
					conflicts = true
					break
				}
			}
			if !conflicts {
				group = append(group, spans[j].id)
				assigned[j] = true
			}
		}
		groups = append(groups, group)
	}
	return groups
}
