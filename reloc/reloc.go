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

// Package reloc implements the relocation store (C3): a keyed store of
// source-address to destination relocations with module-targeting variants.
package reloc

import (
	"fmt"
	"sort"

	"github.com/pret/dsdecomp/addr"
)

// Kind identifies the instruction shape a relocation rewrites, and implies
// a fixed PC-relative addend applied by the CPU at execution time.
type Kind int

const (
	ArmCall Kind = iota
	ThumbCall
	ArmCallThumb
	ThumbCallArm
	ArmBranch
	Load
	OverlayID
)

// PCAddend is the implicit PC-addend the CPU applies for this kind of
// instruction: -8 for ARM-mode PC-relative instructions, -4 for Thumb, 0
// for data loads and the synthetic overlay-id relocation.
func (k Kind) PCAddend() int32 {
	switch k {
	case ArmCall, ArmBranch, ArmCallThumb:
		return -8
	case ThumbCall, ThumbCallArm:
		return -4
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case ArmCall:
		return "arm_call"
	case ThumbCall:
		return "thumb_call"
	case ArmCallThumb:
		return "arm_call_thumb"
	case ThumbCallArm:
		return "thumb_call_arm"
	case ArmBranch:
		return "arm_branch"
	case Load:
		return "load"
	case OverlayID:
		return "overlay_id"
	default:
		return "unknown"
	}
}

// ParseKind parses the text form used by the relocation file grammar.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "arm_call":
		return ArmCall, nil
	case "thumb_call":
		return ThumbCall, nil
	case "arm_call_thumb":
		return ArmCallThumb, nil
	case "thumb_call_arm":
		return ThumbCallArm, nil
	case "arm_branch":
		return ArmBranch, nil
	case "load":
		return Load, nil
	case "overlay_id":
		return OverlayID, nil
	default:
		return 0, fmt.Errorf("unknown relocation kind %q", s)
	}
}

// CallKind picks the call relocation kind implied by the Thumb state of the
// call site and its destination.
func CallKind(fromThumb, toThumb bool) Kind {
	switch {
	case fromThumb && toThumb:
		return ThumbCall
	case fromThumb && !toThumb:
		return ThumbCallArm
	case !fromThumb && toThumb:
		return ArmCallThumb
	default:
		return ArmCall
	}
}

// ModuleKind tags which module(s) a relocation's destination targets.
type ModuleKind int

const (
	ModuleNone ModuleKind = iota
	ModuleMain
	ModuleItcm
	ModuleDtcm
	ModuleAutoload
	ModuleOverlay
	ModuleOverlays
)

// Module is the tagged-sum target-module specifier. Zero value is
// ModuleNone.
type Module struct {
	Kind         ModuleKind
	AutoloadIdx  uint32
	OverlayID    uint16
	OverlayIDs   []uint16 // sorted, deduplicated; used when Kind == ModuleOverlays
}

func None() Module           { return Module{Kind: ModuleNone} }
func Main() Module           { return Module{Kind: ModuleMain} }
func Itcm() Module           { return Module{Kind: ModuleItcm} }
func Dtcm() Module           { return Module{Kind: ModuleDtcm} }
func Autoload(idx uint32) Module { return Module{Kind: ModuleAutoload, AutoloadIdx: idx} }
func Overlay(id uint16) Module    { return Module{Kind: ModuleOverlay, OverlayID: id} }

// Overlays builds a Module targeting several candidate overlays. ids is
// deduplicated and sorted. If exactly one id remains it collapses to
// Overlay(id); a single id is never reported as ambiguous.
func Overlays(ids []uint16) Module {
	seen := make(map[uint16]bool, len(ids))
	var uniq []uint16
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })
	if len(uniq) == 1 {
		return Overlay(uniq[0])
	}
	return Module{Kind: ModuleOverlays, OverlayIDs: uniq}
}

func (m Module) String() string {
	switch m.Kind {
	case ModuleMain:
		return "main"
	case ModuleItcm:
		return "itcm"
	case ModuleDtcm:
		return "dtcm"
	case ModuleAutoload:
		return fmt.Sprintf("autoload(%d)", m.AutoloadIdx)
	case ModuleOverlay:
		return fmt.Sprintf("overlay(%d)", m.OverlayID)
	case ModuleOverlays:
		s := "overlays("
		for i, id := range m.OverlayIDs {
			if i > 0 {
				s += ","
			}
			s += fmt.Sprintf("%d", id)
		}
		return s + ")"
	default:
		return "none"
	}
}

// Relocation is a single rewritten call/branch/load site.
type Relocation struct {
	From   addr.Addr
	To     addr.Addr
	Addend int32
	Kind   Kind
	Module Module
}

func (r Relocation) String() string {
	s := fmt.Sprintf("from:%#08x kind:%s to:%#08x module:%s", uint32(r.From), r.Kind, uint32(r.To), r.Module)
	if r.Addend != 0 {
		s += fmt.Sprintf(" add:%+d", r.Addend)
	}
	return s
}

// Equal reports whether two relocations are identical in every field.
func (r Relocation) Equal(o Relocation) bool {
	if r.From != o.From || r.To != o.To || r.Addend != o.Addend || r.Kind != o.Kind || r.Module.Kind != o.Module.Kind {
		return false
	}
	switch r.Module.Kind {
	case ModuleAutoload:
		return r.Module.AutoloadIdx == o.Module.AutoloadIdx
	case ModuleOverlay:
		return r.Module.OverlayID == o.Module.OverlayID
	case ModuleOverlays:
		if len(r.Module.OverlayIDs) != len(o.Module.OverlayIDs) {
			return false
		}
		for i := range r.Module.OverlayIDs {
			if r.Module.OverlayIDs[i] != o.Module.OverlayIDs[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}
