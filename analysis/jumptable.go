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

package analysis

import (
	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/decode"
)

// recentInsn is one entry of the walker's small lookbehind window, used by
// the jump-table recognizers below.
type recentInsn struct {
	addr addr.Addr
	in   decode.Instruction
}

const recentWindow = 4

func (w *walker) remember(a addr.Addr, in decode.Instruction) {
	w.recent = append(w.recent, recentInsn{a, in})
	if len(w.recent) > recentWindow {
		w.recent = w.recent[1:]
	}
}

// detectARMJumpTable recognizes the single-instruction ARM dispatch form
// "ldr pc, [pc, Rn, lsl #2]" with the table of absolute code addresses
// immediately following the instruction.
func detectARMJumpTable(in decode.Instruction, src Source) (JumpTable, bool) {
	if in.Op != decode.OpLDR || in.Rd != decode.PC || in.Rn != decode.PC || in.IsPoolLoad {
		return JumpTable{}, false
	}
	tableAddr := in.Address + 8
	return JumpTable{Address: tableAddr, Mode: addr.ARM, CodeEntries: true}, true
}

// detectThumbJumpTable recognizes the compiled Thumb dispatch idiom:
//
//	add  off, idx, idx
//	add  off, pc
//	ldrh j, [off, #imm]
//	lsl  j, j, #16
//	asr  j, j, #16
//	add  pc, j
//
// terminating in "add pc, j". w.recent holds the four instructions
// immediately preceding it: the lsl/asr pair confirm the idiom (they
// sign-extend the halfword into a byte offset doubled to a halfword
// offset), and the ldrh's own base register, computed by the preceding
// "add off, pc", gives the table's address. The table holds signed 16-bit
// offsets; each resolves to tableAddr + offset*2 + 2.
func (w *walker) detectThumbJumpTable(jReg decode.Reg) (JumpTable, bool) {
	if len(w.recent) < 4 {
		return JumpTable{}, false
	}
	asr := w.recent[len(w.recent)-1]
	lsl := w.recent[len(w.recent)-2]
	ldrh := w.recent[len(w.recent)-3]
	addPC := w.recent[len(w.recent)-4]

	if asr.in.Op != decode.OpASR || asr.in.Rd != jReg || asr.in.Rm != jReg || asr.in.ShiftImm != 16 {
		return JumpTable{}, false
	}
	if lsl.in.Op != decode.OpLSL || lsl.in.Rd != jReg || lsl.in.Rm != jReg || lsl.in.ShiftImm != 16 {
		return JumpTable{}, false
	}
	if ldrh.in.Op != decode.OpLDRH || ldrh.in.Rd != jReg || ldrh.in.Rn != addPC.in.Rd {
		return JumpTable{}, false
	}
	if addPC.in.Op != decode.OpADD || addPC.in.Rm != decode.PC {
		return JumpTable{}, false
	}

	base := addr.Align(addPC.addr+4, 4)
	tableAddr := base + addr.Addr(ldrh.in.Imm)
	return JumpTable{Address: tableAddr, Mode: addr.Thumb, CodeEntries: false}, true
}

// readJumpTableEntries reads count entries of a jump table from src,
// resolving each to an absolute code address. ARM tables hold absolute
// 4-byte code pointers; Thumb tables hold signed 16-bit offsets, two bytes
// apart, each resolving to jt.Address + entry*2 + 2 (the +2 accounts for
// the halfword itself, per the compiled idiom).
func readJumpTableEntries(src Source, jt JumpTable, count int, functionMode addr.Mode) []addr.Addr {
	out := make([]addr.Addr, 0, count)
	for i := 0; i < count; i++ {
		if jt.CodeEntries {
			a := jt.Address + addr.Addr(i*4)
			b := src.Bytes(a)
			word := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
			out = append(out, addr.Addr(word))
		} else {
			a := jt.Address + addr.Addr(i*2)
			b := src.Bytes(a)
			offset := int32(int16(uint16(b[0]) | uint16(b[1])<<8))
			target := addr.Addr(int64(jt.Address) + int64(offset)*2 + 2)
			out = append(out, target.WithThumb(functionMode == addr.Thumb))
		}
	}
	return out
}

// detectInlineTable recognizes a guarded indexed load off a literal data
// table embedded directly in the code stream: a register-offset load whose
// base register was most recently set by this function's own PC-relative
// pool load, and whose index register was most recently bounded by a "cmp
// Rindex, #imm" in the lookback window. The pool load's target gives the
// table's address; the cmp's immediate plus one gives its element count,
// multiplied by the load's element width for the table's size.
func (w *walker) detectInlineTable(in decode.Instruction) (InlineTable, bool) {
	var width uint32
	switch in.Op {
	case decode.OpLDRB:
		width = 1
	case decode.OpLDRH:
		width = 2
	case decode.OpLDR:
		width = 4
	default:
		return InlineTable{}, false
	}

	var base addr.Addr
	var count uint32
	haveBase, haveCount := false, false
	for i := len(w.recent) - 1; i >= 0; i-- {
		prev := w.recent[i].in
		if !haveBase && prev.IsPoolLoad && prev.Rd == in.Rn {
			base, haveBase = prev.Target.Clear(), true
		}
		if !haveCount && prev.Op == decode.OpCMP && prev.Rn == in.Rm {
			count, haveCount = uint32(prev.Imm)+1, true
		}
	}
	if !haveBase || !haveCount {
		return InlineTable{}, false
	}
	return InlineTable{Address: base, Size: count * width}, true
}
