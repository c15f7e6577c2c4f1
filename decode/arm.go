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

package decode

import (
	"encoding/binary"

	"github.com/pret/dsdecomp/addr"
)

// IsUnconditionalARMWord reports whether the first word at code, read as
// little-endian ARM, carries the "always" condition nibble (0xE). Used by
// the function analyzer to distinguish an ARM function start from a Thumb
// one: a would-be ARM start whose condition is never AL is almost always
// misdecoded Thumb or data.
func IsUnconditionalARMWord(word uint32) bool {
	return word>>28 == 0xE
}

var dataProcOps = [...]Op{OpAND, OpEOR, OpSUB, OpRSB, OpADD, OpADC, OpSBC, OpRSC, OpTST, OpTEQ, OpCMP, OpCMN, OpORR, OpMOV, OpBIC, OpMVN}

// DecodeARM decodes a single 4-byte ARM instruction at a. code must contain
// at least 4 bytes starting at offset 0 (the caller slices the module's
// code to the right position).
func DecodeARM(a addr.Addr, code []byte) Instruction {
	word := binary.LittleEndian.Uint32(code)
	in := Instruction{Address: a, Thumb: false, Length: 4, Raw: word, Cond: CondAL}

	cond := Cond(word >> 28)
	if cond != 0xF { // 0xF (NV) never appears in ARMv5 encodings we handle
		in.Cond = cond
	}

	switch {
	case word&0x0FFFFFF0 == 0x012FFF10: // BX Rm
		in.Op = OpBX
		in.Rm = Reg(word & 0xF)
	case word&0x0FFFFFF0 == 0x012FFF30: // BLX Rm
		in.Op = OpBLX
		in.Rm = Reg(word & 0xF)
	case word&0x0E000000 == 0x0A000000: // B / BL
		link := word&0x01000000 != 0
		offset := int32(word&0x00FFFFFF) << 8 >> 6 // sign-extend 24-bit, *4
		target := addr.Addr(int64(a) + 8 + int64(offset))
		in.HasTarget = true
		in.Target = target
		if link {
			in.Op = OpBL
		} else {
			in.Op = OpB
		}
	case word&0x0FC000F0 == 0x00000090: // MUL
		in.Op = OpMUL
		in.Rd = Reg((word >> 16) & 0xF)
		in.Rn = Reg((word >> 12) & 0xF) // accumulate operand, unused for MUL
		in.Rm = Reg(word & 0xF)
	case word&0x0FE000F0 == 0x00200090: // MLA
		in.Op = OpMLA
		in.Rd = Reg((word >> 16) & 0xF)
		in.Rn = Reg((word >> 12) & 0xF)
		in.Rm = Reg(word & 0xF)
	case word&0x0FB00FF0 == 0x01000090:
		// SWP/SWPB: rare on this target, treat as data processing no-op for
		// register purposes (Rd<-[Rn], Rm stored)
		in.Op = OpUnknown
		in.Rd = Reg((word >> 12) & 0xF)
		in.Rn = Reg((word >> 16) & 0xF)
		in.Rm = Reg(word & 0xF)
	case word&0x0C000000 == 0x00000000: // data-processing
		decodeARMDataProcessing(&in, word)
	case word&0x0C000000 == 0x04000000: // single data transfer (LDR/STR)
		decodeARMSingleDataTransfer(&in, word, a)
	case word&0x0E000090 == 0x00000090: // halfword / signed data transfer
		decodeARMHalfwordTransfer(&in, word)
	case word&0x0E000000 == 0x08000000: // block data transfer (LDM/STM)
		decodeARMBlockTransfer(&in, word)
	case word&0x0F000000 == 0x0F000000: // SWI
		in.Op = OpSWI
		in.Imm = int32(word & 0x00FFFFFF)
	default:
		in.Op = OpUnknown
	}

	return in
}

func decodeARMDataProcessing(in *Instruction, word uint32) {
	opcode := (word >> 21) & 0xF
	s := word&(1<<20) != 0
	rn := Reg((word >> 16) & 0xF)
	rd := Reg((word >> 12) & 0xF)

	in.Op = dataProcOps[opcode]
	in.Rn = rn
	in.Rd = rd

	immediate := word&(1<<25) != 0
	if immediate {
		imm8 := word & 0xFF
		rot := ((word >> 8) & 0xF) * 2
		in.Imm = int32(imm8>>rot | imm8<<(32-rot))
	} else {
		in.Rm = Reg(word & 0xF)
		in.Shift = ShiftType(((word >> 5) & 0x3) + 1)
		if word&(1<<4) == 0 {
			// shift by immediate amount; a register-specified shift amount
			// (bit4 set) is rare in recoverable code and is left as
			// ShiftImm=0, which callers must treat as "unknown amount"
			in.ShiftImm = (word >> 7) & 0x1F
		}
	}

	// CMP/CMN/TST/TEQ do not write Rd; their "Rd" field in the encoding is
	// unused (SBZ) and must not be treated as a destination register by
	// callers inspecting in.Rd.
	switch in.Op {
	case OpCMP, OpCMN, OpTST, OpTEQ:
		in.Rd = -1
	}
	_ = s
}

func decodeARMSingleDataTransfer(in *Instruction, word uint32, a addr.Addr) {
	load := word&(1<<20) != 0
	byteTransfer := word&(1<<22) != 0
	pre := word&(1<<24) != 0
	up := word&(1<<23) != 0
	writeback := word&(1<<21) != 0
	rn := Reg((word >> 16) & 0xF)
	rd := Reg((word >> 12) & 0xF)

	if load {
		if byteTransfer {
			in.Op = OpLDRB
		} else {
			in.Op = OpLDR
		}
	} else {
		if byteTransfer {
			in.Op = OpSTRB
		} else {
			in.Op = OpSTR
		}
	}
	in.Rn = rn
	in.Rd = rd
	in.WriteBack = writeback && pre

	registerOffset := word&(1<<25) != 0
	if !registerOffset {
		imm := int32(word & 0xFFF)
		if !up {
			imm = -imm
		}
		in.Imm = imm
	} else {
		in.Rm = Reg(word & 0xF)
	}

	if load && rn == PC && pre && !registerOffset {
		// PC-relative literal load: a pool constant.
		target := addr.Addr(int64(a) + 8 + int64(in.Imm))
		in.IsPoolLoad = true
		in.HasTarget = true
		in.Target = addr.Align(target, 4)
	}
}

func decodeARMHalfwordTransfer(in *Instruction, word uint32) {
	load := word&(1<<20) != 0
	sh := (word >> 5) & 0x3
	rn := Reg((word >> 16) & 0xF)
	rd := Reg((word >> 12) & 0xF)
	pre := word&(1<<24) != 0
	writeback := word&(1<<21) != 0

	switch {
	case load && sh == 0b01:
		in.Op = OpLDRH
	case load && sh == 0b10:
		in.Op = OpLDRSB
	case load && sh == 0b11:
		in.Op = OpLDRSH
	case !load && sh == 0b01:
		in.Op = OpSTRH
	default:
		in.Op = OpUnknown
	}
	in.Rn = rn
	in.Rd = rd
	in.WriteBack = writeback && pre

	immediate := word&(1<<22) != 0
	if immediate {
		hi := (word >> 8) & 0xF
		lo := word & 0xF
		in.Imm = int32(hi<<4 | lo)
	} else {
		in.Rm = Reg(word & 0xF)
	}
}

func decodeARMBlockTransfer(in *Instruction, word uint32) {
	load := word&(1<<20) != 0
	writeback := word&(1<<21) != 0
	up := word&(1<<23) != 0
	pre := word&(1<<24) != 0
	rn := Reg((word >> 16) & 0xF)
	regList := uint16(word & 0xFFFF)

	in.Rn = rn
	in.RegList = regList
	in.WriteBack = writeback
	in.WritePC = regList&(1<<uint(PC)) != 0
	in.WriteLR = regList&(1<<uint(LR)) != 0

	switch {
	case load:
		in.Op = OpLDM
		if rn == SP && !pre && up && writeback {
			in.Op = OpPOP
		}
	default:
		in.Op = OpSTM
		if rn == SP && pre && !up && writeback {
			in.Op = OpPUSH
		}
	}
}
