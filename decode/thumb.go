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

var thumbAluOps = [...]Op{OpAND, OpEOR, OpLSL, OpLSR, OpASR, OpADC, OpSBC, OpROR, OpTST, OpSUB /* NEG */, OpCMP, OpCMN, OpORR, OpMUL, OpBIC, OpMVN}

// DecodeThumb decodes a single Thumb instruction at a. code must contain at
// least 2 bytes; for the long-branch-with-link pair (format 19, the only
// 32-bit Thumb encoding in ARMv5T), it also inspects code[2:4] when
// present and returns Length 4 for the combined pseudo-instruction.
func DecodeThumb(a addr.Addr, code []byte) Instruction {
	hw := binary.LittleEndian.Uint16(code)
	in := Instruction{Address: a, Thumb: true, Length: 2, Raw: uint32(hw), Cond: CondAL}

	switch {
	case hw&0xF800 == 0x1800: // format 2: add/subtract
		decodeThumbAddSub(&in, hw)
	case hw&0xE000 == 0x0000 && hw&0xF800 != 0x1800: // format 1: move shifted register
		decodeThumbShift(&in, hw)
	case hw&0xE000 == 0x2000: // format 3: move/compare/add/subtract immediate
		decodeThumbImmediate(&in, hw)
	case hw&0xFC00 == 0x4000: // format 4: ALU operations
		decodeThumbALU(&in, hw)
	case hw&0xFC00 == 0x4400: // format 5: hi register ops / branch exchange
		decodeThumbHiReg(&in, hw, a)
	case hw&0xF800 == 0x4800: // format 6: PC-relative load
		decodeThumbPCRelLoad(&in, hw, a)
	case hw&0xF000 == 0x5000: // format 7/8: load/store with register offset
		decodeThumbRegOffset(&in, hw)
	case hw&0xE000 == 0x6000: // format 9: load/store with immediate offset
		decodeThumbImmOffset(&in, hw)
	case hw&0xF000 == 0x8000: // format 10: load/store halfword
		decodeThumbHalfword(&in, hw)
	case hw&0xF000 == 0x9000: // format 11: sp-relative load/store
		decodeThumbSPRel(&in, hw)
	case hw&0xF000 == 0xA000: // format 12: load address
		decodeThumbLoadAddr(&in, hw)
	case hw&0xFF00 == 0xB000: // format 13: add offset to sp
		decodeThumbAddSP(&in, hw)
	case hw&0xF600 == 0xB400: // format 14: push/pop
		decodeThumbPushPop(&in, hw)
	case hw&0xF000 == 0xC000: // format 15: multiple load/store
		decodeThumbMultiple(&in, hw)
	case hw&0xFF00 == 0xDF00: // format 17: software interrupt
		in.Op = OpSWI
		in.Imm = int32(hw & 0xFF)
	case hw&0xF000 == 0xD000: // format 16: conditional branch
		decodeThumbCondBranch(&in, hw, a)
	case hw&0xF800 == 0xE000: // format 18: unconditional branch
		decodeThumbBranch(&in, hw, a)
	case hw&0xF000 == 0xF000: // format 19: long branch with link
		decodeThumbBL(&in, hw, code, a)
	default:
		in.Op = OpUnknown
	}

	return in
}

func decodeThumbShift(in *Instruction, hw uint16) {
	op := (hw >> 11) & 0x3
	offset := (hw >> 6) & 0x1F
	rs := Reg((hw >> 3) & 0x7)
	rd := Reg(hw & 0x7)

	switch op {
	case 0:
		in.Op = OpLSL
	case 1:
		in.Op = OpLSR
	case 2:
		in.Op = OpASR
	default:
		in.Op = OpUnknown
	}
	in.Rd = rd
	in.Rm = rs
	in.ShiftImm = uint32(offset)
}

func decodeThumbAddSub(in *Instruction, hw uint16) {
	immediate := hw&(1<<10) != 0
	sub := hw&(1<<9) != 0
	rnOrImm := (hw >> 6) & 0x7
	rs := Reg((hw >> 3) & 0x7)
	rd := Reg(hw & 0x7)

	if sub {
		in.Op = OpSUB
	} else {
		in.Op = OpADD
	}
	in.Rd = rd
	in.Rn = rs
	if immediate {
		in.Imm = int32(rnOrImm)
	} else {
		in.Rm = Reg(rnOrImm)
	}
}

func decodeThumbImmediate(in *Instruction, hw uint16) {
	op := (hw >> 11) & 0x3
	rd := Reg((hw >> 8) & 0x7)
	imm := int32(hw & 0xFF)

	switch op {
	case 0:
		in.Op = OpMOV
	case 1:
		in.Op = OpCMP
	case 2:
		in.Op = OpADD
	default:
		in.Op = OpSUB
	}
	in.Rd = rd
	in.Rn = rd
	in.Imm = imm
}

func decodeThumbALU(in *Instruction, hw uint16) {
	op := (hw >> 6) & 0xF
	rs := Reg((hw >> 3) & 0x7)
	rd := Reg(hw & 0x7)

	in.Op = thumbAluOps[op]
	in.Rd = rd
	in.Rn = rd
	in.Rm = rs
	if op == 9 { // NEG encoded as a pseudo-SUB: Rd = 0 - Rs
		in.Rn = -1
		in.Imm = 0
	}
}

func decodeThumbHiReg(in *Instruction, hw uint16, a addr.Addr) {
	op := (hw >> 8) & 0x3
	h1 := hw&(1<<7) != 0
	h2 := hw&(1<<6) != 0
	rs := Reg((hw>>3)&0x7) + hiRegOffset(h2)
	rd := Reg(hw&0x7) + hiRegOffset(h1)

	switch op {
	case 0:
		in.Op = OpADD
		in.Rd = rd
		in.Rn = rd
		in.Rm = rs
	case 1:
		in.Op = OpCMP
		in.Rn = rd
		in.Rm = rs
	case 2:
		in.Op = OpMOV
		in.Rd = rd
		in.Rm = rs
	default: // BX / BLX
		in.Rm = rs
		if h1 {
			in.Op = OpBLX
		} else {
			in.Op = OpBX
		}
	}
}

func hiRegOffset(set bool) Reg {
	if set {
		return 8
	}
	return 0
}

func decodeThumbPCRelLoad(in *Instruction, hw uint16, a addr.Addr) {
	rd := Reg((hw >> 8) & 0x7)
	word8 := int32(hw&0xFF) * 4

	in.Op = OpLDR
	in.Rd = rd
	in.Rn = PC
	in.Imm = word8
	in.IsPoolLoad = true
	in.HasTarget = true
	base := addr.AlignDown(a+4, 4)
	in.Target = base + addr.Addr(word8)
}

func decodeThumbRegOffset(in *Instruction, hw uint16) {
	ro := Reg((hw >> 6) & 0x7)
	rb := Reg((hw >> 3) & 0x7)
	rd := Reg(hw & 0x7)
	in.Rn = rb
	in.Rm = ro
	in.Rd = rd

	if hw&0x0200 == 0 { // format 7: byte/word
		l := hw&(1<<11) != 0
		b := hw&(1<<10) != 0
		switch {
		case l && b:
			in.Op = OpLDRB
		case l && !b:
			in.Op = OpLDR
		case !l && b:
			in.Op = OpSTRB
		default:
			in.Op = OpSTR
		}
	} else { // format 8: sign-extended byte/halfword
		hBit := hw&(1<<11) != 0
		sBit := hw&(1<<10) != 0
		switch {
		case !sBit && !hBit:
			in.Op = OpSTRH
		case !sBit && hBit:
			in.Op = OpLDRH
		case sBit && !hBit:
			in.Op = OpLDRSB
		default:
			in.Op = OpLDRSH
		}
	}
}

func decodeThumbImmOffset(in *Instruction, hw uint16) {
	b := hw&(1<<12) != 0
	l := hw&(1<<11) != 0
	offset5 := (hw >> 6) & 0x1F
	rb := Reg((hw >> 3) & 0x7)
	rd := Reg(hw & 0x7)

	in.Rn = rb
	in.Rd = rd
	if b {
		in.Imm = int32(offset5)
		if l {
			in.Op = OpLDRB
		} else {
			in.Op = OpSTRB
		}
	} else {
		in.Imm = int32(offset5) * 4
		if l {
			in.Op = OpLDR
		} else {
			in.Op = OpSTR
		}
	}
}

func decodeThumbHalfword(in *Instruction, hw uint16) {
	l := hw&(1<<11) != 0
	offset5 := (hw >> 6) & 0x1F
	rb := Reg((hw >> 3) & 0x7)
	rd := Reg(hw & 0x7)

	in.Rn = rb
	in.Rd = rd
	in.Imm = int32(offset5) * 2
	if l {
		in.Op = OpLDRH
	} else {
		in.Op = OpSTRH
	}
}

func decodeThumbSPRel(in *Instruction, hw uint16) {
	l := hw&(1<<11) != 0
	rd := Reg((hw >> 8) & 0x7)
	word8 := int32(hw&0xFF) * 4

	in.Rn = SP
	in.Rd = rd
	in.Imm = word8
	if l {
		in.Op = OpLDR
	} else {
		in.Op = OpSTR
	}
}

func decodeThumbLoadAddr(in *Instruction, hw uint16) {
	sp := hw&(1<<11) != 0
	rd := Reg((hw >> 8) & 0x7)
	word8 := int32(hw&0xFF) * 4

	in.Op = OpADD
	in.Rd = rd
	if sp {
		in.Rn = SP
	} else {
		in.Rn = PC
	}
	in.Imm = word8
}

func decodeThumbAddSP(in *Instruction, hw uint16) {
	sub := hw&(1<<7) != 0
	word7 := int32(hw&0x7F) * 4
	if sub {
		in.Op = OpSUB
		in.Imm = -word7
	} else {
		in.Op = OpADD
		in.Imm = word7
	}
	in.Rd = SP
	in.Rn = SP
}

func decodeThumbPushPop(in *Instruction, hw uint16) {
	l := hw&(1<<11) != 0
	r := hw&(1<<8) != 0
	regList := uint16(hw & 0xFF)

	in.Rn = SP
	if l {
		in.Op = OpPOP
		if r {
			regList |= 1 << uint(PC)
		}
	} else {
		in.Op = OpPUSH
		if r {
			regList |= 1 << uint(LR)
		}
	}
	in.RegList = regList
	in.WritePC = regList&(1<<uint(PC)) != 0
	in.WriteLR = regList&(1<<uint(LR)) != 0
}

func decodeThumbMultiple(in *Instruction, hw uint16) {
	l := hw&(1<<11) != 0
	rb := Reg((hw >> 8) & 0x7)
	regList := uint16(hw & 0xFF)

	in.Rn = rb
	in.RegList = regList
	in.WriteBack = true
	if l {
		in.Op = OpLDM
	} else {
		in.Op = OpSTM
	}
}

func decodeThumbCondBranch(in *Instruction, hw uint16, a addr.Addr) {
	cond := Cond((hw >> 8) & 0xF)
	offset := int32(int8(hw & 0xFF)) * 2

	in.Op = OpB
	in.Cond = cond
	in.HasTarget = true
	in.Target = addr.Addr(int64(a) + 4 + int64(offset)).WithThumb(true)
}

func decodeThumbBranch(in *Instruction, hw uint16, a addr.Addr) {
	offset11 := int32(hw & 0x7FF)
	// sign-extend 11 bits, then *2
	offset := offset11 << 21 >> 20

	in.Op = OpB
	in.HasTarget = true
	in.Target = addr.Addr(int64(a) + 4 + int64(offset)).WithThumb(true)
}

func decodeThumbBL(in *Instruction, hw uint16, code []byte, a addr.Addr) {
	high := hw&(1<<11) == 0
	offset11 := int32(hw & 0x7FF)

	if !high {
		// a low half (bit 11 set) seen without a preceding high half:
		// leave as an incomplete, un-targeted instruction. in real code
		// the walker reaches the high half first and decodes the pair.
		in.Op = OpBL
		in.Imm = offset11 << 21 >> 9 // high-part offset, shifted into position, sign-extended
		return
	}

	if len(code) < 4 {
		in.Op = OpBL
		return
	}

	low := binary.LittleEndian.Uint16(code[2:])
	if low&0xF800 != 0xF800 && low&0xF800 != 0xE800 {
		// not actually a paired low half; leave as incomplete
		in.Op = OpBL
		return
	}

	highOffset := offset11 << 21 >> 9 // sign-extend 11 bits into bits[22:12]
	lowOffset11 := int32(low & 0x7FF)
	lr := addr.Addr(int64(a) + 4 + int64(highOffset))
	target := lr + addr.Addr(lowOffset11*2)

	in.Length = 4
	in.Raw = uint32(hw) | uint32(low)<<16
	in.HasTarget = true

	if low&0xF800 == 0xE800 {
		// BLX: exchanges to ARM, target must be word-aligned
		in.Op = OpBLX
		in.Target = addr.AlignDown(target, 4)
	} else {
		in.Op = OpBL
		in.Target = target.WithThumb(true)
	}
}
