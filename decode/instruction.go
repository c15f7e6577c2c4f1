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

// Package decode supplies per-address ARM/ARMv5 and Thumb decoding,
// mnemonic classification, and register def/use sets (C1). The ARM9 in
// the NDS is an ARM946E-S core: ARMv5TE and 16-bit Thumb, no Thumb-2.
package decode

import (
	"fmt"

	"github.com/pret/dsdecomp/addr"
)

// Reg identifies one of the 16 ARM registers.
type Reg int

const (
	R0 Reg = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	SP
	LR
	PC
)

func (r Reg) String() string {
	switch r {
	case SP:
		return "sp"
	case LR:
		return "lr"
	case PC:
		return "pc"
	default:
		return fmt.Sprintf("r%d", int(r))
	}
}

// Op classifies an instruction's operation, independent of its ARM/Thumb
// encoding.
type Op int

const (
	OpUnknown Op = iota
	OpIllegal            // recognized as not-a-valid-instruction
	OpB                  // unconditional or conditional branch
	OpBL                 // branch with link (stays in the same instruction set)
	OpBLX                // branch with link and instruction-set exchange
	OpBX                 // branch and exchange (possible return/tail call)
	OpMOV
	OpMVN
	OpADD
	OpSUB
	OpADC
	OpSBC
	OpRSB
	OpRSC
	OpAND
	OpORR
	OpEOR
	OpBIC
	OpCMP
	OpCMN
	OpTST
	OpTEQ
	OpMUL
	OpMLA
	OpLSL
	OpLSR
	OpASR
	OpROR
	OpLDR
	OpLDRB
	OpLDRH
	OpLDRSB
	OpLDRSH
	OpSTR
	OpSTRB
	OpSTRH
	OpLDM
	OpSTM
	OpPUSH
	OpPOP
	OpSWI
	OpNOP
)

// Cond is an ARM condition code. CondAL ("always") denotes an instruction
// that is not conditionally executed, including every Thumb instruction
// outside a conditional branch.
type Cond int

const (
	CondEQ Cond = iota
	CondNE
	CondCS
	CondCC
	CondMI
	CondPL
	CondVS
	CondVC
	CondHI
	CondLS
	CondGE
	CondLT
	CondGT
	CondLE
	CondAL
	CondNV
)

func (c Cond) String() string {
	names := [...]string{"eq", "ne", "cs", "cc", "mi", "pl", "vs", "vc", "hi", "ls", "ge", "lt", "gt", "le", "", "nv"}
	if int(c) < len(names) {
		return names[c]
	}
	return "?"
}

// ShiftType is the barrel-shifter operation applied to a data-processing
// operand.
type ShiftType int

const (
	ShiftNone ShiftType = iota
	ShiftLSL
	ShiftLSR
	ShiftASR
	ShiftROR
)

// Instruction is the decoded form of one ARM or Thumb instruction. Only
// the fields relevant to Op are meaningful.
type Instruction struct {
	Address addr.Addr
	Thumb   bool
	Length  int // 2 (Thumb) or 4 (ARM) bytes
	Raw     uint32

	Op   Op
	Cond Cond // CondAL unless this is a conditional ARM instruction or Thumb Bcc

	Rd, Rn, Rm Reg
	Imm        int32
	Shift      ShiftType
	ShiftImm   uint32

	RegList   uint16 // bit i set => Ri is in the list (push/pop/ldm/stm)
	WritePC   bool   // RegList includes PC (ldm ... pc / pop ... pc)
	WriteLR   bool   // RegList includes LR (push ... lr / stmdb sp!, {..., lr})
	WriteBack bool

	// HasTarget is set for branches and PC-relative loads; Target is the
	// absolute destination address (already adjusted for the PC-fetch
	// addend and, for branches, the Thumb bit of the destination).
	HasTarget bool
	Target    addr.Addr

	// IsPoolLoad marks a PC-relative ldr (ARM "ldr rd, [pc, #imm]" or Thumb
	// "ldr rd, [pc, #imm]"): Target is the pool constant's address.
	IsPoolLoad bool

	Mnemonic string
	Operand  string
}

// IsConditional reports whether this instruction only executes under a
// condition (an ARM instruction whose Cond != CondAL, or a Thumb Bcc).
func (in Instruction) IsConditional() bool {
	return in.Cond != CondAL
}

// IsUnconditionalBranchForm reports whether this is a plain "b"/"bx"/"bl"
// style branch with no embedded condition narrowing (used when deciding
// whether a branch can terminate a function outright).
func (in Instruction) IsUnconditionalBranchForm() bool {
	switch in.Op {
	case OpB, OpBL, OpBLX, OpBX:
		return !in.IsConditional()
	default:
		return false
	}
}
