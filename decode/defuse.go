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

// Defs returns the registers this instruction writes.
func (in Instruction) Defs() []Reg {
	var out []Reg
	add := func(r Reg) {
		if r >= R0 {
			out = append(out, r)
		}
	}

	switch in.Op {
	case OpB, OpBX:
		// no register write (PC updates are control flow, not a data def)
	case OpBL, OpBLX:
		add(LR)
	case OpLDM, OpPOP:
		for r := R0; r <= PC; r++ {
			if in.RegList&(1<<uint(r)) != 0 {
				add(r)
			}
		}
	case OpSTM, OpPUSH, OpSTR, OpSTRB, OpSTRH, OpCMP, OpCMN, OpTST, OpTEQ, OpSWI:
		// stores and comparisons do not write a general register (STM/PUSH
		// with writeback updates Rn, handled below)
	case OpMUL, OpMLA:
		add(in.Rd)
	default:
		add(in.Rd)
	}

	if in.WriteBack && (in.Op == OpLDM || in.Op == OpSTM || in.Op == OpLDR || in.Op == OpLDRB ||
		in.Op == OpLDRH || in.Op == OpSTR || in.Op == OpSTRB || in.Op == OpSTRH) {
		add(in.Rn)
	}
	if in.Op == OpPUSH || in.Op == OpPOP {
		add(SP)
	}
	if in.Op == OpADD && in.Rd == SP || in.Op == OpSUB && in.Rd == SP {
		add(SP)
	}

	return out
}

// Uses returns the registers this instruction reads.
func (in Instruction) Uses() []Reg {
	var out []Reg
	add := func(r Reg) {
		if r >= R0 {
			out = append(out, r)
		}
	}

	switch in.Op {
	case OpB, OpBL:
		// target is immediate; no register read
	case OpBX, OpBLX:
		add(in.Rm)
	case OpLDM, OpPOP:
		add(in.Rn)
	case OpSTM, OpPUSH:
		for r := R0; r <= PC; r++ {
			if in.RegList&(1<<uint(r)) != 0 {
				add(r)
			}
		}
		if in.Op == OpSTM {
			add(in.Rn)
		}
	case OpLDR, OpLDRB, OpLDRH, OpLDRSB, OpLDRSH:
		if in.Rn != PC { // PC-relative pool loads read no general register
			add(in.Rn)
		}
		if in.Rm != 0 || in.Shift != ShiftNone {
			add(in.Rm)
		}
	case OpSTR, OpSTRB, OpSTRH:
		add(in.Rd)
		add(in.Rn)
		if in.Rm != 0 || in.Shift != ShiftNone {
			add(in.Rm)
		}
	case OpMUL:
		add(in.Rd)
		add(in.Rm)
	case OpMLA:
		add(in.Rd)
		add(in.Rn)
		add(in.Rm)
	case OpCMP, OpCMN, OpTST, OpTEQ:
		add(in.Rn)
		if in.Shift != ShiftNone || in.Imm == 0 {
			add(in.Rm)
		}
	case OpMOV, OpMVN:
		if in.Shift != ShiftNone {
			add(in.Rm)
		} else if in.Rm != 0 {
			add(in.Rm)
		}
	default: // data-processing with two operands
		add(in.Rn)
		if in.Shift != ShiftNone || in.Rm != 0 {
			add(in.Rm)
		}
	}

	return out
}

// StoresUndefinedStackSlot reports the documented tool-chain quirk: a
// "str Rd, [sp, #imm]" may legitimately use an as-yet-undefined Rd (the
// compiler spills an argument register before it has been written on this
// path). The register def/use validator treats this as defining Rd rather
// than rejecting the function.
func (in Instruction) StoresUndefinedStackSlot() bool {
	return in.Op == OpSTR && in.Rn == SP
}
