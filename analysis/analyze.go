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
	"sort"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/decode"
	"github.com/pret/dsdecomp/logger"
)

// IsIllegal reports whether in is one of the patterns that never appear in
// compiler-generated code and are therefore a reliable "this is not code"
// signal. Each pattern is judged on the single instruction alone; Walk
// rejects a start whose first instruction matches, and otherwise stops a
// walk only after three such instructions in a row.
func IsIllegal(in decode.Instruction) bool {
	switch in.Op {
	case decode.OpUnknown, decode.OpIllegal:
		return true
	case decode.OpMOV:
		// mov r0,r0 and mov r8,r8 are the conventional ARM and Thumb nop
		// idioms (Thumb's low-register mov sets flags, so r8 is used there
		// to stay flag-free) and are excluded from the misinterpreted-data
		// signal.
		return in.Rd == in.Rm && in.Shift == decode.ShiftNone && in.Rd != decode.R0 && in.Rd != decode.R8
	case decode.OpEOR:
		return in.Rd == in.Rn && in.Rn == in.Rm
	case decode.OpSTRH, decode.OpSTRB:
		return in.Rn == in.Rd
	case decode.OpLSL:
		return in.Rm == decode.PC || in.Rd == decode.PC
	case decode.OpLDR, decode.OpLDRB, decode.OpLDRH, decode.OpSTR:
		return in.Rn == decode.PC && !in.IsPoolLoad
	}
	return false
}

// FindManyOptions configures a module-wide function sweep.
type FindManyOptions struct {
	Options

	// Starts lists every candidate function entry point, already sorted by
	// address (typically: the ROM entrypoint, every address any existing
	// relocation or symbol names as a call target, and every label
	// discovered by a prior sweep's jump tables).
	Starts []addr.Addr

	// AllowUnknownFunctions is carried for callers that configure it.
	// FindMany does not read it: a candidate whose walk reaches a call to
	// an address with no corresponding start is accepted either way, and
	// the call is recorded on the Function like any other.
	AllowUnknownFunctions bool
}

// Outcome is the per-candidate result of a find-many sweep: either a
// successfully analyzed Function, or a Reason the candidate was rejected.
type Outcome struct {
	Start  addr.Addr
	Func   *Function
	Reason string // empty on success
}

// FindMany walks every candidate start in opts.Starts, in address order,
// and returns one Outcome per candidate it walks. A later start that falls
// inside an already-accepted function's extent is skipped rather than
// re-analyzed, and gets no Outcome, since it denotes an internal label,
// not a distinct function.
func FindMany(src Source, opts FindManyOptions) []Outcome {
	starts := append([]addr.Addr(nil), opts.Starts...)
	sort.Slice(starts, func(i, j int) bool { return starts[i].Clear() < starts[j].Clear() })

	known := map[addr.Addr]bool{}
	for _, s := range starts {
		known[s.Clear()] = true
	}
	walkOpts := opts.Options
	walkOpts.KnownFunctionStart = func(a addr.Addr) bool { return known[a.Clear()] }

	var out []Outcome
	var accepted []*Function
	for _, s := range starts {
		c := s.Clear()
		if coveredByAccepted(accepted, c) {
			continue
		}
		mode := addr.ARM
		if s.IsThumb() {
			mode = addr.Thumb
		}
		f, err := Walk(src, s, mode, walkOpts)
		if err != nil {
			logger.Logf("analysis", "reject candidate %#08x: %v", uint32(c), err)
			out = append(out, Outcome{Start: s, Reason: err.Error()})
			continue
		}
		accepted = append(accepted, f)
		out = append(out, Outcome{Start: s, Func: f})
	}
	return out
}

func coveredByAccepted(fs []*Function, a addr.Addr) bool {
	for _, f := range fs {
		if a >= f.Start && a < f.End {
			return true
		}
	}
	return false
}

// ValidateDefUse walks ins in order and reports the first register read
// before any preceding instruction (or the live-in set) defines it. Live
// registers at entry are sp, lr and the argument registers r0-r3 (ARM9
// AAPCS functions never assume any other register's value on entry).
func ValidateDefUse(ins []decode.Instruction) (addr.Addr, decode.Reg, bool) {
	live := map[decode.Reg]bool{
		decode.R0: true, decode.R1: true, decode.R2: true, decode.R3: true,
		decode.SP: true, decode.LR: true,
	}
	for _, in := range ins {
		if in.StoresUndefinedStackSlot() {
			live[in.Rd] = true
		}
		for _, r := range in.Uses() {
			if !live[r] {
				return in.Address, r, true
			}
		}
		for _, r := range in.Defs() {
			live[r] = true
		}
	}
	return 0, 0, false
}
