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
	"github.com/pret/dsdecomp/dserr"
)

// Source supplies the bytes the walker decodes, relative to a module's
// base address. Bounds returns the module's valid code extent; reads past
// it terminate the walk as an out-of-bounds branch rather than panicking.
type Source interface {
	Bytes(a addr.Addr) []byte
	Bounds() (start, end addr.Addr)
}

// Options configures a single function walk.
type Options struct {
	Decoder decode.Decoder

	// KnownFunctionStart reports whether a is already a recognized function
	// entry point. An unconditional branch to a known function start is
	// classified as a tail call rather than walked into as a label.
	KnownFunctionStart func(addr.Addr) bool

	// ValidateDefUse enables the optional register def/use pass (spec
	// §4.1): every register read before any instruction in the function
	// defines it must already be live at function entry (arguments, sp,
	// lr) or Walk returns a RegisterUseBeforeDef error.
	ValidateDefUse bool
}

// walker holds the mutable state threaded through one Walk call.
type walker struct {
	src  Source
	opts Options

	mode  addr.Mode
	start addr.Addr

	visited map[addr.Addr]bool
	pending []addr.Addr // branch targets not yet walked, in discovery order

	labels        map[addr.Addr]addr.Mode
	pools         map[addr.Addr]uint32
	calls         []FunctionCall
	jumpTables    []JumpTable
	inlineTables  []InlineTable
	recent        []recentInsn
	instructions  []decode.Instruction

	frontier addr.Addr // one past the highest instruction reached by any straight-line walk

	lastConditionalDestination addr.Addr
	haveLastConditionalDest    bool
	lastPoolAddress            addr.Addr
	haveLastPoolAddress        bool

	illegalStreak int
	decodedAny    bool
	noEpilogue    bool
}

// Walk discovers the full extent of the function starting at start, in the
// given mode, using src for instruction bytes.
func Walk(src Source, start addr.Addr, mode addr.Mode, opts Options) (*Function, error) {
	if opts.Decoder == nil {
		opts.Decoder = decode.Default
	}
	if opts.KnownFunctionStart == nil {
		opts.KnownFunctionStart = func(addr.Addr) bool { return false }
	}

	w := &walker{
		src:      src,
		opts:     opts,
		mode:     mode,
		start:    start.Clear(),
		visited:  map[addr.Addr]bool{},
		labels:   map[addr.Addr]addr.Mode{},
		pools:    map[addr.Addr]uint32{},
		frontier: start.Clear(),
	}

	if err := w.validateStart(); err != nil {
		return nil, err
	}

	w.pending = append(w.pending, w.start)
	for len(w.pending) > 0 {
		a := w.pending[0]
		w.pending = w.pending[1:]
		if w.visited[a] {
			continue
		}
		if err := w.walkFrom(a); err != nil {
			return nil, err
		}
	}

	f := w.build()
	if opts.ValidateDefUse {
		if bad, reg, rejected := ValidateDefUse(w.instructions); rejected {
			return nil, dserr.Errorf(dserr.RegisterUseBeforeDef, uint32(bad), reg.String())
		}
	}
	return f, nil
}

// validateStart rejects starts that cannot plausibly begin a function: the
// start address must match the alignment of its mode (2 for Thumb, 4 for
// ARM), the first instruction must decode cleanly and not be one of the
// patterns IsIllegal recognizes as misinterpreted data, and an ARM start
// must not begin with a conditional instruction (ARM function entries are
// not normally reached conditionally).
func (w *walker) validateStart() error {
	align := uint32(2)
	if w.mode == addr.ARM {
		align = 4
	}
	if !addr.IsAligned(w.start, align) {
		return dserr.Errorf(dserr.InvalidFunctionStart, uint32(w.start), w.mode)
	}

	lo, hi := w.src.Bounds()
	if w.start < lo || w.start >= hi {
		return dserr.Errorf(dserr.WalkOutOfBounds, uint32(w.start))
	}
	in, err := w.opts.Decoder.Decode(w.start, w.mode == addr.Thumb, w.src.Bytes(w.start))
	if err != nil || IsIllegal(in) || (w.mode == addr.ARM && in.IsConditional()) {
		return dserr.Errorf(dserr.InvalidFunctionStart, uint32(w.start), w.mode)
	}
	return nil
}

// build assembles the discovered Function, applying the post-processing
// steps the walk itself defers: the end address is extended to cover the
// highest pool entry plus 4 and aligned up to 4 even for a Thumb-only
// function, and a prepended pool (one that falls before the walk's actual
// start) pulls Start backward while FirstInstructionAddress keeps the
// original entry address.
func (w *walker) build() *Function {
	end := w.frontier
	if w.haveLastPoolAddress {
		if poolEnd := w.lastPoolAddress + 4; poolEnd > end {
			end = poolEnd
		}
	}
	end = addr.Align(end, 4)

	start := w.start
	for a := range w.pools {
		if a < start {
			start = a
		}
	}

	f := &Function{
		Start:                   start,
		FirstInstructionAddress: w.start,
		End:                     end,
		Mode:                    w.mode,
		Calls:                   w.calls,
		JumpTables:              w.jumpTables,
		InlineTables:            w.inlineTables,
		NoEpilogue:              w.noEpilogue,
	}
	for a, m := range w.labels {
		if a == w.start {
			continue
		}
		f.Labels = append(f.Labels, Label{Address: a, Mode: m})
	}
	sort.Slice(f.Labels, func(i, j int) bool { return f.Labels[i].Address < f.Labels[j].Address })
	for a, v := range w.pools {
		f.PoolConstants = append(f.PoolConstants, PoolConstant{Address: a, Value: v})
	}
	sort.Slice(f.PoolConstants, func(i, j int) bool { return f.PoolConstants[i].Address < f.PoolConstants[j].Address })
	return f
}

// walkFrom decodes straight-line code starting at a until a return,
// unconditional branch out, or the end of known code is reached. Forward
// conditional branches and backward branches push new pending entries
// rather than recursing.
func (w *walker) walkFrom(a addr.Addr) error {
	thumb := w.mode == addr.Thumb
	for {
		w.visited[a] = true

		lo, hi := w.src.Bounds()
		if a < lo || a >= hi {
			if !w.decodedAny {
				return dserr.Errorf(dserr.WalkOutOfBounds, uint32(a))
			}
			// the body ran off the end of known code without ever finding an
			// epilogue: report the function as found, but incomplete, rather
			// than rejecting the candidate outright.
			w.noEpilogue = true
			if hi > w.frontier {
				w.frontier = hi
			}
			return nil
		}

		in, err := w.opts.Decoder.Decode(a, thumb, w.src.Bytes(a))
		if err != nil {
			return err
		}
		w.decodedAny = true
		w.instructions = append(w.instructions, in)

		if end := a + addr.Addr(in.Length); end > w.frontier {
			w.frontier = end
		}

		if IsIllegal(in) {
			w.illegalStreak++
		} else {
			w.illegalStreak = 0
		}
		if w.illegalStreak >= 3 {
			return dserr.Errorf(dserr.IllegalInstruction, uint32(a))
		}

		if in.IsPoolLoad {
			var value uint32
			if t := in.Target.Clear(); t >= lo && t+4 <= hi {
				if b := w.src.Bytes(t); len(b) >= 4 {
					value = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
				}
			}
			w.pools[in.Target.Clear()] = value
			if !w.haveLastPoolAddress || in.Target.Clear() > w.lastPoolAddress {
				w.lastPoolAddress, w.haveLastPoolAddress = in.Target.Clear(), true
			}
		}

		if jt, ok := detectARMJumpTable(in, w.src); ok {
			w.resolveJumpTable(jt, thumb)
			return nil
		}
		if it, ok := w.detectInlineTable(in); ok {
			w.inlineTables = append(w.inlineTables, it)
		}

		switch {
		case isReturn(in):
			if w.haveLastConditionalDest && a.Clear() < w.lastConditionalDestination.Clear() {
				// still inside an if-block: this is an early return, not the
				// function's final epilogue. Keep walking straight-line.
				break
			}
			return nil

		case in.Op == decode.OpADD && thumb && in.Rd == decode.PC:
			if jt, ok := w.detectThumbJumpTable(in.Rm); ok {
				w.resolveJumpTable(jt, thumb)
				return nil
			}
			// an unrecognized computed branch into pc: nothing further to
			// walk along this path.
			return nil

		case in.Op == decode.OpBL || in.Op == decode.OpBLX:
			if in.HasTarget {
				w.calls = append(w.calls, FunctionCall{
					From: a, To: in.Target, Kind: CallDirect,
					Conditional: in.IsConditional(), FromThumb: thumb, ToThumb: in.Target.IsThumb(),
				})
			}

		case in.Op == decode.OpB || in.Op == decode.OpBX:
			if !in.HasTarget {
				// bx to a register target we could not classify: either an
				// unrecognized dispatch idiom or a tail call through a
				// computed pointer; neither extends the walk further along
				// this path.
				return nil
			}
			if in.IsConditional() {
				if !w.haveLastConditionalDest || in.Target.Clear() > w.lastConditionalDestination.Clear() {
					w.lastConditionalDestination, w.haveLastConditionalDest = in.Target, true
				}
				w.queueLabel(in.Target, thumb)
				break
			}
			// unconditional: either a tail call to a known function, or an
			// internal branch (loop, early-return, or dispatch out of an
			// if/else chain) that does not end the function.
			if w.opts.KnownFunctionStart(in.Target.Clear()) && in.Target.Clear() != w.start {
				w.calls = append(w.calls, FunctionCall{
					From: a, To: in.Target, Kind: CallTail, FromThumb: thumb, ToThumb: in.Target.IsThumb(),
				})
				return nil
			}
			w.queueLabel(in.Target, thumb)
			return nil
		}

		w.remember(a, in)
		a += addr.Addr(in.Length)
	}
}

// resolveJumpTable reads jt's entries, speculatively, until an entry
// resolves outside the module's known bounds or a hard cap is hit, then
// registers the table and queues every resolved entry as a label.
func (w *walker) resolveJumpTable(jt JumpTable, thumb bool) {
	const maxEntries = 256
	lo, hi := w.src.Bounds()

	count := 0
	for count < maxEntries {
		entries := readJumpTableEntries(w.src, jt, count+1, w.mode)
		last := entries[count]
		if last.Clear() < lo || last.Clear() >= hi {
			break
		}
		count++
	}
	if count == 0 {
		return
	}

	jt.Entries = readJumpTableEntries(w.src, jt, count, w.mode)
	w.jumpTables = append(w.jumpTables, jt)

	entrySize := uint32(4)
	if !jt.CodeEntries {
		entrySize = 2
	}
	tableEnd := jt.Address + addr.Addr(count)*addr.Addr(entrySize)
	if tableEnd > w.frontier {
		w.frontier = tableEnd
	}
	for _, e := range jt.Entries {
		w.queueLabel(e, e.IsThumb())
	}
}

func (w *walker) queueLabel(a addr.Addr, thumb bool) {
	c := a.Clear()
	mode := addr.ARM
	if thumb {
		mode = addr.Thumb
	}
	if _, ok := w.labels[c]; !ok {
		w.labels[c] = mode
	}
	if !w.visited[c] {
		w.pending = append(w.pending, c)
	}
}

// isReturn recognizes the function epilogue forms: "bx lr", "mov pc, lr",
// a "pop {..., pc}" (the register-list PC bit set on a POP), and any other
// load-multiple whose register list includes pc.
func isReturn(in decode.Instruction) bool {
	switch in.Op {
	case decode.OpBX:
		return in.Rm == decode.LR && !in.IsConditional()
	case decode.OpMOV:
		return in.Rd == decode.PC && in.Rm == decode.LR
	case decode.OpPOP:
		return in.RegList&(1<<uint(decode.PC)) != 0
	case decode.OpLDM:
		return in.WritePC
	}
	return false
}
