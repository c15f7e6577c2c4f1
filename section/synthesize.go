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

package section

import (
	"fmt"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/dserr"
	"github.com/pret/dsdecomp/logger"
)

// Code gives the synthesizer read access to a module's raw bytes without
// depending on the module package (which itself depends on section),
// avoiding an import cycle.
type Code interface {
	Word(a addr.Addr) uint32
	Byte(a addr.Addr) byte
	Base() addr.Addr
	End() addr.Addr // exclusive, not including bss
}

// Landmarks carries the addresses the function analyzer and the raw byte
// scan have already found, which section synthesis stitches into a
// complete layout.
type Landmarks struct {
	Entry          addr.Addr // module entrypoint (autoload callback or main's start)
	FunctionStarts []addr.Addr
	FunctionEnds   map[addr.Addr]addr.Addr // start -> end, for every known function
	BssSize        uint32
}

// secureAreaThunkWords is the fixed 2-word BIOS SVC thunk sequence at the
// very start of the main module's secure area, used to fingerprint where
// .init ends and the library-supplied entry functions begin.
var secureAreaThunkWords = [2]uint32{0xE3A00000, 0xE1A0F00E}

// Synthesize builds a module's canonical section list from its raw code
// and the landmarks analysis has already discovered. It never trusts
// section boundaries from any external metadata: every boundary here is
// either a fingerprinted byte pattern or inferred from where known
// functions start and stop.
func Synthesize(code Code, lm Landmarks) (*List, error) {
	l := NewList()

	ctorStart, ctorEnd, ok := findCtor(code, lm)
	textStart := code.Base()
	if ok {
		if err := l.Add(Section{Name: ".ctor", Kind: KindCtor, Start: ctorStart, End: ctorEnd, Alignment: 4}); err != nil {
			return nil, err
		}
		initEnd := findInitEnd(code, lm, ctorStart)
		if initEnd > code.Base() {
			if err := l.Add(Section{Name: ".init", Kind: KindInit, Start: code.Base(), End: initEnd, Alignment: 4}); err != nil {
				return nil, err
			}
			textStart = initEnd
		}
	}

	textEnd := findTextEnd(code, lm)
	if textEnd <= textStart {
		textEnd = code.End()
	}
	if err := l.Add(Section{Name: ".text", Kind: KindText, Start: textStart, End: textEnd, Alignment: 4}); err != nil {
		return nil, err
	}

	rodataStart := textEnd
	dataStart, bssFound := findDataStart(code, lm, rodataStart)
	if dataStart > rodataStart {
		if err := l.Add(Section{Name: ".rodata", Kind: KindRodata, Start: rodataStart, End: dataStart, Alignment: 4}); err != nil {
			return nil, err
		}
	}
	dataEnd := code.End()
	if dataEnd > dataStart {
		if err := l.Add(Section{Name: ".data", Kind: KindData, Start: dataStart, End: dataEnd, Alignment: 4}); err != nil {
			return nil, err
		}
	}
	if bssFound && lm.BssSize > 0 {
		if err := l.Add(Section{
			Name: ".bss", Kind: KindBss, Start: dataEnd, End: dataEnd + addr.Addr(lm.BssSize), Alignment: 4,
		}); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// findCtor locates the .ctor array: a run of function-pointer words ending
// in a null terminator. It tries each known function start address in turn
// as the array's first word and accepts the first one where every word up
// to the null terminator points at a known function start, which rules out
// mistaking arbitrary data for it. It does not follow the call chain from
// the module entrypoint.
func findCtor(code Code, lm Landmarks) (start, end addr.Addr, ok bool) {
	isFunctionStart := map[addr.Addr]bool{}
	for _, s := range lm.FunctionStarts {
		isFunctionStart[s.Clear()] = true
	}

	for _, s := range lm.FunctionStarts {
		a := s.Clear()
		candidate := a
		count := 0
		for {
			w := code.Word(candidate)
			target := addr.Addr(w).Clear()
			if !isFunctionStart[target] {
				break
			}
			count++
			candidate += 4
			if count > 4096 {
				break
			}
		}
		if count == 0 {
			continue
		}
		// require a null terminator, the conventional ctor-array end marker
		if code.Word(candidate) == 0 {
			logger.Logf("section", "ctor array at %#08x: %d entries", uint32(a), count)
			return a, candidate + 4, true
		}
	}
	return 0, 0, false
}

// findInitEnd locates the end of .init: the secure-area BIOS SVC thunk
// fingerprint, searched forward from the module base up to ctorStart.
func findInitEnd(code Code, lm Landmarks, ctorStart addr.Addr) addr.Addr {
	for a := code.Base(); a+8 <= ctorStart; a += 4 {
		if code.Word(a) == secureAreaThunkWords[0] && code.Word(a+4) == secureAreaThunkWords[1] {
			return a + 8
		}
	}
	return 0
}

// findTextEnd returns the address one past the last known function's
// extent, which is also the conventional start of .rodata.
func findTextEnd(code Code, lm Landmarks) addr.Addr {
	var end addr.Addr
	for start, e := range lm.FunctionEnds {
		_ = start
		if e > end {
			end = e
		}
	}
	return addr.Align(end, 4)
}

// findDataStart distinguishes .rodata from .data by the first word that
// looks like a 4-aligned pointer into the module's own code and data range
// (read-only data never self-references as a writable pointer target,
// while .data's vtables and string-pointer tables do); absent any such
// word, every remaining byte is treated as .rodata. The second result
// (bssFound) is true in both cases.
func findDataStart(code Code, lm Landmarks, from addr.Addr) (addr.Addr, bool) {
	for a := from; a+4 <= code.End(); a += 4 {
		w := addr.Addr(code.Word(a))
		if w >= code.Base() && w < code.End() && addr.IsAligned(w, 4) {
			return a, true
		}
	}
	return code.End(), true
}

// FixCtorSymbolNames renames every symbol at a .ctor entry address to the
// conventional "ctor_NN" scheme used by the canonical source tree,
// replacing whatever the function analyzer originally assigned it
// (typically an anonymous func_XXXXXXXX name, since ctor entries are
// reached only through the pointer array, never by a direct call the
// cross-module resolver would otherwise name).
type Renamer interface {
	RenameByAddress(a addr.Addr, newName string) (bool, error)
}

func FixCtorSymbolNames(code Code, syms Renamer, ctor Section) error {
	if ctor.Kind != KindCtor {
		return dserr.Errorf(dserr.UnknownDelinkSection, ctor.Name)
	}
	i := 0
	for a := ctor.Start; a+4 < ctor.End; a += 4 { // last word is the null terminator
		target := addr.Addr(code.Word(a)).Clear()
		if _, err := syms.RenameByAddress(target, ctorName(i)); err != nil {
			logger.Logf("section", "fix ctor symbol name at %#08x: %v", uint32(target), err)
		}
		i++
	}
	return nil
}

func ctorName(i int) string {
	return fmt.Sprintf("ctor_%02d", i)
}
