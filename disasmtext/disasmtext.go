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

// Package disasmtext renders a static disassembly listing of an analyzed
// module: one line per instruction, annotated with symbol names wherever
// a relocation or label resolves one, in the spirit of a linker map.
package disasmtext

import (
	"fmt"
	"io"
	"strings"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/analysis"
	"github.com/pret/dsdecomp/decode"
	"github.com/pret/dsdecomp/reloc"
	"github.com/pret/dsdecomp/symbol"
)

// Entry is one rendered disassembly line, kept as a struct (rather than a
// pre-joined string) so a caller doing interactive or filtered output
// doesn't have to re-parse it.
type Entry struct {
	Address addr.Addr
	Label   string // symbol name at this address, if any
	Text    string // the instruction's Mnemonic and Operand, plus any resolved symbol; decode.Default leaves Mnemonic and Operand empty
	Raw     []byte
}

// Options configures listing output.
type Options struct {
	ShowAddress bool
	ShowBytes   bool
}

// RenderFunction renders every instruction of f as a sequence of Entry
// values, resolving call and pool-load targets against syms and relocs.
func RenderFunction(f *analysis.Function, dec decode.Decoder, code []byte, base addr.Addr, syms *symbol.Map, relocs *reloc.Store) ([]Entry, error) {
	var out []Entry

	labelAt := map[addr.Addr]bool{}
	for _, l := range f.Labels {
		labelAt[l.Address.Clear()] = true
	}

	ins, err := f.Instructions(dec, code, base)
	if err != nil {
		return nil, err
	}

	for _, in := range ins {
		e := Entry{Address: in.Address}
		if s, ok := syms.GetFunction(in.Address); ok && s.Address.Clear() == in.Address.Clear() {
			e.Label = s.Name
		} else if labelAt[in.Address.Clear()] {
			e.Label = symbol.LabelName(in.Address)
		}
		e.Text = renderInstruction(in, relocs, syms)
		out = append(out, e)
	}
	return out, nil
}

func renderInstruction(in decode.Instruction, relocs *reloc.Store, syms *symbol.Map) string {
	text := in.Mnemonic
	if in.Operand != "" {
		text += " " + in.Operand
	}
	if !in.HasTarget && !in.IsPoolLoad {
		return text
	}
	// a pool load's relocation is keyed by the pool word it reads, not by
	// the load instruction itself.
	key := in.Address
	if in.IsPoolLoad {
		key = in.Target.Clear()
	}
	if r, ok := relocs.Get(key); ok {
		if sym, err := syms.ByAddress(r.To); err == nil && sym != nil {
			return fmt.Sprintf("%-32s // -> %s", text, sym.Name)
		}
	}
	return text
}

// Write writes entries as a plain-text listing, one per line.
func Write(w io.Writer, entries []Entry, opts Options) error {
	var b strings.Builder
	for _, e := range entries {
		b.Reset()
		if opts.ShowAddress {
			fmt.Fprintf(&b, "%08x  ", uint32(e.Address.Clear()))
		}
		if e.Label != "" {
			fmt.Fprintf(&b, "%s:\n", e.Label)
			if opts.ShowAddress {
				fmt.Fprintf(&b, "%08x  ", uint32(e.Address.Clear()))
			}
		}
		b.WriteString("\t")
		b.WriteString(e.Text)
		b.WriteString("\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}
