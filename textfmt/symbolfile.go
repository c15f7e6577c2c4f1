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

// Package textfmt reads and writes the three human-editable text formats a
// module's persistent state round-trips through: the symbol file, the
// relocation file, and the delinks file.
package textfmt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/dserr"
	"github.com/pret/dsdecomp/symbol"
)

// WriteSymbols serializes every symbol in order, one per line:
//
//	name kind:<kind>(<options>) addr:0x02000000 [ambiguous] [local]
func WriteSymbols(w io.Writer, syms []*symbol.Symbol) error {
	bw := bufio.NewWriter(w)
	for _, s := range syms {
		if _, err := fmt.Fprintln(bw, formatSymbol(s)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatSymbol(s *symbol.Symbol) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s kind:%s", s.Name, formatKind(s))
	fmt.Fprintf(&b, " addr:%#08x", uint32(s.Address.Clear()))
	if s.Ambiguous {
		b.WriteString(" ambiguous")
	}
	if s.Local {
		b.WriteString(" local")
	}
	return b.String()
}

func formatKind(s *symbol.Symbol) string {
	switch s.Kind {
	case symbol.Function:
		opts := s.Mode.String() + fmt.Sprintf(",size=%#x", s.Size)
		if s.UnknownBit {
			opts += ",unknown_bit"
		}
		return fmt.Sprintf("function(%s)", opts)
	case symbol.Label:
		opts := s.Mode.String()
		if s.External {
			opts += ",external"
		}
		return fmt.Sprintf("label(%s)", opts)
	case symbol.PoolConstant:
		return "pool_constant"
	case symbol.JumpTable:
		if s.CodeEntries {
			return "jump_table(code)"
		}
		return "jump_table(offset)"
	case symbol.Data:
		opts := s.DataKind.String()
		if s.CountKnown {
			opts += fmt.Sprintf(",count=%d", s.Count)
		}
		return fmt.Sprintf("data(%s)", opts)
	case symbol.Bss:
		if s.SizeKnown {
			return fmt.Sprintf("bss(size=%#x)", s.Size)
		}
		return "bss"
	default:
		return "undefined"
	}
}

// ReadSymbols parses a symbol file written by WriteSymbols.
func ReadSymbols(r io.Reader) ([]*symbol.Symbol, error) {
	sc := bufio.NewScanner(r)
	var out []*symbol.Symbol
	line := 0
	for sc.Scan() {
		line++
		text := stripComment(sc.Text())
		if strings.TrimSpace(text) == "" {
			continue
		}
		sym, err := parseSymbolLine(text)
		if err != nil {
			return nil, dserr.Errorf(dserr.SymbolFileParse, fmt.Sprintf("line %d: %s", line, err))
		}
		out = append(out, sym)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseSymbolLine(line string) (*symbol.Symbol, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty symbol line")
	}
	sym := &symbol.Symbol{Name: fields[0]}
	for _, f := range fields[1:] {
		key, value, ok := strings.Cut(f, ":")
		if !ok {
			switch f {
			case "ambiguous":
				sym.Ambiguous = true
			case "local":
				sym.Local = true
			default:
				return nil, fmt.Errorf("unexpected token %q", f)
			}
			continue
		}
		switch key {
		case "addr":
			a, err := parseHexU32(value)
			if err != nil {
				return nil, fmt.Errorf("bad addr %q: %w", value, err)
			}
			sym.Address = addr.Addr(a)
		case "kind":
			if err := parseKind(sym, value); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unknown attribute %q", key)
		}
	}
	return sym, nil
}

func parseKind(sym *symbol.Symbol, text string) error {
	name, opts := text, ""
	if i := strings.IndexByte(text, '('); i >= 0 && strings.HasSuffix(text, ")") {
		name, opts = text[:i], text[i+1:len(text)-1]
	}
	switch name {
	case "function":
		sym.Kind = symbol.Function
		parseFunctionOpts(sym, opts)
	case "label":
		sym.Kind = symbol.Label
		for _, o := range strings.Split(opts, ",") {
			switch o {
			case "arm":
				sym.Mode = addr.ARM
			case "thumb":
				sym.Mode = addr.Thumb
			case "external":
				sym.External = true
			}
		}
	case "pool_constant":
		sym.Kind = symbol.PoolConstant
	case "jump_table":
		sym.Kind = symbol.JumpTable
		sym.CodeEntries = opts == "code"
	case "data":
		sym.Kind = symbol.Data
		parseDataOpts(sym, opts)
	case "bss":
		sym.Kind = symbol.Bss
		for _, o := range strings.Split(opts, ",") {
			if k, v, ok := strings.Cut(o, "="); ok && k == "size" {
				n, err := parseHexU32(v)
				if err == nil {
					sym.Size = n
					sym.SizeKnown = true
				}
			}
		}
	case "undefined", "":
		sym.Kind = symbol.Undefined
	default:
		return fmt.Errorf("unknown symbol kind %q", name)
	}
	return nil
}

func parseFunctionOpts(sym *symbol.Symbol, opts string) {
	for _, o := range strings.Split(opts, ",") {
		switch {
		case o == "arm":
			sym.Mode = addr.ARM
		case o == "thumb":
			sym.Mode = addr.Thumb
		case o == "unknown_bit":
			sym.UnknownBit = true
		case strings.HasPrefix(o, "size="):
			if n, err := parseHexU32(strings.TrimPrefix(o, "size=")); err == nil {
				sym.Size = n
			}
		}
	}
}

func parseDataOpts(sym *symbol.Symbol, opts string) {
	for _, o := range strings.Split(opts, ",") {
		switch {
		case o == "byte":
			sym.DataKind = symbol.DataByte
		case o == "short":
			sym.DataKind = symbol.DataShort
		case o == "word":
			sym.DataKind = symbol.DataWord
		case o == "any", o == "":
			sym.DataKind = symbol.DataAny
		case strings.HasPrefix(o, "count="):
			if n, err := strconv.ParseUint(strings.TrimPrefix(o, "count="), 10, 32); err == nil {
				sym.Count = uint32(n)
				sym.CountKnown = true
			}
		}
	}
}

func parseHexU32(s string) (uint32, error) {
	s = strings.TrimPrefix(s, "0x")
	n, err := strconv.ParseUint(s, 16, 32)
	return uint32(n), err
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}
