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

package textfmt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/dserr"
	"github.com/pret/dsdecomp/reloc"
)

// WriteRelocations serializes every relocation, one per line, in the
// "from:... kind:... to:... module:... [add:...]" grammar reloc.Relocation
// already implements via String.
func WriteRelocations(w io.Writer, rs []*reloc.Relocation) error {
	bw := bufio.NewWriter(w)
	for _, r := range rs {
		if _, err := fmt.Fprintln(bw, r.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadRelocations parses a relocation file written by WriteRelocations.
func ReadRelocations(r io.Reader) ([]reloc.Relocation, error) {
	sc := bufio.NewScanner(r)
	var out []reloc.Relocation
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(stripComment(sc.Text()))
		if text == "" {
			continue
		}
		rel, err := parseRelocationLine(text)
		if err != nil {
			return nil, dserr.Errorf(dserr.RelocationFileParse, fmt.Sprintf("line %d: %s", line, err))
		}
		out = append(out, rel)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseRelocationLine(line string) (reloc.Relocation, error) {
	var rel reloc.Relocation
	haveFrom, haveTo, haveKind, haveModule := false, false, false, false

	for _, f := range strings.Fields(line) {
		key, value, ok := strings.Cut(f, ":")
		if !ok {
			return rel, fmt.Errorf("unexpected token %q", f)
		}
		switch key {
		case "from":
			a, err := parseHexU32(value)
			if err != nil {
				return rel, fmt.Errorf("bad from address %q: %w", value, err)
			}
			rel.From, haveFrom = addr.Addr(a), true
		case "to":
			a, err := parseHexU32(value)
			if err != nil {
				return rel, fmt.Errorf("bad to address %q: %w", value, err)
			}
			rel.To, haveTo = addr.Addr(a), true
		case "kind":
			k, err := reloc.ParseKind(value)
			if err != nil {
				return rel, err
			}
			rel.Kind, haveKind = k, true
		case "module":
			m, err := reloc.ParseModule(value)
			if err != nil {
				return rel, err
			}
			rel.Module, haveModule = m, true
		case "add":
			n, err := strconv.ParseInt(value, 10, 32)
			if err != nil {
				return rel, fmt.Errorf("bad addend %q: %w", value, err)
			}
			rel.Addend = int32(n)
		default:
			return rel, fmt.Errorf("unknown attribute %q", key)
		}
	}
	if !haveFrom || !haveTo || !haveKind || !haveModule {
		return rel, fmt.Errorf("relocation line missing a required field (from/to/kind/module)")
	}
	return rel, nil
}
