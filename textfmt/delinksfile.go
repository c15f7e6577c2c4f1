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
	"strings"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/dserr"
)

// DelinkRange is one source file's claimed slice of a section.
type DelinkRange struct {
	File  string
	Start addr.Addr
	End   addr.Addr // exclusive
}

// DelinkSection is a canonical section name followed by the ordered list
// of source files the delinker should split it into.
type DelinkSection struct {
	Section string
	Ranges  []DelinkRange
}

// WriteDelinks serializes sections as a header block ("section:") followed
// by one indented "file start end" line per range:
//
//	.text:
//	  main.o 0x02000000 0x02000100
//	  sub/foo.o 0x02000100 0x02000200
func WriteDelinks(w io.Writer, sections []DelinkSection) error {
	bw := bufio.NewWriter(w)
	for _, sec := range sections {
		if _, err := fmt.Fprintf(bw, "%s:\n", sec.Section); err != nil {
			return err
		}
		for _, r := range sec.Ranges {
			if _, err := fmt.Fprintf(bw, "  %s %#08x %#08x\n", r.File, uint32(r.Start), uint32(r.End)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// ReadDelinks parses a delinks file written by WriteDelinks.
func ReadDelinks(r io.Reader) ([]DelinkSection, error) {
	sc := bufio.NewScanner(r)
	var out []DelinkSection
	var cur *DelinkSection
	line := 0

	fail := func(format string, args ...any) ([]DelinkSection, error) {
		return nil, dserr.Errorf(dserr.DelinksFileParse, fmt.Sprintf("line %d: %s", line, fmt.Sprintf(format, args...)))
	}

	for sc.Scan() {
		line++
		text := stripComment(sc.Text())
		if strings.TrimSpace(text) == "" {
			continue
		}
		if !strings.HasPrefix(text, " ") && !strings.HasPrefix(text, "\t") {
			name, ok := strings.CutSuffix(strings.TrimSpace(text), ":")
			if !ok {
				return fail("expected a \"section:\" header, got %q", text)
			}
			out = append(out, DelinkSection{Section: name})
			cur = &out[len(out)-1]
			continue
		}
		if cur == nil {
			return fail("file range given before any section header")
		}
		fields := strings.Fields(text)
		if len(fields) != 3 {
			return fail("expected \"file start end\", got %q", text)
		}
		start, err := parseHexU32(fields[1])
		if err != nil {
			return fail("bad start address %q: %s", fields[1], err)
		}
		end, err := parseHexU32(fields[2])
		if err != nil {
			return fail("bad end address %q: %s", fields[2], err)
		}
		cur.Ranges = append(cur.Ranges, DelinkRange{File: fields[0], Start: addr.Addr(start), End: addr.Addr(end)})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Covers reports whether sec's ranges, taken together, cover [start, end)
// with no gaps and no overlaps, and are listed in ascending address order.
func (sec DelinkSection) Covers(start, end addr.Addr) bool {
	cursor := start
	for _, r := range sec.Ranges {
		if r.Start != cursor {
			return false
		}
		cursor = r.End
	}
	return cursor == end
}
