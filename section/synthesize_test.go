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

package section_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/section"
)

type fakeCode struct {
	base addr.Addr
	buf  []byte
}

func (f fakeCode) Word(a addr.Addr) uint32 {
	off := uint32(a.Clear()) - uint32(f.base)
	return binary.LittleEndian.Uint32(f.buf[off:])
}
func (f fakeCode) Byte(a addr.Addr) byte {
	return f.buf[uint32(a.Clear())-uint32(f.base)]
}
func (f fakeCode) Base() addr.Addr { return f.base }
func (f fakeCode) End() addr.Addr  { return f.base + addr.Addr(len(f.buf)) }

func putWord(buf []byte, off int, w uint32) {
	binary.LittleEndian.PutUint32(buf[off:], w)
}

func TestSynthesizeMinimalModule(t *testing.T) {
	base := addr.Addr(0x02000000)
	buf := make([]byte, 0x40)
	// a single function at base, extent [0,4)
	putWord(buf, 0, 0xE1A0F00E) // mov pc, lr

	code := fakeCode{base: base, buf: buf}
	lm := section.Landmarks{
		FunctionStarts: []addr.Addr{base},
		FunctionEnds:   map[addr.Addr]addr.Addr{base: base + 4},
	}

	list, err := section.Synthesize(code, lm)
	require.NoError(t, err)
	text, ok := list.ByKind(section.KindText)
	require.True(t, ok)
	assert.Equal(t, base, text.Start)
	assert.Equal(t, base+4, text.End)
}

func TestSectionListRejectsOverlap(t *testing.T) {
	l := section.NewList()
	require.NoError(t, l.Add(section.Section{Name: ".text", Start: 0x02000000, End: 0x02000100, Alignment: 4}))
	err := l.Add(section.Section{Name: ".rodata", Start: 0x020000F0, End: 0x02000200, Alignment: 4})
	assert.Error(t, err)
}

func TestSectionListRejectsMisalignment(t *testing.T) {
	l := section.NewList()
	err := l.Add(section.Section{Name: ".text", Start: 0x02000001, End: 0x02000100, Alignment: 4})
	assert.Error(t, err)
}
