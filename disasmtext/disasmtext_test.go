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

package disasmtext_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/analysis"
	"github.com/pret/dsdecomp/decode"
	"github.com/pret/dsdecomp/disasmtext"
	"github.com/pret/dsdecomp/reloc"
	"github.com/pret/dsdecomp/symbol"
)

func putWord(buf []byte, off int, w uint32) {
	binary.LittleEndian.PutUint32(buf[off:], w)
}

func TestRenderFunctionAnnotatesCall(t *testing.T) {
	base := addr.Addr(0x02000000)
	code := make([]byte, 16)
	putWord(code, 0, 0xEB000001) // bl base+12
	putWord(code, 4, 0xE1A0F00E) // mov pc, lr (unreachable, just padding)
	putWord(code, 8, 0xE1A0F00E)
	putWord(code, 12, 0xE1A0F00E) // mov pc, lr: callee entry

	f := &analysis.Function{
		Start: base,
		End:   base + 4,
		Mode:  addr.ARM,
	}

	syms := symbol.NewMap()
	callee := syms.Add(&symbol.Symbol{Name: "func_0200000c", Kind: symbol.Function, Address: base + 12})
	require.NotNil(t, callee)

	relocs := reloc.NewStore()
	require.NoError(t, relocs.AddCall(base, base+12, reloc.ArmCall, reloc.Main()))

	entries, err := disasmtext.RenderFunction(f, decode.Default, code, base, syms, relocs)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Text, "func_0200000c")
}

func TestRenderFunctionLabelsLeaf(t *testing.T) {
	base := addr.Addr(0x02000000)
	code := make([]byte, 4)
	putWord(code, 0, 0xE1A0F00E) // mov pc, lr

	f := &analysis.Function{Start: base, End: base + 4, Mode: addr.ARM}
	syms := symbol.NewMap()
	syms.Add(&symbol.Symbol{Name: "func_02000000", Kind: symbol.Function, Address: base})
	relocs := reloc.NewStore()

	entries, err := disasmtext.RenderFunction(f, decode.Default, code, base, syms, relocs)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "func_02000000", entries[0].Label)
}

func TestWriteRendersLabelAndIndent(t *testing.T) {
	entries := []disasmtext.Entry{
		{Address: 0x02000000, Label: "func_02000000", Text: "mov pc, lr"},
	}
	var buf bytes.Buffer
	require.NoError(t, disasmtext.Write(&buf, entries, disasmtext.Options{}))
	out := buf.String()
	assert.Contains(t, out, "func_02000000:\n")
	assert.Contains(t, out, "\tmov pc, lr\n")
}
