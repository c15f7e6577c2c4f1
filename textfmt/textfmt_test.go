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

package textfmt_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/reloc"
	"github.com/pret/dsdecomp/symbol"
	"github.com/pret/dsdecomp/textfmt"
)

func TestSymbolRoundTrip(t *testing.T) {
	in := []*symbol.Symbol{
		{Name: "func_02000000", Kind: symbol.Function, Address: 0x02000000, Mode: addr.Thumb, Size: 0x18},
		{Name: "data_02000100", Kind: symbol.Data, Address: 0x02000100, DataKind: symbol.DataWord, Count: 4, CountKnown: true},
		{Name: ".bss_02004000", Kind: symbol.Bss, Address: 0x02004000, SizeKnown: true, Size: 0x40},
	}
	var buf bytes.Buffer
	require.NoError(t, textfmt.WriteSymbols(&buf, in))

	out, err := textfmt.ReadSymbols(&buf)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "func_02000000", out[0].Name)
	assert.Equal(t, symbol.Function, out[0].Kind)
	assert.Equal(t, addr.Thumb, out[0].Mode)
	assert.Equal(t, uint32(0x18), out[0].Size)
	assert.Equal(t, symbol.DataWord, out[1].DataKind)
	assert.Equal(t, uint32(4), out[1].Count)
	assert.True(t, out[2].SizeKnown)
}

func TestRelocationRoundTrip(t *testing.T) {
	in := []*reloc.Relocation{
		{From: 0x02000000, To: 0x02100004, Addend: -8, Kind: reloc.ArmCall, Module: reloc.Overlays([]uint16{1, 3})},
	}
	var buf bytes.Buffer
	require.NoError(t, textfmt.WriteRelocations(&buf, in))

	out, err := textfmt.ReadRelocations(&buf)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, addr.Addr(0x02000000), out[0].From)
	assert.Equal(t, reloc.ModuleOverlays, out[0].Module.Kind)
	assert.Equal(t, []uint16{1, 3}, out[0].Module.OverlayIDs)
	assert.Equal(t, int32(-8), out[0].Addend)
}

func TestDelinksRoundTripAndCoverage(t *testing.T) {
	text := ".text:\n  main.o 0x02000000 0x02000100\n  sub.o 0x02000100 0x02000200\n.rodata:\n  main.o 0x02000200 0x02000210\n"

	out, err := textfmt.ReadDelinks(bytes.NewBufferString(text))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, ".text", out[0].Section)
	assert.Len(t, out[0].Ranges, 2)
	assert.True(t, out[0].Covers(0x02000000, 0x02000200))
	assert.False(t, out[1].Covers(0x02000200, 0x02000300))
}

func TestDelinksRejectsRangeBeforeHeader(t *testing.T) {
	_, err := textfmt.ReadDelinks(bytes.NewBufferString("  main.o 0x0 0x4\n"))
	assert.Error(t, err)
}
