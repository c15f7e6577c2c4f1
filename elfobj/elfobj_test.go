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

package elfobj_test

import (
	"bytes"
	"debug/elf"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pret/dsdecomp/elfobj"
)

func TestWriteProducesParsableObject(t *testing.T) {
	obj := &elfobj.Object{
		Sections: []elfobj.Section{
			{Name: ".text", Data: []byte{0x1e, 0xff, 0x2f, 0xe1}, Exec: true},
			{Name: ".bss", Bss: true, Data: make([]byte, 16)},
		},
		Mappings: []elfobj.Mapping{
			{Section: ".text", Value: 0, Kind: elfobj.MapARM},
		},
		Symbols: []elfobj.Symbol{
			{Name: "func_02000000", Section: ".text", Value: 0, Size: 4, Func: true, Global: true},
		},
	}

	data, err := elfobj.Write(obj)
	require.NoError(t, err)
	require.True(t, len(data) > 52)

	f, err := elf.NewFile(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, elf.ET_REL, f.Type)
	assert.Equal(t, elf.EM_ARM, f.Machine)

	text := f.Section(".text")
	require.NotNil(t, text)
	assert.Equal(t, uint64(4), text.Size)

	syms, err := f.Symbols()
	require.NoError(t, err)
	var found bool
	for _, s := range syms {
		if s.Name == "func_02000000" {
			found = true
		}
	}
	assert.True(t, found)
}
