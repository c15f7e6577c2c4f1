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

package lcfgen_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/lcfgen"
	"github.com/pret/dsdecomp/module"
	"github.com/pret/dsdecomp/section"
)

func TestGenerateOrdersModulesByBaseAddress(t *testing.T) {
	ov := module.New("overlay0", module.Overlay(0), 0x02100000, make([]byte, 0x10), 0)
	require.NoError(t, ov.Sections.Add(section.Section{Name: ".text", Kind: section.KindText, Start: 0x02100000, End: 0x02100010, Alignment: 4}))

	main := module.New("main", module.Main(), 0x02000000, make([]byte, 0x10), 0)
	require.NoError(t, main.Sections.Add(section.Section{Name: ".text", Kind: section.KindText, Start: 0x02000000, End: 0x02000010, Alignment: 4}))

	var buf bytes.Buffer
	require.NoError(t, lcfgen.Generate(&buf, []*module.Module{ov, main}))
	out := buf.String()

	mainIdx := bytes.Index(buf.Bytes(), []byte("main_block"))
	ovIdx := bytes.Index(buf.Bytes(), []byte("overlay0_block"))
	require.NotEqual(t, -1, mainIdx)
	require.NotEqual(t, -1, ovIdx)
	assert.Less(t, mainIdx, ovIdx)
	assert.Contains(t, out, "0x02000000")
	assert.Contains(t, out, "0x02100000")
}

func TestBuildDataComputesMemoryNames(t *testing.T) {
	m := module.New("itcm", module.AutoloadKindOf(module.AutoloadItcm, 0), addr.Addr(0x01FF8000), make([]byte, 4), 0)
	data := lcfgen.BuildData([]*module.Module{m})
	require.Len(t, data.Modules, 1)
	assert.Equal(t, "itcm", data.Modules[0].MemoryName)
}
