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

package symbol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/symbol"
)

func TestRenameByAddressCollision(t *testing.T) {
	m := symbol.NewMap()
	m.Add(&symbol.Symbol{Name: "func_0200f000", Kind: symbol.Function, Address: 0x0200f000, Size: 4})

	changed, err := m.RenameByAddress(0x0200f000, "InitMath")
	require.NoError(t, err)
	assert.True(t, changed)

	// renaming to the same name again is idempotent
	changed, err = m.RenameByAddress(0x0200f000, "InitMath")
	require.NoError(t, err)
	assert.False(t, changed)

	// a duplicate name at a different address is permitted
	m.Add(&symbol.Symbol{Name: "func_02010000", Kind: symbol.Function, Address: 0x02010000, Size: 4})
	changed, err = m.RenameByAddress(0x02010000, "InitMath")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, m.ByName("InitMath"), 2)
}

func TestRenameByAddressRequiresExactlyOne(t *testing.T) {
	m := symbol.NewMap()
	m.Add(&symbol.Symbol{Name: "a", Kind: symbol.Data, Address: 0x02000000})
	m.Add(&symbol.Symbol{Name: "b", Kind: symbol.Data, Address: 0x02000000})

	_, err := m.RenameByAddress(0x02000000, "c")
	assert.Error(t, err)
}

func TestGetFunctionContaining(t *testing.T) {
	m := symbol.NewMap()
	m.Add(&symbol.Symbol{Name: "func_02000000", Kind: symbol.Function, Address: 0x02000000, Size: 0x20})
	m.Add(&symbol.Symbol{Name: "func_02000020", Kind: symbol.Function, Address: 0x02000020, Size: 0x10})

	sym, ok := m.GetFunctionContaining(0x02000010)
	require.True(t, ok)
	assert.Equal(t, "func_02000000", sym.Name)

	sym, ok = m.GetFunctionContaining(0x02000024)
	require.True(t, ok)
	assert.Equal(t, "func_02000020", sym.Name)

	_, ok = m.GetFunctionContaining(0x02000030)
	assert.False(t, ok)
}

func TestAmbiguousDowngrade(t *testing.T) {
	m := symbol.NewMap()
	m.AddAmbiguousData(0x02200000, "data_ov000_02200000", symbol.Data)
	m.AddAmbiguousData(0x02200000, "data_ov001_02200000", symbol.Data)

	for _, s := range m.AllAtAddress(0x02200000) {
		assert.True(t, s.Ambiguous)
	}

	m.Add(&symbol.Symbol{Name: "data_02200000", Kind: symbol.Data, Address: 0x02200000})
	m.DowngradeAmbiguous(0x02200000)

	for _, s := range m.AllAtAddress(0x02200000) {
		assert.False(t, s.Ambiguous)
	}

	_, err := m.ByAddress(0x02200000)
	assert.Error(t, err, "three unambiguous symbols at the same address is still a lookup error")
}

func TestLabelName(t *testing.T) {
	// the Thumb bit is masked off before formatting
	assert.Equal(t, ".L_02000000", symbol.LabelName(addr.Addr(0x02000001)))
}
