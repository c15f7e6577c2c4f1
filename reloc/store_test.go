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

package reloc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/reloc"
)

func TestAddDuplicateIsNoop(t *testing.T) {
	s := reloc.NewStore()
	r := reloc.Relocation{From: 0x02000000, To: 0x02001000, Kind: reloc.ArmBranch, Module: reloc.Main()}
	require.NoError(t, s.Add(r))
	require.NoError(t, s.Add(r))
	assert.Equal(t, 1, s.Len())
}

func TestAddCollisionIsError(t *testing.T) {
	s := reloc.NewStore()
	require.NoError(t, s.Add(reloc.Relocation{From: 0x02000000, To: 0x02001000, Kind: reloc.ArmBranch, Module: reloc.Main()}))
	err := s.Add(reloc.Relocation{From: 0x02000000, To: 0x02002000, Kind: reloc.ArmBranch, Module: reloc.Main()})
	assert.Error(t, err)
}

func TestRange(t *testing.T) {
	s := reloc.NewStore()
	for _, a := range []addr.Addr{0x02000000, 0x02000010, 0x02000020, 0x02000030} {
		require.NoError(t, s.AddCall(a, a+0x1000, reloc.ArmCall, reloc.Main()))
	}

	got := s.Range(0x02000010, 0x02000030)
	require.Len(t, got, 2)
	assert.Equal(t, addr.Addr(0x02000010), got[0].From)
	assert.Equal(t, addr.Addr(0x02000020), got[1].From)
}

func TestOverlaysCollapsesSingleton(t *testing.T) {
	m := reloc.Overlays([]uint16{5})
	assert.Equal(t, reloc.ModuleOverlay, m.Kind)
	assert.Equal(t, uint16(5), m.OverlayID)
}

func TestOverlaysDedupsAndSorts(t *testing.T) {
	m := reloc.Overlays([]uint16{3, 1, 3, 2})
	assert.Equal(t, reloc.ModuleOverlays, m.Kind)
	assert.Equal(t, []uint16{1, 2, 3}, m.OverlayIDs)
	assert.Equal(t, "overlays(1,2,3)", m.String())
}

func TestRelocationStringFormat(t *testing.T) {
	r := reloc.Relocation{From: 0x02000000, To: 0x02010000, Addend: 4, Kind: reloc.Load, Module: reloc.Overlay(3)}
	assert.Equal(t, "from:0x02000000 kind:load to:0x02010000 module:overlay(3) add:+4", r.String())
}

func TestCallKindPCAddend(t *testing.T) {
	assert.Equal(t, int32(-8), reloc.ArmCall.PCAddend())
	assert.Equal(t, int32(-4), reloc.ThumbCall.PCAddend())
	assert.Equal(t, int32(0), reloc.Load.PCAddend())
	assert.Equal(t, reloc.ThumbCallArm, reloc.CallKind(true, false))
	assert.Equal(t, reloc.ArmCallThumb, reloc.CallKind(false, true))
}
