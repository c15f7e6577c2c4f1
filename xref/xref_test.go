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

package xref_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pret/dsdecomp/analysis"
	"github.com/pret/dsdecomp/module"
	"github.com/pret/dsdecomp/reloc"
	"github.com/pret/dsdecomp/symbol"
	"github.com/pret/dsdecomp/xref"
)

func TestResolveFunctionCallsSkipsConditional(t *testing.T) {
	main := module.New("main", module.Main(), 0x02000000, make([]byte, 0x1000), 0)
	p := &xref.Program{Modules: []*module.Module{main}}

	f := &analysis.Function{
		Calls: []analysis.FunctionCall{
			{From: 0x02000000, To: 0x02000100, Conditional: true, Kind: analysis.CallDirect},
			{From: 0x02000010, To: 0x02000100, Conditional: false, Kind: analysis.CallDirect},
		},
	}
	xref.ResolveFunctionCalls(p, main, f, main.Relocs)
	assert.Equal(t, 1, main.Relocs.Len())
}

func TestClassifyTargetsPrefersSourceModuleAmongOverlays(t *testing.T) {
	ov1 := module.New("ov1", module.Overlay(1), 0x02100000, make([]byte, 0x1000), 0)
	ov2 := module.New("ov2", module.Overlay(2), 0x02100000, make([]byte, 0x1000), 0)
	p := &xref.Program{Modules: []*module.Module{ov1, ov2}}

	f := &analysis.Function{
		Calls: []analysis.FunctionCall{{From: 0x02100000, To: 0x02100100, Kind: analysis.CallDirect}},
	}
	xref.ResolveFunctionCalls(p, ov1, f, ov1.Relocs)
	require.Equal(t, 1, ov1.Relocs.Len())
	r := ov1.Relocs.All()[0]
	assert.Equal(t, reloc.ModuleOverlay, r.Module.Kind)
	assert.Equal(t, uint16(1), r.Module.OverlayID)
}

func TestDowngradeAmbiguousSymbolsMarksEveryCandidate(t *testing.T) {
	ov1 := module.New("ov1", module.Overlay(1), 0x02100000, make([]byte, 0x10), 0)
	ov2 := module.New("ov2", module.Overlay(2), 0x02100000, make([]byte, 0x10), 0)
	ov1.Symbols.Add(&symbol.Symbol{Name: "func_ov001_02100004", Kind: symbol.Function, Address: 0x02100004})
	ov2.Symbols.Add(&symbol.Symbol{Name: "func_ov002_02100004", Kind: symbol.Function, Address: 0x02100004})

	p := &xref.Program{Modules: []*module.Module{ov1, ov2}}
	store := reloc.NewStore()
	require.NoError(t, store.Add(reloc.Relocation{
		From: 0x02000000, To: 0x02100004, Kind: reloc.ArmCall,
		Module: reloc.Overlays([]uint16{1, 2}),
	}))

	xref.DowngradeAmbiguousSymbols(p, store)

	s1, err := ov1.Symbols.ByAddress(0x02100004)
	require.NoError(t, err)
	assert.True(t, s1.Ambiguous)
	s2, err := ov2.Symbols.ByAddress(0x02100004)
	require.NoError(t, err)
	assert.True(t, s2.Ambiguous)
}
