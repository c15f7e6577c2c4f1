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

package cli

import (
	"fmt"
	"os"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/analysis"
	"github.com/pret/dsdecomp/config"
	"github.com/pret/dsdecomp/decode"
	"github.com/pret/dsdecomp/logger"
	"github.com/pret/dsdecomp/module"
	"github.com/pret/dsdecomp/romio"
	"github.com/pret/dsdecomp/section"
	"github.com/pret/dsdecomp/symbol"
	"github.com/pret/dsdecomp/xref"
)

// moduleSource adapts *module.Module to analysis.Source.
type moduleSource struct{ m *module.Module }

func (s moduleSource) Bytes(a addr.Addr) []byte { return s.m.Slice(a) }
func (s moduleSource) Bounds() (addr.Addr, addr.Addr) { return s.m.BaseAddress, s.m.End() }

// Program is this command tree's loaded, analyzed view of a ROM: currently
// only the main ARM9 binary is extracted, since overlay and autoload
// payloads live in separate ROM FAT entries this package does not parse
// (see DESIGN.md).
type Program struct {
	Config    config.Config
	Header    romio.Header
	Main      *module.Module
	XRef      *xref.Program
	Functions []*analysis.Function
}

// LoadProgram reads the ROM named by cfg.Rom, extracts the main ARM9
// binary, discovers its functions, synthesizes its sections, and resolves
// every call and pool load into relocations and symbols.
func LoadProgram(cfg config.Config) (*Program, error) {
	data, err := os.ReadFile(cfg.Rom)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}

	header, err := romio.ParseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("parsing rom header: %w", err)
	}
	if int(header.Arm9RomOffset+header.Arm9Size) > len(data) {
		return nil, fail("arm9 binary extends past end of rom image")
	}
	code := data[header.Arm9RomOffset : header.Arm9RomOffset+header.Arm9Size]

	m := module.New("main", module.Main(), header.Arm9RamAddress, code, 0)

	outcomes := analysis.FindMany(moduleSource{m}, analysis.FindManyOptions{
		Options: analysis.Options{
			Decoder:        decode.Default,
			ValidateDefUse: cfg.ValidateDefUse,
		},
		Starts:                []addr.Addr{header.Arm9EntryAddress},
		AllowUnknownFunctions: cfg.AllowUnknownFunctions,
	})

	var functions []*analysis.Function
	lm := section.Landmarks{
		Entry:        header.Arm9EntryAddress,
		FunctionEnds: map[addr.Addr]addr.Addr{},
	}
	for _, o := range outcomes {
		if o.Func == nil {
			logger.Logf("cli", "candidate %#08x rejected: %s", uint32(o.Start.Clear()), o.Reason)
			continue
		}
		functions = append(functions, o.Func)
		lm.FunctionStarts = append(lm.FunctionStarts, o.Func.Start)
		lm.FunctionEnds[o.Func.Start] = o.Func.End

		m.Symbols.Add(&symbol.Symbol{
			Name:    fmt.Sprintf("%s%08x", m.FuncPrefix, uint32(o.Func.Start.Clear())),
			Kind:    symbol.Function,
			Address: o.Func.Start,
			Mode:    o.Func.Mode,
			Size:    o.Func.Size(),
		})
	}

	list, err := section.Synthesize(m, lm)
	if err != nil {
		return nil, fmt.Errorf("synthesizing sections: %w", err)
	}
	m.Sections = list

	prog := &xref.Program{Modules: []*module.Module{m}}
	for _, f := range functions {
		xref.ResolveFunctionCalls(prog, m, f, m.Relocs)
		xref.ResolvePoolLoads(prog, m, f, m.Relocs)
	}
	xref.DowngradeAmbiguousSymbols(prog, m.Relocs)

	return &Program{Config: cfg, Header: header, Main: m, XRef: prog, Functions: functions}, nil
}
