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

// Package xref implements the cross-module resolver (C6): it turns each
// analyzed function's calls and pool-constant loads into relocations, and
// classifies pointer-sized pool constants as local data, a single overlay
// candidate, or an ambiguous set of candidates.
package xref

import (
	"sort"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/analysis"
	"github.com/pret/dsdecomp/logger"
	"github.com/pret/dsdecomp/module"
	"github.com/pret/dsdecomp/reloc"
)

// Program is the minimal view of the whole ROM the resolver needs: every
// module. Cross-module queries live here rather than on Module, so a
// Module never needs a back-pointer to its siblings.
type Program struct {
	Modules []*module.Module
}

// ModulesContaining returns every module whose extent contains a. For
// main/autoload address space this is always at most one module; for
// addresses inside the shared overlay window it may be several.
func (p *Program) ModulesContaining(a addr.Addr) []*module.Module {
	var out []*module.Module
	for _, m := range p.Modules {
		if m.ContainsData(a) {
			out = append(out, m)
		}
	}
	return out
}

// ResolveFunctionCalls emits a relocation for every call recorded on f,
// into dst's relocation store. Conditional calls are skipped: this
// toolchain quirk means a conditional "bl"/"blx" never needs a symbolic
// relocation, since the linker always resolves it directly against a
// known, already-linked destination.
func ResolveFunctionCalls(p *Program, from *module.Module, f *analysis.Function, dst *reloc.Store) {
	for _, c := range f.Calls {
		if c.Conditional {
			continue
		}
		kind := reloc.CallKind(c.FromThumb, c.ToThumb)
		if !c.FromThumb && !c.ToThumb && c.Kind == analysis.CallTail {
			// tail-call branches compile to "b", not "bl": still needs a
			// relocation so the delinked object keeps working if the
			// destination moves.
			kind = reloc.ArmBranch
		}

		targets := p.ModulesContaining(c.To)
		mod := classifyTargets(from, targets)

		if err := dst.Add(reloc.Relocation{
			From: c.From, To: c.To, Addend: kind.PCAddend(), Kind: kind, Module: mod,
		}); err != nil {
			logger.Logf("xref", "call relocation at %#08x: %v", uint32(c.From), err)
		}
	}
}

// ResolvePoolLoads classifies every pointer-sized pool constant on f as
// local data, a single overlay candidate, or an ambiguous group, and
// emits a Load relocation for each one whose value resolves to somewhere
// in the ROM's address space at all. Pool constants that are plain
// numeric literals, not pointers, resolve to zero modules and are left
// alone.
func ResolvePoolLoads(p *Program, from *module.Module, f *analysis.Function, dst *reloc.Store) {
	for _, pc := range f.PoolConstants {
		targets := p.ModulesContaining(addr.Addr(pc.Value))
		if len(targets) == 0 {
			continue
		}
		mod := classifyTargets(from, targets)
		if err := dst.Add(reloc.Relocation{
			From: pc.Address, To: addr.Addr(pc.Value), Kind: reloc.Load, Module: mod,
		}); err != nil {
			logger.Logf("xref", "pool load relocation at %#08x: %v", uint32(pc.Address), err)
		}
	}
}

// classifyTargets turns a set of candidate destination modules into a
// reloc.Module: a single candidate resolves to exactly that module's
// kind; the source module's own candidacy is preferred among several (a
// self-call inside an overlay is never ambiguous); otherwise every overlay
// candidate is kept and the caller must mark the corresponding symbol
// Ambiguous (see DowngradeAmbiguousSymbols) rather than drop it.
func classifyTargets(from *module.Module, targets []*module.Module) reloc.Module {
	if len(targets) == 0 {
		return reloc.None()
	}
	if len(targets) == 1 {
		return targets[0].Kind.RelocModule()
	}
	for _, t := range targets {
		if t == from {
			return t.Kind.RelocModule()
		}
	}
	var ids []uint16
	for _, t := range targets {
		if t.Kind.Tag == module.KindOverlay {
			ids = append(ids, t.Kind.OverlayID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return reloc.Overlays(ids)
}

// DowngradeAmbiguousSymbols walks every relocation whose Module targets
// more than one overlay and marks the destination symbol, in every
// candidate module's symbol map that has one at that address, as
// Ambiguous. No symbol is ever removed: ambiguity is recorded, never
// resolved by guessing.
func DowngradeAmbiguousSymbols(p *Program, store *reloc.Store) {
	for _, r := range store.All() {
		if r.Module.Kind != reloc.ModuleOverlays {
			continue
		}
		for _, m := range p.Modules {
			if _, err := m.Symbols.ByAddress(r.To); err == nil {
				m.Symbols.MarkAmbiguous(r.To)
			}
		}
	}
}
