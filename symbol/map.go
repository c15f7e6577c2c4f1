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

package symbol

import (
	"fmt"
	"slices"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/dserr"
	"github.com/pret/dsdecomp/logger"
)

// Map is a by-address and by-name multi-index over a flat symbol slice.
// Duplicate names and duplicate addresses are both allowed: callers that
// require uniqueness use AddIfNewAddress or check ByAddress themselves.
type Map struct {
	byAddress map[addr.Addr][]*Symbol
	byName    map[string][]*Symbol
	index     []*Symbol // kept sorted ascending by Address
}

// NewMap is the preferred method of initialization for Map.
func NewMap() *Map {
	return &Map{
		byAddress: make(map[addr.Addr][]*Symbol),
		byName:    make(map[string][]*Symbol),
	}
}

// Add always appends sym to the map, even if its name or address
// duplicates an existing entry.
func (m *Map) Add(sym *Symbol) *Symbol {
	key := sym.Address.Clear()
	m.byAddress[key] = append(m.byAddress[key], sym)
	m.byName[sym.Name] = append(m.byName[sym.Name], sym)

	i, _ := slices.BinarySearchFunc(m.index, sym, func(a, b *Symbol) int {
		return int(a.Address.Clear()) - int(b.Address.Clear())
	})
	m.index = slices.Insert(m.index, i, sym)
	return sym
}

// AddIfNewAddress adds sym only if no symbol is currently recorded at its
// address, and reports whether it was added.
func (m *Map) AddIfNewAddress(sym *Symbol) (*Symbol, bool) {
	if existing, ok := m.byAddress[sym.Address.Clear()]; ok && len(existing) > 0 {
		return existing[0], false
	}
	return m.Add(sym), true
}

// RenameByAddress requires exactly one symbol at addr; it updates the name
// index and reports whether the name actually changed. Idempotent when the
// name already matches.
func (m *Map) RenameByAddress(a addr.Addr, newName string) (changed bool, err error) {
	syms := m.byAddress[a.Clear()]
	if len(syms) != 1 {
		return false, dserr.Errorf(dserr.SymbolLookupAmbiguous, uint32(a.Clear()))
	}
	sym := syms[0]
	if sym.Name == newName {
		return false, nil
	}

	oldName := sym.Name
	m.byName[oldName] = slices.DeleteFunc(m.byName[oldName], func(s *Symbol) bool { return s == sym })
	if len(m.byName[oldName]) == 0 {
		delete(m.byName, oldName)
	}

	sym.Name = newName
	m.byName[newName] = append(m.byName[newName], sym)
	logger.Logf("symbol", "renamed %s to %s at %#08x", oldName, newName, uint32(a.Clear()))
	return true, nil
}

// FirstAtAddress returns the first symbol recorded at addr, if any.
func (m *Map) FirstAtAddress(a addr.Addr) (*Symbol, bool) {
	syms := m.byAddress[a.Clear()]
	if len(syms) == 0 {
		return nil, false
	}
	return syms[0], true
}

// AllAtAddress returns every symbol recorded at addr.
func (m *Map) AllAtAddress(a addr.Addr) []*Symbol {
	return m.byAddress[a.Clear()]
}

// ByAddress returns the unique symbol at addr. It is an error if more than
// one *unambiguous* (non-Ambiguous) symbol is recorded there; when several
// ambiguous symbols and at most one unambiguous symbol share the address,
// the unambiguous one wins.
func (m *Map) ByAddress(a addr.Addr) (*Symbol, error) {
	syms := m.byAddress[a.Clear()]
	if len(syms) == 0 {
		return nil, nil
	}

	var concrete *Symbol
	concreteCount := 0
	for _, s := range syms {
		if !s.Ambiguous {
			concrete = s
			concreteCount++
		}
	}
	if concreteCount > 1 {
		return nil, dserr.Errorf(dserr.SymbolLookupAmbiguous, uint32(a.Clear()))
	}
	if concrete != nil {
		return concrete, nil
	}
	// every candidate is ambiguous: any one identifies the address equally
	return syms[0], nil
}

// ByName returns every symbol recorded under name.
func (m *Map) ByName(name string) []*Symbol {
	return m.byName[name]
}

// GetFunction returns the Function symbol whose address matches a exactly
// (the Thumb bit of a is masked before comparing).
func (m *Map) GetFunction(a addr.Addr) (*Symbol, bool) {
	for _, s := range m.byAddress[a.Clear()] {
		if s.Kind == Function {
			return s, true
		}
	}
	return nil, false
}

// GetFunctionContaining walks backward from a along the sorted index to
// find the nearest Function symbol whose [Address, Address+Size) range
// covers a.
func (m *Map) GetFunctionContaining(a addr.Addr) (*Symbol, bool) {
	target := a.Clear()

	i, found := slices.BinarySearchFunc(m.index, target, func(s *Symbol, t addr.Addr) int {
		return int(s.Address.Clear()) - int(t)
	})
	if found {
		// there may be several symbols sharing this exact address; prefer
		// the Function among them if present, else keep searching back
		for j := i; j < len(m.index) && m.index[j].Address.Clear() == target; j++ {
			if m.index[j].Kind == Function {
				return m.index[j], true
			}
		}
	}

	for j := i - 1; j >= 0; j-- {
		s := m.index[j]
		if s.Kind != Function {
			continue
		}
		start := s.Address.Clear()
		if target >= start && target < start+addr.Addr(s.Size) {
			return s, true
		}
		// first Function encountered walking backward that doesn't cover
		// target means no function covers it (functions don't overlap)
		return nil, false
	}
	return nil, false
}

// IterateRange returns every symbol with Address in [lo, hi), ascending.
func (m *Map) IterateRange(lo, hi addr.Addr) []*Symbol {
	var out []*Symbol
	for _, s := range m.index {
		a := s.Address.Clear()
		if a < lo {
			continue
		}
		if a >= hi {
			break
		}
		out = append(out, s)
	}
	return out
}

// All returns every symbol, ascending by address.
func (m *Map) All() []*Symbol {
	return m.index
}

// Len returns the number of recorded symbols.
func (m *Map) Len() int {
	return len(m.index)
}

// DowngradeAmbiguous clears the Ambiguous flag on every symbol at addr.
// Called the first time a concrete (non-ambiguous) symbol is added at an
// address that previously held only ambiguous symbols.
func (m *Map) DowngradeAmbiguous(a addr.Addr) {
	for _, s := range m.byAddress[a.Clear()] {
		s.Ambiguous = false
	}
}

// MarkAmbiguous sets the Ambiguous flag on every symbol at addr. Called
// when the cross-module resolver discovers a relocation whose destination
// resolves to more than one overlay candidate: the existing symbol is kept
// (never dropped), just flagged as not uniquely resolved.
func (m *Map) MarkAmbiguous(a addr.Addr) {
	for _, s := range m.byAddress[a.Clear()] {
		s.Ambiguous = true
	}
}

// AddAmbiguousData adds an ambiguous Data or Bss symbol at addr named by
// prefix, unless a non-ambiguous symbol is already present there (in which
// case the existing symbol wins and nothing is added). If a concrete
// add happens later at the same address, callers must call
// DowngradeAmbiguous explicitly; this method never does so itself since it
// is, by construction, never the concrete add.
func (m *Map) AddAmbiguousData(a addr.Addr, name string, kind Kind) *Symbol {
	if existing, ok := m.FirstAtAddress(a); ok && !existing.Ambiguous {
		return existing
	}
	return m.Add(&Symbol{
		Name:      name,
		Kind:      kind,
		Address:   a,
		Ambiguous: true,
	})
}

// String renders the map in address order, one symbol per line, for
// debugging.
func (m *Map) String() string {
	s := ""
	for _, sym := range m.index {
		s += fmt.Sprintf("%#08x -> %s [%s]\n", uint32(sym.Address.Clear()), sym.Name, sym.Kind)
	}
	return s
}
