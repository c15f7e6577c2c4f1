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

package reloc

import (
	"slices"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/dserr"
	"github.com/pret/dsdecomp/logger"
)

// Store is a relocation store ordered by From address. It enforces the
// single-source invariant: at most one relocation per From address.
type Store struct {
	byFrom map[addr.Addr]*Relocation
	index  []*Relocation // kept sorted ascending by From
}

// NewStore is the preferred method of initialization for Store.
func NewStore() *Store {
	return &Store{byFrom: make(map[addr.Addr]*Relocation)}
}

// Add inserts r. An identical re-add at the same From address is a logged
// no-op; a conflicting insert (same From, different contents) is a hard
// error.
func (s *Store) Add(r Relocation) error {
	if existing, ok := s.byFrom[r.From]; ok {
		if existing.Equal(r) {
			logger.Logf("reloc", "duplicate relocation from %#08x ignored", uint32(r.From))
			return nil
		}
		return dserr.Errorf(dserr.RelocationCollision, uint32(r.From))
	}

	rp := r
	s.byFrom[r.From] = &rp

	i, _ := slices.BinarySearchFunc(s.index, &rp, func(a, b *Relocation) int {
		return int(a.From) - int(b.From)
	})
	s.index = slices.Insert(s.index, i, &rp)
	return nil
}

// AddCall is a convenience wrapper building and inserting a call/branch
// relocation.
func (s *Store) AddCall(from, to addr.Addr, kind Kind, module Module) error {
	return s.Add(Relocation{From: from, To: to, Kind: kind, Module: module})
}

// AddLoad is a convenience wrapper building and inserting a Load
// relocation.
func (s *Store) AddLoad(from, to addr.Addr, addend int32, module Module) error {
	return s.Add(Relocation{From: from, To: to, Addend: addend, Kind: Load, Module: module})
}

// Get returns the relocation at from, if any.
func (s *Store) Get(from addr.Addr) (*Relocation, bool) {
	r, ok := s.byFrom[from]
	return r, ok
}

// Range returns every relocation whose From lies in [lo, hi).
func (s *Store) Range(lo, hi addr.Addr) []*Relocation {
	i, _ := slices.BinarySearchFunc(s.index, lo, func(a *Relocation, t addr.Addr) int {
		return int(a.From) - int(t)
	})
	var out []*Relocation
	for ; i < len(s.index); i++ {
		if s.index[i].From >= hi {
			break
		}
		out = append(out, s.index[i])
	}
	return out
}

// All returns every relocation, ascending by From.
func (s *Store) All() []*Relocation {
	return s.index
}

// Len returns the number of recorded relocations.
func (s *Store) Len() int {
	return len(s.index)
}
