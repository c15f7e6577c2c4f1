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

// Package section synthesizes and holds the canonical section layout of a
// module (C5): .ctor, .init, .text, .rodata, .data, .bss, .exception and
// .exceptix, assembled from landmarks found by the function analyzer and
// the raw byte stream rather than trusted from any input metadata.
package section

import (
	"fmt"
	"sort"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/dserr"
)

// Kind names a canonical section. The numeric order carries no meaning;
// List sorts by address, not by Kind.
type Kind int

const (
	KindUnknown Kind = iota
	KindCtor
	KindInit
	KindText
	KindRodata
	KindData
	KindBss
	KindException
	KindExceptix
)

var kindNames = map[Kind]string{
	KindUnknown:   "",
	KindCtor:      ".ctor",
	KindInit:      ".init",
	KindText:      ".text",
	KindRodata:    ".rodata",
	KindData:      ".data",
	KindBss:       ".bss",
	KindException: ".exception",
	KindExceptix:  ".exceptix",
}

func (k Kind) String() string { return kindNames[k] }

// ParseKind maps a canonical section name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, n := range kindNames {
		if n == s && k != KindUnknown {
			return k, true
		}
	}
	return KindUnknown, false
}

// IsBss reports whether this section occupies no file bytes.
func (k Kind) IsBss() bool { return k == KindBss }

// Section is a half-open address range tagged with a canonical kind.
type Section struct {
	Name      string // e.g. ".text", or ".text.1" for secondary split text
	Kind      Kind
	Start     addr.Addr
	End       addr.Addr // exclusive
	Alignment uint32
}

// Len returns the byte length of the section.
func (s Section) Len() uint32 { return uint32(s.End) - uint32(s.Start) }

// Contains reports whether a lies within [Start, End).
func (s Section) Contains(a addr.Addr) bool {
	c := a.Clear()
	return c >= s.Start && c < s.End
}

func (s Section) String() string {
	return fmt.Sprintf("%s [%#08x, %#08x) align=%d", s.Name, uint32(s.Start), uint32(s.End), s.Alignment)
}

// List holds a module's sections in address order and enforces the
// non-overlap and alignment invariants as sections are added.
type List struct {
	sections []Section
}

// NewList returns an empty section list.
func NewList() *List { return &List{} }

// Add inserts s in address order, validating alignment and checking for
// overlap against every already-present section.
func (l *List) Add(s Section) error {
	if s.Alignment > 0 && !addr.IsAligned(s.Start, s.Alignment) {
		return dserr.Errorf(dserr.SectionMisaligned, s.Name, uint32(s.Start), s.Alignment)
	}
	for _, existing := range l.sections {
		if s.Start < existing.End && existing.Start < s.End {
			return dserr.Errorf(dserr.SectionsOverlap, s.Name, existing.Name)
		}
	}
	idx := sort.Search(len(l.sections), func(i int) bool { return l.sections[i].Start >= s.Start })
	l.sections = append(l.sections, Section{})
	copy(l.sections[idx+1:], l.sections[idx:])
	l.sections[idx] = s
	return nil
}

// All returns every section, in address order.
func (l *List) All() []Section { return l.sections }

// Len reports the number of sections.
func (l *List) Len() int { return len(l.sections) }

// ByKind returns the first section of the given kind, if any.
func (l *List) ByKind(k Kind) (Section, bool) {
	for _, s := range l.sections {
		if s.Kind == k {
			return s, true
		}
	}
	return Section{}, false
}

// Containing returns the section whose range contains a, if any.
func (l *List) Containing(a addr.Addr) (Section, bool) {
	c := a.Clear()
	i := sort.Search(len(l.sections), func(i int) bool { return l.sections[i].End > c })
	if i < len(l.sections) && l.sections[i].Contains(c) {
		return l.sections[i], true
	}
	return Section{}, false
}

// End returns the address one past the last section, or 0 if the list is
// empty.
func (l *List) End() addr.Addr {
	if len(l.sections) == 0 {
		return 0
	}
	return l.sections[len(l.sections)-1].End
}
