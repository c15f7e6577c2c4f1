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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pret/dsdecomp/elfobj"
	"github.com/pret/dsdecomp/module"
	"github.com/pret/dsdecomp/reloc"
	"github.com/pret/dsdecomp/section"
	"github.com/pret/dsdecomp/symbol"
)

func TestRelocKindMapsEveryRelocKind(t *testing.T) {
	assert.Equal(t, elfobj.RelArmCall, relocKind(reloc.ArmCall))
	assert.Equal(t, elfobj.RelArmCall, relocKind(reloc.ArmBranch))
	assert.Equal(t, elfobj.RelArmCallX, relocKind(reloc.ArmCallThumb))
	assert.Equal(t, elfobj.RelThumbCall, relocKind(reloc.ThumbCall))
	assert.Equal(t, elfobj.RelThumbCallX, relocKind(reloc.ThumbCallArm))
	assert.Equal(t, elfobj.RelAbs32, relocKind(reloc.Load))
}

func TestTargetNameFallsBackToSyntheticNameWhenUnresolved(t *testing.T) {
	m := module.New("main", module.Main(), 0x02000000, make([]byte, 0x10), 0)
	name := targetName(m, &reloc.Relocation{To: 0x02000008})
	assert.Equal(t, "func_02000008", name)
}

func TestTargetNamePrefersExistingSymbol(t *testing.T) {
	m := module.New("main", module.Main(), 0x02000000, make([]byte, 0x10), 0)
	m.Symbols.Add(&symbol.Symbol{Name: "DoThing", Kind: symbol.Function, Address: 0x02000008})
	name := targetName(m, &reloc.Relocation{To: 0x02000008})
	assert.Equal(t, "DoThing", name)
}

func TestBuildObjectMarksTextSectionExecutable(t *testing.T) {
	m := module.New("main", module.Main(), 0x02000000, make([]byte, 0x10), 0)
	s := section.Section{Name: ".text", Kind: section.KindText, Start: 0x02000000, End: 0x02000010, Alignment: 4}
	obj := buildObject(m, s)
	assert.True(t, obj.Sections[0].Exec)
	assert.False(t, obj.Sections[0].Write)
}
