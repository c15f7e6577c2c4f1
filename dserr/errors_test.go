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

package dserr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pret/dsdecomp/dserr"
)

func TestHeadAndIs(t *testing.T) {
	err := dserr.Errorf(dserr.SectionsOverlap, ".text", ".rodata")
	assert.True(t, dserr.Is(err, dserr.SectionsOverlap))
	assert.Equal(t, dserr.SectionsOverlap, dserr.Head(err))
	assert.Equal(t, "sections overlap: .text and .rodata", err.Error())
}

func TestHasTraversesWrappedCause(t *testing.T) {
	inner := dserr.Errorf(dserr.DuplicateSymbolName, "func_02000000")
	outer := dserr.Errorf("while merging symbol maps: %w", inner)

	assert.True(t, dserr.Has(outer, dserr.DuplicateSymbolName))
	assert.False(t, dserr.Has(outer, dserr.SectionsOverlap))
}

func TestIsAnyFalseForPlainError(t *testing.T) {
	assert.False(t, dserr.IsAny(nil))
	assert.False(t, dserr.IsAny(errors.New("plain")))
}
