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

package analysis_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/analysis"
	"github.com/pret/dsdecomp/decode"
)

// memSource is a flat in-memory Source for testing: code[0] is the byte at
// base.
type memSource struct {
	base addr.Addr
	code []byte
}

func (m memSource) Bytes(a addr.Addr) []byte {
	off := uint32(a.Clear()) - uint32(m.base)
	return m.code[off:]
}

func (m memSource) Bounds() (addr.Addr, addr.Addr) {
	return m.base, m.base + addr.Addr(len(m.code))
}

func putThumb(code []byte, off int, h uint16) {
	binary.LittleEndian.PutUint16(code[off:], h)
}

func putWord(code []byte, off int, w uint32) {
	binary.LittleEndian.PutUint32(code[off:], w)
}

func TestWalkSimpleThumbLeafFunction(t *testing.T) {
	code := make([]byte, 16)
	// push {lr}; pop {pc}
	putThumb(code, 0, 0xB500)
	putThumb(code, 2, 0xBD00)

	src := memSource{base: 0x02000000, code: code}
	f, err := analysis.Walk(src, 0x02000000, addr.Thumb, analysis.Options{})
	require.NoError(t, err)
	assert.Equal(t, addr.Addr(0x02000004), f.End)
	assert.False(t, f.NoEpilogue)
}

func TestWalkThumbConditionalTailCallIsTreatedAsLabel(t *testing.T) {
	code := make([]byte, 16)
	putThumb(code, 0, 0xD001) // beq #2 -> target = pc(+4)+2*1 = 0x02000006
	putThumb(code, 2, 0x4770) // bx lr
	putThumb(code, 4, 0x46C0) // nop (mov r8, r8), filler
	putThumb(code, 6, 0x4770) // bx lr (branch target landing pad)

	src := memSource{base: 0x02000000, code: code}
	f, err := analysis.Walk(src, 0x02000000, addr.Thumb, analysis.Options{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, uint32(f.End), uint32(0x02000004))
}

func TestWalkARMUnconditionalTailCallToKnownFunction(t *testing.T) {
	code := make([]byte, 16)
	// b #8 (tail call to a known function at +8)
	offset := (int32(8) - 8) / 4
	putWord(code, 0, uint32(0xEA000000)|uint32(offset)&0x00FFFFFF)
	// known function body, irrelevant to this walk
	putWord(code, 8, 0xE1A0F00E) // mov pc, lr

	src := memSource{base: 0x02000000, code: code}
	known := func(a addr.Addr) bool { return a == 0x02000008 }
	f, err := analysis.Walk(src, 0x02000000, addr.ARM, analysis.Options{KnownFunctionStart: known})
	require.NoError(t, err)
	assert.Equal(t, addr.Addr(0x02000004), f.End)
	require.Len(t, f.Calls, 1)
	assert.Equal(t, analysis.CallTail, f.Calls[0].Kind)
}

func TestIsIllegalMovSameRegister(t *testing.T) {
	in := decode.Instruction{Op: decode.OpMOV, Rd: decode.R1, Rm: decode.R1}
	assert.True(t, analysis.IsIllegal(in))
}

func TestIsIllegalAcceptsOrdinaryMov(t *testing.T) {
	in := decode.Instruction{Op: decode.OpMOV, Rd: decode.R1, Rm: decode.R2}
	assert.False(t, analysis.IsIllegal(in))
}

func TestValidateDefUseRejectsReadBeforeDef(t *testing.T) {
	ins := []decode.Instruction{
		{Op: decode.OpADD, Rd: decode.R5, Rn: decode.R6, Rm: decode.R7},
	}
	a, reg, bad := analysis.ValidateDefUse(ins)
	assert.True(t, bad)
	assert.Equal(t, decode.R6, reg)
	_ = a
}

func TestValidateDefUseAcceptsArgumentRegisters(t *testing.T) {
	ins := []decode.Instruction{
		{Op: decode.OpADD, Rd: decode.R4, Rn: decode.R0, Rm: decode.R1},
	}
	_, _, bad := analysis.ValidateDefUse(ins)
	assert.False(t, bad)
}
