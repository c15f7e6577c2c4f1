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

package decode_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pret/dsdecomp/addr"
	"github.com/pret/dsdecomp/decode"
)

func armWord(w uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, w)
	return b
}

func thumbHalf(h uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, h)
	return b
}

func TestDecodeARMUnconditionalBranch(t *testing.T) {
	// b #0x02000100, encoded at 0x02000000: offset = (0x100 - 8) / 4
	offset := (int32(0x100) - 8) / 4
	word := uint32(0xEA000000) | uint32(offset)&0x00FFFFFF
	in := decode.DecodeARM(0x02000000, armWord(word))
	assert.Equal(t, decode.OpB, in.Op)
	assert.True(t, in.HasTarget)
	assert.Equal(t, addr.Addr(0x02000100), in.Target)
	assert.False(t, in.IsConditional())
}

func TestDecodeARMConditionalBX(t *testing.T) {
	// bxeq lr : cond=EQ(0x0), 0001 0010 1111 1111 1111 0001 1110
	word := uint32(0x012FFF1E)
	in := decode.DecodeARM(0x02000000, armWord(word))
	assert.Equal(t, decode.OpBX, in.Op)
	assert.Equal(t, decode.LR, in.Rm)
	assert.Equal(t, decode.CondEQ, in.Cond)
	assert.True(t, in.IsConditional())
}

func TestDecodeARMPoolLoad(t *testing.T) {
	// ldr r0, [pc, #0x10] at 0x02000004 -> pool at 0x02000004+8+0x10=0x0200001C
	word := uint32(0xE59F0010)
	in := decode.DecodeARM(0x02000004, armWord(word))
	assert.Equal(t, decode.OpLDR, in.Op)
	assert.True(t, in.IsPoolLoad)
	assert.Equal(t, addr.Addr(0x0200001C), in.Target)
}

func TestDecodeThumbPushLR(t *testing.T) {
	// push {r4, lr}: 1011 0 10 1 0001 0000 -> reglist bits: r4 (bit4) set, R bit set
	h := uint16(0xB510)
	in := decode.DecodeThumb(0x02000000, thumbHalf(h))
	assert.Equal(t, decode.OpPUSH, in.Op)
	assert.True(t, in.WriteLR)
	assert.True(t, in.RegList&(1<<4) != 0)
}

func TestDecodeThumbPoolLoad(t *testing.T) {
	// ldr r2, [pc, #4] at address 0x02000000 -> base = align(0x4,4)=0x4, target=0x8
	h := uint16(0x4A01)
	in := decode.DecodeThumb(0x02000000, thumbHalf(h))
	assert.Equal(t, decode.OpLDR, in.Op)
	assert.True(t, in.IsPoolLoad)
	assert.Equal(t, addr.Addr(0x02000008), in.Target)
}

func TestDecodeThumbUnconditionalBranch(t *testing.T) {
	// b #+4 from address 0x02000000 (offset11 = 2, since *2 = 4)
	h := uint16(0xE000 | 2)
	in := decode.DecodeThumb(0x02000000, thumbHalf(h))
	assert.Equal(t, decode.OpB, in.Op)
	assert.Equal(t, addr.Addr(0x02000008).WithThumb(true), in.Target)
}

func TestDecodeThumbBLPair(t *testing.T) {
	// bl target = current+4+0x100 from 0x02000000
	// split a +0x100 offset between high (bits22-12) and low (bits11-1) parts
	off := int32(0x100)
	hi := uint16(0xF000 | uint16((off>>12)&0x7FF))
	lo := uint16(0xF800 | uint16((off>>1)&0x7FF))

	code := make([]byte, 4)
	binary.LittleEndian.PutUint16(code[0:], hi)
	binary.LittleEndian.PutUint16(code[2:], lo)

	in := decode.DecodeThumb(0x02000000, code)
	assert.Equal(t, decode.OpBL, in.Op)
	assert.Equal(t, 4, in.Length)
	assert.Equal(t, addr.Addr(0x02000104).WithThumb(true), in.Target)
}

func TestDecodeARMDataProcessingCompareHasNoRd(t *testing.T) {
	// cmp r0, #0: cond=AL, I=1, opcode=1010(CMP), S=1, Rn=r0, Rd=SBZ, imm=0
	word := uint32(0xE3500000)
	in := decode.DecodeARM(0x02000000, armWord(word))
	assert.Equal(t, decode.OpCMP, in.Op)
	assert.Equal(t, decode.R0, in.Rn)
	assert.Equal(t, decode.Reg(-1), in.Rd)
}

func TestStoresUndefinedStackSlot(t *testing.T) {
	in := decode.Instruction{Op: decode.OpSTR, Rn: decode.SP}
	assert.True(t, in.StoresUndefinedStackSlot())
}
