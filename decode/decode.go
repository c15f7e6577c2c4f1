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

package decode

import (
	"fmt"

	"github.com/pret/dsdecomp/addr"
)

// Decoder supplies per-address instruction decoding. The function analyzer
// (C4) depends only on this interface, which is the "external collaborator"
// named in the component design: Default is the concrete implementation
// used everywhere in this repository, but callers that want to fuzz or
// replay a captured trace can substitute their own.
type Decoder interface {
	// Decode decodes the instruction at a. code must start at a's offset
	// into the containing module and extend at least to the end of the
	// module, so 32-bit ARM reads and Thumb BL/BLX pairs never run past the
	// end of the slice.
	Decode(a addr.Addr, thumb bool, code []byte) (Instruction, error)
}

// Default is the Decoder implementation grounded on this package's ARM and
// Thumb decode tables.
var Default Decoder = defaultDecoder{}

type defaultDecoder struct{}

func (defaultDecoder) Decode(a addr.Addr, thumb bool, code []byte) (Instruction, error) {
	if thumb {
		if len(code) < 2 {
			return Instruction{}, fmt.Errorf("decode: need 2 bytes for thumb instruction at %#08x, have %d", uint32(a), len(code))
		}
		return DecodeThumb(a, code), nil
	}
	if len(code) < 4 {
		return Instruction{}, fmt.Errorf("decode: need 4 bytes for arm instruction at %#08x, have %d", uint32(a), len(code))
	}
	return DecodeARM(a, code), nil
}
