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
	"fmt"
	"strconv"
	"strings"
)

// ParseModule parses the text form produced by Module.String.
func ParseModule(s string) (Module, error) {
	switch {
	case s == "none":
		return None(), nil
	case s == "main":
		return Main(), nil
	case s == "itcm":
		return Itcm(), nil
	case s == "dtcm":
		return Dtcm(), nil
	case strings.HasPrefix(s, "autoload(") && strings.HasSuffix(s, ")"):
		n, err := strconv.ParseUint(s[len("autoload(") : len(s)-1], 10, 32)
		if err != nil {
			return Module{}, fmt.Errorf("bad autoload index in %q: %w", s, err)
		}
		return Autoload(uint32(n)), nil
	case strings.HasPrefix(s, "overlay(") && strings.HasSuffix(s, ")"):
		n, err := strconv.ParseUint(s[len("overlay(") : len(s)-1], 10, 16)
		if err != nil {
			return Module{}, fmt.Errorf("bad overlay id in %q: %w", s, err)
		}
		return Overlay(uint16(n)), nil
	case strings.HasPrefix(s, "overlays(") && strings.HasSuffix(s, ")"):
		inner := s[len("overlays(") : len(s)-1]
		var ids []uint16
		for _, part := range strings.Split(inner, ",") {
			n, err := strconv.ParseUint(part, 10, 16)
			if err != nil {
				return Module{}, fmt.Errorf("bad overlay id %q in %q: %w", part, s, err)
			}
			ids = append(ids, uint16(n))
		}
		return Overlays(ids), nil
	default:
		return Module{}, fmt.Errorf("unknown relocation module %q", s)
	}
}
