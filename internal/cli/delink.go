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
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pret/dsdecomp/config"
	"github.com/pret/dsdecomp/elfobj"
	"github.com/pret/dsdecomp/module"
	"github.com/pret/dsdecomp/reloc"
	"github.com/pret/dsdecomp/section"
)

var delinkCmd = &cobra.Command{
	Use:   "delink",
	Short: "Emit one relocatable ELF object per synthesized section",
	RunE:  runDelink,
}

func runDelink(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	prog, err := LoadProgram(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return err
	}

	for _, s := range prog.Main.Sections.All() {
		obj := buildObject(prog.Main, s)
		data, err := elfobj.Write(obj)
		if err != nil {
			return err
		}
		path := filepath.Join(cfg.OutputDir, cfg.ArchiveName+s.Name+".o")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		colorSuccess.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	}
	return nil
}

// buildObject converts one synthesized section of m into a single-section
// ELF object: every symbol and relocation whose address falls in s's range
// is carried over, and every relocation addend is folded into the implicit
// PC-bias already recorded on reloc.Relocation so the written form is
// already zero-addend canonical beyond that bias.
func buildObject(m *module.Module, s section.Section) *elfobj.Object {
	obj := &elfobj.Object{
		Sections: []elfobj.Section{{
			Name:      s.Name,
			Data:      sectionData(m, s),
			Bss:       s.Kind.IsBss(),
			Alignment: s.Alignment,
			Exec:      s.Kind == section.KindText || s.Kind == section.KindInit,
			Write:     s.Kind == section.KindData || s.Kind == section.KindBss,
		}},
	}

	for _, sym := range m.Symbols.IterateRange(s.Start, s.End) {
		obj.Symbols = append(obj.Symbols, elfobj.Symbol{
			Name:    sym.Name,
			Section: s.Name,
			Value:   uint32(sym.Address.Clear()) - uint32(s.Start),
			Size:    sym.Size,
			Func:    sym.Kind.String() == "function",
			Global:  true,
		})
		if sym.Mode.String() == "thumb" {
			obj.Mappings = append(obj.Mappings, elfobj.Mapping{Section: s.Name, Value: uint32(sym.Address.Clear()) - uint32(s.Start), Kind: elfobj.MapThumb})
		} else {
			obj.Mappings = append(obj.Mappings, elfobj.Mapping{Section: s.Name, Value: uint32(sym.Address.Clear()) - uint32(s.Start), Kind: elfobj.MapARM})
		}
	}

	for _, r := range m.Relocs.Range(s.Start, s.End) {
		kind := relocKind(r.Kind)
		obj.Relocations = append(obj.Relocations, elfobj.Relocation{
			Section: s.Name,
			Offset:  uint32(r.From.Clear()) - uint32(s.Start),
			Symbol:  targetName(m, r),
			Kind:    kind,
			Addend:  0,
		})
	}
	return obj
}

func sectionData(m *module.Module, s section.Section) []byte {
	if s.Kind.IsBss() {
		return nil
	}
	return m.Slice(s.Start)[:s.Len()]
}

func relocKind(k reloc.Kind) elfobj.RelocKind {
	switch k {
	case reloc.ArmCall, reloc.ArmBranch:
		return elfobj.RelArmCall
	case reloc.ArmCallThumb:
		return elfobj.RelArmCallX
	case reloc.ThumbCall:
		return elfobj.RelThumbCall
	case reloc.ThumbCallArm:
		return elfobj.RelThumbCallX
	default:
		return elfobj.RelAbs32
	}
}

func targetName(m *module.Module, r *reloc.Relocation) string {
	if sym, err := m.Symbols.ByAddress(r.To); err == nil && sym != nil {
		return sym.Name
	}
	return fmt.Sprintf("%s%08x", m.FuncPrefix, uint32(r.To.Clear()))
}
