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
	"github.com/spf13/cobra"

	"github.com/pret/dsdecomp/config"
	"github.com/pret/dsdecomp/reloc"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump diagnostic views of the analyzed program",
}

var dumpAmbigRelocsCmd = &cobra.Command{
	Use:   "ambig-relocs",
	Short: "List every relocation whose destination resolves to more than one overlay candidate",
	RunE:  runDumpAmbigRelocs,
}

func init() {
	dumpCmd.AddCommand(dumpAmbigRelocsCmd)
}

func runDumpAmbigRelocs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	prog, err := LoadProgram(cfg)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	count := 0
	for _, r := range prog.Main.Relocs.All() {
		if r.Module.Kind != reloc.ModuleOverlays {
			continue
		}
		count++
		colorWarning.Fprintln(w, r.String())
	}
	if count == 0 {
		colorSuccess.Fprintln(w, "no ambiguous relocations")
	}
	return nil
}
