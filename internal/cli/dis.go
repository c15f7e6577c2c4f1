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
	"github.com/pret/dsdecomp/decode"
	"github.com/pret/dsdecomp/disasmtext"
)

var disShowAddress bool

var disCmd = &cobra.Command{
	Use:   "dis",
	Short: "Print a static disassembly listing of the main binary",
	RunE:  runDis,
}

func init() {
	disCmd.Flags().BoolVar(&disShowAddress, "addresses", true, "prefix each line with its address")
}

func runDis(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	prog, err := LoadProgram(cfg)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, f := range prog.Functions {
		entries, err := disasmtext.RenderFunction(f, decode.Default, prog.Main.Code, prog.Main.BaseAddress, prog.Main.Symbols, prog.Main.Relocs)
		if err != nil {
			colorWarning.Fprintf(cmd.ErrOrStderr(), "skipping function at %#08x: %v\n", uint32(f.Start.Clear()), err)
			continue
		}
		if err := disasmtext.Write(w, entries, disasmtext.Options{ShowAddress: disShowAddress}); err != nil {
			return err
		}
	}
	return nil
}
