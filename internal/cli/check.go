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
	"os"

	"github.com/spf13/cobra"

	"github.com/pret/dsdecomp/config"
	"github.com/pret/dsdecomp/textfmt"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate on-disk project artifacts",
}

var checkSymbolsCmd = &cobra.Command{
	Use:   "symbols <file>",
	Short: "Validate that every symbol in a symbol file lies within the main binary",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckSymbols,
}

func init() {
	checkCmd.AddCommand(checkSymbolsCmd)
}

func runCheckSymbols(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	prog, err := LoadProgram(cfg)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	syms, err := textfmt.ReadSymbols(f)
	if err != nil {
		return err
	}

	bad := 0
	for _, s := range syms {
		if !prog.Main.ContainsData(s.Address) {
			colorWarning.Fprintf(cmd.OutOrStdout(), "%s at %#08x lies outside the main binary\n", s.Name, uint32(s.Address.Clear()))
			bad++
		}
	}
	if bad > 0 {
		return fail("%d of %d symbols failed validation", bad, len(syms))
	}
	colorSuccess.Fprintf(cmd.OutOrStdout(), "%d symbols ok\n", len(syms))
	return nil
}
