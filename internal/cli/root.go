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

// Package cli wires the core packages together behind a cobra command
// tree: init, dis, delink, check, dump and lcf.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfgFile string

	colorError   = color.New(color.FgRed, color.Bold)
	colorWarning = color.New(color.FgYellow)
	colorSuccess = color.New(color.FgGreen)
)

// RootCmd is the base command; cmd/dsdecomp's main just calls Execute.
var RootCmd = &cobra.Command{
	Use:   "dsdecomp",
	Short: "Static decompilation scaffolding for Nintendo DS ARM9 binaries",
	Long: `dsdecomp recovers function boundaries, symbols and relocations from a
raw ARM9 binary and its overlays, and emits relocatable object files a
linker can reassemble into a matching ROM.`,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "dsdecomp.yaml", "project config file")
	RootCmd.AddCommand(initCmd, disCmd, delinkCmd, checkCmd, dumpCmd, lcfCmd)
}

// Execute runs the command tree; it is the whole of cmd/dsdecomp's main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		colorError.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fail(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
