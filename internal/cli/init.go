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
)

var initCmd = &cobra.Command{
	Use:   "init <rom>",
	Short: "Write a starting project config file for a ROM",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	cfg.Rom = args[0]

	if _, err := os.Stat(cfgFile); err == nil {
		return fail("%s already exists", cfgFile)
	}

	out, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgFile, out, 0o644); err != nil {
		return err
	}
	colorSuccess.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgFile)
	return nil
}
