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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pret/dsdecomp/config"
	"github.com/pret/dsdecomp/lcfgen"
	"github.com/pret/dsdecomp/module"
)

var lcfCmd = &cobra.Command{
	Use:   "lcf",
	Short: "Generate the linker command file placing the main module at its ROM address",
	RunE:  runLcf,
}

func runLcf(cmd *cobra.Command, args []string) error {
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
	path := filepath.Join(cfg.OutputDir, cfg.ArchiveName+".lcf")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := lcfgen.Generate(f, []*module.Module{prog.Main}); err != nil {
		return err
	}
	colorSuccess.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
