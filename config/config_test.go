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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pret/dsdecomp/config"
)

func TestLoadParsesYamlProjectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dsdecomp.yaml")
	contents := "rom: game.nds\noutput_dir: out\noverlays:\n  - id: 0\n    name: battle\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "game.nds", cfg.Rom)
	assert.Equal(t, "out", cfg.OutputDir)
	require.Len(t, cfg.Overlays, 1)
	assert.Equal(t, "battle", cfg.Overlays[0].Name)
}

func TestValidateRejectsMissingRom(t *testing.T) {
	cfg := config.Default()
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsDuplicateOverlayIDs(t *testing.T) {
	cfg := config.Default()
	cfg.Rom = "game.nds"
	cfg.Overlays = []config.OverlayConfig{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}}
	assert.Error(t, cfg.Validate())
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Rom = "game.nds"
	out, err := config.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "rom: game.nds")
}
