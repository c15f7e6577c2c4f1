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

// Package config loads the project file that describes a single ROM's
// module layout: where the ARM9 binary and overlay tables live on disk, and
// the per-module names/prefixes the rest of the pipeline should use.
package config

import (
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pret/dsdecomp/dserr"
)

// OverlayConfig names a single overlay entry a user can override from the
// defaults romio would otherwise infer from the ROM's own overlay table.
type OverlayConfig struct {
	ID   uint16 `yaml:"id" mapstructure:"id"`
	Name string `yaml:"name" mapstructure:"name"`
}

// Config is the full project file, rooted at a ROM image plus the naming
// and output choices the rest of the pipeline needs.
type Config struct {
	Rom         string          `yaml:"rom" mapstructure:"rom"`
	OutputDir   string          `yaml:"output_dir" mapstructure:"output_dir"`
	ArchiveName string          `yaml:"archive_name" mapstructure:"archive_name"`
	Overlays    []OverlayConfig `yaml:"overlays" mapstructure:"overlays"`

	AllowUnknownFunctions bool `yaml:"allow_unknown_functions" mapstructure:"allow_unknown_functions"`
	ValidateDefUse        bool `yaml:"validate_def_use" mapstructure:"validate_def_use"`
}

// Default returns a Config with every field set to the pipeline's
// conservative defaults.
func Default() Config {
	return Config{
		OutputDir:             "build",
		ArchiveName:           "arm9",
		AllowUnknownFunctions: false,
		ValidateDefUse:        true,
	}
}

// Load reads a YAML project file at path using viper (so CUCARACHA-style
// environment overrides and future config formats keep working), validates
// it, and returns the merged Config.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("DSDECOMP")
	v.AutomaticEnv()

	cfg := Default()
	if err := v.ReadInConfig(); err != nil {
		return cfg, dserr.Errorf(dserr.ConfigFileParse, err.Error())
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, dserr.Errorf(dserr.ConfigFileParse, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first structural problem found in cfg.
func (c Config) Validate() error {
	if c.Rom == "" {
		return dserr.Errorf(dserr.ConfigFileParse, "rom path is required")
	}
	seen := make(map[uint16]bool, len(c.Overlays))
	for _, ov := range c.Overlays {
		if seen[ov.ID] {
			return dserr.Errorf(dserr.ConfigFileParse, fmt.Sprintf("duplicate overlay id %d", ov.ID))
		}
		seen[ov.ID] = true
	}
	return nil
}

// Marshal renders cfg back to YAML, used by "init" to write out a starting
// project file.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
