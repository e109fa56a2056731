/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package config is the out-of-scope configuration loader named by
// interface in spec.md §1: it turns a config file on disk into the typed
// structure the core consumes (internal/config.Config).
package config

import (
	"os"

	"github.com/deltabuild/deltabuild/internal/apperr"
	"github.com/deltabuild/deltabuild/internal/config"
	"gopkg.in/yaml.v3"
)

// Load reads path (if non-empty and present) and decodes it onto the
// default configuration. A missing path is not an error: the defaults
// apply. A present-but-malformed file is a ConfigError.
func Load(path string) (*config.Config, error) {
	cfg := config.Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, apperr.IOWrap(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperr.ConfigWrap(err, "parsing config %s", path)
	}
	return cfg, nil
}
