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

package cmd

import (
	"fmt"
	"os"

	cfgloader "github.com/deltabuild/deltabuild/cmd/config"
	"github.com/deltabuild/deltabuild/internal/analysis"
	"github.com/deltabuild/deltabuild/internal/apperr"
	"github.com/deltabuild/deltabuild/internal/fsys"
	"github.com/deltabuild/deltabuild/internal/logging"
	"github.com/deltabuild/deltabuild/internal/workspace"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// analyzeCmd walks the current working directory as a Cargo workspace and
// prints its analysis document to standard output.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the workspace and print its file-tree and dependency graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cfgloader.Load(viper.GetString("configFile"))
		if err != nil {
			return exitWithKind(err)
		}

		root, err := os.Getwd()
		if err != nil {
			return err
		}

		filesystem := fsys.NewOSFileSystem()
		units, err := workspace.Walk(root, filesystem)
		if err != nil {
			return exitWithKind(err)
		}
		logging.Debug("discovered %d workspace units", len(units))

		doc, err := analysis.Build(root, units, cfg, filesystem)
		if err != nil {
			return exitWithKind(err)
		}

		out, err := analysis.Marshal(root, doc)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

// exitWithKind logs a stable, kind-prefixed message for any apperr-classified
// fatal error before returning it to cobra for the non-zero exit.
func exitWithKind(err error) error {
	if kind, ok := apperr.KindOf(err); ok {
		logging.Error("%s: %v", kind, err)
		return err
	}
	logging.Error("%v", err)
	return err
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
