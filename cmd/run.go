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
	"encoding/json"
	"fmt"
	"os"

	cfgloader "github.com/deltabuild/deltabuild/cmd/config"
	"github.com/deltabuild/deltabuild/internal/adapters/gitdiff"
	"github.com/deltabuild/deltabuild/internal/analysis"
	"github.com/deltabuild/deltabuild/internal/apperr"
	"github.com/deltabuild/deltabuild/internal/changeset"
	"github.com/deltabuild/deltabuild/internal/globmatch"
	"github.com/deltabuild/deltabuild/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	baselinePath string
	currentPath  string
)

// runCmd compares two analysis documents against the working tree's actual
// changes and prints the resulting impact-set document.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resolve the impact of the current changes against a baseline analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cfgloader.Load(viper.GetString("configFile"))
		if err != nil {
			return exitWithKind(err)
		}

		baseline, err := loadAnalysis(baselinePath)
		if err != nil {
			return exitWithKind(err)
		}
		current, err := loadAnalysis(currentPath)
		if err != nil {
			return exitWithKind(err)
		}

		root, err := os.Getwd()
		if err != nil {
			return err
		}
		changedFiles, deletedFiles, err := gitdiff.Diff(root, cfg.Git.RemoteBranch)
		if err != nil {
			return exitWithKind(apperr.WorkspaceWrap(err, "diffing against %s", cfg.Git.RemoteBranch))
		}
		var changes model.ChangeSet
		for _, p := range changedFiles {
			if !globmatch.Excluded(p, cfg.FileExcludePatterns) {
				changes.Changed = append(changes.Changed, p)
			}
		}
		for _, p := range deletedFiles {
			if !globmatch.Excluded(p, cfg.FileExcludePatterns) {
				changes.Deleted = append(changes.Deleted, p)
			}
		}

		impact := changeset.Resolve(baseline, current, changes, cfg.TripWirePatterns)

		out, err := json.MarshalIndent(impact, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func loadAnalysis(path string) (*model.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.MissingAnalysisWrap(err, "reading analysis document %s", path)
	}
	doc, err := analysis.Unmarshal(data)
	if err != nil {
		return nil, apperr.MissingAnalysisWrap(err, "decoding analysis document %s", path)
	}
	return doc, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&baselinePath, "baseline", "", "path to the baseline analysis document")
	runCmd.Flags().StringVar(&currentPath, "current", "", "path to the current analysis document")
	runCmd.MarkFlagRequired("baseline")
	runCmd.MarkFlagRequired("current")
}
