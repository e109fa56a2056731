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
package changeset_test

import (
	"testing"

	"github.com/deltabuild/deltabuild/internal/changeset"
	"github.com/deltabuild/deltabuild/internal/model"
	"github.com/stretchr/testify/require"
)

func node(path string, origin model.Origin, children ...*model.FileNode) *model.FileNode {
	return &model.FileNode{Path: path, Origin: origin, Children: children}
}

func analysisOf(files map[string]*model.Tree, crates map[string][]string) *model.Analysis {
	return &model.Analysis{Files: files, Crates: crates}
}

// TestResolve_S1_SingleFileChange mirrors the single-file-change scenario:
// api <- app depends on api, lib has no dependents.
func TestResolve_S1_SingleFileChange(t *testing.T) {
	files := map[string]*model.Tree{
		"api": {Unit: "api", Roots: []*model.FileNode{node("crates/api/src/lib.rs", model.OriginEntry)}},
		"app": {Unit: "app", Roots: []*model.FileNode{node("crates/app/src/main.rs", model.OriginEntry)}},
		"lib": {Unit: "lib", Roots: []*model.FileNode{node("crates/lib/src/lib.rs", model.OriginEntry)}},
	}
	crates := map[string][]string{"api": nil, "app": {"api"}, "lib": nil}
	current := analysisOf(files, crates)
	baseline := current

	result := changeset.Resolve(baseline, current, model.ChangeSet{Changed: []string{"crates/api/src/lib.rs"}}, nil)
	require.Equal(t, []string{"api"}, result.Modified)
	require.Equal(t, []string{"api", "app"}, result.Affected)
	require.Equal(t, []string{"api", "app"}, result.Required)
}

// TestResolve_S2_TripWire mirrors the trip-wire scenario across three
// independent units.
func TestResolve_S2_TripWire(t *testing.T) {
	files := map[string]*model.Tree{
		"a": {Unit: "a", Roots: []*model.FileNode{node("crates/a/src/lib.rs", model.OriginEntry)}},
		"b": {Unit: "b", Roots: []*model.FileNode{node("crates/b/src/lib.rs", model.OriginEntry)}},
		"c": {Unit: "c", Roots: []*model.FileNode{node("crates/c/src/lib.rs", model.OriginEntry)}},
	}
	crates := map[string][]string{"a": nil, "b": nil, "c": nil}
	current := analysisOf(files, crates)

	result := changeset.Resolve(current, current, model.ChangeSet{Changed: []string{"Cargo.toml"}}, []string{"Cargo.toml"})
	require.Equal(t, []string{"a", "b", "c"}, result.Modified)
	require.Equal(t, []string{"a", "b", "c"}, result.Affected)
	require.Equal(t, []string{"a", "b", "c"}, result.Required)
}

// TestResolve_S3_DeletedFile mirrors deletion of a file owned by a
// dependency of app.
func TestResolve_S3_DeletedFile(t *testing.T) {
	baselineFiles := map[string]*model.Tree{
		"utils": {Unit: "utils", Roots: []*model.FileNode{
			node("crates/utils/src/lib.rs", model.OriginEntry, node("crates/utils/src/helper.rs", model.OriginModule)),
		}},
		"app": {Unit: "app", Roots: []*model.FileNode{node("crates/app/src/main.rs", model.OriginEntry)}},
	}
	currentFiles := map[string]*model.Tree{
		"utils": {Unit: "utils", Roots: []*model.FileNode{node("crates/utils/src/lib.rs", model.OriginEntry)}},
		"app":   {Unit: "app", Roots: []*model.FileNode{node("crates/app/src/main.rs", model.OriginEntry)}},
	}
	crates := map[string][]string{"utils": nil, "app": {"utils"}}
	baseline := analysisOf(baselineFiles, crates)
	current := analysisOf(currentFiles, crates)

	result := changeset.Resolve(baseline, current, model.ChangeSet{Deleted: []string{"crates/utils/src/helper.rs"}}, nil)
	require.Equal(t, []string{"utils"}, result.Modified)
	require.ElementsMatch(t, []string{"utils", "app"}, result.Affected)
	require.Contains(t, result.Required, "utils")
	require.Contains(t, result.Required, "app")
}

// TestResolve_S4_IncludeMacro mirrors a change to a file pulled in only via
// include_str!, owned solely by api.
func TestResolve_S4_IncludeMacro(t *testing.T) {
	files := map[string]*model.Tree{
		"api": {Unit: "api", Roots: []*model.FileNode{
			node("crates/api/src/lib.rs", model.OriginEntry, node("crates/api/data/schema.txt", model.OriginIncludedMacro)),
		}},
	}
	crates := map[string][]string{"api": nil}
	current := analysisOf(files, crates)

	result := changeset.Resolve(current, current, model.ChangeSet{Changed: []string{"crates/api/data/schema.txt"}}, nil)
	require.Equal(t, []string{"api"}, result.Modified)
}

// TestResolve_S6_IsolatedLeaf mirrors a unit with no dependencies and no
// dependents.
func TestResolve_S6_IsolatedLeaf(t *testing.T) {
	files := map[string]*model.Tree{
		"tool": {Unit: "tool", Roots: []*model.FileNode{node("crates/tool/src/main.rs", model.OriginEntry)}},
	}
	crates := map[string][]string{"tool": nil}
	current := analysisOf(files, crates)

	result := changeset.Resolve(current, current, model.ChangeSet{Changed: []string{"crates/tool/src/main.rs"}}, nil)
	require.Equal(t, []string{"tool"}, result.Modified)
	require.Equal(t, []string{"tool"}, result.Affected)
	require.Equal(t, []string{"tool"}, result.Required)
}

func TestResolve_EmptyChangeSetYieldsEmptySets(t *testing.T) {
	files := map[string]*model.Tree{
		"api": {Unit: "api", Roots: []*model.FileNode{node("crates/api/src/lib.rs", model.OriginEntry)}},
	}
	crates := map[string][]string{"api": nil}
	a := analysisOf(files, crates)

	result := changeset.Resolve(a, a, model.ChangeSet{}, nil)
	require.Empty(t, result.Modified)
	require.Empty(t, result.Affected)
	require.Empty(t, result.Required)
}

func TestResolve_EdgeSetChangeAloneMarksUnitModified(t *testing.T) {
	files := map[string]*model.Tree{
		"app": {Unit: "app", Roots: []*model.FileNode{node("crates/app/src/main.rs", model.OriginEntry)}},
		"api": {Unit: "api", Roots: []*model.FileNode{node("crates/api/src/lib.rs", model.OriginEntry)}},
	}
	baseline := analysisOf(files, map[string][]string{"app": nil, "api": nil})
	current := analysisOf(files, map[string][]string{"app": {"api"}, "api": nil})

	result := changeset.Resolve(baseline, current, model.ChangeSet{}, nil)
	require.Equal(t, []string{"app"}, result.Modified)
	require.Equal(t, []string{"app"}, result.Affected)
	require.ElementsMatch(t, []string{"app", "api"}, result.Required)
}

func TestResolve_UnitOnlyInBaselineIsIgnored(t *testing.T) {
	baselineFiles := map[string]*model.Tree{
		"api": {Unit: "api", Roots: []*model.FileNode{node("crates/api/src/lib.rs", model.OriginEntry)}},
		"old": {Unit: "old", Roots: []*model.FileNode{node("crates/old/src/lib.rs", model.OriginEntry)}},
	}
	currentFiles := map[string]*model.Tree{
		"api": {Unit: "api", Roots: []*model.FileNode{node("crates/api/src/lib.rs", model.OriginEntry)}},
	}
	baseline := analysisOf(baselineFiles, map[string][]string{"api": nil, "old": nil})
	current := analysisOf(currentFiles, map[string][]string{"api": nil})

	result := changeset.Resolve(baseline, current, model.ChangeSet{}, nil)
	require.NotContains(t, result.Modified, "old")
	require.NotContains(t, result.Affected, "old")
	require.NotContains(t, result.Required, "old")
}

func TestResolve_ModifiedSubsetAffectedSubsetRequired(t *testing.T) {
	files := map[string]*model.Tree{
		"a": {Unit: "a", Roots: []*model.FileNode{node("crates/a/src/lib.rs", model.OriginEntry)}},
		"b": {Unit: "b", Roots: []*model.FileNode{node("crates/b/src/lib.rs", model.OriginEntry)}},
		"c": {Unit: "c", Roots: []*model.FileNode{node("crates/c/src/lib.rs", model.OriginEntry)}},
	}
	crates := map[string][]string{"a": nil, "b": {"a"}, "c": {"b"}}
	current := analysisOf(files, crates)

	result := changeset.Resolve(current, current, model.ChangeSet{Changed: []string{"crates/a/src/lib.rs"}}, nil)
	for _, m := range result.Modified {
		require.Contains(t, result.Affected, m)
	}
	for _, af := range result.Affected {
		require.Contains(t, result.Required, af)
	}
	require.Equal(t, []string{"a"}, result.Modified)
	require.ElementsMatch(t, []string{"a", "b", "c"}, result.Affected)
	require.ElementsMatch(t, []string{"a", "b", "c"}, result.Required)
}
