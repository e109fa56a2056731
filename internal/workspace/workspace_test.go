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
package workspace_test

import (
	"sort"
	"testing"

	"github.com/deltabuild/deltabuild/internal/apperr"
	"github.com/deltabuild/deltabuild/internal/fsys"
	"github.com/deltabuild/deltabuild/internal/workspace"
	"github.com/stretchr/testify/require"
)

func TestWalk_MembersAndEntries(t *testing.T) {
	mfs := fsys.NewMapFS(map[string]string{
		"Cargo.toml": `
[workspace]
members = ["crates/*"]
`,
		"crates/api/Cargo.toml": `
[package]
name = "api"

[dependencies]
utils = { path = "../utils" }
`,
		"crates/api/src/lib.rs": "pub fn a() {}",
		"crates/utils/Cargo.toml": `
[package]
name = "utils"
`,
		"crates/utils/src/lib.rs": "pub fn u() {}",
		"crates/utils/src/main.rs": "fn main() {}",
	})

	units, err := workspace.Walk("", mfs)
	require.NoError(t, err)
	require.Len(t, units, 2)

	byName := map[string]string{}
	names := []string{}
	for _, u := range units {
		names = append(names, u.Name)
		byName[u.Name] = u.Dir
	}
	sort.Strings(names)
	require.Equal(t, []string{"api", "utils"}, names)

	for _, u := range units {
		if u.Name == "api" {
			require.Equal(t, []string{"crates/api/src/lib.rs"}, u.Entries)
			require.Equal(t, []string{"utils"}, u.Deps)
		}
		if u.Name == "utils" {
			require.ElementsMatch(t, []string{"crates/utils/src/lib.rs", "crates/utils/src/main.rs"}, u.Entries)
			require.Empty(t, u.Deps)
		}
	}
}

func TestWalk_ExcludePattern(t *testing.T) {
	mfs := fsys.NewMapFS(map[string]string{
		"Cargo.toml": `
[workspace]
members = ["crates/*"]
exclude = ["crates/experimental"]
`,
		"crates/api/Cargo.toml": `
[package]
name = "api"
`,
		"crates/api/src/lib.rs": "pub fn a() {}",
		"crates/experimental/Cargo.toml": `
[package]
name = "experimental"
`,
		"crates/experimental/src/lib.rs": "pub fn e() {}",
	})

	units, err := workspace.Walk("", mfs)
	require.NoError(t, err)
	require.Len(t, units, 1)
	require.Equal(t, "api", units[0].Name)
}

func TestWalk_DuplicateUnitNameIsFatal(t *testing.T) {
	mfs := fsys.NewMapFS(map[string]string{
		"Cargo.toml": `
[workspace]
members = ["crates/*"]
`,
		"crates/a/Cargo.toml": `
[package]
name = "dup"
`,
		"crates/a/src/lib.rs": "pub fn a() {}",
		"crates/b/Cargo.toml": `
[package]
name = "dup"
`,
		"crates/b/src/lib.rs": "pub fn b() {}",
	})

	_, err := workspace.Walk("", mfs)
	require.Error(t, err)
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, apperr.KindWorkspace, kind)
}

func TestWalk_MissingDeclaredEntryIsFatal(t *testing.T) {
	mfs := fsys.NewMapFS(map[string]string{
		"Cargo.toml": `
[workspace]
members = ["crates/*"]
`,
		"crates/api/Cargo.toml": `
[package]
name = "api"

[lib]
path = "src/missing.rs"
`,
	})

	_, err := workspace.Walk("", mfs)
	require.Error(t, err)
}

func TestWalk_MissingWorkspaceManifestIsFatal(t *testing.T) {
	mfs := fsys.NewMapFS(map[string]string{})
	_, err := workspace.Walk("", mfs)
	require.Error(t, err)
}

func TestWalk_ManifestGraphCycleIsFatal(t *testing.T) {
	mfs := fsys.NewMapFS(map[string]string{
		"Cargo.toml": `
[workspace]
members = ["crates/*"]
`,
		"crates/a/Cargo.toml": `
[package]
name = "a"

[dependencies]
b = { path = "../b" }
`,
		"crates/a/src/lib.rs": "pub fn a() {}",
		"crates/b/Cargo.toml": `
[package]
name = "b"

[dependencies]
a = { path = "../a" }
`,
		"crates/b/src/lib.rs": "pub fn b() {}",
	})

	_, err := workspace.Walk("", mfs)
	require.Error(t, err)
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, apperr.KindWorkspace, kind)
}
