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
package analysis_test

import (
	"testing"

	"github.com/deltabuild/deltabuild/internal/analysis"
	"github.com/deltabuild/deltabuild/internal/config"
	"github.com/deltabuild/deltabuild/internal/fsys"
	"github.com/deltabuild/deltabuild/internal/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestBuild_SortsUnitsAndCarriesEdges(t *testing.T) {
	mfs := fsys.NewMapFS(map[string]string{
		"crates/api/src/lib.rs":   "mod routes;",
		"crates/api/src/routes.rs": "pub fn r() {}",
		"crates/app/src/main.rs":  "fn main() {}",
	})
	units := []model.Unit{
		{Name: "app", Dir: "crates/app", Entries: []string{"crates/app/src/main.rs"}, Deps: []string{"api"}},
		{Name: "api", Dir: "crates/api", Entries: []string{"crates/api/src/lib.rs"}},
	}
	a, err := analysis.Build("", units, config.Default(), mfs)
	require.NoError(t, err)
	require.Len(t, a.Files, 2)
	require.Equal(t, []string{"api"}, a.Crates["app"])
	require.Empty(t, a.Crates["api"])
}

func TestMarshalUnmarshal_RoundTrip(t *testing.T) {
	mfs := fsys.NewMapFS(map[string]string{
		"crates/api/src/lib.rs":   "mod routes;",
		"crates/api/src/routes.rs": "pub fn r() {}",
	})
	units := []model.Unit{{Name: "api", Dir: "crates/api", Entries: []string{"crates/api/src/lib.rs"}}}

	a, err := analysis.Build("", units, config.Default(), mfs)
	require.NoError(t, err)

	data, err := analysis.Marshal("", a)
	require.NoError(t, err)

	back, err := analysis.Unmarshal(data)
	require.NoError(t, err)

	data2, err := analysis.Marshal("", back)
	require.NoError(t, err)
	require.Equal(t, string(data), string(data2))

	require.True(t, cmp.Equal(back.Crates, a.Crates))
	require.Equal(t, "crates/api/src/lib.rs", back.Files["api"].Roots[0].Path)
	require.Equal(t, "crates/api/src/routes.rs", back.Files["api"].Roots[0].Children[0].Path)
}

func TestMarshal_DeterministicAcrossRuns(t *testing.T) {
	mfs := fsys.NewMapFS(map[string]string{
		"crates/api/src/lib.rs": "mod routes;\nmod handlers;",
		"crates/api/src/routes.rs":   "pub fn r() {}",
		"crates/api/src/handlers.rs": "pub fn h() {}",
	})
	units := []model.Unit{{Name: "api", Dir: "crates/api", Entries: []string{"crates/api/src/lib.rs"}}}

	a1, err := analysis.Build("", units, config.Default(), mfs)
	require.NoError(t, err)
	a2, err := analysis.Build("", units, config.Default(), mfs)
	require.NoError(t, err)

	d1, err := analysis.Marshal("", a1)
	require.NoError(t, err)
	d2, err := analysis.Marshal("", a2)
	require.NoError(t, err)
	require.Equal(t, string(d1), string(d2))
}
