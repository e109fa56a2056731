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
package scanner_test

import (
	"testing"

	"github.com/deltabuild/deltabuild/internal/config"
	"github.com/deltabuild/deltabuild/internal/scanner"
	"github.com/stretchr/testify/require"
)

func viewWith(t *testing.T, includeMacros, modMacros, fileMethods []string) config.ParserView {
	t.Helper()
	cfg := config.Default()
	cfg.Parser.IncludeMacros = includeMacros
	cfg.Parser.ModMacros = modMacros
	cfg.Parser.FileMethods = fileMethods
	return cfg.View("unit")
}

func TestScan_ModuleDeclarations(t *testing.T) {
	src := []byte(`
mod foo;

#[path = "impl/bar_impl.rs"]
mod bar;

mod baz {
    pub fn hi() {}
}
`)
	h := scanner.Scan("lib.rs", src, viewWith(t, nil, nil, nil))
	require.Len(t, h.Modules, 3)

	require.Equal(t, "foo", h.Modules[0].Name)
	require.False(t, h.Modules[0].HasOverride)
	require.False(t, h.Modules[0].Inline)

	require.Equal(t, "bar", h.Modules[1].Name)
	require.True(t, h.Modules[1].HasOverride)
	require.Equal(t, "impl/bar_impl.rs", h.Modules[1].PathOverride)
	require.False(t, h.Modules[1].Inline)

	require.Equal(t, "baz", h.Modules[2].Name)
	require.True(t, h.Modules[2].Inline)
}

func TestScan_IncludeMacro(t *testing.T) {
	src := []byte(`
fn main() {
    let s = include_str!("data/banner.txt");
}
`)
	h := scanner.Scan("lib.rs", src, viewWith(t, []string{"include_str"}, nil, nil))
	require.Len(t, h.Includes, 1)
	require.Equal(t, "data/banner.txt", h.Includes[0].Literal)
	require.Empty(t, h.ModMacro)
}

func TestScan_ModMacro_StringAndIdentifierArgs(t *testing.T) {
	src := []byte(`
my_macro!("generated_a");
my_macro!(generated_b);
`)
	h := scanner.Scan("lib.rs", src, viewWith(t, nil, []string{"my_macro"}, nil))
	require.Len(t, h.ModMacro, 2)

	literals := map[string]bool{}
	for _, m := range h.ModMacro {
		literals[m.Literal] = true
	}
	require.True(t, literals["generated_a"])
	require.True(t, literals["generated_b"])
}

func TestScan_RuntimeRef(t *testing.T) {
	src := []byte(`
fn load() {
    let data = std::fs::read_to_string("config/app.toml").unwrap();
}
`)
	h := scanner.Scan("lib.rs", src, viewWith(t, nil, nil, []string{"read_to_string"}))
	require.Len(t, h.Runtime, 1)
	require.Equal(t, "config/app.toml", h.Runtime[0].Literal)
}

func TestScan_RuntimeRef_FormatSpecifierDropped(t *testing.T) {
	src := []byte(`
fn load(name: &str) {
    let data = std::fs::read_to_string(format!("config/{}.toml", name)).unwrap();
}
`)
	h := scanner.Scan("lib.rs", src, viewWith(t, nil, nil, []string{"read_to_string"}))
	require.Empty(t, h.Runtime)
}

func TestScan_DisabledSwitchesSuppressExtraction(t *testing.T) {
	src := []byte(`
mod foo;
fn load() {
    let data = include_str!("x.txt");
    std::fs::read_to_string("y.txt").unwrap();
}
`)
	cfg := config.Default()
	f := false
	cfg.Parser.Mods = &f
	cfg.Parser.Includes = &f
	cfg.Parser.FileRefs = &f
	cfg.Parser.IncludeMacros = []string{"include_str"}
	cfg.Parser.FileMethods = []string{"read_to_string"}

	h := scanner.Scan("lib.rs", src, cfg.View("unit"))
	require.Empty(t, h.Modules)
	require.Empty(t, h.Includes)
	require.Empty(t, h.Runtime)
}

func TestScan_MalformedFileYieldsEmptyHints(t *testing.T) {
	h := scanner.Scan("broken.rs", []byte("mod foo;\nfn broken( {{{"), viewWith(t, nil, nil, nil))
	require.Empty(t, h.Modules)
	require.Empty(t, h.Includes)
	require.Empty(t, h.ModMacro)
	require.Empty(t, h.Runtime)
}

func TestScan_InlineModuleBodyIsScanned(t *testing.T) {
	src := []byte(`
mod outer {
    mod inner;

    fn f() {
        let s = include_str!("nested/data.txt");
    }
}
`)
	h := scanner.Scan("lib.rs", src, viewWith(t, []string{"include_str"}, nil, nil))
	require.Len(t, h.Includes, 1)
	require.Equal(t, "nested/data.txt", h.Includes[0].Literal)

	names := map[string]bool{}
	for _, m := range h.Modules {
		names[m.Name] = true
	}
	require.True(t, names["outer"])
	require.True(t, names["inner"])
}
