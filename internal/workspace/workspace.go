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

// Package workspace implements C4: enumerating manifests under a workspace
// root and extracting unit identities, entry points, and inter-unit edges.
package workspace

import (
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/deltabuild/deltabuild/internal/apperr"
	"github.com/deltabuild/deltabuild/internal/fsys"
	"github.com/deltabuild/deltabuild/internal/model"
	"github.com/pelletier/go-toml/v2"
)

type workspaceSection struct {
	Members []string `toml:"members"`
	Exclude []string `toml:"exclude"`
}

type packageSection struct {
	Name string `toml:"name"`
}

type targetSection struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

type manifest struct {
	Workspace    *workspaceSection `toml:"workspace"`
	Package      *packageSection   `toml:"package"`
	Lib          *targetSection    `toml:"lib"`
	Bin          []targetSection   `toml:"bin"`
	Test         []targetSection   `toml:"test"`
	Bench        []targetSection   `toml:"bench"`
	Dependencies map[string]any    `toml:"dependencies"`
}

// Walk reads the Cargo.toml workspace manifest at root and every member's
// own manifest, returning one model.Unit per member with entries resolved
// to absolute paths and Deps resolved to in-workspace unit names.
func Walk(root string, filesystem fsys.FileSystem) ([]model.Unit, error) {
	rootManifestPath := filepath.Join(root, "Cargo.toml")
	root0, err := parseManifest(filesystem, rootManifestPath)
	if err != nil {
		return nil, err
	}
	if root0.Workspace == nil {
		return nil, apperr.Workspace("%s: missing [workspace] section", rootManifestPath)
	}

	memberDirs, err := resolveMembers(root, root0.Workspace, filesystem)
	if err != nil {
		return nil, err
	}

	units := make([]model.Unit, 0, len(memberDirs))
	nameSeen := make(map[string]string, len(memberDirs)) // name -> manifest path, for duplicate detection
	depRefs := make(map[string][]string)                 // unit name -> resolved absolute dep dirs

	for _, memberRel := range memberDirs {
		unitDir := filepath.Join(root, memberRel)
		manifestPath := filepath.Join(unitDir, "Cargo.toml")
		m, err := parseManifest(filesystem, manifestPath)
		if err != nil {
			return nil, err
		}
		if m.Package == nil || m.Package.Name == "" {
			return nil, apperr.Workspace("%s: missing [package].name", manifestPath)
		}
		name := m.Package.Name
		if prior, ok := nameSeen[name]; ok {
			return nil, apperr.Workspace("duplicate unit name %q declared in both %s and %s", name, prior, manifestPath)
		}
		nameSeen[name] = manifestPath

		entries, err := resolveEntries(m, unitDir, manifestPath, filesystem)
		if err != nil {
			return nil, err
		}

		depRefs[name] = resolveDependencyDirs(m, unitDir)

		units = append(units, model.Unit{Name: name, Dir: unitDir, Entries: entries})
	}

	dirToName := make(map[string]string, len(units))
	for _, u := range units {
		dirToName[filepath.Clean(u.Dir)] = u.Name
	}

	for i := range units {
		var deps []string
		for _, depDir := range depRefs[units[i].Name] {
			if depName, ok := dirToName[filepath.Clean(depDir)]; ok && depName != units[i].Name {
				deps = append(deps, depName)
			}
		}
		sort.Strings(deps)
		units[i].Deps = deps
	}

	if err := checkAcyclic(units); err != nil {
		return nil, err
	}

	return units, nil
}

func parseManifest(filesystem fsys.FileSystem, path string) (*manifest, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, apperr.WorkspaceWrap(err, "reading manifest %s", path)
	}
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, apperr.WorkspaceWrap(err, "parsing manifest %s", path)
	}
	return &m, nil
}

// resolveMembers expands workspace.members glob patterns (each a directory
// pattern relative to root) and removes anything matching workspace.exclude.
func resolveMembers(root string, ws *workspaceSection, filesystem fsys.FileSystem) ([]string, error) {
	rootFS := filesystem.FS(root)

	excluded := make(map[string]bool)
	for _, pattern := range ws.Exclude {
		matches, err := doublestar.Glob(rootFS, pattern)
		if err != nil {
			return nil, apperr.Workspace("workspace.exclude pattern %q: %v", pattern, err)
		}
		for _, m := range matches {
			excluded[m] = true
		}
	}

	seen := make(map[string]bool)
	var members []string
	for _, pattern := range ws.Members {
		matches, err := doublestar.Glob(rootFS, pattern)
		if err != nil {
			return nil, apperr.Workspace("workspace.members pattern %q: %v", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if excluded[m] || seen[m] {
				continue
			}
			if !isDir(filesystem, filepath.Join(root, m)) {
				continue
			}
			seen[m] = true
			members = append(members, m)
		}
	}
	return members, nil
}

func isDir(filesystem fsys.FileSystem, path string) bool {
	info, err := filesystem.Stat(path)
	return err == nil && info.IsDir()
}

// resolveEntries determines a member's entry files: the lib root, each
// declared (or conventionally discovered) bin/test/bench target. A
// manifest naming an entry file that does not exist is a hard error.
func resolveEntries(m *manifest, unitDir, manifestPath string, filesystem fsys.FileSystem) ([]string, error) {
	var entries []string

	libPath := "src/lib.rs"
	if m.Lib != nil && m.Lib.Path != "" {
		libPath = m.Lib.Path
	}
	abs := filepath.Join(unitDir, libPath)
	if filesystem.Exists(abs) {
		entries = append(entries, abs)
	} else if m.Lib != nil && m.Lib.Path != "" {
		return nil, apperr.Workspace("%s: declared lib path %s does not exist", manifestPath, libPath)
	}

	if len(m.Bin) == 0 {
		mainPath := filepath.Join(unitDir, "src/main.rs")
		if filesystem.Exists(mainPath) {
			entries = append(entries, mainPath)
		}
	} else {
		for _, bin := range m.Bin {
			path := bin.Path
			if path == "" {
				path = filepath.Join("src/bin", bin.Name+".rs")
			}
			abs := filepath.Join(unitDir, path)
			if !filesystem.Exists(abs) {
				return nil, apperr.Workspace("%s: declared bin %q path %s does not exist", manifestPath, bin.Name, path)
			}
			entries = append(entries, abs)
		}
	}

	var err error
	for _, t := range m.Test {
		if entries, err = appendConventionalTarget(entries, t, "tests", unitDir, manifestPath, filesystem); err != nil {
			return nil, err
		}
	}
	for _, b := range m.Bench {
		if entries, err = appendConventionalTarget(entries, b, "benches", unitDir, manifestPath, filesystem); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

func appendConventionalTarget(entries []string, t targetSection, conventionalDir, unitDir, manifestPath string, filesystem fsys.FileSystem) ([]string, error) {
	path := t.Path
	if path == "" {
		path = filepath.Join(conventionalDir, t.Name+".rs")
	}
	abs := filepath.Join(unitDir, path)
	if !filesystem.Exists(abs) {
		return nil, apperr.Workspace("%s: declared %s target %q path %s does not exist", manifestPath, conventionalDir, t.Name, path)
	}
	return append(entries, abs), nil
}

// resolveDependencyDirs returns the absolute directories declared as
// path-based dependencies in m's [dependencies] table; non-path
// dependencies (registry, git without a path) are not workspace edges.
func resolveDependencyDirs(m *manifest, unitDir string) []string {
	var dirs []string
	for _, v := range m.Dependencies {
		spec, ok := v.(map[string]any)
		if !ok {
			continue
		}
		path, ok := spec["path"].(string)
		if !ok || path == "" {
			continue
		}
		dirs = append(dirs, filepath.Join(unitDir, path))
	}
	return dirs
}

// checkAcyclic reports a WorkspaceError naming one cycle if the declared
// manifest graph is not a DAG.
func checkAcyclic(units []model.Unit) error {
	byName := make(map[string]model.Unit, len(units))
	for _, u := range units {
		byName[u.Name] = u
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(units))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		color[name] = gray
		path = append(path, name)
		for _, dep := range byName[name].Deps {
			switch color[dep] {
			case gray:
				return apperr.Workspace("manifest dependency cycle: %v -> %s", append(append([]string{}, path...), dep), dep)
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		color[name] = black
		return nil
	}

	names := make([]string, 0, len(units))
	for _, u := range units {
		names = append(names, u.Name)
	}
	sort.Strings(names)

	for _, name := range names {
		if color[name] == white {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}
