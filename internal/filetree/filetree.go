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

// Package filetree implements C3: for a single unit, recursively resolve
// entry files -> module files -> included files -> assumed files into a
// rooted, acyclic tree of file nodes.
package filetree

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/deltabuild/deltabuild/internal/apperr"
	"github.com/deltabuild/deltabuild/internal/config"
	"github.com/deltabuild/deltabuild/internal/fsys"
	"github.com/deltabuild/deltabuild/internal/globmatch"
	"github.com/deltabuild/deltabuild/internal/logging"
	"github.com/deltabuild/deltabuild/internal/model"
	"github.com/deltabuild/deltabuild/internal/scanner"
)

type builder struct {
	filesystem      fsys.FileSystem
	workspaceRoot   string
	unitName        string
	unitDir         string
	view            config.ParserView
	excludePatterns []string
}

// Build resolves unit's complete file tree. An unreadable entry file is a
// fatal error (IoError); everything else discovered during expansion is
// best-effort and logged rather than propagated.
func Build(workspaceRoot string, unit model.Unit, view config.ParserView, excludePatterns []string, filesystem fsys.FileSystem) (*model.Tree, error) {
	b := &builder{
		filesystem:      filesystem,
		workspaceRoot:   workspaceRoot,
		unitName:        unit.Name,
		unitDir:         unit.Dir,
		view:            view,
		excludePatterns: excludePatterns,
	}

	tree := &model.Tree{Unit: unit.Name}
	seen := make(map[string]bool)

	for _, entry := range unit.Entries {
		node, err := b.expand(entry, model.OriginEntry, map[string]bool{}, true, seen)
		if err != nil {
			return nil, apperr.IOWrap(err, "filetree: unit %s: reading entry %s", unit.Name, entry)
		}
		if node != nil {
			tree.Roots = append(tree.Roots, node)
		}
	}

	if view.AssumeEnabled() && len(tree.Roots) > 0 {
		assumed := b.collectAssumed(seen)
		tree.Roots[0].Children = append(tree.Roots[0].Children, assumed...)
	}

	return tree, nil
}

// expand reads path, scans it for hints, and resolves each hint into a
// child node. ancestors is the active DFS chain — not a global visited
// set — so the same path may legitimately recur under sibling branches.
func (b *builder) expand(path string, origin model.Origin, ancestors map[string]bool, isRoot bool, seen map[string]bool) (*model.FileNode, error) {
	if ancestors[path] {
		return nil, nil
	}

	data, err := b.filesystem.ReadFile(path)
	if err != nil {
		return nil, err
	}

	node := &model.FileNode{Path: path, Origin: origin}
	seen[path] = true

	childAncestors := make(map[string]bool, len(ancestors)+1)
	for k := range ancestors {
		childAncestors[k] = true
	}
	childAncestors[path] = true

	hints := scanner.Scan(path, data, b.view)
	dir := filepath.Dir(path)
	candidateDir := dir
	if !isRoot && filepath.Base(path) != "mod.rs" {
		base := filepath.Base(path)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		candidateDir = filepath.Join(dir, stem)
	}

	for _, md := range hints.Modules {
		if md.Inline {
			continue // body already scanned in place; no file node
		}
		resolved := b.resolveModule(md, dir, candidateDir)
		if resolved == "" {
			logging.Warning("resolve: unit %s: module %q declared in %s did not resolve to an existing file", b.unitName, md.Name, path)
			continue
		}
		if b.excluded(resolved) {
			continue
		}
		childIsRoot := filepath.Base(resolved) == "mod.rs"
		childNode, err := b.expand(resolved, model.OriginModule, childAncestors, childIsRoot, seen)
		if err != nil {
			logging.Warning("io: unit %s: skipping unreadable module file %s: %v", b.unitName, resolved, err)
			continue
		}
		if childNode != nil {
			node.Children = append(node.Children, childNode)
		}
	}

	for _, im := range hints.Includes {
		resolved := filepath.Join(dir, filepath.FromSlash(im.Literal))
		if !b.filesystem.Exists(resolved) {
			logging.Warning("resolve: unit %s: include %q in %s did not resolve to an existing file", b.unitName, im.Literal, path)
			continue
		}
		if b.excluded(resolved) {
			continue
		}
		seen[resolved] = true
		node.Children = append(node.Children, &model.FileNode{Path: resolved, Origin: model.OriginIncludedMacro})
	}

	for _, mm := range hints.ModMacro {
		resolved := b.resolveConventional(mm.Literal, candidateDir)
		if resolved == "" {
			logging.Warning("resolve: unit %s: generated module %q referenced in %s did not resolve to an existing file", b.unitName, mm.Literal, path)
			continue
		}
		if b.excluded(resolved) {
			continue
		}
		childIsRoot := filepath.Base(resolved) == "mod.rs"
		childNode, err := b.expand(resolved, model.OriginModule, childAncestors, childIsRoot, seen)
		if err != nil {
			logging.Warning("io: unit %s: skipping unreadable module file %s: %v", b.unitName, resolved, err)
			continue
		}
		if childNode != nil {
			node.Children = append(node.Children, childNode)
		}
	}

	for _, rr := range hints.Runtime {
		resolved := filepath.Join(b.unitDir, filepath.FromSlash(rr.Literal))
		if !withinDir(b.unitDir, resolved) {
			continue // escapes the unit directory: dropped per spec
		}
		if !b.filesystem.Exists(resolved) {
			logging.Warning("resolve: unit %s: runtime reference %q in %s did not resolve to an existing file", b.unitName, rr.Literal, path)
			continue
		}
		if b.excluded(resolved) {
			continue
		}
		seen[resolved] = true
		node.Children = append(node.Children, &model.FileNode{Path: resolved, Origin: model.OriginRuntimeRef})
	}

	return node, nil
}

// resolveModule resolves one non-inline ModuleDecl to an absolute file
// path, honoring an explicit path override if present.
func (b *builder) resolveModule(md scanner.ModuleDecl, declaringDir, candidateDir string) string {
	if md.HasOverride {
		p := filepath.Join(declaringDir, filepath.FromSlash(md.PathOverride))
		if b.filesystem.Exists(p) {
			return p
		}
		return ""
	}
	return b.resolveConventional(md.Name, candidateDir)
}

// resolveConventional tries the two conventional layouts for a module
// named name rooted at base: base/name.rs, then base/name/mod.rs.
func (b *builder) resolveConventional(name, base string) string {
	flat := filepath.Join(base, name+".rs")
	if b.filesystem.Exists(flat) {
		return flat
	}
	nested := filepath.Join(base, name, "mod.rs")
	if b.filesystem.Exists(nested) {
		return nested
	}
	return ""
}

func (b *builder) excluded(path string) bool {
	rel := globmatch.Normalize(b.workspaceRoot, path)
	return globmatch.Excluded(rel, b.excludePatterns)
}

// collectAssumed enumerates every file under the unit's canonical
// directory matching a configured assume pattern and not already present
// in the tree, run once per unit after all hint-driven expansion. A
// pattern is checked against both the unit-relative path and the bare
// file name, since doublestar's "*" doesn't cross "/" and a pattern like
// "*.proto" is meant to match at any depth, not only unit-root files.
func (b *builder) collectAssumed(seen map[string]bool) []*model.FileNode {
	patterns := b.view.AssumePatterns()
	if len(patterns) == 0 {
		return nil
	}

	var out []*model.FileNode
	unitFS := b.filesystem.FS(b.unitDir)
	_ = fs.WalkDir(unitFS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d == nil || d.IsDir() {
			return nil
		}
		rel := filepath.ToSlash(p)
		if !globmatch.Matches(rel, patterns) && !globmatch.Matches(filepath.Base(p), patterns) {
			return nil
		}
		abs := filepath.Join(b.unitDir, filepath.FromSlash(p))
		if seen[abs] || b.excluded(abs) {
			return nil
		}
		seen[abs] = true
		out = append(out, &model.FileNode{Path: abs, Origin: model.OriginAssumed})
		return nil
	})
	return out
}

// withinDir reports whether path is lexically contained within dir.
func withinDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
