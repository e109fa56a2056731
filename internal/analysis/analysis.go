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

// Package analysis implements C5: composing the per-unit file trees (C3)
// and the workspace's inter-unit graph (C4) into the analysis document,
// and (de)serializing that document to its stable on-disk form.
package analysis

import (
	"encoding/json"
	"sort"

	"github.com/deltabuild/deltabuild/internal/config"
	"github.com/deltabuild/deltabuild/internal/filetree"
	"github.com/deltabuild/deltabuild/internal/fsys"
	"github.com/deltabuild/deltabuild/internal/globmatch"
	"github.com/deltabuild/deltabuild/internal/model"
)

// Build composes a complete analysis document for one revision of the
// workspace: units' declared dependency edges are taken verbatim (never
// inferred from file contents), file trees come from filetree.Build.
func Build(workspaceRoot string, units []model.Unit, cfg *config.Config, filesystem fsys.FileSystem) (*model.Analysis, error) {
	sorted := make([]model.Unit, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	a := &model.Analysis{
		Files:  make(map[string]*model.Tree, len(sorted)),
		Crates: make(map[string][]string, len(sorted)),
	}
	for _, u := range sorted {
		view := cfg.View(u.Name)
		tree, err := filetree.Build(workspaceRoot, u, view, cfg.FileExcludePatterns, filesystem)
		if err != nil {
			return nil, err
		}
		a.Files[u.Name] = tree
		deps := make([]string, len(u.Deps))
		copy(deps, u.Deps)
		a.Crates[u.Name] = deps
	}
	return a, nil
}

// document is the stable on-disk shape: files maps unit name to its
// ordered list of entry-rooted trees, crates maps unit name to its
// ordered direct dependencies. Unit keys are emitted in ascending order.
type document struct {
	Files  map[string][]*jsonNode `json:"files"`
	Crates map[string][]string    `json:"crates"`
}

type jsonNode struct {
	Path     string      `json:"path"`
	Origin   model.Origin `json:"origin"`
	Children []*jsonNode `json:"children"`
}

// Marshal serializes a into its stable on-disk document: absolute paths
// are converted to workspace-relative, forward-slash form, unit keys
// sorted ascending, children kept in discovery order.
func Marshal(workspaceRoot string, a *model.Analysis) ([]byte, error) {
	doc := document{
		Files:  make(map[string][]*jsonNode, len(a.Files)),
		Crates: make(map[string][]string, len(a.Crates)),
	}
	for name, tree := range a.Files {
		nodes := make([]*jsonNode, 0, len(tree.Roots))
		for _, root := range tree.Roots {
			nodes = append(nodes, toJSONNode(workspaceRoot, root))
		}
		doc.Files[name] = nodes
	}
	for name, deps := range a.Crates {
		out := make([]string, len(deps))
		copy(out, deps)
		doc.Crates[name] = out
	}
	return json.MarshalIndent(doc, "", "  ")
}

func toJSONNode(workspaceRoot string, n *model.FileNode) *jsonNode {
	out := &jsonNode{
		Path:   globmatch.Normalize(workspaceRoot, n.Path),
		Origin: n.Origin,
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, toJSONNode(workspaceRoot, c))
	}
	return out
}

// Unmarshal decodes a stable on-disk analysis document. Paths in the
// resulting model.Analysis remain workspace-relative as persisted — the
// change resolver (C6) only ever operates on documents loaded this way,
// so it never needs to know the original workspace root.
func Unmarshal(data []byte) (*model.Analysis, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	a := &model.Analysis{
		Files:  make(map[string]*model.Tree, len(doc.Files)),
		Crates: make(map[string][]string, len(doc.Crates)),
	}
	for name, nodes := range doc.Files {
		tree := &model.Tree{Unit: name}
		for _, n := range nodes {
			tree.Roots = append(tree.Roots, fromJSONNode(n))
		}
		a.Files[name] = tree
	}
	for name, deps := range doc.Crates {
		out := make([]string, len(deps))
		copy(out, deps)
		a.Crates[name] = out
	}
	return a, nil
}

func fromJSONNode(n *jsonNode) *model.FileNode {
	out := &model.FileNode{Path: n.Path, Origin: n.Origin}
	for _, c := range n.Children {
		out.Children = append(out.Children, fromJSONNode(c))
	}
	return out
}
