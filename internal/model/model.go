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

// Package model holds the data types shared by every stage of the impact
// analyzer: units, file nodes, and the two on-disk documents.
package model

// Origin tags the construct that introduced a FileNode into its tree.
// Behavior that differs per origin (whether a node is scanned further, for
// instance) is driven by this tag rather than by a type hierarchy.
type Origin string

const (
	OriginEntry         Origin = "Entry"
	OriginModule        Origin = "Module"
	OriginIncludedMacro Origin = "IncludedMacro"
	OriginRuntimeRef    Origin = "RuntimeRef"
	OriginAssumed       Origin = "Assumed"
)

// Unit is a compilation unit (a workspace member crate).
type Unit struct {
	Name    string
	Dir     string   // absolute path to the unit's canonical directory
	Entries []string // absolute paths to entry files (lib, bins, tests, benches)
	Deps    []string // declared direct dependencies on other unit names
}

// FileNode is one path-addressed node in a unit's file tree. Immutable once
// finalized; Children preserves discovery order.
type FileNode struct {
	Path     string // absolute when built by filetree; workspace-relative when loaded by analysis.Unmarshal
	Origin   Origin
	Children []*FileNode
}

// Tree is the rooted file tree for one unit: one FileNode per entry file,
// all reachable under a synthetic root keyed by the unit name.
type Tree struct {
	Unit  string
	Roots []*FileNode // one per entry file, origin OriginEntry
}

// Analysis is the complete, serializable analysis document for one revision
// of the workspace: per-unit file trees plus the inter-unit dependency graph.
type Analysis struct {
	Files  map[string]*Tree    // unit name -> file tree
	Crates map[string][]string // unit name -> ordered direct dependencies
}

// ChangeSet is the (changed, deleted) pair derived from a revision-control
// diff. Paths are workspace-relative, forward-slash-normalized.
type ChangeSet struct {
	Changed []string
	Deleted []string
}

// ImpactSet is the three nested impact tiers produced by the change
// resolver, each a sorted ascending list of unit names.
type ImpactSet struct {
	Modified []string
	Affected []string
	Required []string
}
