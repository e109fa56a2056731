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

// Package changeset implements C6: given a baseline analysis, a current
// analysis, and a raw change set, compute the Modified / Affected /
// Required impact tiers. It mutates neither input document.
package changeset

import (
	"github.com/deltabuild/deltabuild/internal/globmatch"
	"github.com/deltabuild/deltabuild/internal/model"
	"github.com/deltabuild/deltabuild/set"
)

// Resolve computes the impact sets for one change-set comparison between
// baseline and current. tripWirePatterns are evaluated against the raw
// change set before any path-to-unit mapping.
func Resolve(baseline, current *model.Analysis, changes model.ChangeSet, tripWirePatterns []string) model.ImpactSet {
	if tripWireMatches(changes, tripWirePatterns) {
		all := set.Sorted(unitNames(current))
		return model.ImpactSet{Modified: all, Affected: all, Required: all}
	}

	pathToUnitsBaseline := pathOwners(baseline)
	pathToUnitsCurrent := pathOwners(current)

	modified := set.NewSet[string]()

	for _, p := range changes.Changed {
		for u := range pathToUnitsCurrent[p] {
			modified.Add(u)
		}
	}
	for _, p := range changes.Deleted {
		for u := range pathToUnitsBaseline[p] {
			modified.Add(u)
		}
	}

	for name, currentDeps := range current.Crates {
		baselineDeps, existedInBaseline := baseline.Crates[name]
		if !existedInBaseline {
			modified.Add(name) // new in current
			continue
		}
		if !sameEdgeSet(currentDeps, baselineDeps) {
			modified.Add(name)
		}
	}
	// units present only in baseline no longer exist in current and are
	// ignored entirely, per contract.

	graph := buildGraph(current)
	affected := closure(modified, graph.reverse, allUnitSet(current))
	required := closure(affected, graph.forward, allUnitSet(current))

	return model.ImpactSet{
		Modified: set.Sorted(modified),
		Affected: set.Sorted(affected),
		Required: set.Sorted(required),
	}
}

func tripWireMatches(changes model.ChangeSet, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	for _, p := range changes.Changed {
		if globmatch.Matches(p, patterns) {
			return true
		}
	}
	for _, p := range changes.Deleted {
		if globmatch.Matches(p, patterns) {
			return true
		}
	}
	return false
}

// pathOwners builds a workspace-relative path -> owning unit names map by
// walking every unit's file tree. Multiple units may own the same file.
func pathOwners(a *model.Analysis) map[string]set.Set[string] {
	out := make(map[string]set.Set[string])
	for unit, tree := range a.Files {
		for _, root := range tree.Roots {
			walkTree(root, func(n *model.FileNode) {
				if out[n.Path] == nil {
					out[n.Path] = set.NewSet[string]()
				}
				out[n.Path].Add(unit)
			})
		}
	}
	return out
}

func walkTree(n *model.FileNode, visit func(*model.FileNode)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		walkTree(c, visit)
	}
}

func sameEdgeSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := set.NewSet[string](), set.NewSet[string]()
	for _, v := range a {
		sa.Add(v)
	}
	for _, v := range b {
		sb.Add(v)
	}
	if len(sa) != len(sb) {
		return false
	}
	for v := range sa {
		if !sb.Has(v) {
			return false
		}
	}
	return true
}

func unitNames(a *model.Analysis) set.Set[string] {
	s := set.NewSet[string]()
	for name := range a.Files {
		s.Add(name)
	}
	return s
}

func allUnitSet(a *model.Analysis) set.Set[string] { return unitNames(a) }

type graph struct {
	forward map[string]set.Set[string] // unit -> units it depends on
	reverse map[string]set.Set[string] // unit -> units that depend on it
}

func buildGraph(a *model.Analysis) graph {
	g := graph{forward: make(map[string]set.Set[string]), reverse: make(map[string]set.Set[string])}
	for name := range a.Files {
		g.forward[name] = set.NewSet[string]()
		g.reverse[name] = set.NewSet[string]()
	}
	for name, deps := range a.Crates {
		for _, dep := range deps {
			g.forward[name].Add(dep)
			if g.reverse[dep] == nil {
				g.reverse[dep] = set.NewSet[string]()
			}
			g.reverse[dep].Add(name)
		}
	}
	return g
}

// closure computes start union every node transitively reachable from
// start by following edges, restricted to universe (current's vertex set).
func closure(start set.Set[string], edges map[string]set.Set[string], universe set.Set[string]) set.Set[string] {
	result := set.NewSet[string]()
	var queue []string
	for u := range start {
		if universe.Has(u) {
			result.Add(u)
			queue = append(queue, u)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for next := range edges[n] {
			if universe.Has(next) && !result.Has(next) {
				result.Add(next)
				queue = append(queue, next)
			}
		}
	}
	return result
}
