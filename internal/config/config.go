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

// Package config is the typed configuration structure (C7): a two-level
// global/per-unit overlay. Booleans override; lists replace, they are
// never merged — that's user-visible, tested semantics (spec.md §4.7, §9).
package config

// ParserSwitches is one level (global, or one unit's overlay) of the
// parser-tunable switches. Boolean fields are pointers so "unset" (fall
// back to global) is distinguishable from an explicit false override.
type ParserSwitches struct {
	Mods           *bool    `mapstructure:"mods" yaml:"mods,omitempty"`
	ModMacros      []string `mapstructure:"mod_macros" yaml:"mod_macros,omitempty"`
	Includes       *bool    `mapstructure:"includes" yaml:"includes,omitempty"`
	IncludeMacros  []string `mapstructure:"include_macros" yaml:"include_macros,omitempty"`
	FileRefs       *bool    `mapstructure:"file_refs" yaml:"file_refs,omitempty"`
	FileMethods    []string `mapstructure:"file_methods" yaml:"file_methods,omitempty"`
	Assume         *bool    `mapstructure:"assume" yaml:"assume,omitempty"`
	AssumePatterns []string `mapstructure:"assume_patterns" yaml:"assume_patterns,omitempty"`
}

// GitConfig holds the revision-control adapter's configuration.
type GitConfig struct {
	RemoteBranch string `mapstructure:"remote_branch" yaml:"remote_branch"`
}

// Config is the complete, typed configuration document consumed by C1–C6.
//
// The spec.md table describes per-unit overlays as a "parser.<unit>"
// section nested alongside the global parser switches. Decoding arbitrary
// unit names as dynamic keys inside a struct that also carries static,
// known fields is awkward with mapstructure, so this implementation hoists
// per-unit overlays into a dedicated top-level Units map — behaviorally
// identical (same overlay-then-global lookup, same replace-not-merge list
// semantics), just a cleaner decode target. Recorded as an Open Question
// resolution in DESIGN.md.
type Config struct {
	FileExcludePatterns []string                  `mapstructure:"file_exclude_patterns" yaml:"file_exclude_patterns"`
	TripWirePatterns    []string                  `mapstructure:"trip_wire_patterns" yaml:"trip_wire_patterns"`
	Parser              ParserSwitches            `mapstructure:"parser" yaml:"parser"`
	Units               map[string]ParserSwitches `mapstructure:"units" yaml:"units,omitempty"`
	Git                 GitConfig                 `mapstructure:"git" yaml:"git"`
}

// Default returns the configuration used when no config file is supplied:
// every parser switch enabled, empty macro/pattern lists, origin/main as
// the remote branch.
func Default() *Config {
	t := true
	return &Config{
		Parser: ParserSwitches{
			Mods:     &t,
			Includes: &t,
			FileRefs: &t,
			Assume:   &t,
		},
		Git: GitConfig{RemoteBranch: "origin/main"},
	}
}

// ParserView is the per-unit-resolved read side of ParserSwitches that C2
// and C3 consume; every switch is "per-unit value if present, else global
// value".
type ParserView interface {
	ModsEnabled() bool
	ModMacroNames() []string
	IncludesEnabled() bool
	IncludeMacroNames() []string
	FileRefsEnabled() bool
	FileMethodNames() []string
	AssumeEnabled() bool
	AssumePatterns() []string
}

type view struct {
	global, overlay ParserSwitches
	hasOverlay      bool
}

// View resolves the parser configuration for unit, composing its overlay
// (if any) over the global defaults.
func (c *Config) View(unit string) ParserView {
	overlay, ok := c.Units[unit]
	return &view{global: c.Parser, overlay: overlay, hasOverlay: ok}
}

func resolveBool(global, overlay *bool) bool {
	if overlay != nil {
		return *overlay
	}
	if global != nil {
		return *global
	}
	return false
}

func resolveList(global, overlay []string, overlaySet bool) []string {
	if overlaySet {
		return overlay
	}
	return global
}

func (v *view) ModsEnabled() bool { return resolveBool(v.global.Mods, v.overlay.Mods) }
func (v *view) ModMacroNames() []string {
	return resolveList(v.global.ModMacros, v.overlay.ModMacros, v.overlay.ModMacros != nil)
}
func (v *view) IncludesEnabled() bool { return resolveBool(v.global.Includes, v.overlay.Includes) }
func (v *view) IncludeMacroNames() []string {
	return resolveList(v.global.IncludeMacros, v.overlay.IncludeMacros, v.overlay.IncludeMacros != nil)
}
func (v *view) FileRefsEnabled() bool { return resolveBool(v.global.FileRefs, v.overlay.FileRefs) }
func (v *view) FileMethodNames() []string {
	return resolveList(v.global.FileMethods, v.overlay.FileMethods, v.overlay.FileMethods != nil)
}
func (v *view) AssumeEnabled() bool { return resolveBool(v.global.Assume, v.overlay.Assume) }
func (v *view) AssumePatterns() []string {
	return resolveList(v.global.AssumePatterns, v.overlay.AssumePatterns, v.overlay.AssumePatterns != nil)
}
