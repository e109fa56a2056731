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
package scanner

// ModuleDecl is emitted once per non-inline module declaration, or once
// per inline module (so its body can be recursively scanned without a new
// file node).
type ModuleDecl struct {
	Name         string
	PathOverride string // resolved relative to the declaring file's dir if non-empty
	HasOverride  bool
	Inline       bool
	Pos          uint // byte offset of the mod keyword
}

// IncludeMacro is emitted for every invocation of a configured include-macro
// name whose first argument is a string literal.
type IncludeMacro struct {
	Literal string
	Pos     uint
}

// ModMacro is emitted for every invocation of a configured module-producing
// macro whose first argument is an identifier or string literal.
type ModMacro struct {
	Literal string
	Pos     uint
}

// RuntimeRef is emitted for every call whose called name matches a
// configured file-method name, when its first argument is a string literal.
type RuntimeRef struct {
	Literal string
	Pos     uint
}

// Hints is the bag of dependency hints extracted from one source file.
// Extraction is best-effort: a malformed file yields a zero-value Hints.
type Hints struct {
	Modules  []ModuleDecl
	Includes []IncludeMacro
	ModMacro []ModMacro
	Runtime  []RuntimeRef
}
