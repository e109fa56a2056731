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

// Package scanner implements C2: parsing one source file's syntax tree and
// emitting a bag of dependency hints (spec.md §4.2). Parsing is tree-sitter
// based and best-effort — a file tree-sitter cannot build a root node for,
// or whose syntax tree contains errors, yields a zero-value Hints set rather
// than aborting the scan.
package scanner

import (
	"strings"

	"github.com/deltabuild/deltabuild/internal/config"
	"github.com/deltabuild/deltabuild/internal/logging"
	ts "github.com/tree-sitter/go-tree-sitter"
)

// Scan parses code (the contents of one .rs file) and extracts hints
// according to view's enabled switches and configured name lists. path is
// used only for diagnostics.
//
// Discovery runs in two passes: the compiled query (rust.scm) finds module
// declarations and any macro/call invocation whose first argument is
// already a string literal in one tree walk via the shared QueryMatcher,
// the way the teacher's generators drive their own tree-sitter queries. A
// second, direct node walk fills in the one case the query can't express —
// a mod-producing macro whose first argument is a bare identifier.
func Scan(path string, code []byte, view config.ParserView) Hints {
	tree, err := Parse(code)
	if err != nil || tree == nil {
		logging.Warning("parse: %s: failed to build syntax tree, contributing zero hints", path)
		return Hints{}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return Hints{}
	}
	if root.HasError() {
		logging.Warning("parse: %s: syntax errors in file, contributing zero hints", path)
		return Hints{}
	}

	var h Hints
	modMacroSet := toSet(view.ModMacroNames())
	includeMacroSet := toSet(view.IncludeMacroNames())
	fileMethodSet := toSet(view.FileMethodNames())

	qm, qerr := SharedQueryManager()
	if qerr != nil {
		logging.Warning("parse: %s: query unavailable (%v), falling back to direct walk", path, qerr)
		walk(root, code, &h, view, modMacroSet, includeMacroSet, fileMethodSet)
		return h
	}

	matcher := NewQueryMatcher(qm)
	defer matcher.Close()

	for match := range matcher.AllMatches(root, code) {
		captures := matcher.Captures(match, code)
		switch {
		case len(captures["mod.decl"]) > 0:
			if view.ModsEnabled() {
				extractModuleDecl(captures["mod.decl"][0].Node, code, &h)
			}
		case len(captures["macro.invocation"]) > 0:
			handleLiteralMacroMatch(captures, code, &h, view, modMacroSet, includeMacroSet)
		case len(captures["call.expr"]) > 0:
			if view.FileRefsEnabled() {
				handleCallMatch(captures, code, &h, fileMethodSet)
			}
		}
	}

	// Supplementary direct walk: mod-producing macros invoked with a bare
	// identifier argument (e.g. `module!(foo)`) never match the query's
	// string_literal requirement.
	walkForIdentifierModMacros(root, code, &h, modMacroSet)

	return h
}

// walkForIdentifierModMacros recurses for macro_invocation nodes whose
// first token-tree argument is a bare identifier, classifying them as
// ModMacro hints. String-literal arguments were already handled by the
// query pass above, so this walk ignores them to avoid double counting.
func walkForIdentifierModMacros(node *ts.Node, code []byte, h *Hints, modMacros map[string]bool) {
	if node == nil {
		return
	}
	if node.Kind() == "macro_invocation" {
		nameNode := node.ChildByFieldName("macro")
		if nameNode != nil && modMacros[nameNode.Utf8Text(code)] {
			if tt := firstArgTokenTree(node); tt != nil {
				if first := firstNonPunctToken(tt); first != nil && first.Kind() == "identifier" {
					h.ModMacro = append(h.ModMacro, ModMacro{Literal: first.Utf8Text(code), Pos: node.StartByte()})
				}
			}
		}
	}
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		walkForIdentifierModMacros(node.Child(uint(i)), code, h, modMacros)
	}
}

// firstNonPunctToken returns tt's first child that isn't a bare
// parenthesis/comma token.
func firstNonPunctToken(tt *ts.Node) *ts.Node {
	count := int(tt.ChildCount())
	for i := 0; i < count; i++ {
		child := tt.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "(", ")", ",":
			continue
		default:
			return child
		}
	}
	return nil
}

// handleLiteralMacroMatch classifies one query match already known to carry
// a string_literal first argument as an IncludeMacro or a (string-form)
// ModMacro hint.
func handleLiteralMacroMatch(captures CaptureMap, code []byte, h *Hints, view config.ParserView, modMacros, includeMacros map[string]bool) {
	name := captures["macro.name"][0].Text
	arg := captures["macro.arg"][0]
	pos := captures["macro.invocation"][0].StartByte

	if view.IncludesEnabled() && includeMacros[name] {
		h.Includes = append(h.Includes, IncludeMacro{Literal: unquote(arg.Text), Pos: pos})
		return
	}
	if modMacros[name] {
		h.ModMacro = append(h.ModMacro, ModMacro{Literal: unquote(arg.Text), Pos: pos})
	}
}

// handleCallMatch classifies one query match already known to carry a
// string_literal first argument as a RuntimeRef hint, if its callee name
// is in the configured file-method set.
func handleCallMatch(captures CaptureMap, code []byte, h *Hints, fileMethods map[string]bool) {
	fnNode := captures["call.function"][0].Node
	name := calleeName(fnNode, code)
	if !fileMethods[name] {
		return
	}
	arg := captures["call.arg"][0]
	if strings.Contains(arg.Text, "{") {
		return // format specifier: non-literal per spec.md §4.3(4)
	}
	h.Runtime = append(h.Runtime, RuntimeRef{Literal: unquote(arg.Text), Pos: captures["call.expr"][0].StartByte})
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// walk recurses over the whole syntax tree, including inline module
// bodies, so every hint kind is found regardless of nesting (spec.md §4.2:
// "All hint extractors run on the full syntax tree including inline
// modules' bodies").
func walk(node *ts.Node, code []byte, h *Hints, view config.ParserView, modMacros, includeMacros, fileMethods map[string]bool) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "mod_item":
		if view.ModsEnabled() {
			extractModuleDecl(node, code, h)
		}
	case "macro_invocation":
		extractMacroInvocation(node, code, h, view, modMacros, includeMacros)
	case "call_expression":
		if view.FileRefsEnabled() {
			extractRuntimeRef(node, code, h, fileMethods)
		}
	}

	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(uint(i))
		walk(child, code, h, view, modMacros, includeMacros, fileMethods)
	}
}

// extractModuleDecl handles one `mod name;` or `mod name { ... }` node,
// resolving an optional #[path = "..."] attribute on the preceding sibling.
func extractModuleDecl(node *ts.Node, code []byte, h *Hints) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Utf8Text(code)
	bodyNode := node.ChildByFieldName("body")
	inline := bodyNode != nil

	override, hasOverride := findPathAttribute(node, code)

	h.Modules = append(h.Modules, ModuleDecl{
		Name:         name,
		PathOverride: override,
		HasOverride:  hasOverride,
		Inline:       inline,
		Pos:          node.StartByte(),
	})
}

// findPathAttribute looks at node's previous siblings for an
// #[path = "..."] attribute_item, stopping at the first non-attribute
// sibling (attributes on an item are always contiguous immediately above
// it).
func findPathAttribute(node *ts.Node, code []byte) (string, bool) {
	sibling := node.PrevSibling()
	for sibling != nil && sibling.Kind() == "attribute_item" {
		text := sibling.Utf8Text(code)
		if strings.Contains(text, "path") {
			if lit, ok := extractStringLiteralFromAttribute(text); ok {
				return lit, true
			}
		}
		sibling = sibling.PrevSibling()
	}
	return "", false
}

// extractStringLiteralFromAttribute pulls the quoted value out of an
// attribute's source text, e.g. `#[path = "impl/foo.rs"]` -> "impl/foo.rs".
// This is a syntactic, not semantic, extraction: spec.md's Non-goals
// exclude macro/attribute expansion beyond recognizing a literal argument.
func extractStringLiteralFromAttribute(text string) (string, bool) {
	start := strings.IndexByte(text, '"')
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(text[start+1:], '"')
	if end < 0 {
		return "", false
	}
	return text[start+1 : start+1+end], true
}

// extractMacroInvocation classifies `name!(arg)` as an IncludeMacro or a
// ModMacro hint depending on which configured name set it matches.
// include_macros require a string-literal first argument; mod_macros
// accept an identifier or a string literal (spec.md §4.2).
func extractMacroInvocation(node *ts.Node, code []byte, h *Hints, view config.ParserView, modMacros, includeMacros map[string]bool) {
	nameNode := node.ChildByFieldName("macro")
	if nameNode == nil {
		return
	}
	name := nameNode.Utf8Text(code)

	if view.IncludesEnabled() && includeMacros[name] {
		if lit, ok := firstMacroArgString(node, code); ok {
			h.Includes = append(h.Includes, IncludeMacro{Literal: lit, Pos: node.StartByte()})
			return
		}
	}
	if modMacros[name] {
		if lit, ok := firstMacroArgLiteralOrIdent(node, code); ok {
			h.ModMacro = append(h.ModMacro, ModMacro{Literal: lit, Pos: node.StartByte()})
		}
	}
}

// firstArgTokenTree returns the token_tree child holding a macro
// invocation's arguments, or nil.
func firstArgTokenTree(node *ts.Node) *ts.Node {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(uint(i))
		if child != nil && child.Kind() == "token_tree" {
			return child
		}
	}
	return nil
}

// firstMacroArgString returns the first argument's literal value, only if
// that argument is a string literal.
func firstMacroArgString(node *ts.Node, code []byte) (string, bool) {
	tt := firstArgTokenTree(node)
	if tt == nil {
		return "", false
	}
	count := int(tt.ChildCount())
	for i := 0; i < count; i++ {
		child := tt.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "string_literal", "raw_string_literal":
			return unquote(child.Utf8Text(code)), true
		case ",", "(", ")":
			continue
		default:
			return "", false // non-literal first token: drop per Non-goals
		}
	}
	return "", false
}

// firstMacroArgLiteralOrIdent accepts either an identifier or a string
// literal as ModMacro's first argument.
func firstMacroArgLiteralOrIdent(node *ts.Node, code []byte) (string, bool) {
	tt := firstArgTokenTree(node)
	if tt == nil {
		return "", false
	}
	count := int(tt.ChildCount())
	for i := 0; i < count; i++ {
		child := tt.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "string_literal", "raw_string_literal":
			return unquote(child.Utf8Text(code)), true
		case "identifier":
			return child.Utf8Text(code), true
		case "(":
			continue
		default:
			return "", false
		}
	}
	return "", false
}

// extractRuntimeRef matches a call's callee name against the configured
// file_methods set and, if it matches, requires a string-literal first
// argument (e.g. File::open("data/x.bin") or fs::read_to_string("x")).
func extractRuntimeRef(node *ts.Node, code []byte, h *Hints, fileMethods map[string]bool) {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return
	}
	name := calleeName(fnNode, code)
	if !fileMethods[name] {
		return
	}
	argsNode := node.ChildByFieldName("arguments")
	if argsNode == nil {
		return
	}
	count := int(argsNode.ChildCount())
	for i := 0; i < count; i++ {
		child := argsNode.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "string_literal":
			text := child.Utf8Text(code)
			if strings.Contains(text, "{") {
				return // format specifier: non-literal per spec.md §4.3(4)
			}
			h.Runtime = append(h.Runtime, RuntimeRef{Literal: unquote(text), Pos: node.StartByte()})
			return
		case "(", ")":
			continue
		default:
			return // non-literal first argument: drop
		}
	}
}

// calleeName returns the trailing identifier of a call's function
// expression, e.g. "open" for `File::open`, "read_to_string" for
// `fs::read_to_string`, or the bare name for a plain call.
func calleeName(node *ts.Node, code []byte) string {
	switch node.Kind() {
	case "scoped_identifier":
		nameNode := node.ChildByFieldName("name")
		if nameNode != nil {
			return nameNode.Utf8Text(code)
		}
	case "field_expression":
		nameNode := node.ChildByFieldName("field")
		if nameNode != nil {
			return nameNode.Utf8Text(code)
		}
	}
	return node.Utf8Text(code)
}

func unquote(lit string) string {
	lit = strings.TrimPrefix(lit, "r")
	lit = strings.Trim(lit, "#")
	lit = strings.TrimPrefix(lit, `"`)
	lit = strings.TrimSuffix(lit, `"`)
	return lit
}
