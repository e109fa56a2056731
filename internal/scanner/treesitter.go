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

import (
	"embed"
	"fmt"
	"iter"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsRust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

//go:embed queries/rust.scm
var queriesFS embed.FS

var rustLanguage = ts.NewLanguage(tsRust.Language())

// QueryManager owns the compiled rust.scm query, shared across files in a
// unit scan (compiling a tree-sitter query is not cheap).
type QueryManager struct {
	query *ts.Query
}

var (
	sharedManager     *QueryManager
	sharedManagerOnce sync.Once
	sharedManagerErr  error
)

// SharedQueryManager returns the process-wide QueryManager, compiling the
// embedded query on first use.
func SharedQueryManager() (*QueryManager, error) {
	sharedManagerOnce.Do(func() {
		data, err := queriesFS.ReadFile("queries/rust.scm")
		if err != nil {
			sharedManagerErr = err
			return
		}
		query, err := ts.NewQuery(rustLanguage, string(data))
		if err != nil {
			sharedManagerErr = fmt.Errorf("compiling rust.scm: %w", err)
			return
		}
		sharedManager = &QueryManager{query: query}
	})
	return sharedManager, sharedManagerErr
}

// CaptureInfo is a single captured node's text and byte range.
type CaptureInfo struct {
	Node      *ts.Node
	Text      string
	StartByte uint
	EndByte   uint
}

// CaptureMap groups CaptureInfo by capture name for one query match.
type CaptureMap = map[string][]CaptureInfo

// QueryMatcher runs the shared query over one parse tree.
type QueryMatcher struct {
	query  *ts.Query
	cursor *ts.QueryCursor
}

func NewQueryMatcher(qm *QueryManager) *QueryMatcher {
	return &QueryMatcher{query: qm.query, cursor: ts.NewQueryCursor()}
}

func (m *QueryMatcher) Close() { m.cursor.Close() }

// AllMatches iterates every match of the compiled query against node/code.
func (m *QueryMatcher) AllMatches(node *ts.Node, code []byte) iter.Seq[*ts.QueryMatch] {
	matches := m.cursor.Matches(m.query, node, code)
	return func(yield func(*ts.QueryMatch) bool) {
		for {
			match := matches.Next()
			if match == nil {
				return
			}
			if !yield(match) {
				return
			}
		}
	}
}

// Captures converts one match into a CaptureMap keyed by capture name.
func (m *QueryMatcher) Captures(match *ts.QueryMatch, code []byte) CaptureMap {
	names := m.query.CaptureNames()
	out := make(CaptureMap)
	for _, cap := range match.Captures {
		name := names[cap.Index]
		node := cap.Node
		out[name] = append(out[name], CaptureInfo{
			Node:      &node,
			Text:      node.Utf8Text(code),
			StartByte: node.StartByte(),
			EndByte:   node.EndByte(),
		})
	}
	return out
}

// Parse parses source bytes as Rust. A non-nil error is only ever an
// internal parser-construction failure; malformed Rust syntax still yields
// a (partial, error-tolerant) tree, per tree-sitter's design. Scan treats
// both a nil tree and a tree containing errors as the "unparseable" case
// that yields zero hints.
func Parse(code []byte) (*ts.Tree, error) {
	parser := ts.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(rustLanguage); err != nil {
		return nil, err
	}
	tree := parser.Parse(code, nil)
	return tree, nil
}
