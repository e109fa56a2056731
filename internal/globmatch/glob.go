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

// Package globmatch implements C1: shell-style glob matching against
// workspace-relative, forward-slash-normalized paths. "**" matches zero or
// more path segments, via github.com/bmatcuk/doublestar/v4.
package globmatch

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Normalize converts an absolute or OS-separated path into a
// workspace-relative, forward-slash path, as every pattern list is matched
// against.
func Normalize(root, path string) string {
	rel := path
	if strings.HasPrefix(path, root) {
		rel = strings.TrimPrefix(path, root)
		rel = strings.TrimPrefix(rel, "/")
		rel = strings.TrimPrefix(rel, `\`)
	}
	return filepathToSlash(rel)
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// Matches reports whether path (already workspace-relative, slash-separated)
// matches any of patterns.
func Matches(path string, patterns []string) bool {
	path = filepathToSlash(path)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// Excluded reports whether path matches any of excludePatterns. Excluded
// paths are never inserted into a file tree and never participate in
// change resolution.
func Excluded(path string, excludePatterns []string) bool {
	return Matches(path, excludePatterns)
}
