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
package fsys

import (
	"io/fs"
	"os"
)

// FileSystem is the read-only filesystem surface the analyzer needs: read a
// file, check its existence, stat it, and walk it as an fs.FS. It never
// writes, since nothing in the scanner, file-tree builder, or workspace
// walker mutates the trees it reads.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	Stat(name string) (fs.FileInfo, error)
	Exists(path string) bool

	// fs.FS compatibility - allows use with fs.WalkDir
	Open(name string) (fs.File, error)

	// FS returns an fs.FS rooted at root, for fs.WalkDir/doublestar.Glob callers.
	FS(root string) fs.FS
}

// OSFileSystem implements FileSystem using the standard os package.
// This is the production implementation used by the workspace walker and file-tree builder outside tests.
type OSFileSystem struct{}

// NewOSFileSystem creates a new filesystem that uses the standard os package.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

func (fs *OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (fs *OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (fs *OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (fs *OSFileSystem) Open(name string) (fs.File, error) {
	return os.Open(name)
}

func (o *OSFileSystem) FS(root string) fs.FS {
	return os.DirFS(root)
}
