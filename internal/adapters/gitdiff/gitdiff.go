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

// Package gitdiff is a concrete implementation of the revision-control
// adapter contract: given a remote branch ref and a working tree, return
// the (changed, deleted) workspace-relative paths between them.
package gitdiff

import (
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// Diff opens the repository at root and returns the paths changed and
// deleted between remoteBranch and the current working tree. Committed
// differences come from a tree-to-tree diff against HEAD; uncommitted
// worktree modifications are then folded in, since the working tree is
// the true "current" side of the comparison.
func Diff(root, remoteBranch string) (changed, deleted []string, err error) {
	repo, err := gogit.PlainOpen(root)
	if err != nil {
		return nil, nil, err
	}

	head, err := repo.Head()
	if err != nil {
		return nil, nil, err
	}
	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, nil, err
	}
	headTree, err := headCommit.Tree()
	if err != nil {
		return nil, nil, err
	}

	baseHash, err := repo.ResolveRevision(plumbing.Revision(remoteBranch))
	if err != nil {
		return nil, nil, err
	}
	baseCommit, err := repo.CommitObject(*baseHash)
	if err != nil {
		return nil, nil, err
	}
	baseTree, err := baseCommit.Tree()
	if err != nil {
		return nil, nil, err
	}

	changedSet := make(map[string]bool)
	deletedSet := make(map[string]bool)

	treeChanges, err := object.DiffTree(baseTree, headTree)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range treeChanges {
		action, err := c.Action()
		if err != nil {
			continue
		}
		switch action {
		case merkletrie.Insert, merkletrie.Modify:
			changedSet[c.To.Name] = true
		case merkletrie.Delete:
			deletedSet[c.From.Name] = true
		}
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, nil, err
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, nil, err
	}
	for path, s := range status {
		if s.Worktree == gogit.Unmodified && s.Staging == gogit.Unmodified {
			continue
		}
		if s.Worktree == gogit.Deleted || s.Staging == gogit.Deleted {
			deletedSet[path] = true
			delete(changedSet, path)
			continue
		}
		changedSet[path] = true
		delete(deletedSet, path)
	}

	for p := range changedSet {
		changed = append(changed, p)
	}
	for p := range deletedSet {
		deleted = append(deleted, p)
	}
	sort.Strings(changed)
	sort.Strings(deleted)
	return changed, deleted, nil
}
