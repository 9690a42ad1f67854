package gitrepo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/hakanisaksson/githook-seclog/pkg/errors"
)

// Change is one name-status entry from a comparison range: a
// single-letter status code paired with a path.
type Change struct {
	Kind byte
	Path string
}

// DiffResult carries everything the event builder needs from one
// comparison range.
type DiffResult struct {
	Author      string
	ShortCommit string
	Changes     []Change
}

// Inspector is the narrow revision-control collaborator consumed by
// the hook. Implementations may be slow and may fail; callers degrade
// failures to empty results rather than aborting the push record.
type Inspector interface {
	// CommitMeta resolves the author name and abbreviated id of rev.
	CommitMeta(rev string) (author, shortHash string, err error)
	// DiffNameStatus enumerates file changes across rng in stable order.
	DiffNameStatus(rng RevRange) ([]Change, error)
}

// RepoInspector implements Inspector against an on-disk repository
// using go-git. It works on both bare and non-bare repositories.
type RepoInspector struct {
	repo *git.Repository
}

// Open opens the repository at path.
func Open(path string) (*RepoInspector, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRepoNotFound,
			fmt.Sprintf("failed to open repository at %s", path))
	}
	return &RepoInspector{repo: repo}, nil
}

// CommitMeta returns the author name and 7-character abbreviated hash
// of the commit rev points at.
func (ri *RepoInspector) CommitMeta(rev string) (string, string, error) {
	commit, err := ri.repo.CommitObject(plumbing.NewHash(rev))
	if err != nil {
		return "", "", errors.Wrap(err, errors.ErrCodeCommitNotFound,
			fmt.Sprintf("failed to resolve commit %s", rev))
	}
	return commit.Author.Name, commit.Hash.String()[:7], nil
}

// DiffNameStatus compares the two endpoints of rng. With no old side
// the new tree is diffed against the empty tree, so every file shows
// up as added. With no new side there is nothing to diff.
func (ri *RepoInspector) DiffNameStatus(rng RevRange) ([]Change, error) {
	if rng.New == "" {
		return nil, nil
	}

	newTree, err := ri.treeFor(rng.New)
	if err != nil {
		return nil, err
	}

	if rng.Old == "" {
		return allFilesAdded(newTree)
	}

	oldTree, err := ri.treeFor(rng.Old)
	if err != nil {
		return nil, err
	}

	diff, err := oldTree.Diff(newTree)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDiffFailed,
			"failed to diff comparison range")
	}

	var changes []Change
	for _, ch := range diff {
		action, err := ch.Action()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDiffFailed,
				"failed to resolve change action")
		}
		switch action {
		case merkletrie.Insert:
			changes = append(changes, Change{Kind: 'A', Path: ch.To.Name})
		case merkletrie.Delete:
			changes = append(changes, Change{Kind: 'D', Path: ch.From.Name})
		case merkletrie.Modify:
			changes = append(changes, Change{Kind: 'M', Path: ch.To.Name})
		}
	}
	return changes, nil
}

func (ri *RepoInspector) treeFor(rev string) (*object.Tree, error) {
	commit, err := ri.repo.CommitObject(plumbing.NewHash(rev))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCommitNotFound,
			fmt.Sprintf("failed to resolve commit %s", rev))
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDiffFailed,
			fmt.Sprintf("failed to load tree of commit %s", rev))
	}
	return tree, nil
}

func allFilesAdded(tree *object.Tree) ([]Change, error) {
	var changes []Change
	err := tree.Files().ForEach(func(f *object.File) error {
		changes = append(changes, Change{Kind: 'A', Path: f.Name})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDiffFailed,
			"failed to iterate tree files")
	}
	return changes, nil
}

// Extract resolves the metadata and file changes for rng, degrading
// every collaborator failure to an empty result. Deletions have no
// newest commit, so author and short id stay empty.
func Extract(ins Inspector, rng RevRange) DiffResult {
	var result DiffResult

	if rng.New != "" {
		author, short, err := ins.CommitMeta(rng.New)
		if err == nil {
			result.Author = author
			result.ShortCommit = short
		}
	}

	changes, err := ins.DiffNameStatus(rng)
	if err == nil {
		result.Changes = changes
	}
	return result
}
