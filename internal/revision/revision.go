// Package revision identifies the version-control revision of the info files.
package revision

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ShortLen is the number of hex digits kept of a commit hash.
const ShortLen = 10

// Resolve returns the abbreviated HEAD commit of the git repository that
// contains dir. A dir outside any repository, or a repository without
// commits, resolves to "" without error.
func Resolve(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open repository at %s: %w", dir, err)
	}

	ref, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}

	hash := ref.Hash().String()
	if len(hash) > ShortLen {
		hash = hash[:ShortLen]
	}
	return hash, nil
}
