package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// gitClient clones an Argo Application's repo/revision into a cache
// directory. Adapted from a go-git-backed clone helper that clones into a
// single fixed working directory and fetches/checks-out in place on every
// poll; here each distinct revision gets its own directory under the cache
// root, so a shallow clone is always sufficient and nothing is ever
// fetched-in-place.
type gitClient struct{}

// cloneRevision performs a depth-1 clone of repoURL at ref into destDir,
// returning the resolved commit SHA.
func (g *gitClient) cloneRevision(ctx context.Context, repoURL, ref, destDir string, auth transport.AuthMethod) (string, error) {
	if err := os.MkdirAll(filepath.Dir(destDir), 0o755); err != nil {
		return "", fmt.Errorf("preparing cache directory: %w", err)
	}

	repo, err := gogit.PlainCloneContext(ctx, destDir, false, &gogit.CloneOptions{
		URL:   repoURL,
		Auth:  auth,
		Depth: 1,
	})
	if err != nil {
		return "", fmt.Errorf("git clone %s: %w", repoURL, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	hash, err := resolveRevision(repo, ref)
	if err != nil {
		return "", err
	}

	if err := wt.Checkout(&gogit.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return "", fmt.Errorf("checkout %s: %w", ref, err)
	}

	return hash.String(), nil
}

// resolveRevision tries, in order: exact commit SHA, tag, refs/tags/,
// refs/remotes/origin/, then a generic go-git revision resolve. Identical
// precedence matching a prior resolveRef implementation.
func resolveRevision(repo *gogit.Repository, ref string) (plumbing.Hash, error) {
	if plumbing.IsHash(ref) {
		return plumbing.NewHash(ref), nil
	}

	if tagRef, err := repo.Tag(ref); err == nil {
		return tagRef.Hash(), nil
	}

	if resolved, err := repo.ResolveRevision(plumbing.Revision("refs/tags/" + ref)); err == nil {
		return *resolved, nil
	}

	if resolved, err := repo.ResolveRevision(plumbing.Revision("refs/remotes/origin/" + ref)); err == nil {
		return *resolved, nil
	}

	resolved, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("cannot resolve ref %q: %w", ref, err)
	}
	return *resolved, nil
}
