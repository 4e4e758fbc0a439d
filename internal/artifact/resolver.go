package artifact

import (
	"context"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Resolver is C4: given a ManagedConfig's source reference, produce a
// Resolved artifact backed by the shared Cache.
type Resolver struct {
	k8sClient client.Client
	cache     *Cache
	git       *gitClient
}

// NewResolver builds a Resolver over a live client.Client and cache.
func NewResolver(k8sClient client.Client, cache *Cache) *Resolver {
	return &Resolver{k8sClient: k8sClient, cache: cache, git: &gitClient{}}
}

// ResolveFlux resolves a FluxArtifact-kind source.
func (r *Resolver) ResolveFlux(ctx context.Context, namespace, name string) (Resolved, error) {
	src, err := readFluxSource(ctx, r.k8sClient, namespace, name)
	if err != nil {
		return Resolved{}, err
	}

	ref := Ref{SourceKind: SourceKindFlux, SourceNamespace: namespace, SourceName: name, Revision: src.Revision}

	return r.cache.Acquire(ctx, ref, func(ctx context.Context, dir string) (string, error) {
		tarball, err := downloadAndVerify(ctx, src.ArtifactURL, src.Checksum)
		if err != nil {
			return "", err
		}
		if err := extractTarball(ctx, tarball, dir); err != nil {
			return "", err
		}
		return src.Revision, nil
	})
}

// ResolveArgo resolves an ArgoApplication-kind source.
func (r *Resolver) ResolveArgo(ctx context.Context, namespace, name, gitCredentialsRef string) (Resolved, error) {
	src, err := readArgoSource(ctx, r.k8sClient, namespace, name, gitCredentialsRef)
	if err != nil {
		return Resolved{}, err
	}

	auth, err := resolveGitCredentials(ctx, r.k8sClient, namespace, src.GitCredentialsRef)
	if err != nil {
		return Resolved{}, err
	}

	ref := Ref{SourceKind: SourceKindArgo, SourceNamespace: namespace, SourceName: name, Revision: src.TargetRevision}

	return r.cache.Acquire(ctx, ref, func(ctx context.Context, dir string) (string, error) {
		return r.git.cloneRevision(ctx, src.RepoURL, src.TargetRevision, dir, auth)
	})
}

// DefaultEvictionCeiling is a 30-minute eviction ceiling that nothing in
// this module passes to a Cache; the manager builds its Cache with
// config.ArtifactCacheTTL instead.
const DefaultEvictionCeiling = 30 * time.Minute
