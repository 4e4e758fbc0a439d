package artifact

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/octopilot/secret-manager-controller/internal/errs"
)

// fluxGVK is the Flux source-controller GitRepository kind. Read via
// unstructured.Unstructured since the Flux CRDs are an external
// collaborator's schema, never registered into this controller's own
// scheme (spec non-goal: CRD schema registration for foreign kinds).
var fluxGVK = schema.GroupVersionKind{
	Group:   "source.toolkit.fluxcd.io",
	Version: "v1",
	Kind:    "GitRepository",
}

// FluxSource is the subset of a Flux GitRepository's status this package
// consumes.
type FluxSource struct {
	ArtifactURL string
	Revision    string
	Checksum    string
}

// readFluxSource reads {artifact: {url, revision, checksum}} off the
// referenced GitRepository's status. An absent or not-yet-populated
// artifact is reported as ArtifactPending so the caller can AwaitChange
// rather than poll (spec §4.4).
func readFluxSource(ctx context.Context, c client.Client, namespace, name string) (FluxSource, error) {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(fluxGVK)
	if err := c.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, obj); err != nil {
		return FluxSource{}, errs.New(errs.KindArtifactPending, "artifact.readFluxSource",
			fmt.Errorf("getting GitRepository %s/%s: %w", namespace, name, err)).WithKey(name)
	}

	status, found, err := unstructured.NestedMap(obj.Object, "status")
	if err != nil || !found {
		return FluxSource{}, errs.New(errs.KindArtifactPending, "artifact.readFluxSource",
			fmt.Errorf("GitRepository %s/%s has no status yet", namespace, name)).WithKey(name)
	}

	artifactMap, found, err := unstructured.NestedMap(status, "artifact")
	if err != nil || !found {
		return FluxSource{}, errs.New(errs.KindArtifactPending, "artifact.readFluxSource",
			fmt.Errorf("GitRepository %s/%s status has no artifact yet", namespace, name)).WithKey(name)
	}

	url, _ := artifactMap["url"].(string)
	revision, _ := artifactMap["revision"].(string)
	checksum, _ := artifactMap["digest"].(string)
	if checksum == "" {
		checksum, _ = artifactMap["checksum"].(string)
	}
	if url == "" || revision == "" {
		return FluxSource{}, errs.New(errs.KindArtifactPending, "artifact.readFluxSource",
			fmt.Errorf("GitRepository %s/%s artifact is incomplete", namespace, name)).WithKey(name)
	}

	return FluxSource{ArtifactURL: url, Revision: revision, Checksum: checksum}, nil
}
