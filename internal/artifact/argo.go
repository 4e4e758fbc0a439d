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

// argoGVK is the Argo CD Application kind, read via unstructured for the
// same reason as Flux's GitRepository.
var argoGVK = schema.GroupVersionKind{
	Group:   "argoproj.io",
	Version: "v1alpha1",
	Kind:    "Application",
}

// ArgoSource is the subset of an Argo Application's spec this package
// consumes, plus an optional git-credentials Secret reference (spec §4.4:
// "username + password or identity (SSH key)").
type ArgoSource struct {
	RepoURL           string
	TargetRevision    string
	GitCredentialsRef string
}

func readArgoSource(ctx context.Context, c client.Client, namespace, name, gitCredentialsRef string) (ArgoSource, error) {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(argoGVK)
	if err := c.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, obj); err != nil {
		return ArgoSource{}, errs.New(errs.KindArtifactPending, "artifact.readArgoSource",
			fmt.Errorf("getting Application %s/%s: %w", namespace, name, err)).WithKey(name)
	}

	source, found, err := unstructured.NestedMap(obj.Object, "spec", "source")
	if err != nil || !found {
		return ArgoSource{}, errs.New(errs.KindArtifactPending, "artifact.readArgoSource",
			fmt.Errorf("Application %s/%s has no spec.source yet", namespace, name)).WithKey(name)
	}

	repoURL, _ := source["repoURL"].(string)
	targetRevision, _ := source["targetRevision"].(string)
	if targetRevision == "" {
		targetRevision = "HEAD"
	}
	if repoURL == "" {
		return ArgoSource{}, errs.New(errs.KindArtifactPending, "artifact.readArgoSource",
			fmt.Errorf("Application %s/%s spec.source has no repoURL", namespace, name)).WithKey(name)
	}

	return ArgoSource{RepoURL: repoURL, TargetRevision: targetRevision, GitCredentialsRef: gitCredentialsRef}, nil
}
