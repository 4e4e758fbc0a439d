package artifact

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/transport"
	gogithttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gogitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"golang.org/x/crypto/ssh"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// resolveGitCredentials reads an Argo-style git credentials Secret and
// builds a go-git transport.AuthMethod. Layout per spec §4.4: either
// {username, password} or {identity} (an SSH private key). Returns nil
// auth for public repos (no secretRef given), adapted from
// a prior ResolveAuth dispatch.
func resolveGitCredentials(ctx context.Context, c client.Client, namespace, secretName string) (transport.AuthMethod, error) {
	if secretName == "" {
		return nil, nil
	}

	secret := &corev1.Secret{}
	if err := c.Get(ctx, types.NamespacedName{Namespace: namespace, Name: secretName}, secret); err != nil {
		return nil, fmt.Errorf("getting git credentials secret %s/%s: %w", namespace, secretName, err)
	}

	if identity, ok := secret.Data["identity"]; ok && len(identity) > 0 {
		publicKey, err := gogitssh.NewPublicKeys("git", identity, "")
		if err != nil {
			return nil, fmt.Errorf("parsing SSH identity in secret %s/%s: %w", namespace, secretName, err)
		}
		publicKey.HostKeyCallback = ssh.InsecureIgnoreHostKey()
		return publicKey, nil
	}

	username, hasUser := secret.Data["username"]
	password, hasPass := secret.Data["password"]
	if hasUser && hasPass {
		return &gogithttp.BasicAuth{Username: string(username), Password: string(password)}, nil
	}

	return nil, fmt.Errorf("git credentials secret %s/%s has neither identity nor username+password", namespace, secretName)
}
