// Package gcp implements provider.Provider over GCP Secret Manager.
// Client construction idiom (typed apiv1 client + option.WithUserAgent)
// grounded on zicongmei-gke-mcp's cluster tool
// (container.NewClusterManagerClient).
package gcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/octopilot/secret-manager-controller/internal/provider"
)

const userAgent = "secret-manager-controller"

// Client implements provider.Provider over GCP Secret Manager.
type Client struct {
	svc     *secretmanager.Client
	project string
}

var _ provider.Provider = (*Client)(nil)

// New builds a Client scoped to project.
func New(ctx context.Context, project string) (*Client, error) {
	svc, err := secretmanager.NewClient(ctx, option.WithUserAgent(userAgent))
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc, project: project}, nil
}

// NewWithCredentialsJSON builds a Client using a service-account key read
// from a ManagedConfig's provider.auth.credentialsSecretRef, instead of the
// SDK's default credential chain (ADC).
func NewWithCredentialsJSON(ctx context.Context, project string, credentialsJSON []byte) (*Client, error) {
	svc, err := secretmanager.NewClient(ctx, option.WithUserAgent(userAgent), option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc, project: project}, nil
}

type retryableError struct {
	err       error
	retryable bool
}

func (e *retryableError) Error() string   { return e.err.Error() }
func (e *retryableError) Unwrap() error   { return e.err }
func (e *retryableError) Retryable() bool { return e.retryable }

func classifyGCPErr(err error) error {
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded, codes.Internal:
			return &retryableError{err: err, retryable: true}
		}
	}
	return &retryableError{err: err, retryable: false}
}

func (c *Client) secretName(name string) string {
	return fmt.Sprintf("projects/%s/secrets/%s", c.project, name)
}

func (c *Client) ListManaged(ctx context.Context, prefix, environment string) ([]provider.ExistingSecret, error) {
	it := c.svc.ListSecrets(ctx, &secretmanagerpb.ListSecretsRequest{
		Parent: fmt.Sprintf("projects/%s", c.project),
		Filter: fmt.Sprintf("labels.environment=%s", environment),
	})

	var out []provider.ExistingSecret
	for {
		secret, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, classifyGCPErr(err)
		}

		parts := strings.Split(secret.Name, "/")
		shortName := parts[len(parts)-1]
		if !strings.HasPrefix(shortName, prefix) {
			continue
		}

		entry := provider.ExistingSecret{Name: shortName, TagsOrLabels: secret.Labels}
		if secret.CreateTime != nil {
			entry.LastUpdated = secret.CreateTime.AsTime().String()
		}
		out = append(out, entry)
	}
	return out, nil
}

func (c *Client) GetCurrentValue(ctx context.Context, name string) (string, bool, error) {
	resp, err := c.svc.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: c.secretName(name) + "/versions/latest",
	})
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
			return "", false, nil
		}
		return "", false, classifyGCPErr(err)
	}
	// Values are base64 on the wire; the client library already decodes
	// Payload.Data for us into raw bytes (spec §4.6).
	return string(resp.Payload.Data), true, nil
}

func (c *Client) EnsureSecret(ctx context.Context, name, value string, labels map[string]string) (provider.Outcome, error) {
	current, exists, err := c.GetCurrentValue(ctx, name)
	if err != nil {
		return "", err
	}

	if !exists {
		_, err := c.svc.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
			Parent:   fmt.Sprintf("projects/%s", c.project),
			SecretId: name,
			Secret: &secretmanagerpb.Secret{
				Labels: labels,
				Replication: &secretmanagerpb.Replication{
					Replication: &secretmanagerpb.Replication_Automatic_{
						Automatic: &secretmanagerpb.Replication_Automatic{},
					},
				},
			},
		})
		if err != nil {
			return "", classifyGCPErr(err)
		}
		if _, err := c.svc.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
			Parent:  c.secretName(name),
			Payload: &secretmanagerpb.SecretPayload{Data: []byte(value)},
		}); err != nil {
			return "", classifyGCPErr(err)
		}
		return provider.OutcomeCreated, nil
	}

	if current == value {
		return provider.OutcomeUnchanged, nil
	}

	if _, err := c.svc.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent:  c.secretName(name),
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(value)},
	}); err != nil {
		return "", classifyGCPErr(err)
	}
	return provider.OutcomeUpdated, nil
}

func (c *Client) DisableSecret(ctx context.Context, name string) (provider.Outcome, error) {
	version, err := c.latestVersionName(ctx, name)
	if err != nil {
		return "", err
	}
	if _, err := c.svc.DisableSecretVersion(ctx, &secretmanagerpb.DisableSecretVersionRequest{Name: version}); err != nil {
		return "", classifyGCPErr(err)
	}
	return provider.OutcomeDisabled, nil
}

func (c *Client) latestVersionName(ctx context.Context, name string) (string, error) {
	resp, err := c.svc.GetSecretVersion(ctx, &secretmanagerpb.GetSecretVersionRequest{
		Name: c.secretName(name) + "/versions/latest",
	})
	if err != nil {
		return "", classifyGCPErr(err)
	}
	return resp.Name, nil
}
