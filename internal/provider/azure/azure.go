// Package azure implements provider.Provider over Azure Key Vault.
// Grounded on kubernetes-sigs-cluster-api-provider-azure's
// azure/services/secrets/client.go (vaultURL + SetSecret/GetSecret shape),
// modernized from the legacy autorest keyvault client to
// azidentity/azsecrets.
package azure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	"github.com/octopilot/secret-manager-controller/internal/provider"
)

// Client implements provider.Provider over Azure Key Vault.
type Client struct {
	svc *azsecrets.Client
}

var _ provider.Provider = (*Client)(nil)

// New builds a Client against the given vault ("https://{vault}.vault.azure.net/").
func New(vaultURL string) (*Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("building default Azure credential: %w", err)
	}
	svc, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("building Key Vault client: %w", err)
	}
	return &Client{svc: svc}, nil
}

// NewWithClientSecret builds a Client using a service-principal secret read
// from a ManagedConfig's provider.auth.credentialsSecretRef, instead of the
// SDK's default credential chain (managed identity).
func NewWithClientSecret(vaultURL, tenantID, clientID, clientSecret string) (*Client, error) {
	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("building client-secret Azure credential: %w", err)
	}
	svc, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("building Key Vault client: %w", err)
	}
	return &Client{svc: svc}, nil
}

type retryableError struct {
	err       error
	retryable bool
}

func (e *retryableError) Error() string   { return e.err.Error() }
func (e *retryableError) Unwrap() error   { return e.err }
func (e *retryableError) Retryable() bool { return e.retryable }

func classifyAzureErr(err error) error {
	if err == nil {
		return nil
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case 429, 500, 502, 503, 504:
			return &retryableError{err: err, retryable: true}
		}
	}
	return &retryableError{err: err, retryable: false}
}

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == 404
}

// sanitizedName lowercases name per spec §4.6 ("Names are lowercased in
// sanitizer"); the sanitizer package has already done this by the time a
// name reaches here, but Key Vault itself is case-insensitive so this is
// a defensive no-op pass, not a second transform.
func sanitizedName(name string) string {
	return strings.ToLower(name)
}

func (c *Client) ListManaged(ctx context.Context, prefix, environment string) ([]provider.ExistingSecret, error) {
	var out []provider.ExistingSecret

	pager := c.svc.NewListSecretPropertiesPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, classifyAzureErr(err)
		}
		for _, item := range page.Value {
			if item.ID == nil {
				continue
			}
			name := item.ID.Name()
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			labels := map[string]string{}
			for k, v := range item.Tags {
				if v != nil {
					labels[k] = *v
				}
			}
			if env, ok := labels["environment"]; ok && env != environment {
				continue
			}
			entry := provider.ExistingSecret{Name: name, TagsOrLabels: labels}
			if item.Attributes != nil && item.Attributes.Updated != nil {
				entry.LastUpdated = item.Attributes.Updated.String()
			}
			out = append(out, entry)
		}
	}
	return out, nil
}

func (c *Client) GetCurrentValue(ctx context.Context, name string) (string, bool, error) {
	resp, err := c.svc.GetSecret(ctx, sanitizedName(name), "", nil)
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, classifyAzureErr(err)
	}
	if resp.Attributes != nil && resp.Attributes.Enabled != nil && !*resp.Attributes.Enabled {
		return "", false, nil
	}
	if resp.Value == nil {
		return "", false, nil
	}
	return *resp.Value, true, nil
}

func (c *Client) EnsureSecret(ctx context.Context, name, value string, tags map[string]string) (provider.Outcome, error) {
	current, exists, err := c.GetCurrentValue(ctx, name)
	if err != nil {
		return "", err
	}

	if exists && current == value {
		return provider.OutcomeUnchanged, nil
	}

	params := azsecrets.SetSecretParameters{Value: &value, Tags: toAzureTags(tags)}
	if _, err := c.svc.SetSecret(ctx, sanitizedName(name), params, nil); err != nil {
		return "", classifyAzureErr(err)
	}

	if exists {
		return provider.OutcomeUpdated, nil
	}
	return provider.OutcomeCreated, nil
}

func (c *Client) DisableSecret(ctx context.Context, name string) (provider.Outcome, error) {
	enabled := false
	_, err := c.svc.UpdateSecretProperties(ctx, sanitizedName(name), "", azsecrets.UpdateSecretPropertiesParameters{
		SecretAttributes: &azsecrets.SecretAttributes{Enabled: &enabled},
	}, nil)
	if err != nil {
		return "", classifyAzureErr(err)
	}
	return provider.OutcomeDisabled, nil
}

func toAzureTags(tags map[string]string) map[string]*string {
	out := make(map[string]*string, len(tags))
	for k, v := range tags {
		v := v
		out[k] = &v
	}
	return out
}
