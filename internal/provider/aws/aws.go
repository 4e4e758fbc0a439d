// Package aws implements provider.Provider over AWS Secrets Manager.
// Grounded on other_examples' huonguyenlt-secret-manager-operator
// controller (config.LoadDefaultConfig + secretsmanager.NewFromConfig +
// GetSecretValue), extended to the full create/put/describe/list surface
// spec §4.6 requires.
package aws

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"

	"github.com/octopilot/secret-manager-controller/internal/provider"
)

// Client implements provider.Provider over AWS Secrets Manager.
type Client struct {
	svc *secretsmanager.Client
}

var _ provider.Provider = (*Client)(nil)

// New loads the default AWS config for region and builds a Client.
func New(ctx context.Context, region string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &Client{svc: secretsmanager.NewFromConfig(cfg)}, nil
}

// NewWithStaticCredentials builds a Client using an access key pair read
// from a ManagedConfig's provider.auth.credentialsSecretRef, instead of the
// SDK's default credential chain.
func NewWithStaticCredentials(ctx context.Context, region, accessKeyID, secretAccessKey string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return nil, err
	}
	return &Client{svc: secretsmanager.NewFromConfig(cfg)}, nil
}

// retryableError wraps an AWS API error with a Retryable hint for
// provider.Do (429/5xx-equivalent throttling and internal-service faults).
type retryableError struct {
	err       error
	retryable bool
}

func (e *retryableError) Error() string  { return e.err.Error() }
func (e *retryableError) Unwrap() error  { return e.err }
func (e *retryableError) Retryable() bool { return e.retryable }

func classifyAWSErr(err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "InternalServiceErrorException", "ServiceUnavailableException":
			return &retryableError{err: err, retryable: true}
		}
	}
	return &retryableError{err: err, retryable: false}
}

func (c *Client) ListManaged(ctx context.Context, prefix, environment string) ([]provider.ExistingSecret, error) {
	var out []provider.ExistingSecret
	var nextToken *string

	for {
		resp, err := c.svc.ListSecrets(ctx, &secretsmanager.ListSecretsInput{
			Filters: []smtypes.Filter{
				{Key: smtypes.FilterNameStringTypeName, Values: []string{prefix}},
				{Key: smtypes.FilterNameStringTypeTagKey, Values: []string{"environment"}},
			},
			NextToken: nextToken,
		})
		if err != nil {
			return nil, classifyAWSErr(err)
		}

		for _, s := range resp.SecretList {
			if s.Name == nil || !strings.HasPrefix(*s.Name, prefix) {
				continue
			}
			entry := provider.ExistingSecret{Name: aws.ToString(s.Name), TagsOrLabels: map[string]string{}}
			if s.LastChangedDate != nil {
				entry.LastUpdated = s.LastChangedDate.String()
			}
			for _, t := range s.Tags {
				if t.Key != nil && t.Value != nil {
					entry.TagsOrLabels[*t.Key] = *t.Value
				}
			}
			if entry.TagsOrLabels["environment"] != environment {
				continue
			}
			out = append(out, entry)
		}

		if resp.NextToken == nil {
			break
		}
		nextToken = resp.NextToken
	}

	return out, nil
}

func (c *Client) GetCurrentValue(ctx context.Context, name string) (string, bool, error) {
	resp, err := c.svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(name)})
	if err != nil {
		var notFound *smtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", false, nil
		}
		return "", false, classifyAWSErr(err)
	}
	if resp.SecretString == nil {
		return "", false, nil
	}
	return *resp.SecretString, true, nil
}

func (c *Client) EnsureSecret(ctx context.Context, name, value string, tags map[string]string) (provider.Outcome, error) {
	current, exists, err := c.GetCurrentValue(ctx, name)
	if err != nil {
		return "", err
	}

	if !exists {
		tagList := toAWSTags(tags)
		_, err := c.svc.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
			Name:         aws.String(name),
			SecretString: aws.String(value),
			Tags:         tagList,
		})
		if err != nil {
			return "", classifyAWSErr(err)
		}
		return provider.OutcomeCreated, nil
	}

	if current == value {
		return provider.OutcomeUnchanged, nil
	}

	_, err = c.svc.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(value),
	})
	if err != nil {
		return "", classifyAWSErr(err)
	}
	return provider.OutcomeUpdated, nil
}

func (c *Client) DisableSecret(ctx context.Context, name string) (provider.Outcome, error) {
	_, err := c.svc.UpdateSecret(ctx, &secretsmanager.UpdateSecretInput{
		SecretId:    aws.String(name),
		Description: aws.String("disabled: source entry removed from Git"),
	})
	if err != nil {
		return "", classifyAWSErr(err)
	}
	return provider.OutcomeDisabled, nil
}

func toAWSTags(tags map[string]string) []smtypes.Tag {
	out := make([]smtypes.Tag, 0, len(tags))
	for k, v := range tags {
		out = append(out, smtypes.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	return out
}
