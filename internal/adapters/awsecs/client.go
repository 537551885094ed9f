package awsecs

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/smithy-go"
)

// Client bundles the ECS control-plane client with the region it was
// configured for. The client is stateless between calls apart from the
// resolved credentials and region.
type Client struct {
	Ecs    *ecs.Client
	Region string
}

// NewClient resolves credentials and region through the default SDK
// chain (environment, shared config, instance metadata).
func NewClient(ctx context.Context) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("no AWS region configured")
	}
	return &Client{
		Ecs:    ecs.NewFromConfig(cfg),
		Region: cfg.Region,
	}, nil
}

// FormatAPIError renders a remote failure as "Code: message" when the
// error is a modeled service error, falling back to the plain error text.
func FormatAPIError(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return err.Error()
}
