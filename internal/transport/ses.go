package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/google/uuid"

	appconfig "github.com/ignite/subscription-gateway/internal/config"
	"github.com/ignite/subscription-gateway/internal/subscription"
)

// SESTransport delivers submissions to an AWS SES v2 contact list.
type SESTransport struct {
	client      *sesv2.Client
	contactList string
}

// NewSESTransport creates a SES transport. Empty access keys fall back
// to the default credential chain (IAM role on ECS).
func NewSESTransport(ctx context.Context, cfg appconfig.SESConfig) (*SESTransport, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(creds))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &SESTransport{
		client:      sesv2.NewFromConfig(awsCfg),
		contactList: cfg.ContactList,
	}, nil
}

// Submit creates the contact on the configured list. An address that
// already exists on the list is treated as a successful subscription
// so resubmits stay idempotent from the form's point of view.
func (t *SESTransport) Submit(ctx context.Context, data subscription.Data) (subscription.Result, error) {
	attrs, err := json.Marshal(map[string]string{
		"source":        data.Source,
		"subscribed_at": data.Timestamp.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return subscription.Result{}, fmt.Errorf("encoding contact attributes: %w", err)
	}

	_, err = t.client.CreateContact(ctx, &sesv2.CreateContactInput{
		ContactListName: aws.String(t.contactList),
		EmailAddress:    aws.String(data.Email),
		AttributesData:  aws.String(string(attrs)),
	})
	if err != nil {
		var exists *types.AlreadyExistsException
		if errors.As(err, &exists) {
			return subscription.Result{
				SubscriptionID: "sub_" + uuid.NewString(),
				Message:        "already subscribed",
			}, nil
		}
		return subscription.Result{}, fmt.Errorf("creating SES contact on list %s: %w", t.contactList, err)
	}

	// SES does not return a contact identifier, so the gateway issues one
	return subscription.Result{
		SubscriptionID: "sub_" + uuid.NewString(),
		Message:        "subscribed",
	}, nil
}
