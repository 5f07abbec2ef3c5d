package messenger

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"identity-service/internal/config"
	"identity-service/internal/domain/user"
)

// snsPublisher is the slice of the SNS client the sender needs.
type snsPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SMSSender delivers messages as text messages through AWS SNS.
type SMSSender struct {
	client snsPublisher
}

func NewSMSSender(ctx context.Context, cfg *config.SNSConfig) (*SMSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SMSSender{client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *SMSSender) ServiceType() string {
	return SMSType
}

func (s *SMSSender) Send(ctx context.Context, recipient, subject, message string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &recipient,
		Subject:     &subject,
		Message:     &message,
	})
	if err != nil {
		return fmt.Errorf("failed to publish SMS: %w", err)
	}

	return nil
}

func (s *SMSSender) Recipient(u *user.User) (string, error) {
	if u.PhoneNumber == nil || *u.PhoneNumber == "" {
		return "", errors.New("user has no phone number on record")
	}

	return *u.PhoneNumber, nil
}
