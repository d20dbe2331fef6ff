package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESNotifier implements AdminNotifier over AWS SES. Registration events
// go to the admin address; approval notices go to the registrant.
type SESNotifier struct {
	client       *ses.Client
	fromAddress  string
	adminAddress string
	dashboardURL string
	logger       *slog.Logger
}

func NewSESNotifier(region, fromAddress, adminAddress, dashboardURL string, logger *slog.Logger) (*SESNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESNotifier{
		client:       ses.NewFromConfig(cfg),
		fromAddress:  fromAddress,
		adminAddress: adminAddress,
		dashboardURL: dashboardURL,
		logger:       logger,
	}, nil
}

func (n *SESNotifier) NotifyNewRegistration(ctx context.Context, name, email string) error {
	subject := "New dashboard registration awaiting approval"
	body := fmt.Sprintf(`A new registration is waiting for review.

Name:  %s
Email: %s

Review it at %s/admin/registrations
`, name, email, n.dashboardURL)

	return n.send(ctx, n.adminAddress, subject, body)
}

func (n *SESNotifier) NotifyAccountApproved(ctx context.Context, name, email string) error {
	subject := "Your dashboard account was approved"
	body := fmt.Sprintf(`Hello %s,

Your dashboard account has been approved. You can now sign in at %s/login.
`, name, n.dashboardURL)

	return n.send(ctx, email, subject, body)
}

func (n *SESNotifier) send(ctx context.Context, to, subject, body string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(n.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	}

	if _, err := n.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Debug("notification email sent", slog.String("subject", subject))
	return nil
}
