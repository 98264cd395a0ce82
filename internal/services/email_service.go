package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	pkglogger "github.com/formloop/formloop/pkg/logger"
)

// EmailSender delivers access tokens to recipients out-of-band.
// Implementations return an error on delivery failure and must never panic
// past this boundary; the issuance workflow records any error as a soft
// per-email failure.
type EmailSender interface {
	SendAccessToken(ctx context.Context, to, formTitle, token, formID string) error
}

// AWSSESEmailService sends access token emails using AWS SES
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	formURLBase string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress, formURLBase string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		formURLBase: formURLBase,
		logger:      logger,
	}, nil
}

// SendAccessToken emails the token to the recipient along with the form
// title and a direct link to the form's submission page.
func (s *AWSSESEmailService) SendAccessToken(ctx context.Context, to, formTitle, token, formID string) error {
	formURL := fmt.Sprintf("%s/feedback/%s", s.formURLBase, formID)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .token-box { background-color: #f5f5f5; padding: 20px; border-radius: 4px; margin: 20px 0; }
        .token { background-color: white; padding: 5px 10px; border-radius: 3px; font-size: 18px; font-weight: bold; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <h2>Private Feedback Form Access</h2>
        <p>You have been granted access to provide feedback for: <strong>%s</strong></p>
        <div class="token-box">
            <p>Your access token: <code class="token">%s</code></p>
        </div>
        <p>To access the form:</p>
        <ol>
            <li>Open the form: <a href="%s">%s</a></li>
            <li>Enter your access token when prompted</li>
            <li>Complete the feedback form</li>
        </ol>
        <p><strong>Important:</strong> this token can only be used once. Keep it secure and do not share it.</p>
        <div class="footer">
            <p>If you did not expect this email, you can ignore it.</p>
        </div>
    </div>
</body>
</html>
`, formTitle, token, formURL, formTitle)

	textBody := fmt.Sprintf(`Private Feedback Form Access

You have been granted access to provide feedback for: %s

Your access token: %s

To access the form:
1. Visit: %s
2. Enter your access token when prompted
3. Complete the feedback form

Important: this token can only be used once. Keep it secure and do not share it.

If you did not expect this email, you can ignore it.
`, formTitle, token, formURL)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(fmt.Sprintf("Access Token for %s", formTitle)),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send access token email via SES",
			slog.String("email", pkglogger.SanitizedEmail(to)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("access token email sent",
		slog.String("email", pkglogger.SanitizedEmail(to)),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}
