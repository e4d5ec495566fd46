package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"sitecheck/internal/config"
	"sitecheck/internal/notify"
	"sitecheck/internal/port"
)

// EmailClient is the subset of the SES v2 client the notifier uses.
type EmailClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesNotifier struct {
	client      EmailClient
	from        string
	recipients  []string
	frontendURL string
}

// NewSESNotifier creates a VerdictNotifier that e-mails the configured reviewers through SES.
func NewSESNotifier(ctx context.Context, cfg *config.NotifyConfig) (port.VerdictNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return NewSESNotifierWithClient(sesv2.NewFromConfig(awsCfg), cfg), nil
}

// NewSESNotifierWithClient creates a notifier around an existing SES client.
func NewSESNotifierWithClient(client EmailClient, cfg *config.NotifyConfig) port.VerdictNotifier {
	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}
	return &sesNotifier{
		client:      client,
		from:        from,
		recipients:  cfg.Recipients,
		frontendURL: cfg.FrontendURL,
	}
}

func (s *sesNotifier) NotifyVerdict(ctx context.Context, notice port.VerdictNotice) error {
	if len(s.recipients) == 0 || !notify.ShouldNotify(notice.Result) {
		return nil
	}

	msg := notify.Render(notice, s.frontendURL)
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &s.from,
		Destination: &types.Destination{
			ToAddresses: s.recipients,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &msg.Subject},
				Body: &types.Body{
					Html: &types.Content{Data: &msg.HTML},
					Text: &types.Content{Data: &msg.Text},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}
