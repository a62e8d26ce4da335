package mailer

import (
	"context"
	"fmt"
	"html"

	"family_hub_server/internal/config"
	"family_hub_server/pkg/errorx"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// sesClient SES 客户端中用到的方法
type sesClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer 通过 Amazon SES 发送邮件
type SESMailer struct {
	client     sesClient
	fromEmail  string
	fromName   string
	appBaseURL string
}

// NewSESMailer 使用默认凭证链创建 SES 客户端
func NewSESMailer(ctx context.Context, cfg *config.MailConfig) (*SESMailer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeExternalError, "load aws config for ses")
	}
	zap.L().Info("mail service enabled", zap.String("from", cfg.FromEmail), zap.String("region", cfg.Region))
	return newSESMailer(sesv2.NewFromConfig(awsCfg), cfg), nil
}

func newSESMailer(client sesClient, cfg *config.MailConfig) *SESMailer {
	return &SESMailer{
		client:     client,
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		appBaseURL: cfg.AppBaseURL,
	}
}

func (m *SESMailer) SendWelcome(ctx context.Context, toEmail, toName string) error {
	subject := "Welcome to " + m.fromName
	text := fmt.Sprintf("Hi %s,\n\nYour account is ready. Create a family or ask a relative to add you:\n%s\n", toName, m.appBaseURL)
	body := fmt.Sprintf(`<p>Hi %s,</p><p>Your account is ready. Create a family or ask a relative to add you.</p><p><a href="%s">Open %s</a></p>`,
		html.EscapeString(toName), m.appBaseURL, html.EscapeString(m.fromName))
	return m.send(ctx, toEmail, subject, body, text)
}

func (m *SESMailer) SendEventInvitation(ctx context.Context, mail InvitationMail) error {
	link := fmt.Sprintf("%s/events/%s", m.appBaseURL, mail.EventID)
	subject := fmt.Sprintf("%s invited you to %s", mail.InviterName, mail.EventTitle)
	text := fmt.Sprintf("Hi %s,\n\n%s invited you to \"%s\".\n%s\n\nRespond here: %s\n",
		mail.ToName, mail.InviterName, mail.EventTitle, mail.Message, link)
	body := fmt.Sprintf(`<p>Hi %s,</p><p>%s invited you to <strong>%s</strong>.</p><p>%s</p><p><a href="%s">View invitation</a></p>`,
		html.EscapeString(mail.ToName),
		html.EscapeString(mail.InviterName),
		html.EscapeString(mail.EventTitle),
		html.EscapeString(mail.Message),
		link,
	)
	return m.send(ctx, mail.ToEmail, subject, body, text)
}

func (m *SESMailer) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")},
				},
			},
		},
	}
	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return errorx.Wrapf(err, errorx.CodeExternalError, "ses send email to %s", to)
	}
	zap.L().Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
