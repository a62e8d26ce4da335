// Package mailer 发送通知邮件
// 配置了 mailConfig.fromEmail 时使用 Amazon SES，否则只记录日志
package mailer

import (
	"context"

	"family_hub_server/internal/config"

	"go.uber.org/zap"
)

// Mailer 邮件服务接口
type Mailer interface {
	// SendWelcome 注册成功后的欢迎邮件
	SendWelcome(ctx context.Context, toEmail, toName string) error
	// SendEventInvitation 日程邀请邮件
	SendEventInvitation(ctx context.Context, mail InvitationMail) error
}

// InvitationMail 日程邀请邮件内容
type InvitationMail struct {
	ToEmail     string
	ToName      string
	InviterName string
	EventID     string
	EventTitle  string
	Message     string
}

// Init 按配置创建邮件服务
func Init(ctx context.Context, cfg *config.MailConfig) (Mailer, error) {
	if cfg.FromEmail == "" {
		zap.L().Info("mail service disabled: mailConfig.fromEmail not configured")
		return NewLogMailer(), nil
	}
	return NewSESMailer(ctx, cfg)
}

// logMailer 未配置发件人时使用，只写日志
type logMailer struct{}

// NewLogMailer 创建只记录日志的 Mailer
func NewLogMailer() Mailer {
	return logMailer{}
}

func (logMailer) SendWelcome(_ context.Context, toEmail, toName string) error {
	zap.L().Info("skip welcome email (mail disabled)", zap.String("to", toEmail), zap.String("name", toName))
	return nil
}

func (logMailer) SendEventInvitation(_ context.Context, mail InvitationMail) error {
	zap.L().Info("skip invitation email (mail disabled)",
		zap.String("to", mail.ToEmail),
		zap.String("event_id", mail.EventID),
	)
	return nil
}
