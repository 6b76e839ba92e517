package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/whytehoux-projecty/MIS/internal/config"
	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/logger"
)

type sendGridService struct {
	apiKey    string
	fromEmail string
	fromName  string
	baseURL   string
}

func NewEmailService(cfg config.SendGridConfig) EmailService {
	return &sendGridService{
		apiKey:    cfg.APIKey,
		fromEmail: cfg.From,
		fromName:  cfg.FromName,
		baseURL:   cfg.BaseURL,
	}
}

func (s *sendGridService) SendInvitation(ctx context.Context, inv *domain.Invitation, memberName string) error {
	link := fmt.Sprintf("%s/register/%s", s.baseURL, inv.URLToken)
	subject := "Your membership invitation"
	plainText := fmt.Sprintf(
		"Hello %s,\n\nYour membership application has been approved.\n\n"+
			"Invitation code: %s\nPIN: %s\n\nRegister here: %s\n\n"+
			"The link expires on %s. Once opened, you have a limited registration session to finish.\n",
		memberName, inv.Code, inv.Pin, link, inv.ExpiresAt.Format(time.RFC1123))
	htmlContent := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Your membership application has been approved.</p>
		<p><b>Invitation code:</b> %s<br><b>PIN:</b> %s</p>
		<p><a href="%s">Complete your registration</a></p>
		<p>The link expires on %s. Once opened, you have a limited registration session to finish.</p>`,
		memberName, inv.Code, inv.Pin, link, inv.ExpiresAt.Format(time.RFC1123))

	return s.send(inv.IntendedForEmail, memberName, subject, plainText, htmlContent)
}

func (s *sendGridService) SendRejection(ctx context.Context, email, name, reason string) error {
	subject := "Update on your membership application"
	plainText := fmt.Sprintf("Hello %s,\n\nWe are unable to proceed with your application.\n\nReason: %s\n", name, reason)
	htmlContent := fmt.Sprintf(`<p>Hello %s,</p><p>We are unable to proceed with your application.</p><p>Reason: %s</p>`, name, reason)
	return s.send(email, name, subject, plainText, htmlContent)
}

func (s *sendGridService) SendInfoRequest(ctx context.Context, email, name, message string) error {
	subject := "More information needed for your application"
	plainText := fmt.Sprintf("Hello %s,\n\nWe need more information to review your application:\n\n%s\n\nPlease reply through the application portal.\n", name, message)
	htmlContent := fmt.Sprintf(`<p>Hello %s,</p><p>We need more information to review your application:</p><blockquote>%s</blockquote><p>Please reply through the application portal.</p>`, name, message)
	return s.send(email, name, subject, plainText, htmlContent)
}

func (s *sendGridService) send(to, toName, subject, plainText, htmlContent string) error {
	from := sgmail.NewEmail(s.fromName, s.fromEmail)
	recipient := sgmail.NewEmail(toName, to)
	message := sgmail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}

	logger.Debug("email sent", "to", to, "subject", subject)
	return nil
}
