package utils

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"net/url"
	"strings"

	"coursehub/config"

	"github.com/go-resty/resty/v2"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const senderName = "CourseHub"

// EmailSender delivers one HTML message.
type EmailSender interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// VerificationMailer renders verification emails and hands them to an EmailSender.
type VerificationMailer struct {
	sender  EmailSender
	baseURL string
}

// NewMailer builds the verification mailer for cfg.MailProvider.
func NewMailer(cfg *config.Config) (*VerificationMailer, error) {
	var sender EmailSender
	switch cfg.MailProvider {
	case "smtp":
		sender = &SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			From:     cfg.EmailSender,
			Password: cfg.EmailPassword,
		}
	case "sendgrid":
		sender = &SendGridSender{
			client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
			from:   cfg.EmailSender,
		}
	case "http":
		sender = NewHTTPSender(cfg.MailAPIURL, cfg.MailAPIKey, cfg.EmailSender)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
	return NewVerificationMailer(sender, cfg.AppBaseURL), nil
}

func NewVerificationMailer(sender EmailSender, baseURL string) *VerificationMailer {
	return &VerificationMailer{sender: sender, baseURL: strings.TrimRight(baseURL, "/")}
}

// VerificationLink is the URL the user follows to verify their address.
func (m *VerificationMailer) VerificationLink(token string) string {
	return m.baseURL + "/verify-email?token=" + url.QueryEscape(token)
}

// SendVerificationEmail emails the verification link for token.
func (m *VerificationMailer) SendVerificationEmail(ctx context.Context, toEmail, name, token string) error {
	link := m.VerificationLink(token)
	subject := "Verify your CourseHub email"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Thanks for signing up to <strong>CourseHub</strong>. Please confirm your email address to activate your account.</p>
		<a class="btn" href="%s">Verify Email</a>
		<div class="info-box">
			If the button does not work, copy this link into your browser:<br>%s
		</div>
	`, name, link, link)

	return m.sender.Send(ctx, []string{toEmail}, subject, getEmailTemplate("Confirm your email", body))
}

// SMTPSender sends mail through an authenticated SMTP relay.
type SMTPSender struct {
	Host     string
	Port     string
	From     string
	Password string
}

func (s *SMTPSender) Send(_ context.Context, to []string, subject, htmlBody string) error {
	// MIME basics
	msg := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n"
	msg += fmt.Sprintf("From: %s <%s>\r\n", senderName, s.From)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)

	if err := smtp.SendMail(s.Host+":"+s.Port, auth, s.From, to, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	log.Printf("[MAIL] Sent %q via smtp to %d recipient(s)", subject, len(to))
	return nil
}

// SendGridSender sends mail through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   string
}

func (s *SendGridSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	from := mail.NewEmail(senderName, s.from)
	for _, addr := range to {
		message := mail.NewSingleEmail(from, subject, mail.NewEmail("", addr), "", htmlBody)
		resp, err := s.client.SendWithContext(ctx, message)
		if err != nil {
			return fmt.Errorf("sendgrid send: %w", err)
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
		}
	}
	log.Printf("[MAIL] Sent %q via sendgrid to %d recipient(s)", subject, len(to))
	return nil
}

// HTTPSender posts messages as JSON to a generic mail API.
type HTTPSender struct {
	client *resty.Client
	url    string
	from   string
}

func NewHTTPSender(apiURL, apiKey, from string) *HTTPSender {
	client := resty.New()
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &HTTPSender{client: client, url: apiURL, from: from}
}

func (s *HTTPSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"from":    s.from,
			"to":      to,
			"subject": subject,
			"html":    htmlBody,
		}).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("mail api: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail api: status %d: %s", resp.StatusCode(), resp.String())
	}
	log.Printf("[MAIL] Sent %q via http to %d recipient(s)", subject, len(to))
	return nil
}

// HTML wrapper shared by every outgoing email
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1F2A44; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F2A44; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #3B82F6; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; margin: 20px 0; word-break: break-all; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>COURSEHUB</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				You received this email because an account was created with this address.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}
