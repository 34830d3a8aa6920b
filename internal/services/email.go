package services

import (
	"fmt"

	"github.com/dimitrije/standup-api/internal/config"
	"gopkg.in/gomail.v2"
)

// EmailService sends transactional mail (magic links, team invites)
// over SMTP. An unconfigured service drops messages silently, which
// keeps local development working without a mail server.
type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

func (s *EmailService) Send(to, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}

func (s *EmailService) SendMagicLink(to, loginURL string) error {
	subject := "Your sign-in link"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Sign in</h2>
			<p>Click the link below to sign in. It is valid for a short time and can be used once.</p>
			<p><a href="%s">Sign in</a></p>
			<p>If you didn't request this, you can ignore this email.</p>
		</body>
		</html>
	`, loginURL)

	return s.Send(to, subject, body)
}

func (s *EmailService) SendTeamInvite(to, teamName, inviterName, joinURL string) error {
	subject := fmt.Sprintf("You've been added to %s", teamName)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Team Invitation</h2>
			<p>Hi,</p>
			<p><strong>%s</strong> has added you to the team <strong>%s</strong>.</p>
			<p><a href="%s">Click here to sign in and fill in your first standup</a></p>
		</body>
		</html>
	`, inviterName, teamName, joinURL)

	return s.Send(to, subject, body)
}
