// Package notify delivers the best-effort account-lock notification.
package notify

import (
	"fmt"
	"net"
	"net/smtp"

	"trove/app/models"
	"trove/global"
)

// Notifier is invoked when a lockout threshold trips. Errors never reach the
// caller's response path.
type Notifier interface {
	AccountLocked(user *models.User) error
}

// LogNotifier is the default when no SMTP channel is configured.
type LogNotifier struct{}

func (LogNotifier) AccountLocked(u *models.User) error {
	global.Logger.Warn().Uint("user_id", u.ID).Str("email", u.Email).Msg("account locked")
	return nil
}

type SMTPNotifier struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

func (n *SMTPNotifier) AccountLocked(u *models.User) error {
	addr := net.JoinHostPort(n.Host, fmt.Sprintf("%d", n.Port))
	msg := []byte("From: " + n.From + "\r\n" +
		"To: " + u.Email + "\r\n" +
		"Subject: Your account has been locked\r\n" +
		"\r\n" +
		"Too many failed login attempts were made against your account.\r\n" +
		"It has been locked. Contact an administrator to regain access.\r\n")
	var auth smtp.Auth
	if n.Username != "" {
		auth = smtp.PlainAuth("", n.Username, n.Password, n.Host)
	}
	if err := smtp.SendMail(addr, auth, n.From, []string{u.Email}, msg); err != nil {
		return fmt.Errorf("send lock mail: %w", err)
	}
	return nil
}
