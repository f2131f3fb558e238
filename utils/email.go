package utils

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"trello-project/microservices/task-manager/logging"

	"github.com/sony/gobreaker"
)

var ErrMailerNotConfigured = errors.New("SMTP sender is not configured")

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends plain text emails through one SMTP relay, guarded by a
// circuit breaker so a dead relay does not stall every reminder pass.
type SMTPMailer struct {
	host     string
	port     string
	from     string
	password string
	breaker  *gobreaker.CircuitBreaker
	send     sendFunc
}

func NewSMTPMailer(host, port, from, password string) *SMTPMailer {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp-cb",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
	return &SMTPMailer{
		host:     host,
		port:     port,
		from:     from,
		password: password,
		breaker:  breaker,
		send:     smtp.SendMail,
	}
}

// headerValue folds a value onto one line so it cannot start a new header.
func headerValue(v string) string {
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.from == "" || m.password == "" {
		return ErrMailerNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	message := []byte("Subject: " + mime.QEncoding.Encode("UTF-8", headerValue(subject)) + "\r\n" +
		"From: " + m.from + "\r\n" +
		"To: " + headerValue(to) + "\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n" +
		strings.ReplaceAll(body, "\n", "\r\n") + "\r\n")
	auth := smtp.PlainAuth("", m.from, m.password, m.host)

	_, err := m.breaker.Execute(func() (interface{}, error) {
		return nil, m.send(m.host+":"+m.port, auth, m.from, []string{to}, message)
	})
	if err != nil {
		logging.Logger.Errorf("Event ID: SEND_EMAIL_FAILED, Description: Failed to send email to '%s' with subject '%s': %v", to, subject, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	logging.Logger.Infof("Event ID: SEND_EMAIL_SUCCESS, Description: Email sent to '%s' with subject '%s'", to, subject)
	return nil
}
