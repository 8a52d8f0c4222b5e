package mail

import (
	"fmt"
	"net/smtp"
	"sync"

	"github.com/jordan-wright/email"
)

// Transporter abstracts the mail delivery mechanism
type Transporter interface {
	Send(mail *email.Email) error
}

// SMTPTransport delivers mail over plain SMTP
type SMTPTransport struct {
	addr string
	auth smtp.Auth
}

// NewSMTP creates a transport for the given SMTP server. Auth is skipped
// when username is empty (local relays, mailhog).
func NewSMTP(host string, port int, username, password string) *SMTPTransport {
	t := &SMTPTransport{
		addr: fmt.Sprintf("%s:%d", host, port),
	}
	if username != "" {
		t.auth = smtp.PlainAuth("", username, password, host)
	}
	return t
}

func (t *SMTPTransport) Send(mail *email.Email) error {
	return mail.Send(t.addr, t.auth)
}

// MockTransport records sent mail for tests instead of delivering it
type MockTransport struct {
	mu   sync.Mutex
	sent []*email.Email
}

// NewMock creates a new in-memory transport
func NewMock() *MockTransport {
	return &MockTransport{}
}

func (t *MockTransport) Send(mail *email.Email) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, mail)
	return nil
}

// GetSentMails returns every mail sent through this transport
func (t *MockTransport) GetSentMails() []*email.Email {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*email.Email(nil), t.sent...)
}

// GetLastSentMail returns the most recent mail, or nil
func (t *MockTransport) GetLastSentMail() *email.Email {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sent) == 0 {
		return nil
	}
	return t.sent[len(t.sent)-1]
}
