package mail

import (
	"fmt"
	"html"
	"time"

	"github.com/jordan-wright/email"

	"github.com/talentloop/talentloop-server/pkg/logger"
)

// Mailer composes and sends product email through a Transporter
type Mailer struct {
	sender          string
	frontendBaseURL string
	Transport       Transporter
	logger          *logger.Logger
}

// New creates a new mailer
func New(sender, frontendBaseURL string, transport Transporter, log *logger.Logger) *Mailer {
	return &Mailer{
		sender:          sender,
		frontendBaseURL: frontendBaseURL,
		Transport:       transport,
		logger:          log.Named("mailer"),
	}
}

// Invite holds everything the invitation email tells the candidate
type Invite struct {
	To            string
	CandidateName string
	JobTitle      string
	CompanyName   string
	ScheduledAt   time.Time
	TempPassword  string
}

// SendInvite sends the interview invitation with temporary credentials
func (m *Mailer) SendInvite(invite Invite) error {
	e := email.NewEmail()
	e.From = m.sender
	e.To = []string{invite.To}
	e.Subject = fmt.Sprintf("Interview invitation: %s at %s", invite.JobTitle, invite.CompanyName)
	e.HTML = []byte(m.inviteBody(invite))

	if err := m.Transport.Send(e); err != nil {
		return fmt.Errorf("failed to send invite to %s: %w", invite.To, err)
	}

	m.logger.Info("Invite sent",
		logger.String("to", invite.To),
		logger.String("job_title", invite.JobTitle))
	return nil
}

func (m *Mailer) inviteBody(invite Invite) string {
	return fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>You have been invited to an AI-assisted interview for the <strong>%s</strong> position at <strong>%s</strong>.</p>
<p>Scheduled for: <strong>%s</strong></p>
<p>Sign in at <a href="%s/login">%s/login</a> with this email address and the temporary password below. You will be asked to choose a new password on first login.</p>
<p>Temporary password: <code>%s</code></p>
<p>Good luck!<br/>The TalentLoop team</p>
</body></html>`,
		html.EscapeString(invite.CandidateName),
		html.EscapeString(invite.JobTitle),
		html.EscapeString(invite.CompanyName),
		invite.ScheduledAt.Format("Monday, 2 January 2006 at 15:04 MST"),
		m.frontendBaseURL, m.frontendBaseURL,
		html.EscapeString(invite.TempPassword))
}
