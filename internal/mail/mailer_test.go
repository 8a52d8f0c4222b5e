package mail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

func TestSendInviteThroughMockTransport(t *testing.T) {
	transport := NewMock()
	mailer := New("noreply@talentloop.io", "https://app.talentloop.io", transport, logger.NewNop())

	err := mailer.SendInvite(Invite{
		To:            "dana@example.com",
		CandidateName: "Dana Reyes",
		JobTitle:      "Backend Engineer",
		CompanyName:   "Acme",
		ScheduledAt:   time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
		TempPassword:  "xK3mP9qR",
	})
	require.NoError(t, err)

	sent := transport.GetLastSentMail()
	require.NotNil(t, sent)
	assert.Equal(t, "noreply@talentloop.io", sent.From)
	assert.Equal(t, []string{"dana@example.com"}, sent.To)
	assert.Equal(t, "Interview invitation: Backend Engineer at Acme", sent.Subject)

	body := string(sent.HTML)
	assert.Contains(t, body, "Dana Reyes")
	assert.Contains(t, body, "Backend Engineer")
	assert.Contains(t, body, "xK3mP9qR")
	assert.Contains(t, body, "https://app.talentloop.io/login")
	assert.Contains(t, body, "2 March 2026")
}

func TestInviteBodyEscapesHTML(t *testing.T) {
	mailer := New("noreply@talentloop.io", "https://app.talentloop.io", NewMock(), logger.NewNop())

	body := mailer.inviteBody(Invite{
		CandidateName: "<script>alert(1)</script>",
		JobTitle:      "Engineer",
		CompanyName:   "Acme",
		ScheduledAt:   time.Now(),
	})

	assert.NotContains(t, body, "<script>")
}

func TestMockTransportRecordsAllMail(t *testing.T) {
	transport := NewMock()
	mailer := New("noreply@talentloop.io", "https://app.talentloop.io", transport, logger.NewNop())

	for i := 0; i < 3; i++ {
		require.NoError(t, mailer.SendInvite(Invite{To: "x@example.com", ScheduledAt: time.Now()}))
	}

	assert.Len(t, transport.GetSentMails(), 3)
}
