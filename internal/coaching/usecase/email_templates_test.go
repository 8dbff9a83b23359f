package usecase

import (
	"testing"

	"coach-portal/internal/coaching/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailTemplates_Notification(t *testing.T) {
	tpl := EmailTemplates{PortalURL: "https://portal.example.com/", FromName: "Coach Portal"}
	email, err := tpl.Notification("ana@example.com", model.NotificationDocument, "Your plan", "A new plan is ready", "/portal/documents")
	require.NoError(t, err)
	assert.Equal(t, "New document: Your plan", email.Subject)
	assert.Contains(t, email.HTML, "https://portal.example.com/portal/documents")
	assert.Contains(t, email.Text, "A new plan is ready")
}

func TestEmailTemplates_NotificationEscapesHTML(t *testing.T) {
	tpl := EmailTemplates{PortalURL: "https://portal.example.com"}
	email, err := tpl.Notification("a@b.c", "message", "<b>hi</b>", "x", "")
	require.NoError(t, err)
	assert.NotContains(t, email.HTML, "<b>hi</b>")
	assert.Contains(t, email.HTML, "https://portal.example.com/")
}

func TestEmailTemplates_AppointmentReminder(t *testing.T) {
	tpl := EmailTemplates{PortalURL: "https://portal.example.com", FromName: "Coach Portal"}
	email, err := tpl.AppointmentReminder("ana@example.com", "Ana", model.Appointment{
		Title: "Technique review", Date: "2026-10-20T00:00:00.000Z", Time: "09:30", Location: "Track 2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Reminder: Technique review tomorrow", email.Subject)
	assert.Contains(t, email.Text, "2026-10-20 09:30")
	assert.Contains(t, email.Text, "Track 2")
	assert.Contains(t, email.HTML, "Hi Ana,")
}
