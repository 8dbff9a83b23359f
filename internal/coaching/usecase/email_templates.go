package usecase

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"coach-portal/internal/coaching/domain/model"
)

var emailLayout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#1f2937;max-width:560px;margin:0 auto">
<h2 style="color:#2563eb">{{.Heading}}</h2>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}{{if .Link}}<p><a href="{{.Link}}" style="background:#2563eb;color:#fff;padding:10px 18px;border-radius:6px;text-decoration:none">{{.LinkLabel}}</a></p>
{{end}}<p style="color:#6b7280;font-size:12px">{{.Footer}}</p>
</body></html>`))

type emailLayoutData struct {
	Heading    string
	Paragraphs []string
	Link       string
	LinkLabel  string
	Footer     string
}

// EmailTemplates renders the emails sent by the portal. PortalURL prefixes relative links.
type EmailTemplates struct {
	PortalURL string
	FromName  string
}

// Notification renders the email that mirrors an in-app notification.
func (t EmailTemplates) Notification(to, notificationType, title, message, link string) (model.Email, error) {
	label := model.NotificationLabel(notificationType)
	data := emailLayoutData{
		Heading:    title,
		Paragraphs: []string{message},
		Link:       t.absolute(link),
		LinkLabel:  "Open portal",
		Footer:     fmt.Sprintf("You receive this email because you have an account at %s.", t.FromName),
	}
	if data.Link == "" {
		data.Link = t.absolute("/")
	}
	html, err := renderEmail(data)
	if err != nil {
		return model.Email{}, err
	}
	return model.Email{
		To:      to,
		Subject: fmt.Sprintf("%s: %s", label, title),
		HTML:    html,
		Text:    fmt.Sprintf("%s\n\n%s\n\n%s", title, message, data.Link),
	}, nil
}

// AppointmentReminder renders the day-before reminder for an appointment.
func (t EmailTemplates) AppointmentReminder(to, athleteName string, appt model.Appointment) (model.Email, error) {
	when := appt.Date
	if len(when) > 10 {
		when = when[:10]
	}
	if appt.Time != "" {
		when += " " + appt.Time
	}
	greeting := "Hi"
	if athleteName != "" {
		greeting = "Hi " + athleteName
	}
	paragraphs := []string{
		greeting + ",",
		fmt.Sprintf("This is a reminder of your appointment \"%s\" tomorrow (%s).", appt.Title, when),
	}
	if appt.Location != "" {
		paragraphs = append(paragraphs, "Location: "+appt.Location)
	}
	data := emailLayoutData{
		Heading:    "Appointment reminder",
		Paragraphs: paragraphs,
		Link:       t.absolute("/portal/appointments"),
		LinkLabel:  "View appointments",
		Footer:     t.FromName,
	}
	html, err := renderEmail(data)
	if err != nil {
		return model.Email{}, err
	}
	return model.Email{
		To:      to,
		Subject: "Reminder: " + appt.Title + " tomorrow",
		HTML:    html,
		Text:    strings.Join(paragraphs, "\n\n") + "\n\n" + data.Link,
	}, nil
}

func (t EmailTemplates) absolute(link string) string {
	if link == "" {
		return ""
	}
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return strings.TrimRight(t.PortalURL, "/") + "/" + strings.TrimLeft(link, "/")
}

func renderEmail(data emailLayoutData) (string, error) {
	var buf bytes.Buffer
	if err := emailLayout.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}
