package email

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
)

const (
	AcknowledgementSubject = "Hemos recibido tu mensaje"
	adminSubjectPrefix     = "Nueva consulta: "
	receivedAtLayout       = "2/1/2006, 15:04:05"
)

// ContactDetails is a validated contact form submission.
type ContactDetails struct {
	Name       string
	Email      string
	Phone      string
	Subject    string
	Message    string
	ReceivedAt time.Time
}

// ClubIdentity is the branding used in the acknowledgement email.
type ClubIdentity struct {
	Name    string
	Tagline string
}

// BuildAcknowledgement renders the email sent back to the submitter.
func BuildAcknowledgement(ctx context.Context, from string, details ContactDetails, club ClubIdentity) (Message, error) {
	body, err := renderComponent(ctx, acknowledgementComponent(details, club))
	if err != nil {
		return Message{}, fmt.Errorf("render acknowledgement: %w", err)
	}
	return Message{
		From:    from,
		To:      details.Email,
		Subject: AcknowledgementSubject,
		HTML:    body,
		Text:    acknowledgementText(details, club),
	}, nil
}

// BuildAdminNotice renders the notification sent to the club inbox.
func BuildAdminNotice(ctx context.Context, from, to string, details ContactDetails) (Message, error) {
	body, err := renderComponent(ctx, adminNoticeComponent(details))
	if err != nil {
		return Message{}, fmt.Errorf("render admin notice: %w", err)
	}
	return Message{
		From:    from,
		To:      to,
		Subject: AdminSubject(details.Subject),
		HTML:    body,
		Text:    adminNoticeText(details),
	}, nil
}

// AdminSubject builds the notification subject line. Line breaks are
// folded so user input cannot add headers.
func AdminSubject(subject string) string {
	return adminSubjectPrefix + singleLine(subject)
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func renderComponent(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func acknowledgementComponent(details ContactDetails, club ClubIdentity) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
		b.WriteString(`<h1 style="color: #1e40af;">¡Gracias por contactarnos, `)
		b.WriteString(html.EscapeString(details.Name))
		b.WriteString(`!</h1>`)
		b.WriteString(`<p>Hemos recibido tu mensaje y te responderemos en un plazo de 24-48 horas.</p>`)
		b.WriteString(`<div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">`)
		b.WriteString(`<h3 style="margin-top: 0;">Resumen de tu consulta:</h3>`)
		writeField(&b, "Asunto", details.Subject)
		b.WriteString(`<p><strong>Mensaje:</strong></p>`)
		b.WriteString(`<p style="white-space: pre-wrap;">`)
		b.WriteString(html.EscapeString(details.Message))
		b.WriteString(`</p>`)
		if details.Phone != "" {
			writeField(&b, "Teléfono", details.Phone)
		}
		b.WriteString(`</div>`)
		b.WriteString(`<p>Saludos cordiales,<br><strong>`)
		b.WriteString(html.EscapeString(club.Name))
		b.WriteString(`</strong>`)
		if club.Tagline != "" {
			b.WriteString(`<br>`)
			b.WriteString(html.EscapeString(club.Tagline))
		}
		b.WriteString(`</p></div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func adminNoticeComponent(details ContactDetails) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
		b.WriteString(`<h1 style="color: #1e40af;">Nueva consulta desde el sitio web</h1>`)
		b.WriteString(`<div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px;">`)
		writeField(&b, "Nombre", details.Name)
		writeField(&b, "Email", details.Email)
		if details.Phone != "" {
			writeField(&b, "Teléfono", details.Phone)
		}
		writeField(&b, "Asunto", details.Subject)
		b.WriteString(`</div>`)
		b.WriteString(`<div style="margin-top: 20px;"><h3>Mensaje:</h3>`)
		b.WriteString(`<p style="white-space: pre-wrap; background-color: #ffffff; padding: 15px; border-left: 4px solid #1e40af;">`)
		b.WriteString(html.EscapeString(details.Message))
		b.WriteString(`</p></div>`)
		b.WriteString(`<p style="color: #6b7280; font-size: 12px; margin-top: 30px;">Mensaje recibido el `)
		b.WriteString(html.EscapeString(details.ReceivedAt.Format(receivedAtLayout)))
		b.WriteString(`</p></div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(`<p><strong>`)
	b.WriteString(label)
	b.WriteString(`:</strong> `)
	b.WriteString(html.EscapeString(value))
	b.WriteString(`</p>`)
}

func acknowledgementText(details ContactDetails, club ClubIdentity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "¡Gracias por contactarnos, %s!\n\n", details.Name)
	b.WriteString("Hemos recibido tu mensaje y te responderemos en un plazo de 24-48 horas.\n\n")
	fmt.Fprintf(&b, "Asunto: %s\n", singleLine(details.Subject))
	fmt.Fprintf(&b, "Mensaje:\n%s\n", details.Message)
	if details.Phone != "" {
		fmt.Fprintf(&b, "Teléfono: %s\n", details.Phone)
	}
	fmt.Fprintf(&b, "\nSaludos cordiales,\n%s\n", club.Name)
	if club.Tagline != "" {
		b.WriteString(club.Tagline + "\n")
	}
	return b.String()
}

func adminNoticeText(details ContactDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nombre: %s\n", details.Name)
	fmt.Fprintf(&b, "Email: %s\n", details.Email)
	if details.Phone != "" {
		fmt.Fprintf(&b, "Teléfono: %s\n", details.Phone)
	}
	fmt.Fprintf(&b, "Asunto: %s\n\n", singleLine(details.Subject))
	fmt.Fprintf(&b, "Mensaje:\n%s\n\n", details.Message)
	fmt.Fprintf(&b, "Mensaje recibido el %s\n", details.ReceivedAt.Format(receivedAtLayout))
	return b.String()
}
