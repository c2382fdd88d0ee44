package template

import (
	"bytes"
	_ "embed"
	"fmt"
	htmltemplate "html/template"

	"ticket-mailer/internal/models"
)

//go:embed ticket.html
var ticketHTML string

const defaultWelcomeMsg = "Presenta este ticket en el acceso. ¡Nos vemos!"

// Ticket is everything the ticket email needs for one guest. LogoSrc and
// QRSrc are image references: cid:, data: or https: URLs.
type Ticket struct {
	Event      models.EventConfig
	TicketType string
	Accent     string
	UniqueCode string
	LogoSrc    string
	QRSrc      string
	Preview    bool
}

type ticketView struct {
	Event        models.EventConfig
	TicketType   string
	Accent       htmltemplate.CSS
	UniqueCode   string
	WelcomeMsg   string
	LogoSrc      htmltemplate.URL
	QRSrc        htmltemplate.URL
	Preview      bool
	SupportEmail string
	Footer       string
}

type TicketRenderer struct {
	tmpl         *htmltemplate.Template
	supportEmail string
	footer       string
}

func NewTicketRenderer(supportEmail, footer string) (*TicketRenderer, error) {
	tmpl, err := htmltemplate.New("ticket").Parse(ticketHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ticket template: %w", err)
	}
	return &TicketRenderer{tmpl: tmpl, supportEmail: supportEmail, footer: footer}, nil
}

func (r *TicketRenderer) Render(t Ticket) (string, error) {
	welcome := t.Event.WelcomeMsg
	if welcome == "" {
		welcome = defaultWelcomeMsg
	}

	// Image sources are produced internally, never taken from guest input.
	view := ticketView{
		Event:        t.Event,
		TicketType:   t.TicketType,
		Accent:       htmltemplate.CSS(t.Accent),
		UniqueCode:   t.UniqueCode,
		WelcomeMsg:   welcome,
		LogoSrc:      htmltemplate.URL(t.LogoSrc),
		QRSrc:        htmltemplate.URL(t.QRSrc),
		Preview:      t.Preview,
		SupportEmail: r.supportEmail,
		Footer:       r.footer,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render ticket: %w", err)
	}
	return buf.String(), nil
}
