package mailer

import (
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"anveshan/internal/model"
)

type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	EventName string
}

// Enabled reports whether a credential was configured.
func (c Config) Enabled() bool {
	return c.Host != "" && c.Password != ""
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	cfg  Config
	log  *zerolog.Logger
	send sendFunc
}

func New(cfg Config, log *zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log, send: smtp.SendMail}
}

func (m *Mailer) SendRegistrationEmail(reg model.Registration) error {
	subject, body := BuildRegistrationEmail(m.cfg.EventName, reg)

	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		from, reg.Email, subject, body,
	)

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if err := m.send(addr, auth, from, []string{reg.Email}, []byte(msg)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().
		Int64("registration_id", reg.ID).
		Str("email", reg.Email).
		Msg("confirmation e-mail sent")
	return nil
}

// BuildRegistrationEmail renders the confirmation subject and plain-text body.
// Presentation details are included only for presenters.
func BuildRegistrationEmail(eventName string, reg model.Registration) (string, string) {
	subject := fmt.Sprintf("Registration confirmed: %s (#%d)", eventName, reg.ID)

	role := model.ParticipationLabels[reg.ParticipationType]
	if role == "" {
		role = reg.ParticipationType
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", reg.ParticipantName)
	fmt.Fprintf(&b, "Thank you for registering for %s. Your registration ID is %d.\n\n", eventName, reg.ID)
	b.WriteString("Participant details\n")
	writeLine(&b, "Name", reg.ParticipantName)
	writeLine(&b, "Email", reg.Email)
	writeLine(&b, "Mobile", reg.Mobile)
	writeLine(&b, "Institute", reg.Institute)
	writeLine(&b, "District", reg.District)
	writeLine(&b, "State", reg.State)
	writeLine(&b, "Participation", role)
	if reg.PciID != nil {
		writeLine(&b, "PCI ID", *reg.PciID)
	}

	if reg.IsPresenter() {
		b.WriteString("\nPresentation details\n")
		writeOptional(&b, "Category", reg.PresentationCategory)
		writeOptional(&b, "Title", reg.PresentationTitle)
		writeOptional(&b, "Abstract", reg.Abstract)
		writeOptional(&b, "Practical application", reg.PracticalApplication)
		writeOptional(&b, "Patent status", reg.PatentStatus)
	}

	b.WriteString("\nWe look forward to seeing you.\n")
	return subject, b.String()
}

func writeLine(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "  %s: %s\n", label, value)
}

func writeOptional(b *strings.Builder, label string, value *string) {
	if value != nil {
		writeLine(b, label, *value)
	}
}
