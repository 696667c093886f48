package service

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/octobees/rolloff-rates/internal/entity"
)

// Notifier announces new leads to the site operator.
type Notifier interface {
	NotifyLead(ctx context.Context, lead entity.Lead) error
}

// LogNotifier writes leads to the process log.
type LogNotifier struct{}

// NotifyLead implements Notifier.
func (LogNotifier) NotifyLead(ctx context.Context, lead entity.Lead) error {
	log.Printf("new lead lead_id=%s email=%s city=%s state=%s size=%s", lead.ID, lead.Email, lead.City, lead.State, lead.Size)
	return nil
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier mails each lead to a fixed list of recipients.
type SMTPNotifier struct {
	addr     string
	auth     smtp.Auth
	from     string
	to       []string
	sendMail sendMailFunc
}

// NewSMTPNotifier builds a mail notifier. Credentials are optional.
func NewSMTPNotifier(addr, user, password, from string, to []string) (*SMTPNotifier, error) {
	if addr == "" {
		return nil, fmt.Errorf("smtp address must not be empty")
	}
	if len(to) == 0 {
		return nil, fmt.Errorf("at least one lead recipient is required")
	}
	n := &SMTPNotifier{addr: addr, from: from, to: to, sendMail: smtp.SendMail}
	if user != "" {
		host := addr
		if i := strings.LastIndex(addr, ":"); i > 0 {
			host = addr[:i]
		}
		n.auth = smtp.PlainAuth("", user, password, host)
	}
	return n, nil
}

// NotifyLead implements Notifier.
func (n *SMTPNotifier) NotifyLead(ctx context.Context, lead entity.Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := "From: " + n.from + "\r\n" +
		"To: " + strings.Join(n.to, ", ") + "\r\n" +
		"Subject: New Dumpster Rental Lead\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		strings.ReplaceAll(LeadSummary(lead), "\n", "\r\n")
	if err := n.sendMail(n.addr, n.auth, n.from, n.to, []byte(msg)); err != nil {
		return fmt.Errorf("send lead mail: %w", err)
	}
	return nil
}

// LeadSummary renders the plain text body used in notifications. Optional
// fields are included only when present.
func LeadSummary(lead entity.Lead) string {
	var b strings.Builder
	b.WriteString("A new dumpster rental lead has been submitted:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "Email: %s\n", lead.Email)
	fmt.Fprintf(&b, "Phone: %s\n", lead.Phone)
	optional := []struct{ label, value string }{
		{"Address", lead.Address},
		{"City", lead.City},
		{"State", lead.State},
	}
	for _, f := range optional {
		if f.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
		}
	}
	if lead.Size != "" {
		fmt.Fprintf(&b, "Size: %s yard\n", lead.Size)
	}
	if lead.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", lead.Message)
	}
	return b.String()
}
