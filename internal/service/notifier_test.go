package service

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/octobees/rolloff-rates/internal/entity"
)

func TestLeadSummary(t *testing.T) {
	body := LeadSummary(entity.Lead{
		Name:  "Jane",
		Email: "jane@example.com",
		Phone: "+12015550123",
		City:  "Austin",
		Size:  "20",
	})

	for _, want := range []string{"Name: Jane\n", "Email: jane@example.com\n", "City: Austin\n", "Size: 20 yard\n"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in summary:\n%s", want, body)
		}
	}
	for _, absent := range []string{"Address:", "State:", "Message:"} {
		if strings.Contains(body, absent) {
			t.Fatalf("did not expect %q in summary:\n%s", absent, body)
		}
	}
}

func TestSMTPNotifier(t *testing.T) {
	if _, err := NewSMTPNotifier("", "", "", "from@example.com", []string{"ops@example.com"}); err == nil {
		t.Fatalf("expected error for empty address")
	}
	if _, err := NewSMTPNotifier("smtp.example.com:587", "", "", "from@example.com", nil); err == nil {
		t.Fatalf("expected error without recipients")
	}

	notifier, err := NewSMTPNotifier("smtp.example.com:587", "user", "pass", "from@example.com", []string{"ops@example.com", "sales@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notifier.auth == nil {
		t.Fatalf("expected plain auth when credentials are set")
	}

	var gotAddr string
	var gotTo []string
	var gotMsg string
	notifier.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	if err := notifier.NotifyLead(context.Background(), entity.Lead{Name: "Jane", Email: "jane@example.com", Phone: "+12015550123"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || len(gotTo) != 2 {
		t.Fatalf("unexpected delivery addr=%s to=%v", gotAddr, gotTo)
	}
	if !strings.Contains(gotMsg, "Subject: New Dumpster Rental Lead\r\n") || !strings.Contains(gotMsg, "Name: Jane\r\n") {
		t.Fatalf("unexpected message:\n%s", gotMsg)
	}

	notifier.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	}
	if err := notifier.NotifyLead(context.Background(), entity.Lead{Name: "Jane"}); err == nil {
		t.Fatalf("expected delivery error")
	}
}
