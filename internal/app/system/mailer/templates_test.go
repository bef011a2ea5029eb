package mailer

import (
	"strings"
	"testing"
)

func TestBuildNotificationHTML(t *testing.T) {
	html, err := BuildNotificationHTML(NotificationEmailData{
		SenderName: "Iglesia Central",
		Subject:    "Retiro de jóvenes",
		Body:       "Salimos el sábado.\n\nTraer <b>sleeping bag</b>.",
	})
	if err != nil {
		t.Fatalf("BuildNotificationHTML: %v", err)
	}
	for _, want := range []string{"Iglesia Central", "Retiro de jóvenes", "Salimos el sábado.", "&lt;b&gt;sleeping bag&lt;/b&gt;"} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in output", want)
		}
	}
	if strings.Count(html, "<p ") != 2 {
		t.Errorf("expected 2 paragraphs, got %d", strings.Count(html, "<p "))
	}
}

func TestBuildNotificationHTML_NoSender(t *testing.T) {
	html, err := BuildNotificationHTML(NotificationEmailData{Subject: "Hola", Body: "texto"})
	if err != nil {
		t.Fatalf("BuildNotificationHTML: %v", err)
	}
	if strings.Contains(html, "<h1") {
		t.Error("header should be omitted without a sender name")
	}
}
