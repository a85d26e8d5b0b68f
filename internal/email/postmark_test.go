package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pvieira/tarefinha/internal/score"
)

func TestSendWeeklyDigest(t *testing.T) {
	var got postmarkEmail
	var token string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("test-token", "tarefinha@example.com", WithAPIURL(srv.URL), WithHTTPClient(srv.Client()))

	entries := []score.Entry{
		{Rank: 1, Name: "Ana", AvatarEmoji: "🦊", Points: 12, TasksCompleted: 12},
		{Rank: 2, Name: "Bia", AvatarEmoji: "🐰", Points: 8, TasksCompleted: 9},
	}
	if err := c.SendWeeklyDigest("familia@example.com", "2026-W10", entries); err != nil {
		t.Fatalf("send digest: %v", err)
	}

	if token != "test-token" {
		t.Errorf("server token = %q", token)
	}
	if got.To != "familia@example.com" {
		t.Errorf("to = %q", got.To)
	}
	if !strings.Contains(got.Subject, "2026-W10") {
		t.Errorf("subject %q should mention the week", got.Subject)
	}
	if !strings.Contains(got.TextBody, "Ana") || !strings.Contains(got.TextBody, "12 pontos") {
		t.Errorf("text body missing standings: %q", got.TextBody)
	}
	if !strings.Contains(got.HtmlBody, "<ol>") {
		t.Errorf("html body should be an ordered list: %q", got.HtmlBody)
	}
}

func TestSendWeeklyDigestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient("test-token", "tarefinha@example.com", WithAPIURL(srv.URL), WithHTTPClient(srv.Client()))
	if err := c.SendWeeklyDigest("familia@example.com", "2026-W10", nil); err == nil {
		t.Error("expected error on 422 response")
	}
}

func TestUnconfiguredClient(t *testing.T) {
	c := NewClient("", "tarefinha@example.com")
	if c.Configured() {
		t.Error("client without token should not be configured")
	}
	if err := c.SendWeeklyDigest("familia@example.com", "2026-W10", nil); err == nil {
		t.Error("expected error from unconfigured client")
	}
}
