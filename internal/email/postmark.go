// Package email sends transactional mail through the Postmark API.
package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pvieira/tarefinha/internal/score"
	"github.com/pvieira/tarefinha/internal/week"
)

const postmarkURL = "https://api.postmarkapp.com/email"

type Client struct {
	serverToken string
	fromEmail   string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIURL overrides the Postmark endpoint, for tests.
func WithAPIURL(url string) Option {
	return func(cl *Client) {
		cl.apiURL = url
	}
}

func NewClient(serverToken, fromEmail string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		apiURL:      postmarkURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// SendWeeklyDigest mails the final standings for a finished week.
func (c *Client) SendWeeklyDigest(toEmail, weekStr string, entries []score.Entry) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}

	subject := fmt.Sprintf("Placar da semana %s", weekStr)
	if start, end, err := week.Range(weekStr); err == nil {
		subject = fmt.Sprintf("Placar da semana %s (%s a %s)",
			weekStr, start.Format("02/01"), end.Format("02/01"))
	}

	var text, html strings.Builder
	text.WriteString("Resultado da semana:\n\n")
	html.WriteString("<h2>Resultado da semana</h2><ol>")
	for _, e := range entries {
		fmt.Fprintf(&text, "%d. %s %s - %d pontos (%d tarefas)\n",
			e.Rank, e.AvatarEmoji, e.Name, e.Points, e.TasksCompleted)
		fmt.Fprintf(&html, "<li>%s %s &mdash; %d pontos (%d tarefas)</li>",
			e.AvatarEmoji, e.Name, e.Points, e.TasksCompleted)
	}
	html.WriteString("</ol>")

	return c.send(postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: html.String(),
		TextBody: text.String(),
	})
}

func (c *Client) send(payload postmarkEmail) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
