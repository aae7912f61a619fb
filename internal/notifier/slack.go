package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/jobpipe/internal/model"
)

// Ensure SlackSender implements model.Sender.
var _ model.Sender = (*SlackSender)(nil)

// Slack rejects plain_text header blocks longer than this.
const maxHeaderLen = 150

// SlackSender posts rendered responses to a Slack channel via Incoming Webhooks.
type SlackSender struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackSender returns a sender that posts each response to Slack via webhook.
func NewSlackSender(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackSender {
	return &SlackSender{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Send posts one response as a Block Kit message. A 429 is retried once after
// the Retry-After delay.
func (s *SlackSender) Send(ctx context.Context, recipient, subject, body string) error {
	payload, err := json.Marshal(buildPayload(recipient, subject, body))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(ctx, payload)
	if err != nil {
		return err
	}

	if status == http.StatusTooManyRequests {
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", retryAfter)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(retryAfter) * time.Second):
		}

		status, _, err = s.post(ctx, payload)
		if err != nil {
			return fmt.Errorf("retry: %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", status)
		}
		s.logger.Info("slack message sent", "recipient", recipient, "subject", subject, "retried", true)
		return nil
	}

	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	s.logger.Info("slack message sent", "recipient", recipient, "subject", subject)
	return nil
}

// post returns the status code and, for 429s, the Retry-After seconds (min 1).
func (s *SlackSender) post(ctx context.Context, payload []byte) (int, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return 0, 0, fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	secs := 0
	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ = strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
	}
	return resp.StatusCode, secs, nil
}

// Block Kit payload types.

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func buildPayload(recipient, subject, body string) slackPayload {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: truncate(subject, maxHeaderLen)},
		},
		{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: body},
		},
	}
	if recipient != "" {
		blocks = append(blocks, slackBlock{
			Type:     "context",
			Elements: []slackText{{Type: "mrkdwn", Text: "*To:* " + recipient}},
		})
	}
	blocks = append(blocks, slackBlock{Type: "divider"})

	// Text is the notification fallback for clients that cannot render blocks.
	return slackPayload{Text: subject, Blocks: blocks}
}
