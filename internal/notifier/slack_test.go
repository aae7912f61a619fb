package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSlackSender_Send(t *testing.T) {
	var body []byte
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackSender(srv.URL, srv.Client(), discardLogger())
	err := n.Send(context.Background(), "hr@acme.test", "Application for SRE at Acme", "Dear Hiring Manager,")
	if err != nil {
		t.Fatalf("Send() = %v, want nil", err)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Text != "Application for SRE at Acme" {
		t.Errorf("fallback text = %q", payload.Text)
	}
	if len(payload.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(payload.Blocks))
	}
	if payload.Blocks[0].Type != "header" || payload.Blocks[0].Text.Text != "Application for SRE at Acme" {
		t.Errorf("header block = %+v", payload.Blocks[0])
	}
	if payload.Blocks[1].Text.Text != "Dear Hiring Manager," {
		t.Errorf("body block = %q", payload.Blocks[1].Text.Text)
	}
	if payload.Blocks[2].Type != "context" || payload.Blocks[2].Elements[0].Text != "*To:* hr@acme.test" {
		t.Errorf("context block = %+v", payload.Blocks[2])
	}
	if payload.Blocks[3].Type != "divider" {
		t.Errorf("block[3] type = %q, want divider", payload.Blocks[3].Type)
	}
}

func TestSlackSender_NoRecipientOmitsContext(t *testing.T) {
	p := buildPayload("", "Subject", "Body")
	if len(p.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(p.Blocks))
	}
	for _, b := range p.Blocks {
		if b.Type == "context" {
			t.Error("context block present without recipient")
		}
	}
}

func TestSlackSender_LongSubjectTruncated(t *testing.T) {
	p := buildPayload("", strings.Repeat("x", 400), "Body")
	if n := len([]rune(p.Blocks[0].Text.Text)); n != maxHeaderLen {
		t.Errorf("header length = %d, want %d", n, maxHeaderLen)
	}
}

func TestSlackSender_SlackReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackSender(srv.URL, srv.Client(), discardLogger())
	if err := n.Send(context.Background(), "", "s", "b"); err == nil {
		t.Error("expected error on 500, got nil")
	}
}

func TestSlackSender_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := calls.Add(1)
		if c == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		} else {
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	n := NewSlackSender(srv.URL, srv.Client(), discardLogger())
	if err := n.Send(context.Background(), "", "Rate Limited", "b"); err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
}

func TestSlackSender_RateLimitWaitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	n := NewSlackSender(srv.URL, srv.Client(), discardLogger())
	start := time.Now()
	err := n.Send(ctx, "", "s", "b")
	if err == nil {
		t.Fatal("expected context error")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Send did not stop waiting when the context expired")
	}
}
