package notifier

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLogSender_Send(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	if err := n.Send(context.Background(), "hr@acme.test", "Application for Go Engineer at Acme", "Hello"); err != nil {
		t.Fatalf("Send() = %v, want nil", err)
	}

	out := buf.String()
	if !strings.Contains(out, "recipient=hr@acme.test") {
		t.Errorf("log output missing recipient: %s", out)
	}
	if !strings.Contains(out, `subject="Application for Go Engineer at Acme"`) {
		t.Errorf("log output missing subject: %s", out)
	}
	if strings.Contains(out, "response body") {
		t.Error("body should only be logged at debug level")
	}
}
