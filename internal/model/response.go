package model

import (
	"fmt"
	"time"
)

// ResponseStatus tracks a drafted application response.
type ResponseStatus string

const (
	ResponsePending  ResponseStatus = "pending"
	ResponseSent     ResponseStatus = "sent"
	ResponseFailed   ResponseStatus = "failed"
	ResponseReceived ResponseStatus = "received"
)

// ParseResponseStatus converts s into a ResponseStatus, rejecting unknown values.
func ParseResponseStatus(s string) (ResponseStatus, error) {
	switch ResponseStatus(s) {
	case ResponsePending, ResponseSent, ResponseFailed, ResponseReceived:
		return ResponseStatus(s), nil
	}
	return "", fmt.Errorf("response status %q: %w", s, ErrUnknownStatus)
}

func (s ResponseStatus) MarshalText() ([]byte, error) {
	return []byte(s), nil
}

func (s *ResponseStatus) UnmarshalText(text []byte) error {
	st, err := ParseResponseStatus(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ResponseTemplate is a reusable message with {variable} placeholders.
type ResponseTemplate struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Subject       string            `json:"subject"`
	Body          string            `json:"body"`
	Variables     map[string]string `json:"variables,omitempty"`
	MatchKeywords []string          `json:"match_keywords,omitempty"`
}

// JobResponse is a rendered template tied to one job.
type JobResponse struct {
	ID         string         `json:"id"`
	JobID      string         `json:"job_id"`
	TemplateID string         `json:"template_id"`
	Subject    string         `json:"subject"`
	Body       string         `json:"body"`
	Status     ResponseStatus `json:"status"`
	SentDate   *time.Time     `json:"sent_date,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ResponseResult is the respond stage's verdict for one job.
type ResponseResult struct {
	Job           Job          `json:"job"`
	Response      *JobResponse `json:"response,omitempty"`
	ShouldRespond bool         `json:"should_respond"`
	Reason        string       `json:"reason,omitempty"`
	AutoSent      bool         `json:"auto_sent"`
	Error         string       `json:"error,omitempty"`
}
