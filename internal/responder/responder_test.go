package responder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobpipe/internal/filter"
	"github.com/amishk599/jobpipe/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)

func newAgent(cfg Config, sender model.Sender) *Agent {
	a := New(cfg, sender, discardLogger())
	a.now = func() time.Time { return fixedNow }
	return a
}

type fakeSender struct {
	err   error
	calls []string
}

func (f *fakeSender) Send(_ context.Context, recipient, subject, _ string) error {
	f.calls = append(f.calls, recipient+"|"+subject)
	return f.err
}

func pythonJob() model.Job {
	return model.Job{
		ID:             "job-1",
		ExternalID:     "https://example.com_0",
		Title:          "Python Developer",
		Company:        "Acme",
		Description:    "Build data pipelines",
		RequiredSkills: []string{"Python"},
		Status:         model.StatusStored,
	}
}

func TestProcess_Eligibility(t *testing.T) {
	java := newAgent(Config{Criteria: filter.Criteria{RequiredSkills: []string{"Java"}}}, nil)
	python := newAgent(Config{Criteria: filter.Criteria{RequiredSkills: []string{"Python"}}}, nil)

	res, _ := java.Process(context.Background(), []model.Job{pythonJob()})
	if res[0].ShouldRespond {
		t.Error("Java criteria should reject a Python job")
	}
	if res[0].Reason != ReasonNotEligible {
		t.Errorf("Reason = %q", res[0].Reason)
	}
	if res[0].Response != nil {
		t.Error("ineligible job should have no response")
	}
	if res[0].Job.Status != model.StatusStored {
		t.Errorf("ineligible job status = %q, want unchanged", res[0].Job.Status)
	}

	res, _ = python.Process(context.Background(), []model.Job{pythonJob()})
	if !res[0].ShouldRespond {
		t.Error("Python criteria should accept a Python job")
	}
	if res[0].Job.Status != model.StatusResponded {
		t.Errorf("status = %q, want responded", res[0].Job.Status)
	}
}

func TestProcess_OneToOne(t *testing.T) {
	a := newAgent(Config{Criteria: filter.Criteria{RequiredSkills: []string{"Python"}}}, nil)
	jobs := []model.Job{pythonJob(), {Title: "Java Dev", RequiredSkills: []string{"Java"}}, pythonJob()}

	res, err := a.Process(context.Background(), jobs)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(res) != 3 {
		t.Fatalf("len = %d, want 3", len(res))
	}
	if !res[0].ShouldRespond || res[1].ShouldRespond || !res[2].ShouldRespond {
		t.Errorf("should_respond = %v %v %v", res[0].ShouldRespond, res[1].ShouldRespond, res[2].ShouldRespond)
	}
}

func TestProcess_DefaultTemplateRendering(t *testing.T) {
	a := newAgent(Config{CustomVariables: map[string]string{"your_name": "Ada"}}, nil)
	a.newID = func() string { return "resp-1" }

	res, _ := a.Process(context.Background(), []model.Job{pythonJob()})
	resp := res[0].Response
	if resp == nil {
		t.Fatal("expected a response")
	}
	if resp.Subject != "Application for Python Developer at Acme" {
		t.Errorf("Subject = %q", resp.Subject)
	}
	if !strings.Contains(resp.Body, "Best regards,\nAda") {
		t.Errorf("custom variable not substituted: %q", resp.Body)
	}
	if resp.ID != "resp-1" || resp.JobID != "job-1" || resp.TemplateID != "default" {
		t.Errorf("ids = %q %q %q", resp.ID, resp.JobID, resp.TemplateID)
	}
	if resp.Status != model.ResponsePending {
		t.Errorf("Status = %q, want pending", resp.Status)
	}
	if resp.Metadata["template_name"] != "Default Application" {
		t.Errorf("metadata = %v", resp.Metadata)
	}
	if res[0].AutoSent {
		t.Error("AutoSent should be false without auto_respond")
	}
}

func TestSubstitute(t *testing.T) {
	job := model.Job{Title: "SRE", Company: "Beta"}
	tmpl := model.ResponseTemplate{Variables: map[string]string{"greeting": "Hi", "company": "ignored"}}
	vars := variables(job, tmpl, map[string]string{"greeting": "Hello"}, fixedNow)

	got := substitute("{greeting} {company}: {job_title} in {location} ({job_type}) on {date}, {unknown}", vars)
	want := "Hello ignored: SRE in N/A (N/A) on 2026-04-02, {unknown}"
	if got != want {
		t.Errorf("substitute = %q, want %q", got, want)
	}
}

func TestSelectTemplate(t *testing.T) {
	templates := []model.ResponseTemplate{
		{Name: "generic"},
		{Name: "backend", MatchKeywords: []string{"python", "api"}},
		{Name: "data", MatchKeywords: []string{"data", "pipelines", "python"}},
	}

	tests := []struct {
		job  model.Job
		want string
	}{
		{model.Job{Title: "Marketing Lead"}, "generic"},
		{model.Job{Title: "Python API Engineer"}, "backend"},
		{model.Job{Title: "Python Developer", Description: "Build data pipelines"}, "data"},
		{model.Job{Title: "Python Developer"}, "backend"},
	}
	for _, tt := range tests {
		if got := selectTemplate(templates, tt.job); got.Name != tt.want {
			t.Errorf("selectTemplate(%q) = %q, want %q", tt.job.Title, got.Name, tt.want)
		}
	}
}

func TestProcess_AutoRespond(t *testing.T) {
	sender := &fakeSender{}
	a := newAgent(Config{AutoRespond: true, Recipient: "hr@acme.test"}, sender)

	res, _ := a.Process(context.Background(), []model.Job{pythonJob()})
	r := res[0]
	if !r.AutoSent {
		t.Fatal("expected AutoSent")
	}
	if r.Response.Status != model.ResponseSent {
		t.Errorf("Status = %q, want sent", r.Response.Status)
	}
	if r.Response.SentDate == nil || !r.Response.SentDate.Equal(fixedNow) {
		t.Errorf("SentDate = %v", r.Response.SentDate)
	}
	if len(sender.calls) != 1 || sender.calls[0] != "hr@acme.test|Application for Python Developer at Acme" {
		t.Errorf("sender calls = %v", sender.calls)
	}
}

func TestProcess_AutoRespondWithoutSender(t *testing.T) {
	a := newAgent(Config{AutoRespond: true}, nil)
	res, _ := a.Process(context.Background(), []model.Job{pythonJob()})
	if !res[0].AutoSent || res[0].Response.Status != model.ResponseSent {
		t.Errorf("result = %+v", res[0])
	}
}

func TestProcess_SendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("webhook down")}
	a := newAgent(Config{AutoRespond: true}, sender)

	res, err := a.Process(context.Background(), []model.Job{pythonJob(), pythonJob()})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i, r := range res {
		if r.AutoSent {
			t.Errorf("[%d] AutoSent should be false", i)
		}
		if r.Response.Status != model.ResponseFailed {
			t.Errorf("[%d] Status = %q, want failed", i, r.Response.Status)
		}
		if r.Reason != ReasonSendFailed || r.Error != "webhook down" {
			t.Errorf("[%d] reason/error = %q / %q", i, r.Reason, r.Error)
		}
	}
	if len(sender.calls) != 2 {
		t.Errorf("sender calls = %d, want 2", len(sender.calls))
	}
}

type panicSender struct{}

func (panicSender) Send(context.Context, string, string, string) error { panic("boom") }

func TestProcess_CapturesPanics(t *testing.T) {
	a := newAgent(Config{AutoRespond: true}, panicSender{})
	res, err := a.Process(context.Background(), []model.Job{pythonJob()})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res[0].Error != "panic: boom" {
		t.Errorf("Error = %q", res[0].Error)
	}
	if res[0].Job.ExternalID != "https://example.com_0" {
		t.Error("result should carry the job")
	}
}

func TestNew_AssignsTemplateIDs(t *testing.T) {
	a := New(Config{Templates: []model.ResponseTemplate{{Name: "one"}, {Name: "two", ID: "fixed"}}}, nil, discardLogger())
	if a.templates[0].ID == "" {
		t.Error("template without ID should get one")
	}
	if a.templates[1].ID != "fixed" {
		t.Errorf("explicit ID overwritten: %q", a.templates[1].ID)
	}
	if a.cfg.Templates[0].ID != "" {
		t.Error("config templates should not be mutated")
	}
}

func TestPreview(t *testing.T) {
	sender := &fakeSender{}
	a := newAgent(Config{
		AutoRespond: true,
		Criteria:    filter.Criteria{RequiredSkills: []string{"Python"}},
	}, sender)

	resp, ok := a.Preview(pythonJob())
	if !ok || resp == nil {
		t.Fatal("Preview: expected an eligible job to render")
	}
	if resp.Subject != "Application for Python Developer at Acme" {
		t.Errorf("Subject = %q", resp.Subject)
	}
	if resp.Status != model.ResponsePending {
		t.Errorf("Status = %q, want pending", resp.Status)
	}
	if len(sender.calls) != 0 {
		t.Errorf("Preview must not send, got %v", sender.calls)
	}

	job := pythonJob()
	job.RequiredSkills = []string{"Rust"}
	if _, ok := a.Preview(job); ok {
		t.Error("Preview: expected ineligible job to be rejected")
	}
}

func TestProcess_SkipsErrorState(t *testing.T) {
	sender := &fakeSender{}
	a := newAgent(Config{AutoRespond: true, Recipient: "me@example.com"}, sender)

	broken := pythonJob()
	broken.Title = "   "
	broken.Status = model.StatusError

	res, err := a.Process(context.Background(), []model.Job{broken, pythonJob()})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res[0].ShouldRespond || res[0].AutoSent || res[0].Response != nil {
		t.Errorf("error-state job got a response: %+v", res[0])
	}
	if res[0].Reason != ReasonErrorState {
		t.Errorf("Reason = %q, want %q", res[0].Reason, ReasonErrorState)
	}
	if res[0].Job.Status != model.StatusError {
		t.Errorf("status = %q, want error", res[0].Job.Status)
	}
	if !res[1].AutoSent {
		t.Error("healthy job should still be sent")
	}
	if len(sender.calls) != 1 {
		t.Errorf("sender calls = %v, want only the healthy job", sender.calls)
	}

	if _, ok := a.Preview(broken); ok {
		t.Error("Preview should refuse a job in error state")
	}
}
