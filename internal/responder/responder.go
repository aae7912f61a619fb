package responder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/jobpipe/internal/filter"
	"github.com/amishk599/jobpipe/internal/model"
)

// Result reasons.
const (
	ReasonNotEligible = "Does not meet criteria"
	ReasonErrorState  = "Job in error state"
	ReasonSendFailed  = "Send failed"
)

// Config controls eligibility, template choice and delivery.
type Config struct {
	AutoRespond     bool                     `json:"auto_respond"`
	Recipient       string                   `json:"recipient,omitempty"`
	Criteria        filter.Criteria          `json:"response_criteria"`
	Templates       []model.ResponseTemplate `json:"templates"`
	CustomVariables map[string]string        `json:"custom_variables,omitempty"`
}

// Ensure Agent implements the respond-stage contract.
var _ model.Agent[[]model.Job, []model.ResponseResult] = (*Agent)(nil)

// Agent drafts (and optionally sends) a response for every eligible job.
type Agent struct {
	cfg       Config
	templates []model.ResponseTemplate
	sender    model.Sender
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// New builds a responder. With no configured templates the built-in default
// template is used. sender may be nil, in which case auto-responses are only
// marked as sent.
func New(cfg Config, sender model.Sender, logger *slog.Logger) *Agent {
	templates := make([]model.ResponseTemplate, 0, len(cfg.Templates))
	templates = append(templates, cfg.Templates...)
	if len(templates) == 0 {
		templates = append(templates, DefaultTemplate())
	}
	for i := range templates {
		if templates[i].ID == "" {
			templates[i].ID = uuid.NewString()
		}
	}

	return &Agent{
		cfg:       cfg,
		templates: templates,
		sender:    sender,
		logger:    logger.With("agent", "responder"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (a *Agent) Name() string { return "ResponderAgent" }

func (a *Agent) Status() model.AgentStatus {
	return model.AgentStatus{Name: a.Name(), Status: "active", Config: a.cfg}
}

// Process returns one result per job, in input order. Failures for a single
// job are captured in its result.
func (a *Agent) Process(ctx context.Context, jobs []model.Job) ([]model.ResponseResult, error) {
	a.logger.Info("generating responses", "jobs", len(jobs))

	results := make([]model.ResponseResult, len(jobs))
	eligible, sent := 0, 0
	for i, job := range jobs {
		res := a.respondOne(ctx, job)
		if res.Error != "" {
			a.logger.Error("generating response", "external_id", job.ExternalID, "error", res.Error)
		}
		if res.ShouldRespond {
			eligible++
		}
		if res.AutoSent {
			sent++
		}
		results[i] = res
	}

	a.logger.Info("responses generated", "jobs", len(jobs), "eligible", eligible, "auto_sent", sent)
	return results, nil
}

func (a *Agent) respondOne(ctx context.Context, job model.Job) (res model.ResponseResult) {
	defer func() {
		if r := recover(); r != nil {
			res = model.ResponseResult{Job: job, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	// error is terminal; never draft from a record that failed to normalize.
	if job.Status == model.StatusError {
		a.logger.Debug("skipping job in error state", "external_id", job.ExternalID)
		return model.ResponseResult{Job: job, Reason: ReasonErrorState}
	}

	if !a.cfg.Criteria.Match(job) {
		a.logger.Debug("job does not meet criteria", "external_id", job.ExternalID)
		return model.ResponseResult{Job: job, Reason: ReasonNotEligible}
	}

	tmpl := selectTemplate(a.templates, job)
	resp := a.render(job, tmpl)

	if job.Status.CanAdvanceTo(model.StatusResponded) {
		job.Status = model.StatusResponded
	}
	res = model.ResponseResult{Job: job, Response: resp, ShouldRespond: true}

	if !a.cfg.AutoRespond {
		return res
	}

	if a.sender != nil {
		if err := a.sender.Send(ctx, a.cfg.Recipient, resp.Subject, resp.Body); err != nil {
			resp.Status = model.ResponseFailed
			res.Reason = ReasonSendFailed
			res.Error = err.Error()
			return res
		}
	}
	sentAt := a.now()
	resp.Status = model.ResponseSent
	resp.SentDate = &sentAt
	res.AutoSent = true
	return res
}

func (a *Agent) render(job model.Job, tmpl model.ResponseTemplate) *model.JobResponse {
	vars := variables(job, tmpl, a.cfg.CustomVariables, a.now())
	return &model.JobResponse{
		ID:         a.newID(),
		JobID:      job.ID,
		TemplateID: tmpl.ID,
		Subject:    substitute(tmpl.Subject, vars),
		Body:       substitute(tmpl.Body, vars),
		Status:     model.ResponsePending,
		Metadata: map[string]any{
			"template_name": tmpl.Name,
			"generated_at":  a.now().Format(time.RFC3339Nano),
		},
	}
}

// Preview renders the response job would receive without sending it or
// changing the job. ok is false for jobs in error state or that do not meet
// the criteria.
func (a *Agent) Preview(job model.Job) (resp *model.JobResponse, ok bool) {
	if job.Status == model.StatusError || !a.cfg.Criteria.Match(job) {
		return nil, false
	}
	return a.render(job, selectTemplate(a.templates, job)), true
}
