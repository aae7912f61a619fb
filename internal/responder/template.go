package responder

import (
	"strings"
	"time"

	"github.com/amishk599/jobpipe/internal/model"
)

const defaultBody = `Dear Hiring Manager,

I am writing to express my interest in the {job_title} position at {company}.

I believe my skills and experience make me a strong candidate for this role. I am particularly interested in this opportunity because of {company}'s reputation and the exciting challenges this position offers.

I would welcome the opportunity to discuss how I can contribute to your team.

Thank you for your consideration.

Best regards,
{your_name}
`

// DefaultTemplate is used when no templates are configured.
func DefaultTemplate() model.ResponseTemplate {
	return model.ResponseTemplate{
		ID:      "default",
		Name:    "Default Application",
		Subject: "Application for {job_title} at {company}",
		Body:    defaultBody,
	}
}

// selectTemplate picks the template whose match keywords occur most often in
// the job's title and description. Ties go to the earlier template, so with no
// keywords anywhere the first template wins.
func selectTemplate(templates []model.ResponseTemplate, job model.Job) model.ResponseTemplate {
	text := strings.ToLower(job.Title + " " + job.Description)

	best, bestScore := 0, -1
	for i, t := range templates {
		score := 0
		for _, kw := range t.MatchKeywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return templates[best]
}

// variables builds the substitution set. Later sources override earlier ones:
// job fields, then template defaults, then operator custom variables.
func variables(job model.Job, tmpl model.ResponseTemplate, custom map[string]string, now time.Time) map[string]string {
	vars := map[string]string{
		"job_title": job.Title,
		"company":   job.Company,
		"location":  orNA(job.Location),
		"job_type":  orNA(job.JobType),
		"date":      now.UTC().Format("2006-01-02"),
	}
	for k, v := range tmpl.Variables {
		vars[k] = v
	}
	for k, v := range custom {
		vars[k] = v
	}
	return vars
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// substitute replaces {name} placeholders. Unknown placeholders are left as is
// and substituted values are not rescanned.
func substitute(text string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
