package normalizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/amishk599/jobpipe/internal/model"
)

type skillRule struct {
	skill    string
	patterns []*regexp.Regexp
}

// skillRules is evaluated in order; a skill is reported once at its first
// matching pattern.
var skillRules = []skillRule{
	{"Python", words(`python`, `django`, `flask`, `fastapi`)},
	{"JavaScript", words(`javascript`, `js`, `node\.?js`, `react`, `vue`, `angular`)},
	{"Java", words(`java`, `spring`)},
	{"SQL", words(`sql`, `mysql`, `postgresql`, `postgres`)},
	{"Docker", words(`docker`, `kubernetes`, `k8s`)},
	{"AWS", words(`aws`, `amazon web services`, `ec2`, `s3`)},
	{"Git", words(`git`, `github`, `gitlab`)},
	{"CI/CD", words(`ci/cd`, `jenkins`, `github actions`, `gitlab ci`)},
}

func words(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`\b` + p + `\b`)
	}
	return out
}

// extractSkills returns the canonical skills mentioned in text.
func extractSkills(text string) []string {
	lower := strings.ToLower(text)
	var skills []string
	for _, rule := range skillRules {
		for _, re := range rule.patterns {
			if re.MatchString(lower) {
				skills = append(skills, rule.skill)
				break
			}
		}
	}
	return skills
}

type jobTypeRule struct {
	canonical string
	phrases   []string
}

var jobTypeRules = []jobTypeRule{
	{model.JobTypeFullTime, []string{"full-time", "full time", "temps plein", "cdi"}},
	{model.JobTypePartTime, []string{"part-time", "part time", "temps partiel"}},
	{model.JobTypeContract, []string{"contract", "contractor", "freelance", "contrat"}},
	{model.JobTypeInternship, []string{"internship", "intern", "stage"}},
	{model.JobTypeTemporary, []string{"temporary", "temp", "temporaire", "cdd"}},
}

// classifyJobType returns the first canonical type with a phrase contained in
// either the declared type or the description. Defaults to full-time.
func classifyJobType(declared, description string) string {
	declared = strings.ToLower(declared)
	description = strings.ToLower(description)
	for _, rule := range jobTypeRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(declared, phrase) || strings.Contains(description, phrase) {
				return rule.canonical
			}
		}
	}
	return model.JobTypeFullTime
}

var salaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$?([\d,]+)k?\s*-\s*\$?([\d,]+)k?`),
	regexp.MustCompile(`(?i)([\d,]+)\s*€\s*-\s*([\d,]+)\s*€`),
}

type salary struct {
	min, max float64
	currency string
}

// extractSalary finds the first salary range in text. A "k" anywhere in the
// matched span scales both bounds by 1000; a "€" makes the currency EUR.
func extractSalary(text string) (salary, bool) {
	for _, re := range salaryPatterns {
		m := re.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		lo, err1 := parseAmount(text[m[2]:m[3]])
		hi, err2 := parseAmount(text[m[4]:m[5]])
		if err1 != nil || err2 != nil {
			continue
		}

		span := text[m[0]:m[1]]
		if strings.Contains(strings.ToLower(span), "k") {
			lo *= 1000
			hi *= 1000
		}
		currency := "USD"
		if strings.Contains(span, "€") {
			currency = "EUR"
		}
		return salary{min: lo, max: hi, currency: currency}, true
	}
	return salary{}, false
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

var locationLabel = regexp.MustCompile(`(?i)^(location:?|lieu:?)\s*`)

// cleanLocation collapses whitespace and drops a leading "Location:" or
// "Lieu:" label.
func cleanLocation(loc string) string {
	return locationLabel.ReplaceAllString(cleanText(loc), "")
}

var (
	remoteTerms = []string{"remote", "télétravail", "teletravail", "work from home", "wfh"}
	hybridTerms = []string{"hybrid", "hybride", "part-time remote"}
)

// classifyRemote labels a posting remote, hybrid or on-site from its title and
// description. Hybrid requires a remote mention as well.
func classifyRemote(title, description string) string {
	text := strings.ToLower(title + " " + description)
	if !containsAny(text, remoteTerms) {
		return model.RemoteTypeOnSite
	}
	if containsAny(text, hybridTerms) {
		return model.RemoteTypeHybrid
	}
	return model.RemoteTypeRemote
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// cleanText collapses runs of whitespace to one space and trims the ends.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
