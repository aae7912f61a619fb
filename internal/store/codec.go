package store

import (
	"encoding/json"
	"fmt"

	"github.com/amishk599/jobpipe/internal/model"
)

// jobColumns is the column order shared by inserts and selects in every engine.
const jobColumns = `id, external_id, title, company, location, description, url,
	source_platform, salary_min, salary_max, salary_currency,
	job_type, remote_type, experience_level, required_skills,
	preferred_skills, requirements, posted_date, scraped_date,
	deadline, status, raw_data, normalized_data`

// jsonFields holds the JSON-encoded collection columns of a job row.
type jsonFields struct {
	requiredSkills  []byte
	preferredSkills []byte
	rawData         []byte
	normalizedData  []byte
}

func encodeJSONFields(job model.Job) (jsonFields, error) {
	var f jsonFields
	var err error
	enc := func(v any, dst *[]byte, name string) {
		if err != nil {
			return
		}
		var b []byte
		b, err = json.Marshal(v)
		if err != nil {
			err = fmt.Errorf("encoding %s for %s: %w", name, job.ExternalID, err)
			return
		}
		*dst = b
	}
	enc(nonNil(job.RequiredSkills), &f.requiredSkills, "required_skills")
	enc(nonNil(job.PreferredSkills), &f.preferredSkills, "preferred_skills")
	enc(job.RawData, &f.rawData, "raw_data")
	enc(job.NormalizedData, &f.normalizedData, "normalized_data")
	return f, err
}

func decodeJSONFields(job *model.Job, f jsonFields) error {
	dec := func(src []byte, dst any, name string) error {
		if len(src) == 0 {
			return nil
		}
		if err := json.Unmarshal(src, dst); err != nil {
			return fmt.Errorf("decoding %s for %s: %w", name, job.ExternalID, err)
		}
		return nil
	}
	if err := dec(f.requiredSkills, &job.RequiredSkills, "required_skills"); err != nil {
		return err
	}
	if err := dec(f.preferredSkills, &job.PreferredSkills, "preferred_skills"); err != nil {
		return err
	}
	if err := dec(f.rawData, &job.RawData, "raw_data"); err != nil {
		return err
	}
	return dec(f.normalizedData, &job.NormalizedData, "normalized_data")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func queryLimit(q model.JobQuery) int {
	if q.Limit <= 0 {
		return model.DefaultJobQueryLimit
	}
	return q.Limit
}
