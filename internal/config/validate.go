package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidator *validator.Validate

func init() {
	structValidator = validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML keys.
	structValidator.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

var messages = map[string]string{
	"required":         "%s is required",
	"required_without": "%s is required unless %s is set",
	"min":              "%s must be at least %s",
	"max":              "%s must be at most %s",
	"gt":               "%s must be greater than %s",
	"oneof":            "%s must be one of [%s]",
	"url":              "%s must be a valid URL",
}

// validateStruct runs the struct tags and returns the first failure as a
// readable error keyed by YAML path.
func validateStruct(cfg *Config) error {
	err := structValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fieldMessage(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func fieldMessage(e validator.FieldError) string {
	// Namespace is "Config.scraper.max_concurrent_requests"; drop the root.
	path := e.Namespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}

	msg, ok := messages[e.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid (%s)", path, e.Tag())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, path, e.Param())
	}
	return fmt.Sprintf(msg, path)
}
