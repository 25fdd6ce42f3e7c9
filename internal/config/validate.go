package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their config key rather than the Go field name
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks the configuration against its struct tags and returns a
// single error listing every offending key.
func Validate(cfg *Config) error {
	err := getValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("invalid config: %w", err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		key := configKey(e.Namespace())
		msg := fmt.Sprintf("%s: %s", key, describe(e))
		if hint, ok := hints[key]; ok {
			msg += " (" + hint + ")"
		}
		messages = append(messages, msg)
	}
	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}

// hints tell the operator where a failing key can be supplied
var hints = map[string]string{
	"provider.client_secret": "pass --client-secret, set " + EnvPrefix + "_PROVIDER_CLIENT_SECRET or add it to a .env file",
}

// configKey turns "Config.provider.client_id" into "provider.client_id".
func configKey(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of " + e.Param()
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	default:
		return "failed " + e.Tag()
	}
}
