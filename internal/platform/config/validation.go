package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidConfig wraps every struct-level validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingCredential is returned when the selected generation provider
	// has no API key.
	ErrMissingCredential = errors.New("missing generation credential")
)

// validate reports fields by their koanf keys so messages match the YAML
// and the APP_* environment variables.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})

	return v
}

// Validate reports every invalid field at once, plus a missing credential
// for the selected provider. The service must not start on error.
func (c *Config) Validate() error {
	var fieldErr error
	if err := validate.Struct(c); err != nil {
		fieldErr = describe(err)
	}

	var credErr error
	if c.LLM.APIKey() == "" {
		credErr = fmt.Errorf("%w: set llm.%s.api_key or %s",
			ErrMissingCredential, c.LLM.Provider, credentialEnv(c.LLM.Provider))
	}

	return errors.Join(fieldErr, credErr)
}

func credentialEnv(provider string) string {
	if provider == ProviderGemini {
		return EnvGeminiAPIKey
	}

	return EnvAnthropicAPIKey
}

func describe(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}

	problems := make([]string, len(fields))
	for i, fe := range fields {
		problems[i] = problem(fe)
	}

	return fmt.Errorf("%w:\n  %s", ErrInvalidConfig, strings.Join(problems, "\n  "))
}

func problem(fe validator.FieldError) string {
	key := configKey(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", key, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, fe.Param())
	case "url":
		return key + " must be a valid URL"
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", key, siblingKey(key, fe.Param()))
	default:
		return fmt.Sprintf("%s failed %q", key, fe.Tag())
	}
}

// configKey drops the root type from a validator namespace:
// "Config.client.retry.max_attempts" becomes "client.retry.max_attempts".
func configKey(namespace string) string {
	_, key, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return key
}

// siblingKey names the Go field param next to key, e.g. InitialInterval
// beside client.retry.max_interval is client.retry.initial_interval.
func siblingKey(key, param string) string {
	var b strings.Builder

	for i, r := range param {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}

			r = unicode.ToLower(r)
		}

		b.WriteRune(r)
	}

	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[:i+1] + b.String()
	}

	return b.String()
}
