package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// secretFields are attribute and struct field names whose values never
// reach the logs. Provider keys arrive as api_key from config and as
// x-api-key from outbound request headers.
var secretFields = []string{
	"password", "secret", "token", "auth", "authorization", "bearer",
	"credential", "credentials", "cookie", "session",
	"apiKey", "apikey", "api_key", "APIKey", "x-api-key", "x-goog-api-key",
	"accessToken", "access_token", "refreshToken", "refresh_token",
	"privateKey", "private_key", "secretKey", "secret_key",
}

var secretPrefixes = []string{"secret", "private"}

// secretValues match credentials by shape, whatever the attribute is called.
var secretValues = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`), // JWT
	regexp.MustCompile(`(?i)^(bearer|basic)\s+.+$`),
	regexp.MustCompile(`^sk-ant-[A-Za-z0-9_-]+$`),  // Anthropic
	regexp.MustCompile(`^AIza[0-9A-Za-z_-]{35}$`), // Google / Gemini
}

// DefaultRedactOptions returns the masq options applied by every logger
// built through New.
func DefaultRedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(secretFields)+len(secretPrefixes)+len(secretValues))

	for _, name := range secretFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	for _, prefix := range secretPrefixes {
		opts = append(opts, masq.WithFieldPrefix(prefix))
	}

	for _, re := range secretValues {
		opts = append(opts, masq.WithRegex(re))
	}

	return opts
}

// NewReplaceAttr returns a slog ReplaceAttr that applies DefaultRedactOptions
// followed by extra.
func NewReplaceAttr(extra ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), extra...)...)
}
