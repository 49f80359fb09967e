package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables that supply provider credentials when the APP_
// prefixed keys are unset.
const (
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
)

const envPrefix = "APP_"

// layer is one configuration source. Later layers override earlier ones.
type layer struct {
	name string
	load func(k *koanf.Koanf) error
}

// Load merges, from lowest to highest precedence:
//
//  1. built-in defaults
//  2. configs/base.yaml
//  3. configs/{profile}.yaml
//  4. APP_ environment variables, e.g. APP_LLM_PROVIDER=gemini
//  5. ANTHROPIC_API_KEY and GEMINI_API_KEY, for keys still empty
//
// Missing files are skipped. Load does not validate; call Validate.
func Load(profile string) (*Config, error) {
	layers := []layer{
		{"defaults", func(k *koanf.Koanf) error {
			return k.Load(confmap.Provider(defaults(), "."), nil)
		}},
		{"base config", yamlLayer("configs/base.yaml")},
	}

	if profile != "" {
		layers = append(layers, layer{
			fmt.Sprintf("profile config %q", profile),
			yamlLayer("configs/" + profile + ".yaml"),
		})
	}

	layers = append(layers,
		layer{"env vars", func(k *koanf.Koanf) error {
			return k.Load(env.Provider(envPrefix, ".", envKeyMapper(k.Keys())), nil)
		}},
		layer{"credentials", func(k *koanf.Koanf) error {
			return k.Load(confmap.Provider(credentials(k), "."), nil)
		}},
	)

	k := koanf.New(".")
	for _, l := range layers {
		if err := l.load(k); err != nil {
			return nil, fmt.Errorf("loading %s: %w", l.name, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

func yamlLayer(path string) func(*koanf.Koanf) error {
	return func(k *koanf.Koanf) error {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return k.Load(file.Provider(path), yaml.Parser())
	}
}

// envKeyMapper maps APP_LLM_STREAM_TIMEOUT to llm.stream_timeout. Keys that
// already exist are matched exactly so underscores inside a key survive;
// unknown variables split on every underscore.
func envKeyMapper(known []string) func(string) string {
	flatten := strings.NewReplacer(".", "_", "-", "_")

	byEnv := make(map[string]string, len(known))
	for _, key := range known {
		byEnv[strings.ToUpper(flatten.Replace(key))] = key
	}

	return func(s string) string {
		name := strings.TrimPrefix(s, envPrefix)
		if key, ok := byEnv[name]; ok {
			return key
		}

		return strings.ReplaceAll(strings.ToLower(name), "_", ".")
	}
}

// credentials fills provider API keys the earlier layers left empty from
// the variables each provider's own tooling reads.
func credentials(k *koanf.Koanf) map[string]any {
	out := map[string]any{}

	for key, envVar := range map[string]string{
		"llm.anthropic.api_key": EnvAnthropicAPIKey,
		"llm.gemini.api_key":    EnvGeminiAPIKey,
	} {
		if k.String(key) != "" {
			continue
		}

		if v := os.Getenv(envVar); v != "" {
			out[key] = v
		}
	}

	return out
}
