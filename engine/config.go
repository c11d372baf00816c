package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries engine settings loaded from a YAML file. Zero fields leave
// the corresponding engine setting untouched.
//
//	debug: true
//	search_mode: static
//	error_texts:
//	  not_found: "nothing here"
//	  internal_error: "something broke"
type Config struct {
	// Debug toggles debug mode. Absent means keep the current setting.
	Debug *bool `yaml:"debug"`

	// SearchMode selects the route table strategy: "dynamic" or "static".
	// Empty means keep the current mode. Applying a mode preserves
	// already-registered routes.
	SearchMode string `yaml:"search_mode"`

	// ErrorTexts overrides response bodies per error code, keyed by the
	// code names malformed_body, malformed_query, malformed_cookie,
	// not_found, unsupported_media_type and internal_error.
	ErrorTexts map[string]string `yaml:"error_texts"`
}

// LoadConfig reads and decodes a YAML config file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engine: read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("engine: parse config: %w", err)
	}

	return &cfg, nil
}

// ApplyConfig applies a loaded config to the engine. Setup phase only.
// Unknown search modes and error-code names are rejected before anything is
// applied.
func (e *Engine) ApplyConfig(cfg *Config) error {
	var mode SearchMode
	switch cfg.SearchMode {
	case "", "dynamic":
		mode = SearchDynamic
	case "static":
		mode = SearchStatic
	default:
		return fmt.Errorf("engine: unknown search mode %q", cfg.SearchMode)
	}

	codes := make(map[ErrorCode]string, len(cfg.ErrorTexts))
	for name, text := range cfg.ErrorTexts {
		code, ok := errorCodeNames[name]
		if !ok {
			return fmt.Errorf("engine: unknown error code %q", name)
		}
		codes[code] = text
	}

	if cfg.Debug != nil {
		e.debug = *cfg.Debug
	}

	if cfg.SearchMode != "" && mode != e.table.mode() {
		e.SetSearchMode(mode, true)
	}

	for code, text := range codes {
		e.errorTexts[code] = text
	}

	return nil
}
