package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader builds a Config from, in increasing priority: defaults, the YAML
// config file, dotenv files and the process environment. Tests override
// Lookup and ReadFile to inject deterministic inputs.
type Loader struct {
	Lookup   func(string) (string, bool)
	ReadFile func(string) ([]byte, error)
	// EnvFiles are dotenv files whose values are consulted after the real
	// environment. Missing files are skipped. Nil means ".env".
	EnvFiles []string
}

type fileConfig struct {
	TargetLanguage string         `yaml:"target_language"`
	SourceLanguage string         `yaml:"source_language"`
	Device         string         `yaml:"device"`
	Recognizer     string         `yaml:"recognizer"`
	Model          string         `yaml:"model"`
	BaseURL        string         `yaml:"base_url"`
	APIKey         string         `yaml:"api_key"`
	FallbackDelay  *time.Duration `yaml:"fallback_delay"`
	FlushWindow    *time.Duration `yaml:"flush_window"`
	ExportDir      string         `yaml:"export_dir"`
	ExportFormat   string         `yaml:"export_format"`
	Clipboard      *bool          `yaml:"clipboard"`
	Beep           *bool          `yaml:"beep"`
	Hotkey         *bool          `yaml:"hotkey"`
	LogLevel       string         `yaml:"log_level"`
}

func (l Loader) Load() (Config, error) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}
	if l.ReadFile == nil {
		l.ReadFile = os.ReadFile
	}
	if l.EnvFiles == nil {
		l.EnvFiles = []string{".env"}
	}

	dotenv, err := l.readEnvFiles()
	if err != nil {
		return Config{}, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := l.Lookup(key); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	cfg := Defaults()
	if path := l.path(lookup); path != "" {
		if err := l.applyFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	overrideString(lookup, "POLYGLOT_TARGET_LANGUAGE", &cfg.TargetLanguage)
	overrideString(lookup, "POLYGLOT_SOURCE_LANGUAGE", &cfg.SourceLanguage)
	overrideString(lookup, "POLYGLOT_DEVICE", &cfg.Device)
	overrideString(lookup, "POLYGLOT_RECOGNIZER", &cfg.Recognizer)
	overrideString(lookup, "POLYGLOT_MODEL", &cfg.Model)
	overrideString(lookup, "POLYGLOT_BASE_URL", &cfg.BaseURL)
	overrideString(lookup, "POLYGLOT_API_KEY", &cfg.APIKey)
	overrideString(lookup, "POLYGLOT_EXPORT_DIR", &cfg.ExportDir)
	overrideString(lookup, "POLYGLOT_EXPORT_FORMAT", &cfg.ExportFormat)
	overrideString(lookup, "POLYGLOT_LOG_LEVEL", &cfg.LogLevel)
	for key, target := range map[string]*time.Duration{
		"POLYGLOT_FALLBACK_DELAY": &cfg.FallbackDelay,
		"POLYGLOT_FLUSH_WINDOW":   &cfg.FlushWindow,
	} {
		if err := overrideDuration(lookup, key, target); err != nil {
			return Config{}, err
		}
	}
	for key, target := range map[string]*bool{
		"POLYGLOT_CLIPBOARD": &cfg.Clipboard,
		"POLYGLOT_BEEP":      &cfg.Beep,
		"POLYGLOT_HOTKEY":    &cfg.Hotkey,
	} {
		if err := overrideBool(lookup, key, target); err != nil {
			return Config{}, err
		}
	}
	resolveAPIKey(lookup, &cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// path returns POLYGLOT_CONFIG or the default config file location.
func (l Loader) path(lookup func(string) (string, bool)) string {
	if p, ok := lookup("POLYGLOT_CONFIG"); ok {
		return strings.TrimSpace(p)
	}
	return DefaultPath(lookup)
}

// DefaultPath is $XDG_CONFIG_HOME/polyglot/config.yaml, falling back to
// ~/.config.
func DefaultPath(lookup func(string) (string, bool)) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if xdg, ok := lookup("XDG_CONFIG_HOME"); ok && xdg != "" {
		return filepath.Join(xdg, "polyglot", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "polyglot", "config.yaml")
}

func (l Loader) applyFile(path string, cfg *Config) error {
	data, err := l.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	setString(&cfg.TargetLanguage, fc.TargetLanguage)
	setString(&cfg.SourceLanguage, fc.SourceLanguage)
	setString(&cfg.Device, fc.Device)
	setString(&cfg.Recognizer, fc.Recognizer)
	setString(&cfg.Model, fc.Model)
	setString(&cfg.BaseURL, fc.BaseURL)
	setString(&cfg.APIKey, fc.APIKey)
	setString(&cfg.ExportDir, fc.ExportDir)
	setString(&cfg.ExportFormat, fc.ExportFormat)
	setString(&cfg.LogLevel, fc.LogLevel)
	if fc.FallbackDelay != nil {
		cfg.FallbackDelay = *fc.FallbackDelay
	}
	if fc.FlushWindow != nil {
		cfg.FlushWindow = *fc.FlushWindow
	}
	if fc.Clipboard != nil {
		cfg.Clipboard = *fc.Clipboard
	}
	if fc.Beep != nil {
		cfg.Beep = *fc.Beep
	}
	if fc.Hotkey != nil {
		cfg.Hotkey = *fc.Hotkey
	}
	return nil
}

func (l Loader) readEnvFiles() (map[string]string, error) {
	out := map[string]string{}
	for _, name := range l.EnvFiles {
		data, err := l.ReadFile(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", name, err)
		}
		vals, err := godotenv.UnmarshalBytes(data)
		if err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", name, err)
		}
		for k, v := range vals {
			if _, seen := out[k]; !seen {
				out[k] = v
			}
		}
	}
	return out, nil
}

// resolveAPIKey fills APIKey from the provider's conventional variable and,
// when no recognizer was chosen, picks one by which key is present.
func resolveAPIKey(lookup func(string) (string, bool), cfg *Config) {
	keyFor := map[string]string{"groq": "GROQ_API_KEY", "openai": "OPENAI_API_KEY"}
	if cfg.Recognizer == "" {
		for _, name := range []string{"groq", "openai"} {
			if v, ok := lookup(keyFor[name]); ok && strings.TrimSpace(v) != "" {
				cfg.Recognizer = name
				break
			}
		}
	}
	if env, ok := keyFor[cfg.Recognizer]; ok && cfg.APIKey == "" {
		overrideString(lookup, env, &cfg.APIKey)
	}
}

func setString(target *string, v string) {
	if strings.TrimSpace(v) != "" {
		*target = strings.TrimSpace(v)
	}
}

func overrideString(lookup func(string) (string, bool), key string, target *string) {
	if lookup == nil || target == nil {
		return
	}
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func overrideDuration(lookup func(string) (string, bool), key string, target *time.Duration) error {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}
	*target = d
	return nil
}

func overrideBool(lookup func(string) (string, bool), key string, target *bool) error {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}
	*target = b
	return nil
}
