package config

import (
	"fmt"
	"strings"
	"time"

	"polyglot/export"
	"polyglot/translate"
)

const (
	DefaultTargetLanguage = "spanish"
	DefaultLogLevel       = "info"
	DefaultExportDir      = "."
	DefaultFallbackDelay  = time.Second
	DefaultFlushWindow    = 15 * time.Second
)

// Config is the merged result of defaults, the config file, dotenv files,
// the environment and command-line flags.
type Config struct {
	TargetLanguage string
	SourceLanguage string // spoken language hint for the recognizer; empty or "auto" detects it
	Device         string
	Recognizer     string // placeholder|openai|groq; empty picks one from the available API keys
	Model          string
	BaseURL        string
	APIKey         string
	FallbackDelay  time.Duration
	FlushWindow    time.Duration
	ExportDir      string
	ExportFormat   string
	Clipboard      bool
	Beep           bool
	Hotkey         bool
	LogLevel       string
}

func Defaults() Config {
	return Config{
		TargetLanguage: DefaultTargetLanguage,
		FallbackDelay:  DefaultFallbackDelay,
		FlushWindow:    DefaultFlushWindow,
		ExportDir:      DefaultExportDir,
		ExportFormat:   string(export.JSON),
		Beep:           true,
		Hotkey:         true,
		LogLevel:       DefaultLogLevel,
	}
}

// Validate applies defaults and rejects values the rest of the program
// cannot use.
func (c *Config) Validate() error {
	if c.TargetLanguage == "" {
		c.TargetLanguage = DefaultTargetLanguage
	}
	if _, ok := translate.Resolve(c.TargetLanguage); !ok {
		return fmt.Errorf("config: unknown target language %q", c.TargetLanguage)
	}
	if strings.EqualFold(strings.TrimSpace(c.SourceLanguage), "auto") {
		c.SourceLanguage = ""
	}
	if c.SourceLanguage != "" {
		if _, ok := translate.Resolve(c.SourceLanguage); !ok {
			return fmt.Errorf("config: unknown source language %q", c.SourceLanguage)
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	if c.ExportDir == "" {
		c.ExportDir = DefaultExportDir
	}
	if _, err := export.ParseFormat(c.ExportFormat); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Recognizer {
	case "", "placeholder":
		c.Recognizer = "placeholder"
	case "openai", "groq":
		if c.APIKey == "" {
			return fmt.Errorf("config: recognizer %s needs an API key", c.Recognizer)
		}
	default:
		return fmt.Errorf("config: unknown recognizer %q (use placeholder, openai or groq)", c.Recognizer)
	}
	if c.FallbackDelay < 0 {
		return fmt.Errorf("config: fallback_delay must be >= 0, got %s", c.FallbackDelay)
	}
	if c.FlushWindow <= 0 {
		c.FlushWindow = DefaultFlushWindow
	} else if c.FlushWindow < time.Second {
		return fmt.Errorf("config: flush_window must be at least 1s, got %s", c.FlushWindow)
	}
	return nil
}

// SourceLanguageCode is the ISO 639-1 code of SourceLanguage, or "" when
// the recognizer should detect the language itself.
func (c Config) SourceLanguageCode() string {
	base, ok := translate.Resolve(c.SourceLanguage)
	if !ok {
		return ""
	}
	return base.String()
}
