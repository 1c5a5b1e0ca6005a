package config_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"polyglot/config"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}

func noFiles(string) ([]byte, error) { return nil, fs.ErrNotExist }

func TestLoaderDefaults(t *testing.T) {
	loader := config.Loader{Lookup: mapLookup(nil), ReadFile: noFiles}
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	assertEqual(t, config.DefaultTargetLanguage, cfg.TargetLanguage, "target language")
	assertEqual(t, "placeholder", cfg.Recognizer, "recognizer")
	assertEqual(t, config.DefaultLogLevel, cfg.LogLevel, "log level")
	assertEqual(t, config.DefaultExportDir, cfg.ExportDir, "export dir")
	assertEqual(t, "json", cfg.ExportFormat, "export format")
	assertBool(t, true, cfg.Beep, "beep")
	assertBool(t, true, cfg.Hotkey, "hotkey")
	assertBool(t, false, cfg.Clipboard, "clipboard")
	if cfg.FallbackDelay != config.DefaultFallbackDelay || cfg.FlushWindow != config.DefaultFlushWindow {
		t.Fatalf("unexpected timings: fallback=%s flush=%s", cfg.FallbackDelay, cfg.FlushWindow)
	}
}

func TestLoaderFileThenEnv(t *testing.T) {
	file := `
target_language: french
recognizer: openai
api_key: from-file
fallback_delay: 250ms
flush_window: 30s
export_format: markdown
beep: false
clipboard: true
log_level: debug
`
	env := map[string]string{
		"POLYGLOT_CONFIG":          "/etc/polyglot.yaml",
		"POLYGLOT_TARGET_LANGUAGE": "de",
		"POLYGLOT_FLUSH_WINDOW":    "20s",
		"POLYGLOT_HOTKEY":          "false",
	}
	var readPath string
	loader := config.Loader{
		Lookup: mapLookup(env),
		ReadFile: func(path string) ([]byte, error) {
			if path == "/etc/polyglot.yaml" {
				readPath = path
				return []byte(file), nil
			}
			return nil, fs.ErrNotExist
		},
	}

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	assertEqual(t, "/etc/polyglot.yaml", readPath, "config path")
	assertEqual(t, "de", cfg.TargetLanguage, "target language")
	assertEqual(t, "openai", cfg.Recognizer, "recognizer")
	assertEqual(t, "from-file", cfg.APIKey, "api key")
	assertEqual(t, "markdown", cfg.ExportFormat, "export format")
	assertEqual(t, "debug", cfg.LogLevel, "log level")
	assertBool(t, false, cfg.Beep, "beep")
	assertBool(t, true, cfg.Clipboard, "clipboard")
	assertBool(t, false, cfg.Hotkey, "hotkey")
	if cfg.FallbackDelay != 250*time.Millisecond {
		t.Fatalf("fallback delay = %s", cfg.FallbackDelay)
	}
	if cfg.FlushWindow != 20*time.Second {
		t.Fatalf("flush window = %s", cfg.FlushWindow)
	}
}

func TestLoaderPicksRecognizerFromKeys(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantKind string
		wantKey  string
	}{
		{"groq key", map[string]string{"GROQ_API_KEY": "gsk"}, "groq", "gsk"},
		{"openai key", map[string]string{"OPENAI_API_KEY": "sk"}, "openai", "sk"},
		{"both prefer groq", map[string]string{"OPENAI_API_KEY": "sk", "GROQ_API_KEY": "gsk"}, "groq", "gsk"},
		{"explicit recognizer", map[string]string{"POLYGLOT_RECOGNIZER": "openai", "OPENAI_API_KEY": "sk", "GROQ_API_KEY": "gsk"}, "openai", "sk"},
		{"explicit key wins", map[string]string{"POLYGLOT_RECOGNIZER": "groq", "POLYGLOT_API_KEY": "mine", "GROQ_API_KEY": "gsk"}, "groq", "mine"},
		{"none", map[string]string{}, "placeholder", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Loader{Lookup: mapLookup(tt.env), ReadFile: noFiles}.Load()
			if err != nil {
				t.Fatalf("Load() returned error: %v", err)
			}
			assertEqual(t, tt.wantKind, cfg.Recognizer, "recognizer")
			assertEqual(t, tt.wantKey, cfg.APIKey, "api key")
		})
	}
}

func TestLoaderDotenv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("GROQ_API_KEY=from-dotenv\nPOLYGLOT_TARGET_LANGUAGE=chinese\n"), 0600); err != nil {
		t.Fatal(err)
	}
	env := map[string]string{
		"POLYGLOT_CONFIG":          filepath.Join(dir, "missing.yaml"),
		"POLYGLOT_TARGET_LANGUAGE": "german",
	}
	cfg, err := config.Loader{Lookup: mapLookup(env), EnvFiles: []string{envFile}}.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	assertEqual(t, "german", cfg.TargetLanguage, "environment beats dotenv")
	assertEqual(t, "groq", cfg.Recognizer, "recognizer")
	assertEqual(t, "from-dotenv", cfg.APIKey, "api key")
	if _, ok := os.LookupEnv("GROQ_API_KEY"); ok && os.Getenv("GROQ_API_KEY") == "from-dotenv" {
		t.Fatal("dotenv values must not leak into the process environment")
	}
}

func TestLoaderErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
		want string
	}{
		{"bad language", map[string]string{"POLYGLOT_TARGET_LANGUAGE": "zz-not-a-lang!"}, "", "target language"},
		{"bad source language", map[string]string{"POLYGLOT_SOURCE_LANGUAGE": "zz-not-a-lang!"}, "", "source language"},
		{"bad duration", map[string]string{"POLYGLOT_FALLBACK_DELAY": "soon"}, "", "POLYGLOT_FALLBACK_DELAY"},
		{"bad bool", map[string]string{"POLYGLOT_BEEP": "maybe"}, "", "POLYGLOT_BEEP"},
		{"bad recognizer", map[string]string{"POLYGLOT_RECOGNIZER": "deepgram"}, "", "unknown recognizer"},
		{"missing key", map[string]string{"POLYGLOT_RECOGNIZER": "openai"}, "", "API key"},
		{"bad format", map[string]string{"POLYGLOT_EXPORT_FORMAT": "pdf"}, "", "export format"},
		{"bad level", map[string]string{"POLYGLOT_LOG_LEVEL": "loud"}, "", "log level"},
		{"tiny flush", map[string]string{"POLYGLOT_FLUSH_WINDOW": "10ms"}, "", "flush_window"},
		{"bad yaml", map[string]string{"POLYGLOT_CONFIG": "c.yaml"}, "target_language: [", "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			read := noFiles
			if tt.file != "" {
				read = func(string) ([]byte, error) { return []byte(tt.file), nil }
			}
			_, err := config.Loader{Lookup: mapLookup(tt.env), ReadFile: read, EnvFiles: []string{}}.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoaderSourceLanguage(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		file     string
		wantLang string
		wantCode string
	}{
		{"default detects", nil, "", "", ""},
		{"from file", nil, "source_language: german\n", "german", "de"},
		{"env beats file", map[string]string{"POLYGLOT_SOURCE_LANGUAGE": "fr-CA"}, "source_language: german\n", "fr-CA", "fr"},
		{"auto", map[string]string{"POLYGLOT_SOURCE_LANGUAGE": "Auto"}, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := map[string]string{"POLYGLOT_CONFIG": "c.yaml"}
			for k, v := range tt.env {
				env[k] = v
			}
			read := noFiles
			if tt.file != "" {
				read = func(string) ([]byte, error) { return []byte(tt.file), nil }
			}
			cfg, err := config.Loader{Lookup: mapLookup(env), ReadFile: read, EnvFiles: []string{}}.Load()
			if err != nil {
				t.Fatalf("Load() returned error: %v", err)
			}
			assertEqual(t, tt.wantLang, cfg.SourceLanguage, "source language")
			assertEqual(t, tt.wantCode, cfg.SourceLanguageCode(), "source language code")
		})
	}
}

func TestDefaultPath(t *testing.T) {
	got := config.DefaultPath(mapLookup(map[string]string{"XDG_CONFIG_HOME": "/xdg"}))
	assertEqual(t, filepath.Join("/xdg", "polyglot", "config.yaml"), got, "default path")
}

func assertEqual(t *testing.T, want, got, field string) {
	t.Helper()
	if want != got {
		t.Fatalf("%s: expected %q, got %q", field, want, got)
	}
}

func assertBool(t *testing.T, want, got bool, field string) {
	t.Helper()
	if want != got {
		t.Fatalf("%s: expected %v, got %v", field, want, got)
	}
}
