package main

import (
	"flag"
	"io"
	"strings"
	"time"

	"polyglot/config"
	"polyglot/hotkey"
)

type options struct {
	logPath    string
	configPath string
	setup      bool
	doctor     bool
	test       bool
	version    bool
	crash      bool

	lang          string
	sourceLang    string
	device        string
	recognizer    string
	model         string
	format        string
	exportDir     string
	logLevel      string
	fallbackDelay time.Duration
	flushWindow   time.Duration
	clipboard     bool
	beep          bool
	hotkey        bool

	args []string
	set  map[string]bool
}

func parseFlags(args []string, errOut io.Writer) (*options, error) {
	fs := flag.NewFlagSet("polyglot", flag.ContinueOnError)
	fs.SetOutput(errOut)

	o := &options{set: make(map[string]bool)}
	fs.StringVar(&o.logPath, "logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	fs.StringVar(&o.configPath, "config", "", "config file (default: $POLYGLOT_CONFIG or $XDG_CONFIG_HOME/polyglot/config.yaml)")
	fs.BoolVar(&o.setup, "setup", false, "Select microphone device (otherwise uses system default)")
	fs.BoolVar(&o.doctor, "doctor", false, "Run system diagnostics and exit")
	fs.BoolVar(&o.test, "test", false, "Test mode (headless, stdin-driven); optional WAV file argument replaces the microphone")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")
	fs.BoolVar(&o.crash, "crash", false, "Trigger synthetic panic for testing crash logging")

	fs.StringVar(&o.lang, "lang", "", "Target language for translation (e.g. spanish, es, fr, zh)")
	fs.StringVar(&o.sourceLang, "source-lang", "", "Spoken language hint for the recognizer (e.g. en, german); auto detects it")
	fs.StringVar(&o.device, "device", "", "Use named microphone device")
	fs.StringVar(&o.recognizer, "recognizer", "", "Speech recognizer: placeholder, openai or groq")
	fs.StringVar(&o.model, "model", "", "Recognizer model override")
	fs.StringVar(&o.format, "format", "", "Export format: json or markdown")
	fs.StringVar(&o.exportDir, "export-dir", "", "Directory exports are written to")
	fs.StringVar(&o.logLevel, "loglevel", "", "Diagnostics log level: debug, info, warn or error")
	fs.DurationVar(&o.fallbackDelay, "fallback-delay", config.DefaultFallbackDelay, "Delay before the demo transcript appears when no microphone is available")
	fs.DurationVar(&o.flushWindow, "flush", config.DefaultFlushWindow, "Audio buffered before a chunk is sent for recognition")
	fs.BoolVar(&o.clipboard, "clipboard", false, "Also copy exports to the clipboard")
	fs.BoolVar(&o.beep, "beep", true, "Play audio cues")
	fs.BoolVar(&o.hotkey, "hotkey", true, "Register the global "+hotkey.Chord+" hotkey")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	o.args = fs.Args()
	return o, nil
}

// apply overrides cfg with every flag given explicitly on the command line.
// Switching recognizer re-reads the API key for the new provider.
func (o *options) apply(cfg *config.Config, env func(string) (string, bool)) error {
	if o.set["recognizer"] && o.recognizer != cfg.Recognizer {
		cfg.APIKey = ""
		if v, ok := env(strings.ToUpper(o.recognizer) + "_API_KEY"); ok {
			cfg.APIKey = strings.TrimSpace(v)
		}
	}
	strs := []struct {
		name   string
		value  string
		target *string
	}{
		{"lang", o.lang, &cfg.TargetLanguage},
		{"source-lang", o.sourceLang, &cfg.SourceLanguage},
		{"device", o.device, &cfg.Device},
		{"recognizer", o.recognizer, &cfg.Recognizer},
		{"model", o.model, &cfg.Model},
		{"format", o.format, &cfg.ExportFormat},
		{"export-dir", o.exportDir, &cfg.ExportDir},
		{"loglevel", o.logLevel, &cfg.LogLevel},
	}
	for _, s := range strs {
		if o.set[s.name] {
			*s.target = s.value
		}
	}
	if o.set["fallback-delay"] {
		cfg.FallbackDelay = o.fallbackDelay
	}
	if o.set["flush"] {
		cfg.FlushWindow = o.flushWindow
	}
	if o.set["clipboard"] {
		cfg.Clipboard = o.clipboard
	}
	if o.set["beep"] {
		cfg.Beep = o.beep
	}
	if o.set["hotkey"] {
		cfg.Hotkey = o.hotkey
	}
	return cfg.Validate()
}

// lookup wraps an environment lookup so -config wins over POLYGLOT_CONFIG.
func (o *options) lookup(env func(string) (string, bool)) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if key == "POLYGLOT_CONFIG" && o.configPath != "" {
			return o.configPath, true
		}
		return env(key)
	}
}
