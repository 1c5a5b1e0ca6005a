package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"polyglot/audio"
	"polyglot/clipboard"
	"polyglot/config"
	"polyglot/encoder"
	"polyglot/hotkey"
	"polyglot/transcriber"
	"polyglot/translate"
)

// ErrSkip marks a check that could not run in this environment. It does not
// fail the report.
var ErrSkip = errors.New("skipped")

type Check struct {
	Name string
	Run  func(ctx context.Context) (string, error)
}

type Options struct {
	Config config.Config
	Open   audio.Opener
	// Record is how long the microphone check listens.
	Record time.Duration
	// Diagnose reports on the global hotkey; nil uses hotkey.Diagnose.
	Diagnose func() (string, error)
	Out      io.Writer
}

// Run executes every check, prints a report and returns an exit code
// (0=all pass or skipped, 1=any fail).
func Run(ctx context.Context, opts Options) int {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	out := opts.Out

	fmt.Fprintln(out, "polyglot doctor - system diagnostics")
	fmt.Fprintln(out, "====================================")

	checks := Checks(opts)
	allPass := true
	for i, c := range checks {
		fmt.Fprintf(out, "\n[%d/%d] %s\n", i+1, len(checks), c.Name)
		msg, err := c.Run(ctx)
		switch {
		case errors.Is(err, ErrSkip):
			fmt.Fprintf(out, "  SKIP: %v\n", err)
		case err != nil:
			fmt.Fprintf(out, "  FAIL: %v\n", err)
			allPass = false
		default:
			fmt.Fprintf(out, "  PASS: %s\n", msg)
		}
	}

	fmt.Fprintln(out)
	if allPass {
		fmt.Fprintln(out, "All checks passed!")
		return 0
	}
	fmt.Fprintln(out, "Some checks failed. See details above.")
	return 1
}

// Checks returns the diagnostic checks in report order. The microphone
// check's capture is reused by the recognizer check.
func Checks(opts Options) []Check {
	if opts.Record <= 0 {
		opts.Record = 2 * time.Second
	}
	if opts.Diagnose == nil {
		opts.Diagnose = hotkey.Diagnose
	}
	var captured []byte
	return []Check{
		{"Microphone", func(ctx context.Context) (string, error) {
			pcm, msg, err := checkMicrophone(ctx, opts)
			captured = pcm
			return msg, err
		}},
		{"Speech recognizer", func(ctx context.Context) (string, error) {
			return checkRecognizer(ctx, opts.Config, captured)
		}},
		{"Translation", func(context.Context) (string, error) {
			return checkTranslation(opts.Config.TargetLanguage)
		}},
		{"Export directory", func(context.Context) (string, error) {
			return checkExportDir(opts.Config.ExportDir)
		}},
		{"Clipboard", func(context.Context) (string, error) {
			if !clipboard.Available() {
				return "", fmt.Errorf("%w: %v", ErrSkip, clipboard.ErrUnsupported)
			}
			return "clipboard utility found", nil
		}},
		{"Global hotkey", func(context.Context) (string, error) {
			if !opts.Config.Hotkey {
				return "", fmt.Errorf("%w: hotkey disabled in config", ErrSkip)
			}
			return opts.Diagnose()
		}},
	}
}

func checkMicrophone(ctx context.Context, opts Options) ([]byte, string, error) {
	if opts.Open == nil {
		return nil, "", fmt.Errorf("%w: no audio backend", ErrSkip)
	}
	actx, err := opts.Open()
	if err != nil {
		return nil, "", fmt.Errorf("cannot connect to audio (the app will use the demo transcript): %w", err)
	}
	defer actx.Close()

	devices, err := actx.Devices()
	if err != nil {
		return nil, "", fmt.Errorf("cannot list devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, "", errors.New("no capture devices found")
	}
	dev, err := audio.FindDevice(actx, opts.Config.Device)
	if err != nil {
		return nil, "", err
	}

	pcm, err := recordAudio(ctx, actx, dev, opts.Record)
	if err != nil {
		return nil, "", fmt.Errorf("recording error: %w", err)
	}
	if len(pcm) == 0 {
		return nil, "", errors.New("no audio captured")
	}
	name := "system default"
	if dev != nil {
		name = dev.Name
	}
	return pcm, fmt.Sprintf("%d device(s), captured %.1fs from %s (level %.3f)",
		len(devices), encoder.Duration(pcm).Seconds(), name, audio.Level(pcm)), nil
}

func recordAudio(ctx context.Context, actx audio.Context, device *audio.DeviceInfo, d time.Duration) ([]byte, error) {
	var pcmBuf []byte
	var bufMu sync.Mutex

	captureDevice, err := actx.NewCapture(device, audio.DefaultCaptureConfig())
	if err != nil {
		return nil, err
	}
	defer captureDevice.Close()

	captureDevice.SetCallback(func(data []byte, frameCount uint32) {
		bufMu.Lock()
		pcmBuf = append(pcmBuf, data...)
		bufMu.Unlock()
	})
	if err := captureDevice.Start(); err != nil {
		return nil, err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	captureDevice.Stop()
	captureDevice.ClearCallback()

	bufMu.Lock()
	defer bufMu.Unlock()
	return pcmBuf, nil
}

func checkRecognizer(ctx context.Context, cfg config.Config, pcm []byte) (string, error) {
	rec, err := transcriber.NewRecognizer(transcriber.RecognizerConfig{
		Kind:    cfg.Recognizer,
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
	if err != nil {
		return "", err
	}
	if _, ok := rec.(*transcriber.Placeholder); ok {
		return "placeholder recognizer (set GROQ_API_KEY or OPENAI_API_KEY for real transcripts)", nil
	}
	if len(pcm) == 0 {
		return "", fmt.Errorf("%w: %s configured but no audio to send", ErrSkip, rec.Name())
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	segs, err := rec.Recognize(ctx, transcriber.Chunk{PCM: pcm, StartedAt: time.Now(), Final: true})
	if err != nil {
		return "", fmt.Errorf("%s: %w", rec.Name(), err)
	}
	var parts []string
	for _, s := range segs {
		parts = append(parts, s.Text)
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		text = "(no speech detected)"
	}
	return fmt.Sprintf("%s answered: %s", rec.Name(), text), nil
}

func checkTranslation(target string) (string, error) {
	if _, ok := translate.Resolve(target); !ok {
		return "", fmt.Errorf("unknown target language %q", target)
	}
	name := translate.DisplayName(target)
	if !translate.New().Supports(target) {
		return "", fmt.Errorf("%w: no phrasebook for %s, text will pass through untranslated", ErrSkip, name)
	}
	const probe = "Welcome to our quarterly review meeting."
	return fmt.Sprintf("%s: %q", name, translate.New().Translate(probe, target)), nil
}

func checkExportDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, ".polyglot-doctor-*")
	if err != nil {
		return "", fmt.Errorf("%s is not writable: %w", dir, err)
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return dir + " is writable", nil
}
