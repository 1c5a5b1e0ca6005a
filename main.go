package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"polyglot/audio"
	"polyglot/beep"
	"polyglot/config"
	"polyglot/doctor"
	"polyglot/export"
	"polyglot/hotkey"
	"polyglot/log"
	"polyglot/recorder"
	"polyglot/session"
	"polyglot/transcriber"
)

var version = "dev"

const (
	shutdownTimeout = 5 * time.Second
	doctorRecord    = 2 * time.Second
)

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func run() int {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logPath, err := log.ResolveDir(o.logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		return 1
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	if crashFile, err := log.OpenCrashLog(); err == nil {
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if o.crash {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}
	if o.version {
		fmt.Printf("polyglot %s\n", version)
		return 0
	}

	cfg, err := config.Loader{Lookup: o.lookup(os.LookupEnv)}.Load()
	if err == nil {
		err = o.apply(&cfg, os.LookupEnv)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := log.Init(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if o.doctor {
		return doctor.Run(ctx, doctor.Options{Config: cfg, Open: audio.NewContext, Record: doctorRecord})
	}
	if o.test {
		wav := ""
		if len(o.args) > 0 {
			wav = o.args[0]
		}
		return runTestMode(ctx, cfg, wav, os.Stdin, os.Stdout)
	}

	if o.setup && cfg.Device == "" {
		name, err := pickDevice()
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
		}
		cfg.Device = name
	}
	return runInteractive(ctx, cfg)
}

func pickDevice() (string, error) {
	actx, err := audio.NewContext()
	if err != nil {
		return "", err
	}
	defer actx.Close()
	dev, err := audio.SelectDevice(actx)
	if err != nil || dev == nil {
		return "", err
	}
	return dev.Name, nil
}

// newSession assembles the recording pipeline from cfg. open is the
// capture backend; the headless driver passes a fake one.
func newSession(cfg config.Config, open audio.Opener, cues session.Cues, onChange func()) (*session.Session, error) {
	rec, err := transcriber.NewRecognizer(transcriber.RecognizerConfig{
		Kind:     cfg.Recognizer,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
		Language: cfg.SourceLanguageCode(),
	})
	if err != nil {
		return nil, err
	}
	live := transcriber.NewLiveSource(transcriber.LiveConfig{
		Recognizer:  rec,
		FlushWindow: cfg.FlushWindow,
		OnError:     func(err error) { log.ProcessingError(rec.Name(), err) },
	})
	format, err := export.ParseFormat(cfg.ExportFormat)
	if err != nil {
		return nil, err
	}
	return session.New(session.Config{
		Recorder: recorder.Config{
			Open:       open,
			DeviceName: cfg.Device,
			Live:       live,
			Fallback:   transcriber.NewFallback(cfg.FallbackDelay),
		},
		Deliverer:      deliverer(cfg),
		Format:         format,
		TargetLanguage: cfg.TargetLanguage,
		Cues:           cues,
		OnChange:       onChange,
	})
}

func deliverer(cfg config.Config) export.Deliverer {
	file := export.FileDeliverer{Dir: cfg.ExportDir}
	if cfg.Clipboard {
		return export.Multi(file, export.ClipboardDeliverer{})
	}
	return file
}

func runInteractive(ctx context.Context, cfg config.Config) int {
	var cues session.Cues
	if cfg.Beep {
		go beep.Init()
		cues = beep.Cues{}
	} else {
		beep.Disable()
	}

	sess, err := newSession(cfg, audio.NewContext, cues, func() { tuiSend(refreshMsg{}) })
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		sess.Close(closeCtx)
	}()

	hint := ""
	if cfg.Hotkey {
		hk := hotkey.New()
		if err := hk.Register(); err != nil {
			log.Warnf("hotkey register error: %v", err)
			hint = "hotkey unavailable: " + err.Error()
		} else {
			defer hk.Unregister()
			go func() {
				for range hotkey.Toggles(ctx, hk, hotkey.DefaultDebounce) {
					go sess.ToggleRecording(ctx)
				}
			}()
		}
	}

	p := tea.NewProgram(newTUIModel(ctx, sess, cfg, hint), tea.WithAltScreen(), tea.WithContext(ctx))
	tuiMu.Lock()
	tuiProgram = p
	tuiMu.Unlock()

	go sess.Run(ctx)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Errorf("TUI error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
