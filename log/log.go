package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog        zerolog.Logger
	diagFile       *os.File
	transcriptFile *os.File
	logMu          sync.Mutex
	logReady       bool
	pid            int
	dir            string
	sessionID      string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absolute(flagPath)
	}

	// Priority 2: POLYGLOT_LOG_PATH environment variable
	if envPath := os.Getenv("POLYGLOT_LOG_PATH"); envPath != "" {
		return absolute(envPath)
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func absolute(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

// Init opens the diagnostics and transcript logs in Dir. level is a zerolog
// level name; empty means info.
func Init(level string) error {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return fmt.Errorf("log level %q: %w", level, err)
		}
		lvl = parsed
	}

	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	transcriptPath := filepath.Join(dir, "transcript_log.txt")
	transcriptFile, err = os.OpenFile(transcriptPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).Level(lvl).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

// OpenCrashLog opens crash_log.txt in Dir and writes a session header. The
// caller hands the file to debug.SetCrashOutput.
func OpenCrashLog() (*os.File, error) {
	f, err := os.OpenFile(filepath.Join(dir, "crash_log.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(f, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	return f, nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if transcriptFile != nil {
		transcriptFile.Close()
		transcriptFile = nil
	}
	logReady = false
}

// SetSession tags subsequent events with the given session id.
func SetSession(id string) {
	logMu.Lock()
	sessionID = id
	logMu.Unlock()
}

func event(e *zerolog.Event) *zerolog.Event {
	logMu.Lock()
	id := sessionID
	logMu.Unlock()
	if id != "" {
		e = e.Str("session", id)
	}
	return e
}

func Debug(msg string) {
	if logReady {
		diagLog.Debug().Msg(msg)
	}
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func SessionStart(source, targetLanguage string) {
	if !logReady {
		return
	}
	event(diagLog.Info()).
		Str("source", source).
		Str("target", targetLanguage).
		Msg("session_start")
}

func SessionEnd(segments int, duration string) {
	if !logReady {
		return
	}
	event(diagLog.Info()).
		Int("segments", segments).
		Str("duration", duration).
		Msg("session_end")
}

func StateChange(from, to string) {
	if !logReady {
		return
	}
	event(diagLog.Debug()).
		Str("from", from).
		Str("to", to).
		Msg("state")
}

func Fallback(err error) {
	if !logReady {
		return
	}
	event(diagLog.Warn()).Err(err).Msg("capture_fallback")
}

func Batch(source string, segments, total int) {
	if !logReady {
		return
	}
	event(diagLog.Info()).
		Str("source", source).
		Int("segments", segments).
		Int("total", total).
		Msg("batch")
}

func ProcessingError(source string, err error) {
	if !logReady {
		return
	}
	event(diagLog.Error()).Str("source", source).Err(err).Msg("processing_error")
}

func Export(name, target string, bytes int, digest string) {
	if !logReady {
		return
	}
	event(diagLog.Info()).
		Str("file", name).
		Str("target", target).
		Int("bytes", bytes).
		Str("blake3", digest).
		Msg("export")
}

func Reset(segments int) {
	if !logReady {
		return
	}
	event(diagLog.Info()).Int("cleared", segments).Msg("reset")
}

func LanguageChange(from, to string) {
	if !logReady {
		return
	}
	event(diagLog.Info()).Str("from", from).Str("to", to).Msg("language")
}

// TranscriptLine appends one original segment to transcript_log.txt.
func TranscriptLine(speaker, timestamp, text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\t%s\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, timestamp, speaker, text)
	transcriptFile.WriteString(line)
}
