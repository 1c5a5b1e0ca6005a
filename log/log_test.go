package log

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir(""); SetSession("") })
	return tmp
}

func readLog(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/mylog")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/mylog" {
		t.Errorf("got %q, want /tmp/mylog", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(wd, "logs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("POLYGLOT_LOG_PATH", "/tmp/polyglot-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/polyglot-env-log" {
		t.Errorf("got %q, want /tmp/polyglot-env-log", got)
	}
}

func TestResolveDirFlagBeatsEnv(t *testing.T) {
	t.Setenv("POLYGLOT_LOG_PATH", "/tmp/from-env")
	got, err := ResolveDir("/tmp/from-flag")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/from-flag" {
		t.Errorf("got %q, want /tmp/from-flag", got)
	}
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("POLYGLOT_LOG_PATH", "")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "polyglot") {
		t.Errorf("default dir %q does not mention polyglot", got)
	}
}

func TestInitCreatesFiles(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(""); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"diagnostics_log.txt", "transcript_log.txt"} {
		path := filepath.Join(tmp, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}
}

func TestInitBadLevel(t *testing.T) {
	setupLogDir(t)
	if err := Init("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestTranscriptLine(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(""); err != nil {
		t.Fatal(err)
	}

	TranscriptLine("Speaker 2", "09:00:45", "Thank you for joining us today.")

	line := readLog(t, tmp, "transcript_log.txt")
	for _, want := range []string{"Speaker 2", "09:00:45", "Thank you for joining us today."} {
		if !strings.Contains(line, want) {
			t.Errorf("transcript_log.txt missing %q, got: %q", want, line)
		}
	}
	if strings.Count(line, "\t") != 4 {
		t.Errorf("expected 5 tab-separated fields, got: %q", line)
	}
}

func TestEventsCarrySession(t *testing.T) {
	tmp := setupLogDir(t)
	if err := Init("debug"); err != nil {
		t.Fatal(err)
	}

	SetSession("abc-123")
	Fallback(errors.New("no microphone"))
	Batch("fallback", 3, 7)
	StateChange("acquiring", "fallback")

	out := readLog(t, tmp, "diagnostics_log.txt")
	for _, want := range []string{"capture_fallback", "no microphone", "session=abc-123", "segments=3", "total=7", "to=fallback"} {
		if !strings.Contains(out, want) {
			t.Errorf("diagnostics log missing %q:\n%s", want, out)
		}
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	tmp := setupLogDir(t)
	if err := Init("info"); err != nil {
		t.Fatal(err)
	}
	StateChange("idle", "acquiring")
	Info("visible")
	out := readLog(t, tmp, "diagnostics_log.txt")
	if strings.Contains(out, "acquiring") {
		t.Errorf("debug event written at info level:\n%s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("info event missing:\n%s", out)
	}
}

func TestNoopBeforeInit(t *testing.T) {
	setupLogDir(t)
	Info("nothing")
	TranscriptLine("a", "b", "c")
	Export("x.json", "file", 10, "d")
}

func TestOpenCrashLog(t *testing.T) {
	tmp := setupLogDir(t)
	f, err := OpenCrashLog()
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	if !strings.Contains(readLog(t, tmp, "crash_log.txt"), "=== Session") {
		t.Error("crash log header missing")
	}
}

func TestCloseIdempotent(t *testing.T) {
	setupLogDir(t)

	if err := Init(""); err != nil {
		t.Fatal(err)
	}
	Close()
	Close() // should not panic
}
