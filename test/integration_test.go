//go:build integration

package test_test

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"polyglot/clipboard"
)

var testBinary string

func TestMain(m *testing.M) {
	testBinary = os.Getenv("POLYGLOT_TEST_BIN")
	if testBinary == "" {
		fmt.Fprintln(os.Stderr, "POLYGLOT_TEST_BIN not set; build with: go build -o /tmp/polyglot . && POLYGLOT_TEST_BIN=/tmp/polyglot go test -tags integration ./test")
		os.Exit(1)
	}

	if err := os.MkdirAll("data", 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create data dir: %v\n", err)
		os.Exit(1)
	}
	silencePath := filepath.Join("data", "silence.wav")
	if err := generateSilenceWAV(silencePath, 16000, 1.0); err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate silence.wav: %v\n", err)
		os.Exit(1)
	}
	code := m.Run()
	os.Remove(silencePath)
	os.Exit(code)
}

func generateSilenceWAV(path string, sampleRate int, durationS float64) error {
	const headerSize = 44
	numSamples := int(float64(sampleRate) * durationS)
	dataSize := numSamples * 2

	buf := make([]byte, headerSize+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(headerSize-8+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)  // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16) // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	return os.WriteFile(path, buf, 0644)
}

func cmds(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

type run struct {
	logDir    string
	exportDir string
	out       string
}

func runPolyglot(t *testing.T, stdin string, args ...string) run {
	t.Helper()
	r := run{logDir: t.TempDir(), exportDir: t.TempDir()}
	cmdArgs := append([]string{"-logpath", r.logDir, "-export-dir", r.exportDir, "-fallback-delay", "0s", "-test"}, args...)

	cmd := exec.Command(testBinary, cmdArgs...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = append(os.Environ(), "POLYGLOT_CONFIG=/nonexistent")

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("polyglot exited with error: %v\noutput: %s", err, out)
	}
	r.out = string(out)
	return r
}

func readLog(t *testing.T, logDir, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("failed to read %s: %v", filename, err)
	}
	return string(data)
}

func requireGroqKey(t *testing.T) {
	t.Helper()
	if os.Getenv("GROQ_API_KEY") == "" {
		t.Skip("GROQ_API_KEY not set")
	}
}

func TestFallbackSessionExport(t *testing.T) {
	r := runPolyglot(t, cmds("TOGGLE", "WAIT", "TOGGLE", "EXPORT", "QUIT"), "-recognizer", "placeholder")

	matches, _ := filepath.Glob(filepath.Join(r.exportDir, "meeting-transcript-*.json"))
	if len(matches) != 1 {
		t.Fatalf("export files = %v\noutput: %s", matches, r.out)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Session struct {
			Duration string `json:"duration"`
			Summary  struct {
				WordCount    int `json:"wordCount"`
				SpeakerCount int `json:"speakerCount"`
			} `json:"summary"`
		} `json:"session"`
		Original   []map[string]string `json:"original"`
		Translated []map[string]string `json:"translated"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if len(doc.Original) != 3 || len(doc.Translated) != 3 {
		t.Fatalf("streams = %d/%d, want 3/3", len(doc.Original), len(doc.Translated))
	}
	if doc.Session.Summary.SpeakerCount != 3 {
		t.Errorf("speakers = %d", doc.Session.Summary.SpeakerCount)
	}

	diag := readLog(t, r.logDir, "diagnostics_log.txt")
	for _, want := range []string{"capture_fallback", "session_start", "export"} {
		if !strings.Contains(diag, want) {
			t.Errorf("diagnostics missing %q", want)
		}
	}
	if lines := strings.Count(readLog(t, r.logDir, "transcript_log.txt"), "\n"); lines != 3 {
		t.Errorf("transcript log has %d lines, want 3", lines)
	}
}

func TestMarkdownExport(t *testing.T) {
	r := runPolyglot(t, cmds("TOGGLE", "WAIT", "TOGGLE", "EXPORT", "QUIT"), "-format", "markdown", "-lang", "de")
	matches, _ := filepath.Glob(filepath.Join(r.exportDir, "meeting-transcript-*.md"))
	if len(matches) != 1 {
		t.Fatalf("export files = %v", matches)
	}
	data, _ := os.ReadFile(matches[0])
	if !strings.Contains(string(data), "## Translated") {
		t.Errorf("markdown export missing sections:\n%s", data)
	}
}

func TestLiveCaptureFromWAV(t *testing.T) {
	r := runPolyglot(t, cmds("TOGGLE", "WAIT_AUDIO", "TOGGLE", "DUMP", "QUIT"),
		"-recognizer", "placeholder", "data/silence.wav")
	if !strings.Contains(r.out, "Meeting in progress...") {
		t.Errorf("expected placeholder segment:\n%s", r.out)
	}
}

func TestGroqTranscription(t *testing.T) {
	requireGroqKey(t)
	r := runPolyglot(t, cmds("TOGGLE", "WAIT_AUDIO", "TOGGLE", "DUMP", "QUIT"), "-recognizer", "groq", "data/silence.wav")
	diag := readLog(t, r.logDir, "diagnostics_log.txt")
	if strings.Contains(diag, "processing_error") {
		t.Errorf("recognizer failed:\n%s", diag)
	}
}

func TestClipboardExport(t *testing.T) {
	if !clipboard.Available() {
		t.Skip("clipboard not available")
	}
	_ = runPolyglot(t, cmds("TOGGLE", "WAIT", "TOGGLE", "EXPORT", "QUIT"), "-clipboard")

	clip, err := clipboard.Read()
	if err != nil {
		t.Skip("clipboard not available")
	}
	if !strings.Contains(clip, `"translated"`) {
		t.Errorf("clipboard does not hold the export: %q", clip)
	}
}
