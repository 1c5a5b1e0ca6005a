package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"polyglot/transcript"
)

var exportTime = time.Date(2026, 3, 4, 23, 30, 5, 123_000_000, time.FixedZone("PST", -8*3600))

func TestBuildEmpty(t *testing.T) {
	s := Build(nil, nil, "00:00", transcript.Summary{}, exportTime)
	data, err := Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	want := `{
  "session": {
    "duration": "00:00",
    "timestamp": "2026-03-05T07:30:05.123Z",
    "summary": {
      "wordCount": 0,
      "speakerCount": 0,
      "avgWords": 0
    }
  },
  "original": [],
  "translated": []
}`
	if string(data) != want {
		t.Errorf("got:\n%s\nwant:\n%s", data, want)
	}
}

func TestBuildSummaryRoundTrip(t *testing.T) {
	orig := []transcript.Segment{
		{Speaker: "S1", Timestamp: "10:00:00", Text: "one two three four five"},
		{Speaker: "S2", Timestamp: "10:00:05", Text: "one two three four"},
		{Speaker: "S1", Timestamp: "10:00:09", Text: "one two three"},
	}
	s := Build(orig, orig, "01:02", transcript.Summarize(orig), exportTime)
	data, err := Marshal(s)
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Session struct {
			Duration string
			Summary  struct {
				WordCount    int     `json:"wordCount"`
				SpeakerCount int     `json:"speakerCount"`
				AvgWords     float64 `json:"avgWords"`
			}
		}
		Original []map[string]string
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	sum := doc.Session.Summary
	if sum.WordCount != 12 || sum.SpeakerCount != 2 || sum.AvgWords != 6.0 {
		t.Errorf("summary = %+v, want 12/2/6.0", sum)
	}
	if doc.Session.Duration != "01:02" {
		t.Errorf("duration = %q", doc.Session.Duration)
	}
	if len(doc.Original) != 3 || doc.Original[1]["speaker"] != "S2" || doc.Original[2]["timestamp"] != "10:00:09" {
		t.Errorf("original = %v", doc.Original)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{JSON, "meeting-transcript-2026-03-05.json"},
		{Markdown, "meeting-transcript-2026-03-05.md"},
	}
	for _, tt := range tests {
		if got := FileName(exportTime, tt.format); got != tt.want {
			t.Errorf("FileName(%s) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": JSON, "json": JSON, "md": Markdown, "markdown": Markdown} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for pdf")
	}
}

func TestEncodeDigest(t *testing.T) {
	s := Build(nil, nil, "00:00", transcript.Summary{}, exportTime)
	a, err := Encode(s, JSON)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Encode(s, JSON)
	if a.Digest != b.Digest || len(a.Digest) != 64 {
		t.Errorf("digest = %q / %q", a.Digest, b.Digest)
	}
	s2 := Build([]transcript.Segment{{Text: "hi"}}, []transcript.Segment{{Text: "hola"}}, "00:01", transcript.Summary{}, exportTime)
	c, _ := Encode(s2, JSON)
	if c.Digest == a.Digest {
		t.Error("different documents share a digest")
	}
	if a.Name != "meeting-transcript-2026-03-05.json" {
		t.Errorf("Name = %q", a.Name)
	}
}

func TestRenderMarkdown(t *testing.T) {
	orig := []transcript.Segment{{Speaker: "Speaker 1", Timestamp: "09:00:12", Text: "Welcome to our quarterly review meeting."}}
	tr := []transcript.Segment{{Speaker: "Speaker 1", Timestamp: "09:00:12", Text: "Bienvenidos a nuestra reunión de revisión trimestral."}}
	md := RenderMarkdown(Build(orig, tr, "00:42", transcript.Summarize(orig), exportTime))

	for _, want := range []string{
		"# Meeting Transcript",
		"- Duration: 00:42",
		"- Speakers: 1",
		"## Original",
		"[09:00:12] **Speaker 1**: Welcome to our quarterly review meeting.",
		"## Translated",
		"Bienvenidos a nuestra reunión",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if empty := RenderMarkdown(Build(nil, nil, "00:00", transcript.Summary{}, exportTime)); strings.Count(empty, "_No transcript._") != 2 {
		t.Errorf("empty render:\n%s", empty)
	}
}

func TestFileDeliverer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	d := FileDeliverer{Dir: dir}
	doc := Document{Name: "meeting-transcript-2026-03-05.json", Data: []byte(`{"a":1}`)}

	path, err := d.Deliver(doc)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, doc.Name) {
		t.Errorf("path = %q", path)
	}
	doc.Data = []byte(`{"a":2}`)
	if _, err := d.Deliver(doc); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"a":2}` {
		t.Errorf("content = %s, want the second export", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("export dir has %d entries, want 1 (temp file left behind?)", len(entries))
	}
}

func TestFileDelivererBadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	os.WriteFile(file, nil, 0644)
	if _, err := (FileDeliverer{Dir: file}).Deliver(Document{Name: "x.json"}); err == nil {
		t.Error("expected error writing into a file path")
	}
}

func TestMultiStopsAtFailure(t *testing.T) {
	ok := &MemoryDeliverer{}
	bad := &MemoryDeliverer{Err: errors.New("disk full")}
	after := &MemoryDeliverer{}

	where, err := Multi(ok, bad, after).Deliver(Document{Name: "x.json"})
	if err == nil || err.Error() != "disk full" {
		t.Errorf("err = %v", err)
	}
	if where != "memory:x.json" {
		t.Errorf("where = %q", where)
	}
	if len(ok.Documents()) != 1 || len(after.Documents()) != 0 {
		t.Errorf("ok=%d after=%d", len(ok.Documents()), len(after.Documents()))
	}
}
