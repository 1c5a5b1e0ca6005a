package export

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"lukechampine.com/blake3"

	"polyglot/transcript"
)

// TimestampLayout is ISO-8601 in UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

type Format string

const (
	JSON     Format = "json"
	Markdown Format = "markdown"
)

func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return JSON, nil
	case "md", "markdown":
		return Markdown, nil
	}
	return "", fmt.Errorf("unknown export format %q (use json or markdown)", s)
}

func (f Format) Ext() string {
	if f == Markdown {
		return "md"
	}
	return "json"
}

type SessionInfo struct {
	Duration  string             `json:"duration"`
	Timestamp string             `json:"timestamp"`
	Summary   transcript.Summary `json:"summary"`
}

// Snapshot is the exported session document.
type Snapshot struct {
	Session    SessionInfo          `json:"session"`
	Original   []transcript.Segment `json:"original"`
	Translated []transcript.Segment `json:"translated"`

	exportedAt time.Time
}

// Build assembles a snapshot. Nil streams become empty arrays.
func Build(original, translated []transcript.Segment, duration string, summary transcript.Summary, now time.Time) Snapshot {
	if original == nil {
		original = []transcript.Segment{}
	}
	if translated == nil {
		translated = []transcript.Segment{}
	}
	now = now.UTC()
	return Snapshot{
		Session: SessionInfo{
			Duration:  duration,
			Timestamp: now.Format(TimestampLayout),
			Summary:   summary,
		},
		Original:   original,
		Translated: translated,
		exportedAt: now,
	}
}

// FileName is meeting-transcript-YYYY-MM-DD.<ext>, dated in UTC.
func FileName(now time.Time, f Format) string {
	return fmt.Sprintf("meeting-transcript-%s.%s", now.UTC().Format("2006-01-02"), f.Ext())
}

// Marshal renders the snapshot as JSON indented with two spaces.
func Marshal(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Document is an encoded snapshot ready for delivery.
type Document struct {
	Name   string
	Format Format
	Data   []byte
	Digest string // blake3-256, hex
}

func Encode(s Snapshot, f Format) (Document, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case JSON:
		data, err = Marshal(s)
	case Markdown:
		data = []byte(RenderMarkdown(s))
	default:
		err = fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return Document{}, err
	}
	return Document{
		Name:   FileName(s.exportedAt, f),
		Format: f,
		Data:   data,
		Digest: Digest(data),
	}, nil
}

func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
