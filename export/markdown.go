package export

import (
	"fmt"
	"strings"

	"polyglot/transcript"
)

// RenderMarkdown renders the snapshot as a readable two-part transcript.
func RenderMarkdown(s Snapshot) string {
	var b strings.Builder
	b.WriteString("# Meeting Transcript\n\n")
	fmt.Fprintf(&b, "- Exported: %s\n", s.Session.Timestamp)
	fmt.Fprintf(&b, "- Duration: %s\n", s.Session.Duration)
	sum := s.Session.Summary
	fmt.Fprintf(&b, "- Words: %d\n", sum.WordCount)
	fmt.Fprintf(&b, "- Speakers: %d\n", sum.SpeakerCount)
	fmt.Fprintf(&b, "- Avg words per speaker: %.1f\n", sum.AvgWords)
	b.WriteString("\n---\n\n")

	writeSection(&b, "Original", s.Original)
	writeSection(&b, "Translated", s.Translated)
	return b.String()
}

func writeSection(b *strings.Builder, title string, segs []transcript.Segment) {
	fmt.Fprintf(b, "## %s\n\n", title)
	if len(segs) == 0 {
		b.WriteString("_No transcript._\n\n")
		return
	}
	for _, s := range segs {
		ts := ""
		if s.Timestamp != "" {
			ts = "[" + s.Timestamp + "] "
		}
		spk := ""
		if s.Speaker != "" {
			spk = "**" + s.Speaker + "**: "
		}
		fmt.Fprintf(b, "%s%s%s\n\n", ts, spk, strings.TrimSpace(s.Text))
	}
}
