// Package transcript holds the dual-stream transcript: the original
// segments as recognized and their translations, kept index-aligned.
package transcript

import (
	"strings"
	"sync"
)

// Segment is one attributed, timestamped unit of transcribed speech.
type Segment struct {
	Speaker   string `json:"speaker"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// Translator maps text into a target language. Implementations must never
// fail; unknown input comes back unchanged.
type Translator interface {
	Translate(text, targetLanguage string) string
}

// Store is an append-only pair of segment logs. Original[i] and
// Translated[i] always share speaker and timestamp, and both logs always
// have the same length.
type Store struct {
	translator Translator

	mu         sync.RWMutex
	original   []Segment
	translated []Segment
}

func NewStore(translator Translator) *Store {
	return &Store{translator: translator}
}

// Append adds every segment of batch to both logs in a single critical
// section. Translation happens before the lock is taken so readers never
// wait on it.
func (s *Store) Append(batch []Segment, targetLanguage string) {
	if len(batch) == 0 {
		return
	}
	translated := make([]Segment, len(batch))
	for i, seg := range batch {
		translated[i] = Segment{
			Speaker:   seg.Speaker,
			Timestamp: seg.Timestamp,
			Text:      s.translate(seg.Text, targetLanguage),
		}
	}

	s.mu.Lock()
	s.original = append(s.original, batch...)
	s.translated = append(s.translated, translated...)
	s.mu.Unlock()
}

func (s *Store) translate(text, lang string) string {
	if s.translator == nil {
		return text
	}
	return s.translator.Translate(text, lang)
}

// Reset empties both logs.
func (s *Store) Reset() {
	s.mu.Lock()
	s.original = nil
	s.translated = nil
	s.mu.Unlock()
}

// Original returns a copy of the original log. It is never nil.
func (s *Store) Original() []Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.original)
}

// Translated returns a copy of the translated log. It is never nil.
func (s *Store) Translated() []Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.translated)
}

// Snapshot returns both logs read under the same lock.
func (s *Store) Snapshot() (original, translated []Segment) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.original), clone(s.translated)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.original)
}

func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summarize(s.original)
}

func clone(in []Segment) []Segment {
	out := make([]Segment, len(in))
	copy(out, in)
	return out
}

type Summary struct {
	WordCount    int     `json:"wordCount"`
	SpeakerCount int     `json:"speakerCount"`
	AvgWords     float64 `json:"avgWords"`
}

// Summarize counts whitespace-delimited words and distinct speakers.
// AvgWords is zero when there are no speakers.
func Summarize(segments []Segment) Summary {
	var words int
	speakers := make(map[string]struct{})
	for _, seg := range segments {
		words += len(strings.Fields(seg.Text))
		speakers[seg.Speaker] = struct{}{}
	}
	sum := Summary{WordCount: words, SpeakerCount: len(speakers)}
	if sum.SpeakerCount > 0 {
		sum.AvgWords = float64(words) / float64(sum.SpeakerCount)
	}
	return sum
}
