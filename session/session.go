package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"polyglot/export"
	"polyglot/log"
	"polyglot/recorder"
	"polyglot/transcriber"
	"polyglot/transcript"
	"polyglot/translate"
)

// Cues plays short audio cues. Calls must not block for long.
type Cues interface {
	Start()
	Stop()
	Error()
}

type Config struct {
	// Recorder is completed by the session: Deliver, OnStart,
	// OnStateChange, OnLevel and OnAcquireError are overwritten.
	Recorder       recorder.Config
	Translator     transcript.Translator
	Deliverer      export.Deliverer
	Format         export.Format
	TargetLanguage string
	Cues           Cues
	Now            func() time.Time
	// OnChange is called after anything visible in View changed.
	OnChange func()
}

// View is everything a front end needs to render the session.
type View struct {
	ID             string
	State          recorder.State
	Recording      bool
	Processing     bool
	SourceName     string
	Original       []transcript.Segment
	Translated     []transcript.Segment
	Duration       string
	Summary        transcript.Summary
	TargetLanguage string
	SettingsOpen   bool
	LastExport     string
	Status         string
	Level          float64
}

// ExportResult describes one delivered export.
type ExportResult struct {
	Location string
	Document export.Document
}

// Session ties the recorder, the dual transcript and the clock together
// and is the only thing front ends talk to.
type Session struct {
	store *transcript.Store
	clock *Clock
	rec   *recorder.Controller

	deliverer export.Deliverer
	format    export.Format
	cues      Cues
	now       func() time.Time
	onChange  func()

	mu           sync.Mutex
	id           string
	target       string
	settingsOpen bool
	lastExport   string
	status       string
	level        float64
}

func New(cfg Config) (*Session, error) {
	if cfg.Translator == nil {
		cfg.Translator = translate.New()
	}
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = DefaultTargetLanguage
	}
	if _, ok := translate.Resolve(cfg.TargetLanguage); !ok {
		return nil, fmt.Errorf("unknown target language %q", cfg.TargetLanguage)
	}
	if cfg.Format == "" {
		cfg.Format = export.JSON
	}
	if cfg.Deliverer == nil {
		cfg.Deliverer = export.FileDeliverer{Dir: "."}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Session{
		store:     transcript.NewStore(cfg.Translator),
		clock:     NewClock(cfg.Now),
		deliverer: cfg.Deliverer,
		format:    cfg.Format,
		cues:      cfg.Cues,
		now:       cfg.Now,
		onChange:  cfg.OnChange,
		id:        uuid.NewString(),
		target:    cfg.TargetLanguage,
	}
	log.SetSession(s.id)

	rc := cfg.Recorder
	rc.Deliver = s.deliver
	rc.OnStart = s.started
	rc.OnStateChange = s.stateChanged
	rc.OnLevel = s.setLevel
	rc.OnAcquireError = func(err error) {
		s.setStatus("microphone unavailable, using demo transcript: " + err.Error())
	}
	s.rec = recorder.New(rc)
	return s, nil
}

// DefaultTargetLanguage is the picker's initial selection.
const DefaultTargetLanguage = "spanish"

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// ToggleRecording starts or stops a recording. It returns false when the
// toggle was ignored because a start or stop is already in progress.
func (s *Session) ToggleRecording(ctx context.Context) bool {
	return s.rec.Toggle(ctx)
}

// Reset clears both transcript streams and the session clock and starts a
// new session id. An active recording keeps running.
func (s *Session) Reset() {
	n := s.store.Len()
	s.store.Reset()
	s.clock.Reset()
	id := uuid.NewString()
	s.mu.Lock()
	s.id = id
	s.status = ""
	s.mu.Unlock()
	log.Reset(n)
	log.SetSession(id)
	s.changed()
}

// Export snapshots the session and hands it to the configured deliverer.
// A delivery failure is returned and shown in the status line; the session
// itself is unaffected.
func (s *Session) Export() (ExportResult, error) {
	now := s.now()
	original, translated := s.store.Snapshot()
	snap := export.Build(original, translated, s.clock.Tick(now), transcript.Summarize(original), now)

	doc, err := export.Encode(snap, s.format)
	if err != nil {
		return ExportResult{}, s.exportFailed(err)
	}
	where, err := s.deliverer.Deliver(doc)
	if err != nil {
		return ExportResult{}, s.exportFailed(err)
	}
	log.Export(doc.Name, where, len(doc.Data), doc.Digest)

	s.mu.Lock()
	s.lastExport = where
	s.status = "exported " + where
	s.mu.Unlock()
	s.changed()
	return ExportResult{Location: where, Document: doc}, nil
}

func (s *Session) exportFailed(err error) error {
	err = fmt.Errorf("export: %w", err)
	log.Errorf("%v", err)
	s.setStatus(err.Error())
	return err
}

// SetTargetLanguage changes the language used for segments appended from
// now on. Segments already in the store keep their translation.
func (s *Session) SetTargetLanguage(code string) error {
	if _, ok := translate.Resolve(code); !ok {
		return fmt.Errorf("unknown language %q", code)
	}
	s.mu.Lock()
	prev := s.target
	s.target = code
	s.mu.Unlock()
	if prev != code {
		log.LanguageChange(prev, code)
	}
	s.changed()
	return nil
}

func (s *Session) TargetLanguage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

func (s *Session) OpenSettings() {
	s.mu.Lock()
	s.settingsOpen = true
	s.mu.Unlock()
	s.changed()
}

func (s *Session) CloseSettings() {
	s.mu.Lock()
	s.settingsOpen = false
	s.mu.Unlock()
	s.changed()
}

func (s *Session) View() View {
	original, translated := s.store.Snapshot()
	st := s.rec.State()
	processing := s.rec.Processing()
	source := s.rec.SourceName()
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:             s.id,
		State:          st,
		Recording:      st == recorder.Recording,
		Processing:     processing,
		SourceName:     source,
		Original:       original,
		Translated:     translated,
		Duration:       s.clock.Display(),
		Summary:        transcript.Summarize(original),
		TargetLanguage: s.target,
		SettingsOpen:   s.settingsOpen,
		LastExport:     s.lastExport,
		Status:         s.status,
		Level:          s.level,
	}
}

// Run drives the session clock until ctx is done.
func (s *Session) Run(ctx context.Context) {
	s.clock.Run(ctx, time.Second, func(string) { s.changed() })
}

// Close stops any active recording and releases the capture device.
func (s *Session) Close(ctx context.Context) {
	s.rec.Close(ctx)
	log.SessionEnd(s.store.Len(), s.clock.Tick(s.now()))
}

func (s *Session) deliver(b transcriber.Batch) {
	s.store.Append(b, s.TargetLanguage())
	for _, seg := range b {
		log.TranscriptLine(seg.Speaker, seg.Timestamp, seg.Text)
	}
	log.Batch(s.rec.SourceName(), len(b), s.store.Len())
	s.changed()
}

func (s *Session) started() {
	s.clock.Start(s.now())
	s.clock.Tick(s.now())
	log.SessionStart(s.rec.SourceName(), s.TargetLanguage())
}

func (s *Session) stateChanged(from, to recorder.State) {
	if s.cues != nil {
		switch {
		case to == recorder.Fallback:
			s.cues.Error()
		case to == recorder.Recording && from == recorder.Acquiring:
			s.cues.Start()
		case to == recorder.Stopping:
			s.cues.Stop()
		}
	}
	if to == recorder.Idle {
		s.setLevel(0)
	}
	s.changed()
}

func (s *Session) setLevel(l float64) {
	s.mu.Lock()
	s.level = l
	s.mu.Unlock()
}

func (s *Session) setStatus(msg string) {
	s.mu.Lock()
	s.status = msg
	s.mu.Unlock()
	s.changed()
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
