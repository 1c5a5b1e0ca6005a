package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"polyglot/encoder"
	"polyglot/transcript"
)

const (
	groqBaseURL   = "https://api.groq.com/openai/v1"
	groqModel     = "whisper-large-v3-turbo"
	openaiModel   = openai.Whisper1
	minChunkAudio = 100 * time.Millisecond
)

// Whisper sends each chunk, FLAC encoded, to an OpenAI-compatible
// transcription endpoint and maps the returned segments onto wall-clock
// timestamps.
type Whisper struct {
	name   string
	client *openai.Client
	model  string
	lang   string
}

func newWhisper(name string, cfg RecognizerConfig, baseURL, model string) *Whisper {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	if cfg.Model != "" {
		model = cfg.Model
	}
	return &Whisper{
		name:   name,
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		lang:   cfg.Language,
	}
}

func NewOpenAI(cfg RecognizerConfig) *Whisper {
	return newWhisper("openai", cfg, "", openaiModel)
}

func NewGroq(cfg RecognizerConfig) *Whisper {
	return newWhisper("groq", cfg, groqBaseURL, groqModel)
}

func (w *Whisper) Name() string { return w.name }

func (w *Whisper) Recognize(ctx context.Context, chunk Chunk) ([]transcript.Segment, error) {
	if encoder.Duration(chunk.PCM) < minChunkAudio {
		return nil, nil
	}

	enc, err := encoder.NewFlac()
	if err != nil {
		return nil, err
	}
	data, err := encoder.Encode(enc, chunk.PCM)
	if err != nil {
		return nil, fmt.Errorf("%s: encoding chunk: %w", w.name, err)
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: "chunk.flac",
		Reader:   bytes.NewReader(data),
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: w.lang,
	})
	if err != nil {
		return nil, fmt.Errorf("%s transcription: %w", w.name, err)
	}
	return segmentsFromResponse(chunk.StartedAt, resp), nil
}

func segmentsFromResponse(start time.Time, resp openai.AudioResponse) []transcript.Segment {
	var out []transcript.Segment
	for _, s := range resp.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		offset := time.Duration(s.Start * float64(time.Second))
		out = append(out, transcript.Segment{
			Speaker:   DefaultSpeaker,
			Timestamp: start.Add(offset).Format(TimestampLayout),
			Text:      text,
		})
	}
	if len(out) == 0 {
		if text := strings.TrimSpace(resp.Text); text != "" {
			out = append(out, transcript.Segment{
				Speaker:   DefaultSpeaker,
				Timestamp: start.Format(TimestampLayout),
				Text:      text,
			})
		}
	}
	return out
}
