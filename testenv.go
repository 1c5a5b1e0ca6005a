package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"polyglot/audio"
	"polyglot/beep"
	"polyglot/config"
	"polyglot/log"
	"polyglot/recorder"
	"polyglot/session"
)

const waitPoll = 10 * time.Millisecond

// runTestMode drives a session from line commands on in, without a
// terminal UI. With a WAV file the microphone is replaced by a fake device
// replaying it in real time; without one the microphone is unavailable and
// the demo transcript is used.
//
//	TOGGLE        start or stop recording
//	RESET         clear the transcript
//	EXPORT        export and print the location
//	LANG <code>   change the target language
//	WAIT          wait until no transition or flush is pending
//	WAIT_AUDIO    wait until the WAV file has been fully captured
//	SLEEP <ms>
//	DUMP          print state and both transcript streams
//	QUIT
func runTestMode(ctx context.Context, cfg config.Config, wavPath string, in io.Reader, out io.Writer) int {
	beep.Disable()

	var fake *audio.FakeContext
	open := audio.Denied(audio.ErrNoDevice)
	if wavPath != "" {
		var err error
		fake, err = audio.NewFakeContext(wavPath, true)
		if err != nil {
			fmt.Fprintf(out, "Error loading WAV: %v\n", err)
			return 1
		}
		open = fake.Opener()
	}

	sess, err := newSession(cfg, open, nil, nil)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return 1
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		sess.Close(closeCtx)
	}()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		switch cmd {
		case "":
		case "TOGGLE":
			if !sess.ToggleRecording(ctx) {
				fmt.Fprintln(out, "toggle ignored")
			}
		case "RESET":
			sess.Reset()
		case "EXPORT":
			res, err := sess.Export()
			if err != nil {
				fmt.Fprintf(out, "export failed: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "exported %s %s\n", res.Location, res.Document.Digest)
		case "LANG":
			if err := sess.SetTargetLanguage(arg); err != nil {
				fmt.Fprintf(out, "%v\n", err)
			}
		case "WAIT":
			if err := waitSettled(ctx, sess); err != nil {
				return 1
			}
		case "WAIT_AUDIO":
			if fake == nil || fake.Last() == nil {
				continue
			}
			select {
			case <-fake.Last().AudioDone():
			case <-ctx.Done():
				return 1
			}
		case "SLEEP":
			if ms, err := strconv.Atoi(arg); err == nil {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
		case "DUMP":
			dump(out, sess.View())
		case "QUIT":
			return 0
		default:
			log.Warnf("test mode: unknown command %q", cmd)
			fmt.Fprintf(out, "unknown command %q\n", cmd)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Errorf("test mode: reading commands: %v", err)
		return 1
	}
	return 0
}

// waitSettled blocks until the recorder is not mid-transition and no batch
// is being produced.
func waitSettled(ctx context.Context, sess *session.Session) error {
	for {
		v := sess.View()
		if !v.Processing && (v.State == recorder.Idle || v.State == recorder.Recording) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitPoll):
		}
	}
}

func dump(out io.Writer, v session.View) {
	fmt.Fprintf(out, "state=%s recording=%t processing=%t duration=%s target=%s segments=%d words=%d speakers=%d\n",
		v.State, v.Recording, v.Processing, v.Duration, v.TargetLanguage,
		len(v.Original), v.Summary.WordCount, v.Summary.SpeakerCount)
	for i := range v.Original {
		o, t := v.Original[i], v.Translated[i]
		fmt.Fprintf(out, "original\t%s\t%s\t%s\n", o.Timestamp, o.Speaker, o.Text)
		fmt.Fprintf(out, "translated\t%s\t%s\t%s\n", t.Timestamp, t.Speaker, t.Text)
	}
}
