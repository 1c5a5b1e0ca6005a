package main

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"polyglot/config"
	"polyglot/hotkey"
	"polyglot/log"
	"polyglot/recorder"
	"polyglot/session"
	"polyglot/transcript"
	"polyglot/translate"
)

// refreshMsg asks the model to re-read the session view.
type refreshMsg struct{}
type tickMsg time.Time

const (
	tuiTickInterval = 120 * time.Millisecond
	headerLines     = 4
	footerLines     = 3
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	clockStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	recStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	fallbackStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	helpKeyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	speakerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Bold(true)
	originalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	translStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	columnStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
)

type tuiModel struct {
	ctx   context.Context
	sess  *session.Session
	view  session.View
	langs []translate.Language

	cursor        int
	frame         int
	width, height int
	recognizer    string
	source        string
	hint          string
}

func newTUIModel(ctx context.Context, sess *session.Session, cfg config.Config, hint string) tuiModel {
	return tuiModel{
		ctx:        ctx,
		sess:       sess,
		view:       sess.View(),
		langs:      translate.Languages(),
		recognizer: cfg.Recognizer,
		source:     sourceLabel(cfg),
		hint:       hint,
	}
}

// sourceLabel names the spoken language shown over the original column.
func sourceLabel(cfg config.Config) string {
	if cfg.SourceLanguageCode() == "" {
		return "auto-detect"
	}
	return translate.DisplayName(cfg.SourceLanguage)
}

func tuiTick() tea.Cmd {
	return tea.Tick(tuiTickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.frame++
		m.view = m.sess.View()
		return m, tuiTick()

	case refreshMsg:
		m.view = m.sess.View()

	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m tuiModel) handleKey(key string) (tea.Model, tea.Cmd) {
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.view.SettingsOpen {
		switch key {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.langs)-1 {
				m.cursor++
			}
		case "enter":
			if err := m.sess.SetTargetLanguage(m.langs[m.cursor].Code); err != nil {
				log.Warnf("language change: %v", err)
			}
			m.sess.CloseSettings()
		case "esc", "s":
			m.sess.CloseSettings()
		}
		m.view = m.sess.View()
		return m, nil
	}

	var cmd tea.Cmd
	switch key {
	case " ", "r":
		cmd = toggleCmd(m.ctx, m.sess)
	case "x":
		m.sess.Reset()
	case "e":
		cmd = exportCmd(m.sess)
	case "s":
		m.cursor = m.languageIndex(m.view.TargetLanguage)
		m.sess.OpenSettings()
	case "q":
		return m, tea.Quit
	}
	m.view = m.sess.View()
	return m, cmd
}

// toggleCmd runs the toggle off the update loop; starting blocks on device
// acquisition and stopping on the final flush.
func toggleCmd(ctx context.Context, sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		sess.ToggleRecording(ctx)
		return refreshMsg{}
	}
}

func exportCmd(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		// The outcome lands in the session status line.
		_, _ = sess.Export()
		return refreshMsg{}
	}
}

func (m tuiModel) languageIndex(code string) int {
	base, ok := translate.Resolve(code)
	if !ok {
		return 0
	}
	for i, l := range m.langs {
		if b, _ := l.Tag.Base(); b == base {
			return i
		}
	}
	return 0
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	v := m.view

	title := titleStyle.Render("Polyglot Meeting Whisperer")
	clock := clockStyle.Render(v.Duration)
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(clock)
	if gap < 1 {
		gap = 1
	}
	header := title + strings.Repeat(" ", gap) + clock

	lines := []string{
		header,
		m.statusLine(),
		dimStyle.Render(dashboard(v.Summary, v.Duration, translate.DisplayName(v.TargetLanguage))),
		"",
	}

	bodyHeight := m.height - headerLines - footerLines
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	var body string
	if v.SettingsOpen {
		body = m.settingsPanel(bodyHeight)
	} else {
		body = m.columns(bodyHeight)
	}
	lines = append(lines, body, "")

	status := v.Status
	if status == "" {
		status = m.hint
	}
	lines = append(lines, statusStyle.Render(truncate(status, m.width)), m.helpLine())
	return strings.Join(lines, "\n")
}

func (m tuiModel) statusLine() string {
	v := m.view
	var label string
	switch v.State {
	case recorder.Acquiring:
		label = idleStyle.Render("◌ STARTING")
	case recorder.Stopping:
		label = idleStyle.Render("◌ STOPPING")
	case recorder.Fallback:
		label = fallbackStyle.Render("◆ FALLBACK")
	case recorder.Recording:
		if v.SourceName == "fallback" {
			label = fallbackStyle.Render("● REC (demo transcript)")
		} else {
			label = recStyle.Render("● REC")
		}
	default:
		label = idleStyle.Render("○ STANDBY")
	}

	parts := []string{label}
	if v.Recording && v.SourceName != "fallback" {
		parts = append(parts, levelBar(v.Level, 12))
	}
	if v.Processing {
		spin := spinnerFrames[m.frame%len(spinnerFrames)]
		parts = append(parts, fallbackStyle.Render(spin+" processing"))
	}
	if v.SourceName != "" {
		parts = append(parts, dimStyle.Render("["+v.SourceName+"]"))
	} else if m.recognizer != "" {
		parts = append(parts, dimStyle.Render("["+m.recognizer+"]"))
	}
	return strings.Join(parts, "  ")
}

func dashboard(s transcript.Summary, duration, target string) string {
	return fmt.Sprintf("Words %d · Speakers %d · Avg %.1f words/speaker · Duration %s · Target %s",
		s.WordCount, s.SpeakerCount, s.AvgWords, duration, target)
}

func levelBar(level float64, width int) string {
	n := int(math.Round(math.Min(1, level*5) * float64(width)))
	if n < 0 {
		n = 0
	}
	return recStyle.Render(strings.Repeat("█", n)) + idleStyle.Render(strings.Repeat("░", width-n))
}

func (m tuiModel) columns(height int) string {
	// Two bordered columns: border 2 + padding 2 each, plus a one-space gap.
	inner := (m.width-1)/2 - 4
	if inner < 10 {
		inner = 10
	}
	textHeight := height - 2
	if textHeight < 1 {
		textHeight = 1
	}

	target := translate.DisplayName(m.view.TargetLanguage)
	left := renderColumn("Original ("+m.source+")", m.view.Original, originalStyle, inner, textHeight)
	right := renderColumn("Translated ("+target+")", m.view.Translated, translStyle, inner, textHeight)

	col := columnStyle.Width(inner + 2).Height(textHeight)
	return lipgloss.JoinHorizontal(lipgloss.Top, col.Render(left), " ", col.Render(right))
}

// renderColumn renders the newest segments that fit into height lines.
func renderColumn(title string, segs []transcript.Segment, style lipgloss.Style, width, height int) string {
	var lines []string
	if len(segs) == 0 {
		lines = append(lines, idleStyle.Render("No transcript yet"))
	}
	for i, seg := range segs {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, speakerStyle.Render(seg.Timestamp+"  "+seg.Speaker))
		for _, l := range wrapText(seg.Text, width) {
			lines = append(lines, style.Render(l))
		}
	}
	lines = tail(lines, height-2)
	return titleStyle.Render(title) + "\n\n" + strings.Join(lines, "\n")
}

func (m tuiModel) settingsPanel(height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Target language") + "\n\n")
	current, _ := translate.Resolve(m.view.TargetLanguage)
	for i, l := range m.langs {
		name := l.Name
		if l.Native != "" && l.Native != l.Name {
			name += " (" + l.Native + ")"
		}
		if b2, _ := l.Tag.Base(); b2 == current {
			name += "  ✓"
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> "+name) + "\n")
		} else {
			b.WriteString("  " + name + "\n")
		}
	}
	b.WriteString("\n" + helpStyle.Render("↑/↓ select · enter apply · esc close"))
	return columnStyle.Width(max(m.width-2, 20)).Height(height - 2).Render(b.String())
}

func (m tuiModel) helpLine() string {
	keys := []struct{ key, what string }{
		{"space", "record"},
		{"x", "reset"},
		{"e", "export"},
		{"s", "settings"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+helpStyle.Render(" "+k.what))
	}
	parts = append(parts, helpKeyStyle.Render(hotkey.Chord)+helpStyle.Render(" record anywhere"))
	return strings.Join(parts, helpStyle.Render(" · ")) + "  " + helpStyle.Render("polyglot "+version)
}

func tail(lines []string, n int) []string {
	if n < 1 {
		n = 1
	}
	if len(lines) > n {
		return lines[len(lines)-n:]
	}
	return lines
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	head, _ := splitWidth(s, width-1)
	return head + "…"
}

// wrapText breaks text into lines no wider than width display cells.
// Words wider than a line, and scripts written without spaces, are split
// at rune boundaries.
func wrapText(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	var cur strings.Builder
	curW := 0
	for _, word := range strings.Fields(text) {
		ww := lipgloss.Width(word)
		if curW > 0 && curW+1+ww <= width {
			cur.WriteByte(' ')
			cur.WriteString(word)
			curW += 1 + ww
			continue
		}
		if curW > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			curW = 0
		}
		for ww > width {
			head, rest := splitWidth(word, width)
			lines = append(lines, head)
			word, ww = rest, lipgloss.Width(rest)
		}
		cur.WriteString(word)
		curW = ww
	}
	if curW > 0 || len(lines) == 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// splitWidth returns the longest prefix of s at most width cells wide, and
// at least one rune, plus the remainder.
func splitWidth(s string, width int) (head, rest string) {
	w := 0
	for i, r := range s {
		rw := lipgloss.Width(string(r))
		if w+rw > width && i > 0 {
			return s[:i], s[i:]
		}
		w += rw
	}
	return s, ""
}
