// Package translate maps transcript text into a target language using a
// bundled phrasebook. Translation never fails: unknown languages and
// unknown sentences are returned unchanged.
package translate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is an entry of the settings picker.
type Language struct {
	Code   string // picker code, e.g. "spanish"
	Tag    language.Tag
	Name   string // English name
	Native string // name in the language itself
}

var pickerCodes = []struct {
	code string
	tag  language.Tag
}{
	{"english", language.English},
	{"spanish", language.Spanish},
	{"french", language.French},
	{"german", language.German},
	{"chinese", language.Chinese},
}

// Languages lists the languages offered in the settings picker.
func Languages() []Language {
	out := make([]Language, 0, len(pickerCodes))
	for _, p := range pickerCodes {
		out = append(out, Language{
			Code:   p.code,
			Tag:    p.tag,
			Name:   display.English.Languages().Name(p.tag),
			Native: display.Self.Name(p.tag),
		})
	}
	return out
}

// Resolve turns a picker code ("spanish"), an ISO code ("es") or a BCP 47
// tag ("es-MX") into its base language. ok is false for anything that does
// not name a language.
func Resolve(code string) (base language.Base, ok bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return language.Base{}, false
	}
	for _, p := range pickerCodes {
		if p.code == code {
			b, _ := p.tag.Base()
			return b, true
		}
	}
	tag, err := language.Parse(code)
	if err != nil || tag == language.Und {
		return language.Base{}, false
	}
	b, conf := tag.Base()
	if conf == language.No {
		return language.Base{}, false
	}
	return b, true
}

// DisplayName is the English name for code, or code itself when it does
// not resolve.
func DisplayName(code string) string {
	base, ok := Resolve(code)
	if !ok {
		return code
	}
	tag, err := language.Compose(base)
	if err != nil {
		return code
	}
	return display.English.Languages().Name(tag)
}

// Phrasebook translates sentence by sentence from English.
type Phrasebook struct {
	tables map[string]map[string]string // base language -> sentence -> translation
}

// New returns the bundled phrasebook.
func New() *Phrasebook {
	return NewPhrasebook(bundled)
}

// NewPhrasebook builds a phrasebook from tables keyed by ISO 639 base code.
func NewPhrasebook(tables map[string]map[string]string) *Phrasebook {
	return &Phrasebook{tables: tables}
}

func (p *Phrasebook) Translate(text, targetLanguage string) string {
	base, ok := Resolve(targetLanguage)
	if !ok {
		return text
	}
	table := p.tables[base.String()]
	if len(table) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, piece := range splitSentences(text) {
		lead, core, trail := trimParts(piece)
		if tr, ok := table[core]; ok {
			core = tr
		}
		b.WriteString(lead)
		b.WriteString(core)
		b.WriteString(trail)
	}
	return b.String()
}

// Supports reports whether the phrasebook has a table for code.
func (p *Phrasebook) Supports(code string) bool {
	base, ok := Resolve(code)
	return ok && len(p.tables[base.String()]) > 0
}

// splitSentences cuts text after '.', '!' or '?' runs that are followed by
// whitespace. Concatenating the result gives text back byte for byte, even
// when text is not valid UTF-8.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if !isTerminal(r) {
			continue
		}
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if !isTerminal(r) {
				break
			}
			i += size
		}
		if i < len(text) && !unicode.IsSpace(r) {
			continue
		}
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += size
		}
		out = append(out, text[start:i])
		start = i
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '。' || r == '！' || r == '？'
}

func trimParts(s string) (lead, core, trail string) {
	core = strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRightFunc(core, unicode.IsSpace)
	trail = core[len(trimmed):]
	return lead, trimmed, trail
}
