// Package translate turns arbitrary-length text into the target language by
// splitting it along line boundaries and translating each segment.
package translate

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// DefaultMaxSegment is the largest segment, in characters, sent in one call.
const DefaultMaxSegment = 5000

var ErrEmptyText = errors.New("Le texte ne peut pas être vide")

// Config configures a Translator.
type Config struct {
	Backend    Backend
	Source     string
	Target     string
	MaxSegment int
	Logger     zerolog.Logger
}

// Translator translates whole documents and single words.
type Translator struct {
	backend    Backend
	source     string
	target     string
	maxSegment int
	log        zerolog.Logger
}

func New(cfg Config) *Translator {
	t := &Translator{
		backend:    cfg.Backend,
		source:     cfg.Source,
		target:     cfg.Target,
		maxSegment: cfg.MaxSegment,
		log:        cfg.Logger.With().Str("component", "translate").Logger(),
	}
	if t.maxSegment <= 0 {
		t.maxSegment = DefaultMaxSegment
	}
	if t.source == "" {
		t.source = "en"
	}
	if t.target == "" {
		t.target = "fr"
	}
	return t
}

// Translate translates text segment by segment. A segment the backend fails
// on is kept in its original form. The result is lowercased and every
// sentence start is capitalised.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	segments := SplitSegments(text, t.maxSegment)
	t.log.Debug().Int("chars", utf8.RuneCountInString(text)).Int("segments", len(segments)).Msg("translating")
	var b strings.Builder
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := t.backend.Translate(ctx, seg, t.source, t.target)
		if err != nil || out == "" {
			t.log.Warn().Err(err).Int("segment", i+1).Msg("segment not translated, keeping original")
			out = seg
		}
		b.WriteString(out)
	}
	return CapitalizeAfterPeriod(b.String()), nil
}

// Word translates a single word and lowercases it. It falls back to the
// lowercased input.
func (t *Translator) Word(ctx context.Context, w string) string {
	out, err := t.backend.Translate(ctx, w, t.source, t.target)
	if err != nil || strings.TrimSpace(out) == "" {
		return strings.ToLower(w)
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// SplitSegments groups the lines of text (line endings kept) into segments of
// at most max characters. A single line longer than max forms its own segment.
func SplitSegments(text string, max int) []string {
	var (
		segments []string
		cur      strings.Builder
		curLen   int
	)
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		n := utf8.RuneCountInString(line)
		if curLen+n > max && curLen > 0 {
			segments = append(segments, cur.String())
			cur.Reset()
			curLen = 0
		}
		cur.WriteString(line)
		curLen += n
	}
	if curLen > 0 {
		segments = append(segments, cur.String())
	}
	return segments
}

// CapitalizeAfterPeriod lowercases s, then uppercases the first letter of the
// text and the first letter following each '.', skipping whitespace. Accented
// letters are capitalised too, so "été" becomes "Été".
func CapitalizeAfterPeriod(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	capNext := true
	for _, r := range s {
		switch {
		case r == '.':
			capNext = true
		case capNext && unicode.IsSpace(r):
		case capNext:
			r = unicode.ToUpper(r)
			capNext = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
