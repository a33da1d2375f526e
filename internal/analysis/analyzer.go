// Package analysis cross-references objects detected in an image with their
// mentions in an accompanying text.
package analysis

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// WordTranslator translates a single word into the target language,
// lowercased, falling back to the input.
type WordTranslator interface {
	Word(ctx context.Context, w string) string
}

// Occurrence counts one object's mentions in the text and in the image.
type Occurrence struct {
	Text  int
	Image int
}

// Config configures an Analyzer.
type Config struct {
	Detector   Detector
	Lexicon    Lexicon
	Translator WordTranslator
	// Parallelism bounds concurrent per-label translation work.
	Parallelism int
	Logger      zerolog.Logger
}

type Analyzer struct {
	detector   Detector
	lexicon    Lexicon
	translator WordTranslator
	limit      int
	log        zerolog.Logger
}

func New(cfg Config) *Analyzer {
	a := &Analyzer{
		detector:   cfg.Detector,
		lexicon:    cfg.Lexicon,
		translator: cfg.Translator,
		limit:      cfg.Parallelism,
		log:        cfg.Logger.With().Str("component", "analysis").Logger(),
	}
	if a.lexicon == nil {
		a.lexicon = MapLexicon(nil)
	}
	if a.limit <= 0 {
		a.limit = 4
	}
	return a
}

type labelTerms struct {
	translated string
	terms      []string
}

// Analyze detects objects in image and, for each detected label, counts how
// often the label or one of its synonyms (all translated) appears in text.
// The result is keyed by the translated label; labels that translate to the
// same word are merged.
func (a *Analyzer) Analyze(ctx context.Context, image []byte, text string) (map[string]Occurrence, error) {
	counts, err := a.detector.Detect(ctx, image)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	terms := make([]labelTerms, len(labels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.limit)
	for i, label := range labels {
		g.Go(func() error {
			words := append(slices.Clone(a.lexicon.Synonyms(label)), label)
			seen := make(map[string]bool, len(words))
			lt := labelTerms{translated: a.translator.Word(gctx, label)}
			for _, w := range words {
				if err := gctx.Err(); err != nil {
					return err
				}
				tw := a.translator.Word(gctx, w)
				if tw == "" || seen[tw] {
					continue
				}
				seen[tw] = true
				lt.terms = append(lt.terms, tw)
			}
			terms[i] = lt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyse: %w", err)
	}

	lower := strings.ToLower(text)
	out := make(map[string]Occurrence, len(labels))
	for i, label := range labels {
		mentions := 0
		for _, t := range terms[i].terms {
			mentions += strings.Count(lower, t)
		}
		key := terms[i].translated
		prev := out[key]
		out[key] = Occurrence{Text: prev.Text + mentions, Image: prev.Image + counts[label]}
		a.log.Debug().Str("label", label).Str("translated", key).Int("image", counts[label]).Int("text", mentions).Msg("label analysed")
	}
	return out, nil
}
