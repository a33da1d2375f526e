package analysis

import (
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"docvision/internal/common/fsutil"
)

// Lexicon returns synonyms for an English noun.
type Lexicon interface {
	Synonyms(word string) []string
}

// MapLexicon is a Lexicon backed by an in-memory word -> synonyms map.
type MapLexicon map[string][]string

func (l MapLexicon) Synonyms(word string) []string {
	return append([]string(nil), l[strings.ToLower(word)]...)
}

// LoadLexicon reads a YAML mapping of word to synonym list, e.g.
//
//	car: [auto, automobile, machine, motorcar]
//
// Entries are lowercased, underscores become spaces, and synonyms that are
// not purely alphabetic are dropped.
func LoadLexicon(path string) (MapLexicon, error) {
	b, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string][]string
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	lex := make(MapLexicon, len(raw))
	for word, syns := range raw {
		key := strings.ToLower(strings.TrimSpace(word))
		seen := make(map[string]bool)
		for _, s := range syns {
			s = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", " "))
			if !isAlpha(s) || seen[s] {
				continue
			}
			seen[s] = true
			lex[key] = append(lex[key], s)
		}
	}
	return lex, nil
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
