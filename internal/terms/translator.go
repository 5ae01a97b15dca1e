package terms

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed dictionary.yaml
var defaultDictionary []byte

// Entry is one English to Spanish mapping.
type Entry struct {
	English string `yaml:"en" json:"en"`
	Spanish string `yaml:"es" json:"es"`
}

type dictionaryFile struct {
	Groups []struct {
		Name  string  `yaml:"name"`
		Terms []Entry `yaml:"terms"`
	} `yaml:"groups"`
}

// Translator is an immutable term mapping. Its iteration order is the
// order entries appear in the dictionary file, groups first to last.
// A Translator is safe for concurrent use.
type Translator struct {
	entries  []Entry
	exact    map[string]string
	folded   map[string]string // case-folded key -> value of the first entry with that fold
	patterns []*regexp.Regexp  // parallel to entries
}

// Load parses a dictionary document. Duplicate or empty keys are rejected.
// Text patterns are bounded by \b, so a key that starts or ends with a
// non-word character loads but never matches in TranslateText.
func Load(r io.Reader) (*Translator, error) {
	var doc dictionaryFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}

	t := &Translator{
		exact:  make(map[string]string),
		folded: make(map[string]string),
	}
	fold := cases.Fold()
	for _, g := range doc.Groups {
		for _, e := range g.Terms {
			if strings.TrimSpace(e.English) == "" {
				return nil, fmt.Errorf("group %q: empty term", g.Name)
			}
			if _, dup := t.exact[e.English]; dup {
				return nil, fmt.Errorf("group %q: duplicate term %q", g.Name, e.English)
			}
			pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(e.English) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("group %q: term %q: %w", g.Name, e.English, err)
			}

			t.entries = append(t.entries, e)
			t.patterns = append(t.patterns, pattern)
			t.exact[e.English] = e.Spanish
			key := fold.String(e.English)
			if _, seen := t.folded[key]; !seen {
				t.folded[key] = e.Spanish
			}
		}
	}
	return t, nil
}

var loadDefault = sync.OnceValues(func() (*Translator, error) {
	return Load(bytes.NewReader(defaultDictionary))
})

// Default returns the built-in dictionary, parsed once per process.
func Default() (*Translator, error) {
	return loadDefault()
}

// Len returns the number of entries.
func (t *Translator) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the mapping in iteration order.
func (t *Translator) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// TranslateTerm returns the Spanish term for term. An exact match wins,
// then a case-insensitive one; unknown terms come back unchanged.
func (t *Translator) TranslateTerm(term string) string {
	if v, ok := t.Lookup(term); ok {
		return v
	}
	return term
}

// Lookup is TranslateTerm that also reports whether term is in the mapping.
func (t *Translator) Lookup(term string) (string, bool) {
	if term == "" {
		return "", false
	}
	if v, ok := t.exact[term]; ok {
		return v, true
	}
	if v, ok := t.folded[cases.Fold().String(term)]; ok {
		return v, true
	}
	return "", false
}

// TranslateTerms maps TranslateTerm over terms, returning a new slice.
func (t *Translator) TranslateTerms(terms []string) []string {
	out := make([]string, len(terms))
	for i, term := range terms {
		out[i] = t.TranslateTerm(term)
	}
	return out
}

// TranslateText replaces whole-word, case-insensitive occurrences of every
// key with its value, one entry at a time in iteration order. A later entry
// sees the output of earlier ones: "Level" comes before "Level Up", so the
// longer phrase never matches.
func (t *Translator) TranslateText(text string) string {
	if text == "" {
		return ""
	}
	for i, pattern := range t.patterns {
		text = pattern.ReplaceAllLiteralString(text, t.entries[i].Spanish)
	}
	return text
}
