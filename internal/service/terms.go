package service

import (
	"github.com/gamedash/gamedash-server/internal/terms"
)

// maxTermsPerRequest bounds translate and classify inputs.
const maxTermsPerRequest = 500

// Translation pairs a term with its Spanish rendering.
type Translation struct {
	Term        string `json:"term"`
	Translation string `json:"translation"`
	Known       bool   `json:"known"`
}

// TermsService exposes the term dictionary and the play-mode classifier.
type TermsService struct {
	translator *terms.Translator
}

// NewTermsService creates a TermsService.
func NewTermsService(t *terms.Translator) *TermsService {
	return &TermsService{translator: t}
}

// Translate maps each term to Spanish, in input order. Unknown terms come
// back unchanged with Known unset.
func (s *TermsService) Translate(in []string) []Translation {
	in = capList(in, maxTermsPerRequest)
	out := make([]Translation, len(in))
	for i, term := range in {
		tr, ok := s.translator.Lookup(term)
		if !ok {
			tr = term
		}
		out[i] = Translation{Term: term, Translation: tr, Known: ok}
	}
	return out
}

// TranslateText applies whole-word replacement to free text.
func (s *TermsService) TranslateText(text string) string {
	return s.translator.TranslateText(text)
}

// Classify reports which play modes tags indicate.
func (s *TermsService) Classify(tags []string) terms.Flags {
	return terms.Classify(capList(tags, maxTermsPerRequest))
}

// Dictionary returns the full mapping in iteration order.
func (s *TermsService) Dictionary() []terms.Entry {
	return s.translator.Entries()
}
