package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gamedash/gamedash-server/internal/service"
	"github.com/gamedash/gamedash-server/internal/terms"
)

func (s *Server) registerTermsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "translateTerms",
		Method:      http.MethodPost,
		Path:        "/api/v1/terms/translate",
		Summary:     "Translate terms",
		Description: "Translates catalog terms to Spanish. Unknown terms are returned unchanged.",
		Tags:        []string{"Terms"},
	}, s.handleTranslateTerms)

	huma.Register(s.api, huma.Operation{
		OperationID: "classifyTags",
		Method:      http.MethodPost,
		Path:        "/api/v1/terms/classify",
		Summary:     "Classify tags",
		Description: "Reports whether a tag list indicates single-player and multiplayer modes",
		Tags:        []string{"Terms"},
	}, s.handleClassifyTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDictionary",
		Method:      http.MethodGet,
		Path:        "/api/v1/terms/dictionary",
		Summary:     "Get dictionary",
		Description: "Returns the term mapping in iteration order",
		Tags:        []string{"Terms"},
	}, s.handleGetDictionary)
}

// TranslateRequest is the request body for translating terms.
type TranslateRequest struct {
	Terms []string `json:"terms,omitempty" maxItems:"500" doc:"Terms translated one by one"`
	Text  string   `json:"text,omitempty" maxLength:"20000" doc:"Free text translated word by word"`
}

// TranslateResponse contains translations.
type TranslateResponse struct {
	Translations []service.Translation `json:"translations"`
	Text         string                `json:"text,omitempty"`
}

// TranslateInput wraps the translate request for Huma.
type TranslateInput struct {
	Body TranslateRequest
}

// TranslateOutput wraps the translate response for Huma.
type TranslateOutput struct {
	Body TranslateResponse
}

// ClassifyRequest is the request body for classifying tags.
type ClassifyRequest struct {
	Tags []string `json:"tags" maxItems:"500" doc:"Tag names"`
}

// ClassifyInput wraps the classify request for Huma.
type ClassifyInput struct {
	Body ClassifyRequest
}

// ClassifyOutput wraps the classification for Huma.
type ClassifyOutput struct {
	Body terms.Flags
}

// DictionaryOutput wraps the dictionary for Huma.
type DictionaryOutput struct {
	Body []terms.Entry
}

func (s *Server) handleTranslateTerms(_ context.Context, input *TranslateInput) (*TranslateOutput, error) {
	resp := TranslateResponse{
		Translations: s.services.Terms.Translate(input.Body.Terms),
	}
	if input.Body.Text != "" {
		resp.Text = s.services.Terms.TranslateText(input.Body.Text)
	}
	return &TranslateOutput{Body: resp}, nil
}

func (s *Server) handleClassifyTags(_ context.Context, input *ClassifyInput) (*ClassifyOutput, error) {
	return &ClassifyOutput{Body: s.services.Terms.Classify(input.Body.Tags)}, nil
}

func (s *Server) handleGetDictionary(_ context.Context, _ *struct{}) (*DictionaryOutput, error) {
	return &DictionaryOutput{Body: s.services.Terms.Dictionary()}, nil
}
