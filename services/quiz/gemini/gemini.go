// Package gemini drafts poll questions with the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/trezcool/classpoll/core"
	"github.com/trezcool/classpoll/core/quiz"
)

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

type Generator struct {
	model    string
	generate generateFunc
}

var _ quiz.Generator = (*Generator)(nil)

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"question": {Type: genai.TypeString},
		"options": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: fmt.Sprintf("A list of %d possible answers.", quiz.OptionCount),
		},
	},
	Required: []string{"question", "options"},
}

// New returns the Gemini generator, or quiz.Disabled when no API key is configured.
func New(ctx context.Context, conf *core.Config) (quiz.Generator, error) {
	if conf.Gemini.APIKey == "" {
		return quiz.Disabled{}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  conf.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating gemini client")
	}
	return &Generator{model: conf.Gemini.Model, generate: client.Models.GenerateContent}, nil
}

func prompt(topic, difficulty string) string {
	return fmt.Sprintf(
		"Generate a single multiple-choice quiz question about %q for a %s level student. Return exactly %d options.",
		topic, difficulty, quiz.OptionCount,
	)
}

func (g *Generator) Generate(ctx context.Context, topic, difficulty string) (quiz.Proposal, error) {
	resp, err := g.generate(ctx, g.model, genai.Text(prompt(topic, difficulty)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	})
	if err != nil {
		return quiz.Proposal{}, errors.Wrap(err, "generating question")
	}

	text := resp.Text()
	if text == "" {
		return quiz.Proposal{}, quiz.ErrMalformed
	}
	var proposal quiz.Proposal
	if err := json.Unmarshal([]byte(text), &proposal); err != nil {
		return quiz.Proposal{}, errors.Wrap(quiz.ErrMalformed, err.Error())
	}
	return proposal.Check()
}
