// Package quiz is the boundary of the poll question generator.
package quiz

import (
	"context"
	"errors"

	"github.com/trezcool/classpoll/core"
)

// OptionCount is the number of options a proposal must carry.
const OptionCount = 4

const DefaultDifficulty = "High School"

var (
	ErrDisabled  = errors.New("question generator is not configured")
	ErrMalformed = errors.New("malformed question proposal")
)

// Proposal is a drafted poll: a question and its options.
type Proposal struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Generator drafts a question about topic for the given difficulty level.
type Generator interface {
	Generate(ctx context.Context, topic, difficulty string) (Proposal, error)
}

// Check cleans p and returns ErrMalformed unless it has a question and exactly OptionCount options.
func (p Proposal) Check() (Proposal, error) {
	p.Question = core.CleanString(p.Question)
	if p.Question == "" || len(p.Options) != OptionCount {
		return Proposal{}, ErrMalformed
	}
	options := make([]string, 0, len(p.Options))
	for _, opt := range p.Options {
		if opt = core.CleanString(opt); opt == "" {
			return Proposal{}, ErrMalformed
		}
		options = append(options, opt)
	}
	p.Options = options
	return p, nil
}

// Disabled is the Generator used when no backend is configured.
type Disabled struct{}

func (Disabled) Generate(context.Context, string, string) (Proposal, error) {
	return Proposal{}, ErrDisabled
}
