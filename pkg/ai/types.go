package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse indicates the model produced only whitespace.
var ErrEmptyResponse = errors.New("model returned an empty response")

// ModelConfig identifies the model to load.
type ModelConfig struct {
	Name      string
	Path      string
	MaxTokens int
}

// Model completes a single student prompt.
type Model interface {
	Complete(ctx context.Context, input string) (string, error)
}

// Loader turns a configuration into a ready model.
type Loader func(cfg ModelConfig) (Model, error)
