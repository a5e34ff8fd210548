// Package collabtest provides a scriptable collaborator for unit tests.
package collabtest

import (
	"context"
	"errors"
	"sync"
)

// Fake implements collab.Collaborator with canned responses.
type Fake struct {
	mu sync.Mutex

	// EmbedFn overrides embedding behavior; when nil, Vectors/EmbedErr apply.
	EmbedFn func(text string) ([]float32, error)
	// Vectors maps exact input text to a vector.
	Vectors map[string][]float32
	// DefaultVector is returned for inputs not present in Vectors.
	DefaultVector []float32
	EmbedErr      error

	// GenerateFn overrides generation; when nil, Responses/GenerateErr apply.
	GenerateFn func(prompt, purpose string) (string, error)
	// Responses maps purpose to a canned completion.
	Responses   map[string]string
	GenerateErr error

	EmbedCalls    []string
	GenerateCalls []string
}

func (f *Fake) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.EmbedCalls = append(f.EmbedCalls, text)
	f.mu.Unlock()
	if f.EmbedFn != nil {
		return f.EmbedFn(text)
	}
	if f.EmbedErr != nil {
		return nil, f.EmbedErr
	}
	if v, ok := f.Vectors[text]; ok {
		return v, nil
	}
	if f.DefaultVector != nil {
		return f.DefaultVector, nil
	}
	return nil, errors.New("collabtest: no vector configured")
}

func (f *Fake) Generate(_ context.Context, prompt, purpose string) (string, error) {
	f.mu.Lock()
	f.GenerateCalls = append(f.GenerateCalls, purpose)
	f.mu.Unlock()
	if f.GenerateFn != nil {
		return f.GenerateFn(prompt, purpose)
	}
	if f.GenerateErr != nil {
		return "", f.GenerateErr
	}
	if r, ok := f.Responses[purpose]; ok {
		return r, nil
	}
	return "", errors.New("collabtest: no response configured")
}
