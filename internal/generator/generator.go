// Package generator defines the text-generation port used by the conversion
// engine together with the wrappers that manage the shared model resource:
// lazy one-time initialization and a circuit breaker.
package generator

import (
	"context"
	"errors"
	"fmt"
)

// Generator produces raw text for a prompt. The text is the full decoded
// sequence: the prompt followed by the model's continuation, so the answer
// follows the prompt's final marker. Implementations should wrap their errors
// in *Failure.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg Config) (string, error)
}

// Config is the set of sampling knobs sent with every generation call.
type Config struct {
	MaxNewTokens      int
	Temperature       float64
	TopP              float64
	RepetitionPenalty float64
	NoRepeatNGramSize int
	// Seed makes sampling reproducible on backends that accept one.
	Seed *int64
}

func DefaultConfig() Config {
	return Config{
		MaxNewTokens:      128,
		Temperature:       0.1,
		TopP:              0.9,
		RepetitionPenalty: 1.3,
		NoRepeatNGramSize: 3,
	}
}

// WithSeed returns a copy of c with the given seed.
func (c Config) WithSeed(seed int64) Config {
	c.Seed = &seed
	return c
}

// Failure is any fault raised by a generation backend.
type Failure struct {
	Op  string
	Err error
}

func (f *Failure) Error() string {
	if f.Op == "" {
		return fmt.Sprintf("generation failed: %v", f.Err)
	}
	return fmt.Sprintf("generation failed (%s): %v", f.Op, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func Fail(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Failure
	if errors.As(err, &existing) {
		return err
	}
	return &Failure{Op: op, Err: err}
}

func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// Func adapts an ordinary function to the Generator interface.
type Func func(ctx context.Context, prompt string, cfg Config) (string, error)

func (f Func) Generate(ctx context.Context, prompt string, cfg Config) (string, error) {
	return f(ctx, prompt, cfg)
}
