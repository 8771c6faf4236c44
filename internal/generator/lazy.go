package generator

import (
	"context"
	"errors"
	"sync"
)

var ErrNotInitialized = errors.New("generator: model not initialized")

// InitFunc loads the model resource and returns a ready Generator.
type InitFunc func(ctx context.Context) (Generator, error)

// Lazy initializes its Generator on first use. Once initialized it never
// returns to the uninitialized state; a failed attempt may be retried.
type Lazy struct {
	mu   sync.Mutex
	init InitFunc
	gen  Generator
}

func NewLazy(init InitFunc) *Lazy {
	return &Lazy{init: init}
}

func (l *Lazy) Init(ctx context.Context) error {
	_, err := l.load(ctx)
	return err
}

func (l *Lazy) Initialized() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen != nil
}

func (l *Lazy) Generate(ctx context.Context, prompt string, cfg Config) (string, error) {
	gen, err := l.load(ctx)
	if err != nil {
		return "", err
	}
	return gen.Generate(ctx, prompt, cfg)
}

func (l *Lazy) load(ctx context.Context) (Generator, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != nil {
		return l.gen, nil
	}
	if l.init == nil {
		return nil, Fail("init", ErrNotInitialized)
	}
	gen, err := l.init(ctx)
	if err != nil {
		return nil, Fail("init", err)
	}
	if gen == nil {
		return nil, Fail("init", ErrNotInitialized)
	}
	l.gen = gen
	return gen, nil
}
