package generator

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

type BreakerSettings struct {
	Name string
	// ConsecutiveFailures trips the breaker; zero disables tripping.
	ConsecutiveFailures uint32
	Cooldown            time.Duration
	OnStateChange       func(name string, from, to gobreaker.State)
}

// Breaker short-circuits generation after repeated backend failures so a
// struggling model is not hammered while it recovers.
type Breaker struct {
	next Generator
	cb   *gobreaker.CircuitBreaker
}

func NewBreaker(next Generator, s BreakerSettings) *Breaker {
	if s.Name == "" {
		s.Name = "generator"
	}
	threshold := s.ConsecutiveFailures
	settings := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return threshold > 0 && counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: s.OnStateChange,
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) Generate(ctx context.Context, prompt string, cfg Config) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Generate(ctx, prompt, cfg)
	})
	if err != nil {
		return "", Fail("breaker", err)
	}
	text, _ := out.(string)
	return text, nil
}
