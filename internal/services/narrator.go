package services

import (
	"context"
)

// GuardedNarrator fails fast through a circuit breaker while the generator is unhealthy.
type GuardedNarrator struct {
	next    NarrativeGenerator
	breaker *CircuitBreaker
}

func NewGuardedNarrator(next NarrativeGenerator, breaker *CircuitBreaker) *GuardedNarrator {
	return &GuardedNarrator{next: next, breaker: breaker}
}

func (g *GuardedNarrator) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		out, err := g.next.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}
