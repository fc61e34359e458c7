package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

var (
	ErrOpenState       = gobreaker.ErrOpenState
	ErrTooManyRequests = gobreaker.ErrTooManyRequests
)

type Settings struct {
	Name string
	// ConsecutiveFailures trips the breaker
	ConsecutiveFailures uint32
	// Timeout is how long the breaker stays open before probing
	Timeout time.Duration
	// MaxRequests allowed while half-open
	MaxRequests uint32
	// IsSuccessful decides whether an error counts against the breaker
	IsSuccessful func(err error) bool
	// OnStateChange is called on every transition
	OnStateChange func(name string, from, to gobreaker.State)
}

// Breaker wraps a gobreaker circuit breaker for calls returning T.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

func New[T any](s Settings) *Breaker[T] {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.MaxRequests == 0 {
		s.MaxRequests = 1
	}
	threshold := s.ConsecutiveFailures

	return &Breaker[T]{
		cb: gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
			Name:        s.Name,
			MaxRequests: s.MaxRequests,
			Timeout:     s.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful:  s.IsSuccessful,
			OnStateChange: s.OnStateChange,
		}),
	}
}

func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	return b.cb.Execute(fn)
}

func (b *Breaker[T]) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker[T]) Name() string {
	return b.cb.Name()
}
