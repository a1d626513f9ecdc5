package circuitbreaker

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Breaker wraps outbound HTTP round trips in a circuit breaker so a
// misbehaving upstream stops consuming request goroutines quickly.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[*http.Response]
}

func New(name string) *Breaker {
	return &Breaker{
		cb: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Do executes the request through the breaker. Transport errors count as
// failures; HTTP status handling is left to the caller.
func (b *Breaker) Do(client *http.Client, req *http.Request) (*http.Response, error) {
	return b.cb.Execute(func() (*http.Response, error) {
		return client.Do(req)
	})
}
