package health

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-collide/pkg/logging"
)

// BreakerHealthCheck runs another check through a circuit breaker. After
// maxFailures consecutive failures the inner check is skipped and probes
// fail fast until the breaker's timeout lets a trial run through. It suits
// checks that are expensive to repeat, such as a brute-force pair scan.
type BreakerHealthCheck struct {
	check   HealthCheck
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerHealthCheck wraps check. A nil logger discards state changes.
func NewBreakerHealthCheck(check HealthCheck, maxFailures uint32, timeout time.Duration, logger *logging.Logger) *BreakerHealthCheck {
	if logger == nil {
		logger = logging.Nop()
	}
	if maxFailures == 0 {
		maxFailures = 1
	}
	settings := gobreaker.Settings{
		Name:        check.Name(),
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "health check breaker state changed",
				"check", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return &BreakerHealthCheck{check: check, breaker: gobreaker.NewCircuitBreaker(settings)}
}

func (b *BreakerHealthCheck) Name() string { return b.check.Name() }

func (b *BreakerHealthCheck) Check(ctx context.Context) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.check.Check(ctx)
	})
	if err != nil {
		return fmt.Errorf("circuit breaker: %w", err)
	}
	return nil
}

// State reports the breaker state: closed, half-open or open.
func (b *BreakerHealthCheck) State() gobreaker.State {
	return b.breaker.State()
}
