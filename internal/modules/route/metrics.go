// README: Metrics hook for generation outcomes; the caller injects the collector.
package route

import "time"

type AttemptOutcome string

const (
	AttemptAccepted      AttemptOutcome = "accepted"
	AttemptRejected      AttemptOutcome = "rejected"
	AttemptProviderError AttemptOutcome = "provider_error"
)

type RunOutcome string

const (
	RunAccepted  RunOutcome = "accepted"
	RunExhausted RunOutcome = "exhausted"
	RunCancelled RunOutcome = "cancelled"
)

type Metrics interface {
	ObserveAttempt(outcome AttemptOutcome)
	ObserveRun(outcome RunOutcome, attempts int, elapsed time.Duration)
}

type NopMetrics struct{}

func (NopMetrics) ObserveAttempt(AttemptOutcome)             {}
func (NopMetrics) ObserveRun(RunOutcome, int, time.Duration) {}
