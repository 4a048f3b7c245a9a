package dispatch

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/wrdo/mailrouter/internal/enum"
)

type Severity int

const (
	// SeverityFatal fails the dispatch.
	SeverityFatal Severity = iota
	// SeverityBestEffort is logged and recorded only.
	SeverityBestEffort
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityBestEffort:
		return "best-effort"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// DeliveryFailure is the aggregated primary delivery error. It carries the first failed
// action in action set order; Failed lists every action that failed.
type DeliveryFailure struct {
	Action enum.DeliveryAction
	Err    error
	Failed []enum.DeliveryAction
}

func (f *DeliveryFailure) Error() string {
	return "email operation failed: " + f.Err.Error()
}

func (f *DeliveryFailure) Unwrap() error {
	return f.Err
}

// Failure is one entry of a Report: a delivery action or push channel that did not succeed.
type Failure struct {
	Stage    string
	Severity Severity
	Err      error
}

type Report struct {
	DispatchId string
	Actions    ActionSet
	Failures   []Failure
	primary    *DeliveryFailure
}

func (r *Report) addPrimary(failure *DeliveryFailure) {
	r.primary = failure
	for _, action := range failure.Failed {
		r.Failures = append(r.Failures, Failure{Stage: action.String(), Severity: SeverityFatal, Err: failure.Err})
	}
}

func (r *Report) addBestEffort(channel enum.PushChannel, err error) {
	r.Failures = append(r.Failures, Failure{Stage: channel.String(), Severity: SeverityBestEffort, Err: err})
}

// Err is the primary delivery failure, or nil. Best-effort failures never surface here.
func (r *Report) Err() error {
	if r.primary == nil {
		return nil
	}
	return r.primary
}

func (r *Report) FailuresBySeverity(severity Severity) []Failure {
	var result []Failure
	for _, f := range r.Failures {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}

// FailureMessages maps stage to error text, for the delivery log.
func (r *Report) FailureMessages() map[string]interface{} {
	result := make(map[string]interface{}, len(r.Failures))
	for _, f := range r.Failures {
		result[f.Stage] = f.Err.Error()
	}
	return result
}

func asDeliveryFailure(err error) (*DeliveryFailure, bool) {
	var failure *DeliveryFailure
	ok := errors.As(err, &failure)
	return failure, ok
}
