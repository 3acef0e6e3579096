package sitectl

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks unusable configuration or host naming.
	ErrConfiguration = errors.New("configuration error")

	// ErrProvision marks template install or runtime setup failures.
	ErrProvision = errors.New("provision error")

	// ErrSourceSync marks clone, fetch or reset failures.
	ErrSourceSync = errors.New("source sync error")

	// ErrMaintenance marks collectstatic or migrate failures.
	ErrMaintenance = errors.New("maintenance error")

	// ErrSwitch marks a switchover that stopped part way.
	ErrSwitch = errors.New("switch error")
)

// StepError names the host and runbook step that failed.
type StepError struct {
	Host string
	Step string
	Kind error
	Err  error
}

func (e *StepError) Error() string {
	if e.Host == "" {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Host, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func (e *StepError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func stepErr(kind error, host, step string, err error) error {
	if err == nil {
		return nil
	}
	return &StepError{Host: host, Step: step, Kind: kind, Err: err}
}
