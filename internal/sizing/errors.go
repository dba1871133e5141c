package sizing

import (
	"errors"
	"fmt"
)

// InputError reports a user-supplied quantity that makes a formula stage
// undefined (non-positive pressure, negative square-root radicand, inverted
// geometry). Input errors abort the call; nothing is clamped.
type InputError struct {
	Quantity string  // offending quantity, e.g. "delta_p"
	Value    float64 // value as received
	Stage    string  // formula stage that detected it
}

func (e *InputError) Error() string {
	return fmt.Sprintf("sizing: invalid input %s=%g at %s", e.Quantity, e.Value, e.Stage)
}

// ConfigError reports a data-quality problem in supplied coefficient data
// (missing style curve, non-monotonic reference table). It is distinct from
// InputError: the fix is in configuration, not in the process inputs.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "sizing: configuration: " + e.Reason
}

// IsInputError reports whether err is (or wraps) an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func inputErr(quantity string, value float64, stage string) error {
	return &InputError{Quantity: quantity, Value: value, Stage: stage}
}
