package mimic

import (
	"errors"
	"fmt"
)

var (
	// ErrHostUnavailable reports that the host runtime was not ready when
	// the controller was constructed.
	ErrHostUnavailable = errors.New("host runtime not available")

	// ErrModelUnavailable reports that the host failed to supply a valid
	// model reference.
	ErrModelUnavailable = errors.New("model not available")
)

// MissingJointError reports that a required joint could not be resolved.
// Role is "driver" or "follower"; Name is empty when the identifier itself
// was missing from the parameters.
type MissingJointError struct {
	Role string
	Name string
}

func (e *MissingJointError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("no %s joint configured", e.Role)
	}
	return fmt.Sprintf("no joint named %q for %s", e.Name, e.Role)
}

// InvalidParameterError reports a parameter that failed validation.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}
