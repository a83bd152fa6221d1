package registry

import "fmt"

// Spec carries the tag metadata supplied at registration time. All fields
// are optional free-form strings; Name is auto-generated when empty.
type Spec struct {
	Name   string
	Phase  string
	Path   string
	Method string
}

// Validate rejects specs that scope a handler to a method without saying
// which path the method applies to. This runs at registration so the
// failure never reaches dispatch.
func (s Spec) Validate() error {
	if s.Method != "" && s.Path == "" {
		return &ConfigError{Reason: fmt.Sprintf("method %q requires a path", s.Method)}
	}
	return nil
}

// ConfigError is returned when a registration spec is malformed.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid middleware spec: " + e.Reason
}

// IsConfigError returns true if the error is a registration spec failure.
func IsConfigError(err error) bool {
	_, ok := err.(*ConfigError)
	return ok
}
