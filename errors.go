package trafficsim

import (
	"fmt"
	"strings"
)

// ErrorCode represents specific error conditions of the simulation driver
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Command needs a started simulation
	ErrCodeNotInitiated
	// Simulation was already started
	ErrCodeAlreadyInitiated
	// Road name is blank
	ErrCodeInvalidRoadName
	// A road with the same name exists
	ErrCodeDuplicateRoad
	// Configuration is invalid
	ErrCodeInvalidConfiguration
)

// SimulationError represents a rejected driver command
type SimulationError struct {
	Code      ErrorCode
	Operation string
	Message   string
}

func (e *SimulationError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("simulation error: %s", e.Message)
	}
	return fmt.Sprintf("simulation error during %s: %s", e.Operation, e.Message)
}

// Is matches any SimulationError with the same code, so errors.Is works
// against the sentinel values below.
func (e *SimulationError) Is(target error) bool {
	t, ok := target.(*SimulationError)
	return ok && t.Code == e.Code
}

var (
	// ErrNotInitiated is returned by commands issued before StartSimulation
	ErrNotInitiated = &SimulationError{Code: ErrCodeNotInitiated, Message: "simulation has not been started"}

	// ErrAlreadyInitiated is returned by StartSimulation on a started simulation
	ErrAlreadyInitiated = &SimulationError{Code: ErrCodeAlreadyInitiated, Message: "simulation is already started"}

	// ErrInvalidRoadName is returned for blank road names
	ErrInvalidRoadName = &SimulationError{Code: ErrCodeInvalidRoadName, Message: "road name is blank"}

	// ErrDuplicateRoad is returned when a road name is already taken
	ErrDuplicateRoad = &SimulationError{Code: ErrCodeDuplicateRoad, Message: "road already exists"}
)

// NewSimulationError creates a new simulation error
func NewSimulationError(code ErrorCode, operation string, message string) *SimulationError {
	return &SimulationError{
		Code:      code,
		Operation: operation,
		Message:   message,
	}
}

// ConfigurationError represents an invalid configuration value
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// ErrorCollector collects multiple errors during validation
type ErrorCollector struct {
	errors []error
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collector
func (ec *ErrorCollector) Add(err error) {
	if err != nil {
		ec.errors = append(ec.errors, err)
	}
}

// HasErrors returns whether any errors were collected
func (ec *ErrorCollector) HasErrors() bool {
	return len(ec.errors) > 0
}

// GetErrors returns all collected errors
func (ec *ErrorCollector) GetErrors() []error {
	return ec.errors
}

// Err returns nil when nothing was collected, the single error when there is
// one, and the collector itself otherwise.
func (ec *ErrorCollector) Err() error {
	switch len(ec.errors) {
	case 0:
		return nil
	case 1:
		return ec.errors[0]
	default:
		return ec
	}
}

func (ec *ErrorCollector) Error() string {
	if len(ec.errors) == 0 {
		return "no errors"
	}
	if len(ec.errors) == 1 {
		return ec.errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(ec.errors)))
	for i, err := range ec.errors {
		sb.WriteString(fmt.Sprintf("  %d: %v\n", i+1, err))
	}
	return sb.String()
}

// IsSimulationError checks if an error is a SimulationError
func IsSimulationError(err error) bool {
	_, ok := err.(*SimulationError)
	return ok
}

// IsConfigurationError checks if an error is a ConfigurationError or a
// collection of them
func IsConfigurationError(err error) bool {
	switch e := err.(type) {
	case *ConfigurationError:
		return true
	case *ErrorCollector:
		for _, inner := range e.errors {
			if !IsConfigurationError(inner) {
				return false
			}
		}
		return e.HasErrors()
	default:
		return false
	}
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	switch e := err.(type) {
	case *SimulationError:
		return e.Code
	case *ConfigurationError:
		return ErrCodeInvalidConfiguration
	case *ErrorCollector:
		if IsConfigurationError(e) {
			return ErrCodeInvalidConfiguration
		}
		return ErrCodeNone
	default:
		return ErrCodeNone
	}
}
