package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single configuration validation error
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d configuration errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the accepted logging.level values.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the accepted logging.format values.
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// minProvableBits: anything that fits in a machine word can always be
// proven.
const minProvableBits = 64

// Validate checks the configuration for invalid values.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateDatabase()...)
	errors = append(errors, c.validateLimits()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateDatabase() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Database.Path) == "" {
		errors = append(errors, ValidationError{
			Field:   "database.path",
			Value:   c.Database.Path,
			Message: "must not be empty",
		})
	}
	if c.Database.MaxConnections < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.max_connections",
			Value:   c.Database.MaxConnections,
			Message: "must be at least 1",
		})
	}

	return errors
}

func (c *Config) validateLimits() []ValidationError {
	var errors []ValidationError
	l := c.Limits

	if l.MaxNumberBits <= 0 {
		errors = append(errors, ValidationError{
			Field:   "limits.max_number_bits",
			Value:   l.MaxNumberBits,
			Message: "must be positive",
		})
	}
	if l.ProvableBits < minProvableBits {
		errors = append(errors, ValidationError{
			Field:   "limits.provable_bits",
			Value:   l.ProvableBits,
			Message: fmt.Sprintf("must be at least %d", minProvableBits),
		})
	}
	if l.ProbableBits < l.ProvableBits {
		errors = append(errors, ValidationError{
			Field:   "limits.probable_bits",
			Value:   l.ProbableBits,
			Message: fmt.Sprintf("must be at least limits.provable_bits (%d)", l.ProvableBits),
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if !slices.Contains(ValidLogFormats(), c.Logging.Format) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}

	return errors
}
