package terrain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidColor     = errors.New("color must be exactly six hexadecimal characters")
	ErrInvalidMaxHeight = errors.New("max height must be finite and non-negative")
	ErrInvalidExtent    = errors.New("extent must be finite and representable in unit steps")

	// ErrNumericDegeneracy marks geometry that carries NaN or infinite
	// coordinates, typically produced by a zero falloff radius.
	ErrNumericDegeneracy = errors.New("mesh contains non-finite values")
)

// ConfigurationError reports a parameter that prevents generation from
// starting. No geometry is produced when it is returned.
type ConfigurationError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid terrain configuration: %s=%v: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
