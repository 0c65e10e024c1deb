package shared

import "fmt"

// ErrorKind identifies the class of a chart error.
type ErrorKind int

const (
	EmptySeries ErrorKind = iota
	InsufficientPoints
	DegeneratePriceRange
	InvalidViewport
	InvalidPrice
)

// String stringifies the provided error kind.
func (k ErrorKind) String() string {
	switch k {
	case EmptySeries:
		return "empty series"
	case InsufficientPoints:
		return "insufficient points"
	case DegeneratePriceRange:
		return "degenerate price range"
	case InvalidViewport:
		return "invalid viewport"
	case InvalidPrice:
		return "invalid price"
	default:
		return "unknown"
	}
}

// Error makes an error kind usable as an errors.Is target.
func (k ErrorKind) Error() string {
	return k.String()
}

// ChartError represents a failure to normalize a price series.
type ChartError struct {
	Kind   ErrorKind
	Detail string
}

// Error returns the error message.
func (e *ChartError) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}

	return fmt.Sprintf("%s: %s", e.Kind.String(), e.Detail)
}

// Is reports whether the target is the same kind of chart error.
func (e *ChartError) Is(target error) bool {
	switch t := target.(type) {
	case ErrorKind:
		return e.Kind == t
	case *ChartError:
		return e.Kind == t.Kind
	default:
		return false
	}
}

// NewChartError initializes a new chart error.
func NewChartError(kind ErrorKind, format string, args ...any) *ChartError {
	return &ChartError{
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	}
}
