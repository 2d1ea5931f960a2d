package canopy

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrStructural reports a rejected tree mutation (cycle, foreign child,
	// bad index). The tree is left unchanged.
	ErrStructural = errors.New("canopy: structural violation")
	// ErrNonInvertible reports an attempt to invert a singular transform.
	ErrNonInvertible = errors.New("canopy: non-invertible transform")
	// ErrInvalidConfig reports a rejected constructor or setter argument.
	ErrInvalidConfig = errors.New("canopy: invalid configuration")
)

// StructuralError describes a rejected tree mutation.
type StructuralError struct {
	Op     string
	Parent *Node
	Child  *Node
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("canopy: %s %s -> %s: %s", e.Op, nodeLabel(e.Parent), nodeLabel(e.Child), e.Reason)
}

func (e *StructuralError) Unwrap() error { return ErrStructural }

// NonInvertibleError carries the singular transform that could not be inverted.
type NonInvertibleError struct {
	Transform Transform
}

func (e *NonInvertibleError) Error() string {
	return fmt.Sprintf("canopy: transform %v is not invertible (det=%g)", e.Transform, e.Transform.Determinant())
}

func (e *NonInvertibleError) Unwrap() error { return ErrNonInvertible }

// ConfigError describes a rejected configuration value.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("canopy: invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

func nodeLabel(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	if n.Name != "" {
		return fmt.Sprintf("%q", n.Name)
	}
	return fmt.Sprintf("#%d", n.ID)
}
