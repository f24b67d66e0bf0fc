package flowgraph

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeNotFound      = errors.New("node not found")
	ErrFlowNotFound      = errors.New("flow not found")
	ErrScaleNodeNotFound = errors.New("scale node not found")
	ErrInvalidFlowType   = errors.New("invalid flow type")
	ErrInvalidLevel      = errors.New("invalid scale level")
	ErrInvalidMethod     = errors.New("invalid path method")
	ErrInvalidBounds     = errors.New("invalid bounding box")
	ErrNegativeAmount    = errors.New("negative flow amount")
	ErrDuplicateID       = errors.New("duplicate id")
)

// GraphError provides structured error information for graph operations.
type GraphError struct {
	Op     string // Operation that failed (e.g., "AddFlow", "SimulateRemoval")
	Entity string // Entity type (e.g., "node", "flow", "scale node")
	ID     string // Entity ID (if applicable)
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %q: %v", e.Op, e.Entity, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *GraphError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// NodeNotFoundError creates a node not found error.
func NodeNotFoundError(op, nodeID string) error {
	return &GraphError{Op: op, Entity: "node", ID: nodeID, Cause: ErrNodeNotFound}
}

// FlowNotFoundError creates a flow not found error.
func FlowNotFoundError(op, flowID string) error {
	return &GraphError{Op: op, Entity: "flow", ID: flowID, Cause: ErrFlowNotFound}
}

// IsNotFound returns true if the error is any not found error. Callers use
// this to distinguish structured absence from real failures.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound) ||
		errors.Is(err, ErrFlowNotFound) ||
		errors.Is(err, ErrScaleNodeNotFound)
}

// IsInvalidInput returns true if the error reports rejected caller input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidFlowType) ||
		errors.Is(err, ErrInvalidLevel) ||
		errors.Is(err, ErrInvalidMethod) ||
		errors.Is(err, ErrInvalidBounds) ||
		errors.Is(err, ErrNegativeAmount)
}
