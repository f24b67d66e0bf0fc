// Package validation checks caller-supplied requests before they reach the
// engine, combining go-playground struct tags with targeted domain checks.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/flownet-io/flownet/pkg/flowgraph"
)

// validate is a singleton validator instance
var validate = validator.New()

// FlowRequest is a request to add a flow. ID is optional; the engine
// assigns one when empty.
type FlowRequest struct {
	ID          string    `json:"id" validate:"omitempty,max=100"`
	SourceID    string    `json:"source_id" validate:"required,max=100"`
	TargetID    string    `json:"target_id" validate:"required,max=100"`
	Amount      float64   `json:"amount" validate:"gte=0"`
	Type        string    `json:"flow_type" validate:"required"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description" validate:"max=1000"`
}

// ValidateFlowRequest validates a flow mutation and resolves its type
// against the closed FlowType set.
func ValidateFlowRequest(req *FlowRequest) (flowgraph.FlowType, error) {
	if req == nil {
		return 0, errors.New("flow request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return 0, formatValidationError(err)
	}
	if req.Amount < 0 {
		return 0, fmt.Errorf("Amount: %w", flowgraph.ErrNegativeAmount)
	}
	flowType, err := flowgraph.ParseFlowType(req.Type)
	if err != nil {
		return 0, err
	}
	return flowType, nil
}

// PathMethod selects a path search strategy. The set is closed.
type PathMethod string

const (
	MethodShortest PathMethod = "shortest"
	MethodMaxFlow  PathMethod = "maxflow"
	MethodAll      PathMethod = "all"
)

// PathRequest is a path query between two nodes.
type PathRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Method string `json:"method" validate:"required"`
}

// ValidatePathRequest validates a path query and resolves its method.
func ValidatePathRequest(req *PathRequest) (PathMethod, error) {
	if req == nil {
		return "", errors.New("path request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return "", formatValidationError(err)
	}
	switch PathMethod(req.Method) {
	case MethodShortest, MethodMaxFlow, MethodAll:
		return PathMethod(req.Method), nil
	default:
		return "", fmt.Errorf("method %q: %w", req.Method, flowgraph.ErrInvalidMethod)
	}
}

// BoundsRequest is a rectangular lat/lng query box.
type BoundsRequest struct {
	MinLat float64 `json:"min_lat" validate:"gte=-90,lte=90"`
	MinLng float64 `json:"min_lng" validate:"gte=-180,lte=180"`
	MaxLat float64 `json:"max_lat" validate:"gte=-90,lte=90"`
	MaxLng float64 `json:"max_lng" validate:"gte=-180,lte=180"`
}

// ValidateBoundsRequest rejects out-of-range or inverted boxes.
func ValidateBoundsRequest(req *BoundsRequest) error {
	if req == nil {
		return errors.New("bounds request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if req.MinLat > req.MaxLat || req.MinLng > req.MaxLng {
		return fmt.Errorf("inverted bounding box: %w", flowgraph.ErrInvalidBounds)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q constraint", ve.Field(), ve.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
