package normalize

import "fmt"

// Shape names the canonical record a payload is normalized into
type Shape string

const (
	ShapePlan      Shape = "plan"
	ShapeInventory Shape = "inventory"
	ShapeShopping  Shape = "shopping"
)

// NormalizationError is returned only when a payload carries no text at all.
// Malformed but non-empty payloads always degrade instead.
type NormalizationError struct {
	Shape  Shape
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s: %s", e.Shape, e.Reason)
}

func emptyPayload(shape Shape) error {
	return &NormalizationError{Shape: shape, Reason: "no content in upstream payload"}
}
