package scene

import "fmt"

// SceneValidationError reports a bad obstacle or bounds definition.
// Object is empty when the failing field belongs to the scene itself.
type SceneValidationError struct {
	Object string
	Field  string
	Reason string
}

func (e *SceneValidationError) Error() string {
	if e.Object == "" {
		return fmt.Sprintf("invalid scene field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid scene object %q field %q: %s", e.Object, e.Field, e.Reason)
}

// InvalidResolutionError reports a grid step that is not a positive finite number
type InvalidResolutionError struct {
	Resolution float64
}

func (e *InvalidResolutionError) Error() string {
	return fmt.Sprintf("invalid grid resolution %g ft: must be > 0", e.Resolution)
}
