package waypoint

import (
	"encoding/json"
	"fmt"
)

// wireChecker is the canonical tagged-union representation of a Checker,
// used by pkg/recording to persist and replay the controller configuration
// a trip was run with.
type wireChecker struct {
	Type   string   `json:"type"`
	Radius *float64 `json:"radius,omitempty"`
}

// Marshal encodes a Checker into its canonical tagged-union JSON form. A nil
// checker encodes as JSON null.
func Marshal(c Checker) ([]byte, error) {
	if c == nil {
		return json.Marshal(nil)
	}
	w, err := toWire(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// Unmarshal decodes a Checker from its canonical tagged-union JSON form. A
// JSON null decodes to a nil Checker.
func Unmarshal(data []byte) (Checker, error) {
	var w *wireChecker
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w == nil {
		return nil, nil
	}
	return fromWire(*w)
}

func toWire(c Checker) (wireChecker, error) {
	switch v := c.(type) {
	case WithinRange:
		return wireChecker{Type: "within_range", Radius: &v.Radius}, nil
	case AlongAdvancingStep:
		return wireChecker{Type: "along_advancing_step", Radius: &v.Radius}, nil
	default:
		return wireChecker{}, fmt.Errorf("waypoint: unknown checker type %T", c)
	}
}

func fromWire(w wireChecker) (Checker, error) {
	switch w.Type {
	case "within_range":
		if w.Radius == nil {
			return nil, fmt.Errorf("waypoint: within_range missing radius")
		}
		return WithinRange{Radius: *w.Radius}, nil
	case "along_advancing_step":
		if w.Radius == nil {
			return nil, fmt.Errorf("waypoint: along_advancing_step missing radius")
		}
		return AlongAdvancingStep{Radius: *w.Radius}, nil
	default:
		return nil, fmt.Errorf("waypoint: unknown checker type %q", w.Type)
	}
}
