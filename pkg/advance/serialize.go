package advance

import (
	"encoding/json"
	"fmt"
)

// wireCondition is the canonical tagged-union representation of a Condition,
// used by pkg/recording to persist and replay the condition state attached
// to a trip, and by any future foreign-function boundary.
type wireCondition struct {
	Type string `json:"type"`

	// DistanceToEndOfStep, DistanceFromStep, DistanceEntryAndExit, RelativeLineStringDistance
	Distance         *float64 `json:"distance,omitempty"`
	MinAccuracy      *float64 `json:"min_horizontal_accuracy,omitempty"`
	DistanceToEnd    *float64 `json:"distance_to_end_of_step,omitempty"`
	DistanceAfterEnd *float64 `json:"distance_after_end_of_step,omitempty"`
	HasReachedEnd    *bool    `json:"has_reached_end,omitempty"`

	AutomaticAdvanceDistance *float64 `json:"automatic_advance_distance,omitempty"`

	// Or, And
	Conditions []wireCondition `json:"conditions,omitempty"`
}

// Marshal encodes a Condition into its canonical tagged-union JSON form.
func Marshal(c Condition) ([]byte, error) {
	w, err := toWire(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// Unmarshal decodes a Condition from its canonical tagged-union JSON form.
func Unmarshal(data []byte) (Condition, error) {
	var w wireCondition
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return fromWire(w)
}

func toWire(c Condition) (wireCondition, error) {
	switch v := c.(type) {
	case Manual:
		return wireCondition{Type: "manual"}, nil

	case DistanceToEndOfStep:
		return wireCondition{
			Type:        "distance_to_end_of_step",
			Distance:    &v.Distance,
			MinAccuracy: &v.MinAccuracy,
		}, nil

	case DistanceFromStep:
		return wireCondition{
			Type:        "distance_from_step",
			Distance:    &v.Distance,
			MinAccuracy: &v.MinAccuracy,
		}, nil

	case Or:
		children := make([]wireCondition, len(v.Conditions))
		for i, child := range v.Conditions {
			w, err := toWire(child)
			if err != nil {
				return wireCondition{}, err
			}
			children[i] = w
		}
		return wireCondition{Type: "or", Conditions: children}, nil

	case And:
		children := make([]wireCondition, len(v.Conditions))
		for i, child := range v.Conditions {
			w, err := toWire(child)
			if err != nil {
				return wireCondition{}, err
			}
			children[i] = w
		}
		return wireCondition{Type: "and", Conditions: children}, nil

	case DistanceEntryAndExit:
		hasReachedEnd := v.HasReachedEnd
		return wireCondition{
			Type:             "distance_entry_and_exit",
			DistanceToEnd:    &v.DistanceToEnd,
			DistanceAfterEnd: &v.DistanceAfterEnd,
			MinAccuracy:      &v.MinAccuracy,
			HasReachedEnd:    &hasReachedEnd,
		}, nil

	case RelativeLineStringDistance:
		return wireCondition{
			Type:                     "relative_linestring_distance",
			MinAccuracy:              &v.MinAccuracy,
			AutomaticAdvanceDistance: v.AutomaticAdvanceDistance,
		}, nil

	default:
		return wireCondition{}, fmt.Errorf("advance: unknown condition type %T", c)
	}
}

func fromWire(w wireCondition) (Condition, error) {
	switch w.Type {
	case "manual":
		return Manual{}, nil

	case "distance_to_end_of_step":
		if w.Distance == nil || w.MinAccuracy == nil {
			return nil, fmt.Errorf("advance: distance_to_end_of_step missing required fields")
		}
		return DistanceToEndOfStep{Distance: *w.Distance, MinAccuracy: *w.MinAccuracy}, nil

	case "distance_from_step":
		if w.Distance == nil || w.MinAccuracy == nil {
			return nil, fmt.Errorf("advance: distance_from_step missing required fields")
		}
		return DistanceFromStep{Distance: *w.Distance, MinAccuracy: *w.MinAccuracy}, nil

	case "or":
		children := make([]Condition, len(w.Conditions))
		for i, cw := range w.Conditions {
			c, err := fromWire(cw)
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		return Or{Conditions: children}, nil

	case "and":
		children := make([]Condition, len(w.Conditions))
		for i, cw := range w.Conditions {
			c, err := fromWire(cw)
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		return And{Conditions: children}, nil

	case "distance_entry_and_exit":
		if w.DistanceToEnd == nil || w.DistanceAfterEnd == nil || w.MinAccuracy == nil {
			return nil, fmt.Errorf("advance: distance_entry_and_exit missing required fields")
		}
		hasReachedEnd := false
		if w.HasReachedEnd != nil {
			hasReachedEnd = *w.HasReachedEnd
		}
		return DistanceEntryAndExit{
			DistanceToEnd:    *w.DistanceToEnd,
			DistanceAfterEnd: *w.DistanceAfterEnd,
			MinAccuracy:      *w.MinAccuracy,
			HasReachedEnd:    hasReachedEnd,
		}, nil

	case "relative_linestring_distance":
		if w.MinAccuracy == nil {
			return nil, fmt.Errorf("advance: relative_linestring_distance missing required fields")
		}
		return RelativeLineStringDistance{
			MinAccuracy:              *w.MinAccuracy,
			AutomaticAdvanceDistance: w.AutomaticAdvanceDistance,
		}, nil

	default:
		return nil, fmt.Errorf("advance: unknown condition type %q", w.Type)
	}
}
