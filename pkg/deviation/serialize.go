package deviation

import (
	"encoding/json"
	"fmt"
)

// wireDetector is the canonical tagged-union representation of a Detector,
// used by pkg/recording to persist and replay the controller configuration
// a trip was run with. CustomFunc detectors cannot be represented and
// Marshal rejects them.
type wireDetector struct {
	Type                   string   `json:"type"`
	MinAccuracy            *float64 `json:"min_horizontal_accuracy,omitempty"`
	MaxAcceptableDeviation *float64 `json:"max_acceptable_deviation,omitempty"`
}

// Marshal encodes a Detector into its canonical tagged-union JSON form. A
// nil Detector encodes as JSON null.
func Marshal(d Detector) ([]byte, error) {
	if d == nil {
		return json.Marshal(nil)
	}
	w, err := toWire(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// Unmarshal decodes a Detector from its canonical tagged-union JSON form. A
// JSON null decodes to a nil Detector.
func Unmarshal(data []byte) (Detector, error) {
	var w *wireDetector
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w == nil {
		return nil, nil
	}
	return fromWire(*w)
}

func toWire(d Detector) (wireDetector, error) {
	switch v := d.(type) {
	case None:
		return wireDetector{Type: "none"}, nil
	case StaticThreshold:
		return wireDetector{
			Type:                   "static_threshold",
			MinAccuracy:            &v.MinAccuracy,
			MaxAcceptableDeviation: &v.MaxAcceptableDeviation,
		}, nil
	default:
		return wireDetector{}, fmt.Errorf("deviation: detector type %T cannot be serialized", d)
	}
}

func fromWire(w wireDetector) (Detector, error) {
	switch w.Type {
	case "none":
		return None{}, nil
	case "static_threshold":
		if w.MinAccuracy == nil || w.MaxAcceptableDeviation == nil {
			return nil, fmt.Errorf("deviation: static_threshold missing required fields")
		}
		return StaticThreshold{MinAccuracy: *w.MinAccuracy, MaxAcceptableDeviation: *w.MaxAcceptableDeviation}, nil
	default:
		return nil, fmt.Errorf("deviation: unknown detector type %q", w.Type)
	}
}
