package geo

import (
	"math"
	"testing"
)

func TestEncodeDecodePolylineRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		points    []Location
		precision uint32
	}{
		{
			name: "precision 5",
			points: []Location{
				{Latitude: 38.5, Longitude: -120.2},
				{Latitude: 40.7, Longitude: -120.95},
				{Latitude: 43.252, Longitude: -126.453},
			},
			precision: 5,
		},
		{
			name: "precision 6",
			points: []Location{
				{Latitude: 60.534716, Longitude: -149.543469},
				{Latitude: 60.534991, Longitude: -149.548581},
			},
			precision: 6,
		},
		{
			name:      "empty",
			points:    []Location{},
			precision: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodePolyline(tt.points, tt.precision)
			decoded, err := DecodePolyline(encoded, tt.precision)
			if err != nil {
				t.Fatalf("DecodePolyline: %v", err)
			}
			if len(decoded) != len(tt.points) {
				t.Fatalf("got %d points, want %d", len(decoded), len(tt.points))
			}
			tol := 1.0 / math.Pow(10, float64(tt.precision))
			for i, p := range tt.points {
				if math.Abs(decoded[i].Latitude-p.Latitude) > tol {
					t.Errorf("point %d lat = %v, want %v", i, decoded[i].Latitude, p.Latitude)
				}
				if math.Abs(decoded[i].Longitude-p.Longitude) > tol {
					t.Errorf("point %d lon = %v, want %v", i, decoded[i].Longitude, p.Longitude)
				}
			}
		})
	}
}

func TestDecodeAlaskaPolyline6(t *testing.T) {
	const encoded = `wzvmrBxalf|GcCrX}A|Nu@jI}@pMkBtZ{@x^_Afj@Inn@`

	points, err := DecodePolyline(encoded, 6)
	if err != nil {
		t.Fatalf("DecodePolyline: %v", err)
	}
	if len(points) == 0 {
		t.Fatal("expected at least one decoded point")
	}

	first := points[0]
	if math.Abs(first.Latitude-60.534716) > 1e-4 {
		t.Errorf("first point lat = %v, want ~60.534716", first.Latitude)
	}
	if math.Abs(first.Longitude-(-149.543469)) > 1e-4 {
		t.Errorf("first point lon = %v, want ~-149.543469", first.Longitude)
	}
}

func TestDecodePolylineInvalid(t *testing.T) {
	if _, err := DecodePolyline("\\", 5); err == nil {
		t.Fatal("expected an error for a truncated polyline")
	}
}
