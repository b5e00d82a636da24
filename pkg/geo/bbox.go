package geo

// BoundingBox is the smallest axis-aligned rectangle, in WGS84 degrees,
// enclosing a set of coordinates.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// NewBoundingBox returns an empty bounding box ready to be grown with
// Extend. Its bounds start inverted (MinLat 90, MinLon 180, MaxLat -90,
// MaxLon -180), and a box that is never extended keeps them.
func NewBoundingBox() *BoundingBox {
	return &BoundingBox{
		MinLat: 90,
		MinLon: 180,
		MaxLat: -90,
		MaxLon: -180,
	}
}

// Extend grows the bounding box to include the given location.
func (b *BoundingBox) Extend(loc Location) {
	if loc.Latitude < b.MinLat {
		b.MinLat = loc.Latitude
	}
	if loc.Latitude > b.MaxLat {
		b.MaxLat = loc.Latitude
	}
	if loc.Longitude < b.MinLon {
		b.MinLon = loc.Longitude
	}
	if loc.Longitude > b.MaxLon {
		b.MaxLon = loc.Longitude
	}
}

// SW returns the southwest corner of the bounding box.
func (b BoundingBox) SW() Location {
	return Location{Latitude: b.MinLat, Longitude: b.MinLon}
}

// NE returns the northeast corner of the bounding box.
func (b BoundingBox) NE() Location {
	return Location{Latitude: b.MaxLat, Longitude: b.MaxLon}
}

// BoundingBoxFromPolyline derives the bounding box of an ordered sequence of
// coordinates. It returns false if the polyline is empty.
func BoundingBoxFromPolyline(points []Location) (BoundingBox, bool) {
	if len(points) == 0 {
		return BoundingBox{}, false
	}
	bbox := NewBoundingBox()
	for _, p := range points {
		bbox.Extend(p)
	}
	return *bbox, true
}
