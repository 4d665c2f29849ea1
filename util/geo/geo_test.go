package geo

import (
	"math"
	"testing"
)

func TestHaversineM(t *testing.T) {
	if d := HaversineM(-6.2, 106.8, -6.2, 106.8); d != 0 {
		t.Fatalf("same point: got %f; want 0", d)
	}

	// one degree of latitude is about 111.19 km
	d := HaversineM(0, 0, 1, 0)
	if math.Abs(d-111195) > 100 {
		t.Fatalf("one degree latitude: got %f; want ~111195", d)
	}

	// Monas to Bundaran HI, roughly 2.3 km
	d = HaversineM(-6.1754, 106.8272, -6.1951, 106.8230)
	if d < 2000 || d > 2600 {
		t.Fatalf("Monas-HI: got %f; want ~2300", d)
	}

	// symmetric
	a := HaversineM(-6.2, 106.8, -6.3, 106.9)
	b := HaversineM(-6.3, 106.9, -6.2, 106.8)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("not symmetric: %f vs %f", a, b)
	}
}
