package tiling

import (
	"math"
	"testing"

	"pattern-tiler/pkg/geometry"
)

func TestNormalizeToTile(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		tileSize float64
		want     float64
	}{
		{"zero", 0, 256, 0},
		{"inside", 100, 256, 100},
		{"at boundary", 256, 256, 0},
		{"past boundary", 300, 256, 44},
		{"several tiles out", 1000, 256, 1000 - 3*256},
		{"negative", -56, 256, 200},
		{"negative several tiles", -1000, 256, 24},
		{"fractional", 384.5, 256, 128.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeToTile(tt.v, tt.tileSize)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("NormalizeToTile(%g, %g) = %g, want %g", tt.v, tt.tileSize, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	values := []float64{-1234.5, -256, -0.001, 0, 1, 255.999, 256, 512.25, 99999}
	for _, v := range values {
		once := NormalizeToTile(v, 256)
		twice := NormalizeToTile(once, 256)
		if once != twice {
			t.Errorf("NormalizeToTile not idempotent for %g: %g then %g", v, once, twice)
		}
		if once < 0 || once >= 256 {
			t.Errorf("NormalizeToTile(%g) = %g outside [0, 256)", v, once)
		}

		center := NormalizeToCenterTile(v, 256)
		if center < 256 || center >= 512 {
			t.Errorf("NormalizeToCenterTile(%g) = %g outside [256, 512)", v, center)
		}
		if again := NormalizeToCenterTile(center, 256); again != center {
			t.Errorf("NormalizeToCenterTile not idempotent for %g: %g then %g", v, center, again)
		}
	}
}

func TestAbsolutePosition(t *testing.T) {
	got := AbsolutePosition(geometry.PointInt{X: -2, Y: 1}, geometry.Point2D{X: 10, Y: 20}, 256)
	want := geometry.Point2D{X: -502, Y: 276}
	if got != want {
		t.Errorf("AbsolutePosition = %+v, want %+v", got, want)
	}
}

func TestGridOffsets(t *testing.T) {
	offsets := GridOffsets(GridRadius)
	if len(offsets) != 25 {
		t.Fatalf("len = %d, want 25", len(offsets))
	}
	seen := make(map[geometry.PointInt]bool)
	for _, off := range offsets {
		if off.X < -2 || off.X > 2 || off.Y < -2 || off.Y > 2 {
			t.Errorf("offset %+v outside grid", off)
		}
		if seen[off] {
			t.Errorf("duplicate offset %+v", off)
		}
		seen[off] = true
	}
}
