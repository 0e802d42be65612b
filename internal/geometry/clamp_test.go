package geometry

import (
	"math"
	"testing"
)

func TestClampToCanvas(t *testing.T) {
	tests := []struct {
		name           string
		x, y, w, h     float64
		canvasW        float64
		canvasH        float64
		wantX, wantY   float64
	}{
		{"inside untouched", 100, 100, 50, 50, 500, 500, 100, 100},
		{"past right edge", 480, 100, 50, 50, 500, 500, 450, 100},
		{"past bottom edge", 100, 490, 50, 50, 500, 500, 100, 450},
		{"negative position", -30, -10, 50, 50, 500, 500, 0, 0},
		{"exactly at max", 450, 450, 50, 50, 500, 500, 450, 450},
		{"oversized pins left", 200, 100, 600, 50, 500, 500, 0, 100},
		{"oversized pins top", 100, 200, 50, 700, 500, 500, 100, 0},
		{"oversized both", -50, 800, 600, 700, 500, 500, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotX, gotY := ClampToCanvas(tt.x, tt.y, tt.w, tt.h, tt.canvasW, tt.canvasH)
			if gotX != tt.wantX || gotY != tt.wantY {
				t.Errorf("ClampToCanvas(%v, %v) = (%v, %v), want (%v, %v)",
					tt.x, tt.y, gotX, gotY, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestClampToCanvasInvariant(t *testing.T) {
	// The clamped box never extends past the canvas unless it is larger than
	// the canvas itself, in which case it is pinned at the origin edge.
	for _, w := range []float64{10, 250, 499, 500, 900} {
		for _, x := range []float64{-1000, -1, 0, 250, 499, 2000} {
			gotX, _ := ClampToCanvas(x, 0, w, 10, 500, 500)
			if gotX < 0 {
				t.Fatalf("x=%v w=%v: clamped left of canvas (%v)", x, w, gotX)
			}
			if w <= 500 && gotX+w > 500 {
				t.Fatalf("x=%v w=%v: clamped box exceeds canvas (%v)", x, w, gotX)
			}
			if w > 500 && gotX != 0 {
				t.Fatalf("x=%v w=%v: oversized box not pinned (%v)", x, w, gotX)
			}
		}
	}
}

func TestRotatedBounds(t *testing.T) {
	const eps = 1e-9

	// Zero rotation returns the box untouched.
	b := RotatedBounds(10, 20, 100, 50, 0)
	if b.X != 10 || b.Y != 20 || b.Width != 100 || b.Height != 50 {
		t.Fatalf("unrotated bounds changed: %+v", b)
	}

	// 90 degrees swaps width and height around the same center.
	b = RotatedBounds(0, 0, 100, 50, 90)
	if math.Abs(b.Width-50) > eps || math.Abs(b.Height-100) > eps {
		t.Errorf("90deg bounds = %vx%v, want 50x100", b.Width, b.Height)
	}
	cx, cy := b.Center()
	if math.Abs(cx-50) > eps || math.Abs(cy-25) > eps {
		t.Errorf("90deg center = (%v, %v), want (50, 25)", cx, cy)
	}

	// 45 degrees expands a square by sqrt(2).
	b = RotatedBounds(0, 0, 100, 100, 45)
	want := 100 * math.Sqrt2
	if math.Abs(b.Width-want) > 1e-6 || math.Abs(b.Height-want) > 1e-6 {
		t.Errorf("45deg bounds = %vx%v, want %vx%v", b.Width, b.Height, want, want)
	}

	// 180 degrees leaves the box unchanged.
	b = RotatedBounds(30, 40, 80, 60, 180)
	if math.Abs(b.X-30) > 1e-6 || math.Abs(b.Y-40) > 1e-6 ||
		math.Abs(b.Width-80) > 1e-6 || math.Abs(b.Height-60) > 1e-6 {
		t.Errorf("180deg bounds = %+v, want original box", b)
	}
}

func TestMeasureText(t *testing.T) {
	w, h := MeasureText("hello", 10)
	if w != 5*10*0.6 {
		t.Errorf("width = %v, want %v", w, 5*10*0.6)
	}
	if h != 10*1.2 {
		t.Errorf("height = %v, want %v", h, 10*1.2)
	}

	// Multi-line: widest line wins, lines stack.
	w, h = MeasureText("ab\nlonger\nc", 10)
	if w != 6*10*0.6 {
		t.Errorf("multiline width = %v, want %v", w, 6*10*0.6)
	}
	if h != 3*10*1.2 {
		t.Errorf("multiline height = %v, want %v", h, 3*10*1.2)
	}

	// Empty text still occupies one line.
	w, h = MeasureText("", 10)
	if w != 0 || h != 12 {
		t.Errorf("empty = (%v, %v), want (0, 12)", w, h)
	}
}
