package geometry

import "math"

// ClampToCanvas keeps an item's bounding box inside [0, canvasW] x [0, canvasH].
// Returns the adjusted top-left position. An item wider or taller than the
// canvas is pinned to the left/top edge rather than rejected.
func ClampToCanvas(x, y, width, height, canvasW, canvasH float64) (float64, float64) {
	maxX := canvasW - width
	maxY := canvasH - height

	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}

	return math.Max(0, math.Min(x, maxX)), math.Max(0, math.Min(y, maxY))
}

// RotatedBounds returns the axis-aligned bounding box of a w x h box placed at
// (x, y) and rotated clockwise by the given degrees about its center.
func RotatedBounds(x, y, w, h, degrees float64) Rect {
	if degrees == 0 {
		return Rect{X: x, Y: y, Width: w, Height: h}
	}

	cx := x + w/2
	cy := y + h/2
	m := Translate(cx, cy).Multiply(RotateDegrees(degrees)).Multiply(Translate(-cx, -cy))
	return m.TransformRect(Rect{X: x, Y: y, Width: w, Height: h})
}

// Text metrics approximation used for clamping and hit testing when no font
// face is loaded. The average glyph advance of common UI fonts sits near
// 0.6em; line height near 1.2em.
const (
	textAdvanceFactor = 0.6
	textLineFactor    = 1.2
)

// MeasureText approximates the pixel box of a text run at the given font size.
// Multi-line input measures the widest line and counts lines.
func MeasureText(s string, fontSize float64) (w, h float64) {
	if s == "" {
		return 0, fontSize * textLineFactor
	}

	lines := 1
	lineLen := 0
	maxLen := 0
	for _, r := range s {
		if r == '\n' {
			lines++
			lineLen = 0
			continue
		}
		lineLen++
		if lineLen > maxLen {
			maxLen = lineLen
		}
	}

	return float64(maxLen) * fontSize * textAdvanceFactor, float64(lines) * fontSize * textLineFactor
}
