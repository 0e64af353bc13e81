package facestudio

import "image"

// Box is an axis-aligned pixel rectangle describing a detected face region.
// It is the canonical bounding-box representation: the orchestrator converts
// every external detector result into this form before it travels further.
type Box struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the box has no area.
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Clamp confines the box to a w×h frame so that X+Width <= w and
// Y+Height <= h. The result may be empty if the box lies fully outside.
func (b Box) Clamp(w, h int) Box {
	if b.X < 0 {
		b.Width += b.X
		b.X = 0
	}
	if b.Y < 0 {
		b.Height += b.Y
		b.Y = 0
	}
	if b.X+b.Width > w {
		b.Width = w - b.X
	}
	if b.Y+b.Height > h {
		b.Height = h - b.Y
	}
	if b.X >= w || b.Y >= h {
		b.Width, b.Height = 0, 0
	}
	return b
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Center returns the box center point in pixel coordinates.
func (b Box) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// boxFromRect converts an image.Rectangle back to the canonical form.
func boxFromRect(r image.Rectangle) Box {
	return Box{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}
