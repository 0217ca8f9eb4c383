package layout

import "image"

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// Center returns the top-left corner that centers a widthPx x heightPx box
// inside outer. The result is clamped to outer's origin when the box is
// larger than outer.
func Center(outer image.Rectangle, widthPx, heightPx int) image.Point {
	outer = Normalize(outer)
	x := outer.Min.X + (outer.Dx()-widthPx)/2
	y := outer.Min.Y + (outer.Dy()-heightPx)/2
	if x < outer.Min.X {
		x = outer.Min.X
	}
	if y < outer.Min.Y {
		y = outer.Min.Y
	}
	return image.Pt(x, y)
}

// Fit returns the largest rectangle with the aspect ratio of
// widthPx x heightPx that fits inside outer, centered (letterboxed).
func Fit(outer image.Rectangle, widthPx, heightPx int) image.Rectangle {
	outer = Normalize(outer)
	if widthPx <= 0 || heightPx <= 0 || outer.Empty() {
		return image.Rectangle{Min: outer.Min, Max: outer.Min}
	}
	w := outer.Dx()
	h := w * heightPx / widthPx
	if h > outer.Dy() {
		h = outer.Dy()
		w = h * widthPx / heightPx
	}
	origin := Center(outer, w, h)
	return image.Rect(origin.X, origin.Y, origin.X+w, origin.Y+h)
}
