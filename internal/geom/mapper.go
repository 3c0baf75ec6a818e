package geom

import "image"

// Box is the on-screen rectangle an image is displayed in.
type Box struct {
	Left, Top     float64
	Width, Height float64
}

// BoxFromRect converts an integer screen rectangle into a Box.
func BoxFromRect(r image.Rectangle) Box {
	return Box{
		Left:   float64(r.Min.X),
		Top:    float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}

// MapPointer converts a pointer location in display space to image pixel
// space, scaling by the ratio of native to displayed size. When the surface
// is not laid out yet (empty box or image) it returns the origin.
func MapPointer(clientX, clientY float64, box Box, nativeW, nativeH int) Point {
	if box.Width <= 0 || box.Height <= 0 || nativeW <= 0 || nativeH <= 0 {
		return Point{}
	}
	sx := float64(nativeW) / box.Width
	sy := float64(nativeH) / box.Height
	return Point{
		X: (clientX - box.Left) * sx,
		Y: (clientY - box.Top) * sy,
	}
}
