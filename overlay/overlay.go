// Package overlay - Annotation of frames with face boxes, the emotion label and FPS.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	// LabelPosition is the baseline origin of the emotion label.
	LabelPosition = image.Pt(10, 50)
	// FPSPosition is the baseline origin of the FPS counter.
	FPSPosition = image.Pt(10, 100)

	faceColor  = color.RGBA{0, 255, 0, 0}
	labelColor = color.RGBA{0, 255, 0, 0}
	fpsColor   = color.RGBA{0, 0, 255, 0}
)

const (
	fontScale = 1.0
	thickness = 2
)

// Faces draws an unfilled outline for every rectangle.
func Faces(img *gocv.Mat, rects []image.Rectangle) {
	for _, r := range rects {
		gocv.Rectangle(img, r, faceColor, thickness)
	}
}

// Label draws the emotion label near the top-left corner.
func Label(img *gocv.Mat, label string) {
	gocv.PutTextWithParams(img, label, LabelPosition, gocv.FontHersheySimplex, fontScale, labelColor, thickness, gocv.LineAA, false)
}

// FPS draws the frame rate below the label.
func FPS(img *gocv.Mat, fps float64) {
	gocv.PutTextWithParams(img, FormatFPS(fps), FPSPosition, gocv.FontHersheySimplex, fontScale, fpsColor, thickness, gocv.LineAA, false)
}

// FormatFPS renders the frame rate text.
func FormatFPS(fps float64) string {
	return fmt.Sprintf("FPS: %.2f", fps)
}
